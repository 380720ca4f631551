package router

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chatpp/relay/common/config"
	"github.com/chatpp/relay/model"
)

func TestAccountQueryWorksForExhaustedAccount(t *testing.T) {
	originalType := config.AccessType
	config.AccessType = config.AccessTypeAccount
	t.Cleanup(func() { config.AccessType = originalType })

	originalStore := model.Store
	model.Store = model.NewMemoryStore()
	t.Cleanup(func() { model.Store = originalStore })

	gin.SetMode(gin.TestMode)
	router := gin.New()
	SetApiRouter(router)

	req := httptest.NewRequest(http.MethodPost, "/api/account", strings.NewReader(`{"action":"query"}`))
	req.Header.Set("access-code", "broke")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	var body struct {
		Error      bool   `json:"error"`
		AccessCode string `json:"accessCode"`
		Count      struct {
			Points   int64 `json:"points"`
			Days     int64 `json:"days"`
			PlusDays int64 `json:"daysplus"`
		} `json:"count"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.False(t, body.Error)
	assert.Equal(t, "broke", body.AccessCode)
	assert.Zero(t, body.Count.Points)
	assert.Zero(t, body.Count.Days)
	assert.Zero(t, body.Count.PlusDays)
}

func TestRelayRouteStillQuotaGated(t *testing.T) {
	originalType := config.AccessType
	config.AccessType = config.AccessTypeAccount
	t.Cleanup(func() { config.AccessType = originalType })

	originalStore := model.Store
	model.Store = model.NewMemoryStore()
	t.Cleanup(func() { model.Store = originalStore })

	gin.SetMode(gin.TestMode)
	router := gin.New()
	SetApiRouter(router)

	req := httptest.NewRequest(http.MethodPost, "/api/chat-stream", strings.NewReader(`{"messages":[]}`))
	req.Header.Set("access-code", "broke")
	req.Header.Set("model", "gpt-3.5-turbo")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Contains(t, w.Body.String(), "Auth failed")
}
