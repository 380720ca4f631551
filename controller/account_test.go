package controller

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chatpp/relay/common/config"
	"github.com/chatpp/relay/common/ctxkey"
	"github.com/chatpp/relay/model"
)

func setupAccountTest(t *testing.T) *model.MemoryStore {
	t.Helper()
	gin.SetMode(gin.TestMode)
	original := model.Store
	store := model.NewMemoryStore()
	model.Store = store
	t.Cleanup(func() { model.Store = original })
	return store
}

func TestGetAccount(t *testing.T) {
	store := setupAccountTest(t)
	require.NoError(t, store.GrantPoints(context.Background(), "alice", 42))

	router := gin.New()
	router.POST("/api/account", func(c *gin.Context) {
		c.Set(ctxkey.AccountId, "alice")
	}, GetAccount)

	req := httptest.NewRequest(http.MethodPost, "/api/account", strings.NewReader(`{"action":"query"}`))
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
			Tier     int   `json:"usertype"`
		} `json:"count"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.False(t, body.Error)
	assert.Equal(t, "alice", body.AccessCode)
	assert.Equal(t, int64(42), body.Count.Points)
	assert.Equal(t, model.TierPaid, body.Count.Tier)
}

func TestGetAccountRejectsUnknownAction(t *testing.T) {
	setupAccountTest(t)
	router := gin.New()
	router.POST("/api/account", func(c *gin.Context) {
		c.Set(ctxkey.AccountId, "alice")
	}, GetAccount)

	req := httptest.NewRequest(http.MethodPost, "/api/account", strings.NewReader(`{"action":"drop"}`))
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestTopupPoints(t *testing.T) {
	store := setupAccountTest(t)
	router := gin.New()
	router.POST("/api/topup", Topup)

	req := httptest.NewRequest(http.MethodPost, "/api/topup",
		strings.NewReader(`{"accessCode":"bob","kind":"points"}`))
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)

	// Omitted amount falls back to the initial allotment.
	snapshot, err := store.ReadSnapshot(context.Background(), "bob")
	require.NoError(t, err)
	assert.Equal(t, config.InitUserPoints, snapshot.Points)
	assert.Equal(t, model.TierPaid, snapshot.Tier)
}

func TestTopupPass(t *testing.T) {
	store := setupAccountTest(t)
	router := gin.New()
	router.POST("/api/topup", Topup)

	req := httptest.NewRequest(http.MethodPost, "/api/topup",
		strings.NewReader(`{"accessCode":"bob","kind":"daysplus","days":3}`))
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)

	snapshot, err := store.ReadSnapshot(context.Background(), "bob")
	require.NoError(t, err)
	assert.Equal(t, int64(3), snapshot.PlusDays)
}

func TestTopupRejectsBadRequests(t *testing.T) {
	setupAccountTest(t)
	router := gin.New()
	router.POST("/api/topup", Topup)

	for name, body := range map[string]string{
		"missing account": `{"kind":"points"}`,
		"unknown kind":    `{"accessCode":"bob","kind":"gold"}`,
		"zero days":       `{"accessCode":"bob","kind":"days","days":0}`,
	} {
		t.Run(name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/api/topup", strings.NewReader(body))
			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)
			assert.Equal(t, http.StatusBadRequest, w.Code)
		})
	}
}
