package controller

import (
	"net/http"

	gmw "github.com/Laisky/gin-middlewares/v6"
	"github.com/Laisky/zap"
	"github.com/gin-gonic/gin"

	"github.com/chatpp/relay/common"
	"github.com/chatpp/relay/common/config"
	"github.com/chatpp/relay/common/ctxkey"
	"github.com/chatpp/relay/model"
)

type accountRequest struct {
	Action string `json:"action"`
}

// GetAccount reports the authenticated account's remaining entitlements. The
// account identity comes from the authorization gate, never from the body, so
// one caller cannot read another caller's balances.
func GetAccount(c *gin.Context) {
	lg := gmw.GetLogger(c)

	request := &accountRequest{}
	if err := common.UnmarshalBodyReusable(c, request); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": true, "msg": "invalid request body"})
		return
	}
	if request.Action != "query" {
		c.JSON(http.StatusBadRequest, gin.H{"error": true, "msg": "unsupported action"})
		return
	}

	accountId := c.GetString(ctxkey.AccountId)
	if accountId == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": true, "msg": "Auth failed"})
		return
	}

	snapshot, err := model.Store.ReadSnapshot(c.Request.Context(), accountId)
	if err != nil {
		lg.Error("failed to read entitlement snapshot", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": true, "msg": "internal error"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"error": false, "accessCode": accountId, "count": snapshot})
}

type topupRequest struct {
	Account string `json:"accessCode"`
	Kind    string `json:"kind"`
	Points  int64  `json:"points"`
	Days    int    `json:"days"`
}

// Topup credits an account, admin-only. Point grants default to the initial
// allotment; day grants stack on whatever pass time remains.
func Topup(c *gin.Context) {
	lg := gmw.GetLogger(c)

	request := &topupRequest{}
	if err := common.UnmarshalBodyReusable(c, request); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": true, "msg": "invalid request body"})
		return
	}
	if request.Account == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": true, "msg": "accessCode is required"})
		return
	}

	switch model.ChargeKind(request.Kind) {
	case model.ChargeKindPoints:
		points := request.Points
		if points <= 0 {
			points = config.InitUserPoints
		}
		if err := model.Store.GrantPoints(c.Request.Context(), request.Account, points); err != nil {
			lg.Error("failed to grant points", zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": true, "msg": "internal error"})
			return
		}
		lg.Info("points granted",
			zap.String("account", request.Account),
			zap.Int64("points", points))
	case model.ChargeKindStandardDays, model.ChargeKindPlusDays:
		if request.Days <= 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": true, "msg": "days must be positive"})
			return
		}
		if err := model.Store.ExtendPass(c.Request.Context(), request.Account, model.ChargeKind(request.Kind), request.Days); err != nil {
			lg.Error("failed to extend pass", zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": true, "msg": "internal error"})
			return
		}
		lg.Info("pass extended",
			zap.String("account", request.Account),
			zap.String("kind", request.Kind),
			zap.Int("days", request.Days))
	default:
		c.JSON(http.StatusBadRequest, gin.H{"error": true, "msg": "unknown kind"})
		return
	}

	snapshot, err := model.Store.ReadSnapshot(c.Request.Context(), request.Account)
	if err != nil {
		lg.Error("failed to read entitlement snapshot", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": true, "msg": "internal error"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"error": false, "accessCode": request.Account, "count": snapshot})
}
