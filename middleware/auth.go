package middleware

import (
	"crypto/md5"
	"encoding/hex"
	"net/http"
	"strings"

	gmw "github.com/Laisky/gin-middlewares/v6"
	"github.com/Laisky/zap"
	"github.com/gin-gonic/gin"

	"github.com/chatpp/relay/common/config"
	"github.com/chatpp/relay/common/ctxkey"
	"github.com/chatpp/relay/model"
	"github.com/chatpp/relay/monitor"
	"github.com/chatpp/relay/relay/quota"
)

// RelayAuth resolves the caller identity from request credentials and performs
// the read-only quota check before anything touches an upstream vendor.
//
// Two credentials exist, mutually exclusive: `token` is a bring-your-own-key
// bypass with no quota accounting; `access-code` identifies either a static
// code (code deployments) or a quota-bearing account (account deployments).
func RelayAuth() gin.HandlerFunc {
	return auth(true)
}

// AccountAuth authenticates identity only, without the quota gate. Balance
// queries must keep working for exhausted accounts; that is precisely when a
// caller needs to see their counters.
func AccountAuth() gin.HandlerFunc {
	return auth(false)
}

func auth(quotaGate bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		lg := gmw.GetLogger(c)
		accessCode := c.Request.Header.Get("access-code")
		token := c.Request.Header.Get("token")

		if token != "" {
			c.Set(ctxkey.BringYourOwnKey, true)
			c.Next()
			return
		}

		if accessCode == "" {
			abortUnauthorized(c, "Auth is required.")
			return
		}

		switch config.AccessType {
		case config.AccessTypeCode:
			if !codeAuth(accessCode) {
				lg.Info("static access code rejected")
				abortUnauthorized(c, "Auth failed")
				return
			}
		case config.AccessTypeAccount:
			if !quotaGate {
				c.Set(ctxkey.AccountId, accessCode)
				break
			}
			if !accountAuth(c, accessCode) {
				return
			}
		default:
			lg.Warn("unsupported access type", zap.String("access_type", config.AccessType))
			abortUnauthorized(c, "Auth failed")
			return
		}

		c.Next()
	}
}

func codeAuth(accessCode string) bool {
	sum := md5.Sum([]byte(strings.TrimSpace(accessCode)))
	return config.AccessCodes[hex.EncodeToString(sum[:])]
}

// accountAuth loads the caller's entitlement snapshot and runs the quota
// evaluator read-only; the orchestrator re-evaluates on a fresh snapshot to
// pick the charge plan. The denial message stays generic so a spoofed code
// cannot probe which counter an account has left.
func accountAuth(c *gin.Context, accessCode string) bool {
	lg := gmw.GetLogger(c)

	snapshot, err := model.Store.ReadSnapshot(c.Request.Context(), accessCode)
	if err != nil {
		lg.Error("failed to read entitlement snapshot", zap.Error(err))
		abortUnauthorized(c, "Auth failed")
		return false
	}

	modelName := c.Request.Header.Get("model")
	decision := quota.Evaluate(snapshot, quota.IsPremiumModel(modelName))
	if !decision.Allow {
		monitor.RecordQuotaDenial()
		lg.Info("account denied by quota gate",
			zap.String("model", modelName),
			zap.String("reason", decision.Reason))
		abortUnauthorized(c, "Auth failed")
		return false
	}

	c.Set(ctxkey.AccountId, accessCode)
	return true
}

func abortUnauthorized(c *gin.Context, msg string) {
	c.JSON(http.StatusUnauthorized, gin.H{"error": true, "msg": msg})
	c.Abort()
}

// AdminAuth guards top-up endpoints with the deployment admin token. An empty
// ADMIN_TOKEN disables the endpoints outright.
func AdminAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		token := strings.TrimPrefix(c.Request.Header.Get("Authorization"), "Bearer ")
		if config.AdminToken == "" || token != config.AdminToken {
			c.JSON(http.StatusForbidden, gin.H{"error": true, "msg": "admin access denied"})
			c.Abort()
			return
		}
		c.Next()
	}
}
