package meta

import (
	"github.com/gin-gonic/gin"

	"github.com/chatpp/relay/common/config"
	"github.com/chatpp/relay/common/ctxkey"
	"github.com/chatpp/relay/relay/channeltype"
)

// Meta carries the per-request relay state shared between the orchestrator and
// the provider adaptors.
type Meta struct {
	ChannelType int
	ModelName   string
	IsStream    bool
	// APIKey is the upstream credential: the caller's own token for BYOK
	// requests, otherwise the deployment key for the selected vendor.
	APIKey string
	// BYOK marks bring-your-own-key requests, which bypass quota accounting.
	BYOK bool
	// AccountId is the quota-bearing account, empty for BYOK/code access.
	AccountId string
}

// GetByContext assembles relay metadata from the authenticated gin context.
func GetByContext(c *gin.Context, modelName string, isStream bool) *Meta {
	m := &Meta{
		ChannelType: channeltype.FromModelName(modelName),
		ModelName:   modelName,
		IsStream:    isStream,
		BYOK:        c.GetBool(ctxkey.BringYourOwnKey),
		AccountId:   c.GetString(ctxkey.AccountId),
	}
	if m.BYOK {
		m.APIKey = c.Request.Header.Get("token")
	} else {
		m.APIKey = vendorKey(m.ChannelType)
	}
	return m
}

func vendorKey(channelType int) string {
	switch channelType {
	case channeltype.Anthropic:
		return config.ClaudeAPIKey
	case channeltype.Gemini:
		return config.GeminiAPIKey
	default:
		return config.OpenAIAPIKey
	}
}
