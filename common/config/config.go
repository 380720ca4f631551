package config

import (
	"crypto/md5"
	"encoding/hex"
	"strings"

	"github.com/chatpp/relay/common/env"
)

// Access types decide which credential the relay accepts on inbound requests.
const (
	AccessTypeCode    = "code"    // static access codes from the CODE list
	AccessTypeToken   = "token"   // bring-your-own-key, no quota accounting
	AccessTypeAccount = "account" // quota-bearing accounts in the entitlement store
)

// Gemini streaming wire formats. The upstream emits either a chunked JSON array
// or SSE depending on deployment; header sniffing proved unreliable across API
// revisions, so the format is pinned by configuration.
const (
	GeminiFormatArray = "array"
	GeminiFormatSSE   = "sse"
)

var (
	// AccessType selects the credential scheme enforced by the authorization gate.
	AccessType = strings.TrimSpace(env.String("ACCESS_TYPE", AccessTypeAccount))

	// AccessCodes holds the md5 digests of the static CODE list for code-based deployments.
	AccessCodes = func() map[string]bool {
		codes := make(map[string]bool)
		for _, code := range strings.Split(env.String("CODE", ""), ",") {
			code = strings.TrimSpace(code)
			if code == "" {
				continue
			}
			sum := md5.Sum([]byte(code))
			codes[hex.EncodeToString(sum[:])] = true
		}
		return codes
	}()

	// AdminToken guards the top-up endpoints. Empty disables them entirely.
	AdminToken = strings.TrimSpace(env.String("ADMIN_TOKEN", ""))

	// OpenAIBaseURL overrides the OpenAI-compatible upstream host. A bare host is
	// prefixed with OpenAIProtocol.
	OpenAIBaseURL  = env.String("OPENAI_BASE_URL", "api.openai.com")
	OpenAIProtocol = env.String("OPENAI_PROTOCOL", "https")
	OpenAIAPIKey   = env.String("OPENAI_API_KEY", "")
	OpenAIOrgID    = env.String("OPENAI_ORG_ID", "")

	ClaudeBaseURL  = env.String("CLAUDE_BASE_URL", "api.anthropic.com")
	ClaudeProtocol = env.String("CLAUDE_PROTOCOL", "https")
	ClaudeAPIKey   = env.String("CLAUDE_API_KEY", "")
	// ClaudeVersion is sent as the anthropic-version header on every request.
	ClaudeVersion = env.String("CLAUDE_VERSION", "2023-06-01")

	GeminiBaseURL  = env.String("GEMINI_BASE_URL", "generativelanguage.googleapis.com")
	GeminiProtocol = env.String("GEMINI_PROTOCOL", "https")
	GeminiAPIKey   = env.String("GEMINI_API_KEY", "")
	// GeminiStreamFormat pins the streaming wire format: "array" or "sse".
	GeminiStreamFormat = env.String("GEMINI_STREAM_FORMAT", GeminiFormatArray)

	// PremiumModelPrefixes lists model-name prefixes billed at the premium decrement.
	PremiumModelPrefixes = func() []string {
		var prefixes []string
		for _, p := range strings.Split(env.String("PREMIUM_MODEL_PREFIXES", "gpt-4"), ",") {
			if p = strings.TrimSpace(p); p != "" {
				prefixes = append(prefixes, p)
			}
		}
		return prefixes
	}()

	// PremiumDecrement is the point cost of one premium-tier request.
	PremiumDecrement = int64(env.Int("DEC_GPT4_USER_COUNT", 20))
	// StandardDecrement is the point cost of one standard-tier request.
	StandardDecrement = int64(env.Int("DEC_USER_COUNT", 1))
	// InitUserPoints is the point grant applied when an account is first topped up.
	InitUserPoints = int64(env.Int("INIT_USER_COUNT", 100))

	// RedisConnString enables the Redis entitlement store; empty falls back to the
	// in-process store, which is only suitable for single-instance deployments.
	RedisConnString = env.String("REDIS_CONN_STRING", "")

	// AuditDBPath enables the sqlite charge audit log when non-empty.
	AuditDBPath = env.String("AUDIT_DB_PATH", "")

	// RelayTimeoutSec bounds the wait for upstream response headers, and whole
	// request/response exchanges on the non-streaming client. Open stream
	// bodies are not read-bounded; they end with the caller's context.
	RelayTimeoutSec = env.Int("RELAY_TIMEOUT", 60)

	// ServerPort overrides the listen port inside container or PaaS environments.
	ServerPort = strings.TrimSpace(env.String("PORT", "3000"))

	// DebugEnabled toggles verbose structured logging when DEBUG=true.
	DebugEnabled = env.Bool("DEBUG", false)

	// EnablePrometheusMetrics exposes the /metrics endpoint for scrapers when true.
	EnablePrometheusMetrics = env.Bool("ENABLE_PROMETHEUS_METRICS", true)

	// EntitlementKeyPrefix namespaces every entitlement store key.
	EntitlementKeyPrefix = env.String("ENTITLEMENT_KEY_PREFIX", "chatpp")
)
