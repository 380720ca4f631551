package model

// ChatRequest is the provider-agnostic chat-completion request accepted by the
// relay. Field names follow the historical client wire format.
type ChatRequest struct {
	Model            string    `json:"model"`
	Messages         []Message `json:"messages"`
	Temperature      *float64  `json:"temperature,omitempty"`
	TopP             *float64  `json:"top_p,omitempty"`
	MaxTokens        int       `json:"max_tokens,omitempty"`
	Stream           bool      `json:"stream,omitempty"`
	PresencePenalty  *float64  `json:"presence_penalty,omitempty"`
	FrequencyPenalty *float64  `json:"frequency_penalty,omitempty"`
}

// ChatResponse is the canonical non-streaming reply.
type ChatResponse struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}
