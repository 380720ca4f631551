package openai

import (
	"encoding/json"

	relaymodel "github.com/chatpp/relay/relay/model"
)

// ChatRequest is the OpenAI chat-completions request body. The canonical
// format descends from this wire format, so translation is a field-for-field
// mapping with role passthrough.
type ChatRequest struct {
	Model            string              `json:"model"`
	Messages         []relaymodel.Message `json:"messages"`
	Stream           bool                `json:"stream,omitempty"`
	Temperature      *float64            `json:"temperature,omitempty"`
	TopP             *float64            `json:"top_p,omitempty"`
	MaxTokens        int                 `json:"max_tokens,omitempty"`
	PresencePenalty  *float64            `json:"presence_penalty,omitempty"`
	FrequencyPenalty *float64            `json:"frequency_penalty,omitempty"`
}

type ResponseMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type Choice struct {
	Message ResponseMessage `json:"message"`
}

// TextResponse is the non-streaming response envelope.
type TextResponse struct {
	Choices []Choice `json:"choices"`
}

type StreamDelta struct {
	Content string `json:"content"`
}

type StreamChoice struct {
	Delta        StreamDelta `json:"delta"`
	FinishReason string      `json:"finish_reason,omitempty"`
	// FinishDetails is emitted by some deployments instead of finish_reason;
	// its shape varies across API revisions, so it stays raw until checked.
	FinishDetails json.RawMessage `json:"finish_details,omitempty"`
}

// StreamResponse is one SSE data payload of the chat-completions stream.
type StreamResponse struct {
	Choices []StreamChoice `json:"choices"`
}
