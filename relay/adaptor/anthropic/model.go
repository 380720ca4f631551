package anthropic

// Content block types of the messages API.
const (
	ContentTypeText  = "text"
	ContentTypeImage = "image"
)

// ImageSource is an inline base64 image block.
type ImageSource struct {
	Type      string `json:"type"`
	MediaType string `json:"media_type"`
	Data      string `json:"data"`
}

type Content struct {
	Type   string       `json:"type"`
	Text   string       `json:"text,omitempty"`
	Source *ImageSource `json:"source,omitempty"`
}

type Message struct {
	Role string `json:"role"`
	// Content is either a plain string or a []Content block sequence.
	Content any `json:"content"`
}

// Request is the messages API request body.
type Request struct {
	Model       string    `json:"model"`
	Messages    []Message `json:"messages"`
	MaxTokens   int       `json:"max_tokens"`
	Stream      bool      `json:"stream,omitempty"`
	Temperature *float64  `json:"temperature,omitempty"`
	TopP        *float64  `json:"top_p,omitempty"`
}

// Response is the non-streaming messages API envelope.
type Response struct {
	Content []Content `json:"content"`
}

// Stream event types.
const (
	EventMessageStop       = "message_stop"
	EventError             = "error"
	EventContentBlockStart = "content_block_start"
	EventContentBlockDelta = "content_block_delta"
)

type StreamError struct {
	Type    string `json:"type"`
	Message string `json:"message"`
}

// StreamEvent is one typed SSE event of the messages stream. Only the fields
// relevant to its declared type are populated.
type StreamEvent struct {
	Type         string       `json:"type"`
	ContentBlock *Content     `json:"content_block,omitempty"`
	Delta        *Content     `json:"delta,omitempty"`
	Error        *StreamError `json:"error,omitempty"`
}
