package adaptor

import (
	"net/http"

	"github.com/chatpp/relay/relay/meta"
	relaymodel "github.com/chatpp/relay/relay/model"
)

// WireFormat selects how a vendor frames its streaming response body.
type WireFormat int

const (
	// WireFormatSSE frames events as text/event-stream data payloads.
	WireFormatSSE WireFormat = iota
	// WireFormatJSONArray streams one top-level JSON array whose elements are
	// complete response objects (Gemini's default streamGenerateContent form).
	WireFormatJSONArray
)

// StreamAction is an adaptor's interpretation of one complete wire event.
// Zero value means "nothing to emit, keep reading".
type StreamAction struct {
	// Text to append to the canonical delta stream.
	Text string
	// HasText distinguishes an intentional empty delta from "no delta field".
	HasText bool
	// Done marks vendor-declared end of stream.
	Done bool
	// Err carries a vendor-declared in-band error message.
	Err string
}

// Adaptor translates between the canonical request/stream representation and
// one vendor's wire protocol. Implementations are stateless; all per-request
// state travels in meta.Meta.
type Adaptor interface {
	GetRequestURL(meta *meta.Meta) (string, error)
	SetupRequestHeader(req *http.Request, meta *meta.Meta)
	// ConvertRequest produces the vendor request body for the canonical request.
	ConvertRequest(request *relaymodel.ChatRequest, meta *meta.Meta) (any, error)
	// ParseResponse extracts the canonical reply from a complete non-streaming
	// vendor body. Missing optional fields default to empty strings.
	ParseResponse(body []byte) (*relaymodel.ChatResponse, error)
	// IsStreamingContentType reports whether the upstream response announces the
	// vendor's streaming body format. A mismatch on a streaming request means
	// the vendor declined to stream and returned an error body instead.
	IsStreamingContentType(resp *http.Response) bool
	WireFormat(meta *meta.Meta) WireFormat
	// InterpretEvent maps one complete wire event payload to a stream action.
	// A returned error indicates the payload failed to parse.
	InterpretEvent(payload []byte) (StreamAction, error)
	GetChannelName() string
}
