package model

import "encoding/json"

// Roles of the canonical message sequence.
const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Content part types.
const (
	ContentTypeText     = "text"
	ContentTypeImageURL = "image_url"
)

type ImageURL struct {
	// Url is either a remote URL or a data:<mime>;base64,<data> URL.
	Url    string `json:"url"`
	Detail string `json:"detail,omitempty"`
}

// Part is one element of a multi-part message body.
type Part struct {
	Type     string    `json:"type"`
	Text     string    `json:"text,omitempty"`
	ImageURL *ImageURL `json:"image_url,omitempty"`
}

// Message is one canonical chat turn. Content is either a plain string or an
// ordered part sequence; use StringContent/ParseParts instead of touching the
// raw value.
type Message struct {
	Role    string `json:"role"`
	Content any    `json:"content"`
}

// IsStringContent reports whether the message body is plain text.
func (m Message) IsStringContent() bool {
	_, ok := m.Content.(string)
	return ok
}

// StringContent flattens the message body to plain text. Part sequences are
// reduced to their concatenated text parts; image parts are dropped.
func (m Message) StringContent() string {
	if content, ok := m.Content.(string); ok {
		return content
	}
	var text string
	for _, part := range m.ParseParts() {
		if part.Type == ContentTypeText {
			text += part.Text
		}
	}
	return text
}

// ParseParts returns the typed part sequence of a multi-part message, or nil
// for plain-text messages. Bodies arriving from JSON are []any maps, so the
// value is round-tripped through encoding/json once.
func (m Message) ParseParts() []Part {
	switch content := m.Content.(type) {
	case []Part:
		return content
	case []any:
		raw, err := json.Marshal(content)
		if err != nil {
			return nil
		}
		var parts []Part
		if err := json.Unmarshal(raw, &parts); err != nil {
			return nil
		}
		return parts
	default:
		return nil
	}
}
