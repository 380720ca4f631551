package gemini

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/Laisky/errors/v2"

	"github.com/chatpp/relay/common/config"
	imgutil "github.com/chatpp/relay/common/image"
	"github.com/chatpp/relay/relay/adaptor"
	"github.com/chatpp/relay/relay/meta"
	relaymodel "github.com/chatpp/relay/relay/model"
)

type Adaptor struct{}

func (a *Adaptor) GetChannelName() string {
	return "gemini"
}

// GetRequestURL builds the model-scoped operation URL. The API key travels in
// the query string; the SSE wire format additionally requires alt=sse.
func (a *Adaptor) GetRequestURL(m *meta.Meta) (string, error) {
	base := adaptor.ResolveBaseURL(config.GeminiBaseURL, config.GeminiProtocol)
	op := "generateContent"
	if m.IsStream {
		op = "streamGenerateContent"
	}
	url := fmt.Sprintf("%s/v1beta/models/%s:%s?key=%s", base, m.ModelName, op, m.APIKey)
	if m.IsStream && config.GeminiStreamFormat == config.GeminiFormatSSE {
		url += "&alt=sse"
	}
	return url, nil
}

func (a *Adaptor) SetupRequestHeader(req *http.Request, m *meta.Meta) {
	req.Header.Set("Content-Type", "application/json")
}

func isVisionModel(modelName string) bool {
	return strings.Contains(modelName, "vision")
}

func convertRole(role string) string {
	switch role {
	case relaymodel.RoleUser, relaymodel.RoleSystem:
		return "user"
	case relaymodel.RoleAssistant:
		return "model"
	default:
		return ""
	}
}

func reverseRole(role string) string {
	switch role {
	case "user":
		return relaymodel.RoleUser
	case "model":
		return relaymodel.RoleAssistant
	default:
		return ""
	}
}

func convertParts(parts []relaymodel.Part) []Part {
	converted := make([]Part, 0, len(parts))
	for _, part := range parts {
		if part.Type == relaymodel.ContentTypeImageURL && part.ImageURL != nil {
			mimeType, data := imgutil.DecodeDataURLOrPlaceholder(part.ImageURL.Url)
			converted = append(converted, Part{
				InlineData: &InlineData{MimeType: mimeType, Data: data},
			})
			continue
		}
		converted = append(converted, Part{Text: part.Text})
	}
	return converted
}

func (a *Adaptor) ConvertRequest(request *relaymodel.ChatRequest, m *meta.Meta) (any, error) {
	if len(request.Messages) == 0 {
		return nil, errors.New("request has no messages")
	}

	vision := isVisionModel(m.ModelName)
	contents := make([]Content, 0, len(request.Messages))
	for _, msg := range request.Messages {
		content := Content{Role: convertRole(msg.Role)}
		if vision && !msg.IsStringContent() {
			content.Parts = convertParts(msg.ParseParts())
		} else {
			content.Parts = []Part{{Text: msg.StringContent()}}
		}
		// The API rejects histories whose first turn is not a user turn.
		if len(contents) == 0 && content.Role != "user" {
			continue
		}
		contents = append(contents, content)
	}
	if len(contents) == 0 {
		return nil, errors.New("request has no user messages")
	}

	return &Request{
		Contents: contents,
		GenerationConfig: GenerationConfig{
			Temperature:     request.Temperature,
			TopP:            request.TopP,
			MaxOutputTokens: request.MaxTokens,
		},
	}, nil
}

func (a *Adaptor) ParseResponse(body []byte) (*relaymodel.ChatResponse, error) {
	var response Response
	if err := json.Unmarshal(body, &response); err != nil {
		return nil, errors.Wrap(err, "unmarshal generateContent response")
	}
	msg := &relaymodel.ChatResponse{}
	if len(response.Candidates) > 0 {
		candidate := response.Candidates[0]
		msg.Role = reverseRole(candidate.Content.Role)
		if len(candidate.Content.Parts) > 0 {
			msg.Content = candidate.Content.Parts[0].Text
		}
	}
	return msg, nil
}

// IsStreamingContentType accepts both wire formats: the array form arrives as
// application/json, the SSE form as text/event-stream.
func (a *Adaptor) IsStreamingContentType(resp *http.Response) bool {
	contentType := strings.ToLower(resp.Header.Get("Content-Type"))
	if config.GeminiStreamFormat == config.GeminiFormatSSE {
		return strings.Contains(contentType, "stream")
	}
	return strings.Contains(contentType, "json")
}

func (a *Adaptor) WireFormat(m *meta.Meta) adaptor.WireFormat {
	if config.GeminiStreamFormat == config.GeminiFormatSSE {
		return adaptor.WireFormatSSE
	}
	return adaptor.WireFormatJSONArray
}

// InterpretEvent extracts the candidate text of one response object. There is
// no explicit sentinel: end of body is the end-of-stream signal, which the
// transcoder raises itself.
func (a *Adaptor) InterpretEvent(payload []byte) (adaptor.StreamAction, error) {
	var chunk Response
	if err := json.Unmarshal(payload, &chunk); err != nil {
		return adaptor.StreamAction{}, errors.Wrap(err, "unmarshal stream chunk")
	}
	if len(chunk.Candidates) == 0 || len(chunk.Candidates[0].Content.Parts) == 0 {
		return adaptor.StreamAction{}, nil
	}
	return adaptor.StreamAction{Text: chunk.Candidates[0].Content.Parts[0].Text, HasText: true}, nil
}
