package anthropic

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/Laisky/errors/v2"

	"github.com/chatpp/relay/common/config"
	imgutil "github.com/chatpp/relay/common/image"
	"github.com/chatpp/relay/relay/adaptor"
	"github.com/chatpp/relay/relay/meta"
	relaymodel "github.com/chatpp/relay/relay/model"
)

const messagesPath = "/v1/messages"

// defaultMaxTokens applies when the caller omits max_tokens, which the
// messages API requires.
const defaultMaxTokens = 4096

type Adaptor struct{}

func (a *Adaptor) GetChannelName() string {
	return "anthropic"
}

func (a *Adaptor) GetRequestURL(m *meta.Meta) (string, error) {
	base := adaptor.ResolveBaseURL(config.ClaudeBaseURL, config.ClaudeProtocol)
	return base + messagesPath, nil
}

func (a *Adaptor) SetupRequestHeader(req *http.Request, m *meta.Meta) {
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-api-key", m.APIKey)
	req.Header.Set("anthropic-version", config.ClaudeVersion)
	if m.IsStream {
		req.Header.Set("anthropic-beta", "messages-2023-12-15")
	}
}

func isVisionModel(modelName string) bool {
	return strings.Contains(modelName, "claude-3")
}

// convertRole keeps the historical system-role convention: system turns are
// relayed as user turns rather than lifted into the top-level system field.
func convertRole(role string) string {
	switch role {
	case relaymodel.RoleUser, relaymodel.RoleSystem:
		return "user"
	case relaymodel.RoleAssistant:
		return "assistant"
	default:
		return ""
	}
}

func convertParts(parts []relaymodel.Part) []Content {
	blocks := make([]Content, 0, len(parts))
	for _, part := range parts {
		if part.Type == relaymodel.ContentTypeImageURL && part.ImageURL != nil {
			mimeType, data := imgutil.DecodeDataURLOrPlaceholder(part.ImageURL.Url)
			blocks = append(blocks, Content{
				Type: ContentTypeImage,
				Source: &ImageSource{
					Type:      "base64",
					MediaType: mimeType,
					Data:      data,
				},
			})
			continue
		}
		blocks = append(blocks, Content{Type: ContentTypeText, Text: part.Text})
	}
	return blocks
}

func (a *Adaptor) ConvertRequest(request *relaymodel.ChatRequest, m *meta.Meta) (any, error) {
	if len(request.Messages) == 0 {
		return nil, errors.New("request has no messages")
	}

	vision := isVisionModel(m.ModelName)
	messages := make([]Message, 0, len(request.Messages))
	for _, msg := range request.Messages {
		converted := Message{Role: convertRole(msg.Role)}
		if vision && !msg.IsStringContent() {
			converted.Content = convertParts(msg.ParseParts())
		} else {
			converted.Content = msg.StringContent()
		}
		messages = append(messages, converted)
	}

	maxTokens := request.MaxTokens
	if maxTokens <= 0 {
		maxTokens = defaultMaxTokens
	}

	return &Request{
		Model:       m.ModelName,
		Messages:    messages,
		MaxTokens:   maxTokens,
		Stream:      m.IsStream,
		Temperature: request.Temperature,
		TopP:        request.TopP,
	}, nil
}

func (a *Adaptor) ParseResponse(body []byte) (*relaymodel.ChatResponse, error) {
	var response Response
	if err := json.Unmarshal(body, &response); err != nil {
		return nil, errors.Wrap(err, "unmarshal messages response")
	}
	msg := &relaymodel.ChatResponse{Role: relaymodel.RoleAssistant}
	if len(response.Content) > 0 {
		msg.Content = response.Content[0].Text
	}
	return msg, nil
}

func (a *Adaptor) IsStreamingContentType(resp *http.Response) bool {
	return strings.Contains(strings.ToLower(resp.Header.Get("Content-Type")), "stream")
}

func (a *Adaptor) WireFormat(m *meta.Meta) adaptor.WireFormat {
	return adaptor.WireFormatSSE
}

func (a *Adaptor) InterpretEvent(payload []byte) (adaptor.StreamAction, error) {
	var event StreamEvent
	if err := json.Unmarshal(payload, &event); err != nil {
		return adaptor.StreamAction{}, errors.Wrap(err, "unmarshal stream event")
	}

	switch event.Type {
	case EventMessageStop:
		return adaptor.StreamAction{Done: true}, nil
	case EventError:
		msg := "upstream error"
		if event.Error != nil && event.Error.Message != "" {
			msg = event.Error.Message
		}
		return adaptor.StreamAction{Err: msg}, nil
	case EventContentBlockStart:
		if event.ContentBlock != nil {
			return adaptor.StreamAction{Text: event.ContentBlock.Text, HasText: true}, nil
		}
		return adaptor.StreamAction{}, nil
	case EventContentBlockDelta:
		if event.Delta != nil {
			return adaptor.StreamAction{Text: event.Delta.Text, HasText: true}, nil
		}
		return adaptor.StreamAction{}, nil
	default:
		// message_start, ping, content_block_stop and friends carry no text.
		return adaptor.StreamAction{}, nil
	}
}
