package openai

import (
	"bytes"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/Laisky/errors/v2"

	"github.com/chatpp/relay/common/config"
	"github.com/chatpp/relay/relay/adaptor"
	"github.com/chatpp/relay/relay/meta"
	relaymodel "github.com/chatpp/relay/relay/model"
)

const chatPath = "/v1/chat/completions"

// DoneSentinel is the literal SSE payload closing a chat-completions stream.
const DoneSentinel = "[DONE]"

type Adaptor struct{}

func (a *Adaptor) GetChannelName() string {
	return "openai"
}

func (a *Adaptor) GetRequestURL(m *meta.Meta) (string, error) {
	base := adaptor.ResolveBaseURL(config.OpenAIBaseURL, config.OpenAIProtocol)
	return base + chatPath, nil
}

func (a *Adaptor) SetupRequestHeader(req *http.Request, m *meta.Meta) {
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+m.APIKey)
	if config.OpenAIOrgID != "" {
		req.Header.Set("OpenAI-Organization", config.OpenAIOrgID)
	}
}

func isVisionModel(modelName string) bool {
	return strings.Contains(modelName, "vision") || strings.Contains(modelName, "-4o")
}

// ConvertRequest is a near-passthrough: the canonical format matches the
// OpenAI wire format, so only non-vision part flattening applies.
func (a *Adaptor) ConvertRequest(request *relaymodel.ChatRequest, m *meta.Meta) (any, error) {
	if len(request.Messages) == 0 {
		return nil, errors.New("request has no messages")
	}

	messages := request.Messages
	if !isVisionModel(m.ModelName) {
		messages = make([]relaymodel.Message, 0, len(request.Messages))
		for _, msg := range request.Messages {
			if !msg.IsStringContent() {
				msg = relaymodel.Message{Role: msg.Role, Content: msg.StringContent()}
			}
			messages = append(messages, msg)
		}
	}

	return &ChatRequest{
		Model:            m.ModelName,
		Messages:         messages,
		Stream:           m.IsStream,
		Temperature:      request.Temperature,
		TopP:             request.TopP,
		MaxTokens:        request.MaxTokens,
		PresencePenalty:  request.PresencePenalty,
		FrequencyPenalty: request.FrequencyPenalty,
	}, nil
}

func (a *Adaptor) ParseResponse(body []byte) (*relaymodel.ChatResponse, error) {
	var response TextResponse
	if err := json.Unmarshal(body, &response); err != nil {
		return nil, errors.Wrap(err, "unmarshal chat completion response")
	}
	msg := &relaymodel.ChatResponse{}
	if len(response.Choices) > 0 {
		msg.Role = response.Choices[0].Message.Role
		msg.Content = response.Choices[0].Message.Content
	}
	return msg, nil
}

func (a *Adaptor) IsStreamingContentType(resp *http.Response) bool {
	// text/event-stream
	return strings.Contains(resp.Header.Get("Content-Type"), "stream")
}

func (a *Adaptor) WireFormat(m *meta.Meta) adaptor.WireFormat {
	return adaptor.WireFormatSSE
}

// InterpretEvent handles both termination conventions in the wild: the [DONE]
// sentinel and a finish_reason/finish_details field equal to "stop". Different
// deployments emit one or the other, so every event is checked for both.
func (a *Adaptor) InterpretEvent(payload []byte) (adaptor.StreamAction, error) {
	if bytes.Equal(bytes.TrimSpace(payload), []byte(DoneSentinel)) {
		return adaptor.StreamAction{Done: true}, nil
	}

	var chunk StreamResponse
	if err := json.Unmarshal(payload, &chunk); err != nil {
		return adaptor.StreamAction{}, errors.Wrap(err, "unmarshal stream event")
	}
	if len(chunk.Choices) == 0 {
		return adaptor.StreamAction{}, nil
	}

	choice := chunk.Choices[0]
	if choice.FinishReason == "stop" || finishDetailsStop(choice.FinishDetails) {
		return adaptor.StreamAction{Done: true}, nil
	}
	return adaptor.StreamAction{Text: choice.Delta.Content, HasText: true}, nil
}

func finishDetailsStop(raw json.RawMessage) bool {
	if len(raw) == 0 {
		return false
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s == "stop"
	}
	var obj struct {
		Type string `json:"type"`
	}
	if err := json.Unmarshal(raw, &obj); err == nil {
		return obj.Type == "stop"
	}
	return false
}
