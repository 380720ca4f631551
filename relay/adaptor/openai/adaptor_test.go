package openai

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chatpp/relay/relay/meta"
	relaymodel "github.com/chatpp/relay/relay/model"
)

func TestGetRequestURL(t *testing.T) {
	url, err := (&Adaptor{}).GetRequestURL(&meta.Meta{ModelName: "gpt-4"})
	require.NoError(t, err)
	assert.Equal(t, "https://api.openai.com/v1/chat/completions", url)
}

func TestSetupRequestHeader(t *testing.T) {
	req, err := http.NewRequest(http.MethodPost, "https://api.openai.com/v1/chat/completions", nil)
	require.NoError(t, err)

	(&Adaptor{}).SetupRequestHeader(req, &meta.Meta{APIKey: "sk-test"})
	assert.Equal(t, "Bearer sk-test", req.Header.Get("Authorization"))
	assert.Equal(t, "application/json", req.Header.Get("Content-Type"))
}

func TestConvertRequestFlattensPartsForNonVisionModels(t *testing.T) {
	request := &relaymodel.ChatRequest{
		Messages: []relaymodel.Message{
			{Role: relaymodel.RoleUser, Content: []any{
				map[string]any{"type": "text", "text": "describe "},
				map[string]any{"type": "text", "text": "this"},
				map[string]any{"type": "image_url", "image_url": map[string]any{"url": "data:image/png;base64,AAAA"}},
			}},
		},
	}

	converted, err := (&Adaptor{}).ConvertRequest(request, &meta.Meta{ModelName: "gpt-3.5-turbo"})
	require.NoError(t, err)
	body, ok := converted.(*ChatRequest)
	require.True(t, ok)
	require.Len(t, body.Messages, 1)
	assert.Equal(t, "describe this", body.Messages[0].Content)
}

func TestConvertRequestKeepsPartsForVisionModels(t *testing.T) {
	parts := []any{
		map[string]any{"type": "text", "text": "what is this"},
		map[string]any{"type": "image_url", "image_url": map[string]any{"url": "data:image/png;base64,AAAA"}},
	}
	request := &relaymodel.ChatRequest{
		Messages: []relaymodel.Message{{Role: relaymodel.RoleUser, Content: parts}},
	}

	converted, err := (&Adaptor{}).ConvertRequest(request, &meta.Meta{ModelName: "gpt-4-vision-preview", IsStream: true})
	require.NoError(t, err)
	body, ok := converted.(*ChatRequest)
	require.True(t, ok)
	assert.True(t, body.Stream)
	require.Len(t, body.Messages, 1)
	assert.False(t, body.Messages[0].IsStringContent())
}

func TestConvertRequestRejectsEmptyMessages(t *testing.T) {
	_, err := (&Adaptor{}).ConvertRequest(&relaymodel.ChatRequest{}, &meta.Meta{ModelName: "gpt-4"})
	assert.Error(t, err)
}

func TestParseResponse(t *testing.T) {
	body := `{"choices":[{"message":{"role":"assistant","content":"hello"}}]}`
	msg, err := (&Adaptor{}).ParseResponse([]byte(body))
	require.NoError(t, err)
	assert.Equal(t, "assistant", msg.Role)
	assert.Equal(t, "hello", msg.Content)
}

func TestParseResponseEmptyChoices(t *testing.T) {
	msg, err := (&Adaptor{}).ParseResponse([]byte(`{"choices":[]}`))
	require.NoError(t, err)
	assert.Empty(t, msg.Role)
	assert.Empty(t, msg.Content)
}

func TestInterpretEvent(t *testing.T) {
	tests := []struct {
		name     string
		payload  string
		wantDone bool
		wantText string
		hasText  bool
	}{
		{name: "sentinel", payload: "[DONE]", wantDone: true},
		{name: "sentinel with whitespace", payload: " [DONE]\n", wantDone: true},
		{name: "delta", payload: `{"choices":[{"delta":{"content":"hi"}}]}`, wantText: "hi", hasText: true},
		{name: "finish reason stop", payload: `{"choices":[{"delta":{},"finish_reason":"stop"}]}`, wantDone: true},
		{name: "finish details string", payload: `{"choices":[{"delta":{},"finish_details":"stop"}]}`, wantDone: true},
		{name: "finish details object", payload: `{"choices":[{"delta":{},"finish_details":{"type":"stop"}}]}`, wantDone: true},
		{name: "finish details other", payload: `{"choices":[{"delta":{"content":"x"},"finish_details":{"type":"max_tokens"}}]}`, wantText: "x", hasText: true},
		{name: "no choices", payload: `{"choices":[]}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			action, err := (&Adaptor{}).InterpretEvent([]byte(tt.payload))
			require.NoError(t, err)
			assert.Equal(t, tt.wantDone, action.Done)
			assert.Equal(t, tt.hasText, action.HasText)
			assert.Equal(t, tt.wantText, action.Text)
		})
	}
}

func TestInterpretEventMalformed(t *testing.T) {
	_, err := (&Adaptor{}).InterpretEvent([]byte("{not json"))
	assert.Error(t, err)
}
