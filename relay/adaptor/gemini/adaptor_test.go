package gemini

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chatpp/relay/common/config"
	"github.com/chatpp/relay/relay/adaptor"
	"github.com/chatpp/relay/relay/meta"
	relaymodel "github.com/chatpp/relay/relay/model"
)

func TestGetRequestURL(t *testing.T) {
	a := &Adaptor{}

	url, err := a.GetRequestURL(&meta.Meta{ModelName: "gemini-pro", APIKey: "k"})
	require.NoError(t, err)
	assert.Equal(t, "https://generativelanguage.googleapis.com/v1beta/models/gemini-pro:generateContent?key=k", url)

	url, err = a.GetRequestURL(&meta.Meta{ModelName: "gemini-pro", APIKey: "k", IsStream: true})
	require.NoError(t, err)
	assert.Equal(t, "https://generativelanguage.googleapis.com/v1beta/models/gemini-pro:streamGenerateContent?key=k", url)
}

func TestGetRequestURLSSEFormat(t *testing.T) {
	original := config.GeminiStreamFormat
	config.GeminiStreamFormat = config.GeminiFormatSSE
	defer func() { config.GeminiStreamFormat = original }()

	url, err := (&Adaptor{}).GetRequestURL(&meta.Meta{ModelName: "gemini-pro", APIKey: "k", IsStream: true})
	require.NoError(t, err)
	assert.Contains(t, url, "&alt=sse")
}

func TestWireFormatFollowsConfig(t *testing.T) {
	a := &Adaptor{}
	m := &meta.Meta{ModelName: "gemini-pro", IsStream: true}

	assert.Equal(t, adaptor.WireFormatJSONArray, a.WireFormat(m))

	original := config.GeminiStreamFormat
	config.GeminiStreamFormat = config.GeminiFormatSSE
	defer func() { config.GeminiStreamFormat = original }()
	assert.Equal(t, adaptor.WireFormatSSE, a.WireFormat(m))
}

func TestConvertRequestRoleMapping(t *testing.T) {
	temp := 0.7
	request := &relaymodel.ChatRequest{
		Temperature: &temp,
		MaxTokens:   128,
		Messages: []relaymodel.Message{
			{Role: relaymodel.RoleSystem, Content: "be terse"},
			{Role: relaymodel.RoleAssistant, Content: "ok"},
			{Role: relaymodel.RoleUser, Content: "hi"},
		},
	}

	converted, err := (&Adaptor{}).ConvertRequest(request, &meta.Meta{ModelName: "gemini-pro"})
	require.NoError(t, err)
	body, ok := converted.(*Request)
	require.True(t, ok)

	require.Len(t, body.Contents, 3)
	assert.Equal(t, "user", body.Contents[0].Role)
	assert.Equal(t, "model", body.Contents[1].Role)
	assert.Equal(t, "user", body.Contents[2].Role)
	assert.Equal(t, &temp, body.GenerationConfig.Temperature)
	assert.Equal(t, 128, body.GenerationConfig.MaxOutputTokens)
}

func TestConvertRequestDropsLeadingModelTurns(t *testing.T) {
	request := &relaymodel.ChatRequest{
		Messages: []relaymodel.Message{
			{Role: relaymodel.RoleAssistant, Content: "greeting"},
			{Role: relaymodel.RoleUser, Content: "hi"},
		},
	}

	converted, err := (&Adaptor{}).ConvertRequest(request, &meta.Meta{ModelName: "gemini-pro"})
	require.NoError(t, err)
	body := converted.(*Request)
	require.Len(t, body.Contents, 1)
	assert.Equal(t, "user", body.Contents[0].Role)
}

func TestConvertRequestRejectsHistoryWithoutUserTurn(t *testing.T) {
	request := &relaymodel.ChatRequest{
		Messages: []relaymodel.Message{
			{Role: relaymodel.RoleAssistant, Content: "alone"},
		},
	}

	_, err := (&Adaptor{}).ConvertRequest(request, &meta.Meta{ModelName: "gemini-pro"})
	assert.Error(t, err)
}

func TestConvertRequestVisionParts(t *testing.T) {
	request := &relaymodel.ChatRequest{
		Messages: []relaymodel.Message{
			{Role: relaymodel.RoleUser, Content: []any{
				map[string]any{"type": "text", "text": "what is this"},
				map[string]any{"type": "image_url", "image_url": map[string]any{"url": "data:image/webp;base64,ZGF0YQ=="}},
			}},
		},
	}

	converted, err := (&Adaptor{}).ConvertRequest(request, &meta.Meta{ModelName: "gemini-pro-vision"})
	require.NoError(t, err)
	body := converted.(*Request)
	require.Len(t, body.Contents, 1)
	require.Len(t, body.Contents[0].Parts, 2)
	assert.Equal(t, "what is this", body.Contents[0].Parts[0].Text)
	require.NotNil(t, body.Contents[0].Parts[1].InlineData)
	assert.Equal(t, "image/webp", body.Contents[0].Parts[1].InlineData.MimeType)
	assert.Equal(t, "ZGF0YQ==", body.Contents[0].Parts[1].InlineData.Data)
}

func TestParseResponse(t *testing.T) {
	body := `{"candidates":[{"content":{"role":"model","parts":[{"text":"salut"}]}}]}`
	msg, err := (&Adaptor{}).ParseResponse([]byte(body))
	require.NoError(t, err)
	assert.Equal(t, relaymodel.RoleAssistant, msg.Role)
	assert.Equal(t, "salut", msg.Content)
}

func TestParseResponseNoCandidates(t *testing.T) {
	msg, err := (&Adaptor{}).ParseResponse([]byte(`{"candidates":[]}`))
	require.NoError(t, err)
	assert.Empty(t, msg.Role)
	assert.Empty(t, msg.Content)
}

func TestInterpretEvent(t *testing.T) {
	a := &Adaptor{}

	action, err := a.InterpretEvent([]byte(`{"candidates":[{"content":{"role":"model","parts":[{"text":"hi"}]}}]}`))
	require.NoError(t, err)
	assert.True(t, action.HasText)
	assert.Equal(t, "hi", action.Text)

	action, err = a.InterpretEvent([]byte(`{"candidates":[]}`))
	require.NoError(t, err)
	assert.Equal(t, adaptor.StreamAction{}, action)

	_, err = a.InterpretEvent([]byte("{bad"))
	assert.Error(t, err)
}
