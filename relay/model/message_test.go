package model

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMessageStringContent(t *testing.T) {
	msg := Message{Role: RoleUser, Content: "hello"}
	assert.True(t, msg.IsStringContent())
	assert.Equal(t, "hello", msg.StringContent())

	// Multi-part bodies flatten to their text parts; images are dropped.
	raw := `{"role":"user","content":[
		{"type":"text","text":"what is "},
		{"type":"image_url","image_url":{"url":"data:image/png;base64,AAAA"}},
		{"type":"text","text":"this"}
	]}`
	require.NoError(t, json.Unmarshal([]byte(raw), &msg))
	assert.False(t, msg.IsStringContent())
	assert.Equal(t, "what is this", msg.StringContent())
}

func TestMessageParseParts(t *testing.T) {
	msg := Message{Role: RoleUser, Content: "plain"}
	assert.Nil(t, msg.ParseParts())

	raw := `{"role":"user","content":[
		{"type":"text","text":"look"},
		{"type":"image_url","image_url":{"url":"data:image/jpeg;base64,QUJD","detail":"low"}}
	]}`
	require.NoError(t, json.Unmarshal([]byte(raw), &msg))

	parts := msg.ParseParts()
	require.Len(t, parts, 2)
	assert.Equal(t, ContentTypeText, parts[0].Type)
	assert.Equal(t, "look", parts[0].Text)
	require.Equal(t, ContentTypeImageURL, parts[1].Type)
	require.NotNil(t, parts[1].ImageURL)
	assert.Equal(t, "data:image/jpeg;base64,QUJD", parts[1].ImageURL.Url)
	assert.Equal(t, "low", parts[1].ImageURL.Detail)
}
