package channeltype

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFromModelName(t *testing.T) {
	assert.Equal(t, Anthropic, FromModelName("claude-3-opus"))
	assert.Equal(t, Gemini, FromModelName("gemini-pro"))
	assert.Equal(t, OpenAI, FromModelName("gpt-4"))
	assert.Equal(t, OpenAI, FromModelName("gpt-3.5-turbo"))
	assert.Equal(t, OpenAI, FromModelName("mistral-large"))
}

func TestName(t *testing.T) {
	assert.Equal(t, "openai", Name(OpenAI))
	assert.Equal(t, "anthropic", Name(Anthropic))
	assert.Equal(t, "gemini", Name(Gemini))
	assert.Equal(t, "unknown", Name(99))
}
