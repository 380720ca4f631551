package relay

import (
	"github.com/chatpp/relay/relay/adaptor"
	"github.com/chatpp/relay/relay/adaptor/anthropic"
	"github.com/chatpp/relay/relay/adaptor/gemini"
	"github.com/chatpp/relay/relay/adaptor/openai"
	"github.com/chatpp/relay/relay/channeltype"
)

// GetAdaptor returns the provider adaptor for a channel type. Unknown channel
// types resolve to the OpenAI-compatible adaptor.
func GetAdaptor(channelType int) adaptor.Adaptor {
	switch channelType {
	case channeltype.Anthropic:
		return &anthropic.Adaptor{}
	case channeltype.Gemini:
		return &gemini.Adaptor{}
	default:
		return &openai.Adaptor{}
	}
}
