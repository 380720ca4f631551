package channeltype

import "strings"

const (
	OpenAI = iota
	Anthropic
	Gemini
)

var names = map[int]string{
	OpenAI:    "openai",
	Anthropic: "anthropic",
	Gemini:    "gemini",
}

func Name(channelType int) string {
	if name, ok := names[channelType]; ok {
		return name
	}
	return "unknown"
}

// FromModelName dispatches a canonical model identifier to its vendor by
// prefix. Unrecognized models fall through to the OpenAI-compatible channel,
// which is the de-facto lingua franca of hosted deployments.
func FromModelName(modelName string) int {
	switch {
	case strings.HasPrefix(modelName, "claude"):
		return Anthropic
	case strings.HasPrefix(modelName, "gemini"):
		return Gemini
	default:
		return OpenAI
	}
}
