package controller

import "regexp"

// Upstream auth errors echo the API key ("Incorrect API key provided: sk-...
// You can find your key..."); scrub it before the text reaches a caller.
var providedKeyPattern = regexp.MustCompile(`provided:.*. You`)

func RedactAPIKey(s string) string {
	return providedKeyPattern.ReplaceAllString(s, "provided: ***. You")
}

// Streaming callers render the body as markdown, so upstream error text is
// wrapped in a fenced code block instead of an HTTP failure. A historical
// compatibility quirk, kept deliberately.
func fencedStreamError(content string) string {
	return "```json\nERROR: Stream error!\n" + content + "\n```"
}

func fencedFetchError(content string) string {
	return "```json\nERROR: Fetch error!\n" + content + "\n```"
}
