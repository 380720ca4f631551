package adaptor

import "strings"

// ResolveBaseURL turns a configured upstream host into a full origin. Values
// already carrying a scheme are used as-is; bare hosts get the configured
// protocol prepended. Trailing slashes are trimmed so paths can be appended.
func ResolveBaseURL(baseURL, protocol string) string {
	if !strings.HasPrefix(baseURL, "http") {
		baseURL = protocol + "://" + baseURL
	}
	return strings.TrimSuffix(baseURL, "/")
}
