package image

import (
	"regexp"

	"github.com/Laisky/errors/v2"
)

// Regex to match data URL pattern
var dataURLPattern = regexp.MustCompile(`^data:([^;]+);base64,(.*)$`)

// PlaceholderMimeType and PlaceholderData stand in for image parts whose data
// URL cannot be parsed. Degrading to a placeholder keeps the rest of the
// request usable instead of failing the whole call over one bad attachment.
const (
	PlaceholderMimeType = "image/png"
	PlaceholderData     = "EMPTY"
)

// DecodeDataURL splits a data:<mime>;base64,<data> URL into its mime type and
// raw base64 payload.
func DecodeDataURL(url string) (mimeType string, data string, err error) {
	match := dataURLPattern.FindStringSubmatch(url)
	if len(match) != 3 {
		return "", "", errors.Errorf("malformed data URL (len=%d)", len(url))
	}
	return match[1], match[2], nil
}

// DecodeDataURLOrPlaceholder never fails: malformed URLs yield the placeholder
// image so upstream requests degrade instead of erroring.
func DecodeDataURLOrPlaceholder(url string) (mimeType string, data string) {
	mimeType, data, err := DecodeDataURL(url)
	if err != nil {
		return PlaceholderMimeType, PlaceholderData
	}
	return mimeType, data
}
