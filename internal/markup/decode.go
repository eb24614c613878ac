package markup

import (
	"golang.org/x/text/encoding/unicode"
)

// Decode interprets raw bytes as UTF-8, substituting U+FFFD for invalid sequences.
// A byte order mark is kept as text, matching a plain UTF-8 read.
func Decode(raw []byte) string {
	decoded, decodeError := unicode.UTF8.NewDecoder().Bytes(raw)
	if decodeError != nil {
		return string(raw)
	}
	return string(decoded)
}
