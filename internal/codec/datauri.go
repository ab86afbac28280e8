package codec

import "strings"

// Data-URI prefixes accepted on decode. Encoding always states the actual
// MIME type; decoding tolerates either so clients may echo payloads back.
var dataURIPrefixes = []string{
	"data:image/jpeg;base64,",
	"data:image/png;base64,",
}

// FormatDataURI wraps encoded bytes into a data URI for the given MIME type,
// e.g. "data:image/jpeg;base64,<payload>".
func FormatDataURI(mime string, data []byte) string {
	return "data:" + mime + ";base64," + Encode(data)
}

// StripDataURIPrefix removes a known data-URI prefix if present, returning
// the bare payload text. Unprefixed input is returned unchanged.
func StripDataURIPrefix(s string) string {
	for _, p := range dataURIPrefixes {
		if rest, ok := strings.CutPrefix(s, p); ok {
			return rest
		}
	}
	return s
}

// DecodeDataURI strips an optional data-URI prefix and decodes the payload.
func DecodeDataURI(s string) ([]byte, error) {
	return Decode(StripDataURIPrefix(s))
}
