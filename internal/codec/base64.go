// Package codec implements the binary-to-text transport encoding used to move
// image payloads across JSON and WebSocket boundaries.
package codec

import "fmt"

// alphabet is the 64-symbol encoding table, index 0..63.
const alphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789+/"

// padChar terminates partial trailing groups in encoded output.
const padChar = '='

// InvalidCharacterError reports a byte outside the alphabet, padding and
// tolerated whitespace during decoding.
type InvalidCharacterError struct {
	Char byte
	Pos  int
}

func (e *InvalidCharacterError) Error() string {
	return fmt.Sprintf("codec: invalid character %q at offset %d", e.Char, e.Pos)
}

// Encode converts data to its text form, 4 output characters per 3 input
// bytes, padding trailing groups with '='. Empty input yields an empty
// string with no padding. Output length is always a multiple of 4 for
// non-empty input.
func Encode(data []byte) string {
	if len(data) == 0 {
		return ""
	}

	out := make([]byte, 0, ((len(data)+2)/3)*4)
	for i := 0; i < len(data); i += 3 {
		var group [3]byte
		filled := copy(group[:], data[i:])

		out = append(out,
			alphabet[group[0]>>2],
			alphabet[(group[0]&0x03)<<4|group[1]>>4])

		if filled >= 2 {
			out = append(out, alphabet[(group[1]&0x0f)<<2|group[2]>>6])
		} else {
			out = append(out, padChar)
		}

		if filled >= 3 {
			out = append(out, alphabet[group[2]&0x3f])
		} else {
			out = append(out, padChar)
		}
	}
	return string(out)
}

// Decode converts text back to bytes. ASCII space, '\n' and '\r' are skipped
// anywhere in the input. The first '=' ends the payload regardless of what
// follows; padding position and count are deliberately not validated so the
// decoder stays bit-compatible with encoders that emit sloppy padding.
// Any other byte outside the alphabet returns *InvalidCharacterError.
func Decode(text string) ([]byte, error) {
	out := make([]byte, 0, len(text)/4*3)
	var buffer uint32
	bits := 0

	for i := 0; i < len(text); i++ {
		ch := text[i]
		if ch == ' ' || ch == '\n' || ch == '\r' {
			continue
		}
		if ch == padChar {
			break
		}

		var value uint32
		switch {
		case ch >= 'A' && ch <= 'Z':
			value = uint32(ch - 'A')
		case ch >= 'a' && ch <= 'z':
			value = uint32(ch-'a') + 26
		case ch >= '0' && ch <= '9':
			value = uint32(ch-'0') + 52
		case ch == '+':
			value = 62
		case ch == '/':
			value = 63
		default:
			return nil, &InvalidCharacterError{Char: ch, Pos: i}
		}

		buffer = buffer<<6 | value
		bits += 6
		if bits >= 8 {
			bits -= 8
			out = append(out, byte(buffer>>uint(bits)))
		}
	}
	return out, nil
}
