package codec

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEncode(t *testing.T) {
	tests := []struct {
		name  string
		input []byte
		want  string
	}{
		{name: "empty input", input: nil, want: ""},
		{name: "classic three bytes", input: []byte{0x4D, 0x61, 0x6E}, want: "TWFu"},
		{name: "two bytes pads once", input: []byte("Ma"), want: "TWE="},
		{name: "one byte pads twice", input: []byte("M"), want: "TQ=="},
		{name: "ascii text", input: []byte("abc"), want: "YWJj"},
		{name: "binary with high bytes", input: []byte{0xff, 0x00, 0xab, 0xcd}, want: "/wCrzQ=="},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Encode(tt.input))
		})
	}
}

func TestEncode_LengthMultipleOfFour(t *testing.T) {
	for n := 1; n <= 32; n++ {
		data := make([]byte, n)
		for i := range data {
			data[i] = byte(i * 7)
		}
		assert.Equal(t, 0, len(Encode(data))%4, "length %d", n)
	}
}

func TestDecode(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    []byte
		wantErr bool
	}{
		{name: "empty input", input: "", want: []byte{}},
		{name: "classic four chars", input: "TWFu", want: []byte{0x4D, 0x61, 0x6E}},
		{name: "single padding", input: "TWE=", want: []byte("Ma")},
		{name: "double padding", input: "TQ==", want: []byte("M")},
		{name: "embedded spaces", input: "YW J j", want: []byte("abc")},
		{name: "embedded newlines", input: "YW\nJj\r\n", want: []byte("abc")},
		{name: "payload after pad is ignored", input: "TWE=TWFu", want: []byte("Ma")},
		{name: "invalid character", input: "abc!", wantErr: true},
		{name: "invalid tab", input: "YW\tJj", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Decode(tt.input)
			if tt.wantErr {
				require.Error(t, err)
				var invErr *InvalidCharacterError
				require.ErrorAs(t, err, &invErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestDecode_WhitespaceDoesNotChangeSemantics(t *testing.T) {
	plain, err := Decode("YWJj")
	require.NoError(t, err)

	spaced, err := Decode("YW J j")
	require.NoError(t, err)

	assert.Equal(t, plain, spaced)
}

func TestDecode_InvalidCharacterReportsPosition(t *testing.T) {
	_, err := Decode("abc!")
	var invErr *InvalidCharacterError
	require.ErrorAs(t, err, &invErr)
	assert.Equal(t, byte('!'), invErr.Char)
	assert.Equal(t, 3, invErr.Pos)
	assert.Contains(t, invErr.Error(), "'!'")
}

func TestRoundTrip(t *testing.T) {
	inputs := [][]byte{
		{},
		{0x00},
		{0xff},
		[]byte("hello, world"),
		{0x00, 0x01, 0x02, 0x03, 0x04, 0x05, 0x06, 0x07},
		[]byte(strings.Repeat("visage", 100)),
	}

	for _, in := range inputs {
		got, err := Decode(Encode(in))
		require.NoError(t, err)
		assert.Equal(t, in, append([]byte{}, got...))
	}
}
