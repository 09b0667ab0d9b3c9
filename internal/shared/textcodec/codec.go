package textcodec

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"strings"
	"unicode/utf8"

	"github.com/cloudwego/base64x"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/transform"
)

// binaryChunkSize is the largest buffer converted to a binary string in one
// bulk call. Larger buffers go through the streaming loop.
const binaryChunkSize = 0x8000

var (
	ErrInvalidBase64   = errors.New("invalid base64 content")
	ErrNotBinaryString = errors.New("string contains code points above 0xFF")
)

// DecodeUTF8 decodes b as UTF-8. Input that is not valid UTF-8 takes the
// legacy path instead. Browsers ran that path as
// decodeURIComponent(escape(binaryString)), which percent-encodes every byte
// and decodes it again, so it is applied here directly on the bytes: runs
// that form valid UTF-8 decode normally and every other byte becomes the
// Latin-1 character with the same value. The result can differ from what a
// replacing UTF-8 decoder would produce for the same input.
func DecodeUTF8(b []byte) string {
	if utf8.Valid(b) {
		return string(b)
	}
	return decodeLenient(b)
}

// ToBase64 encodes b with the standard padded alphabet
func ToBase64(b []byte) string {
	return base64x.StdEncoding.EncodeToString(b)
}

// FromBase64 decodes standard base64. ASCII whitespace is ignored and
// missing padding is accepted.
func FromBase64(s string) ([]byte, error) {
	s = stripASCIIWhitespace(s)
	if len(s)%4 == 0 {
		s = strings.TrimSuffix(s, "=")
		s = strings.TrimSuffix(s, "=")
	}
	if len(s)%4 == 1 {
		return nil, fmt.Errorf("%w: length %d", ErrInvalidBase64, len(s))
	}

	out, err := base64x.RawStdEncoding.DecodeString(s)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidBase64, err)
	}
	return out, nil
}

// ToBinaryString maps every byte of b to the code point of the same value
func ToBinaryString(b []byte) string {
	if len(b) <= binaryChunkSize {
		out, err := charmap.ISO8859_1.NewDecoder().Bytes(b)
		if err == nil {
			return string(out)
		}
	}
	return binaryStringStreaming(b)
}

// FromBinaryString is the inverse of ToBinaryString
func FromBinaryString(s string) ([]byte, error) {
	for i, r := range s {
		if r > 0xFF {
			return nil, fmt.Errorf("%w: U+%04X at byte %d", ErrNotBinaryString, r, i)
		}
	}
	return charmap.ISO8859_1.NewEncoder().Bytes([]byte(s))
}

func binaryStringStreaming(b []byte) string {
	var sb strings.Builder
	// Latin-1 code points above 0x7F take two bytes in UTF-8.
	sb.Grow(len(b) * 2)

	r := transform.NewReader(bytes.NewReader(b), charmap.ISO8859_1.NewDecoder())
	if _, err := io.CopyBuffer(&sb, r, make([]byte, binaryChunkSize)); err != nil {
		sb.Reset()
		for _, c := range b {
			sb.WriteRune(rune(c))
		}
	}
	return sb.String()
}

func stripASCIIWhitespace(s string) string {
	if strings.IndexAny(s, " \t\n\f\r") < 0 {
		return s
	}
	var sb strings.Builder
	sb.Grow(len(s))
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case ' ', '\t', '\n', '\f', '\r':
		default:
			sb.WriteByte(s[i])
		}
	}
	return sb.String()
}
