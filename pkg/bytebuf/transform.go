package bytebuf

import (
	"encoding/base64"
	"fmt"
	"net/url"

	lzstring "github.com/daku10/go-lz-string"
)

// caseSwapLen is the number of leading characters whose ASCII case is
// flipped by the game's string obfuscation step.
const caseSwapLen = 101

// Transform selects the obfuscation steps applied around the base64 form of
// a buffer. The game composes up to three of them depending on context:
// map blobs are lz-compressed, game state adds a case swap, and avatars are
// only percent-encoded.
type Transform struct {
	URIEncoded   bool
	CaseSwapped  bool
	LZCompressed bool
}

// DecodeBase64 reverses a transformed base64 string back into raw bytes.
// Steps run in decode order: percent-decode, case swap, lz-string
// decompression, then plain base64 decoding.
func DecodeBase64(s string, t Transform) ([]byte, error) {
	if t.URIEncoded {
		u, err := url.PathUnescape(s)
		if err != nil {
			return nil, fmt.Errorf("bytebuf: percent-decode: %w", err)
		}
		s = u
	}
	if t.CaseSwapped {
		s = swapCase(s, caseSwapLen)
	}
	if t.LZCompressed {
		d, err := lzstring.DecompressFromEncodedURIComponent(s)
		if err != nil {
			return nil, fmt.Errorf("bytebuf: lz-string decompress: %w", err)
		}
		s = d
	}
	p, err := base64.StdEncoding.DecodeString(s)
	if err != nil {
		// Some producers strip padding.
		p, err = base64.RawStdEncoding.DecodeString(s)
		if err != nil {
			return nil, fmt.Errorf("bytebuf: base64 decode: %w", err)
		}
	}
	return p, nil
}

// EncodeBase64 encodes raw bytes into a transformed base64 string by
// applying the inverse steps of DecodeBase64 in reverse order.
func EncodeBase64(p []byte, t Transform) (string, error) {
	s := base64.StdEncoding.EncodeToString(p)
	if t.LZCompressed {
		c, err := lzstring.CompressToEncodedURIComponent(s)
		if err != nil {
			return "", fmt.Errorf("bytebuf: lz-string compress: %w", err)
		}
		s = c
	}
	if t.CaseSwapped {
		s = swapCase(s, caseSwapLen)
	}
	if t.URIEncoded {
		s = uriEscape(s)
	}
	return s, nil
}

// FromBase64 decodes a transformed base64 string into a read-positioned
// buffer with the given byte order.
func FromBase64(s string, order Order, t Transform) (*ByteBuffer, error) {
	p, err := DecodeBase64(s, t)
	if err != nil {
		return nil, err
	}
	return NewReader(p, order), nil
}

// ToBase64 encodes the buffer's full contents as a transformed base64
// string.
func (b *ByteBuffer) ToBase64(t Transform) (string, error) {
	return EncodeBase64(b.Bytes(), t)
}

// swapCase flips the ASCII case of the first n characters of s.
func swapCase(s string, n int) string {
	p := []byte(s)
	if n > len(p) {
		n = len(p)
	}
	for i := 0; i < n; i++ {
		switch c := p[i]; {
		case c >= 'a' && c <= 'z':
			p[i] = c - 'a' + 'A'
		case c >= 'A' && c <= 'Z':
			p[i] = c - 'A' + 'a'
		}
	}
	return string(p)
}

// uriEscape percent-encodes every character outside the unreserved set and
// '/', matching the escaping the web client applies to avatar strings.
func uriEscape(s string) string {
	const hex = "0123456789ABCDEF"
	var out []byte
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch {
		case c >= 'a' && c <= 'z', c >= 'A' && c <= 'Z', c >= '0' && c <= '9',
			c == '-', c == '_', c == '.', c == '~', c == '/':
			out = append(out, c)
		default:
			out = append(out, '%', hex[c>>4], hex[c&0x0F])
		}
	}
	return string(out)
}
