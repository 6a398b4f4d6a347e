package bytebuf

import (
	"bytes"
	"strings"
	"testing"
)

func TestTransformRoundTrip(t *testing.T) {
	payload := []byte("binary payload \x00\x01\xFE\xFF with high bytes")
	tests := []struct {
		name string
		tr   Transform
	}{
		{"plain", Transform{}},
		{"uri", Transform{URIEncoded: true}},
		{"lz", Transform{LZCompressed: true}},
		{"case+lz", Transform{CaseSwapped: true, LZCompressed: true}},
		{"all", Transform{URIEncoded: true, CaseSwapped: true, LZCompressed: true}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, err := EncodeBase64(payload, tt.tr)
			if err != nil {
				t.Fatalf("EncodeBase64: %v", err)
			}
			got, err := DecodeBase64(s, tt.tr)
			if err != nil {
				t.Fatalf("DecodeBase64: %v", err)
			}
			if !bytes.Equal(got, payload) {
				t.Errorf("round trip = % x, want % x", got, payload)
			}
		})
	}
}

func TestSwapCaseFirstChunkOnly(t *testing.T) {
	s := strings.Repeat("aB", 60) // 120 chars, swap region ends at 101
	got := swapCase(s, caseSwapLen)
	if got[:4] != "AbAb" {
		t.Errorf("head = %q", got[:4])
	}
	if got[101:105] != "BaBa" {
		t.Errorf("tail unchanged check = %q", got[101:105])
	}
	if swapCase(swapCase(s, caseSwapLen), caseSwapLen) != s {
		t.Error("swapCase is not an involution")
	}
}

func TestURIEscape(t *testing.T) {
	if got := uriEscape("aZ09-_.~/"); got != "aZ09-_.~/" {
		t.Errorf("safe set escaped: %q", got)
	}
	if got := uriEscape("a+b=c"); got != "a%2Bb%3Dc" {
		t.Errorf("uriEscape = %q", got)
	}
}

func TestFromBase64Reader(t *testing.T) {
	b := New(BigEndian)
	b.WriteUint16(0x1234)
	b.WriteUTF("hello")
	s, err := b.ToBase64(Transform{LZCompressed: true})
	if err != nil {
		t.Fatal(err)
	}

	r, err := FromBase64(s, BigEndian, Transform{LZCompressed: true})
	if err != nil {
		t.Fatal(err)
	}
	if v, _ := r.ReadUint16(); v != 0x1234 {
		t.Errorf("uint16 = %#x", v)
	}
	if v, _ := r.ReadUTF(); v != "hello" {
		t.Errorf("utf = %q", v)
	}
}
