package bfm

import (
	"bytes"
	"testing"
)

func TestBase64RoundTrip(t *testing.T) {
	cases := [][]byte{
		nil,
		[]byte{},
		[]byte("f"),
		[]byte("fo"),
		[]byte("foo"),
		[]byte("foob"),
		[]byte("fooba"),
		[]byte("foobar"),
		{0x00, 0xff, 0x10, 0x80},
	}

	for _, c := range cases {
		encoded := EncodeBase64(c)
		got, err := DecodeBase64(encoded)
		if err != nil {
			t.Fatalf("DecodeBase64(EncodeBase64(%v)) error = %v", c, err)
		}
		if !bytes.Equal(got, c) && !(len(got) == 0 && len(c) == 0) {
			t.Errorf("DecodeBase64(EncodeBase64(%v)) = %v, want %v", c, got, c)
		}
	}
}

func TestBase64PaddingBoundaries(t *testing.T) {
	cases := []struct {
		in       []byte
		wantLen  int
		wantPads int
	}{
		{[]byte("f"), 4, 2},
		{[]byte("fo"), 4, 1},
		{[]byte("foo"), 4, 0},
	}

	for _, c := range cases {
		encoded := EncodeBase64(c.in)
		if len(encoded) != c.wantLen {
			t.Errorf("len(EncodeBase64(%q)) = %d, want %d", c.in, len(encoded), c.wantLen)
		}
		pads := 0
		for i := len(encoded) - 1; i >= 0 && encoded[i] == '='; i-- {
			pads++
		}
		if pads != c.wantPads {
			t.Errorf("EncodeBase64(%q) has %d padding chars, want %d", c.in, pads, c.wantPads)
		}
	}
}

func TestDecodeBase64Invalid(t *testing.T) {
	if _, err := DecodeBase64("not valid base64!!"); err == nil {
		t.Errorf("DecodeBase64 on invalid input should fail")
	}
}
