package bfm

import (
	"bytes"
	"testing"
)

func TestEscapeCoversAllDelimiters(t *testing.T) {
	in := []byte(`a"b:c;d!e\f`)
	want := []byte(`a\"b\:c\;d\!e\\f`)
	got := Escape(in)
	if !bytes.Equal(got, want) {
		t.Errorf("Escape(%q) = %q, want %q", in, got, want)
	}
}

func TestEscapeLeavesOrdinaryBytesAlone(t *testing.T) {
	in := []byte("plain text with spaces and 123")
	got := Escape(in)
	if !bytes.Equal(got, in) {
		t.Errorf("Escape(%q) = %q, want unchanged", in, got)
	}
}

func TestEscapeUnescapeRoundTrip(t *testing.T) {
	cases := [][]byte{
		[]byte(""),
		[]byte("no special chars"),
		[]byte(`"bfm":blip;1!done\`),
		[]byte(`\\\\`),
	}
	for _, c := range cases {
		got := Unescape(Escape(c))
		if !bytes.Equal(got, c) {
			t.Errorf("Unescape(Escape(%q)) = %q, want %q", c, got, c)
		}
	}
}

func TestUnescapeTrailingBackslash(t *testing.T) {
	got := Unescape([]byte(`abc\`))
	want := []byte(`abc\`)
	if !bytes.Equal(got, want) {
		t.Errorf("Unescape(trailing backslash) = %q, want %q", got, want)
	}
}
