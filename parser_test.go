package bfm

import (
	"strings"
	"testing"

	"github.com/zombaio/bfm/lib/bfm"
)

func TestParseBasicScript(t *testing.T) {
	script := `
# a short volume + attack script
group-begin
cmd v
int 255
int 0
cmd a
group-end
`
	w, err := bfm.NewWriter(bfm.Text)
	if err != nil {
		t.Fatalf("NewWriter(Text) error = %v", err)
	}
	defer w.Dispose()

	if err := Parse(strings.NewReader(script), w); err != nil {
		t.Fatalf("Parse() error = %v", err)
	}

	want := "[:bfm:blip:1;[;v:255:0;a;]"
	if got := string(w.Bytes()); got != want {
		t.Errorf("Bytes() = %q, want %q", got, want)
	}
}

func TestParseStringAndDataLines(t *testing.T) {
	script := "str hello\\tworld\ndata 00 ff 10\n"

	w, err := bfm.NewWriter(bfm.Binary)
	if err != nil {
		t.Fatalf("NewWriter(Binary) error = %v", err)
	}
	defer w.Dispose()

	if err := Parse(strings.NewReader(script), w); err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	if w.Size() == 0 {
		t.Errorf("Size() = 0, want > 0 after two tokens")
	}
}

func TestParseUnknownInstruction(t *testing.T) {
	w, err := bfm.NewWriter(bfm.Binary)
	if err != nil {
		t.Fatalf("NewWriter(Binary) error = %v", err)
	}
	defer w.Dispose()

	if err := Parse(strings.NewReader("frobnicate\n"), w); err == nil {
		t.Errorf("Parse() on unknown instruction should fail")
	}
}

func TestParseUnknownMnemonic(t *testing.T) {
	w, err := bfm.NewWriter(bfm.Binary)
	if err != nil {
		t.Fatalf("NewWriter(Binary) error = %v", err)
	}
	defer w.Dispose()

	if err := Parse(strings.NewReader("cmd nope\n"), w); err == nil {
		t.Errorf("Parse() on unknown mnemonic should fail")
	}
}

func TestParseSkipsBlankAndCommentLines(t *testing.T) {
	w, err := bfm.NewWriter(bfm.Binary)
	if err != nil {
		t.Fatalf("NewWriter(Binary) error = %v", err)
	}
	defer w.Dispose()

	script := "\n# comment\n\nint 1\n"
	if err := Parse(strings.NewReader(script), w); err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	if w.Size() == 0 {
		t.Errorf("Size() = 0, want > 0")
	}
}

func TestParseMalformedInt(t *testing.T) {
	w, err := bfm.NewWriter(bfm.Binary)
	if err != nil {
		t.Fatalf("NewWriter(Binary) error = %v", err)
	}
	defer w.Dispose()

	if err := Parse(strings.NewReader("int not-a-number\n"), w); err == nil {
		t.Errorf("Parse() on malformed int should fail")
	}
}
