// Package bfm is the root of github.com/zombaio/bfm: Parse here is the
// thin line-oriented front end that drives a Writer, the way
// asn1c_go.Parse once drove the teacher's ASN.1 front end — read lines,
// hand something structured to a deeper encoder.
package bfm

import (
	"bufio"
	"encoding/hex"
	"io"
	"strconv"
	"strings"

	"github.com/pkg/errors"

	"github.com/zombaio/bfm/lib/bfm"
)

// ErrSyntax is returned for a line Parse cannot make sense of: an unknown
// instruction, a missing argument, or a malformed one.
var ErrSyntax = errors.New("bfm: script syntax error")

// Parse reads a token script from r, one instruction per line, and calls
// PutToken on w for each one in order. Blank lines and lines starting
// with '#' are ignored. The instruction grammar:
//
//	group-begin
//	group-end
//	end
//	int <decimal>
//	str <text, \\ \n \t escapes>
//	data <hex bytes>
//	cmd <mnemonic>
func Parse(r io.Reader, w *bfm.Writer) error {
	scanner := bufio.NewScanner(r)
	line := 0
	for scanner.Scan() {
		line++
		text := strings.TrimSpace(scanner.Text())
		if text == "" || strings.HasPrefix(text, "#") {
			continue
		}
		tok, err := parseLine(text)
		if err != nil {
			return errors.Wrapf(err, "bfm: line %d", line)
		}
		if err := w.PutToken(tok); err != nil {
			return errors.Wrapf(err, "bfm: line %d", line)
		}
	}
	if err := scanner.Err(); err != nil {
		return errors.Wrap(err, "bfm: failed to read script")
	}
	return nil
}

func parseLine(text string) (bfm.Token, error) {
	verb, rest, _ := strings.Cut(text, " ")
	rest = strings.TrimSpace(rest)

	switch verb {
	case "group-begin":
		return bfm.TokenGroupBegin(), nil
	case "group-end":
		return bfm.TokenGroupEnd(), nil
	case "end":
		return bfm.TokenEnd(), nil
	case "int":
		return parseIntLine(rest)
	case "str":
		return bfm.TokenString([]byte(unescapeScriptString(rest))), nil
	case "data":
		return parseDataLine(rest)
	case "cmd":
		return parseCmdLine(rest)
	default:
		return bfm.Token{}, errors.Wrapf(ErrSyntax, "unknown instruction %q", verb)
	}
}

func parseIntLine(rest string) (bfm.Token, error) {
	if rest == "" {
		return bfm.Token{}, errors.Wrap(ErrSyntax, "int requires a decimal argument")
	}
	v, err := strconv.ParseInt(rest, 10, 32)
	if err != nil {
		return bfm.Token{}, errors.Wrapf(ErrSyntax, "int: %v", err)
	}
	return bfm.TokenInteger(int32(v)), nil
}

func parseDataLine(rest string) (bfm.Token, error) {
	clean := strings.ReplaceAll(rest, " ", "")
	d, err := hex.DecodeString(clean)
	if err != nil {
		return bfm.Token{}, errors.Wrapf(ErrSyntax, "data: %v", err)
	}
	return bfm.TokenData(d), nil
}

func parseCmdLine(rest string) (bfm.Token, error) {
	if rest == "" {
		return bfm.Token{}, errors.Wrap(ErrSyntax, "cmd requires a mnemonic")
	}
	op, ok := bfm.LookupByName(rest)
	if !ok {
		return bfm.Token{}, errors.Wrapf(bfm.ErrUnknownOpcode, "cmd %q", rest)
	}
	return bfm.TokenCommand(op), nil
}

// unescapeScriptString resolves \\, \n, \t in a str instruction's text
// argument. It is distinct from lib/bfm.Unescape, which reverses the
// wire format's own delimiter escaping, not a script source's.
func unescapeScriptString(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for i := 0; i < len(s); i++ {
		if s[i] != '\\' || i+1 >= len(s) {
			b.WriteByte(s[i])
			continue
		}
		i++
		switch s[i] {
		case 'n':
			b.WriteByte('\n')
		case 't':
			b.WriteByte('\t')
		case '\\':
			b.WriteByte('\\')
		default:
			b.WriteByte('\\')
			b.WriteByte(s[i])
		}
	}
	return b.String()
}
