// Package bfm implements the BFM (Blip File Module) token writer: a state
// machine that groups argument tokens under a preceding command token and
// emits them, in either binary or text form, into a lib/bytebuffer.Buffer.
//
// # Dependencies
//
// Like lib/bytebuffer, this package imports only the standard library plus
// github.com/pkg/errors for wrapped sentinel errors, besides lib/bytebuffer
// itself. Logging belongs to the
// caller (cmd/bfmc); Writer only returns errors.
package bfm

// TokenKind identifies which variant of Token is populated.
type TokenKind int

const (
	KindGroupBegin TokenKind = iota
	KindGroupEnd
	KindEnd
	KindInteger
	KindString
	KindData
	KindCommand
)

// IsArgument reports whether a token of this kind is argument-bearing
// (Integer, String, Data) as opposed to structural-or-command. The writer's
// state machine only cares about this distinction.
func (k TokenKind) IsArgument() bool {
	return k == KindInteger || k == KindString || k == KindData
}

// Token is a tagged value fed to Writer.PutToken. Only the fields relevant
// to Kind are meaningful; the zero Token is GroupBegin, which is never
// useful as a literal — use the constructors below.
type Token struct {
	Kind    TokenKind
	Integer int32
	Bytes   []byte
	Opcode  Opcode
}

func TokenGroupBegin() Token { return Token{Kind: KindGroupBegin} }
func TokenGroupEnd() Token   { return Token{Kind: KindGroupEnd} }
func TokenEnd() Token        { return Token{Kind: KindEnd} }

func TokenInteger(v int32) Token { return Token{Kind: KindInteger, Integer: v} }
func TokenString(s []byte) Token { return Token{Kind: KindString, Bytes: s} }
func TokenData(d []byte) Token   { return Token{Kind: KindData, Bytes: d} }

// TokenCommand wraps a command opcode looked up via LookupByName or taken
// from one of the named Op constants.
func TokenCommand(op Opcode) Token { return Token{Kind: KindCommand, Opcode: op} }
