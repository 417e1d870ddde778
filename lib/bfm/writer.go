package bfm

import (
	"strconv"

	"github.com/pkg/errors"

	"github.com/zombaio/bfm/lib/bytebuffer"
)

// Format selects the wire variant a Writer emits.
type Format int

const (
	Binary Format = iota
	Text
)

var (
	// ErrUnknownOpcode is returned when a command token has no mnemonic
	// entry and the writer is in Text format.
	ErrUnknownOpcode = errors.New("bfm: unknown opcode")
	// ErrInvalidFormat is returned by NewWriter for an unrecognized Format.
	ErrInvalidFormat = errors.New("bfm: invalid writer format")
)

// ParseFormat resolves a command-line format name ("binary" or "text") to a
// Format, for CLI front ends such as cmd/bfmc.
func ParseFormat(s string) (Format, error) {
	switch s {
	case "binary":
		return Binary, nil
	case "text":
		return Text, nil
	default:
		return 0, errors.Wrapf(ErrInvalidFormat, "unrecognized format %q", s)
	}
}

type writerFlag uint

const (
	flagMagicWritten writerFlag = 1 << iota
	flagArgWritten
	flagCmdWritten
)

// Writer consumes a sequence of Token values, tracks a tiny state machine
// (magic-written, command-written, arg-written), and emits bytes into an
// owned bytebuffer.Buffer in the configured Format. A Writer is not
// thread-safe; one goroutine drives one Writer.
type Writer struct {
	format Format
	flags  writerFlag
	buffer *bytebuffer.Buffer
}

// NewWriter allocates a Writer with its own ContinuousStorage buffer — a
// single growable segment, the natural shape for an encoder whose output
// is flushed as one contiguous blob once finished.
func NewWriter(format Format) (*Writer, error) {
	if format != Binary && format != Text {
		return nil, errors.Wrap(ErrInvalidFormat, "bfm: unrecognized writer format")
	}
	buf, err := bytebuffer.New(0, bytebuffer.ContinuousStorage)
	if err != nil {
		return nil, errors.Wrap(err, "bfm: failed to allocate writer buffer")
	}
	return &Writer{format: format, buffer: buf}, nil
}

// Dispose releases the writer's buffer. A writer whose NewWriter returned
// an error must not be disposed.
func (w *Writer) Dispose() {
	w.buffer.Dispose()
}

// Bytes returns the writer's emitted stream so far.
func (w *Writer) Bytes() []byte {
	return w.buffer.GetBytes()
}

// Size returns the number of bytes emitted so far.
func (w *Writer) Size() int {
	return w.buffer.GetSize()
}

// PutToken advances the writer's state machine by one token, emitting the
// magic prelude first if this is the writer's first call. A failure
// (allocation failure, unknown opcode in text mode) invalidates the
// writer's buffer — per the wire contract, there is no rollback of a
// partially emitted token, and the separator state has already advanced by
// the time an unknown-opcode error is returned.
func (w *Writer) PutToken(t Token) error {
	if w.flags&flagMagicWritten == 0 {
		w.flags |= flagMagicWritten
		for _, m := range magicPrelude {
			if err := w.putTokenRaw(m); err != nil {
				return errors.Wrap(err, "bfm: failed to emit magic prelude")
			}
		}
	}
	return w.putTokenRaw(t)
}

var magicPrelude = []Token{
	TokenGroupBegin(),
	TokenString([]byte("bfm")),
	TokenString([]byte("blip")),
	TokenInteger(1),
}

// putTokenRaw runs the separator FSM and emits one token, with no magic
// guard. GroupBegin is treated like a command opcode for flagCmdWritten
// purposes: opening a group establishes a pending context exactly like a
// command awaiting its first argument, which is what makes the prelude
// itself render as "[:bfm:blip:1" rather than "[bfm:blip:1".
func (w *Writer) putTokenRaw(t Token) error {
	isArg := t.Kind.IsArgument()
	pending := w.flags&(flagArgWritten|flagCmdWritten) != 0

	if pending {
		if isArg {
			if err := w.emitSeparator(':'); err != nil {
				return err
			}
			w.flags &^= flagArgWritten
		} else {
			if err := w.emitSeparator(';'); err != nil {
				return err
			}
			w.flags &^= flagArgWritten | flagCmdWritten
		}
	}

	if err := w.emitToken(t); err != nil {
		return err
	}

	switch {
	case isArg:
		w.flags |= flagArgWritten
	case t.Kind == KindCommand || t.Kind == KindGroupBegin:
		w.flags |= flagCmdWritten
	}

	return nil
}

// emitSeparator writes the given text-form separator byte; binary format
// has no separator bytes, so this is a no-op there.
func (w *Writer) emitSeparator(c byte) error {
	if w.format != Text {
		return nil
	}
	return w.writeRaw([]byte{c})
}

func (w *Writer) emitToken(t Token) error {
	if w.format == Text {
		return w.emitTextToken(t)
	}
	return w.emitBinaryToken(t)
}

func (w *Writer) emitBinaryToken(t Token) error {
	switch t.Kind {
	case KindGroupBegin:
		return w.writeVarint(int32(OpGroupBegin))
	case KindGroupEnd, KindEnd:
		return w.writeVarint(int32(OpGroupEnd))
	case KindInteger:
		if err := w.writeVarint(int32(OpInteger)); err != nil {
			return err
		}
		return w.writeVarint(t.Integer)
	case KindString:
		return w.emitBinaryBytes(OpString, t.Bytes)
	case KindData:
		return w.emitBinaryBytes(OpData, t.Bytes)
	case KindCommand:
		return w.writeVarint(int32(t.Opcode))
	}
	return nil
}

func (w *Writer) emitBinaryBytes(typeCode Opcode, data []byte) error {
	if err := w.writeVarint(int32(typeCode)); err != nil {
		return err
	}
	if err := w.writeVarint(int32(len(data))); err != nil {
		return err
	}
	return w.writeRaw(data)
}

func (w *Writer) emitTextToken(t Token) error {
	switch t.Kind {
	case KindGroupBegin:
		return w.writeRaw([]byte{'['})
	case KindGroupEnd, KindEnd:
		return w.writeRaw([]byte{']'})
	case KindInteger:
		return w.writeRaw([]byte(strconv.FormatInt(int64(t.Integer), 10)))
	case KindString:
		return w.writeRaw(Escape(t.Bytes))
	case KindData:
		out := make([]byte, 0, 1+((len(t.Bytes)+2)/3)*4)
		out = append(out, '!')
		out = append(out, []byte(EncodeBase64(t.Bytes))...)
		return w.writeRaw(out)
	case KindCommand:
		mnemonic, ok := LookupByValue(t.Opcode)
		if !ok {
			return errors.Wrap(ErrUnknownOpcode, "bfm: command opcode has no mnemonic")
		}
		return w.writeRaw([]byte(mnemonic))
	}
	return nil
}

func (w *Writer) writeVarint(v int32) error {
	return w.writeRaw(EncodeVarint(nil, v))
}

func (w *Writer) writeRaw(b []byte) error {
	_, err := w.buffer.WriteBytes(b)
	if err != nil {
		return errors.Wrap(err, "bfm: buffer write failed")
	}
	return nil
}
