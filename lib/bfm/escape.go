package bfm

// escapedChars are the bytes that earn a backslash prefix in text-form
// String tokens: the two token delimiters (: ;), the data-blob marker (!),
// the quote character (" — never actually used as a delimiter here, but
// escaped anyway per the wire contract), and the escape character itself.
const escapedChars = "\":;!\\"

func needsEscape(c byte) bool {
	for i := 0; i < len(escapedChars); i++ {
		if escapedChars[i] == c {
			return true
		}
	}
	return false
}

// Escape backslash-escapes ", :, ;, !, and \ in s. No other byte — not
// control bytes, not non-ASCII — is touched. The result is never
// quote-wrapped; unambiguous placement relies on the surrounding writer FSM
// (see Writer), not on escaping alone.
func Escape(s []byte) []byte {
	out := make([]byte, 0, len(s))
	for _, c := range s {
		if needsEscape(c) {
			out = append(out, '\\')
		}
		out = append(out, c)
	}
	return out
}

// Unescape reverses Escape: a backslash drops out of the output and the
// byte following it is copied literally, whatever it is. A trailing
// backslash with nothing after it is copied as-is.
func Unescape(s []byte) []byte {
	out := make([]byte, 0, len(s))
	for i := 0; i < len(s); i++ {
		if s[i] == '\\' && i+1 < len(s) {
			i++
			out = append(out, s[i])
			continue
		}
		out = append(out, s[i])
	}
	return out
}
