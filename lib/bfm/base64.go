package bfm

import "encoding/base64"

// EncodeBase64 encodes d with the standard padded alphabet, no line
// wrapping, no whitespace — exactly encoding/base64.StdEncoding, which is
// this spec's "standard alphabet, padding =" by construction. No pack
// example rolls its own base64; the standard library's is the canonical
// choice every Go program reaches for.
func EncodeBase64(d []byte) string {
	return base64.StdEncoding.EncodeToString(d)
}

// DecodeBase64 reverses EncodeBase64.
func DecodeBase64(s string) ([]byte, error) {
	return base64.StdEncoding.DecodeString(s)
}
