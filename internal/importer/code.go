package importer

import "crypto/rand"

// codeAlphabet excludes the visually ambiguous characters I, O, 0 and 1 so
// codes survive being read aloud at check-in.
const codeAlphabet = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"

// codeLength is the fixed registration code length.
const codeLength = 9

// NewRegistrationCode returns a fresh check-in code drawn uniformly from
// codeAlphabet. The alphabet size divides 256, so a plain modulus is unbiased.
func NewRegistrationCode() string {
	buf := make([]byte, codeLength)
	if _, err := rand.Read(buf); err != nil {
		// crypto/rand never fails on supported platforms.
		panic("importer: reading random bytes: " + err.Error())
	}
	for i, b := range buf {
		buf[i] = codeAlphabet[int(b)%len(codeAlphabet)]
	}
	return string(buf)
}
