package crypto

import (
	"crypto/sha256"
	"fmt"

	"github.com/greenorbit/phaseout/internal/rand"
)

var seededRand = rand.NewSeeded()

// ShortSHA returns a truncated hex encoding of the SHA-256 sum of the
// specified input, optionally salted.
func ShortSHA(salt, input string) string {
	if salt != "" {
		input = fmt.Sprintf("%s:%s", salt, input)
	}
	sum := sha256.Sum256([]byte(input))
	return fmt.Sprintf("%x", sum)[0:54]
}

// NewToken returns a random token of the specified length. Tokens are not
// guaranteed unique, although a collision would be extraordinary.
func NewToken(tokenLength int) string {
	const tokenChars = "abcdefghijklmnopqrstuvwxyz" +
		"ABCDEFGHIJKLMNOPQRSTUVWXYZ" +
		"0123456789"
	b := make([]byte, tokenLength)
	for i := 0; i < tokenLength; i++ {
		b[i] = tokenChars[seededRand.Intn(len(tokenChars))]
	}
	return string(b)
}
