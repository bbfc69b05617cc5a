package rand

import (
	mathrand "math/rand"
	"time"
)

// NewSeeded returns a *math.Rand seeded with the current time.
func NewSeeded() *mathrand.Rand {
	return mathrand.New(mathrand.NewSource(time.Now().UnixNano()))
}
