package joincode

import (
	"crypto/rand"
	"math/big"
)

// Length is the fixed width of every join code
const Length = 6

// alphabet is the set of characters a join code is drawn from
const alphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

//go:generate mockgen -package=mocks -destination=mocks/mock_generator.go github.com/KirkDiggler/taleforge/internal/common/joincode Generator
type Generator interface {
	NewCode() string
}

// DefaultGenerator draws codes from crypto/rand
type DefaultGenerator struct{}

// New returns the default join code generator
func New() *DefaultGenerator {
	return &DefaultGenerator{}
}

// NewCode returns a random fixed-width uppercase alphanumeric code
func (g *DefaultGenerator) NewCode() string {
	b := make([]byte, Length)
	max := big.NewInt(int64(len(alphabet)))
	for i := range b {
		n, err := rand.Int(rand.Reader, max)
		if err != nil {
			// crypto/rand only fails when the OS entropy source is broken
			panic(err)
		}
		b[i] = alphabet[n.Int64()]
	}
	return string(b)
}

// IsValid reports whether code has the join code shape
func IsValid(code string) bool {
	if len(code) != Length {
		return false
	}
	for i := 0; i < len(code); i++ {
		c := code[i]
		if (c < 'A' || c > 'Z') && (c < '0' || c > '9') {
			return false
		}
	}
	return true
}
