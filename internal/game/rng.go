package game

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"math/big"
)

// Source yields uniform integers in [0, n). Outcomes are only as fair as the
// Source, so production code uses Crypto.
type Source interface {
	IntN(n int) (int, error)
}

type cryptoSource struct{}

// Crypto draws from crypto/rand.
var Crypto Source = cryptoSource{}

func (cryptoSource) IntN(n int) (int, error) {
	if n <= 0 {
		return 0, fmt.Errorf("rng: invalid bound %d", n)
	}
	v, err := rand.Int(rand.Reader, big.NewInt(int64(n)))
	if err != nil {
		return 0, fmt.Errorf("rng: %w", err)
	}
	return int(v.Int64()), nil
}

// RandomInt returns a uniform integer in [min, max).
func RandomInt(src Source, min, max int) (int, error) {
	if max <= min {
		return 0, fmt.Errorf("rng: empty range [%d, %d)", min, max)
	}
	v, err := src.IntN(max - min)
	if err != nil {
		return 0, err
	}
	return min + v, nil
}

// NewSeed returns 32 random bytes, hex encoded.
func NewSeed() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("rng: seed: %w", err)
	}
	return hex.EncodeToString(b), nil
}
