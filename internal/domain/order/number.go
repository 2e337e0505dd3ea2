package order

import (
	"crypto/rand"
	"fmt"
	"math/big"
)

const (
	orderNumberDigits    = 12
	trackingNumberDigits = 10
	trackingPrefix       = "TRK"
)

// NumberGenerator produces order numbers: a fixed prefix followed by random digits
type NumberGenerator struct {
	prefix string
	digits int
}

// NewNumberGenerator creates a generator with the given prefix
func NewNumberGenerator(prefix string) *NumberGenerator {
	return &NumberGenerator{prefix: prefix, digits: orderNumberDigits}
}

// Next returns a fresh order number. Uniqueness is enforced by the database; callers retry on collision.
func (g *NumberGenerator) Next() (string, error) {
	digits, err := randomDigits(g.digits)
	if err != nil {
		return "", fmt.Errorf("failed to generate order number: %w", err)
	}
	return g.prefix + digits, nil
}

func newTrackingNumber() (string, error) {
	digits, err := randomDigits(trackingNumberDigits)
	if err != nil {
		return "", fmt.Errorf("failed to generate tracking number: %w", err)
	}
	return trackingPrefix + digits, nil
}

func randomDigits(n int) (string, error) {
	limit := new(big.Int).Exp(big.NewInt(10), big.NewInt(int64(n)), nil)
	v, err := rand.Int(rand.Reader, limit)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%0*d", n, v.Int64()), nil
}
