package payments

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"strings"
	"sync/atomic"
	"time"
)

// IDGenerator hands out identifiers that are unique at the store boundary.
type IDGenerator interface {
	GenerateUnique(ctx context.Context) (string, error)
}

// ExistsFunc reports whether a candidate identifier is already taken.
type ExistsFunc func(ctx context.Context, candidate string) (bool, error)

const defaultGenerateAttempts = 5

type checkedGenerator struct {
	next     func() (string, error)
	exists   ExistsFunc
	attempts int
}

func (g *checkedGenerator) GenerateUnique(ctx context.Context) (string, error) {
	for range g.attempts {
		candidate, err := g.next()
		if err != nil {
			return "", err
		}
		taken, err := g.exists(ctx, candidate)
		if err != nil {
			return "", storeError(err, "failed to check identifier uniqueness")
		}
		if !taken {
			return candidate, nil
		}
	}
	return "", NewConflictError("could not generate a unique identifier", nil)
}

// NewConfirmationCodeGenerator builds codes like PREFIX-3FA9C1.
func NewConfirmationCodeGenerator(prefix string, exists ExistsFunc) IDGenerator {
	return &checkedGenerator{
		attempts: defaultGenerateAttempts,
		exists:   exists,
		next: func() (string, error) {
			suffix, err := randomHex(3)
			if err != nil {
				return "", err
			}
			return prefix + "-" + strings.ToUpper(suffix), nil
		},
	}
}

// NewTransactionIDGenerator builds ids like PREFIX-INST-<unix ms>-<seq>-<hex>.
func NewTransactionIDGenerator(prefix string, exists ExistsFunc) IDGenerator {
	var seq atomic.Uint64
	return &checkedGenerator{
		attempts: defaultGenerateAttempts,
		exists:   exists,
		next: func() (string, error) {
			suffix, err := randomHex(3)
			if err != nil {
				return "", err
			}
			n := seq.Add(1) - 1
			return fmt.Sprintf("%s-INST-%d-%d-%s", prefix, time.Now().UnixMilli(), n, suffix), nil
		},
	}
}

func randomHex(n int) (string, error) {
	b := make([]byte, n)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("read random bytes: %w", err)
	}
	return hex.EncodeToString(b), nil
}
