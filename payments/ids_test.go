package payments_test

import (
	"context"
	"errors"
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/phillip/event-registration-go/payments"
)

func TestTransactionIDsAreDistinct(t *testing.T) {
	gen := payments.NewTransactionIDGenerator("SIFIA", func(context.Context, string) (bool, error) { return false, nil })
	pattern := regexp.MustCompile(`^SIFIA-INST-\d+-\d+-[0-9a-f]{6}$`)

	seen := map[string]bool{}
	for range 200 {
		id, err := gen.GenerateUnique(context.Background())
		require.NoError(t, err)
		assert.Regexp(t, pattern, id)
		assert.False(t, seen[id], "duplicate id %s", id)
		seen[id] = true
	}
}

func TestGeneratorSkipsTakenCandidates(t *testing.T) {
	calls := 0
	gen := payments.NewConfirmationCodeGenerator("SIFIA-2025", func(context.Context, string) (bool, error) {
		calls++
		return calls < 3, nil
	})

	code, err := gen.GenerateUnique(context.Background())
	require.NoError(t, err)
	assert.Regexp(t, `^SIFIA-2025-[0-9A-F]{6}$`, code)
	assert.Equal(t, 3, calls)
}

func TestGeneratorFailures(t *testing.T) {
	taken := payments.NewConfirmationCodeGenerator("X", func(context.Context, string) (bool, error) { return true, nil })
	_, err := taken.GenerateUnique(context.Background())
	assert.True(t, payments.IsKind(err, payments.KindConflict), "got %v", err)

	boom := errors.New("mongo unavailable")
	broken := payments.NewConfirmationCodeGenerator("X", func(context.Context, string) (bool, error) { return false, boom })
	_, err = broken.GenerateUnique(context.Background())
	assert.True(t, payments.IsKind(err, payments.KindPersistence), "got %v", err)
	assert.ErrorIs(t, err, boom)
}
