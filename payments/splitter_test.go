package payments

import (
	"math/rand/v2"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSplitAmount(t *testing.T) {
	tests := []struct {
		name  string
		total int64
		want  []int64
	}{
		{"below cap", 500000, []int64{500000}},
		{"exactly cap", 999999, []int64{999999}},
		{"one over cap", 1000000, []int64{999999, 1}},
		{"three installments", 2500000, []int64{999999, 999999, 500002}},
		{"multiple of cap", 1999998, []int64{999999, 999999}},
		{"one unit", 1, []int64{1}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := SplitAmount(tt.total, MaxTransactionAmount)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestSplitAmountRejectsNonPositive(t *testing.T) {
	_, err := SplitAmount(0, MaxTransactionAmount)
	assert.Error(t, err)
	_, err = SplitAmount(-5, MaxTransactionAmount)
	assert.Error(t, err)
	_, err = SplitAmount(10, 0)
	assert.Error(t, err)
}

func TestSplitAmountProperties(t *testing.T) {
	rng := rand.New(rand.NewPCG(1, 2))
	for range 2000 {
		total := rng.Int64N(20_000_000) + 1
		limit := rng.Int64N(1_500_000) + 1

		parts, err := SplitAmount(total, limit)
		require.NoError(t, err)

		var sum int64
		for _, p := range parts {
			require.Positive(t, p)
			require.LessOrEqual(t, p, limit)
			sum += p
		}
		require.Equal(t, total, sum)
		require.Len(t, parts, int((total+limit-1)/limit))
	}
}
