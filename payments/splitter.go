package payments

import "fmt"

// MaxTransactionAmount is the largest amount the gateway accepts in a single
// transaction.
const MaxTransactionAmount int64 = 999999

// SplitAmount cuts total into installments of at most limit, greedily from the
// front. An amount within the limit yields a single installment.
func SplitAmount(total, limit int64) ([]int64, error) {
	if total <= 0 {
		return nil, fmt.Errorf("split amount: total must be positive, got %d", total)
	}
	if limit <= 0 {
		return nil, fmt.Errorf("split amount: limit must be positive, got %d", limit)
	}

	amounts := make([]int64, 0, (total+limit-1)/limit)
	for remaining := total; remaining > 0; {
		amount := min(remaining, limit)
		amounts = append(amounts, amount)
		remaining -= amount
	}
	return amounts, nil
}
