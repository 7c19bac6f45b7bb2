package calculator

import (
	"fmt"
	"sort"

	"github.com/kate-app/backend/internal/money"
)

// Share is one contributor's part of a procurement price.
type Share struct {
	ParticipantID string
	Amount        money.Amount
}

// SplitEvenly divides price among contributors in whole minor units.
//
// Contributors are deduplicated and sorted by ID. Each gets price/n, and the
// first price%n contributors in that order get one extra minor unit, so the
// shares always sum to price exactly.
func SplitEvenly(price money.Amount, contributors []string) ([]Share, error) {
	if err := price.Validate(); err != nil {
		return nil, err
	}
	ids := uniqueSorted(contributors)
	if len(ids) == 0 {
		return nil, fmt.Errorf("must have at least one contributor")
	}

	n := int64(len(ids))
	base := price.Minor() / n
	remainder := price.Minor() % n

	shares := make([]Share, len(ids))
	for i, id := range ids {
		amount := base
		if int64(i) < remainder {
			amount++
		}
		shares[i] = Share{ParticipantID: id, Amount: money.FromMinor(amount)}
	}
	return shares, nil
}

func uniqueSorted(ids []string) []string {
	seen := make(map[string]bool, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if seen[id] {
			continue
		}
		seen[id] = true
		out = append(out, id)
	}
	sort.Strings(out)
	return out
}
