package calculator

import (
	"fmt"
	"math"

	"github.com/kate-app/backend/internal/models"
	"github.com/kate-app/backend/internal/money"
)

// Balance represents the settlement position of one participant.
type Balance struct {
	ParticipantID string
	Spent         money.Amount // Paid out as the responsible party
	Owed          money.Amount // Fair share of settled procurements
	Net           money.Amount // Positive = is owed money, Negative = owes money
}

// Rejected is a procurement left out of the computation.
type Rejected struct {
	ProcurementID string
	Name          string
	Err           error
}

// FilterValid separates procurements whose price can be used from those
// carrying an invalid amount. Invalid procurements are excluded from the
// settlement instead of failing the whole event.
func FilterValid(procurements []models.Procurement) ([]models.Procurement, []Rejected) {
	valid := make([]models.Procurement, 0, len(procurements))
	var rejected []Rejected
	for _, p := range procurements {
		if p.Price != nil {
			if err := p.Price.Validate(); err != nil {
				rejected = append(rejected, Rejected{
					ProcurementID: p.ID,
					Name:          p.Name,
					Err:           fmt.Errorf("procurement %s: %w", p.ID, err),
				})
				continue
			}
		}
		valid = append(valid, p)
	}
	return valid, rejected
}

// ComputeBalances aggregates spent and owed amounts per participant.
//
// Algorithm:
//   - Skip procurements that are not done or not priced
//   - Responsible participant: spent += price
//   - Each contributor (all participants when none are listed): owed += share
//   - net = spent - owed
//
// Every participant gets an entry, including those with nothing to settle.
// A reference to a participant outside the list fails the whole computation
// with ErrUnknownParticipant; no partial result is returned.
func ComputeBalances(procurements []models.Procurement, participants []models.Participant) (map[string]Balance, error) {
	balances := make(map[string]*Balance, len(participants))
	allIDs := make([]string, 0, len(participants))
	for _, p := range participants {
		balances[p.ID] = &Balance{ParticipantID: p.ID}
		allIDs = append(allIDs, p.ID)
	}

	for i := range procurements {
		proc := &procurements[i]
		if err := checkReferences(proc, balances); err != nil {
			return nil, err
		}
		if !proc.Settled() {
			continue
		}
		if proc.ResponsibleID == "" {
			return nil, fmt.Errorf("%w: procurement %s is done without a responsible participant",
				ErrUnknownParticipant, proc.ID)
		}

		contributors := proc.ContributorIDs
		if len(contributors) == 0 {
			contributors = allIDs
		}
		shares, err := SplitEvenly(*proc.Price, contributors)
		if err != nil {
			return nil, fmt.Errorf("procurement %s: %w", proc.ID, err)
		}

		resp := balances[proc.ResponsibleID]
		if resp.Spent, err = addAmount(resp.Spent, *proc.Price, proc.ID); err != nil {
			return nil, err
		}
		for _, share := range shares {
			bal := balances[share.ParticipantID]
			if bal.Owed, err = addAmount(bal.Owed, share.Amount, proc.ID); err != nil {
				return nil, err
			}
		}
	}

	result := make(map[string]Balance, len(balances))
	for id, bal := range balances {
		bal.Net = bal.Spent - bal.Owed
		result[id] = *bal
	}
	return result, nil
}

// addAmount adds a non-negative amount, failing instead of wrapping around.
func addAmount(sum, v money.Amount, procurementID string) (money.Amount, error) {
	if v > money.Amount(math.MaxInt64)-sum {
		return 0, fmt.Errorf("%w: procurement %s pushes a participant total past %s",
			ErrInvalidAmount, procurementID, money.Amount(math.MaxInt64).String())
	}
	return sum + v, nil
}

func checkReferences(proc *models.Procurement, known map[string]*Balance) error {
	if proc.ResponsibleID != "" {
		if _, ok := known[proc.ResponsibleID]; !ok {
			return fmt.Errorf("%w: procurement %s responsible %s",
				ErrUnknownParticipant, proc.ID, proc.ResponsibleID)
		}
	}
	for _, id := range proc.ContributorIDs {
		if _, ok := known[id]; !ok {
			return fmt.Errorf("%w: procurement %s contributor %s",
				ErrUnknownParticipant, proc.ID, id)
		}
	}
	return nil
}
