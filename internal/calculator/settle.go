package calculator

import (
	"container/heap"
	"fmt"

	"github.com/google/uuid"

	"github.com/kate-app/backend/internal/models"
	"github.com/kate-app/backend/internal/money"
)

// transferNamespace scopes the name-based UUIDs of planned transfers.
var transferNamespace = uuid.MustParse("6f1c8a2e-4b1d-5e7a-9c3f-2d8e0b7a4c51")

// TransferID returns the stable ID of the transfer from debtorID to creditorID.
func TransferID(debtorID, creditorID string) string {
	return uuid.NewSHA1(transferNamespace, []byte(debtorID+"\x00"+creditorID)).String()
}

// party is a participant with an outstanding magnitude (always positive).
type party struct {
	id        string
	remaining money.Amount
}

// partyHeap is a max-heap by remaining amount; ties go to the lower ID.
type partyHeap []*party

func (h partyHeap) Len() int { return len(h) }
func (h partyHeap) Less(i, j int) bool {
	if h[i].remaining != h[j].remaining {
		return h[i].remaining > h[j].remaining
	}
	return h[i].id < h[j].id
}
func (h partyHeap) Swap(i, j int) { h[i], h[j] = h[j], h[i] }
func (h *partyHeap) Push(x any)   { *h = append(*h, x.(*party)) }
func (h *partyHeap) Pop() any {
	old := *h
	n := len(old)
	p := old[n-1]
	*h = old[:n-1]
	return p
}

// PlanTransfers produces the transfers that bring every net balance to zero.
//
// Greedy matching: the debtor with the largest debt pays the creditor with
// the largest credit min(debt, credit); whoever reaches zero leaves the pool.
// Each step clears at least one party, so at most n-1 transfers are emitted
// for n non-zero balances. Output order and IDs are deterministic.
func PlanTransfers(balances map[string]Balance) ([]models.Transfer, error) {
	debtors := &partyHeap{}
	creditors := &partyHeap{}
	var total money.Amount
	for id, bal := range balances {
		total += bal.Net
		switch {
		case bal.Net < 0:
			*debtors = append(*debtors, &party{id: id, remaining: -bal.Net})
		case bal.Net > 0:
			*creditors = append(*creditors, &party{id: id, remaining: bal.Net})
		}
	}
	if total != 0 {
		return nil, fmt.Errorf("%w: net balances sum to %s", ErrUnbalancedLedger, total)
	}
	heap.Init(debtors)
	heap.Init(creditors)

	var transfers []models.Transfer
	for debtors.Len() > 0 && creditors.Len() > 0 {
		debtor := (*debtors)[0]
		creditor := (*creditors)[0]

		amount := debtor.remaining
		if creditor.remaining < amount {
			amount = creditor.remaining
		}
		transfers = append(transfers, models.Transfer{
			ID:         TransferID(debtor.id, creditor.id),
			DebtorID:   debtor.id,
			CreditorID: creditor.id,
			Amount:     amount,
		})

		debtor.remaining -= amount
		creditor.remaining -= amount
		if debtor.remaining == 0 {
			heap.Pop(debtors)
		} else {
			heap.Fix(debtors, 0)
		}
		if creditor.remaining == 0 {
			heap.Pop(creditors)
		} else {
			heap.Fix(creditors, 0)
		}
	}

	if debtors.Len() > 0 || creditors.Len() > 0 {
		var owed, due money.Amount
		for _, p := range *debtors {
			owed += p.remaining
		}
		for _, p := range *creditors {
			due += p.remaining
		}
		return nil, fmt.Errorf("%w: %s owed and %s due after matching", ErrUnbalancedLedger, owed, due)
	}
	return transfers, nil
}
