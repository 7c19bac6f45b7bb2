package calculator

import (
	"fmt"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kate-app/backend/internal/models"
	"github.com/kate-app/backend/internal/money"
)

func nets(pairs map[string]int64) map[string]Balance {
	out := make(map[string]Balance, len(pairs))
	for id, n := range pairs {
		out[id] = Balance{ParticipantID: id, Net: money.FromMinor(n)}
	}
	return out
}

// checkSettles applies transfers to the balances and asserts every
// transfer is valid and every participant ends at zero.
func checkSettles(t *testing.T, balances map[string]Balance, transfers []models.Transfer) {
	t.Helper()

	remaining := make(map[string]money.Amount, len(balances))
	nonZero := 0
	for id, bal := range balances {
		remaining[id] = bal.Net
		if bal.Net != 0 {
			nonZero++
		}
	}
	for _, tr := range transfers {
		assert.Positive(t, tr.Amount.Minor(), "transfer %s->%s", tr.DebtorID, tr.CreditorID)
		assert.NotEqual(t, tr.DebtorID, tr.CreditorID)
		remaining[tr.DebtorID] += tr.Amount
		remaining[tr.CreditorID] -= tr.Amount
	}
	for id, r := range remaining {
		assert.Zero(t, r, "participant %s not settled", id)
	}
	assert.LessOrEqual(t, len(transfers), max(0, nonZero-1))
}

func TestPlanTransfers_SinglePurchase(t *testing.T) {
	balances := nets(map[string]int64{"P1": 20000, "P2": -10000, "P3": -10000})

	transfers, err := PlanTransfers(balances)
	require.NoError(t, err)

	require.Len(t, transfers, 2)
	assert.Equal(t, "P2", transfers[0].DebtorID)
	assert.Equal(t, "P1", transfers[0].CreditorID)
	assert.Equal(t, money.Amount(10000), transfers[0].Amount)
	assert.Equal(t, "P3", transfers[1].DebtorID)
	assert.Equal(t, "P1", transfers[1].CreditorID)
	assert.Equal(t, money.Amount(10000), transfers[1].Amount)
	assert.False(t, transfers[0].Paid)
	checkSettles(t, balances, transfers)
}

func TestPlanTransfers_LargestMatchedFirst(t *testing.T) {
	balances := nets(map[string]int64{"a": -500, "b": -100, "c": 300, "d": 300})

	transfers, err := PlanTransfers(balances)
	require.NoError(t, err)

	// a (500) vs c (300, lower ID than d): 300; a (200) vs d (300): 200; b vs d: 100
	want := []models.Transfer{
		{ID: TransferID("a", "c"), DebtorID: "a", CreditorID: "c", Amount: 300},
		{ID: TransferID("a", "d"), DebtorID: "a", CreditorID: "d", Amount: 200},
		{ID: TransferID("b", "d"), DebtorID: "b", CreditorID: "d", Amount: 100},
	}
	assert.Equal(t, want, transfers)
	checkSettles(t, balances, transfers)
}

func TestPlanTransfers_AllZero(t *testing.T) {
	transfers, err := PlanTransfers(nets(map[string]int64{"a": 0, "b": 0}))
	require.NoError(t, err)
	assert.Empty(t, transfers)

	transfers, err = PlanTransfers(nil)
	require.NoError(t, err)
	assert.Empty(t, transfers)
}

func TestPlanTransfers_Unbalanced(t *testing.T) {
	_, err := PlanTransfers(nets(map[string]int64{"a": 100, "b": -99}))
	assert.ErrorIs(t, err, ErrUnbalancedLedger)

	_, err = PlanTransfers(nets(map[string]int64{"a": 1}))
	assert.ErrorIs(t, err, ErrUnbalancedLedger)
}

func TestPlanTransfers_Deterministic(t *testing.T) {
	balances := nets(map[string]int64{"a": -100, "b": -100, "c": -100, "d": 150, "e": 150})

	first, err := PlanTransfers(balances)
	require.NoError(t, err)
	for i := 0; i < 20; i++ {
		again, err := PlanTransfers(balances)
		require.NoError(t, err)
		require.Equal(t, first, again)
	}
}

func TestPlanTransfers_StableIDs(t *testing.T) {
	assert.Equal(t, TransferID("a", "b"), TransferID("a", "b"))
	assert.NotEqual(t, TransferID("a", "b"), TransferID("b", "a"))
	assert.NotEqual(t, TransferID("ab", "c"), TransferID("a", "bc"))
}

func TestPlanTransfers_RandomEvents(t *testing.T) {
	rng := rand.New(rand.NewSource(42))

	for round := 0; round < 200; round++ {
		n := 2 + rng.Intn(8)
		ids := make([]string, n)
		for i := range ids {
			ids[i] = fmt.Sprintf("p%02d", i)
		}

		var procs []models.Procurement
		for j := 0; j < 1+rng.Intn(10); j++ {
			var contributors []string
			for _, id := range ids {
				if rng.Intn(2) == 0 {
					contributors = append(contributors, id)
				}
			}
			procs = append(procs, done(fmt.Sprint(j), price(rng.Int63n(100000)), ids[rng.Intn(n)], contributors...))
		}

		balances, err := ComputeBalances(procs, participants(ids...))
		require.NoError(t, err)

		transfers, err := PlanTransfers(balances)
		require.NoError(t, err, "round %d", round)
		checkSettles(t, balances, transfers)
	}
}
