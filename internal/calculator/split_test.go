package calculator

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kate-app/backend/internal/money"
)

func TestSplitEvenly(t *testing.T) {
	tests := []struct {
		name         string
		price        money.Amount
		contributors []string
		want         []Share
		wantErr      error
	}{
		{
			name:         "even three-way split",
			price:        30000,
			contributors: []string{"p1", "p2", "p3"},
			want: []Share{
				{ParticipantID: "p1", Amount: 10000},
				{ParticipantID: "p2", Amount: 10000},
				{ParticipantID: "p3", Amount: 10000},
			},
		},
		{
			// 100 kopecks / 3 = 33 rem 1: the lowest ID takes the extra kopeck
			name:         "remainder goes to first by ID",
			price:        100,
			contributors: []string{"p3", "p1", "p2"},
			want: []Share{
				{ParticipantID: "p1", Amount: 34},
				{ParticipantID: "p2", Amount: 33},
				{ParticipantID: "p3", Amount: 33},
			},
		},
		{
			name:         "remainder of two",
			price:        1001,
			contributors: []string{"b", "a", "c"},
			want: []Share{
				{ParticipantID: "a", Amount: 334},
				{ParticipantID: "b", Amount: 334},
				{ParticipantID: "c", Amount: 333},
			},
		},
		{
			name:         "duplicates collapse",
			price:        1000,
			contributors: []string{"a", "b", "a"},
			want: []Share{
				{ParticipantID: "a", Amount: 500},
				{ParticipantID: "b", Amount: 500},
			},
		},
		{
			name:         "zero price",
			price:        0,
			contributors: []string{"a", "b"},
			want: []Share{
				{ParticipantID: "a", Amount: 0},
				{ParticipantID: "b", Amount: 0},
			},
		},
		{
			name:         "negative price is invalid",
			price:        -1,
			contributors: []string{"a"},
			wantErr:      ErrInvalidAmount,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := SplitEvenly(tt.price, tt.contributors)
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestSplitEvenly_NoContributors(t *testing.T) {
	_, err := SplitEvenly(100, nil)
	assert.Error(t, err)
}

func TestSplitEvenly_SumsToPrice(t *testing.T) {
	contributors := []string{"a", "b", "c", "d", "e", "f", "g"}
	for price := money.Amount(0); price < 500; price++ {
		for n := 1; n <= len(contributors); n++ {
			shares, err := SplitEvenly(price, contributors[:n])
			require.NoError(t, err)

			var sum money.Amount
			for _, s := range shares {
				sum += s.Amount
			}
			require.Equal(t, price, sum, "price %s among %d", price, n)
		}
	}
}
