package calculator

import (
	"github.com/kate-app/backend/internal/models"
	"github.com/kate-app/backend/internal/money"
)

// OutgoingTransfer is a transfer as seen from the debtor's row.
type OutgoingTransfer struct {
	TransferID   string
	CreditorID   string
	CreditorName string
	Amount       money.Amount
	Paid         bool
}

// SummaryRow is the per-participant line of the "who pays whom" view.
type SummaryRow struct {
	ParticipantID string
	Name          string
	TgUserID      int64
	Spent         money.Amount
	Owed          money.Amount
	Net           money.Amount
	Outgoing      []OutgoingTransfer

	// HasPayment is true when the participant has outgoing transfers and
	// all of them are marked paid.
	HasPayment bool

	// NotificationMessage is a reminder for debtors; empty for others.
	NotificationMessage string
}

// MessageFunc renders the reminder text for a debtor's row.
type MessageFunc func(row SummaryRow) string

// AssembleSummary builds one row per participant, in participant order.
// Participants without a balance entry or transfers still get a row.
// message may be nil.
func AssembleSummary(participants []models.Participant, balances map[string]Balance, transfers []models.Transfer, message MessageFunc) []SummaryRow {
	names := make(map[string]string, len(participants))
	for _, p := range participants {
		names[p.ID] = p.Name
	}

	outgoing := make(map[string][]OutgoingTransfer)
	for _, t := range transfers {
		outgoing[t.DebtorID] = append(outgoing[t.DebtorID], OutgoingTransfer{
			TransferID:   t.ID,
			CreditorID:   t.CreditorID,
			CreditorName: names[t.CreditorID],
			Amount:       t.Amount,
			Paid:         t.Paid,
		})
	}

	rows := make([]SummaryRow, 0, len(participants))
	for _, p := range participants {
		bal := balances[p.ID]
		row := SummaryRow{
			ParticipantID: p.ID,
			Name:          p.Name,
			TgUserID:      p.TgUserID,
			Spent:         bal.Spent,
			Owed:          bal.Owed,
			Net:           bal.Net,
			Outgoing:      outgoing[p.ID],
		}
		if len(row.Outgoing) > 0 {
			row.HasPayment = true
			for _, o := range row.Outgoing {
				if !o.Paid {
					row.HasPayment = false
					break
				}
			}
			if message != nil {
				row.NotificationMessage = message(row)
			}
		}
		rows = append(rows, row)
	}
	return rows
}
