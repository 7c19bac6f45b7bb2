package service

import (
	"github.com/kate-app/backend/internal/calculator"
	"github.com/kate-app/backend/internal/models"
	api "github.com/kate-app/backend/pkg/api"
)

func toAPIEvent(e *models.Event) api.Event {
	return api.Event{
		ID:                e.ID,
		Name:              e.Name,
		OrganizerTgUserID: e.OrganizerTgUserID,
		PaymentDetails:    e.PaymentDetails,
		CreatedAt:         e.CreatedAt,
	}
}

func toAPIParticipant(p *models.Participant) api.Participant {
	return api.Participant{
		ID:        p.ID,
		EventID:   p.EventID,
		Name:      p.Name,
		TgUserID:  p.TgUserID,
		CreatedAt: p.CreatedAt,
	}
}

func toAPIProcurement(p *models.Procurement) api.Procurement {
	contributors := p.ContributorIDs
	if contributors == nil {
		contributors = []string{}
	}
	return api.Procurement{
		ID:                p.ID,
		EventID:           p.EventID,
		Name:              p.Name,
		Comment:           p.Comment,
		Price:             p.Price,
		ResponsibleID:     p.ResponsibleID,
		ContributorIDs:    contributors,
		CompletionStatus:  string(p.CompletionStatus),
		FundraisingStatus: string(p.FundraisingStatus),
		CreatedAt:         p.CreatedAt,
	}
}

func toAPIProcurements(procs []models.Procurement) []api.Procurement {
	out := make([]api.Procurement, len(procs))
	for i := range procs {
		out[i] = toAPIProcurement(&procs[i])
	}
	return out
}

func toAPITransfer(t models.Transfer) api.Transfer {
	return api.Transfer{
		ID:         t.ID,
		DebtorID:   t.DebtorID,
		CreditorID: t.CreditorID,
		Amount:     t.Amount,
		Paid:       t.Paid,
	}
}

func toAPISummaryRow(r calculator.SummaryRow) api.SummaryRow {
	outgoing := make([]api.OutgoingTransfer, len(r.Outgoing))
	for i, o := range r.Outgoing {
		outgoing[i] = api.OutgoingTransfer{
			TransferID:   o.TransferID,
			CreditorID:   o.CreditorID,
			CreditorName: o.CreditorName,
			Amount:       o.Amount,
			Paid:         o.Paid,
		}
	}
	return api.SummaryRow{
		ParticipantID:       r.ParticipantID,
		Name:                r.Name,
		TgUserID:            r.TgUserID,
		Spent:               r.Spent,
		Owed:                r.Owed,
		Net:                 r.Net,
		Outgoing:            outgoing,
		HasPayment:          r.HasPayment,
		NotificationMessage: r.NotificationMessage,
	}
}
