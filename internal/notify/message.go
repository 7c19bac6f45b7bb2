// Package notify renders the reminder text shown to debtors in the summary
// and delivers messages through the Telegram bot.
package notify

import (
	"bytes"
	"fmt"
	"log/slog"
	"strings"
	"text/template"

	"github.com/kate-app/backend/internal/calculator"
	"github.com/kate-app/backend/internal/models"
	"github.com/kate-app/backend/internal/money"
)

// DefaultTemplate is used when no template is configured.
const DefaultTemplate = `Hi, {{.Name}}! Settling up for "{{.Event}}":
{{- range .Transfers}}
- {{.Amount}} to {{.Creditor}}{{if .Paid}} (paid){{end}}
{{- end}}
Total: {{.Total}}
{{- if .PaymentDetails}}
Payment details: {{.PaymentDetails}}
{{- end}}`

// Renderer produces debtor reminders from a text/template.
type Renderer struct {
	tmpl     *template.Template
	currency string
}

// transferLine is one outgoing transfer as seen by the template.
type transferLine struct {
	Creditor string
	Amount   string
	Paid     bool
}

// messageData is the template input.
type messageData struct {
	Name           string
	Event          string
	PaymentDetails string
	Transfers      []transferLine
	Total          string
}

// NewRenderer parses tmpl, falling back to DefaultTemplate when it is empty.
// currency is appended to every amount.
func NewRenderer(tmpl, currency string) (*Renderer, error) {
	if strings.TrimSpace(tmpl) == "" {
		tmpl = DefaultTemplate
	}
	t, err := template.New("reminder").Option("missingkey=error").Parse(tmpl)
	if err != nil {
		return nil, fmt.Errorf("failed to parse message template: %w", err)
	}
	return &Renderer{tmpl: t, currency: currency}, nil
}

func (r *Renderer) format(a money.Amount) string {
	if r.currency == "" {
		return a.String()
	}
	return a.String() + " " + r.currency
}

// For returns a message function bound to event.
func (r *Renderer) For(event *models.Event) calculator.MessageFunc {
	return func(row calculator.SummaryRow) string {
		data := messageData{
			Name:           row.Name,
			Event:          event.Name,
			PaymentDetails: event.PaymentDetails,
			Transfers:      make([]transferLine, len(row.Outgoing)),
		}
		var total money.Amount
		for i, o := range row.Outgoing {
			data.Transfers[i] = transferLine{
				Creditor: o.CreditorName,
				Amount:   r.format(o.Amount),
				Paid:     o.Paid,
			}
			total += o.Amount
		}
		data.Total = r.format(total)

		var buf bytes.Buffer
		if err := r.tmpl.Execute(&buf, data); err != nil {
			slog.Warn("Failed to render reminder", "event_id", event.ID, "participant_id", row.ParticipantID, "error", err)
			return ""
		}
		return buf.String()
	}
}
