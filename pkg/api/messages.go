package api

import "github.com/kate-app/backend/internal/money"

// Event is the wire form of models.Event.
type Event struct {
	ID                string `json:"id"`
	Name              string `json:"name"`
	OrganizerTgUserID int64  `json:"organizer_tg_user_id"`
	PaymentDetails    string `json:"payment_details,omitempty"`
	CreatedAt         int64  `json:"created_at"`
}

// Participant is the wire form of models.Participant.
type Participant struct {
	ID        string `json:"id"`
	EventID   string `json:"event_id"`
	Name      string `json:"name"`
	TgUserID  int64  `json:"tg_user_id,omitempty"`
	CreatedAt int64  `json:"created_at"`
}

// Procurement is the wire form of models.Procurement.
// A nil Price means the price is not known yet.
type Procurement struct {
	ID                string        `json:"id"`
	EventID           string        `json:"event_id"`
	Name              string        `json:"name"`
	Comment           string        `json:"comment,omitempty"`
	Price             *money.Amount `json:"price,omitempty"`
	ResponsibleID     string        `json:"responsible_id,omitempty"`
	ContributorIDs    []string      `json:"contributor_ids"`
	CompletionStatus  string        `json:"completion_status"`
	FundraisingStatus string        `json:"fundraising_status"`
	CreatedAt         int64         `json:"created_at"`
}

// Transfer is one planned payment.
type Transfer struct {
	ID         string       `json:"id"`
	DebtorID   string       `json:"debtor_id"`
	CreditorID string       `json:"creditor_id"`
	Amount     money.Amount `json:"amount"`
	Paid       bool         `json:"paid"`
}

// OutgoingTransfer is a transfer listed on the debtor's row.
type OutgoingTransfer struct {
	TransferID   string       `json:"transfer_id"`
	CreditorID   string       `json:"creditor_id"`
	CreditorName string       `json:"creditor_name"`
	Amount       money.Amount `json:"amount"`
	Paid         bool         `json:"paid"`
}

// SummaryRow is one participant line of the settlement view.
type SummaryRow struct {
	ParticipantID       string             `json:"participant_id"`
	Name                string             `json:"name"`
	TgUserID            int64              `json:"tg_user_id,omitempty"`
	Spent               money.Amount       `json:"spent"`
	Owed                money.Amount       `json:"owed"`
	Net                 money.Amount       `json:"net"`
	Outgoing            []OutgoingTransfer `json:"outgoing"`
	HasPayment          bool               `json:"has_payment"`
	NotificationMessage string             `json:"notification_message,omitempty"`
}

// ExcludedProcurement is a procurement left out of a settlement.
type ExcludedProcurement struct {
	ProcurementID string `json:"procurement_id"`
	Name          string `json:"name"`
	Reason        string `json:"reason"`
}

// User is the authenticated Telegram user.
type User struct {
	TgUserID int64  `json:"tg_user_id"`
	Name     string `json:"name"`
	Username string `json:"username,omitempty"`
}

// SettlementService messages.

type GetEventSettlementRequest struct {
	EventID string `json:"event_id"`
}

type GetEventSettlementResponse struct {
	Rows      []SummaryRow          `json:"rows"`
	Transfers []Transfer            `json:"transfers"`
	Excluded  []ExcludedProcurement `json:"excluded,omitempty"`
}

type SetTransferPaidRequest struct {
	EventID    string `json:"event_id"`
	DebtorID   string `json:"debtor_id"`
	CreditorID string `json:"creditor_id"`
	Paid       bool   `json:"paid"`
}

type SetTransferPaidResponse struct {
	Transfer Transfer `json:"transfer"`
}

// EventService messages.

type CreateEventRequest struct {
	Name              string `json:"name"`
	OrganizerTgUserID int64  `json:"organizer_tg_user_id,omitempty"`
	PaymentDetails    string `json:"payment_details,omitempty"`
}

type CreateEventResponse struct {
	Event Event `json:"event"`
}

type GetEventRequest struct {
	EventID string `json:"event_id"`
}

type GetEventResponse struct {
	Event Event `json:"event"`
}

type UpdatePaymentDetailsRequest struct {
	EventID        string `json:"event_id"`
	PaymentDetails string `json:"payment_details"`
}

type UpdatePaymentDetailsResponse struct {
	Event Event `json:"event"`
}

type AddParticipantRequest struct {
	EventID  string `json:"event_id"`
	Name     string `json:"name"`
	TgUserID int64  `json:"tg_user_id,omitempty"`
}

type AddParticipantResponse struct {
	Participant Participant `json:"participant"`
}

type ListParticipantsRequest struct {
	EventID string `json:"event_id"`
}

type ListParticipantsResponse struct {
	Participants []Participant `json:"participants"`
}

type RemoveParticipantRequest struct {
	ParticipantID string `json:"participant_id"`
}

type RemoveParticipantResponse struct{}

type GetInviteLinkRequest struct {
	EventID string `json:"event_id"`
}

type GetInviteLinkResponse struct {
	Link string `json:"link"`
}

// ProcurementFields are the editable fields of a procurement.
type ProcurementFields struct {
	Name              string        `json:"name"`
	Comment           string        `json:"comment,omitempty"`
	Price             *money.Amount `json:"price,omitempty"`
	ResponsibleID     string        `json:"responsible_id,omitempty"`
	ContributorIDs    []string      `json:"contributor_ids,omitempty"`
	CompletionStatus  string        `json:"completion_status,omitempty"`
	FundraisingStatus string        `json:"fundraising_status,omitempty"`
}

type AddProcurementRequest struct {
	EventID string `json:"event_id"`
	ProcurementFields
}

type AddProcurementResponse struct {
	Procurement Procurement `json:"procurement"`
}

type UpdateProcurementRequest struct {
	ProcurementID string `json:"procurement_id"`
	ProcurementFields
}

type UpdateProcurementResponse struct {
	Procurement Procurement `json:"procurement"`
}

type GetProcurementRequest struct {
	ProcurementID string `json:"procurement_id"`
}

type GetProcurementResponse struct {
	Procurement Procurement `json:"procurement"`
}

type ListProcurementsRequest struct {
	EventID string `json:"event_id"`
}

type ListContributedProcurementsRequest struct {
	ParticipantID string `json:"participant_id"`
}

type ListResponsibleProcurementsRequest struct {
	ParticipantID string `json:"participant_id"`
}

type ListProcurementsResponse struct {
	Procurements []Procurement `json:"procurements"`
}

// NotificationService messages.

// SendToParticipantRequest asks the bot to message a participant. An empty
// Message sends the participant's settlement reminder.
type SendToParticipantRequest struct {
	EventID       string `json:"event_id"`
	ParticipantID string `json:"participant_id"`
	Message       string `json:"message,omitempty"`
}

type SendToParticipantResponse struct {
	Message string `json:"message"`
}

// AuthService messages.

type LoginRequest struct {
	InitData string `json:"init_data"`
}

type LoginResponse struct {
	Token string `json:"token"`
	User  User   `json:"user"`
}

type GetCurrentUserRequest struct{}

type GetCurrentUserResponse struct {
	User User `json:"user"`
}
