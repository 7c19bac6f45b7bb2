package models

import "unicode/utf8"

// MaxPaymentDetailsLength is the limit on Event.PaymentDetails, in runes.
const MaxPaymentDetailsLength = 80

// Event represents a shared occasion whose costs are split among participants.
type Event struct {
	// ID is the unique identifier for the event (UUID format).
	ID string

	// Name is the display name of the event (e.g., "Team offsite").
	Name string

	// OrganizerTgUserID is the Telegram user who may mark transfers paid
	// and edit the event.
	OrganizerTgUserID int64

	// PaymentDetails tells debtors where to send money
	// (e.g., a phone number for a bank transfer).
	PaymentDetails string

	// CreatedAt is the Unix timestamp when the event was created.
	CreatedAt int64
}

// ValidPaymentDetails reports whether s fits in MaxPaymentDetailsLength.
func ValidPaymentDetails(s string) bool {
	return utf8.RuneCountInString(s) <= MaxPaymentDetailsLength
}
