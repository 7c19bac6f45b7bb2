package models

// Participant represents a member of one event.
// The ID is unique within the event; the same Telegram user joining two
// events gets two participants.
type Participant struct {
	// ID is the unique identifier for the participant (UUID format).
	ID string

	// EventID is the event this participant belongs to.
	EventID string

	// Name is the display name shown in summaries.
	Name string

	// TgUserID links the participant to a Telegram account. Zero when the
	// participant was added manually by the organizer.
	TgUserID int64

	// CreatedAt is the Unix timestamp when the participant joined.
	CreatedAt int64
}
