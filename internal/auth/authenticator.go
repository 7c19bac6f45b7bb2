package auth

import "context"

// Identity is an authenticated Telegram user.
type Identity struct {
	TgUserID  int64
	FirstName string
	LastName  string
	Username  string
}

// DisplayName returns the name to show for a new participant.
func (i *Identity) DisplayName() string {
	switch {
	case i.FirstName != "" && i.LastName != "":
		return i.FirstName + " " + i.LastName
	case i.FirstName != "":
		return i.FirstName
	case i.Username != "":
		return i.Username
	default:
		return ""
	}
}

// Authenticator defines the interface for authentication implementations.
// This abstraction allows swapping between different auth methods (Telegram
// init data, bot deep links, etc.) without changing the service layer code.
type Authenticator interface {
	// Authenticate verifies the credential and returns the caller's identity.
	// The credential format depends on the implementation.
	Authenticate(ctx context.Context, credential string) (*Identity, error)
}
