package middleware

import (
	"context"
	"strings"

	"connectrpc.com/connect"

	"github.com/kate-app/backend/internal/auth"
)

// contextKey is a custom type for context keys to avoid collisions.
type contextKey string

const (
	// TgUserIDKey is the context key for the authenticated Telegram user ID.
	TgUserIDKey contextKey = "tg_user_id"
	// NameKey is the context key for the authenticated user's display name.
	NameKey contextKey = "name"
)

// GetTgUserID extracts the Telegram user ID from the context.
// Returns 0 if not found.
func GetTgUserID(ctx context.Context) int64 {
	id, _ := ctx.Value(TgUserIDKey).(int64)
	return id
}

// GetName extracts the user's display name from the context.
func GetName(ctx context.Context) string {
	name, _ := ctx.Value(NameKey).(string)
	return name
}

// WithTgUserID returns a context carrying the given Telegram user.
func WithTgUserID(ctx context.Context, tgUserID int64, name string) context.Context {
	ctx = context.WithValue(ctx, TgUserIDKey, tgUserID)
	return context.WithValue(ctx, NameKey, name)
}

func bearerToken(header string) (string, bool) {
	parts := strings.Split(header, " ")
	if len(parts) != 2 || parts[0] != "Bearer" {
		return "", false
	}
	return parts[1], true
}

// RequireAuth returns a middleware that requires a valid Telegram session
// token on every procedure except the public ones. Public procedures fall
// back to OptionalAuth, so they still see the caller when a token is sent.
func RequireAuth(jwtManager *auth.JWTManager, public ...string) connect.UnaryInterceptorFunc {
	open := make(map[string]bool, len(public))
	for _, p := range public {
		open[p] = true
	}
	optional := OptionalAuth(jwtManager)

	return func(next connect.UnaryFunc) connect.UnaryFunc {
		anonymousOK := optional(next)
		return func(ctx context.Context, req connect.AnyRequest) (connect.AnyResponse, error) {
			if open[req.Spec().Procedure] {
				return anonymousOK(ctx, req)
			}

			authHeader := req.Header().Get("Authorization")
			if authHeader == "" {
				return nil, connect.NewError(connect.CodeUnauthenticated, auth.ErrMissingToken)
			}
			tokenString, ok := bearerToken(authHeader)
			if !ok {
				return nil, connect.NewError(connect.CodeUnauthenticated, auth.ErrInvalidToken)
			}

			claims, err := jwtManager.Validate(tokenString)
			if err != nil {
				return nil, connect.NewError(connect.CodeUnauthenticated, err)
			}

			return next(WithTgUserID(ctx, claims.TgUserID, claims.Name), req)
		}
	}
}

// OptionalAuth returns a middleware that validates JWT tokens if present, but allows
// requests without authentication, so read-only endpoints work before login
// completes.
func OptionalAuth(jwtManager *auth.JWTManager) connect.UnaryInterceptorFunc {
	return func(next connect.UnaryFunc) connect.UnaryFunc {
		return func(ctx context.Context, req connect.AnyRequest) (connect.AnyResponse, error) {
			if tokenString, ok := bearerToken(req.Header().Get("Authorization")); ok {
				// Ignore errors - optional auth
				if claims, err := jwtManager.Validate(tokenString); err == nil {
					ctx = WithTgUserID(ctx, claims.TgUserID, claims.Name)
				}
			}
			return next(ctx, req)
		}
	}
}
