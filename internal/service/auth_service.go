package service

import (
	"context"
	"log/slog"

	"connectrpc.com/connect"

	"github.com/kate-app/backend/internal/auth"
	"github.com/kate-app/backend/internal/middleware"
	api "github.com/kate-app/backend/pkg/api"
	"github.com/kate-app/backend/pkg/api/apiconnect"
)

// PublicProcedures may be called without a session token: login and the
// read-only views a participant opens from an invite link.
var PublicProcedures = []string{
	apiconnect.AuthServiceLoginProcedure,
	apiconnect.SettlementServiceGetEventSettlementProcedure,
	apiconnect.EventServiceGetEventProcedure,
	apiconnect.EventServiceListParticipantsProcedure,
	apiconnect.EventServiceGetProcurementProcedure,
	apiconnect.EventServiceListProcurementsProcedure,
	apiconnect.EventServiceListContributedProcurementsProcedure,
	apiconnect.EventServiceListResponsibleProcurementsProcedure,
	apiconnect.EventServiceGetInviteLinkProcedure,
}

// AuthService implements the AuthService RPC interface.
type AuthService struct {
	authenticator auth.Authenticator
	jwtManager    *auth.JWTManager
	logger        *slog.Logger
}

// NewAuthService creates a new authentication service.
func NewAuthService(authenticator auth.Authenticator, jwtManager *auth.JWTManager, logger *slog.Logger) *AuthService {
	return &AuthService{
		authenticator: authenticator,
		jwtManager:    jwtManager,
		logger:        logger,
	}
}

// Login exchanges Telegram Mini-App init data for a JWT.
func (s *AuthService) Login(ctx context.Context, req *connect.Request[api.LoginRequest]) (*connect.Response[api.LoginResponse], error) {
	s.logger.Info("Login request")

	if err := required("init_data", req.Msg.InitData); err != nil {
		return nil, err
	}

	identity, err := s.authenticator.Authenticate(ctx, req.Msg.InitData)
	if err != nil {
		s.logger.Warn("Login failed", "error", err)
		return nil, connect.NewError(connect.CodeUnauthenticated, err)
	}

	token, err := s.jwtManager.Generate(identity)
	if err != nil {
		s.logger.Error("Failed to generate token", "tg_user_id", identity.TgUserID, "error", err)
		return nil, connect.NewError(connect.CodeInternal, err)
	}

	s.logger.Info("User logged in successfully", "tg_user_id", identity.TgUserID)
	return connect.NewResponse(&api.LoginResponse{
		Token: token,
		User: api.User{
			TgUserID: identity.TgUserID,
			Name:     identity.DisplayName(),
			Username: identity.Username,
		},
	}), nil
}

// GetCurrentUser returns the user the request's token was issued to.
func (s *AuthService) GetCurrentUser(ctx context.Context, req *connect.Request[api.GetCurrentUserRequest]) (*connect.Response[api.GetCurrentUserResponse], error) {
	tgUserID := middleware.GetTgUserID(ctx)
	if tgUserID == 0 {
		return nil, connect.NewError(connect.CodeUnauthenticated, auth.ErrMissingToken)
	}

	return connect.NewResponse(&api.GetCurrentUserResponse{
		User: api.User{
			TgUserID: tgUserID,
			Name:     middleware.GetName(ctx),
		},
	}), nil
}
