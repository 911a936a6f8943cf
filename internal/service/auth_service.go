package service

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/MATTHEWPURBA/management-system/internal/auth"
	"github.com/MATTHEWPURBA/management-system/internal/crypto"
	"github.com/MATTHEWPURBA/management-system/internal/model"
)

// Messages are a compatibility surface: the login-time inactive message
// differs from the per-request gate message in the HTTP middleware.
const (
	msgInvalidCredentials = "Invalid email or password"
	msgInactiveLogin      = "User account is inactive"
)

type AuthService struct {
	repo     Repository
	denylist *auth.Denylist
	logger   *zap.Logger

	jwtSecret string
	jwtIssuer string
	tokenTTL  time.Duration
}

func NewAuthService(repo Repository, denylist *auth.Denylist, logger *zap.Logger, jwtSecret, jwtIssuer string, tokenTTL time.Duration) *AuthService {
	return &AuthService{
		repo:      repo,
		denylist:  denylist,
		logger:    logger,
		jwtSecret: jwtSecret,
		jwtIssuer: jwtIssuer,
		tokenTTL:  tokenTTL,
	}
}

// Login verifies credentials, refuses inactive accounts before issuing
// anything, and records a user_login entry.
func (s *AuthService) Login(ctx context.Context, email, password string) (model.User, string, error) {
	user, err := s.repo.UserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return model.User{}, "", NewAuthentication(msgInvalidCredentials)
		}
		return model.User{}, "", NewPersistence(err)
	}
	if err := crypto.CheckPassword(user.PasswordHash, password); err != nil {
		if errors.Is(err, crypto.ErrPasswordMismatch) {
			return model.User{}, "", NewAuthentication(msgInvalidCredentials)
		}
		return model.User{}, "", NewPersistence(err)
	}
	if !user.Active {
		s.logger.Warn("login refused for inactive account", zap.String("user_id", user.ID.String()))
		return model.User{}, "", NewInactiveAccount(msgInactiveLogin)
	}

	token, _, err := auth.NewAccessToken(s.jwtSecret, s.jwtIssuer, s.tokenTTL, user)
	if err != nil {
		return model.User{}, "", NewPersistence(err)
	}

	entry := newLogEntry(actorRef(user.ID), model.ActionUserLogin, describeLogin(user))
	if err := s.repo.AppendLog(ctx, entry); err != nil {
		return model.User{}, "", NewPersistence(err)
	}
	return user, token, nil
}

// Logout revokes the presented token (when redis is configured) and
// records a user_logout entry.
func (s *AuthService) Logout(ctx context.Context, actor model.User, tokenID string, expiresAt time.Time) error {
	if tokenID != "" {
		if err := s.denylist.Revoke(ctx, tokenID, time.Until(expiresAt)); err != nil {
			s.logger.Warn("token revocation failed", zap.Error(err))
		}
	}
	entry := newLogEntry(actorRef(actor.ID), model.ActionUserLogout, describeLogout(actor))
	if err := s.repo.AppendLog(ctx, entry); err != nil {
		return NewPersistence(err)
	}
	return nil
}
