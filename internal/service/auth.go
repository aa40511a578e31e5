package service

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog"

	"github.com/talenthub/competency-api/internal/metrics"
	"github.com/talenthub/competency-api/internal/model"
	"github.com/talenthub/competency-api/internal/repository"
	"github.com/talenthub/competency-api/internal/utils"
)

// UserStore is the slice of the user repository the orchestrator needs.
type UserStore interface {
	Create(ctx context.Context, email, passwordHash, fullName, role string) (uint64, error)
	GetByEmail(ctx context.Context, email string) (model.User, error)
	GetByID(ctx context.Context, id uint64) (model.User, error)
	UpdateLastLogin(ctx context.Context, id uint64, at time.Time) error
	Update(ctx context.Context, id uint64, upd repository.UserUpdate) error
}

// TokenStore persists refresh tokens.
type TokenStore interface {
	Store(ctx context.Context, userID uint64, tokenHash string, exp time.Time) error
	GetByHash(ctx context.Context, tokenHash string) (model.RefreshToken, error)
	RevokeOwned(ctx context.Context, tokenHash string, userID uint64, now time.Time) error
	Rotate(ctx context.Context, oldHash string, userID uint64, newHash string, newExp, now time.Time) error
}

// VerificationStore persists email verification tokens.
type VerificationStore interface {
	Create(ctx context.Context, userID uint64, token string, exp time.Time) error
	DeleteUnconsumed(ctx context.Context, userID uint64) error
	GetByToken(ctx context.Context, token string) (model.EmailVerificationToken, error)
	Consume(ctx context.Context, tokenID, userID uint64) error
}

// AuditRecorder appends audit events.
type AuditRecorder interface {
	Record(ctx context.Context, action string, actorID *uint64, target *Target, details map[string]any) error
}

// Mailer delivers verification emails.
type Mailer interface {
	SendVerification(ctx context.Context, to, name, token string) error
}

// AuthConfig carries the tunables of the session lifecycle.
type AuthConfig struct {
	JWTSecret  string
	AccessTTL  time.Duration
	RefreshTTL time.Duration
	VerifyTTL  time.Duration
	BcryptCost int
}

// AuthService orchestrates the session lifecycle: login, refresh rotation,
// logout and email verification. It owns the ordering of credential checks,
// token issuance, persistence and audit recording.
type AuthService struct {
	users         UserStore
	tokens        TokenStore
	verifications VerificationStore
	audit         AuditRecorder
	mailer        Mailer
	cfg           AuthConfig
	now           Clock
	log           zerolog.Logger
}

// NewAuthService wires the orchestrator. now defaults to the shared UTC
// clock when nil.
func NewAuthService(users UserStore, tokens TokenStore, verifications VerificationStore,
	audit AuditRecorder, mailer Mailer, cfg AuthConfig, now Clock, log zerolog.Logger) *AuthService {
	if now == nil {
		now = UTCNow
	}
	return &AuthService{
		users: users, tokens: tokens, verifications: verifications,
		audit: audit, mailer: mailer, cfg: cfg, now: now, log: log,
	}
}

// Session is the outcome of a successful login or refresh.
type Session struct {
	User       model.User
	Access     utils.AccessToken
	Refresh    utils.RefreshToken
	RefreshTTL time.Duration
}

const minPasswordLen = 8

// Register creates a new account with the lowest-privilege role. The caller
// authenticates afterwards through Login; registration does not start a
// session.
func (s *AuthService) Register(ctx context.Context, email, password, fullName string) (model.User, error) {
	if len(password) < minPasswordLen {
		return model.User{}, ErrWeakPassword
	}
	hash, err := utils.HashPassword(password, s.cfg.BcryptCost)
	if err != nil {
		return model.User{}, err
	}
	id, err := s.users.Create(ctx, email, hash, fullName, model.RoleEmployee)
	if err != nil {
		return model.User{}, err
	}
	return s.users.GetByID(ctx, id)
}

// Login verifies credentials and opens a session. The rate-limit gate runs
// in middleware before this is reached. Ordering matters: the refresh token
// row is committed before the session is returned, so a client can never
// hold a refresh token a crash could roll back. The audit write is part of
// the action; its failure fails the login.
func (s *AuthService) Login(ctx context.Context, email, password string, meta Meta) (Session, error) {
	now := s.now()

	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return Session{}, s.rejectLogin(ctx, email, meta)
		}
		return Session{}, err
	}
	if !utils.VerifyPassword(user.PasswordHash, password) {
		return Session{}, s.rejectLogin(ctx, email, meta)
	}
	if !user.IsActive {
		metrics.LoginsTotal.WithLabelValues("inactive").Inc()
		return Session{}, ErrInactiveAccount
	}

	if err := s.users.UpdateLastLogin(ctx, user.ID, now); err != nil {
		return Session{}, err
	}

	sess, err := s.openSession(ctx, user, now)
	if err != nil {
		return Session{}, err
	}
	if err := s.audit.Record(ctx, model.ActionLoginSuccess, &user.ID, nil,
		meta.Details(map[string]any{"email": user.Email})); err != nil {
		return Session{}, err
	}
	metrics.LoginsTotal.WithLabelValues("success").Inc()
	return sess, nil
}

// rejectLogin records the failed attempt and returns the uniform credential
// error. The actor is nil: the attempt proved no identity.
func (s *AuthService) rejectLogin(ctx context.Context, email string, meta Meta) error {
	metrics.LoginsTotal.WithLabelValues("invalid_credentials").Inc()
	if err := s.audit.Record(ctx, model.ActionLoginFailure, nil, nil,
		meta.Details(map[string]any{"email": email, "reason": "invalid credentials"})); err != nil {
		return err
	}
	return ErrInvalidCredentials
}

// Refresh rotates the presented refresh token and mints a new access token.
// Every failure mode (missing, unknown, expired, revoked token, missing or
// inactive account) surfaces as the same ErrInvalidRefresh. The rotation
// itself is atomic: of two concurrent refreshes with the same token exactly
// one wins, the other observes an already-revoked token and is rejected,
// which is the replay-detection signal.
func (s *AuthService) Refresh(ctx context.Context, rawToken string, meta Meta) (Session, error) {
	if rawToken == "" {
		return Session{}, ErrInvalidRefresh
	}
	now := s.now()
	hash := utils.HashRefreshRaw(rawToken)

	rec, err := s.tokens.GetByHash(ctx, hash)
	if err != nil {
		if errors.Is(err, repository.ErrTokenInvalid) {
			metrics.TokenRefreshTotal.WithLabelValues("rejected").Inc()
			return Session{}, ErrInvalidRefresh
		}
		return Session{}, err
	}
	if !rec.Valid(now) {
		metrics.TokenRefreshTotal.WithLabelValues("rejected").Inc()
		return Session{}, ErrInvalidRefresh
	}

	user, err := s.users.GetByID(ctx, rec.UserID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return Session{}, ErrInvalidRefresh
		}
		return Session{}, err
	}
	if !user.IsActive {
		return Session{}, ErrInvalidRefresh
	}

	next, err := utils.NewRefreshToken(s.cfg.RefreshTTL, now)
	if err != nil {
		return Session{}, err
	}
	if err := s.tokens.Rotate(ctx, hash, user.ID, utils.HashRefreshRaw(next.Raw), next.Exp, now); err != nil {
		if errors.Is(err, repository.ErrTokenInvalid) {
			// Lost the race: the token was rotated underneath us.
			metrics.TokenRefreshTotal.WithLabelValues("rejected").Inc()
			return Session{}, ErrInvalidRefresh
		}
		return Session{}, err
	}

	access, err := utils.NewAccessToken(s.cfg.JWTSecret, user.ID, user.Role, s.cfg.AccessTTL, now)
	if err != nil {
		return Session{}, err
	}
	if err := s.audit.Record(ctx, model.ActionTokenRefresh, &user.ID, nil,
		meta.Details(map[string]any{"email": user.Email})); err != nil {
		return Session{}, err
	}
	metrics.TokenRefreshTotal.WithLabelValues("success").Inc()
	return Session{User: user, Access: access, Refresh: next, RefreshTTL: s.cfg.RefreshTTL}, nil
}

// Logout revokes the caller's presented refresh token, when there is one,
// and records the event. A missing or already-revoked token is not an
// error: the device is simply already logged out.
func (s *AuthService) Logout(ctx context.Context, user model.User, rawToken string, meta Meta) error {
	if rawToken != "" {
		if err := s.tokens.RevokeOwned(ctx, utils.HashRefreshRaw(rawToken), user.ID, s.now()); err != nil {
			return err
		}
	}
	return s.audit.Record(ctx, model.ActionLogout, &user.ID, nil,
		meta.Details(map[string]any{"email": user.Email}))
}

// RequestVerification issues a fresh email verification token for an
// unverified account, invalidating the account's previous unconsumed
// tokens, and hands it to the mailer. Delivery failure is logged and
// swallowed: the token exists and a resent request can reuse the flow.
func (s *AuthService) RequestVerification(ctx context.Context, user model.User, meta Meta) (time.Time, error) {
	if user.IsVerified {
		return time.Time{}, ErrAlreadyVerified
	}
	now := s.now()

	if err := s.verifications.DeleteUnconsumed(ctx, user.ID); err != nil {
		return time.Time{}, err
	}
	token, err := utils.NewVerificationToken()
	if err != nil {
		return time.Time{}, err
	}
	exp := now.Add(s.cfg.VerifyTTL)
	if err := s.verifications.Create(ctx, user.ID, token, exp); err != nil {
		return time.Time{}, err
	}
	if err := s.audit.Record(ctx, model.ActionEmailVerifyRequest, &user.ID, nil,
		meta.Details(nil)); err != nil {
		return time.Time{}, err
	}

	if err := s.mailer.SendVerification(ctx, user.Email, user.FullName, token); err != nil {
		s.log.Warn().Err(err).Str("email", user.Email).Msg("verification email delivery failed")
	}
	return exp, nil
}

// ConsumeVerification validates a verification token and marks the account
// verified. Error precedence: unknown token, then already consumed, then
// expired. Account flag and token flag flip in the same transaction.
func (s *AuthService) ConsumeVerification(ctx context.Context, token string, meta Meta) (model.User, error) {
	rec, err := s.verifications.GetByToken(ctx, token)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return model.User{}, ErrVerificationNotFound
		}
		return model.User{}, err
	}
	if rec.Consumed {
		return model.User{}, ErrVerificationConsumed
	}
	if !s.now().Before(rec.ExpiresAt) {
		return model.User{}, ErrVerificationExpired
	}

	user, err := s.users.GetByID(ctx, rec.UserID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return model.User{}, ErrVerificationNotFound
		}
		return model.User{}, err
	}

	if err := s.verifications.Consume(ctx, rec.ID, user.ID); err != nil {
		if errors.Is(err, repository.ErrTokenConsumed) {
			return model.User{}, ErrVerificationConsumed
		}
		return model.User{}, err
	}
	if err := s.audit.Record(ctx, model.ActionEmailVerifySuccess, &user.ID, nil,
		meta.Details(nil)); err != nil {
		return model.User{}, err
	}
	user.IsVerified = true
	return user, nil
}

// User loads an account by id.
func (s *AuthService) User(ctx context.Context, id uint64) (model.User, error) {
	return s.users.GetByID(ctx, id)
}

// UpdateProfile applies a self-service profile change: display name and/or
// password.
func (s *AuthService) UpdateProfile(ctx context.Context, userID uint64, fullName, password *string) (model.User, error) {
	upd := repository.UserUpdate{FullName: fullName}
	if password != nil {
		if len(*password) < minPasswordLen {
			return model.User{}, ErrWeakPassword
		}
		hash, err := utils.HashPassword(*password, s.cfg.BcryptCost)
		if err != nil {
			return model.User{}, err
		}
		upd.PasswordHash = &hash
	}
	if err := s.users.Update(ctx, userID, upd); err != nil {
		return model.User{}, err
	}
	return s.users.GetByID(ctx, userID)
}

// openSession mints the access token and persists a new refresh token. The
// refresh row is durably stored before the session is returned.
func (s *AuthService) openSession(ctx context.Context, user model.User, now time.Time) (Session, error) {
	access, err := utils.NewAccessToken(s.cfg.JWTSecret, user.ID, user.Role, s.cfg.AccessTTL, now)
	if err != nil {
		return Session{}, err
	}
	refresh, err := utils.NewRefreshToken(s.cfg.RefreshTTL, now)
	if err != nil {
		return Session{}, err
	}
	if err := s.tokens.Store(ctx, user.ID, utils.HashRefreshRaw(refresh.Raw), refresh.Exp); err != nil {
		return Session{}, err
	}
	return Session{User: user, Access: access, Refresh: refresh, RefreshTTL: s.cfg.RefreshTTL}, nil
}
