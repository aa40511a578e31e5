package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/talenthub/competency-api/internal/model"
	"github.com/talenthub/competency-api/internal/repository"
	"github.com/talenthub/competency-api/internal/utils"
)

// ----- stubs -----

type stubUsers struct {
	byID       map[uint64]model.User
	lastLogins map[uint64]time.Time
	nextID     uint64
}

func newStubUsers() *stubUsers {
	return &stubUsers{byID: map[uint64]model.User{}, lastLogins: map[uint64]time.Time{}, nextID: 1}
}

func (s *stubUsers) add(u model.User) model.User {
	if u.ID == 0 {
		u.ID = s.nextID
		s.nextID++
	}
	s.byID[u.ID] = u
	return u
}

func (s *stubUsers) Create(_ context.Context, email, passwordHash, fullName, role string) (uint64, error) {
	for _, u := range s.byID {
		if u.Email == email {
			return 0, repository.ErrEmailExists
		}
	}
	u := s.add(model.User{Email: email, PasswordHash: passwordHash, FullName: fullName, Role: role, IsActive: true})
	return u.ID, nil
}

func (s *stubUsers) GetByEmail(_ context.Context, email string) (model.User, error) {
	for _, u := range s.byID {
		if u.Email == email {
			return u, nil
		}
	}
	return model.User{}, repository.ErrNotFound
}

func (s *stubUsers) GetByID(_ context.Context, id uint64) (model.User, error) {
	u, ok := s.byID[id]
	if !ok {
		return model.User{}, repository.ErrNotFound
	}
	return u, nil
}

func (s *stubUsers) UpdateLastLogin(_ context.Context, id uint64, at time.Time) error {
	s.lastLogins[id] = at
	return nil
}

func (s *stubUsers) Update(_ context.Context, id uint64, upd repository.UserUpdate) error {
	u, ok := s.byID[id]
	if !ok {
		return repository.ErrNotFound
	}
	if upd.FullName != nil {
		u.FullName = *upd.FullName
	}
	if upd.PasswordHash != nil {
		u.PasswordHash = *upd.PasswordHash
	}
	if upd.Role != nil {
		u.Role = *upd.Role
	}
	if upd.IsActive != nil {
		u.IsActive = *upd.IsActive
	}
	s.byID[id] = u
	return nil
}

type stubTokens struct {
	rows map[string]model.RefreshToken
}

func newStubTokens() *stubTokens { return &stubTokens{rows: map[string]model.RefreshToken{}} }

func (s *stubTokens) Store(_ context.Context, userID uint64, hash string, exp time.Time) error {
	s.rows[hash] = model.RefreshToken{UserID: userID, TokenHash: hash, ExpiresAt: exp}
	return nil
}

func (s *stubTokens) GetByHash(_ context.Context, hash string) (model.RefreshToken, error) {
	rec, ok := s.rows[hash]
	if !ok {
		return model.RefreshToken{}, repository.ErrTokenInvalid
	}
	return rec, nil
}

func (s *stubTokens) RevokeOwned(_ context.Context, hash string, userID uint64, now time.Time) error {
	rec, ok := s.rows[hash]
	if !ok || rec.UserID != userID || rec.RevokedAt != nil {
		return nil
	}
	rec.RevokedAt = &now
	s.rows[hash] = rec
	return nil
}

func (s *stubTokens) Rotate(_ context.Context, oldHash string, userID uint64, newHash string, newExp, now time.Time) error {
	rec, ok := s.rows[oldHash]
	if !ok || rec.RevokedAt != nil || !rec.ExpiresAt.After(now) {
		return repository.ErrTokenInvalid
	}
	rec.RevokedAt = &now
	s.rows[oldHash] = rec
	s.rows[newHash] = model.RefreshToken{UserID: userID, TokenHash: newHash, ExpiresAt: newExp}
	return nil
}

type stubVerifications struct {
	rows   map[string]model.EmailVerificationToken
	nextID uint64
}

func newStubVerifications() *stubVerifications {
	return &stubVerifications{rows: map[string]model.EmailVerificationToken{}, nextID: 1}
}

func (s *stubVerifications) Create(_ context.Context, userID uint64, token string, exp time.Time) error {
	s.rows[token] = model.EmailVerificationToken{ID: s.nextID, UserID: userID, Token: token, ExpiresAt: exp}
	s.nextID++
	return nil
}

func (s *stubVerifications) DeleteUnconsumed(_ context.Context, userID uint64) error {
	for k, v := range s.rows {
		if v.UserID == userID && !v.Consumed {
			delete(s.rows, k)
		}
	}
	return nil
}

func (s *stubVerifications) GetByToken(_ context.Context, token string) (model.EmailVerificationToken, error) {
	v, ok := s.rows[token]
	if !ok {
		return model.EmailVerificationToken{}, repository.ErrNotFound
	}
	return v, nil
}

func (s *stubVerifications) Consume(_ context.Context, tokenID, userID uint64) error {
	for k, v := range s.rows {
		if v.ID == tokenID {
			if v.Consumed {
				return repository.ErrTokenConsumed
			}
			v.Consumed = true
			s.rows[k] = v
			return nil
		}
	}
	return repository.ErrNotFound
}

type auditEvent struct {
	action  string
	actorID *uint64
	target  *Target
	details map[string]any
}

type stubAudit struct {
	events  []auditEvent
	failErr error
}

func (s *stubAudit) Record(_ context.Context, action string, actorID *uint64, target *Target, details map[string]any) error {
	if s.failErr != nil {
		return s.failErr
	}
	s.events = append(s.events, auditEvent{action: action, actorID: actorID, target: target, details: details})
	return nil
}

func (s *stubAudit) last(t *testing.T) auditEvent {
	t.Helper()
	if len(s.events) == 0 {
		t.Fatal("no audit events recorded")
	}
	return s.events[len(s.events)-1]
}

type stubMailer struct {
	sent    []string
	failErr error
}

func (s *stubMailer) SendVerification(_ context.Context, to, _, _ string) error {
	if s.failErr != nil {
		return s.failErr
	}
	s.sent = append(s.sent, to)
	return nil
}

// ----- fixture -----

type authFixture struct {
	users         *stubUsers
	tokens        *stubTokens
	verifications *stubVerifications
	audit         *stubAudit
	mailer        *stubMailer
	now           time.Time
	svc           *AuthService
}

func newAuthFixture(t *testing.T) *authFixture {
	t.Helper()
	f := &authFixture{
		users:         newStubUsers(),
		tokens:        newStubTokens(),
		verifications: newStubVerifications(),
		audit:         &stubAudit{},
		mailer:        &stubMailer{},
		now:           time.Now().UTC().Truncate(time.Second),
	}
	f.svc = NewAuthService(f.users, f.tokens, f.verifications, f.audit, f.mailer,
		AuthConfig{
			JWTSecret:  "test-secret",
			AccessTTL:  15 * time.Minute,
			RefreshTTL: 7 * 24 * time.Hour,
			VerifyTTL:  24 * time.Hour,
			BcryptCost: 4,
		},
		func() time.Time { return f.now }, zerolog.Nop())
	return f
}

func (f *authFixture) addUser(t *testing.T, email, password string, active bool) model.User {
	t.Helper()
	hash, err := utils.HashPassword(password, 4)
	if err != nil {
		t.Fatalf("hash password: %v", err)
	}
	return f.users.add(model.User{
		Email: email, PasswordHash: hash, FullName: "Test User",
		Role: model.RoleEmployee, IsActive: active,
	})
}

func testMeta() Meta {
	return Meta{IP: "10.0.0.1", UserAgent: "go-test", RequestID: "req-1"}
}

// ----- login -----

func TestLoginSuccess(t *testing.T) {
	f := newAuthFixture(t)
	user := f.addUser(t, "alice@x.com", "Str0ngP@ss1", true)

	sess, err := f.svc.Login(context.Background(), "alice@x.com", "Str0ngP@ss1", testMeta())
	if err != nil {
		t.Fatalf("Login returned error: %v", err)
	}

	claims, err := utils.VerifyAccessToken("test-secret", sess.Access.Token)
	if err != nil {
		t.Fatalf("access token does not verify: %v", err)
	}
	if claims.UserID != user.ID {
		t.Fatalf("token subject = %d, want %d", claims.UserID, user.ID)
	}

	// The refresh token row must be persisted before the session returns.
	hash := utils.HashRefreshRaw(sess.Refresh.Raw)
	rec, err := f.tokens.GetByHash(context.Background(), hash)
	if err != nil {
		t.Fatalf("refresh token not stored: %v", err)
	}
	if !rec.ExpiresAt.Equal(f.now.Add(7 * 24 * time.Hour)) {
		t.Fatalf("refresh expiry = %v, want %v", rec.ExpiresAt, f.now.Add(7*24*time.Hour))
	}

	if got := f.users.lastLogins[user.ID]; !got.Equal(f.now) {
		t.Fatalf("last login = %v, want %v", got, f.now)
	}

	ev := f.audit.last(t)
	if ev.action != model.ActionLoginSuccess {
		t.Fatalf("audit action = %q, want %q", ev.action, model.ActionLoginSuccess)
	}
	if ev.actorID == nil || *ev.actorID != user.ID {
		t.Fatalf("audit actor = %v, want %d", ev.actorID, user.ID)
	}
	if ev.details["ip"] != "10.0.0.1" {
		t.Fatalf("audit ip = %v, want 10.0.0.1", ev.details["ip"])
	}
}

func TestLoginUnknownEmail(t *testing.T) {
	f := newAuthFixture(t)

	_, err := f.svc.Login(context.Background(), "ghost@x.com", "whatever", testMeta())
	if !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}

	ev := f.audit.last(t)
	if ev.action != model.ActionLoginFailure {
		t.Fatalf("audit action = %q, want %q", ev.action, model.ActionLoginFailure)
	}
	if ev.actorID != nil {
		t.Fatalf("failed login must have nil actor, got %v", *ev.actorID)
	}
	if ev.details["email"] != "ghost@x.com" {
		t.Fatalf("attempted email not preserved: %v", ev.details["email"])
	}
}

func TestLoginWrongPassword(t *testing.T) {
	f := newAuthFixture(t)
	f.addUser(t, "alice@x.com", "Str0ngP@ss1", true)

	_, err := f.svc.Login(context.Background(), "alice@x.com", "wrong-password", testMeta())
	if !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}
	if ev := f.audit.last(t); ev.action != model.ActionLoginFailure || ev.actorID != nil {
		t.Fatalf("expected anonymous login.failure event, got %+v", ev)
	}
	if len(f.tokens.rows) != 0 {
		t.Fatal("failed login must not issue tokens")
	}
}

func TestLoginInactiveAccount(t *testing.T) {
	f := newAuthFixture(t)
	f.addUser(t, "alice@x.com", "Str0ngP@ss1", false)

	_, err := f.svc.Login(context.Background(), "alice@x.com", "Str0ngP@ss1", testMeta())
	if !errors.Is(err, ErrInactiveAccount) {
		t.Fatalf("expected ErrInactiveAccount, got %v", err)
	}
	if len(f.audit.events) != 0 {
		t.Fatalf("inactive login recorded %d audit events, want 0", len(f.audit.events))
	}
}

func TestLoginAuditFailureFailsLogin(t *testing.T) {
	f := newAuthFixture(t)
	f.addUser(t, "alice@x.com", "Str0ngP@ss1", true)
	f.audit.failErr = errors.New("audit store down")

	if _, err := f.svc.Login(context.Background(), "alice@x.com", "Str0ngP@ss1", testMeta()); err == nil {
		t.Fatal("login succeeded although the audit write failed")
	}
}

// ----- refresh -----

func TestRefreshRotatesToken(t *testing.T) {
	f := newAuthFixture(t)
	user := f.addUser(t, "alice@x.com", "Str0ngP@ss1", true)

	sess, err := f.svc.Login(context.Background(), "alice@x.com", "Str0ngP@ss1", testMeta())
	if err != nil {
		t.Fatalf("Login returned error: %v", err)
	}
	oldRaw := sess.Refresh.Raw

	next, err := f.svc.Refresh(context.Background(), oldRaw, testMeta())
	if err != nil {
		t.Fatalf("Refresh returned error: %v", err)
	}
	if next.Refresh.Raw == oldRaw {
		t.Fatal("refresh did not rotate the token")
	}
	if _, err := utils.VerifyAccessToken("test-secret", next.Access.Token); err != nil {
		t.Fatalf("new access token does not verify: %v", err)
	}

	// The old token is now revoked; replaying it must fail uniformly.
	if _, err := f.svc.Refresh(context.Background(), oldRaw, testMeta()); !errors.Is(err, ErrInvalidRefresh) {
		t.Fatalf("replayed token: expected ErrInvalidRefresh, got %v", err)
	}

	ev := f.audit.last(t)
	if ev.action != model.ActionTokenRefresh {
		t.Fatalf("audit action = %q, want %q", ev.action, model.ActionTokenRefresh)
	}
	if ev.actorID == nil || *ev.actorID != user.ID {
		t.Fatalf("audit actor = %v, want %d", ev.actorID, user.ID)
	}
}

func TestRefreshRejections(t *testing.T) {
	f := newAuthFixture(t)
	user := f.addUser(t, "alice@x.com", "Str0ngP@ss1", true)

	// Unknown token.
	if _, err := f.svc.Refresh(context.Background(), "deadbeef", testMeta()); !errors.Is(err, ErrInvalidRefresh) {
		t.Fatalf("unknown token: expected ErrInvalidRefresh, got %v", err)
	}
	// Missing token.
	if _, err := f.svc.Refresh(context.Background(), "", testMeta()); !errors.Is(err, ErrInvalidRefresh) {
		t.Fatalf("missing token: expected ErrInvalidRefresh, got %v", err)
	}

	// Expired token.
	expired, _ := utils.NewRefreshToken(time.Hour, f.now.Add(-2*time.Hour))
	_ = f.tokens.Store(context.Background(), user.ID, utils.HashRefreshRaw(expired.Raw), expired.Exp)
	if _, err := f.svc.Refresh(context.Background(), expired.Raw, testMeta()); !errors.Is(err, ErrInvalidRefresh) {
		t.Fatalf("expired token: expected ErrInvalidRefresh, got %v", err)
	}

	// Revoked token.
	revoked, _ := utils.NewRefreshToken(time.Hour, f.now)
	hash := utils.HashRefreshRaw(revoked.Raw)
	_ = f.tokens.Store(context.Background(), user.ID, hash, revoked.Exp)
	_ = f.tokens.RevokeOwned(context.Background(), hash, user.ID, f.now)
	if _, err := f.svc.Refresh(context.Background(), revoked.Raw, testMeta()); !errors.Is(err, ErrInvalidRefresh) {
		t.Fatalf("revoked token: expected ErrInvalidRefresh, got %v", err)
	}

	// Inactive owner.
	inactive := false
	_ = f.users.Update(context.Background(), user.ID, repository.UserUpdate{IsActive: &inactive})
	live, _ := utils.NewRefreshToken(time.Hour, f.now)
	_ = f.tokens.Store(context.Background(), user.ID, utils.HashRefreshRaw(live.Raw), live.Exp)
	if _, err := f.svc.Refresh(context.Background(), live.Raw, testMeta()); !errors.Is(err, ErrInvalidRefresh) {
		t.Fatalf("inactive owner: expected ErrInvalidRefresh, got %v", err)
	}
}

// ----- logout -----

func TestLogout(t *testing.T) {
	f := newAuthFixture(t)
	user := f.addUser(t, "alice@x.com", "Str0ngP@ss1", true)

	sess, err := f.svc.Login(context.Background(), "alice@x.com", "Str0ngP@ss1", testMeta())
	if err != nil {
		t.Fatalf("Login returned error: %v", err)
	}

	if err := f.svc.Logout(context.Background(), user, sess.Refresh.Raw, testMeta()); err != nil {
		t.Fatalf("Logout returned error: %v", err)
	}
	if ev := f.audit.last(t); ev.action != model.ActionLogout {
		t.Fatalf("audit action = %q, want %q", ev.action, model.ActionLogout)
	}
	// The revoked token cannot refresh anymore.
	if _, err := f.svc.Refresh(context.Background(), sess.Refresh.Raw, testMeta()); !errors.Is(err, ErrInvalidRefresh) {
		t.Fatalf("expected ErrInvalidRefresh after logout, got %v", err)
	}

	// Logout is idempotent and tolerates a missing token.
	if err := f.svc.Logout(context.Background(), user, sess.Refresh.Raw, testMeta()); err != nil {
		t.Fatalf("repeated Logout returned error: %v", err)
	}
	if err := f.svc.Logout(context.Background(), user, "", testMeta()); err != nil {
		t.Fatalf("Logout without token returned error: %v", err)
	}
}

// ----- email verification -----

func TestRequestVerification(t *testing.T) {
	f := newAuthFixture(t)
	user := f.addUser(t, "alice@x.com", "Str0ngP@ss1", true)

	exp, err := f.svc.RequestVerification(context.Background(), user, testMeta())
	if err != nil {
		t.Fatalf("RequestVerification returned error: %v", err)
	}
	if !exp.Equal(f.now.Add(24 * time.Hour)) {
		t.Fatalf("expiry = %v, want %v", exp, f.now.Add(24*time.Hour))
	}
	if len(f.mailer.sent) != 1 || f.mailer.sent[0] != "alice@x.com" {
		t.Fatalf("mailer sent = %v, want one mail to alice@x.com", f.mailer.sent)
	}
	if ev := f.audit.last(t); ev.action != model.ActionEmailVerifyRequest {
		t.Fatalf("audit action = %q, want %q", ev.action, model.ActionEmailVerifyRequest)
	}

	// A second request invalidates the first token.
	var firstToken string
	for tok := range f.verifications.rows {
		firstToken = tok
	}
	if _, err := f.svc.RequestVerification(context.Background(), user, testMeta()); err != nil {
		t.Fatalf("second RequestVerification returned error: %v", err)
	}
	if _, err := f.verifications.GetByToken(context.Background(), firstToken); !errors.Is(err, repository.ErrNotFound) {
		t.Fatal("previous unconsumed token survived a re-request")
	}
}

func TestRequestVerificationAlreadyVerified(t *testing.T) {
	f := newAuthFixture(t)
	user := f.addUser(t, "alice@x.com", "Str0ngP@ss1", true)
	user.IsVerified = true
	f.users.byID[user.ID] = user

	if _, err := f.svc.RequestVerification(context.Background(), user, testMeta()); !errors.Is(err, ErrAlreadyVerified) {
		t.Fatalf("expected ErrAlreadyVerified, got %v", err)
	}
}

func TestRequestVerificationMailerFailureNotFatal(t *testing.T) {
	f := newAuthFixture(t)
	user := f.addUser(t, "alice@x.com", "Str0ngP@ss1", true)
	f.mailer.failErr = errors.New("smtp down")

	if _, err := f.svc.RequestVerification(context.Background(), user, testMeta()); err != nil {
		t.Fatalf("mailer failure must not fail the request, got %v", err)
	}
	if len(f.verifications.rows) != 1 {
		t.Fatal("verification token was not stored")
	}
}

func TestConsumeVerification(t *testing.T) {
	f := newAuthFixture(t)
	user := f.addUser(t, "alice@x.com", "Str0ngP@ss1", true)
	_ = f.verifications.Create(context.Background(), user.ID, "tok-1", f.now.Add(time.Hour))

	got, err := f.svc.ConsumeVerification(context.Background(), "tok-1", testMeta())
	if err != nil {
		t.Fatalf("ConsumeVerification returned error: %v", err)
	}
	if !got.IsVerified {
		t.Fatal("returned user not marked verified")
	}
	if ev := f.audit.last(t); ev.action != model.ActionEmailVerifySuccess {
		t.Fatalf("audit action = %q, want %q", ev.action, model.ActionEmailVerifySuccess)
	}

	// Second consumption reports "already used", not "not found".
	if _, err := f.svc.ConsumeVerification(context.Background(), "tok-1", testMeta()); !errors.Is(err, ErrVerificationConsumed) {
		t.Fatalf("expected ErrVerificationConsumed, got %v", err)
	}
}

func TestConsumeVerificationPrecedence(t *testing.T) {
	f := newAuthFixture(t)
	user := f.addUser(t, "alice@x.com", "Str0ngP@ss1", true)

	// Unknown token.
	if _, err := f.svc.ConsumeVerification(context.Background(), "nope", testMeta()); !errors.Is(err, ErrVerificationNotFound) {
		t.Fatalf("expected ErrVerificationNotFound, got %v", err)
	}

	// Expired token.
	_ = f.verifications.Create(context.Background(), user.ID, "tok-exp", f.now.Add(-time.Minute))
	if _, err := f.svc.ConsumeVerification(context.Background(), "tok-exp", testMeta()); !errors.Is(err, ErrVerificationExpired) {
		t.Fatalf("expected ErrVerificationExpired, got %v", err)
	}

	// Consumed wins over expired.
	_ = f.verifications.Create(context.Background(), user.ID, "tok-used", f.now.Add(-time.Minute))
	row := f.verifications.rows["tok-used"]
	row.Consumed = true
	f.verifications.rows["tok-used"] = row
	if _, err := f.svc.ConsumeVerification(context.Background(), "tok-used", testMeta()); !errors.Is(err, ErrVerificationConsumed) {
		t.Fatalf("expected ErrVerificationConsumed, got %v", err)
	}
}

// ----- register / profile -----

func TestRegister(t *testing.T) {
	f := newAuthFixture(t)

	user, err := f.svc.Register(context.Background(), "bob@x.com", "Str0ngP@ss1", "Bob")
	if err != nil {
		t.Fatalf("Register returned error: %v", err)
	}
	if user.Role != model.RoleEmployee {
		t.Fatalf("role = %q, want lowest-privilege %q", user.Role, model.RoleEmployee)
	}
	if user.PasswordHash == "Str0ngP@ss1" {
		t.Fatal("password stored in plain text")
	}
	if !utils.VerifyPassword(user.PasswordHash, "Str0ngP@ss1") {
		t.Fatal("stored hash does not match the password")
	}

	if _, err := f.svc.Register(context.Background(), "short@x.com", "short", "S"); !errors.Is(err, ErrWeakPassword) {
		t.Fatalf("expected ErrWeakPassword, got %v", err)
	}
	if _, err := f.svc.Register(context.Background(), "bob@x.com", "Str0ngP@ss1", "Bob"); !errors.Is(err, repository.ErrEmailExists) {
		t.Fatalf("expected ErrEmailExists, got %v", err)
	}
}

func TestUpdateProfile(t *testing.T) {
	f := newAuthFixture(t)
	user := f.addUser(t, "alice@x.com", "Str0ngP@ss1", true)

	name := "Alice Renamed"
	pass := "N3wP@ssword!"
	got, err := f.svc.UpdateProfile(context.Background(), user.ID, &name, &pass)
	if err != nil {
		t.Fatalf("UpdateProfile returned error: %v", err)
	}
	if got.FullName != name {
		t.Fatalf("full name = %q, want %q", got.FullName, name)
	}
	if !utils.VerifyPassword(got.PasswordHash, pass) {
		t.Fatal("new password does not verify")
	}

	weak := "short"
	if _, err := f.svc.UpdateProfile(context.Background(), user.ID, nil, &weak); !errors.Is(err, ErrWeakPassword) {
		t.Fatalf("expected ErrWeakPassword, got %v", err)
	}
}
