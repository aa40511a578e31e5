package service

import (
	"context"
	"errors"
	"time"

	"github.com/talenthub/competency-api/internal/model"
	"github.com/talenthub/competency-api/internal/repository"
	"github.com/talenthub/competency-api/internal/utils"
)

// AccountStore extends UserStore with the admin-only operations.
type AccountStore interface {
	UserStore
	Delete(ctx context.Context, id uint64) error
	List(ctx context.Context, f repository.UserFilter) ([]model.User, int64, error)
}

// SessionRevoker cuts every live refresh token of a user.
type SessionRevoker interface {
	RevokeAllForUser(ctx context.Context, userID uint64, now time.Time) error
}

// ProfileWriter creates the employee profile that accompanies a new
// account.
type ProfileWriter interface {
	Create(ctx context.Context, e model.Employee) (uint64, error)
	GetByID(ctx context.Context, id uint64) (model.Employee, error)
}

// UserService holds the admin-side account operations. Every mutation is
// audited with the acting admin as the actor and the touched account as
// the target.
type UserService struct {
	users    AccountStore
	tokens   SessionRevoker
	profiles ProfileWriter
	audit    AuditRecorder
	cost     int
	now      Clock
}

func NewUserService(users AccountStore, tokens SessionRevoker,
	profiles ProfileWriter, audit AuditRecorder, bcryptCost int, now Clock) *UserService {
	if now == nil {
		now = UTCNow
	}
	return &UserService{users: users, tokens: tokens, profiles: profiles,
		audit: audit, cost: bcryptCost, now: now}
}

// CreateInput is the admin account-creation payload. The employee profile
// fields ride along so an account and its profile are provisioned in one
// call.
type CreateInput struct {
	Email      string
	Password   string
	FullName   string
	Role       string
	IsActive   *bool
	Department *string
	JobTitle   *string
	ManagerID  *uint64
}

// Create provisions an account with an explicit role.
func (s *UserService) Create(ctx context.Context, actorID uint64, in CreateInput, meta Meta) (model.User, error) {
	if len(in.Password) < minPasswordLen {
		return model.User{}, ErrWeakPassword
	}
	if !model.ValidRole(in.Role) {
		return model.User{}, ErrInvalidRole
	}
	if in.ManagerID != nil {
		if _, err := s.profiles.GetByID(ctx, *in.ManagerID); err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return model.User{}, ErrManagerNotFound
			}
			return model.User{}, err
		}
	}
	hash, err := utils.HashPassword(in.Password, s.cost)
	if err != nil {
		return model.User{}, err
	}
	id, err := s.users.Create(ctx, in.Email, hash, in.FullName, in.Role)
	if err != nil {
		return model.User{}, err
	}
	if _, err := s.profiles.Create(ctx, model.Employee{
		UserID:     id,
		Department: in.Department,
		JobTitle:   in.JobTitle,
		ManagerID:  in.ManagerID,
	}); err != nil {
		return model.User{}, err
	}
	if in.IsActive != nil && !*in.IsActive {
		if err := s.users.Update(ctx, id, repository.UserUpdate{IsActive: in.IsActive}); err != nil {
			return model.User{}, err
		}
	}
	user, err := s.users.GetByID(ctx, id)
	if err != nil {
		return model.User{}, err
	}
	err = s.audit.Record(ctx, model.ActionUserCreate, &actorID, &Target{Type: "user", ID: id},
		meta.Details(map[string]any{"email": user.Email, "role": user.Role}))
	if err != nil {
		return model.User{}, err
	}
	return user, nil
}

// UpdateInput is the admin account-update payload. Nil fields are left
// unchanged.
type UpdateInput struct {
	Email    *string
	Password *string
	FullName *string
	Role     *string
	IsActive *bool
}

// Update applies a partial account change. A role change is recorded as its
// own audit event alongside the update, and deactivation revokes every live
// refresh token so the account cannot renew a session.
func (s *UserService) Update(ctx context.Context, actorID, userID uint64, in UpdateInput, meta Meta) (model.User, error) {
	before, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return model.User{}, err
	}

	upd := repository.UserUpdate{Email: in.Email, FullName: in.FullName, IsActive: in.IsActive}
	if in.Password != nil {
		if len(*in.Password) < minPasswordLen {
			return model.User{}, ErrWeakPassword
		}
		hash, herr := utils.HashPassword(*in.Password, s.cost)
		if herr != nil {
			return model.User{}, herr
		}
		upd.PasswordHash = &hash
	}
	if in.Role != nil {
		if !model.ValidRole(*in.Role) {
			return model.User{}, ErrInvalidRole
		}
		upd.Role = in.Role
	}
	if err := s.users.Update(ctx, userID, upd); err != nil {
		return model.User{}, err
	}

	if in.IsActive != nil && !*in.IsActive && before.IsActive {
		if err := s.tokens.RevokeAllForUser(ctx, userID, s.now()); err != nil {
			return model.User{}, err
		}
	}

	target := &Target{Type: "user", ID: userID}
	if err := s.audit.Record(ctx, model.ActionUserUpdate, &actorID, target,
		meta.Details(map[string]any{"email": before.Email})); err != nil {
		return model.User{}, err
	}
	if in.Role != nil && *in.Role != before.Role {
		if err := s.audit.Record(ctx, model.ActionUserRoleChange, &actorID, target,
			meta.Details(map[string]any{"from": before.Role, "to": *in.Role})); err != nil {
			return model.User{}, err
		}
	}
	return s.users.GetByID(ctx, userID)
}

// Delete removes an account. Admins cannot delete themselves; that would
// orphan the session performing the deletion.
func (s *UserService) Delete(ctx context.Context, actorID, userID uint64, meta Meta) error {
	if actorID == userID {
		return ErrSelfDelete
	}
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return err
	}
	if err := s.users.Delete(ctx, userID); err != nil {
		return err
	}
	return s.audit.Record(ctx, model.ActionUserDelete, &actorID, &Target{Type: "user", ID: userID},
		meta.Details(map[string]any{"email": user.Email}))
}

// Get fetches a single account.
func (s *UserService) Get(ctx context.Context, userID uint64) (model.User, error) {
	return s.users.GetByID(ctx, userID)
}

// List pages through accounts.
func (s *UserService) List(ctx context.Context, f repository.UserFilter) ([]model.User, int64, error) {
	return s.users.List(ctx, f)
}
