package service

import (
	"context"
	"errors"
	"net/mail"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/MATTHEWPURBA/management-system/internal/authz"
	"github.com/MATTHEWPURBA/management-system/internal/crypto"
	"github.com/MATTHEWPURBA/management-system/internal/model"
)

type UserService struct {
	repo   Repository
	logger *zap.Logger
}

func NewUserService(repo Repository, logger *zap.Logger) *UserService {
	return &UserService{repo: repo, logger: logger}
}

type CreateUserInput struct {
	Name     string
	Email    string
	Password string
	Role     model.Role
}

type UpdateUserInput struct {
	Name     *string
	Email    *string
	Password *string
	Role     *model.Role
	Active   *bool
}

func (s *UserService) List(ctx context.Context, actor model.User) ([]model.User, error) {
	if decision := authz.CanViewUsers(actorOf(actor)); !decision.Allowed {
		return nil, NewAuthorization(decision.Reason)
	}
	users, err := s.repo.ListUsers(ctx)
	if err != nil {
		return nil, NewPersistence(err)
	}
	return users, nil
}

func (s *UserService) Get(ctx context.Context, actor model.User, id uuid.UUID) (model.User, error) {
	if decision := authz.CanViewUsers(actorOf(actor)); !decision.Allowed {
		return model.User{}, NewAuthorization(decision.Reason)
	}
	user, err := s.repo.UserByID(ctx, id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return model.User{}, NewNotFound("user")
		}
		return model.User{}, NewPersistence(err)
	}
	return user, nil
}

func (s *UserService) Create(ctx context.Context, actor model.User, in CreateUserInput) (model.User, error) {
	if decision := authz.CanManageUsers(actorOf(actor)); !decision.Allowed {
		return model.User{}, NewAuthorization(decision.Reason)
	}

	fields := map[string][]string{}
	if in.Name == "" {
		fields["name"] = append(fields["name"], "name is required")
	}
	if in.Email == "" {
		fields["email"] = append(fields["email"], "email is required")
	} else if _, err := mail.ParseAddress(in.Email); err != nil {
		fields["email"] = append(fields["email"], "email is not a valid address")
	}
	if len(in.Password) < 8 {
		fields["password"] = append(fields["password"], "password must be at least 8 characters")
	}
	if !in.Role.Valid() {
		fields["role"] = append(fields["role"], "role must be one of admin, manager, staff")
	}
	if len(fields) > 0 {
		return model.User{}, NewValidation(fields)
	}

	hash, err := crypto.HashPassword(in.Password)
	if err != nil {
		return model.User{}, NewPersistence(err)
	}
	user := model.User{
		ID:           uuid.New(),
		Name:         in.Name,
		Email:        in.Email,
		PasswordHash: hash,
		Role:         in.Role,
		Active:       true,
	}
	entry := newLogEntry(actorRef(actor.ID), model.ActionCreateUser, describeUserCreated(actor, user))
	if err := s.repo.CreateUser(ctx, user, entry); err != nil {
		if errors.Is(err, ErrDuplicateEmail) {
			return model.User{}, NewIntegrity("email is already in use")
		}
		return model.User{}, NewPersistence(err)
	}

	s.logger.Info("user created",
		zap.String("user_id", user.ID.String()),
		zap.String("role", string(user.Role)),
		zap.String("actor_id", actor.ID.String()))
	return user, nil
}

func (s *UserService) Update(ctx context.Context, actor model.User, id uuid.UUID, in UpdateUserInput) (model.User, error) {
	if decision := authz.CanManageUsers(actorOf(actor)); !decision.Allowed {
		return model.User{}, NewAuthorization(decision.Reason)
	}
	user, err := s.repo.UserByID(ctx, id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return model.User{}, NewNotFound("user")
		}
		return model.User{}, NewPersistence(err)
	}

	fields := map[string][]string{}
	if in.Name != nil {
		if *in.Name == "" {
			fields["name"] = append(fields["name"], "name must not be empty")
		}
		user.Name = *in.Name
	}
	if in.Email != nil {
		if _, err := mail.ParseAddress(*in.Email); err != nil {
			fields["email"] = append(fields["email"], "email is not a valid address")
		}
		user.Email = *in.Email
	}
	if in.Password != nil {
		if len(*in.Password) < 8 {
			fields["password"] = append(fields["password"], "password must be at least 8 characters")
		} else {
			hash, err := crypto.HashPassword(*in.Password)
			if err != nil {
				return model.User{}, NewPersistence(err)
			}
			user.PasswordHash = hash
		}
	}
	if in.Role != nil {
		if !in.Role.Valid() {
			fields["role"] = append(fields["role"], "role must be one of admin, manager, staff")
		}
		user.Role = *in.Role
	}
	if in.Active != nil {
		user.Active = *in.Active
	}
	if len(fields) > 0 {
		return model.User{}, NewValidation(fields)
	}

	entry := newLogEntry(actorRef(actor.ID), model.ActionUpdateUser, describeUserUpdated(actor, user))
	if err := s.repo.UpdateUser(ctx, user, entry); err != nil {
		if errors.Is(err, ErrDuplicateEmail) {
			return model.User{}, NewIntegrity("email is already in use")
		}
		return model.User{}, NewPersistence(err)
	}
	return user, nil
}

func (s *UserService) Delete(ctx context.Context, actor model.User, id uuid.UUID) error {
	user, err := s.repo.UserByID(ctx, id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return NewNotFound("user")
		}
		return NewPersistence(err)
	}
	if decision := authz.CanDeleteUser(actorOf(actor), id); !decision.Allowed {
		return NewAuthorization(decision.Reason)
	}

	entry := newLogEntry(actorRef(actor.ID), model.ActionDeleteUser, describeUserDeleted(actor, user))
	if err := s.repo.DeleteUser(ctx, id, entry); err != nil {
		return NewPersistence(err)
	}

	s.logger.Info("user deleted",
		zap.String("user_id", id.String()),
		zap.String("actor_id", actor.ID.String()))
	return nil
}
