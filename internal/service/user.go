package service

import (
	"context"
	"errors"

	"github.com/Skotchmaster/docflow/internal/hash"
	"github.com/Skotchmaster/docflow/internal/logging"
	"github.com/Skotchmaster/docflow/internal/models"
	"github.com/Skotchmaster/docflow/internal/repo"
)

// UserService backs the admin-only user management endpoints.
type UserService struct {
	Repo *repo.GormRepo
}

type UserUpdate struct {
	Email    string
	Password string
	Role     models.Role
}

func (s *UserService) Create(ctx context.Context, email, password string, role models.Role) (models.PublicUser, error) {
	l := logging.FromContext(ctx).With("svc", "users.create")

	if role == "" {
		role = models.RoleViewer
	}
	if !role.Valid() {
		return models.PublicUser{}, ErrInvalidRole
	}

	if _, err := s.Repo.UserByEmail(ctx, email); err == nil {
		return models.PublicUser{}, repo.ErrUserExists
	} else if !errors.Is(err, repo.ErrUserNotFound) {
		l.Error("create_failed", "reason", "user lookup", "error", err)
		return models.PublicUser{}, err
	}

	pwHash, err := hash.HashPassword(password)
	if err != nil {
		l.Error("create_failed", "reason", "cannot hash the password", "error", err)
		return models.PublicUser{}, err
	}

	user := models.User{Email: email, PasswordHash: pwHash, Role: role}
	if err := s.Repo.CreateUser(ctx, &user); err != nil {
		return models.PublicUser{}, err
	}

	l.Info("user_created", "user_id", user.ID, "role", user.Role)
	return user.Public(), nil
}

func (s *UserService) Get(ctx context.Context, id uint) (models.PublicUser, error) {
	user, err := s.Repo.UserByID(ctx, id)
	if err != nil {
		return models.PublicUser{}, err
	}
	return user.Public(), nil
}

func (s *UserService) Update(ctx context.Context, id uint, upd UserUpdate) (models.PublicUser, error) {
	l := logging.FromContext(ctx).With("svc", "users.update", "user_id", id)

	user, err := s.Repo.UserByID(ctx, id)
	if err != nil {
		return models.PublicUser{}, err
	}

	if upd.Email != "" {
		user.Email = upd.Email
	}
	if upd.Role != "" {
		if !upd.Role.Valid() {
			return models.PublicUser{}, ErrInvalidRole
		}
		user.Role = upd.Role
	}
	if upd.Password != "" {
		pwHash, err := hash.HashPassword(upd.Password)
		if err != nil {
			l.Error("update_failed", "reason", "cannot hash the password", "error", err)
			return models.PublicUser{}, err
		}
		user.PasswordHash = pwHash
	}

	if err := s.Repo.SaveUser(ctx, user); err != nil {
		return models.PublicUser{}, err
	}

	l.Info("user_updated")
	return user.Public(), nil
}

func (s *UserService) Delete(ctx context.Context, id uint) error {
	l := logging.FromContext(ctx).With("svc", "users.delete", "user_id", id)

	if err := s.Repo.DeleteUser(ctx, id); err != nil {
		return err
	}

	l.Info("user_deleted")
	return nil
}
