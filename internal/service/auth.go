package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Skotchmaster/docflow/internal/hash"
	"github.com/Skotchmaster/docflow/internal/logging"
	"github.com/Skotchmaster/docflow/internal/models"
	"github.com/Skotchmaster/docflow/internal/mykafka"
	"github.com/Skotchmaster/docflow/internal/repo"
	"github.com/Skotchmaster/docflow/internal/token"
)

// ErrInvalidCredentials covers both an unknown email and a wrong password,
// so a caller can not probe which accounts exist.
var ErrInvalidCredentials = errors.New("invalid credentials")

var ErrInvalidRole = errors.New("invalid role")

type AuthService struct {
	Repo     *repo.GormRepo
	Issuer   *token.Issuer
	Producer *mykafka.Producer
}

type LoginResult struct {
	AccessToken string            `json:"access_token"`
	User        models.PublicUser `json:"user"`
}

func (s *AuthService) Register(ctx context.Context, email, password string, role models.Role) (models.PublicUser, error) {
	l := logging.FromContext(ctx).With("svc", "auth.register")

	if role == "" {
		role = models.RoleViewer
	}
	if !role.Valid() {
		return models.PublicUser{}, ErrInvalidRole
	}

	if _, err := s.Repo.UserByEmail(ctx, email); err == nil {
		return models.PublicUser{}, repo.ErrUserExists
	} else if !errors.Is(err, repo.ErrUserNotFound) {
		l.Error("register_failed", "reason", "user lookup", "error", err)
		return models.PublicUser{}, err
	}

	pwHash, err := hash.HashPassword(password)
	if err != nil {
		l.Error("register_failed", "reason", "cannot hash the password", "error", err)
		return models.PublicUser{}, err
	}

	user := models.User{
		Email:        email,
		PasswordHash: pwHash,
		Role:         role,
	}
	if err := s.Repo.CreateUser(ctx, &user); err != nil {
		if !errors.Is(err, repo.ErrUserExists) {
			l.Error("register_failed", "error", err)
		}
		return models.PublicUser{}, err
	}

	s.publish(ctx, user.ID, map[string]interface{}{
		"type":   "user_registered",
		"UserID": user.ID,
		"email":  user.Email,
	})

	l.Info("user_registered", "user_id", user.ID)
	return user.Public(), nil
}

func (s *AuthService) Login(ctx context.Context, email, password string) (*LoginResult, error) {
	l := logging.FromContext(ctx).With("svc", "auth.login")

	user, err := s.Repo.UserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repo.ErrUserNotFound) {
			return nil, ErrInvalidCredentials
		}
		l.Error("login_failed", "reason", "user lookup", "error", err)
		return nil, err
	}

	if !hash.CheckPassword(user.PasswordHash, password) {
		return nil, ErrInvalidCredentials
	}

	accessToken, err := s.Issuer.Issue(user)
	if err != nil {
		l.Error("login_failed", "reason", "cannot sign token", "error", err)
		return nil, err
	}

	s.publish(ctx, user.ID, map[string]interface{}{
		"type":   "user_logged_in",
		"UserID": user.ID,
		"email":  user.Email,
	})

	l.Info("login_successful", "user_id", user.ID)
	return &LoginResult{AccessToken: accessToken, User: user.Public()}, nil
}

// Logout blacklists the presented token. The write must be acknowledged
// before success is reported, otherwise a crash would let the token be
// reused after the client was told it is dead.
func (s *AuthService) Logout(ctx context.Context, rawToken string) error {
	l := logging.FromContext(ctx).With("svc", "auth.logout")

	if err := s.Repo.Revoke(ctx, rawToken, s.Issuer.Expiry(rawToken)); err != nil {
		l.Error("logout_failed", "reason", "cannot revoke token", "error", err)
		return fmt.Errorf("revoke token: %w", err)
	}

	s.publish(ctx, 0, map[string]interface{}{
		"type": "user_logged_out",
	})

	l.Info("logout_successful")
	return nil
}

func (s *AuthService) publish(ctx context.Context, userID uint, event map[string]interface{}) {
	pubCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := s.Producer.PublishEvent(pubCtx, "user_events", fmt.Sprint(userID), event); err != nil {
		logging.FromContext(ctx).Warn("kafka_publish_failed", "error", err)
	}
}
