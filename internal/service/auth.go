package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/ovechkin-dev/marketplace/internal/hash"
	"github.com/ovechkin-dev/marketplace/internal/logging"
	"github.com/ovechkin-dev/marketplace/internal/models"
	"github.com/ovechkin-dev/marketplace/internal/repo"
	"github.com/ovechkin-dev/marketplace/internal/tokens"
	"gorm.io/gorm"
)

type AuthService struct {
	Repo      *repo.GormRepo
	JWTSecret []byte
	TokenTTL  time.Duration
	Events    Publisher
}

type LoginResult struct {
	Token string
	User  *models.User
}

func (s *AuthService) Register(ctx context.Context, username, password, role string) (uint, error) {
	l := logging.FromContext(ctx).With("svc", "auth.register")

	if username == "" || password == "" {
		return 0, fmt.Errorf("%w: username and password are required", ErrValidation)
	}
	if role == "" {
		role = models.RoleUser
	}
	if !models.ValidRole(role) {
		return 0, fmt.Errorf("%w: unknown role %q", ErrValidation, role)
	}

	pwHash, err := hash.HashPassword(password)
	if err != nil {
		l.Error("register_error", "reason", "cannot hash the password", "error", err)
		return 0, err
	}

	user := models.User{
		Username:     username,
		PasswordHash: pwHash,
		Role:         role,
	}
	if err := s.Repo.CreateUserIfNotExists(ctx, &user); err != nil {
		return 0, err
	}

	s.publish(ctx, user.ID, map[string]any{
		"type":     "user_registered",
		"userID":   user.ID,
		"username": user.Username,
	})

	l.Info("register_success", "userID", user.ID)
	return user.ID, nil
}

func (s *AuthService) Login(ctx context.Context, username, password string) (*LoginResult, error) {
	l := logging.FromContext(ctx).With("svc", "auth.login")

	if username == "" || password == "" {
		return nil, fmt.Errorf("%w: username and password are required", ErrValidation)
	}

	user, err := s.Repo.FindUserByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}
	if !hash.CheckPassword(user.PasswordHash, password) {
		return nil, ErrInvalidCredentials
	}

	token, err := tokens.SignAccessToken(user.ID, user.Username, user.Role, s.JWTSecret, s.TokenTTL)
	if err != nil {
		l.Error("login_error", "reason", "cannot sign token", "error", err)
		return nil, err
	}

	s.publish(ctx, user.ID, map[string]any{
		"type":     "user_logged_in",
		"userID":   user.ID,
		"username": user.Username,
	})

	l.Info("login_success", "userID", user.ID)
	return &LoginResult{Token: token, User: user}, nil
}

func (s *AuthService) publish(ctx context.Context, userID uint, event map[string]any) {
	if s.Events == nil {
		return
	}
	pubCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := s.Events.PublishEvent(pubCtx, "user_events", fmt.Sprint(userID), event); err != nil {
		logging.FromContext(ctx).Error("event publish error", "topic", "user_events", "error", err)
	}
}
