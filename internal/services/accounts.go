package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/evofit/evofit-backend/internal/auth"
	"github.com/evofit/evofit-backend/internal/models"
	"github.com/evofit/evofit-backend/internal/store"
	"github.com/evofit/evofit-backend/pkg/utils"
)

// AccountService registers and authenticates users.
type AccountService struct {
	store  store.Store
	hasher *auth.PasswordHasher
	tokens *auth.TokenService
	log    logrus.FieldLogger
	now    func() time.Time
}

func NewAccountService(st store.Store, hasher *auth.PasswordHasher, tokens *auth.TokenService, log logrus.FieldLogger) *AccountService {
	return &AccountService{store: st, hasher: hasher, tokens: tokens, log: log, now: time.Now}
}

// Signup creates the user with a default goal and returns a fresh token.
func (s *AccountService) Signup(ctx context.Context, req models.SignupRequest) (*models.AuthResponse, error) {
	req.Username = utils.NormalizeUsername(req.Username)
	req.Email = utils.NormalizeEmail(req.Email)
	req.FullName = strings.TrimSpace(req.FullName)

	if err := validatePayload(&req); err != nil {
		return nil, err
	}
	if err := utils.ValidateUsername(req.Username); err != nil {
		return nil, &InputError{Message: err.Error(), Err: err}
	}

	taken, err := s.store.UsernameOrEmailTaken(ctx, req.Username, req.Email)
	if err != nil {
		return nil, fmt.Errorf("check existing user: %w", err)
	}
	if taken {
		return nil, ErrConflict
	}

	hash, err := s.hasher.Hash(req.Password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	user := &models.User{
		Username:     req.Username,
		Email:        req.Email,
		FullName:     req.FullName,
		CreatedAt:    s.now().UTC(),
		PasswordHash: hash,
	}
	// The unique indexes catch a signup racing past the check above.
	if err := s.store.CreateUser(ctx, user); err != nil {
		if errors.Is(err, store.ErrDuplicate) {
			return nil, ErrConflict
		}
		return nil, fmt.Errorf("create user: %w", err)
	}

	// A missing goal is recreated lazily on first read, so this is not fatal.
	if err := s.store.CreateGoal(ctx, models.NewDefaultGoal(user.ID, user.CreatedAt)); err != nil && !errors.Is(err, store.ErrDuplicate) {
		s.log.WithError(err).WithField("user_id", user.ID).Warn("failed to create default goal")
	}

	return s.issue(user)
}

// Login checks the credentials. Unknown users and wrong passwords are
// indistinguishable to the caller. The username is matched regardless of
// case since older accounts kept their original casing.
func (s *AccountService) Login(ctx context.Context, req models.LoginRequest) (*models.AuthResponse, error) {
	req.Username = strings.TrimSpace(req.Username)
	if err := validatePayload(&req); err != nil {
		return nil, err
	}

	user, err := s.store.GetUserByUsername(ctx, req.Username)
	if errors.Is(err, store.ErrNotFound) {
		return nil, ErrInvalidCredentials
	}
	if err != nil {
		return nil, fmt.Errorf("load user: %w", err)
	}

	ok, err := s.hasher.Verify(req.Password, user.PasswordHash)
	if err != nil {
		s.log.WithError(err).WithField("user_id", user.ID).Warn("stored password hash is unreadable")
		return nil, ErrInvalidCredentials
	}
	if !ok {
		return nil, ErrInvalidCredentials
	}

	return s.issue(user)
}

func (s *AccountService) issue(user *models.User) (*models.AuthResponse, error) {
	token, err := s.tokens.Issue(user.ID)
	if err != nil {
		return nil, err
	}
	return &models.AuthResponse{User: user, Token: token}, nil
}

// Me returns the caller's profile.
func (s *AccountService) Me(ctx context.Context, userID string) (*models.User, error) {
	user, err := s.store.GetUserByID(ctx, userID)
	if errors.Is(err, store.ErrNotFound) {
		return nil, ErrUserNotFound
	}
	return user, err
}

// DeleteAccount removes the user and everything they own. Owned records go
// first so that a failure part way leaves the account usable for a retry.
func (s *AccountService) DeleteAccount(ctx context.Context, userID string) error {
	steps := []struct {
		what string
		run  func(context.Context, string) error
	}{
		{"meals", s.store.DeleteMealsByOwner},
		{"workouts", s.store.DeleteWorkoutsByOwner},
		{"posts", s.store.DeletePostsByOwner},
		{"goal", s.store.DeleteGoal},
		{"user", s.store.DeleteUser},
	}
	for _, step := range steps {
		if err := step.run(ctx, userID); err != nil {
			return fmt.Errorf("delete %s: %w", step.what, err)
		}
	}
	s.log.WithField("user_id", userID).Info("account deleted")
	return nil
}
