package auth

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/pulse/internal/models"
	"github.com/desertthunder/pulse/internal/repositories"
	"github.com/desertthunder/pulse/internal/shared"
	"github.com/desertthunder/pulse/internal/slug"
)

// SignUpInput holds the fields submitted by the sign-up form.
type SignUpInput struct {
	FullName string
	Email    string
	Username string
	Password string
}

func (in SignUpInput) normalize() SignUpInput {
	return SignUpInput{
		FullName: strings.TrimSpace(in.FullName),
		Email:    strings.TrimSpace(in.Email),
		Username: strings.TrimSpace(in.Username),
		Password: in.Password,
	}
}

// Validate checks the normalized input.
func (in SignUpInput) Validate() error {
	if in.FullName == "" || in.Email == "" || in.Username == "" || in.Password == "" {
		return ErrMissingField
	}
	if slug.Slugify(in.Username) == "" {
		return ErrInvalidUsername
	}
	if !strings.Contains(in.Email, "@") {
		return ErrInvalidEmail
	}
	if len(in.Password) < MinPasswordLength {
		return ErrPasswordTooShort
	}
	return nil
}

// Service manages user accounts.
type Service struct {
	users    *repositories.UserRepository
	profiles *repositories.ProfileRepository
	logger   *log.Logger
}

// NewService creates an account service backed by the given repositories.
func NewService(users *repositories.UserRepository, profiles *repositories.ProfileRepository, logger *log.Logger) *Service {
	if logger == nil {
		logger = log.New(io.Discard)
	}
	return &Service{users: users, profiles: profiles, logger: logger}
}

// SignUp creates a user and its profile.
func (s *Service) SignUp(ctx context.Context, input SignUpInput) (*models.User, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	input = input.normalize()
	if err := input.Validate(); err != nil {
		return nil, err
	}

	hash, err := HashPassword(input.Password)
	if err != nil {
		return nil, err
	}

	user := models.NewUser(0, input.Username, hash)
	user.SetID(shared.GenerateID())
	profile := models.NewProfile(user.ID(), input.FullName, input.Email)

	if err := s.users.CreateWithProfile(user, profile); err != nil {
		if errors.Is(err, repositories.ErrConflict) {
			return nil, ErrUsernameTaken
		}
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	s.logger.Info("user signed up", "username", user.Username(), "slug", user.Slug())
	return user, nil
}

// Login returns the user whose credentials match.
//
// Unknown usernames and wrong passwords both yield [ErrInvalidCredentials].
func (s *Service) Login(ctx context.Context, username, password string) (*models.User, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	user, err := s.users.GetByUsername(strings.TrimSpace(username))
	if errors.Is(err, repositories.ErrNotFound) {
		s.logger.Debug("login for unknown user", "username", username)
		return nil, ErrInvalidCredentials
	}
	if err != nil {
		return nil, fmt.Errorf("failed to look up user: %w", err)
	}

	if !CheckPassword(user.PasswordHash(), password) {
		s.logger.Debug("login with wrong password", "username", username)
		return nil, ErrInvalidCredentials
	}

	return user, nil
}

// User returns an active user by ID.
func (s *Service) User(ctx context.Context, id string) (*models.User, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return s.users.Get(id)
}

// UserByUsername returns an active user by username, falling back to a slug match.
func (s *Service) UserByUsername(ctx context.Context, username string) (*models.User, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	user, err := s.users.GetByUsername(username)
	if errors.Is(err, repositories.ErrNotFound) {
		return s.users.GetBySlug(slug.Slugify(username))
	}
	return user, err
}

// Profile returns the profile attached to a user.
func (s *Service) Profile(ctx context.Context, userID string) (*models.Profile, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return s.profiles.Get(userID)
}

// Users lists active users in sign-up order.
func (s *Service) Users(ctx context.Context) ([]*models.User, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return s.users.List(map[string]any{})
}

// Delete soft-deletes a user.
func (s *Service) Delete(ctx context.Context, userID string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	if err := s.users.Delete(userID); err != nil {
		return fmt.Errorf("failed to delete user: %w", err)
	}

	s.logger.Info("user deleted", "id", userID)
	return nil
}
