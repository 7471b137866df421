package services

import (
	"context"
	"errors"
	"strings"

	"gorm.io/gorm"

	"github.com/shashiranjanraj/qrmenu/app/models"
	"github.com/shashiranjanraj/qrmenu/app/repositories"
	"github.com/shashiranjanraj/qrmenu/pkg/apperr"
	"github.com/shashiranjanraj/qrmenu/pkg/auth"
)

const (
	msgEmailTaken         = "Email is already registered"
	msgInvalidCredentials = "Invalid credentials"
	msgPasswordTooLong    = "The password must not be longer than 72 bytes."

	// bcrypt only accepts passwords up to this many bytes.
	maxPasswordBytes = 72
)

type RegisterInput struct {
	Name     string `json:"name"     validate:"required,min=2,max=255"`
	Email    string `json:"email"    validate:"required,email,max=255"`
	Password string `json:"password" validate:"required,min=6,max=72"`
}

type LoginInput struct {
	Email    string `json:"email"    validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// LoginResult is the authenticated user plus a bearer token for API clients.
type LoginResult struct {
	User  *models.User `json:"user"`
	Token string       `json:"token"`
}

type AuthService struct {
	users *repositories.UserRepository
}

func NewAuthService(db *gorm.DB) *AuthService {
	return &AuthService{users: repositories.NewUserRepository(db)}
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// Register creates an account. A duplicate email is a Conflict and no second
// row is written.
func (s *AuthService) Register(ctx context.Context, in RegisterInput) (*models.User, error) {
	if len(in.Password) > maxPasswordBytes {
		return nil, apperr.Validation(msgPasswordTooLong, map[string]string{"password": msgPasswordTooLong})
	}
	email := normalizeEmail(in.Email)

	exists, err := s.users.EmailExists(ctx, email)
	if err != nil {
		return nil, apperr.Internal(err)
	}
	if exists {
		return nil, apperr.Conflict(msgEmailTaken)
	}

	hash, err := auth.HashPassword(in.Password)
	if err != nil {
		return nil, apperr.Internal(err)
	}

	user := &models.User{Name: strings.TrimSpace(in.Name), Email: email, Password: hash}
	if err := s.users.Create(ctx, user); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, apperr.Conflict(msgEmailTaken)
		}
		return nil, apperr.Internal(err)
	}
	return user, nil
}

// Login checks the credentials. Unknown email and wrong password fail the
// same way.
func (s *AuthService) Login(ctx context.Context, in LoginInput) (*LoginResult, error) {
	user, err := s.users.FindByEmail(ctx, normalizeEmail(in.Email))
	if errors.Is(err, repositories.ErrNotFound) {
		return nil, apperr.Unauthorized(msgInvalidCredentials)
	}
	if err != nil {
		return nil, apperr.Internal(err)
	}
	if !auth.CheckPassword(user.Password, in.Password) {
		return nil, apperr.Unauthorized(msgInvalidCredentials)
	}

	token, err := auth.GenerateToken(user.ID, user.Email)
	if err != nil {
		return nil, apperr.Internal(err)
	}
	return &LoginResult{User: user, Token: token}, nil
}

// Me returns the account behind an authenticated request. A principal whose
// row is gone is treated as unauthenticated.
func (s *AuthService) Me(ctx context.Context, userID string) (*models.User, error) {
	user, err := s.users.FindByID(ctx, userID)
	if errors.Is(err, repositories.ErrNotFound) {
		return nil, apperr.Unauthorized("Unauthorized")
	}
	if err != nil {
		return nil, apperr.Internal(err)
	}
	return user, nil
}
