package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"finance-reporting/internal/dto"
	"finance-reporting/internal/models"
	"finance-reporting/internal/repositories"

	"github.com/google/uuid"
)

const (
	AuthEventRegistered    = "user_registered"
	AuthEventLoginSuccess  = "login_success"
	AuthEventLoginFailed   = "login_failed"
	AuthEventDuplicateUser = "registration_duplicate"
)

var (
	ErrInvalidCredentials = errors.New("invalid username or password")
	ErrUsernameTaken      = errors.New("username already exists")
)

// AuthService handles registration and login for dashboard users
type AuthService struct {
	userRepo        repositories.UserRepositoryInterface
	passwordService PasswordServiceInterface
	tokenService    TokenServiceInterface
	metrics         MetricsRecorderInterface
	logger          ReportingLoggerInterface
}

// NewAuthService creates a new authentication service
func NewAuthService(
	userRepo repositories.UserRepositoryInterface,
	passwordService PasswordServiceInterface,
	tokenService TokenServiceInterface,
	metrics MetricsRecorderInterface,
	logger ReportingLoggerInterface,
) AuthServiceInterface {
	return &AuthService{
		userRepo:        userRepo,
		passwordService: passwordService,
		tokenService:    tokenService,
		metrics:         metrics,
		logger:          logger,
	}
}

// Register creates a new user. The username is trimmed before it is checked and stored.
func (s *AuthService) Register(ctx context.Context, req *dto.RegisterRequest) (*models.User, error) {
	username := strings.TrimSpace(req.Username)

	existingUser, err := s.userRepo.GetByUsername(ctx, username)
	if err != nil && !errors.Is(err, repositories.ErrUserNotFound) {
		return nil, fmt.Errorf("failed to check existing user: %w", err)
	}
	if existingUser != nil {
		s.recordEvent(ctx, AuthEventDuplicateUser, username)
		return nil, ErrUsernameTaken
	}

	hashedPassword, err := s.passwordService.HashPassword(req.Password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := &models.User{
		Username:     username,
		PasswordHash: hashedPassword,
	}

	if err := s.userRepo.Create(ctx, user); err != nil {
		// Lost a race with a concurrent registration of the same name
		if errors.Is(err, repositories.ErrUserAlreadyExists) {
			s.recordEvent(ctx, AuthEventDuplicateUser, username)
			return nil, ErrUsernameTaken
		}
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	s.recordEvent(ctx, AuthEventRegistered, username)
	return user, nil
}

// Login verifies the credentials and issues an access token. Unknown users
// and wrong passwords are indistinguishable to the caller.
func (s *AuthService) Login(ctx context.Context, req *dto.LoginRequest) (*dto.TokenResponse, error) {
	username := strings.TrimSpace(req.Username)

	user, err := s.userRepo.GetByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, repositories.ErrUserNotFound) {
			s.recordEvent(ctx, AuthEventLoginFailed, username)
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}

	if !s.passwordService.ComparePassword(req.Password, user.PasswordHash) {
		s.recordEvent(ctx, AuthEventLoginFailed, username)
		return nil, ErrInvalidCredentials
	}

	token, expiresAt, err := s.tokenService.GenerateAccessToken(user)
	if err != nil {
		return nil, fmt.Errorf("failed to generate access token: %w", err)
	}

	now := time.Now()
	if err := s.userRepo.UpdateLastLogin(ctx, user.ID, now); err != nil {
		s.logger.LogQueryFailed(ctx, "update_last_login", err.Error(), 0)
	} else {
		user.LastLoginAt = &now
	}

	s.recordEvent(ctx, AuthEventLoginSuccess, username)

	return &dto.TokenResponse{
		Message:   "Login successful",
		Token:     token,
		TokenType: "Bearer",
		ExpiresAt: expiresAt,
		User:      NewUserResponse(user),
	}, nil
}

// GetUser loads the caller's profile
func (s *AuthService) GetUser(ctx context.Context, id uuid.UUID) (*models.User, error) {
	user, err := s.userRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return user, nil
}

func (s *AuthService) recordEvent(ctx context.Context, eventType, username string) {
	s.metrics.IncrementCounter(MetricAuthenticationEvent, map[string]string{"event_type": eventType})
	s.logger.LogAuthEvent(ctx, eventType, username)
}

// NewUserResponse builds the public view of a user
func NewUserResponse(user *models.User) dto.UserResponse {
	return dto.UserResponse{
		ID:          user.ID.String(),
		Username:    user.Username,
		CreatedAt:   user.CreatedAt,
		LastLoginAt: user.LastLoginAt,
	}
}
