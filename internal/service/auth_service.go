package service

import (
	"context"
	"time"

	"github.com/Baaaki/market-square/internal/models"
	"github.com/Baaaki/market-square/internal/repository"
	"github.com/Baaaki/market-square/internal/utils"
	"github.com/Baaaki/market-square/pkg/logger"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

type AuthService struct {
	userRepo      *repository.UserRepository
	jwtSecret     string
	jwtExpiration time.Duration
}

func NewAuthService(userRepo *repository.UserRepository, jwtSecret string, jwtExpiration time.Duration) *AuthService {
	return &AuthService{
		userRepo:      userRepo,
		jwtSecret:     jwtSecret,
		jwtExpiration: jwtExpiration,
	}
}

// Register creates a user with role "user". Uniqueness is left to the
// database; a violation is reported as whichever of username or email is
// already taken.
func (s *AuthService) Register(ctx context.Context, username, password, email string) (*models.User, error) {
	start := time.Now()

	logger.Log.Debug("Processing user registration",
		zap.String("username", username),
		zap.String("email", email),
	)

	if missing := missingFields([][2]string{
		{"username", username},
		{"password", password},
		{"email", email},
	}); len(missing) > 0 {
		logger.Log.Warn("Registration validation failed",
			zap.Strings("missing", missing),
		)
		return nil, ErrMissingFields
	}

	user := &models.User{
		ID:           uuid.NewString(),
		Username:     username,
		Email:        email,
		PasswordHash: utils.HashPassword(password),
		Role:         models.RoleUser,
	}

	if err := s.userRepo.CreateUser(ctx, user); err != nil {
		if isUniqueViolation(err) {
			conflict := s.resolveConflict(ctx, username)
			logger.Log.Warn("Registration conflict",
				zap.String("username", username),
				zap.String("email", email),
				zap.Error(conflict),
			)
			return nil, conflict
		}
		logger.Log.Error("Failed to create user in database",
			zap.String("username", username),
			zap.String("email", email),
			zap.Error(err),
		)
		return nil, err
	}

	logger.Log.Info("User registered successfully",
		zap.String("user_id", user.ID),
		zap.String("username", username),
		zap.Duration("total_duration", time.Since(start)),
	)

	return user, nil
}

// resolveConflict names the field behind a unique violation. A username hit
// wins when both are taken.
func (s *AuthService) resolveConflict(ctx context.Context, username string) error {
	existing, err := s.userRepo.GetUserByUsername(ctx, username)
	if err == nil && existing != nil {
		return ErrUsernameAlreadyExists
	}
	return ErrEmailAlreadyExists
}

// Login checks the credentials and returns the user with a signed token.
// Unknown usernames and wrong passwords are indistinguishable to the caller.
func (s *AuthService) Login(ctx context.Context, username, password string) (*models.User, string, error) {
	start := time.Now()

	logger.Log.Debug("Processing user login",
		zap.String("username", username),
	)

	if username == "" || password == "" {
		return nil, "", ErrMissingFields
	}

	user, err := s.userRepo.GetUserByUsername(ctx, username)
	if err != nil {
		logger.Log.Error("Failed to get user by username",
			zap.String("username", username),
			zap.Error(err),
		)
		return nil, "", err
	}
	if user == nil {
		logger.Log.Warn("Login failed: user not found",
			zap.String("username", username),
		)
		return nil, "", ErrInvalidCredentials
	}

	if !utils.VerifyPassword(password, user.PasswordHash) {
		logger.Log.Warn("Login failed: invalid password",
			zap.String("username", username),
			zap.String("user_id", user.ID),
		)
		return nil, "", ErrInvalidCredentials
	}

	token, err := utils.GenerateToken(user, s.jwtSecret, s.jwtExpiration)
	if err != nil {
		logger.Log.Error("Failed to generate JWT token",
			zap.String("user_id", user.ID),
			zap.Error(err),
		)
		return nil, "", err
	}

	logger.Log.Info("User logged in successfully",
		zap.String("user_id", user.ID),
		zap.String("username", user.Username),
		zap.Duration("total_duration", time.Since(start)),
	)

	return user, token, nil
}

// ListUsers returns all registered users for the admin dashboard.
func (s *AuthService) ListUsers(ctx context.Context) ([]models.User, error) {
	users, err := s.userRepo.ListUsers(ctx)
	if err != nil {
		logger.Log.Error("Failed to fetch users",
			zap.Error(err),
		)
		return nil, err
	}

	logger.Log.Debug("Fetched all users",
		zap.Int("count", len(users)),
	)

	return users, nil
}
