package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"agritrace-backend/internal/models"
	"agritrace-backend/internal/repository"
)

type UserService struct {
	profileRepo    *repository.ProfileRepository
	jwtService     *JWTService
	sessionService *SessionService
}

func NewUserService(profileRepo *repository.ProfileRepository, jwtService *JWTService, sessionService *SessionService) *UserService {
	return &UserService{
		profileRepo:    profileRepo,
		jwtService:     jwtService,
		sessionService: sessionService,
	}
}

// Register creates a profile with an immutable role.
func (s *UserService) Register(ctx context.Context, req models.RegisterRequest) (*models.Profile, error) {
	if !req.Role.Valid() {
		return nil, fmt.Errorf("unknown role %q: %w", req.Role, models.ErrInvalidInput)
	}

	if existing, err := s.profileRepo.GetByEmail(ctx, req.Email); err == nil && existing != nil {
		return nil, fmt.Errorf("email %s already registered: %w", req.Email, models.ErrConflict)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	profile := &models.Profile{
		ID:           uuid.New(),
		Email:        req.Email,
		PasswordHash: string(hash),
		FullName:     req.FullName,
		Phone:        req.Phone,
		Role:         req.Role,
	}

	if err := s.profileRepo.Create(ctx, profile); err != nil {
		return nil, err
	}

	slog.Info("Registered new profile", "user_id", profile.ID, "role", profile.Role)
	return profile, nil
}

func (s *UserService) Login(ctx context.Context, req models.LoginRequest) (*models.LoginResponse, error) {
	profile, err := s.profileRepo.GetByEmail(ctx, req.Email)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return nil, fmt.Errorf("invalid credentials: %w", models.ErrUnauthenticated)
		}
		return nil, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(profile.PasswordHash), []byte(req.Password)); err != nil {
		return nil, fmt.Errorf("invalid credentials: %w", models.ErrUnauthenticated)
	}

	token, err := s.jwtService.GenerateNewToken(profile.ID.String(), profile.Email, profile.Role)
	if err != nil {
		return nil, fmt.Errorf("failed to generate token: %w", err)
	}

	if err := s.sessionService.CreateSession(ctx, profile.ID.String(), token); err != nil {
		return nil, err
	}

	return &models.LoginResponse{
		Token:   token,
		Profile: *profile,
	}, nil
}

func (s *UserService) Logout(ctx context.Context, userID, token string) error {
	return s.sessionService.InvalidateSession(ctx, userID, token)
}

// LogoutAll signs the user out on every device by dropping all of
// their sessions.
func (s *UserService) LogoutAll(ctx context.Context, userID string) error {
	return s.sessionService.InvalidateUserSessions(ctx, userID)
}

func (s *UserService) GetProfile(ctx context.Context, userID uuid.UUID) (*models.Profile, error) {
	return s.profileRepo.GetByID(ctx, userID)
}
