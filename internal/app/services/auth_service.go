package services

import (
	"context"
	"errors"
	"strings"

	"github.com/rs/zerolog"

	"github.com/sakthivel/idcard-portal/internal/app/models"
	"github.com/sakthivel/idcard-portal/internal/app/models/dto"
	"github.com/sakthivel/idcard-portal/internal/pkg/apperrors"
	pkgAuth "github.com/sakthivel/idcard-portal/internal/pkg/auth"
	"github.com/sakthivel/idcard-portal/internal/pkg/validation"
)

// authService issues tokens for the two kinds of principals. Admins carry a
// bcrypt-hashed password; students authenticate with their register number
// and name, which is all the ID-card portal asks of them.
type authService struct {
	adminStore   AdminStore
	studentStore StudentStore
	jwtService   *pkgAuth.JWTService
	logger       zerolog.Logger
}

// NewAuthService creates a new auth service instance
func NewAuthService(adminStore AdminStore, studentStore StudentStore, jwtService *pkgAuth.JWTService, logger zerolog.Logger) AuthService {
	return &authService{
		adminStore:   adminStore,
		studentStore: studentStore,
		jwtService:   jwtService,
		logger:       logger,
	}
}

// AdminLogin verifies admin credentials and issues a token
func (s *authService) AdminLogin(ctx context.Context, req *dto.AdminLoginRequest) (*dto.AdminAuthResponse, error) {
	admin, err := s.adminStore.GetByUsername(ctx, strings.TrimSpace(req.Username))
	if err != nil {
		if errors.Is(err, apperrors.ErrAdminNotFound) {
			return nil, apperrors.ErrInvalidCredentials
		}
		return nil, err
	}

	if !pkgAuth.CheckPassword(admin.Password, req.Password) {
		s.logger.Warn().Str("username", admin.Username).Msg("Admin login failed")
		return nil, apperrors.ErrInvalidCredentials
	}

	token, err := s.jwtService.GenerateToken(admin.ID, models.RoleAdmin)
	if err != nil {
		return nil, err
	}

	return &dto.AdminAuthResponse{
		ID:       admin.ID,
		Username: admin.Username,
		Token:    token,
	}, nil
}

// AdminRegister creates an admin account and issues a token. Meant for
// initial setup; the route should be disabled once an admin exists.
func (s *authService) AdminRegister(ctx context.Context, req *dto.AdminRegisterRequest) (*dto.AdminAuthResponse, error) {
	hash, err := pkgAuth.HashPassword(req.Password)
	if err != nil {
		return nil, err
	}

	admin := &models.Admin{
		Username: strings.TrimSpace(req.Username),
		Password: hash,
	}
	if admin.Username == "" {
		return nil, apperrors.NewValidationError("username is required")
	}

	if err := s.adminStore.Create(ctx, admin); err != nil {
		return nil, err
	}

	token, err := s.jwtService.GenerateToken(admin.ID, models.RoleAdmin)
	if err != nil {
		return nil, err
	}

	s.logger.Info().Str("username", admin.Username).Msg("Admin account created")
	return &dto.AdminAuthResponse{
		ID:       admin.ID,
		Username: admin.Username,
		Token:    token,
	}, nil
}

// StudentLogin authenticates a student by register number and name
func (s *authService) StudentLogin(ctx context.Context, req *dto.StudentLoginRequest) (*dto.StudentAuthResponse, error) {
	registerNumber := validation.NormalizeRegisterNumber(req.RegisterNumber)
	name := validation.NormalizeName(req.Name)

	record, err := s.studentStore.GetByRegisterNumber(ctx, registerNumber)
	if err != nil {
		if errors.Is(err, apperrors.ErrStudentNotFound) {
			return nil, apperrors.ErrInvalidCredentials
		}
		return nil, err
	}

	if validation.NormalizeName(record.Name) != name {
		return nil, apperrors.ErrInvalidCredentials
	}

	token, err := s.jwtService.GenerateToken(record.ID, models.RoleStudent)
	if err != nil {
		return nil, err
	}

	return &dto.StudentAuthResponse{
		ID:             record.ID,
		RegisterNumber: record.RegisterNumber,
		Name:           record.Name,
		PhotoURL:       record.PhotoURL,
		Status:         record.Status,
		Token:          token,
		Role:           "student",
	}, nil
}
