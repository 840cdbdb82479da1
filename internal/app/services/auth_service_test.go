package services

import (
	"context"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sakthivel/idcard-portal/internal/app/models/dto"
	"github.com/sakthivel/idcard-portal/internal/pkg/apperrors"
	pkgAuth "github.com/sakthivel/idcard-portal/internal/pkg/auth"
)

func newTestAuthService(adminStore AdminStore, studentStore StudentStore) AuthService {
	jwtService := pkgAuth.NewJWTService(pkgAuth.JWTConfig{
		SecretKey:   "test-secret",
		TokenExp:    time.Hour,
		TokenIssuer: "idcard-portal-test",
	})
	return NewAuthService(adminStore, studentStore, jwtService, zerolog.Nop())
}

func TestAdminAuth(t *testing.T) {
	t.Run("register then login", func(t *testing.T) {
		admins := newMemAdminStore()
		svc := newTestAuthService(admins, newMemStudentStore())

		registered, err := svc.AdminRegister(context.Background(), &dto.AdminRegisterRequest{
			Username: "admin",
			Password: "Admin123!",
		})
		require.NoError(t, err)
		assert.NotEmpty(t, registered.Token)

		logged, err := svc.AdminLogin(context.Background(), &dto.AdminLoginRequest{
			Username: "admin",
			Password: "Admin123!",
		})
		require.NoError(t, err)
		assert.Equal(t, registered.ID, logged.ID)
		assert.NotEmpty(t, logged.Token)
	})

	t.Run("wrong password", func(t *testing.T) {
		admins := newMemAdminStore()
		svc := newTestAuthService(admins, newMemStudentStore())

		_, err := svc.AdminRegister(context.Background(), &dto.AdminRegisterRequest{
			Username: "admin",
			Password: "Admin123!",
		})
		require.NoError(t, err)

		_, err = svc.AdminLogin(context.Background(), &dto.AdminLoginRequest{
			Username: "admin",
			Password: "wrong",
		})
		assert.ErrorIs(t, err, apperrors.ErrInvalidCredentials)
	})

	t.Run("unknown username", func(t *testing.T) {
		svc := newTestAuthService(newMemAdminStore(), newMemStudentStore())

		_, err := svc.AdminLogin(context.Background(), &dto.AdminLoginRequest{
			Username: "ghost",
			Password: "whatever",
		})
		assert.ErrorIs(t, err, apperrors.ErrInvalidCredentials)
	})

	t.Run("duplicate username", func(t *testing.T) {
		admins := newMemAdminStore()
		svc := newTestAuthService(admins, newMemStudentStore())

		_, err := svc.AdminRegister(context.Background(), &dto.AdminRegisterRequest{Username: "admin", Password: "a"})
		require.NoError(t, err)
		_, err = svc.AdminRegister(context.Background(), &dto.AdminRegisterRequest{Username: "admin", Password: "b"})
		assert.ErrorIs(t, err, apperrors.ErrAdminAlreadyExists)
	})
}

func TestStudentLogin(t *testing.T) {
	setup := func(t *testing.T) (AuthService, StudentStore) {
		t.Helper()
		students := newMemStudentStore()
		lifecycle := newTestLifecycleService(students)
		_, err := lifecycle.SelfRegister(context.Background(), validSignupRequest())
		require.NoError(t, err)
		return newTestAuthService(newMemAdminStore(), students), students
	}

	t.Run("matching register number and name", func(t *testing.T) {
		svc, _ := setup(t)

		resp, err := svc.StudentLogin(context.Background(), &dto.StudentLoginRequest{
			RegisterNumber: "7376-232-cb156",
			Name:           "arun kumar",
		})
		require.NoError(t, err)
		assert.Equal(t, "7376232CB156", resp.RegisterNumber)
		assert.Equal(t, "student", resp.Role)
		assert.NotEmpty(t, resp.Token)
	})

	t.Run("name mismatch", func(t *testing.T) {
		svc, _ := setup(t)

		_, err := svc.StudentLogin(context.Background(), &dto.StudentLoginRequest{
			RegisterNumber: "7376232CB156",
			Name:           "SOMEONE ELSE",
		})
		assert.ErrorIs(t, err, apperrors.ErrInvalidCredentials)
	})

	t.Run("unknown register number", func(t *testing.T) {
		svc, _ := setup(t)

		_, err := svc.StudentLogin(context.Background(), &dto.StudentLoginRequest{
			RegisterNumber: "9999999ZZ999",
			Name:           "ARUN KUMAR",
		})
		assert.ErrorIs(t, err, apperrors.ErrInvalidCredentials)
	})
}
