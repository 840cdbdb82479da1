package seed

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"

	appModels "github.com/sakthivel/idcard-portal/internal/app/models"
	appRepos "github.com/sakthivel/idcard-portal/internal/app/repositories"
	"github.com/sakthivel/idcard-portal/internal/config"
	"github.com/sakthivel/idcard-portal/internal/pkg/apperrors"
	"github.com/sakthivel/idcard-portal/internal/pkg/auth"
)

// CreateDefaultData creates the default admin account if it doesn't exist.
// Credentials come from the admin section of the configuration.
func CreateDefaultData(ctx context.Context, dbPool *pgxpool.Pool, cfg *config.Config, lgr zerolog.Logger) error {
	if cfg.Admin.Username == "" || cfg.Admin.Password == "" {
		lgr.Info().Msg("No default admin configured, skipping seed")
		return nil
	}

	adminRepo := appRepos.NewAdminRepository(dbPool)

	_, err := adminRepo.GetByUsername(ctx, cfg.Admin.Username)
	if err == nil {
		lgr.Info().Msg("Default admin already exists, skipping creation")
		return nil
	}
	if !errors.Is(err, apperrors.ErrAdminNotFound) {
		lgr.Error().Err(err).Msg("Error checking if default admin exists")
		return err
	}

	lgr.Info().Str("username", cfg.Admin.Username).Msg("Creating default admin...")

	hashedPassword, err := auth.HashPassword(cfg.Admin.Password)
	if err != nil {
		lgr.Error().Err(err).Msg("Error hashing default admin password")
		return err
	}

	admin := &appModels.Admin{
		Username: cfg.Admin.Username,
		Password: hashedPassword,
	}

	if err := adminRepo.Create(ctx, admin); err != nil {
		if errors.Is(err, apperrors.ErrAdminAlreadyExists) {
			lgr.Info().Msg("Default admin already exists, skipping creation")
			return nil
		}
		lgr.Error().Err(err).Msg("Error creating default admin")
		return err
	}

	lgr.Info().Int64("adminID", admin.ID).Msg("Default admin created successfully")
	return nil
}
