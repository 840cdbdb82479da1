package main

import (
	"context"
	"os"

	"github.com/joho/godotenv"

	"github.com/sakthivel/idcard-portal/internal/app/repositories"
	"github.com/sakthivel/idcard-portal/internal/app/services"
	"github.com/sakthivel/idcard-portal/internal/bootstrap"
	"github.com/sakthivel/idcard-portal/internal/pkg/logger"
)

// Backfill runs the legacy-data repair passes against the live database:
// phone reformatting, template correction, provenance defaults and
// history reconstruction, in that order.
func main() {
	_ = godotenv.Load()

	cfg, lgr, err := bootstrap.LoadConfigAndSetupLogger()
	if err != nil {
		logger.Error().Err(err).Msg("Failed to load configuration")
		os.Exit(1)
	}

	dbPool, err := bootstrap.SetupDatabase(cfg, lgr)
	if err != nil {
		lgr.Error().Err(err).Msg("Failed to setup database")
		os.Exit(1)
	}
	defer dbPool.Close()

	studentRepo := repositories.NewStudentRepository(dbPool)
	backfill := services.NewBackfillService(studentRepo, lgr)

	ctx := context.Background()

	phones, err := backfill.RepairPhones(ctx)
	if err != nil {
		lgr.Error().Err(err).Msg("Phone repair pass failed")
		os.Exit(1)
	}
	lgr.Info().Int("updated", phones).Msg("Phone repair pass complete")

	templates, err := backfill.RepairTemplates(ctx)
	if err != nil {
		lgr.Error().Err(err).Msg("Template repair pass failed")
		os.Exit(1)
	}
	lgr.Info().Int("updated", templates).Msg("Template repair pass complete")

	provenance, err := backfill.RepairProvenance(ctx)
	if err != nil {
		lgr.Error().Err(err).Msg("Provenance repair pass failed")
		os.Exit(1)
	}
	lgr.Info().Int("updated", provenance).Msg("Provenance repair pass complete")

	history, err := backfill.BackfillHistory(ctx)
	if err != nil {
		lgr.Error().Err(err).Msg("History backfill pass failed")
		os.Exit(1)
	}
	lgr.Info().Int("updated", history).Msg("History backfill pass complete")

	lgr.Info().Msg("All backfill passes finished.")
}
