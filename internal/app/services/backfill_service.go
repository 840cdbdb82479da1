package services

import (
	"context"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/sakthivel/idcard-portal/internal/app/models"
	"github.com/sakthivel/idcard-portal/internal/pkg/validation"
)

// legacyBackfillService repairs records created before source, approval date
// and history tracking existed. It is a data-repair tool, not part of the
// live engine, but it reuses the engine's event templates so reconstructed
// histories match what the engine would have written.
type legacyBackfillService struct {
	store  StudentStore
	logger zerolog.Logger
	now    func() time.Time
}

// NewBackfillService creates the legacy data-repair service.
func NewBackfillService(store StudentStore, logger zerolog.Logger) BackfillService {
	return &legacyBackfillService{
		store:  store,
		logger: logger,
		now:    time.Now,
	}
}

// RepairPhones rewrites stored phone numbers into +91 form. Unlike the live
// validation path this accepts whatever digit sequence is already stored, so
// legacy landline-style values are left untouched rather than rejected.
func (s *legacyBackfillService) RepairPhones(ctx context.Context) (int, error) {
	records, err := s.store.List(ctx)
	if err != nil {
		return 0, err
	}

	updated := 0
	for _, record := range records {
		changed := false

		if phone, ok := reformatLegacyPhone(record.EmergencyContact); ok && phone != record.EmergencyContact {
			record.EmergencyContact = phone
			changed = true
		}
		if phone, ok := reformatLegacyPhone(record.ParentPhone); ok && phone != record.ParentPhone {
			record.ParentPhone = phone
			changed = true
		}

		if changed {
			if err := s.store.Update(ctx, record); err != nil {
				return updated, err
			}
			updated++
		}
	}

	s.logger.Info().Int("updated", updated).Msg("Phone repair pass finished")
	return updated, nil
}

// reformatLegacyPhone normalizes an already-stored number to +91 form without
// the live path's mobile-prefix check.
func reformatLegacyPhone(raw string) (string, bool) {
	if raw == "" {
		return "", false
	}
	digits := validation.CompiledPatterns.NonDigit.ReplaceAllString(raw, "")
	switch {
	case len(digits) == 10:
		return "+91" + digits, true
	case len(digits) == 11 && strings.HasPrefix(digits, "0"):
		return "+91" + digits[1:], true
	case len(digits) == 12 && strings.HasPrefix(digits, "91"):
		return "+" + digits, true
	}
	return "", false
}

// RepairTemplates rewrites legacy template codes ("1"/"2") to the codes
// derived from the student type.
func (s *legacyBackfillService) RepairTemplates(ctx context.Context) (int, error) {
	records, err := s.store.List(ctx)
	if err != nil {
		return 0, err
	}

	updated := 0
	for _, record := range records {
		if record.TemplateType != "1" && record.TemplateType != "2" {
			continue
		}
		record.TemplateType = models.TemplateForStudentType(record.StudentType)
		if err := s.store.Update(ctx, record); err != nil {
			return updated, err
		}
		updated++
	}

	s.logger.Info().Int("updated", updated).Msg("Template repair pass finished")
	return updated, nil
}

// RepairProvenance defaults a missing source to Admin and sets the approval
// date of Approved records that predate approval-date tracking.
func (s *legacyBackfillService) RepairProvenance(ctx context.Context) (int, error) {
	records, err := s.store.List(ctx)
	if err != nil {
		return 0, err
	}

	updated := 0
	for _, record := range records {
		changed := false

		if record.Source == "" {
			record.Source = models.SourceAdmin
			changed = true
		}
		if record.Status == models.StatusApproved && record.ApprovalDate == nil {
			approvedAt := record.CreatedAt
			if approvedAt.IsZero() {
				approvedAt = s.now()
			}
			record.ApprovalDate = &approvedAt
			changed = true
		}

		if changed {
			if err := s.store.Update(ctx, record); err != nil {
				return updated, err
			}
			updated++
		}
	}

	s.logger.Info().Int("updated", updated).Msg("Provenance repair pass finished")
	return updated, nil
}

// BackfillHistory reconstructs a plausible history for records with no
// history at all, replaying the engine's event templates keyed off the
// record's source and current status. CreatedAt, the approval date and
// UpdatedAt are used as best-effort timestamps. Only empty-history records
// are touched, which makes the pass idempotent.
func (s *legacyBackfillService) BackfillHistory(ctx context.Context) (int, error) {
	records, err := s.store.List(ctx)
	if err != nil {
		return 0, err
	}

	updated := 0
	for _, record := range records {
		if len(record.History) > 0 {
			continue
		}

		record.History = s.reconstructHistory(record)
		if err := s.store.Update(ctx, record); err != nil {
			return updated, err
		}
		updated++
	}

	s.logger.Info().Int("updated", updated).Msg("History backfill pass finished")
	return updated, nil
}

// reconstructHistory builds the event sequence a record would have if it had
// gone through the live engine.
func (s *legacyBackfillService) reconstructHistory(record *models.StudentRecord) []models.HistoryEvent {
	createdAt := record.CreatedAt
	if createdAt.IsZero() {
		createdAt = s.now()
	}

	var history []models.HistoryEvent
	appendEvent := func(status models.StudentStatus, message, updatedBy string, at time.Time) {
		history = append(history, models.HistoryEvent{
			Status:    status,
			Message:   message,
			UpdatedBy: updatedBy,
			Timestamp: at,
		})
	}

	switch record.Source {
	case models.SourceBulk:
		appendEvent(models.StatusApproved, msgBulkImported, models.ActorAdmin, createdAt)
	case models.SourceAdmin:
		appendEvent(models.StatusApproved, msgAdminCreated, models.ActorAdmin, createdAt)
	case models.SourceStudent:
		appendEvent(models.StatusRegistered, msgSelfRegistered, models.ActorStudent, createdAt)

		// A status beyond Registered means the student also submitted their
		// profile at some point. CreatedAt is close enough for legacy records.
		switch record.Status {
		case models.StatusPending, models.StatusApproved, models.StatusRejected, models.StatusDiscontinued:
			appendEvent(models.StatusPending, msgProfileUpdated, models.ActorStudent, createdAt)
		}

		switch record.Status {
		case models.StatusApproved, models.StatusDiscontinued:
			approvedAt := s.now()
			if record.ApprovalDate != nil {
				approvedAt = *record.ApprovalDate
			}
			appendEvent(models.StatusApproved, msgAdminApproved, models.ActorAdmin, approvedAt)
		case models.StatusRejected:
			rejectedAt := record.UpdatedAt
			if rejectedAt.IsZero() {
				rejectedAt = s.now()
			}
			appendEvent(models.StatusRejected, msgAdminRejected, models.ActorAdmin, rejectedAt)
		}
	}

	// Discontinuation always happened after approval, whichever path created
	// the record.
	if record.Status == models.StatusDiscontinued {
		discontinuedAt := record.UpdatedAt
		if discontinuedAt.IsZero() {
			discontinuedAt = s.now()
		}
		appendEvent(models.StatusDiscontinued, msgDiscontinued, models.ActorAdmin, discontinuedAt)
	}

	return history
}
