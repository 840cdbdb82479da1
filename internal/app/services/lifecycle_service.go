package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/sakthivel/idcard-portal/internal/app/models"
	"github.com/sakthivel/idcard-portal/internal/app/models/dto"
	"github.com/sakthivel/idcard-portal/internal/pkg/apperrors"
	"github.com/sakthivel/idcard-portal/internal/pkg/validation"
)

// History message templates. The backfill replays these for legacy records,
// so old and new records are indistinguishable in the verification timeline.
const (
	msgAdminCreated   = "Account created and approved by Admin"
	msgBulkImported   = "Student data imported via Bulk Sourcing"
	msgSelfRegistered = "Student account created"
	msgAdminApproved  = "Admin approved application"
	msgAdminRejected  = "Admin rejected application"
	msgDiscontinued   = "ID card discontinued by Admin"
	msgProfileUpdated = "Student updated profile details"
)

// Default photos used when an admin creates a record without an upload
const (
	defaultPhotoMale   = "uploads/default-boy.png"
	defaultPhotoFemale = "uploads/default-girl.png"
)

// studentLifecycleService is the single owner of the status, history and
// verification side-effect fields of student records.
type studentLifecycleService struct {
	store  StudentStore
	logger zerolog.Logger
	now    func() time.Time
}

// NewLifecycleService creates the lifecycle engine on top of a student store.
func NewLifecycleService(store StudentStore, logger zerolog.Logger) LifecycleService {
	return &studentLifecycleService{
		store:  store,
		logger: logger,
		now:    time.Now,
	}
}

// CreateByAdmin creates a record through the admin path. The record is
// Approved immediately and its approval date is set.
func (s *studentLifecycleService) CreateByAdmin(ctx context.Context, req *dto.CreateStudentRequest) (*models.StudentRecord, error) {
	record, err := s.buildRecord(req.RegisterNumber, req.Name, req.Department, req.Year, req.Email, req.StudentType)
	if err != nil {
		return nil, err
	}

	if req.Gender != "" && !validation.IsValidGender(req.Gender) {
		return nil, apperrors.NewValidationError(fmt.Sprintf("gender must be one of %s", strings.Join(validation.Genders, ", ")))
	}

	record.PhotoURL = req.PhotoURL
	if record.PhotoURL == "" {
		switch req.Gender {
		case "Male":
			record.PhotoURL = defaultPhotoMale
		case "Female":
			record.PhotoURL = defaultPhotoFemale
		default:
			return nil, apperrors.NewValidationError("please upload a photo or select a valid gender")
		}
	}

	record.DOB = req.DOB
	record.BloodGroup = req.BloodGroup
	record.Gender = req.Gender
	record.Address = req.Address
	record.ValidUpto = req.ValidUpto

	if req.EmergencyContact != "" {
		phone, ok := validation.NormalizePhone(req.EmergencyContact)
		if !ok {
			return nil, apperrors.NewValidationError("emergency contact must be a valid 10-digit mobile number")
		}
		record.EmergencyContact = phone
	}
	if req.ParentPhone != "" {
		phone, ok := validation.NormalizePhone(req.ParentPhone)
		if !ok {
			return nil, apperrors.NewValidationError("parent phone must be a valid 10-digit mobile number")
		}
		record.ParentPhone = phone
	}
	if req.OfficialEmail != "" {
		if !validation.IsInstitutionEmail(req.OfficialEmail) {
			return nil, apperrors.NewValidationError("official email must end with " + validation.EmailDomain)
		}
		record.OfficialEmail = strings.TrimSpace(req.OfficialEmail)
	}

	now := s.now()
	record.Status = models.StatusApproved
	record.Source = models.SourceAdmin
	record.ApprovalDate = &now
	record.AppendHistory(models.StatusApproved, msgAdminCreated, models.ActorAdmin, now)

	if err := s.store.Create(ctx, record); err != nil {
		return nil, err
	}

	s.logger.Info().Str("registerNumber", record.RegisterNumber).Msg("Student created by admin")
	return record, nil
}

// SelfRegister creates a record through the student signup path. The record
// starts Registered; an ID card is only issued after admin approval.
func (s *studentLifecycleService) SelfRegister(ctx context.Context, req *dto.SignupRequest) (*models.StudentRecord, error) {
	record, err := s.buildRecord(req.RegisterNumber, req.Name, req.Department, req.Year, req.Email, req.StudentType)
	if err != nil {
		return nil, err
	}

	if record.Email == "" {
		return nil, apperrors.NewValidationError("email is required")
	}

	record.Status = models.StatusRegistered
	record.Source = models.SourceStudent
	record.AppendHistory(models.StatusRegistered, msgSelfRegistered, models.ActorStudent, s.now())

	if err := s.store.Create(ctx, record); err != nil {
		return nil, err
	}

	s.logger.Info().Str("registerNumber", record.RegisterNumber).Msg("Student self-registered")
	return record, nil
}

// buildRecord normalizes and validates the identity fields shared by every
// creation path.
func (s *studentLifecycleService) buildRecord(registerNumber, name, department, year, email, studentType string) (*models.StudentRecord, error) {
	registerNumber = validation.NormalizeRegisterNumber(registerNumber)
	if registerNumber == "" {
		return nil, apperrors.NewValidationError("register number is required")
	}

	name = validation.NormalizeName(name)
	if !validation.IsValidName(name) {
		return nil, apperrors.NewValidationError("name is required")
	}

	department = validation.NormalizeDepartment(department)
	if !validation.IsValidDepartment(department) {
		return nil, apperrors.NewValidationError("department must be one of the institution's departments")
	}

	year = validation.NormalizeYear(year)
	if !validation.IsValidYear(year) {
		return nil, apperrors.NewValidationError(fmt.Sprintf("year must be one of %s", strings.Join(validation.Years, ", ")))
	}

	email = strings.TrimSpace(email)
	if email != "" && !validation.IsInstitutionEmail(email) {
		return nil, apperrors.NewValidationError("email must end with " + validation.EmailDomain)
	}

	st := models.TypeDaysScholar
	if studentType != "" {
		st = models.StudentType(studentType)
		if st != models.TypeDaysScholar && st != models.TypeHosteller {
			return nil, apperrors.NewValidationError("student type must be Days Scholar or Hosteller")
		}
	}

	return &models.StudentRecord{
		RegisterNumber: registerNumber,
		Name:           name,
		Email:          email,
		Department:     department,
		Year:           year,
		StudentType:    st,
		TemplateType:   models.TemplateForStudentType(st),
	}, nil
}

// fieldChange records one tracked-field difference for the history message.
type fieldChange struct {
	label string
	apply func(record *models.StudentRecord)
}

// UpdateProfile applies a student profile submission. When at least one
// tracked field actually changes the record moves to Pending and a single
// history event summarizing the changes is appended. A submission with no
// real differences is a no-op, except for the very first submission of a
// Registered record, which always produces a Pending event.
func (s *studentLifecycleService) UpdateProfile(ctx context.Context, studentID int64, req *dto.UpdateProfileRequest) (*models.StudentRecord, error) {
	record, err := s.store.GetByID(ctx, studentID)
	if err != nil {
		return nil, err
	}

	if record.Status == models.StatusDiscontinued {
		return nil, apperrors.NewIllegalTransitionError("a discontinued record cannot be updated")
	}

	changes, err := s.collectChanges(record, req)
	if err != nil {
		return nil, err
	}

	firstSubmission := record.Status == models.StatusRegistered
	if len(changes) == 0 && !firstSubmission {
		return record, nil
	}

	labels := make([]string, 0, len(changes))
	for _, change := range changes {
		change.apply(record)
		labels = append(labels, change.label)
	}

	message := msgProfileUpdated
	if len(labels) > 0 {
		message = "Updated: " + strings.Join(labels, ", ")
	}

	record.Status = models.StatusPending
	record.Source = models.SourceStudent
	record.RejectionReason = ""
	record.ApprovalDate = nil
	record.AppendHistory(models.StatusPending, message, models.ActorStudent, s.now())

	if err := s.store.Update(ctx, record); err != nil {
		return nil, err
	}

	s.logger.Info().
		Str("registerNumber", record.RegisterNumber).
		Int("changedFields", len(labels)).
		Msg("Student profile updated, moved to Pending")
	return record, nil
}

// collectChanges compares each tracked field of the request against the
// stored record and returns the set of real differences, validated and
// normalized. Empty request fields mean "not provided".
func (s *studentLifecycleService) collectChanges(record *models.StudentRecord, req *dto.UpdateProfileRequest) ([]fieldChange, error) {
	var changes []fieldChange

	track := func(provided, current, label string, apply func(r *models.StudentRecord)) {
		if provided != "" && provided != current {
			changes = append(changes, fieldChange{label: label, apply: apply})
		}
	}

	track(req.DOB, record.DOB, "Date of Birth", func(r *models.StudentRecord) { r.DOB = req.DOB })
	track(req.BloodGroup, record.BloodGroup, "Blood Group", func(r *models.StudentRecord) { r.BloodGroup = req.BloodGroup })
	track(req.Address, record.Address, "Address", func(r *models.StudentRecord) { r.Address = req.Address })
	track(req.ValidUpto, record.ValidUpto, "Valid Upto", func(r *models.StudentRecord) { r.ValidUpto = req.ValidUpto })
	track(req.PhotoURL, record.PhotoURL, "Photo", func(r *models.StudentRecord) { r.PhotoURL = req.PhotoURL })

	if req.Gender != "" && req.Gender != record.Gender {
		if !validation.IsValidGender(req.Gender) {
			return nil, apperrors.NewValidationError(fmt.Sprintf("gender must be one of %s", strings.Join(validation.Genders, ", ")))
		}
		changes = append(changes, fieldChange{label: "Gender", apply: func(r *models.StudentRecord) { r.Gender = req.Gender }})
	}

	if req.EmergencyContact != "" {
		phone, ok := validation.NormalizePhone(req.EmergencyContact)
		if !ok {
			return nil, apperrors.NewValidationError("emergency contact must be a valid 10-digit mobile number")
		}
		if phone != record.EmergencyContact {
			changes = append(changes, fieldChange{label: "Student Phone", apply: func(r *models.StudentRecord) { r.EmergencyContact = phone }})
		}
	}

	if req.ParentPhone != "" {
		phone, ok := validation.NormalizePhone(req.ParentPhone)
		if !ok {
			return nil, apperrors.NewValidationError("parent phone must be a valid 10-digit mobile number")
		}
		if phone != record.ParentPhone {
			changes = append(changes, fieldChange{label: "Parent Phone", apply: func(r *models.StudentRecord) { r.ParentPhone = phone }})
		}
	}

	if req.OfficialEmail != "" {
		email := strings.TrimSpace(req.OfficialEmail)
		if !validation.IsInstitutionEmail(email) {
			return nil, apperrors.NewValidationError("official email must end with " + validation.EmailDomain)
		}
		if email != record.OfficialEmail {
			changes = append(changes, fieldChange{label: "Official Email", apply: func(r *models.StudentRecord) { r.OfficialEmail = email }})
		}
	}

	if req.Year != "" {
		year := validation.NormalizeYear(req.Year)
		if !validation.IsValidYear(year) {
			return nil, apperrors.NewValidationError(fmt.Sprintf("year must be one of %s", strings.Join(validation.Years, ", ")))
		}
		if year != record.Year {
			label := fmt.Sprintf("Academic Year from %s to %s", record.Year, year)
			changes = append(changes, fieldChange{label: label, apply: func(r *models.StudentRecord) { r.Year = year }})
		}
	}

	if req.StudentType != "" {
		st := models.StudentType(req.StudentType)
		if st != models.TypeDaysScholar && st != models.TypeHosteller {
			return nil, apperrors.NewValidationError("student type must be Days Scholar or Hosteller")
		}
		if st != record.StudentType {
			label := fmt.Sprintf("Student Type from %s to %s", record.StudentType, st)
			changes = append(changes, fieldChange{label: label, apply: func(r *models.StudentRecord) {
				r.StudentType = st
				r.TemplateType = models.TemplateForStudentType(st)
			}})
		}
	}

	return changes, nil
}

// Verify applies an admin approval or rejection decision to a Pending record.
func (s *studentLifecycleService) Verify(ctx context.Context, studentID int64, req *dto.VerifyRequest) (*models.StudentRecord, error) {
	decision := models.StudentStatus(req.Status)
	if decision != models.StatusApproved && decision != models.StatusRejected {
		return nil, apperrors.NewValidationError("status must be Approved or Rejected")
	}

	record, err := s.store.GetByID(ctx, studentID)
	if err != nil {
		return nil, err
	}

	if record.Status != models.StatusPending {
		return nil, apperrors.NewIllegalTransitionError(
			fmt.Sprintf("only Pending records can be verified, current status is %s", record.Status))
	}

	now := s.now()
	if decision == models.StatusApproved {
		record.Status = models.StatusApproved
		record.ApprovalDate = &now
		record.RejectionReason = ""
		record.AppendHistory(models.StatusApproved, msgAdminApproved, models.ActorAdmin, now)
	} else {
		reason := strings.TrimSpace(req.RejectionReason)
		if reason == "" {
			return nil, apperrors.NewValidationError("rejection requires a non-empty reason")
		}
		record.Status = models.StatusRejected
		record.ApprovalDate = nil
		record.RejectionReason = reason
		record.AppendHistory(models.StatusRejected, fmt.Sprintf("%s: %s", msgAdminRejected, reason), models.ActorAdmin, now)
	}

	if err := s.store.Update(ctx, record); err != nil {
		return nil, err
	}

	s.logger.Info().
		Str("registerNumber", record.RegisterNumber).
		Str("decision", string(decision)).
		Msg("Admin verified student application")
	return record, nil
}

// Discontinue marks an Approved record as Discontinued, invalidating its ID
// card. Discontinued is terminal; no further transitions are possible.
func (s *studentLifecycleService) Discontinue(ctx context.Context, studentID int64) (*models.StudentRecord, error) {
	record, err := s.store.GetByID(ctx, studentID)
	if err != nil {
		return nil, err
	}

	if record.Status != models.StatusApproved {
		return nil, apperrors.NewIllegalTransitionError(
			fmt.Sprintf("only Approved records can be discontinued, current status is %s", record.Status))
	}

	// Approval date is kept: it still records when the card was issued.
	record.Status = models.StatusDiscontinued
	record.AppendHistory(models.StatusDiscontinued, msgDiscontinued, models.ActorAdmin, s.now())

	if err := s.store.Update(ctx, record); err != nil {
		return nil, err
	}

	s.logger.Info().Str("registerNumber", record.RegisterNumber).Msg("Student record discontinued")
	return record, nil
}

// BulkImport creates one Approved record per row. Rows fail independently;
// a duplicate or invalid row never aborts the rest of the batch.
func (s *studentLifecycleService) BulkImport(ctx context.Context, rows []dto.BulkImportRow) (*dto.BulkImportResponse, error) {
	resp := &dto.BulkImportResponse{Errors: []dto.BulkRowError{}}

	for _, row := range rows {
		record, err := s.buildRecord(row.RegisterNumber, row.Name, row.Department, row.Year, row.Email, "")
		if err == nil {
			now := s.now()
			record.Status = models.StatusApproved
			record.Source = models.SourceBulk
			record.ApprovalDate = &now
			record.AppendHistory(models.StatusApproved, msgBulkImported, models.ActorAdmin, now)
			err = s.store.Create(ctx, record)
		}

		if err != nil {
			resp.Errors = append(resp.Errors, dto.BulkRowError{
				RegisterNumber: row.RegisterNumber,
				Error:          err.Error(),
			})
			continue
		}
		resp.CreatedCount++
	}

	resp.Message = fmt.Sprintf("Successfully created %d students", resp.CreatedCount)
	s.logger.Info().
		Int("created", resp.CreatedCount).
		Int("failed", len(resp.Errors)).
		Msg("Bulk import finished")
	return resp, nil
}

// GetPublicView returns the verification projection for a register number.
func (s *studentLifecycleService) GetPublicView(ctx context.Context, registerNumber string) (*dto.PublicStudentResponse, error) {
	normalized := validation.NormalizeRegisterNumber(registerNumber)
	if normalized == "" {
		return nil, apperrors.NewValidationError("register number is required")
	}

	record, err := s.store.GetByRegisterNumber(ctx, normalized)
	if err != nil {
		return nil, err
	}

	return dto.NewPublicStudentResponse(record), nil
}

// GetByID retrieves a single record.
func (s *studentLifecycleService) GetByID(ctx context.Context, studentID int64) (*models.StudentRecord, error) {
	record, err := s.store.GetByID(ctx, studentID)
	if err != nil {
		if errors.Is(err, apperrors.ErrStudentNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("error retrieving student: %w", err)
	}
	return record, nil
}

// List retrieves all records.
func (s *studentLifecycleService) List(ctx context.Context) ([]*models.StudentRecord, error) {
	return s.store.List(ctx)
}
