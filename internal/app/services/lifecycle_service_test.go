package services

import (
	"context"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sakthivel/idcard-portal/internal/app/models"
	"github.com/sakthivel/idcard-portal/internal/app/models/dto"
	"github.com/sakthivel/idcard-portal/internal/pkg/apperrors"
)

func newTestLifecycleService(store StudentStore) *studentLifecycleService {
	fixed := time.Date(2025, 4, 23, 12, 0, 0, 0, time.UTC)
	return &studentLifecycleService{
		store:  store,
		logger: zerolog.Nop(),
		now:    func() time.Time { return fixed },
	}
}

func validCreateRequest() *dto.CreateStudentRequest {
	return &dto.CreateStudentRequest{
		RegisterNumber: "7376232cb156",
		Name:           "arun kumar",
		Department:     "computer science engineering",
		Year:           "II",
		Gender:         "Male",
		Email:          "arun@bitsathy.ac.in",
	}
}

func validSignupRequest() *dto.SignupRequest {
	return &dto.SignupRequest{
		RegisterNumber: "7376232CB156",
		Name:           "ARUN KUMAR",
		Department:     "COMPUTER SCIENCE ENGINEERING",
		Year:           "II",
		Email:          "arun@bitsathy.ac.in",
	}
}

func TestCreateByAdmin(t *testing.T) {
	t.Run("creates approved record with history", func(t *testing.T) {
		store := newMemStudentStore()
		svc := newTestLifecycleService(store)

		record, err := svc.CreateByAdmin(context.Background(), validCreateRequest())
		require.NoError(t, err)

		assert.Equal(t, "7376232CB156", record.RegisterNumber)
		assert.Equal(t, "ARUN KUMAR", record.Name)
		assert.Equal(t, models.StatusApproved, record.Status)
		assert.Equal(t, models.SourceAdmin, record.Source)
		require.NotNil(t, record.ApprovalDate)
		require.Len(t, record.History, 1)
		assert.Equal(t, models.StatusApproved, record.History[0].Status)
		assert.Equal(t, "Account created and approved by Admin", record.History[0].Message)
		assert.Equal(t, "Admin", record.History[0].UpdatedBy)
	})

	t.Run("uses default photo for gender when no upload", func(t *testing.T) {
		store := newMemStudentStore()
		svc := newTestLifecycleService(store)

		req := validCreateRequest()
		req.Gender = "Female"
		record, err := svc.CreateByAdmin(context.Background(), req)
		require.NoError(t, err)
		assert.Equal(t, "uploads/default-girl.png", record.PhotoURL)
	})

	t.Run("rejects missing photo without gender", func(t *testing.T) {
		store := newMemStudentStore()
		svc := newTestLifecycleService(store)

		req := validCreateRequest()
		req.Gender = ""
		_, err := svc.CreateByAdmin(context.Background(), req)
		assert.ErrorIs(t, err, apperrors.ErrValidationFailed)
	})

	t.Run("rejects unknown department", func(t *testing.T) {
		store := newMemStudentStore()
		svc := newTestLifecycleService(store)

		req := validCreateRequest()
		req.Department = "MECHANICAL ENGINEERING"
		_, err := svc.CreateByAdmin(context.Background(), req)
		assert.ErrorIs(t, err, apperrors.ErrValidationFailed)
	})

	t.Run("normalizes phone numbers", func(t *testing.T) {
		store := newMemStudentStore()
		svc := newTestLifecycleService(store)

		req := validCreateRequest()
		req.EmergencyContact = "09876543210"
		req.ParentPhone = "919123456789"
		record, err := svc.CreateByAdmin(context.Background(), req)
		require.NoError(t, err)
		assert.Equal(t, "+919876543210", record.EmergencyContact)
		assert.Equal(t, "+919123456789", record.ParentPhone)
	})

	t.Run("rejects landline-style phone", func(t *testing.T) {
		store := newMemStudentStore()
		svc := newTestLifecycleService(store)

		req := validCreateRequest()
		req.EmergencyContact = "0422123456"
		_, err := svc.CreateByAdmin(context.Background(), req)
		assert.ErrorIs(t, err, apperrors.ErrValidationFailed)
	})
}

func TestSelfRegister(t *testing.T) {
	t.Run("creates registered record", func(t *testing.T) {
		store := newMemStudentStore()
		svc := newTestLifecycleService(store)

		record, err := svc.SelfRegister(context.Background(), validSignupRequest())
		require.NoError(t, err)

		assert.Equal(t, models.StatusRegistered, record.Status)
		assert.Equal(t, models.SourceStudent, record.Source)
		assert.Nil(t, record.ApprovalDate)
		require.Len(t, record.History, 1)
		assert.Equal(t, "Student account created", record.History[0].Message)
		assert.Equal(t, "Student", record.History[0].UpdatedBy)
	})

	t.Run("requires email", func(t *testing.T) {
		store := newMemStudentStore()
		svc := newTestLifecycleService(store)

		req := validSignupRequest()
		req.Email = ""
		_, err := svc.SelfRegister(context.Background(), req)
		assert.ErrorIs(t, err, apperrors.ErrValidationFailed)
	})

	t.Run("rejects non-institution email", func(t *testing.T) {
		store := newMemStudentStore()
		svc := newTestLifecycleService(store)

		req := validSignupRequest()
		req.Email = "arun@gmail.com"
		_, err := svc.SelfRegister(context.Background(), req)
		assert.ErrorIs(t, err, apperrors.ErrValidationFailed)
	})

	t.Run("hosteller gets template 3", func(t *testing.T) {
		store := newMemStudentStore()
		svc := newTestLifecycleService(store)

		req := validSignupRequest()
		req.StudentType = "Hosteller"
		record, err := svc.SelfRegister(context.Background(), req)
		require.NoError(t, err)
		assert.Equal(t, "3", record.TemplateType)
	})

	t.Run("defaults to days scholar template 4", func(t *testing.T) {
		store := newMemStudentStore()
		svc := newTestLifecycleService(store)

		record, err := svc.SelfRegister(context.Background(), validSignupRequest())
		require.NoError(t, err)
		assert.Equal(t, models.TypeDaysScholar, record.StudentType)
		assert.Equal(t, "4", record.TemplateType)
	})

	t.Run("duplicate register number is refused", func(t *testing.T) {
		store := newMemStudentStore()
		svc := newTestLifecycleService(store)

		_, err := svc.SelfRegister(context.Background(), validSignupRequest())
		require.NoError(t, err)

		req := validSignupRequest()
		req.Email = "other@bitsathy.ac.in"
		_, err = svc.SelfRegister(context.Background(), req)
		assert.ErrorIs(t, err, apperrors.ErrDuplicateStudent)
	})
}

func TestUpdateProfile(t *testing.T) {
	signup := func(t *testing.T, svc *studentLifecycleService) *models.StudentRecord {
		t.Helper()
		record, err := svc.SelfRegister(context.Background(), validSignupRequest())
		require.NoError(t, err)
		return record
	}

	t.Run("first submission moves to pending with fallback message", func(t *testing.T) {
		store := newMemStudentStore()
		svc := newTestLifecycleService(store)
		record := signup(t, svc)

		updated, err := svc.UpdateProfile(context.Background(), record.ID, &dto.UpdateProfileRequest{})
		require.NoError(t, err)

		assert.Equal(t, models.StatusPending, updated.Status)
		require.Len(t, updated.History, 2)
		assert.Equal(t, "Student updated profile details", updated.History[1].Message)
	})

	t.Run("change summary lists field labels", func(t *testing.T) {
		store := newMemStudentStore()
		svc := newTestLifecycleService(store)
		record := signup(t, svc)

		updated, err := svc.UpdateProfile(context.Background(), record.ID, &dto.UpdateProfileRequest{
			DOB:        "2005-06-14",
			BloodGroup: "B+",
		})
		require.NoError(t, err)

		require.Len(t, updated.History, 2)
		assert.Equal(t, "Updated: Date of Birth, Blood Group", updated.History[1].Message)
	})

	t.Run("year change is described as a promotion", func(t *testing.T) {
		store := newMemStudentStore()
		svc := newTestLifecycleService(store)
		record := signup(t, svc)

		updated, err := svc.UpdateProfile(context.Background(), record.ID, &dto.UpdateProfileRequest{Year: "III"})
		require.NoError(t, err)

		require.Len(t, updated.History, 2)
		assert.Equal(t, "Updated: Academic Year from II to III", updated.History[1].Message)
	})

	t.Run("student type change re-derives template", func(t *testing.T) {
		store := newMemStudentStore()
		svc := newTestLifecycleService(store)
		record := signup(t, svc)

		updated, err := svc.UpdateProfile(context.Background(), record.ID, &dto.UpdateProfileRequest{StudentType: "Hosteller"})
		require.NoError(t, err)

		assert.Equal(t, models.TypeHosteller, updated.StudentType)
		assert.Equal(t, "3", updated.TemplateType)
		assert.Equal(t, "Updated: Student Type from Days Scholar to Hosteller", updated.History[1].Message)
	})

	t.Run("no-op submission after first leaves record untouched", func(t *testing.T) {
		store := newMemStudentStore()
		svc := newTestLifecycleService(store)
		record := signup(t, svc)

		first, err := svc.UpdateProfile(context.Background(), record.ID, &dto.UpdateProfileRequest{DOB: "2005-06-14"})
		require.NoError(t, err)
		require.Len(t, first.History, 2)

		second, err := svc.UpdateProfile(context.Background(), record.ID, &dto.UpdateProfileRequest{DOB: "2005-06-14"})
		require.NoError(t, err)
		assert.Equal(t, models.StatusPending, second.Status)
		assert.Len(t, second.History, 2)
	})

	t.Run("resubmission after rejection clears rejection reason", func(t *testing.T) {
		store := newMemStudentStore()
		svc := newTestLifecycleService(store)
		record := signup(t, svc)

		_, err := svc.UpdateProfile(context.Background(), record.ID, &dto.UpdateProfileRequest{DOB: "2005-06-14"})
		require.NoError(t, err)
		_, err = svc.Verify(context.Background(), record.ID, &dto.VerifyRequest{Status: "Rejected", RejectionReason: "Blurry photo"})
		require.NoError(t, err)

		updated, err := svc.UpdateProfile(context.Background(), record.ID, &dto.UpdateProfileRequest{PhotoURL: "uploads/photos/new.jpg"})
		require.NoError(t, err)
		assert.Equal(t, models.StatusPending, updated.Status)
		assert.Empty(t, updated.RejectionReason)
		assert.Nil(t, updated.ApprovalDate)
	})

	t.Run("discontinued record cannot be updated", func(t *testing.T) {
		store := newMemStudentStore()
		svc := newTestLifecycleService(store)

		created, err := svc.CreateByAdmin(context.Background(), validCreateRequest())
		require.NoError(t, err)
		_, err = svc.Discontinue(context.Background(), created.ID)
		require.NoError(t, err)

		_, err = svc.UpdateProfile(context.Background(), created.ID, &dto.UpdateProfileRequest{DOB: "2005-06-14"})
		assert.ErrorIs(t, err, apperrors.ErrIllegalTransition)
	})

	t.Run("unknown student", func(t *testing.T) {
		store := newMemStudentStore()
		svc := newTestLifecycleService(store)

		_, err := svc.UpdateProfile(context.Background(), 42, &dto.UpdateProfileRequest{})
		assert.ErrorIs(t, err, apperrors.ErrStudentNotFound)
	})
}

func TestVerify(t *testing.T) {
	submitProfile := func(t *testing.T, svc *studentLifecycleService) *models.StudentRecord {
		t.Helper()
		record, err := svc.SelfRegister(context.Background(), validSignupRequest())
		require.NoError(t, err)
		record, err = svc.UpdateProfile(context.Background(), record.ID, &dto.UpdateProfileRequest{DOB: "2005-06-14"})
		require.NoError(t, err)
		return record
	}

	t.Run("approval sets approval date", func(t *testing.T) {
		store := newMemStudentStore()
		svc := newTestLifecycleService(store)
		record := submitProfile(t, svc)

		approved, err := svc.Verify(context.Background(), record.ID, &dto.VerifyRequest{Status: "Approved"})
		require.NoError(t, err)

		assert.Equal(t, models.StatusApproved, approved.Status)
		require.NotNil(t, approved.ApprovalDate)
		require.Len(t, approved.History, 3)
		assert.Equal(t, "Admin approved application", approved.History[2].Message)
	})

	t.Run("rejection records the reason", func(t *testing.T) {
		store := newMemStudentStore()
		svc := newTestLifecycleService(store)
		record := submitProfile(t, svc)

		rejected, err := svc.Verify(context.Background(), record.ID, &dto.VerifyRequest{
			Status:          "Rejected",
			RejectionReason: "Blurry photo",
		})
		require.NoError(t, err)

		assert.Equal(t, models.StatusRejected, rejected.Status)
		assert.Equal(t, "Blurry photo", rejected.RejectionReason)
		assert.Nil(t, rejected.ApprovalDate)
		require.Len(t, rejected.History, 3)
		assert.Equal(t, "Admin rejected application: Blurry photo", rejected.History[2].Message)
	})

	t.Run("rejection requires a reason", func(t *testing.T) {
		store := newMemStudentStore()
		svc := newTestLifecycleService(store)
		record := submitProfile(t, svc)

		_, err := svc.Verify(context.Background(), record.ID, &dto.VerifyRequest{Status: "Rejected", RejectionReason: "  "})
		assert.ErrorIs(t, err, apperrors.ErrValidationFailed)
	})

	t.Run("only pending records can be verified", func(t *testing.T) {
		store := newMemStudentStore()
		svc := newTestLifecycleService(store)

		record, err := svc.SelfRegister(context.Background(), validSignupRequest())
		require.NoError(t, err)

		_, err = svc.Verify(context.Background(), record.ID, &dto.VerifyRequest{Status: "Approved"})
		assert.ErrorIs(t, err, apperrors.ErrIllegalTransition)
	})

	t.Run("invalid decision", func(t *testing.T) {
		store := newMemStudentStore()
		svc := newTestLifecycleService(store)

		_, err := svc.Verify(context.Background(), 1, &dto.VerifyRequest{Status: "Discontinued"})
		assert.ErrorIs(t, err, apperrors.ErrValidationFailed)
	})
}

func TestDiscontinue(t *testing.T) {
	t.Run("approved record can be discontinued", func(t *testing.T) {
		store := newMemStudentStore()
		svc := newTestLifecycleService(store)

		created, err := svc.CreateByAdmin(context.Background(), validCreateRequest())
		require.NoError(t, err)

		discontinued, err := svc.Discontinue(context.Background(), created.ID)
		require.NoError(t, err)

		assert.Equal(t, models.StatusDiscontinued, discontinued.Status)
		assert.NotNil(t, discontinued.ApprovalDate)
		require.Len(t, discontinued.History, 2)
		assert.Equal(t, "ID card discontinued by Admin", discontinued.History[1].Message)
	})

	t.Run("discontinued is terminal", func(t *testing.T) {
		store := newMemStudentStore()
		svc := newTestLifecycleService(store)

		created, err := svc.CreateByAdmin(context.Background(), validCreateRequest())
		require.NoError(t, err)
		_, err = svc.Discontinue(context.Background(), created.ID)
		require.NoError(t, err)

		_, err = svc.Discontinue(context.Background(), created.ID)
		assert.ErrorIs(t, err, apperrors.ErrIllegalTransition)
	})

	t.Run("pending record cannot be discontinued", func(t *testing.T) {
		store := newMemStudentStore()
		svc := newTestLifecycleService(store)

		record, err := svc.SelfRegister(context.Background(), validSignupRequest())
		require.NoError(t, err)
		_, err = svc.UpdateProfile(context.Background(), record.ID, &dto.UpdateProfileRequest{DOB: "2005-06-14"})
		require.NoError(t, err)

		_, err = svc.Discontinue(context.Background(), record.ID)
		assert.ErrorIs(t, err, apperrors.ErrIllegalTransition)
	})
}

func TestBulkImport(t *testing.T) {
	t.Run("creates approved records per row", func(t *testing.T) {
		store := newMemStudentStore()
		svc := newTestLifecycleService(store)

		resp, err := svc.BulkImport(context.Background(), []dto.BulkImportRow{
			{RegisterNumber: "7376232CB156", Name: "Arun Kumar", Department: "COMPUTER SCIENCE ENGINEERING", Year: "II"},
			{RegisterNumber: "7376232CB157", Name: "Priya S", Department: "COMPUTER TECHNOLOGY", Year: "III"},
		})
		require.NoError(t, err)

		assert.Equal(t, 2, resp.CreatedCount)
		assert.Empty(t, resp.Errors)
		assert.Equal(t, "Successfully created 2 students", resp.Message)

		record, err := store.GetByRegisterNumber(context.Background(), "7376232CB156")
		require.NoError(t, err)
		assert.Equal(t, models.StatusApproved, record.Status)
		assert.Equal(t, models.SourceBulk, record.Source)
		require.NotNil(t, record.ApprovalDate)
		require.Len(t, record.History, 1)
		assert.Equal(t, "Student data imported via Bulk Sourcing", record.History[0].Message)
	})

	t.Run("row failures do not abort the batch", func(t *testing.T) {
		store := newMemStudentStore()
		svc := newTestLifecycleService(store)

		resp, err := svc.BulkImport(context.Background(), []dto.BulkImportRow{
			{RegisterNumber: "7376232CB156", Name: "Arun Kumar", Department: "COMPUTER SCIENCE ENGINEERING", Year: "II"},
			{RegisterNumber: "7376232CB156", Name: "Duplicate Row", Department: "COMPUTER SCIENCE ENGINEERING", Year: "II"},
			{RegisterNumber: "7376232CB158", Name: "Bad Dept", Department: "MECHANICAL", Year: "II"},
			{RegisterNumber: "7376232CB159", Name: "Priya S", Department: "COMPUTER TECHNOLOGY", Year: "III"},
		})
		require.NoError(t, err)

		assert.Equal(t, 2, resp.CreatedCount)
		require.Len(t, resp.Errors, 2)
		assert.Equal(t, "7376232CB156", resp.Errors[0].RegisterNumber)
		assert.Equal(t, "7376232CB158", resp.Errors[1].RegisterNumber)
		assert.Equal(t, "Successfully created 2 students", resp.Message)
	})
}

func TestGetPublicView(t *testing.T) {
	t.Run("returns projection with full history", func(t *testing.T) {
		store := newMemStudentStore()
		svc := newTestLifecycleService(store)

		record, err := svc.SelfRegister(context.Background(), validSignupRequest())
		require.NoError(t, err)
		_, err = svc.UpdateProfile(context.Background(), record.ID, &dto.UpdateProfileRequest{DOB: "2005-06-14"})
		require.NoError(t, err)
		_, err = svc.Verify(context.Background(), record.ID, &dto.VerifyRequest{Status: "Approved"})
		require.NoError(t, err)

		// Lookup input is normalized the same way as signup input
		view, err := svc.GetPublicView(context.Background(), "7376-232-cb156")
		require.NoError(t, err)

		assert.Equal(t, "7376232CB156", view.RegisterNumber)
		assert.Equal(t, models.StatusApproved, view.Status)
		require.Len(t, view.History, 3)
		assert.Equal(t, "Student account created", view.History[0].Message)
		assert.Equal(t, "Updated: Date of Birth", view.History[1].Message)
		assert.Equal(t, "Admin approved application", view.History[2].Message)
	})

	t.Run("unknown register number", func(t *testing.T) {
		store := newMemStudentStore()
		svc := newTestLifecycleService(store)

		_, err := svc.GetPublicView(context.Background(), "9999999ZZ999")
		assert.ErrorIs(t, err, apperrors.ErrStudentNotFound)
	})
}

func TestOptimisticLocking(t *testing.T) {
	store := newMemStudentStore()
	svc := newTestLifecycleService(store)

	record, err := svc.SelfRegister(context.Background(), validSignupRequest())
	require.NoError(t, err)

	// Two actors read the same version; the second write must fail
	stale, err := store.GetByID(context.Background(), record.ID)
	require.NoError(t, err)

	_, err = svc.UpdateProfile(context.Background(), record.ID, &dto.UpdateProfileRequest{DOB: "2005-06-14"})
	require.NoError(t, err)

	err = store.Update(context.Background(), stale)
	assert.ErrorIs(t, err, apperrors.ErrStaleRecord)
}
