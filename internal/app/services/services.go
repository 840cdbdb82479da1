package services

import (
	"context"

	"github.com/sakthivel/idcard-portal/internal/app/models"
	"github.com/sakthivel/idcard-portal/internal/app/models/dto"
)

// StudentStore is the persistence port for student records. The engine owns
// all validation and transition rules; implementations only enforce identity
// uniqueness and write serialization.
type StudentStore interface {
	// Create inserts a new record. Returns apperrors.ErrDuplicateStudent when
	// the register number, email or official email is already taken.
	Create(ctx context.Context, record *models.StudentRecord) error

	// GetByID retrieves a record by its surrogate ID.
	// Returns apperrors.ErrStudentNotFound when absent.
	GetByID(ctx context.Context, id int64) (*models.StudentRecord, error)

	// GetByRegisterNumber retrieves a record by its normalized register number.
	// Returns apperrors.ErrStudentNotFound when absent.
	GetByRegisterNumber(ctx context.Context, registerNumber string) (*models.StudentRecord, error)

	// List returns all records.
	List(ctx context.Context) ([]*models.StudentRecord, error)

	// Update writes a record back, comparing-and-swapping on Version so that
	// two concurrent writers cannot silently overwrite each other. Returns
	// apperrors.ErrStaleRecord when the stored version moved on.
	Update(ctx context.Context, record *models.StudentRecord) error
}

// AdminStore is the persistence port for admin accounts.
type AdminStore interface {
	Create(ctx context.Context, admin *models.Admin) error
	GetByUsername(ctx context.Context, username string) (*models.Admin, error)
	GetByID(ctx context.Context, id int64) (*models.Admin, error)
}

// LifecycleService is the command surface of the student record lifecycle
// engine. Every status change flows through here and nowhere else.
type LifecycleService interface {
	CreateByAdmin(ctx context.Context, req *dto.CreateStudentRequest) (*models.StudentRecord, error)
	SelfRegister(ctx context.Context, req *dto.SignupRequest) (*models.StudentRecord, error)
	UpdateProfile(ctx context.Context, studentID int64, req *dto.UpdateProfileRequest) (*models.StudentRecord, error)
	Verify(ctx context.Context, studentID int64, req *dto.VerifyRequest) (*models.StudentRecord, error)
	Discontinue(ctx context.Context, studentID int64) (*models.StudentRecord, error)
	BulkImport(ctx context.Context, rows []dto.BulkImportRow) (*dto.BulkImportResponse, error)
	GetPublicView(ctx context.Context, registerNumber string) (*dto.PublicStudentResponse, error)
	GetByID(ctx context.Context, studentID int64) (*models.StudentRecord, error)
	List(ctx context.Context) ([]*models.StudentRecord, error)
}

// AuthService issues tokens for admins and students.
type AuthService interface {
	AdminLogin(ctx context.Context, req *dto.AdminLoginRequest) (*dto.AdminAuthResponse, error)
	AdminRegister(ctx context.Context, req *dto.AdminRegisterRequest) (*dto.AdminAuthResponse, error)
	StudentLogin(ctx context.Context, req *dto.StudentLoginRequest) (*dto.StudentAuthResponse, error)
}

// BackfillService repairs legacy records created before history tracking.
type BackfillService interface {
	RepairPhones(ctx context.Context) (int, error)
	RepairTemplates(ctx context.Context) (int, error)
	RepairProvenance(ctx context.Context) (int, error)
	BackfillHistory(ctx context.Context) (int, error)
}
