package repositories

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/sakthivel/idcard-portal/internal/app/models"
	"github.com/sakthivel/idcard-portal/internal/pkg/apperrors"
	"github.com/sakthivel/idcard-portal/internal/pkg/dberrors"
	"github.com/sakthivel/idcard-portal/internal/pkg/helpers"
)

// StudentRepository handles database operations for student records
type StudentRepository struct {
	db *pgxpool.Pool
}

// NewStudentRepository creates a new student repository
func NewStudentRepository(db *pgxpool.Pool) *StudentRepository {
	return &StudentRepository{
		db: db,
	}
}

const studentColumns = `
	id, register_number, name, COALESCE(email, ''), department, year, dob,
	blood_group, gender, photo_url, address, emergency_contact, parent_phone,
	COALESCE(official_email, ''), valid_upto, student_type, template_type,
	status, source, approval_date, rejection_reason, history, version,
	created_at, updated_at`

// scanStudent scans one row into a StudentRecord. History comes back from
// the JSONB column already in chronological order.
func scanStudent(row pgx.Row) (*models.StudentRecord, error) {
	var record models.StudentRecord
	err := row.Scan(
		&record.ID,
		&record.RegisterNumber,
		&record.Name,
		&record.Email,
		&record.Department,
		&record.Year,
		&record.DOB,
		&record.BloodGroup,
		&record.Gender,
		&record.PhotoURL,
		&record.Address,
		&record.EmergencyContact,
		&record.ParentPhone,
		&record.OfficialEmail,
		&record.ValidUpto,
		&record.StudentType,
		&record.TemplateType,
		&record.Status,
		&record.Source,
		&record.ApprovalDate,
		&record.RejectionReason,
		&record.History,
		&record.Version,
		&record.CreatedAt,
		&record.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &record, nil
}

// Create inserts a new student record and fills in the generated fields.
// Unique violations surface as duplicate-identity errors.
func (r *StudentRepository) Create(ctx context.Context, record *models.StudentRecord) error {
	query := `
		INSERT INTO students (
			register_number, name, email, department, year, dob, blood_group,
			gender, photo_url, address, emergency_contact, parent_phone,
			official_email, valid_upto, student_type, template_type, status,
			source, approval_date, rejection_reason, history
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14,
			$15, $16, $17, $18, $19, $20, $21)
		RETURNING id, version, created_at, updated_at
	`

	err := r.db.QueryRow(ctx, query,
		record.RegisterNumber,
		record.Name,
		helpers.GetContentNullString(record.Email),
		record.Department,
		record.Year,
		record.DOB,
		record.BloodGroup,
		record.Gender,
		record.PhotoURL,
		record.Address,
		record.EmergencyContact,
		record.ParentPhone,
		helpers.GetContentNullString(record.OfficialEmail),
		record.ValidUpto,
		record.StudentType,
		record.TemplateType,
		record.Status,
		record.Source,
		record.ApprovalDate,
		record.RejectionReason,
		record.History,
	).Scan(&record.ID, &record.Version, &record.CreatedAt, &record.UpdatedAt)

	if err != nil {
		switch {
		case dberrors.IsDuplicateConstraintError(err, "students_register_number_key"):
			return apperrors.NewDuplicateError("student with this register number already exists")
		case dberrors.IsDuplicateConstraintError(err, "students_email_key"),
			dberrors.IsDuplicateConstraintError(err, "students_official_email_key"):
			return apperrors.NewDuplicateError("student with this email already exists")
		case dberrors.IsUniqueViolation(err):
			return apperrors.ErrDuplicateStudent
		}
		return fmt.Errorf("error creating student: %w", err)
	}

	return nil
}

// GetByID retrieves a student record by ID
func (r *StudentRepository) GetByID(ctx context.Context, id int64) (*models.StudentRecord, error) {
	query := `SELECT ` + studentColumns + ` FROM students WHERE id = $1`

	record, err := scanStudent(r.db.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrStudentNotFound
		}
		return nil, fmt.Errorf("error retrieving student: %w", err)
	}

	return record, nil
}

// GetByRegisterNumber retrieves a student record by register number
func (r *StudentRepository) GetByRegisterNumber(ctx context.Context, registerNumber string) (*models.StudentRecord, error) {
	query := `SELECT ` + studentColumns + ` FROM students WHERE register_number = $1`

	record, err := scanStudent(r.db.QueryRow(ctx, query, registerNumber))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrStudentNotFound
		}
		return nil, fmt.Errorf("error retrieving student: %w", err)
	}

	return record, nil
}

// List retrieves all student records, newest first
func (r *StudentRepository) List(ctx context.Context) ([]*models.StudentRecord, error) {
	query := `SELECT ` + studentColumns + ` FROM students ORDER BY created_at DESC`

	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("error listing students: %w", err)
	}
	defer rows.Close()

	var records []*models.StudentRecord
	for rows.Next() {
		record, err := scanStudent(rows)
		if err != nil {
			return nil, err
		}
		records = append(records, record)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return records, nil
}

// Update writes a record back with an optimistic-lock check on version, so
// concurrent writers to the same record cannot overwrite each other's
// status or history. The version the caller read must still be current.
func (r *StudentRepository) Update(ctx context.Context, record *models.StudentRecord) error {
	query := `
		UPDATE students SET
			name = $1, email = $2, department = $3, year = $4, dob = $5,
			blood_group = $6, gender = $7, photo_url = $8, address = $9,
			emergency_contact = $10, parent_phone = $11, official_email = $12,
			valid_upto = $13, student_type = $14, template_type = $15,
			status = $16, source = $17, approval_date = $18,
			rejection_reason = $19, history = $20,
			version = version + 1, updated_at = NOW()
		WHERE id = $21 AND version = $22
		RETURNING version, updated_at
	`

	err := r.db.QueryRow(ctx, query,
		record.Name,
		helpers.GetContentNullString(record.Email),
		record.Department,
		record.Year,
		record.DOB,
		record.BloodGroup,
		record.Gender,
		record.PhotoURL,
		record.Address,
		record.EmergencyContact,
		record.ParentPhone,
		helpers.GetContentNullString(record.OfficialEmail),
		record.ValidUpto,
		record.StudentType,
		record.TemplateType,
		record.Status,
		record.Source,
		record.ApprovalDate,
		record.RejectionReason,
		record.History,
		record.ID,
		record.Version,
	).Scan(&record.Version, &record.UpdatedAt)

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return apperrors.ErrStaleRecord
		}
		if dberrors.IsUniqueViolation(err) {
			return apperrors.NewDuplicateError("student with this email already exists")
		}
		return fmt.Errorf("error updating student: %w", err)
	}

	return nil
}
