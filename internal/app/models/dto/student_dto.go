package dto

import "github.com/sakthivel/idcard-portal/internal/app/models"

// CreateStudentRequest represents the admin direct-create command input.
// Records created this way are Approved immediately.
type CreateStudentRequest struct {
	RegisterNumber   string `form:"registerNumber" json:"registerNumber" binding:"required"`
	Name             string `form:"name" json:"name" binding:"required"`
	Email            string `form:"email" json:"email"`
	Department       string `form:"department" json:"department" binding:"required"`
	Year             string `form:"year" json:"year" binding:"required"`
	DOB              string `form:"dob" json:"dob"`
	BloodGroup       string `form:"bloodGroup" json:"bloodGroup"`
	Gender           string `form:"gender" json:"gender"`
	Address          string `form:"address" json:"address"`
	EmergencyContact string `form:"emergencyContact" json:"emergencyContact"`
	ParentPhone      string `form:"parentPhone" json:"parentPhone"`
	OfficialEmail    string `form:"officialEmail" json:"officialEmail"`
	ValidUpto        string `form:"validUpto" json:"validUpto"`
	StudentType      string `form:"studentType" json:"studentType"`
	PhotoURL         string `form:"-" json:"-"` // set by the controller after the upload is stored
}

// SignupRequest represents the student self-registration command input
type SignupRequest struct {
	RegisterNumber string `json:"registerNumber" binding:"required"`
	Name           string `json:"name" binding:"required"`
	Department     string `json:"department" binding:"required"`
	Year           string `json:"year" binding:"required"`
	Email          string `json:"email" binding:"required"`
	StudentType    string `json:"studentType"`
}

// UpdateProfileRequest represents the student profile submission command input.
// Empty fields are treated as "not provided" and leave the stored value alone.
type UpdateProfileRequest struct {
	DOB              string `form:"dob" json:"dob"`
	BloodGroup       string `form:"bloodGroup" json:"bloodGroup"`
	Gender           string `form:"gender" json:"gender"`
	Address          string `form:"address" json:"address"`
	EmergencyContact string `form:"emergencyContact" json:"emergencyContact"`
	ParentPhone      string `form:"parentPhone" json:"parentPhone"`
	OfficialEmail    string `form:"officialEmail" json:"officialEmail"`
	ValidUpto        string `form:"validUpto" json:"validUpto"`
	Year             string `form:"year" json:"year"`
	StudentType      string `form:"studentType" json:"studentType"`
	PhotoURL         string `form:"-" json:"-"` // set by the controller after the upload is stored
}

// VerifyRequest represents the admin verification decision
type VerifyRequest struct {
	Status          string `json:"status" binding:"required"`
	RejectionReason string `json:"rejectionReason"`
}

// BulkImportRow is one already-parsed row of a bulk student import
type BulkImportRow struct {
	RegisterNumber string `json:"registerNumber"`
	Name           string `json:"name"`
	Department     string `json:"department"`
	Year           string `json:"year"`
	Email          string `json:"email"`
}

// BulkImportRequest represents the bulk import command input
type BulkImportRequest struct {
	Students []BulkImportRow `json:"students" binding:"required"`
}

// BulkRowError reports a single failed row of a bulk import
type BulkRowError struct {
	RegisterNumber string `json:"registerNumber"`
	Error          string `json:"error"`
}

// BulkImportResponse reports the outcome of a bulk import; partial success
// is expected and row failures never abort the batch
type BulkImportResponse struct {
	Message      string         `json:"message"`
	CreatedCount int            `json:"createdCount"`
	Errors       []BulkRowError `json:"errors"`
}

// PublicStudentResponse is the projection served to the third-party
// verification page, including the full status timeline
type PublicStudentResponse struct {
	RegisterNumber string                `json:"registerNumber"`
	Name           string                `json:"name"`
	Department     string                `json:"department"`
	Year           string                `json:"year"`
	PhotoURL       string                `json:"photoUrl,omitempty"`
	ValidUpto      string                `json:"validUpto,omitempty"`
	StudentType    models.StudentType    `json:"studentType"`
	Status         models.StudentStatus  `json:"status"`
	History        []models.HistoryEvent `json:"history"`
}

// NewPublicStudentResponse builds the public projection from a record
func NewPublicStudentResponse(record *models.StudentRecord) *PublicStudentResponse {
	return &PublicStudentResponse{
		RegisterNumber: record.RegisterNumber,
		Name:           record.Name,
		Department:     record.Department,
		Year:           record.Year,
		PhotoURL:       record.PhotoURL,
		ValidUpto:      record.ValidUpto,
		StudentType:    record.StudentType,
		Status:         record.Status,
		History:        record.History,
	}
}
