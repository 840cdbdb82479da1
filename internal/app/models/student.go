package models

import "time"

// StudentStatus is the lifecycle state of a student record
type StudentStatus string

const (
	StatusRegistered   StudentStatus = "Registered"
	StatusPending      StudentStatus = "Pending"
	StatusApproved     StudentStatus = "Approved"
	StatusRejected     StudentStatus = "Rejected"
	StatusDiscontinued StudentStatus = "Discontinued"
)

// Source records which human-driven path created or last mutated the record
type Source string

const (
	SourceAdmin   Source = "Admin"
	SourceStudent Source = "Student"
	SourceBulk    Source = "Bulk"
)

// StudentType selects between residential categories
type StudentType string

const (
	TypeDaysScholar StudentType = "Days Scholar"
	TypeHosteller   StudentType = "Hosteller"
)

// ID-card template codes derived from the student type
const (
	TemplateHosteller   = "3"
	TemplateDaysScholar = "4"
)

// TemplateForStudentType derives the card template from the student type.
func TemplateForStudentType(studentType StudentType) string {
	if studentType == TypeHosteller {
		return TemplateHosteller
	}
	return TemplateDaysScholar
}

// Parties that appear in the updatedBy field of history events
const (
	ActorAdmin   = "Admin"
	ActorStudent = "Student"
)

// HistoryEvent is one immutable audit-log entry on a student record.
// The wire shape {status, message, updatedBy, timestamp} in chronological
// array order is what the public verification timeline consumes.
type HistoryEvent struct {
	Status    StudentStatus `json:"status" example:"Approved"`
	Message   string        `json:"message" example:"Admin approved application"`
	UpdatedBy string        `json:"updatedBy" example:"Admin"`
	Timestamp time.Time     `json:"timestamp" example:"2025-04-23T12:01:05Z"`
}

// StudentRecord defines the student model based on the 'students' table
type StudentRecord struct {
	ID               int64         `json:"id" db:"id"`
	RegisterNumber   string        `json:"registerNumber" db:"register_number" example:"7376232CB156"` // Unique institutional identifier, uppercase alphanumeric
	Name             string        `json:"name" db:"name"`
	Email            string        `json:"email,omitempty" db:"email"`
	Department       string        `json:"department" db:"department"`
	Year             string        `json:"year" db:"year" example:"II"`
	DOB              string        `json:"dob,omitempty" db:"dob"`
	BloodGroup       string        `json:"bloodGroup,omitempty" db:"blood_group"`
	Gender           string        `json:"gender,omitempty" db:"gender"`
	PhotoURL         string        `json:"photoUrl,omitempty" db:"photo_url"`
	Address          string        `json:"address,omitempty" db:"address"`
	EmergencyContact string        `json:"emergencyContact,omitempty" db:"emergency_contact"`
	ParentPhone      string        `json:"parentPhone,omitempty" db:"parent_phone"`
	OfficialEmail    string        `json:"officialEmail,omitempty" db:"official_email"`
	ValidUpto        string        `json:"validUpto,omitempty" db:"valid_upto"`
	StudentType      StudentType   `json:"studentType" db:"student_type"`
	TemplateType     string        `json:"templateType" db:"template_type" example:"4"`
	Status           StudentStatus `json:"status" db:"status"`
	Source           Source        `json:"source" db:"source"`
	ApprovalDate     *time.Time    `json:"approvalDate,omitempty" db:"approval_date"`
	RejectionReason  string        `json:"rejectionReason,omitempty" db:"rejection_reason"`
	History          []HistoryEvent `json:"history" db:"history"`
	Version          int64         `json:"-" db:"version"` // Optimistic-lock counter, bumped on every write
	CreatedAt        time.Time     `json:"createdAt" db:"created_at"`
	UpdatedAt        time.Time     `json:"updatedAt" db:"updated_at"`
}

// AppendHistory adds one event to the end of the record's history.
// History is append-only; existing entries are never reordered or rewritten.
func (s *StudentRecord) AppendHistory(status StudentStatus, message, updatedBy string, at time.Time) {
	s.History = append(s.History, HistoryEvent{
		Status:    status,
		Message:   message,
		UpdatedBy: updatedBy,
		Timestamp: at,
	})
}
