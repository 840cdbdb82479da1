package services

import (
	"context"
	"sync"
	"time"

	"github.com/sakthivel/idcard-portal/internal/app/models"
	"github.com/sakthivel/idcard-portal/internal/pkg/apperrors"
)

// memStudentStore is an in-memory StudentStore with the same uniqueness and
// version semantics as the database-backed repository.
type memStudentStore struct {
	mu      sync.Mutex
	nextID  int64
	records map[int64]*models.StudentRecord
}

func newMemStudentStore() *memStudentStore {
	return &memStudentStore{
		nextID:  1,
		records: make(map[int64]*models.StudentRecord),
	}
}

func (s *memStudentStore) clone(record *models.StudentRecord) *models.StudentRecord {
	copied := *record
	copied.History = append([]models.HistoryEvent(nil), record.History...)
	if record.ApprovalDate != nil {
		t := *record.ApprovalDate
		copied.ApprovalDate = &t
	}
	return &copied
}

func (s *memStudentStore) Create(ctx context.Context, record *models.StudentRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, existing := range s.records {
		if existing.RegisterNumber == record.RegisterNumber {
			return apperrors.NewDuplicateError("student with this register number already exists")
		}
		if record.Email != "" && existing.Email == record.Email {
			return apperrors.NewDuplicateError("student with this email already exists")
		}
		if record.OfficialEmail != "" && existing.OfficialEmail == record.OfficialEmail {
			return apperrors.NewDuplicateError("student with this email already exists")
		}
	}

	record.ID = s.nextID
	s.nextID++
	record.Version = 1
	now := time.Now()
	if record.CreatedAt.IsZero() {
		record.CreatedAt = now
	}
	record.UpdatedAt = now

	s.records[record.ID] = s.clone(record)
	return nil
}

func (s *memStudentStore) GetByID(ctx context.Context, id int64) (*models.StudentRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	record, ok := s.records[id]
	if !ok {
		return nil, apperrors.ErrStudentNotFound
	}
	return s.clone(record), nil
}

func (s *memStudentStore) GetByRegisterNumber(ctx context.Context, registerNumber string) (*models.StudentRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, record := range s.records {
		if record.RegisterNumber == registerNumber {
			return s.clone(record), nil
		}
	}
	return nil, apperrors.ErrStudentNotFound
}

func (s *memStudentStore) List(ctx context.Context) ([]*models.StudentRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	records := make([]*models.StudentRecord, 0, len(s.records))
	for id := int64(1); id < s.nextID; id++ {
		if record, ok := s.records[id]; ok {
			records = append(records, s.clone(record))
		}
	}
	return records, nil
}

func (s *memStudentStore) Update(ctx context.Context, record *models.StudentRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	stored, ok := s.records[record.ID]
	if !ok {
		return apperrors.ErrStaleRecord
	}
	if stored.Version != record.Version {
		return apperrors.ErrStaleRecord
	}

	record.Version++
	record.UpdatedAt = time.Now()
	s.records[record.ID] = s.clone(record)
	return nil
}

// memAdminStore is an in-memory AdminStore.
type memAdminStore struct {
	mu     sync.Mutex
	nextID int64
	admins map[int64]*models.Admin
}

func newMemAdminStore() *memAdminStore {
	return &memAdminStore{
		nextID: 1,
		admins: make(map[int64]*models.Admin),
	}
}

func (s *memAdminStore) Create(ctx context.Context, admin *models.Admin) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, existing := range s.admins {
		if existing.Username == admin.Username {
			return apperrors.ErrAdminAlreadyExists
		}
	}

	admin.ID = s.nextID
	s.nextID++
	copied := *admin
	s.admins[admin.ID] = &copied
	return nil
}

func (s *memAdminStore) GetByUsername(ctx context.Context, username string) (*models.Admin, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, admin := range s.admins {
		if admin.Username == username {
			copied := *admin
			return &copied, nil
		}
	}
	return nil, apperrors.ErrAdminNotFound
}

func (s *memAdminStore) GetByID(ctx context.Context, id int64) (*models.Admin, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	admin, ok := s.admins[id]
	if !ok {
		return nil, apperrors.ErrAdminNotFound
	}
	copied := *admin
	return &copied, nil
}
