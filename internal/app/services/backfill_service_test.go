package services

import (
	"context"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sakthivel/idcard-portal/internal/app/models"
)

func newTestBackfillService(store StudentStore) *legacyBackfillService {
	fixed := time.Date(2025, 4, 23, 12, 0, 0, 0, time.UTC)
	return &legacyBackfillService{
		store:  store,
		logger: zerolog.Nop(),
		now:    func() time.Time { return fixed },
	}
}

// seedLegacy inserts a record directly, bypassing the engine, the way legacy
// rows entered the table before lifecycle tracking existed.
func seedLegacy(t *testing.T, store *memStudentStore, record *models.StudentRecord) *models.StudentRecord {
	t.Helper()
	require.NoError(t, store.Create(context.Background(), record))
	return record
}

func TestRepairPhones(t *testing.T) {
	store := newMemStudentStore()
	svc := newTestBackfillService(store)

	seedLegacy(t, store, &models.StudentRecord{
		RegisterNumber:   "7376232CB101",
		Name:             "LEGACY ONE",
		EmergencyContact: "9876543210",
		ParentPhone:      "09123456789",
	})
	seedLegacy(t, store, &models.StudentRecord{
		RegisterNumber:   "7376232CB102",
		Name:             "LEGACY TWO",
		EmergencyContact: "+919876543211",
	})
	// Landline-style value the live path would refuse; left alone here
	seedLegacy(t, store, &models.StudentRecord{
		RegisterNumber:   "7376232CB103",
		Name:             "LEGACY THREE",
		EmergencyContact: "0422-2345",
	})

	updated, err := svc.RepairPhones(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, updated)

	one, err := store.GetByRegisterNumber(context.Background(), "7376232CB101")
	require.NoError(t, err)
	assert.Equal(t, "+919876543210", one.EmergencyContact)
	assert.Equal(t, "+919123456789", one.ParentPhone)

	three, err := store.GetByRegisterNumber(context.Background(), "7376232CB103")
	require.NoError(t, err)
	assert.Equal(t, "0422-2345", three.EmergencyContact)
}

func TestRepairTemplates(t *testing.T) {
	store := newMemStudentStore()
	svc := newTestBackfillService(store)

	seedLegacy(t, store, &models.StudentRecord{
		RegisterNumber: "7376232CB101",
		Name:           "LEGACY ONE",
		StudentType:    models.TypeHosteller,
		TemplateType:   "1",
	})
	seedLegacy(t, store, &models.StudentRecord{
		RegisterNumber: "7376232CB102",
		Name:           "LEGACY TWO",
		StudentType:    models.TypeDaysScholar,
		TemplateType:   "2",
	})
	seedLegacy(t, store, &models.StudentRecord{
		RegisterNumber: "7376232CB103",
		Name:           "MODERN",
		StudentType:    models.TypeDaysScholar,
		TemplateType:   "4",
	})

	updated, err := svc.RepairTemplates(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, updated)

	one, err := store.GetByRegisterNumber(context.Background(), "7376232CB101")
	require.NoError(t, err)
	assert.Equal(t, "3", one.TemplateType)

	two, err := store.GetByRegisterNumber(context.Background(), "7376232CB102")
	require.NoError(t, err)
	assert.Equal(t, "4", two.TemplateType)
}

func TestRepairProvenance(t *testing.T) {
	store := newMemStudentStore()
	svc := newTestBackfillService(store)

	createdAt := time.Date(2023, 8, 1, 9, 0, 0, 0, time.UTC)
	seedLegacy(t, store, &models.StudentRecord{
		RegisterNumber: "7376232CB101",
		Name:           "LEGACY ONE",
		Status:         models.StatusApproved,
		CreatedAt:      createdAt,
	})
	seedLegacy(t, store, &models.StudentRecord{
		RegisterNumber: "7376232CB102",
		Name:           "MODERN",
		Status:         models.StatusRegistered,
		Source:         models.SourceStudent,
	})

	updated, err := svc.RepairProvenance(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, updated)

	one, err := store.GetByRegisterNumber(context.Background(), "7376232CB101")
	require.NoError(t, err)
	assert.Equal(t, models.SourceAdmin, one.Source)
	require.NotNil(t, one.ApprovalDate)
	assert.Equal(t, createdAt, *one.ApprovalDate)

	two, err := store.GetByRegisterNumber(context.Background(), "7376232CB102")
	require.NoError(t, err)
	assert.Equal(t, models.SourceStudent, two.Source)
	assert.Nil(t, two.ApprovalDate)
}

func TestBackfillHistory(t *testing.T) {
	t.Run("admin sourced record gets one event", func(t *testing.T) {
		store := newMemStudentStore()
		svc := newTestBackfillService(store)

		seedLegacy(t, store, &models.StudentRecord{
			RegisterNumber: "7376232CB101",
			Name:           "LEGACY ONE",
			Status:         models.StatusApproved,
			Source:         models.SourceAdmin,
		})

		updated, err := svc.BackfillHistory(context.Background())
		require.NoError(t, err)
		assert.Equal(t, 1, updated)

		record, err := store.GetByRegisterNumber(context.Background(), "7376232CB101")
		require.NoError(t, err)
		require.Len(t, record.History, 1)
		assert.Equal(t, "Account created and approved by Admin", record.History[0].Message)
	})

	t.Run("bulk sourced record gets the import event", func(t *testing.T) {
		store := newMemStudentStore()
		svc := newTestBackfillService(store)

		seedLegacy(t, store, &models.StudentRecord{
			RegisterNumber: "7376232CB101",
			Name:           "LEGACY ONE",
			Status:         models.StatusApproved,
			Source:         models.SourceBulk,
		})

		_, err := svc.BackfillHistory(context.Background())
		require.NoError(t, err)

		record, err := store.GetByRegisterNumber(context.Background(), "7376232CB101")
		require.NoError(t, err)
		require.Len(t, record.History, 1)
		assert.Equal(t, "Student data imported via Bulk Sourcing", record.History[0].Message)
	})

	t.Run("approved student sourced record replays the full path", func(t *testing.T) {
		store := newMemStudentStore()
		svc := newTestBackfillService(store)

		approvedAt := time.Date(2023, 9, 15, 10, 0, 0, 0, time.UTC)
		seedLegacy(t, store, &models.StudentRecord{
			RegisterNumber: "7376232CB101",
			Name:           "LEGACY ONE",
			Status:         models.StatusApproved,
			Source:         models.SourceStudent,
			ApprovalDate:   &approvedAt,
		})

		_, err := svc.BackfillHistory(context.Background())
		require.NoError(t, err)

		record, err := store.GetByRegisterNumber(context.Background(), "7376232CB101")
		require.NoError(t, err)
		require.Len(t, record.History, 3)
		assert.Equal(t, "Student account created", record.History[0].Message)
		assert.Equal(t, "Student updated profile details", record.History[1].Message)
		assert.Equal(t, "Admin approved application", record.History[2].Message)
		assert.Equal(t, approvedAt, record.History[2].Timestamp)
	})

	t.Run("discontinued record gets a terminal event", func(t *testing.T) {
		store := newMemStudentStore()
		svc := newTestBackfillService(store)

		seedLegacy(t, store, &models.StudentRecord{
			RegisterNumber: "7376232CB101",
			Name:           "LEGACY ONE",
			Status:         models.StatusDiscontinued,
			Source:         models.SourceAdmin,
		})

		_, err := svc.BackfillHistory(context.Background())
		require.NoError(t, err)

		record, err := store.GetByRegisterNumber(context.Background(), "7376232CB101")
		require.NoError(t, err)
		require.Len(t, record.History, 2)
		assert.Equal(t, models.StatusDiscontinued, record.History[1].Status)
		assert.Equal(t, "ID card discontinued by Admin", record.History[1].Message)
	})

	t.Run("records with history are untouched", func(t *testing.T) {
		store := newMemStudentStore()
		svc := newTestBackfillService(store)

		record := &models.StudentRecord{
			RegisterNumber: "7376232CB101",
			Name:           "MODERN",
			Status:         models.StatusRegistered,
			Source:         models.SourceStudent,
		}
		record.AppendHistory(models.StatusRegistered, "Student account created", models.ActorStudent, time.Now())
		seedLegacy(t, store, record)

		updated, err := svc.BackfillHistory(context.Background())
		require.NoError(t, err)
		assert.Equal(t, 0, updated)
	})
}
