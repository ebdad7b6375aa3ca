package service

import (
	"context"
	"time"

	"github.com/fitgrid/class-booking-service/internal/models"
	"gorm.io/gorm"
)

// Shared repository mocks for the service tests. Transaction runs the
// closure with a nil handle; the mocks ignore it.

// --- Mock ClassRepository ---

type mockClassRepo struct {
	createFn           func(ctx context.Context, tx *gorm.DB, class *models.Class) error
	findByIDFn         func(ctx context.Context, id uint) (*models.Class, error)
	findByIDForUpdateFn func(ctx context.Context, tx *gorm.DB, id uint) (*models.Class, error)
	findByDateRangeFn  func(ctx context.Context, from, to time.Time) ([]models.Class, error)
	countOverlappingFn func(ctx context.Context, tx *gorm.DB, instructorID uint, date time.Time, startTime, endTime string, excludeClassID uint) (int64, error)
	saveFn             func(ctx context.Context, tx *gorm.DB, class *models.Class) error
	deleteFn           func(ctx context.Context, tx *gorm.DB, id uint) error
}

func (m *mockClassRepo) Transaction(ctx context.Context, fn func(tx *gorm.DB) error) error {
	return fn(nil)
}

func (m *mockClassRepo) Create(ctx context.Context, tx *gorm.DB, class *models.Class) error {
	if m.createFn != nil {
		return m.createFn(ctx, tx, class)
	}
	return nil
}

func (m *mockClassRepo) FindByID(ctx context.Context, id uint) (*models.Class, error) {
	if m.findByIDFn != nil {
		return m.findByIDFn(ctx, id)
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockClassRepo) FindByIDForUpdate(ctx context.Context, tx *gorm.DB, id uint) (*models.Class, error) {
	if m.findByIDForUpdateFn != nil {
		return m.findByIDForUpdateFn(ctx, tx, id)
	}
	if m.findByIDFn != nil {
		return m.findByIDFn(ctx, id)
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockClassRepo) FindByDateRange(ctx context.Context, from, to time.Time) ([]models.Class, error) {
	if m.findByDateRangeFn != nil {
		return m.findByDateRangeFn(ctx, from, to)
	}
	return nil, nil
}

func (m *mockClassRepo) CountOverlapping(ctx context.Context, tx *gorm.DB, instructorID uint, date time.Time, startTime, endTime string, excludeClassID uint) (int64, error) {
	if m.countOverlappingFn != nil {
		return m.countOverlappingFn(ctx, tx, instructorID, date, startTime, endTime, excludeClassID)
	}
	return 0, nil
}

func (m *mockClassRepo) Save(ctx context.Context, tx *gorm.DB, class *models.Class) error {
	if m.saveFn != nil {
		return m.saveFn(ctx, tx, class)
	}
	return nil
}

func (m *mockClassRepo) Delete(ctx context.Context, tx *gorm.DB, id uint) error {
	if m.deleteFn != nil {
		return m.deleteFn(ctx, tx, id)
	}
	return nil
}

// --- Mock BookingRepository ---

type mockBookingRepo struct {
	createFn          func(ctx context.Context, tx *gorm.DB, booking *models.Booking) error
	findByIDFn        func(ctx context.Context, id uint) (*models.Booking, error)
	findByReferenceFn func(ctx context.Context, reference string) (*models.Booking, error)
	findByClassIDFn   func(ctx context.Context, classID uint, status *models.BookingStatus) ([]models.Booking, error)
	findActiveFn      func(ctx context.Context, tx *gorm.DB, classID, memberID uint) (*models.Booking, error)
	countInStatusesFn func(ctx context.Context, tx *gorm.DB, classID uint, statuses []models.BookingStatus) (int64, error)
	countNonCancelledFn func(ctx context.Context, tx *gorm.DB, classID uint) (int64, error)
	countsByStatusFn  func(ctx context.Context, classID uint) (map[models.BookingStatus]int64, error)
	saveFn            func(ctx context.Context, tx *gorm.DB, booking *models.Booking) error
	deleteFn          func(ctx context.Context, tx *gorm.DB, id uint) error
}

func (m *mockBookingRepo) Transaction(ctx context.Context, fn func(tx *gorm.DB) error) error {
	return fn(nil)
}

func (m *mockBookingRepo) Create(ctx context.Context, tx *gorm.DB, booking *models.Booking) error {
	if m.createFn != nil {
		return m.createFn(ctx, tx, booking)
	}
	return nil
}

func (m *mockBookingRepo) FindByID(ctx context.Context, id uint) (*models.Booking, error) {
	if m.findByIDFn != nil {
		return m.findByIDFn(ctx, id)
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockBookingRepo) FindByIDForUpdate(ctx context.Context, tx *gorm.DB, id uint) (*models.Booking, error) {
	if m.findByIDFn != nil {
		return m.findByIDFn(ctx, id)
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockBookingRepo) FindByReference(ctx context.Context, reference string) (*models.Booking, error) {
	if m.findByReferenceFn != nil {
		return m.findByReferenceFn(ctx, reference)
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockBookingRepo) FindByClassID(ctx context.Context, classID uint, status *models.BookingStatus) ([]models.Booking, error) {
	if m.findByClassIDFn != nil {
		return m.findByClassIDFn(ctx, classID, status)
	}
	return nil, nil
}

func (m *mockBookingRepo) FindActiveByClassAndMember(ctx context.Context, tx *gorm.DB, classID, memberID uint) (*models.Booking, error) {
	if m.findActiveFn != nil {
		return m.findActiveFn(ctx, tx, classID, memberID)
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockBookingRepo) CountInStatuses(ctx context.Context, tx *gorm.DB, classID uint, statuses []models.BookingStatus) (int64, error) {
	if m.countInStatusesFn != nil {
		return m.countInStatusesFn(ctx, tx, classID, statuses)
	}
	return 0, nil
}

func (m *mockBookingRepo) CountNonCancelled(ctx context.Context, tx *gorm.DB, classID uint) (int64, error) {
	if m.countNonCancelledFn != nil {
		return m.countNonCancelledFn(ctx, tx, classID)
	}
	return 0, nil
}

func (m *mockBookingRepo) CountsByStatus(ctx context.Context, classID uint) (map[models.BookingStatus]int64, error) {
	if m.countsByStatusFn != nil {
		return m.countsByStatusFn(ctx, classID)
	}
	return map[models.BookingStatus]int64{}, nil
}

func (m *mockBookingRepo) Save(ctx context.Context, tx *gorm.DB, booking *models.Booking) error {
	if m.saveFn != nil {
		return m.saveFn(ctx, tx, booking)
	}
	return nil
}

func (m *mockBookingRepo) Delete(ctx context.Context, tx *gorm.DB, id uint) error {
	if m.deleteFn != nil {
		return m.deleteFn(ctx, tx, id)
	}
	return nil
}

// --- Mock InstructorRepository ---

type mockInstructorRepo struct {
	findByIDFn func(ctx context.Context, id uint) (*models.Instructor, error)
	upsertFn   func(ctx context.Context, instructor *models.Instructor) error
}

func (m *mockInstructorRepo) FindByID(ctx context.Context, id uint) (*models.Instructor, error) {
	if m.findByIDFn != nil {
		return m.findByIDFn(ctx, id)
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockInstructorRepo) FindByIDForUpdate(ctx context.Context, tx *gorm.DB, id uint) (*models.Instructor, error) {
	if m.findByIDFn != nil {
		return m.findByIDFn(ctx, id)
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockInstructorRepo) Upsert(ctx context.Context, instructor *models.Instructor) error {
	if m.upsertFn != nil {
		return m.upsertFn(ctx, instructor)
	}
	return nil
}

// --- Mock MemberRepository ---

type mockMemberRepo struct {
	createFn      func(ctx context.Context, member *models.Member) error
	findByIDFn    func(ctx context.Context, id uint) (*models.Member, error)
	findByEmailFn func(ctx context.Context, email string) (*models.Member, error)
}

func (m *mockMemberRepo) Create(ctx context.Context, member *models.Member) error {
	if m.createFn != nil {
		return m.createFn(ctx, member)
	}
	return nil
}

func (m *mockMemberRepo) FindByID(ctx context.Context, id uint) (*models.Member, error) {
	if m.findByIDFn != nil {
		return m.findByIDFn(ctx, id)
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockMemberRepo) FindByEmail(ctx context.Context, email string) (*models.Member, error) {
	if m.findByEmailFn != nil {
		return m.findByEmailFn(ctx, email)
	}
	return nil, gorm.ErrRecordNotFound
}

// --- Mock MemberService ---

type mockMemberService struct {
	resolveFn func(ctx context.Context, name, email, phone string) (*models.Member, error)
	getFn     func(ctx context.Context, id uint) (*models.Member, error)
}

func (m *mockMemberService) ResolveMember(ctx context.Context, name, email, phone string) (*models.Member, error) {
	return m.resolveFn(ctx, name, email, phone)
}

func (m *mockMemberService) GetMember(ctx context.Context, id uint) (*models.Member, error) {
	return m.getFn(ctx, id)
}
