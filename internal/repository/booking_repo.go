package repository

import (
	"context"

	"github.com/fitgrid/class-booking-service/internal/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type BookingRepository interface {
	Transaction(ctx context.Context, fn func(tx *gorm.DB) error) error
	Create(ctx context.Context, tx *gorm.DB, booking *models.Booking) error
	FindByID(ctx context.Context, id uint) (*models.Booking, error)
	FindByIDForUpdate(ctx context.Context, tx *gorm.DB, id uint) (*models.Booking, error)
	FindByReference(ctx context.Context, reference string) (*models.Booking, error)
	FindByClassID(ctx context.Context, classID uint, status *models.BookingStatus) ([]models.Booking, error)
	FindActiveByClassAndMember(ctx context.Context, tx *gorm.DB, classID, memberID uint) (*models.Booking, error)
	CountInStatuses(ctx context.Context, tx *gorm.DB, classID uint, statuses []models.BookingStatus) (int64, error)
	CountNonCancelled(ctx context.Context, tx *gorm.DB, classID uint) (int64, error)
	CountsByStatus(ctx context.Context, classID uint) (map[models.BookingStatus]int64, error)
	Save(ctx context.Context, tx *gorm.DB, booking *models.Booking) error
	Delete(ctx context.Context, tx *gorm.DB, id uint) error
}

type bookingRepository struct {
	db *gorm.DB
}

func NewBookingRepository(db *gorm.DB) BookingRepository {
	return &bookingRepository{db: db}
}

func (r *bookingRepository) Transaction(ctx context.Context, fn func(tx *gorm.DB) error) error {
	return r.db.WithContext(ctx).Transaction(fn)
}

func (r *bookingRepository) Create(ctx context.Context, tx *gorm.DB, booking *models.Booking) error {
	return tx.WithContext(ctx).Create(booking).Error
}

func (r *bookingRepository) FindByID(ctx context.Context, id uint) (*models.Booking, error) {
	var booking models.Booking
	if err := r.db.WithContext(ctx).First(&booking, id).Error; err != nil {
		return nil, err
	}
	return &booking, nil
}

func (r *bookingRepository) FindByIDForUpdate(ctx context.Context, tx *gorm.DB, id uint) (*models.Booking, error) {
	var booking models.Booking
	if err := tx.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		First(&booking, id).Error; err != nil {
		return nil, err
	}
	return &booking, nil
}

func (r *bookingRepository) FindByReference(ctx context.Context, reference string) (*models.Booking, error) {
	var booking models.Booking
	if err := r.db.WithContext(ctx).Where("reference = ?", reference).First(&booking).Error; err != nil {
		return nil, err
	}
	return &booking, nil
}

func (r *bookingRepository) FindByClassID(ctx context.Context, classID uint, status *models.BookingStatus) ([]models.Booking, error) {
	var bookings []models.Booking
	q := r.db.WithContext(ctx).Where("class_id = ?", classID)
	if status != nil {
		q = q.Where("status = ?", *status)
	}
	if err := q.Order("id ASC").Find(&bookings).Error; err != nil {
		return nil, err
	}
	return bookings, nil
}

// FindActiveByClassAndMember returns the member's non-cancelled booking for
// the class, if any. Backed by the partial unique index on
// (class_id, member_id) WHERE status <> 'cancelled'.
func (r *bookingRepository) FindActiveByClassAndMember(ctx context.Context, tx *gorm.DB, classID, memberID uint) (*models.Booking, error) {
	var booking models.Booking
	err := tx.WithContext(ctx).
		Where("class_id = ? AND member_id = ? AND status <> ?", classID, memberID, models.StatusCancelled).
		First(&booking).Error
	if err != nil {
		return nil, err
	}
	return &booking, nil
}

func (r *bookingRepository) CountInStatuses(ctx context.Context, tx *gorm.DB, classID uint, statuses []models.BookingStatus) (int64, error) {
	var count int64
	err := tx.WithContext(ctx).
		Model(&models.Booking{}).
		Where("class_id = ? AND status IN ?", classID, statuses).
		Count(&count).Error
	return count, err
}

func (r *bookingRepository) CountNonCancelled(ctx context.Context, tx *gorm.DB, classID uint) (int64, error) {
	var count int64
	err := tx.WithContext(ctx).
		Model(&models.Booking{}).
		Where("class_id = ? AND status <> ?", classID, models.StatusCancelled).
		Count(&count).Error
	return count, err
}

func (r *bookingRepository) CountsByStatus(ctx context.Context, classID uint) (map[models.BookingStatus]int64, error) {
	var rows []struct {
		Status models.BookingStatus
		Count  int64
	}
	err := r.db.WithContext(ctx).
		Model(&models.Booking{}).
		Select("status, COUNT(*) AS count").
		Where("class_id = ?", classID).
		Group("status").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	counts := make(map[models.BookingStatus]int64, len(rows))
	for _, row := range rows {
		counts[row.Status] = row.Count
	}
	return counts, nil
}

func (r *bookingRepository) Save(ctx context.Context, tx *gorm.DB, booking *models.Booking) error {
	return tx.WithContext(ctx).Save(booking).Error
}

func (r *bookingRepository) Delete(ctx context.Context, tx *gorm.DB, id uint) error {
	return tx.WithContext(ctx).Delete(&models.Booking{}, id).Error
}
