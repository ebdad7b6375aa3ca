package repository

import (
	"context"
	"time"

	"github.com/fitgrid/class-booking-service/internal/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type ClassRepository interface {
	Transaction(ctx context.Context, fn func(tx *gorm.DB) error) error
	Create(ctx context.Context, tx *gorm.DB, class *models.Class) error
	FindByID(ctx context.Context, id uint) (*models.Class, error)
	FindByIDForUpdate(ctx context.Context, tx *gorm.DB, id uint) (*models.Class, error)
	FindByDateRange(ctx context.Context, from, to time.Time) ([]models.Class, error)
	CountOverlapping(ctx context.Context, tx *gorm.DB, instructorID uint, date time.Time, startTime, endTime string, excludeClassID uint) (int64, error)
	Save(ctx context.Context, tx *gorm.DB, class *models.Class) error
	Delete(ctx context.Context, tx *gorm.DB, id uint) error
}

type classRepository struct {
	db *gorm.DB
}

func NewClassRepository(db *gorm.DB) ClassRepository {
	return &classRepository{db: db}
}

func (r *classRepository) Transaction(ctx context.Context, fn func(tx *gorm.DB) error) error {
	return r.db.WithContext(ctx).Transaction(fn)
}

func (r *classRepository) Create(ctx context.Context, tx *gorm.DB, class *models.Class) error {
	return tx.WithContext(ctx).Create(class).Error
}

func (r *classRepository) FindByID(ctx context.Context, id uint) (*models.Class, error) {
	var class models.Class
	if err := r.db.WithContext(ctx).First(&class, id).Error; err != nil {
		return nil, err
	}
	return &class, nil
}

// FindByIDForUpdate acquires a row-level lock on the class within the given
// transaction. Capacity admission serializes on this lock.
func (r *classRepository) FindByIDForUpdate(ctx context.Context, tx *gorm.DB, id uint) (*models.Class, error) {
	var class models.Class
	if err := tx.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		First(&class, id).Error; err != nil {
		return nil, err
	}
	return &class, nil
}

func (r *classRepository) FindByDateRange(ctx context.Context, from, to time.Time) ([]models.Class, error) {
	var classes []models.Class
	err := r.db.WithContext(ctx).
		Where("scheduled_date >= ? AND scheduled_date <= ?", from, to).
		Order("scheduled_date ASC, start_time ASC, id ASC").
		Find(&classes).Error
	if err != nil {
		return nil, err
	}
	return classes, nil
}

// CountOverlapping counts active classes for the instructor on the given day
// whose [start_time, end_time) window overlaps the candidate window.
// Half-open comparison: touching endpoints do not conflict. HH:MM strings are
// zero-padded, so string comparison is chronological.
func (r *classRepository) CountOverlapping(ctx context.Context, tx *gorm.DB, instructorID uint, date time.Time, startTime, endTime string, excludeClassID uint) (int64, error) {
	var count int64
	q := tx.WithContext(ctx).
		Model(&models.Class{}).
		Where("instructor_id = ? AND scheduled_date = ? AND status = ?", instructorID, models.DateOnly(date), models.ClassActive).
		Where("start_time < ? AND ? < end_time", endTime, startTime)
	if excludeClassID != 0 {
		q = q.Where("id <> ?", excludeClassID)
	}
	err := q.Count(&count).Error
	return count, err
}

func (r *classRepository) Save(ctx context.Context, tx *gorm.DB, class *models.Class) error {
	return tx.WithContext(ctx).Save(class).Error
}

func (r *classRepository) Delete(ctx context.Context, tx *gorm.DB, id uint) error {
	return tx.WithContext(ctx).Delete(&models.Class{}, id).Error
}
