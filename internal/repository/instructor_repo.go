package repository

import (
	"context"

	"github.com/fitgrid/class-booking-service/internal/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type InstructorRepository interface {
	FindByID(ctx context.Context, id uint) (*models.Instructor, error)
	FindByIDForUpdate(ctx context.Context, tx *gorm.DB, id uint) (*models.Instructor, error)
	Upsert(ctx context.Context, instructor *models.Instructor) error
}

type instructorRepository struct {
	db *gorm.DB
}

func NewInstructorRepository(db *gorm.DB) InstructorRepository {
	return &instructorRepository{db: db}
}

func (r *instructorRepository) FindByID(ctx context.Context, id uint) (*models.Instructor, error) {
	var instructor models.Instructor
	if err := r.db.WithContext(ctx).First(&instructor, id).Error; err != nil {
		return nil, err
	}
	return &instructor, nil
}

// FindByIDForUpdate locks the instructor row for the duration of the
// transaction; scheduling serializes on it so two batches for the same
// instructor cannot interleave their conflict scans.
func (r *instructorRepository) FindByIDForUpdate(ctx context.Context, tx *gorm.DB, id uint) (*models.Instructor, error) {
	var instructor models.Instructor
	if err := tx.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		First(&instructor, id).Error; err != nil {
		return nil, err
	}
	return &instructor, nil
}

// Upsert inserts or refreshes an instructor record pushed by the staff
// system (same ID space as there).
func (r *instructorRepository) Upsert(ctx context.Context, instructor *models.Instructor) error {
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "id"}},
		DoUpdates: clause.AssignmentColumns([]string{"name", "status", "updated_at"}),
	}).Create(instructor).Error
}
