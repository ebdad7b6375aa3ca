package service

import (
	"context"
	"errors"
	"math"

	"github.com/fitgrid/class-booking-service/internal/apperr"
	"github.com/fitgrid/class-booking-service/internal/models"
	"github.com/fitgrid/class-booking-service/internal/repository"
	"gorm.io/gorm"
)

// ClassStatistics is a read-only aggregation over a class's bookings.
type ClassStatistics struct {
	ClassID     uint    `json:"class_id"`
	ClassName   string  `json:"class_name"`
	MaxCapacity int     `json:"max_capacity"`
	Total       int64   `json:"total_bookings"`
	Pending     int64   `json:"pending"`
	Confirmed   int64   `json:"confirmed"`
	Attended    int64   `json:"attended"`
	Cancelled   int64   `json:"cancelled"`
	NoShow      int64   `json:"no_show"`
	// AttendanceRate is attended / (confirmed + attended).
	AttendanceRate float64 `json:"attendance_rate"`
	// CancellationRate is cancelled / total.
	CancellationRate float64 `json:"cancellation_rate"`
	// FillRate is seats occupied (pending + confirmed + attended) over
	// capacity.
	FillRate float64 `json:"fill_rate"`
}

type StatsService interface {
	GetClassStatistics(ctx context.Context, classID uint) (*ClassStatistics, error)
}

type statsService struct {
	classRepo   repository.ClassRepository
	bookingRepo repository.BookingRepository
}

func NewStatsService(classRepo repository.ClassRepository, bookingRepo repository.BookingRepository) StatsService {
	return &statsService{classRepo: classRepo, bookingRepo: bookingRepo}
}

// rate divides num by den rounded to 2 decimals, returning 0 for an empty
// denominator rather than NaN.
func rate(num, den int64) float64 {
	if den == 0 {
		return 0
	}
	return math.Round(float64(num)/float64(den)*100) / 100
}

func (s *statsService) GetClassStatistics(ctx context.Context, classID uint) (*ClassStatistics, error) {
	class, err := s.classRepo.FindByID(ctx, classID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.E(apperr.NotFound, "class %d not found", classID)
		}
		return nil, apperr.Store("find class", err)
	}

	counts, err := s.bookingRepo.CountsByStatus(ctx, classID)
	if err != nil {
		return nil, apperr.Store("count bookings by status", err)
	}

	stats := &ClassStatistics{
		ClassID:     class.ID,
		ClassName:   class.Name,
		MaxCapacity: class.MaxCapacity,
		Pending:     counts[models.StatusPending],
		Confirmed:   counts[models.StatusConfirmed],
		Attended:    counts[models.StatusAttended],
		Cancelled:   counts[models.StatusCancelled],
		NoShow:      counts[models.StatusNoShow],
	}
	stats.Total = stats.Pending + stats.Confirmed + stats.Attended + stats.Cancelled + stats.NoShow
	stats.AttendanceRate = rate(stats.Attended, stats.Confirmed+stats.Attended)
	stats.CancellationRate = rate(stats.Cancelled, stats.Total)
	stats.FillRate = rate(stats.Pending+stats.Confirmed+stats.Attended, int64(class.MaxCapacity))
	return stats, nil
}
