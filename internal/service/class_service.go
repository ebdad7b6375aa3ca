package service

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"time"

	"github.com/fitgrid/class-booking-service/internal/apperr"
	"github.com/fitgrid/class-booking-service/internal/metrics"
	"github.com/fitgrid/class-booking-service/internal/models"
	"github.com/fitgrid/class-booking-service/internal/repository"
	"github.com/fitgrid/class-booking-service/pkg/rabbitmq"
	"gorm.io/gorm"
)

var timePattern = regexp.MustCompile(`^([01][0-9]|2[0-3]):[0-5][0-9]$`)

// ScheduleTemplate describes a class to be expanded into one instance per
// calendar day from StartDate to EndDate inclusive.
type ScheduleTemplate struct {
	Name            string
	InstructorID    uint
	ClassType       string
	StartDate       time.Time
	EndDate         time.Time
	StartTime       string
	DurationMinutes int
	MaxCapacity     int
	Price           float64
	Description     string
	Location        string
	Equipment       string
	Tags            string
}

// ClassUpdate is a typed partial update; nil fields are left untouched.
type ClassUpdate struct {
	Name            *string
	ClassType       *string
	Description     *string
	Location        *string
	Equipment       *string
	Tags            *string
	ScheduledDate   *time.Time
	StartTime       *string
	DurationMinutes *int
	MaxCapacity     *int
	Price           *float64
	Status          *models.ClassStatus
}

type ClassService interface {
	ScheduleClasses(ctx context.Context, tmpl ScheduleTemplate) ([]models.Class, error)
	GetClass(ctx context.Context, id uint) (*models.Class, error)
	ListClasses(ctx context.Context, from, to time.Time) ([]models.Class, error)
	UpdateClass(ctx context.Context, id uint, upd ClassUpdate) (*models.Class, error)
	DeleteClass(ctx context.Context, id uint) error
	HasInstructorConflict(ctx context.Context, instructorID uint, date time.Time, startTime, endTime string, excludeClassID uint) (bool, error)
}

type classService struct {
	classRepo      repository.ClassRepository
	instructorRepo repository.InstructorRepository
	bookingRepo    repository.BookingRepository
	publisher      *rabbitmq.Publisher
	now            func() time.Time
}

func NewClassService(classRepo repository.ClassRepository, instructorRepo repository.InstructorRepository, bookingRepo repository.BookingRepository, publisher *rabbitmq.Publisher) ClassService {
	return &classService{
		classRepo:      classRepo,
		instructorRepo: instructorRepo,
		bookingRepo:    bookingRepo,
		publisher:      publisher,
		now:            time.Now,
	}
}

// addMinutes derives an end time from a validated HH:MM start, wrapping on
// the 24h clock.
func addMinutes(startTime string, minutes int) string {
	var h, m int
	fmt.Sscanf(startTime, "%d:%d", &h, &m)
	total := (h*60 + m + minutes) % (24 * 60)
	return fmt.Sprintf("%02d:%02d", total/60, total%60)
}

func (s *classService) validateTemplate(tmpl ScheduleTemplate) error {
	switch {
	case tmpl.Name == "":
		return apperr.E(apperr.Validation, "class name is required")
	case tmpl.InstructorID == 0:
		return apperr.E(apperr.Validation, "instructor id is required")
	case tmpl.StartDate.IsZero():
		return apperr.E(apperr.Validation, "start date is required")
	case tmpl.EndDate.IsZero():
		return apperr.E(apperr.Validation, "end date is required")
	case tmpl.StartTime == "":
		return apperr.E(apperr.Validation, "start time is required")
	case tmpl.DurationMinutes <= 0:
		return apperr.E(apperr.Validation, "duration minutes must be positive")
	}
	if !tmpl.StartDate.Before(tmpl.EndDate) {
		return apperr.E(apperr.Validation, "start date must be before end date")
	}
	tomorrow := models.DateOnly(s.now()).AddDate(0, 0, 1)
	if models.DateOnly(tmpl.StartDate).Before(tomorrow) {
		return apperr.E(apperr.Validation, "start date must be at least one day in the future")
	}
	if tmpl.MaxCapacity < 1 {
		return apperr.E(apperr.Validation, "max capacity must be at least 1")
	}
	if !timePattern.MatchString(tmpl.StartTime) {
		return apperr.E(apperr.Validation, "start time must be 24-hour HH:MM, got %q", tmpl.StartTime)
	}
	return nil
}

// ScheduleClasses expands the template into one class per day. The whole
// range is written in a single transaction holding the instructor row lock:
// either every day is created or none are.
func (s *classService) ScheduleClasses(ctx context.Context, tmpl ScheduleTemplate) ([]models.Class, error) {
	if err := s.validateTemplate(tmpl); err != nil {
		return nil, err
	}
	endTime := addMinutes(tmpl.StartTime, tmpl.DurationMinutes)

	var created []models.Class
	err := s.classRepo.Transaction(ctx, func(tx *gorm.DB) error {
		instructor, err := s.instructorRepo.FindByIDForUpdate(ctx, tx, tmpl.InstructorID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperr.E(apperr.NotFound, "instructor %d not found", tmpl.InstructorID)
			}
			return apperr.Store("lock instructor", err)
		}
		if instructor.Status != models.InstructorActive {
			return apperr.E(apperr.Validation, "instructor %d is %s, not active", instructor.ID, instructor.Status)
		}

		start := models.DateOnly(tmpl.StartDate)
		end := models.DateOnly(tmpl.EndDate)
		for day := start; !day.After(end); day = day.AddDate(0, 0, 1) {
			overlapping, err := s.classRepo.CountOverlapping(ctx, tx, tmpl.InstructorID, day, tmpl.StartTime, endTime, 0)
			if err != nil {
				return apperr.Store("scan for instructor conflicts", err)
			}
			if overlapping > 0 {
				return apperr.E(apperr.Conflict,
					"instructor %d already has a class on %s overlapping %s-%s",
					tmpl.InstructorID, day.Format("2006-01-02"), tmpl.StartTime, endTime)
			}

			class := models.Class{
				InstructorID:    tmpl.InstructorID,
				Name:            tmpl.Name,
				ClassType:       tmpl.ClassType,
				Description:     tmpl.Description,
				ScheduledDate:   day,
				StartTime:       tmpl.StartTime,
				EndTime:         endTime,
				DurationMinutes: tmpl.DurationMinutes,
				MaxCapacity:     tmpl.MaxCapacity,
				Price:           tmpl.Price,
				Status:          models.ClassActive,
				Location:        tmpl.Location,
				Equipment:       tmpl.Equipment,
				Tags:            tmpl.Tags,
			}
			if err := s.classRepo.Create(ctx, tx, &class); err != nil {
				return apperr.Store("create class", err)
			}
			created = append(created, class)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	metrics.ClassesScheduled.Add(float64(len(created)))
	if s.publisher != nil {
		_ = s.publisher.Publish("class.scheduled", created)
	}
	return created, nil
}

func (s *classService) GetClass(ctx context.Context, id uint) (*models.Class, error) {
	class, err := s.classRepo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.E(apperr.NotFound, "class %d not found", id)
		}
		return nil, apperr.Store("find class", err)
	}
	return class, nil
}

func (s *classService) ListClasses(ctx context.Context, from, to time.Time) ([]models.Class, error) {
	if to.Before(from) {
		return nil, apperr.E(apperr.Validation, "date range end is before its start")
	}
	classes, err := s.classRepo.FindByDateRange(ctx, models.DateOnly(from), models.DateOnly(to))
	if err != nil {
		return nil, apperr.Store("list classes", err)
	}
	return classes, nil
}

// HasInstructorConflict reports whether the candidate window overlaps any
// active class for the instructor on the given day. Pure query.
func (s *classService) HasInstructorConflict(ctx context.Context, instructorID uint, date time.Time, startTime, endTime string, excludeClassID uint) (bool, error) {
	var overlapping int64
	err := s.classRepo.Transaction(ctx, func(tx *gorm.DB) error {
		var err error
		overlapping, err = s.classRepo.CountOverlapping(ctx, tx, instructorID, date, startTime, endTime, excludeClassID)
		return err
	})
	if err != nil {
		return false, apperr.Store("scan for instructor conflicts", err)
	}
	return overlapping > 0, nil
}

// UpdateClass applies a typed partial update. Date or time changes re-run
// conflict detection against all other classes of the instructor.
func (s *classService) UpdateClass(ctx context.Context, id uint, upd ClassUpdate) (*models.Class, error) {
	var result *models.Class
	err := s.classRepo.Transaction(ctx, func(tx *gorm.DB) error {
		class, err := s.classRepo.FindByIDForUpdate(ctx, tx, id)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperr.E(apperr.NotFound, "class %d not found", id)
			}
			return apperr.Store("lock class", err)
		}
		if class.Status == models.ClassCancelled || class.Status == models.ClassCompleted {
			return apperr.E(apperr.Validation, "class %d is %s and cannot be updated", id, class.Status)
		}

		if upd.Name != nil {
			class.Name = *upd.Name
		}
		if upd.ClassType != nil {
			class.ClassType = *upd.ClassType
		}
		if upd.Description != nil {
			class.Description = *upd.Description
		}
		if upd.Location != nil {
			class.Location = *upd.Location
		}
		if upd.Equipment != nil {
			class.Equipment = *upd.Equipment
		}
		if upd.Tags != nil {
			class.Tags = *upd.Tags
		}
		if upd.Price != nil {
			class.Price = *upd.Price
		}

		if upd.MaxCapacity != nil {
			if *upd.MaxCapacity < 1 {
				return apperr.E(apperr.Validation, "max capacity must be at least 1")
			}
			active, err := s.bookingRepo.CountInStatuses(ctx, tx, id, models.ActiveStatuses)
			if err != nil {
				return apperr.Store("count active bookings", err)
			}
			if int64(*upd.MaxCapacity) < active {
				return apperr.E(apperr.Conflict, "class %d already holds %d active bookings, cannot lower capacity to %d", id, active, *upd.MaxCapacity)
			}
			class.MaxCapacity = *upd.MaxCapacity
		}

		timingChanged := false
		if upd.ScheduledDate != nil {
			tomorrow := models.DateOnly(s.now()).AddDate(0, 0, 1)
			if models.DateOnly(*upd.ScheduledDate).Before(tomorrow) {
				return apperr.E(apperr.Validation, "scheduled date must be at least one day in the future")
			}
			class.ScheduledDate = models.DateOnly(*upd.ScheduledDate)
			timingChanged = true
		}
		if upd.StartTime != nil {
			if !timePattern.MatchString(*upd.StartTime) {
				return apperr.E(apperr.Validation, "start time must be 24-hour HH:MM, got %q", *upd.StartTime)
			}
			class.StartTime = *upd.StartTime
			timingChanged = true
		}
		if upd.DurationMinutes != nil {
			if *upd.DurationMinutes <= 0 {
				return apperr.E(apperr.Validation, "duration minutes must be positive")
			}
			class.DurationMinutes = *upd.DurationMinutes
			timingChanged = true
		}
		if timingChanged {
			class.EndTime = addMinutes(class.StartTime, class.DurationMinutes)
			overlapping, err := s.classRepo.CountOverlapping(ctx, tx, class.InstructorID, class.ScheduledDate, class.StartTime, class.EndTime, class.ID)
			if err != nil {
				return apperr.Store("scan for instructor conflicts", err)
			}
			if overlapping > 0 {
				return apperr.E(apperr.Conflict,
					"instructor %d already has a class on %s overlapping %s-%s",
					class.InstructorID, class.ScheduledDate.Format("2006-01-02"), class.StartTime, class.EndTime)
			}
		}

		if upd.Status != nil {
			if !upd.Status.Valid() {
				return apperr.E(apperr.Validation, "unknown class status %q", *upd.Status)
			}
			class.Status = *upd.Status
		}

		if err := s.classRepo.Save(ctx, tx, class); err != nil {
			return apperr.Store("save class", err)
		}
		result = class
		return nil
	})
	if err != nil {
		return nil, err
	}

	if s.publisher != nil && upd.Status != nil && *upd.Status == models.ClassCancelled {
		_ = s.publisher.Publish("class.cancelled", result)
	}
	return result, nil
}

// DeleteClass physically removes a class. Refused when the class has
// already started (date not strictly in the future) or when any
// non-cancelled booking references it.
func (s *classService) DeleteClass(ctx context.Context, id uint) error {
	return s.classRepo.Transaction(ctx, func(tx *gorm.DB) error {
		class, err := s.classRepo.FindByIDForUpdate(ctx, tx, id)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperr.E(apperr.NotFound, "class %d not found", id)
			}
			return apperr.Store("lock class", err)
		}

		tomorrow := models.DateOnly(s.now()).AddDate(0, 0, 1)
		if models.DateOnly(class.ScheduledDate).Before(tomorrow) {
			return apperr.E(apperr.Validation, "class %d is not strictly in the future", id)
		}

		nonCancelled, err := s.bookingRepo.CountNonCancelled(ctx, tx, id)
		if err != nil {
			return apperr.Store("count bookings", err)
		}
		if nonCancelled > 0 {
			return apperr.E(apperr.Conflict, "class %d has %d non-cancelled bookings", id, nonCancelled)
		}

		if err := s.classRepo.Delete(ctx, tx, id); err != nil {
			return apperr.Store("delete class", err)
		}
		return nil
	})
}
