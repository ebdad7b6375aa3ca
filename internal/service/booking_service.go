package service

import (
	"context"
	"errors"
	"time"

	"github.com/fitgrid/class-booking-service/internal/apperr"
	"github.com/fitgrid/class-booking-service/internal/metrics"
	"github.com/fitgrid/class-booking-service/internal/models"
	"github.com/fitgrid/class-booking-service/internal/repository"
	"github.com/fitgrid/class-booking-service/pkg/rabbitmq"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// CreateBookingInput carries everything needed to admit a booking; member
// identity is resolved from the contact fields.
type CreateBookingInput struct {
	MemberName        string
	MemberEmail       string
	MemberPhone       string
	ParticipationDate time.Time
	Notes             string
}

// BookingUpdate is a typed partial update; nil fields are left untouched.
type BookingUpdate struct {
	Notes             *string
	MemberName        *string
	MemberEmail       *string
	MemberPhone       *string
	ParticipationDate *time.Time
	Status            *models.BookingStatus
}

type BookingService interface {
	CreateBooking(ctx context.Context, classID uint, in CreateBookingInput) (*models.Booking, error)
	GetBooking(ctx context.Context, id uint) (*models.Booking, error)
	GetBookingByReference(ctx context.Context, reference string) (*models.Booking, error)
	ListBookings(ctx context.Context, classID uint, status *models.BookingStatus) ([]models.Booking, error)
	UpdateBooking(ctx context.Context, id uint, upd BookingUpdate) (*models.Booking, error)
	CancelBooking(ctx context.Context, id uint, cancelledBy, reason string) (*models.Booking, error)
	MarkAttended(ctx context.Context, id uint) (*models.Booking, error)
	MarkNoShow(ctx context.Context, id uint) (*models.Booking, error)
	DeleteBooking(ctx context.Context, id uint) error
}

type bookingService struct {
	bookingRepo repository.BookingRepository
	classRepo   repository.ClassRepository
	members     MemberService
	publisher   *rabbitmq.Publisher
	now         func() time.Time
}

func NewBookingService(bookingRepo repository.BookingRepository, classRepo repository.ClassRepository, members MemberService, publisher *rabbitmq.Publisher) BookingService {
	return &bookingService{
		bookingRepo: bookingRepo,
		classRepo:   classRepo,
		members:     members,
		publisher:   publisher,
		now:         time.Now,
	}
}

func (s *bookingService) CreateBooking(ctx context.Context, classID uint, in CreateBookingInput) (*models.Booking, error) {
	class, err := s.classRepo.FindByID(ctx, classID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.E(apperr.NotFound, "class %d not found", classID)
		}
		return nil, apperr.Store("find class", err)
	}
	if class.Status != models.ClassActive {
		return nil, apperr.E(apperr.Validation, "class %d is %s, bookings are only accepted for active classes", classID, class.Status)
	}

	if in.ParticipationDate.IsZero() {
		return nil, apperr.E(apperr.Validation, "participation date is required")
	}
	today := models.DateOnly(s.now())
	if models.DateOnly(in.ParticipationDate).Before(today) {
		return nil, apperr.E(apperr.Validation, "participation date cannot be in the past")
	}
	if !models.SameDay(in.ParticipationDate, class.ScheduledDate) {
		return nil, apperr.E(apperr.Validation,
			"participation date %s does not match the class day %s",
			in.ParticipationDate.Format("2006-01-02"), class.ScheduledDate.Format("2006-01-02"))
	}

	member, err := s.members.ResolveMember(ctx, in.MemberName, in.MemberEmail, in.MemberPhone)
	if err != nil {
		return nil, err
	}

	// Critical section: the class row lock makes the duplicate check, the
	// capacity count and the insert one atomic unit against concurrent
	// bookings on the same class.
	var result *models.Booking
	err = s.bookingRepo.Transaction(ctx, func(tx *gorm.DB) error {
		locked, err := s.classRepo.FindByIDForUpdate(ctx, tx, classID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperr.E(apperr.NotFound, "class %d not found", classID)
			}
			return apperr.Store("lock class", err)
		}
		if locked.Status != models.ClassActive {
			return apperr.E(apperr.Validation, "class %d is %s, bookings are only accepted for active classes", classID, locked.Status)
		}

		_, err = s.bookingRepo.FindActiveByClassAndMember(ctx, tx, classID, member.ID)
		if err == nil {
			metrics.BookingRejections.WithLabelValues("duplicate").Inc()
			return apperr.E(apperr.Conflict, "member %d already has an active booking for class %d", member.ID, classID)
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return apperr.Store("check for duplicate booking", err)
		}

		active, err := s.bookingRepo.CountInStatuses(ctx, tx, classID, models.ActiveStatuses)
		if err != nil {
			return apperr.Store("count active bookings", err)
		}
		if active >= int64(locked.MaxCapacity) {
			metrics.BookingRejections.WithLabelValues("capacity").Inc()
			return apperr.E(apperr.Conflict, "class %d is full (capacity %d)", classID, locked.MaxCapacity)
		}

		booking := &models.Booking{
			Reference:         uuid.NewString(),
			ClassID:           classID,
			MemberID:          member.ID,
			ParticipationDate: models.DateOnly(in.ParticipationDate),
			Notes:             in.Notes,
			Status:            models.StatusPending,
		}
		if err := s.bookingRepo.Create(ctx, tx, booking); err != nil {
			// The partial unique index backstops the duplicate check
			// against races the lock does not cover.
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				metrics.BookingRejections.WithLabelValues("duplicate").Inc()
				return apperr.E(apperr.Conflict, "member %d already has an active booking for class %d", member.ID, classID)
			}
			return apperr.Store("create booking", err)
		}
		result = booking
		return nil
	})
	if err != nil {
		return nil, err
	}

	metrics.BookingsCreated.Inc()
	if s.publisher != nil {
		_ = s.publisher.Publish("booking.created", result)
	}
	return result, nil
}

func (s *bookingService) GetBooking(ctx context.Context, id uint) (*models.Booking, error) {
	booking, err := s.bookingRepo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.E(apperr.NotFound, "booking %d not found", id)
		}
		return nil, apperr.Store("find booking", err)
	}
	return booking, nil
}

func (s *bookingService) GetBookingByReference(ctx context.Context, reference string) (*models.Booking, error) {
	booking, err := s.bookingRepo.FindByReference(ctx, reference)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.E(apperr.NotFound, "booking %s not found", reference)
		}
		return nil, apperr.Store("find booking by reference", err)
	}
	return booking, nil
}

func (s *bookingService) ListBookings(ctx context.Context, classID uint, status *models.BookingStatus) ([]models.Booking, error) {
	bookings, err := s.bookingRepo.FindByClassID(ctx, classID, status)
	if err != nil {
		return nil, apperr.Store("list bookings", err)
	}
	return bookings, nil
}

func (s *bookingService) UpdateBooking(ctx context.Context, id uint, upd BookingUpdate) (*models.Booking, error) {
	var result *models.Booking
	err := s.bookingRepo.Transaction(ctx, func(tx *gorm.DB) error {
		booking, err := s.bookingRepo.FindByIDForUpdate(ctx, tx, id)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperr.E(apperr.NotFound, "booking %d not found", id)
			}
			return apperr.Store("lock booking", err)
		}

		if upd.Notes != nil {
			booking.Notes = *upd.Notes
		}

		if upd.MemberName != nil || upd.MemberEmail != nil || upd.MemberPhone != nil {
			current, err := s.members.GetMember(ctx, booking.MemberID)
			if err != nil {
				return err
			}
			name, email, phone := current.Name, current.Email, current.Phone
			if upd.MemberName != nil {
				name = *upd.MemberName
			}
			if upd.MemberEmail != nil {
				email = *upd.MemberEmail
			}
			if upd.MemberPhone != nil {
				phone = *upd.MemberPhone
			}
			resolved, err := s.members.ResolveMember(ctx, name, email, phone)
			if err != nil {
				return err
			}
			if resolved.ID != booking.MemberID {
				_, err := s.bookingRepo.FindActiveByClassAndMember(ctx, tx, booking.ClassID, resolved.ID)
				if err == nil {
					return apperr.E(apperr.Conflict, "member %d already has an active booking for class %d", resolved.ID, booking.ClassID)
				}
				if !errors.Is(err, gorm.ErrRecordNotFound) {
					return apperr.Store("check for duplicate booking", err)
				}
				booking.MemberID = resolved.ID
			}
		}

		if upd.ParticipationDate != nil {
			if models.DateOnly(*upd.ParticipationDate).Before(models.DateOnly(s.now())) {
				return apperr.E(apperr.Validation, "participation date cannot be in the past")
			}
			class, err := s.classRepo.FindByID(ctx, booking.ClassID)
			if err != nil {
				return apperr.Store("find class", err)
			}
			if !models.SameDay(*upd.ParticipationDate, class.ScheduledDate) {
				return apperr.E(apperr.Validation,
					"participation date %s does not match the class day %s",
					upd.ParticipationDate.Format("2006-01-02"), class.ScheduledDate.Format("2006-01-02"))
			}
			booking.ParticipationDate = models.DateOnly(*upd.ParticipationDate)
		}

		if upd.Status != nil {
			if !upd.Status.Valid() {
				return apperr.E(apperr.Validation, "unknown booking status %q", *upd.Status)
			}
			if err := s.applyTransition(booking, *upd.Status); err != nil {
				return err
			}
		}

		if err := s.bookingRepo.Save(ctx, tx, booking); err != nil {
			return apperr.Store("save booking", err)
		}
		result = booking
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// applyTransition moves the booking to next, stamping the transition
// metadata. The caller persists.
func (s *bookingService) applyTransition(booking *models.Booking, next models.BookingStatus) error {
	if !booking.Status.CanTransitionTo(next) {
		return apperr.E(apperr.InvalidTransition, "cannot transition booking %d from %s to %s", booking.ID, booking.Status, next)
	}
	now := s.now()
	switch next {
	case models.StatusAttended:
		booking.AttendedAt = &now
	case models.StatusCancelled:
		booking.CancelledAt = &now
		if booking.CancelledBy == "" {
			booking.CancelledBy = "member"
		}
	}
	booking.Status = next
	return nil
}

func (s *bookingService) transition(ctx context.Context, id uint, next models.BookingStatus, mutate func(*models.Booking)) (*models.Booking, error) {
	var result *models.Booking
	err := s.bookingRepo.Transaction(ctx, func(tx *gorm.DB) error {
		booking, err := s.bookingRepo.FindByIDForUpdate(ctx, tx, id)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperr.E(apperr.NotFound, "booking %d not found", id)
			}
			return apperr.Store("lock booking", err)
		}
		if mutate != nil {
			mutate(booking)
		}
		if err := s.applyTransition(booking, next); err != nil {
			return err
		}
		if err := s.bookingRepo.Save(ctx, tx, booking); err != nil {
			return apperr.Store("save booking", err)
		}
		result = booking
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

func (s *bookingService) CancelBooking(ctx context.Context, id uint, cancelledBy, reason string) (*models.Booking, error) {
	booking, err := s.transition(ctx, id, models.StatusCancelled, func(b *models.Booking) {
		b.CancelledBy = cancelledBy
		b.CancellationReason = reason
	})
	if err != nil {
		return nil, err
	}
	metrics.BookingsCancelled.Inc()
	if s.publisher != nil {
		_ = s.publisher.Publish("booking.cancelled", booking)
	}
	return booking, nil
}

func (s *bookingService) MarkAttended(ctx context.Context, id uint) (*models.Booking, error) {
	booking, err := s.transition(ctx, id, models.StatusAttended, nil)
	if err != nil {
		return nil, err
	}
	if s.publisher != nil {
		_ = s.publisher.Publish("booking.attended", booking)
	}
	return booking, nil
}

func (s *bookingService) MarkNoShow(ctx context.Context, id uint) (*models.Booking, error) {
	return s.transition(ctx, id, models.StatusNoShow, nil)
}

// DeleteBooking physically removes a booking. Attended bookings are the
// attendance record and are never deleted.
func (s *bookingService) DeleteBooking(ctx context.Context, id uint) error {
	return s.bookingRepo.Transaction(ctx, func(tx *gorm.DB) error {
		booking, err := s.bookingRepo.FindByIDForUpdate(ctx, tx, id)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperr.E(apperr.NotFound, "booking %d not found", id)
			}
			return apperr.Store("lock booking", err)
		}
		if booking.Status == models.StatusAttended {
			return apperr.E(apperr.Conflict, "booking %d was attended and cannot be deleted", id)
		}
		if err := s.bookingRepo.Delete(ctx, tx, id); err != nil {
			return apperr.Store("delete booking", err)
		}
		return nil
	})
}
