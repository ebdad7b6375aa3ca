package dto

import (
	"time"

	"github.com/fitgrid/class-booking-service/internal/models"
)

type ClassResponse struct {
	ID              uint               `json:"id"`
	InstructorID    uint               `json:"instructor_id"`
	Name            string             `json:"name"`
	ClassType       string             `json:"class_type,omitempty"`
	Description     string             `json:"description,omitempty"`
	ScheduledDate   string             `json:"scheduled_date"`
	StartTime       string             `json:"start_time"`
	EndTime         string             `json:"end_time"`
	DurationMinutes int                `json:"duration_minutes"`
	MaxCapacity     int                `json:"max_capacity"`
	Price           float64            `json:"price"`
	Status          models.ClassStatus `json:"status"`
	Location        string             `json:"location,omitempty"`
	Equipment       string             `json:"equipment,omitempty"`
	Tags            string             `json:"tags,omitempty"`
	CreatedAt       time.Time          `json:"created_at"`
}

type BookingResponse struct {
	ID                 uint                 `json:"id"`
	Reference          string               `json:"reference"`
	ClassID            uint                 `json:"class_id"`
	MemberID           uint                 `json:"member_id"`
	ParticipationDate  string               `json:"participation_date"`
	Notes              string               `json:"notes,omitempty"`
	Status             models.BookingStatus `json:"status"`
	AttendedAt         *time.Time           `json:"attended_at,omitempty"`
	CancelledAt        *time.Time           `json:"cancelled_at,omitempty"`
	CancelledBy        string               `json:"cancelled_by,omitempty"`
	CancellationReason string               `json:"cancellation_reason,omitempty"`
	CreatedAt          time.Time            `json:"created_at"`
}

type ErrorResponse struct {
	Message string `json:"message"`
}

func ToClassResponse(c *models.Class) ClassResponse {
	return ClassResponse{
		ID:              c.ID,
		InstructorID:    c.InstructorID,
		Name:            c.Name,
		ClassType:       c.ClassType,
		Description:     c.Description,
		ScheduledDate:   c.ScheduledDate.Format("2006-01-02"),
		StartTime:       c.StartTime,
		EndTime:         c.EndTime,
		DurationMinutes: c.DurationMinutes,
		MaxCapacity:     c.MaxCapacity,
		Price:           c.Price,
		Status:          c.Status,
		Location:        c.Location,
		Equipment:       c.Equipment,
		Tags:            c.Tags,
		CreatedAt:       c.CreatedAt,
	}
}

func ToBookingResponse(b *models.Booking) BookingResponse {
	return BookingResponse{
		ID:                 b.ID,
		Reference:          b.Reference,
		ClassID:            b.ClassID,
		MemberID:           b.MemberID,
		ParticipationDate:  b.ParticipationDate.Format("2006-01-02"),
		Notes:              b.Notes,
		Status:             b.Status,
		AttendedAt:         b.AttendedAt,
		CancelledAt:        b.CancelledAt,
		CancelledBy:        b.CancelledBy,
		CancellationReason: b.CancellationReason,
		CreatedAt:          b.CreatedAt,
	}
}
