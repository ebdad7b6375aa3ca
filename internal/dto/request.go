package dto

import "github.com/fitgrid/class-booking-service/internal/models"

// Dates travel as "2006-01-02" strings and are parsed at the handler edge.

type ScheduleClassesRequest struct {
	Name            string  `json:"name"`
	InstructorID    uint    `json:"instructor_id"`
	ClassType       string  `json:"class_type"`
	StartDate       string  `json:"start_date"`
	EndDate         string  `json:"end_date"`
	StartTime       string  `json:"start_time"`
	DurationMinutes int     `json:"duration_minutes"`
	MaxCapacity     int     `json:"max_capacity"`
	Price           float64 `json:"price"`
	Description     string  `json:"description"`
	Location        string  `json:"location"`
	Equipment       string  `json:"equipment"`
	Tags            string  `json:"tags"`
}

type UpdateClassRequest struct {
	Name            *string             `json:"name"`
	ClassType       *string             `json:"class_type"`
	Description     *string             `json:"description"`
	Location        *string             `json:"location"`
	Equipment       *string             `json:"equipment"`
	Tags            *string             `json:"tags"`
	ScheduledDate   *string             `json:"scheduled_date"`
	StartTime       *string             `json:"start_time"`
	DurationMinutes *int                `json:"duration_minutes"`
	MaxCapacity     *int                `json:"max_capacity"`
	Price           *float64            `json:"price"`
	Status          *models.ClassStatus `json:"status"`
}

type CreateBookingRequest struct {
	MemberName        string `json:"member_name"`
	MemberEmail       string `json:"member_email"`
	MemberPhone       string `json:"member_phone"`
	ParticipationDate string `json:"participation_date"`
	Notes             string `json:"notes"`
}

type UpdateBookingRequest struct {
	Notes             *string               `json:"notes"`
	MemberName        *string               `json:"member_name"`
	MemberEmail       *string               `json:"member_email"`
	MemberPhone       *string               `json:"member_phone"`
	ParticipationDate *string               `json:"participation_date"`
	Status            *models.BookingStatus `json:"status"`
}

type CancelBookingRequest struct {
	CancelledBy string `json:"cancelled_by"`
	Reason      string `json:"reason"`
}
