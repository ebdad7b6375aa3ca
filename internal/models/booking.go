package models

import "time"

type BookingStatus string

const (
	StatusPending   BookingStatus = "pending"
	StatusConfirmed BookingStatus = "confirmed"
	StatusCancelled BookingStatus = "cancelled"
	StatusAttended  BookingStatus = "attended"
	StatusNoShow    BookingStatus = "no_show"
)

// transitions is the full booking state machine. Attended, cancelled and
// no_show are terminal.
var transitions = map[BookingStatus][]BookingStatus{
	StatusPending:   {StatusConfirmed, StatusCancelled},
	StatusConfirmed: {StatusAttended, StatusCancelled, StatusNoShow},
	StatusAttended:  {},
	StatusCancelled: {},
	StatusNoShow:    {},
}

func (s BookingStatus) Valid() bool {
	_, ok := transitions[s]
	return ok
}

func (s BookingStatus) CanTransitionTo(next BookingStatus) bool {
	for _, t := range transitions[s] {
		if t == next {
			return true
		}
	}
	return false
}

func (s BookingStatus) Terminal() bool {
	return len(transitions[s]) == 0
}

// ActiveStatuses are the statuses that occupy a seat; bookings in any of
// them count against the class capacity.
var ActiveStatuses = []BookingStatus{StatusPending, StatusConfirmed, StatusAttended}

type Booking struct {
	ID                 uint          `gorm:"primaryKey" json:"id"`
	Reference          string        `gorm:"type:varchar(36);uniqueIndex;not null" json:"reference"`
	ClassID            uint          `gorm:"not null;index" json:"class_id"`
	MemberID           uint          `gorm:"not null" json:"member_id"`
	ParticipationDate  time.Time     `gorm:"type:date;not null" json:"participation_date"`
	Notes              string        `json:"notes"`
	Status             BookingStatus `gorm:"type:varchar(20);not null;default:'pending'" json:"status"`
	AttendedAt         *time.Time    `json:"attended_at,omitempty"`
	CancelledAt        *time.Time    `json:"cancelled_at,omitempty"`
	CancelledBy        string        `json:"cancelled_by,omitempty"`
	CancellationReason string        `json:"cancellation_reason,omitempty"`
	CreatedAt          time.Time     `json:"created_at"`
	UpdatedAt          time.Time     `json:"updated_at"`

	Class  *Class  `gorm:"foreignKey:ClassID" json:"class,omitempty"`
	Member *Member `gorm:"foreignKey:MemberID" json:"member,omitempty"`
}
