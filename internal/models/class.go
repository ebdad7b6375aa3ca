package models

import "time"

type ClassStatus string

const (
	ClassActive    ClassStatus = "active"
	ClassCancelled ClassStatus = "cancelled"
	ClassCompleted ClassStatus = "completed"
	ClassInactive  ClassStatus = "inactive"
)

func (s ClassStatus) Valid() bool {
	switch s {
	case ClassActive, ClassCancelled, ClassCompleted, ClassInactive:
		return true
	}
	return false
}

// Class is one scheduled occurrence of an activity on a specific day.
// Start and end times are wall-clock HH:MM strings; zero-padded, so ordinal
// string comparison matches chronological comparison.
type Class struct {
	ID              uint        `gorm:"primaryKey" json:"id"`
	InstructorID    uint        `gorm:"not null;index:idx_class_instructor_day,priority:1" json:"instructor_id"`
	Name            string      `gorm:"not null" json:"name"`
	ClassType       string      `json:"class_type"`
	Description     string      `json:"description"`
	ScheduledDate   time.Time   `gorm:"type:date;not null;index:idx_class_instructor_day,priority:2" json:"scheduled_date"`
	StartTime       string      `gorm:"type:varchar(5);not null" json:"start_time"`
	EndTime         string      `gorm:"type:varchar(5);not null" json:"end_time"`
	DurationMinutes int         `gorm:"not null" json:"duration_minutes"`
	MaxCapacity     int         `gorm:"not null" json:"max_capacity"`
	Price           float64     `json:"price"`
	Status          ClassStatus `gorm:"type:varchar(20);not null;default:'active'" json:"status"`
	Location        string      `json:"location"`
	Equipment       string      `json:"equipment"`
	Tags            string      `json:"tags"`
	CreatedAt       time.Time   `json:"created_at"`
	UpdatedAt       time.Time   `json:"updated_at"`
}

// DateOnly truncates t to midnight in its own location.
func DateOnly(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

// SameDay reports whether a and b fall on the same calendar day.
func SameDay(a, b time.Time) bool {
	return a.Year() == b.Year() && a.Month() == b.Month() && a.Day() == b.Day()
}

// Overlaps reports whether the half-open windows [s1,e1) and [s2,e2) overlap.
// Touching endpoints do not conflict.
func Overlaps(s1, e1, s2, e2 string) bool {
	return s1 < e2 && s2 < e1
}
