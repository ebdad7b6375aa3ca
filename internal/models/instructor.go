package models

import "time"

type InstructorStatus string

const (
	InstructorActive    InstructorStatus = "active"
	InstructorInactive  InstructorStatus = "inactive"
	InstructorSuspended InstructorStatus = "suspended"
)

// Instructor records are owned by the staff system and synced in via the
// message consumer; IDs are assigned there, not here.
type Instructor struct {
	ID        uint             `gorm:"primaryKey" json:"id"`
	Name      string           `gorm:"not null" json:"name"`
	Status    InstructorStatus `gorm:"type:varchar(20);not null;default:'active'" json:"status"`
	CreatedAt time.Time        `json:"created_at"`
	UpdatedAt time.Time        `json:"updated_at"`
}
