package models

import "time"

type MemberStatus string

const (
	MemberActive    MemberStatus = "active"
	MemberInactive  MemberStatus = "inactive"
	MemberSuspended MemberStatus = "suspended"
)

// Member identity is keyed by email; the unique index backs the idempotent
// find-or-create path in the resolver.
type Member struct {
	ID        uint         `gorm:"primaryKey" json:"id"`
	Name      string       `gorm:"not null" json:"name"`
	Email     string       `gorm:"uniqueIndex;not null" json:"email"`
	Phone     string       `json:"phone"`
	Status    MemberStatus `gorm:"type:varchar(20);not null;default:'active'" json:"status"`
	CreatedAt time.Time    `json:"created_at"`
	UpdatedAt time.Time    `json:"updated_at"`
}
