package models

import (
	"time"

	"github.com/google/uuid"
)

type MembershipStatus string

const (
	MembershipStatusActive   MembershipStatus = "ACTIVE"
	MembershipStatusInactive MembershipStatus = "INACTIVE"
)

// Membership tracks a user's participation in a group. The (user, group) pair
// is unique; leave/rejoin cycles flip Status on the same row and DateJoin
// keeps the first join date.
type Membership struct {
	BaseModel
	UserID   uuid.UUID        `json:"userID" gorm:"type:uuid;not null;index;uniqueIndex:idx_user_group"`
	GroupID  uuid.UUID        `json:"groupID" gorm:"type:uuid;not null;index;uniqueIndex:idx_user_group"`
	Status   MembershipStatus `json:"status" gorm:"type:varchar(10);not null;default:'ACTIVE'"`
	DateJoin time.Time        `json:"dateJoin" gorm:"not null"`

	User  User  `json:"user,omitempty" gorm:"foreignKey:UserID"`
	Group Group `json:"group,omitempty" gorm:"foreignKey:GroupID"`
}
