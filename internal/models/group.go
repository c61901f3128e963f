package models

import "github.com/google/uuid"

type GroupStatus string

const (
	GroupStatusActive   GroupStatus = "ACTIVE"
	GroupStatusInactive GroupStatus = "INACTIVE"
)

// Group is a shared ledger owned by its admin. Once disbanded the status is
// INACTIVE and never transitions back.
type Group struct {
	BaseModel
	Title       string      `json:"title" gorm:"type:varchar(150);not null"`
	Description string      `json:"description" gorm:"type:text;not null"`
	IconURL     string      `json:"iconURL" gorm:"type:text;not null"`
	ColorCode   string      `json:"colorCode" gorm:"type:varchar(20);not null"`
	AdminID     uuid.UUID   `json:"adminID" gorm:"type:uuid;not null;index"`
	Status      GroupStatus `json:"status" gorm:"type:varchar(10);not null;default:'ACTIVE'"`

	Admin       User            `json:"admin,omitempty" gorm:"foreignKey:AdminID"`
	Memberships []Membership    `json:"memberships,omitempty" gorm:"foreignKey:GroupID"`
	Categories  []CategoryGroup `json:"-" gorm:"foreignKey:GroupID"`
	Invitations []Invitation    `json:"-" gorm:"foreignKey:GroupID"`
}
