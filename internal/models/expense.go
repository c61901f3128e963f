package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Expense is a categorized spending record inside a group. The
// (group, category) pair must reference an existing CategoryGroup link and
// the writer must hold an active membership at write time. Time is assigned
// by the server, never by the client.
type Expense struct {
	BaseModel
	Description string          `json:"description" gorm:"type:text;not null"`
	Amount      decimal.Decimal `json:"amount" gorm:"type:decimal(12,2);not null"`
	Time        time.Time       `json:"time" gorm:"not null;index"`
	UserID      uuid.UUID       `json:"userID" gorm:"type:uuid;not null;index"`
	GroupID     uuid.UUID       `json:"groupID" gorm:"type:uuid;not null;index"`
	CategoryID  uuid.UUID       `json:"categoryID" gorm:"type:uuid;not null;index"`

	User     User     `json:"user,omitempty" gorm:"foreignKey:UserID"`
	Category Category `json:"category,omitempty" gorm:"foreignKey:CategoryID"`
}
