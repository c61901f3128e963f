package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Replenishment is an income record owned by a single user. It carries no
// group or category reference.
type Replenishment struct {
	BaseModel
	Description string          `json:"description" gorm:"type:text;not null"`
	Amount      decimal.Decimal `json:"amount" gorm:"type:decimal(12,2);not null"`
	Time        time.Time       `json:"time" gorm:"not null;index"`
	UserID      uuid.UUID       `json:"userID" gorm:"type:uuid;not null;index"`

	User User `json:"user,omitempty" gorm:"foreignKey:UserID"`
}
