package models

import (
	"time"

	"github.com/google/uuid"
)

type InvitationStatus string

const (
	InvitationStatusPending  InvitationStatus = "PENDING"
	InvitationStatusAccepted InvitationStatus = "ACCEPTED"
	InvitationStatusDenied   InvitationStatus = "DENIED"
	InvitationStatusOverdue  InvitationStatus = "OVERDUE"
)

// InvitationTTL is how long a pending invitation stays actionable before it
// reads as overdue.
const InvitationTTL = 24 * time.Hour

// Invitation is a pending membership offer. PENDING is the only non-terminal
// state; a declined or expired invitation is never reused, the sender creates
// a new one instead. The partial unique index lets concurrent senders race at
// the store: only one PENDING row per (recipient, group) can ever commit.
type Invitation struct {
	BaseModel
	SenderID     uuid.UUID        `json:"senderID" gorm:"type:uuid;not null;index"`
	RecipientID  uuid.UUID        `json:"recipientID" gorm:"type:uuid;not null;index;uniqueIndex:uniq_pending_invitation,where:status = 'PENDING'"`
	GroupID      uuid.UUID        `json:"groupID" gorm:"type:uuid;not null;index;uniqueIndex:uniq_pending_invitation,where:status = 'PENDING'"`
	Status       InvitationStatus `json:"status" gorm:"type:varchar(10);not null;default:'PENDING'"`
	CreationTime time.Time        `json:"creationTime" gorm:"not null"`

	Sender    User  `json:"sender,omitempty" gorm:"foreignKey:SenderID"`
	Recipient User  `json:"recipient,omitempty" gorm:"foreignKey:RecipientID"`
	Group     Group `json:"group,omitempty" gorm:"foreignKey:GroupID"`
}
