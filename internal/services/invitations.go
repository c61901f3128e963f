package services

import (
	"time"

	"github.com/google/uuid"
	"github.com/groupledger/backend/internal/models"
	"gorm.io/gorm"
)

// SweepOverdueInvitations materializes the overdue state for one recipient:
// every PENDING invitation whose 24h window has elapsed, or whose group has
// gone INACTIVE since it was sent, is force-transitioned to OVERDUE. Every
// invitation read or response runs this first so stale rows never look
// actionable.
func SweepOverdueInvitations(db *gorm.DB, recipientID uuid.UUID, now time.Time) error {
	err := db.Model(&models.Invitation{}).
		Where("recipient_id = ? AND status = ?", recipientID, models.InvitationStatusPending).
		Where("creation_time < ?", now.Add(-models.InvitationTTL)).
		Update("status", models.InvitationStatusOverdue).Error
	if err != nil {
		return err
	}

	inactiveGroups := db.Model(&models.Group{}).
		Select("id").
		Where("status = ?", models.GroupStatusInactive)

	return db.Model(&models.Invitation{}).
		Where("recipient_id = ? AND status = ?", recipientID, models.InvitationStatusPending).
		Where("group_id IN (?)", inactiveGroups).
		Update("status", models.InvitationStatusOverdue).Error
}
