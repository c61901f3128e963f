package services

import (
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/groupledger/backend/internal/models"
	"gorm.io/gorm"
)

// ActivateMembership is the single entry point for joining a group, used by
// group creation and by invitation acceptance. It is an idempotent upsert: an
// INACTIVE row from an earlier leave is flipped back to ACTIVE keeping its
// original DateJoin, otherwise a fresh ACTIVE row is inserted with DateJoin
// set to now. Runs on the caller's transaction.
func ActivateMembership(tx *gorm.DB, userID, groupID uuid.UUID) (*models.Membership, error) {
	var membership models.Membership
	err := tx.First(&membership, "group_id = ? AND user_id = ?", groupID, userID).Error
	switch {
	case err == nil:
		if membership.Status == models.MembershipStatusActive {
			return &membership, nil
		}
		membership.Status = models.MembershipStatusActive
		if err := tx.Model(&membership).Update("status", models.MembershipStatusActive).Error; err != nil {
			return nil, err
		}
		return &membership, nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		membership = models.Membership{
			UserID:   userID,
			GroupID:  groupID,
			Status:   models.MembershipStatusActive,
			DateJoin: time.Now().UTC(),
		}
		if err := tx.Create(&membership).Error; err != nil {
			return nil, err
		}
		return &membership, nil
	default:
		return nil, err
	}
}

// DisbandGroup deactivates the group and every membership row in it. The
// transition is terminal: nothing reactivates a disbanded group. Runs on the
// caller's transaction so the cascade commits as one unit.
func DisbandGroup(tx *gorm.DB, groupID uuid.UUID) error {
	err := tx.Model(&models.Group{}).
		Where("id = ?", groupID).
		Update("status", models.GroupStatusInactive).Error
	if err != nil {
		return err
	}
	return tx.Model(&models.Membership{}).
		Where("group_id = ?", groupID).
		Update("status", models.MembershipStatusInactive).Error
}
