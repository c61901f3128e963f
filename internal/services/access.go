package services

import (
	"errors"

	"github.com/google/uuid"
	"github.com/groupledger/backend/internal/models"
	"gorm.io/gorm"
)

var (
	ErrGroupNotFound = errors.New("group not found")
	ErrNotGroupAdmin = errors.New("you are not the admin of this group")
	ErrGroupInactive = errors.New("the group is inactive")
	ErrNotGroupUser  = errors.New("you are not a member of this group")
)

// AccessService answers the authorization questions every group-scoped
// operation asks: does the group exist, is the caller its admin, does the
// caller hold a membership row. It never mutates anything.
type AccessService struct {
	DB *gorm.DB
}

func NewAccessService(db *gorm.DB) *AccessService {
	return &AccessService{DB: db}
}

func (a *AccessService) Group(groupID uuid.UUID) (*models.Group, error) {
	var group models.Group
	if err := a.DB.First(&group, "id = ?", groupID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrGroupNotFound
		}
		return nil, err
	}
	return &group, nil
}

// AdminGroup loads the group and requires the caller to be its admin.
func (a *AccessService) AdminGroup(groupID, userID uuid.UUID) (*models.Group, error) {
	group, err := a.Group(groupID)
	if err != nil {
		return nil, err
	}
	if group.AdminID != userID {
		return nil, ErrNotGroupAdmin
	}
	return group, nil
}

// ActiveAdminGroup is the gate shared by invitation creation and category
// attachment: admin caller plus an ACTIVE group.
func (a *AccessService) ActiveAdminGroup(groupID, userID uuid.UUID) (*models.Group, error) {
	group, err := a.AdminGroup(groupID, userID)
	if err != nil {
		return nil, err
	}
	if group.Status == models.GroupStatusInactive {
		return nil, ErrGroupInactive
	}
	return group, nil
}

// Membership returns the caller's membership row regardless of its status.
// Roster and analytics reads only require the row to exist.
func (a *AccessService) Membership(groupID, userID uuid.UUID) (*models.Membership, error) {
	var membership models.Membership
	err := a.DB.First(&membership, "group_id = ? AND user_id = ?", groupID, userID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotGroupUser
		}
		return nil, err
	}
	return &membership, nil
}
