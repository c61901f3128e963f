package handlers

import (
	"errors"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/groupledger/backend/internal/middleware"
	"github.com/groupledger/backend/internal/models"
	"github.com/groupledger/backend/internal/services"
	"github.com/groupledger/backend/pkg/logger"
	"github.com/groupledger/backend/pkg/utils"
	"gorm.io/gorm"
)

type GroupsHandler struct {
	DB     *gorm.DB
	Access *services.AccessService
}

func NewGroupsHandler(db *gorm.DB, access *services.AccessService) *GroupsHandler {
	return &GroupsHandler{DB: db, Access: access}
}

type groupRequest struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	IconURL     string `json:"iconURL"`
	ColorCode   string `json:"colorCode"`
}

func (h *GroupsHandler) Create(c *fiber.Ctx) error {
	currentUser := middleware.GetCurrentUser(c)
	if currentUser == nil {
		return utils.Error(c, fiber.StatusUnauthorized, "unauthorized")
	}

	var req groupRequest
	if err := c.BodyParser(&req); err != nil {
		return utils.Error(c, fiber.StatusBadRequest, "invalid request body")
	}

	req.Title = strings.TrimSpace(req.Title)
	if req.Title == "" {
		return utils.Error(c, fiber.StatusBadRequest, "title is required")
	}

	group := models.Group{
		Title:       req.Title,
		Description: strings.TrimSpace(req.Description),
		IconURL:     strings.TrimSpace(req.IconURL),
		ColorCode:   strings.TrimSpace(req.ColorCode),
		AdminID:     currentUser.ID,
		Status:      models.GroupStatusActive,
	}

	// The group and its admin's membership commit as one unit.
	err := h.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&group).Error; err != nil {
			return err
		}
		_, err := services.ActivateMembership(tx, currentUser.ID, group.ID)
		return err
	})
	if err != nil {
		return utils.Error(c, fiber.StatusServiceUnavailable, "failed creating group")
	}

	logger.InfoWithUser(currentUser.ID.String(), "group_created", map[string]interface{}{
		"group_id":    group.ID.String(),
		"group_title": group.Title,
	})

	return utils.Success(c, fiber.StatusCreated, group)
}

// List returns the caller's membership rows with their groups, covering both
// active and left groups.
func (h *GroupsHandler) List(c *fiber.Ctx) error {
	currentUser := middleware.GetCurrentUser(c)
	if currentUser == nil {
		return utils.Error(c, fiber.StatusUnauthorized, "unauthorized")
	}

	var memberships []models.Membership
	if err := h.DB.
		Preload("Group").
		Where("user_id = ?", currentUser.ID).
		Order("date_join ASC").
		Find(&memberships).Error; err != nil {
		return utils.Error(c, fiber.StatusServiceUnavailable, "failed listing groups")
	}

	return utils.Success(c, fiber.StatusOK, memberships)
}

func (h *GroupsHandler) Update(c *fiber.Ctx) error {
	currentUser := middleware.GetCurrentUser(c)
	if currentUser == nil {
		return utils.Error(c, fiber.StatusUnauthorized, "unauthorized")
	}

	groupID, err := parseUUID(c.Params("id"))
	if err != nil {
		return utils.Error(c, fiber.StatusBadRequest, "invalid group id")
	}

	group, err := h.Access.ActiveAdminGroup(groupID, currentUser.ID)
	if err != nil {
		return accessError(c, err)
	}

	var req groupRequest
	if err := c.BodyParser(&req); err != nil {
		return utils.Error(c, fiber.StatusBadRequest, "invalid request body")
	}
	req.Title = strings.TrimSpace(req.Title)
	if req.Title == "" {
		return utils.Error(c, fiber.StatusBadRequest, "title is required")
	}

	updates := map[string]interface{}{
		"title":       req.Title,
		"description": strings.TrimSpace(req.Description),
		"icon_url":    strings.TrimSpace(req.IconURL),
		"color_code":  strings.TrimSpace(req.ColorCode),
	}
	if err := h.DB.Model(group).Updates(updates).Error; err != nil {
		return utils.Error(c, fiber.StatusServiceUnavailable, "failed updating group")
	}

	return utils.Success(c, fiber.StatusOK, group)
}

// Members returns the roster. Any caller holding a membership row may read
// it, regardless of that row's status.
func (h *GroupsHandler) Members(c *fiber.Ctx) error {
	currentUser := middleware.GetCurrentUser(c)
	if currentUser == nil {
		return utils.Error(c, fiber.StatusUnauthorized, "unauthorized")
	}

	groupID, err := parseUUID(c.Params("id"))
	if err != nil {
		return utils.Error(c, fiber.StatusBadRequest, "invalid group id")
	}

	if _, err := h.Access.Group(groupID); err != nil {
		return accessError(c, err)
	}
	if _, err := h.Access.Membership(groupID, currentUser.ID); err != nil {
		return accessError(c, err)
	}

	var memberships []models.Membership
	if err := h.DB.
		Preload("User").
		Where("group_id = ?", groupID).
		Order("date_join ASC").
		Find(&memberships).Error; err != nil {
		return utils.Error(c, fiber.StatusServiceUnavailable, "failed listing members")
	}

	return utils.Success(c, fiber.StatusOK, memberships)
}

// Categories lists the group's attached categories with their per-group
// styling.
func (h *GroupsHandler) Categories(c *fiber.Ctx) error {
	currentUser := middleware.GetCurrentUser(c)
	if currentUser == nil {
		return utils.Error(c, fiber.StatusUnauthorized, "unauthorized")
	}

	groupID, err := parseUUID(c.Params("id"))
	if err != nil {
		return utils.Error(c, fiber.StatusBadRequest, "invalid group id")
	}

	if _, err := h.Access.Group(groupID); err != nil {
		return accessError(c, err)
	}
	if _, err := h.Access.Membership(groupID, currentUser.ID); err != nil {
		return accessError(c, err)
	}

	var links []models.CategoryGroup
	if err := h.DB.
		Preload("Category").
		Where("group_id = ?", groupID).
		Find(&links).Error; err != nil {
		return utils.Error(c, fiber.StatusServiceUnavailable, "failed listing categories")
	}

	return utils.Success(c, fiber.StatusOK, links)
}

// Leave removes the caller from the group. The admin leaving means the group
// is over: the whole group is disbanded, there is no ownership handoff.
func (h *GroupsHandler) Leave(c *fiber.Ctx) error {
	currentUser := middleware.GetCurrentUser(c)
	if currentUser == nil {
		return utils.Error(c, fiber.StatusUnauthorized, "unauthorized")
	}

	groupID, err := parseUUID(c.Params("id"))
	if err != nil {
		return utils.Error(c, fiber.StatusBadRequest, "invalid group id")
	}

	group, err := h.Access.Group(groupID)
	if err != nil {
		return accessError(c, err)
	}

	if group.AdminID == currentUser.ID {
		return h.disband(c, currentUser.ID, group)
	}

	membership, err := h.Access.Membership(groupID, currentUser.ID)
	if err != nil {
		if err == services.ErrNotGroupUser {
			return utils.Error(c, fiber.StatusNotFound, err.Error())
		}
		return accessError(c, err)
	}

	if err := h.DB.Model(membership).Update("status", models.MembershipStatusInactive).Error; err != nil {
		return utils.Error(c, fiber.StatusServiceUnavailable, "failed leaving group")
	}

	logger.InfoWithUser(currentUser.ID.String(), "group_left", map[string]interface{}{
		"group_id": groupID.String(),
	})

	return utils.Success(c, fiber.StatusOK, membership)
}

// RemoveMember is admin-only. Removing the admin themselves disbands the
// group; removing anyone else requires their membership to be ACTIVE.
func (h *GroupsHandler) RemoveMember(c *fiber.Ctx) error {
	currentUser := middleware.GetCurrentUser(c)
	if currentUser == nil {
		return utils.Error(c, fiber.StatusUnauthorized, "unauthorized")
	}

	groupID, err := parseUUID(c.Params("id"))
	if err != nil {
		return utils.Error(c, fiber.StatusBadRequest, "invalid group id")
	}
	targetID, err := parseUUID(c.Params("userId"))
	if err != nil {
		return utils.Error(c, fiber.StatusBadRequest, "invalid user id")
	}

	group, err := h.Access.AdminGroup(groupID, currentUser.ID)
	if err != nil {
		return accessError(c, err)
	}

	if targetID == group.AdminID {
		return h.disband(c, currentUser.ID, group)
	}

	var membership models.Membership
	err = h.DB.First(&membership, "group_id = ? AND user_id = ?", groupID, targetID).Error
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return utils.Error(c, fiber.StatusServiceUnavailable, "failed loading membership")
	}
	if err != nil || membership.Status != models.MembershipStatusActive {
		return utils.Error(c, fiber.StatusConflict, "the user is not active in this group")
	}

	if err := h.DB.Model(&membership).Update("status", models.MembershipStatusInactive).Error; err != nil {
		return utils.Error(c, fiber.StatusServiceUnavailable, "failed removing member")
	}

	logger.InfoWithUser(currentUser.ID.String(), "member_removed", map[string]interface{}{
		"group_id": groupID.String(),
		"user_id":  targetID.String(),
	})

	return utils.Success(c, fiber.StatusOK, membership)
}

func (h *GroupsHandler) disband(c *fiber.Ctx, actorID uuid.UUID, group *models.Group) error {
	err := h.DB.Transaction(func(tx *gorm.DB) error {
		return services.DisbandGroup(tx, group.ID)
	})
	if err != nil {
		return utils.Error(c, fiber.StatusServiceUnavailable, "failed disbanding group")
	}

	logger.InfoWithUser(actorID.String(), "group_disbanded", map[string]interface{}{
		"group_id": group.ID.String(),
	})

	group.Status = models.GroupStatusInactive
	return utils.Success(c, fiber.StatusOK, group)
}
