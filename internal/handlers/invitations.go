package handlers

import (
	"errors"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/groupledger/backend/internal/middleware"
	"github.com/groupledger/backend/internal/models"
	"github.com/groupledger/backend/internal/services"
	"github.com/groupledger/backend/pkg/logger"
	"github.com/groupledger/backend/pkg/utils"
	"gorm.io/gorm"
)

type InvitationsHandler struct {
	DB     *gorm.DB
	Access *services.AccessService
}

func NewInvitationsHandler(db *gorm.DB, access *services.AccessService) *InvitationsHandler {
	return &InvitationsHandler{DB: db, Access: access}
}

type createInvitationRequest struct {
	RecipientID uuid.UUID `json:"recipientID"`
	GroupID     uuid.UUID `json:"groupID"`
}

func (h *InvitationsHandler) Create(c *fiber.Ctx) error {
	currentUser := middleware.GetCurrentUser(c)
	if currentUser == nil {
		return utils.Error(c, fiber.StatusUnauthorized, "unauthorized")
	}

	var req createInvitationRequest
	if err := c.BodyParser(&req); err != nil {
		return utils.Error(c, fiber.StatusBadRequest, "invalid request body")
	}
	if req.RecipientID == uuid.Nil || req.GroupID == uuid.Nil {
		return utils.Error(c, fiber.StatusBadRequest, "recipientID and groupID are required")
	}

	if _, err := h.Access.ActiveAdminGroup(req.GroupID, currentUser.ID); err != nil {
		return accessError(c, err)
	}

	var recipient models.User
	if err := h.DB.First(&recipient, "id = ?", req.RecipientID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return utils.Error(c, fiber.StatusNotFound, "user not found")
		}
		return utils.Error(c, fiber.StatusServiceUnavailable, "failed loading recipient")
	}

	var activeMembership models.Membership
	err := h.DB.First(&activeMembership,
		"group_id = ? AND user_id = ? AND status = ?",
		req.GroupID, req.RecipientID, models.MembershipStatusActive,
	).Error
	if err == nil {
		return utils.Error(c, fiber.StatusConflict, "the recipient is already in this group")
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return utils.Error(c, fiber.StatusServiceUnavailable, "failed checking membership")
	}

	var pending models.Invitation
	err = h.DB.First(&pending,
		"group_id = ? AND recipient_id = ? AND status = ?",
		req.GroupID, req.RecipientID, models.InvitationStatusPending,
	).Error
	if err == nil {
		return utils.Error(c, fiber.StatusConflict, "an invitation is already pending for this user")
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return utils.Error(c, fiber.StatusServiceUnavailable, "failed checking invitations")
	}

	invitation := models.Invitation{
		SenderID:     currentUser.ID,
		RecipientID:  req.RecipientID,
		GroupID:      req.GroupID,
		Status:       models.InvitationStatusPending,
		CreationTime: time.Now().UTC(),
	}
	if err := h.DB.Create(&invitation).Error; err != nil {
		return utils.Error(c, fiber.StatusServiceUnavailable, "failed creating invitation")
	}

	logger.InfoWithUser(currentUser.ID.String(), "invitation_sent", map[string]interface{}{
		"invitation_id": invitation.ID.String(),
		"group_id":      req.GroupID.String(),
		"recipient_id":  req.RecipientID.String(),
	})

	return utils.Success(c, fiber.StatusCreated, invitation)
}

// ListPending sweeps first so expired or dead-group invitations are already
// OVERDUE by the time the recipient sees the list.
func (h *InvitationsHandler) ListPending(c *fiber.Ctx) error {
	currentUser := middleware.GetCurrentUser(c)
	if currentUser == nil {
		return utils.Error(c, fiber.StatusUnauthorized, "unauthorized")
	}

	if err := services.SweepOverdueInvitations(h.DB, currentUser.ID, time.Now().UTC()); err != nil {
		return utils.Error(c, fiber.StatusServiceUnavailable, "failed refreshing invitations")
	}

	var invitations []models.Invitation
	if err := h.DB.
		Preload("Group").
		Preload("Sender").
		Where("recipient_id = ? AND status = ?", currentUser.ID, models.InvitationStatusPending).
		Order("creation_time ASC").
		Find(&invitations).Error; err != nil {
		return utils.Error(c, fiber.StatusServiceUnavailable, "failed listing invitations")
	}

	return utils.Success(c, fiber.StatusOK, invitations)
}

type respondRequest struct {
	Response models.InvitationStatus `json:"response"`
}

var errInvitationNotFound = errors.New("invitation not found")

// Respond accepts or denies a pending invitation. Acceptance activates the
// membership in the same transaction: if the membership write fails, the
// invitation stays PENDING.
func (h *InvitationsHandler) Respond(c *fiber.Ctx) error {
	currentUser := middleware.GetCurrentUser(c)
	if currentUser == nil {
		return utils.Error(c, fiber.StatusUnauthorized, "unauthorized")
	}

	invitationID, err := parseUUID(c.Params("id"))
	if err != nil {
		return utils.Error(c, fiber.StatusBadRequest, "invalid invitation id")
	}

	var req respondRequest
	if err := c.BodyParser(&req); err != nil {
		return utils.Error(c, fiber.StatusBadRequest, "invalid request body")
	}
	if req.Response != models.InvitationStatusAccepted && req.Response != models.InvitationStatusDenied {
		return utils.Error(c, fiber.StatusBadRequest, "response must be ACCEPTED or DENIED")
	}

	var invitation models.Invitation
	err = h.DB.Transaction(func(tx *gorm.DB) error {
		if err := services.SweepOverdueInvitations(tx, currentUser.ID, time.Now().UTC()); err != nil {
			return err
		}

		// A just-swept OVERDUE row no longer matches, so expired invitations
		// read as not found.
		err := tx.First(&invitation,
			"id = ? AND recipient_id = ? AND status = ?",
			invitationID, currentUser.ID, models.InvitationStatusPending,
		).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return errInvitationNotFound
		}
		if err != nil {
			return err
		}

		if err := tx.Model(&invitation).Update("status", req.Response).Error; err != nil {
			return err
		}

		if req.Response == models.InvitationStatusAccepted {
			if _, err := services.ActivateMembership(tx, currentUser.ID, invitation.GroupID); err != nil {
				return err
			}
		}
		return nil
	})
	if errors.Is(err, errInvitationNotFound) {
		return utils.Error(c, fiber.StatusNotFound, errInvitationNotFound.Error())
	}
	if err != nil {
		return utils.Error(c, fiber.StatusServiceUnavailable, "failed responding to invitation")
	}

	logger.InfoWithUser(currentUser.ID.String(), "invitation_answered", map[string]interface{}{
		"invitation_id": invitation.ID.String(),
		"response":      string(req.Response),
	})

	return utils.Success(c, fiber.StatusOK, invitation)
}
