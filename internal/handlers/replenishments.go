package handlers

import (
	"errors"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/groupledger/backend/internal/middleware"
	"github.com/groupledger/backend/internal/models"
	"github.com/groupledger/backend/pkg/logger"
	"github.com/groupledger/backend/pkg/utils"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// ReplenishmentsHandler manages personal income records. They belong to one
// user only and never reference a group or category.
type ReplenishmentsHandler struct {
	DB *gorm.DB
}

func NewReplenishmentsHandler(db *gorm.DB) *ReplenishmentsHandler {
	return &ReplenishmentsHandler{DB: db}
}

type replenishmentRequest struct {
	Description string          `json:"description"`
	Amount      decimal.Decimal `json:"amount"`
}

var (
	errReplenishmentNotFound = errors.New("replenishment not found")
	errNotYourReplenishment  = errors.New("it's not your replenishment")
)

func replenishmentError(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, errReplenishmentNotFound):
		return utils.Error(c, fiber.StatusNotFound, err.Error())
	case errors.Is(err, errNotYourReplenishment):
		return utils.Error(c, fiber.StatusForbidden, err.Error())
	default:
		return utils.Error(c, fiber.StatusServiceUnavailable, "store unavailable")
	}
}

func (h *ReplenishmentsHandler) Create(c *fiber.Ctx) error {
	currentUser := middleware.GetCurrentUser(c)
	if currentUser == nil {
		return utils.Error(c, fiber.StatusUnauthorized, "unauthorized")
	}

	var req replenishmentRequest
	if err := c.BodyParser(&req); err != nil {
		return utils.Error(c, fiber.StatusBadRequest, "invalid request body")
	}
	if req.Amount.LessThanOrEqual(decimal.Zero) {
		return utils.Error(c, fiber.StatusBadRequest, "amount must be positive")
	}

	replenishment := models.Replenishment{
		Description: req.Description,
		Amount:      req.Amount,
		Time:        time.Now().UTC(),
		UserID:      currentUser.ID,
	}
	if err := h.DB.Create(&replenishment).Error; err != nil {
		return utils.Error(c, fiber.StatusServiceUnavailable, "failed creating replenishment")
	}

	logger.InfoWithUser(currentUser.ID.String(), "replenishment_created", map[string]interface{}{
		"replenishment_id": replenishment.ID.String(),
		"amount":           req.Amount.String(),
	})

	return utils.Success(c, fiber.StatusCreated, replenishment)
}

func (h *ReplenishmentsHandler) Update(c *fiber.Ctx) error {
	currentUser := middleware.GetCurrentUser(c)
	if currentUser == nil {
		return utils.Error(c, fiber.StatusUnauthorized, "unauthorized")
	}

	replenishmentID, err := parseUUID(c.Params("id"))
	if err != nil {
		return utils.Error(c, fiber.StatusBadRequest, "invalid replenishment id")
	}

	replenishment, err := h.owned(replenishmentID, currentUser.ID)
	if err != nil {
		return replenishmentError(c, err)
	}

	var req replenishmentRequest
	if err := c.BodyParser(&req); err != nil {
		return utils.Error(c, fiber.StatusBadRequest, "invalid request body")
	}
	if req.Amount.LessThanOrEqual(decimal.Zero) {
		return utils.Error(c, fiber.StatusBadRequest, "amount must be positive")
	}

	updates := map[string]interface{}{
		"description": req.Description,
		"amount":      req.Amount,
	}
	if err := h.DB.Model(replenishment).Updates(updates).Error; err != nil {
		return utils.Error(c, fiber.StatusServiceUnavailable, "failed updating replenishment")
	}

	return utils.Success(c, fiber.StatusOK, replenishment)
}

func (h *ReplenishmentsHandler) Delete(c *fiber.Ctx) error {
	currentUser := middleware.GetCurrentUser(c)
	if currentUser == nil {
		return utils.Error(c, fiber.StatusUnauthorized, "unauthorized")
	}

	replenishmentID, err := parseUUID(c.Params("id"))
	if err != nil {
		return utils.Error(c, fiber.StatusBadRequest, "invalid replenishment id")
	}

	replenishment, err := h.owned(replenishmentID, currentUser.ID)
	if err != nil {
		return replenishmentError(c, err)
	}

	if err := h.DB.Delete(replenishment).Error; err != nil {
		return utils.Error(c, fiber.StatusServiceUnavailable, "failed deleting replenishment")
	}

	logger.InfoWithUser(currentUser.ID.String(), "replenishment_deleted", map[string]interface{}{
		"replenishment_id": replenishment.ID.String(),
	})

	return utils.Success(c, fiber.StatusOK, fiber.Map{"deleted": true})
}

func (h *ReplenishmentsHandler) List(c *fiber.Ctx) error {
	currentUser := middleware.GetCurrentUser(c)
	if currentUser == nil {
		return utils.Error(c, fiber.StatusUnauthorized, "unauthorized")
	}

	period, err := utils.ParsePeriod(c)
	if err != nil {
		return utils.Error(c, fiber.StatusUnprocessableEntity, err.Error())
	}

	query := h.DB.Where("user_id = ?", currentUser.ID)
	if from, to, ok := period.Bounds(); ok {
		query = query.Where("time >= ? AND time < ?", from, to)
	}

	var replenishments []models.Replenishment
	if err := query.Order("time DESC").Find(&replenishments).Error; err != nil {
		return utils.Error(c, fiber.StatusServiceUnavailable, "failed listing replenishments")
	}

	return utils.Success(c, fiber.StatusOK, replenishments)
}

func (h *ReplenishmentsHandler) owned(id, userID uuid.UUID) (*models.Replenishment, error) {
	var replenishment models.Replenishment
	err := h.DB.First(&replenishment, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, errReplenishmentNotFound
	}
	if err != nil {
		return nil, err
	}
	if replenishment.UserID != userID {
		return nil, errNotYourReplenishment
	}
	return &replenishment, nil
}
