package handlers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/groupledger/backend/internal/middleware"
	"github.com/groupledger/backend/internal/services"
	"github.com/groupledger/backend/pkg/utils"
)

// AnalyticsHandler exposes the read-side aggregates. Group-scoped endpoints
// require the caller to hold a membership row in the group; historical
// (INACTIVE) members can still read the numbers of groups they left.
type AnalyticsHandler struct {
	Access    *services.AccessService
	Analytics *services.AnalyticsService
}

func NewAnalyticsHandler(access *services.AccessService, analytics *services.AnalyticsService) *AnalyticsHandler {
	return &AnalyticsHandler{Access: access, Analytics: analytics}
}

func (h *AnalyticsHandler) Balance(c *fiber.Ctx) error {
	currentUser := middleware.GetCurrentUser(c)
	if currentUser == nil {
		return utils.Error(c, fiber.StatusUnauthorized, "unauthorized")
	}

	balance, err := h.Analytics.Balance(currentUser.ID)
	if err != nil {
		return utils.Error(c, fiber.StatusServiceUnavailable, "failed computing balance")
	}

	return utils.Success(c, fiber.StatusOK, fiber.Map{"balance": balance})
}

func (h *AnalyticsHandler) UserExpenseTotal(c *fiber.Ctx) error {
	currentUser := middleware.GetCurrentUser(c)
	if currentUser == nil {
		return utils.Error(c, fiber.StatusUnauthorized, "unauthorized")
	}

	period, err := utils.ParsePeriod(c)
	if err != nil {
		return utils.Error(c, fiber.StatusUnprocessableEntity, err.Error())
	}

	total, err := h.Analytics.UserExpenseTotal(currentUser.ID, period)
	if err != nil {
		return utils.Error(c, fiber.StatusServiceUnavailable, "failed computing total")
	}

	return utils.Success(c, fiber.StatusOK, total)
}

func (h *AnalyticsHandler) GroupExpenseTotal(c *fiber.Ctx) error {
	groupID, period, err := h.groupScope(c)
	if err != nil {
		return err
	}
	if groupID == uuid.Nil {
		return nil
	}

	total, err := h.Analytics.GroupExpenseTotal(groupID, period)
	if err != nil {
		return utils.Error(c, fiber.StatusServiceUnavailable, "failed computing total")
	}

	return utils.Success(c, fiber.StatusOK, total)
}

func (h *AnalyticsHandler) GroupByCategory(c *fiber.Ctx) error {
	groupID, period, err := h.groupScope(c)
	if err != nil {
		return err
	}
	if groupID == uuid.Nil {
		return nil
	}

	rows, err := h.Analytics.GroupByCategory(groupID, period)
	if err != nil {
		return utils.Error(c, fiber.StatusServiceUnavailable, "failed computing breakdown")
	}

	return utils.Success(c, fiber.StatusOK, rows)
}

func (h *AnalyticsHandler) GroupByDay(c *fiber.Ctx) error {
	groupID, period, err := h.groupScope(c)
	if err != nil {
		return err
	}
	if groupID == uuid.Nil {
		return nil
	}

	rows, err := h.Analytics.GroupByDay(groupID, period)
	if err != nil {
		return utils.Error(c, fiber.StatusServiceUnavailable, "failed computing breakdown")
	}

	return utils.Success(c, fiber.StatusOK, rows)
}

func (h *AnalyticsHandler) GroupByMember(c *fiber.Ctx) error {
	groupID, period, err := h.groupScope(c)
	if err != nil {
		return err
	}
	if groupID == uuid.Nil {
		return nil
	}

	rows, err := h.Analytics.GroupByMember(groupID, period)
	if err != nil {
		return utils.Error(c, fiber.StatusServiceUnavailable, "failed computing breakdown")
	}

	return utils.Success(c, fiber.StatusOK, rows)
}

// groupScope parses the :id group, the period filters, and enforces the
// membership gate. A uuid.Nil group with a nil error means the response has
// already been written.
func (h *AnalyticsHandler) groupScope(c *fiber.Ctx) (uuid.UUID, utils.Period, error) {
	currentUser := middleware.GetCurrentUser(c)
	if currentUser == nil {
		return uuid.Nil, utils.Period{}, utils.Error(c, fiber.StatusUnauthorized, "unauthorized")
	}

	groupID, err := parseUUID(c.Params("id"))
	if err != nil {
		return uuid.Nil, utils.Period{}, utils.Error(c, fiber.StatusBadRequest, "invalid group id")
	}

	period, err := utils.ParsePeriod(c)
	if err != nil {
		return uuid.Nil, utils.Period{}, utils.Error(c, fiber.StatusUnprocessableEntity, err.Error())
	}

	if _, err := h.Access.Group(groupID); err != nil {
		return uuid.Nil, utils.Period{}, accessError(c, err)
	}
	if _, err := h.Access.Membership(groupID, currentUser.ID); err != nil {
		return uuid.Nil, utils.Period{}, accessError(c, err)
	}

	return groupID, period, nil
}
