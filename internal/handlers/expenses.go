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
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type ExpensesHandler struct {
	DB     *gorm.DB
	Access *services.AccessService
}

func NewExpensesHandler(db *gorm.DB, access *services.AccessService) *ExpensesHandler {
	return &ExpensesHandler{DB: db, Access: access}
}

type expenseRequest struct {
	Description string          `json:"description"`
	Amount      decimal.Decimal `json:"amount"`
	GroupID     uuid.UUID       `json:"groupID"`
	CategoryID  uuid.UUID       `json:"categoryID"`
}

var (
	errNotActiveMember    = errors.New("you are not an active member of this group")
	errCategoryNotInGroup = errors.New("the category is not in this group")
	errExpenseNotFound    = errors.New("expense not found")
	errNotYourExpense     = errors.New("it's not your expense")
)

// checkExpenseTarget validates the group/category pair an expense points at:
// the group exists, the caller is an ACTIVE member, and the category is
// attached to that group.
func (h *ExpensesHandler) checkExpenseTarget(userID, groupID, categoryID uuid.UUID) error {
	if _, err := h.Access.Group(groupID); err != nil {
		return err
	}

	membership, err := h.Access.Membership(groupID, userID)
	if err != nil {
		return err
	}
	if membership.Status != models.MembershipStatusActive {
		return errNotActiveMember
	}

	var link models.CategoryGroup
	err = h.DB.First(&link, "category_id = ? AND group_id = ?", categoryID, groupID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return errCategoryNotInGroup
	}
	return err
}

func expenseError(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, services.ErrNotGroupUser):
		return utils.Error(c, fiber.StatusNotFound, err.Error())
	case errors.Is(err, errNotActiveMember):
		return utils.Error(c, fiber.StatusConflict, err.Error())
	case errors.Is(err, errCategoryNotInGroup):
		return utils.Error(c, fiber.StatusNotFound, err.Error())
	case errors.Is(err, errExpenseNotFound):
		return utils.Error(c, fiber.StatusNotFound, err.Error())
	case errors.Is(err, errNotYourExpense):
		return utils.Error(c, fiber.StatusForbidden, err.Error())
	default:
		return accessError(c, err)
	}
}

func (h *ExpensesHandler) Create(c *fiber.Ctx) error {
	currentUser := middleware.GetCurrentUser(c)
	if currentUser == nil {
		return utils.Error(c, fiber.StatusUnauthorized, "unauthorized")
	}

	var req expenseRequest
	if err := c.BodyParser(&req); err != nil {
		return utils.Error(c, fiber.StatusBadRequest, "invalid request body")
	}
	if req.GroupID == uuid.Nil || req.CategoryID == uuid.Nil {
		return utils.Error(c, fiber.StatusBadRequest, "groupID and categoryID are required")
	}
	if req.Amount.LessThanOrEqual(decimal.Zero) {
		return utils.Error(c, fiber.StatusBadRequest, "amount must be positive")
	}

	if err := h.checkExpenseTarget(currentUser.ID, req.GroupID, req.CategoryID); err != nil {
		return expenseError(c, err)
	}

	// The record is timestamped by the server, not the client.
	expense := models.Expense{
		Description: req.Description,
		Amount:      req.Amount,
		Time:        time.Now().UTC(),
		UserID:      currentUser.ID,
		GroupID:     req.GroupID,
		CategoryID:  req.CategoryID,
	}
	if err := h.DB.Create(&expense).Error; err != nil {
		return utils.Error(c, fiber.StatusServiceUnavailable, "failed creating expense")
	}

	logger.InfoWithUser(currentUser.ID.String(), "expense_created", map[string]interface{}{
		"expense_id": expense.ID.String(),
		"group_id":   req.GroupID.String(),
		"amount":     req.Amount.String(),
	})

	return utils.Success(c, fiber.StatusCreated, expense)
}

// Update rewrites an expense the caller owns. Moving it to another group or
// category re-runs the same membership and attachment checks as creation; the
// original timestamp is kept.
func (h *ExpensesHandler) Update(c *fiber.Ctx) error {
	currentUser := middleware.GetCurrentUser(c)
	if currentUser == nil {
		return utils.Error(c, fiber.StatusUnauthorized, "unauthorized")
	}

	expenseID, err := parseUUID(c.Params("id"))
	if err != nil {
		return utils.Error(c, fiber.StatusBadRequest, "invalid expense id")
	}

	expense, err := h.ownedExpense(expenseID, currentUser.ID)
	if err != nil {
		return expenseError(c, err)
	}

	var req expenseRequest
	if err := c.BodyParser(&req); err != nil {
		return utils.Error(c, fiber.StatusBadRequest, "invalid request body")
	}
	if req.GroupID == uuid.Nil || req.CategoryID == uuid.Nil {
		return utils.Error(c, fiber.StatusBadRequest, "groupID and categoryID are required")
	}
	if req.Amount.LessThanOrEqual(decimal.Zero) {
		return utils.Error(c, fiber.StatusBadRequest, "amount must be positive")
	}

	if err := h.checkExpenseTarget(currentUser.ID, req.GroupID, req.CategoryID); err != nil {
		return expenseError(c, err)
	}

	updates := map[string]interface{}{
		"description": req.Description,
		"amount":      req.Amount,
		"group_id":    req.GroupID,
		"category_id": req.CategoryID,
	}
	if err := h.DB.Model(expense).Updates(updates).Error; err != nil {
		return utils.Error(c, fiber.StatusServiceUnavailable, "failed updating expense")
	}

	return utils.Success(c, fiber.StatusOK, expense)
}

func (h *ExpensesHandler) Delete(c *fiber.Ctx) error {
	currentUser := middleware.GetCurrentUser(c)
	if currentUser == nil {
		return utils.Error(c, fiber.StatusUnauthorized, "unauthorized")
	}

	expenseID, err := parseUUID(c.Params("id"))
	if err != nil {
		return utils.Error(c, fiber.StatusBadRequest, "invalid expense id")
	}

	expense, err := h.ownedExpense(expenseID, currentUser.ID)
	if err != nil {
		return expenseError(c, err)
	}

	if err := h.DB.Delete(expense).Error; err != nil {
		return utils.Error(c, fiber.StatusServiceUnavailable, "failed deleting expense")
	}

	logger.InfoWithUser(currentUser.ID.String(), "expense_deleted", map[string]interface{}{
		"expense_id": expense.ID.String(),
	})

	return utils.Success(c, fiber.StatusOK, fiber.Map{"deleted": true})
}

// List returns the caller's own expenses, optionally narrowed to one group
// and one period. Each row carries the category with the group-local styling.
func (h *ExpensesHandler) List(c *fiber.Ctx) error {
	currentUser := middleware.GetCurrentUser(c)
	if currentUser == nil {
		return utils.Error(c, fiber.StatusUnauthorized, "unauthorized")
	}

	period, err := utils.ParsePeriod(c)
	if err != nil {
		return utils.Error(c, fiber.StatusUnprocessableEntity, err.Error())
	}

	query := h.DB.
		Preload("Category").
		Where("user_id = ?", currentUser.ID)

	if groupRaw := c.Query("group_id"); groupRaw != "" {
		groupID, err := parseUUID(groupRaw)
		if err != nil {
			return utils.Error(c, fiber.StatusBadRequest, "invalid group id")
		}
		if _, err := h.Access.Group(groupID); err != nil {
			return accessError(c, err)
		}
		if _, err := h.Access.Membership(groupID, currentUser.ID); err != nil {
			return accessError(c, err)
		}
		query = query.Where("group_id = ?", groupID)
	}

	if from, to, ok := period.Bounds(); ok {
		query = query.Where("time >= ? AND time < ?", from, to)
	}

	var expenses []models.Expense
	if err := query.Order("time DESC").Find(&expenses).Error; err != nil {
		return utils.Error(c, fiber.StatusServiceUnavailable, "failed listing expenses")
	}

	views, err := h.withStyling(expenses)
	if err != nil {
		return utils.Error(c, fiber.StatusServiceUnavailable, "failed loading category styles")
	}

	return utils.Success(c, fiber.StatusOK, views)
}

type expenseView struct {
	models.Expense
	CategoryIconURL   string `json:"categoryIconURL"`
	CategoryColorCode string `json:"categoryColorCode"`
}

// withStyling decorates each expense with the icon and color its category
// carries in that expense's group.
func (h *ExpensesHandler) withStyling(expenses []models.Expense) ([]expenseView, error) {
	views := make([]expenseView, 0, len(expenses))
	if len(expenses) == 0 {
		return views, nil
	}

	categoryIDs := make([]uuid.UUID, 0, len(expenses))
	groupIDs := make([]uuid.UUID, 0, len(expenses))
	seenCategories := make(map[uuid.UUID]struct{}, len(expenses))
	seenGroups := make(map[uuid.UUID]struct{}, len(expenses))
	for _, e := range expenses {
		if _, ok := seenCategories[e.CategoryID]; !ok {
			seenCategories[e.CategoryID] = struct{}{}
			categoryIDs = append(categoryIDs, e.CategoryID)
		}
		if _, ok := seenGroups[e.GroupID]; !ok {
			seenGroups[e.GroupID] = struct{}{}
			groupIDs = append(groupIDs, e.GroupID)
		}
	}

	var links []models.CategoryGroup
	if err := h.DB.
		Where("category_id IN ? AND group_id IN ?", categoryIDs, groupIDs).
		Find(&links).Error; err != nil {
		return nil, err
	}
	type key struct{ category, group uuid.UUID }
	styles := make(map[key]models.CategoryGroup, len(links))
	for _, l := range links {
		styles[key{l.CategoryID, l.GroupID}] = l
	}

	for _, e := range expenses {
		v := expenseView{Expense: e}
		if s, ok := styles[key{e.CategoryID, e.GroupID}]; ok {
			v.CategoryIconURL = s.IconURL
			v.CategoryColorCode = s.ColorCode
		}
		views = append(views, v)
	}
	return views, nil
}

func (h *ExpensesHandler) ownedExpense(expenseID, userID uuid.UUID) (*models.Expense, error) {
	var expense models.Expense
	err := h.DB.First(&expense, "id = ?", expenseID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, errExpenseNotFound
	}
	if err != nil {
		return nil, err
	}
	if expense.UserID != userID {
		return nil, errNotYourExpense
	}
	return &expense, nil
}
