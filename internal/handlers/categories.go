package handlers

import (
	"errors"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/groupledger/backend/internal/middleware"
	"github.com/groupledger/backend/internal/models"
	"github.com/groupledger/backend/internal/services"
	"github.com/groupledger/backend/pkg/logger"
	"github.com/groupledger/backend/pkg/utils"
	"gorm.io/gorm"
)

type CategoriesHandler struct {
	DB     *gorm.DB
	Access *services.AccessService
}

func NewCategoriesHandler(db *gorm.DB, access *services.AccessService) *CategoriesHandler {
	return &CategoriesHandler{DB: db, Access: access}
}

type attachCategoryRequest struct {
	Title     string `json:"title"`
	IconURL   string `json:"iconURL"`
	ColorCode string `json:"colorCode"`
}

// Attach links a category to the group, creating the category row on first
// use. Titles are case-insensitive: "Food" and "food" are the same category
// shared across all groups, while the icon and color stay per group.
func (h *CategoriesHandler) Attach(c *fiber.Ctx) error {
	currentUser := middleware.GetCurrentUser(c)
	if currentUser == nil {
		return utils.Error(c, fiber.StatusUnauthorized, "unauthorized")
	}

	groupID, err := parseUUID(c.Params("id"))
	if err != nil {
		return utils.Error(c, fiber.StatusBadRequest, "invalid group id")
	}

	if _, err := h.Access.ActiveAdminGroup(groupID, currentUser.ID); err != nil {
		return accessError(c, err)
	}

	var req attachCategoryRequest
	if err := c.BodyParser(&req); err != nil {
		return utils.Error(c, fiber.StatusBadRequest, "invalid request body")
	}

	title := models.NormalizeCategoryTitle(req.Title)
	if title == "" {
		return utils.Error(c, fiber.StatusBadRequest, "title is required")
	}

	var link models.CategoryGroup
	txErr := h.DB.Transaction(func(tx *gorm.DB) error {
		var category models.Category
		err := tx.First(&category, "title = ?", title).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			category = models.Category{Title: title}
			err = tx.Create(&category).Error
		}
		if err != nil {
			return err
		}

		var existing models.CategoryGroup
		err = tx.First(&existing, "category_id = ? AND group_id = ?", category.ID, groupID).Error
		if err == nil {
			return errCategoryAttached
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}

		link = models.CategoryGroup{
			CategoryID: category.ID,
			GroupID:    groupID,
			IconURL:    strings.TrimSpace(req.IconURL),
			ColorCode:  strings.TrimSpace(req.ColorCode),
		}
		if err := tx.Create(&link).Error; err != nil {
			return err
		}
		link.Category = category
		return nil
	})
	if errors.Is(txErr, errCategoryAttached) {
		return utils.Error(c, fiber.StatusConflict, errCategoryAttached.Error())
	}
	if txErr != nil {
		return utils.Error(c, fiber.StatusServiceUnavailable, "failed attaching category")
	}

	logger.InfoWithUser(currentUser.ID.String(), "category_attached", map[string]interface{}{
		"group_id":       groupID.String(),
		"category_title": title,
	})

	return utils.Success(c, fiber.StatusCreated, link)
}

var errCategoryAttached = errors.New("the category is already in this group")

type updateCategoryStyleRequest struct {
	IconURL   string `json:"iconURL"`
	ColorCode string `json:"colorCode"`
}

// UpdateStyle changes the group-local icon and color of an attached category.
// The shared title is immutable here; restyling never touches other groups.
func (h *CategoriesHandler) UpdateStyle(c *fiber.Ctx) error {
	currentUser := middleware.GetCurrentUser(c)
	if currentUser == nil {
		return utils.Error(c, fiber.StatusUnauthorized, "unauthorized")
	}

	groupID, err := parseUUID(c.Params("id"))
	if err != nil {
		return utils.Error(c, fiber.StatusBadRequest, "invalid group id")
	}
	categoryID, err := parseUUID(c.Params("categoryId"))
	if err != nil {
		return utils.Error(c, fiber.StatusBadRequest, "invalid category id")
	}

	if _, err := h.Access.ActiveAdminGroup(groupID, currentUser.ID); err != nil {
		return accessError(c, err)
	}

	var req updateCategoryStyleRequest
	if err := c.BodyParser(&req); err != nil {
		return utils.Error(c, fiber.StatusBadRequest, "invalid request body")
	}

	var link models.CategoryGroup
	err = h.DB.Preload("Category").
		First(&link, "category_id = ? AND group_id = ?", categoryID, groupID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return utils.Error(c, fiber.StatusNotFound, "the category is not in this group")
	}
	if err != nil {
		return utils.Error(c, fiber.StatusServiceUnavailable, "failed loading category")
	}

	updates := map[string]interface{}{
		"icon_url":   strings.TrimSpace(req.IconURL),
		"color_code": strings.TrimSpace(req.ColorCode),
	}
	if err := h.DB.Model(&link).Updates(updates).Error; err != nil {
		return utils.Error(c, fiber.StatusServiceUnavailable, "failed updating category")
	}

	return utils.Success(c, fiber.StatusOK, link)
}
