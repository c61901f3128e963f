package handlers

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/groupledger/backend/internal/models"
	"github.com/groupledger/backend/internal/services"
	"github.com/groupledger/backend/pkg/logger"
	"github.com/groupledger/backend/pkg/utils"
	"gorm.io/gorm"
)

// SSOHandler implements Google sign-in: accounts are created on first
// successful login with the profile's email as the unique login.
type SSOHandler struct {
	DB    *gorm.DB
	OAuth *services.OAuthProviderService
}

func NewSSOHandler(db *gorm.DB, oauth *services.OAuthProviderService) *SSOHandler {
	return &SSOHandler{DB: db, OAuth: oauth}
}

const oauthStateCookie = "oauth_state"

func (h *SSOHandler) GetLoginRedirect(c *fiber.Ctx) error {
	oauthCfg, err := h.OAuth.GoogleConfig()
	if err != nil {
		return utils.Error(c, fiber.StatusNotFound, err.Error())
	}

	state, err := h.OAuth.GenerateState()
	if err != nil {
		return utils.Error(c, fiber.StatusInternalServerError, "failed generating oauth state")
	}

	c.Cookie(&fiber.Cookie{
		Name:     oauthStateCookie,
		Value:    state,
		Expires:  time.Now().Add(10 * time.Minute),
		HTTPOnly: true,
		SameSite: "Lax",
	})

	return c.Redirect(oauthCfg.AuthCodeURL(state), fiber.StatusTemporaryRedirect)
}

func (h *SSOHandler) HandleCallback(c *fiber.Ctx) error {
	state := c.Query("state")
	if state == "" || state != c.Cookies(oauthStateCookie) {
		return utils.Error(c, fiber.StatusBadRequest, "invalid oauth state")
	}
	code := c.Query("code")
	if code == "" {
		return utils.Error(c, fiber.StatusBadRequest, "missing authorization code")
	}

	token, err := h.OAuth.ExchangeCode(c.Context(), code)
	if err != nil {
		return utils.Error(c, fiber.StatusUnauthorized, err.Error())
	}

	profile, err := h.OAuth.GetUserInfo(c.Context(), token)
	if err != nil {
		return utils.Error(c, fiber.StatusUnauthorized, "failed loading google profile")
	}

	user, err := h.findOrCreateUser(profile)
	if err != nil {
		return utils.Error(c, fiber.StatusServiceUnavailable, "failed creating user")
	}

	jwtToken, err := utils.GenerateToken(user)
	if err != nil {
		return utils.Error(c, fiber.StatusInternalServerError, "failed generating token")
	}

	return utils.Success(c, fiber.StatusOK, fiber.Map{"token": jwtToken, "user": user})
}

func (h *SSOHandler) findOrCreateUser(profile *services.OAuthProfile) (*models.User, error) {
	var user models.User
	err := h.DB.First(&user, "email = ?", profile.Email).Error
	if err == nil {
		return &user, nil
	}
	if err != gorm.ErrRecordNotFound {
		return nil, err
	}

	provider := "google"
	user = models.User{
		Email:        profile.Email,
		FirstName:    profile.FirstName,
		LastName:     profile.LastName,
		AvatarURL:    profile.AvatarURL,
		AuthProvider: &provider,
	}
	if err := h.DB.Create(&user).Error; err != nil {
		return nil, err
	}

	logger.Info("user_registered_via_google", map[string]interface{}{
		"user_id": user.ID.String(),
		"email":   user.Email,
	})
	return &user, nil
}
