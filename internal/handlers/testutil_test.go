package handlers

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/groupledger/backend/internal/database"
	"github.com/groupledger/backend/internal/middleware"
	"github.com/groupledger/backend/internal/models"
	"github.com/groupledger/backend/internal/services"
	"github.com/groupledger/backend/pkg/logger"
	"github.com/groupledger/backend/pkg/utils"
	"gorm.io/gorm"
)

type testEnv struct {
	app *fiber.App
	db  *gorm.DB
}

var testSetupOnce sync.Once

func setupTestEnv(t *testing.T) *testEnv {
	t.Helper()

	testSetupOnce.Do(func() {
		logger.Init()
		utils.ConfigureJWT("test-secret", 24)
	})

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	if err != nil {
		t.Fatalf("failed opening in-memory sqlite database: %v", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("failed getting sql.DB from gorm: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)

	t.Cleanup(func() {
		_ = sqlDB.Close()
	})

	if err := database.Migrate(db); err != nil {
		t.Fatalf("failed automigrating models: %v", err)
	}

	accessService := services.NewAccessService(db)
	analyticsService := services.NewAnalyticsService(db)

	authHandler := NewAuthHandler(db)
	usersHandler := NewUsersHandler(db)
	groupsHandler := NewGroupsHandler(db, accessService)
	invitationsHandler := NewInvitationsHandler(db, accessService)
	categoriesHandler := NewCategoriesHandler(db, accessService)
	expensesHandler := NewExpensesHandler(db, accessService)
	replenishmentsHandler := NewReplenishmentsHandler(db)
	analyticsHandler := NewAnalyticsHandler(accessService, analyticsService)
	authMiddleware := middleware.NewAuthMiddleware(db)

	app := fiber.New(fiber.Config{AppName: "groupledger-test"})
	app.Use(recover.New(recover.Config{EnableStackTrace: true}))
	app.Use(middleware.CORS("http://localhost:3001"))
	app.Use(middleware.RequestLogger())

	api := app.Group("/api")

	authRoutes := api.Group("/auth")
	authRoutes.Post("/register", authHandler.Register)
	authRoutes.Post("/login", authHandler.Login)
	authRoutes.Get("/me", authMiddleware.RequireAuth, authHandler.Me)

	userRoutes := api.Group("/users", authMiddleware.RequireAuth)
	userRoutes.Get("/", usersHandler.List)
	userRoutes.Get("/:id", usersHandler.Get)

	groupRoutes := api.Group("/groups", authMiddleware.RequireAuth)
	groupRoutes.Post("/", groupsHandler.Create)
	groupRoutes.Get("/", groupsHandler.List)
	groupRoutes.Put("/:id", groupsHandler.Update)
	groupRoutes.Delete("/:id/leave", groupsHandler.Leave)
	groupRoutes.Get("/:id/members", groupsHandler.Members)
	groupRoutes.Delete("/:id/members/:userId", groupsHandler.RemoveMember)
	groupRoutes.Get("/:id/categories", groupsHandler.Categories)
	groupRoutes.Post("/:id/categories", categoriesHandler.Attach)
	groupRoutes.Put("/:id/categories/:categoryId", categoriesHandler.UpdateStyle)

	invitationRoutes := api.Group("/invitations", authMiddleware.RequireAuth)
	invitationRoutes.Post("/", invitationsHandler.Create)
	invitationRoutes.Get("/", invitationsHandler.ListPending)
	invitationRoutes.Post("/:id/respond", invitationsHandler.Respond)

	expenseRoutes := api.Group("/expenses", authMiddleware.RequireAuth)
	expenseRoutes.Post("/", expensesHandler.Create)
	expenseRoutes.Get("/", expensesHandler.List)
	expenseRoutes.Put("/:id", expensesHandler.Update)
	expenseRoutes.Delete("/:id", expensesHandler.Delete)

	replenishmentRoutes := api.Group("/replenishments", authMiddleware.RequireAuth)
	replenishmentRoutes.Post("/", replenishmentsHandler.Create)
	replenishmentRoutes.Get("/", replenishmentsHandler.List)
	replenishmentRoutes.Put("/:id", replenishmentsHandler.Update)
	replenishmentRoutes.Delete("/:id", replenishmentsHandler.Delete)

	analyticsRoutes := api.Group("/analytics", authMiddleware.RequireAuth)
	analyticsRoutes.Get("/balance", analyticsHandler.Balance)
	analyticsRoutes.Get("/expenses/total", analyticsHandler.UserExpenseTotal)
	analyticsRoutes.Get("/groups/:id/total", analyticsHandler.GroupExpenseTotal)
	analyticsRoutes.Get("/groups/:id/by-category", analyticsHandler.GroupByCategory)
	analyticsRoutes.Get("/groups/:id/by-day", analyticsHandler.GroupByDay)
	analyticsRoutes.Get("/groups/:id/by-member", analyticsHandler.GroupByMember)

	return &testEnv{app: app, db: db}
}

func createTestUser(t *testing.T, db *gorm.DB, email, password string) (*models.User, string) {
	t.Helper()

	hash, err := utils.HashPassword(password)
	if err != nil {
		t.Fatalf("failed hashing password: %v", err)
	}

	user := &models.User{
		Email:        email,
		PasswordHash: hash,
		FirstName:    "Test",
		LastName:     "User",
	}
	if err := db.Create(user).Error; err != nil {
		t.Fatalf("failed creating test user: %v", err)
	}

	token, err := utils.GenerateToken(user)
	if err != nil {
		t.Fatalf("failed generating auth token: %v", err)
	}

	return user, token
}

func mustUUID(t *testing.T, value string) uuid.UUID {
	t.Helper()

	id, err := uuid.Parse(value)
	if err != nil {
		t.Fatalf("failed parsing uuid %q: %v", value, err)
	}
	return id
}

func joinGroup(t *testing.T, db *gorm.DB, userID, groupID uuid.UUID) *models.Membership {
	t.Helper()

	membership := &models.Membership{
		UserID:   userID,
		GroupID:  groupID,
		Status:   models.MembershipStatusActive,
		DateJoin: time.Now().UTC(),
	}
	if err := db.Create(membership).Error; err != nil {
		t.Fatalf("failed creating membership: %v", err)
	}
	return membership
}

func createGroup(t *testing.T, app *fiber.App, token, title string) string {
	t.Helper()

	resp := performJSONRequest(t, app, http.MethodPost, "/api/groups/", map[string]any{
		"title": title,
	}, authHeaders(token))
	body := decodeJSONMap(t, resp)
	assertStatus(t, resp, http.StatusCreated)
	return body["data"].(map[string]any)["id"].(string)
}

func authHeaders(token string) map[string]string {
	return map[string]string{"Authorization": "Bearer " + token}
}

func performRequest(t *testing.T, app *fiber.App, method, path string, body io.Reader, headers map[string]string) *http.Response {
	t.Helper()

	req := httptest.NewRequest(method, path, body)
	for key, value := range headers {
		req.Header.Set(key, value)
	}

	resp, err := app.Test(req, int((10 * time.Second).Milliseconds()))
	if err != nil {
		t.Fatalf("request %s %s failed: %v", method, path, err)
	}

	return resp
}

func performJSONRequest(t *testing.T, app *fiber.App, method, path string, payload any, headers map[string]string) *http.Response {
	t.Helper()

	var body io.Reader
	if payload != nil {
		encoded, err := json.Marshal(payload)
		if err != nil {
			t.Fatalf("failed to marshal payload: %v", err)
		}
		body = bytes.NewReader(encoded)
	}

	requestHeaders := map[string]string{}
	for key, value := range headers {
		requestHeaders[key] = value
	}
	if payload != nil {
		requestHeaders["Content-Type"] = "application/json"
	}

	return performRequest(t, app, method, path, body, requestHeaders)
}

func decodeJSONMap(t *testing.T, resp *http.Response) map[string]any {
	t.Helper()
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("failed reading response body: %v", err)
	}

	var payload map[string]any
	if err := json.Unmarshal(raw, &payload); err != nil {
		t.Fatalf("failed decoding JSON response: %v body=%q", err, string(raw))
	}

	return payload
}

func assertStatus(t *testing.T, resp *http.Response, expected int) {
	t.Helper()
	if resp.StatusCode != expected {
		t.Fatalf("expected status %d, got %d", expected, resp.StatusCode)
	}
}

func assertEnvelopeError(t *testing.T, body map[string]any, expected string) {
	t.Helper()
	if success, _ := body["success"].(bool); success {
		t.Fatalf("expected success=false, got %+v", body)
	}
	if got, _ := body["error"].(string); got != expected {
		t.Fatalf("expected error %q, got %q", expected, got)
	}
}
