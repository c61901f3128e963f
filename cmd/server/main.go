package main

import (
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/groupledger/backend/internal/config"
	"github.com/groupledger/backend/internal/database"
	"github.com/groupledger/backend/internal/handlers"
	"github.com/groupledger/backend/internal/metrics"
	"github.com/groupledger/backend/internal/middleware"
	"github.com/groupledger/backend/internal/services"
	"github.com/groupledger/backend/pkg/logger"
	"github.com/groupledger/backend/pkg/utils"
)

func main() {
	logger.Init()

	cfg := config.Load()
	utils.ConfigureJWT(cfg.JWT.Secret, cfg.JWT.ExpirationHours)

	db, err := database.Connect(cfg.DB)
	if err != nil {
		log.Fatalf("database connection failed: %v", err)
	}

	accessService := services.NewAccessService(db)
	analyticsService := services.NewAnalyticsService(db)
	oauthService := services.NewOAuthProviderService(cfg)

	authHandler := handlers.NewAuthHandler(db)
	ssoHandler := handlers.NewSSOHandler(db, oauthService)
	usersHandler := handlers.NewUsersHandler(db)
	groupsHandler := handlers.NewGroupsHandler(db, accessService)
	invitationsHandler := handlers.NewInvitationsHandler(db, accessService)
	categoriesHandler := handlers.NewCategoriesHandler(db, accessService)
	expensesHandler := handlers.NewExpensesHandler(db, accessService)
	replenishmentsHandler := handlers.NewReplenishmentsHandler(db)
	analyticsHandler := handlers.NewAnalyticsHandler(accessService, analyticsService)

	authMiddleware := middleware.NewAuthMiddleware(db)

	app := fiber.New(fiber.Config{AppName: "groupledger"})
	app.Use(recover.New(recover.Config{EnableStackTrace: true}))
	app.Use(middleware.CORS(cfg.Server.FrontendURL))
	app.Use(middleware.RequestLogger())

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.Status(fiber.StatusOK).JSON(fiber.Map{"status": "ok"})
	})

	api := app.Group("/api")

	authRoutes := api.Group("/auth")
	authRoutes.Post("/register", authHandler.Register)
	authRoutes.Post("/login", authHandler.Login)
	authRoutes.Get("/me", authMiddleware.RequireAuth, authHandler.Me)
	authRoutes.Get("/sso/google", ssoHandler.GetLoginRedirect)
	authRoutes.Get("/sso/google/callback", ssoHandler.HandleCallback)

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

	if cfg.Metrics.Enabled {
		go func() {
			addr := fmt.Sprintf(":%s", cfg.Metrics.Port)
			if err := metrics.Serve(addr); err != nil {
				log.Printf("metrics listener error: %v", err)
			}
		}()
	}

	listenAddr := fmt.Sprintf(":%s", cfg.Server.Port)

	logger.Info("server_starting", map[string]interface{}{
		"port":    cfg.Server.Port,
		"address": listenAddr,
	})

	errCh := make(chan error, 1)
	go func() {
		errCh <- app.Listen(listenAddr)
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-quit:
		log.Printf("shutting down server due to signal: %s", sig)
		shutdownDone := make(chan struct{})
		go func() {
			_ = app.Shutdown()
			close(shutdownDone)
		}()
		select {
		case <-shutdownDone:
		case <-time.After(10 * time.Second):
			log.Print("forced shutdown timeout reached")
		}
	case err := <-errCh:
		if err != nil {
			log.Fatalf("server error: %v", err)
		}
	}
}
