package routes

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"gorm.io/gorm"

	controller "tracklie/controllers"
	"tracklie/middleware"
)

func SetupAuthRoutes(app *fiber.App, db *gorm.DB) {
	// Auth routes group with logging middleware
	auth := app.Group("/auth", logger.New(logger.Config{
		Format: "[${time}] ${status} - ${latency} ${method} ${path}\n",
	}))

	// Public auth endpoints (no authentication required)
	auth.Post("/register", controller.Register)
	auth.Post("/login", controller.Login)
	auth.Post("/refresh", controller.RefreshToken)

	// Protected auth endpoints (require valid JWT)
	protectedAuth := auth.Group("", middleware.Protected())
	protectedAuth.Post("/logout", controller.Logout)
	protectedAuth.Get("/me", controller.GetCurrentUser)
}

func SetupAPIRoutes(app *fiber.App, db *gorm.DB) {
	// API group with versioning and protection
	api := app.Group("/api/v1", middleware.Protected(), logger.New(logger.Config{
		Format: "[${time}] ${status} - ${latency} ${method} ${path}\n",
	}))

	// Lead CRUD routes
	lead := api.Group("/leads")
	lead.Post("/", controller.CreateLead)
	lead.Get("/", controller.GetLeads)
	lead.Get("/stats/overview", controller.GetLeadStats)
	lead.Get("/drop-reasons", controller.GetDropReasons)
	lead.Get("/:id", controller.GetLead)
	lead.Put("/:id", controller.UpdateLead)
	lead.Delete("/:id", controller.DeleteLead)
	lead.Post("/:id/assign", controller.AssignLead)

	// Lifecycle routes
	lead.Patch("/:id/status", controller.UpdateLeadStatus)
	lead.Patch("/:id/interest", controller.UpdateLeadInterest)
	lead.Post("/:id/cnp", controller.MarkLeadCNP)
	lead.Post("/:id/convert", controller.ConvertLead)
	lead.Post("/:id/drop", controller.DropLead)
	lead.Get("/:id/status-history", controller.GetLeadStatusHistory)
}

// SetupWebhookRoutes registers the unauthenticated lead-intake webhook. It
// sits outside the /api/v1 group so the JWT middleware never sees it.
func SetupWebhookRoutes(app *fiber.App) {
	webhook := app.Group("/webhook", middleware.WebhookRateLimiter())
	webhook.Post("/leads", controller.WebhookCreateLead)
}

func SetupRoutes(app *fiber.App, db *gorm.DB) {
	// Setup health check endpoint
	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok"})
	})

	// Setup auth routes
	SetupAuthRoutes(app, db)

	// Setup API routes
	SetupAPIRoutes(app, db)

	// Setup webhook routes
	SetupWebhookRoutes(app)

	// Setup 404 handler
	app.Use(func(c *fiber.Ctx) error {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error":   "Not Found",
			"message": "The requested resource was not found",
		})
	})
}
