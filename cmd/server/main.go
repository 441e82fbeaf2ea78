package main

import (
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/ansrivas/fiberprometheus/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/compress"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	swagger "github.com/gofiber/swagger"
	"github.com/teamdesk/teamdesk/internal/auth"
	"github.com/teamdesk/teamdesk/internal/config"
	"github.com/teamdesk/teamdesk/internal/database"
	"github.com/teamdesk/teamdesk/internal/handlers"
	"github.com/teamdesk/teamdesk/internal/mailer"
	"github.com/teamdesk/teamdesk/internal/middleware"
	"github.com/teamdesk/teamdesk/internal/realtime"
	"github.com/teamdesk/teamdesk/internal/services"
	"github.com/teamdesk/teamdesk/internal/storage"

	_ "github.com/teamdesk/teamdesk/docs/api" // Swagger docs
)

// @title TeamDesk API
// @version 1.0.0
// @description Project management service: projects, tasks, documents and messaging
// @termsOfService http://swagger.io/terms/

// @contact.name API Support
// @contact.url https://github.com/teamdesk/teamdesk

// @host localhost:3000
// @BasePath /api
// @schemes http https

// @securityDefinitions.apikey Bearer
// @in header
// @name Authorization

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Connect to database
	db, err := database.Connect(cfg)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer database.Close(db)

	// Run auto-migrations
	if err := database.AutoMigrate(db); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}

	// Bootstrap admin on an empty users table
	if admin, err := services.SeedAdmin(db, cfg.AdminEmail, cfg.AdminPassword); err != nil {
		log.Fatalf("Failed to seed admin account: %v", err)
	} else if admin != nil {
		log.Printf("Seeded bootstrap admin %s", admin.Email)
	}

	// File storage
	files, err := storage.New(cfg.UploadDir)
	if err != nil {
		log.Fatalf("Failed to initialize file storage: %v", err)
	}

	// Collaborators
	tokens := auth.NewTokenManager(cfg.JWTSecret, cfg.AccessTokenTTLHours, cfg.RefreshTokenTTLHours)
	mail := mailer.New(mailer.Config{
		Host:     cfg.SMTPHost,
		Port:     cfg.SMTPPort,
		Username: cfg.SMTPUser,
		Password: cfg.SMTPPassword,
		From:     cfg.SMTPFrom,
	})
	hub := realtime.NewHub()

	// Create Fiber app
	app := fiber.New(fiber.Config{
		ErrorHandler:          customErrorHandler,
		DisableStartupMessage: false,
	})

	// Global middleware
	app.Use(recover.New())
	app.Use(logger.New())
	app.Use(compress.New())

	// Prometheus metrics
	prometheus := fiberprometheus.New("teamdesk")
	prometheus.RegisterAt(app, "/metrics")
	app.Use(prometheus.Middleware)

	// Swagger documentation
	app.Get("/swagger/*", swagger.HandlerDefault)

	// Websocket subscription endpoint. gorilla/websocket upgrades net/http
	// requests, so the handler is mounted through fiber's adaptor.
	app.Get("/ws", adaptor.HTTPHandlerFunc(hub.Handler(tokens, db)))

	// API routes under /api
	api := app.Group("/api")

	// Version middleware
	api.Use(middleware.VersionMiddleware())

	// Create handlers
	authHandler := &handlers.AuthHandler{DB: db, Tokens: tokens, Mail: mail}
	userHandler := &handlers.UserHandler{DB: db}
	projectHandler := &handlers.ProjectHandler{DB: db, Files: files, Hub: hub}
	taskHandler := &handlers.TaskHandler{DB: db, Hub: hub}
	folderHandler := &handlers.FolderHandler{DB: db}
	documentHandler := &handlers.DocumentHandler{DB: db, Files: files}
	messageHandler := &handlers.MessageHandler{DB: db, Hub: hub}
	statsHandler := &handlers.StatsHandler{DB: db, Cfg: cfg}

	// Health probe (unauthenticated, used by orchestrators)
	api.Get("/health", statsHandler.Health)

	// Credential issuance
	api.Post("/auth/login", authHandler.Login)
	api.Post("/auth/register", authHandler.Register)
	api.Post("/auth/refresh", authHandler.Refresh)

	// Everything below requires a valid bearer token
	protected := api.Group("", middleware.Protected(tokens))

	// Self-service profile and settings
	protected.Get("/me", userHandler.Me)
	protected.Put("/me", userHandler.UpdateMe)
	protected.Get("/settings", userHandler.GetSettings)
	protected.Put("/settings", userHandler.SaveSettings)

	// User administration (admin only)
	users := protected.Group("/users", middleware.RequireAdmin())
	users.Get("/", userHandler.List)
	users.Post("/", userHandler.Create)
	users.Get("/:id", userHandler.Get)
	users.Put("/:id", userHandler.Update)
	users.Delete("/:id", userHandler.Delete)

	// Projects; per-project permission checks happen against the row
	protected.Get("/projects", projectHandler.List)
	protected.Post("/projects", middleware.RequireManagerOrAdmin(), projectHandler.Create)
	protected.Get("/projects/:id", projectHandler.Get)
	protected.Put("/projects/:id", projectHandler.Update)
	protected.Delete("/projects/:id", projectHandler.Delete)

	// Tasks
	protected.Get("/projects/:id/tasks", taskHandler.List)
	protected.Post("/projects/:id/tasks", taskHandler.Create)
	protected.Post("/projects/:id/tasks/:taskId/subtasks", taskHandler.CreateSubtask)
	protected.Put("/tasks/:id", taskHandler.Update)
	protected.Patch("/tasks/:id/progress", taskHandler.UpdateProgress)
	protected.Delete("/tasks/:id", taskHandler.Delete)

	// Document folders
	protected.Get("/folders/project/:projectId", folderHandler.Tree)
	protected.Post("/folders/project/:projectId", folderHandler.Create)
	protected.Put("/folders/:id", folderHandler.Update)
	protected.Put("/folders/:id/move", folderHandler.Move)
	protected.Delete("/folders/:id", folderHandler.Delete)

	// Documents
	protected.Get("/documents/project/:projectId", documentHandler.List)
	protected.Post("/documents/project/:projectId", documentHandler.Upload)
	protected.Get("/documents/:id/download", documentHandler.Download)
	protected.Put("/documents/:id/folder", documentHandler.SetFolder)
	protected.Delete("/documents/:id", documentHandler.Delete)

	// Messages
	protected.Get("/messages", messageHandler.List)
	protected.Post("/messages", messageHandler.Send)
	protected.Patch("/messages/:id/read", messageHandler.MarkRead)

	// Statistics
	protected.Get("/stats/overview", middleware.RequireAdmin(), statsHandler.Overview)
	protected.Get("/stats/projects/:id", projectHandler.Stats)

	// 404 handler
	app.Use(func(c *fiber.Ctx) error {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"status":    fiber.StatusNotFound,
			"message":   "[404] Resource Not Found",
			"ok":        false,
			"timestamp": time.Now().UTC().Format(time.RFC3339),
			"url":       c.OriginalURL(),
		})
	})

	// Graceful shutdown
	c := make(chan os.Signal, 1)
	signal.Notify(c, os.Interrupt, syscall.SIGTERM)

	go func() {
		<-c
		log.Println("Gracefully shutting down...")
		_ = app.Shutdown()
	}()

	// Start server
	port := cfg.Port
	log.Printf("Starting server on port %s", port)
	if err := app.Listen(":" + port); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}

	log.Println("Server stopped")
}

// customErrorHandler handles errors globally
func customErrorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	message := err.Error()

	if e, ok := err.(*fiber.Error); ok {
		code = e.Code
		message = e.Message
	}

	return c.Status(code).JSON(fiber.Map{
		"status":    code,
		"message":   message,
		"ok":        false,
		"timestamp": time.Now().UTC().Format(time.RFC3339),
		"url":       c.OriginalURL(),
		"type":      "unknown",
	})
}
