package server

import (
	"log"

	"far-compliance-be/internal/bootstrap"
	"far-compliance-be/internal/config"
	"far-compliance-be/internal/pkg/serverutils"
	"far-compliance-be/pkg/upload"

	"github.com/gofiber/contrib/otelfiber"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/cors"
)

// multipartOverhead leaves room for form boundaries and headers on top of a
// full batch of maximum-size files.
const multipartOverhead = 1024 * 1024

type Server struct {
	app       *fiber.App
	cfg       *config.Config
	container *bootstrap.Container
}

func New(cfg *config.Config, container *bootstrap.Container) *Server {
	rules := bootstrap.UploadRules(cfg.Upload)
	bodyLimit := rules.MaxFileSizeBytes*int64(rules.MaxFiles) + multipartOverhead
	if bodyLimit <= 0 {
		bodyLimit = upload.DefaultMaxFileSizeBytes + multipartOverhead
	}

	app := fiber.New(fiber.Config{
		BodyLimit: int(bodyLimit),
	})

	// Middleware
	app.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.App.CorsAllowedOrigins,
		AllowCredentials: true,
		AllowHeaders:     "Origin, Content-Type, Accept, Authorization",
		AllowMethods:     "GET, POST, PUT, PATCH, DELETE, OPTIONS",
		ExposeHeaders:    "Content-Length, Content-Type, Authorization",
	}))

	// OpenTelemetry tracing middleware (traces all HTTP requests)
	app.Use(otelfiber.Middleware())

	app.Use(serverutils.ErrorHandlerMiddleware())

	app.Get("/metrics", adaptor.HTTPHandler(container.Metrics.Handler()))

	if cfg.Storage.Driver != "s3" {
		app.Static("/uploads", cfg.Storage.LocalDir)
	}

	registerRoutes(app, cfg, container)

	return &Server{
		app:       app,
		cfg:       cfg,
		container: container,
	}
}

func (s *Server) GetApp() *fiber.App {
	return s.app
}

func (s *Server) Run() error {
	log.Printf("✅ Server is running on http://localhost:%s", s.cfg.App.Port)
	return s.app.Listen(":" + s.cfg.App.Port)
}

func (s *Server) Shutdown() error {
	return s.app.Shutdown()
}

func registerRoutes(app *fiber.App, cfg *config.Config, c *bootstrap.Container) {
	api := app.Group("/api", serverutils.NewJwtMiddleware(cfg.Auth.JwtSecret))

	c.UsageController.RegisterRoutes(api)
	c.DocumentController.RegisterRoutes(api)
	c.AnalysisController.RegisterRoutes(api)
	c.TeamController.RegisterRoutes(api)
	c.AdminController.RegisterRoutes(api)
}
