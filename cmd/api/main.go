package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"

	"alfredoptarigan/exam-grader/internal/config"
	"alfredoptarigan/exam-grader/internal/handlers"
)

func main() {
	// Load configuration
	cfg := config.Load()
	log.Println("✅ Config loaded successfully")

	// Initialize orchestration session
	session, err := config.InitSession(context.Background(), cfg)
	if err != nil {
		log.Fatalf("❌ Failed to initialize AI session: %v", err)
	}
	provider, _ := session.Settings()
	log.Printf("✅ AI session initialized with provider %s\n", provider)

	// Create Fiber app
	app := fiber.New(fiber.Config{
		AppName:      "Exam Grader API",
		ReadTimeout:  60 * time.Second,
		WriteTimeout: 5 * time.Minute,
		BodyLimit:    int(cfg.Upload.MaxBodySize),
		ErrorHandler: handlers.ErrorHandler,
	})

	// Middleware
	app.Use(recover.New())
	app.Use(handlers.RequestID())
	app.Use(logger.New(logger.Config{
		Format:     "[${time}] ${status} - ${latency} ${method} ${path} ${respHeader:X-Request-ID}\n",
		TimeFormat: "2006-01-02 15:04:05",
	}))

	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowMethods: "GET,POST,PUT,OPTIONS",
		AllowHeaders: "Origin, Content-Type, Accept, X-Request-ID",
	}))

	// Routes
	handlers.Register(app, session, cfg.Upload.MaxImages)

	// Root route
	app.Get("/", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"message": "Exam Grader API",
			"version": "1.0.0",
			"endpoints": []string{
				"GET /api/v1/settings",
				"PUT /api/v1/settings",
				"POST /api/v1/grade",
				"POST /api/v1/ocr",
				"POST /api/v1/ocr/batch",
				"POST /api/v1/ocr/table",
				"POST /api/v1/homework",
				"POST /api/v1/essay",
				"POST /api/v1/essay/guide",
				"POST /api/v1/essay/examples",
				"POST /api/v1/tutor",
				"POST /api/v1/overlay",
			},
		})
	})

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		<-quit
		log.Println("\n🛑 Shutting down server...")
		if err := app.Shutdown(); err != nil {
			log.Printf("❌ Server forced to shutdown: %v", err)
		}
	}()

	// Start server
	addr := fmt.Sprintf(":%s", cfg.Server.Port)
	log.Printf("🚀 Server starting on %s\n", addr)

	if err := app.Listen(addr); err != nil {
		log.Fatalf("❌ Failed to start server: %v", err)
	}
}
