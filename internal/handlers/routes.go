package handlers

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"go.uber.org/zap"

	"alfredoptarigan/talent-screener/internal/logger"
	"alfredoptarigan/talent-screener/internal/services"
)

const appName = "Talent Screener API"

// Dependencies are the services shared by all handlers.
type Dependencies struct {
	Session  *services.Session
	Uploads  services.UploadService
	Analyzer services.Analyzer
	Tracker  services.BatchTracker
	Log      *zap.Logger
}

// NewApp builds the fiber application with middleware and all API routes.
func NewApp(deps Dependencies, bodyLimit int) *fiber.App {
	log := logger.OrNop(deps.Log)

	app := fiber.New(fiber.Config{
		AppName:      appName,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
		BodyLimit:    bodyLimit,
		ErrorHandler: ErrorHandler,
	})

	app.Use(recover.New())
	app.Use(requestLogger(log))
	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowMethods: "GET,POST,PUT,DELETE,OPTIONS",
		AllowHeaders: "Origin, Content-Type, Accept, Authorization",
	}))

	uploadHandler := NewUploadHandler(deps.Session, deps.Uploads, log)
	analysisHandler := NewAnalysisHandler(deps.Session, deps.Tracker)
	resultHandler := NewResultHandler(deps.Session, deps.Analyzer, deps.Tracker, log)
	weightsHandler := NewWeightsHandler(deps.Session)

	api := app.Group("/api/v1")

	api.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status": "healthy",
			"time":   time.Now(),
		})
	})

	api.Post("/job-description", uploadHandler.HandleJobDescription)
	api.Post("/candidates/files", uploadHandler.HandleCandidateFiles)
	api.Get("/candidates/files", uploadHandler.HandleListFiles)
	api.Delete("/candidates/files/:id", uploadHandler.HandleDeleteFile)

	api.Post("/analyze", analysisHandler.HandleAnalyze)
	api.Get("/analyze", analysisHandler.HandleStatus)

	api.Get("/candidates", resultHandler.HandleListCandidates)
	api.Get("/candidates/:id", resultHandler.HandleGetCandidate)
	api.Delete("/candidates/:id", resultHandler.HandleDeleteCandidate)
	api.Post("/candidates/:id/interview-questions", resultHandler.HandleInterviewQuestions)
	api.Post("/candidates/:id/email", resultHandler.HandleEmail)

	api.Get("/weights", weightsHandler.HandleGetWeights)
	api.Put("/weights", weightsHandler.HandleUpdateWeights)

	api.Get("/export.csv", resultHandler.HandleExportCSV)
	api.Get("/export.txt", resultHandler.HandleExportText)
	api.Post("/reset", resultHandler.HandleReset)

	app.Get("/", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"message": appName,
			"version": "1.0.0",
			"endpoints": []string{
				"POST /api/v1/job-description",
				"POST /api/v1/candidates/files",
				"POST /api/v1/analyze",
				"GET /api/v1/candidates",
				"PUT /api/v1/weights",
				"GET /api/v1/export.csv",
			},
		})
	})

	return app
}

func requestLogger(log *zap.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()
		err := c.Next()

		status := c.Response().StatusCode()
		if err != nil {
			if e, ok := err.(*fiber.Error); ok {
				status = e.Code
			} else {
				status = fiber.StatusInternalServerError
			}
		}

		log.Info("request",
			zap.String("method", c.Method()),
			zap.String("path", c.Path()),
			zap.Int("status", status),
			zap.Duration("latency", time.Since(start)),
		)
		return err
	}
}
