package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	"github.com/facultrack/attendance-backend/internal/config"
	"github.com/facultrack/attendance-backend/internal/database"
	"github.com/facultrack/attendance-backend/internal/handler"
	"github.com/facultrack/attendance-backend/internal/logger"
	"github.com/facultrack/attendance-backend/internal/middleware"
	"github.com/facultrack/attendance-backend/internal/ocr"
	"github.com/facultrack/attendance-backend/internal/repository"
	"github.com/facultrack/attendance-backend/internal/router"
	"github.com/facultrack/attendance-backend/internal/service"
	"github.com/facultrack/attendance-backend/internal/validator"
	"github.com/facultrack/attendance-backend/internal/worker"
)

const authRateWindow = 15 * time.Minute

func main() {
	// ─── Load Configuration ────────────────────────────────────────────
	cfg := config.Load()

	// ─── Initialize Logger ─────────────────────────────────────────────
	log := logger.Setup(cfg.LogLevel, cfg.LogFormat)
	log.Info().
		Str("port", cfg.ServerPort).
		Str("mode", cfg.GinMode).
		Str("log_level", cfg.LogLevel).
		Bool("ocr_enabled", cfg.OCREndpoint != "").
		Msg("Starting attendance backend")

	if err := cfg.Validate(); err != nil {
		log.Fatal().Err(err).Msg("Invalid configuration")
	}

	validator.Setup()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// ─── Connect to PostgreSQL ─────────────────────────────────────────
	pool, err := database.NewPostgresPool(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to PostgreSQL")
	}
	defer pool.Close()

	// ─── Connect to Redis ──────────────────────────────────────────────
	rdb, err := database.NewRedisClient(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to Redis")
	}
	defer rdb.Close()

	if err := os.MkdirAll(cfg.UploadDir, 0o755); err != nil {
		log.Fatal().Err(err).Str("dir", cfg.UploadDir).Msg("Failed to create upload directory")
	}

	// ─── Initialize Repositories ───────────────────────────────────────
	txManager := repository.NewTxManager(pool)
	facultyRepo := repository.NewFacultyRepository(pool)
	courseRepo := repository.NewCourseRepository(pool)
	studentRepo := repository.NewStudentRepository(pool)
	timetableRepo := repository.NewTimetableRepository(pool)
	attendanceRepo := repository.NewAttendanceRepository(pool)
	dashboardRepo := repository.NewDashboardRepository(pool)
	auditRepo := repository.NewAuditRepository(pool)

	// ─── Initialize Services ──────────────────────────────────────────
	audit := service.NewQueueAuditRecorder(rdb, log)
	events := service.NewRedisEventPublisher(rdb, log)
	detector := ocr.NewVisionClient(cfg.OCREndpoint, cfg.OCRAPIKey, ocr.DefaultVisionHTTPClient(cfg.OCRTimeout))

	authService := service.NewAuthService(cfg, rdb, facultyRepo, log)
	courseService := service.NewCourseService(courseRepo, studentRepo, audit, log)
	studentService := service.NewStudentService(studentRepo, courseRepo, audit, log)
	timetableService := service.NewTimetableService(txManager, timetableRepo, courseRepo, audit, events, log)
	dashboardService := service.NewDashboardService(dashboardRepo, timetableRepo, rdb, cfg.DashboardCache, log)
	attendanceService := service.NewAttendanceService(
		txManager, attendanceRepo, timetableRepo, courseRepo, dashboardService, audit, events, log,
	)
	ocrService := service.NewOCRService(service.NewMediaService(cfg), detector, log)

	// ─── Initialize Handlers ──────────────────────────────────────────
	handlers := &router.Handlers{
		Auth:       handler.NewAuthHandler(authService, log),
		Course:     handler.NewCourseHandler(courseService, log),
		Student:    handler.NewStudentHandler(studentService, log),
		Timetable:  handler.NewTimetableHandler(timetableService, log),
		Attendance: handler.NewAttendanceHandler(attendanceService, log),
		Dashboard:  handler.NewDashboardHandler(dashboardService, log),
		OCR:        handler.NewOCRHandler(ocrService, log),
		WS:         handler.NewWSHandler(rdb, log, cfg.AllowedOrigins),
		System:     handler.NewSystemHandler(pool, rdb, log),
	}

	// ─── Start Background Workers ─────────────────────────────────────
	workerCtx, workerCancel := context.WithCancel(context.Background())
	var workers sync.WaitGroup

	auditWorker := worker.NewAuditWorker(auditRepo, rdb, log)
	workers.Add(1)
	go func() {
		defer workers.Done()
		auditWorker.Start(workerCtx)
	}()

	// ─── Setup Router ──────────────────────────────────────────────────
	authLimiter := middleware.NewRateLimiter(cfg.AuthRateLimit, authRateWindow)
	defer authLimiter.Stop()

	r := router.SetupRouter(authService, authLimiter, handlers, cfg)

	srv := &http.Server{
		Addr:              ":" + cfg.ServerPort,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.Info().Str("addr", ":"+cfg.ServerPort).Msg("Server listening")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("Server error")
		}
	}()

	// ─── Graceful Shutdown ─────────────────────────────────────────────
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit

	log.Info().Str("signal", sig.String()).Msg("Shutting down gracefully...")

	// 1. Stop accepting new HTTP requests (5s timeout).
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("HTTP server shutdown error")
	}

	// 2. Stop background workers and wait for the audit queue to drain.
	workerCancel()
	workers.Wait()

	log.Info().Msg("Shutdown complete")
}

// init sets zerolog global defaults before main runs.
func init() {
	zerolog.TimeFieldFormat = time.RFC3339
}
