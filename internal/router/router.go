package router

import (
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/facultrack/attendance-backend/internal/config"
	"github.com/facultrack/attendance-backend/internal/handler"
	"github.com/facultrack/attendance-backend/internal/middleware"
	"github.com/facultrack/attendance-backend/internal/response"
)

const uploadsMaxAge = 365 * 24 * time.Hour

// Handlers groups all handler instances for route setup.
type Handlers struct {
	Auth       *handler.AuthHandler
	Course     *handler.CourseHandler
	Student    *handler.StudentHandler
	Timetable  *handler.TimetableHandler
	Attendance *handler.AttendanceHandler
	Dashboard  *handler.DashboardHandler
	OCR        *handler.OCRHandler
	WS         *handler.WSHandler
	System     *handler.SystemHandler
}

// Authenticator validates bearer tokens and the sessions behind them.
type Authenticator interface {
	middleware.TokenValidator
	middleware.SessionValidator
}

// SetupRouter configures all Gin route groups with appropriate middlewares.
func SetupRouter(
	authService Authenticator,
	authLimiter *middleware.RateLimiter,
	handlers *Handlers,
	cfg *config.Config,
) *gin.Engine {
	gin.SetMode(cfg.GinMode)
	router := gin.Default()

	// ─── CORS ──────────────────────────────────────────────────────────
	// If AllowedOrigins is set in config, restrict to that list;
	// otherwise allow all (*) so dev works without extra config.
	corsConfig := cors.DefaultConfig()
	if len(cfg.AllowedOrigins) > 0 {
		corsConfig.AllowOrigins = cfg.AllowedOrigins
	} else {
		corsConfig.AllowAllOrigins = true
	}
	corsConfig.AllowMethods = []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"}
	corsConfig.AllowHeaders = []string{"Origin", "Content-Type", "Authorization", "X-Request-ID"}
	corsConfig.ExposeHeaders = []string{"X-Request-ID", "Content-Disposition", "X-RateLimit-Limit", "X-RateLimit-Remaining"}
	corsConfig.MaxAge = 12 * time.Hour
	router.Use(cors.New(corsConfig))

	router.Use(response.RequestIDMiddleware())
	router.Use(middleware.Brotli())

	// Uploaded timetable images never change once written.
	uploadsGroup := router.Group("/uploads")
	uploadsGroup.Use(middleware.CacheControl(uploadsMaxAge))
	{
		uploadsGroup.Static("/", cfg.UploadDir)
	}

	router.GET("/health", handlers.System.Health)

	// ─── 1. Auth Group (credential endpoints rate limited) ─────────────
	auth := router.Group("/api/v1/auth")
	auth.Use(middleware.NoStore())
	{
		limited := auth.Group("", authLimiter.Middleware())
		limited.POST("/register", handlers.Auth.Register)
		limited.POST("/login", handlers.Auth.Login)

		session := auth.Group("",
			middleware.RequireFacultyJWT(authService),
			middleware.CheckActiveSession(authService),
		)
		session.GET("/me", handlers.Auth.Me)
		session.POST("/logout", handlers.Auth.Logout)
	}

	// ─── 2. Faculty API (JWT + Active Session) ─────────────────────────
	api := router.Group("/api/v1")
	api.Use(
		middleware.RequireFacultyJWT(authService),
		middleware.CheckActiveSession(authService),
		middleware.NoStore(),
	)
	{
		courses := api.Group("/courses")
		courses.GET("", handlers.Course.List)
		courses.POST("", handlers.Course.Create)
		courses.GET("/:id", handlers.Course.Get)
		courses.PUT("/:id", handlers.Course.Update)
		courses.DELETE("/:id", handlers.Course.Delete)
		courses.GET("/:id/students", handlers.Course.Students)

		students := api.Group("/students")
		students.GET("/by-course/:course_id", handlers.Student.ByCourse)
		students.POST("", handlers.Student.Create)
		students.PUT("/:id", handlers.Student.Update)
		students.DELETE("/:id", handlers.Student.Delete)

		timetable := api.Group("/timetable")
		timetable.GET("/my-schedule", handlers.Timetable.MySchedule)
		timetable.GET("/my-courses", handlers.Course.List)
		timetable.GET("/courses/:course_id", handlers.Timetable.ByCourse)
		timetable.POST("/check-availability", handlers.Timetable.CheckAvailability)
		timetable.GET("/:id", handlers.Timetable.Get)
		timetable.POST("", handlers.Timetable.Create)
		timetable.PUT("/:id", handlers.Timetable.Update)
		timetable.DELETE("/:id", handlers.Timetable.Delete)

		attendance := api.Group("/attendance")
		attendance.POST("/mark-bulk", handlers.Attendance.MarkBulk)
		attendance.GET("/class/:timetable_id/:date", handlers.Attendance.Class)
		attendance.GET("/student/:student_id/course/:course_id", handlers.Attendance.Student)
		attendance.GET("/course/:course_id/summary", handlers.Attendance.CourseSummary)
		attendance.GET("/course/:course_id/summary/export", handlers.Attendance.ExportCourseSummary)

		dashboard := api.Group("/dashboard")
		dashboard.GET("/schedule/today", handlers.Dashboard.TodaySchedule)
		dashboard.GET("/stats", handlers.Dashboard.Stats)
		dashboard.GET("/attendance/overview", handlers.Dashboard.AttendanceOverview)

		api.POST("/ocr/upload", handlers.OCR.Upload)
		api.GET("/system/status", handlers.System.Status)
	}

	// ─── 3. WebSocket Group (Query Token) ──────────────────────────────
	ws := router.Group("/ws/v1")
	ws.Use(
		middleware.RequireFacultyWSAuth(authService),
		middleware.CheckActiveSession(authService),
	)
	{
		ws.GET("/faculty/stream", handlers.WS.FacultyStream)
	}

	return router
}
