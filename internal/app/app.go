// Package app assembles the StudyMate HTTP API: services, handlers, and the
// middleware chain.
package app

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"gorm.io/gorm"

	_ "studymate/internal/docs" // Import swagger docs
	"studymate/internal/handlers"
	"studymate/internal/middleware"
	"studymate/internal/services"
	"studymate/internal/token"
)

// Deps are the collaborators the router is built from.
type Deps struct {
	DB     *gorm.DB
	Tokens *token.Service
	// LoginLimiter throttles login attempts per client IP; nil disables it.
	LoginLimiter middleware.Limiter
	CORSOrigin   string
}

// NewRouter wires services and handlers into a gin engine.
func NewRouter(deps Deps) *gin.Engine {
	db := deps.DB

	// Initialize services
	studentService := services.NewStudentService(db)
	taskService := services.NewTaskService(db)
	expenseService := services.NewExpenseService(db, studentService)
	auditService := services.NewAuditService(db)

	// Initialize handlers
	authHandler := handlers.NewAuthHandler(studentService, deps.Tokens, auditService)
	taskHandler := handlers.NewTaskHandler(taskService, auditService)
	budgetHandler := handlers.NewBudgetHandler(expenseService, auditService)
	activityHandler := handlers.NewActivityHandler(auditService)

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.RequestLogging())
	router.Use(middleware.Metrics())
	router.Use(middleware.ErrorHandler())
	router.Use(middleware.CORS(deps.CORSOrigin))

	// Swagger documentation
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// Health check endpoint
	router.GET("/api/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	v1 := router.Group("/api/v1")
	requireAuth := middleware.AuthMiddleware(deps.Tokens)

	// Auth and profile share one resource, dispatched on ?action=
	authPost := []gin.HandlerFunc{authHandler.Post}
	if deps.LoginLimiter != nil {
		authPost = append([]gin.HandlerFunc{middleware.RateLimit(deps.LoginLimiter, middleware.LoginKey)}, authPost...)
	}
	v1.POST("/auth", authPost...)
	v1.GET("/auth", requireAuth, authHandler.Get)
	v1.PUT("/auth", requireAuth, authHandler.Put)

	protected := v1.Group("/")
	protected.Use(requireAuth)

	tasks := protected.Group("/tasks")
	tasks.GET("", taskHandler.ListTasks)
	tasks.POST("", taskHandler.CreateTask)
	tasks.GET("/stats", taskHandler.GetStats)
	tasks.GET("/subjects", taskHandler.GetSubjects)
	tasks.GET("/deadlines", taskHandler.GetDeadlines)
	tasks.PUT("/:id", taskHandler.UpdateTask)
	tasks.DELETE("/:id", taskHandler.DeleteTask)

	budget := protected.Group("/budget")
	budget.GET("", budgetHandler.Get)
	budget.POST("", budgetHandler.AddExpense)
	budget.PUT("", budgetHandler.Put)
	budget.DELETE("/:id", budgetHandler.DeleteExpense)

	protected.GET("/activity", activityHandler.ListActivity)

	return router
}
