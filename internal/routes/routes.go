package routes

import (
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/gymtrack/gymtrack-api/internal/audit"
	"github.com/gymtrack/gymtrack-api/internal/auth"
	"github.com/gymtrack/gymtrack-api/internal/config"
	"github.com/gymtrack/gymtrack-api/internal/handlers"
	infraRepo "github.com/gymtrack/gymtrack-api/internal/infra/repository"
	"github.com/gymtrack/gymtrack-api/internal/middleware"
	ucClient "github.com/gymtrack/gymtrack-api/internal/usecase/client"
)

func RegisterRoutes(
	r *gin.Engine,
	db *gorm.DB,
	cfg *config.Config,
	tokens *auth.TokenService,
	blacklist auth.Blacklist,
) {

	// ======================================================
	// INFRA (SINGLETONS)
	// ======================================================
	clientRepo := infraRepo.NewClientGormRepository(db)

	auditLogger := audit.New(db)
	auditDispatcher := audit.NewDispatcher(auditLogger)

	// ======================================================
	// USE CASES — CLIENT NESTED WRITES
	// ======================================================
	createClientUC := ucClient.NewCreateClientWithRelations(
		clientRepo,
		auditDispatcher,
	)

	updateClientUC := ucClient.NewUpdateClientWithRelations(
		clientRepo,
		auditDispatcher,
	)

	deleteClientUC := ucClient.NewDeleteClientCascade(
		clientRepo,
		auditDispatcher,
	)

	// ======================================================
	// HANDLERS
	// ======================================================
	authHandler := handlers.NewAuthHandler(db, tokens, blacklist)
	gymHandler := handlers.NewGymHandler(db, cfg, auditDispatcher)
	instructorHandler := handlers.NewInstructorHandler(db, auditDispatcher)

	clientHandler := handlers.NewClientHandler(
		db,
		clientRepo,
		createClientUC,
		updateClientUC,
		deleteClientUC,
	)

	contactHandler := handlers.NewContactHandler(db, auditDispatcher)
	conditionHandler := handlers.NewConditionHandler(db, auditDispatcher)
	auditLogsHandler := handlers.NewAuditLogsHandler(db)

	// ======================================================
	// API (JSON)
	// ======================================================
	api := r.Group("/api")
	{
		// ------------------------------
		// AUTH
		// ------------------------------
		api.POST("/auth/login", authHandler.Login)

		// ------------------------------
		// PROTECTED API
		// ------------------------------
		secured := api.Group("/")
		secured.Use(middleware.AuthMiddleware(tokens, blacklist))
		{
			secured.POST("/auth/me", authHandler.Me)
			secured.POST("/auth/logout", authHandler.Logout)
			secured.POST("/auth/refresh", authHandler.Refresh)

			// ------------------------------
			// GYMS
			// ------------------------------
			secured.GET("/gyms", gymHandler.List)
			secured.GET("/gyms/:id", gymHandler.Get)
			secured.POST("/gyms", gymHandler.Create)
			secured.PUT("/gyms/:id", gymHandler.Update)
			secured.DELETE("/gyms/:id", gymHandler.Delete)

			// ------------------------------
			// INSTRUCTORS
			// ------------------------------
			secured.GET("/instructors", instructorHandler.List)
			secured.GET("/instructors/gym/:gym_id", instructorHandler.ListByGym)
			secured.GET("/instructors/:id", instructorHandler.Get)
			secured.POST("/instructors", instructorHandler.Create)
			secured.PUT("/instructors/:id", instructorHandler.Update)
			secured.DELETE("/instructors/:id", instructorHandler.Delete)

			// ------------------------------
			// CLIENTS (nested writes)
			// ------------------------------
			secured.GET("/clients", clientHandler.List)
			secured.GET("/clients/gym/:gym_id", clientHandler.ListByGym)

			secured.GET("/clients/contacts", contactHandler.List)
			secured.GET("/clients/contacts/:id", contactHandler.Get)
			secured.POST("/clients/contacts", contactHandler.Create)
			secured.PUT("/clients/contacts/:id", contactHandler.Update)
			secured.DELETE("/clients/contacts/:id", contactHandler.Delete)

			secured.GET("/clients/conditions", conditionHandler.List)
			secured.GET("/clients/conditions/:id", conditionHandler.Get)
			secured.POST("/clients/conditions", conditionHandler.Create)
			secured.PUT("/clients/conditions/:id", conditionHandler.Update)
			secured.DELETE("/clients/conditions/:id", conditionHandler.Delete)

			secured.GET("/clients/:id", clientHandler.Get)
			secured.POST("/clients", clientHandler.Create)
			secured.PUT("/clients/:id", clientHandler.Update)
			secured.DELETE("/clients/:id", clientHandler.Delete)

			// ------------------------------
			// AUDIT LOGS
			// ------------------------------
			secured.GET("/audit-logs", auditLogsHandler.List)
		}
	}
}
