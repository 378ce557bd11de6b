package routes

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"munitask/internal/authz"
	"munitask/internal/handlers"
	"munitask/internal/middleware"
)

func SetupRoutes(
	r *gin.Engine,
	authHandler *handlers.AuthHandler,
	userHandler *handlers.UserHandler,
	roleHandler *handlers.RoleHandler,
	departmentHandler *handlers.DepartmentHandler,
	taskHandler *handlers.TaskHandler,
	notificationHandler *handlers.NotificationHandler,
	fileHandler *handlers.FileHandler,
	reportHandler *handlers.ReportHandler,
) *gin.Engine {

	// ---- public
	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.POST("/login", authHandler.Login)
	r.POST("/refresh", authHandler.RefreshToken)
	r.POST("/password-reset/request", authHandler.RequestPasswordReset)
	r.POST("/password-reset/confirm", authHandler.ConfirmPasswordReset)

	// ---- protected
	r.Use(middleware.AuthMiddleware())
	r.Use(middleware.ReadOnlyGuard())

	r.POST("/logout", authHandler.Logout)

	// USERS (alta y borrado solo admin; lectura según rol dentro del handler)
	users := r.Group("/users")
	{
		users.POST("/", middleware.RequireRoles(authz.RoleAdmin), userHandler.Create)
		users.GET("/", middleware.RequireRoles(authz.RoleSupervisor, authz.RoleAuditor, authz.RoleAdmin), userHandler.List)
		users.GET("/count", middleware.RequireRoles(authz.RoleSupervisor, authz.RoleAuditor, authz.RoleAdmin), userHandler.GetCount)
		users.GET("/count/role/:role_id", middleware.RequireRoles(authz.RoleSupervisor, authz.RoleAuditor, authz.RoleAdmin), userHandler.GetCountByRole)
		users.GET("/:id", userHandler.GetByID)
		users.PUT("/:id", middleware.RequireRoles(authz.RoleSupervisor, authz.RoleAdmin), userHandler.Update)
		users.DELETE("/:id", middleware.RequireRoles(authz.RoleAdmin), userHandler.Delete)
	}

	// ROLES (Admin)
	roles := r.Group("/roles", middleware.RequireRoles(authz.RoleAdmin))
	{
		roles.POST("/", roleHandler.Create)
		roles.GET("/", roleHandler.List)
		roles.GET("/count", roleHandler.GetCount)
		roles.GET("/:id", roleHandler.GetByID)
		roles.PUT("/:id", roleHandler.Update)
		roles.DELETE("/:id", roleHandler.Delete)
	}

	// DEPARTMENTS (mutaciones solo roles elevados)
	departments := r.Group("/departments")
	{
		departments.POST("/", middleware.RequireRoles(authz.RoleSupervisor, authz.RoleAdmin), departmentHandler.Create)
		departments.GET("/", departmentHandler.List)
		departments.GET("/:id", departmentHandler.GetByID)
		departments.PUT("/:id", middleware.RequireRoles(authz.RoleSupervisor, authz.RoleAdmin), departmentHandler.Update)
		departments.DELETE("/:id", middleware.RequireRoles(authz.RoleAdmin), departmentHandler.Delete)
	}

	// TASKS
	tasks := r.Group("/tasks")
	{
		tasks.POST("/", taskHandler.Create)
		tasks.GET("/", taskHandler.GetAll)
		tasks.GET("/:id", taskHandler.GetByID)
		tasks.PUT("/:id", taskHandler.Update)
		tasks.PATCH("/:id/status", taskHandler.UpdateStatus)
		tasks.DELETE("/:id", taskHandler.Delete)

		tasks.POST("/:id/assignees", taskHandler.Assign)
		tasks.DELETE("/:id/assignees/:userId", taskHandler.Unassign)
		tasks.POST("/:id/attachments", taskHandler.Attach)
		tasks.DELETE("/:id/attachments/:fileId", taskHandler.Detach)
		tasks.GET("/:id/files", fileHandler.ListByTask)

		tasks.POST("/:id/resolve", taskHandler.Resolve)
		tasks.POST("/:id/reopen", taskHandler.Reopen)
	}

	// NOTIFICATIONS (siempre del usuario autenticado)
	notifications := r.Group("/notifications")
	{
		notifications.GET("/", notificationHandler.List)
		notifications.GET("/unread-count", notificationHandler.UnreadCount)
		notifications.PATCH("/:id/read", notificationHandler.MarkRead)
		notifications.POST("/read-all", notificationHandler.MarkAllRead)
		notifications.DELETE("/:id", notificationHandler.Delete)
	}

	// FILES
	files := r.Group("/files")
	{
		files.POST("/", fileHandler.Upload)
		files.GET("/:id", fileHandler.GetByID)
		files.GET("/:id/download", fileHandler.Download)
		files.DELETE("/:id", fileHandler.Delete)
	}

	// REPORTS (supervisión y auditoría)
	reports := r.Group("/reports", middleware.RequireRoles(authz.RoleSupervisor, authz.RoleAuditor, authz.RoleAdmin))
	{
		reports.GET("/tasks/summary", reportHandler.TaskSummary)
		reports.GET("/tasks/overdue", reportHandler.OverdueTasks)
		reports.GET("/tasks/summary/pdf", reportHandler.TaskSummaryPDF)
	}

	return r
}
