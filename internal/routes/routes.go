package routes

import (
	"github.com/gin-gonic/gin"

	"taskboard/internal/handlers"
	"taskboard/internal/middleware"
)

func SetupRoutes(
	r *gin.Engine,
	authHandler *handlers.AuthHandler,
	userHandler *handlers.UserHandler,
	taskHandler *handlers.TaskHandler,
	notificationHandler *handlers.NotificationHandler,
) *gin.Engine {

	// ---- public
	r.POST("/login", authHandler.Login)
	r.POST("/refresh", authHandler.RefreshToken)
	r.POST("/register", userHandler.Register)

	// ---- protected
	r.Use(middleware.AuthMiddleware())

	// USERS
	users := r.Group("/users")
	{
		users.GET("/me", userHandler.Me)
		users.PUT("/me/telegram", userHandler.LinkTelegram)
	}

	// TASKS
	tasks := r.Group("/tasks")
	{
		tasks.POST("/", taskHandler.Create)
		tasks.GET("/", taskHandler.List)
		tasks.GET("/:id", taskHandler.GetByID)
		tasks.PUT("/:id", taskHandler.Update)
		tasks.DELETE("/:id", taskHandler.Delete)
		tasks.POST("/:id/toggle", taskHandler.ToggleComplete)
		tasks.POST("/:id/share", taskHandler.Share)
		tasks.POST("/:id/unshare", taskHandler.Unshare)
	}

	// NOTIFICATIONS
	notifications := r.Group("/notifications")
	{
		notifications.GET("/", notificationHandler.List)
		notifications.POST("/read-all", notificationHandler.MarkAllRead)
		notifications.POST("/:id/read", notificationHandler.MarkRead)
		notifications.DELETE("/:id", notificationHandler.Delete)
	}

	return r
}
