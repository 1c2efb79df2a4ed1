package api

import (
	"github.com/gin-gonic/gin"

	"jobtrack/internal/api/middleware"
)

// RegisterRoutes 在给定前缀下注册业务路由。集合路由同时接受带与不带末尾斜杠的写法。
func RegisterRoutes(api *gin.RouterGroup, deps Dependencies) {
	authHandler := NewAuthHandler(deps.UnitOfWork, deps.AuthService)
	userHandler := NewUserHandler(deps.UnitOfWork)
	jobHandler := NewJobHandler(deps.UnitOfWork)
	noteHandler := NewNoteHandler(deps.UnitOfWork)

	authMiddleware := middleware.AuthMiddleware(deps.AuthService, deps.UnitOfWork)

	public := api.Group("")
	protected := api.Group("", authMiddleware)
	if deps.Limiter != nil {
		rateLimit := middleware.RateLimitMiddleware(deps.Limiter)
		public.Use(rateLimit)
		protected.Use(rateLimit)
	}

	public.POST("/token", authHandler.Token)
	both(public, "POST", "/users", authHandler.Register)

	protected.GET("/users/me", userHandler.Me)

	both(protected, "POST", "/jobs", jobHandler.Create)
	both(protected, "GET", "/jobs", jobHandler.List)
	protected.GET("/jobs/:id", jobHandler.Get)
	protected.PUT("/jobs/:id", jobHandler.Update)
	protected.DELETE("/jobs/:id", jobHandler.Delete)

	both(protected, "POST", "/jobs/:id/notes", noteHandler.Create)
	both(protected, "GET", "/jobs/:id/notes", noteHandler.List)
	protected.PUT("/jobs/:id/notes/:note_id", noteHandler.Update)
	protected.DELETE("/jobs/:id/notes/:note_id", noteHandler.Delete)
}

func both(group *gin.RouterGroup, method, path string, handler gin.HandlerFunc) {
	group.Handle(method, path, handler)
	group.Handle(method, path+"/", handler)
}
