package handlers

import (
	"database/sql"
	"fmt"

	"azv-admin-api/initializers"
	"azv-admin-api/middleware"
	"azv-admin-api/pkg/latest"
	"azv-admin-api/pkg/notify"
	"azv-admin-api/repository"
	"azv-admin-api/upstream"
	"azv-admin-api/websocket"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
)

// Deps is everything the HTTP layer is wired from. DB, Redis and Archive may be nil
// in tests; Archive is nil when image archiving is disabled.
type Deps struct {
	Config   initializers.Config
	DB       *sql.DB
	Redis    *redis.Client
	Backend  *upstream.Client
	Sessions *repository.SessionsRepository
	Views    *repository.SavedViewsRepository
	Media    *repository.MediaRepository
	Archive  MediaArchive
	Hub      *websocket.Hub
}

func NewRouter(d Deps) (*gin.Engine, error) {
	r := gin.New()
	r.Use(middleware.RequestIDMiddleware())
	r.Use(middleware.LoggerMiddleware())
	r.Use(gin.Recovery())
	if err := r.SetTrustedProxies(d.Config.TrustedProxies); err != nil {
		return nil, fmt.Errorf("invalid TRUSTED_PROXIES: %w", err)
	}
	r.Use(middleware.CORSMiddleware())

	notifier := &notify.WSNotifier{Hub: d.Hub}
	lists := NewLists(latest.NewGroup(), d.Views)

	authHandler := NewAuthHandler(d.Backend, d.Sessions, notifier, d.Config.JWTSecret)
	branches := NewBranchesHandler(d.Backend, lists, notifier)
	employees := NewEmployeesHandler(d.Backend, lists, notifier)
	guests := NewGuestsHandler(d.Backend, lists, notifier)
	menu := NewMenuHandler(d.Backend, lists, notifier, d.Config.Media)
	if d.Archive != nil {
		menu.WithArchive(d.Archive, d.Media)
	}
	views := NewViewsHandler(d.Views)

	r.GET("/health", HealthCheck)
	r.GET("/ready", Readiness(d.DB, d.Redis))

	public := r.Group("/", middleware.RateLimitAuthMiddleware())
	public.POST("/login", authHandler.Login)

	auth := r.Group("/", AuthMiddleware(d.Config.JWTSecret, d.Sessions), middleware.RateLimitMiddleware())
	{
		auth.POST("/logout", authHandler.Logout)
		auth.GET("/me", authHandler.Me)
		auth.GET("/ws", websocket.ServeWS(d.Hub))
	}

	api := auth.Group("/api")
	{
		api.GET("/branches", branches.List)
		api.GET("/branches/export", branches.Export)
		api.POST("/branches", branches.Create)
		api.PATCH("/branches/:id", branches.Update)
		api.PUT("/branches/:id/hours", branches.UpdateHours)

		api.GET("/employees", employees.List)
		api.GET("/employees/export", employees.Export)
		api.POST("/employees", employees.Create)
		api.PATCH("/employees/:id", employees.Update)
		api.POST("/employees/:id/assign", employees.Assign)

		api.GET("/guests", guests.ListGuests)
		api.GET("/guests/export", guests.ExportGuests)
		api.GET("/feedbacks", guests.ListFeedbacks)
		api.GET("/feedbacks/export", guests.ExportFeedbacks)

		api.GET("/menu/categories", menu.Categories)
		api.GET("/menu/categories/:id/items", menu.CategoryItems)
		api.GET("/menu/portions", menu.Portions)
		api.POST("/menu/items", menu.CreateItem)
		api.PATCH("/menu/items/:id", menu.UpdateItem)
		api.PUT("/menu/items/:id/image", menu.ReplaceImage)
		api.DELETE("/menu/items/:id", menu.DeleteItem)
		api.GET("/menu/items/:id/images", menu.ItemImages)

		api.POST("/views", views.Create)
		api.GET("/views", views.List)
		api.PATCH("/views/:id", views.Update)
		api.POST("/views/:id/sort", views.ToggleSort)
		api.PATCH("/views/:id/delete", views.Delete)
		api.PATCH("/views/:id/restore", views.Restore)
	}
	return r, nil
}
