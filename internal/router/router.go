package router

import (
	"github.com/fasthttp/router"
	"github.com/valyala/fasthttp"

	apiHandler "github.com/relichub/backend/api/handler"
)

type Handlers struct {
	Auth     *apiHandler.AuthHandler
	Profile  *apiHandler.ProfileHandler
	Favorite *apiHandler.FavoriteHandler
	Comment  *apiHandler.CommentHandler
	Gallery  *apiHandler.GalleryHandler
	Sensor   *apiHandler.SensorHandler
	Health   *apiHandler.HealthHandler
}

func New(handlers Handlers, authMiddleware func(fasthttp.RequestHandler) fasthttp.RequestHandler) *router.Router {
	r := router.New()

	r.GET("/health", handlers.Health.Check)

	// Auth routes
	r.POST("/api/v1/auth/login", handlers.Auth.Login)
	r.POST("/api/v1/auth/refresh", handlers.Auth.Refresh)

	// Public relic surface
	r.GET("/api/v1/relics/{relic_id}/comments", handlers.Comment.ListForRelic)

	// Sensor relay (readings arrive from trusted gateways)
	r.POST("/api/v1/sensors/readings", handlers.Sensor.Record)
	r.GET("/api/v1/sensors/readings", authMiddleware(handlers.Sensor.Recent))

	// Protected routes
	r.GET("/api/v1/profile", authMiddleware(handlers.Profile.GetProfile))
	r.PUT("/api/v1/profile", authMiddleware(handlers.Profile.UpdateProfile))

	r.GET("/api/v1/favorites", authMiddleware(handlers.Favorite.List))
	r.POST("/api/v1/favorites", authMiddleware(handlers.Favorite.Add))
	r.GET("/api/v1/favorites/{relic_id}", authMiddleware(handlers.Favorite.Check))
	r.DELETE("/api/v1/favorites/{relic_id}", authMiddleware(handlers.Favorite.Remove))
	r.PUT("/api/v1/favorites/{relic_id}/note", authMiddleware(handlers.Favorite.UpdateNote))

	r.GET("/api/v1/comments", authMiddleware(handlers.Comment.ListOwn))
	r.POST("/api/v1/comments", authMiddleware(handlers.Comment.Post))
	r.PUT("/api/v1/comments/{id}", authMiddleware(handlers.Comment.Edit))
	r.DELETE("/api/v1/comments/{id}", authMiddleware(handlers.Comment.Delete))

	r.POST("/api/v1/moderation/comments/{id}/approve", authMiddleware(handlers.Comment.Approve))
	r.POST("/api/v1/moderation/comments/{id}/reject", authMiddleware(handlers.Comment.Reject))

	r.GET("/api/v1/galleries", authMiddleware(handlers.Gallery.List))
	r.POST("/api/v1/galleries", authMiddleware(handlers.Gallery.Create))
	r.PUT("/api/v1/galleries/{id}", authMiddleware(handlers.Gallery.Rename))
	r.DELETE("/api/v1/galleries/{id}", authMiddleware(handlers.Gallery.Delete))
	r.POST("/api/v1/galleries/{id}/relics", authMiddleware(handlers.Gallery.AddRelic))
	r.DELETE("/api/v1/galleries/{id}/relics/{relic_id}", authMiddleware(handlers.Gallery.RemoveRelic))
	r.PUT("/api/v1/galleries/{id}/cover", authMiddleware(handlers.Gallery.SetCover))

	return r
}
