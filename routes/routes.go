package routes

import (
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/vnkhanh/devflow-backend/config"
	"github.com/vnkhanh/devflow-backend/controllers"
	"github.com/vnkhanh/devflow-backend/middleware"
	"github.com/vnkhanh/devflow-backend/services"
	"github.com/vnkhanh/devflow-backend/utils"
	"github.com/vnkhanh/devflow-backend/ws"
)

// Các route không cần đăng nhập; mọi route khác đi qua AuthMiddleware
var PublicRoutes = []string{
	"/ping",
	"/health",
	"GET /api/tags",
	"GET /api/tags/popular",
	"GET /api/tags/:id",
	"GET /api/users/:id/top-tags",
	"/ws/*",
}

func SetupRouter(r *gin.Engine, db *gorm.DB, hub *ws.Hub, settings config.Settings) *gin.Engine {
	verifier := utils.NewTokenVerifier(settings.AuthSecret, settings.AuthIssuer)

	tagService := services.NewTagService(db)
	tagService.TagsPageSize = settings.TagsPageSize
	tagService.TagQuestionsPageSize = settings.TagQuestionsPageSize
	tags := controllers.NewTagController(tagService, hub)

	r.Use(middleware.RouteGate(PublicRoutes, middleware.AuthMiddleware(verifier)))

	r.GET("/ping", func(c *gin.Context) {
		c.JSON(200, gin.H{"message": "pong"})
	})
	r.GET("/health", controllers.HealthCheck(db, hub))

	api := r.Group("/api")

	//Quản lý tags
	api.GET("/tags", tags.GetTags)
	api.GET("/tags/popular", tags.GetPopularTags)
	api.GET("/tags/:id", tags.GetTagDetail)
	api.POST("/tags", tags.CreateTag)
	api.PATCH("/tags/:id", tags.UpdateTag)

	api.GET("/users/:id/top-tags", tags.GetUserTopTags)

	r.GET("/ws/tags", hub.HandleTagsWebSocket)
	r.GET("/ws/tags/:id", hub.HandleTagsWebSocket)

	return r
}
