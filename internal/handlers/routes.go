package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/mossy-p/socio-relay/config"
	"github.com/mossy-p/socio-relay/internal/middleware"
	"github.com/mossy-p/socio-relay/internal/relay"
)

// Deps are the collaborators behind the HTTP surface. Nil stores disable
// their routes.
type Deps struct {
	Hub      *relay.Hub
	Users    UserStore
	Messages MessageStore
	Uploader MediaUploader
	Presence PresenceReader
}

func NewRouter(cfg *config.Config, deps Deps) *gin.Engine {
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(gin.Recovery(), middleware.RequestLogger())

	// Global CORS middleware (runs before routing)
	router.Use(OriginFilter(cfg.AllowedOrigins))

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	requireAuth := middleware.JWTAuth(cfg.Auth.JWTSecret)

	api := router.Group("/api")
	{
		if deps.Users != nil {
			api.POST("/auth/register", Register(deps.Users, cfg.Auth))
			api.POST("/auth/login", Login(deps.Users, cfg.Auth))
		}

		api.GET("/presence", ListOnline(deps.Hub))
		api.GET("/presence/:userId", GetPresence(deps.Hub, deps.Presence))

		if deps.Messages != nil {
			api.GET("/chat/messages/:userId", requireAuth, GetMessages(deps.Messages, deps.Users))
			api.POST("/chat/messages", requireAuth, PostMessage(deps.Messages))
		}
		if deps.Uploader != nil {
			api.POST("/upload/image", requireAuth, UploadImage(deps.Uploader))
		}
	}

	ws := []gin.HandlerFunc{HandleWebSocket(deps.Hub, cfg.WS)}
	if cfg.Auth.RequireWSToken {
		ws = append([]gin.HandlerFunc{requireAuth}, ws...)
	}
	router.GET("/ws", ws...)

	return router
}
