package routes

import (
	"net/http"
	"time"

	"teamchat-service/internal/adapters/storage"
	"teamchat-service/internal/api/handlers"
	"teamchat-service/internal/api/middleware"
	"teamchat-service/internal/repositories/postgres"
	"teamchat-service/internal/services"
	"teamchat-service/internal/websocket"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

type Router struct {
	engine            *gin.Engine
	wsHandler         *handlers.WSHandler
	authHandler       *handlers.AuthHandler
	userHandler       *handlers.UserHandler
	workspaceHandler  *handlers.WorkspaceHandler
	channelHandler    *handlers.ChannelHandler
	messageHandler    *handlers.MessageHandler
	emojiHandler      *handlers.EmojiHandler
	attachmentHandler *handlers.AttachmentHandler
	rateLimitMW       *middleware.RateLimitMiddleware
	authMW            *middleware.AuthMiddleware
}

func NewRouter(
	hub *websocket.Hub,
	redisService *services.RedisService,
	db *gorm.DB,
	attachments *storage.AttachmentStore,
	jwtSecret string,
	jwtExpiry time.Duration,
) *Router {
	gin.SetMode(gin.ReleaseMode)
	engine := gin.New()

	engine.Use(gin.Recovery())
	engine.Use(middleware.CORS())
	engine.Use(middleware.LogApi())

	userRepo := postgres.NewUserRepository(db)
	workspaceRepo := postgres.NewWorkspaceRepository(db)
	channelRepo := postgres.NewChannelRepository(db)
	messageRepo := postgres.NewMessageRepository(db)
	reactionRepo := postgres.NewReactionRepository(db)
	emojiRepo := postgres.NewEmojiRepository(db)

	userService := services.NewUserService(userRepo, jwtSecret, jwtExpiry)
	workspaceService := services.NewWorkspaceService(workspaceRepo)
	channelService := services.NewChannelService(channelRepo, workspaceRepo, hub)
	messageService := services.NewMessageService(messageRepo, channelRepo, hub)
	reactionService := services.NewReactionService(reactionRepo, messageRepo, channelRepo, hub)

	return &Router{
		engine:            engine,
		wsHandler:         handlers.NewWSHandler(hub),
		authHandler:       handlers.NewAuthHandler(userService),
		userHandler:       handlers.NewUserHandler(userService, hub),
		workspaceHandler:  handlers.NewWorkspaceHandler(workspaceService),
		channelHandler:    handlers.NewChannelHandler(channelService),
		messageHandler:    handlers.NewMessageHandler(messageService, reactionService),
		emojiHandler:      handlers.NewEmojiHandler(emojiRepo),
		attachmentHandler: handlers.NewAttachmentHandler(attachments),
		rateLimitMW:       middleware.NewRateLimitMiddleware(redisService),
		authMW:            middleware.NewAuthMiddleware(jwtSecret),
	}
}

func (r *Router) SetupRoutes() {
	r.engine.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	api := r.engine.Group("/api/v1")

	public := api.Group("/auth")
	public.Use(r.rateLimitMW.RateLimitIP(20, time.Minute))
	{
		public.POST("/register", r.authHandler.Register)
		public.POST("/login", r.authHandler.Login)
	}

	api.GET("/ws",
		r.authMW.RequireAuth(),
		r.rateLimitMW.WebSocketRateLimit(10, time.Minute),
		r.wsHandler.HandleWebSocket,
	)

	auth := api.Group("/")
	auth.Use(r.authMW.RequireAuth())
	{
		auth.GET("/auth/me", r.userHandler.GetProfile)

		users := auth.Group("/users")
		users.Use(r.rateLimitMW.RateLimit(100, time.Minute))
		{
			users.GET("/profile", r.userHandler.GetProfile)
			users.PUT("/profile", r.userHandler.UpdateProfile)
			users.PUT("/status", r.userHandler.SetStatus)
			users.GET("/search", r.userHandler.Search)
			users.GET("/:id", r.userHandler.GetUser)
		}

		workspaces := auth.Group("/workspaces")
		workspaces.Use(r.rateLimitMW.RateLimit(100, time.Minute))
		{
			workspaces.GET("/", r.workspaceHandler.List)
			workspaces.POST("/", r.workspaceHandler.Create)
			workspaces.POST("/join", r.workspaceHandler.Join)
			workspaces.GET("/:id", r.workspaceHandler.Get)
			workspaces.GET("/:id/channels", r.channelHandler.ListForWorkspace)
			workspaces.GET("/:id/emojis", r.emojiHandler.ListForWorkspace)
		}

		channels := auth.Group("/channels")
		channels.Use(r.rateLimitMW.RateLimit(100, time.Minute))
		{
			channels.POST("/", r.channelHandler.Create)
			channels.GET("/:id", r.channelHandler.Get)
			channels.PUT("/:id", r.channelHandler.Update)
			channels.POST("/:id/join", r.channelHandler.Join)
			channels.POST("/:id/leave", r.channelHandler.Leave)
			channels.DELETE("/:id/members/:userId", r.channelHandler.RemoveMember)
			channels.GET("/:id/messages", r.messageHandler.History)
			channels.POST("/:id/read", r.messageHandler.MarkRead)
		}

		messages := auth.Group("/messages")
		messages.Use(r.rateLimitMW.RateLimit(200, time.Minute))
		{
			messages.POST("/", r.messageHandler.Create)
			messages.DELETE("/:id", r.messageHandler.Delete)
			messages.POST("/:id/reactions", r.messageHandler.ToggleReaction)
		}

		emojis := auth.Group("/emojis")
		emojis.Use(r.rateLimitMW.RateLimit(100, time.Minute))
		{
			emojis.GET("/search", r.emojiHandler.Search)
		}

		attachments := auth.Group("/attachments")
		attachments.Use(r.rateLimitMW.RateLimit(30, time.Minute))
		{
			attachments.POST("/", r.attachmentHandler.Upload)
		}
	}
}

func (r *Router) Engine() *gin.Engine {
	return r.engine
}
