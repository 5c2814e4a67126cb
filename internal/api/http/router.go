package http

import (
	"net/http"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

type RouterOptions struct {
	AllowedOrigins []string
	// Auth resolves the caller. It must not reject anonymous requests.
	Auth gin.HandlerFunc
	// DevSessions mounts POST /api/auth/session.
	DevSessions bool
}

func SetupRouter(opts RouterOptions, roomController *RoomController, userController *UserController, authController *AuthController) *gin.Engine {
	router := gin.Default()
	config := cors.DefaultConfig()
	config.AllowOrigins = opts.AllowedOrigins
	config.AllowCredentials = true
	config.AllowHeaders = []string{
		"Authorization",
		"Content-Type",
		"Origin",
		"Accept",
	}
	config.AllowMethods = []string{"GET", "POST", "PUT", "PATCH", "DELETE", "HEAD", "OPTIONS"}
	config.ExposeHeaders = []string{"Set-Cookie"}
	router.Use(cors.New(config))
	router.GET("/healthz", func(ctx *gin.Context) {
		ctx.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	api := router.Group("/api")
	if opts.Auth != nil {
		api.Use(opts.Auth)
	}

	if authController != nil {
		auth := api.Group("/auth")
		if opts.DevSessions {
			auth.POST("/session", authController.CreateSession)
		}
		auth.POST("/logout", authController.Logout)
	}

	if userController != nil {
		api.Use(userController.EnsureUser)
		api.GET("/profile", userController.Profile)
		api.POST("/profile/update", userController.UpdateProfile)
	}

	if roomController != nil {
		rooms := api.Group("/rooms")
		rooms.POST("/create", roomController.CreateRoom)
		rooms.GET("/data", roomController.ListRooms)
		rooms.GET("/ws", roomController.StreamRooms)

		api.GET("/inbox", roomController.Inbox)

		room := api.Group("/room/:roomId")
		room.GET("/data", roomController.RoomData)
		room.GET("/join", roomController.JoinInfo)
		room.POST("/join", roomController.Join)
		room.POST("/invite-member", roomController.Invite)
		room.POST("/accept-invite", roomController.AcceptInvite)
		room.POST("/decline-invite", roomController.DeclineInvite)
		room.POST("/kick", roomController.Kick)
		room.POST("/make-owner", roomController.MakeOwner)
		room.POST("/leave", roomController.Leave)
		room.POST("/rename", roomController.Rename)
		room.POST("/update-arrived", roomController.UpdateArrived)
		room.POST("/delete", roomController.Delete)
	}

	return router
}
