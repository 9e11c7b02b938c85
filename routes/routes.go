package routes

import (
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"quizroom/handlers"
	"quizroom/services"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true // Allow all origins for development
	},
}

func SetupRoutes(router *gin.Engine, hub *services.Hub, apiHandler *handlers.APIHandler) {
	// Read-only REST views
	api := router.Group("/api")
	{
		api.GET("/rooms", apiHandler.ListRooms)
		api.GET("/leaderboard", apiHandler.Leaderboard)
	}

	// Everything game-related happens over this websocket
	router.GET("/ws", func(c *gin.Context) {
		conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
		if err != nil {
			log.Printf("WebSocket upgrade failed: %v", err)
			return
		}
		hub.Register(conn)
	})

	// Health check endpoint
	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
}
