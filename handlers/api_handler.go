package handlers

import (
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"quizroom/services"
)

// APIHandler serves the read-only REST views next to the websocket: open
// rooms and the global leaderboard.
type APIHandler struct {
	rooms       *services.RoomService
	leaderboard *services.Leaderboard
}

func NewAPIHandler(rooms *services.RoomService, leaderboard *services.Leaderboard) *APIHandler {
	return &APIHandler{
		rooms:       rooms,
		leaderboard: leaderboard,
	}
}

func (h *APIHandler) ListRooms(c *gin.Context) {
	rooms, err := h.rooms.ListOpen(c.Request.Context())
	if err != nil {
		log.Printf("Could not list rooms: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not list rooms"})
		return
	}

	out := make([]gin.H, 0, len(rooms))
	for _, room := range rooms {
		out = append(out, gin.H{
			"id":           room.ID,
			"name":         room.Name,
			"participants": h.rooms.Resolve(c.Request.Context(), room),
		})
	}
	c.JSON(http.StatusOK, out)
}

func (h *APIHandler) Leaderboard(c *gin.Context) {
	c.JSON(http.StatusOK, h.leaderboard.TopScores())
}
