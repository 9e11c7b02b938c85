package routes_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"

	"quizroom/handlers"
	"quizroom/models"
	"quizroom/routes"
	"quizroom/services"
	"quizroom/store"
)

func newTestRouter(t *testing.T) (*gin.Engine, *services.RoomService, *services.Leaderboard, *store.Participants) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	rs := miniredis.RunT(t)
	rc := redis.NewClient(&redis.Options{Addr: rs.Addr()})
	t.Cleanup(func() { rc.Close() })

	kv := store.NewRedis(rc)
	participants := store.NewParticipants(kv)
	rooms := services.NewRoomService(store.NewRooms(kv), participants)
	leaderboard := services.NewLeaderboard(context.Background(), store.NewTopScores(kv))

	router := gin.New()
	routes.SetupRoutes(router, services.NewHub(), handlers.NewAPIHandler(rooms, leaderboard))
	return router, rooms, leaderboard, participants
}

func get(router *gin.Engine, path string) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
	return rec
}

func TestHealthEndpoint(t *testing.T) {
	router, _, _, _ := newTestRouter(t)

	rec := get(router, "/health")
	require.Equal(t, http.StatusOK, rec.Code)
	require.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
}

func TestLeaderboardEndpoint(t *testing.T) {
	router, _, leaderboard, _ := newTestRouter(t)

	rec := get(router, "/api/leaderboard")
	require.Equal(t, http.StatusOK, rec.Code)
	require.JSONEq(t, `[]`, rec.Body.String())

	leaderboard.AddScore("Alice", 41)
	rec = get(router, "/api/leaderboard")
	require.Equal(t, http.StatusOK, rec.Code)

	var scores []models.TopScore
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &scores))
	require.Equal(t, []models.TopScore{{Name: "Alice", Score: 41}}, scores)
}

func TestRoomsEndpoint(t *testing.T) {
	router, rooms, _, participants := newTestRouter(t)
	ctx := context.Background()

	require.NoError(t, participants.Save(ctx, models.Participant{ID: "A", Name: "Alice"}))
	room, err := rooms.Create(ctx, "Friday Quiz", "A")
	require.NoError(t, err)

	rec := get(router, "/api/rooms")
	require.Equal(t, http.StatusOK, rec.Code)

	var listed []struct {
		ID           int                  `json:"id"`
		Name         string               `json:"name"`
		Participants []models.Participant `json:"participants"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &listed))
	require.Len(t, listed, 1)
	require.Equal(t, room.ID, listed[0].ID)
	require.Equal(t, "Friday Quiz", listed[0].Name)
	require.Equal(t, []models.Participant{{ID: "A", Name: "Alice"}}, listed[0].Participants)

	// started rooms are not listed
	_, err = rooms.Start(ctx, room.ID)
	require.NoError(t, err)
	rec = get(router, "/api/rooms")
	require.JSONEq(t, `[]`, rec.Body.String())
}
