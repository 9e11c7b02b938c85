package main

import (
	"context"
	"log"

	"github.com/gin-gonic/gin"

	"quizroom/config"
	"quizroom/handlers"
	"quizroom/middleware"
	"quizroom/models"
	"quizroom/routes"
	"quizroom/services"
	"quizroom/store"
)

func main() {
	// Load configuration
	cfg := config.Load()

	// Load the question catalog: from a JSON file when configured, else
	// from the question-bank tables.
	var (
		catalog *services.Catalog
		err     error
	)
	if cfg.QuestionsFile != "" {
		catalog, err = services.LoadCatalogFile(cfg.QuestionsFile)
		if err != nil {
			log.Fatal("Failed to load question file:", err)
		}
	} else {
		db, err := config.InitDB(cfg)
		if err != nil {
			log.Fatal("Failed to connect to database:", err)
		}
		if err := db.AutoMigrate(&models.QuestionRow{}, &models.OptionRow{}); err != nil {
			log.Fatal("Failed to migrate database:", err)
		}
		catalog, err = services.LoadCatalogDB(db)
		if err != nil {
			log.Fatal("Failed to load question bank:", err)
		}
	}

	// Initialize Redis and the persistence gateway
	redisClient := config.InitRedis(cfg)
	kv := store.NewRedis(redisClient)
	participants := store.NewParticipants(kv)
	rooms := store.NewRooms(kv)
	topScores := store.NewTopScores(kv)

	// Initialize services
	roomService := services.NewRoomService(rooms, participants)
	leaderboard := services.NewLeaderboard(context.Background(), topScores)

	// Initialize the connection gateway and dispatcher
	hub := services.NewHub()
	services.NewDispatcher(hub, roomService, participants, catalog, leaderboard)

	// Initialize handlers
	apiHandler := handlers.NewAPIHandler(roomService, leaderboard)

	// Setup Gin router
	router := gin.Default()

	// Add CORS middleware
	router.Use(middleware.CORS())

	// Setup routes
	routes.SetupRoutes(router, hub, apiHandler)

	// Start server
	addr := cfg.BindAddress + ":" + cfg.Port
	log.Printf("Server starting on %s", addr)
	if err := router.Run(addr); err != nil {
		log.Fatal("Failed to start server:", err)
	}
}
