package main

import (
	"context"
	"log"
	"os"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
)

const (
	defaultAIBaseURL     = "https://api.groq.com/openai"
	defaultLookupBaseURL = ""
)

func envOr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func main() {
	// Load .env for local dev; in production the vars come from the platform.
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	pool := getDBPool()
	defer pool.Close()

	h := &Handler{
		store:         newPGStore(pool),
		db:            pool,
		aiBaseURL:     envOr("AI_BASE_URL", defaultAIBaseURL),
		lookupBaseURL: envOr("FOOD_LOOKUP_URL", defaultLookupBaseURL),
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	if err := seedFoodsIfEmpty(ctx, h.store); err != nil {
		log.Printf("[main] seed failed, continuing with empty catalog: %v", err)
	}
	cancel()

	router := gin.Default()
	router.SetTrustedProxies(nil)
	router.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"*"},
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
		AllowCredentials: true,
	}))

	h.registerRoutes(router)

	port := envOr("PORT", "8080")
	log.Printf("[main] listening on :%s", port)
	if err := router.Run(":" + port); err != nil {
		log.Fatalf("server error: %v", err)
	}
}
