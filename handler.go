package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Handler holds shared dependencies for all route handlers: the tabular
// storage gateway for domain data, the pg pool for the users table, and
// external-service base URLs (overridable for tests).
type Handler struct {
	store         tableStore
	db            *pgxpool.Pool
	aiBaseURL     string // OpenAI-compatible chat completions endpoint
	lookupBaseURL string // external food-database search endpoint
}

// settings returns a resolver bound to the handler's store.
func (h *Handler) settings() settingsResolver {
	return settingsResolver{store: h.store}
}

/* ─── Database helpers ────────────────────────────────────────────────── */

// queryOne runs a query and scans the first row into T using RowToStructByName.
// Logs query and scan errors for debugging (e.g. struct/column mismatches).
func queryOne[T any](pool *pgxpool.Pool, c *gin.Context, sql string, args pgx.NamedArgs) (T, error) {
	rows, err := pool.Query(c, sql, args)
	if err != nil {
		log.Printf("[queryOne] Query error: %v", err)
		var zero T
		return zero, err
	}
	result, err := pgx.CollectOneRow(rows, pgx.RowToStructByName[T])
	if err != nil {
		log.Printf("[queryOne] Scan error: %v", err)
	}
	return result, err
}

// apiError returns a consistent JSON error response: {"error": "message"}.
func apiError(c *gin.Context, status int, message string) {
	c.JSON(status, gin.H{"error": message})
}

// storeError maps gateway failures to a response: exhausted-retry failures
// become 503 so the frontend can offer a retry, a missing row 404, anything
// else a 500.
func storeError(c *gin.Context, err error, message string) {
	log.Printf("[store] %v", err)
	if errors.Is(err, errStorageUnavailable) {
		apiError(c, http.StatusServiceUnavailable, "storage unavailable, try again")
		return
	}
	if errors.Is(err, errRowNotFound) {
		apiError(c, http.StatusNotFound, message)
		return
	}
	apiError(c, http.StatusInternalServerError, message)
}

/* ─── Server setup ────────────────────────────────────────────────────── */

// getDBPool creates a connection pool. We use a pool (not a single conn)
// because the hosted Postgres closes idle connections after a few minutes.
func getDBPool() *pgxpool.Pool {
	config, err := pgxpool.ParseConfig(os.Getenv("DB_URL"))
	if err != nil {
		fmt.Fprintf(os.Stderr, "Unable to parse DB URL: %v\n", err)
		os.Exit(1)
	}
	// Simple query protocol avoids "cached plan must not change result type"
	// errors from the server-side prepared statement cache after schema changes.
	config.ConnConfig.DefaultQueryExecMode = pgx.QueryExecModeSimpleProtocol
	pool, err := pgxpool.NewWithConfig(context.Background(), config)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Unable to connect to database: %v\n", err)
		os.Exit(1)
	}
	fmt.Println("DB pool ready!")
	return pool
}

// registerRoutes registers all API routes on the router.
func (h *Handler) registerRoutes(router *gin.Engine) {
	// Public routes
	router.POST("/api/login", h.login)

	// Authenticated routes
	api := router.Group("/api", h.authMiddleware())
	api.GET("/foods", h.listFoods)
	api.GET("/foods/categories", h.listCategories)
	api.POST("/foods", h.createFood)
	api.PUT("/foods/:id", h.updateFood)
	api.DELETE("/foods/:id", h.deleteFood)

	api.GET("/entries", h.listEntries)
	api.POST("/entries", h.createEntry)
	api.PUT("/entries/:id", h.updateEntry)
	api.DELETE("/entries/:id", h.deleteEntry)

	api.GET("/dashboard/daily", h.getDailyDashboard)
	api.GET("/dashboard/history", h.getHistory)

	api.GET("/goals", h.getGoals)
	api.POST("/goals", h.saveGoals)
	api.GET("/settings/:key", h.getSetting)
	api.PUT("/settings/:key", h.putSetting)

	api.POST("/meal-plan", h.generateMealPlan)
	api.GET("/workout-plan", h.getWorkoutPlan)
	api.POST("/workout-plan", h.generateWorkoutPlan)
	api.PUT("/workout-plan", h.saveWorkoutPlan)
	api.DELETE("/workout-plan", h.clearWorkoutPlan)

	api.GET("/food-lookup", h.lookupFood)
}
