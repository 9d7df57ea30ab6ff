// Command api is the HTTP server: it loads the transit catalogue from
// Postgres, builds the router once at startup, and serves the bus,
// stop, map, and route-search endpoints behind the teacher's
// recover/logger/cors/auth/rate-limit/analytics middleware chain.
package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/passbi/transitcore/internal/cache"
	"github.com/passbi/transitcore/internal/httpapi"
	"github.com/passbi/transitcore/internal/mapsvg"
	"github.com/passbi/transitcore/internal/middleware"
	"github.com/passbi/transitcore/internal/router"
	"github.com/passbi/transitcore/internal/storage"
)

func main() {
	log.Println("Starting transitcore API server...")

	ctx := context.Background()

	pool, err := storage.GetPool()
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer storage.Close()
	log.Println("✓ Database connection established")

	if err := storage.EnsureSchema(ctx, pool); err != nil {
		log.Fatalf("Failed to apply schema: %v", err)
	}

	if _, err := cache.GetClient(); err != nil {
		log.Fatalf("Failed to connect to Redis: %v", err)
	}
	defer cache.Close()
	log.Println("✓ Redis connection established")

	cat, err := storage.LoadCatalogue(ctx, pool)
	if err != nil {
		log.Fatalf("Failed to load catalogue: %v", err)
	}
	log.Printf("✓ Catalogue loaded: %d stops, %d buses", len(cat.Stops()), len(cat.Buses()))

	settings := router.Settings{
		BusWaitTimeMinutes: getEnvFloat("BUS_WAIT_TIME_MINUTES", 6),
		BusVelocityKMH:     getEnvFloat("BUS_VELOCITY_KMH", 40),
	}
	r := router.Construct(settings, router.FromCatalogue(cat))
	log.Println("✓ Router constructed")

	deps := &httpapi.Deps{
		Catalogue: cat,
		Router:    r,
		Render:    mapsvg.RenderSettings{},
		CacheTTL:  10 * time.Minute,
	}

	enableAuth := getEnvBool("ENABLE_AUTH", true)
	enableRateLimit := getEnvBool("ENABLE_RATE_LIMIT", true)
	enableAnalytics := getEnvBool("ENABLE_ANALYTICS", true)
	log.Printf("Configuration: Auth=%v, RateLimit=%v, Analytics=%v", enableAuth, enableRateLimit, enableAnalytics)

	app := fiber.New(fiber.Config{
		AppName:      "transitcore API",
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  120 * time.Second,
		ErrorHandler: customErrorHandler,
	})

	app.Use(recover.New())
	app.Use(middleware.RequestID())
	app.Use(logger.New(logger.Config{
		Format:     "${time} | ${status} | ${latency} | ${method} ${path} | ${ip}\n",
		TimeFormat: "15:04:05",
		TimeZone:   "Local",
	}))
	app.Use(cors.New(cors.Config{
		AllowOrigins:     "*",
		AllowMethods:     "GET,POST,DELETE,OPTIONS",
		AllowHeaders:     "Origin, Content-Type, Accept, Authorization",
		AllowCredentials: false,
	}))

	app.Get("/", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"name":    "transitcore API",
			"version": "1.0.0",
			"status":  "operational",
		})
	})
	app.Get("/health", httpapi.Health)

	v1 := app.Group("/v2")
	if enableAuth {
		v1.Use(middleware.AuthMiddleware(pool))
		log.Println("✓ Authentication middleware enabled")
	}
	if enableRateLimit && enableAuth {
		rdb, _ := cache.GetClient()
		v1.Use(middleware.RateLimitMiddleware(rdb))
		log.Println("✓ Rate limiting middleware enabled")
	}
	if enableAnalytics && enableAuth {
		v1.Use(middleware.AnalyticsMiddleware(pool))
		log.Println("✓ Analytics middleware enabled")
	}

	v1.Get("/buses/:name", deps.BusInfo)
	v1.Get("/stops/:name", deps.StopInfo)
	v1.Get("/map", deps.Map)
	v1.Get("/routes", deps.RouteSearch)

	if enableAuth {
		rdb, _ := cache.GetClient()

		dashboard := app.Group("/dashboard")
		dashboard.Use(middleware.AuthMiddleware(pool))
		dashboard.Use(func(c *fiber.Ctx) error {
			c.Locals("db", pool)
			c.Locals("redis", rdb)
			return c.Next()
		})

		dashboard.Get("/me", httpapi.GetPartnerInfo)
		dashboard.Get("/api-keys", httpapi.GetAPIKeys)
		dashboard.Post("/api-keys", httpapi.CreateAPIKey)
		dashboard.Delete("/api-keys/:id", httpapi.RevokeAPIKey)
		dashboard.Get("/usage", httpapi.GetUsageStats)
		dashboard.Get("/quota", httpapi.GetQuotaUsage)

		log.Println("✓ Dashboard API endpoints registered")
	}

	app.Use(func(c *fiber.Ctx) error {
		return c.Status(404).JSON(fiber.Map{
			"error":   "not_found",
			"message": "The requested endpoint does not exist",
			"path":    c.Path(),
		})
	})

	port := getEnv("API_PORT", "8080")
	addr := fmt.Sprintf(":%s", port)

	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
		<-sigChan

		log.Println("Shutting down gracefully...")
		if err := app.ShutdownWithTimeout(30 * time.Second); err != nil {
			log.Printf("Error during shutdown: %v", err)
		}
	}()

	log.Printf("🚀 Server listening on http://localhost%s", addr)
	log.Printf("📍 Route search: http://localhost%s/v2/routes?from=A&to=B", addr)
	if err := app.Listen(addr); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}

func customErrorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	if e, ok := err.(*fiber.Error); ok {
		code = e.Code
	}
	log.Printf("Error [%s %s] request_id=%v: %v", c.Method(), c.Path(), c.Locals("request_id"), err)
	return c.Status(code).JSON(fiber.Map{
		"error":   "internal_error",
		"message": err.Error(),
	})
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.ParseBool(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}

func getEnvFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.ParseFloat(value, 64); err == nil {
			return parsed
		}
	}
	return defaultValue
}
