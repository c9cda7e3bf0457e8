package main

import (
	"log"
	"os"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"golang.org/x/time/rate"

	"dealerscraper/internal/handlers"
	"dealerscraper/internal/middleware"
	"dealerscraper/internal/scraper"
	"dealerscraper/internal/vindecode"
)

func main() {
	// Load .env file
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found")
	}

	// Initialize Gin router
	r := gin.Default()

	// Configure trusted proxies
	r.SetTrustedProxies([]string{
		"127.0.0.1",
		"::1",
		"172.16.0.0/12",  // Docker networks
		"10.0.0.0/8",     // Private networks
		"192.168.0.0/16", // Private networks
	})

	// Configure CORS
	config := cors.DefaultConfig()
	config.AllowOrigins = []string{"*"}
	config.AllowMethods = []string{"GET", "POST", "OPTIONS"}
	config.AllowHeaders = []string{"Origin", "Content-Type", "Accept"}
	r.Use(cors.New(config))

	r.Use(middleware.SecurityHeaders())
	r.Use(middleware.RateLimitMiddleware(middleware.NewRateLimiter(rate.Limit(5), 10)))

	// Wire the scraper behind the API
	handler := handlers.NewHandler(scraper.New(vindecode.New(), nil))

	// API routes
	api := r.Group("/api")
	{
		api.POST("/scrape", middleware.ScrapeCooldownMiddleware(scrapeCooldown()), handler.StartScrape)
		api.GET("/vehicles", handler.GetVehicles)
		api.GET("/vehicles/export", handler.ExportVehicles)
		api.GET("/status", handler.GetStatus)
		api.GET("/health", handler.HealthCheck)
	}

	// Get port from environment or use default
	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}

	log.Printf("Server starting on port %s", port)
	if err := r.Run(":" + port); err != nil {
		log.Fatal("Failed to start server:", err)
	}
}

// scrapeCooldown reads SCRAPE_COOLDOWN_MINUTES, defaulting to 10 minutes.
func scrapeCooldown() time.Duration {
	if v := os.Getenv("SCRAPE_COOLDOWN_MINUTES"); v != "" {
		if d, err := time.ParseDuration(v + "m"); err == nil && d > 0 {
			return d
		}
	}
	return 10 * time.Minute
}
