package main

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"

	"gatepass-server/internal/auth"
	"gatepass-server/internal/config"
	"gatepass-server/internal/mailer"
	"gatepass-server/internal/models"
	"gatepass-server/internal/routes"
)

func main() {
	// Load environment variables
	if err := godotenv.Load(); err != nil {
		log.Printf("No .env file loaded: %v", err)
	}

	// Initialize configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Error loading config: %v", err)
	}

	// Initialize database connection
	db, err := models.InitDB(models.DatabaseConfig{DSN: cfg.Database.DSN})
	if err != nil {
		log.Fatalf("Error connecting to database: %v", err)
	}

	// Wire the session core
	issuer := auth.NewTokenIssuer(cfg.JWTSecret,
		time.Duration(cfg.JWTExpirationMinutes)*time.Minute,
		time.Duration(cfg.RefreshExpirationHours)*time.Hour,
		nil)

	var notifier auth.Notifier
	if cfg.Mailer.Host != "" {
		notifier = mailer.NewMailer(&cfg.Mailer)
	}

	blacklist := auth.NewBlacklist(db)
	sessions := auth.NewService(
		auth.NewCredentialStore(db),
		auth.NewRefreshLedger(db),
		blacklist,
		issuer,
		notifier,
		nil,
	)

	// Periodically drop blacklist entries whose tokens have expired anyway,
	// so the denylist doesn't grow without bound
	if cfg.BlacklistPurgeMinutes > 0 {
		go func() {
			ticker := time.NewTicker(time.Duration(cfg.BlacklistPurgeMinutes) * time.Minute)
			defer ticker.Stop()
			for range ticker.C {
				purged, err := blacklist.PurgeExpired(context.Background(), time.Now())
				if err != nil {
					log.Printf("Blacklist purge failed: %v", err)
				} else if purged > 0 {
					log.Printf("Purged %d expired blacklist entries", purged)
				}
			}
		}()
	}

	// Initialize Gin router
	router := gin.Default()

	// Configure CORS
	corsConfig := cors.DefaultConfig()
	corsConfig.AllowOrigins = []string{cfg.Origin}
	corsConfig.AllowCredentials = true
	corsConfig.AllowMethods = []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"}
	corsConfig.AllowHeaders = []string{"Origin", "Content-Type", "Accept", "Authorization"}
	router.Use(cors.New(corsConfig))

	// Set up routes
	routes.SetupRoutes(router, db, sessions, cfg)

	// Start server
	serverAddr := fmt.Sprintf(":%s", cfg.Port)
	fmt.Printf("Server running on port %s\n", cfg.Port)
	if err := router.Run(serverAddr); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}
