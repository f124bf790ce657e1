package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"miko/ledger-portal/ledger-portal-backend/internal/auth"
	"miko/ledger-portal/ledger-portal-backend/internal/blockchain"
	"miko/ledger-portal/ledger-portal-backend/internal/config"
	"miko/ledger-portal/ledger-portal-backend/internal/credits"
	"miko/ledger-portal/ledger-portal-backend/internal/ledger"
	"miko/ledger-portal/ledger-portal-backend/internal/requests"
)

func main() {
	// .env is optional; real deployments set environment variables directly.
	_ = godotenv.Load()

	cfg, err := config.LoadConfig(os.Getenv("CONFIG_PATH"))
	if err != nil {
		log.Fatal("Failed to load config:", err)
	}
	if err := cfg.Validate(); err != nil {
		log.Fatal("Invalid config:", err)
	}

	converter := credits.NewConverter(cfg.Credits.TokensPerCredit)
	normalizer := ledger.NewNormalizer(converter)

	client, err := ledger.NewClient(ledger.Config{
		BaseURL:           cfg.Ledger.BaseURL,
		ModuleAddress:     cfg.Ledger.ModuleAddress,
		FetchTimeout:      cfg.Ledger.FetchTimeout,
		ScanMaxIDs:        cfg.Ledger.ScanMaxIDs,
		ScanMissThreshold: cfg.Ledger.ScanMissThreshold,
	}, normalizer)
	if err != nil {
		log.Fatal("Failed to create ledger client:", err)
	}

	syncService := blockchain.NewService(client, blockchain.TTLs{
		Trees:    cfg.Ledger.TreeCacheTTL,
		Requests: cfg.Ledger.RequestCacheTTL,
		Listings: cfg.Ledger.ListingCacheTTL,
	}, nil)

	r := gin.Default()
	r.Use(requestID())

	// ---------------- BLOCKCHAIN MIRROR ----------------
	blockchainHandler := blockchain.NewHandler(syncService, client)
	blockchain.RegisterRoutes(r, blockchainHandler)

	// ---------------- REQUEST VIEWS ----------------
	requestService := requests.NewService(syncService)
	requestHandler := requests.NewHandler(requestService)
	requests.RegisterRoutes(r, requestHandler)

	// ---------------- OTP STORE ----------------
	otpStore, cleanup := buildOTPStore(cfg)
	defer cleanup()
	authHandler := auth.NewHandler(otpStore)
	auth.RegisterRoutes(r, authHandler)

	// ---------------- PING ----------------
	r.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "API alive!"})
	})

	log.Println("Server running on", cfg.Server.GetServerAddr())
	if err := r.Run(cfg.Server.GetServerAddr()); err != nil {
		log.Fatal(err)
	}
}

// requestID tags every request with a correlation id for log stitching.
func requestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader("X-Request-ID")
		if id == "" {
			id = uuid.NewString()
		}
		c.Set("request_id", id)
		c.Writer.Header().Set("X-Request-ID", id)
		c.Next()
	}
}

// buildOTPStore picks the Mongo-backed code store when a URI is configured,
// and falls back to the in-memory store for development.
func buildOTPStore(cfg *config.Config) (auth.Store, func()) {
	if cfg.OTP.MongoURI == "" {
		return auth.NewMemoryStore(nil), func() {}
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	mongoClient, err := mongo.Connect(ctx, options.Client().ApplyURI(cfg.OTP.MongoURI))
	if err != nil {
		log.Fatal("Failed to connect to Mongo:", err)
	}
	store, err := auth.NewMongoStore(ctx, mongoClient.Database(cfg.OTP.MongoDB), nil)
	if err != nil {
		log.Fatal("Failed to initialize OTP store:", err)
	}
	cleanup := func() {
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer shutdownCancel()
		_ = mongoClient.Disconnect(shutdownCtx)
	}
	return store, cleanup
}
