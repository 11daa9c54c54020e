package router

import (
	"log"

	"github.com/labstack/echo/v4"
	eMiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/redis/go-redis/v9"
	"github.com/tahsinn/campus-found/backend/internal/handlers"
	"github.com/tahsinn/campus-found/backend/internal/middleware"
	"github.com/tahsinn/campus-found/backend/internal/models"
	"github.com/tahsinn/campus-found/backend/internal/repositories"
	"github.com/tahsinn/campus-found/backend/internal/services"
	"github.com/tahsinn/campus-found/backend/internal/syncbus"
	"go.mongodb.org/mongo-driver/mongo"
	"gorm.io/gorm"
)

// SetupMiddleware configures global Echo middleware
func SetupMiddleware(e *echo.Echo) {
	e.Use(eMiddleware.Recover())
	e.Use(eMiddleware.CORS())
	log.Println("Global middleware configured.")
}

// Migrate creates the relational schema. The partial unique indexes
// are the claim store's uniqueness invariants: at most one pending and
// one approved claim per listing may exist at any point in time, and
// racing submissions resolve on the index, not on a pre-check.
func Migrate(pgdb *gorm.DB) error {
	err := pgdb.AutoMigrate(
		&models.User{},
		&models.Listing{},
		&models.Claim{},
		&models.Notification{},
		&models.Conversation{},
		&models.ConversationState{},
		&models.Message{},
	)
	if err != nil {
		return err
	}

	statements := []string{
		`CREATE UNIQUE INDEX IF NOT EXISTS idx_claims_one_pending_per_listing ON claims (listing_id) WHERE status = 'pending'`,
		`CREATE UNIQUE INDEX IF NOT EXISTS idx_claims_one_approved_per_listing ON claims (listing_id) WHERE status = 'approved'`,
	}
	for _, stmt := range statements {
		if err := pgdb.Exec(stmt).Error; err != nil {
			return err
		}
	}
	return nil
}

// SetupRoutes configures all application routes and injects
// dependencies. pusher may be nil when Firebase is not configured.
func SetupRoutes(e *echo.Echo, pgdb *gorm.DB, mgClient *mongo.Client, rdb *redis.Client, pusher services.Pusher) (*syncbus.Bus, *syncbus.Hub) {
	if err := Migrate(pgdb); err != nil {
		log.Fatalf("Failed to migrate models: %v", err)
	}
	log.Println("PostgreSQL migrations completed for all models.")

	// Health check - always accessible
	e.GET("/health", handlers.HealthCheck)

	// --- Initialize Repositories ---
	userRepo := repositories.NewPostgresUserRepository(pgdb)
	listingRepo := repositories.NewPostgresListingRepository(pgdb)
	claimRepo := repositories.NewPostgresClaimRepository(pgdb)
	notificationRepo := repositories.NewPostgresNotificationRepository(pgdb)
	conversationRepo := repositories.NewPostgresConversationRepository(pgdb)
	messageRepo := repositories.NewPostgresMessageRepository(pgdb)
	syncEventRepo := repositories.NewMongoSyncEventRepository(mgClient.Database("campusfound"))

	// --- Sync bus: in-process fan-out + redis pub/sub + durable feed ---
	bus := syncbus.NewBus(
		syncbus.NewRedisTransport(rdb),
		syncbus.NewFeedTransport(syncEventRepo),
	)
	hub := syncbus.NewHub(bus)

	// --- Services ---
	claimService := services.NewClaimService(claimRepo, listingRepo, userRepo, bus, pusher)
	messagingService := services.NewMessagingService(conversationRepo, messageRepo, claimRepo, listingRepo, userRepo, notificationRepo, bus)
	notificationService := services.NewNotificationService(notificationRepo, bus)

	// --- Protected routes (require JWT authentication) ---
	api := e.Group("/api/v1")
	api.Use(middleware.JWTAuthMiddleware())
	log.Println("JWT authentication middleware applied to /api/v1 group.")

	claimHandler := handlers.NewClaimHandler(claimService)
	claimHandler.RegisterClaimRoutes(api)
	log.Println("Claim routes configured.")

	listingHandler := handlers.NewListingHandler(listingRepo)
	listingHandler.RegisterListingRoutes(api)
	log.Println("Listing routes configured.")

	messagingHandler := handlers.NewMessagingHandler(messagingService)
	messagingHandler.RegisterMessagingRoutes(api)
	log.Println("Messaging routes configured.")

	notificationHandler := handlers.NewNotificationHandler(notificationService)
	notificationHandler.RegisterNotificationRoutes(api)
	log.Println("Notification routes configured.")

	syncHandler := handlers.NewSyncHandler(hub, syncEventRepo)
	syncHandler.RegisterSyncRoutes(api)
	log.Println("Sync routes configured.")

	log.Println("All routes configured.")
	return bus, hub
}
