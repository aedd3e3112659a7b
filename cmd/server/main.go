package main // Entry point package

import (
	"log" // Logging library

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4" // Echo web framework

	"github.com/iliyamo/concert-booking/internal/booking"
	"github.com/iliyamo/concert-booking/internal/config" // Internal config loader
	"github.com/iliyamo/concert-booking/internal/database"
	"github.com/iliyamo/concert-booking/internal/handler"
	"github.com/iliyamo/concert-booking/internal/notify"
	"github.com/iliyamo/concert-booking/internal/queue"
	"github.com/iliyamo/concert-booking/internal/repository"
	"github.com/iliyamo/concert-booking/internal/router" // Internal router setup
	"github.com/iliyamo/concert-booking/internal/storage"
)

func main() {
	// Load a local .env when present; in production the environment is
	// injected by the deployment and the file simply does not exist.
	_ = godotenv.Load()

	cfg := config.Load() // Load environment config
	rlCfg := config.LoadRateLimitConfig()

	db, err := database.Open(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
	if err != nil {
		log.Fatalf("database: %v", err)
	}
	defer db.Close()

	rdb := config.NewRedisClient()

	// Repositories over the shared *sql.DB.
	users := repository.NewUserRepo(db)
	tokens := repository.NewTokenRepo(db)
	concerts := repository.NewConcertRepo(db)
	performers := repository.NewPerformerRepo(db)

	// Seat ledger, subscription registry and the booking engine that
	// ties them together.
	store := storage.NewMySQLStore(db)
	registry := notify.NewRegistry()
	dispatcher := notify.NewDispatcher(store, registry, rdb)
	engine := booking.NewEngine(concerts, store, dispatcher)

	// Consume booking.confirmed events in the background; the consumer
	// reconnects on broker failures and never takes the API down.
	go func() {
		if err := queue.StartBookingConsumer(); err != nil {
			log.Printf("booking consumer stopped: %v", err)
		}
	}()

	e := echo.New() // Create Echo instance
	router.RegisterRoutes(e)
	router.RegisterAuth(e, handler.NewAuthHandler(cfg, users, tokens), cfg.JWTSecret)
	router.RegisterCatalog(e, handler.NewCatalogHandler(concerts, performers), handler.NewSeatHandler(store))
	router.RegisterBooking(e, handler.NewBookingHandler(engine, store, concerts), cfg.JWTSecret, rlCfg, rdb)
	router.RegisterSubscriptions(e, handler.NewSubscribeHandler(registry, concerts), cfg.JWTSecret)

	addr := ":" + cfg.Port                                // Address string with port
	log.Printf("listening on %s (env=%s)", addr, cfg.Env) // Print startup info

	if err := e.Start(addr); err != nil { // Start HTTP server
		log.Fatal(err) // Log and exit if server fails
	}
}
