package main // Entry point package

import (
	"log"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"

	"github.com/kasistays/kasistays/internal/config"
	"github.com/kasistays/kasistays/internal/database"
	"github.com/kasistays/kasistays/internal/handler"
	"github.com/kasistays/kasistays/internal/middleware"
	"github.com/kasistays/kasistays/internal/queue"
	"github.com/kasistays/kasistays/internal/repository"
	"github.com/kasistays/kasistays/internal/router"
)

func main() {
	// .env is optional; in containers the variables come from the
	// environment directly.
	if err := godotenv.Load(); err != nil {
		log.Println("no .env file found, relying on environment")
	}

	cfg := config.Load()

	db, err := database.Open(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
	if err != nil {
		log.Fatalf("database: %v", err)
	}
	defer db.Close()

	// Redis backs the response cache and the rate limiter. Both degrade to
	// pass-through when the client is nil, so a missing Redis never blocks
	// startup.
	rdb := config.NewRedisClient()

	users := repository.NewUserRepo(db)
	listings := repository.NewListingRepo(db)
	bookings := repository.NewBookingRepo(db)
	convos := repository.NewConversationRepo(db)
	maint := repository.NewMaintenanceRepo(db)
	providers := repository.NewProviderRepo(db)

	h := router.Handlers{
		Auth:        handler.NewAuthHandler(cfg, users),
		Listing:     handler.NewListingHandler(listings),
		Booking:     handler.NewBookingHandler(bookings),
		Convo:       handler.NewConversationHandler(convos),
		Maintenance: handler.NewMaintenanceHandler(maint),
		Provider:    handler.NewProviderHandler(providers),
		Admin:       handler.NewAdminHandler(users, listings),
	}

	e := echo.New()
	e.HideBanner = true
	e.Use(echomw.Recover())
	e.Use(echomw.Logger())
	e.Use(middleware.SessionAuth(cfg.JWTSecret))
	e.Use(middleware.NewTokenBucket(config.LoadRateLimitConfig(), rdb))

	cacheGET := middleware.NewRedisCache(config.LoadCacheConfig(), rdb)

	router.RegisterRoutes(e)
	router.RegisterAPI(e, h, cacheGET)

	// The consumer reconnects forever on its own; a broker outage only
	// delays booking.log lines.
	go func() {
		if err := queue.StartBookingConsumer(); err != nil {
			log.Printf("booking consumer stopped: %v", err)
		}
	}()

	addr := ":" + cfg.Port
	log.Printf("listening on %s (env=%s)", addr, cfg.Env)

	if err := e.Start(addr); err != nil {
		log.Fatal(err)
	}
}
