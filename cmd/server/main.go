package main

import (
	"log"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"

	"github.com/iliyamo/parking-lot-api/internal/billing"
	"github.com/iliyamo/parking-lot-api/internal/config"
	"github.com/iliyamo/parking-lot-api/internal/database"
	"github.com/iliyamo/parking-lot-api/internal/handler"
	"github.com/iliyamo/parking-lot-api/internal/middleware"
	"github.com/iliyamo/parking-lot-api/internal/parking"
	"github.com/iliyamo/parking-lot-api/internal/queue"
	"github.com/iliyamo/parking-lot-api/internal/repository"
	"github.com/iliyamo/parking-lot-api/internal/router"
)

func main() {
	// .env is optional; real deployments set the environment directly.
	_ = godotenv.Load()

	cfg := config.Load()

	db, err := database.Open(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
	if err != nil {
		log.Fatalf("database: %v", err)
	}
	defer db.Close()

	// Redis backs the rate limiter only; nil disables it.
	rdb := config.NewRedisClient()
	if rdb == nil {
		log.Printf("redis unavailable, rate limiting disabled")
	}

	users := repository.NewUserRepo(db)
	tokens := repository.NewTokenRepo(db)
	clients := repository.NewClientRepo(db)
	spaces := repository.NewSpaceRepo(db)
	ledger := repository.NewParkingRepo(db)
	store := repository.NewStore(db, spaces, clients, ledger)

	engine := parking.NewEngine(store, billing.NewTariff(cfg.Tariff))

	authH := handler.NewAuthHandler(cfg, users, tokens)
	clientH := handler.NewClientHandler(clients)
	spaceH := handler.NewSpaceHandler(spaces)
	parkingH := handler.NewParkingHandler(engine, ledger, clients)

	e := echo.New()
	e.HideBanner = true
	e.Use(echomw.RequestID())
	e.Use(echomw.Recover())
	e.Use(middleware.RateLimit(config.LoadRateLimitConfig(), rdb))

	router.RegisterRoutes(e)
	router.RegisterAuth(e, authH, cfg.JWTSecret)
	router.RegisterParking(e, cfg.JWTSecret, clientH, spaceH, parkingH)

	// The checkout consumer keeps its own reconnect loop.
	go func() {
		if err := queue.StartCheckoutConsumer(); err != nil {
			log.Printf("checkout consumer stopped: %v", err)
		}
	}()

	addr := ":" + cfg.Port
	log.Printf("listening on %s (env=%s)", addr, cfg.Env)
	if err := e.Start(addr); err != nil {
		log.Fatal(err)
	}
}
