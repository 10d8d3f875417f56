package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"

	"github.com/reservebite/reservebite-api/internal/booking"
	"github.com/reservebite/reservebite-api/internal/config"
	"github.com/reservebite/reservebite-api/internal/database"
	"github.com/reservebite/reservebite-api/internal/handler"
	"github.com/reservebite/reservebite-api/internal/queue"
	"github.com/reservebite/reservebite-api/internal/repository"
	"github.com/reservebite/reservebite-api/internal/router"
	"github.com/reservebite/reservebite-api/internal/service"
)

func main() {
	// .env is optional; real deployments set env vars directly.
	_ = godotenv.Load()

	cfg := config.Load()

	db, err := database.Open(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
	if err != nil {
		log.Fatalf("database: %v", err)
	}
	defer db.Close()

	rdb := config.NewRedisClient()
	if rdb == nil {
		log.Println("redis unavailable; rate limiting and response cache disabled")
	}

	users := repository.NewUserRepo(db)
	tokens := repository.NewTokenRepo(db)
	restaurants := repository.NewRestaurantRepo(db)
	menus := repository.NewMenuRepo(db)
	reservations := repository.NewReservationRepo(db)

	publisher := service.NewPublisher(restaurants)
	engine := booking.NewEngine(restaurants, reservations, users, publisher,
		cfg.BookingMaxAttempts, time.Duration(cfg.PendingTTLMin)*time.Minute)

	// Audit log consumer; reconnects on its own.
	go func() {
		if err := queue.StartReservationConsumer(); err != nil {
			log.Printf("reservation consumer stopped: %v", err)
		}
	}()

	e := echo.New()
	e.HideBanner = true
	router.Register(e, router.Handlers{
		Auth:         handler.NewAuthHandler(cfg, users, tokens),
		Public:       handler.NewPublicHandler(restaurants, menus),
		Reservations: handler.NewReservationHandler(engine),
		OwnerRest:    handler.NewOwnerRestaurantHandler(restaurants),
		OwnerMenu:    handler.NewOwnerMenuHandler(menus, restaurants),
	}, cfg, rdb)

	addr := ":" + cfg.Port
	go func() {
		log.Printf("listening on %s (env=%s)", addr, cfg.Env)
		if err := e.Start(addr); err != nil {
			log.Printf("server stopped: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(ctx); err != nil {
		log.Fatalf("shutdown: %v", err)
	}
}
