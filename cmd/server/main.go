package main // Entry point package

import (
	"context"
	"log"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"

	"github.com/avelora/slot-reservation/internal/clock"
	"github.com/avelora/slot-reservation/internal/config"
	"github.com/avelora/slot-reservation/internal/database"
	"github.com/avelora/slot-reservation/internal/handler"
	"github.com/avelora/slot-reservation/internal/payments"
	"github.com/avelora/slot-reservation/internal/queue"
	"github.com/avelora/slot-reservation/internal/repository"
	"github.com/avelora/slot-reservation/internal/reservation"
	"github.com/avelora/slot-reservation/internal/router"
	"github.com/avelora/slot-reservation/internal/schedule"
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

	rdb := config.NewRedisClient()
	if rdb == nil {
		log.Println("redis unavailable; rate limiting and response cache disabled")
	}

	slotRepo := repository.NewSlotRepo(db)
	bookingRepo := repository.NewBookingRepo(db)
	providerRepo := repository.NewProviderRepo(db)
	serviceRepo := repository.NewServiceRepo(db)
	notificationRepo := repository.NewNotificationRepo(db)
	store := repository.NewReservationStore(db, slotRepo, bookingRepo)

	clk := clock.NewSystem()
	manager := reservation.NewManager(store, clk, reservation.WithHoldTTL(cfg.HoldTTL))
	generator := schedule.NewGenerator(providerRepo, slotRepo)
	query := reservation.NewQueryService(store, generator, reservation.WithWindowDays(cfg.GenerationDays))
	watcher := reservation.NewWatcher(manager, clk)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Expired holds are reclaimed even when nobody touches the slot.
	sweeper := schedule.NewSweeper(slotRepo, cfg.SweepInterval)
	go sweeper.Run(ctx)

	// Confirmed-booking events become in-app notification rows.
	go func() {
		if err := queue.StartBookingConsumer(notificationRepo); err != nil {
			log.Printf("booking-consumer: %v", err)
		}
	}()

	var pay *payments.Client
	if cfg.StripeSecretKey != "" {
		pay = payments.NewClient(cfg.StripeSecretKey, cfg.CheckoutSuccessURL, cfg.CheckoutCancelURL)
	} else {
		log.Println("STRIPE_SECRET_KEY unset; checkout disabled")
	}

	e := echo.New()
	e.HideBanner = true
	router.Register(e, router.Deps{
		JWTSecret: cfg.JWTSecret,
		Redis:     rdb,
		RateLimit: config.LoadRateLimitConfig(),
		Cache:     config.LoadCacheConfig(),
		Customer: handler.NewCustomerHandler(
			providerRepo, serviceRepo, slotRepo, bookingRepo, notificationRepo,
			query, manager, watcher, pay,
		),
		Provider: handler.NewProviderHandler(providerRepo, serviceRepo, slotRepo),
		Admin:    handler.NewAdminHandler(providerRepo, slotRepo),
	})

	addr := ":" + cfg.Port
	log.Printf("listening on %s (env=%s)", addr, cfg.Env)
	if err := e.Start(addr); err != nil {
		log.Fatal(err)
	}
}
