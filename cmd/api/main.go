package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/srgjo27/transit_reservation/internal/adapter/cache"
	"github.com/srgjo27/transit_reservation/internal/adapter/handler"
	"github.com/srgjo27/transit_reservation/internal/adapter/notifier"
	"github.com/srgjo27/transit_reservation/internal/adapter/repository/memory"
	"github.com/srgjo27/transit_reservation/internal/adapter/repository/postgres"
	"github.com/srgjo27/transit_reservation/internal/core/ports"
	"github.com/srgjo27/transit_reservation/internal/core/services"
	"github.com/srgjo27/transit_reservation/internal/platform/clock"
	"github.com/srgjo27/transit_reservation/internal/platform/config"
	"github.com/srgjo27/transit_reservation/internal/platform/database"
	"github.com/srgjo27/transit_reservation/internal/platform/logger"
)

type storage struct {
	refs        ports.ReferenceStore
	bookings    ports.BookingRepository
	seats       ports.SeatClaimLoader
	assignments ports.AssignmentRepository
	close       func()
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		logrus.WithError(err).Fatal("invalid configuration")
	}

	log := logger.New(cfg.LogLevel, cfg.LogFormat)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, log); err != nil {
		log.WithError(err).Error("server exited with error")
		os.Exit(1)
	}

	log.Info("server exiting")
}

func run(ctx context.Context, cfg *config.Config, log *logrus.Logger) error {
	store, err := openStorage(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer store.close()

	seatCache, closeCache, err := openSeatCache(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer closeCache()

	sender, closeSender, err := openSender(cfg, log)
	if err != nil {
		return err
	}
	defer closeSender()

	dispatcher := notifier.NewDispatcher(sender, notifier.Config{
		Workers:     cfg.NotifyWorkers,
		QueueSize:   cfg.NotifyQueueSize,
		MaxAttempts: cfg.NotifyMaxAttempts,
	}, log)

	clk := clock.Real{}
	ledger := services.NewSeatLedger(store.seats, clk, log)
	bookingService := services.NewBookingService(ledger, store.refs, store.bookings, seatCache, dispatcher, services.BookingConfig{
		HoldTTL:            cfg.HoldTTL,
		CancellationWindow: cfg.CancellationWindow,
		SweepInterval:      cfg.SweepInterval,
		SeatsPerRow:        cfg.SeatsPerRow,
		MaxSeatsPerBooking: cfg.MaxSeatsPerBooking,
		Location:           cfg.Location(),
	}, clk, log)
	assignmentService := services.NewAssignmentService(store.assignments, store.refs, dispatcher, clk, log)

	router := handler.NewRouter(log, []byte(cfg.JWTSecret),
		handler.NewBookingHandler(bookingService),
		handler.NewDriverHandler(assignmentService),
	)

	server := &http.Server{
		Addr:         ":" + cfg.HTTPPort,
		Handler:      router,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		log.WithField("port", cfg.HTTPPort).Info("server starting")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		log.Info("shutting down server")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	})

	g.Go(func() error {
		bookingService.RunBackgroundCleanup(gctx)
		return nil
	})

	g.Go(func() error {
		return dispatcher.Run(gctx)
	})

	return g.Wait()
}

func openStorage(ctx context.Context, cfg *config.Config, log *logrus.Logger) (*storage, error) {
	if cfg.StorageDriver == config.StorageMemory {
		log.Warn("using in-memory storage, data is lost on restart")
		refs := memory.NewReferenceStore()
		seedDemoSchedules(refs, log)
		bookings := memory.NewBookingRepository()
		return &storage{
			refs:        refs,
			bookings:    bookings,
			seats:       bookings,
			assignments: memory.NewAssignmentRepository(),
			close:       func() {},
		}, nil
	}

	db, err := database.NewPostgresDB(database.Config{
		Host:     cfg.DBHost,
		Port:     cfg.DBPort,
		User:     cfg.DBUser,
		Password: cfg.DBPassword,
		DBName:   cfg.DBName,
		MaxConns: cfg.DBMaxConns,
	}, log)
	if err != nil {
		return nil, err
	}

	if err := database.Migrate(ctx, db); err != nil {
		db.Close()
		return nil, err
	}

	return &storage{
		refs:        postgres.NewReferenceRepository(db),
		bookings:    postgres.NewBookingRepository(db),
		seats:       postgres.NewSeatRepository(db),
		assignments: postgres.NewAssignmentRepository(db),
		close:       func() { db.Close() },
	}, nil
}

// openSeatCache returns a nil cache when Redis is not configured; seat maps
// are then rendered from the ledger on every read.
func openSeatCache(ctx context.Context, cfg *config.Config, log *logrus.Logger) (ports.SeatCache, func(), error) {
	if cfg.RedisHost == "" {
		log.Info("REDIS_HOST not set, seat map cache disabled")
		return nil, func() {}, nil
	}

	log.Infof("connecting to Redis at %s", cfg.RedisAddr())
	client := redis.NewClient(&redis.Options{
		Addr: cfg.RedisAddr(),
		DB:   cfg.RedisDB,
	})

	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, nil, fmt.Errorf("failed to connect to redis: %w", err)
	}
	log.Info("redis connected")

	return cache.NewSeatCache(client, cfg.SeatCacheTTL), func() { client.Close() }, nil
}

func openSender(cfg *config.Config, log *logrus.Logger) (notifier.Sender, func(), error) {
	if cfg.RabbitURL == "" {
		log.Info("RABBITMQ_URL not set, notifications are logged only")
		return notifier.NewLogSender(log), func() {}, nil
	}

	pub, err := notifier.NewPublisher(cfg.RabbitURL)
	if err != nil {
		return nil, nil, err
	}
	log.WithField("exchange", notifier.ExchangeName).Info("rabbitmq publisher ready")
	return pub, pub.Close, nil
}
