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

	"github.com/gin-gonic/gin"
	"github.com/yeremiapane/dineflow/config"
	"github.com/yeremiapane/dineflow/database"
	"github.com/yeremiapane/dineflow/kds"
	"github.com/yeremiapane/dineflow/repository"
	"github.com/yeremiapane/dineflow/router"
	"github.com/yeremiapane/dineflow/services"
	"github.com/yeremiapane/dineflow/utils"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		utils.ErrorLogger.Fatalf("Invalid configuration: %v", err)
	}
	if err := utils.ConfigureLogger(cfg.LogLevel, cfg.LogFormat); err != nil {
		utils.ErrorLogger.Fatalf("Invalid LOG_LEVEL: %v", err)
	}
	if err := run(cfg); err != nil {
		utils.ErrorLogger.Fatal(err)
	}
}

// run returns errors instead of exiting so its deferred closes still run.
func run(cfg *config.Config) error {
	if cfg.GinMode == gin.ReleaseMode {
		gin.SetMode(gin.ReleaseMode)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := database.Open(cfg.DBDriver, cfg.DBDSN)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	if err := database.Migrate(db); err != nil {
		return fmt.Errorf("failed to AutoMigrate: %w", err)
	}
	utils.InfoLogger.Info("AutoMigrate completed.")
	err = database.Seed(db, database.SeedOptions{
		AdminEmail:     cfg.AdminEmail,
		AdminPassword:  cfg.AdminPassword,
		RestaurantName: cfg.RestaurantName,
		Currency:       cfg.Currency,
		QRBaseURL:      cfg.QRBaseURL,
	})
	if err != nil {
		return fmt.Errorf("failed to seed database: %w", err)
	}

	var orders repository.OrderRepository = repository.NewGormOrderRepository(db)
	if cfg.OrderStore == config.OrderStoreMongo {
		client, mdb, err := database.ConnectMongo(ctx, cfg.MongoURI, cfg.MongoDatabase)
		if err != nil {
			return fmt.Errorf("failed to connect to MongoDB: %w", err)
		}
		defer client.Disconnect(context.Background())

		mongoOrders := repository.NewMongoOrderRepository(mdb)
		if err := mongoOrders.EnsureIndexes(ctx); err != nil {
			return fmt.Errorf("failed to create order indexes: %w", err)
		}
		orders = mongoOrders
		utils.InfoLogger.WithField("database", cfg.MongoDatabase).Info("orders stored in MongoDB")
	}

	eventLog, err := kds.OpenEventLog(cfg.EventLogDir)
	if err != nil {
		return fmt.Errorf("failed to open event log: %w", err)
	}
	defer eventLog.Close()
	go eventLog.RunRetention(ctx, time.Hour, 24*time.Hour)

	var mirrors []kds.Mirror
	if cfg.AMQPURL != "" {
		mirror, err := kds.DialAMQPMirror(cfg.AMQPURL, cfg.AMQPExchange)
		if err != nil {
			// the kitchen keeps working without the broker
			utils.ErrorLogger.WithError(err).Error("AMQP mirror disabled")
		} else {
			defer mirror.Close()
			mirrors = append(mirrors, mirror)
			utils.InfoLogger.WithField("exchange", cfg.AMQPExchange).Info("kitchen events mirrored to AMQP")
		}
	}

	hub := kds.NewHub(eventLog, cfg.ReplayLimit, mirrors...)
	go hub.Run(ctx)

	blacklist := utils.NewTokenBlacklist()
	go func() {
		ticker := time.NewTicker(15 * time.Minute)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case now := <-ticker.C:
				blacklist.Sweep(now)
			}
		}
	}()

	var printer services.Printer
	if cfg.PrinterAddr != "" {
		printer = &services.NetworkPrinter{Addr: cfg.PrinterAddr, Timeout: cfg.PrinterTimeout}
	}

	r := router.SetupRouter(router.Deps{
		Config:    cfg,
		DB:        db,
		Orders:    orders,
		Hub:       hub,
		Tokens:    utils.NewTokenManager(cfg.JWTSecret, cfg.JWTTTL),
		Blacklist: blacklist,
		Printer:   printer,
	})

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	return serve(ctx, srv, cfg.ShutdownTimeout)
}

// serve runs srv until ctx is cancelled or the listener fails, then shuts it
// down within timeout.
func serve(ctx context.Context, srv *http.Server, timeout time.Duration) error {
	errCh := make(chan error, 1)
	go func() {
		utils.InfoLogger.Printf("Listening on %s", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err, ok := <-errCh:
		if ok {
			return fmt.Errorf("listen on %s: %w", srv.Addr, err)
		}
		return nil
	case <-ctx.Done():
	}
	utils.InfoLogger.Info("Shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("graceful shutdown: %w", err)
	}
	return nil
}
