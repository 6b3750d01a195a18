package main

import (
	"context"
	"net/http"
	"os"

	"github.com/awisniewski/tiredepot-backend/api/routes"
	"github.com/awisniewski/tiredepot-backend/internal/alerts"
	"github.com/awisniewski/tiredepot-backend/internal/appointments"
	"github.com/awisniewski/tiredepot-backend/internal/clients"
	"github.com/awisniewski/tiredepot-backend/internal/deposits"
	"github.com/awisniewski/tiredepot-backend/internal/inventory"
	"github.com/awisniewski/tiredepot-backend/internal/notifications"
	"github.com/awisniewski/tiredepot-backend/internal/orders"
	"github.com/awisniewski/tiredepot-backend/pkg/config"
	"github.com/awisniewski/tiredepot-backend/pkg/db"
	"github.com/awisniewski/tiredepot-backend/pkg/logger"
	"github.com/awisniewski/tiredepot-backend/pkg/migrate"
	"github.com/awisniewski/tiredepot-backend/pkg/outbox"
	"github.com/awisniewski/tiredepot-backend/pkg/redis"
	"github.com/joho/godotenv"
)

func main() {
	logg := logger.New(logger.Options{ServiceName: "api"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	logg = logger.New(logger.Options{
		ServiceName: "api",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
	})

	dbClient, err := db.New(context.Background(), cfg.DB, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap database", err)
		os.Exit(1)
	}
	defer func() {
		if err := dbClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing database", err)
		}
	}()

	if err := migrate.MaybeRunDev(context.Background(), cfg, logg, dbClient); err != nil {
		logg.Error(context.Background(), "failed to run dev migrations", err)
		os.Exit(1)
	}

	redisClient, err := redis.New(context.Background(), cfg.Redis, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap redis", err)
		os.Exit(1)
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing redis", err)
		}
	}()

	outboxSvc := outbox.NewService(outbox.NewRepository(dbClient.DB()), logg)

	clientsSvc, err := clients.NewService(clients.NewRepository(dbClient.DB()))
	if err != nil {
		logg.Error(context.Background(), "failed to create clients service", err)
		os.Exit(1)
	}

	inventorySvc, err := inventory.NewService(inventory.NewRepository(dbClient.DB()), dbClient)
	if err != nil {
		logg.Error(context.Background(), "failed to create inventory service", err)
		os.Exit(1)
	}

	depositsSvc, err := deposits.NewService(deposits.NewRepository(dbClient.DB()), dbClient, outboxSvc)
	if err != nil {
		logg.Error(context.Background(), "failed to create deposits service", err)
		os.Exit(1)
	}

	appointmentsSvc, err := appointments.NewService(appointments.NewRepository(dbClient.DB()), dbClient, outboxSvc)
	if err != nil {
		logg.Error(context.Background(), "failed to create appointments service", err)
		os.Exit(1)
	}

	ordersSvc, err := orders.NewService(orders.NewRepository(dbClient.DB()), dbClient, outboxSvc, inventorySvc)
	if err != nil {
		logg.Error(context.Background(), "failed to create orders service", err)
		os.Exit(1)
	}

	notificationsSvc, err := notifications.NewService(notifications.NewRepository(dbClient.DB()), cfg.Alerts.DedupeWindow())
	if err != nil {
		logg.Error(context.Background(), "failed to create notifications service", err)
		os.Exit(1)
	}

	evaluator, err := alerts.NewEvaluator(depositsSvc, inventorySvc, appointmentsSvc, cfg.Alerts)
	if err != nil {
		logg.Error(context.Background(), "failed to create alerts evaluator", err)
		os.Exit(1)
	}

	port := os.Getenv("PORT")
	if port == "" {
		port = cfg.App.Port
	}
	addr := ":" + port
	id := os.Getenv("DYNO")
	if id == "" {
		id = "local"
	}
	ctx := logg.WithFields(context.Background(), map[string]any{
		"env":      cfg.App.Env,
		"addr":     addr,
		"instance": id,
	})
	logg.Info(ctx, "starting api server")

	server := &http.Server{
		Addr: addr,
		Handler: routes.NewRouter(cfg, logg, dbClient, redisClient, routes.Services{
			Clients:       clientsSvc,
			Inventory:     inventorySvc,
			Deposits:      depositsSvc,
			Appointments:  appointmentsSvc,
			Orders:        ordersSvc,
			Notifications: notificationsSvc,
			Alerts:        evaluator,
		}),
	}

	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logg.Error(ctx, "api server stopped unexpectedly", err)
		os.Exit(1)
	}
}
