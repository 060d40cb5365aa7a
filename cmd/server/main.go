package main

import (
	"context"
	netHttp "net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"payments-dashboard/config"
	"payments-dashboard/db"
	"payments-dashboard/http"
	"payments-dashboard/logger"
	"payments-dashboard/services"
	"payments-dashboard/services/kafka"
)

func main() {
	config.LoadConfig()

	// Kafka is optional; initialization is non-fatal
	kafka.InitProducer()

	if err := db.InitDB(); err != nil {
		logger.Fatal("Error initializing database: %v", err)
	}

	orders := services.NewOrderStore(db.DB)
	statuses := services.NewStatusStore(db.DB)
	webhookLogs := services.NewWebhookLogStore(db.DB)

	gateway := services.NewGatewayClient(
		config.AppConfig.GatewayBaseURL,
		config.AppConfig.PGAPIKey,
		config.AppConfig.PGKey,
		config.AppConfig.SchoolID,
	)

	payments := services.NewPaymentService(orders, statuses, gateway, config.AppConfig.SchoolID)
	webhooks := services.NewWebhookService(orders, statuses, webhookLogs, services.NewNotificationService())
	transactions := services.NewTransactionService(db.DB)
	auth := services.NewAuthService(db.DB, config.AppConfig.JWTSecret)

	router := http.NewRouter(http.Deps{
		Auth:         auth,
		Payments:     payments,
		Webhooks:     webhooks,
		WebhookLogs:  webhookLogs,
		Transactions: transactions,
		Orders:       orders,
		Statuses:     statuses,
	})

	srv := &netHttp.Server{
		Addr:    config.AppConfig.ListenAddr,
		Handler: router,
	}

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		logger.Info("Server starting on %s", config.AppConfig.ListenAddr)
		if err := srv.ListenAndServe(); err != nil && err != netHttp.ErrServerClosed {
			logger.Fatal("Server failed: %v", err)
		}
	}()

	<-sigChan
	logger.Info("Shutdown signal received")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("Server shutdown failed: %v", err)
	}

	if err := kafka.Close(); err != nil {
		logger.Error("Error closing Kafka producer: %v", err)
	}

	if err := db.DB.Close(); err != nil {
		logger.Error("Error closing database: %v", err)
	}

	logger.Info("Server shutdown complete")
}
