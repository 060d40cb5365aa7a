package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"payments-dashboard/config"
	"payments-dashboard/http/handlers"
	"payments-dashboard/http/middleware"
	"payments-dashboard/services"
)

// Deps bundles the services the router mounts
type Deps struct {
	Auth         *services.AuthService
	Payments     *services.PaymentService
	Webhooks     *services.WebhookService
	WebhookLogs  *services.WebhookLogStore
	Transactions *services.TransactionService
	Orders       *services.OrderStore
	Statuses     *services.StatusStore
}

// NewRouter wires all HTTP routes and middleware
func NewRouter(deps Deps) http.Handler {
	authHandler := handlers.NewAuthHandler(deps.Auth)
	paymentHandler := handlers.NewPaymentHandler(deps.Payments)
	webhookHandler := handlers.NewWebhookHandler(deps.Webhooks, deps.WebhookLogs)
	transactionHandler := handlers.NewTransactionHandler(deps.Transactions, deps.Payments, deps.Orders, deps.Statuses)

	r := chi.NewRouter()

	r.Use(chimw.Logger)
	r.Use(chimw.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	// Public routes; the webhook endpoint is gateway-facing and carries no
	// credential
	r.Post("/auth/register", authHandler.Register)
	r.Post("/auth/login", authHandler.Login)
	r.Post("/webhook", webhookHandler.HandleWebhook)

	if config.AppConfig.DevMode {
		devHandler := handlers.NewDevHandler(deps.Webhooks)
		r.Post("/dev/simulate-payment", devHandler.SimulatePayment)
	}

	// Protected routes
	r.Group(func(r chi.Router) {
		r.Use(middleware.Auth(config.AppConfig.JWTSecret))

		r.Post("/create-payment", paymentHandler.CreatePayment)

		r.Get("/transactions", transactionHandler.ListTransactions)
		r.Get("/transactions/stats", transactionHandler.GetStats)
		r.Get("/transactions/export", transactionHandler.Export)
		r.Get("/transactions/school/{schoolId}", transactionHandler.ListBySchool)
		r.Get("/transactions/status/{collectId}", transactionHandler.GetStatus)
		r.Get("/transactions/receipt/{collectId}", transactionHandler.GetReceipt)

		r.Get("/webhook/logs", webhookHandler.GetWebhookLogs)
	})

	return r
}
