package server

import (
	"net/http"

	"github.com/gorilla/mux"
	"github.com/maximzayviy-pixel/tgwallet/config"
	"github.com/maximzayviy-pixel/tgwallet/internal/bot"
	"github.com/maximzayviy-pixel/tgwallet/internal/service"
	"github.com/maximzayviy-pixel/tgwallet/utils"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type Server struct {
	svc    *service.Service
	bot    *bot.Bot
	tasks  service.TaskRunner
	config *config.Config
	logger *utils.Logger
}

func NewServer(svc *service.Service, b *bot.Bot, tasks service.TaskRunner, cfg *config.Config, logger *utils.Logger) *Server {
	return &Server{
		svc:    svc,
		bot:    b,
		tasks:  tasks,
		config: cfg,
		logger: logger,
	}
}

func (s *Server) Router() http.Handler {
	r := mux.NewRouter()
	r.Use(s.logRequest)

	r.HandleFunc("/health", s.healthCheck).Methods(http.MethodGet)
	r.Handle("/metrics", promhttp.Handler()).Methods(http.MethodGet)

	api := r.PathPrefix("/api").Subrouter()

	// Public routes
	api.HandleFunc("/auth/register", s.register).Methods(http.MethodPost)
	api.HandleFunc("/auth/login", s.login).Methods(http.MethodPost)
	api.HandleFunc("/auth/verify-email", s.verifyEmail).Methods(http.MethodPost)
	api.HandleFunc("/telegram-webhook", s.telegramWebhook).Methods(http.MethodPost)
	api.HandleFunc("/payments/webhook", s.paymentWebhook).Methods(http.MethodPost)
	api.HandleFunc("/payments/{id}", s.getPaymentLink).Methods(http.MethodGet)

	// Partner routes (API key)
	partner := api.PathPrefix("").Subrouter()
	partner.Use(s.apiKeyMiddleware)
	partner.HandleFunc("/payments/create-link", s.createPaymentLink).Methods(http.MethodPost)
	partner.HandleFunc("/cards", s.listCardsByTelegramID).Methods(http.MethodGet)
	partner.HandleFunc("/telegram-stars/topup", s.starsTopup).Methods(http.MethodPost)

	// User routes (JWT)
	auth := api.PathPrefix("").Subrouter()
	auth.Use(s.authMiddleware)
	auth.HandleFunc("/cards", s.createCard).Methods(http.MethodPost)
	auth.HandleFunc("/cards/my", s.listMyCards).Methods(http.MethodGet)
	auth.HandleFunc("/cards/activate", s.activateCard).Methods(http.MethodPost)
	auth.HandleFunc("/cards/{id}/topup", s.topupCard).Methods(http.MethodPost)
	auth.HandleFunc("/transfer", s.transfer).Methods(http.MethodPost)
	auth.HandleFunc("/transactions", s.listTransactions).Methods(http.MethodGet)

	return r
}

func (s *Server) healthCheck(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
