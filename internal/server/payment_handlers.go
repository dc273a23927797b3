package server

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/gorilla/mux"
)

type createLinkRequest struct {
	UserID      int64   `json:"user_id"`
	Amount      float64 `json:"amount"`
	Currency    string  `json:"currency"`
	Description string  `json:"description"`
	ReturnURL   string  `json:"return_url"`
	WebhookURL  string  `json:"webhook_url"`
	ExpiresIn   int     `json:"expires_in"`
}

func (s *Server) createPaymentLink(w http.ResponseWriter, r *http.Request) {
	var req createLinkRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Неверный формат запроса")
		return
	}
	if req.Amount <= 0 {
		writeError(w, http.StatusBadRequest, "Сумма должна быть положительной")
		return
	}
	if req.Description == "" {
		writeError(w, http.StatusBadRequest, "Описание обязательно")
		return
	}

	link, err := s.svc.CreatePaymentLink(r.Context(), req.UserID, req.Amount, req.Currency, req.Description, req.ReturnURL, req.WebhookURL, req.ExpiresIn)
	if err != nil {
		s.serviceError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, link)
}

func (s *Server) getPaymentLink(w http.ResponseWriter, r *http.Request) {
	link, err := s.svc.GetPaymentLink(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		s.serviceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, link)
}

type paymentWebhookRequest struct {
	PaymentLinkID string `json:"payment_link_id"`
	Status        string `json:"status"`
}

func (s *Server) paymentWebhook(w http.ResponseWriter, r *http.Request) {
	var req paymentWebhookRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Неверный формат запроса")
		return
	}
	if req.PaymentLinkID == "" {
		writeError(w, http.StatusBadRequest, "Идентификатор платёжной ссылки обязателен")
		return
	}

	link, err := s.svc.FinalizePaymentLink(r.Context(), req.PaymentLinkID, req.Status)
	if err != nil {
		s.serviceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, link)
}

type starsTopupRequest struct {
	TelegramID int64   `json:"telegram_id"`
	AmountRub  float64 `json:"amount_rub"`
}

// starsTopup builds a Stars invoice and sends it to the user's chat;
// the invoice parameters are returned for the Mini-App as well.
func (s *Server) starsTopup(w http.ResponseWriter, r *http.Request) {
	var req starsTopupRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Неверный формат запроса")
		return
	}
	if req.TelegramID == 0 {
		writeError(w, http.StatusBadRequest, "Параметр telegram_id обязателен")
		return
	}

	invoice, err := s.svc.CreateStarsInvoice(r.Context(), req.TelegramID, req.AmountRub)
	if err != nil {
		s.serviceError(w, err)
		return
	}

	chatID := req.TelegramID
	inv := *invoice
	s.tasks.Enqueue("stars_invoice", func(ctx context.Context) error {
		return s.bot.SendStarsInvoice(chatID, &inv)
	})
	// The admin gets the request with pay:/rej: buttons in case the
	// user abandons the invoice and asks for a manual credit.
	s.tasks.Enqueue("admin_notify", func(ctx context.Context) error {
		return s.bot.NotifyAdminAboutRequest(chatID, &inv)
	})

	writeJSON(w, http.StatusCreated, invoice)
}
