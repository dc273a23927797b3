package server

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"
)

type createCardRequest struct {
	HolderName string `json:"holder_name"`
}

func (s *Server) createCard(w http.ResponseWriter, r *http.Request) {
	var req createCardRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Неверный формат запроса")
		return
	}
	if req.HolderName == "" {
		writeError(w, http.StatusBadRequest, "Имя держателя карты обязательно")
		return
	}

	card, err := s.svc.IssueCard(r.Context(), userID(r), req.HolderName)
	if err != nil {
		s.serviceError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, card)
}

func (s *Server) listMyCards(w http.ResponseWriter, r *http.Request) {
	cards, err := s.svc.ListCards(r.Context(), userID(r))
	if err != nil {
		s.serviceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"cards": cards})
}

// listCardsByTelegramID serves partner integrations; numbers come back
// masked.
func (s *Server) listCardsByTelegramID(w http.ResponseWriter, r *http.Request) {
	telegramID, err := strconv.ParseInt(r.URL.Query().Get("telegram_id"), 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Параметр telegram_id обязателен")
		return
	}

	cards, err := s.svc.ListCardsByTelegramID(r.Context(), telegramID)
	if err != nil {
		s.serviceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"cards": cards})
}

type activateCardRequest struct {
	CardID int64 `json:"card_id"`
}

func (s *Server) activateCard(w http.ResponseWriter, r *http.Request) {
	var req activateCardRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Неверный формат запроса")
		return
	}

	card, err := s.svc.ActivateCard(r.Context(), userID(r), req.CardID)
	if err != nil {
		s.serviceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, card)
}

type topupRequest struct {
	Amount      float64 `json:"amount"`
	Description string  `json:"description"`
}

func (s *Server) topupCard(w http.ResponseWriter, r *http.Request) {
	cardID, err := strconv.ParseInt(mux.Vars(r)["id"], 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Неверный идентификатор карты")
		return
	}

	var req topupRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Неверный формат запроса")
		return
	}
	if req.Description == "" {
		req.Description = "Пополнение карты"
	}

	card, err := s.svc.GetCardForUser(r.Context(), userID(r), cardID)
	if err != nil {
		s.serviceError(w, err)
		return
	}

	updated, err := s.svc.TopupCard(r.Context(), card.ID, req.Amount, req.Description)
	if err != nil {
		s.serviceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, updated)
}

type transferRequest struct {
	FromCardID   int64   `json:"from_card_id"`
	ToCardNumber string  `json:"to_card_number"`
	Amount       float64 `json:"amount"`
	Description  string  `json:"description"`
}

func (s *Server) transfer(w http.ResponseWriter, r *http.Request) {
	var req transferRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Неверный формат запроса")
		return
	}
	if req.ToCardNumber == "" {
		writeError(w, http.StatusBadRequest, "Номер карты получателя обязателен")
		return
	}

	// The sender card must belong to the authenticated user.
	if _, err := s.svc.GetCardForUser(r.Context(), userID(r), req.FromCardID); err != nil {
		s.serviceError(w, err)
		return
	}

	result, err := s.svc.Transfer(r.Context(), req.FromCardID, req.ToCardNumber, req.Amount, req.Description)
	if err != nil {
		s.serviceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (s *Server) listTransactions(w http.ResponseWriter, r *http.Request) {
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))

	txs, err := s.svc.ListTransactions(r.Context(), userID(r), limit)
	if err != nil {
		s.serviceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"transactions": txs})
}
