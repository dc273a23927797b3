package server

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/maximzayviy-pixel/tgwallet/internal/service"
)

func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}

// serviceError maps service sentinel errors to HTTP statuses with
// user-facing Russian messages; anything unknown becomes a 500.
func (s *Server) serviceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, service.ErrInvalidAmount):
		writeError(w, http.StatusBadRequest, "Неверная сумма или описание")
	case errors.Is(err, service.ErrInvalidCredentials):
		writeError(w, http.StatusUnauthorized, "Неверный email или пароль")
	case errors.Is(err, service.ErrInvalidToken):
		writeError(w, http.StatusUnauthorized, "Недействительный токен")
	case errors.Is(err, service.ErrEmailTaken):
		writeError(w, http.StatusConflict, "Пользователь с таким email уже существует")
	case errors.Is(err, service.ErrUserNotFound):
		writeError(w, http.StatusNotFound, "Пользователь не найден")
	case errors.Is(err, service.ErrCardNotFound):
		writeError(w, http.StatusNotFound, "Карта не найдена")
	case errors.Is(err, service.ErrCardInactive):
		writeError(w, http.StatusConflict, "Карта не активна")
	case errors.Is(err, service.ErrCardLimit):
		writeError(w, http.StatusConflict, "Достигнут лимит карт")
	case errors.Is(err, service.ErrSameCard):
		writeError(w, http.StatusBadRequest, "Нельзя перевести средства на ту же карту")
	case errors.Is(err, service.ErrInsufficientFunds):
		writeError(w, http.StatusBadRequest, "Недостаточно средств")
	case errors.Is(err, service.ErrLinkNotFound):
		writeError(w, http.StatusNotFound, "Платёжная ссылка не найдена")
	case errors.Is(err, service.ErrLinkExpired):
		writeError(w, http.StatusGone, "Срок действия платёжной ссылки истёк")
	case errors.Is(err, service.ErrLinkClosed), errors.Is(err, service.ErrAlreadyProcessed):
		writeError(w, http.StatusConflict, "Платёж уже обработан")
	case errors.Is(err, service.ErrInvalidLinkStatus):
		writeError(w, http.StatusBadRequest, "Недопустимый статус платежа")
	case errors.Is(err, service.ErrRequestNotFound):
		writeError(w, http.StatusNotFound, "Заявка не найдена")
	default:
		s.logger.Errorf("Internal error: %v", err)
		writeError(w, http.StatusInternalServerError, "Внутренняя ошибка сервера")
	}
}
