package handlers

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/talx-hub/gopher-cashback/internal/api/dto"
	"github.com/talx-hub/gopher-cashback/internal/cashback"
)

type WalletService interface {
	GetWallet(ctx context.Context, partnerID string) (cashback.WalletStatement, error)
}

type WalletHandler struct {
	logger  *slog.Logger
	service WalletService
}

func NewWalletHandler(service WalletService, log *slog.Logger) *WalletHandler {
	return &WalletHandler{
		logger:  log,
		service: service,
	}
}

func (h *WalletHandler) GetWallet(w http.ResponseWriter, r *http.Request) {
	partnerID := chi.URLParam(r, "partnerID")
	if partnerID == "" {
		http.Error(w, "business partner id is empty", http.StatusBadRequest)
		return
	}

	st, err := h.service.GetWallet(r.Context(), partnerID)
	if err != nil {
		writeError(r.Context(), w, "failed to load wallet", err)
		return
	}
	writeJSON(r.Context(), w, http.StatusOK, dto.NewWalletResponse(st.Customer, st.Transactions))
}
