package handlers

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/talx-hub/gopher-cashback/internal/api/dto"
	"github.com/talx-hub/gopher-cashback/internal/model"
	"github.com/talx-hub/gopher-cashback/internal/model/order"
)

type OrderService interface {
	CreateOrder(ctx context.Context, req *order.CreateRequest) (order.CreatedOrder, error)
}

type OrderHandler struct {
	logger  *slog.Logger
	service OrderService
}

func NewOrderHandler(service OrderService, log *slog.Logger) *OrderHandler {
	return &OrderHandler{
		logger:  log,
		service: service,
	}
}

func (h *OrderHandler) PostSalesOrder(w http.ResponseWriter, r *http.Request) {
	var req dto.SalesOrderRequest
	if err := decodeJSON(w, r, &req); err != nil {
		h.logger.LogAttrs(r.Context(),
			slog.LevelDebug,
			"bad sales order request",
			slog.Any(model.KeyLoggerError, err),
		)
		http.Error(w, "malformed sales order", http.StatusBadRequest)
		return
	}
	if err := req.IsValid(); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	created, err := h.service.CreateOrder(r.Context(), req.ToModel())
	if err != nil {
		writeError(r.Context(), w, "failed to create sales order", err)
		return
	}
	writeJSON(r.Context(), w, http.StatusCreated, created)
}
