package handlers

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/talx-hub/gopher-cashback/internal/model"
)

type HealthChecker interface {
	HealthCheck(ctx context.Context) error
}

type HealthHandler struct {
	checker HealthChecker
	logger  *slog.Logger
}

func NewHealthHandler(checker HealthChecker, log *slog.Logger) *HealthHandler {
	return &HealthHandler{
		checker: checker,
		logger:  log,
	}
}

func (h *HealthHandler) Ping(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), model.DefaultTimeout)
	defer cancel()

	if err := h.checker.HealthCheck(ctx); err != nil {
		h.logger.LogAttrs(ctx,
			slog.LevelError,
			"health check failed",
			slog.Any(model.KeyLoggerError, err),
		)
		http.Error(w, "database is unavailable", http.StatusInternalServerError)
		return
	}
	w.WriteHeader(http.StatusOK)
}
