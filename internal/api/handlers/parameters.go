package handlers

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/talx-hub/gopher-cashback/internal/api/dto"
	"github.com/talx-hub/gopher-cashback/internal/model"
	"github.com/talx-hub/gopher-cashback/internal/model/parameters"
)

type ParametersService interface {
	GetParameters(ctx context.Context) (parameters.Parameters, error)
	UpdateParameters(ctx context.Context, patch parameters.Patch) (parameters.Parameters, error)
}

type ParametersHandler struct {
	logger  *slog.Logger
	service ParametersService
}

func NewParametersHandler(service ParametersService, log *slog.Logger) *ParametersHandler {
	return &ParametersHandler{
		logger:  log,
		service: service,
	}
}

func (h *ParametersHandler) GetParameters(w http.ResponseWriter, r *http.Request) {
	p, err := h.service.GetParameters(r.Context())
	if err != nil {
		writeError(r.Context(), w, "failed to load parameters", err)
		return
	}
	writeJSON(r.Context(), w, http.StatusOK, p)
}

func (h *ParametersHandler) PatchParameters(w http.ResponseWriter, r *http.Request) {
	var patch dto.ParametersPatch
	if err := decodeJSON(w, r, &patch); err != nil {
		h.logger.LogAttrs(r.Context(),
			slog.LevelDebug,
			"bad parameters patch",
			slog.Any(model.KeyLoggerError, err),
		)
		http.Error(w, "malformed parameters patch", http.StatusBadRequest)
		return
	}
	if err := patch.IsValid(); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	p, err := h.service.UpdateParameters(r.Context(), patch.ToModel())
	if err != nil {
		writeError(r.Context(), w, "failed to update parameters", err)
		return
	}
	writeJSON(r.Context(), w, http.StatusOK, p)
}
