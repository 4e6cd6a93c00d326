package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/talx-hub/gopher-cashback/internal/model"
	"github.com/talx-hub/gopher-cashback/internal/serviceerrs"
	"github.com/talx-hub/gopher-cashback/internal/utils/logger"
)

const maxBodyBytes = 1 << 20

const errERPRateLimited = "ERP is rate limiting requests"

func decodeJSON(w http.ResponseWriter, r *http.Request, v any) error {
	decoder := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err := decoder.Decode(v); err != nil {
		return fmt.Errorf("failed to decode request body: %w", err)
	}
	return nil
}

func writeJSON(ctx context.Context, w http.ResponseWriter, status int, v any) {
	body, err := json.Marshal(v)
	if err != nil {
		logger.FromContext(ctx).LogAttrs(ctx,
			slog.LevelError,
			"failed to encode response",
			slog.Any(model.KeyLoggerError, err),
		)
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}
	w.Header().Set(model.HeaderContentType, model.ContentTypeJSON)
	w.WriteHeader(status)
	if _, err = w.Write(body); err != nil {
		logger.FromContext(ctx).LogAttrs(ctx,
			slog.LevelError,
			"failed to write response",
			slog.Any(model.KeyLoggerError, err),
		)
	}
}

// statusFor checks the two-phase failures first: their causes may wrap
// business errors that must not leak as client errors.
func statusFor(err error) int {
	switch {
	case errors.Is(err, serviceerrs.ErrLedgerCommitFailed):
		return http.StatusInternalServerError
	case errors.Is(err, serviceerrs.ErrOrderPending):
		return http.StatusGatewayTimeout
	case errors.As(err, new(*serviceerrs.TooManyRequestsError)),
		errors.Is(err, serviceerrs.ErrWalletBusy):
		return http.StatusServiceUnavailable
	case errors.Is(err, serviceerrs.ErrRemoteOrderFailed):
		return http.StatusBadGateway
	case errors.Is(err, serviceerrs.ErrInvalidOrder):
		return http.StatusBadRequest
	case errors.Is(err, serviceerrs.ErrPartnerNotFound),
		errors.Is(err, serviceerrs.ErrCustomerNotFound):
		return http.StatusNotFound
	case errors.Is(err, serviceerrs.ErrCashbackDisabled),
		errors.Is(err, serviceerrs.ErrInsufficientFunds),
		errors.Is(err, serviceerrs.ErrRedemptionLimitExceeded):
		return http.StatusUnprocessableEntity
	}
	return http.StatusInternalServerError
}

// writeError answers with the status matching err. Server side failures are
// logged and reported without details.
func writeError(ctx context.Context, w http.ResponseWriter, msg string, err error) {
	status := statusFor(err)
	if status >= http.StatusInternalServerError && status != http.StatusGatewayTimeout {
		logger.FromContext(ctx).LogAttrs(ctx,
			slog.LevelError,
			msg,
			slog.Any(model.KeyLoggerError, err),
		)
	}

	var tmrErr *serviceerrs.TooManyRequestsError
	rateLimited := status == http.StatusServiceUnavailable && errors.As(err, &tmrErr)
	if rateLimited && tmrErr.RetryAfter > 0 {
		w.Header().Set("Retry-After", strconv.Itoa(int(tmrErr.RetryAfter.Seconds())))
	}

	switch {
	case status == http.StatusInternalServerError:
		http.Error(w, "internal server error", status)
	case rateLimited:
		http.Error(w, errERPRateLimited, status)
	case errors.Is(err, serviceerrs.ErrWalletBusy):
		http.Error(w, serviceerrs.ErrWalletBusy.Error(), status)
	case errors.Is(err, serviceerrs.ErrRemoteOrderFailed):
		http.Error(w, serviceerrs.ErrRemoteOrderFailed.Error(), status)
	case errors.Is(err, serviceerrs.ErrOrderPending):
		http.Error(w, serviceerrs.ErrOrderPending.Error(), status)
	default:
		http.Error(w, err.Error(), status)
	}
}
