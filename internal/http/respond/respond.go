// Package respond writes JSON bodies and maps domain errors to status codes.
package respond

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/MrJamesThe3rd/syndic/internal/deal"
	"github.com/MrJamesThe3rd/syndic/internal/ledger"
	"github.com/MrJamesThe3rd/syndic/internal/matching"
)

func JSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("failed to encode response", "error", err)
	}
}

// Error writes err as plain text with the status its sentinel maps to.
// Unrecognised errors are logged and hidden behind a 500.
func Error(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, deal.ErrInvalidSchedule), errors.Is(err, deal.ErrInvalidAmendment),
		errors.Is(err, matching.ErrInvalidAlias):
		http.Error(w, err.Error(), http.StatusUnprocessableEntity)
	case errors.Is(err, deal.ErrUnknownDeal), errors.Is(err, ledger.ErrUnknownInvestor):
		http.Error(w, err.Error(), http.StatusNotFound)
	case errors.Is(err, ledger.ErrInvestorExists):
		http.Error(w, err.Error(), http.StatusConflict)
	default:
		slog.Error("request failed", "error", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
	}
}
