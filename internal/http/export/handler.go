package export

import (
	"bytes"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/MrJamesThe3rd/syndic/internal/export"
	"github.com/MrJamesThe3rd/syndic/internal/http/respond"
)

type Handler struct {
	svc *export.Service
}

func NewHandler(svc *export.Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) Routes(r chi.Router) {
	r.Get("/portfolio.xlsx", h.workbook)
}

func (h *Handler) workbook(w http.ResponseWriter, r *http.Request) {
	var buf bytes.Buffer
	if err := h.svc.Workbook(r.Context(), &buf); err != nil {
		respond.Error(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition",
		fmt.Sprintf("attachment; filename=%q", export.Filename(time.Now(), "portfolio", ".xlsx")))

	if _, err := buf.WriteTo(w); err != nil {
		slog.Error("failed to write workbook", "error", err)
	}
}
