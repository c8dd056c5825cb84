package investor

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/MrJamesThe3rd/syndic/internal/balance"
	"github.com/MrJamesThe3rd/syndic/internal/export"
	"github.com/MrJamesThe3rd/syndic/internal/http/respond"
	"github.com/MrJamesThe3rd/syndic/internal/tracker"
)

type Handler struct {
	svc     *tracker.Service
	exports *export.Service
	now     func() time.Time
}

func NewHandler(svc *tracker.Service, exports *export.Service) *Handler {
	return &Handler{svc: svc, exports: exports, now: time.Now}
}

func (h *Handler) Routes(r chi.Router) {
	r.Post("/", h.create)
	r.Get("/", h.portfolio)
	r.Get("/{name}", h.get)
	r.Get("/{name}/statement", h.statement)
	r.Delete("/{name}", h.delete)
}

type positionResponse struct {
	DealID         uuid.UUID `json:"deal_id"`
	BusinessName   string    `json:"business_name"`
	Percent        float64   `json:"percent"`
	Funded         float64   `json:"funded"`
	ExpectedReturn float64   `json:"expected_return"`
	Drawn          float64   `json:"drawn"`
	Available      float64   `json:"available"`
	Progress       float64   `json:"progress"`
	Defaulted      bool      `json:"defaulted"`
}

type summaryResponse struct {
	Investor       string             `json:"investor"`
	Funded         float64            `json:"funded"`
	ExpectedReturn float64            `json:"expected_return"`
	Drawn          float64            `json:"drawn"`
	Available      float64            `json:"available"`
	Positions      []positionResponse `json:"positions"`
}

func toSummaryResponse(s balance.InvestorSummary) summaryResponse {
	resp := summaryResponse{
		Investor:       s.Investor,
		Funded:         balance.Round2(s.Funded),
		ExpectedReturn: balance.Round2(s.ExpectedReturn),
		Drawn:          balance.Round2(s.Drawn),
		Available:      balance.Round2(s.Available),
		Positions:      make([]positionResponse, 0, len(s.Positions)),
	}

	for _, p := range s.Positions {
		resp.Positions = append(resp.Positions, positionResponse{
			DealID:         p.DealID,
			BusinessName:   p.BusinessName,
			Percent:        p.Percent,
			Funded:         balance.Round2(p.Funded),
			ExpectedReturn: balance.Round2(p.ExpectedReturn),
			Drawn:          balance.Round2(p.Drawn),
			Available:      balance.Round2(p.Available),
			Progress:       p.Progress,
			Defaulted:      p.Defaulted,
		})
	}

	return resp
}

type createInvestorRequest struct {
	Name string `json:"name"`
}

type investorResponse struct {
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	var req createInvestorRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	inv, err := h.svc.AddInvestor(r.Context(), req.Name)
	if err != nil {
		respond.Error(w, err)
		return
	}

	respond.JSON(w, http.StatusCreated, investorResponse{Name: inv.Name, CreatedAt: inv.CreatedAt})
}

func (h *Handler) portfolio(w http.ResponseWriter, r *http.Request) {
	sums, err := h.svc.Portfolio(r.Context())
	if err != nil {
		respond.Error(w, err)
		return
	}

	resp := make([]summaryResponse, len(sums))
	for i, s := range sums {
		resp[i] = toSummaryResponse(s)
	}

	respond.JSON(w, http.StatusOK, resp)
}

func (h *Handler) get(w http.ResponseWriter, r *http.Request) {
	sum, err := h.svc.InvestorSummary(r.Context(), chi.URLParam(r, "name"))
	if err != nil {
		respond.Error(w, err)
		return
	}

	respond.JSON(w, http.StatusOK, toSummaryResponse(sum))
}

func (h *Handler) statement(w http.ResponseWriter, r *http.Request) {
	asOf := h.now()

	if s := r.URL.Query().Get("as_of"); s != "" {
		t, err := time.Parse(time.DateOnly, s)
		if err != nil {
			http.Error(w, "as_of must be YYYY-MM-DD", http.StatusBadRequest)
			return
		}

		asOf = t
	}

	text, err := h.exports.Statement(r.Context(), chi.URLParam(r, "name"), asOf)
	if err != nil {
		respond.Error(w, err)
		return
	}

	w.Header().Set("Content-Type", "text/plain; charset=utf-8")

	if _, err := w.Write([]byte(text)); err != nil {
		slog.Error("failed to write statement", "error", err)
	}
}

func (h *Handler) delete(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.DeleteInvestor(r.Context(), chi.URLParam(r, "name")); err != nil {
		respond.Error(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
