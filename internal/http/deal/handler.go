package deal

import (
	"bytes"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/MrJamesThe3rd/syndic/internal/balance"
	"github.com/MrJamesThe3rd/syndic/internal/deal"
	"github.com/MrJamesThe3rd/syndic/internal/export"
	"github.com/MrJamesThe3rd/syndic/internal/http/respond"
	"github.com/MrJamesThe3rd/syndic/internal/present"
	"github.com/MrJamesThe3rd/syndic/internal/tracker"
)

type Handler struct {
	svc     *tracker.Service
	exports *export.Service
	policy  present.Policy
	now     func() time.Time
}

func NewHandler(svc *tracker.Service, exports *export.Service, policy present.Policy) *Handler {
	return &Handler{
		svc:     svc,
		exports: exports,
		policy:  policy,
		now:     time.Now,
	}
}

func (h *Handler) Routes(r chi.Router) {
	r.Post("/", h.create)
	r.Get("/", h.list)
	r.Get("/{id}", h.get)
	r.Delete("/{id}", h.delete)
	r.Get("/{id}/schedule", h.schedule)
	r.Get("/{id}/schedule.csv", h.scheduleCSV)
	r.Patch("/{id}/payments/{index}", h.amend)
	r.Patch("/{id}/defaulted", h.setDefaulted)
	r.Post("/{id}/shares", h.assignShares)
}

type createDealRequest struct {
	BusinessName string  `json:"business_name"`
	Principal    float64 `json:"principal"`
	FactorRate   float64 `json:"factor_rate"`
	TermDays     int     `json:"term_days"`
	// StartDate is YYYY-MM-DD; empty means today.
	StartDate string `json:"start_date"`
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	var req createDealRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	start := h.now()

	if req.StartDate != "" {
		t, err := time.Parse(time.DateOnly, req.StartDate)
		if err != nil {
			http.Error(w, "start_date must be YYYY-MM-DD", http.StatusBadRequest)
			return
		}

		start = t
	}

	d, err := h.svc.CreateDeal(r.Context(), tracker.CreateDealParams{
		BusinessName: req.BusinessName,
		Principal:    req.Principal,
		FactorRate:   req.FactorRate,
		TermDays:     req.TermDays,
		StartDate:    start,
	})
	if err != nil {
		respond.Error(w, err)
		return
	}

	b, err := h.svc.Book(r.Context(), d.ID)
	if err != nil {
		respond.Error(w, err)
		return
	}

	respond.JSON(w, http.StatusCreated, toDealResponse(*b))
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	books, err := h.svc.Books(r.Context())
	if err != nil {
		respond.Error(w, err)
		return
	}

	resp := make([]dealResponse, len(books))
	for i, b := range books {
		resp[i] = toDealResponse(b)
	}

	respond.JSON(w, http.StatusOK, resp)
}

func (h *Handler) get(w http.ResponseWriter, r *http.Request) {
	id, ok := dealID(w, r)
	if !ok {
		return
	}

	b, err := h.svc.Book(r.Context(), id)
	if err != nil {
		respond.Error(w, err)
		return
	}

	respond.JSON(w, http.StatusOK, toDealResponse(*b))
}

func (h *Handler) delete(w http.ResponseWriter, r *http.Request) {
	id, ok := dealID(w, r)
	if !ok {
		return
	}

	if err := h.svc.DeleteDeal(r.Context(), id); err != nil {
		respond.Error(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) schedule(w http.ResponseWriter, r *http.Request) {
	id, ok := dealID(w, r)
	if !ok {
		return
	}

	schedule, err := h.svc.Schedule(r.Context(), id)
	if err != nil {
		respond.Error(w, err)
		return
	}

	respond.JSON(w, http.StatusOK, toPaymentResponses(schedule, h.policy))
}

func (h *Handler) scheduleCSV(w http.ResponseWriter, r *http.Request) {
	id, ok := dealID(w, r)
	if !ok {
		return
	}

	d, err := h.svc.GetDeal(r.Context(), id)
	if err != nil {
		respond.Error(w, err)
		return
	}

	var buf bytes.Buffer
	if err := h.exports.ScheduleCSV(r.Context(), id, &buf); err != nil {
		respond.Error(w, err)
		return
	}

	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition",
		fmt.Sprintf("attachment; filename=%q", export.Filename(d.StartDate, d.BusinessName, ".csv")))

	if _, err := buf.WriteTo(w); err != nil {
		slog.Error("failed to write schedule csv", "error", err)
	}
}

type amendRequest struct {
	Status     deal.Status `json:"status"`
	Amount     *float64    `json:"amount,omitempty"`
	ExtendDays int         `json:"extend_days,omitempty"`
}

func (h *Handler) amend(w http.ResponseWriter, r *http.Request) {
	id, ok := dealID(w, r)
	if !ok {
		return
	}

	index, err := strconv.Atoi(chi.URLParam(r, "index"))
	if err != nil {
		http.Error(w, "invalid payment index", http.StatusBadRequest)
		return
	}

	var req amendRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	res, err := h.svc.AmendPayment(r.Context(), id, deal.Amendment{
		Index:      index,
		Status:     req.Status,
		Amount:     req.Amount,
		ExtendDays: req.ExtendDays,
	})
	if err != nil {
		respond.Error(w, err)
		return
	}

	respond.JSON(w, http.StatusOK, amendResponse{
		Deal:    toDealResponse(balance.Book{Deal: res.Deal, Schedule: res.Schedule}),
		Changed: toPaymentResponses(res.Changed, h.policy),
	})
}

type defaultedRequest struct {
	Defaulted bool `json:"defaulted"`
}

func (h *Handler) setDefaulted(w http.ResponseWriter, r *http.Request) {
	id, ok := dealID(w, r)
	if !ok {
		return
	}

	var req defaultedRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	if _, err := h.svc.SetDefaulted(r.Context(), id, req.Defaulted); err != nil {
		respond.Error(w, err)
		return
	}

	b, err := h.svc.Book(r.Context(), id)
	if err != nil {
		respond.Error(w, err)
		return
	}

	respond.JSON(w, http.StatusOK, toDealResponse(*b))
}

type assignSharesRequest struct {
	Shares map[string]float64 `json:"shares"`
}

func (h *Handler) assignShares(w http.ResponseWriter, r *http.Request) {
	id, ok := dealID(w, r)
	if !ok {
		return
	}

	var req assignSharesRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	l, err := h.svc.AssignShares(r.Context(), id, req.Shares)
	if err != nil {
		respond.Error(w, err)
		return
	}

	respond.JSON(w, http.StatusCreated, toSharesResponse(id, l))
}

func dealID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		http.Error(w, "invalid id", http.StatusBadRequest)
		return uuid.Nil, false
	}

	return id, true
}
