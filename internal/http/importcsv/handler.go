package importcsv

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/MrJamesThe3rd/syndic/internal/deal"
	"github.com/MrJamesThe3rd/syndic/internal/http/respond"
	"github.com/MrJamesThe3rd/syndic/internal/importer"
	"github.com/MrJamesThe3rd/syndic/internal/matching"
)

// DealLookup confirms an alias target exists before it is learned.
type DealLookup interface {
	GetDeal(ctx context.Context, id uuid.UUID) (*deal.Deal, error)
}

type Handler struct {
	importSvc *importer.Service
	aliases   *matching.Service
	deals     DealLookup
}

func NewHandler(importSvc *importer.Service, aliases *matching.Service, deals DealLookup) *Handler {
	return &Handler{
		importSvc: importSvc,
		aliases:   aliases,
		deals:     deals,
	}
}

func (h *Handler) Routes(r chi.Router) {
	r.Post("/remittances", h.importRemittances)
	r.Post("/aliases", h.learnAlias)
	r.Get("/aliases", h.listAliases)
}

type aliasRequest struct {
	Pattern string    `json:"pattern"`
	DealID  uuid.UUID `json:"deal_id"`
}

type aliasResponse struct {
	Pattern   string    `json:"pattern"`
	DealID    uuid.UUID `json:"deal_id"`
	CreatedAt string    `json:"created_at"`
}

func toAliasResponse(a matching.Alias) aliasResponse {
	return aliasResponse{
		Pattern:   a.Pattern,
		DealID:    a.DealID,
		CreatedAt: a.CreatedAt.Format(time.RFC3339),
	}
}

func (h *Handler) learnAlias(w http.ResponseWriter, r *http.Request) {
	var req aliasRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}

	if req.DealID != uuid.Nil {
		if _, err := h.deals.GetDeal(r.Context(), req.DealID); err != nil {
			respond.Error(w, err)
			return
		}
	}

	alias, err := h.aliases.Learn(r.Context(), req.Pattern, req.DealID)
	if err != nil {
		respond.Error(w, err)
		return
	}

	respond.JSON(w, http.StatusCreated, toAliasResponse(*alias))
}

func (h *Handler) listAliases(w http.ResponseWriter, r *http.Request) {
	dealID, err := uuid.Parse(r.URL.Query().Get("deal_id"))
	if err != nil {
		http.Error(w, "deal_id query parameter must be a deal id", http.StatusBadRequest)
		return
	}

	aliases, err := h.aliases.Aliases(r.Context(), dealID)
	if err != nil {
		respond.Error(w, err)
		return
	}

	resp := make([]aliasResponse, 0, len(aliases))
	for _, a := range aliases {
		resp = append(resp, toAliasResponse(a))
	}

	respond.JSON(w, http.StatusOK, resp)
}

type appliedResponse struct {
	Row    int       `json:"row"`
	DealID uuid.UUID `json:"deal_id"`
	Index  int       `json:"index"`
	Status string    `json:"status"`
}

type unmatchedResponse struct {
	Row    int    `json:"row"`
	Reason string `json:"reason"`
	Deal   string `json:"deal,omitempty"`
}

type importResponse struct {
	Profile   string              `json:"profile"`
	Applied   []appliedResponse   `json:"applied"`
	Unmatched []unmatchedResponse `json:"unmatched"`
}

func (h *Handler) importRemittances(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(10 << 20); err != nil {
		http.Error(w, "failed to parse form: "+err.Error(), http.StatusBadRequest)
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		http.Error(w, "file field is required", http.StatusBadRequest)
		return
	}
	defer file.Close()

	format := importer.FormatCSV
	if strings.EqualFold(filepath.Ext(header.Filename), ".xlsx") {
		format = importer.FormatXLSX
	}

	res, err := h.importSvc.Import(r.Context(), format, file)
	if errors.Is(err, importer.ErrInvalidFile) {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	if err != nil {
		respond.Error(w, err)
		return
	}

	resp := importResponse{
		Profile:   res.Profile,
		Applied:   make([]appliedResponse, 0, len(res.Applied)),
		Unmatched: make([]unmatchedResponse, 0, len(res.Unmatched)),
	}

	for _, a := range res.Applied {
		resp.Applied = append(resp.Applied, appliedResponse{
			Row:    a.Row,
			DealID: a.DealID,
			Index:  a.Index,
			Status: string(a.Status),
		})
	}

	for _, u := range res.Unmatched {
		resp.Unmatched = append(resp.Unmatched, unmatchedResponse{Row: u.Row, Reason: u.Reason, Deal: u.Deal})
	}

	respond.JSON(w, http.StatusOK, resp)
}
