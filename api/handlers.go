/*
handlers.go - HTTP API handlers for the tax engine

PURPOSE:
  Exposes the tax engine to the dashboard frontend. Handles HTTP
  request/response, JSON serialization, and delegates to the taxes
  package and the sales store.

ENDPOINTS:
  Tax:
    POST   /api/tax/calculate   Breakdown for a single amount
    POST   /api/tax/cart        Aggregate breakdown for cart line items
    POST   /api/tax/reverse     Decompose a known total
    GET    /api/tax/rates       Static rate table
    GET    /api/tax/config      Current default configuration
    PUT    /api/tax/config      Partial configuration update (persisted)

  Sales:
    GET    /api/sales           List finalized sales
    POST   /api/sales           Finalize a cart: compute taxes and persist
    GET    /api/sales/{id}      One sale with its stored breakdown

ERROR HANDLING:
  - 400: Invalid configuration, malformed line items, bad JSON
  - 404: Unknown sale
  - 500: Storage failures

SEE ALSO:
  - dto.go: Request/response data structures
  - server.go: Router setup and middleware
*/
package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"

	"github.com/gastroboard/tax-engine/store/sqlite"
	"github.com/gastroboard/tax-engine/taxes"
)

// =============================================================================
// HANDLER CONTEXT
// =============================================================================

// Handler holds all dependencies for HTTP handlers.
type Handler struct {
	Store *sqlite.Store
	Tax   *taxes.Service
}

// NewHandler creates a handler around the store and the tax facade.
func NewHandler(store *sqlite.Store, tax *taxes.Service) *Handler {
	return &Handler{Store: store, Tax: tax}
}

// =============================================================================
// TAX CALCULATION HANDLERS
// =============================================================================

// CalculateTax computes the breakdown for one amount.
// POST /api/tax/calculate
func (h *Handler) CalculateTax(w http.ResponseWriter, r *http.Request) {
	h.calculateAmount(w, r, taxes.CalculateForAmount)
}

// ReverseTax decomposes a known amount into subtotal and taxes.
// POST /api/tax/reverse
func (h *Handler) ReverseTax(w http.ResponseWriter, r *http.Request) {
	h.calculateAmount(w, r, taxes.ReverseCalculation)
}

func (h *Handler) calculateAmount(w http.ResponseWriter, r *http.Request, calc func(decimal.Decimal, taxes.Configuration) taxes.Result) {
	var req CalculateRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	amount, err := requireNumber(req.Amount, "", "amount")
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid amount", err)
		return
	}

	cfg, err := h.effectiveConfig(req.Config)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, toResultDTO(calc(amount, cfg)))
}

// CalculateCart computes the aggregate breakdown for a cart.
// POST /api/tax/cart
func (h *Handler) CalculateCart(w http.ResponseWriter, r *http.Request) {
	var req CartRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	items, cfg, err := h.resolveCart(req)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	result, err := taxes.CalculateForItems(items, cfg)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, toResultDTO(result))
}

// resolveCart converts the request into domain line items and the
// effective configuration for this call.
func (h *Handler) resolveCart(req CartRequest) ([]taxes.LineItem, taxes.Configuration, error) {
	items := make([]taxes.LineItem, len(req.Items))
	for i, dto := range req.Items {
		item, err := dto.toDomain()
		if err != nil {
			return nil, taxes.Configuration{}, err
		}
		items[i] = item
	}
	cfg, err := h.effectiveConfig(req.Config)
	if err != nil {
		return nil, taxes.Configuration{}, err
	}
	return items, cfg, nil
}

// effectiveConfig merges a per-request override over the facade's current
// default. The stored default is never modified here.
func (h *Handler) effectiveConfig(override *ConfigUpdateDTO) (taxes.Configuration, error) {
	cfg := h.Tax.Configuration()
	if override == nil {
		return cfg, nil
	}
	update, err := override.toUpdate()
	if err != nil {
		return taxes.Configuration{}, err
	}
	return cfg.Merge(update)
}

// =============================================================================
// CONFIGURATION HANDLERS
// =============================================================================

// GetConfig returns the facade's current default configuration.
// GET /api/tax/config
func (h *Handler) GetConfig(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, toConfigDTO(h.Tax.Configuration()))
}

// UpdateConfig merges a partial update into the default configuration and
// persists the merged result.
// PUT /api/tax/config
func (h *Handler) UpdateConfig(w http.ResponseWriter, r *http.Request) {
	var dto ConfigUpdateDTO
	if err := decodeJSON(r, &dto); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	update, err := dto.toUpdate()
	if err != nil {
		writeDomainError(w, err)
		return
	}

	if err := h.Tax.UpdateConfiguration(update); err != nil {
		writeDomainError(w, err)
		return
	}

	cfg := h.Tax.Configuration()
	if err := h.Store.SaveSettings(r.Context(), cfg); err != nil {
		// The in-memory default already changed; losing persistence is a
		// server fault, not a reason to roll the update back silently.
		log.Error().Err(err).Msg("failed to persist tax settings")
		writeError(w, http.StatusInternalServerError, "Failed to persist settings", err)
		return
	}

	writeJSON(w, http.StatusOK, toConfigDTO(cfg))
}

// ListRates returns the static rate table.
// GET /api/tax/rates
func (h *Handler) ListRates(w http.ResponseWriter, r *http.Request) {
	dto := RatesDTO{
		VAT:         map[string]string{},
		TurnoverTax: map[string]string{},
	}
	for category, rate := range taxes.VATCategories() {
		dto.VAT[string(category)] = rate.String()
	}
	for region, rate := range taxes.TurnoverRegions() {
		dto.TurnoverTax[string(region)] = rate.String()
	}
	writeJSON(w, http.StatusOK, dto)
}

// =============================================================================
// SALES HANDLERS
// =============================================================================

// CreateSale finalizes a cart: computes the breakdown and stores the
// numeric fields verbatim.
// POST /api/sales
func (h *Handler) CreateSale(w http.ResponseWriter, r *http.Request) {
	var req CartRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	items, cfg, err := h.resolveCart(req)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	result, err := taxes.CalculateForItems(items, cfg)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	sale := sqlite.SaleRecord{
		ID:        uuid.NewString(),
		CreatedAt: time.Now().UTC(),
		Items:     make([]sqlite.SaleItemRecord, len(items)),
		Result:    result,
	}
	for i, item := range items {
		sale.Items[i] = sqlite.SaleItemRecord{
			ProductID:   item.ProductID,
			Quantity:    item.Quantity,
			UnitPrice:   item.UnitPrice,
			VATCategory: string(item.VATCategory),
		}
	}

	if err := h.Store.SaveSale(r.Context(), sale); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to save sale", err)
		return
	}

	log.Info().
		Str("sale_id", sale.ID).
		Int("items", len(sale.Items)).
		Str("total", result.TotalAmount.String()).
		Msg("sale recorded")

	writeJSON(w, http.StatusCreated, toSaleDTO(sale))
}

// ListSales returns all finalized sales, newest first.
// GET /api/sales
func (h *Handler) ListSales(w http.ResponseWriter, r *http.Request) {
	sales, err := h.Store.ListSales(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list sales", err)
		return
	}

	dtos := make([]SaleDTO, len(sales))
	for i, sale := range sales {
		dtos[i] = toSaleDTO(sale)
	}
	writeJSON(w, http.StatusOK, dtos)
}

// GetSale returns one sale by ID.
// GET /api/sales/{id}
func (h *Handler) GetSale(w http.ResponseWriter, r *http.Request) {
	sale, err := h.Store.GetSale(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		if errors.Is(err, sqlite.ErrSaleNotFound) {
			writeError(w, http.StatusNotFound, "Sale not found", err)
			return
		}
		writeError(w, http.StatusInternalServerError, "Failed to load sale", err)
		return
	}
	writeJSON(w, http.StatusOK, toSaleDTO(sale))
}

// =============================================================================
// HELPERS
// =============================================================================

func decodeJSON(r *http.Request, dst any) error {
	dec := json.NewDecoder(r.Body)
	dec.UseNumber()
	return dec.Decode(dst)
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, message string, err error) {
	resp := ErrorResponse{Error: message}
	if err != nil {
		resp.Details = err.Error()
	}
	writeJSON(w, status, resp)
}

// writeDomainError maps engine errors onto HTTP statuses.
func writeDomainError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, taxes.ErrInvalidConfiguration):
		writeError(w, http.StatusBadRequest, "Invalid configuration", err)
	case errors.Is(err, taxes.ErrInvalidLineItem):
		writeError(w, http.StatusBadRequest, "Invalid line item", err)
	default:
		writeError(w, http.StatusInternalServerError, "Calculation failed", err)
	}
}
