package handler

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/pharmstock/pharmstock-backend/internal/inventory/service"
	"github.com/pharmstock/pharmstock-backend/pkg/httputil"
	"github.com/pharmstock/pharmstock-backend/pkg/logger"
)

// InventoryHandler handles inventory endpoints
type InventoryHandler struct {
	service *service.InventoryService
	logger  *logger.Logger
}

// NewInventoryHandler creates a new inventory handler
func NewInventoryHandler(svc *service.InventoryService, log *logger.Logger) *InventoryHandler {
	return &InventoryHandler{
		service: svc,
		logger:  log,
	}
}

// Routes mounts the inventory endpoints on a router.
func (h *InventoryHandler) Routes(r chi.Router) {
	r.Get("/items", h.List)
	r.Get("/items/lookup", h.Get)
	r.Get("/search", h.Search)

	r.Post("/use", h.Use)
	r.Post("/receive", h.Receive)
	r.Post("/adjust", h.Adjust)

	r.Get("/transactions", h.Transactions)

	r.Get("/reports/restock", h.Restock)
	r.Get("/reports/alerts", h.Alerts)
	r.Get("/reports/expiry", h.Expiry)
	r.Get("/reports/purchase-orders", h.PurchaseOrders)
	r.Get("/reports/dashboard", h.Dashboard)

	r.Get("/forecast/{drugID}", h.Forecast)
}

// List lists all inventory items with derived status
func (h *InventoryHandler) List(w http.ResponseWriter, r *http.Request) {
	items, err := h.service.ListItems(r.Context())
	if err != nil {
		httputil.Error(w, err)
		return
	}

	httputil.JSON(w, http.StatusOK, items)
}

// Get looks up one record by drug ID, location and batch lot
func (h *InventoryHandler) Get(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	item, err := h.service.GetItem(r.Context(), q.Get("drug_id"), q.Get("location"), q.Get("batch_lot"))
	if err != nil {
		httputil.Error(w, err)
		return
	}

	httputil.JSON(w, http.StatusOK, item)
}

// Search finds items by fuzzy drug name match
func (h *InventoryHandler) Search(w http.ResponseWriter, r *http.Request) {
	res, err := h.service.SearchDrug(r.Context(), r.URL.Query().Get("q"))
	if err != nil {
		httputil.Error(w, err)
		return
	}

	httputil.JSON(w, http.StatusOK, res)
}

// Use records a stock withdrawal
func (h *InventoryHandler) Use(w http.ResponseWriter, r *http.Request) {
	var req service.StockRequest
	if err := httputil.DecodeJSON(r, &req); err != nil {
		httputil.Error(w, err)
		return
	}
	if err := httputil.Validate(req); err != nil {
		httputil.Error(w, err)
		return
	}

	change, err := h.service.RecordUsage(r.Context(), req)
	if err != nil {
		httputil.Error(w, err)
		return
	}

	httputil.JSON(w, http.StatusOK, change)
}

// Receive records received stock
func (h *InventoryHandler) Receive(w http.ResponseWriter, r *http.Request) {
	var req service.StockRequest
	if err := httputil.DecodeJSON(r, &req); err != nil {
		httputil.Error(w, err)
		return
	}
	if err := httputil.Validate(req); err != nil {
		httputil.Error(w, err)
		return
	}

	change, err := h.service.RecordReceipt(r.Context(), req)
	if err != nil {
		httputil.Error(w, err)
		return
	}

	httputil.JSON(w, http.StatusOK, change)
}

// Adjust sets an absolute quantity after a physical count
func (h *InventoryHandler) Adjust(w http.ResponseWriter, r *http.Request) {
	var req service.AdjustRequest
	if err := httputil.DecodeJSON(r, &req); err != nil {
		httputil.Error(w, err)
		return
	}
	if err := httputil.Validate(req); err != nil {
		httputil.Error(w, err)
		return
	}

	change, err := h.service.AdjustStock(r.Context(), req)
	if err != nil {
		httputil.Error(w, err)
		return
	}

	httputil.JSON(w, http.StatusOK, change)
}

// Transactions lists recent transactions, optionally for one drug
func (h *InventoryHandler) Transactions(w http.ResponseWriter, r *http.Request) {
	days, _ := strconv.Atoi(r.URL.Query().Get("days"))

	txns, err := h.service.Transactions(r.Context(), r.URL.Query().Get("drug_id"), days)
	if err != nil {
		httputil.Error(w, err)
		return
	}

	httputil.JSON(w, http.StatusOK, txns)
}
