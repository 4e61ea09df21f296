package handler

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/pharmstock/pharmstock-backend/pkg/httputil"
)

// Restock returns the per-drug restock advice, highest risk first
func (h *InventoryHandler) Restock(w http.ResponseWriter, r *http.Request) {
	advice, err := h.service.GetRestockAdvice(r.Context())
	if err != nil {
		httputil.Error(w, err)
		return
	}

	httputil.JSON(w, http.StatusOK, advice)
}

// Alerts returns shortage and expiry alerts, most severe first
func (h *InventoryHandler) Alerts(w http.ResponseWriter, r *http.Request) {
	alerts, err := h.service.GetShortageAlerts(r.Context())
	if err != nil {
		httputil.Error(w, err)
		return
	}

	httputil.JSON(w, http.StatusOK, alerts)
}

// Expiry returns batches expiring within the window, soonest first
func (h *InventoryHandler) Expiry(w http.ResponseWriter, r *http.Request) {
	withinDays, _ := strconv.Atoi(r.URL.Query().Get("within_days"))

	report, err := h.service.GetExpiryReport(r.Context(), withinDays)
	if err != nil {
		httputil.Error(w, err)
		return
	}

	httputil.JSON(w, http.StatusOK, report)
}

// PurchaseOrders returns proposed orders grouped by urgency
func (h *InventoryHandler) PurchaseOrders(w http.ResponseWriter, r *http.Request) {
	report, err := h.service.GetPurchaseOrders(r.Context())
	if err != nil {
		httputil.Error(w, err)
		return
	}

	httputil.JSON(w, http.StatusOK, report)
}

// Dashboard returns the overview counters
func (h *InventoryHandler) Dashboard(w http.ResponseWriter, r *http.Request) {
	stats, err := h.service.GetDashboardStats(r.Context())
	if err != nil {
		httputil.Error(w, err)
		return
	}

	httputil.JSON(w, http.StatusOK, stats)
}

// Forecast returns the demand projection for one drug
func (h *InventoryHandler) Forecast(w http.ResponseWriter, r *http.Request) {
	drugID := chi.URLParam(r, "drugID")

	df, err := h.service.GetDemandForecast(r.Context(), drugID)
	if err != nil {
		httputil.Error(w, err)
		return
	}

	httputil.JSON(w, http.StatusOK, df)
}
