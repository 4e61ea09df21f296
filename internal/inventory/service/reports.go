package service

import (
	"context"
	"fmt"
	"sort"

	"github.com/pharmstock/pharmstock-backend/internal/forecast"
	"github.com/pharmstock/pharmstock-backend/internal/inventory/enrich"
	"github.com/pharmstock/pharmstock-backend/internal/risk"
	"github.com/pharmstock/pharmstock-backend/internal/store"
	"github.com/pharmstock/pharmstock-backend/pkg/errors"
	"github.com/pharmstock/pharmstock-backend/pkg/messaging"
)

// drugSummary aggregates one drug across locations and batch lots.
type drugSummary struct {
	DrugID      string
	DrugName    string
	TotalQty    int
	SafetyStock int
	AvgDailyUse float64
	Category    string
	Batches     []enrich.EnrichedItem
}

// RestockAdvice is one per-drug row of the restock report.
type RestockAdvice struct {
	DrugID          string                      `json:"drug_id"`
	DrugName        string                      `json:"drug_name"`
	TotalQty        int                         `json:"total_qty"`
	SafetyStock     int                         `json:"safety_stock"`
	SuggestedSafety int                         `json:"suggested_safety"`
	AvgDailyUse     float64                     `json:"avg_daily_use"`
	Category        string                      `json:"category"`
	Stockout        forecast.StockoutPrediction `json:"stockout"`
	Risk            risk.Assessment             `json:"risk"`
}

// GetRestockAdvice assesses every drug: projected stockout date, risk score,
// urgency and the pack-rounded quantity to order. Rows are sorted by risk
// score, highest first.
func (s *InventoryService) GetRestockAdvice(ctx context.Context) ([]RestockAdvice, error) {
	summaries, err := s.summarize(ctx)
	if err != nil {
		return nil, err
	}

	txns, err := s.txns.LoadRecent(ctx, s.now(), s.cfg.TransactionWindow)
	if err != nil {
		return nil, err
	}

	now := s.now()
	params := s.riskParams()
	advice := make([]RestockAdvice, 0, len(summaries))
	for _, d := range summaries {
		usage := forecast.UsageFromTransactions(txns, d.DrugID, now, s.cfg.TransactionWindow)
		stockout := forecast.PredictStockout(d.DrugID, d.TotalQty, usage, now)

		assessment := risk.Assess(d.worstItem(), risk.StockoutEstimate{
			HasStockout:       stockout.HasStockout,
			DaysUntilStockout: stockout.DaysUntilStockout,
		}, params)

		suggested := forecast.SafetyStock(
			d.AvgDailyUse, forecast.DemandSigma(usage),
			s.cfg.LeadTimeDays, s.cfg.ServiceLevel)

		advice = append(advice, RestockAdvice{
			DrugID:          d.DrugID,
			DrugName:        d.DrugName,
			TotalQty:        d.TotalQty,
			SafetyStock:     d.SafetyStock,
			SuggestedSafety: suggested,
			AvgDailyUse:     d.AvgDailyUse,
			Category:        d.Category,
			Stockout:        stockout,
			Risk:            assessment,
		})
	}

	sort.Slice(advice, func(i, j int) bool {
		if advice[i].Risk.Score != advice[j].Risk.Score {
			return advice[i].Risk.Score > advice[j].Risk.Score
		}
		return advice[i].DrugName < advice[j].DrugName
	})
	return advice, nil
}

// Alert flags one item needing attention.
type Alert struct {
	AlertType     string `json:"alert_type"`
	Severity      string `json:"severity"`
	DrugID        string `json:"drug_id"`
	DrugName      string `json:"drug_name"`
	Location      string `json:"location"`
	BatchLot      string `json:"batch_lot"`
	QtyOnHand     int    `json:"qty_on_hand"`
	SafetyStock   int    `json:"safety_stock"`
	DaysRemaining int    `json:"days_remaining"`
	Message       string `json:"message"`
}

// GetShortageAlerts reports every item that is expired, out of stock or
// below its safety level, most severe first, and publishes each alert.
func (s *InventoryService) GetShortageAlerts(ctx context.Context) ([]Alert, error) {
	items, err := s.ListItems(ctx)
	if err != nil {
		return nil, err
	}

	alerts := make([]Alert, 0)
	for _, item := range items {
		a, ok := alertFor(item)
		if !ok {
			continue
		}
		alerts = append(alerts, a)

		s.publisher.PublishAlertGenerated(ctx, messaging.AlertGeneratedEvent{
			AlertType: a.AlertType,
			Severity:  a.Severity,
			Message:   a.Message,
			DrugID:    a.DrugID,
			BatchLot:  a.BatchLot,
		})
	}

	sort.Slice(alerts, func(i, j int) bool {
		si, sj := severityRank(alerts[i].Severity), severityRank(alerts[j].Severity)
		if si != sj {
			return si < sj
		}
		return alerts[i].DrugName < alerts[j].DrugName
	})
	return alerts, nil
}

func alertFor(item enrich.EnrichedItem) (Alert, bool) {
	a := Alert{
		DrugID:        item.DrugID,
		DrugName:      item.DrugName,
		Location:      item.Location,
		BatchLot:      item.BatchLot,
		QtyOnHand:     item.QtyOnHand,
		SafetyStock:   item.SafetyStock,
		DaysRemaining: item.DaysRemaining,
	}

	switch item.Status {
	case enrich.StatusExpired:
		a.AlertType = "expired"
		a.Severity = "critical"
		a.Message = fmt.Sprintf("%s batch %s expired %d days ago", item.DrugName, item.BatchLot, -item.DaysRemaining)
	case enrich.StatusStockout:
		a.AlertType = "out_of_stock"
		a.Severity = "critical"
		a.Message = fmt.Sprintf("%s is out of stock at %s", item.DrugName, item.Location)
	case enrich.StatusCritical:
		a.AlertType = "low_stock"
		a.Severity = "critical"
		a.Message = fmt.Sprintf("%s is critically low (%d/%d)", item.DrugName, item.QtyOnHand, item.SafetyStock)
	case enrich.StatusLow:
		a.AlertType = "low_stock"
		a.Severity = "warning"
		a.Message = fmt.Sprintf("%s is below safety stock (%d/%d)", item.DrugName, item.QtyOnHand, item.SafetyStock)
	default:
		return Alert{}, false
	}
	return a, true
}

func severityRank(severity string) int {
	if severity == "critical" {
		return 0
	}
	return 1
}

// GetExpiryReport lists batches expiring within the given number of days,
// expired batches included, soonest expiry first so stock can be rotated
// first-expired-first-out.
func (s *InventoryService) GetExpiryReport(ctx context.Context, withinDays int) ([]enrich.EnrichedItem, error) {
	if withinDays <= 0 {
		withinDays = 90
	}

	items, err := s.ListItems(ctx)
	if err != nil {
		return nil, err
	}

	expiring := make([]enrich.EnrichedItem, 0)
	for _, item := range items {
		if item.DaysRemaining <= withinDays {
			expiring = append(expiring, item)
		}
	}

	sort.Slice(expiring, func(i, j int) bool {
		return expiring[i].DaysRemaining < expiring[j].DaysRemaining
	})
	return expiring, nil
}

// PurchaseOrder is one line of the order proposal.
type PurchaseOrder struct {
	DrugID      string  `json:"drug_id"`
	DrugName    string  `json:"drug_name"`
	Category    string  `json:"category"`
	TotalQty    int     `json:"total_qty"`
	OrderQty    int     `json:"order_qty"`
	Urgency     string  `json:"urgency"`
	RiskScore   float64 `json:"risk_score"`
	Rationale   string  `json:"rationale"`
}

// PurchaseOrderReport groups proposed orders by urgency tier.
type PurchaseOrderReport struct {
	Orders     map[string][]PurchaseOrder `json:"orders"`
	TotalLines int                        `json:"total_lines"`
	TotalUnits int                        `json:"total_units"`
}

// GetPurchaseOrders proposes order quantities per drug, grouped by urgency.
// Drugs needing nothing are left out.
func (s *InventoryService) GetPurchaseOrders(ctx context.Context) (*PurchaseOrderReport, error) {
	advice, err := s.GetRestockAdvice(ctx)
	if err != nil {
		return nil, err
	}

	report := &PurchaseOrderReport{Orders: make(map[string][]PurchaseOrder)}
	for _, row := range advice {
		if row.Risk.RecommendedQty == 0 {
			continue
		}

		order := PurchaseOrder{
			DrugID:    row.DrugID,
			DrugName:  row.DrugName,
			Category:  row.Category,
			TotalQty:  row.TotalQty,
			OrderQty:  row.Risk.RecommendedQty,
			Urgency:   row.Risk.Urgency,
			RiskScore: row.Risk.Score,
			Rationale: row.Risk.Rationale,
		}
		report.Orders[order.Urgency] = append(report.Orders[order.Urgency], order)
		report.TotalLines++
		report.TotalUnits += order.OrderQty
	}
	return report, nil
}

// DashboardStats summarizes the whole inventory for the overview screen.
type DashboardStats struct {
	TotalItems        int            `json:"total_items"`
	TotalDrugs        int            `json:"total_drugs"`
	TotalStock        int            `json:"total_stock"`
	StatusCounts      map[string]int `json:"status_counts"`
	CategoryBreakdown map[string]int `json:"category_breakdown"`
	ExpiringIn30Days  int            `json:"expiring_in_30_days"`
	ExpiredCount      int            `json:"expired_count"`
}

// GetDashboardStats computes the overview counters.
func (s *InventoryService) GetDashboardStats(ctx context.Context) (*DashboardStats, error) {
	items, err := s.ListItems(ctx)
	if err != nil {
		return nil, err
	}

	stats := &DashboardStats{
		TotalItems:        len(items),
		StatusCounts:      make(map[string]int),
		CategoryBreakdown: make(map[string]int),
	}

	drugs := make(map[string]struct{})
	for _, item := range items {
		drugs[item.DrugID] = struct{}{}
		stats.TotalStock += item.QtyOnHand
		stats.StatusCounts[item.Status]++
		stats.CategoryBreakdown[item.Category]++

		switch {
		case item.Status == enrich.StatusExpired:
			stats.ExpiredCount++
		case item.DaysRemaining <= 30:
			stats.ExpiringIn30Days++
		}
	}
	stats.TotalDrugs = len(drugs)
	return stats, nil
}

// DemandForecast is the full per-drug projection: the daily forecast plus
// seasonality and stockout analysis over the same usage window.
type DemandForecast struct {
	Forecast    forecast.Result             `json:"forecast"`
	Seasonality forecast.SeasonalityResult  `json:"seasonality"`
	Stockout    forecast.StockoutPrediction `json:"stockout"`
	WindowDays  int                         `json:"window_days"`
}

// GetDemandForecast projects demand for one drug over the configured horizon.
func (s *InventoryService) GetDemandForecast(ctx context.Context, drugID string) (*DemandForecast, error) {
	summaries, err := s.summarize(ctx)
	if err != nil {
		return nil, err
	}

	var drug *drugSummary
	for i := range summaries {
		if summaries[i].DrugID == drugID {
			drug = &summaries[i]
			break
		}
	}
	if drug == nil {
		return nil, errors.NotFound("drug")
	}

	txns, err := s.txns.LoadRecent(ctx, s.now(), s.cfg.TransactionWindow)
	if err != nil {
		return nil, err
	}

	now := s.now()
	usage := forecast.UsageFromTransactions(txns, drugID, now, s.cfg.TransactionWindow)

	return &DemandForecast{
		Forecast: forecast.Forecast(forecast.Input{
			DrugID:       drug.DrugID,
			DrugName:     drug.DrugName,
			CurrentStock: drug.TotalQty,
			Usage:        usage,
			Start:        now,
			Horizon:      s.cfg.ForecastHorizon,
		}),
		Seasonality: forecast.DetectSeasonality(usage),
		Stockout:    forecast.PredictStockout(drugID, drug.TotalQty, usage, now),
		WindowDays:  s.cfg.TransactionWindow,
	}, nil
}

// summarize folds the per-batch records into one summary per drug: quantities
// and daily use sum, safety stock takes the maximum, and the category is the
// most restrictive across batches.
func (s *InventoryService) summarize(ctx context.Context) ([]drugSummary, error) {
	items, err := s.ListItems(ctx)
	if err != nil {
		return nil, err
	}

	byDrug := make(map[string]*drugSummary)
	order := make([]string, 0)
	for _, item := range items {
		d, ok := byDrug[item.DrugID]
		if !ok {
			d = &drugSummary{
				DrugID:   item.DrugID,
				DrugName: item.DrugName,
				Category: item.Category,
			}
			byDrug[item.DrugID] = d
			order = append(order, item.DrugID)
		}

		d.TotalQty += item.QtyOnHand
		d.AvgDailyUse += item.AvgDailyUse
		if item.SafetyStock > d.SafetyStock {
			d.SafetyStock = item.SafetyStock
		}
		if categoryRank(item.Category) < categoryRank(d.Category) {
			d.Category = item.Category
		}
		d.Batches = append(d.Batches, item)
	}

	out := make([]drugSummary, 0, len(byDrug))
	for _, id := range order {
		out = append(out, *byDrug[id])
	}
	return out, nil
}

// worstItem builds the drug-level view the risk scorer consumes: aggregate
// quantities with the drug's category and the earliest expiry.
func (d *drugSummary) worstItem() enrich.EnrichedItem {
	item := enrich.EnrichedItem{
		InventoryItem: store.InventoryItem{
			DrugID:      d.DrugID,
			DrugName:    d.DrugName,
			QtyOnHand:   d.TotalQty,
			SafetyStock: d.SafetyStock,
			AvgDailyUse: d.AvgDailyUse,
		},
		Category: d.Category,
	}
	for i, b := range d.Batches {
		if i == 0 || b.DaysRemaining < item.DaysRemaining {
			item.DaysRemaining = b.DaysRemaining
			item.ExpiryDate = b.ExpiryDate
		}
	}
	return item
}

func categoryRank(category string) int {
	switch category {
	case enrich.CategoryControlled:
		return 0
	case enrich.CategoryRefrigerated:
		return 1
	default:
		return 2
	}
}

func (s *InventoryService) riskParams() risk.Params {
	return risk.Params{
		LeadTimeDays:     s.cfg.LeadTimeDays,
		TargetDaysSupply: s.cfg.TargetDaysSupply,
		PackSize:         s.cfg.PackSize,
	}
}
