// Package service orchestrates the inventory operations: reads go through
// enrichment, writes go through the record store plus the transaction log,
// and every mutation is published as an event when a broker is attached.
package service

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/pharmstock/pharmstock-backend/internal/inventory/enrich"
	"github.com/pharmstock/pharmstock-backend/internal/inventory/events"
	"github.com/pharmstock/pharmstock-backend/internal/match"
	"github.com/pharmstock/pharmstock-backend/internal/store"
	"github.com/pharmstock/pharmstock-backend/pkg/actor"
	"github.com/pharmstock/pharmstock-backend/pkg/config"
	"github.com/pharmstock/pharmstock-backend/pkg/errors"
	"github.com/pharmstock/pharmstock-backend/pkg/logger"
	"github.com/pharmstock/pharmstock-backend/pkg/messaging"
)

// avgUseAlpha is the smoothing weight applied to AvgDailyUse on each USE
// transaction, so the stored rate tracks demand without swinging on a
// single large withdrawal.
const avgUseAlpha = 0.1

// InventoryService handles inventory business logic
type InventoryService struct {
	inv        *store.InventoryStore
	txns       *store.TransactionStore
	publisher  *events.InventoryEventPublisher
	categories enrich.CategoryTable
	cfg        config.InventoryConfig
	logger     *logger.Logger
	now        func() time.Time
}

// NewInventoryService creates a new inventory service. publisher may be nil
// when no broker is configured.
func NewInventoryService(
	inv *store.InventoryStore,
	txns *store.TransactionStore,
	publisher *events.InventoryEventPublisher,
	cfg config.InventoryConfig,
	log *logger.Logger,
) *InventoryService {
	return &InventoryService{
		inv:        inv,
		txns:       txns,
		publisher:  publisher,
		categories: enrich.DefaultCategoryTable(),
		cfg:        cfg,
		logger:     log,
		now:        time.Now,
	}
}

// ListItems returns every inventory record enriched with status, category
// and days remaining, sorted by drug name then batch lot.
func (s *InventoryService) ListItems(ctx context.Context) ([]enrich.EnrichedItem, error) {
	items, err := s.inv.LoadAll(ctx)
	if err != nil {
		return nil, err
	}

	enriched := enrich.EnrichAll(items, s.now(), s.categories)
	sort.Slice(enriched, func(i, j int) bool {
		if enriched[i].DrugName != enriched[j].DrugName {
			return enriched[i].DrugName < enriched[j].DrugName
		}
		return enriched[i].BatchLot < enriched[j].BatchLot
	})
	return enriched, nil
}

// GetItem returns one record by its composite identity.
func (s *InventoryService) GetItem(ctx context.Context, drugID, location, batchLot string) (*enrich.EnrichedItem, error) {
	items, err := s.inv.LoadAll(ctx)
	if err != nil {
		return nil, err
	}

	key := drugID + "|" + location + "|" + batchLot
	for i := range items {
		if items[i].Key() == key {
			e := enrich.Enrich(items[i], s.now(), s.categories)
			return &e, nil
		}
	}
	return nil, errors.NotFound("inventory item")
}

// SearchResult carries fuzzy search output. When no record clears the match
// threshold, Matches is empty and Suggestions lists the nearest drug names.
type SearchResult struct {
	Query       string               `json:"query"`
	Matches     []enrich.EnrichedItem `json:"matches"`
	Suggestions []match.Suggestion   `json:"suggestions,omitempty"`
}

// SearchDrug finds inventory records whose drug name matches the query under
// the fuzzy threshold. A miss is a valid result with suggestions, not an
// error.
func (s *InventoryService) SearchDrug(ctx context.Context, query string) (*SearchResult, error) {
	if strings.TrimSpace(query) == "" {
		return nil, errors.BadRequest("search query must not be empty")
	}

	items, err := s.inv.LoadAll(ctx)
	if err != nil {
		return nil, err
	}

	now := s.now()
	res := &SearchResult{Query: query}
	for _, item := range items {
		if match.Matches(query, item.DrugName, s.cfg.FuzzyThreshold) {
			res.Matches = append(res.Matches, enrich.Enrich(item, now, s.categories))
		}
	}

	if len(res.Matches) > 0 {
		sort.Slice(res.Matches, func(i, j int) bool {
			return match.Similarity(query, res.Matches[i].DrugName) >
				match.Similarity(query, res.Matches[j].DrugName)
		})
		return res, nil
	}

	names := distinctDrugNames(items)
	res.Suggestions = match.BestMatches(query, names, 5)
	return res, nil
}

// StockRequest identifies the record to mutate and the quantity involved.
type StockRequest struct {
	DrugID   string `json:"drug_id" validate:"required"`
	Location string `json:"location" validate:"required"`
	BatchLot string `json:"batch_lot" validate:"required"`
	Qty      int    `json:"qty" validate:"required,gt=0"`
	Details  string `json:"details"`
}

// AdjustRequest sets an absolute quantity, e.g. after a physical count.
type AdjustRequest struct {
	DrugID   string `json:"drug_id" validate:"required"`
	Location string `json:"location" validate:"required"`
	BatchLot string `json:"batch_lot" validate:"required"`
	NewQty   int    `json:"new_qty" validate:"gte=0"`
	Details  string `json:"details"`
}

// StockChange is the result of a stock mutation: the updated record and the
// transaction that recorded it.
type StockChange struct {
	Item        enrich.EnrichedItem `json:"item"`
	Transaction store.Transaction   `json:"transaction"`
}

// RecordUsage withdraws stock. The quantity on hand never goes negative; a
// withdrawal beyond the current stock is rejected.
func (s *InventoryService) RecordUsage(ctx context.Context, req StockRequest) (*StockChange, error) {
	return s.mutate(ctx, req.DrugID, req.Location, req.BatchLot, store.ActionUse, req.Details,
		func(item *store.InventoryItem) (int, error) {
			if req.Qty > item.QtyOnHand {
				return 0, errors.Conflict(fmt.Sprintf(
					"insufficient stock for %s: requested %d, on hand %d",
					item.DrugID, req.Qty, item.QtyOnHand))
			}
			item.QtyOnHand -= req.Qty
			item.AvgDailyUse = (1-avgUseAlpha)*item.AvgDailyUse + avgUseAlpha*float64(req.Qty)
			return -req.Qty, nil
		})
}

// RecordReceipt adds received stock to the record.
func (s *InventoryService) RecordReceipt(ctx context.Context, req StockRequest) (*StockChange, error) {
	return s.mutate(ctx, req.DrugID, req.Location, req.BatchLot, store.ActionReceive, req.Details,
		func(item *store.InventoryItem) (int, error) {
			item.QtyOnHand += req.Qty
			return req.Qty, nil
		})
}

// AdjustStock sets the quantity on hand to an absolute value.
func (s *InventoryService) AdjustStock(ctx context.Context, req AdjustRequest) (*StockChange, error) {
	if req.NewQty < 0 {
		return nil, errors.BadRequest("adjusted quantity must not be negative")
	}
	return s.mutate(ctx, req.DrugID, req.Location, req.BatchLot, store.ActionAdjusted, req.Details,
		func(item *store.InventoryItem) (int, error) {
			change := req.NewQty - item.QtyOnHand
			item.QtyOnHand = req.NewQty
			return change, nil
		})
}

// mutate runs the read-modify-write cycle shared by all stock operations:
// load the collection, apply the change to the addressed record, persist the
// full collection atomically, then append the transaction and publish.
func (s *InventoryService) mutate(
	ctx context.Context,
	drugID, location, batchLot, action, details string,
	apply func(*store.InventoryItem) (int, error),
) (*StockChange, error) {
	items, err := s.inv.LoadAll(ctx)
	if err != nil {
		return nil, err
	}

	idx := -1
	key := drugID + "|" + location + "|" + batchLot
	for i := range items {
		if items[i].Key() == key {
			idx = i
			break
		}
	}
	if idx < 0 {
		return nil, errors.NotFound("inventory item")
	}

	change, err := apply(&items[idx])
	if err != nil {
		return nil, err
	}

	if err := s.inv.SaveAll(ctx, items); err != nil {
		return nil, err
	}

	userID := "system"
	if who := actor.FromContext(ctx); who != nil {
		userID = who.ID
	}

	txn := store.Transaction{
		TxnID:     uuid.New().String(),
		Timestamp: s.now().UTC(),
		UserID:    userID,
		DrugID:    drugID,
		Action:    action,
		QtyChange: change,
		Details:   details,
	}
	if err := s.txns.Append(ctx, txn); err != nil {
		// The stock write already landed; surface the log failure loudly
		// instead of unwinding it.
		s.logger.Error().Err(err).Str("drug_id", drugID).Msg("stock saved but transaction log append failed")
		return nil, err
	}

	item := items[idx]
	s.publisher.PublishStockAdjusted(ctx, messaging.StockAdjustedEvent{
		TxnID:       txn.TxnID,
		DrugID:      item.DrugID,
		DrugName:    item.DrugName,
		Location:    item.Location,
		BatchLot:    item.BatchLot,
		Action:      action,
		QtyChange:   change,
		NewQuantity: item.QtyOnHand,
		PerformedBy: userID,
	})

	s.logger.Info().
		Str("drug_id", drugID).
		Str("action", action).
		Int("qty_change", change).
		Int("new_qty", item.QtyOnHand).
		Msg("stock updated")

	return &StockChange{
		Item:        enrich.Enrich(item, s.now(), s.categories),
		Transaction: txn,
	}, nil
}

// Transactions returns the transaction log for a drug within the recent
// window, newest first. An empty drugID returns all drugs.
func (s *InventoryService) Transactions(ctx context.Context, drugID string, days int) ([]store.Transaction, error) {
	if days <= 0 {
		days = s.cfg.TransactionWindow
	}

	txns, err := s.txns.LoadRecent(ctx, s.now(), days)
	if err != nil {
		return nil, err
	}

	out := make([]store.Transaction, 0, len(txns))
	for _, t := range txns {
		if drugID == "" || t.DrugID == drugID {
			out = append(out, t)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Timestamp.After(out[j].Timestamp) })
	return out, nil
}

func distinctDrugNames(items []store.InventoryItem) []string {
	seen := make(map[string]struct{}, len(items))
	names := make([]string, 0, len(items))
	for _, it := range items {
		if _, ok := seen[it.DrugName]; ok {
			continue
		}
		seen[it.DrugName] = struct{}{}
		names = append(names, it.DrugName)
	}
	return names
}
