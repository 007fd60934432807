package inventory

import (
	"context"
	"encoding/json"
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/imrishuroy/go-vendon-inventory/internal/vendon"
)

// Strategy produces the response body for one machine. Implementations never
// return a partial body: it is either the full array or an error.
type Strategy interface {
	Name() string
	Inventory(ctx context.Context, machineID string) (json.RawMessage, error)
}

// CombinedSource is the single-endpoint upstream.
type CombinedSource interface {
	MachineProducts(ctx context.Context, machineID string) (json.RawMessage, error)
}

// DualSource is the two-endpoint upstream.
type DualSource interface {
	InventoryReport(ctx context.Context, machineID string) ([]vendon.InventoryItem, error)
	ProductCapacities(ctx context.Context, machineID string) ([]vendon.ProductItem, error)
}

// CombinedStrategy passes GET /machine/{id}/products through unchanged.
type CombinedStrategy struct {
	src CombinedSource
}

func NewCombinedStrategy(src CombinedSource) *CombinedStrategy {
	return &CombinedStrategy{src: src}
}

func (s *CombinedStrategy) Name() string { return "combined" }

func (s *CombinedStrategy) Inventory(ctx context.Context, machineID string) (json.RawMessage, error) {
	return s.src.MachineProducts(ctx, machineID)
}

// DualStrategy fetches the inventory report and the product feed
// concurrently and merges capacities into the report.
type DualStrategy struct {
	src    DualSource
	merger Merger
}

func NewDualStrategy(src DualSource, merger Merger) *DualStrategy {
	return &DualStrategy{src: src, merger: merger}
}

func (s *DualStrategy) Name() string { return "dual" }

func (s *DualStrategy) Inventory(ctx context.Context, machineID string) (json.RawMessage, error) {
	var (
		items    []vendon.InventoryItem
		products []vendon.ProductItem
	)

	// the first failure cancels the sibling request
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		items, err = s.src.InventoryReport(gctx, machineID)
		return err
	})
	g.Go(func() error {
		var err error
		products, err = s.src.ProductCapacities(gctx, machineID)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	merged, err := s.merger.Merge(items, products)
	if err != nil {
		return nil, err
	}
	body, err := json.Marshal(merged)
	if err != nil {
		return nil, fmt.Errorf("encode merged inventory: %w", err)
	}
	return body, nil
}

// Source is an upstream that supports both strategies.
type Source interface {
	CombinedSource
	DualSource
}

// NewStrategy picks the strategy by name ("combined" or "dual").
func NewStrategy(name string, src Source, merger Merger) (Strategy, error) {
	switch name {
	case "combined":
		return NewCombinedStrategy(src), nil
	case "dual":
		return NewDualStrategy(src, merger), nil
	default:
		return nil, fmt.Errorf("unknown inventory strategy %q", name)
	}
}
