package inventory

import (
	"encoding/json"
	"fmt"

	"github.com/imrishuroy/go-vendon-inventory/internal/vendon"
)

// DefaultAmountMax is used when neither feed carries a maximum capacity for a
// product. The front-end needs a number to draw stock-level bars.
const DefaultAmountMax = 10

// CapacityIndex maps product name to the authoritative amount_max.
type CapacityIndex map[string]vendon.OptionalInt

// NewCapacityIndex indexes the product feed. Entries without a usable
// amount_max are skipped, so they never erase an earlier value.
func NewCapacityIndex(products []vendon.ProductItem) CapacityIndex {
	idx := make(CapacityIndex, len(products))
	for _, p := range products {
		if p.Name == "" || !p.Defaults.AmountMax.Valid() {
			continue
		}
		idx[p.Name] = p.Defaults.AmountMax
	}
	return idx
}

// Lookup returns the indexed capacity for name.
func (idx CapacityIndex) Lookup(name string) vendon.OptionalInt {
	if name == "" {
		return vendon.None()
	}
	return idx[name]
}

// MergedItem is an inventory item with machine_defaults.amount_max resolved.
// It marshals with sorted keys.
type MergedItem map[string]json.RawMessage

// Merger reconciles the inventory report with the product feed.
type Merger struct {
	FallbackAmountMax int
}

// NewMerger returns a Merger; a non-positive fallback means DefaultAmountMax.
func NewMerger(fallback int) Merger {
	if fallback <= 0 {
		fallback = DefaultAmountMax
	}
	return Merger{FallbackAmountMax: fallback}
}

// ResolveAmountMax applies the precedence: product feed, then the item's own
// defaults, then the fallback.
func (m Merger) ResolveAmountMax(idx CapacityIndex, item vendon.InventoryItem) int {
	return idx.Lookup(item.ProductName).
		Or(item.Defaults.AmountMax).
		OrElse(m.FallbackAmountMax)
}

// Merge produces one item per inventory entry, in upstream order. A null
// entry stays null.
func (m Merger) Merge(items []vendon.InventoryItem, products []vendon.ProductItem) ([]MergedItem, error) {
	idx := NewCapacityIndex(products)

	out := make([]MergedItem, 0, len(items))
	for i, item := range items {
		if item.IsNull() {
			out = append(out, nil)
			continue
		}
		defaults, err := json.Marshal(item.Defaults.WithAmountMax(m.ResolveAmountMax(idx, item)))
		if err != nil {
			return nil, fmt.Errorf("encode machine_defaults for item %d: %w", i, err)
		}
		merged := MergedItem(item.Fields())
		merged["machine_defaults"] = defaults
		out = append(out, merged)
	}
	return out, nil
}
