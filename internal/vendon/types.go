package vendon

import (
	"bytes"
	"encoding/json"
	"math"
	"strconv"
	"strings"
)

// OptionalInt is an integer that may be missing from an upstream payload.
type OptionalInt struct {
	value int
	valid bool
}

// Some wraps a present value.
func Some(v int) OptionalInt { return OptionalInt{value: v, valid: true} }

// None is the missing value.
func None() OptionalInt { return OptionalInt{} }

// Get returns the value and whether it is present.
func (o OptionalInt) Get() (int, bool) { return o.value, o.valid }

// Valid reports whether a value is present.
func (o OptionalInt) Valid() bool { return o.valid }

// Or returns o when present, otherwise other.
func (o OptionalInt) Or(other OptionalInt) OptionalInt {
	if o.valid {
		return o
	}
	return other
}

// OrElse returns the value when present, otherwise def.
func (o OptionalInt) OrElse(def int) int {
	if o.valid {
		return o.value
	}
	return def
}

// MachineDefaults is the machine_defaults sub-object carried by both feeds.
// Keys other than amount_max are kept so they survive a merge.
type MachineDefaults struct {
	AmountMax OptionalInt
	fields    map[string]json.RawMessage
}

// UnmarshalJSON accepts an object; null or any other shape leaves the defaults empty.
func (d *MachineDefaults) UnmarshalJSON(b []byte) error {
	*d = MachineDefaults{}
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(b, &fields); err != nil || fields == nil {
		return nil
	}
	d.fields = fields
	d.AmountMax = parseCapacity(fields["amount_max"])
	return nil
}

// WithAmountMax returns the defaults as a raw object with amount_max set to n.
func (d MachineDefaults) WithAmountMax(n int) map[string]json.RawMessage {
	out := make(map[string]json.RawMessage, len(d.fields)+1)
	for k, v := range d.fields {
		out[k] = v
	}
	out["amount_max"] = json.RawMessage(strconv.Itoa(n))
	return out
}

// InventoryItem is one entry of the inventory report.
type InventoryItem struct {
	ProductName string
	Defaults    MachineDefaults
	fields      map[string]json.RawMessage
	null        bool
}

// UnmarshalJSON keeps every upstream key alongside the typed fields.
func (it *InventoryItem) UnmarshalJSON(b []byte) error {
	*it = InventoryItem{}
	if isNull(b) {
		it.null = true
		return nil
	}
	if err := json.Unmarshal(b, &it.fields); err != nil {
		return err
	}
	it.ProductName = stringValue(it.fields["product_name"])
	if raw, ok := it.fields["machine_defaults"]; ok {
		_ = it.Defaults.UnmarshalJSON(raw)
	}
	return nil
}

// IsNull reports whether the upstream entry was a JSON null.
func (it InventoryItem) IsNull() bool { return it.null }

// Amount is the current stock level, if the upstream sent a usable number.
func (it InventoryItem) Amount() OptionalInt {
	n, ok := parseInt(it.fields["amount"])
	if !ok {
		return None()
	}
	return Some(n)
}

// Fields returns a copy of the raw upstream object.
func (it InventoryItem) Fields() map[string]json.RawMessage {
	out := make(map[string]json.RawMessage, len(it.fields)+1)
	for k, v := range it.fields {
		out[k] = v
	}
	return out
}

// ProductItem is one entry of the stock/products feed.
type ProductItem struct {
	Name     string
	Defaults MachineDefaults
}

func (p *ProductItem) UnmarshalJSON(b []byte) error {
	*p = ProductItem{}
	if isNull(b) {
		return nil
	}
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(b, &fields); err != nil {
		return err
	}
	p.Name = stringValue(fields["name"])
	if raw, ok := fields["machine_defaults"]; ok {
		_ = p.Defaults.UnmarshalJSON(raw)
	}
	return nil
}

// parseCapacity accepts positive whole numbers, as JSON numbers or numeric strings.
func parseCapacity(raw json.RawMessage) OptionalInt {
	n, ok := parseInt(raw)
	if !ok || n <= 0 {
		return None()
	}
	return Some(n)
}

func parseInt(raw json.RawMessage) (int, bool) {
	if len(raw) == 0 || isNull(raw) {
		return 0, false
	}
	var v any
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	if err := dec.Decode(&v); err != nil {
		return 0, false
	}

	var s string
	switch t := v.(type) {
	case json.Number:
		s = t.String()
	case string:
		s = strings.TrimSpace(t)
	default:
		return 0, false
	}

	f, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) || f != math.Trunc(f) {
		return 0, false
	}
	if f > math.MaxInt32 || f < math.MinInt32 {
		return 0, false
	}
	return int(f), true
}

func stringValue(raw json.RawMessage) string {
	if len(raw) == 0 || isNull(raw) {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	// numeric product names are used as-is
	return string(bytes.TrimSpace(raw))
}

func isNull(b []byte) bool {
	return bytes.Equal(bytes.TrimSpace(b), []byte("null"))
}
