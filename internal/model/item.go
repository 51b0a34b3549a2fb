package model

// Item is one checklist entry.
// WeightInput keeps the text last typed for the weight so a half-typed
// value like "3." survives a redraw. It is never persisted.
type Item struct {
	ID          int64   `json:"id"`
	Name        string  `json:"name"`
	Weight      float64 `json:"weight"`
	Packed      bool    `json:"packed"`
	WeightInput string  `json:"-"`
}

// Snapshot is the stored shape of the packed history.
type Snapshot []Item

// TotalWeight sums the weight of packed items.
func TotalWeight(items []Item) float64 {
	var sum float64
	for _, it := range items {
		if it.Packed {
			sum += it.Weight
		}
	}
	return sum
}

// PackedOnly returns the packed subset of items, preserving order.
func PackedOnly(items []Item) Snapshot {
	out := make(Snapshot, 0, len(items))
	for _, it := range items {
		if it.Packed {
			out = append(out, it)
		}
	}
	return out
}
