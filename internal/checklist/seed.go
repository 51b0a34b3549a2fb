package checklist

import (
	"fmt"

	"github.com/idilsaglam/packlist/internal/model"
)

// DefaultSeed is the static list used in seeded mode when none is configured.
func DefaultSeed() []model.Item {
	items := make([]model.Item, 0, 5)
	for i := 1; i <= 5; i++ {
		items = append(items, model.Item{ID: int64(i), Name: fmt.Sprintf("list %d", i)})
	}
	return items
}

// freshItems copies seed into a new unpacked list.
func freshItems(seed []model.Item) []model.Item {
	out := make([]model.Item, 0, len(seed))
	for _, it := range seed {
		it.Packed = false
		if it.Weight < 0 {
			it.Weight = 0
		}
		it.WeightInput = FormatNumber(it.Weight)
		out = append(out, it)
	}
	return out
}
