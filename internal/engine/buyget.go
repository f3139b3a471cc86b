package engine

import (
	"sort"

	"github.com/yourusername/promotion-engine/internal/models"
)

// computeBuyGet resolves a buy-X-get-Y promotion. The purchased threshold is
// counted over the buy-eligible items; granted units are discounted per the
// promotion's application method, cheapest get-eligible units first, and
// never beyond the quantity actually purchased.
func computeBuyGet(res *resolver, cfg *models.BuyGetConfig, method *models.ApplicationMethod) []rawAdjustment {
	buyEligible := selectTargets(res, cfg.BuyRules, res.order.Items)
	var buyQty int
	for _, it := range buyEligible {
		buyQty += it.Quantity
	}
	sets := buyQty / cfg.BuyQuantity
	if sets == 0 {
		return nil
	}
	grants := sets * cfg.GetQuantity

	getEligible := selectTargets(res, cfg.GetRules, res.order.Items)
	if len(getEligible) == 0 {
		return nil
	}
	// Cheapest units first; stable so equal prices keep order-context order.
	sorted := make([]*models.LineItem, len(getEligible))
	copy(sorted, getEligible)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].UnitPrice < sorted[j].UnitPrice
	})

	out := make([]rawAdjustment, 0, len(sorted))
	for _, it := range sorted {
		if grants == 0 {
			break
		}
		take := it.Quantity
		if take > grants {
			take = grants
		}
		grants -= take

		unitOff := method.Value
		if method.Type == models.MethodPercentage {
			unitOff = percentOf(it.UnitPrice, method.Value)
		}
		if unitOff > it.UnitPrice {
			unitOff = it.UnitPrice
		}
		amount := unitOff * models.Money(take)
		if amount <= 0 {
			continue
		}
		out = append(out, rawAdjustment{targetID: it.ID, amount: amount})
	}
	return out
}
