package engine

import "github.com/yourusername/promotion-engine/internal/models"

// rawAdjustment is a computed discount before promotion attribution,
// stacking, and clamping.
type rawAdjustment struct {
	targetID string
	amount   models.Money
}

// percentOf computes pct% of base in integer minor units, rounding half down.
// All percentage money math in the engine goes through here.
func percentOf(base models.Money, pct models.Money) models.Money {
	q := base * pct
	amount := q / 100
	if q%100 > 50 {
		amount++
	}
	return amount
}

// discountBasis is the portion of a line the method may discount: the full
// line subtotal, or MaxQuantity units' worth when a cap is configured.
func discountBasis(item *models.LineItem, maxQuantity int) models.Money {
	qty := item.Quantity
	if maxQuantity > 0 && maxQuantity < qty {
		qty = maxQuantity
	}
	return item.UnitPrice * models.Money(qty)
}

// computeStandard runs the application method of a standard promotion against
// the order. Target selection already honors the empty-rule-set-matches-all
// policy via selectTargets.
func computeStandard(res *resolver, method *models.ApplicationMethod) []rawAdjustment {
	order := res.order

	switch method.TargetType {
	case models.TargetShipping:
		amount := method.Value
		if method.Type == models.MethodPercentage {
			amount = percentOf(order.ShippingTotal, method.Value)
		}
		if amount > order.ShippingTotal {
			amount = order.ShippingTotal
		}
		if amount <= 0 {
			return nil
		}
		return []rawAdjustment{{targetID: models.TargetIDShipping, amount: amount}}

	case models.TargetOrder:
		// Target rules gate whether the order qualifies at all; the amount is
		// computed once against the qualifying subtotal.
		targets := selectTargets(res, method.TargetRules, order.Items)
		if len(targets) == 0 {
			return nil
		}
		var base models.Money
		for _, it := range targets {
			base += it.Subtotal()
		}
		amount := method.Value
		if method.Type == models.MethodPercentage {
			amount = percentOf(base, method.Value)
		}
		if amount > base {
			amount = base
		}
		if amount <= 0 {
			return nil
		}
		return []rawAdjustment{{targetID: models.TargetIDOrder, amount: amount}}

	case models.TargetItems:
		targets := selectTargets(res, method.TargetRules, order.Items)
		if len(targets) == 0 {
			return nil
		}
		if method.Allocation == models.AllocationAcross {
			return allocateAcross(method, targets)
		}
		return allocateEach(method, targets)
	}
	return nil
}

// allocateEach applies the method value independently to every qualifying
// item, capped at that item's discountable basis.
func allocateEach(method *models.ApplicationMethod, targets []*models.LineItem) []rawAdjustment {
	out := make([]rawAdjustment, 0, len(targets))
	for _, it := range targets {
		basis := discountBasis(it, method.MaxQuantity)
		amount := method.Value
		if method.Type == models.MethodPercentage {
			amount = percentOf(basis, method.Value)
		}
		if amount > basis {
			amount = basis
		}
		if amount <= 0 {
			continue
		}
		out = append(out, rawAdjustment{targetID: it.ID, amount: amount})
	}
	return out
}

// allocateAcross treats the qualifying items as one pool and splits a single
// total proportionally by basis share. Per-item shares round down; the
// leftover minor units go to the first item in iteration order, spilling to
// the next items once a basis is full, so the split is deterministic, sums
// to the total exactly, and never puts more on a line than its basis.
func allocateAcross(method *models.ApplicationMethod, targets []*models.LineItem) []rawAdjustment {
	var pool models.Money
	bases := make([]models.Money, len(targets))
	for i, it := range targets {
		bases[i] = discountBasis(it, method.MaxQuantity)
		pool += bases[i]
	}
	if pool <= 0 {
		return nil
	}

	total := method.Value
	if method.Type == models.MethodPercentage {
		total = percentOf(pool, method.Value)
	}
	if total > pool {
		total = pool
	}
	if total <= 0 {
		return nil
	}

	out := make([]rawAdjustment, 0, len(targets))
	var distributed models.Money
	for i, it := range targets {
		share := total * bases[i] / pool
		distributed += share
		out = append(out, rawAdjustment{targetID: it.ID, amount: share})
	}
	// total <= pool, so the residual always fits within the headroom left by
	// the floored shares.
	residual := total - distributed
	for i := range out {
		if residual == 0 {
			break
		}
		headroom := bases[i] - out[i].amount
		if headroom > residual {
			headroom = residual
		}
		out[i].amount += headroom
		residual -= headroom
	}

	// Drop zero shares after residual assignment.
	filtered := out[:0]
	for _, a := range out {
		if a.amount > 0 {
			filtered = append(filtered, a)
		}
	}
	return filtered
}
