package engine

import (
	"strings"

	"go.uber.org/zap"

	"github.com/yourusername/promotion-engine/internal/models"
)

// Engine evaluates promotions against order snapshots. It holds no state
// beyond a logger; a single instance is safe for concurrent use.
type Engine struct {
	logger *zap.Logger
}

func New(logger *zap.Logger) *Engine {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Engine{logger: logger}
}

// ValidateContext checks the caller contract ahead of evaluation. A missing
// currency code has no safe default and is the one fatal error class.
func ValidateContext(order *models.OrderContext) error {
	if strings.TrimSpace(order.CurrencyCode) == "" {
		return &InvalidContextError{Field: "currency_code"}
	}
	return nil
}

// Evaluate computes the full adjustment set for an order. It is pure: the
// caller supplies the candidate promotions (with current usage counts) and
// the redemption codes entered on the order; nothing is fetched or mutated.
//
// Application order is deterministic: redemption codes in entry order first,
// then automatic promotions in the order the caller supplied them. Later
// promotions are clamped against the budget the earlier ones left, never the
// other way around. A promotion that fails validation or matching is skipped,
// not fatal; the only surfaced error is a missing currency code.
func (e *Engine) Evaluate(order models.OrderContext, candidates []models.Promotion, redemptionCodes []string) ([]models.Adjustment, error) {
	if err := ValidateContext(&order); err != nil {
		return nil, err
	}

	res := &resolver{order: &order}
	ordered := orderCandidates(candidates, redemptionCodes)

	// Remaining discount budget per target. Item and order-level adjustments
	// both draw down the order budget; shipping has its own.
	itemRemaining := make(map[string]models.Money, len(order.Items))
	var orderRemaining models.Money
	for i := range order.Items {
		it := &order.Items[i]
		left := it.Subtotal() - it.AdjustmentTotal
		if left < 0 {
			left = 0
		}
		itemRemaining[it.ID] = left
		orderRemaining += left
	}
	shippingRemaining := order.ShippingTotal

	var applied []appliedAdjustment
	seq := 0
	for _, cand := range ordered {
		p, err := NormalizePromotion(*cand)
		if err != nil {
			e.logger.Warn("skipping malformed promotion", zap.String("promotion_id", cand.ID), zap.Error(err))
			continue
		}
		if p.Status != models.StatusActive {
			continue
		}
		if p.UsageExhausted() {
			continue
		}
		if !matchOrderRules(res, p.Rules) {
			continue
		}

		var raws []rawAdjustment
		if p.Type == models.PromotionBuyGet {
			raws = computeBuyGet(res, p.BuyGet, &p.Method)
		} else {
			raws = computeStandard(res, &p.Method)
		}

		for _, raw := range raws {
			amount := raw.amount
			switch raw.targetID {
			case models.TargetIDShipping:
				if amount > shippingRemaining {
					amount = shippingRemaining
				}
				shippingRemaining -= amount
			case models.TargetIDOrder:
				if amount > orderRemaining {
					amount = orderRemaining
				}
				orderRemaining -= amount
			default:
				if amount > itemRemaining[raw.targetID] {
					amount = itemRemaining[raw.targetID]
				}
				if amount > orderRemaining {
					amount = orderRemaining
				}
				itemRemaining[raw.targetID] -= amount
				orderRemaining -= amount
			}
			if amount <= 0 {
				continue
			}
			applied = append(applied, appliedAdjustment{
				promotionID: p.ID,
				code:        p.Code,
				targetID:    raw.targetID,
				amount:      amount,
				seq:         seq,
			})
			seq++
		}
	}

	return emitAdjustments(&order, applied), nil
}

// Evaluate runs a one-off evaluation without structured logging.
func Evaluate(order models.OrderContext, candidates []models.Promotion, redemptionCodes []string) ([]models.Adjustment, error) {
	return New(nil).Evaluate(order, candidates, redemptionCodes)
}

// orderCandidates fixes the application order: entered codes first (deduped,
// in entry order), then automatic promotions in stored order. Code-based
// promotions whose code was not entered are dropped here.
func orderCandidates(candidates []models.Promotion, redemptionCodes []string) []*models.Promotion {
	byCode := make(map[string]*models.Promotion, len(candidates))
	for i := range candidates {
		p := &candidates[i]
		if code := NormalizeCode(p.Code); code != "" {
			byCode[code] = p
		}
	}

	ordered := make([]*models.Promotion, 0, len(candidates))
	taken := make(map[*models.Promotion]bool, len(candidates))
	for _, code := range redemptionCodes {
		p, ok := byCode[NormalizeCode(code)]
		if !ok || taken[p] {
			continue
		}
		taken[p] = true
		ordered = append(ordered, p)
	}
	for i := range candidates {
		p := &candidates[i]
		if p.IsAutomatic && !taken[p] {
			taken[p] = true
			ordered = append(ordered, p)
		}
	}
	return ordered
}
