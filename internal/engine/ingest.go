package engine

import (
	"fmt"
	"strings"

	"github.com/yourusername/promotion-engine/internal/models"
)

var validOperators = map[models.Operator]bool{
	models.OpEq:    true,
	models.OpNeq:   true,
	models.OpIn:    true,
	models.OpNotIn: true,
	models.OpGt:    true,
	models.OpGte:   true,
	models.OpLt:    true,
	models.OpLte:   true,
}

// NormalizeCode canonicalizes a redemption code for matching. Codes are
// case-insensitive on entry.
func NormalizeCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}

// NormalizePromotion validates raw promotion configuration into the engine's
// strict internal representation. Loosely-typed shapes arriving from the
// configuration UI are rejected here, at the boundary, so evaluation itself
// never sees an unknown operator or method.
func NormalizePromotion(p models.Promotion) (models.Promotion, error) {
	p.Code = NormalizeCode(p.Code)
	if !p.IsAutomatic && p.Code == "" {
		return p, fmt.Errorf("promotion %s: code-based promotion without a code", p.ID)
	}

	switch p.Status {
	case models.StatusDraft, models.StatusActive, models.StatusExpired, models.StatusDisabled:
	default:
		return p, fmt.Errorf("promotion %s: unknown status %q", p.ID, p.Status)
	}

	switch p.Type {
	case models.PromotionStandard:
	case models.PromotionBuyGet:
		if p.BuyGet == nil {
			return p, fmt.Errorf("promotion %s: buy_get promotion without buy_get config", p.ID)
		}
		if p.BuyGet.BuyQuantity <= 0 || p.BuyGet.GetQuantity <= 0 {
			return p, fmt.Errorf("promotion %s: buy/get quantities must be positive", p.ID)
		}
		// granted units always land on line items
		if p.Method.TargetType != models.TargetItems {
			return p, fmt.Errorf("promotion %s: buy_get requires target type %q, got %q", p.ID, models.TargetItems, p.Method.TargetType)
		}
		if err := validateRules(p.BuyGet.BuyRules); err != nil {
			return p, fmt.Errorf("promotion %s: buy rules: %w", p.ID, err)
		}
		if err := validateRules(p.BuyGet.GetRules); err != nil {
			return p, fmt.Errorf("promotion %s: get rules: %w", p.ID, err)
		}
	default:
		return p, fmt.Errorf("promotion %s: unknown type %q", p.ID, p.Type)
	}

	switch p.Method.Type {
	case models.MethodFixed:
		if p.Method.Value < 0 {
			return p, fmt.Errorf("promotion %s: negative fixed value", p.ID)
		}
	case models.MethodPercentage:
		if p.Method.Value < 0 || p.Method.Value > 100 {
			return p, fmt.Errorf("promotion %s: percentage value %d out of range", p.ID, p.Method.Value)
		}
	default:
		return p, fmt.Errorf("promotion %s: unknown method type %q", p.ID, p.Method.Type)
	}

	switch p.Method.TargetType {
	case models.TargetItems, models.TargetOrder, models.TargetShipping:
	default:
		return p, fmt.Errorf("promotion %s: unknown target type %q", p.ID, p.Method.TargetType)
	}

	switch p.Method.Allocation {
	case models.AllocationEach, models.AllocationAcross:
	case "":
		p.Method.Allocation = models.AllocationEach
	default:
		return p, fmt.Errorf("promotion %s: unknown allocation %q", p.ID, p.Method.Allocation)
	}

	if p.Method.MaxQuantity < 0 {
		return p, fmt.Errorf("promotion %s: negative max quantity", p.ID)
	}

	if err := validateRules(p.Rules); err != nil {
		return p, fmt.Errorf("promotion %s: rules: %w", p.ID, err)
	}
	if err := validateRules(p.Method.TargetRules); err != nil {
		return p, fmt.Errorf("promotion %s: target rules: %w", p.ID, err)
	}

	return p, nil
}

func validateRules(rules []models.Rule) error {
	for i := range rules {
		r := &rules[i]
		if strings.TrimSpace(r.Attribute) == "" {
			return fmt.Errorf("rule %d: empty attribute", i)
		}
		if !validOperators[r.Operator] {
			return fmt.Errorf("rule %d: unknown operator %q", i, r.Operator)
		}
	}
	return nil
}
