package engine

import "github.com/yourusername/promotion-engine/internal/models"

// matchOrderRules ANDs all order-scope rules. An empty rule list matches
// unconditionally; so does any rule with an empty value set ("apply to all").
func matchOrderRules(res *resolver, rules []models.Rule) bool {
	for i := range rules {
		r := &rules[i]
		if len(r.Values) == 0 {
			continue
		}
		if !evalOperator(r.Operator, res.resolveOrder(r.Attribute), r.Values) {
			return false
		}
	}
	return true
}

// matchItemRules runs the same AND semantics against a single line item.
func matchItemRules(res *resolver, rules []models.Rule, item *models.LineItem) bool {
	for i := range rules {
		r := &rules[i]
		if len(r.Values) == 0 {
			continue
		}
		if !evalOperator(r.Operator, res.resolveItem(r.Attribute, item), r.Values) {
			return false
		}
	}
	return true
}

// selectTargets returns the line items qualifying under the target rule set,
// preserving order-context iteration order. No rules means every item.
func selectTargets(res *resolver, rules []models.Rule, items []models.LineItem) []*models.LineItem {
	selected := make([]*models.LineItem, 0, len(items))
	for i := range items {
		if matchItemRules(res, rules, &items[i]) {
			selected = append(selected, &items[i])
		}
	}
	return selected
}
