package engine

import "github.com/yourusername/promotion-engine/internal/models"

// evalOperator applies one comparison between a resolved value and the rule's
// configured values. It never errors: an absent value, a non-numeric value
// under an ordering operator, or any other mismatch simply does not match.
//
// Multi-valued attributes (kindList) are asymmetric on purpose: `in` matches
// when any element intersects the rule set, `eq` only when the list holds
// exactly one element equal to the target.
func evalOperator(op models.Operator, v attrValue, values []string) bool {
	if v.kind == kindAbsent {
		return false
	}

	switch op {
	case models.OpEq:
		return evalEq(v, values[0])
	case models.OpNeq:
		return !evalEq(v, values[0])
	case models.OpIn:
		return evalIn(v, values)
	case models.OpNotIn:
		return !evalIn(v, values)
	case models.OpGt, models.OpGte, models.OpLt, models.OpLte:
		return evalOrdering(op, v, values[0])
	}
	return false
}

func evalEq(v attrValue, target string) bool {
	switch v.kind {
	case kindString:
		return v.str == target
	case kindNumber:
		n, ok := parseNumber(target)
		return ok && v.num == n
	case kindList:
		return len(v.list) == 1 && v.list[0] == target
	}
	return false
}

func evalIn(v attrValue, values []string) bool {
	set := make(map[string]bool, len(values))
	for _, val := range values {
		set[val] = true
	}
	switch v.kind {
	case kindString:
		return set[v.str]
	case kindNumber:
		for _, val := range values {
			if n, ok := parseNumber(val); ok && n == v.num {
				return true
			}
		}
		return false
	case kindList:
		for _, el := range v.list {
			if set[el] {
				return true
			}
		}
		return false
	}
	return false
}

func evalOrdering(op models.Operator, v attrValue, target string) bool {
	if v.kind != kindNumber {
		return false
	}
	n, ok := parseNumber(target)
	if !ok {
		return false
	}
	switch op {
	case models.OpGt:
		return v.num > n
	case models.OpGte:
		return v.num >= n
	case models.OpLt:
		return v.num < n
	case models.OpLte:
		return v.num <= n
	}
	return false
}
