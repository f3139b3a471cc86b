package models

type PromotionStatus string

const (
	StatusDraft    PromotionStatus = "draft"
	StatusActive   PromotionStatus = "active"
	StatusExpired  PromotionStatus = "expired"
	StatusDisabled PromotionStatus = "disabled"
)

type PromotionType string

const (
	PromotionStandard PromotionType = "standard"
	PromotionBuyGet   PromotionType = "buy_get"
)

type Operator string

const (
	OpEq    Operator = "eq"
	OpNeq   Operator = "neq"
	OpIn    Operator = "in"
	OpNotIn Operator = "not_in"
	OpGt    Operator = "gt"
	OpGte   Operator = "gte"
	OpLt    Operator = "lt"
	OpLte   Operator = "lte"
)

// Rule is a single condition against a resolved context attribute.
// An empty Values set means the rule is unconstrained and always matches.
type Rule struct {
	Attribute string   `json:"attribute"`
	Operator  Operator `json:"operator"`
	Values    []string `json:"values"`
}

type MethodType string

const (
	MethodFixed      MethodType = "fixed"
	MethodPercentage MethodType = "percentage"
)

type TargetType string

const (
	TargetItems    TargetType = "items"
	TargetOrder    TargetType = "order"
	TargetShipping TargetType = "shipping_methods"
)

type Allocation string

const (
	AllocationEach   Allocation = "each"
	AllocationAcross Allocation = "across"
)

// ApplicationMethod describes how a matched promotion turns into money off.
// Value is minor units for fixed, whole percent (0-100) for percentage.
type ApplicationMethod struct {
	Type        MethodType `json:"method_type"`
	TargetType  TargetType `json:"target_type"`
	Value       Money      `json:"value"`
	Allocation  Allocation `json:"allocation,omitempty"`
	MaxQuantity int        `json:"max_quantity,omitempty"`
	TargetRules []Rule     `json:"target_rules,omitempty"`
}

// BuyGetConfig configures a buy_get promotion. BuyRules select which items
// count toward the purchased threshold, GetRules which items receive the
// granted units. Either set may be empty (unconstrained).
type BuyGetConfig struct {
	BuyQuantity int    `json:"buy_quantity"`
	GetQuantity int    `json:"get_quantity"`
	BuyRules    []Rule `json:"buy_rules,omitempty"`
	GetRules    []Rule `json:"get_rules,omitempty"`
}

// Promotion is a configured discount campaign. UsageCount is owned by the
// commerce backend; the engine only reads it. UsageLimit zero means unlimited.
type Promotion struct {
	ID             string            `json:"id"`
	Code           string            `json:"code"`
	IsAutomatic    bool              `json:"is_automatic"`
	Status         PromotionStatus   `json:"status"`
	Type           PromotionType     `json:"type"`
	UsageLimit     int               `json:"usage_limit,omitempty"`
	UsageCount     int               `json:"usage_count"`
	IsTaxInclusive bool              `json:"is_tax_inclusive"`
	Rules          []Rule            `json:"rules,omitempty"`
	Method         ApplicationMethod `json:"application_method"`
	BuyGet         *BuyGetConfig     `json:"buy_get,omitempty"`
}

// UsageExhausted reports whether the promotion has no redemptions left.
func (p *Promotion) UsageExhausted() bool {
	return p.UsageLimit > 0 && p.UsageCount >= p.UsageLimit
}
