package models

// Synthetic adjustment targets for discounts not tied to a line item.
const (
	TargetIDOrder    = "order"
	TargetIDShipping = "shipping"
)

// Adjustment is one computed discount against a single target. A full
// evaluation pass replaces the prior adjustment set; adjustments are never
// patched incrementally.
type Adjustment struct {
	ID          string `json:"id"`
	ItemID      string `json:"item_id"`
	PromotionID string `json:"promotion_id"`
	Amount      Money  `json:"amount"`
	Description string `json:"description,omitempty"`
}
