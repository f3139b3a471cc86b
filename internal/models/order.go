package models

// Money is a monetary amount in the order currency's minor units.
type Money = int64

type Customer struct {
	ID      string   `json:"id,omitempty"`
	GroupID string   `json:"group_id,omitempty"`
	Tags    []string `json:"tags,omitempty"`
}

// LineItem is a read-only snapshot of one order line. AdjustmentTotal is the
// cumulative discount already attributed to the line (zero on a fresh pass).
type LineItem struct {
	ID              string   `json:"id"`
	ProductID       string   `json:"product_id,omitempty"`
	VariantID       string   `json:"variant_id,omitempty"`
	CollectionID    string   `json:"collection_id,omitempty"`
	CategoryID      string   `json:"category_id,omitempty"`
	TypeID          string   `json:"type_id,omitempty"`
	Tags            []string `json:"tags,omitempty"`
	UnitPrice       Money    `json:"unit_price"`
	Quantity        int      `json:"quantity"`
	AdjustmentTotal Money    `json:"adjustment_total,omitempty"`
}

func (li *LineItem) Subtotal() Money {
	return li.UnitPrice * Money(li.Quantity)
}

// OrderContext is the immutable snapshot the engine evaluates against.
type OrderContext struct {
	CurrencyCode  string     `json:"currency_code"`
	Customer      Customer   `json:"customer"`
	Items         []LineItem `json:"items"`
	ShippingTotal Money      `json:"shipping_total,omitempty"`
}

func (o *OrderContext) Subtotal() Money {
	var sum Money
	for i := range o.Items {
		sum += o.Items[i].Subtotal()
	}
	return sum
}
