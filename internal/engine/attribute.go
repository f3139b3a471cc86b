package engine

import (
	"strconv"

	"github.com/yourusername/promotion-engine/internal/models"
)

// attrValue is the closed representation of a resolved attribute. Rules only
// ever see one of these four kinds; an unknown or missing attribute resolves
// to absent and fails closed in the operator evaluator.
type valueKind int

const (
	kindAbsent valueKind = iota
	kindString
	kindNumber
	kindList
)

type attrValue struct {
	kind valueKind
	str  string
	num  int64
	list []string
}

func absentValue() attrValue         { return attrValue{kind: kindAbsent} }
func stringValue(s string) attrValue { return attrValue{kind: kindString, str: s} }
func numberValue(n int64) attrValue  { return attrValue{kind: kindNumber, num: n} }
func listValue(l []string) attrValue { return attrValue{kind: kindList, list: l} }

// resolver looks up named attributes against one immutable order snapshot.
type resolver struct {
	order *models.OrderContext
}

// resolveOrder handles order- and customer-scoped keys.
func (r *resolver) resolveOrder(key string) attrValue {
	switch key {
	case "currency_code":
		return stringValue(r.order.CurrencyCode)
	case "customer.id":
		return stringValue(r.order.Customer.ID)
	case "customer.group_id":
		return stringValue(r.order.Customer.GroupID)
	case "customer.tags":
		return listValue(r.order.Customer.Tags)
	case "order.subtotal":
		return numberValue(r.order.Subtotal())
	case "order.shipping_total":
		return numberValue(r.order.ShippingTotal)
	case "order.item_count":
		var n int64
		for i := range r.order.Items {
			n += int64(r.order.Items[i].Quantity)
		}
		return numberValue(n)
	}
	return absentValue()
}

// resolveItem handles item-scoped keys and falls back to order scope so a
// target rule may still constrain on e.g. currency_code.
func (r *resolver) resolveItem(key string, item *models.LineItem) attrValue {
	switch key {
	case "item.id":
		return stringValue(item.ID)
	case "item.product_id":
		return stringValue(item.ProductID)
	case "item.variant_id":
		return stringValue(item.VariantID)
	case "item.collection_id":
		return stringValue(item.CollectionID)
	case "item.category_id":
		return stringValue(item.CategoryID)
	case "item.type_id":
		return stringValue(item.TypeID)
	case "item.tags":
		return listValue(item.Tags)
	case "item.quantity":
		return numberValue(int64(item.Quantity))
	case "item.unit_price":
		return numberValue(item.UnitPrice)
	case "item.subtotal":
		return numberValue(item.Subtotal())
	}
	return r.resolveOrder(key)
}

// parseNumber interprets a rule value as an integer amount. Ordering
// operators compare numbers, never strings.
func parseNumber(s string) (int64, bool) {
	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return 0, false
	}
	return n, true
}
