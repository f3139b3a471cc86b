package engine

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yourusername/promotion-engine/internal/models"
)

func orderPercentPromo(id string, pct models.Money) models.Promotion {
	return models.Promotion{
		ID:          id,
		IsAutomatic: true,
		Status:      models.StatusActive,
		Type:        models.PromotionStandard,
		Method: models.ApplicationMethod{
			Type:       models.MethodPercentage,
			TargetType: models.TargetOrder,
			Value:      pct,
		},
	}
}

func singleItemOrder(subtotal models.Money) models.OrderContext {
	return models.OrderContext{
		CurrencyCode: "usd",
		Items:        []models.LineItem{{ID: "a", UnitPrice: subtotal, Quantity: 1}},
	}
}

func TestEvaluate_MissingCurrencyIsFatal(t *testing.T) {
	order := singleItemOrder(100)
	order.CurrencyCode = ""

	_, err := Evaluate(order, []models.Promotion{orderPercentPromo("p1", 10)}, nil)
	require.Error(t, err)
	var ctxErr *InvalidContextError
	assert.True(t, errors.As(err, &ctxErr))
}

func TestEvaluate_StackingAndClamping(t *testing.T) {
	t.Run("two percentages stack without clamping", func(t *testing.T) {
		adjs, err := Evaluate(singleItemOrder(100),
			[]models.Promotion{orderPercentPromo("p20", 20), orderPercentPromo("p15", 15)}, nil)
		require.NoError(t, err)
		require.Len(t, adjs, 2)
		assert.Equal(t, models.Money(20), adjs[0].Amount)
		assert.Equal(t, models.Money(15), adjs[1].Amount)
	})

	t.Run("three promotions reaching exactly the subtotal", func(t *testing.T) {
		adjs, err := Evaluate(singleItemOrder(100), []models.Promotion{
			orderPercentPromo("p50", 50),
			orderPercentPromo("p30", 30),
			orderPercentPromo("p20", 20),
		}, nil)
		require.NoError(t, err)
		require.Len(t, adjs, 3)
		var total models.Money
		for _, a := range adjs {
			total += a.Amount
		}
		assert.Equal(t, models.Money(100), total)
		assert.Equal(t, models.Money(20), adjs[2].Amount) // unclamped, fits exactly
	})

	t.Run("over-requesting clamps the last promotion only", func(t *testing.T) {
		adjs, err := Evaluate(singleItemOrder(100), []models.Promotion{
			orderPercentPromo("p50", 50),
			orderPercentPromo("p30a", 30),
			orderPercentPromo("p30b", 30),
		}, nil)
		require.NoError(t, err)
		require.Len(t, adjs, 3)
		assert.Equal(t, models.Money(50), adjs[0].Amount)
		assert.Equal(t, models.Money(30), adjs[1].Amount)
		assert.Equal(t, models.Money(20), adjs[2].Amount) // reduced from 30
	})

	t.Run("item adjustments never exceed the item subtotal", func(t *testing.T) {
		promo := func(id string) models.Promotion {
			return models.Promotion{
				ID: id, IsAutomatic: true, Status: models.StatusActive, Type: models.PromotionStandard,
				Method: models.ApplicationMethod{
					Type:       models.MethodFixed,
					TargetType: models.TargetItems,
					Allocation: models.AllocationEach,
					Value:      100,
				},
			}
		}
		adjs, err := Evaluate(singleItemOrder(150), []models.Promotion{promo("f1"), promo("f2")}, nil)
		require.NoError(t, err)
		require.Len(t, adjs, 2)
		assert.Equal(t, models.Money(100), adjs[0].Amount)
		assert.Equal(t, models.Money(50), adjs[1].Amount)
	})
}

func TestEvaluate_PreExistingAdjustmentsReduceTheBudget(t *testing.T) {
	itemFixed := func(id string, value models.Money) models.Promotion {
		return models.Promotion{
			ID: id, IsAutomatic: true, Status: models.StatusActive, Type: models.PromotionStandard,
			Method: models.ApplicationMethod{
				Type:       models.MethodFixed,
				TargetType: models.TargetItems,
				Allocation: models.AllocationEach,
				Value:      value,
			},
		}
	}

	t.Run("clamps to subtotal minus existing discount", func(t *testing.T) {
		order := models.OrderContext{
			CurrencyCode: "usd",
			Items:        []models.LineItem{{ID: "a", UnitPrice: 100, Quantity: 1, AdjustmentTotal: 70}},
		}
		adjs, err := Evaluate(order, []models.Promotion{itemFixed("f1", 100)}, nil)
		require.NoError(t, err)
		require.Len(t, adjs, 1)
		// 30 left on the line, not the full 100
		assert.Equal(t, models.Money(30), adjs[0].Amount)
	})

	t.Run("over-discounted line has nothing left", func(t *testing.T) {
		order := models.OrderContext{
			CurrencyCode: "usd",
			Items:        []models.LineItem{{ID: "a", UnitPrice: 100, Quantity: 1, AdjustmentTotal: 150}},
		}
		adjs, err := Evaluate(order, []models.Promotion{itemFixed("f1", 100)}, nil)
		require.NoError(t, err)
		assert.Empty(t, adjs)
	})

	t.Run("order budget shrinks with existing item discounts", func(t *testing.T) {
		order := models.OrderContext{
			CurrencyCode: "usd",
			Items: []models.LineItem{
				{ID: "a", UnitPrice: 100, Quantity: 1, AdjustmentTotal: 60},
				{ID: "b", UnitPrice: 100, Quantity: 1},
			},
		}
		adjs, err := Evaluate(order, []models.Promotion{orderPercentPromo("p90", 90)}, nil)
		require.NoError(t, err)
		require.Len(t, adjs, 1)
		// requested 180, only 40 + 100 remaining across the lines
		assert.Equal(t, models.Money(140), adjs[0].Amount)
	})
}

func TestEvaluate_CandidateFiltering(t *testing.T) {
	t.Run("usage-exhausted promotion never applies", func(t *testing.T) {
		p := orderPercentPromo("p1", 10)
		p.UsageLimit = 5
		p.UsageCount = 5
		adjs, err := Evaluate(singleItemOrder(100), []models.Promotion{p}, nil)
		require.NoError(t, err)
		assert.Empty(t, adjs)
	})

	t.Run("non-active statuses are skipped", func(t *testing.T) {
		for _, status := range []models.PromotionStatus{models.StatusDraft, models.StatusExpired, models.StatusDisabled} {
			p := orderPercentPromo("p1", 10)
			p.Status = status
			adjs, err := Evaluate(singleItemOrder(100), []models.Promotion{p}, nil)
			require.NoError(t, err)
			assert.Empty(t, adjs, "status %s", status)
		}
	})

	t.Run("code-based promotion requires its code", func(t *testing.T) {
		p := orderPercentPromo("p1", 10)
		p.IsAutomatic = false
		p.Code = "SAVE10"

		adjs, err := Evaluate(singleItemOrder(100), []models.Promotion{p}, nil)
		require.NoError(t, err)
		assert.Empty(t, adjs)

		adjs, err = Evaluate(singleItemOrder(100), []models.Promotion{p}, []string{"save10"})
		require.NoError(t, err)
		require.Len(t, adjs, 1)
		assert.Equal(t, models.Money(10), adjs[0].Amount)
	})

	t.Run("order rules gate entry", func(t *testing.T) {
		p := orderPercentPromo("p1", 10)
		p.Rules = []models.Rule{{Attribute: "currency_code", Operator: models.OpEq, Values: []string{"eur"}}}
		adjs, err := Evaluate(singleItemOrder(100), []models.Promotion{p}, nil)
		require.NoError(t, err)
		assert.Empty(t, adjs)
	})

	t.Run("malformed promotion is skipped not fatal", func(t *testing.T) {
		bad := orderPercentPromo("bad", 10)
		bad.Rules = []models.Rule{{Attribute: "currency_code", Operator: "matches", Values: []string{"usd"}}}
		good := orderPercentPromo("good", 20)

		adjs, err := Evaluate(singleItemOrder(100), []models.Promotion{bad, good}, nil)
		require.NoError(t, err)
		require.Len(t, adjs, 1)
		assert.Equal(t, "good", adjs[0].PromotionID)
	})
}

func TestEvaluate_CodesApplyBeforeAutomatic(t *testing.T) {
	// The entered code takes the budget first; the automatic promotion gets
	// clamped, never the other way around.
	coded := models.Promotion{
		ID: "coded", Code: "BIG", Status: models.StatusActive, Type: models.PromotionStandard,
		Method: models.ApplicationMethod{Type: models.MethodFixed, TargetType: models.TargetOrder, Value: 80},
	}
	automatic := models.Promotion{
		ID: "auto", IsAutomatic: true, Status: models.StatusActive, Type: models.PromotionStandard,
		Method: models.ApplicationMethod{Type: models.MethodFixed, TargetType: models.TargetOrder, Value: 50},
	}

	// automatic listed first among candidates; code order still wins
	adjs, err := Evaluate(singleItemOrder(100), []models.Promotion{automatic, coded}, []string{"big"})
	require.NoError(t, err)
	require.Len(t, adjs, 2)
	assert.Equal(t, "coded", adjs[0].PromotionID)
	assert.Equal(t, models.Money(80), adjs[0].Amount)
	assert.Equal(t, "auto", adjs[1].PromotionID)
	assert.Equal(t, models.Money(20), adjs[1].Amount)
}

func TestEvaluate_Idempotent(t *testing.T) {
	order := testOrder()
	candidates := []models.Promotion{
		orderPercentPromo("p1", 10),
		{
			ID: "p2", IsAutomatic: true, Status: models.StatusActive, Type: models.PromotionStandard,
			Method: models.ApplicationMethod{
				Type: models.MethodPercentage, TargetType: models.TargetItems,
				Allocation: models.AllocationAcross, Value: 15,
				TargetRules: []models.Rule{{Attribute: "item.collection_id", Operator: models.OpEq, Values: []string{"shirts"}}},
			},
		},
	}

	first, err := Evaluate(order, candidates, nil)
	require.NoError(t, err)
	second, err := Evaluate(order, candidates, nil)
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestEvaluate_EmitterOutput(t *testing.T) {
	order := models.OrderContext{
		CurrencyCode:  "usd",
		ShippingTotal: 500,
		Items: []models.LineItem{
			{ID: "first", UnitPrice: 100, Quantity: 1},
			{ID: "second", UnitPrice: 100, Quantity: 1},
		},
	}
	itemPromo := models.Promotion{
		ID: "items10", IsAutomatic: true, Status: models.StatusActive, Type: models.PromotionStandard,
		Method: models.ApplicationMethod{
			Type: models.MethodPercentage, TargetType: models.TargetItems,
			Allocation: models.AllocationEach, Value: 10,
		},
	}
	shipPromo := models.Promotion{
		ID: "freeship", IsAutomatic: true, Status: models.StatusActive, Type: models.PromotionStandard,
		Method: models.ApplicationMethod{Type: models.MethodPercentage, TargetType: models.TargetShipping, Value: 100},
	}

	// shipping promotion applied first; output is still sorted by target
	adjs, err := Evaluate(order, []models.Promotion{shipPromo, itemPromo}, nil)
	require.NoError(t, err)
	require.Len(t, adjs, 3)

	assert.Equal(t, "items10:first", adjs[0].ID)
	assert.Equal(t, "first", adjs[0].ItemID)
	assert.Equal(t, "items10:second", adjs[1].ID)
	assert.Equal(t, "freeship:shipping", adjs[2].ID)
	assert.Equal(t, models.TargetIDShipping, adjs[2].ItemID)
	assert.Equal(t, models.Money(500), adjs[2].Amount)
}

// Property from the totals invariant: sum of all adjustments never exceeds
// order subtotal plus shipping.
func TestEvaluate_TotalNeverExceedsOrderPlusShipping(t *testing.T) {
	order := testOrder()
	candidates := []models.Promotion{
		orderPercentPromo("p1", 90),
		orderPercentPromo("p2", 90),
		{
			ID: "ship", IsAutomatic: true, Status: models.StatusActive, Type: models.PromotionStandard,
			Method: models.ApplicationMethod{Type: models.MethodFixed, TargetType: models.TargetShipping, Value: 10000},
		},
	}
	adjs, err := Evaluate(order, candidates, nil)
	require.NoError(t, err)

	var total models.Money
	for _, a := range adjs {
		total += a.Amount
	}
	assert.LessOrEqual(t, total, order.Subtotal()+order.ShippingTotal)
}
