package engine

import (
	"sort"

	"github.com/yourusername/promotion-engine/internal/models"
)

// appliedAdjustment is a clamped discount awaiting emission. seq is the
// promotion application order, kept so the final sort is reproducible.
type appliedAdjustment struct {
	promotionID string
	code        string
	targetID    string
	amount      models.Money
	seq         int
}

// emitAdjustments formats the final adjustment list: stable composite ids
// (promotionID:targetID), sorted by target (line items in order-context
// position, then order, then shipping) and by application order within a
// target. The result is never nil.
func emitAdjustments(order *models.OrderContext, applied []appliedAdjustment) []models.Adjustment {
	rank := make(map[string]int, len(order.Items)+2)
	for i := range order.Items {
		rank[order.Items[i].ID] = i
	}
	rank[models.TargetIDOrder] = len(order.Items)
	rank[models.TargetIDShipping] = len(order.Items) + 1

	sort.SliceStable(applied, func(i, j int) bool {
		if rank[applied[i].targetID] != rank[applied[j].targetID] {
			return rank[applied[i].targetID] < rank[applied[j].targetID]
		}
		return applied[i].seq < applied[j].seq
	})

	out := make([]models.Adjustment, 0, len(applied))
	for _, a := range applied {
		label := a.code
		if label == "" {
			label = a.promotionID
		}
		out = append(out, models.Adjustment{
			ID:          a.promotionID + ":" + a.targetID,
			ItemID:      a.targetID,
			PromotionID: a.promotionID,
			Amount:      a.amount,
			Description: "discount " + label,
		})
	}
	return out
}
