package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/lib/pq"

	"github.com/yourusername/promotion-engine/internal/models"
)

type PromotionRepo struct {
	db *sql.DB
}

func NewPromotionRepo(db *sql.DB) *PromotionRepo {
	return &PromotionRepo{db: db}
}

const promotionColumns = `
	id, code, is_automatic, status, type, usage_limit, usage_count,
	is_tax_inclusive, method_type, target_type, value, allocation,
	max_quantity, buy_quantity, get_quantity
`

// GetPromotionByCode loads one promotion with its rule sets. Returns nil
// (no error) when the code does not exist.
func (r *PromotionRepo) GetPromotionByCode(ctx context.Context, code string) (*models.Promotion, error) {
	query := `SELECT ` + promotionColumns + ` FROM promotions WHERE code = $1`

	row := r.db.QueryRowContext(ctx, query, code)
	p, err := scanPromotion(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}

	if err := r.loadRules(ctx, p); err != nil {
		return nil, err
	}
	return p, nil
}

// ListAutomaticPromotions returns automatic promotions that are active and
// under their usage limit, in stored order (creation order) so downstream
// application order is deterministic.
func (r *PromotionRepo) ListAutomaticPromotions(ctx context.Context) ([]models.Promotion, error) {
	query := `
		SELECT ` + promotionColumns + `
		FROM promotions
		WHERE is_automatic
		  AND status = 'active'
		  AND (usage_limit IS NULL OR usage_count < usage_limit)
		ORDER BY created_at, id
	`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var promos []models.Promotion
	for rows.Next() {
		p, err := scanPromotion(rows)
		if err != nil {
			return nil, err
		}
		promos = append(promos, *p)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for i := range promos {
		if err := r.loadRules(ctx, &promos[i]); err != nil {
			return nil, err
		}
	}
	return promos, nil
}

// ListActivePromotions returns every active promotion under its usage limit,
// automatic or code-based, in stored order. Used by the applicability scan.
func (r *PromotionRepo) ListActivePromotions(ctx context.Context) ([]models.Promotion, error) {
	query := `
		SELECT ` + promotionColumns + `
		FROM promotions
		WHERE status = 'active'
		  AND (usage_limit IS NULL OR usage_count < usage_limit)
		ORDER BY created_at, id
	`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var promos []models.Promotion
	for rows.Next() {
		p, err := scanPromotion(rows)
		if err != nil {
			return nil, err
		}
		promos = append(promos, *p)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for i := range promos {
		if err := r.loadRules(ctx, &promos[i]); err != nil {
			return nil, err
		}
	}
	return promos, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanPromotion(row rowScanner) (*models.Promotion, error) {
	var p models.Promotion
	var usageLimit sql.NullInt64
	var allocation sql.NullString
	var maxQuantity sql.NullInt64
	var buyQty, getQty sql.NullInt64

	err := row.Scan(
		&p.ID,
		&p.Code,
		&p.IsAutomatic,
		&p.Status,
		&p.Type,
		&usageLimit,
		&p.UsageCount,
		&p.IsTaxInclusive,
		&p.Method.Type,
		&p.Method.TargetType,
		&p.Method.Value,
		&allocation,
		&maxQuantity,
		&buyQty,
		&getQty,
	)
	if err != nil {
		return nil, err
	}

	if usageLimit.Valid {
		p.UsageLimit = int(usageLimit.Int64)
	}
	if allocation.Valid {
		p.Method.Allocation = models.Allocation(allocation.String)
	}
	if maxQuantity.Valid {
		p.Method.MaxQuantity = int(maxQuantity.Int64)
	}
	if p.Type == models.PromotionBuyGet {
		p.BuyGet = &models.BuyGetConfig{
			BuyQuantity: int(buyQty.Int64),
			GetQuantity: int(getQty.Int64),
		}
	}
	return &p, nil
}

// loadRules attaches all rule sets for a promotion, routed by scope.
func (r *PromotionRepo) loadRules(ctx context.Context, p *models.Promotion) error {
	query := `
		SELECT scope, attribute, operator, vals
		FROM promotion_rules
		WHERE promotion_id = $1
		ORDER BY id
	`
	rows, err := r.db.QueryContext(ctx, query, p.ID)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var scope string
		var rule models.Rule
		if err := rows.Scan(&scope, &rule.Attribute, &rule.Operator, pq.Array(&rule.Values)); err != nil {
			return err
		}
		switch scope {
		case "order":
			p.Rules = append(p.Rules, rule)
		case "target":
			p.Method.TargetRules = append(p.Method.TargetRules, rule)
		case "buy":
			if p.BuyGet != nil {
				p.BuyGet.BuyRules = append(p.BuyGet.BuyRules, rule)
			}
		case "get":
			if p.BuyGet != nil {
				p.BuyGet.GetRules = append(p.BuyGet.GetRules, rule)
			}
		}
	}
	return rows.Err()
}
