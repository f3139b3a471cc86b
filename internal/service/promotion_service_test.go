package service

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yourusername/promotion-engine/internal/engine"
	"github.com/yourusername/promotion-engine/internal/models"
)

type fakeRepo struct {
	byCode    map[string]*models.Promotion
	automatic []models.Promotion
	active    []models.Promotion
	codeCalls int
}

func (f *fakeRepo) GetPromotionByCode(ctx context.Context, code string) (*models.Promotion, error) {
	f.codeCalls++
	return f.byCode[code], nil
}

func (f *fakeRepo) ListAutomaticPromotions(ctx context.Context) ([]models.Promotion, error) {
	return f.automatic, nil
}

func (f *fakeRepo) ListActivePromotions(ctx context.Context) ([]models.Promotion, error) {
	return f.active, nil
}

func orderFixture() models.OrderContext {
	return models.OrderContext{
		CurrencyCode: "usd",
		Items: []models.LineItem{
			{ID: "item_1", UnitPrice: 5000, Quantity: 2},
		},
	}
}

func codedPromo() *models.Promotion {
	return &models.Promotion{
		ID: "coded", Code: "SAVE10", Status: models.StatusActive, Type: models.PromotionStandard,
		Method: models.ApplicationMethod{Type: models.MethodPercentage, TargetType: models.TargetOrder, Value: 10},
	}
}

func automaticPromo() models.Promotion {
	return models.Promotion{
		ID: "auto", IsAutomatic: true, Status: models.StatusActive, Type: models.PromotionStandard,
		Method: models.ApplicationMethod{Type: models.MethodFixed, TargetType: models.TargetOrder, Value: 500},
	}
}

func TestEvaluateOrder_CombinesCodeAndAutomatic(t *testing.T) {
	repo := &fakeRepo{
		byCode:    map[string]*models.Promotion{"SAVE10": codedPromo()},
		automatic: []models.Promotion{automaticPromo()},
	}
	svc := NewPromotionService(repo, nil)

	result, err := svc.EvaluateOrder(context.Background(), orderFixture(), []string{"save10"})
	require.NoError(t, err)
	require.Len(t, result.Adjustments, 2)
	assert.Equal(t, models.Money(1500), result.DiscountTotal) // 10% of 10000 + 500
}

func TestEvaluateOrder_CachesCodeLookups(t *testing.T) {
	repo := &fakeRepo{byCode: map[string]*models.Promotion{"SAVE10": codedPromo()}}
	svc := NewPromotionService(repo, nil)

	_, err := svc.EvaluateOrder(context.Background(), orderFixture(), []string{"SAVE10"})
	require.NoError(t, err)
	_, err = svc.EvaluateOrder(context.Background(), orderFixture(), []string{"save10"})
	require.NoError(t, err)

	assert.Equal(t, 1, repo.codeCalls)
}

func TestEvaluateOrder_CachesMisses(t *testing.T) {
	repo := &fakeRepo{byCode: map[string]*models.Promotion{}}
	svc := NewPromotionService(repo, nil)

	result, err := svc.EvaluateOrder(context.Background(), orderFixture(), []string{"NOPE"})
	require.NoError(t, err)
	assert.Empty(t, result.Adjustments)

	_, err = svc.EvaluateOrder(context.Background(), orderFixture(), []string{"NOPE"})
	require.NoError(t, err)
	assert.Equal(t, 1, repo.codeCalls)
}

func TestApplicablePromotions_MissingCurrencyIsFatal(t *testing.T) {
	repo := &fakeRepo{active: []models.Promotion{automaticPromo()}}
	svc := NewPromotionService(repo, nil)

	order := orderFixture()
	order.CurrencyCode = ""

	_, err := svc.ApplicablePromotions(context.Background(), order)
	require.Error(t, err)
	var ctxErr *engine.InvalidContextError
	assert.True(t, errors.As(err, &ctxErr))
}

func TestApplicablePromotions(t *testing.T) {
	matching := automaticPromo()
	nonMatching := models.Promotion{
		ID: "eur_only", Code: "EURONLY", Status: models.StatusActive, Type: models.PromotionStandard,
		Rules:  []models.Rule{{Attribute: "currency_code", Operator: models.OpEq, Values: []string{"eur"}}},
		Method: models.ApplicationMethod{Type: models.MethodPercentage, TargetType: models.TargetOrder, Value: 10},
	}
	coded := *codedPromo()

	repo := &fakeRepo{active: []models.Promotion{matching, nonMatching, coded}}
	svc := NewPromotionService(repo, nil)

	codes, err := svc.ApplicablePromotions(context.Background(), orderFixture())
	require.NoError(t, err)
	assert.Equal(t, []string{"auto", "SAVE10"}, codes)
}
