package service

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/yourusername/promotion-engine/internal/cache"
	"github.com/yourusername/promotion-engine/internal/concurrency"
	"github.com/yourusername/promotion-engine/internal/engine"
	"github.com/yourusername/promotion-engine/internal/models"
)

// Repo required by the service (interface so tests can fake it).
type PromotionRepo interface {
	GetPromotionByCode(ctx context.Context, code string) (*models.Promotion, error)
	ListAutomaticPromotions(ctx context.Context) ([]models.Promotion, error)
	ListActivePromotions(ctx context.Context) ([]models.Promotion, error)
}

// PromotionService fetches candidate promotions and runs the evaluation
// engine over them. All external reads happen here, up front; the engine
// itself never touches the database.
type PromotionService struct {
	repo   PromotionRepo
	cache  *cache.PromotionCache
	engine *engine.Engine
	logger *zap.Logger
}

func NewPromotionService(repo PromotionRepo, logger *zap.Logger) *PromotionService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &PromotionService{
		repo:   repo,
		cache:  cache.NewPromotionCache(),
		engine: engine.New(logger),
		logger: logger,
	}
}

type EvaluationResult struct {
	Adjustments   []models.Adjustment `json:"adjustments"`
	DiscountTotal models.Money        `json:"discount_total"`
}

// EvaluateOrder computes the adjustment set for an order plus any entered
// redemption codes. Recomputation is idempotent; the result fully replaces
// any prior adjustment set.
func (s *PromotionService) EvaluateOrder(ctx context.Context, order models.OrderContext, redemptionCodes []string) (EvaluationResult, error) {
	candidates, err := s.candidatePromotions(ctx, redemptionCodes)
	if err != nil {
		return EvaluationResult{}, fmt.Errorf("load candidates: %w", err)
	}

	adjustments, err := s.engine.Evaluate(order, candidates, redemptionCodes)
	if err != nil {
		return EvaluationResult{}, err
	}

	var total models.Money
	for i := range adjustments {
		total += adjustments[i].Amount
	}
	return EvaluationResult{Adjustments: adjustments, DiscountTotal: total}, nil
}

// candidatePromotions assembles the engine input: promotions for the entered
// codes (cache-aside, misses cached too), then the automatic promotions in
// stored order.
func (s *PromotionService) candidatePromotions(ctx context.Context, redemptionCodes []string) ([]models.Promotion, error) {
	var candidates []models.Promotion

	for _, raw := range redemptionCodes {
		code := engine.NormalizeCode(raw)
		if code == "" {
			continue
		}
		p, ok := s.cache.Get(code)
		if !ok {
			loaded, err := s.repo.GetPromotionByCode(ctx, code)
			if err != nil {
				return nil, err
			}
			s.cache.Set(code, loaded)
			p = loaded
		}
		if p != nil {
			candidates = append(candidates, *p)
		}
	}

	automatic, err := s.repo.ListAutomaticPromotions(ctx)
	if err != nil {
		return nil, err
	}
	candidates = append(candidates, automatic...)
	return candidates, nil
}

// ApplicablePromotions returns the codes of active promotions that would
// produce at least one adjustment for the order. Candidates are checked in
// parallel over the pure engine, one promotion per task.
func (s *PromotionService) ApplicablePromotions(ctx context.Context, order models.OrderContext) ([]string, error) {
	// Per-candidate evaluation errors inside the scan can only be the fatal
	// context class, so check the contract once up front instead of
	// collecting the same error from every worker.
	if err := engine.ValidateContext(&order); err != nil {
		return nil, err
	}

	candidates, err := s.repo.ListActivePromotions(ctx)
	if err != nil {
		return nil, fmt.Errorf("list promotions: %w", err)
	}

	workerCount := 4
	if len(candidates) > 0 && len(candidates) < workerCount {
		workerCount = len(candidates)
	}

	applies := make([]bool, len(candidates))
	concurrency.FanOut(ctx, workerCount, len(candidates), func(ctx context.Context, i int) {
		p := candidates[i]
		var codes []string
		if !p.IsAutomatic {
			codes = []string{p.Code}
		}
		adjustments, err := s.engine.Evaluate(order, []models.Promotion{p}, codes)
		applies[i] = err == nil && len(adjustments) > 0
	})

	applicable := []string{}
	for i, ok := range applies {
		if !ok {
			continue
		}
		// automatic promotions may have no code; fall back to the id
		label := candidates[i].Code
		if label == "" {
			label = candidates[i].ID
		}
		applicable = append(applicable, label)
	}
	return applicable, nil
}
