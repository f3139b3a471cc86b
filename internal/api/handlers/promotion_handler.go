package handlers

import (
	"database/sql"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"go.uber.org/zap"

	"github.com/yourusername/promotion-engine/internal/engine"
	"github.com/yourusername/promotion-engine/internal/models"
	"github.com/yourusername/promotion-engine/internal/repository"
	"github.com/yourusername/promotion-engine/internal/service"
)

// --- Request / Response DTOs ---

type EvaluateRequestBody struct {
	Order           models.OrderContext `json:"order"`
	RedemptionCodes []string            `json:"redemption_codes,omitempty"`
}

type ApplicableRequestBody struct {
	Order models.OrderContext `json:"order"`
}

type ApplicableResponse struct {
	ApplicablePromotions []string `json:"applicable_promotions"`
}

type RuleInput struct {
	Attribute string   `json:"attribute"`
	Operator  string   `json:"operator"`
	Values    []string `json:"values"`
}

type CreatePromotionRequest struct {
	Code           string      `json:"code"`
	IsAutomatic    bool        `json:"is_automatic"`
	Status         string      `json:"status"`
	Type           string      `json:"type"`
	UsageLimit     int         `json:"usage_limit,omitempty"`
	IsTaxInclusive bool        `json:"is_tax_inclusive"`
	MethodType     string      `json:"method_type"`
	TargetType     string      `json:"target_type"`
	Value          int64       `json:"value"`
	Allocation     string      `json:"allocation,omitempty"`
	MaxQuantity    int         `json:"max_quantity,omitempty"`
	BuyQuantity    int         `json:"buy_quantity,omitempty"`
	GetQuantity    int         `json:"get_quantity,omitempty"`
	Rules          []RuleInput `json:"rules,omitempty"`
	TargetRules    []RuleInput `json:"target_rules,omitempty"`
	BuyRules       []RuleInput `json:"buy_rules,omitempty"`
	GetRules       []RuleInput `json:"get_rules,omitempty"`
}

// --- Handler struct & constructor ---

type PromotionHandler struct {
	db      *sql.DB
	repo    *repository.PromotionRepo
	service *service.PromotionService
	logger  *zap.Logger
}

func NewPromotionHandler(db *sql.DB, logger *zap.Logger) *PromotionHandler {
	repo := repository.NewPromotionRepo(db)
	return &PromotionHandler{
		db:      db,
		repo:    repo,
		service: service.NewPromotionService(repo, logger),
		logger:  logger,
	}
}

// --- Helpers ---

func writeJSON(w http.ResponseWriter, code int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func toRules(in []RuleInput) []models.Rule {
	if len(in) == 0 {
		return nil
	}
	rules := make([]models.Rule, len(in))
	for i, r := range in {
		rules[i] = models.Rule{
			Attribute: r.Attribute,
			Operator:  models.Operator(r.Operator),
			Values:    r.Values,
		}
	}
	return rules
}

// --- Handlers ---

// EvaluateOrder handles POST /orders/evaluate
func (h *PromotionHandler) EvaluateOrder(w http.ResponseWriter, r *http.Request) {
	var req EvaluateRequestBody
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid_body"})
		return
	}

	result, err := h.service.EvaluateOrder(r.Context(), req.Order, req.RedemptionCodes)
	if err != nil {
		var ctxErr *engine.InvalidContextError
		if errors.As(err, &ctxErr) {
			writeJSON(w, http.StatusUnprocessableEntity, map[string]string{"error": "invalid_order_context", "detail": ctxErr.Error()})
			return
		}
		h.logger.Error("evaluate order failed", zap.Error(err))
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal_error"})
		return
	}

	writeJSON(w, http.StatusOK, result)
}

// GetApplicablePromotions handles GET /promotions/applicable
func (h *PromotionHandler) GetApplicablePromotions(w http.ResponseWriter, r *http.Request) {
	var req ApplicableRequestBody
	if r.ContentLength == 0 {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "order required"})
		return
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid_body"})
		return
	}

	codes, err := h.service.ApplicablePromotions(r.Context(), req.Order)
	if err != nil {
		var ctxErr *engine.InvalidContextError
		if errors.As(err, &ctxErr) {
			writeJSON(w, http.StatusUnprocessableEntity, map[string]string{"error": "invalid_order_context", "detail": ctxErr.Error()})
			return
		}
		h.logger.Error("applicable promotions failed", zap.Error(err))
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal_error"})
		return
	}

	writeJSON(w, http.StatusOK, ApplicableResponse{ApplicablePromotions: codes})
}

// CreatePromotion handles POST /admin/promotions
// creates the promotion record + rule rows in a transaction
func (h *PromotionHandler) CreatePromotion(w http.ResponseWriter, r *http.Request) {
	var req CreatePromotionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid_body"})
		return
	}

	p := models.Promotion{
		ID:             uuid.NewString(),
		Code:           req.Code,
		IsAutomatic:    req.IsAutomatic,
		Status:         models.PromotionStatus(req.Status),
		Type:           models.PromotionType(req.Type),
		UsageLimit:     req.UsageLimit,
		IsTaxInclusive: req.IsTaxInclusive,
		Rules:          toRules(req.Rules),
		Method: models.ApplicationMethod{
			Type:        models.MethodType(req.MethodType),
			TargetType:  models.TargetType(req.TargetType),
			Value:       req.Value,
			Allocation:  models.Allocation(req.Allocation),
			MaxQuantity: req.MaxQuantity,
			TargetRules: toRules(req.TargetRules),
		},
	}
	if p.Type == models.PromotionBuyGet {
		p.BuyGet = &models.BuyGetConfig{
			BuyQuantity: req.BuyQuantity,
			GetQuantity: req.GetQuantity,
			BuyRules:    toRules(req.BuyRules),
			GetRules:    toRules(req.GetRules),
		}
	}

	// reject malformed configuration at the boundary
	p, err := engine.NormalizePromotion(p)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid_promotion", "detail": err.Error()})
		return
	}

	ctx := r.Context()
	tx, err := h.db.BeginTx(ctx, nil)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "could_not_start_tx"})
		return
	}
	defer func() {
		_ = tx.Rollback()
	}()

	insertPromotion := `
		INSERT INTO promotions
		(id, code, is_automatic, status, type, usage_limit, usage_count, is_tax_inclusive,
		 method_type, target_type, value, allocation, max_quantity, buy_quantity, get_quantity,
		 created_at, updated_at)
		VALUES ($1,$2,$3,$4,$5,$6,0,$7,$8,$9,$10,$11,$12,$13,$14,NOW(),NOW())
	`
	var usageLimit sql.NullInt64
	if p.UsageLimit > 0 {
		usageLimit = sql.NullInt64{Int64: int64(p.UsageLimit), Valid: true}
	}
	var buyQty, getQty sql.NullInt64
	if p.BuyGet != nil {
		buyQty = sql.NullInt64{Int64: int64(p.BuyGet.BuyQuantity), Valid: true}
		getQty = sql.NullInt64{Int64: int64(p.BuyGet.GetQuantity), Valid: true}
	}

	_, err = tx.ExecContext(ctx, insertPromotion,
		p.ID,
		p.Code,
		p.IsAutomatic,
		p.Status,
		p.Type,
		usageLimit,
		p.IsTaxInclusive,
		p.Method.Type,
		p.Method.TargetType,
		p.Method.Value,
		p.Method.Allocation,
		p.Method.MaxQuantity,
		buyQty,
		getQty,
	)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed_create_promotion"})
		return
	}

	insertRule := `INSERT INTO promotion_rules (promotion_id, scope, attribute, operator, vals) VALUES ($1, $2, $3, $4, $5)`
	insertRules := func(scope string, rules []models.Rule) error {
		for _, rule := range rules {
			if _, err := tx.ExecContext(ctx, insertRule, p.ID, scope, rule.Attribute, rule.Operator, pq.Array(rule.Values)); err != nil {
				return err
			}
		}
		return nil
	}

	if err := insertRules("order", p.Rules); err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed_create_rules"})
		return
	}
	if err := insertRules("target", p.Method.TargetRules); err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed_create_rules"})
		return
	}
	if p.BuyGet != nil {
		if err := insertRules("buy", p.BuyGet.BuyRules); err != nil {
			writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed_create_rules"})
			return
		}
		if err := insertRules("get", p.BuyGet.GetRules); err != nil {
			writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed_create_rules"})
			return
		}
	}

	if err := tx.Commit(); err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "commit_failed"})
		return
	}

	writeJSON(w, http.StatusCreated, map[string]interface{}{
		"message":      "promotion_created",
		"promotion_id": p.ID,
	})
}
