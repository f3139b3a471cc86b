package cache

import (
	"sync"

	"github.com/yourusername/promotion-engine/internal/models"
)

// PromotionCache is a small in-process cache keyed by normalized promotion
// code. Entries are immutable snapshots; a miss is stored as a miss so absent
// codes don't hit the database on every request.
type PromotionCache struct {
	mu    sync.RWMutex
	store map[string]*models.Promotion
}

func NewPromotionCache() *PromotionCache {
	return &PromotionCache{
		store: make(map[string]*models.Promotion),
	}
}

func (c *PromotionCache) Get(code string) (*models.Promotion, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	p, ok := c.store[code]
	return p, ok
}

func (c *PromotionCache) Set(code string, p *models.Promotion) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.store[code] = p
}

func (c *PromotionCache) Invalidate(code string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.store, code)
}
