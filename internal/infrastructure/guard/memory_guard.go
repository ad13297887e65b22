package guard

import (
	"context"
	"fmt"
	"isp-billing/internal/pkg/apperrors"
	"sync"
)

// MemoryGuard holds processing markers in process memory. Used with the memory store
// and when no redis address is configured.
type MemoryGuard struct {
	held sync.Map
}

func NewMemoryGuard() *MemoryGuard {
	return &MemoryGuard{}
}

func (g *MemoryGuard) Acquire(_ context.Context, key string) (func(), error) {
	if _, loaded := g.held.LoadOrStore(key, struct{}{}); loaded {
		return nil, fmt.Errorf("%w: %s", apperrors.ErrProcessing, key)
	}
	var once sync.Once
	return func() { once.Do(func() { g.held.Delete(key) }) }, nil
}
