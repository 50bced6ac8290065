package usecase

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/modaviva/shop/internal/domain"
)

// CategoryUC resolves the category hierarchy for promo scoping. The category
// set is small and changes rarely, so it is loaded whole and cached with a
// bounded staleness window.
type CategoryUC struct {
	Categories domain.CategoryRepo
	// CacheTTL bounds staleness of the cached category set. Zero means the
	// default of one minute; negative disables caching.
	CacheTTL time.Duration

	mu       sync.Mutex
	cached   []domain.Category
	cachedAt time.Time
}

func (uc *CategoryUC) load(ctx context.Context) ([]domain.Category, error) {
	ttl := uc.CacheTTL
	if ttl == 0 {
		ttl = time.Minute
	}
	uc.mu.Lock()
	defer uc.mu.Unlock()
	if ttl > 0 && uc.cached != nil && time.Since(uc.cachedAt) < ttl {
		return uc.cached, nil
	}
	cats, err := uc.Categories.ListAll(ctx)
	if err != nil {
		return nil, err
	}
	uc.cached = cats
	uc.cachedAt = time.Now()
	return cats, nil
}

// DescendantsOf returns the ids of the given categories and every category
// below them. The parent pointers are client data and may be malformed, so
// the walk keeps a visited set instead of trusting the forest to be acyclic.
func (uc *CategoryUC) DescendantsOf(ctx context.Context, roots []uuid.UUID) (map[uuid.UUID]struct{}, error) {
	out := make(map[uuid.UUID]struct{})
	if len(roots) == 0 {
		return out, nil
	}
	cats, err := uc.load(ctx)
	if err != nil {
		return nil, err
	}
	children := make(map[uuid.UUID][]uuid.UUID, len(cats))
	for _, c := range cats {
		if c.ParentID != nil {
			children[*c.ParentID] = append(children[*c.ParentID], c.ID)
		}
	}
	stack := append([]uuid.UUID(nil), roots...)
	for len(stack) > 0 {
		id := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if _, seen := out[id]; seen {
			continue
		}
		out[id] = struct{}{}
		stack = append(stack, children[id]...)
	}
	return out, nil
}
