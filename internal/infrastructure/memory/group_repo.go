package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/baechuer/account-service/internal/domain"
)

type GroupRepo struct {
	mu     sync.RWMutex
	groups map[int64]domain.Group
}

func NewGroupRepo() *GroupRepo {
	return &GroupRepo{groups: make(map[int64]domain.Group)}
}

func (r *GroupRepo) GetDefaultPrimary(ctx context.Context) (domain.Group, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, g := range r.sorted() {
		if g.IsDefaultPrimary {
			return g, nil
		}
	}
	return domain.Group{}, domain.ErrGroupNotFound()
}

func (r *GroupRepo) ListDefault(ctx context.Context) ([]domain.Group, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var out []domain.Group
	for _, g := range r.sorted() {
		if g.IsDefault {
			out = append(out, g)
		}
	}
	return out, nil
}

// EnsureGroups adds gs, keeping groups that already exist.
func (r *GroupRepo) EnsureGroups(ctx context.Context, gs []domain.Group) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, g := range gs {
		if _, ok := r.groups[g.ID]; !ok {
			r.groups[g.ID] = g
		}
	}
	return nil
}

func (r *GroupRepo) sorted() []domain.Group {
	out := make([]domain.Group, 0, len(r.groups))
	for _, g := range r.groups {
		out = append(out, g)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}
