// Package repotest provides in-memory repositories for service and handler tests.
package repotest

import (
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/suteetoe/krist-shop/internal/model"
	"github.com/suteetoe/krist-shop/internal/repository"
)

// store keeps rows keyed by id in insertion order
type store[T any] struct {
	mu    sync.Mutex
	rows  map[string]*T
	order []string
	base  func(*T) *model.Base
}

func newStore[T any](base func(*T) *model.Base) *store[T] {
	return &store[T]{rows: map[string]*T{}, base: base}
}

func (s *store[T]) insert(v *T) {
	b := s.base(v)
	if b.ID == "" {
		b.ID = uuid.NewString()
	}
	now := time.Now()
	if b.CreatedAt.IsZero() {
		b.CreatedAt = now
	}
	b.UpdatedAt = now
	cp := *v
	if _, ok := s.rows[b.ID]; !ok {
		s.order = append(s.order, b.ID)
	}
	s.rows[b.ID] = &cp
}

func (s *store[T]) get(id string) (*T, bool) {
	v, ok := s.rows[id]
	if !ok {
		return nil, false
	}
	cp := *v
	return &cp, true
}

func (s *store[T]) remove(id string) bool {
	if _, ok := s.rows[id]; !ok {
		return false
	}
	delete(s.rows, id)
	for i, k := range s.order {
		if k == id {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}
	return true
}

// filter returns copies of the matching rows, newest first
func (s *store[T]) filter(match func(*T) bool) []T {
	out := make([]T, 0)
	for i := len(s.order) - 1; i >= 0; i-- {
		v := s.rows[s.order[i]]
		if match == nil || match(v) {
			out = append(out, *v)
		}
	}
	return out
}

func (s *store[T]) first(match func(*T) bool) (*T, bool) {
	for _, id := range s.order {
		if v := s.rows[id]; match(v) {
			cp := *v
			return &cp, true
		}
	}
	return nil, false
}

func paginate[T any](items []T, p repository.Pagination) ([]T, int64) {
	total := int64(len(items))
	start := p.Offset()
	if start >= len(items) {
		return []T{}, total
	}
	end := len(items)
	if p.Limit > 0 && start+p.Limit < end {
		end = start + p.Limit
	}
	return items[start:end], total
}

func matchesSearch(term string, fields ...string) bool {
	term = strings.ToLower(strings.TrimSpace(term))
	if term == "" {
		return true
	}
	for _, f := range fields {
		if strings.Contains(strings.ToLower(f), term) {
			return true
		}
	}
	return false
}

func inRange(q repository.ListQuery, created time.Time) bool {
	if q.StartDate != nil && created.Before(*q.StartDate) {
		return false
	}
	if q.EndDate != nil && created.After(*q.EndDate) {
		return false
	}
	return true
}

// filterAsc returns copies of the matching rows, oldest first
func (s *store[T]) filterAsc(match func(*T) bool) []T {
	out := make([]T, 0)
	for _, id := range s.order {
		if v := s.rows[id]; match == nil || match(v) {
			out = append(out, *v)
		}
	}
	return out
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
