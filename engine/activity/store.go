// Package activity tracks per-user search and product-view history in memory.
// Histories back the personalized planner and the baseline price computation.
package activity

import (
	"sort"
	"sync"
	"time"

	"github.com/Jawher-Sadok/VondraLink/engine/domain"
)

// DefaultMaxHistory bounds the number of searches and views kept per user.
const DefaultMaxHistory = 100

// ring is a capacity-bounded FIFO. Appending past capacity drops the oldest
// entry.
type ring[T any] struct {
	items []T
	cap   int
}

func (r *ring[T]) push(v T) {
	r.items = append(r.items, v)
	if len(r.items) > r.cap {
		r.items = r.items[1:]
	}
}

// tail returns up to n most recent items, oldest first. n <= 0 means all.
func (r *ring[T]) tail(n int) []T {
	items := r.items
	if n > 0 && len(items) > n {
		items = items[len(items)-n:]
	}
	out := make([]T, len(items))
	copy(out, items)
	return out
}

type userHistory struct {
	searches     ring[domain.SearchEntry]
	views        ring[domain.ViewedProduct]
	interactions map[string]int
}

// Store is an in-memory activity cache keyed by user ID.
type Store struct {
	mu         sync.Mutex
	users      map[string]*userHistory
	maxHistory int
	now        func() time.Time // for testing
}

// NewStore creates an activity store. maxHistory <= 0 uses DefaultMaxHistory.
func NewStore(maxHistory int) *Store {
	if maxHistory <= 0 {
		maxHistory = DefaultMaxHistory
	}
	return &Store{
		users:      make(map[string]*userHistory),
		maxHistory: maxHistory,
		now:        time.Now,
	}
}

// user returns the history for userID, creating it if absent. Must hold mu.
func (s *Store) user(userID string) *userHistory {
	h, ok := s.users[userID]
	if !ok {
		h = &userHistory{
			searches:     ring[domain.SearchEntry]{cap: s.maxHistory},
			views:        ring[domain.ViewedProduct]{cap: s.maxHistory},
			interactions: make(map[string]int),
		}
		s.users[userID] = h
	}
	return h
}

// AddSearch records a search query for the user.
func (s *Store) AddSearch(userID, query, mode string, budget float64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.user(userID).searches.push(domain.SearchEntry{
		Query:     query,
		Mode:      mode,
		Budget:    budget,
		Timestamp: s.now(),
	})
}

// AddViews records product views for the user and bumps interaction counts.
func (s *Store) AddViews(userID string, products []domain.ViewedProduct) {
	s.mu.Lock()
	defer s.mu.Unlock()

	h := s.user(userID)
	ts := s.now()
	for _, p := range products {
		if p.Name == "" {
			p.Name = "Unknown Product"
		}
		p.Timestamp = ts
		h.views.push(p)
		h.interactions[p.Name]++
	}
}

// RecentSearches returns up to limit most recent searches, oldest first.
func (s *Store) RecentSearches(userID string, limit int) []domain.SearchEntry {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.user(userID).searches.tail(limit)
}

// RecentProducts returns up to limit most recent product views, oldest first.
func (s *Store) RecentProducts(userID string, limit int) []domain.ViewedProduct {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.user(userID).views.tail(limit)
}

// TopProducts returns up to limit products ordered by interaction count
// descending, ties broken by name for stable output.
func (s *Store) TopProducts(userID string, limit int) []domain.TopProduct {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.topProducts(s.user(userID), limit)
}

// topProducts ranks interactions. Must hold mu.
func (s *Store) topProducts(h *userHistory, limit int) []domain.TopProduct {
	out := make([]domain.TopProduct, 0, len(h.interactions))
	for name, count := range h.interactions {
		out = append(out, domain.TopProduct{Name: name, Count: count})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].Name < out[j].Name
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out
}

// Context assembles the activity snapshot consumed by planners.
func (s *Store) Context(userID string) domain.ActivityContext {
	s.mu.Lock()
	defer s.mu.Unlock()

	h := s.user(userID)
	return domain.ActivityContext{
		RecentSearches: h.searches.tail(10),
		RecentProducts: h.views.tail(20),
		TopProducts:    s.topProducts(h, 10),
		TotalSearches:  len(h.searches.items),
		TotalViews:     len(h.views.items),
	}
}

// Clear drops all history for the user.
func (s *Store) Clear(userID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.users, userID)
}
