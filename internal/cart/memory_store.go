package cart

import (
	"sync"
	"time"

	"github.com/shittu-qudus/BLACKSFIT/internal/domain"
)

// Currency is the only currency the storefront sells in.
const Currency = "NGN"

// MemoryStore implements Store with in-memory storage scoped to one browsing
// session. The original UI relied on a single event loop to serialize
// mutations; here HTTP requests may race, so a mutex guards the lines.
type MemoryStore struct {
	mu    sync.RWMutex
	lines []domain.CartLine
	total float64
}

// NewMemoryStore creates an empty session cart.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

func (s *MemoryStore) Add(p domain.Product) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.lines {
		if s.lines[i].ProductID == p.ID {
			s.lines[i].Quantity++
			s.recompute()
			return
		}
	}

	s.lines = append(s.lines, domain.CartLine{
		ProductID: p.ID,
		Name:      p.Name,
		Price:     p.Price,
		PhotoURL:  p.PhotoURL,
		Quantity:  1,
	})
	s.recompute()
}

func (s *MemoryStore) Increment(productID int64) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.lines {
		if s.lines[i].ProductID == productID {
			s.lines[i].Quantity++
			s.recompute()
			return
		}
	}
}

func (s *MemoryStore) Decrement(productID int64) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.lines {
		if s.lines[i].ProductID != productID {
			continue
		}
		if s.lines[i].Quantity <= 1 {
			s.lines = append(s.lines[:i], s.lines[i+1:]...)
		} else {
			s.lines[i].Quantity--
		}
		s.recompute()
		return
	}
}

func (s *MemoryStore) Remove(productID int64) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.lines {
		if s.lines[i].ProductID == productID {
			s.lines = append(s.lines[:i], s.lines[i+1:]...)
			s.recompute()
			return
		}
	}
}

func (s *MemoryStore) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.lines = nil
	s.total = 0
}

// recompute rebuilds the derived total from the lines. Callers must hold the
// write lock.
func (s *MemoryStore) recompute() {
	var total float64
	for _, l := range s.lines {
		total += l.Subtotal()
	}
	s.total = total
}

func (s *MemoryStore) Lines() []domain.CartLine {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]domain.CartLine, len(s.lines))
	copy(out, s.lines)
	return out
}

func (s *MemoryStore) Total() float64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.total
}

func (s *MemoryStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.lines)
}

func (s *MemoryStore) TotalQuantity() int32 {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var n int32
	for _, l := range s.lines {
		n += l.Quantity
	}
	return n
}

func (s *MemoryStore) Snapshot() *domain.CartSnapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()

	snap := &domain.CartSnapshot{
		Items:      make([]domain.CartSnapshotItem, 0, len(s.lines)),
		Currency:   Currency,
		CapturedAt: time.Now(),
	}
	for _, l := range s.lines {
		snap.Items = append(snap.Items, domain.CartSnapshotItem{
			ProductID:   l.ProductID,
			ProductName: l.Name,
			Quantity:    l.Quantity,
			UnitPrice:   l.Price,
			Subtotal:    l.Subtotal(),
		})
	}
	snap.TotalAmount = s.total
	return snap
}
