// Package storetest provides in-memory content stores with the same ordering,
// defaulting and error behaviour as the MySQL repositories.  It is used by
// tests of the packages built on top of the store.
package storetest

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/iliyamo/wine-dine/internal/model"
	"github.com/iliyamo/wine-dine/internal/repository"
)

// ErrInjected is returned by every call while a store's Fail flag is set.
var ErrInjected = errors.New("storetest: injected failure")

// clock hands out strictly increasing timestamps so newest-first ordering is
// deterministic.
type clock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *clock) next() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.now.IsZero() {
		c.now = time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	}
	c.now = c.now.Add(time.Second)
	return c.now
}

// Calls counts store operations by name.
type Calls map[string]int

// MenuStore is an in-memory menu item collection.
type MenuStore struct {
	mu    sync.Mutex
	clk   clock
	items []model.MenuItem
	Fail  bool
	Calls Calls
}

func NewMenuStore() *MenuStore { return &MenuStore{Calls: Calls{}} }

func (s *MenuStore) Create(_ context.Context, it *model.MenuItem) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Calls["create"]++
	if s.Fail {
		return ErrInjected
	}
	it.ID = uuid.NewString()
	it.CreatedAt = s.clk.next()
	s.items = append(s.items, *it)
	return nil
}

// List returns items ordered by category; ties keep insertion order.
func (s *MenuStore) List(_ context.Context) ([]model.MenuItem, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Calls["list"]++
	if s.Fail {
		return nil, ErrInjected
	}
	out := append([]model.MenuItem(nil), s.items...)
	sort.SliceStable(out, func(i, j int) bool { return out[i].Category < out[j].Category })
	return out, nil
}

func (s *MenuStore) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Calls["delete"]++
	if s.Fail {
		return ErrInjected
	}
	for i, it := range s.items {
		if it.ID == id {
			s.items = append(s.items[:i], s.items[i+1:]...)
			break
		}
	}
	return nil
}

// ReviewStore is an in-memory review collection.
type ReviewStore struct {
	mu      sync.Mutex
	clk     clock
	reviews []model.Review
	Fail    bool
	Calls   Calls
}

func NewReviewStore() *ReviewStore { return &ReviewStore{Calls: Calls{}} }

func (s *ReviewStore) Create(_ context.Context, r *model.Review) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Calls["create"]++
	if s.Fail {
		return ErrInjected
	}
	r.ID = uuid.NewString()
	r.CreatedAt = s.clk.next()
	r.Approved = false
	s.reviews = append(s.reviews, *r)
	return nil
}

// List returns reviews newest first.
func (s *ReviewStore) List(_ context.Context) ([]model.Review, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Calls["list"]++
	if s.Fail {
		return nil, ErrInjected
	}
	out := append([]model.Review(nil), s.reviews...)
	sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (s *ReviewStore) Update(_ context.Context, id string, patch model.ReviewPatch) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Calls["update"]++
	if s.Fail {
		return ErrInjected
	}
	for i := range s.reviews {
		if s.reviews[i].ID == id {
			if patch.Approved != nil {
				s.reviews[i].Approved = *patch.Approved
			}
			return nil
		}
	}
	return repository.ErrNotFound
}

func (s *ReviewStore) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Calls["delete"]++
	if s.Fail {
		return ErrInjected
	}
	for i, r := range s.reviews {
		if r.ID == id {
			s.reviews = append(s.reviews[:i], s.reviews[i+1:]...)
			break
		}
	}
	return nil
}

// Get returns the stored review with id, if any.
func (s *ReviewStore) Get(id string) (model.Review, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, r := range s.reviews {
		if r.ID == id {
			return r, true
		}
	}
	return model.Review{}, false
}

// MessageStore is an in-memory contact message collection.
type MessageStore struct {
	mu    sync.Mutex
	clk   clock
	msgs  []model.ContactMessage
	Fail  bool
	Calls Calls
}

func NewMessageStore() *MessageStore { return &MessageStore{Calls: Calls{}} }

func (s *MessageStore) Create(_ context.Context, m *model.ContactMessage) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Calls["create"]++
	if s.Fail {
		return ErrInjected
	}
	m.ID = uuid.NewString()
	m.CreatedAt = s.clk.next()
	m.Read = false
	s.msgs = append(s.msgs, *m)
	return nil
}

// List returns messages newest first.
func (s *MessageStore) List(_ context.Context) ([]model.ContactMessage, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Calls["list"]++
	if s.Fail {
		return nil, ErrInjected
	}
	out := append([]model.ContactMessage(nil), s.msgs...)
	sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (s *MessageStore) Update(_ context.Context, id string, patch model.MessagePatch) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Calls["update"]++
	if s.Fail {
		return ErrInjected
	}
	for i := range s.msgs {
		if s.msgs[i].ID == id {
			if patch.Read != nil {
				s.msgs[i].Read = *patch.Read
			}
			return nil
		}
	}
	return repository.ErrNotFound
}

func (s *MessageStore) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Calls["delete"]++
	if s.Fail {
		return ErrInjected
	}
	for i, m := range s.msgs {
		if m.ID == id {
			s.msgs = append(s.msgs[:i], s.msgs[i+1:]...)
			break
		}
	}
	return nil
}

// Get returns the stored message with id, if any.
func (s *MessageStore) Get(id string) (model.ContactMessage, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, m := range s.msgs {
		if m.ID == id {
			return m, true
		}
	}
	return model.ContactMessage{}, false
}
