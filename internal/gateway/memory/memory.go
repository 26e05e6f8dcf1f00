// Package memory is an in-memory gateway adapter. It backs the default
// development backend and doubles as the test fake: FailNext injects a
// failure into the next call so callers can exercise their error paths.
package memory

import (
	"context"
	"fmt"
	"sync"

	"salone/internal/core"
	"salone/internal/gateway"
)

type Store struct {
	mu     sync.Mutex
	nextID int64

	clients       []core.Client
	products      []core.Product
	professionals []core.Professional
	appointments  []core.Appointment
	finances      []core.FinancialEntry
	hours         []core.BusinessHours
	exceptions    []core.BusinessException

	failNext error
}

func New() *Store {
	return &Store{}
}

// FailNext makes the next gateway call fail with a remote error carrying
// the given cause, then clears itself.
func (s *Store) FailNext(cause string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failNext = fmt.Errorf("%w: %s", core.ErrRemote, cause)
}

func (s *Store) takeFailure() error {
	err := s.failNext
	s.failNext = nil
	return err
}

func (s *Store) Clients() gateway.Collection[core.Client] {
	return col[core.Client]{s, &s.clients, func(c core.Client, id int64) core.Client { c.ID = id; return c }}
}

func (s *Store) Products() gateway.Collection[core.Product] {
	return col[core.Product]{s, &s.products, func(p core.Product, id int64) core.Product { p.ID = id; return p }}
}

func (s *Store) Professionals() gateway.Collection[core.Professional] {
	return col[core.Professional]{s, &s.professionals, func(p core.Professional, id int64) core.Professional { p.ID = id; return p }}
}

func (s *Store) Appointments() gateway.Collection[core.Appointment] {
	return col[core.Appointment]{s, &s.appointments, func(a core.Appointment, id int64) core.Appointment { a.ID = id; return a }}
}

func (s *Store) FinancialEntries() gateway.Collection[core.FinancialEntry] {
	return col[core.FinancialEntry]{s, &s.finances, func(e core.FinancialEntry, id int64) core.FinancialEntry { e.ID = id; return e }}
}

func (s *Store) Schedule() gateway.Schedule {
	return schedule{s}
}

// col adapts one typed slice to the Collection port. withID clones the
// record with a freshly assigned identifier.
type col[T core.Entity] struct {
	s      *Store
	items  *[]T
	withID func(T, int64) T
}

func (c col[T]) List(_ context.Context, ownerID string) ([]T, error) {
	c.s.mu.Lock()
	defer c.s.mu.Unlock()
	if err := c.s.takeFailure(); err != nil {
		return nil, err
	}
	var out []T
	for _, it := range *c.items {
		if it.Owner() == ownerID {
			out = append(out, it)
		}
	}
	return out, nil
}

func (c col[T]) Insert(_ context.Context, record T) (T, error) {
	var zero T
	c.s.mu.Lock()
	defer c.s.mu.Unlock()
	if err := c.s.takeFailure(); err != nil {
		return zero, err
	}
	if record.Owner() == "" {
		return zero, core.ErrNoOwner
	}
	c.s.nextID++
	saved := c.withID(record, c.s.nextID)
	*c.items = append(*c.items, saved)
	return saved, nil
}

func (c col[T]) Update(_ context.Context, record T) (T, error) {
	var zero T
	c.s.mu.Lock()
	defer c.s.mu.Unlock()
	if err := c.s.takeFailure(); err != nil {
		return zero, err
	}
	for i, it := range *c.items {
		if it.Owner() == record.Owner() && it.EntityID() == record.EntityID() {
			(*c.items)[i] = record
			return record, nil
		}
	}
	return zero, core.ErrNotFound
}

func (c col[T]) Delete(_ context.Context, ownerID string, id int64) error {
	c.s.mu.Lock()
	defer c.s.mu.Unlock()
	if err := c.s.takeFailure(); err != nil {
		return err
	}
	for i, it := range *c.items {
		if it.Owner() == ownerID && it.EntityID() == id {
			*c.items = append((*c.items)[:i], (*c.items)[i+1:]...)
			return nil
		}
	}
	return core.ErrNotFound
}

type schedule struct {
	s *Store
}

func (sc schedule) WeekHours(_ context.Context, ownerID string) ([]core.BusinessHours, error) {
	sc.s.mu.Lock()
	defer sc.s.mu.Unlock()
	if err := sc.s.takeFailure(); err != nil {
		return nil, err
	}
	var out []core.BusinessHours
	for _, h := range sc.s.hours {
		if h.OwnerID == ownerID {
			out = append(out, h)
		}
	}
	return out, nil
}

func (sc schedule) PutHours(_ context.Context, hours core.BusinessHours) error {
	sc.s.mu.Lock()
	defer sc.s.mu.Unlock()
	if err := sc.s.takeFailure(); err != nil {
		return err
	}
	if hours.OwnerID == "" {
		return core.ErrNoOwner
	}
	for i, h := range sc.s.hours {
		if h.OwnerID == hours.OwnerID && h.Weekday == hours.Weekday {
			sc.s.hours[i] = hours
			return nil
		}
	}
	sc.s.hours = append(sc.s.hours, hours)
	return nil
}

func (sc schedule) ListExceptions(_ context.Context, ownerID string) ([]core.BusinessException, error) {
	sc.s.mu.Lock()
	defer sc.s.mu.Unlock()
	if err := sc.s.takeFailure(); err != nil {
		return nil, err
	}
	var out []core.BusinessException
	for _, e := range sc.s.exceptions {
		if e.OwnerID == ownerID {
			out = append(out, e)
		}
	}
	return out, nil
}

func (sc schedule) InsertException(_ context.Context, exc core.BusinessException) (core.BusinessException, error) {
	sc.s.mu.Lock()
	defer sc.s.mu.Unlock()
	if err := sc.s.takeFailure(); err != nil {
		return core.BusinessException{}, err
	}
	if exc.OwnerID == "" {
		return core.BusinessException{}, core.ErrNoOwner
	}
	sc.s.nextID++
	exc.ID = sc.s.nextID
	sc.s.exceptions = append(sc.s.exceptions, exc)
	return exc, nil
}

func (sc schedule) DeleteException(_ context.Context, ownerID string, id int64) error {
	sc.s.mu.Lock()
	defer sc.s.mu.Unlock()
	if err := sc.s.takeFailure(); err != nil {
		return err
	}
	for i, e := range sc.s.exceptions {
		if e.OwnerID == ownerID && e.ID == id {
			sc.s.exceptions = append(sc.s.exceptions[:i], sc.s.exceptions[i+1:]...)
			return nil
		}
	}
	return core.ErrNotFound
}
