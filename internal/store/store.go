package store

import (
	"context"
	"sort"
	"strings"
	"sync"

	"golang.org/x/sync/errgroup"

	"salone/internal/core"
	"salone/internal/gateway"
)

// Store holds one owner's snapshots of every collection. All collections
// share the owner identifier fixed at construction; handlers never pass
// it per call.
type Store struct {
	ownerID string
	remote  gateway.Gateway

	Clients       *Collection[core.Client]
	Products      *Collection[core.Product]
	Professionals *Collection[core.Professional]
	Appointments  *Collection[core.Appointment]
	Finances      *Collection[core.FinancialEntry]

	schedMu    sync.Mutex
	hours      []core.BusinessHours
	exceptions []core.BusinessException
}

func New(ownerID string, remote gateway.Gateway) *Store {
	return &Store{
		ownerID: ownerID,
		remote:  remote,
		Clients: NewCollection(remote.Clients(), func(a, b core.Client) bool {
			return strings.ToLower(a.Name) < strings.ToLower(b.Name)
		}),
		Products: NewCollection(remote.Products(), func(a, b core.Product) bool {
			return strings.ToLower(a.Name) < strings.ToLower(b.Name)
		}),
		Professionals: NewCollection(remote.Professionals(), func(a, b core.Professional) bool {
			return strings.ToLower(a.Name) < strings.ToLower(b.Name)
		}),
		Appointments: NewCollection(remote.Appointments(), func(a, b core.Appointment) bool {
			return a.StartsAt.Before(b.StartsAt)
		}),
		Finances: NewCollection(remote.FinancialEntries(), func(a, b core.FinancialEntry) bool {
			return a.Date.After(b.Date.Time) // most recent first
		}),
	}
}

func (s *Store) OwnerID() string { return s.ownerID }

// LoadAll refreshes every collection concurrently. The fetches are
// independent; one failing collection does not block the others, but the
// first error is reported.
func (s *Store) LoadAll(ctx context.Context) error {
	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error { return s.Clients.FetchAll(ctx, s.ownerID) })
	g.Go(func() error { return s.Products.FetchAll(ctx, s.ownerID) })
	g.Go(func() error { return s.Professionals.FetchAll(ctx, s.ownerID) })
	g.Go(func() error { return s.Appointments.FetchAll(ctx, s.ownerID) })
	g.Go(func() error { return s.Finances.FetchAll(ctx, s.ownerID) })
	g.Go(func() error { return s.FetchSchedule(ctx) })
	return g.Wait()
}

// FetchSchedule refreshes the weekly hours and exception snapshots.
func (s *Store) FetchSchedule(ctx context.Context) error {
	hours, err := s.remote.Schedule().WeekHours(ctx, s.ownerID)
	if err != nil {
		return err
	}
	exceptions, err := s.remote.Schedule().ListExceptions(ctx, s.ownerID)
	if err != nil {
		return err
	}

	s.schedMu.Lock()
	defer s.schedMu.Unlock()
	s.hours = hours
	s.exceptions = exceptions
	sortExceptions(s.exceptions)
	return nil
}

// WeekHours returns the configured weekday rows, ordered Sunday first.
func (s *Store) WeekHours() []core.BusinessHours {
	s.schedMu.Lock()
	defer s.schedMu.Unlock()
	out := make([]core.BusinessHours, len(s.hours))
	copy(out, s.hours)
	sort.Slice(out, func(i, j int) bool { return out[i].Weekday < out[j].Weekday })
	return out
}

// SetHours validates and writes one weekday row, replacing any existing
// row for that weekday once the gateway confirms.
func (s *Store) SetHours(ctx context.Context, hours core.BusinessHours) error {
	hours.OwnerID = s.ownerID
	if err := hours.Validate(); err != nil {
		return err
	}
	if err := s.remote.Schedule().PutHours(ctx, hours); err != nil {
		return err
	}

	s.schedMu.Lock()
	defer s.schedMu.Unlock()
	for i, h := range s.hours {
		if h.Weekday == hours.Weekday {
			s.hours[i] = hours
			return nil
		}
	}
	s.hours = append(s.hours, hours)
	return nil
}

// Exceptions returns the snapshot of single-date overrides, date ascending.
func (s *Store) Exceptions() []core.BusinessException {
	s.schedMu.Lock()
	defer s.schedMu.Unlock()
	out := make([]core.BusinessException, len(s.exceptions))
	copy(out, s.exceptions)
	return out
}

func (s *Store) AddException(ctx context.Context, exc core.BusinessException) (core.BusinessException, error) {
	exc.OwnerID = s.ownerID
	if err := exc.Validate(); err != nil {
		return core.BusinessException{}, err
	}
	saved, err := s.remote.Schedule().InsertException(ctx, exc)
	if err != nil {
		return core.BusinessException{}, err
	}

	s.schedMu.Lock()
	defer s.schedMu.Unlock()
	s.exceptions = append(s.exceptions, saved)
	sortExceptions(s.exceptions)
	return saved, nil
}

// RemoveException drops the override optimistically and restores it if
// the gateway rejects the delete.
func (s *Store) RemoveException(ctx context.Context, id int64) error {
	s.schedMu.Lock()
	idx := -1
	for i, e := range s.exceptions {
		if e.ID == id {
			idx = i
			break
		}
	}
	if idx < 0 {
		s.schedMu.Unlock()
		return core.ErrNotFound
	}
	removed := s.exceptions[idx]
	s.exceptions = append(s.exceptions[:idx], s.exceptions[idx+1:]...)
	s.schedMu.Unlock()

	if err := s.remote.Schedule().DeleteException(ctx, s.ownerID, id); err != nil {
		s.schedMu.Lock()
		s.exceptions = append(s.exceptions, removed)
		sortExceptions(s.exceptions)
		s.schedMu.Unlock()
		return err
	}
	return nil
}

func sortExceptions(excs []core.BusinessException) {
	sort.SliceStable(excs, func(i, j int) bool {
		return excs[i].Date.Before(excs[j].Date.Time)
	})
}

// Manager hands out one Store per owner, creating it on first use.
type Manager struct {
	remote gateway.Gateway

	mu      sync.Mutex
	byOwner map[string]*Store
}

func NewManager(remote gateway.Gateway) *Manager {
	return &Manager{remote: remote, byOwner: make(map[string]*Store)}
}

// ForOwner returns the owner's store, creating and loading it on first
// access. Later calls reuse the existing snapshots.
func (m *Manager) ForOwner(ctx context.Context, ownerID string) (*Store, error) {
	if ownerID == "" {
		return nil, core.ErrNoOwner
	}

	m.mu.Lock()
	st, ok := m.byOwner[ownerID]
	if !ok {
		st = New(ownerID, m.remote)
		m.byOwner[ownerID] = st
	}
	m.mu.Unlock()

	if !ok {
		if err := st.LoadAll(ctx); err != nil {
			m.mu.Lock()
			delete(m.byOwner, ownerID)
			m.mu.Unlock()
			return nil, err
		}
	}
	return st, nil
}
