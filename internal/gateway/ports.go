// Package gateway defines the ports the entry store uses to reach the
// remote persistence service. Every request is owner-scoped; an adapter
// must never issue an unscoped query, and every transport failure must
// surface wrapped in core.ErrRemote.
package gateway

import (
	"context"

	"salone/internal/core"
)

// Collection is the uniform request/response contract for one entity
// collection. Insert returns the stored record with its generated
// identifier; Update returns the server's representation.
type Collection[T core.Entity] interface {
	List(ctx context.Context, ownerID string) ([]T, error)
	Insert(ctx context.Context, record T) (T, error)
	Update(ctx context.Context, record T) (T, error)
	Delete(ctx context.Context, ownerID string, id int64) error
}

// Schedule covers the business-hours configuration, keyed by weekday
// rather than by generated identifier, plus single-date exceptions.
type Schedule interface {
	WeekHours(ctx context.Context, ownerID string) ([]core.BusinessHours, error)
	PutHours(ctx context.Context, hours core.BusinessHours) error
	ListExceptions(ctx context.Context, ownerID string) ([]core.BusinessException, error)
	InsertException(ctx context.Context, exc core.BusinessException) (core.BusinessException, error)
	DeleteException(ctx context.Context, ownerID string, id int64) error
}

// Gateway bundles the per-collection ports of one backing store.
type Gateway interface {
	Clients() Collection[core.Client]
	Products() Collection[core.Product]
	Professionals() Collection[core.Professional]
	Appointments() Collection[core.Appointment]
	FinancialEntries() Collection[core.FinancialEntry]
	Schedule() Schedule
}
