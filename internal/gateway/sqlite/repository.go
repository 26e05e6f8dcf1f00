// Package sqlite is the SQLite-backed sync gateway adapter. Monetary
// columns are integers (cents), every table carries owner_id, and every
// statement filters on it.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"salone/internal/core"
	"salone/internal/gateway"

	_ "modernc.org/sqlite"
)

type Repository struct {
	db *sql.DB
}

func New(dbPath string) (*Repository, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if err := runMigrations(dbPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &Repository{db: db}, nil
}

func (r *Repository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

// remoteErr folds any transport/database failure into the single remote
// error kind the entry store expects.
func remoteErr(op string, err error) error {
	return fmt.Errorf("%w: %s: %v", core.ErrRemote, op, err)
}

func (r *Repository) Clients() gateway.Collection[core.Client]        { return clientCol{r.db} }
func (r *Repository) Products() gateway.Collection[core.Product]      { return productCol{r.db} }
func (r *Repository) Professionals() gateway.Collection[core.Professional] {
	return professionalCol{r.db}
}
func (r *Repository) Appointments() gateway.Collection[core.Appointment] {
	return appointmentCol{r.db}
}
func (r *Repository) FinancialEntries() gateway.Collection[core.FinancialEntry] {
	return financeCol{r.db}
}
func (r *Repository) Schedule() gateway.Schedule { return scheduleStore{r.db} }

type clientCol struct{ db *sql.DB }

func (c clientCol) List(ctx context.Context, ownerID string) ([]core.Client, error) {
	rows, err := c.db.QueryContext(ctx,
		`SELECT id, owner_id, name, phone, email, notes FROM clients WHERE owner_id = ?`, ownerID)
	if err != nil {
		return nil, remoteErr("list clients", err)
	}
	defer rows.Close()

	var out []core.Client
	for rows.Next() {
		var cl core.Client
		if err := rows.Scan(&cl.ID, &cl.OwnerID, &cl.Name, &cl.Phone, &cl.Email, &cl.Notes); err != nil {
			return nil, remoteErr("scan client", err)
		}
		out = append(out, cl)
	}
	if err := rows.Err(); err != nil {
		return nil, remoteErr("list clients", err)
	}
	return out, nil
}

func (c clientCol) Insert(ctx context.Context, record core.Client) (core.Client, error) {
	res, err := c.db.ExecContext(ctx,
		`INSERT INTO clients (owner_id, name, phone, email, notes) VALUES (?, ?, ?, ?, ?)`,
		record.OwnerID, record.Name, record.Phone, record.Email, record.Notes)
	if err != nil {
		return core.Client{}, remoteErr("insert client", err)
	}
	record.ID, err = res.LastInsertId()
	if err != nil {
		return core.Client{}, remoteErr("insert client", err)
	}
	return record, nil
}

func (c clientCol) Update(ctx context.Context, record core.Client) (core.Client, error) {
	res, err := c.db.ExecContext(ctx,
		`UPDATE clients SET name = ?, phone = ?, email = ?, notes = ? WHERE id = ? AND owner_id = ?`,
		record.Name, record.Phone, record.Email, record.Notes, record.ID, record.OwnerID)
	if err != nil {
		return core.Client{}, remoteErr("update client", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return core.Client{}, core.ErrNotFound
	}
	return record, nil
}

func (c clientCol) Delete(ctx context.Context, ownerID string, id int64) error {
	return deleteScoped(ctx, c.db, "clients", ownerID, id)
}

type productCol struct{ db *sql.DB }

func (c productCol) List(ctx context.Context, ownerID string) ([]core.Product, error) {
	rows, err := c.db.QueryContext(ctx,
		`SELECT id, owner_id, name, description, price_cents, quantity, image_url
		 FROM products WHERE owner_id = ?`, ownerID)
	if err != nil {
		return nil, remoteErr("list products", err)
	}
	defer rows.Close()

	var out []core.Product
	for rows.Next() {
		var p core.Product
		if err := rows.Scan(&p.ID, &p.OwnerID, &p.Name, &p.Description, &p.Price.Cents, &p.Quantity, &p.ImageURL); err != nil {
			return nil, remoteErr("scan product", err)
		}
		out = append(out, p)
	}
	if err := rows.Err(); err != nil {
		return nil, remoteErr("list products", err)
	}
	return out, nil
}

func (c productCol) Insert(ctx context.Context, record core.Product) (core.Product, error) {
	res, err := c.db.ExecContext(ctx,
		`INSERT INTO products (owner_id, name, description, price_cents, quantity, image_url)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		record.OwnerID, record.Name, record.Description, record.Price.Cents, record.Quantity, record.ImageURL)
	if err != nil {
		return core.Product{}, remoteErr("insert product", err)
	}
	record.ID, err = res.LastInsertId()
	if err != nil {
		return core.Product{}, remoteErr("insert product", err)
	}
	return record, nil
}

func (c productCol) Update(ctx context.Context, record core.Product) (core.Product, error) {
	res, err := c.db.ExecContext(ctx,
		`UPDATE products SET name = ?, description = ?, price_cents = ?, quantity = ?, image_url = ?
		 WHERE id = ? AND owner_id = ?`,
		record.Name, record.Description, record.Price.Cents, record.Quantity, record.ImageURL,
		record.ID, record.OwnerID)
	if err != nil {
		return core.Product{}, remoteErr("update product", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return core.Product{}, core.ErrNotFound
	}
	return record, nil
}

func (c productCol) Delete(ctx context.Context, ownerID string, id int64) error {
	return deleteScoped(ctx, c.db, "products", ownerID, id)
}

type professionalCol struct{ db *sql.DB }

func (c professionalCol) List(ctx context.Context, ownerID string) ([]core.Professional, error) {
	rows, err := c.db.QueryContext(ctx,
		`SELECT id, owner_id, name FROM professionals WHERE owner_id = ?`, ownerID)
	if err != nil {
		return nil, remoteErr("list professionals", err)
	}
	defer rows.Close()

	var out []core.Professional
	for rows.Next() {
		var p core.Professional
		if err := rows.Scan(&p.ID, &p.OwnerID, &p.Name); err != nil {
			return nil, remoteErr("scan professional", err)
		}
		out = append(out, p)
	}
	if err := rows.Err(); err != nil {
		return nil, remoteErr("list professionals", err)
	}
	return out, nil
}

func (c professionalCol) Insert(ctx context.Context, record core.Professional) (core.Professional, error) {
	res, err := c.db.ExecContext(ctx,
		`INSERT INTO professionals (owner_id, name) VALUES (?, ?)`, record.OwnerID, record.Name)
	if err != nil {
		return core.Professional{}, remoteErr("insert professional", err)
	}
	record.ID, err = res.LastInsertId()
	if err != nil {
		return core.Professional{}, remoteErr("insert professional", err)
	}
	return record, nil
}

func (c professionalCol) Update(ctx context.Context, record core.Professional) (core.Professional, error) {
	res, err := c.db.ExecContext(ctx,
		`UPDATE professionals SET name = ? WHERE id = ? AND owner_id = ?`,
		record.Name, record.ID, record.OwnerID)
	if err != nil {
		return core.Professional{}, remoteErr("update professional", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return core.Professional{}, core.ErrNotFound
	}
	return record, nil
}

func (c professionalCol) Delete(ctx context.Context, ownerID string, id int64) error {
	return deleteScoped(ctx, c.db, "professionals", ownerID, id)
}

type appointmentCol struct{ db *sql.DB }

func (c appointmentCol) List(ctx context.Context, ownerID string) ([]core.Appointment, error) {
	rows, err := c.db.QueryContext(ctx,
		`SELECT id, owner_id, client_id, professional_id, service, price_cents, starts_at, confirmed
		 FROM appointments WHERE owner_id = ?`, ownerID)
	if err != nil {
		return nil, remoteErr("list appointments", err)
	}
	defer rows.Close()

	var out []core.Appointment
	for rows.Next() {
		var a core.Appointment
		var startsAt string
		if err := rows.Scan(&a.ID, &a.OwnerID, &a.ClientID, &a.ProfessionalID, &a.Service,
			&a.Price.Cents, &startsAt, &a.Confirmed); err != nil {
			return nil, remoteErr("scan appointment", err)
		}
		a.StartsAt, err = time.Parse(time.RFC3339, startsAt)
		if err != nil {
			// A row this adapter cannot parse is a malformed remote
			// response, not a partial record to propagate.
			return nil, remoteErr("parse appointment time", err)
		}
		out = append(out, a)
	}
	if err := rows.Err(); err != nil {
		return nil, remoteErr("list appointments", err)
	}
	return out, nil
}

func (c appointmentCol) Insert(ctx context.Context, record core.Appointment) (core.Appointment, error) {
	res, err := c.db.ExecContext(ctx,
		`INSERT INTO appointments (owner_id, client_id, professional_id, service, price_cents, starts_at, confirmed)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		record.OwnerID, record.ClientID, record.ProfessionalID, record.Service,
		record.Price.Cents, record.StartsAt.UTC().Format(time.RFC3339), record.Confirmed)
	if err != nil {
		return core.Appointment{}, remoteErr("insert appointment", err)
	}
	record.ID, err = res.LastInsertId()
	if err != nil {
		return core.Appointment{}, remoteErr("insert appointment", err)
	}
	return record, nil
}

func (c appointmentCol) Update(ctx context.Context, record core.Appointment) (core.Appointment, error) {
	res, err := c.db.ExecContext(ctx,
		`UPDATE appointments SET client_id = ?, professional_id = ?, service = ?, price_cents = ?,
		 starts_at = ?, confirmed = ? WHERE id = ? AND owner_id = ?`,
		record.ClientID, record.ProfessionalID, record.Service, record.Price.Cents,
		record.StartsAt.UTC().Format(time.RFC3339), record.Confirmed, record.ID, record.OwnerID)
	if err != nil {
		return core.Appointment{}, remoteErr("update appointment", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return core.Appointment{}, core.ErrNotFound
	}
	return record, nil
}

func (c appointmentCol) Delete(ctx context.Context, ownerID string, id int64) error {
	return deleteScoped(ctx, c.db, "appointments", ownerID, id)
}

type financeCol struct{ db *sql.DB }

func (c financeCol) List(ctx context.Context, ownerID string) ([]core.FinancialEntry, error) {
	rows, err := c.db.QueryContext(ctx,
		`SELECT id, owner_id, description, amount_cents, entry_type, recurrence, entry_date
		 FROM financial_entries WHERE owner_id = ?`, ownerID)
	if err != nil {
		return nil, remoteErr("list financial entries", err)
	}
	defer rows.Close()

	var out []core.FinancialEntry
	for rows.Next() {
		e, err := scanFinancialEntry(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	if err := rows.Err(); err != nil {
		return nil, remoteErr("list financial entries", err)
	}
	return out, nil
}

func (c financeCol) Insert(ctx context.Context, record core.FinancialEntry) (core.FinancialEntry, error) {
	res, err := c.db.ExecContext(ctx,
		`INSERT INTO financial_entries (owner_id, description, amount_cents, entry_type, recurrence, entry_date)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		record.OwnerID, record.Description, record.Amount.Cents,
		string(record.Type), string(record.Recurrence), record.Date.Key())
	if err != nil {
		return core.FinancialEntry{}, remoteErr("insert financial entry", err)
	}
	record.ID, err = res.LastInsertId()
	if err != nil {
		return core.FinancialEntry{}, remoteErr("insert financial entry", err)
	}
	return record, nil
}

func (c financeCol) Update(ctx context.Context, record core.FinancialEntry) (core.FinancialEntry, error) {
	res, err := c.db.ExecContext(ctx,
		`UPDATE financial_entries SET description = ?, amount_cents = ?, entry_type = ?, recurrence = ?,
		 entry_date = ?, synced = 0, sync_error = 0 WHERE id = ? AND owner_id = ?`,
		record.Description, record.Amount.Cents, string(record.Type), string(record.Recurrence),
		record.Date.Key(), record.ID, record.OwnerID)
	if err != nil {
		return core.FinancialEntry{}, remoteErr("update financial entry", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return core.FinancialEntry{}, core.ErrNotFound
	}
	return record, nil
}

func (c financeCol) Delete(ctx context.Context, ownerID string, id int64) error {
	return deleteScoped(ctx, c.db, "financial_entries", ownerID, id)
}

type scheduleStore struct{ db *sql.DB }

func (s scheduleStore) WeekHours(ctx context.Context, ownerID string) ([]core.BusinessHours, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT owner_id, weekday, opens, closes FROM business_hours WHERE owner_id = ? ORDER BY weekday`,
		ownerID)
	if err != nil {
		return nil, remoteErr("list business hours", err)
	}
	defer rows.Close()

	var out []core.BusinessHours
	for rows.Next() {
		var h core.BusinessHours
		if err := rows.Scan(&h.OwnerID, &h.Weekday, &h.Opens, &h.Closes); err != nil {
			return nil, remoteErr("scan business hours", err)
		}
		out = append(out, h)
	}
	if err := rows.Err(); err != nil {
		return nil, remoteErr("list business hours", err)
	}
	return out, nil
}

func (s scheduleStore) PutHours(ctx context.Context, hours core.BusinessHours) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO business_hours (owner_id, weekday, opens, closes) VALUES (?, ?, ?, ?)
		 ON CONFLICT(owner_id, weekday) DO UPDATE SET opens = excluded.opens, closes = excluded.closes`,
		hours.OwnerID, hours.Weekday, hours.Opens, hours.Closes)
	if err != nil {
		return remoteErr("put business hours", err)
	}
	return nil
}

func (s scheduleStore) ListExceptions(ctx context.Context, ownerID string) ([]core.BusinessException, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, owner_id, exception_date, opens, closes, description
		 FROM business_exceptions WHERE owner_id = ? ORDER BY exception_date`, ownerID)
	if err != nil {
		return nil, remoteErr("list business exceptions", err)
	}
	defer rows.Close()

	var out []core.BusinessException
	for rows.Next() {
		var e core.BusinessException
		var date string
		if err := rows.Scan(&e.ID, &e.OwnerID, &date, &e.Opens, &e.Closes, &e.Description); err != nil {
			return nil, remoteErr("scan business exception", err)
		}
		e.Date, err = core.ParseDate(date)
		if err != nil {
			return nil, remoteErr("parse exception date", err)
		}
		out = append(out, e)
	}
	if err := rows.Err(); err != nil {
		return nil, remoteErr("list business exceptions", err)
	}
	return out, nil
}

func (s scheduleStore) InsertException(ctx context.Context, exc core.BusinessException) (core.BusinessException, error) {
	res, err := s.db.ExecContext(ctx,
		`INSERT INTO business_exceptions (owner_id, exception_date, opens, closes, description)
		 VALUES (?, ?, ?, ?, ?)`,
		exc.OwnerID, exc.Date.Key(), exc.Opens, exc.Closes, exc.Description)
	if err != nil {
		return core.BusinessException{}, remoteErr("insert business exception", err)
	}
	exc.ID, err = res.LastInsertId()
	if err != nil {
		return core.BusinessException{}, remoteErr("insert business exception", err)
	}
	return exc, nil
}

func (s scheduleStore) DeleteException(ctx context.Context, ownerID string, id int64) error {
	return deleteScoped(ctx, s.db, "business_exceptions", ownerID, id)
}

func deleteScoped(ctx context.Context, db *sql.DB, table, ownerID string, id int64) error {
	res, err := db.ExecContext(ctx,
		`DELETE FROM `+table+` WHERE id = ? AND owner_id = ?`, id, ownerID)
	if err != nil {
		return remoteErr("delete from "+table, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return core.ErrNotFound
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanFinancialEntry(row rowScanner) (core.FinancialEntry, error) {
	var e core.FinancialEntry
	var typ, rec, date string
	if err := row.Scan(&e.ID, &e.OwnerID, &e.Description, &e.Amount.Cents, &typ, &rec, &date); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return core.FinancialEntry{}, core.ErrNotFound
		}
		return core.FinancialEntry{}, remoteErr("scan financial entry", err)
	}
	e.Type = core.EntryType(typ)
	e.Recurrence = core.Recurrence(rec)
	var err error
	e.Date, err = core.ParseDate(date)
	if err != nil {
		return core.FinancialEntry{}, remoteErr("parse entry date", err)
	}
	return e, nil
}

// The methods below serve the export worker, which works across owners by
// row identifier and keeps sync bookkeeping out of the gateway ports.

// PendingEntry is the minimal row the export queue needs.
type PendingEntry struct {
	ID        int64
	CreatedAt time.Time
}

func (r *Repository) FinancialEntry(ctx context.Context, id int64) (core.FinancialEntry, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT id, owner_id, description, amount_cents, entry_type, recurrence, entry_date
		 FROM financial_entries WHERE id = ?`, id)
	return scanFinancialEntry(row)
}

func (r *Repository) PendingFinancialEntries(ctx context.Context, limit int) ([]PendingEntry, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, created_at FROM financial_entries
		 WHERE synced = 0 AND sync_error = 0 ORDER BY created_at LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("get pending entries: %w", err)
	}
	defer rows.Close()

	var out []PendingEntry
	for rows.Next() {
		var p PendingEntry
		if err := rows.Scan(&p.ID, &p.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan pending entry: %w", err)
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

func (r *Repository) MarkSynced(ctx context.Context, id int64) error {
	if _, err := r.db.ExecContext(ctx,
		`UPDATE financial_entries SET synced = 1, sync_error = 0 WHERE id = ?`, id); err != nil {
		return fmt.Errorf("mark entry synced: %w", err)
	}
	return nil
}

func (r *Repository) MarkSyncError(ctx context.Context, id int64) error {
	if _, err := r.db.ExecContext(ctx,
		`UPDATE financial_entries SET sync_error = 1 WHERE id = ?`, id); err != nil {
		return fmt.Errorf("mark entry sync error: %w", err)
	}
	return nil
}
