// Package export appends financial entries to a Google Sheets ledger.
// The spreadsheet is append-only; the database stays the source of truth.
package export

import (
	"context"
	"errors"
	"fmt"
	"os"

	"salone/internal/core"

	goption "google.golang.org/api/option"
	gsheet "google.golang.org/api/sheets/v4"
)

// Sink is the worker's outbound port. Implemented by the Sheets client
// and by in-memory fakes in tests.
type Sink interface {
	AppendFinancialEntry(ctx context.Context, e core.FinancialEntry) error
}

type SheetsClient struct {
	svc           *gsheet.Service
	spreadsheetID string
	sheetName     string
}

type SheetsConfig struct {
	SpreadsheetID   string
	SheetName       string
	CredentialsFile string
	CredentialsJSON string
}

func NewSheetsClient(ctx context.Context, cfg SheetsConfig) (*SheetsClient, error) {
	if cfg.SpreadsheetID == "" {
		return nil, errors.New("missing spreadsheet id")
	}
	if cfg.SheetName == "" {
		return nil, errors.New("missing sheet name")
	}

	var credentialsJSON []byte
	switch {
	case cfg.CredentialsJSON != "":
		credentialsJSON = []byte(cfg.CredentialsJSON)
	case cfg.CredentialsFile != "":
		data, err := os.ReadFile(cfg.CredentialsFile)
		if err != nil {
			return nil, fmt.Errorf("read credentials file: %w", err)
		}
		credentialsJSON = data
	default:
		return nil, errors.New("missing service account credentials")
	}

	svc, err := gsheet.NewService(ctx,
		goption.WithCredentialsJSON(credentialsJSON),
		goption.WithScopes(gsheet.SpreadsheetsScope))
	if err != nil {
		return nil, fmt.Errorf("create sheets service: %w", err)
	}

	return &SheetsClient{
		svc:           svc,
		spreadsheetID: cfg.SpreadsheetID,
		sheetName:     cfg.SheetName,
	}, nil
}

// AppendFinancialEntry appends one row: date, description, type,
// recurrence, amount. The amount is written as a decimal so the sheet
// can sum it; cents stay exact because the division is by a power of ten.
func (c *SheetsClient) AppendFinancialEntry(ctx context.Context, e core.FinancialEntry) error {
	if c.svc == nil {
		return errors.New("sheets service not initialized")
	}

	amount := float64(e.Amount.Cents) / 100.0
	if e.Type == core.Expense {
		amount = -amount
	}

	vr := &gsheet.ValueRange{Values: [][]any{{
		e.Date.Key(), e.Description, string(e.Type), string(e.Recurrence), amount,
	}}}

	rng := fmt.Sprintf("%s!A:E", c.sheetName)
	_, err := c.svc.Spreadsheets.Values.Append(c.spreadsheetID, rng, vr).
		ValueInputOption("USER_ENTERED").
		InsertDataOption("INSERT_ROWS").
		Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("append to sheet %s: %w", c.sheetName, err)
	}
	return nil
}
