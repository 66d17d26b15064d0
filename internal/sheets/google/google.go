package google

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"sync"

	goption "google.golang.org/api/option"
	gsheet "google.golang.org/api/sheets/v4"

	"softy/internal/core"
	ports "softy/internal/sheets"
)

// Options configures the spreadsheet mirror.
type Options struct {
	SpreadsheetID string
	// SheetName is the base tab name; each entry goes to "<year> <SheetName>".
	SheetName          string
	ServiceAccountJSON string
	ServiceAccountFile string
}

// Mirror keeps one spreadsheet row per entry date.
type Mirror struct {
	svc           *gsheet.Service
	spreadsheetID string
	sheetBase     string

	// Serializes find-then-write so two upserts of the same date cannot
	// both append.
	mu sync.Mutex
}

var _ ports.EntryMirror = (*Mirror)(nil)

// New creates a mirror authenticated with a service account.
func New(ctx context.Context, opts Options) (*Mirror, error) {
	if strings.TrimSpace(opts.SpreadsheetID) == "" {
		return nil, errors.New("missing GOOGLE_SPREADSHEET_ID")
	}
	svc, err := newSheetsService(ctx, opts)
	if err != nil {
		return nil, fmt.Errorf("sheets service: %w", err)
	}
	return NewWithService(svc, opts.SpreadsheetID, opts.SheetName), nil
}

// NewWithService wraps an existing Sheets service.
func NewWithService(svc *gsheet.Service, spreadsheetID, sheetBase string) *Mirror {
	if strings.TrimSpace(sheetBase) == "" {
		sheetBase = "Entries"
	}
	return &Mirror{
		svc:           svc,
		spreadsheetID: strings.TrimSpace(spreadsheetID),
		sheetBase:     strings.TrimSpace(sheetBase),
	}
}

// newSheetsService initializes a Sheets service from service account
// credentials, inline JSON first, then a file, then
// GOOGLE_APPLICATION_CREDENTIALS.
func newSheetsService(ctx context.Context, opts Options) (*gsheet.Service, error) {
	serviceAccountJSON := strings.TrimSpace(opts.ServiceAccountJSON)
	serviceAccountFile := strings.TrimSpace(opts.ServiceAccountFile)
	if serviceAccountJSON == "" && serviceAccountFile == "" {
		serviceAccountFile = strings.TrimSpace(os.Getenv("GOOGLE_APPLICATION_CREDENTIALS"))
	}

	var credentialsJSON []byte
	switch {
	case serviceAccountJSON != "":
		slog.InfoContext(ctx, "Using inline service account credentials")
		credentialsJSON = []byte(serviceAccountJSON)
	case serviceAccountFile != "":
		slog.InfoContext(ctx, "Reading service account credentials", "path", serviceAccountFile)
		var err error
		credentialsJSON, err = os.ReadFile(serviceAccountFile)
		if err != nil {
			return nil, fmt.Errorf("read service account file: %w", err)
		}
	default:
		return nil, errors.New("missing service account credentials (set GOOGLE_SERVICE_ACCOUNT_JSON, GOOGLE_SERVICE_ACCOUNT_FILE, or GOOGLE_APPLICATION_CREDENTIALS)")
	}

	service, err := gsheet.NewService(ctx,
		goption.WithCredentialsJSON(credentialsJSON),
		goption.WithScopes(gsheet.SpreadsheetsScope))
	if err != nil {
		return nil, fmt.Errorf("create sheets service: %w", err)
	}
	return service, nil
}

// SheetName returns the tab that holds entries of year.
func (m *Mirror) SheetName(year int) string {
	return yearPrefixedName(m.sheetBase, year)
}

// UpsertEntry writes e over the row holding its date, or appends a new row.
// It returns the A1 range written.
func (m *Mirror) UpsertEntry(ctx context.Context, e core.DailyEntry) (string, error) {
	if err := e.Validate(); err != nil {
		return "", fmt.Errorf("validation failed: %w", err)
	}
	if m.svc == nil {
		return "", errors.New("sheets service not initialized")
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	sheet := m.SheetName(e.EntryDate.Year())
	dates, err := m.readDates(ctx, sheet)
	if err != nil {
		return "", err
	}

	if len(dates) == 0 {
		if err := m.writeRow(ctx, sheet, 1, headerRow()); err != nil {
			return "", fmt.Errorf("write header: %w", err)
		}
		dates = []string{columnHeaders[0]}
	}

	row := findDateRow(dates, e.EntryDate)
	if row == 0 {
		row = len(dates) + 1
	}
	if err := m.writeRow(ctx, sheet, row, entryRow(e)); err != nil {
		return "", err
	}
	return rowRange(sheet, row), nil
}

// RemoveEntry clears the row holding date. A date with no row is a no-op.
func (m *Mirror) RemoveEntry(ctx context.Context, date core.Date) error {
	if m.svc == nil {
		return errors.New("sheets service not initialized")
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	sheet := m.SheetName(date.Year())
	dates, err := m.readDates(ctx, sheet)
	if err != nil {
		return err
	}
	row := findDateRow(dates, date)
	if row == 0 {
		slog.InfoContext(ctx, "No mirror row for entry date", "sheet", sheet, "entry_date", date.String())
		return nil
	}

	rng := rowRange(sheet, row)
	_, err = m.svc.Spreadsheets.Values.Clear(m.spreadsheetID, rng, &gsheet.ClearValuesRequest{}).
		Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("clear %s: %w", rng, err)
	}
	return nil
}

// readDates returns column A of sheet, one string per row.
func (m *Mirror) readDates(ctx context.Context, sheet string) ([]string, error) {
	rng := fmt.Sprintf("%s!A:A", sheet)
	resp, err := m.svc.Spreadsheets.Values.Get(m.spreadsheetID, rng).Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", rng, err)
	}
	out := make([]string, len(resp.Values))
	for i, row := range resp.Values {
		if len(row) > 0 {
			out[i] = strings.TrimSpace(fmt.Sprint(row[0]))
		}
	}
	return out, nil
}

func (m *Mirror) writeRow(ctx context.Context, sheet string, row int, values []any) error {
	rng := rowRange(sheet, row)
	vr := &gsheet.ValueRange{Values: [][]any{values}}
	// RAW keeps the date cell a plain YYYY-MM-DD string so lookups match.
	_, err := m.svc.Spreadsheets.Values.Update(m.spreadsheetID, rng, vr).
		ValueInputOption("RAW").Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("update %s: %w", rng, err)
	}
	return nil
}

func rowRange(sheet string, row int) string {
	return fmt.Sprintf("%s!A%d:%s%d", sheet, row, lastColumn, row)
}

// yearPrefixedName returns "<year> <base>" unless base already starts with a 4-digit year.
func yearPrefixedName(base string, year int) string {
	base = strings.TrimSpace(base)
	if base == "" {
		return base
	}
	if len(base) >= 5 {
		if y, err := strconv.Atoi(base[0:4]); err == nil && base[4] == ' ' && y > 1900 && y < 3000 {
			return base
		}
	}
	return fmt.Sprintf("%d %s", year, base)
}
