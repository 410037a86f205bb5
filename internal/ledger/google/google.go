// Package google implements the ledger store on top of a Google Sheets
// spreadsheet. The sheet holds a header row followed by data rows with the
// columns [year, month, date, sum, comment, category]; a separate pivot cell
// supplies the precomputed running total.
package google

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/shopspring/decimal"
	goption "google.golang.org/api/option"
	gsheet "google.golang.org/api/sheets/v4"

	"finbot/internal/core"
	"finbot/internal/ledger"
)

// Config carries everything needed to reach the spreadsheet.
type Config struct {
	SpreadsheetID string
	SheetName     string // data sheet, row 1 is the header
	TotalCell     string // e.g. "Total!A1"

	// Service account credentials, inline JSON or a file path. When both are
	// empty GOOGLE_APPLICATION_CREDENTIALS is used.
	CredentialsJSON string
	CredentialsFile string
}

type Client struct {
	svc           *gsheet.Service
	spreadsheetID string
	sheetName     string
	totalCell     string
}

var _ ledger.Store = (*Client)(nil)

func New(ctx context.Context, cfg Config) (*Client, error) {
	if strings.TrimSpace(cfg.SpreadsheetID) == "" {
		return nil, errors.New("missing spreadsheet id")
	}
	sheetName := strings.TrimSpace(cfg.SheetName)
	if sheetName == "" {
		sheetName = "Spendings"
	}
	totalCell := strings.TrimSpace(cfg.TotalCell)
	if totalCell == "" {
		totalCell = "Total!A1"
	}

	svc, err := newSheetsService(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("sheets service: %w", err)
	}

	return &Client{
		svc:           svc,
		spreadsheetID: cfg.SpreadsheetID,
		sheetName:     sheetName,
		totalCell:     totalCell,
	}, nil
}

// newSheetsService initializes a Sheets Service using service account
// credentials from the config or GOOGLE_APPLICATION_CREDENTIALS.
func newSheetsService(ctx context.Context, cfg Config) (*gsheet.Service, error) {
	credentialsFile := strings.TrimSpace(cfg.CredentialsFile)
	if cfg.CredentialsJSON == "" && credentialsFile == "" {
		credentialsFile = strings.TrimSpace(os.Getenv("GOOGLE_APPLICATION_CREDENTIALS"))
	}

	var credentialsJSON []byte
	switch {
	case strings.TrimSpace(cfg.CredentialsJSON) != "":
		credentialsJSON = []byte(cfg.CredentialsJSON)
	case credentialsFile != "":
		b, err := os.ReadFile(credentialsFile)
		if err != nil {
			return nil, fmt.Errorf("read service account file: %w", err)
		}
		credentialsJSON = b
	default:
		return nil, errors.New("missing service account credentials")
	}

	service, err := gsheet.NewService(ctx,
		goption.WithCredentialsJSON(credentialsJSON),
		goption.WithScopes(gsheet.SpreadsheetsScope))
	if err != nil {
		return nil, fmt.Errorf("create sheets service: %w", err)
	}
	return service, nil
}

// rowCount returns the number of occupied rows, header included.
func (c *Client) rowCount(ctx context.Context) (int, error) {
	rng := fmt.Sprintf("%s!A:A", c.sheetName)
	resp, err := c.svc.Spreadsheets.Values.Get(c.spreadsheetID, rng).Context(ctx).Do()
	if err != nil {
		return 0, fmt.Errorf("read %s: %w", rng, err)
	}
	return len(resp.Values), nil
}

func (c *Client) Append(ctx context.Context, sp core.Spending) (int64, error) {
	if err := sp.Validate(); err != nil {
		return 0, err
	}
	count, err := c.rowCount(ctx)
	if err != nil {
		return 0, err
	}
	if count == 0 {
		// Fresh sheet: write the header first so row math stays stable.
		header := &gsheet.ValueRange{Values: [][]any{{"year", "month", "date", "sum", "comment", "category"}}}
		rng := fmt.Sprintf("%s!A1:F1", c.sheetName)
		if _, err := c.svc.Spreadsheets.Values.Update(c.spreadsheetID, rng, header).
			ValueInputOption("USER_ENTERED").Context(ctx).Do(); err != nil {
			return 0, fmt.Errorf("write header: %w", err)
		}
		count = 1
	}

	sheetRow := count + 1
	rng := fmt.Sprintf("%s!A%d:F%d", c.sheetName, sheetRow, sheetRow)
	vr := &gsheet.ValueRange{Values: [][]any{{
		sp.Year,
		sp.Month,
		sp.Date.Format(dateLayout),
		sp.Amount.String(),
		sp.Comment,
		sp.Category,
	}}}
	if _, err := c.svc.Spreadsheets.Values.Update(c.spreadsheetID, rng, vr).
		ValueInputOption("USER_ENTERED").Context(ctx).Do(); err != nil {
		return 0, fmt.Errorf("append row to %s: %w", c.sheetName, err)
	}

	row := int64(sheetRow - 1)
	slog.InfoContext(ctx, "Spending appended to sheet",
		"row", row, "comment", sp.Comment, "amount_cents", sp.Amount.Cents)
	return row, nil
}

func (c *Client) UpdateCategory(ctx context.Context, row int64, category string) error {
	count, err := c.rowCount(ctx)
	if err != nil {
		return err
	}
	if count <= 1 {
		return core.ErrNotFound
	}
	if row == ledger.LastRow {
		row = int64(count - 1)
	}
	if row < 1 || row > int64(count-1) {
		return core.ErrNotFound
	}
	sheetRow := row + 1 // skip header
	rng := fmt.Sprintf("%s!F%d", c.sheetName, sheetRow)
	vr := &gsheet.ValueRange{Values: [][]any{{category}}}
	if _, err := c.svc.Spreadsheets.Values.Update(c.spreadsheetID, rng, vr).
		ValueInputOption("USER_ENTERED").Context(ctx).Do(); err != nil {
		return fmt.Errorf("update category cell %s: %w", rng, err)
	}
	return nil
}

func (c *Client) DeleteLast(ctx context.Context) error {
	count, err := c.rowCount(ctx)
	if err != nil {
		return err
	}
	if count <= 1 {
		return core.ErrNotFound
	}
	rng := fmt.Sprintf("%s!A%d:F%d", c.sheetName, count, count)
	if _, err := c.svc.Spreadsheets.Values.Clear(c.spreadsheetID, rng, &gsheet.ClearValuesRequest{}).
		Context(ctx).Do(); err != nil {
		return fmt.Errorf("clear row %s: %w", rng, err)
	}
	slog.InfoContext(ctx, "Last spending row cleared", "sheet_row", count)
	return nil
}

func (c *Client) AllRows(ctx context.Context) ([]core.Spending, error) {
	rng := fmt.Sprintf("%s!A2:F", c.sheetName)
	resp, err := c.svc.Spreadsheets.Values.Get(c.spreadsheetID, rng).Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", rng, err)
	}
	var out []core.Spending
	for _, row := range resp.Values {
		sp, ok := parseRow(row)
		if !ok {
			// Cleared rows and stray edits are skipped, the list is best-effort.
			continue
		}
		out = append(out, sp)
	}
	return out, nil
}

// Total reads the precomputed running total from the configured pivot cell.
func (c *Client) Total(ctx context.Context) (decimal.Decimal, error) {
	resp, err := c.svc.Spreadsheets.Values.Get(c.spreadsheetID, c.totalCell).Context(ctx).Do()
	if err != nil {
		return decimal.Zero, fmt.Errorf("read %s: %w", c.totalCell, err)
	}
	if len(resp.Values) == 0 || len(resp.Values[0]) == 0 {
		return decimal.Zero, nil
	}
	raw := strings.TrimSpace(fmt.Sprint(resp.Values[0][0]))
	total, err := parseDecimalCell(raw)
	if err != nil {
		return decimal.Zero, fmt.Errorf("parse total cell %q: %w", raw, err)
	}
	return total, nil
}
