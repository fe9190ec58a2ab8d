// Package google mirrors expenses to a Google Sheets spreadsheet.
package google

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	goption "google.golang.org/api/option"
	gsheet "google.golang.org/api/sheets/v4"

	"wealthpulse/internal/core"
	ports "wealthpulse/internal/export"
)

type Client struct {
	svc           *gsheet.Service
	spreadsheetID string
	sheetName     string
}

var _ ports.ExpenseWriter = (*Client)(nil)

// Config carries the spreadsheet target and credentials. Exactly one of
// CredentialsJSON or CredentialsFile must be set.
type Config struct {
	SpreadsheetID   string
	SheetName       string
	CredentialsJSON string
	CredentialsFile string
}

func NewClient(ctx context.Context, cfg Config) (*Client, error) {
	if strings.TrimSpace(cfg.SpreadsheetID) == "" {
		return nil, errors.New("missing spreadsheet ID")
	}
	sheetName := strings.TrimSpace(cfg.SheetName)
	if sheetName == "" {
		sheetName = "Expenses"
	}

	credentials, err := loadCredentials(cfg)
	if err != nil {
		return nil, err
	}

	slog.InfoContext(ctx, "Creating Google Sheets service",
		"spreadsheet_id", cfg.SpreadsheetID,
		"sheet_name", sheetName,
		"credentials_size", len(credentials))

	svc, err := gsheet.NewService(ctx,
		goption.WithCredentialsJSON(credentials),
		goption.WithScopes(gsheet.SpreadsheetsScope))
	if err != nil {
		return nil, fmt.Errorf("create sheets service: %w", err)
	}

	return &Client{
		svc:           svc,
		spreadsheetID: cfg.SpreadsheetID,
		sheetName:     sheetName,
	}, nil
}

func loadCredentials(cfg Config) ([]byte, error) {
	switch {
	case strings.TrimSpace(cfg.CredentialsJSON) != "":
		return []byte(cfg.CredentialsJSON), nil
	case strings.TrimSpace(cfg.CredentialsFile) != "":
		data, err := os.ReadFile(cfg.CredentialsFile)
		if err != nil {
			return nil, fmt.Errorf("read credentials file: %w", err)
		}
		return data, nil
	default:
		return nil, errors.New("missing Google credentials")
	}
}

// Append writes one expense as a row: date, title, amount, category,
// payment method. The row reference is the updated A1 range.
func (c *Client) Append(ctx context.Context, e core.Expense) (string, error) {
	if err := e.Validate(); err != nil {
		return "", fmt.Errorf("validation failed: %w", err)
	}
	if c.svc == nil {
		return "", errors.New("sheets service not initialized")
	}

	row := []any{
		e.Date.Format("2006-01-02"),
		e.Title,
		e.Amount.Units(),
		e.Category,
		e.PaymentMethod,
	}
	return c.appendRow(ctx, row)
}

// AppendDeletionMarker records an expense removal as its own row.
func (c *Client) AppendDeletionMarker(ctx context.Context, expenseID int64) (string, error) {
	if c.svc == nil {
		return "", errors.New("sheets service not initialized")
	}

	row := []any{
		time.Now().Format("2006-01-02"),
		fmt.Sprintf("Deleted expense #%d", expenseID),
		"", "", "",
	}
	return c.appendRow(ctx, row)
}

func (c *Client) appendRow(ctx context.Context, row []any) (string, error) {
	rng := fmt.Sprintf("%s!A:E", c.sheetName)
	vr := &gsheet.ValueRange{Values: [][]any{row}}

	resp, err := c.svc.Spreadsheets.Values.Append(c.spreadsheetID, rng, vr).
		ValueInputOption("USER_ENTERED").
		InsertDataOption("INSERT_ROWS").
		Context(ctx).Do()
	if err != nil {
		return "", fmt.Errorf("append row to sheet %s: %w", c.sheetName, err)
	}

	rowRef := ""
	if resp.Updates != nil {
		rowRef = resp.Updates.UpdatedRange
	}

	slog.InfoContext(ctx, "Row appended to Google Sheets",
		"sheet", c.sheetName,
		"sheets_ref", rowRef)
	return rowRef, nil
}
