// Package storage implements the data-layer ports on SQLite.
package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"wealthpulse/internal/core"
	"wealthpulse/internal/store"

	_ "modernc.org/sqlite"
)

const dateLayout = "2006-01-02"

type SQLiteRepository struct {
	db *sql.DB
}

var (
	_ store.Store         = (*SQLiteRepository)(nil)
	_ store.ExportJournal = (*SQLiteRepository)(nil)
)

func NewSQLiteRepository(dbPath string) (*SQLiteRepository, error) {
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

	if err := RunMigrations(dbPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &SQLiteRepository{db: db}, nil
}

func (r *SQLiteRepository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

// EnsureUser creates the user if no row with that username exists yet and
// returns the user's ID either way. Mains call this at startup so the chat
// endpoints always have an account to resolve.
func (r *SQLiteRepository) EnsureUser(ctx context.Context, u core.User) (int64, error) {
	var id int64
	err := r.db.QueryRowContext(ctx,
		`SELECT id FROM users WHERE username = ?`, u.Username).Scan(&id)
	if err == nil {
		return id, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return 0, fmt.Errorf("lookup user %q: %w", u.Username, err)
	}

	res, err := r.db.ExecContext(ctx,
		`INSERT INTO users (username, currency, monthly_budget_cents) VALUES (?, ?, ?)`,
		u.Username, u.Currency, u.MonthlyBudget.Cents)
	if err != nil {
		return 0, fmt.Errorf("create user %q: %w", u.Username, err)
	}
	id, err = res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("user insert id: %w", err)
	}

	slog.InfoContext(ctx, "User created",
		"id", id,
		"username", u.Username,
		"currency", u.Currency)
	return id, nil
}

func (r *SQLiteRepository) GetUser(ctx context.Context, id int64) (core.User, error) {
	var u core.User
	err := r.db.QueryRowContext(ctx,
		`SELECT id, username, currency, monthly_budget_cents FROM users WHERE id = ?`, id).
		Scan(&u.ID, &u.Username, &u.Currency, &u.MonthlyBudget.Cents)
	if errors.Is(err, sql.ErrNoRows) {
		return core.User{}, fmt.Errorf("user %d: %w", id, core.ErrNotFound)
	}
	if err != nil {
		return core.User{}, fmt.Errorf("get user %d: %w", id, err)
	}
	return u, nil
}

func (r *SQLiteRepository) AddExpense(ctx context.Context, e core.Expense) (int64, error) {
	if err := e.Validate(); err != nil {
		return 0, err
	}

	res, err := r.db.ExecContext(ctx,
		`INSERT INTO expenses (user_id, title, description, amount_cents, spent_on, category, payment_method)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		e.UserID, e.Title, e.Description, e.Amount.Cents,
		e.Date.Format(dateLayout), e.Category, e.PaymentMethod)
	if err != nil {
		return 0, fmt.Errorf("create expense: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("expense insert id: %w", err)
	}

	slog.InfoContext(ctx, "Expense saved to SQLite",
		"id", id,
		"user_id", e.UserID,
		"title", e.Title,
		"amount_cents", e.Amount.Cents,
		"spent_on", e.Date.Format(dateLayout))
	return id, nil
}

func (r *SQLiteRepository) GetExpense(ctx context.Context, id int64) (core.Expense, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT id, user_id, title, description, amount_cents, spent_on, category, payment_method
		 FROM expenses WHERE id = ?`, id)
	e, err := scanExpense(row)
	if errors.Is(err, sql.ErrNoRows) {
		return core.Expense{}, fmt.Errorf("expense %d: %w", id, core.ErrNotFound)
	}
	if err != nil {
		return core.Expense{}, fmt.Errorf("get expense %d: %w", id, err)
	}
	return e, nil
}

func (r *SQLiteRepository) DeleteExpense(ctx context.Context, userID, id int64) error {
	res, err := r.db.ExecContext(ctx,
		`DELETE FROM expenses WHERE id = ? AND user_id = ?`, id, userID)
	if err != nil {
		return fmt.Errorf("delete expense %d: %w", id, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete expense %d: %w", id, err)
	}
	if n == 0 {
		return fmt.Errorf("expense %d: %w", id, core.ErrNotFound)
	}
	return nil
}

func (r *SQLiteRepository) ListExpenses(ctx context.Context, userID int64, f store.ExpenseFilter) ([]core.Expense, error) {
	query := `SELECT id, user_id, title, description, amount_cents, spent_on, category, payment_method
		 FROM expenses WHERE user_id = ?`
	args := []any{userID}

	if f.Start != nil {
		query += ` AND spent_on >= ?`
		args = append(args, f.Start.Format(dateLayout))
	}
	if f.End != nil {
		query += ` AND spent_on <= ?`
		args = append(args, f.End.Format(dateLayout))
	}
	if f.Category != "" {
		query += ` AND category = ?`
		args = append(args, f.Category)
	}
	query += ` ORDER BY spent_on DESC, id DESC`
	if f.Limit > 0 {
		query += ` LIMIT ?`
		args = append(args, f.Limit)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list expenses: %w", err)
	}
	defer rows.Close()

	var out []core.Expense
	for rows.Next() {
		e, err := scanExpense(rows)
		if err != nil {
			return nil, fmt.Errorf("scan expense: %w", err)
		}
		out = append(out, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list expenses: %w", err)
	}
	return out, nil
}

// ListUnexported returns the oldest expenses not yet mirrored to the
// export ledger, up to limit.
func (r *SQLiteRepository) ListUnexported(ctx context.Context, limit int) ([]core.Expense, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, user_id, title, description, amount_cents, spent_on, category, payment_method
		 FROM expenses WHERE exported_at IS NULL ORDER BY id ASC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("list unexported expenses: %w", err)
	}
	defer rows.Close()

	var out []core.Expense
	for rows.Next() {
		e, err := scanExpense(rows)
		if err != nil {
			return nil, fmt.Errorf("scan expense: %w", err)
		}
		out = append(out, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list unexported expenses: %w", err)
	}
	return out, nil
}

func (r *SQLiteRepository) MarkExported(ctx context.Context, id int64) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE expenses SET exported_at = ? WHERE id = ?`,
		time.Now().UTC().Format(time.RFC3339), id)
	if err != nil {
		return fmt.Errorf("mark expense %d exported: %w", id, err)
	}
	return nil
}

func (r *SQLiteRepository) AddCategory(ctx context.Context, c core.Category) (int64, error) {
	if err := c.Validate(); err != nil {
		return 0, err
	}

	res, err := r.db.ExecContext(ctx,
		`INSERT INTO categories (user_id, name, description) VALUES (?, ?, ?)`,
		c.UserID, c.Name, c.Description)
	if err != nil {
		if isUniqueViolation(err) {
			return 0, fmt.Errorf("category %q: %w", c.Name, core.ErrDuplicateEntry)
		}
		return 0, fmt.Errorf("create category: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("category insert id: %w", err)
	}
	return id, nil
}

func (r *SQLiteRepository) ListCategories(ctx context.Context, userID int64) ([]core.Category, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, user_id, name, description FROM categories WHERE user_id = ? ORDER BY name`, userID)
	if err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	defer rows.Close()

	var out []core.Category
	for rows.Next() {
		var c core.Category
		if err := rows.Scan(&c.ID, &c.UserID, &c.Name, &c.Description); err != nil {
			return nil, fmt.Errorf("scan category: %w", err)
		}
		out = append(out, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	return out, nil
}

func (r *SQLiteRepository) AddInvestment(ctx context.Context, inv core.Investment) (int64, error) {
	if err := inv.Validate(); err != nil {
		return 0, err
	}

	res, err := r.db.ExecContext(ctx,
		`INSERT INTO investments (user_id, name, type, amount_cents, current_value_cents)
		 VALUES (?, ?, ?, ?, ?)`,
		inv.UserID, inv.Name, inv.Type, inv.Amount.Cents, inv.CurrentValue.Cents)
	if err != nil {
		return 0, fmt.Errorf("create investment: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("investment insert id: %w", err)
	}
	return id, nil
}

func (r *SQLiteRepository) ListInvestments(ctx context.Context, userID int64) ([]core.Investment, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, user_id, name, type, amount_cents, current_value_cents, created_at
		 FROM investments WHERE user_id = ? ORDER BY created_at DESC, id DESC`, userID)
	if err != nil {
		return nil, fmt.Errorf("list investments: %w", err)
	}
	defer rows.Close()

	var out []core.Investment
	for rows.Next() {
		var inv core.Investment
		var created string
		if err := rows.Scan(&inv.ID, &inv.UserID, &inv.Name, &inv.Type,
			&inv.Amount.Cents, &inv.CurrentValue.Cents, &created); err != nil {
			return nil, fmt.Errorf("scan investment: %w", err)
		}
		inv.CreatedAt = parseTimestamp(created)
		out = append(out, inv)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list investments: %w", err)
	}
	return out, nil
}

func (r *SQLiteRepository) AppendChatMessage(ctx context.Context, m core.ChatMessage) (int64, error) {
	res, err := r.db.ExecContext(ctx,
		`INSERT INTO chat_messages (user_id, message, response, image_png, created_at)
		 VALUES (?, ?, ?, ?, ?)`,
		m.UserID, m.Message, m.Response, m.ImagePNG,
		m.CreatedAt.UTC().Format(time.RFC3339))
	if err != nil {
		return 0, fmt.Errorf("append chat message: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("chat message insert id: %w", err)
	}
	return id, nil
}

// ListChatMessages returns the user's most recent limit messages in
// chronological order.
func (r *SQLiteRepository) ListChatMessages(ctx context.Context, userID int64, limit int) ([]core.ChatMessage, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, user_id, message, response, image_png, created_at FROM (
			SELECT id, user_id, message, response, image_png, created_at
			FROM chat_messages WHERE user_id = ? ORDER BY id DESC LIMIT ?
		 ) ORDER BY id ASC`, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("list chat messages: %w", err)
	}
	defer rows.Close()

	var out []core.ChatMessage
	for rows.Next() {
		var m core.ChatMessage
		var created string
		if err := rows.Scan(&m.ID, &m.UserID, &m.Message, &m.Response, &m.ImagePNG, &created); err != nil {
			return nil, fmt.Errorf("scan chat message: %w", err)
		}
		m.CreatedAt = parseTimestamp(created)
		out = append(out, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list chat messages: %w", err)
	}
	return out, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanExpense(row rowScanner) (core.Expense, error) {
	var e core.Expense
	var spentOn string
	if err := row.Scan(&e.ID, &e.UserID, &e.Title, &e.Description,
		&e.Amount.Cents, &spentOn, &e.Category, &e.PaymentMethod); err != nil {
		return core.Expense{}, err
	}
	t, err := time.Parse(dateLayout, spentOn)
	if err != nil {
		return core.Expense{}, fmt.Errorf("parse spent_on %q: %w", spentOn, err)
	}
	e.Date = core.DateOf(t)
	return e, nil
}

// parseTimestamp tolerates both SQLite's CURRENT_TIMESTAMP format and
// RFC3339 strings written by the application.
func parseTimestamp(s string) time.Time {
	for _, layout := range []string{time.RFC3339, "2006-01-02 15:04:05"} {
		if t, err := time.Parse(layout, s); err == nil {
			return t
		}
	}
	return time.Time{}
}

func isUniqueViolation(err error) bool {
	return err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed")
}
