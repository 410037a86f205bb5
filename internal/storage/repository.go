package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/shopspring/decimal"
	_ "modernc.org/sqlite"

	"finbot/internal/core"
	"finbot/internal/ledger"
)

// timeLayout is how the date column is stored.
const timeLayout = "2006-01-02 15:04:05"

// SQLiteRepository is the local-file ledger backend. Row identifiers are
// 1-based positions in id order, matching the spreadsheet backend's row math.
type SQLiteRepository struct {
	db *sql.DB
}

var _ ledger.Store = (*SQLiteRepository)(nil)

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

func (r *SQLiteRepository) Append(ctx context.Context, sp core.Spending) (int64, error) {
	if err := sp.Validate(); err != nil {
		return 0, err
	}
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO spendings (year, month, date, amount_cents, comment, category)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		sp.Year, sp.Month, sp.Date.Format(timeLayout), sp.Amount.Cents, sp.Comment, sp.Category)
	if err != nil {
		return 0, fmt.Errorf("insert spending: %w", err)
	}

	var row int64
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM spendings`).Scan(&row); err != nil {
		return 0, fmt.Errorf("count rows: %w", err)
	}

	slog.InfoContext(ctx, "Spending saved to SQLite",
		"row", row, "comment", sp.Comment, "amount_cents", sp.Amount.Cents)
	return row, nil
}

// idAt resolves a 1-based position to the row's database id.
func (r *SQLiteRepository) idAt(ctx context.Context, row int64) (int64, error) {
	var id int64
	err := r.db.QueryRowContext(ctx,
		`SELECT id FROM spendings ORDER BY id LIMIT 1 OFFSET ?`, row-1).Scan(&id)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, core.ErrNotFound
	}
	if err != nil {
		return 0, fmt.Errorf("resolve row %d: %w", row, err)
	}
	return id, nil
}

func (r *SQLiteRepository) UpdateCategory(ctx context.Context, row int64, category string) error {
	var id int64
	var err error
	if row == ledger.LastRow {
		err = r.db.QueryRowContext(ctx, `SELECT MAX(id) FROM spendings`).Scan(&id)
		if err != nil || id == 0 {
			return core.ErrNotFound
		}
	} else {
		if row < 1 {
			return core.ErrNotFound
		}
		id, err = r.idAt(ctx, row)
		if err != nil {
			return err
		}
	}

	res, err := r.db.ExecContext(ctx, `UPDATE spendings SET category = ? WHERE id = ?`, category, id)
	if err != nil {
		return fmt.Errorf("update category: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return core.ErrNotFound
	}
	return nil
}

func (r *SQLiteRepository) DeleteLast(ctx context.Context) error {
	res, err := r.db.ExecContext(ctx,
		`DELETE FROM spendings WHERE id = (SELECT MAX(id) FROM spendings)`)
	if err != nil {
		return fmt.Errorf("delete last spending: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return core.ErrNotFound
	}
	return nil
}

func (r *SQLiteRepository) AllRows(ctx context.Context) ([]core.Spending, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT year, month, date, amount_cents, comment, category FROM spendings ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("select spendings: %w", err)
	}
	defer rows.Close()

	var out []core.Spending
	for rows.Next() {
		var sp core.Spending
		var date string
		if err := rows.Scan(&sp.Year, &sp.Month, &date, &sp.Amount.Cents, &sp.Comment, &sp.Category); err != nil {
			return nil, fmt.Errorf("scan spending: %w", err)
		}
		t, err := time.Parse(timeLayout, date)
		if err != nil {
			return nil, fmt.Errorf("parse date %q: %w", date, err)
		}
		sp.Date = t
		out = append(out, sp)
	}
	return out, rows.Err()
}

func (r *SQLiteRepository) Total(ctx context.Context) (decimal.Decimal, error) {
	var cents int64
	err := r.db.QueryRowContext(ctx,
		`SELECT COALESCE(SUM(amount_cents), 0) FROM spendings`).Scan(&cents)
	if err != nil {
		return decimal.Zero, fmt.Errorf("sum spendings: %w", err)
	}
	return decimal.New(cents, -2), nil
}

// Row fetches a single spending by its 1-based position. Used by the sync
// worker to mirror individual rows into the spreadsheet.
func (r *SQLiteRepository) Row(ctx context.Context, row int64) (core.Spending, error) {
	if row < 1 {
		return core.Spending{}, core.ErrNotFound
	}
	var sp core.Spending
	var date string
	err := r.db.QueryRowContext(ctx,
		`SELECT year, month, date, amount_cents, comment, category
		 FROM spendings ORDER BY id LIMIT 1 OFFSET ?`, row-1).
		Scan(&sp.Year, &sp.Month, &date, &sp.Amount.Cents, &sp.Comment, &sp.Category)
	if errors.Is(err, sql.ErrNoRows) {
		return core.Spending{}, core.ErrNotFound
	}
	if err != nil {
		return core.Spending{}, fmt.Errorf("select row %d: %w", row, err)
	}
	t, err := time.Parse(timeLayout, date)
	if err != nil {
		return core.Spending{}, fmt.Errorf("parse date %q: %w", date, err)
	}
	sp.Date = t
	return sp, nil
}
