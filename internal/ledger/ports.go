package ledger

import (
	"context"

	"github.com/shopspring/decimal"

	"finbot/internal/core"
)

// LastRow targets the most recently appended row in UpdateCategory.
const LastRow int64 = 0

// Ports for ledger backends.
type (
	Appender interface {
		// Append persists the spending and returns its 1-based data-row position.
		Append(ctx context.Context, s core.Spending) (row int64, err error)
	}

	Categorizer interface {
		// UpdateCategory overwrites the category field of the given row;
		// LastRow targets the most recent one. Returns core.ErrNotFound when
		// the ledger has no data rows.
		UpdateCategory(ctx context.Context, row int64, category string) error
	}

	LastDeleter interface {
		// DeleteLast removes the most recent row. Returns core.ErrNotFound
		// when the ledger has no data rows.
		DeleteLast(ctx context.Context) error
	}

	RowReader interface {
		// AllRows returns a snapshot of every data row in insertion order.
		AllRows(ctx context.Context) ([]core.Spending, error)
	}

	Totaler interface {
		// Total returns the running total of all recorded spendings.
		Total(ctx context.Context) (decimal.Decimal, error)
	}

	// Store is the full ledger contract the router depends on. Backends are
	// interchangeable behind it, whether rows live in memory, SQLite or a
	// remote spreadsheet.
	Store interface {
		Appender
		Categorizer
		LastDeleter
		RowReader
		Totaler
	}
)
