/*
Package sqlite provides the SQLite-backed persistence for the tax engine's
surrounding dashboard: finalized sales and the persisted tax settings.

PURPOSE:
  The engine itself is pure computation and never touches storage. This
  package is the order-persistence collaborator: once a sale is finalized
  its computed tax fields are stored verbatim (as decimal strings, never
  binary floats), and the settings screen's tax configuration survives
  restarts here.

KEY TABLES:
  sales:        One row per finalized sale with the full tax breakdown
  sale_items:   The cart lines behind each sale
  tax_settings: Single-row persisted default configuration

DECIMAL STORAGE:
  Monetary values are stored as TEXT in their decimal string form and
  parsed back with shopspring/decimal. SQLite REAL columns would reintroduce
  exactly the binary-float drift the engine exists to avoid.

WAL MODE:
  Opened with WAL (Write-Ahead Logging): multiple readers don't block,
  single writer at a time, better crash recovery.

USAGE:
  store, err := sqlite.New("./data/gastroboard.db")
  if err != nil {
      log.Fatal(err)
  }
  defer store.Close()

MIGRATION:
  Schema is auto-migrated on New(). For production, use a proper
  migration tool (golang-migrate, goose) with versioned migrations.

SEE ALSO:
  - taxes: The calculation engine whose results are stored here
  - api/handlers.go: The HTTP layer writing through this store
*/
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sync"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/shopspring/decimal"

	"github.com/gastroboard/tax-engine/taxes"
)

// ErrSaleNotFound is returned when a sale ID does not exist.
var ErrSaleNotFound = errors.New("sale not found")

// Store persists sales and tax settings in SQLite.
type Store struct {
	db *sql.DB
	mu sync.RWMutex
}

// New creates a store backed by the database at dbPath.
// Use ":memory:" for an in-memory database.
func New(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_foreign_keys=on&_journal_mode=WAL")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	store := &Store{db: db}
	if err := store.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	return store, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// migrate creates the database schema.
func (s *Store) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS sales (
		id TEXT PRIMARY KEY,
		created_at TEXT NOT NULL,
		subtotal TEXT NOT NULL,
		vat_amount TEXT NOT NULL,
		turnover_tax_amount TEXT NOT NULL,
		total_taxes TEXT NOT NULL,
		total_amount TEXT NOT NULL,
		effective_tax_rate TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_sales_created_at ON sales(created_at);

	CREATE TABLE IF NOT EXISTS sale_items (
		sale_id TEXT NOT NULL REFERENCES sales(id),
		position INTEGER NOT NULL,
		product_id TEXT NOT NULL,
		quantity TEXT NOT NULL,
		unit_price TEXT NOT NULL,
		vat_category TEXT,
		PRIMARY KEY (sale_id, position)
	);

	-- Single-row table: the settings screen's current tax configuration.
	CREATE TABLE IF NOT EXISTS tax_settings (
		id INTEGER PRIMARY KEY CHECK (id = 1),
		vat_rate TEXT NOT NULL,
		include_turnover_tax INTEGER NOT NULL,
		turnover_tax_rate TEXT NOT NULL,
		tax_included_in_price INTEGER NOT NULL,
		round_to_cents INTEGER NOT NULL,
		updated_at TEXT NOT NULL
	);
	`
	_, err := s.db.Exec(schema)
	return err
}

// =============================================================================
// SALES
// =============================================================================

// SaleItemRecord is one persisted cart line.
type SaleItemRecord struct {
	ProductID   string
	Quantity    decimal.Decimal
	UnitPrice   decimal.Decimal
	VATCategory string
}

// SaleRecord is a finalized sale with its computed tax breakdown, stored
// verbatim as produced by the engine.
type SaleRecord struct {
	ID        string
	CreatedAt time.Time
	Items     []SaleItemRecord
	Result    taxes.Result
}

// SaveSale persists a sale and its items atomically.
func (s *Store) SaveSale(ctx context.Context, sale SaleRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, `
		INSERT INTO sales (id, created_at, subtotal, vat_amount, turnover_tax_amount, total_taxes, total_amount, effective_tax_rate)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		sale.ID,
		sale.CreatedAt.UTC().Format(time.RFC3339Nano),
		sale.Result.Subtotal.String(),
		sale.Result.VATAmount.String(),
		sale.Result.TurnoverTaxAmount.String(),
		sale.Result.TotalTaxes.String(),
		sale.Result.TotalAmount.String(),
		sale.Result.EffectiveTaxRate.String(),
	)
	if err != nil {
		return fmt.Errorf("failed to insert sale: %w", err)
	}

	for i, item := range sale.Items {
		_, err = tx.ExecContext(ctx, `
			INSERT INTO sale_items (sale_id, position, product_id, quantity, unit_price, vat_category)
			VALUES (?, ?, ?, ?, ?, ?)`,
			sale.ID, i, item.ProductID, item.Quantity.String(), item.UnitPrice.String(), item.VATCategory,
		)
		if err != nil {
			return fmt.Errorf("failed to insert sale item: %w", err)
		}
	}

	return tx.Commit()
}

// GetSale loads one sale with its items.
func (s *Store) GetSale(ctx context.Context, id string) (SaleRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	row := s.db.QueryRowContext(ctx, `
		SELECT id, created_at, subtotal, vat_amount, turnover_tax_amount, total_taxes, total_amount, effective_tax_rate
		FROM sales WHERE id = ?`, id)

	sale, err := scanSale(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return SaleRecord{}, ErrSaleNotFound
		}
		return SaleRecord{}, err
	}

	items, err := s.loadItems(ctx, sale.ID)
	if err != nil {
		return SaleRecord{}, err
	}
	sale.Items = items
	return sale, nil
}

// ListSales returns all sales, newest first, with their items.
func (s *Store) ListSales(ctx context.Context) ([]SaleRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, created_at, subtotal, vat_amount, turnover_tax_amount, total_taxes, total_amount, effective_tax_rate
		FROM sales ORDER BY created_at DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	sales := []SaleRecord{}
	for rows.Next() {
		sale, err := scanSale(rows)
		if err != nil {
			return nil, err
		}
		sales = append(sales, sale)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for i := range sales {
		items, err := s.loadItems(ctx, sales[i].ID)
		if err != nil {
			return nil, err
		}
		sales[i].Items = items
	}
	return sales, nil
}

func (s *Store) loadItems(ctx context.Context, saleID string) ([]SaleItemRecord, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT product_id, quantity, unit_price, vat_category
		FROM sale_items WHERE sale_id = ? ORDER BY position`, saleID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := []SaleItemRecord{}
	for rows.Next() {
		var item SaleItemRecord
		var quantity, unitPrice string
		if err := rows.Scan(&item.ProductID, &quantity, &unitPrice, &item.VATCategory); err != nil {
			return nil, err
		}
		if item.Quantity, err = decimal.NewFromString(quantity); err != nil {
			return nil, fmt.Errorf("corrupt quantity for sale %s: %w", saleID, err)
		}
		if item.UnitPrice, err = decimal.NewFromString(unitPrice); err != nil {
			return nil, fmt.Errorf("corrupt unit price for sale %s: %w", saleID, err)
		}
		items = append(items, item)
	}
	return items, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanSale(row rowScanner) (SaleRecord, error) {
	var sale SaleRecord
	var createdAt string
	var fields [6]string

	err := row.Scan(&sale.ID, &createdAt,
		&fields[0], &fields[1], &fields[2], &fields[3], &fields[4], &fields[5])
	if err != nil {
		return SaleRecord{}, err
	}

	sale.CreatedAt, err = time.Parse(time.RFC3339Nano, createdAt)
	if err != nil {
		return SaleRecord{}, fmt.Errorf("corrupt created_at for sale %s: %w", sale.ID, err)
	}

	dst := []*decimal.Decimal{
		&sale.Result.Subtotal,
		&sale.Result.VATAmount,
		&sale.Result.TurnoverTaxAmount,
		&sale.Result.TotalTaxes,
		&sale.Result.TotalAmount,
		&sale.Result.EffectiveTaxRate,
	}
	for i, raw := range fields {
		d, err := decimal.NewFromString(raw)
		if err != nil {
			return SaleRecord{}, fmt.Errorf("corrupt decimal for sale %s: %w", sale.ID, err)
		}
		*dst[i] = d
	}
	return sale, nil
}

// =============================================================================
// TAX SETTINGS
// =============================================================================

// SaveSettings upserts the single persisted tax configuration.
func (s *Store) SaveSettings(ctx context.Context, cfg taxes.Configuration) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO tax_settings (id, vat_rate, include_turnover_tax, turnover_tax_rate, tax_included_in_price, round_to_cents, updated_at)
		VALUES (1, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			vat_rate = excluded.vat_rate,
			include_turnover_tax = excluded.include_turnover_tax,
			turnover_tax_rate = excluded.turnover_tax_rate,
			tax_included_in_price = excluded.tax_included_in_price,
			round_to_cents = excluded.round_to_cents,
			updated_at = excluded.updated_at`,
		cfg.VATRate.String(),
		boolToInt(cfg.IncludeTurnoverTax),
		cfg.TurnoverTaxRate.String(),
		boolToInt(cfg.TaxIncludedInPrice),
		boolToInt(cfg.RoundToCents),
		time.Now().UTC().Format(time.RFC3339Nano),
	)
	return err
}

// LoadSettings returns the persisted configuration, or found=false when
// nothing has been saved yet.
func (s *Store) LoadSettings(ctx context.Context) (taxes.Configuration, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var vatRate, turnoverRate string
	var includeTurnover, taxIncluded, roundToCents int
	err := s.db.QueryRowContext(ctx, `
		SELECT vat_rate, include_turnover_tax, turnover_tax_rate, tax_included_in_price, round_to_cents
		FROM tax_settings WHERE id = 1`).
		Scan(&vatRate, &includeTurnover, &turnoverRate, &taxIncluded, &roundToCents)
	if errors.Is(err, sql.ErrNoRows) {
		return taxes.Configuration{}, false, nil
	}
	if err != nil {
		return taxes.Configuration{}, false, err
	}

	cfg := taxes.Configuration{
		IncludeTurnoverTax: includeTurnover != 0,
		TaxIncludedInPrice: taxIncluded != 0,
		RoundToCents:       roundToCents != 0,
	}
	if cfg.VATRate, err = decimal.NewFromString(vatRate); err != nil {
		return taxes.Configuration{}, false, fmt.Errorf("corrupt vat rate: %w", err)
	}
	if cfg.TurnoverTaxRate, err = decimal.NewFromString(turnoverRate); err != nil {
		return taxes.Configuration{}, false, fmt.Errorf("corrupt turnover rate: %w", err)
	}
	return cfg, true, nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
