package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/guregu/null/v6"
	_ "modernc.org/sqlite"

	"findata/internal/model"
)

const dateLayout = "2006-01-02"

// SQLiteStore persists bars and companies to a SQLite database.
type SQLiteStore struct {
	db *sql.DB
	mu sync.Mutex
}

// Open opens (or creates) the SQLite database and runs migrations.
func Open(dbPath string) (*SQLiteStore, error) {
	if dir := filepath.Dir(dbPath); dir != "." && !strings.HasPrefix(dbPath, ":memory:") {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create data dir: %w", err)
		}
	}
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	// WAL mode lets the API read while the ingest job writes.
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("set WAL mode: %w", err)
	}
	if _, err := db.Exec("PRAGMA busy_timeout=5000"); err != nil {
		db.Close()
		return nil, fmt.Errorf("set busy timeout: %w", err)
	}

	s := &SQLiteStore{db: db}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return s, nil
}

// DB exposes the handle for liveness checks.
func (s *SQLiteStore) DB() *sql.DB { return s.db }

func (s *SQLiteStore) migrate() error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS companies (
			symbol     TEXT PRIMARY KEY,
			name       TEXT NOT NULL,
			sector     TEXT,
			industry   TEXT,
			market_cap REAL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_companies_sector ON companies(sector)`,

		`CREATE TABLE IF NOT EXISTS stock_data (
			id             INTEGER PRIMARY KEY AUTOINCREMENT,
			symbol         TEXT NOT NULL,
			date           TEXT NOT NULL,
			open           REAL NOT NULL,
			high           REAL NOT NULL,
			low            REAL NOT NULL,
			close          REAL NOT NULL,
			volume         INTEGER NOT NULL,
			daily_return   REAL,
			ma7            REAL,
			ma30           REAL,
			volatility     REAL,
			momentum_score REAL,
			volume_trend   REAL,
			UNIQUE(symbol, date)
		)`,
		`CREATE INDEX IF NOT EXISTS idx_symbol_date ON stock_data(symbol, date)`,
	}

	for _, stmt := range stmts {
		if _, err := s.db.Exec(stmt); err != nil {
			return fmt.Errorf("exec %q: %w", stmt[:40], err)
		}
	}
	return nil
}

func (s *SQLiteStore) Bars(ctx context.Context, symbol string, from, to time.Time) ([]model.PriceBar, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT date, open, high, low, close, volume
		FROM stock_data WHERE symbol = ? AND date >= ? AND date <= ?
		ORDER BY date`,
		symbol, from.Format(dateLayout), to.Format(dateLayout))
	if err != nil {
		return nil, fmt.Errorf("query bars %s: %w", symbol, err)
	}
	defer rows.Close()
	return scanBars(rows)
}

func (s *SQLiteStore) LatestBars(ctx context.Context, symbol string, n int) ([]model.PriceBar, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT date, open, high, low, close, volume
		FROM stock_data WHERE symbol = ?
		ORDER BY date DESC LIMIT ?`, symbol, n)
	if err != nil {
		return nil, fmt.Errorf("query latest bars %s: %w", symbol, err)
	}
	defer rows.Close()

	bars, err := scanBars(rows)
	if err != nil {
		return nil, err
	}
	for i, j := 0, len(bars)-1; i < j; i, j = i+1, j-1 {
		bars[i], bars[j] = bars[j], bars[i]
	}
	return bars, nil
}

func scanBars(rows *sql.Rows) ([]model.PriceBar, error) {
	var bars []model.PriceBar
	for rows.Next() {
		var (
			b    model.PriceBar
			date string
		)
		if err := rows.Scan(&date, &b.Open, &b.High, &b.Low, &b.Close, &b.Volume); err != nil {
			return nil, fmt.Errorf("scan bar: %w", err)
		}
		d, err := time.Parse(dateLayout, date)
		if err != nil {
			return nil, fmt.Errorf("parse bar date %q: %w", date, err)
		}
		b.Date = d
		bars = append(bars, b)
	}
	return bars, rows.Err()
}

// finite maps NaN and ±Inf to SQL NULL.
func finite(v float64) null.Float {
	return null.NewFloat(v, !math.IsNaN(v) && !math.IsInf(v, 0))
}

func (s *SQLiteStore) UpsertBars(ctx context.Context, symbol string, bars []model.DerivedBar) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, `INSERT OR IGNORE INTO stock_data
		(symbol, date, open, high, low, close, volume,
		 daily_return, ma7, ma30, volatility, momentum_score, volume_trend)
		VALUES (?,?,?,?,?,?,?,?,?,?,?,?,?)`)
	if err != nil {
		return 0, fmt.Errorf("prepare: %w", err)
	}
	defer stmt.Close()

	written := 0
	for _, b := range bars {
		res, err := stmt.ExecContext(ctx,
			symbol, b.Date.Format(dateLayout), b.Open, b.High, b.Low, b.Close, b.Volume,
			finite(b.DailyReturn), finite(b.MA7), finite(b.MA30),
			finite(b.Volatility), finite(b.MomentumScore), finite(b.VolumeTrend),
		)
		if err != nil {
			return 0, fmt.Errorf("insert %s %s: %w", symbol, b.Date.Format(dateLayout), err)
		}
		if n, err := res.RowsAffected(); err == nil {
			written += int(n)
		}
	}
	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit: %w", err)
	}
	return written, nil
}

func (s *SQLiteStore) Companies(ctx context.Context, sector string) ([]model.CompanyProfile, error) {
	query := `SELECT symbol, name, sector, industry, market_cap FROM companies`
	var args []any
	if sector != "" {
		query += ` WHERE sector = ?`
		args = append(args, sector)
	}
	query += ` ORDER BY symbol`

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query companies: %w", err)
	}
	defer rows.Close()

	var out []model.CompanyProfile
	for rows.Next() {
		p, err := scanCompany(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

func (s *SQLiteStore) Company(ctx context.Context, symbol string) (model.CompanyProfile, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT symbol, name, sector, industry, market_cap FROM companies WHERE symbol = ?`, symbol)
	p, err := scanCompany(row)
	if errors.Is(err, sql.ErrNoRows) {
		return model.CompanyProfile{}, fmt.Errorf("company %s: %w", symbol, ErrNotFound)
	}
	return p, err
}

type scanner interface {
	Scan(dest ...any) error
}

func scanCompany(row scanner) (model.CompanyProfile, error) {
	var (
		p                model.CompanyProfile
		sector, industry null.String
		marketCap        null.Float
	)
	if err := row.Scan(&p.Symbol, &p.Name, &sector, &industry, &marketCap); err != nil {
		return model.CompanyProfile{}, err
	}
	p.Sector = sector.ValueOrZero()
	p.Industry = industry.ValueOrZero()
	p.MarketCap = marketCap.ValueOrZero()
	return p, nil
}

func (s *SQLiteStore) UpsertCompany(ctx context.Context, p model.CompanyProfile) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.ExecContext(ctx, `INSERT INTO companies (symbol, name, sector, industry, market_cap)
		VALUES (?,?,?,?,?)
		ON CONFLICT(symbol) DO UPDATE SET
			name = excluded.name,
			sector = excluded.sector,
			industry = excluded.industry,
			market_cap = excluded.market_cap`,
		p.Symbol, p.Name, p.Sector, p.Industry, p.MarketCap)
	if err != nil {
		return fmt.Errorf("upsert company %s: %w", p.Symbol, err)
	}
	return nil
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}
