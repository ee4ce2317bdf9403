package store

import (
	"context"
	"database/sql"
	"fmt"
	"sync"
	"time"

	_ "github.com/mattn/go-sqlite3"

	apperrors "fedwatch/internal/errors"
	"fedwatch/internal/models"
)

// SQLiteStore implements DataStore using SQLite.
type SQLiteStore struct {
	db        *sql.DB
	mu        sync.RWMutex
	syncTimes map[string]time.Time
}

// NewSQLiteStore creates a new SQLite-based data store.
func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	db.SetMaxOpenConns(4)
	db.SetMaxIdleConns(2)
	db.SetConnMaxLifetime(time.Hour)

	store := &SQLiteStore{
		db:        db,
		syncTimes: make(map[string]time.Time),
	}

	if err := store.initSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	return store, nil
}

// initSchema creates all required tables and indexes.
func (s *SQLiteStore) initSchema() error {
	schema := `
	-- Daily settlement records of fed funds futures contracts
	CREATE TABLE IF NOT EXISTS quotes (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		symbol TEXT NOT NULL,
		date DATETIME NOT NULL,
		open REAL NOT NULL,
		high REAL NOT NULL,
		low REAL NOT NULL,
		close REAL NOT NULL,
		volume INTEGER DEFAULT 0,
		open_interest INTEGER DEFAULT 0,
		created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
		UNIQUE(symbol, date)
	);

	CREATE INDEX IF NOT EXISTS idx_quotes_symbol_date ON quotes(symbol, date);

	-- Scheduled FOMC meeting dates
	CREATE TABLE IF NOT EXISTS meetings (
		date DATETIME PRIMARY KEY,
		created_at DATETIME DEFAULT CURRENT_TIMESTAMP
	);

	-- Sync bookkeeping per data type
	CREATE TABLE IF NOT EXISTS sync_times (
		data_type TEXT PRIMARY KEY,
		synced_at DATETIME NOT NULL
	);
	`

	_, err := s.db.Exec(schema)
	return err
}

// SaveQuotes upserts a batch of quotes in a single transaction.
func (s *SQLiteStore) SaveQuotes(ctx context.Context, quotes []models.FuturesQuote) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return apperrors.Wrap(apperrors.ErrDatabaseError, err.Error())
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO quotes (symbol, date, open, high, low, close, volume, open_interest)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(symbol, date) DO UPDATE SET
			open = excluded.open,
			high = excluded.high,
			low = excluded.low,
			close = excluded.close,
			volume = excluded.volume,
			open_interest = excluded.open_interest`)
	if err != nil {
		return apperrors.Wrap(apperrors.ErrDatabaseError, err.Error())
	}
	defer stmt.Close()

	for _, q := range quotes {
		if _, err := stmt.ExecContext(ctx, q.Symbol, q.Date, q.Open, q.High, q.Low, q.Close, q.Volume, q.OpenInterest); err != nil {
			return apperrors.Wrapf(err, "saving quote %s %s", q.Symbol, q.Date.Format("2006-01-02"))
		}
	}

	return tx.Commit()
}

// GetQuotes returns a contract's quotes within the date range, ascending.
func (s *SQLiteStore) GetQuotes(ctx context.Context, symbol string, from, to time.Time) ([]models.FuturesQuote, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT symbol, date, open, high, low, close, volume, open_interest
		FROM quotes
		WHERE symbol = ? AND date >= ? AND date <= ?
		ORDER BY date ASC`, symbol, from, to)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrDatabaseError, err.Error())
	}
	defer rows.Close()

	var quotes []models.FuturesQuote
	for rows.Next() {
		var q models.FuturesQuote
		if err := rows.Scan(&q.Symbol, &q.Date, &q.Open, &q.High, &q.Low, &q.Close, &q.Volume, &q.OpenInterest); err != nil {
			return nil, apperrors.Wrap(apperrors.ErrDatabaseError, err.Error())
		}
		quotes = append(quotes, q)
	}
	return quotes, rows.Err()
}

// GetClose returns the contract's last close at or before the cutoff date.
func (s *SQLiteStore) GetClose(ctx context.Context, symbol string, cutoff time.Time) (float64, error) {
	var price float64
	err := s.db.QueryRowContext(ctx, `
		SELECT close FROM quotes
		WHERE symbol = ? AND date <= ?
		ORDER BY date DESC LIMIT 1`, symbol, cutoff).Scan(&price)
	if err == sql.ErrNoRows {
		return 0, apperrors.NewPriceError(symbol, cutoff, apperrors.ErrPriceNotFound)
	}
	if err != nil {
		return 0, apperrors.Wrap(apperrors.ErrDatabaseError, err.Error())
	}
	return price, nil
}

// Price implements pricing.PriceSource on top of the quote store.
// Expired contracts are read no later than their delivery month's end.
func (s *SQLiteStore) Price(ctx context.Context, month models.ContractMonth, asOf time.Time) (float64, error) {
	cutoff := asOf
	if last := month.LastDay(); last.Before(asOf) {
		cutoff = last
	}
	return s.GetClose(ctx, month.Symbol(), cutoff)
}

// SaveMeetings upserts meeting dates.
func (s *SQLiteStore) SaveMeetings(ctx context.Context, dates []time.Time) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return apperrors.Wrap(apperrors.ErrDatabaseError, err.Error())
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, `INSERT OR IGNORE INTO meetings (date) VALUES (?)`)
	if err != nil {
		return apperrors.Wrap(apperrors.ErrDatabaseError, err.Error())
	}
	defer stmt.Close()

	for _, d := range dates {
		if _, err := stmt.ExecContext(ctx, d); err != nil {
			return apperrors.Wrapf(err, "saving meeting %s", d.Format("2006-01-02"))
		}
	}

	return tx.Commit()
}

// GetMeetings returns all stored meeting dates in ascending order.
func (s *SQLiteStore) GetMeetings(ctx context.Context) ([]time.Time, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT date FROM meetings ORDER BY date ASC`)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrDatabaseError, err.Error())
	}
	defer rows.Close()

	var dates []time.Time
	for rows.Next() {
		var d time.Time
		if err := rows.Scan(&d); err != nil {
			return nil, apperrors.Wrap(apperrors.ErrDatabaseError, err.Error())
		}
		dates = append(dates, d)
	}
	return dates, rows.Err()
}

// GetLastSync returns the last sync time for a data type.
func (s *SQLiteStore) GetLastSync(dataType string) time.Time {
	s.mu.RLock()
	if t, ok := s.syncTimes[dataType]; ok {
		s.mu.RUnlock()
		return t
	}
	s.mu.RUnlock()

	var t time.Time
	err := s.db.QueryRow(`SELECT synced_at FROM sync_times WHERE data_type = ?`, dataType).Scan(&t)
	if err != nil {
		return time.Time{}
	}

	s.mu.Lock()
	s.syncTimes[dataType] = t
	s.mu.Unlock()
	return t
}

// SetLastSync records the last sync time for a data type.
func (s *SQLiteStore) SetLastSync(dataType string, t time.Time) error {
	_, err := s.db.Exec(`
		INSERT INTO sync_times (data_type, synced_at) VALUES (?, ?)
		ON CONFLICT(data_type) DO UPDATE SET synced_at = excluded.synced_at`,
		dataType, t)
	if err != nil {
		return apperrors.Wrap(apperrors.ErrDatabaseError, err.Error())
	}

	s.mu.Lock()
	s.syncTimes[dataType] = t
	s.mu.Unlock()
	return nil
}

// Close closes the underlying database.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}
