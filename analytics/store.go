package analytics

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"time"

	_ "modernc.org/sqlite"
)

const dayLayout = "2006-01-02"

// Store records and aggregates post views in SQLite.
type Store struct {
	db   *sql.DB
	salt string
	now  func() time.Time
}

// NewStore opens (or creates) the analytics database at dbPath.
func NewStore(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open analytics db: %w", err)
	}

	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(time.Hour)

	for _, pragma := range []string{
		"PRAGMA journal_mode=WAL;",
		"PRAGMA busy_timeout=5000;",
	} {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, fmt.Errorf("exec %s: %w", pragma, err)
		}
	}

	s := &Store{db: db, now: time.Now}
	if err := s.ensureSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ensure schema: %w", err)
	}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}
	if s.salt, err = loadSalt(s); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) ensureSchema() error {
	_, err := s.db.Exec(`
		CREATE TABLE IF NOT EXISTS views (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			slug TEXT NOT NULL,
			visitor_id TEXT NOT NULL,
			device TEXT NOT NULL,
			day TEXT NOT NULL,
			timestamp DATETIME NOT NULL,
			UNIQUE(slug, visitor_id, day)
		);

		CREATE INDEX IF NOT EXISTS idx_views_day ON views(day);
		CREATE INDEX IF NOT EXISTS idx_views_slug ON views(slug);

		CREATE TABLE IF NOT EXISTS settings (
			key TEXT PRIMARY KEY,
			value TEXT NOT NULL
		);
	`)
	return err
}

// currentSchemaVersion is the latest schema version. Increment when adding migrations.
const currentSchemaVersion = 1

func (s *Store) migrate() error {
	version := 0
	verStr, err := s.GetSetting("schema_version")
	switch {
	case errors.Is(err, ErrNotFound):
	case err != nil:
		return fmt.Errorf("read schema version: %w", err)
	default:
		if version, err = strconv.Atoi(verStr); err != nil {
			return fmt.Errorf("parse schema version %q: %w", verStr, err)
		}
	}
	if version > currentSchemaVersion {
		return fmt.Errorf("schema version %d is newer than supported %d", version, currentSchemaVersion)
	}
	return s.SetSetting("schema_version", strconv.Itoa(currentSchemaVersion))
}

// GetSetting retrieves a setting value by key, or ErrNotFound.
func (s *Store) GetSetting(key string) (string, error) {
	var val string
	err := s.db.QueryRow(`SELECT value FROM settings WHERE key = ?`, key).Scan(&val)
	if errors.Is(err, sql.ErrNoRows) {
		return "", ErrNotFound
	}
	return val, err
}

// SetSetting stores a setting value by key (upsert).
func (s *Store) SetSetting(key, value string) error {
	_, err := s.db.Exec(`
		INSERT INTO settings (key, value) VALUES (?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value`, key, value)
	return err
}

// RecordView counts a view of slug. Repeat views by the same visitor on the
// same UTC day are ignored. Bots are the caller's concern (see IsBot).
func (s *Store) RecordView(ctx context.Context, slug, ip, userAgent string) error {
	now := s.now().UTC()
	_, _, device := ParseUserAgent(userAgent)
	_, err := s.db.ExecContext(ctx, `
		INSERT OR IGNORE INTO views (slug, visitor_id, device, day, timestamp)
		VALUES (?, ?, ?, ?, ?)`,
		slug, visitorID(s.salt, ip, userAgent), device, now.Format(dayLayout), now)
	if err != nil {
		return fmt.Errorf("record view %s: %w", slug, err)
	}
	return nil
}

// cutoffDay is the first day included in a window of days; days <= 0
// means all time.
func (s *Store) cutoffDay(days int) string {
	if days <= 0 {
		return ""
	}
	return s.now().UTC().AddDate(0, 0, -(days - 1)).Format(dayLayout)
}

// ViewCounts returns views per slug over the last days (today included).
func (s *Store) ViewCounts(ctx context.Context, days int) (map[string]int, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT slug, COUNT(*) FROM views WHERE day >= ? GROUP BY slug`, s.cutoffDay(days))
	if err != nil {
		return nil, fmt.Errorf("view counts: %w", err)
	}
	defer rows.Close()

	counts := make(map[string]int)
	for rows.Next() {
		var slug string
		var n int
		if err := rows.Scan(&slug, &n); err != nil {
			return nil, fmt.Errorf("view counts: %w", err)
		}
		counts[slug] = n
	}
	return counts, rows.Err()
}

// Summary aggregates views over a window.
type Summary struct {
	Days           int            `json:"days"`
	TotalViews     int            `json:"total_views"`
	UniqueVisitors int            `json:"unique_visitors"`
	Devices        map[string]int `json:"devices"`
	Posts          map[string]int `json:"posts"`
}

// Summarize returns totals, device split and per-post counts for the last days.
func (s *Store) Summarize(ctx context.Context, days int) (*Summary, error) {
	cutoff := s.cutoffDay(days)
	sum := &Summary{Days: days, Devices: make(map[string]int)}

	err := s.db.QueryRowContext(ctx, `
		SELECT COUNT(*), COUNT(DISTINCT visitor_id) FROM views WHERE day >= ?`, cutoff).
		Scan(&sum.TotalViews, &sum.UniqueVisitors)
	if err != nil {
		return nil, fmt.Errorf("summarize: %w", err)
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT device, COUNT(*) FROM views WHERE day >= ? GROUP BY device`, cutoff)
	if err != nil {
		return nil, fmt.Errorf("summarize devices: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var device string
		var n int
		if err := rows.Scan(&device, &n); err != nil {
			return nil, fmt.Errorf("summarize devices: %w", err)
		}
		sum.Devices[device] = n
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	if sum.Posts, err = s.ViewCounts(ctx, days); err != nil {
		return nil, err
	}
	return sum, nil
}

// Cleanup removes views older than retentionDays.
func (s *Store) Cleanup(retentionDays int) error {
	_, err := s.db.Exec(`DELETE FROM views WHERE day < ?`, s.cutoffDay(retentionDays))
	if err != nil {
		return fmt.Errorf("cleanup views: %w", err)
	}
	return nil
}

// Logger receives scheduler errors. echo.Logger satisfies it.
type Logger interface {
	Errorf(format string, args ...interface{})
}

// StartCleanupScheduler runs periodic cleanup of old data. Returns a stop function.
func (s *Store) StartCleanupScheduler(retentionDays int, interval time.Duration, logger Logger) func() {
	ticker := time.NewTicker(interval)
	done := make(chan struct{})

	go func() {
		for {
			select {
			case <-ticker.C:
				if err := s.Cleanup(retentionDays); err != nil && logger != nil {
					logger.Errorf("analytics cleanup: %v", err)
				}
			case <-done:
				ticker.Stop()
				return
			}
		}
	}()

	return func() { close(done) }
}
