package repository

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/okian/gridelo/internal/domain/model"
	"github.com/okian/gridelo/pkg/logger"

	_ "modernc.org/sqlite"
)

const defaultBusyTimeout = 5 * time.Second

// SQLiteProjectionStore keeps the active projection in a SQLite table. Row
// order is preserved through the seq column.
type SQLiteProjectionStore struct {
	db          *sql.DB
	mu          sync.Mutex
	path        string
	busyTimeout time.Duration
	log         logger.Logger
}

// OpenSQLiteProjectionStore opens or creates the database at path.
func OpenSQLiteProjectionStore(ctx context.Context, path string, opts ...Option) (*SQLiteProjectionStore, error) {
	s := &SQLiteProjectionStore{
		path:        path,
		busyTimeout: defaultBusyTimeout,
		log:         logger.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create store dir: %w", err)
	}
	dsn := fmt.Sprintf("%s?_pragma=journal_mode(wal)&_pragma=busy_timeout(%d)", path, s.busyTimeout.Milliseconds())
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	db.SetMaxOpenConns(1)

	for _, stmt := range []string{
		`CREATE TABLE IF NOT EXISTS projections (
			seq          INTEGER PRIMARY KEY,
			year         INTEGER NOT NULL,
			week         INTEGER NOT NULL,
			team         TEXT    NOT NULL,
			elo_before   REAL    NOT NULL,
			elo_after    REAL,
			expected_win REAL,
			type         TEXT    NOT NULL,
			result       TEXT    NOT NULL DEFAULT '',
			tss_win_prob REAL,
			tss_edge     REAL,
			total_edge   REAL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_proj_key ON projections(year, week, team)`,
	} {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			db.Close()
			return nil, fmt.Errorf("init schema: %w", err)
		}
	}

	var count int64
	if err := db.QueryRowContext(ctx, `SELECT COUNT(*) FROM projections`).Scan(&count); err != nil {
		db.Close()
		return nil, fmt.Errorf("read row count: %w", err)
	}
	s.db = db
	s.log.Info(ctx, "projection store opened", logger.String("path", path), logger.Int("rows", int(count)))
	return s, nil
}

// Close releases the database handle.
func (s *SQLiteProjectionStore) Close() error {
	return s.db.Close()
}

// Load returns every row in stored order.
func (s *SQLiteProjectionStore) Load(ctx context.Context) ([]model.Projection, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT year, week, team, elo_before, elo_after, expected_win,
		type, result, tss_win_prob, tss_edge, total_edge FROM projections ORDER BY seq`)
	if err != nil {
		return nil, fmt.Errorf("query projections: %w", err)
	}
	defer rows.Close()

	var out []model.Projection
	for rows.Next() {
		var (
			p                           model.Projection
			typ, result                 string
			after, prob, cprob, ce, tot sql.NullFloat64
		)
		if err := rows.Scan(&p.Period, &p.SubPeriod, &p.Competitor, &p.RatingBefore, &after, &prob,
			&typ, &result, &cprob, &ce, &tot); err != nil {
			return nil, fmt.Errorf("scan projection: %w", err)
		}
		p.Type = model.ProjectionType(typ)
		p.Outcome = model.Outcome(result)
		p.RatingAfter = fromNull(after)
		p.WinProbability = fromNull(prob)
		p.CompositeWinProbability = fromNull(cprob)
		p.CompositeEdge = fromNull(ce)
		p.TotalEdge = fromNull(tot)
		out = append(out, p)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("%w: %s has no projection rows", ErrNotFound, s.path)
	}
	return out, nil
}

// Save replaces the stored rows in one transaction.
func (s *SQLiteProjectionStore) Save(ctx context.Context, rows []model.Projection) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // no-op after commit

	if _, err := tx.ExecContext(ctx, `DELETE FROM projections`); err != nil {
		return fmt.Errorf("clear projections: %w", err)
	}
	stmt, err := tx.PrepareContext(ctx, `INSERT INTO projections
		(seq, year, week, team, elo_before, elo_after, expected_win, type, result, tss_win_prob, tss_edge, total_edge)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("prepare insert: %w", err)
	}
	defer stmt.Close()

	for i, p := range rows {
		if _, err := stmt.ExecContext(ctx, i, p.Period, p.SubPeriod, p.Competitor, p.RatingBefore,
			toNull(p.RatingAfter), toNull(p.WinProbability), string(p.Type), string(p.Outcome),
			toNull(p.CompositeWinProbability), toNull(p.CompositeEdge), toNull(p.TotalEdge)); err != nil {
			return fmt.Errorf("insert %s %d/%d: %w", p.Competitor, p.Period, p.SubPeriod, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	s.log.Debug(ctx, "projections saved", logger.Int("rows", len(rows)))
	return nil
}

func toNull(n model.Nullable) sql.NullFloat64 {
	v, ok := n.Get()
	return sql.NullFloat64{Float64: v, Valid: ok}
}

func fromNull(n sql.NullFloat64) model.Nullable {
	if !n.Valid {
		return model.None()
	}
	return model.Some(n.Float64)
}
