package jobs

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"regexp"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Pool sizing for the job database.
const (
	maxConns = 25
	minConns = 5
)

// ErrInvalidPrefix is returned for table prefixes that are not plain identifiers.
var ErrInvalidPrefix = errors.New("invalid table prefix")

var prefixPattern = regexp.MustCompile(`^[a-z][a-z0-9_]*$`)

// Connect opens a pgx pool for databaseURL and verifies it with a ping.
// Connections through PgBouncer's transaction pooler (port 6543) use
// describe caching instead of prepared statements.
func Connect(ctx context.Context, databaseURL string) (*pgxpool.Pool, error) {
	config, err := pgxpool.ParseConfig(databaseURL)
	if err != nil {
		return nil, fmt.Errorf("parse connection string: %w", err)
	}
	config.MaxConns = maxConns
	config.MinConns = minConns

	if config.ConnConfig.Port == 6543 && config.ConnConfig.DefaultQueryExecMode == pgx.QueryExecModeCacheStatement {
		config.ConnConfig.DefaultQueryExecMode = pgx.QueryExecModeCacheDescribe
		slog.Debug("using cache_describe mode for PgBouncer", "port", 6543)
	}

	pool, err := pgxpool.NewWithConfig(ctx, config)
	if err != nil {
		return nil, fmt.Errorf("create connection pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}
	return pool, nil
}

// TableName returns the jobs table for prefix ("" → "jobs", "dev_" → "dev_jobs").
func TableName(prefix string) (string, error) {
	if prefix != "" && !prefixPattern.MatchString(prefix) {
		return "", fmt.Errorf("%w: %q", ErrInvalidPrefix, prefix)
	}
	return prefix + "jobs", nil
}

// PostgresStore persists jobs in a PostgreSQL table.
type PostgresStore struct {
	pool  *pgxpool.Pool
	table string
}

var _ Store = (*PostgresStore)(nil)

// NewPostgresStore uses the table "<prefix>jobs" on pool. Call Migrate
// before first use.
func NewPostgresStore(pool *pgxpool.Pool, prefix string) (*PostgresStore, error) {
	table, err := TableName(prefix)
	if err != nil {
		return nil, err
	}
	return &PostgresStore{pool: pool, table: table}, nil
}

// Migrate creates the jobs table and its status index when missing, and
// adds columns introduced after the first schema.
func (s *PostgresStore) Migrate(ctx context.Context) error {
	stmts := []string{
		fmt.Sprintf(`
			CREATE TABLE IF NOT EXISTS %s (
				id         TEXT PRIMARY KEY,
				filename   TEXT NOT NULL,
				status     TEXT NOT NULL,
				message    TEXT NOT NULL DEFAULT '',
				created_at TIMESTAMPTZ NOT NULL DEFAULT now()
			)`, s.table),
		fmt.Sprintf(`ALTER TABLE %s ADD COLUMN IF NOT EXISTS format TEXT NOT NULL DEFAULT 'gift'`, s.table),
		fmt.Sprintf(`ALTER TABLE %s ADD COLUMN IF NOT EXISTS questions INT NOT NULL DEFAULT 0`, s.table),
		fmt.Sprintf(`ALTER TABLE %s ADD COLUMN IF NOT EXISTS updated_at TIMESTAMPTZ NOT NULL DEFAULT now()`, s.table),
		// Tables created by the first deployment allowed NULL messages.
		fmt.Sprintf(`UPDATE %s SET message = '' WHERE message IS NULL`, s.table),
		fmt.Sprintf(`ALTER TABLE %s ALTER COLUMN message SET DEFAULT ''`, s.table),
		fmt.Sprintf(`ALTER TABLE %s ALTER COLUMN message SET NOT NULL`, s.table),
		fmt.Sprintf(`CREATE INDEX IF NOT EXISTS %s_status_idx ON %s (status)`, s.table, s.table),
	}
	for _, stmt := range stmts {
		if _, err := s.pool.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("migrate %s: %w", s.table, err)
		}
	}
	return nil
}

// Close closes the connection pool.
func (s *PostgresStore) Close() {
	s.pool.Close()
}

func (s *PostgresStore) Create(ctx context.Context, job *Job) error {
	if err := validateNew(job); err != nil {
		return err
	}

	query := fmt.Sprintf(`
		INSERT INTO %s (id, filename, format, status, message, questions, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`, s.table)

	_, err := s.pool.Exec(ctx, query, job.ID, job.Filename, job.Format, string(job.Status), job.Message,
		job.Questions, job.CreatedAt, job.UpdatedAt)
	if err != nil {
		if isDuplicate(err) {
			return fmt.Errorf("%w: %s", ErrDuplicate, job.ID)
		}
		return fmt.Errorf("create job: %w", err)
	}
	return nil
}

func (s *PostgresStore) Get(ctx context.Context, id string) (*Job, error) {
	query := fmt.Sprintf(`
		SELECT id, filename, format, status, COALESCE(message, ''), questions, created_at, updated_at
		FROM %s
		WHERE id = $1
	`, s.table)

	var j Job
	var status string
	err := s.pool.QueryRow(ctx, query, id).Scan(&j.ID, &j.Filename, &j.Format, &status, &j.Message,
		&j.Questions, &j.CreatedAt, &j.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
		}
		return nil, fmt.Errorf("get job: %w", err)
	}
	j.Status = Status(status)
	return &j, nil
}

func (s *PostgresStore) UpdateStatus(ctx context.Context, id string, status Status, message string) error {
	return s.transition(ctx, id, status, message, nil)
}

func (s *PostgresStore) Complete(ctx context.Context, id string, questions int, message string) error {
	return s.transition(ctx, id, StatusCompleted, message, &questions)
}

// transition applies a status change in a single conditional UPDATE so
// concurrent writers cannot skip a state. A nil questions keeps the
// stored count.
func (s *PostgresStore) transition(ctx context.Context, id string, status Status, message string, questions *int) error {
	query := fmt.Sprintf(`
		UPDATE %s
		SET status = $2, message = $3, questions = COALESCE($5::int, questions), updated_at = now()
		WHERE id = $1 AND status = ANY($4)
	`, s.table)

	tag, err := s.pool.Exec(ctx, query, id, string(status), message, sourcesOf(status), questions)
	if err != nil {
		return fmt.Errorf("update job status: %w", err)
	}
	if tag.RowsAffected() == 1 {
		return nil
	}

	current, err := s.Get(ctx, id)
	if err != nil {
		return err
	}
	return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, current.Status, status)
}

func (s *PostgresStore) CountByStatus(ctx context.Context, status Status) (int, error) {
	query := fmt.Sprintf(`SELECT COUNT(*) FROM %s WHERE status = $1`, s.table)

	var n int
	if err := s.pool.QueryRow(ctx, query, string(status)).Scan(&n); err != nil {
		return 0, fmt.Errorf("count jobs: %w", err)
	}
	return n, nil
}

// isDuplicate reports a unique_violation (SQLSTATE 23505).
func isDuplicate(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}
