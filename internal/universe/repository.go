package universe

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// querier is the subset of pgxpool.Pool the repository needs
type querier interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

// Repository reads the universe from ivtracker.universe. It never writes
// recommendations.
type Repository struct {
	db querier
}

// NewRepository creates a new Repository instance
func NewRepository(db querier) *Repository {
	return &Repository{db: db}
}

// Name implements contracts.UniverseSource
func (r *Repository) Name() string { return "database" }

// Symbols implements contracts.UniverseSource
func (r *Repository) Symbols(ctx context.Context) ([]string, error) {
	query := `
		SELECT symbol
		FROM ivtracker.universe
		WHERE active
		ORDER BY position, symbol
	`

	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("query universe: %w", err)
	}

	symbols, err := pgx.CollectRows(rows, pgx.RowTo[string])
	if err != nil {
		return nil, fmt.Errorf("scan universe: %w", err)
	}

	return clean(symbols), nil
}

// Count returns the number of active symbols
func (r *Repository) Count(ctx context.Context) (int, error) {
	var n int
	if err := r.db.QueryRow(ctx, `SELECT count(*) FROM ivtracker.universe WHERE active`).Scan(&n); err != nil {
		return 0, fmt.Errorf("count universe: %w", err)
	}
	return n, nil
}

// EnsureSchema creates the universe table if it does not exist
func (r *Repository) EnsureSchema(ctx context.Context) error {
	stmts := []string{
		`CREATE SCHEMA IF NOT EXISTS ivtracker`,
		`CREATE TABLE IF NOT EXISTS ivtracker.universe (
			symbol   TEXT PRIMARY KEY,
			position INT NOT NULL DEFAULT 0,
			active   BOOLEAN NOT NULL DEFAULT TRUE
		)`,
	}
	for _, stmt := range stmts {
		if _, err := r.db.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("ensure universe schema: %w", err)
		}
	}
	return nil
}

// Seed inserts symbols in order when the table is empty
func (r *Repository) Seed(ctx context.Context, symbols []string) error {
	n, err := r.Count(ctx)
	if err != nil {
		return err
	}
	if n > 0 {
		return nil
	}

	for i, s := range clean(symbols) {
		if _, err := r.db.Exec(ctx,
			`INSERT INTO ivtracker.universe (symbol, position) VALUES ($1, $2) ON CONFLICT (symbol) DO NOTHING`,
			s, i,
		); err != nil {
			return fmt.Errorf("seed universe: %w", err)
		}
	}
	return nil
}
