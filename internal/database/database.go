package database

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"status-aggregator/internal/models"
)

type querier interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
}

type DB struct {
	Pool *pgxpool.Pool
}

func New(ctx context.Context, databaseURL string) (*DB, error) {
	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return nil, fmt.Errorf("connect to database: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}
	return &DB{Pool: pool}, nil
}

func (db *DB) Close() {
	db.Pool.Close()
}

// Migrate creates the schema if it doesn't exist.
func (db *DB) Migrate(ctx context.Context) error {
	sql := `
	CREATE TABLE IF NOT EXISTS regions (
		code        TEXT PRIMARY KEY,
		region_id   TEXT NOT NULL DEFAULT '',
		location    TEXT NOT NULL DEFAULT '',
		updated_at  TIMESTAMPTZ NOT NULL DEFAULT NOW()
	);
	`
	_, err := db.Pool.Exec(ctx, sql)
	return err
}

// Regions returns a region source backed by the pool.
func (db *DB) Regions() *RegionSource {
	return NewRegionSource(db.Pool)
}

// UpsertRegions writes every entry of table in one transaction.
func (db *DB) UpsertRegions(ctx context.Context, table models.RegionTable) error {
	tx, err := db.Pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	for code, r := range table {
		_, err := tx.Exec(ctx, `
			INSERT INTO regions (code, region_id, location)
			VALUES ($1, $2, $3)
			ON CONFLICT (code) DO UPDATE
			SET region_id = EXCLUDED.region_id, location = EXCLUDED.location, updated_at = NOW()
		`, code, r.ID, r.Location)
		if err != nil {
			return fmt.Errorf("upsert region %q: %w", code, err)
		}
	}
	return tx.Commit(ctx)
}

// RegionSource reads the region table from the regions table, one row per code.
// An empty table means no known regions and is not an error.
type RegionSource struct {
	q querier
}

func NewRegionSource(q querier) *RegionSource {
	return &RegionSource{q: q}
}

func (s *RegionSource) RegionTable(ctx context.Context) (models.RegionTable, error) {
	rows, err := s.q.Query(ctx, `SELECT code, region_id, location FROM regions ORDER BY code`)
	if err != nil {
		return nil, fmt.Errorf("query regions: %w", err)
	}
	defer rows.Close()

	table := make(models.RegionTable)
	for rows.Next() {
		var code string
		var r models.Region
		if err := rows.Scan(&code, &r.ID, &r.Location); err != nil {
			return nil, fmt.Errorf("scan region: %w", err)
		}
		table[code] = r
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("read regions: %w", err)
	}
	return table, nil
}
