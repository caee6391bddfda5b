package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"vitals-monitor/internal/config"
	"vitals-monitor/internal/vitals"
)

// DefaultChannel is the NOTIFY channel fired by the range_rules triggers.
const DefaultChannel = "range_rules_changed"

// Store reads custom range rule definitions from Postgres.
type Store struct {
	pool *pgxpool.Pool
}

func New(ctx context.Context, cfg config.Config) (*Store, error) {
	dsn := cfg.DSN()
	poolCfg, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to parse postgres DSN: %w", err)
	}
	poolCfg.MaxConns = int32(cfg.Postgres.MaxOpenConns)
	poolCfg.MinConns = int32(cfg.Postgres.MaxIdleConns)
	poolCfg.HealthCheckPeriod = time.Minute

	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create postgres pool: %w", err)
	}
	return &Store{pool: pool}, nil
}

func (s *Store) Close() {
	if s.pool != nil {
		s.pool.Close()
	}
}

// LoadRuleDefs returns the enabled rule definitions in display order.
func (s *Store) LoadRuleDefs(ctx context.Context) ([]vitals.Def, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	rows, err := s.pool.Query(ctx, `
		SELECT name, min_value, max_value, message
		FROM range_rules
		WHERE enabled
		ORDER BY position, name
	`)
	if err != nil {
		return nil, fmt.Errorf("query range rules: %w", err)
	}
	defer rows.Close()

	var out []vitals.Def
	for rows.Next() {
		var (
			name     string
			min, max sql.NullFloat64
			message  sql.NullString
		)
		if err := rows.Scan(&name, &min, &max, &message); err != nil {
			return nil, fmt.Errorf("scan row: %w", err)
		}
		out = append(out, toDef(name, min, max, message))
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

func toDef(name string, min, max sql.NullFloat64, message sql.NullString) vitals.Def {
	d := vitals.Def{Name: name, Message: message.String}
	if min.Valid {
		v := min.Float64
		d.Min = &v
	}
	if max.Valid {
		v := max.Float64
		d.Max = &v
	}
	return d
}

func (s *Store) ListenChannel() string {
	return DefaultChannel
}

func (s *Store) PgxPool() *pgxpool.Pool {
	if s.pool == nil {
		panic(errors.New("pgx pool is nil"))
	}
	return s.pool
}
