package rowstore

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const postgresSchema = `
	CREATE TABLE IF NOT EXISTS rowstore_tables (
		name   TEXT PRIMARY KEY,
		header TEXT[] NOT NULL
	);
	CREATE TABLE IF NOT EXISTS rowstore_rows (
		id         BIGSERIAL PRIMARY KEY,
		table_name TEXT NOT NULL REFERENCES rowstore_tables(name) ON DELETE CASCADE,
		cells      TEXT[] NOT NULL
	);
	CREATE INDEX IF NOT EXISTS rowstore_rows_table_id_idx ON rowstore_rows (table_name, id);
`

// PostgresBackend stores tables as ordered text[] rows in PostgreSQL
type PostgresBackend struct {
	db *pgxpool.Pool
}

// NewPostgresBackend creates a new PostgreSQL backed row store
func NewPostgresBackend(db *pgxpool.Pool) *PostgresBackend {
	return &PostgresBackend{db: db}
}

// Migrate creates the backing tables
func (p *PostgresBackend) Migrate(ctx context.Context) error {
	if _, err := p.db.Exec(ctx, postgresSchema); err != nil {
		return fmt.Errorf("failed to migrate row store schema: %w", err)
	}
	return nil
}

// EnsureTable registers the table with its header when missing
func (p *PostgresBackend) EnsureTable(ctx context.Context, table string, header []string) error {
	query := `
		INSERT INTO rowstore_tables (name, header)
		VALUES ($1, $2)
		ON CONFLICT (name) DO NOTHING
	`
	if _, err := p.db.Exec(ctx, query, table, header); err != nil {
		return fmt.Errorf("failed to create table %s: %w", table, err)
	}
	return nil
}

// Header returns the header row
func (p *PostgresBackend) Header(ctx context.Context, table string) ([]string, error) {
	query := `SELECT header FROM rowstore_tables WHERE name = $1`
	var header []string
	err := p.db.QueryRow(ctx, query, table).Scan(&header)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("%s: %w", table, ErrNoTable)
		}
		return nil, fmt.Errorf("failed to get header: %w", err)
	}
	return header, nil
}

// SetHeader overwrites the header row
func (p *PostgresBackend) SetHeader(ctx context.Context, table string, header []string) error {
	query := `
		INSERT INTO rowstore_tables (name, header)
		VALUES ($1, $2)
		ON CONFLICT (name) DO UPDATE SET header = EXCLUDED.header
	`
	if _, err := p.db.Exec(ctx, query, table, header); err != nil {
		return fmt.Errorf("failed to set header: %w", err)
	}
	return nil
}

// Rows returns all data rows ordered by insertion
func (p *PostgresBackend) Rows(ctx context.Context, table string) ([][]string, error) {
	if _, err := p.Header(ctx, table); err != nil {
		return nil, err
	}

	query := `
		SELECT cells
		FROM rowstore_rows
		WHERE table_name = $1
		ORDER BY id
	`
	rows, err := p.db.Query(ctx, query, table)
	if err != nil {
		return nil, fmt.Errorf("failed to query rows: %w", err)
	}
	defer rows.Close()

	out := make([][]string, 0)
	for rows.Next() {
		var cells []string
		if err := rows.Scan(&cells); err != nil {
			return nil, fmt.Errorf("failed to scan row: %w", err)
		}
		out = append(out, cells)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate rows: %w", err)
	}
	return out, nil
}

// Append copies rows in one round trip
func (p *PostgresBackend) Append(ctx context.Context, table string, rows [][]string) error {
	if len(rows) == 0 {
		return nil
	}

	src := make([][]any, len(rows))
	for i, row := range rows {
		src[i] = []any{table, row}
	}

	_, err := p.db.CopyFrom(
		ctx,
		pgx.Identifier{"rowstore_rows"},
		[]string{"table_name", "cells"},
		pgx.CopyFromRows(src),
	)
	if err != nil {
		return fmt.Errorf("failed to append rows: %w", err)
	}
	return nil
}

// UpdateRow overwrites the row at index
func (p *PostgresBackend) UpdateRow(ctx context.Context, table string, index int, row []string) error {
	query := `
		UPDATE rowstore_rows SET cells = $3
		WHERE id = (
			SELECT id FROM rowstore_rows
			WHERE table_name = $1
			ORDER BY id
			OFFSET $2 LIMIT 1
		)
	`
	result, err := p.db.Exec(ctx, query, table, index, row)
	if err != nil {
		return fmt.Errorf("failed to update row: %w", err)
	}
	if result.RowsAffected() == 0 {
		return fmt.Errorf("row %d: %w", index, ErrNotFound)
	}
	return nil
}

// DeleteRow removes the row at index
func (p *PostgresBackend) DeleteRow(ctx context.Context, table string, index int) error {
	query := `
		DELETE FROM rowstore_rows
		WHERE id = (
			SELECT id FROM rowstore_rows
			WHERE table_name = $1
			ORDER BY id
			OFFSET $2 LIMIT 1
		)
	`
	result, err := p.db.Exec(ctx, query, table, index)
	if err != nil {
		return fmt.Errorf("failed to delete row: %w", err)
	}
	if result.RowsAffected() == 0 {
		return fmt.Errorf("row %d: %w", index, ErrNotFound)
	}
	return nil
}
