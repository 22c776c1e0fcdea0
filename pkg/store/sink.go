package store

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/lib/pq"

	"github.com/coolbeans/tramita/pkg/types"
)

// WriteMode selects what happens to rows already in the destination.
type WriteMode string

const (
	// WriteAppend inserts rows next to existing ones. Running the same
	// input twice stores every row twice.
	WriteAppend WriteMode = "append"

	// WriteReplace deletes existing rows before inserting, in one transaction.
	WriteReplace WriteMode = "replace"
)

// sqliteBatchRows keeps multi-row inserts under SQLite's bound-parameter limit.
const sqliteBatchRows = 200

// WriteMerged creates the destination table if needed and bulk-inserts rows
// in a single transaction. It returns the number of rows written.
func (d *Database) WriteMerged(ctx context.Context, table Table, rows []types.Merged, mode WriteMode) (int, error) {
	tx, err := d.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("begin write to %s: %w", table, err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	qualifiedName := d.QualifiedName(table)
	if _, err := tx.ExecContext(ctx, createTableStatement(qualifiedName)); err != nil {
		return 0, fmt.Errorf("create %s: %w", table, err)
	}
	if mode == WriteReplace {
		if _, err := tx.ExecContext(ctx, "DELETE FROM "+qualifiedName); err != nil {
			return 0, fmt.Errorf("clear %s: %w", table, err)
		}
	}

	switch d.dialect {
	case DialectPostgres:
		err = copyRows(ctx, tx, table, rows)
	default:
		err = insertRows(ctx, tx, qualifiedName, rows)
	}
	if err != nil {
		return 0, fmt.Errorf("insert into %s: %w", table, err)
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit write to %s: %w", table, err)
	}
	return len(rows), nil
}

// CountRows returns the number of rows in a table.
func (d *Database) CountRows(ctx context.Context, table Table) (int, error) {
	var count int
	err := d.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM "+d.QualifiedName(table)).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("count rows in %s: %w", table, err)
	}
	return count, nil
}

// ReadMerged returns every row of a merged table, in storage order.
func (d *Database) ReadMerged(ctx context.Context, table Table) ([]types.Merged, error) {
	query := fmt.Sprintf("SELECT %s FROM %s",
		strings.Join(types.MergedColumns(), ", "), d.QualifiedName(table))
	rows, err := d.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("query %s: %w", table, err)
	}
	defer rows.Close()

	var merged []types.Merged
	for rows.Next() {
		var m types.Merged
		if err := rows.Scan(&m.Projeto, &m.Ementa, &m.Autor, &m.DataPublicacao,
			&m.Lei, &m.Ano, &m.Status, &m.Cpfs); err != nil {
			return nil, fmt.Errorf("scan %s row: %w", table, err)
		}
		merged = append(merged, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("read %s: %w", table, err)
	}
	return merged, nil
}

func createTableStatement(qualifiedName string) string {
	columns := types.MergedColumns()
	definitions := make([]string, len(columns))
	for i, column := range columns {
		definitions[i] = pq.QuoteIdentifier(column) + " TEXT"
	}
	return fmt.Sprintf("CREATE TABLE IF NOT EXISTS %s (%s)", qualifiedName, strings.Join(definitions, ", "))
}

// copyRows streams rows through COPY FROM STDIN.
func copyRows(ctx context.Context, tx *sql.Tx, table Table, rows []types.Merged) error {
	stmt, err := tx.PrepareContext(ctx, pq.CopyInSchema(table.Schema, table.Name, types.MergedColumns()...))
	if err != nil {
		return err
	}
	for _, row := range rows {
		if _, err := stmt.ExecContext(ctx, row.Values()...); err != nil {
			_ = stmt.Close()
			return err
		}
	}
	if _, err := stmt.ExecContext(ctx); err != nil {
		_ = stmt.Close()
		return err
	}
	return stmt.Close()
}

// insertRows writes rows with batched multi-row INSERT statements.
func insertRows(ctx context.Context, tx *sql.Tx, qualifiedName string, rows []types.Merged) error {
	columns := types.MergedColumns()
	placeholder := "(" + strings.TrimSuffix(strings.Repeat("?, ", len(columns)), ", ") + ")"
	prefix := fmt.Sprintf("INSERT INTO %s (%s) VALUES ", qualifiedName, strings.Join(columns, ", "))

	for start := 0; start < len(rows); start += sqliteBatchRows {
		end := min(start+sqliteBatchRows, len(rows))
		batch := rows[start:end]

		placeholders := make([]string, len(batch))
		args := make([]any, 0, len(batch)*len(columns))
		for i, row := range batch {
			placeholders[i] = placeholder
			args = append(args, row.Values()...)
		}
		if _, err := tx.ExecContext(ctx, prefix+strings.Join(placeholders, ", "), args...); err != nil {
			return err
		}
	}
	return nil
}
