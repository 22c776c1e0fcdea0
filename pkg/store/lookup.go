package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/coolbeans/tramita/pkg/types"
)

// FetchLookup reads every row of the lookup table in table order.
// No filtering is pushed down; NULL names or CPFs are read as empty strings.
func (d *Database) FetchLookup(ctx context.Context, schema string) ([]types.LookupEntry, error) {
	query := fmt.Sprintf("SELECT nome_camara, cpf FROM %s",
		d.QualifiedName(Table{Schema: schema, Name: LookupTable}))

	rows, err := d.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("query lookup table: %w", err)
	}
	defer rows.Close()

	var entries []types.LookupEntry
	for rows.Next() {
		var nomeCamara, cpf sql.NullString
		if err := rows.Scan(&nomeCamara, &cpf); err != nil {
			return nil, fmt.Errorf("scan lookup row: %w", err)
		}
		entries = append(entries, types.LookupEntry{
			NomeCamara: nomeCamara.String,
			Cpf:        cpf.String,
		})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("read lookup table: %w", err)
	}
	return entries, nil
}
