package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/datasage-ai/datasage/internal/types"
)

// Table describes one table: its columns, their type labels, and its
// outgoing foreign-key edges rendered as "col -> table.col".
type Table struct {
	Columns     []string          `json:"columns"`
	ColumnTypes map[string]string `json:"column_types"`
	ForeignKeys []string          `json:"foreign_keys"`
}

// Schema maps table names to their descriptions.
type Schema map[string]Table

// Tables returns the table names in the schema.
func (s Schema) Tables() []string {
	names := make([]string, 0, len(s))
	for name := range s {
		names = append(names, name)
	}
	return names
}

// Subset returns the schema restricted to the named tables. Unknown names
// are ignored so a bad selection can never widen access.
func (s Schema) Subset(tables []string) Schema {
	out := make(Schema, len(tables))
	for _, name := range tables {
		if table, ok := s[name]; ok {
			out[name] = table
		}
	}
	return out
}

// Schema discovers the store's tables, columns, type labels and foreign-key
// edges. For SQLite this walks sqlite_master plus the table_info and
// foreign_key_list pragmas.
func (s *Store) Schema(ctx context.Context) (Schema, error) {
	rows, err := s.conn.QueryContext(ctx,
		`SELECT name FROM sqlite_master WHERE type = 'table' AND name NOT LIKE 'sqlite_%' ORDER BY name`)
	if err != nil {
		return nil, types.WrapError(ErrInspectionFailed, "failed to list tables", err)
	}
	defer rows.Close()

	var names []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, types.WrapError(ErrInspectionFailed, "failed to scan table name", err)
		}
		names = append(names, name)
	}
	if err := rows.Err(); err != nil {
		return nil, types.WrapError(ErrInspectionFailed, "failed to iterate tables", err)
	}

	schema := make(Schema, len(names))
	for _, name := range names {
		table, err := s.describeTable(ctx, name)
		if err != nil {
			return nil, err
		}
		schema[name] = table
	}
	return schema, nil
}

func (s *Store) describeTable(ctx context.Context, name string) (Table, error) {
	table := Table{ColumnTypes: make(map[string]string)}

	rows, err := s.conn.QueryContext(ctx, fmt.Sprintf(`PRAGMA table_info(%q)`, name))
	if err != nil {
		return table, types.WrapError(ErrInspectionFailed,
			fmt.Sprintf("failed to inspect columns of %s", name), err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			cid       int
			colName   string
			colType   string
			notNull   int
			dfltValue any
			pk        int
		)
		if err := rows.Scan(&cid, &colName, &colType, &notNull, &dfltValue, &pk); err != nil {
			return table, types.WrapError(ErrInspectionFailed,
				fmt.Sprintf("failed to scan column of %s", name), err)
		}
		table.Columns = append(table.Columns, colName)
		table.ColumnTypes[colName] = colType
	}
	if err := rows.Err(); err != nil {
		return table, types.WrapError(ErrInspectionFailed,
			fmt.Sprintf("failed to iterate columns of %s", name), err)
	}

	fks, err := s.conn.QueryContext(ctx, fmt.Sprintf(`PRAGMA foreign_key_list(%q)`, name))
	if err != nil {
		return table, types.WrapError(ErrInspectionFailed,
			fmt.Sprintf("failed to inspect foreign keys of %s", name), err)
	}
	defer fks.Close()

	for fks.Next() {
		var (
			id, seq                   int
			refTable, from            string
			to                        sql.NullString
			onUpdate, onDelete, match string
		)
		if err := fks.Scan(&id, &seq, &refTable, &from, &to, &onUpdate, &onDelete, &match); err != nil {
			return table, types.WrapError(ErrInspectionFailed,
				fmt.Sprintf("failed to scan foreign key of %s", name), err)
		}
		// REFERENCES with no column list reports a NULL target column; the
		// edge then points at the referenced table's primary key.
		edge := fmt.Sprintf("%s -> %s", from, refTable)
		if to.Valid {
			edge = fmt.Sprintf("%s -> %s.%s", from, refTable, to.String)
		}
		table.ForeignKeys = append(table.ForeignKeys, edge)
	}
	if err := fks.Err(); err != nil {
		return table, types.WrapError(ErrInspectionFailed,
			fmt.Sprintf("failed to iterate foreign keys of %s", name), err)
	}

	return table, nil
}
