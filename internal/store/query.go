package store

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/datasage-ai/datasage/internal/types"
)

// ResultSet is an ordered tabular query result. Column order follows the
// query's select list; row order follows the store's response.
type ResultSet struct {
	Columns []string   `json:"columns"`
	Rows    [][]string `json:"rows"`
}

// Empty reports whether the result carries no rows.
func (r *ResultSet) Empty() bool {
	return r == nil || len(r.Rows) == 0
}

// HasColumn reports whether the named column is present.
func (r *ResultSet) HasColumn(name string) bool {
	if r == nil {
		return false
	}
	for _, col := range r.Columns {
		if col == name {
			return true
		}
	}
	return false
}

// Column returns the values of the named column in row order.
func (r *ResultSet) Column(name string) []string {
	if r == nil {
		return nil
	}
	idx := -1
	for i, col := range r.Columns {
		if col == name {
			idx = i
			break
		}
	}
	if idx < 0 {
		return nil
	}
	out := make([]string, 0, len(r.Rows))
	for _, row := range r.Rows {
		if idx < len(row) {
			out = append(out, row[idx])
		}
	}
	return out
}

// Query executes a read query and scans every value into its string form.
// The caller decides what to run; validation happens upstream.
func (s *Store) Query(ctx context.Context, query string) (*ResultSet, error) {
	rows, err := s.conn.QueryContext(ctx, query)
	if err != nil {
		return nil, types.WrapError(ErrQueryFailed, "query execution failed", err)
	}
	defer rows.Close()

	columns, err := rows.Columns()
	if err != nil {
		return nil, types.WrapError(ErrQueryFailed, "failed to read result columns", err)
	}

	result := &ResultSet{Columns: columns}
	values := make([]any, len(columns))
	scanTargets := make([]any, len(columns))
	for i := range values {
		scanTargets[i] = &values[i]
	}

	for rows.Next() {
		if err := rows.Scan(scanTargets...); err != nil {
			return nil, types.WrapError(ErrQueryFailed, "failed to scan result row", err)
		}
		row := make([]string, len(columns))
		for i, v := range values {
			row[i] = formatValue(v)
		}
		result.Rows = append(result.Rows, row)
	}
	if err := rows.Err(); err != nil {
		return nil, types.WrapError(ErrQueryFailed, "failed to iterate result rows", err)
	}

	return result, nil
}

// formatValue renders a scanned driver value as text.
func formatValue(v any) string {
	switch val := v.(type) {
	case nil:
		return ""
	case []byte:
		return string(val)
	case string:
		return val
	case int64:
		return strconv.FormatInt(val, 10)
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(val)
	case time.Time:
		return val.Format(time.RFC3339)
	default:
		return fmt.Sprintf("%v", val)
	}
}
