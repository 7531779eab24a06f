package store

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/datasage-ai/datasage/internal/types"
)

func openSeeded(t *testing.T) *Store {
	t.Helper()
	path := filepath.Join(t.TempDir(), "test.db")
	s, err := Open("sqlite://" + path)
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	require.NoError(t, s.Seed(context.Background()))
	return s
}

func TestDetectKind(t *testing.T) {
	tests := []struct {
		dsn  string
		want string
	}{
		{"sqlite:///data/demo.db", "sqlite"},
		{"sqlite://demo.db", "sqlite"},
		{"demo.db", "sqlite"},
		{"postgresql://host/db", "postgresql"},
		{"postgres://host/db", "postgresql"},
		{"mysql://host/db", "mysql"},
		{"redis://host", "unknown"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, DetectKind(tt.dsn), tt.dsn)
	}
}

func TestOpenRejectsUnsupportedKind(t *testing.T) {
	_, err := Open("postgresql://localhost/sales")
	require.Error(t, err)
	assert.Equal(t, ErrUnsupportedKind, types.CodeOf(err))
}

func TestOpenRejectsEmptyDescriptor(t *testing.T) {
	_, err := Open("")
	require.Error(t, err)
	assert.Equal(t, ErrConnectionInvalid, types.CodeOf(err))
}

func TestSchemaDiscovery(t *testing.T) {
	s := openSeeded(t)

	schema, err := s.Schema(context.Background())
	require.NoError(t, err)

	assert.ElementsMatch(t,
		[]string{"categories", "products", "users", "sales", "inventory_log"},
		schema.Tables())

	products := schema["products"]
	assert.Contains(t, products.Columns, "product_name")
	assert.Contains(t, products.Columns, "price")
	assert.Equal(t, "REAL", products.ColumnTypes["price"])
	assert.Contains(t, products.ForeignKeys, "category_id -> categories.category_id")

	sales := schema["sales"]
	assert.Contains(t, sales.ForeignKeys, "product_id -> products.product_id")
	assert.Contains(t, sales.ForeignKeys, "user_id -> users.user_id")
}

func TestSchemaDiscoveryImplicitForeignKeyTarget(t *testing.T) {
	s := openSeeded(t)
	ctx := context.Background()

	// REFERENCES without a column list makes foreign_key_list report a NULL
	// target column; discovery must still render the edge.
	_, err := s.conn.ExecContext(ctx, `CREATE TABLE category_notes (
		note_id INTEGER PRIMARY KEY,
		category_id INTEGER REFERENCES categories,
		body TEXT
	)`)
	require.NoError(t, err)

	schema, err := s.Schema(ctx)
	require.NoError(t, err)

	notes := schema["category_notes"]
	assert.Contains(t, notes.ForeignKeys, "category_id -> categories")
}

func TestSchemaSubset(t *testing.T) {
	s := openSeeded(t)

	schema, err := s.Schema(context.Background())
	require.NoError(t, err)

	sub := schema.Subset([]string{"sales", "products", "no_such_table"})
	assert.ElementsMatch(t, []string{"sales", "products"}, sub.Tables())
}

func TestQueryReturnsOrderedResult(t *testing.T) {
	s := openSeeded(t)

	rs, err := s.Query(context.Background(),
		`SELECT category_name, description FROM categories ORDER BY category_name LIMIT 3`)
	require.NoError(t, err)

	assert.Equal(t, []string{"category_name", "description"}, rs.Columns)
	require.Len(t, rs.Rows, 3)
	assert.Equal(t, "Beauty", rs.Rows[0][0])
	assert.False(t, rs.Empty())
}

func TestQueryAggregates(t *testing.T) {
	s := openSeeded(t)

	rs, err := s.Query(context.Background(), `SELECT COUNT(*) AS n FROM sales`)
	require.NoError(t, err)
	require.Len(t, rs.Rows, 1)
	assert.Equal(t, "300", rs.Rows[0][0])
}

func TestQueryFailureIsCoded(t *testing.T) {
	s := openSeeded(t)

	_, err := s.Query(context.Background(), `SELECT * FROM missing_table`)
	require.Error(t, err)
	assert.Equal(t, ErrQueryFailed, types.CodeOf(err))
}

func TestResultSetColumnHelpers(t *testing.T) {
	rs := &ResultSet{
		Columns: []string{"name", "total"},
		Rows:    [][]string{{"a", "1"}, {"b", "2"}},
	}

	assert.True(t, rs.HasColumn("total"))
	assert.False(t, rs.HasColumn("missing"))
	assert.Equal(t, []string{"1", "2"}, rs.Column("total"))
	assert.Nil(t, rs.Column("missing"))

	var empty *ResultSet
	assert.True(t, empty.Empty())
	assert.False(t, empty.HasColumn("x"))
}

func TestSeedIsDeterministic(t *testing.T) {
	a := openSeeded(t)
	b := openSeeded(t)

	qa, err := a.Query(context.Background(),
		`SELECT product_id, quantity, total_amount FROM sales ORDER BY sale_id LIMIT 10`)
	require.NoError(t, err)
	qb, err := b.Query(context.Background(),
		`SELECT product_id, quantity, total_amount FROM sales ORDER BY sale_id LIMIT 10`)
	require.NoError(t, err)

	assert.Equal(t, qa.Rows, qb.Rows)
}
