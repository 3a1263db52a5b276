//go:build integration

package tabular

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stackmill/docent/internal/testutil"
)

func TestPostgresSource_Integration(t *testing.T) {
	ctx := context.Background()

	pc := testutil.NewPostgresContainer(ctx, t)
	defer pc.Terminate(ctx)

	pool := testutil.NewTestPool(ctx, t, pc)
	defer pool.Close()

	_, err := pool.Exec(ctx, `
		CREATE TABLE orders (
			id SERIAL PRIMARY KEY,
			region TEXT NOT NULL,
			amount NUMERIC(10,2) NOT NULL,
			placed_at TIMESTAMPTZ NOT NULL DEFAULT now()
		)`)
	require.NoError(t, err)

	_, err = pool.Exec(ctx, `
		INSERT INTO orders (region, amount) VALUES
			('north', 120.50),
			('north', 80.00),
			('south', 45.25)`)
	require.NoError(t, err)

	source := NewPostgresSource(pool)

	t.Run("lists public tables", func(t *testing.T) {
		tables, err := source.ListTables(ctx)
		require.NoError(t, err)
		assert.Contains(t, tables, "orders")
	})

	t.Run("loads a table into the loader", func(t *testing.T) {
		loader, err := NewLoader()
		require.NoError(t, err)
		defer loader.Close()

		name, err := source.LoadTable(ctx, loader, "orders", 0)
		require.NoError(t, err)
		assert.Equal(t, "docent.orders", name)

		info, err := loader.Info(ctx, name)
		require.NoError(t, err)
		assert.Equal(t, 3, info.RowCount)
		assert.Contains(t, info.Columns, "region")
		assert.Contains(t, info.Columns, "amount")

		result, err := loader.Query(ctx, QueryParams{
			Table:       name,
			Columns:     []string{"amount"},
			GroupBy:     []string{"region"},
			Aggregation: "sum",
		})
		require.NoError(t, err)
		require.Len(t, result.Rows, 2)
	})

	t.Run("respects row limit", func(t *testing.T) {
		loader, err := NewLoader()
		require.NoError(t, err)
		defer loader.Close()

		name, err := source.LoadTable(ctx, loader, "orders", 2)
		require.NoError(t, err)

		info, err := loader.Info(ctx, name)
		require.NoError(t, err)
		assert.Equal(t, 2, info.RowCount)
	})

	t.Run("missing table errors", func(t *testing.T) {
		loader, err := NewLoader()
		require.NoError(t, err)
		defer loader.Close()

		_, err = source.LoadTable(ctx, loader, "nope", 0)
		assert.Error(t, err)
	})
}
