package catalog_test

import (
	"os"
	"path"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/amc-systems/goamc/goamc"
	"github.com/amc-systems/goamc/libamc"
	"github.com/amc-systems/goamc/libamc/algebra"
	"github.com/amc-systems/goamc/libamc/catalog"
)

func reduceFixture(t *testing.T) (*algebra.Equation, *algebra.ReducedEquation) {
	t.Helper()
	eqs, err := libamc.NewParser().Parse("fixture.amc", `
declare X { mode = 2, scalar = true }
declare A { mode = 2, scalar = true }
X_ab = A_ab;
`)
	require.NoError(t, err)
	require.Len(t, eqs, 1)

	red, err := libamc.ReduceEquation(eqs[0], goamc.ReduceOpts{})
	require.NoError(t, err)
	return eqs[0], red
}

func TestCatalogInMemory(t *testing.T) {
	cat, err := catalog.OpenCatalog(catalog.Opts{})
	require.NoError(t, err)
	defer cat.Close()

	eq, red := reduceFixture(t)
	opts := goamc.ReduceOpts{}

	_, found, err := cat.Get(eq, opts)
	require.NoError(t, err)
	require.False(t, found)

	require.NoError(t, cat.Put(eq, red, opts))
	require.EqualValues(t, 1, cat.NumEquations())

	hit, found, err := cat.Get(eq, opts)
	require.NoError(t, err)
	require.True(t, found)
	require.Equal(t, red.String(), hit)

	// Same equation under different options is a distinct entry.
	other := goamc.ReduceOpts{CollectNineJs: true}
	_, found, err = cat.Get(eq, other)
	require.NoError(t, err)
	require.False(t, found)

	// Re-putting the same entry does not double count.
	require.NoError(t, cat.Put(eq, red, opts))
	require.EqualValues(t, 1, cat.NumEquations())
}

func TestCatalogPersists(t *testing.T) {
	dir, err := os.MkdirTemp("", "goamc*")
	require.NoError(t, err)
	defer os.RemoveAll(dir)

	dbPath := path.Join(dir, "TestCatalogPersists")
	eq, red := reduceFixture(t)
	opts := goamc.ReduceOpts{}

	cat, err := catalog.OpenCatalog(catalog.Opts{DbPathName: dbPath})
	require.NoError(t, err)
	require.NoError(t, cat.Put(eq, red, opts))
	require.NoError(t, cat.Close())

	cat, err = catalog.OpenCatalog(catalog.Opts{DbPathName: dbPath})
	require.NoError(t, err)
	defer cat.Close()

	require.EqualValues(t, 1, cat.NumEquations())
	hit, found, err := cat.Get(eq, opts)
	require.NoError(t, err)
	require.True(t, found)
	require.Equal(t, red.String(), hit)

	count := 0
	err = cat.Select(opts, func(equation, reduced string) bool {
		count++
		require.Equal(t, eq.String(), equation)
		require.Equal(t, red.String(), reduced)
		return true
	})
	require.NoError(t, err)
	require.Equal(t, 1, count)
}

func TestCatalogReadOnlyNeedsPath(t *testing.T) {
	_, err := catalog.OpenCatalog(catalog.Opts{ReadOnly: true})
	require.ErrorIs(t, err, goamc.ErrBadCatalogParam)
}
