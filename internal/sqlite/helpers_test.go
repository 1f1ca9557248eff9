package sqlite

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/mesh-intelligence/dexhub/pkg/types"
)

// newTestBackend attaches a backend to a fresh temp directory and detaches it
// when the test ends.
func newTestBackend(t *testing.T) *Backend {
	t.Helper()

	b := NewBackend()
	require.NoError(t, b.Attach(types.Config{
		Backend: types.BackendSQLite,
		DataDir: t.TempDir(),
	}))
	t.Cleanup(func() { b.Detach() })
	return b
}

func bulbasaur() types.Creature {
	return types.Creature{
		ID:    1,
		Name:  "Bulbasaur",
		Types: []types.TypeTag{types.TypeGrass, types.TypePoison},
		Image: types.Image{URL: "https://example.com/1.png"},
	}
}

func charmander() types.Creature {
	return types.Creature{
		ID:    4,
		Name:  "Charmander",
		Types: []types.TypeTag{types.TypeFire},
		Image: types.Image{URL: "https://example.com/4.png"},
	}
}

func seedTestBackend(t *testing.T, b *Backend, creatures ...types.Creature) {
	t.Helper()
	require.NoError(t, b.InsertAll(context.Background(), creatures))
}
