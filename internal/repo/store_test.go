package repo

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func testRoundTrip(t *testing.T, s GroupStore) {
	t.Helper()
	ctx := context.Background()

	loaded, err := s.Load(ctx)
	require.NoError(t, err)
	require.Empty(t, loaded)

	groups := []StoredGroup{
		{GroupID: "g1", MemberKeys: []string{"a|x", "b|y"}},
		{GroupID: "g2", MemberKeys: []string{"c|z"}},
	}
	require.NoError(t, s.Save(ctx, groups))

	loaded, err = s.Load(ctx)
	require.NoError(t, err)
	require.ElementsMatch(t, groups, loaded)

	// Save замещает снимок целиком
	require.NoError(t, s.Save(ctx, groups[:1]))
	loaded, err = s.Load(ctx)
	require.NoError(t, err)
	require.Equal(t, groups[:1], loaded)
}

func TestMemoryStore(t *testing.T) {
	testRoundTrip(t, NewMemoryStore())
}

func TestSQLiteStore(t *testing.T) {
	s, err := NewSQLiteStore(filepath.Join(t.TempDir(), "groups.db"))
	require.NoError(t, err)
	defer s.Close()
	testRoundTrip(t, s)
}
