package memory

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"jarvis/internal/datastore"
	"jarvis/internal/datastore/datastoretest"
)

func TestRecent_Unavailable(t *testing.T) {
	s := New(nil, nil)
	assert.False(t, s.Available())

	got := s.Recent(context.Background(), 4)
	assert.NotNil(t, got)
	assert.Empty(t, got)
	assert.NoError(t, s.Save(context.Background(), "q", "r"))
}

func TestRecent_NilStore(t *testing.T) {
	var s *Store
	assert.Empty(t, s.Recent(context.Background(), 4))
}

func TestRecent_DatastoreError(t *testing.T) {
	s := New(&datastoretest.Fake{Err: errors.New("offline")}, nil)
	assert.Empty(t, s.Recent(context.Background(), 4))
	assert.Error(t, s.Save(context.Background(), "q", "r"))
}

func TestRecent_NewestFirstWithLimit(t *testing.T) {
	fake := &datastoretest.Fake{}
	s := New(fake, nil)
	ctx := context.Background()

	for i := 1; i <= 5; i++ {
		require.NoError(t, s.Save(ctx, fmt.Sprintf("q%d", i), fmt.Sprintf("r%d", i)))
	}

	got := s.Recent(ctx, 3)
	require.Len(t, got, 3)
	assert.Equal(t, Record{Query: "q5", Response: "r5"}, got[0])
	assert.Equal(t, Record{Query: "q3", Response: "r3"}, got[2])

	assert.Len(t, s.Recent(ctx, 0), DefaultLimit)
}

func TestRecent_SQLite(t *testing.T) {
	db, err := datastore.NewSQLite(filepath.Join(t.TempDir(), "mem.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	s := New(db, nil)
	ctx := context.Background()
	require.NoError(t, s.Save(ctx, "what is go", "a language"))
	require.NoError(t, s.Save(ctx, "who made it", "google"))

	got := s.Recent(ctx, 4)
	require.Len(t, got, 2)
	assert.Equal(t, "who made it", got[0].Query)
}
