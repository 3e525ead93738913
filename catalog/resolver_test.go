package catalog

import (
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"heavymetal/store"
	"heavymetal/types"
)

func newTestStore(t *testing.T) *store.Store {
	t.Helper()

	st, err := store.Open(filepath.Join(t.TempDir(), "catalog.sqlite3"))
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() })

	return st
}

func TestResolveArtistCreatesOnce(t *testing.T) {
	st := newTestStore(t)
	r := NewResolver(st)

	batch, err := st.Begin()
	require.NoError(t, err)

	first, err := r.ResolveArtist(batch, "Black Sabbath")
	require.NoError(t, err)
	require.NotEmpty(t, first)

	second, err := r.ResolveArtist(batch, "Black Sabbath")
	require.NoError(t, err)
	assert.Equal(t, first, second)

	require.NoError(t, batch.Commit())

	artists, err := st.ListArtists()
	require.NoError(t, err)
	require.Len(t, artists, 1)
	assert.Equal(t, first, artists[0].UUID)
}

func TestResolveEmptyNameYieldsNoIdentity(t *testing.T) {
	st := newTestStore(t)
	r := NewResolver(st)

	batch, err := st.Begin()
	require.NoError(t, err)
	defer batch.Rollback()

	artistID, err := r.ResolveArtist(batch, "")
	require.NoError(t, err)
	assert.Empty(t, artistID)

	albumID, err := r.ResolveAlbum(batch, "")
	require.NoError(t, err)
	assert.Empty(t, albumID)
}

func TestResolverNamesAreCaseSensitive(t *testing.T) {
	st := newTestStore(t)
	r := NewResolver(st)

	batch, err := st.Begin()
	require.NoError(t, err)

	first, err := r.ResolveArtist(batch, "Opeth")
	require.NoError(t, err)
	second, err := r.ResolveArtist(batch, "opeth")
	require.NoError(t, err)
	assert.NotEqual(t, first, second)

	require.NoError(t, batch.Commit())
}

func TestSeedReusesExistingRows(t *testing.T) {
	st := newTestStore(t)

	// First run creates the rows
	first := NewResolver(st)
	batch, err := st.Begin()
	require.NoError(t, err)
	artistID, err := first.ResolveArtist(batch, "Iron Maiden")
	require.NoError(t, err)
	albumID, err := first.ResolveAlbum(batch, "Powerslave")
	require.NoError(t, err)
	require.NoError(t, batch.Commit())

	// A fresh resolver seeded from the store reuses them
	second := NewResolver(st)
	require.NoError(t, second.Seed())

	artists, albums := second.CachedCounts()
	assert.Equal(t, 1, artists)
	assert.Equal(t, 1, albums)

	batch, err = st.Begin()
	require.NoError(t, err)
	defer batch.Rollback()

	gotArtist, err := second.ResolveArtist(batch, "Iron Maiden")
	require.NoError(t, err)
	assert.Equal(t, artistID, gotArtist)

	gotAlbum, err := second.ResolveAlbum(batch, "Powerslave")
	require.NoError(t, err)
	assert.Equal(t, albumID, gotAlbum)
}

// The cache is not invalidated when a batch rolls back: the name keeps the
// identity minted for it even though the row was discarded. Mirrors the
// run-level semantics where a rolled-back batch costs its files, not the run.
func TestResolverCacheSurvivesRollback(t *testing.T) {
	st := newTestStore(t)
	r := NewResolver(st)

	batch, err := st.Begin()
	require.NoError(t, err)
	first, err := r.ResolveArtist(batch, "Bathory")
	require.NoError(t, err)
	require.NoError(t, batch.Rollback())

	_, err = st.GetArtistByName("Bathory")
	assert.ErrorIs(t, err, store.ErrNotFound)

	batch, err = st.Begin()
	require.NoError(t, err)
	defer batch.Rollback()

	second, err := r.ResolveArtist(batch, "Bathory")
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

type stubLookup struct{}

func (stubLookup) GetArtistByName(string) (*types.Artist, error) { return nil, store.ErrNotFound }
func (stubLookup) GetAlbumByName(string) (*types.Album, error)   { return nil, store.ErrNotFound }
func (stubLookup) ListArtists() ([]types.Artist, error)          { return nil, nil }
func (stubLookup) ListAlbums() ([]types.Album, error)            { return nil, nil }

type countingWriter struct {
	mu      sync.Mutex
	artists int
	albums  int
}

func (w *countingWriter) InsertArtist(types.Artist) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.artists++
	return nil
}

func (w *countingWriter) InsertAlbum(types.Album) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.albums++
	return nil
}

func TestConcurrentResolutionCreatesOneRow(t *testing.T) {
	r := NewResolver(stubLookup{})
	w := &countingWriter{}

	const workers = 32
	ids := make([]string, workers)

	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			id, err := r.ResolveArtist(w, "Candlemass")
			assert.NoError(t, err)
			ids[i] = id
		}(i)
	}
	wg.Wait()

	assert.Equal(t, 1, w.artists)
	for _, id := range ids {
		assert.Equal(t, ids[0], id)
	}
}
