package scanner

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"heavymetal/catalog"
	"heavymetal/store"
	"heavymetal/types"
)

// scanFixture wires a scanner against a real store with stubbed extraction,
// so tests control the tree contents without needing real audio files
type scanFixture struct {
	store    *store.Store
	resolver *catalog.Resolver
	media    string
	cfg      Config
}

func newScanFixture(t *testing.T, batchSize int) *scanFixture {
	t.Helper()

	st, err := store.Open(filepath.Join(t.TempDir(), "catalog.sqlite3"))
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() })

	f := &scanFixture{
		store:    st,
		resolver: catalog.NewResolver(st),
		media:    t.TempDir(),
	}
	f.cfg = Config{
		BatchSize:      batchSize,
		CheckpointFile: filepath.Join(t.TempDir(), "checkpoint.txt"),
		Extract:        stubExtract,
		IsCandidate: func(path string) bool {
			return strings.HasSuffix(path, ".mp3")
		},
	}
	return f
}

// stubExtract derives all fields from the filename so assertions are
// deterministic
func stubExtract(path string) *types.Metadata {
	base := filepath.Base(path)
	return &types.Metadata{
		Title:    strings.TrimSuffix(base, ".mp3"),
		Artist:   "Stub Artist",
		Album:    "Stub Album",
		Genre:    "Metal",
		Path:     path,
		Filename: base,
	}
}

func (f *scanFixture) addFiles(t *testing.T, names ...string) []string {
	t.Helper()

	paths := make([]string, 0, len(names))
	for _, name := range names {
		path := filepath.Join(f.media, name)
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
		require.NoError(t, os.WriteFile(path, []byte("x"), 0644))
		paths = append(paths, path)
	}
	return paths
}

func (f *scanFixture) scan(t *testing.T, ctx context.Context) *types.ScanReport {
	t.Helper()

	report, err := New(f.store, f.resolver, f.cfg).Scan(ctx, f.media)
	require.NoError(t, err)
	return report
}

func TestScanIngestsWholeTree(t *testing.T) {
	f := newScanFixture(t, 2)
	f.addFiles(t, "a.mp3", "b.mp3", "sub/c.mp3", "sub/d.mp3", "sub/deep/e.mp3")
	f.addFiles(t, "cover.jpg", "notes.txt")

	report := f.scan(t, context.Background())

	assert.Equal(t, types.ScanStateDone, report.State)
	assert.Equal(t, 5, report.Processed)
	assert.Equal(t, 5, report.Succeeded)
	assert.Equal(t, 3, report.Batches)

	tracks, err := f.store.ListTracks(100, 0)
	require.NoError(t, err)
	assert.Len(t, tracks, 5)

	// Shared tags resolve to a single artist and album row
	artists, err := f.store.ListArtists()
	require.NoError(t, err)
	assert.Len(t, artists, 1)
	albums, err := f.store.ListAlbums()
	require.NoError(t, err)
	assert.Len(t, albums, 1)

	// Clean completion removes the checkpoint
	_, ok := LoadCheckpoint(f.cfg.CheckpointFile)
	assert.False(t, ok)
}

func TestScanLinksTracksToAudio(t *testing.T) {
	f := newScanFixture(t, 10)
	paths := f.addFiles(t, "song.mp3")

	f.scan(t, context.Background())

	tracks, err := f.store.ListTracks(10, 0)
	require.NoError(t, err)
	require.Len(t, tracks, 1)

	detail, err := f.store.GetTrackDetail(tracks[0].UUID)
	require.NoError(t, err)
	assert.Equal(t, "song", detail.Name)
	assert.Equal(t, "Metal", detail.Genre)
	assert.Equal(t, paths[0], detail.Audio.Path)
	assert.Equal(t, "song.mp3", detail.Audio.Name)
	require.NotNil(t, detail.Artist)
	assert.Equal(t, "Stub Artist", detail.Artist.Name)
	require.NotNil(t, detail.Album)
	assert.Equal(t, "Stub Album", detail.Album.Name)
}

func TestScanEmptyTree(t *testing.T) {
	f := newScanFixture(t, 10)

	report := f.scan(t, context.Background())

	assert.Equal(t, types.ScanStateDone, report.State)
	assert.Zero(t, report.Processed)
	assert.Zero(t, report.Batches)
}

func TestScanReportsProgressPerBatch(t *testing.T) {
	f := newScanFixture(t, 2)
	f.addFiles(t, "a.mp3", "b.mp3", "c.mp3")

	var reports []types.ScanReport
	var lastFiles []string
	f.cfg.OnBatch = func(report types.ScanReport, lastFile string) {
		reports = append(reports, report)
		lastFiles = append(lastFiles, lastFile)
	}

	f.scan(t, context.Background())

	require.Len(t, reports, 2)
	assert.Equal(t, 2, reports[0].Processed)
	assert.Equal(t, 3, reports[1].Processed)
	assert.Equal(t, filepath.Join(f.media, "b.mp3"), lastFiles[0])
	assert.Equal(t, filepath.Join(f.media, "c.mp3"), lastFiles[1])
}

func TestScanResumesFromCheckpoint(t *testing.T) {
	f := newScanFixture(t, 10)
	paths := f.addFiles(t, "a.mp3", "b.mp3", "c.mp3", "d.mp3")

	// Pretend an earlier run committed through b.mp3
	require.NoError(t, SaveCheckpoint(f.cfg.CheckpointFile, paths[1]))

	report := f.scan(t, context.Background())

	assert.Equal(t, types.ScanStateDone, report.State)
	assert.Equal(t, 2, report.Processed)

	tracks, err := f.store.ListTracks(10, 0)
	require.NoError(t, err)
	require.Len(t, tracks, 2)
	names := []string{tracks[0].Name, tracks[1].Name}
	assert.ElementsMatch(t, []string{"c", "d"}, names)
}

func TestScanInterruptionFlushesAndResumes(t *testing.T) {
	f := newScanFixture(t, 2)
	f.addFiles(t, "a.mp3", "b.mp3", "c.mp3", "d.mp3", "e.mp3")

	// Cancel after the first committed batch, as a signal handler would
	ctx, cancel := context.WithCancel(context.Background())
	f.cfg.OnBatch = func(types.ScanReport, string) { cancel() }

	report := f.scan(t, ctx)
	assert.Equal(t, types.ScanStateInterrupted, report.State)
	assert.Equal(t, 2, report.Processed)

	checkpoint, ok := LoadCheckpoint(f.cfg.CheckpointFile)
	require.True(t, ok)
	assert.Equal(t, filepath.Join(f.media, "b.mp3"), checkpoint)

	// The next run picks up where the first left off
	f.cfg.OnBatch = nil
	report = f.scan(t, context.Background())
	assert.Equal(t, types.ScanStateDone, report.State)
	assert.Equal(t, 3, report.Processed)

	tracks, err := f.store.ListTracks(10, 0)
	require.NoError(t, err)
	assert.Len(t, tracks, 5)

	_, ok = LoadCheckpoint(f.cfg.CheckpointFile)
	assert.False(t, ok)
}

func TestScanCancelledBeforeStart(t *testing.T) {
	f := newScanFixture(t, 10)
	f.addFiles(t, "a.mp3")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	report := f.scan(t, ctx)
	assert.Equal(t, types.ScanStateInterrupted, report.State)
	assert.Zero(t, report.Processed)
}

func TestConfigDefaults(t *testing.T) {
	s := New(nil, nil, Config{})

	assert.Equal(t, 100, s.cfg.BatchSize)
	assert.Equal(t, 4, s.cfg.MaxWorkers)
	assert.Equal(t, "library_builder_checkpoint.txt", s.cfg.CheckpointFile)
	assert.NotNil(t, s.cfg.Extract)
	assert.NotNil(t, s.cfg.IsCandidate)
}
