package batch_test

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jblindsay/whitebox-tools-sub008/batch"
	"github.com/jblindsay/whitebox-tools-sub008/geospatialfiles/raster"
	"github.com/jblindsay/whitebox-tools-sub008/hydro"
	"github.com/jblindsay/whitebox-tools-sub008/structures"
)

var errMissingTile = errors.New("missing tile")

type memStore struct {
	mu        sync.Mutex
	tiles     map[string]*structures.RectangularArrayFloat64
	precision hydro.Precision
	saved     map[string]*batch.Tile
	saving    atomic.Int32
	maxSaves  atomic.Int32
}

func newMemStore() *memStore {
	return &memStore{
		tiles: make(map[string]*structures.RectangularArrayFloat64),
		saved: make(map[string]*batch.Tile),
	}
}

func (s *memStore) Load(_ context.Context, name string) (*batch.Tile, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	arr, ok := s.tiles[name]
	if !ok {
		return nil, errMissingTile
	}
	return &batch.Tile{Elevations: arr, Precision: s.precision}, nil
}

func (s *memStore) Save(_ context.Context, name string, tile *batch.Tile) error {
	n := s.saving.Add(1)
	defer s.saving.Add(-1)
	for {
		m := s.maxSaves.Load()
		if n <= m || s.maxSaves.CompareAndSwap(m, n) {
			break
		}
	}
	time.Sleep(time.Millisecond)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.saved[name] = tile
	return nil
}

func pitTile(t *testing.T) *structures.RectangularArrayFloat64 {
	t.Helper()
	values := make([][]float64, 5)
	for r := range values {
		values[r] = []float64{10, 10, 10, 10, 10}
	}
	values[2][2] = 2
	values[0][2] = 8
	arr, err := structures.NewRectangularArrayFloat64FromRows(values, -32768)
	require.NoError(t, err)
	return arr
}

func quietConfig(workers int) batch.Config {
	opts := hydro.DefaultOptions()
	opts.AutoIncrement = false
	opts.FlatIncrement = 0.001
	opts.Logger = log.New(io.Discard)
	return batch.Config{Workers: workers, Options: opts, Logger: log.New(io.Discard)}
}

func TestRunCorrectsEveryTile(t *testing.T) {
	store := newMemStore()
	var jobs []batch.Job
	for i := 0; i < 12; i++ {
		name := fmt.Sprintf("tile_%02d", i)
		store.tiles[name] = pitTile(t)
		jobs = append(jobs, batch.Job{Input: name, Output: name + "_out"})
	}

	summary, err := batch.Run(context.Background(), store, jobs, quietConfig(4))
	require.NoError(t, err)
	assert.Len(t, summary.Completed, 12)
	assert.Zero(t, summary.Failed)
	assert.Zero(t, summary.Skipped)
	_, err = uuid.Parse(summary.RunID)
	assert.NoError(t, err)
	assert.Equal(t, int32(1), store.maxSaves.Load(), "saves must be serialized")

	for _, job := range jobs {
		out, ok := store.saved[job.Output]
		require.True(t, ok, job.Output)
		assert.Less(t, out.Elevations.Value(0, 2), 2.0, "the pit must be breached")
		assert.Contains(t, out.Metadata, "Batch run: "+summary.RunID)
		assert.Contains(t, out.Metadata, "Input file: "+job.Input)
	}
	assert.Equal(t, 10.0, store.tiles["tile_00"].Value(0, 0), "inputs are never modified")
	assert.Equal(t, 8.0, store.tiles["tile_00"].Value(0, 2))
}

func TestRunIsolatesFailingTiles(t *testing.T) {
	store := newMemStore()
	store.tiles["good"] = pitTile(t)
	store.tiles["empty"] = structures.NewRectangularArrayFloat64(0, 0, -32768)
	jobs := []batch.Job{
		{Input: "good", Output: "good_out"},
		{Input: "missing", Output: "missing_out"},
		{Input: "empty", Output: "empty_out"},
	}

	summary, err := batch.Run(context.Background(), store, jobs, quietConfig(2))
	require.Error(t, err)
	assert.ErrorIs(t, err, errMissingTile)
	assert.ErrorIs(t, err, hydro.ErrEmptyGrid)
	assert.True(t, strings.Contains(err.Error(), "tile missing"))
	assert.Equal(t, 2, summary.Failed)
	require.Len(t, summary.Completed, 1)
	assert.Equal(t, "good", summary.Completed[0].Job.Input)
	assert.Contains(t, store.saved, "good_out")
	assert.NotContains(t, store.saved, "missing_out")
}

func TestRunStopsDispatchingWhenCancelled(t *testing.T) {
	store := newMemStore()
	store.tiles["a"] = pitTile(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	summary, err := batch.Run(ctx, store, []batch.Job{{Input: "a", Output: "b"}, {Input: "a", Output: "c"}}, quietConfig(1))
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 2, summary.Skipped)
	assert.Empty(t, summary.Completed)
	assert.Empty(t, store.saved)
}

func TestRunRejectsInvalidOptions(t *testing.T) {
	cfg := quietConfig(1)
	cfg.Options.MaxDepth = -1
	_, err := batch.Run(context.Background(), newMemStore(), nil, cfg)
	assert.ErrorIs(t, err, hydro.ErrInvalidConstraint)
}

func TestRunReportsFallback(t *testing.T) {
	values := make([][]float64, 5)
	for r := range values {
		values[r] = []float64{50, 50, 50, 50, 50}
	}
	for r := 1; r <= 3; r++ {
		for c := 1; c <= 3; c++ {
			values[r][c] = 60
		}
	}
	values[2][2] = 10
	arr, err := structures.NewRectangularArrayFloat64FromRows(values, -32768)
	require.NoError(t, err)
	store := newMemStore()
	store.tiles["deep"] = arr

	cfg := quietConfig(1)
	cfg.Options.MaxDepth = 10
	summary, err := batch.Run(context.Background(), store, []batch.Job{{Input: "deep", Output: "out"}}, cfg)
	require.NoError(t, err)
	require.Len(t, summary.Completed, 1)
	assert.True(t, summary.Completed[0].UsedFallbackFill)
	assert.Equal(t, 1, summary.Completed[0].Stats.PitsUnresolved)
}

func TestRasterStore(t *testing.T) {
	dir := t.TempDir()
	_, err := raster.WriteArray(filepath.Join(dir, "in.dep"), pitTile(t), nil, raster.DT_FLOAT32)
	require.NoError(t, err)

	cfg := quietConfig(2)
	cfg.Options.Precision = hydro.PrecisionNarrow
	store := batch.RasterStore{Dir: dir}
	summary, err := batch.Run(context.Background(), store,
		[]batch.Job{{Input: "in.dep", Output: "out"}}, cfg)
	require.NoError(t, err)
	require.Len(t, summary.Completed, 1)

	got, r, err := raster.ReadArray(filepath.Join(dir, "out.dep"))
	require.NoError(t, err)
	assert.Equal(t, float64(float32(2-0.002)), got.Value(0, 2))
	assert.Contains(t, r.GetMetadataEntries(), "Batch run: "+summary.RunID)
	assert.Contains(t, r.GetMetadataEntries(), "Created by BreachDepressions tool")
}

func TestRunKeepsTilePrecision(t *testing.T) {
	store := newMemStore()
	store.precision = hydro.PrecisionNarrow
	store.tiles["a"] = pitTile(t)
	jobs := []batch.Job{{Input: "a", Output: "a_out"}}

	_, err := batch.Run(context.Background(), store, jobs, quietConfig(1))
	require.NoError(t, err)
	assert.Equal(t, hydro.PrecisionWide, store.saved["a_out"].Precision)

	cfg := quietConfig(1)
	cfg.InputPrecision = true
	_, err = batch.Run(context.Background(), store, jobs, cfg)
	require.NoError(t, err)
	out := store.saved["a_out"]
	assert.Equal(t, hydro.PrecisionNarrow, out.Precision)
	assert.Equal(t, float64(float32(2-0.002)), out.Elevations.Value(0, 2))

	cfg.Options.AutoIncrement = true
	_, err = batch.Run(context.Background(), store, jobs, cfg)
	require.NoError(t, err)
	assert.Equal(t, hydro.PrecisionWide, store.saved["a_out"].Precision, "an automatic increment needs wide output")
}

func TestRasterStoreKeepsInputPrecision(t *testing.T) {
	dir := t.TempDir()
	_, err := raster.WriteArray(filepath.Join(dir, "in.dep"), pitTile(t), nil, raster.DT_FLOAT32)
	require.NoError(t, err)

	cfg := quietConfig(1)
	cfg.InputPrecision = true
	_, err = batch.Run(context.Background(), batch.RasterStore{Dir: dir},
		[]batch.Job{{Input: "in.dep", Output: "out.dep"}}, cfg)
	require.NoError(t, err)

	_, r, err := raster.ReadArray(filepath.Join(dir, "out.dep"))
	require.NoError(t, err)
	assert.Equal(t, raster.DT_FLOAT32, r.GetRasterConfig().DataType)
	assert.Equal(t, hydro.PrecisionNarrow, batch.PrecisionOf(r))
}
