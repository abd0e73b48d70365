package storage

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/san-kum/verlet/internal/config"
	"github.com/san-kum/verlet/internal/experiment"
	"github.com/san-kum/verlet/internal/sim"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func recordRun(t *testing.T, st *Store, scene string) (*RunMetadata, *sim.Result) {
	t.Helper()

	cfg := config.DefaultConfig()
	cfg.Scene = scene
	cfg.World.Width, cfg.World.Height = 50, 50
	cfg.Particles.Count = 12
	cfg.Duration = 30
	cfg.Seed = 7

	e := experiment.New(cfg, experiment.NewRegistry())
	require.NoError(t, e.Setup(nil))

	run, err := st.Begin(scene)
	require.NoError(t, err)
	e.GetSimulator().AddObserver(run)

	result, err := e.Run(context.Background())
	require.NoError(t, err)

	meta, err := run.Finish(cfg, "dense", e.GetSimulator().World(), result)
	require.NoError(t, err)
	return meta, result
}

func TestStoreRecordLoad(t *testing.T) {
	st := New(t.TempDir())
	require.NoError(t, st.Init())

	meta, result := recordRun(t, st, "pile")
	assert.True(t, strings.HasPrefix(meta.ID, "pile_"))

	loaded, err := st.Load(meta.ID)
	require.NoError(t, err)
	assert.Equal(t, "pile", loaded.Scene)
	assert.Equal(t, "dense", loaded.Preset)
	assert.Equal(t, int64(7), loaded.Seed)
	assert.Equal(t, uint64(30), loaded.Steps)
	assert.Equal(t, 12, loaded.Particles)
	assert.InDelta(t, result.Metrics["kinetic_energy"], loaded.Metrics["kinetic_energy"], 1e-12)

	frames, err := st.LoadFrames(meta.ID)
	require.NoError(t, err)
	// one frame per particle per sample: steps 0, 10, 20, 30
	assert.Len(t, result.Times, 4)
	assert.Len(t, frames, 12*4)
	assert.Equal(t, uint64(0), frames[0].Step)
	assert.Equal(t, uint64(30), frames[len(frames)-1].Step)
	assert.Equal(t, 11, frames[len(frames)-1].Index)

	series, err := st.LoadSeries(meta.ID)
	require.NoError(t, err)
	values, times := SeriesByMetric(series)
	require.Contains(t, values, "kinetic_energy")
	assert.Equal(t, result.Series["kinetic_energy"], values["kinetic_energy"])
	assert.Equal(t, result.Times, times["kinetic_energy"])

	cfg, err := st.LoadConfig(meta.ID)
	require.NoError(t, err)
	assert.Equal(t, "pile", cfg.Scene)
	assert.Equal(t, 12, cfg.Particles.Count)
}

func TestStoreList(t *testing.T) {
	st := New(t.TempDir())
	require.NoError(t, st.Init())

	first, _ := recordRun(t, st, "gas")
	second, _ := recordRun(t, st, "gas")
	assert.NotEqual(t, first.ID, second.ID)

	runs, err := st.List()
	require.NoError(t, err)
	require.Len(t, runs, 2)
	assert.False(t, runs[1].Timestamp.Before(runs[0].Timestamp))
}

func TestStoreListMissingDir(t *testing.T) {
	st := New(filepath.Join(t.TempDir(), "missing"))

	runs, err := st.List()
	require.NoError(t, err)
	assert.Empty(t, runs)
}

func TestStoreListSkipsBrokenRuns(t *testing.T) {
	dir := t.TempDir()
	st := New(dir)
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "broken"), 0755))

	runs, err := st.List()
	require.NoError(t, err)
	assert.Empty(t, runs)
}

func TestStoreBeginBaseIsFile(t *testing.T) {
	base := filepath.Join(t.TempDir(), "runs")
	require.NoError(t, os.WriteFile(base, []byte("x"), 0644))

	run, err := New(base).Begin("pile")
	require.Error(t, err)
	assert.Nil(t, run)
}

func TestStoreLoadMissing(t *testing.T) {
	st := New(t.TempDir())

	_, err := st.Load("nope")
	assert.Error(t, err)
	_, err = st.LoadFrames("nope")
	assert.Error(t, err)
}

func TestExport(t *testing.T) {
	st := New(t.TempDir())
	require.NoError(t, st.Init())
	meta, result := recordRun(t, st, "pile")

	data, err := st.Export(meta.ID)
	require.NoError(t, err)
	assert.Equal(t, result.Times, data.Times)
	assert.Equal(t, result.Series["max_speed"], data.Series["max_speed"])

	path := filepath.Join(t.TempDir(), "out.json")
	require.NoError(t, ExportJSON(path, data))
	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(raw), `"scene": "pile"`)

	frames, err := st.LoadFrames(meta.ID)
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, ExportFramesCSV(&buf, frames, 10))
	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	assert.Equal(t, "step,time,index,x,y,z,vx,vy,vz,radius", lines[0])
	assert.Len(t, lines, 1+12)

	buf.Reset()
	series, err := st.LoadSeries(meta.ID)
	require.NoError(t, err)
	require.NoError(t, ExportSeriesCSV(&buf, series))
	assert.True(t, strings.HasPrefix(buf.String(), "step,time,metric,value"))
}
