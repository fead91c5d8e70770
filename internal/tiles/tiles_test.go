package tiles_test

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/neotopiaGbR/neotopia-navigator/internal/dataset"
	"github.com/neotopiaGbR/neotopia-navigator/internal/tiles"
	"github.com/neotopiaGbR/neotopia-navigator/internal/toolchain"
)

type scriptedRunner struct {
	calls     [][]string
	result    toolchain.Result
	err       error
	installed bool

	onRun func(args []string)
}

func (s *scriptedRunner) Run(_ context.Context, tool string, args ...string) (toolchain.Result, error) {
	s.calls = append(s.calls, append([]string{tool}, args...))
	if s.onRun != nil {
		s.onRun(args)
	}
	return s.result, s.err
}

func (s *scriptedRunner) LookPath(string) bool { return s.installed }

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
}

func TestPackager_Args(t *testing.T) {
	dir := t.TempDir()
	outPath := filepath.Join(dir, "events.pmtiles")
	runner := &scriptedRunner{
		installed: true,
		onRun: func(_ []string) {
			require.NoError(t, os.WriteFile(outPath, []byte("tiles"), 0o644))
		},
	}
	spec := dataset.Catrare()
	p := tiles.NewPackager(runner, spec, testLogger())

	require.True(t, p.Available())
	require.NoError(t, p.Package(context.Background(), "/work/events.json", outPath))

	require.Len(t, runner.calls, 1)
	assert.Equal(t, []string{
		"tippecanoe",
		"-o", outPath,
		"-Z", "4",
		"-z", "12",
		"--drop-densest-as-needed",
		"--extend-zooms-if-still-dropping",
		"-l", "catrare",
		"--attribution", spec.Attribution,
		"--force",
		"/work/events.json",
	}, runner.calls[0])
}

func TestPackager_NotInstalled(t *testing.T) {
	p := tiles.NewPackager(&scriptedRunner{installed: false}, dataset.Catrare(), testLogger())
	assert.False(t, p.Available())
}

func TestPackager_NonZeroExit(t *testing.T) {
	runner := &scriptedRunner{
		installed: true,
		result:    toolchain.Result{ExitCode: 1, Stderr: "did not read any valid geojson\n"},
	}
	p := tiles.NewPackager(runner, dataset.Catrare(), testLogger())

	err := p.Package(context.Background(), "/work/events.json", filepath.Join(t.TempDir(), "out.pmtiles"))
	assert.ErrorContains(t, err, "did not read any valid geojson")
}

func TestCOGValidator_CleanStructure(t *testing.T) {
	runner := &scriptedRunner{
		installed: true,
		result: toolchain.Result{
			Stdout: `{"bands": [{"block": [512, 512]}]}`,
		},
	}
	v := tiles.NewCOGValidator(runner, 512, testLogger())

	require.True(t, v.Available())
	warnings := v.Validate(context.Background(), "/data/kostra_d60min_t10a.tif")
	assert.Empty(t, warnings)

	require.Len(t, runner.calls, 1)
	assert.Equal(t, []string{"gdalinfo", "-json", "/data/kostra_d60min_t10a.tif"}, runner.calls[0])
}

func TestCOGValidator_BlockSizeMismatch(t *testing.T) {
	runner := &scriptedRunner{
		installed: true,
		result: toolchain.Result{
			Stdout: `{"bands": [{"block": [512, 512]}, {"block": [256, 256]}]}`,
		},
	}
	v := tiles.NewCOGValidator(runner, 512, testLogger())

	warnings := v.Validate(context.Background(), "/data/out.tif")
	require.Len(t, warnings, 1)
	assert.Contains(t, warnings[0], "band 2")
	assert.Contains(t, warnings[0], "256x256")
}

func TestCOGValidator_DegenerateOutputs(t *testing.T) {
	cases := []struct {
		name   string
		result toolchain.Result
		want   string
	}{
		{
			name:   "non-json output",
			result: toolchain.Result{Stdout: "Driver: GTiff/GeoTIFF"},
			want:   "unparseable",
		},
		{
			name:   "no bands",
			result: toolchain.Result{Stdout: `{"bands": []}`},
			want:   "no bands",
		},
		{
			name:   "tool failure",
			result: toolchain.Result{ExitCode: 1, Stderr: "no such file"},
			want:   "exited 1",
		},
		{
			name:   "missing block layout",
			result: toolchain.Result{Stdout: `{"bands": [{}]}`},
			want:   "no block layout",
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			v := tiles.NewCOGValidator(&scriptedRunner{installed: true, result: tc.result}, 512, testLogger())
			warnings := v.Validate(context.Background(), "/data/out.tif")
			require.Len(t, warnings, 1)
			assert.Contains(t, warnings[0], tc.want)
		})
	}
}
