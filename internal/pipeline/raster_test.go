package pipeline_test

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/klauspost/compress/gzip"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/neotopiaGbR/neotopia-navigator/internal/dataset"
	"github.com/neotopiaGbR/neotopia-navigator/internal/observability"
	"github.com/neotopiaGbR/neotopia-navigator/internal/pipeline"
	"github.com/neotopiaGbR/neotopia-navigator/internal/toolchain"
)

func gzipBytes(t *testing.T, body string) []byte {
	t.Helper()
	var buf bytes.Buffer
	zw := gzip.NewWriter(&buf)
	_, err := zw.Write([]byte(body))
	require.NoError(t, err)
	require.NoError(t, zw.Close())
	return buf.Bytes()
}

func kostraAt(baseURL string) dataset.Raster {
	spec := dataset.Kostra()
	spec.BaseURL = baseURL + "/"
	return spec
}

func TestRasterBatch_EndToEnd(t *testing.T) {
	grid := gzipBytes(t, "ncols 2\nnrows 2\nnodata_value -999\n10 20\n30 40\n")
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write(grid)
	}))
	defer srv.Close()

	outputDir := t.TempDir()
	spec := kostraAt(srv.URL)
	runner := &stubRunner{stdout: `{"bands": [{"block": [512, 512]}]}`}
	batch := pipeline.NewRasterBatch(spec, outputDir, "", pipeline.Options{}, runner, newFetcher(t), testLogger(), observability.NewMetricsForTesting())

	results, err := batch.Run(context.Background())
	require.NoError(t, err)
	require.Len(t, results, 6)

	for _, res := range results {
		assert.NoError(t, res.Err)
		assert.False(t, res.Failed(false), "scenario %s/%s", res.Scenario.Duration.Label, res.Scenario.Period.Label)
		assert.False(t, res.Outcome.FellBack)

		_, statErr := os.Stat(filepath.Join(outputDir, spec.OutputFile(res.Scenario)))
		assert.NoError(t, statErr)
	}
}

func TestRasterBatch_MissingToolsFatalBeforeNetwork(t *testing.T) {
	var requests int
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests++
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	outputDir := t.TempDir()
	runner := &stubRunner{installed: map[string]bool{}}
	batch := pipeline.NewRasterBatch(kostraAt(srv.URL), outputDir, "", pipeline.Options{}, runner, newFetcher(t), testLogger(), observability.NewMetricsForTesting())

	_, err := batch.Run(context.Background())
	require.ErrorIs(t, err, toolchain.ErrToolMissing)

	assert.Zero(t, requests, "the batch must abort before any network access")
	entries, readErr := os.ReadDir(outputDir)
	require.NoError(t, readErr)
	assert.Empty(t, entries)
}

func TestRasterBatch_MockMode(t *testing.T) {
	outputDir := t.TempDir()
	// No tools, no reachable origin: mock mode still produces all six.
	runner := &stubRunner{installed: map[string]bool{}}
	batch := pipeline.NewRasterBatch(dataset.Kostra(), outputDir, "", pipeline.Options{Mock: true}, runner, newFetcher(t), testLogger(), observability.NewMetricsForTesting())

	results, err := batch.Run(context.Background())
	require.NoError(t, err)
	require.Len(t, results, 6)

	spec := dataset.Kostra()
	for _, res := range results {
		assert.False(t, res.Failed(true), "requested placeholders are not failures")
		assert.True(t, res.Outcome.FellBack)

		data, readErr := os.ReadFile(filepath.Join(outputDir, spec.OutputFile(res.Scenario)))
		require.NoError(t, readErr)
		assert.Equal(t, "II", string(data[:2]), "placeholder must be a readable TIFF")
	}
}

func TestRasterBatch_UnreachableOriginDegrades(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	defer srv.Close()

	outputDir := t.TempDir()
	spec := kostraAt(srv.URL)
	runner := &stubRunner{}
	batch := pipeline.NewRasterBatch(spec, outputDir, "", pipeline.Options{}, runner, newFetcher(t), testLogger(), observability.NewMetricsForTesting())

	results, err := batch.Run(context.Background())
	require.NoError(t, err)
	require.Len(t, results, 6)

	for _, res := range results {
		assert.NoError(t, res.Err)
		assert.True(t, res.Outcome.FellBack)
		// Degraded real runs count against the exit code even though a
		// placeholder landed.
		assert.True(t, res.Failed(false))

		_, statErr := os.Stat(filepath.Join(outputDir, spec.OutputFile(res.Scenario)))
		assert.NoError(t, statErr)
	}
}

func TestScenarioResult_Failed(t *testing.T) {
	cases := []struct {
		name string
		res  pipeline.ScenarioResult
		mock bool
		want bool
	}{
		{name: "clean run", res: pipeline.ScenarioResult{}, want: false},
		{name: "fatal error", res: pipeline.ScenarioResult{Err: toolchain.ErrToolMissing}, want: true},
		{name: "degraded real run", res: pipeline.ScenarioResult{Outcome: pipeline.Outcome{FellBack: true}}, want: true},
		{name: "requested mock", res: pipeline.ScenarioResult{Outcome: pipeline.Outcome{FellBack: true}}, mock: true, want: false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, tc.res.Failed(tc.mock))
		})
	}
}
