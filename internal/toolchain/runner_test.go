package toolchain_test

import (
	"context"
	"log/slog"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/neotopiaGbR/neotopia-navigator/internal/observability"
	"github.com/neotopiaGbR/neotopia-navigator/internal/toolchain"
)

type fakeRunner struct {
	installed map[string]bool
}

func (f *fakeRunner) Run(_ context.Context, _ string, _ ...string) (toolchain.Result, error) {
	return toolchain.Result{}, nil
}

func (f *fakeRunner) LookPath(tool string) bool {
	return f.installed[tool]
}

func newExecRunner() *toolchain.ExecRunner {
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
	return toolchain.NewExecRunner(logger, observability.NewMetricsForTesting())
}

func TestRequire(t *testing.T) {
	r := &fakeRunner{installed: map[string]bool{"ogr2ogr": true}}

	assert.NoError(t, toolchain.Require(r, "ogr2ogr"))

	err := toolchain.Require(r, "tippecanoe")
	require.Error(t, err)
	assert.ErrorIs(t, err, toolchain.ErrToolMissing)
	assert.Contains(t, err.Error(), "tippecanoe")
}

func TestResult_Success(t *testing.T) {
	assert.True(t, toolchain.Result{ExitCode: 0}.Success())
	assert.False(t, toolchain.Result{ExitCode: 1}.Success())
}

func TestExecRunner_MissingBinary(t *testing.T) {
	r := newExecRunner()

	assert.False(t, r.LookPath("definitely-not-installed-anywhere"))

	_, err := r.Run(context.Background(), "definitely-not-installed-anywhere")
	assert.Error(t, err)
}

func TestExecRunner_CapturesExit(t *testing.T) {
	r := newExecRunner()
	if !r.LookPath("sh") {
		t.Skip("sh not available")
	}

	res, err := r.Run(context.Background(), "sh", "-c", "echo out; echo err >&2; exit 3")
	require.NoError(t, err)
	assert.Equal(t, 3, res.ExitCode)
	assert.False(t, res.Success())
	assert.Contains(t, res.Stdout, "out")
	assert.Contains(t, res.Stderr, "err")
}
