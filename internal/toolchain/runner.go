// Package toolchain wraps invocation of the external geospatial tools
// (ogr2ogr, gdal_translate, gdalwarp, gdalinfo, tippecanoe) behind a small
// capability interface so the conversion stages can be tested with
// deterministic fakes and without the tools installed.
package toolchain

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os/exec"
	"time"

	"github.com/neotopiaGbR/neotopia-navigator/internal/observability"
)

// ErrToolMissing indicates an external tool is not on PATH. In a real run
// this is fatal for required tools; optional tools are skipped.
var ErrToolMissing = errors.New("external tool missing")

// Result captures one finished tool invocation.
type Result struct {
	ExitCode int
	Stdout   string
	Stderr   string
}

// Success reports whether the tool exited zero.
func (r Result) Success() bool {
	return r.ExitCode == 0
}

// Runner invokes external tools. Implementations must return a Result for
// any process that started, reserving the error return for failures to start
// at all (missing binary, cancelled context).
type Runner interface {
	Run(ctx context.Context, tool string, args ...string) (Result, error)
	LookPath(tool string) bool
}

// ExecRunner runs tools as real subprocesses.
type ExecRunner struct {
	logger  *slog.Logger
	metrics *observability.Metrics
}

// NewExecRunner creates a Runner backed by os/exec.
func NewExecRunner(logger *slog.Logger, metrics *observability.Metrics) *ExecRunner {
	return &ExecRunner{logger: logger, metrics: metrics}
}

// Run executes the tool and waits for completion. There is no mid-stage
// cancellation beyond the context: a started tool runs until it exits.
func (r *ExecRunner) Run(ctx context.Context, tool string, args ...string) (Result, error) {
	start := time.Now()
	cmd := exec.CommandContext(ctx, tool, args...)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()

	var exitErr *exec.ExitError
	switch {
	case err == nil:
		// exited zero
	case errors.As(err, &exitErr):
		// non-zero exit is reported through Result, not the error
		err = nil
	default:
		// never started; ProcessState is nil here
		r.metrics.ToolInvocations.WithLabelValues(tool, "failure").Inc()
		return Result{}, fmt.Errorf("run %s: %w", tool, err)
	}

	res := Result{
		ExitCode: cmd.ProcessState.ExitCode(),
		Stdout:   stdout.String(),
		Stderr:   stderr.String(),
	}

	outcome := "success"
	if !res.Success() {
		outcome = "failure"
	}
	r.metrics.ToolInvocations.WithLabelValues(tool, outcome).Inc()
	r.logger.Debug("tool finished",
		"tool", tool,
		"exit_code", res.ExitCode,
		"duration", time.Since(start),
	)
	return res, nil
}

// LookPath reports whether the tool is installed.
func (r *ExecRunner) LookPath(tool string) bool {
	_, err := exec.LookPath(tool)
	return err == nil
}

// Require returns ErrToolMissing wrapped with the tool name when it is not
// installed.
func Require(r Runner, tool string) error {
	if !r.LookPath(tool) {
		return fmt.Errorf("%s: %w", tool, ErrToolMissing)
	}
	return nil
}
