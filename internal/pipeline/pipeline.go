// Package pipeline sequences the preparation stages shared by both dataset
// preparers and applies the degrade-to-placeholder policy: every stage
// failure takes the single fallback edge instead of aborting the run.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/neotopiaGbR/neotopia-navigator/internal/observability"
	"github.com/neotopiaGbR/neotopia-navigator/internal/toolchain"
)

// State identifies a position in the preparation state machine.
type State string

const (
	StateStart           State = "START"
	StateDependencyCheck State = "DEPENDENCY_CHECK"
	StateLocate          State = "LOCATE"
	StateFetch           State = "FETCH"
	StateExtract         State = "EXTRACT"
	StateConvert         State = "CONVERT"
	StatePackage         State = "PACKAGE"
	StateFallback        State = "FALLBACK"
	StateDone            State = "DONE"
)

// Stages supplies the dataset-specific behavior behind each state. Paths flow
// strictly forward: Locate's URL feeds Fetch, Fetch's file feeds Extract, and
// so on. All intermediate files must live under the workDir handed in; the
// orchestrator releases it on every exit path.
type Stages interface {
	// Name labels the pipeline in logs and metrics.
	Name() string

	// ArtifactPath is the final artifact location, used for the
	// idempotence check before any work starts.
	ArtifactPath() string

	// CheckDependencies verifies external tools. A toolchain.ErrToolMissing
	// return is fatal for the run; any other error degrades to fallback.
	CheckDependencies(ctx context.Context) error

	Locate(ctx context.Context) (url string, err error)
	Fetch(ctx context.Context, url, workDir string) (archivePath string, err error)
	Extract(ctx context.Context, archivePath, workDir string) (payloadPath string, err error)
	Convert(ctx context.Context, payloadPath, workDir string) (convertedPath string, err error)
	Package(ctx context.Context, convertedPath string) (artifactPath string, err error)

	// Fallback writes the placeholder artifact. It must not depend on any
	// earlier stage having succeeded.
	Fallback(ctx context.Context) (artifactPath string, err error)
}

// Options select the run mode.
type Options struct {
	// Mock skips the real pipeline entirely and emits the placeholder.
	Mock bool

	// ForceRefresh bypasses the existing-artifact skip.
	ForceRefresh bool
}

// Outcome summarizes a finished run.
type Outcome struct {
	ArtifactPath string

	// Skipped is true when the artifact already existed and the run did
	// nothing.
	Skipped bool

	// FellBack is true when the placeholder path was taken, whether by
	// request (mock mode) or by degradation.
	FellBack bool

	// FailedStage and Reason describe what triggered degradation; empty
	// for mock-mode runs.
	FailedStage State
	Reason      string
}

// Pipeline runs one dataset preparation end to end.
type Pipeline struct {
	stages  Stages
	opts    Options
	logger  *slog.Logger
	metrics *observability.Metrics
}

// New creates a pipeline over the given stages.
func New(stages Stages, opts Options, logger *slog.Logger, metrics *observability.Metrics) *Pipeline {
	return &Pipeline{stages: stages, opts: opts, logger: logger, metrics: metrics}
}

// Run drives the state machine to DONE. The returned error is non-nil only
// for unrecoverable conditions (a required tool missing in a real run, or a
// fallback that could not be written); every other failure degrades.
func (p *Pipeline) Run(ctx context.Context) (Outcome, error) {
	start := time.Now()
	defer func() {
		p.metrics.RunDuration.WithLabelValues(p.stages.Name()).Observe(time.Since(start).Seconds())
	}()

	if !p.opts.ForceRefresh && !p.opts.Mock {
		if _, err := os.Stat(p.stages.ArtifactPath()); err == nil {
			p.logger.Info("artifact up to date, skipping", "path", p.stages.ArtifactPath())
			return Outcome{ArtifactPath: p.stages.ArtifactPath(), Skipped: true}, nil
		}
	}

	if p.opts.Mock {
		p.logger.Info("mock mode, emitting placeholder")
		return p.fallback(ctx, "", "mock mode requested")
	}

	if err := p.stages.CheckDependencies(ctx); err != nil {
		if errors.Is(err, toolchain.ErrToolMissing) {
			p.observe(StateDependencyCheck, err)
			return Outcome{}, err
		}
		return p.degrade(ctx, StateDependencyCheck, err)
	}
	p.observe(StateDependencyCheck, nil)

	workDir, err := os.MkdirTemp("", p.stages.Name()+"-*")
	if err != nil {
		return p.degrade(ctx, StateStart, fmt.Errorf("create workspace: %w", err))
	}
	defer os.RemoveAll(workDir)

	url, err := p.stages.Locate(ctx)
	p.observe(StateLocate, err)
	if err != nil {
		return p.degrade(ctx, StateLocate, err)
	}

	archivePath, err := p.stages.Fetch(ctx, url, workDir)
	p.observe(StateFetch, err)
	if err != nil {
		return p.degrade(ctx, StateFetch, err)
	}

	payloadPath, err := p.stages.Extract(ctx, archivePath, workDir)
	p.observe(StateExtract, err)
	if err != nil {
		return p.degrade(ctx, StateExtract, err)
	}

	convertedPath, err := p.stages.Convert(ctx, payloadPath, workDir)
	p.observe(StateConvert, err)
	if err != nil {
		return p.degrade(ctx, StateConvert, err)
	}

	artifactPath, err := p.stages.Package(ctx, convertedPath)
	p.observe(StatePackage, err)
	if err != nil {
		return p.degrade(ctx, StatePackage, err)
	}

	p.logger.Info("pipeline complete", "artifact", artifactPath)
	return Outcome{ArtifactPath: artifactPath}, nil
}

// degrade logs the stage failure and takes the fallback edge.
func (p *Pipeline) degrade(ctx context.Context, from State, cause error) (Outcome, error) {
	p.logger.Warn("stage failed, degrading to placeholder",
		"stage", string(from),
		"error", cause,
	)
	return p.fallback(ctx, from, cause.Error())
}

func (p *Pipeline) fallback(ctx context.Context, from State, reason string) (Outcome, error) {
	p.metrics.Fallbacks.WithLabelValues(p.stages.Name()).Inc()

	artifactPath, err := p.stages.Fallback(ctx)
	p.observe(StateFallback, err)
	if err != nil {
		return Outcome{}, fmt.Errorf("write placeholder: %w", err)
	}

	p.logger.Info("placeholder written", "artifact", artifactPath)
	return Outcome{
		ArtifactPath: artifactPath,
		FellBack:     true,
		FailedStage:  from,
		Reason:       reason,
	}, nil
}

func (p *Pipeline) observe(stage State, err error) {
	outcome := "success"
	if err != nil {
		outcome = "failure"
	}
	p.metrics.StageRuns.WithLabelValues(p.stages.Name(), string(stage), outcome).Inc()
}
