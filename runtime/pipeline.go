package runtime

import (
	"context"
	"path/filepath"
	"time"

	"github.com/pithecene-io/deckhand/journal"
	"github.com/pithecene-io/deckhand/log"
	"github.com/pithecene-io/deckhand/types"
)

// PipelineConfig configures a full run pipeline.
type PipelineConfig struct {
	// Run configures the workflow runner. Logger is filled per run.
	Run RunConfig
	// Reconcile configures the reconciler. RunID and Logger are filled
	// per run.
	Reconcile ReconcileConfig
	// Journal records finished runs. Nil disables journaling.
	Journal *journal.Journal
}

// ProcessResult is the combined outcome of one pipeline pass.
type ProcessResult struct {
	// RunID identifies the run.
	RunID string
	// Result is the classified workflow result after reconciliation.
	Result *types.WorkflowResult
	// Outcome is the reconciliation summary including the report text.
	Outcome *Outcome
	// Duration is the wall time of the full pass.
	Duration time.Duration
}

// Pipeline chains the workflow runner, the reconciler, and the run
// journal into a single entrypoint shared by the CLI and the chat bot.
type Pipeline struct {
	config *PipelineConfig
}

// NewPipeline creates a pipeline.
func NewPipeline(config *PipelineConfig) *Pipeline {
	return &Pipeline{config: config}
}

// Process runs the full pipeline over one source file: launch and
// classify the agent run, reconcile side effects, journal the outcome.
//
// The returned error is non-nil only when the agent could not be
// launched; every other degradation lands in the result and report.
func (p *Pipeline) Process(ctx context.Context, sourcePath string) (*ProcessResult, error) {
	runID := NewRunID()
	logger := log.NewLogger(runID, filepath.Base(sourcePath))
	started := time.Now()

	runConfig := p.config.Run
	runConfig.Logger = logger
	runner := NewRunner(&runConfig)

	result, err := runner.Run(ctx, sourcePath)
	if err != nil {
		return nil, err
	}

	reconcileConfig := p.config.Reconcile
	reconcileConfig.RunID = runID
	reconcileConfig.Logger = logger
	outcome := NewReconciler(&reconcileConfig).Reconcile(ctx, result)

	processed := &ProcessResult{
		RunID:    runID,
		Result:   result,
		Outcome:  outcome,
		Duration: time.Since(started),
	}

	p.journal(processed, sourcePath, started, logger)
	return processed, nil
}

// journal appends the finished run to the run journal. A journal write
// failure is logged and otherwise ignored; the run already happened.
func (p *Pipeline) journal(processed *ProcessResult, sourcePath string, started time.Time, logger *log.Logger) {
	if p.config.Journal == nil {
		return
	}
	record := &journal.Record{
		RunID:      processed.RunID,
		Source:     filepath.Base(sourcePath),
		Status:     processed.Result.Status,
		StartedAt:  started,
		DurationMs: processed.Duration.Milliseconds(),
		HostedURL:  processed.Result.HostedURL,
		EmailSent:  processed.Outcome.EmailSent,
		Warnings:   processed.Result.Errors,
	}
	if err := p.config.Journal.Append(record); err != nil {
		logger.Warn("journal append failed", map[string]any{
			"error": err.Error(),
		})
	}
}
