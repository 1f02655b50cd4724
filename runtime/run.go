// Package runtime orchestrates analysis runs: launching the external
// agent, enforcing the run deadline, classifying outcomes, and
// reconciling best-effort downstream side effects.
package runtime

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/pithecene-io/deckhand/log"
	"github.com/pithecene-io/deckhand/types"
)

// DefaultTimeout is the hard deadline for one agent invocation.
const DefaultTimeout = 600 * time.Second

// agentPrompt is the fixed instruction handed to the analysis agent.
// The agent communicates back exclusively through artifact files in the
// working directory.
const agentPrompt = `Analyze the following PDF meeting transcript and run the meeting-to-deck workflow.

PDF file path: %s

Follow the workflow steps in order. Write all output files into the current working directory: slides.pptx (the deck), summary.md (the meeting summary), and email_draft.md (the email draft). Finish by writing result.json describing what was produced.`

// RunConfig configures a workflow runner.
type RunConfig struct {
	// WorkDir is the working directory shared with the agent. Artifacts
	// from a prior run are cleared from it before each launch.
	WorkDir string
	// AgentBinary is the agent executable (default: claude).
	AgentBinary string
	// Timeout is the hard deadline for the agent (default 600s).
	Timeout time.Duration
	// AgentFactory overrides agent creation (for testing).
	// If nil, uses NewAgentProcess.
	AgentFactory AgentFactory
	// Logger is the run logger. If nil, a logger tagged with the source
	// path is created per run.
	Logger *log.Logger
}

// Runner invokes the external analysis agent and classifies the outcome.
//
// The only fatal condition is failure to launch the agent; every other
// degradation (timeout, agent failure, missing artifacts) is represented
// in the returned WorkflowResult, never as a Go error.
type Runner struct {
	config *RunConfig
}

// NewRunner creates a workflow runner.
func NewRunner(config *RunConfig) *Runner {
	if config.Timeout <= 0 {
		config.Timeout = DefaultTimeout
	}
	return &Runner{config: config}
}

// Run executes one analysis run over the given source file.
//
// Outcome classification:
//   - deadline exceeded: agent killed and reaped, StatusPartial with
//     whatever artifacts exist on disk
//   - non-zero exit: StatusError with the captured stderr, no artifacts
//   - zero exit: the agent's result file verbatim when present and valid,
//     otherwise a synthesized StatusCompleted with per-missing-artifact
//     warnings
func (r *Runner) Run(ctx context.Context, sourcePath string) (*types.WorkflowResult, error) {
	logger := r.config.Logger
	if logger == nil {
		logger = log.NewLogger(NewRunID(), filepath.Base(sourcePath))
	}

	if err := r.clearArtifacts(); err != nil {
		return nil, fmt.Errorf("prepare working directory: %w", err)
	}

	agentConfig := &AgentConfig{
		Binary:     r.config.AgentBinary,
		Prompt:     fmt.Sprintf(agentPrompt, sourcePath),
		SourcePath: sourcePath,
		WorkDir:    r.config.WorkDir,
	}

	var agent Agent
	if r.config.AgentFactory != nil {
		agent = r.config.AgentFactory(agentConfig)
	} else {
		agent = NewAgentProcess(agentConfig)
	}

	logger.Info("starting run", map[string]any{
		"source":  sourcePath,
		"workdir": r.config.WorkDir,
		"timeout": r.config.Timeout.String(),
	})
	started := time.Now()

	if err := agent.Start(ctx); err != nil {
		logger.Error("failed to start agent", map[string]any{
			"error": err.Error(),
		})
		return nil, fmt.Errorf("launch agent: %w", err)
	}

	waitDone := make(chan struct{})
	var agentResult *AgentResult
	var waitErr error
	go func() {
		agentResult, waitErr = agent.Wait()
		close(waitDone)
	}()

	select {
	case <-waitDone:
	case <-time.After(r.config.Timeout):
		// Kill and reap before returning so no orphan survives the run.
		_ = agent.Kill()
		<-waitDone

		logger.Warn("agent deadline exceeded", map[string]any{
			"timeout":  r.config.Timeout.String(),
			"duration": time.Since(started).String(),
		})

		result := types.NewWorkflowResult(types.StatusPartial)
		result.AddWarning(fmt.Sprintf("timeout after %ds", int(r.config.Timeout.Seconds())))
		r.scanArtifacts(result)
		return result, nil
	}

	if waitErr != nil {
		logger.Error("agent wait failed", map[string]any{
			"error": waitErr.Error(),
		})
		result := types.NewWorkflowResult(types.StatusError)
		result.RawError = waitErr.Error()
		return result, nil
	}

	if agentResult.ExitCode != 0 {
		logger.Error("agent failed", map[string]any{
			"exit_code": agentResult.ExitCode,
			"duration":  time.Since(started).String(),
		})
		result := types.NewWorkflowResult(types.StatusError)
		result.RawError = string(agentResult.StderrBytes)
		return result, nil
	}

	result := r.classifyCleanExit(logger)
	logger.Info("run completed", map[string]any{
		"status":    string(result.Status),
		"artifacts": len(result.Artifacts),
		"warnings":  len(result.Errors),
		"duration":  time.Since(started).String(),
	})
	return result, nil
}

// classifyCleanExit resolves the result of a zero-exit run: the agent's
// structured result file when present and valid, otherwise a synthesized
// completed result with a warning per missing artifact.
func (r *Runner) classifyCleanExit(logger *log.Logger) *types.WorkflowResult {
	resultPath := filepath.Join(r.config.WorkDir, types.ResultFilename)
	data, err := os.ReadFile(resultPath)
	if err == nil {
		parsed, parseErr := types.ParseResultFile(data)
		if parseErr == nil {
			return parsed
		}
		// Invalid result file: fall through to synthesis, but surface the
		// parse failure as a warning instead of trusting or discarding.
		logger.Warn("result file unparseable, synthesizing", map[string]any{
			"error": parseErr.Error(),
		})
		result := r.synthesizeResult()
		result.AddWarning(fmt.Sprintf("%s unparseable: %v", types.ResultFilename, parseErr))
		return result
	}

	return r.synthesizeResult()
}

// synthesizeResult builds a completed result from artifact presence on
// disk, warning once per missing artifact.
func (r *Runner) synthesizeResult() *types.WorkflowResult {
	result := types.NewWorkflowResult(types.StatusCompleted)
	for _, kind := range types.ArtifactKinds() {
		path := filepath.Join(r.config.WorkDir, kind.Filename())
		if _, err := os.Stat(path); err == nil {
			result.SetArtifact(kind, path)
		} else {
			result.AddWarning(fmt.Sprintf("%s not generated", kind.Filename()))
		}
	}
	return result
}

// scanArtifacts records every expected artifact that exists on disk.
// Used on the timeout path where partial output must survive.
func (r *Runner) scanArtifacts(result *types.WorkflowResult) {
	for _, kind := range types.ArtifactKinds() {
		path := filepath.Join(r.config.WorkDir, kind.Filename())
		if _, err := os.Stat(path); err == nil {
			result.SetArtifact(kind, path)
		}
	}
}

// clearArtifacts removes artifacts left by a prior run sharing the
// working directory, creating the directory if needed.
func (r *Runner) clearArtifacts() error {
	if err := os.MkdirAll(r.config.WorkDir, 0o755); err != nil {
		return err
	}
	stale := make([]string, 0, len(types.ArtifactKinds())+1)
	for _, kind := range types.ArtifactKinds() {
		stale = append(stale, kind.Filename())
	}
	stale = append(stale, types.ResultFilename)

	for _, name := range stale {
		path := filepath.Join(r.config.WorkDir, name)
		if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
			return fmt.Errorf("remove stale %s: %w", name, err)
		}
	}
	return nil
}

// NewRunID returns a unique run identifier.
func NewRunID() string {
	return fmt.Sprintf("run-%d", time.Now().UnixNano())
}
