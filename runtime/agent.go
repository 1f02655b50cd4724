package runtime

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"strings"
	"syscall"
)

// DefaultAgentBinary is the analysis agent invoked when no explicit
// binary is configured.
const DefaultAgentBinary = "claude"

// NestedSessionEnv is the environment marker the agent sets inside its
// own sessions. It is stripped from the child environment so the agent
// does not refuse to run recursively.
const NestedSessionEnv = "CLAUDECODE"

// Agent abstracts the analysis agent process lifecycle for testing.
type Agent interface {
	Start(ctx context.Context) error
	Wait() (*AgentResult, error)
	Kill() error
}

// AgentFactory creates an Agent. Used for test injection.
type AgentFactory func(config *AgentConfig) Agent

// AgentConfig configures one agent invocation.
type AgentConfig struct {
	// Binary is the agent executable (default: claude).
	Binary string
	// Prompt is the analysis instruction handed to the agent.
	Prompt string
	// SourcePath is the file the agent analyzes.
	SourcePath string
	// WorkDir is the directory the agent runs in and writes artifacts to.
	WorkDir string
}

// AgentResult represents the result of an agent invocation.
type AgentResult struct {
	// ExitCode is the process exit code.
	ExitCode int
	// StderrBytes is the captured stderr output.
	StderrBytes []byte
}

// AgentProcess manages the agent subprocess lifecycle.
type AgentProcess struct {
	config *AgentConfig
	cmd    *exec.Cmd
	stderr io.ReadCloser
}

// NewAgentProcess creates an agent process manager.
func NewAgentProcess(config *AgentConfig) *AgentProcess {
	return &AgentProcess{config: config}
}

// Start launches the agent process.
// Stdout is discarded (the agent communicates through artifact files);
// stderr is captured for diagnostics.
func (a *AgentProcess) Start(ctx context.Context) error {
	binary := a.config.Binary
	if binary == "" {
		binary = DefaultAgentBinary
	}

	a.cmd = exec.CommandContext(ctx, binary,
		"--print",
		"--dangerously-skip-permissions",
		"-p", a.config.Prompt,
		a.config.SourcePath,
	)
	a.cmd.Dir = a.config.WorkDir
	a.cmd.Env = stripEnv(os.Environ(), NestedSessionEnv)
	a.cmd.Stdout = io.Discard

	stderr, err := a.cmd.StderrPipe()
	if err != nil {
		return fmt.Errorf("failed to create stderr pipe: %w", err)
	}
	a.stderr = stderr

	if err := a.cmd.Start(); err != nil {
		return fmt.Errorf("failed to start agent: %w", err)
	}

	return nil
}

// Wait waits for the agent to exit and returns the result.
// Must be called after Start; stderr is drained before reaping so the
// pipe buffer cannot block process exit.
func (a *AgentProcess) Wait() (*AgentResult, error) {
	if a.cmd == nil {
		return nil, errors.New("agent not started")
	}

	stderrBytes, _ := io.ReadAll(a.stderr)

	err := a.cmd.Wait()

	result := &AgentResult{
		StderrBytes: stderrBytes,
	}

	if err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			if status, ok := exitErr.Sys().(syscall.WaitStatus); ok {
				result.ExitCode = status.ExitStatus()
			} else {
				result.ExitCode = -1
			}
		} else {
			return nil, fmt.Errorf("agent wait failed: %w", err)
		}
	}

	return result, nil
}

// Kill terminates the agent process.
func (a *AgentProcess) Kill() error {
	if a.cmd != nil && a.cmd.Process != nil {
		return a.cmd.Process.Kill()
	}
	return nil
}

// stripEnv removes every entry whose key matches name.
func stripEnv(env []string, name string) []string {
	result := make([]string, 0, len(env))
	for _, entry := range env {
		key, _, _ := strings.Cut(entry, "=")
		if key == name {
			continue
		}
		result = append(result, entry)
	}
	return result
}

// Verify AgentProcess implements the agent interface.
var _ Agent = (*AgentProcess)(nil)
