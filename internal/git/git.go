// Package git performs the write side of a release through the git CLI:
// staging, committing, tagging and pushing.
//
// The CLI is used instead of a library so that the user's hooks,
// credential helpers and signing configuration apply unchanged.
package git

import (
	"context"
	"os/exec"
	"strings"

	"github.com/Iron-Ham/versioner/internal/errors"
	"github.com/Iron-Ham/versioner/internal/logging"
)

// -----------------------------------------------------------------------------
// Command Executor
// -----------------------------------------------------------------------------

// CommandExecutor abstracts command execution for testability.
type CommandExecutor interface {
	// Run executes a command and returns combined output.
	Run(ctx context.Context, dir string, name string, args ...string) ([]byte, error)
}

// CLICommandExecutor executes commands using os/exec.
type CLICommandExecutor struct{}

// NewCLICommandExecutor creates a new CLI command executor.
func NewCLICommandExecutor() *CLICommandExecutor {
	return &CLICommandExecutor{}
}

// Run executes a command and returns combined output.
func (e *CLICommandExecutor) Run(ctx context.Context, dir string, name string, args ...string) ([]byte, error) {
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Dir = dir
	return cmd.CombinedOutput()
}

// -----------------------------------------------------------------------------
// CLIWriter
// -----------------------------------------------------------------------------

// Output fragments git prints for conditions that are not failures of the
// command itself.
var (
	upToDateMarkers = []string{"Everything up-to-date", "nothing to push"}
	atomicMarkers   = []string{
		"does not support --atomic push",
		"does not support atomic push",
	}
)

// CLIWriter implements Writer using git CLI commands.
type CLIWriter struct {
	repoDir  string
	executor CommandExecutor
}

// NewCLIWriter creates a CLIWriter operating in repoDir.
func NewCLIWriter(repoDir string) *CLIWriter {
	return &CLIWriter{
		repoDir:  repoDir,
		executor: NewCLICommandExecutor(),
	}
}

// NewCLIWriterWithExecutor creates a CLIWriter with a custom executor.
// This is primarily useful for testing.
func NewCLIWriterWithExecutor(repoDir string, executor CommandExecutor) *CLIWriter {
	return &CLIWriter{
		repoDir:  repoDir,
		executor: executor,
	}
}

// Dir returns the repository directory.
func (w *CLIWriter) Dir() string {
	return w.repoDir
}

// Add stages the given paths.
func (w *CLIWriter) Add(ctx context.Context, paths ...string) error {
	if len(paths) == 0 {
		return nil
	}

	args := append([]string{"add", "--"}, paths...)
	output, err := w.executor.Run(ctx, w.repoDir, "git", args...)
	if err != nil {
		return errors.NewGitError("failed to stage files", err).
			WithRepository(w.repoDir).
			WithGitOutput(string(output))
	}
	return nil
}

// Commit records staged changes. A clean index is not an error.
func (w *CLIWriter) Commit(ctx context.Context, message string, noVerify bool) error {
	args := []string{"commit", "-m", message}
	if noVerify {
		args = append(args, "--no-verify")
	}

	output, err := w.executor.Run(ctx, w.repoDir, "git", args...)
	if err != nil {
		if strings.Contains(string(output), "nothing to commit") {
			logging.FromContext(ctx).Warn("nothing to commit", "message", message)
			return nil
		}
		return errors.NewGitError("failed to commit release", err).
			WithRepository(w.repoDir).
			WithGitOutput(string(output))
	}
	return nil
}

// Tag creates an annotated tag at HEAD.
func (w *CLIWriter) Tag(ctx context.Context, name, message string) error {
	output, err := w.executor.Run(ctx, w.repoDir, "git", "tag", "-a", name, "-m", message)
	if err != nil {
		return errors.NewGitError("failed to create tag "+name, err).
			WithRepository(w.repoDir).
			WithGitOutput(string(output))
	}
	return nil
}

// Push pushes the branch with its annotated tags in a single atomic
// transaction. Remotes that reject atomic pushes are retried without it.
// When the remote is already current the returned error wraps
// errors.ErrNothingToPush with info severity.
func (w *CLIWriter) Push(ctx context.Context, opts PushOptions) error {
	if strings.TrimSpace(opts.Remote) == "" {
		return errors.NewValidationError("remote is required to push").WithField("remote")
	}
	if strings.TrimSpace(opts.Branch) == "" {
		return errors.NewValidationError("branch is required to push").WithField("branch")
	}

	logger := logging.FromContext(ctx).With("remote", opts.Remote, "branch", opts.Branch)

	var rejected error
	output, err := w.push(ctx, opts, true)
	if err != nil && containsAny(string(output), atomicMarkers) {
		rejected = errors.NewGitError("remote rejected atomic push", errors.ErrAtomicPushUnsupported).
			WithRemote(opts.Remote).
			WithBranch(opts.Branch).
			WithGitOutput(string(output)).
			WithSeverity(errors.SeverityWarning)
		logger.Warn("retrying push without --atomic", "error", rejected.Error())
		output, err = w.push(ctx, opts, false)
	}
	if err != nil {
		if rejected != nil {
			err = errors.Join(rejected, err)
		}
		return errors.NewGitError("failed to push release", err).
			WithRemote(opts.Remote).
			WithBranch(opts.Branch).
			WithRepository(w.repoDir).
			WithGitOutput(string(output))
	}

	if containsAny(string(output), upToDateMarkers) {
		return errors.NewGitError("remote is up to date", errors.ErrNothingToPush).
			WithRemote(opts.Remote).
			WithBranch(opts.Branch).
			WithSeverity(errors.SeverityInfo)
	}

	logger.Debug("pushed", "output", strings.TrimSpace(string(output)))
	return nil
}

func (w *CLIWriter) push(ctx context.Context, opts PushOptions, atomic bool) ([]byte, error) {
	args := PushArgs(opts, atomic)
	return w.executor.Run(ctx, w.repoDir, "git", args...)
}

// PushArgs returns the git arguments for a release push.
func PushArgs(opts PushOptions, atomic bool) []string {
	args := []string{"push", "--follow-tags"}
	if atomic {
		args = append(args, "--atomic")
	}
	args = append(args, opts.Remote, opts.Branch)
	if opts.NoVerify {
		args = append(args, "--no-verify")
	}
	return args
}

func containsAny(s string, markers []string) bool {
	for _, m := range markers {
		if strings.Contains(s, m) {
			return true
		}
	}
	return false
}
