// Package executor invokes named project targets on behalf of the release
// pipeline. An invocation yields a stream of results that the caller
// consumes until it sees a failure or the stream ends.
package executor

import (
	"context"
	"iter"
	"maps"
	"os/exec"
	"strings"

	"github.com/Iron-Ham/versioner/internal/errors"
	"github.com/Iron-Ham/versioner/internal/logging"
	"github.com/Iron-Ham/versioner/internal/tagtemplate"
	"github.com/Iron-Ham/versioner/internal/workspace"
)

// TargetRef identifies a target as project:target[:configuration].
type TargetRef struct {
	Project       string
	Target        string
	Configuration string
}

// ParseTargetRef parses a project:target[:configuration] identifier.
func ParseTargetRef(id string) (TargetRef, error) {
	parts := strings.Split(id, ":")
	if len(parts) < 2 || len(parts) > 3 {
		return TargetRef{}, errors.NewValidationError("target must be project:target[:configuration]").
			WithField("target").
			WithValue(id)
	}
	for _, p := range parts {
		if strings.TrimSpace(p) == "" {
			return TargetRef{}, errors.NewValidationError("target has an empty segment").
				WithField("target").
				WithValue(id)
		}
	}

	ref := TargetRef{Project: parts[0], Target: parts[1]}
	if len(parts) == 3 {
		ref.Configuration = parts[2]
	}
	return ref, nil
}

// String returns the identifier form of the reference.
func (r TargetRef) String() string {
	s := r.Project + ":" + r.Target
	if r.Configuration != "" {
		s += ":" + r.Configuration
	}
	return s
}

// Result is one streamed outcome of an invocation.
type Result struct {
	Success bool
	// Command is the rendered command that produced the result, if any.
	Command string
	Output  string
	Err     error
}

// Executor invokes targets. Errors returned directly from Invoke mean the
// target could not be started; failures while running are streamed as
// results with Success false.
type Executor interface {
	Invoke(ctx context.Context, ref TargetRef, options map[string]string) (iter.Seq[Result], error)
}

// Shell runs a command line.
type Shell interface {
	Run(ctx context.Context, dir, command string) ([]byte, error)
}

// SystemShell runs commands through sh -c.
type SystemShell struct{}

// Run executes command in dir and returns combined output.
func (SystemShell) Run(ctx context.Context, dir, command string) ([]byte, error) {
	cmd := exec.CommandContext(ctx, "sh", "-c", command)
	cmd.Dir = dir
	return cmd.CombinedOutput()
}

// WorkspaceExecutor runs targets declared in the workspace file.
type WorkspaceExecutor struct {
	workspace *workspace.Workspace
	shell     Shell
}

var _ Executor = (*WorkspaceExecutor)(nil)

// NewWorkspaceExecutor creates an executor over ws using the system shell.
func NewWorkspaceExecutor(ws *workspace.Workspace) *WorkspaceExecutor {
	return &WorkspaceExecutor{workspace: ws, shell: SystemShell{}}
}

// NewWorkspaceExecutorWithShell creates an executor with a custom shell.
// This is primarily useful for testing.
func NewWorkspaceExecutorWithShell(ws *workspace.Workspace, shell Shell) *WorkspaceExecutor {
	return &WorkspaceExecutor{workspace: ws, shell: shell}
}

// Invoke resolves ref and streams one result per target command. Options
// are layered target defaults, then the configuration, then the caller.
func (e *WorkspaceExecutor) Invoke(ctx context.Context, ref TargetRef, options map[string]string) (iter.Seq[Result], error) {
	project, target, err := e.workspace.Target(ref.Project, ref.Target)
	if err != nil {
		return nil, err
	}

	vars := tagtemplate.Context{
		tagtemplate.KeyProjectName: project.Name,
		tagtemplate.KeyTarget:      ref.Target,
		"configuration":            ref.Configuration,
	}
	maps.Copy(vars, target.Options)
	if ref.Configuration != "" {
		conf, ok := target.Configurations[ref.Configuration]
		if !ok {
			return nil, errors.NewNotFoundError("configuration", ref.String()).
				WithCause(errors.ErrTargetNotFound)
		}
		maps.Copy(vars, conf)
	}
	maps.Copy(vars, options)

	dir := e.workspace.Dir(project)
	logger := logging.FromContext(ctx).WithTarget(ref.String())

	return func(yield func(Result) bool) {
		for _, raw := range target.Commands {
			command := tagtemplate.Resolve(raw, vars)
			logger.Debug("running command", "command", command, "dir", dir)

			output, err := e.shell.Run(ctx, dir, command)
			res := Result{Success: err == nil, Command: command, Output: string(output), Err: err}
			if !yield(res) {
				return
			}
		}
	}, nil
}
