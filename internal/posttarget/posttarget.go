// Package posttarget runs the follow-up targets of a release in order,
// stopping at the first failure.
package posttarget

import (
	"context"
	"fmt"
	"strings"

	"github.com/Iron-Ham/versioner/internal/errors"
	"github.com/Iron-Ham/versioner/internal/executor"
	"github.com/Iron-Ham/versioner/internal/logging"
	"github.com/Iron-Ham/versioner/internal/tagtemplate"
)

// Spec is one post target with its caller options.
type Spec struct {
	Ref     executor.TargetRef
	Options map[string]string
}

// Parse validates every identifier before any target runs.
func Parse(ids []string) ([]Spec, error) {
	specs := make([]Spec, 0, len(ids))
	var errs []error
	for _, id := range ids {
		ref, err := executor.ParseTargetRef(id)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		specs = append(specs, Spec{Ref: ref})
	}
	if len(errs) > 0 {
		return nil, errors.Join(errs...)
	}
	return specs, nil
}

// Runner executes post targets through an executor.
type Runner struct {
	executor executor.Executor
}

// NewRunner creates a Runner.
func NewRunner(e executor.Executor) *Runner {
	return &Runner{executor: e}
}

// Run invokes specs sequentially. Option values are rendered with vars, and
// vars themselves are passed to every target under the option values.
// The first failing result aborts the run with a *errors.PostTargetError;
// later targets are not started.
func (r *Runner) Run(ctx context.Context, specs []Spec, vars tagtemplate.Context) error {
	logger := logging.FromContext(ctx)

	for _, spec := range specs {
		tlog := logger.WithTarget(spec.Ref.String())
		tlog.Info("running post target")

		if err := r.runOne(ctx, spec, vars, tlog); err != nil {
			return err
		}
		tlog.Info("post target succeeded")
	}
	return nil
}

func (r *Runner) runOne(ctx context.Context, spec Spec, vars tagtemplate.Context, logger *logging.Logger) error {
	fail := func(cause error) error {
		return errors.NewPostTargetError(
			fmt.Sprintf("Something went wrong with post target %q", spec.Ref.Project+":"+spec.Ref.Target), cause).
			WithProject(spec.Ref.Project).
			WithTarget(spec.Ref.Target).
			WithConfiguration(spec.Ref.Configuration)
	}

	if err := ctx.Err(); err != nil {
		return fail(errors.Join(errors.ErrCanceled, err))
	}

	options := make(map[string]string, len(vars)+len(spec.Options))
	for k, v := range vars {
		options[k] = v
	}
	for k, v := range spec.Options {
		options[k] = tagtemplate.Resolve(v, vars)
	}

	results, err := r.executor.Invoke(ctx, spec.Ref, options)
	if err != nil {
		return fail(err)
	}

	for res := range results {
		if res.Output != "" {
			logger.Debug("post target output", "command", res.Command, "output", strings.TrimSpace(res.Output))
		}
		if !res.Success {
			cause := errors.ErrPostTargetFailed
			if res.Err != nil {
				cause = errors.Join(errors.ErrPostTargetFailed, res.Err)
			}
			return fail(cause)
		}
	}
	return nil
}
