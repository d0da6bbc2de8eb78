package release

import (
	"context"

	"github.com/Iron-Ham/versioner/internal/errors"
	"github.com/Iron-Ham/versioner/internal/git"
	"github.com/Iron-Ham/versioner/internal/logging"
)

// PushAgent pushes a release to its remote.
type PushAgent struct {
	git git.Writer
}

// NewPushAgent creates a PushAgent.
func NewPushAgent(w git.Writer) *PushAgent {
	return &PushAgent{git: w}
}

// Push pushes branch and tags. A remote that is already current is logged
// and not treated as a failure; every other error is returned unchanged.
func (a *PushAgent) Push(ctx context.Context, opts git.PushOptions) error {
	err := a.git.Push(ctx, opts)
	if errors.Is(err, errors.ErrNothingToPush) {
		logging.FromContext(ctx).Info("nothing to push", "remote", opts.Remote, "branch", opts.Branch)
		return nil
	}
	return err
}
