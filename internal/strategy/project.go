package strategy

import (
	"context"

	"github.com/Iron-Ham/versioner/internal/changelog"
	"github.com/Iron-Ham/versioner/internal/git"
	"github.com/Iron-Ham/versioner/internal/workspace"
)

// Project releases a single project: its manifest and changelog, one commit
// and one tag.
type Project struct {
	git git.Writer
}

var _ Strategy = (*Project)(nil)

// NewProject creates a per-project strategy.
func NewProject(w git.Writer) *Project {
	return &Project{git: w}
}

// Apply implements Strategy.
func (s *Project) Apply(ctx context.Context, opts VersionOptions) (Outcome, error) {
	manifestName := opts.Manifest
	if manifestName == "" {
		manifestName = workspace.DefaultManifest
	}

	changes := []change{
		{kind: changeManifest, path: joinPath(opts.ProjectRoot, manifestName), project: opts.ProjectName},
		{kind: changeChangelog, path: joinPath(opts.ProjectRoot, changelog.FileName), project: opts.ProjectName},
	}
	return apply(ctx, s.git, opts, changes)
}
