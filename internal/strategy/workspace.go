package strategy

import (
	"context"

	"github.com/Iron-Ham/versioner/internal/changelog"
	"github.com/Iron-Ham/versioner/internal/git"
	"github.com/Iron-Ham/versioner/internal/workspace"
)

// Workspace releases every project with one shared version. The root
// manifest and changelog are included, and all changes land in a single
// commit under a single tag.
type Workspace struct {
	git git.Writer
}

var _ Strategy = (*Workspace)(nil)

// NewWorkspace creates a synchronized strategy.
func NewWorkspace(w git.Writer) *Workspace {
	return &Workspace{git: w}
}

// Apply implements Strategy.
func (s *Workspace) Apply(ctx context.Context, opts VersionOptions) (Outcome, error) {
	changes := []change{
		{kind: changeManifest, path: workspace.DefaultManifest, project: opts.ProjectName},
	}
	if !opts.SkipRootChangelog {
		changes = append(changes, change{kind: changeChangelog, path: changelog.FileName, project: opts.ProjectName})
	}

	for _, p := range opts.Projects {
		if p.Root == "" || p.Root == "." {
			continue
		}
		changes = append(changes, change{kind: changeManifest, path: p.ManifestPath(), project: p.Name})
		if !opts.SkipProjectChangelog {
			changes = append(changes, change{kind: changeChangelog, path: p.ChangelogPath(), project: p.Name})
		}
	}

	return apply(ctx, s.git, opts, changes)
}
