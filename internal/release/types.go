package release

import (
	"github.com/Iron-Ham/versioner/internal/posttarget"
)

// Phase represents a phase of the release pipeline.
type Phase string

const (
	// PhaseResolveTag computes the tag prefix.
	PhaseResolveTag Phase = "resolve_tag"

	// PhaseResolveVersion computes the next version from history.
	PhaseResolveVersion Phase = "resolve_version"

	// PhaseApplyVersion writes files, commits and tags.
	PhaseApplyVersion Phase = "apply_version"

	// PhasePush pushes the release commit and tag.
	PhasePush Phase = "push"

	// PhasePostTargets runs the post targets.
	PhasePostTargets Phase = "post_targets"

	// PhaseDone indicates the release completed successfully, including
	// the case where nothing changed.
	PhaseDone Phase = "done"

	// PhaseFailed indicates the release failed.
	PhaseFailed Phase = "failed"
)

// String returns the string representation of the phase.
func (p Phase) String() string {
	return string(p)
}

// IsTerminal returns true if this phase represents a final state.
func (p Phase) IsTerminal() bool {
	return p == PhaseDone || p == PhaseFailed
}

// WorkspaceProjectName names the synthetic project of a synchronized release.
const WorkspaceProjectName = "workspace"

// Options is the invocation record of a release.
type Options struct {
	Push       bool
	Remote     string
	DryRun     bool
	BaseBranch string
	NoVerify   bool

	SyncVersions         bool
	SkipRootChangelog    bool
	SkipProjectChangelog bool

	// Version is an explicit version. ReleaseAs, a version or keyword,
	// takes precedence over it.
	Version   string
	ReleaseAs string
	Preid     string

	ChangelogHeader string
	// VersionTagPrefix is a tag template; nil selects the default policy.
	VersionTagPrefix *string

	PostTargets []posttarget.Spec

	CommitMessageFormat string
	Preset              string
}

// releaseType returns the requested release type, if any.
func (o Options) releaseType() string {
	if o.ReleaseAs != "" {
		return o.ReleaseAs
	}
	return o.Version
}

// Result is the outcome of a release. Diagnostics are only logged.
type Result struct {
	Success bool
	// Phase is the terminal phase reached.
	Phase Phase
	// Version and Tag are empty when nothing changed.
	Version string
	Tag     string
	DryRun  bool
}
