// Package strategy applies a resolved version to the working tree: it writes
// manifests and changelogs, then records a release commit and tag.
//
// Two strategies exist. [Project] releases a single project from its own
// tag lineage. [Workspace] releases every project with one shared version
// in a single commit. Both build a list of file changes first so that a dry
// run can report exactly what a real run would touch.
//
// Writes are not rolled back when a later step fails; the error reports
// which file or git command failed.
package strategy

import (
	"context"
	"path/filepath"
	"time"

	"github.com/Iron-Ham/versioner/internal/changelog"
	"github.com/Iron-Ham/versioner/internal/errors"
	"github.com/Iron-Ham/versioner/internal/git"
	"github.com/Iron-Ham/versioner/internal/history"
	"github.com/Iron-Ham/versioner/internal/logging"
	"github.com/Iron-Ham/versioner/internal/manifest"
	"github.com/Iron-Ham/versioner/internal/tagtemplate"
	"github.com/Iron-Ham/versioner/internal/workspace"
)

// DefaultCommitMessageFormat is used when no format is configured.
const DefaultCommitMessageFormat = "chore(${projectName}): release version ${version}"

// VersionOptions is the input of a strategy.
type VersionOptions struct {
	DryRun          bool
	NewVersion      string
	NoVerify        bool
	TagPrefix       string
	ChangelogHeader string
	// CommitMessageFormat is rendered with projectName, version and tag.
	CommitMessageFormat string
	Preset              string

	// WorkspaceRoot is the absolute path every other path is relative to.
	WorkspaceRoot string
	ProjectName   string
	// ProjectRoot and Manifest locate the released project; unused by the
	// workspace strategy.
	ProjectRoot string
	Manifest    string

	// Projects are released together by the workspace strategy.
	Projects             []*workspace.Project
	SkipRootChangelog    bool
	SkipProjectChangelog bool

	// Commits feed the changelog section.
	Commits []history.Commit
	// Date stamps the changelog section; zero means now.
	Date time.Time
}

// Outcome describes what a strategy did, or would do in a dry run.
type Outcome struct {
	Tag           string
	CommitMessage string
	// Files are the written paths, relative to the workspace root.
	Files  []string
	DryRun bool
}

// Strategy applies a version.
type Strategy interface {
	Apply(ctx context.Context, opts VersionOptions) (Outcome, error)
}

// -----------------------------------------------------------------------------
// File changes
// -----------------------------------------------------------------------------

type changeKind string

const (
	changeManifest  changeKind = "manifest"
	changeChangelog changeKind = "changelog"
)

// change is a single file a release writes.
type change struct {
	kind    changeKind
	path    string // relative to the workspace root
	project string
}

// apply writes changes, commits them and tags the commit. In a dry run it
// only logs.
func apply(ctx context.Context, w git.Writer, opts VersionOptions, changes []change) (Outcome, error) {
	logger := logging.FromContext(ctx).With("version", opts.NewVersion, "dry_run", opts.DryRun)

	tag := opts.TagPrefix + opts.NewVersion
	format := opts.CommitMessageFormat
	if format == "" {
		format = DefaultCommitMessageFormat
	}
	message := tagtemplate.Resolve(format, tagtemplate.Context{
		tagtemplate.KeyProjectName: opts.ProjectName,
		tagtemplate.KeyVersion:     opts.NewVersion,
		tagtemplate.KeyTag:         tag,
	})

	date := opts.Date
	if date.IsZero() {
		date = time.Now()
	}
	section, err := changelog.Render(changelog.Build(opts.NewVersion, date, opts.Commits, opts.Preset))
	if err != nil {
		return Outcome{}, errors.NewVersionError("failed to render changelog", err).
			WithProject(opts.ProjectName).
			WithVersion(opts.NewVersion)
	}

	out := Outcome{Tag: tag, CommitMessage: message, DryRun: opts.DryRun}

	for _, c := range changes {
		abs := filepath.Join(opts.WorkspaceRoot, filepath.FromSlash(c.path))

		if c.kind == changeManifest && !manifest.Exists(abs) {
			logger.Warn("manifest not found, skipping", "file", c.path, "project", c.project)
			continue
		}
		if opts.DryRun {
			logger.Info("would write "+string(c.kind), "file", c.path, "project", c.project)
			out.Files = append(out.Files, c.path)
			continue
		}

		if err := write(c, abs, opts, section); err != nil {
			return out, errors.NewVersionError("failed to write "+string(c.kind), err).
				WithProject(c.project).
				WithVersion(opts.NewVersion).
				WithFile(c.path)
		}
		logger.Debug("wrote "+string(c.kind), "file", c.path)
		out.Files = append(out.Files, c.path)
	}

	// A tag on an empty release would annotate the previous commit.
	if len(out.Files) == 0 {
		return out, errors.NewVersionError("no manifest or changelog to commit", errors.ErrNothingToRelease).
			WithProject(opts.ProjectName).
			WithVersion(opts.NewVersion)
	}

	if opts.DryRun {
		logger.Info("would commit and tag", "message", message, "tag", tag)
		return out, nil
	}

	if err := w.Add(ctx, out.Files...); err != nil {
		return out, err
	}
	if err := w.Commit(ctx, message, opts.NoVerify); err != nil {
		return out, err
	}
	if err := w.Tag(ctx, tag, message); err != nil {
		return out, err
	}

	logger.Info("tagged release", "tag", tag, "files", len(out.Files))
	return out, nil
}

func write(c change, abs string, opts VersionOptions, section string) error {
	switch c.kind {
	case changeManifest:
		return manifest.WriteVersion(abs, opts.NewVersion)
	case changeChangelog:
		return changelog.Prepend(abs, opts.ChangelogHeader, section)
	default:
		return errors.NewValidationError("unknown change kind").WithValue(c.kind)
	}
}

func joinPath(elem ...string) string {
	return filepath.ToSlash(filepath.Join(elem...))
}
