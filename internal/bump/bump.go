// Package bump computes the next semantic version of a project from its
// release history.
//
// The previous version is read from the highest tag carrying the project's
// tag prefix, so every project in a workspace follows its own tag lineage.
// A bump is only produced when commits touching the project were made
// since that tag.
package bump

import (
	"context"

	"github.com/Masterminds/semver/v3"

	"github.com/Iron-Ham/versioner/internal/convention"
	"github.com/Iron-Ham/versioner/internal/errors"
	"github.com/Iron-Ham/versioner/internal/history"
	"github.com/Iron-Ham/versioner/internal/logging"
)

// InitialVersion is the previous version assumed when no release tag exists.
const InitialVersion = "0.0.0"

// Request is the input of a bump computation.
type Request struct {
	// ProjectRoot scopes commit analysis, relative to the workspace root.
	ProjectRoot string
	// TagPrefix filters release tags.
	TagPrefix string
	// ReleaseType is an explicit version, a release keyword, or empty to
	// infer the bump from commit messages.
	ReleaseType string
	// Preid is the prerelease identifier for pre* bumps.
	Preid string
	// Preset is the commit naming convention.
	Preset string
}

// Resolution is the outcome of a bump: either a new version or no change.
type Resolution struct {
	version  string
	Previous string
	// PreviousTag is empty when the project was never released.
	PreviousTag string
	// Commits are the commits included in the release, newest first.
	Commits []history.Commit
}

// NoChange is the resolution when nothing warrants a release.
var NoChange = Resolution{}

// NewVersion returns a resolution for version v.
func NewVersion(v string) Resolution {
	return Resolution{version: v}
}

// Changed reports whether a new version was resolved.
func (r Resolution) Changed() bool {
	return r.version != ""
}

// Version returns the new version, or "" for NoChange.
func (r Resolution) Version() string {
	return r.version
}

// Bumper is the capability the release pipeline depends on.
type Bumper interface {
	Bump(ctx context.Context, req Request) (Resolution, error)
}

// Resolver implements Bumper over a history.Reader.
type Resolver struct {
	history history.Reader
}

var _ Bumper = (*Resolver)(nil)

// NewResolver creates a Resolver reading from h.
func NewResolver(h history.Reader) *Resolver {
	return &Resolver{history: h}
}

// Bump resolves the next version for req. It only reads history; errors are
// returned as *errors.BumpError and are never worth retrying.
func (r *Resolver) Bump(ctx context.Context, req Request) (Resolution, error) {
	logger := logging.FromContext(ctx).With("tag_prefix", req.TagPrefix)

	wrap := func(msg string, err error) error {
		return errors.NewBumpError(msg, err).
			WithProject(req.ProjectRoot).
			WithTagPrefix(req.TagPrefix).
			WithReleaseType(req.ReleaseType)
	}

	last, err := r.history.LatestTag(ctx, req.TagPrefix)
	if err != nil {
		return NoChange, wrap("failed to read release tags", err)
	}

	previous := semver.MustParse(InitialVersion)
	previousTag := ""
	if last != nil {
		previous = last.Version
		previousTag = last.Name
	}

	commits, err := r.history.CommitsSince(ctx, last, req.ProjectRoot)
	if err != nil {
		return NoChange, wrap("failed to read commits", err)
	}
	logger.Debug("analyzed history", "previous", previous.String(), "commits", len(commits))

	if len(commits) == 0 {
		return NoChange, nil
	}

	next, err := r.next(previous, commits, req)
	if err != nil {
		return NoChange, wrap("failed to compute version", err)
	}

	return Resolution{
		version:     next.String(),
		Previous:    previous.String(),
		PreviousTag: previousTag,
		Commits:     commits,
	}, nil
}

func (r *Resolver) next(previous *semver.Version, commits []history.Commit, req Request) (*semver.Version, error) {
	if req.ReleaseType != "" && !IsKeyword(req.ReleaseType) {
		explicit, err := semver.StrictNewVersion(req.ReleaseType)
		if err != nil {
			return nil, errors.NewValidationError("release type is neither a version nor a keyword").
				WithField("releaseType").
				WithValue(req.ReleaseType).
				WithCause(errors.ErrInvalidVersion)
		}
		if !explicit.GreaterThan(previous) {
			return nil, errors.NewValidationError("explicit version must be greater than "+previous.String()).
				WithField("version").
				WithValue(req.ReleaseType).
				WithCause(errors.ErrVersionUnchanged)
		}
		return explicit, nil
	}

	keyword := req.ReleaseType
	if keyword == "" {
		keyword = inferKeyword(previous, commits, req)
	}
	return Increment(previous, keyword, req.Preid)
}

// inferKeyword maps the convention's recommendation to a keyword, moving it
// to the prerelease track when a preid is requested.
func inferKeyword(previous *semver.Version, commits []history.Commit, req Request) string {
	p := convention.NewParser(req.Preset)
	parsed := make([]convention.Commit, 0, len(commits))
	for _, c := range commits {
		parsed = append(parsed, p.Parse(c.Message))
	}
	level := convention.Recommend(parsed).String()

	if req.Preid == "" {
		return level
	}
	if hasPreid(previous, req.Preid) {
		return Prerelease
	}
	return "pre" + level
}
