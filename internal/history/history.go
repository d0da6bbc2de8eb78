// Package history reads release history (semver tags and the commits made
// since them) from a git repository using go-git.
//
// It is read-only: nothing in this package mutates the repository, which
// is what makes version analysis safe to run before any write.
package history

import (
	"context"
	"path/filepath"
	"strings"

	"github.com/Masterminds/semver/v3"
	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/object"

	"github.com/Iron-Ham/versioner/internal/errors"
)

// Tag is a release tag whose name is prefix + semantic version.
type Tag struct {
	Name    string
	Version *semver.Version
	Commit  plumbing.Hash
}

// Commit is a commit that is part of a release.
type Commit struct {
	Hash    string
	Message string
}

// Subject returns the first line of the commit message.
func (c Commit) Subject() string {
	subject, _, _ := strings.Cut(c.Message, "\n")
	return strings.TrimSpace(subject)
}

// ShortHash returns the abbreviated commit hash.
func (c Commit) ShortHash() string {
	if len(c.Hash) > 7 {
		return c.Hash[:7]
	}
	return c.Hash
}

// Reader is the read side of release history consumed by version analysis
// and changelog rendering.
type Reader interface {
	// LatestTag returns the highest semver tag named prefix+version, or nil
	// when there is none.
	LatestTag(ctx context.Context, prefix string) (*Tag, error)

	// CommitsSince returns commits reachable from HEAD but not from since,
	// limited to those touching path (relative to the workspace root).
	// A nil since returns the full history of path. Newest first.
	CommitsSince(ctx context.Context, since *Tag, path string) ([]Commit, error)
}

// Repository implements Reader over an on-disk git repository.
type Repository struct {
	repo     *git.Repository
	repoRoot string
	baseDir  string
}

var _ Reader = (*Repository)(nil)

// Open opens the repository containing dir. Paths given to CommitsSince are
// resolved relative to dir.
func Open(dir string) (*Repository, error) {
	absDir, err := filepath.Abs(dir)
	if err != nil {
		return nil, errors.Wrap(err, "failed to resolve workspace root")
	}

	repo, err := git.PlainOpenWithOptions(absDir, &git.PlainOpenOptions{DetectDotGit: true})
	if err != nil {
		if errors.Is(err, git.ErrRepositoryNotExists) {
			return nil, errors.NewGitError("failed to open repository", errors.ErrNotGitRepository).WithRepository(absDir)
		}
		return nil, errors.NewGitError("failed to open repository", err).WithRepository(absDir)
	}

	wt, err := repo.Worktree()
	if err != nil {
		return nil, errors.NewGitError("failed to read worktree", err).WithRepository(absDir)
	}

	return &Repository{
		repo:     repo,
		repoRoot: wt.Filesystem.Root(),
		baseDir:  absDir,
	}, nil
}

// LatestTag returns the highest semver tag carrying prefix among the tags
// reachable from HEAD. Releases made on other branches are ignored.
func (r *Repository) LatestTag(ctx context.Context, prefix string) (*Tag, error) {
	head, err := r.repo.Head()
	if err != nil {
		if errors.Is(err, plumbing.ErrReferenceNotFound) {
			return nil, nil
		}
		return nil, errors.NewGitError("failed to resolve HEAD", err).WithRepository(r.repoRoot)
	}

	onHistory, err := r.reachable(ctx, head.Hash())
	if err != nil {
		return nil, errors.NewGitError("failed to walk history", err).WithRepository(r.repoRoot)
	}

	refs, err := r.repo.Tags()
	if err != nil {
		return nil, errors.NewGitError("failed to list tags", err).WithRepository(r.repoRoot)
	}
	defer refs.Close()

	var latest *Tag
	err = refs.ForEach(func(ref *plumbing.Reference) error {
		if err := ctx.Err(); err != nil {
			return err
		}

		name := ref.Name().Short()
		version, ok := ParseTag(name, prefix)
		if !ok {
			return nil
		}
		if latest != nil && !version.GreaterThan(latest.Version) {
			return nil
		}

		commit, err := r.peel(ref)
		if err != nil {
			return err
		}
		if _, ok := onHistory[commit]; !ok {
			return nil
		}
		latest = &Tag{Name: name, Version: version, Commit: commit}
		return nil
	})
	if err != nil {
		return nil, errors.NewGitError("failed to read tags", err).WithRepository(r.repoRoot)
	}
	return latest, nil
}

// reachable returns every commit reachable from from.
func (r *Repository) reachable(ctx context.Context, from plumbing.Hash) (map[plumbing.Hash]struct{}, error) {
	iter, err := r.repo.Log(&git.LogOptions{From: from})
	if err != nil {
		return nil, err
	}

	seen := make(map[plumbing.Hash]struct{})
	err = iter.ForEach(func(c *object.Commit) error {
		if err := ctx.Err(); err != nil {
			return err
		}
		seen[c.Hash] = struct{}{}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return seen, nil
}

// peel resolves annotated tags to the commit they point at.
func (r *Repository) peel(ref *plumbing.Reference) (plumbing.Hash, error) {
	tagObj, err := r.repo.TagObject(ref.Hash())
	switch {
	case err == nil:
		commit, err := tagObj.Commit()
		if err != nil {
			return plumbing.ZeroHash, err
		}
		return commit.Hash, nil
	case errors.Is(err, plumbing.ErrObjectNotFound):
		// Lightweight tag.
		return ref.Hash(), nil
	default:
		return plumbing.ZeroHash, err
	}
}

// CommitsSince lists the commits made after since that touch path.
func (r *Repository) CommitsSince(ctx context.Context, since *Tag, path string) ([]Commit, error) {
	head, err := r.repo.Head()
	if err != nil {
		if errors.Is(err, plumbing.ErrReferenceNotFound) {
			// No commits yet.
			return nil, nil
		}
		return nil, errors.NewGitError("failed to resolve HEAD", err).WithRepository(r.repoRoot)
	}

	released := map[plumbing.Hash]struct{}{}
	if since != nil {
		released, err = r.reachable(ctx, since.Commit)
		if err != nil {
			return nil, errors.NewGitError("failed to walk released history", err).WithRepository(r.repoRoot)
		}
	}

	opts := &git.LogOptions{From: head.Hash(), Order: git.LogOrderCommitterTime}
	if filter := r.pathFilter(path); filter != nil {
		opts.PathFilter = filter
	}

	iter, err := r.repo.Log(opts)
	if err != nil {
		return nil, errors.NewGitError("failed to read log", err).WithRepository(r.repoRoot)
	}

	var commits []Commit
	err = iter.ForEach(func(c *object.Commit) error {
		if err := ctx.Err(); err != nil {
			return err
		}
		if _, ok := released[c.Hash]; ok {
			return nil
		}
		commits = append(commits, Commit{Hash: c.Hash.String(), Message: c.Message})
		return nil
	})
	if err != nil {
		return nil, errors.NewGitError("failed to read log", err).WithRepository(r.repoRoot)
	}
	return commits, nil
}

// pathFilter matches repository paths inside path, or returns nil when
// path covers the whole repository.
func (r *Repository) pathFilter(path string) func(string) bool {
	abs := path
	if !filepath.IsAbs(abs) {
		abs = filepath.Join(r.baseDir, path)
	}
	rel, err := filepath.Rel(r.repoRoot, abs)
	if err != nil || rel == "." {
		return nil
	}
	rel = filepath.ToSlash(rel)
	return func(p string) bool {
		return p == rel || strings.HasPrefix(p, rel+"/")
	}
}

// ParseTag extracts the semantic version from a tag named prefix+version.
func ParseTag(name, prefix string) (*semver.Version, bool) {
	if !strings.HasPrefix(name, prefix) {
		return nil, false
	}
	version, err := semver.StrictNewVersion(strings.TrimPrefix(name, prefix))
	if err != nil {
		return nil, false
	}
	return version, true
}
