package git

import "context"

// Writer defines the repository mutations performed by a release.
// Reads (tags, history) live in the history package.
type Writer interface {
	// Add stages paths relative to the repository root.
	Add(ctx context.Context, paths ...string) error

	// Commit records the staged changes. When noVerify is set, commit hooks
	// are skipped.
	Commit(ctx context.Context, message string, noVerify bool) error

	// Tag creates an annotated tag at HEAD.
	Tag(ctx context.Context, name, message string) error

	// Push publishes the branch and its tags to the remote.
	Push(ctx context.Context, opts PushOptions) error

	// Dir returns the repository directory commands run in.
	Dir() string
}

// PushOptions describes a release push.
type PushOptions struct {
	Remote   string
	Branch   string
	NoVerify bool
}

var _ Writer = (*CLIWriter)(nil)
