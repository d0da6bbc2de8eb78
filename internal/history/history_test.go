package history

import (
	"context"
	"testing"

	"github.com/Iron-Ham/versioner/internal/errors"
	"github.com/Iron-Ham/versioner/internal/testutil"
)

func TestParseTag(t *testing.T) {
	tests := []struct {
		name   string
		tag    string
		prefix string
		want   string
		wantOK bool
	}{
		{"project prefix", "pkg-1.2.0", "pkg-", "1.2.0", true},
		{"sync prefix", "v2.0.0-beta.1", "v", "2.0.0-beta.1", true},
		{"empty prefix", "1.0.0", "", "1.0.0", true},
		{"other project", "other-1.0.0", "pkg-", "", false},
		{"longer project sharing prefix", "pkg-utils-1.0.0", "pkg-", "", false},
		{"not semver", "pkg-latest", "pkg-", "", false},
		{"partial version", "pkg-1.2", "pkg-", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := ParseTag(tt.tag, tt.prefix)
			if ok != tt.wantOK {
				t.Fatalf("ParseTag(%q, %q) ok = %v, want %v", tt.tag, tt.prefix, ok, tt.wantOK)
			}
			if ok && got.String() != tt.want {
				t.Errorf("ParseTag() = %q, want %q", got.String(), tt.want)
			}
		})
	}
}

func TestCommit_Subject(t *testing.T) {
	c := Commit{Hash: "0123456789abcdef", Message: "feat(pkg): add thing\n\nbody text\n"}
	if got := c.Subject(); got != "feat(pkg): add thing" {
		t.Errorf("Subject() = %q", got)
	}
	if got := c.ShortHash(); got != "0123456" {
		t.Errorf("ShortHash() = %q", got)
	}
	if got := (Commit{Hash: "abc"}).ShortHash(); got != "abc" {
		t.Errorf("ShortHash() short = %q", got)
	}
}

func TestOpen_NotARepository(t *testing.T) {
	_, err := Open(t.TempDir())
	if err == nil {
		t.Fatal("Open() on a plain directory should fail")
	}
	if !errors.Is(err, errors.ErrNotGitRepository) {
		t.Errorf("Open() error = %v, want ErrNotGitRepository", err)
	}
}

func TestRepository_LatestTag(t *testing.T) {
	testutil.SkipIfNoGit(t)

	dir := testutil.SetupTestRepo(t)
	testutil.Tag(t, dir, "pkg-1.2.0")
	testutil.CommitFile(t, dir, "libs/pkg/a.txt", "a", "feat: a")
	testutil.Tag(t, dir, "pkg-1.10.0")
	testutil.Git(t, dir, "tag", "pkg-1.9.0") // lightweight
	testutil.Tag(t, dir, "other-3.0.0")

	repo, err := Open(dir)
	if err != nil {
		t.Fatalf("Open() error: %v", err)
	}

	tag, err := repo.LatestTag(context.Background(), "pkg-")
	if err != nil {
		t.Fatalf("LatestTag() error: %v", err)
	}
	if tag == nil || tag.Name != "pkg-1.10.0" {
		t.Fatalf("LatestTag() = %+v, want pkg-1.10.0", tag)
	}

	none, err := repo.LatestTag(context.Background(), "missing-")
	if err != nil {
		t.Fatalf("LatestTag() error: %v", err)
	}
	if none != nil {
		t.Errorf("LatestTag(missing-) = %+v, want nil", none)
	}
}

func TestRepository_LatestTag_IgnoresOtherBranches(t *testing.T) {
	testutil.SkipIfNoGit(t)

	dir := testutil.SetupTestRepo(t)
	testutil.Tag(t, dir, "v1.0.0")

	testutil.Git(t, dir, "checkout", "-b", "next")
	testutil.CommitFile(t, dir, "next.txt", "next", "feat!: next major")
	testutil.Tag(t, dir, "v2.0.0")

	testutil.Git(t, dir, "checkout", "main")
	testutil.CommitFile(t, dir, "fix.txt", "fix", "fix: maintenance fix")

	repo, err := Open(dir)
	if err != nil {
		t.Fatalf("Open() error: %v", err)
	}

	tag, err := repo.LatestTag(context.Background(), "v")
	if err != nil {
		t.Fatalf("LatestTag() error: %v", err)
	}
	if tag == nil || tag.Name != "v1.0.0" {
		t.Fatalf("LatestTag() = %+v, want v1.0.0 (v2.0.0 is not on main)", tag)
	}

	commits, err := repo.CommitsSince(context.Background(), tag, ".")
	if err != nil {
		t.Fatalf("CommitsSince() error: %v", err)
	}
	if len(commits) != 1 || commits[0].Subject() != "fix: maintenance fix" {
		t.Errorf("CommitsSince() = %+v, want only the maintenance fix", commits)
	}
}

func TestRepository_CommitsSince(t *testing.T) {
	testutil.SkipIfNoGit(t)

	dir := testutil.SetupTestRepo(t)
	testutil.CommitFile(t, dir, "libs/pkg/a.txt", "a", "feat(pkg): first")
	testutil.Tag(t, dir, "pkg-1.0.0")
	testutil.CommitFile(t, dir, "libs/pkg/b.txt", "b", "fix(pkg): second")
	testutil.CommitFile(t, dir, "libs/other/c.txt", "c", "feat(other): unrelated")
	testutil.CommitFile(t, dir, "libs/pkg-extra/d.txt", "d", "feat: sibling dir")

	repo, err := Open(dir)
	if err != nil {
		t.Fatalf("Open() error: %v", err)
	}
	ctx := context.Background()

	tag, err := repo.LatestTag(ctx, "pkg-")
	if err != nil || tag == nil {
		t.Fatalf("LatestTag() = %v, %v", tag, err)
	}

	commits, err := repo.CommitsSince(ctx, tag, "libs/pkg")
	if err != nil {
		t.Fatalf("CommitsSince() error: %v", err)
	}
	if len(commits) != 1 || commits[0].Subject() != "fix(pkg): second" {
		t.Errorf("CommitsSince(libs/pkg) = %+v, want only the fix commit", commits)
	}

	all, err := repo.CommitsSince(ctx, tag, ".")
	if err != nil {
		t.Fatalf("CommitsSince(.) error: %v", err)
	}
	if len(all) != 3 {
		t.Errorf("CommitsSince(.) returned %d commits, want 3", len(all))
	}

	full, err := repo.CommitsSince(ctx, nil, "libs/pkg")
	if err != nil {
		t.Fatalf("CommitsSince(nil) error: %v", err)
	}
	if len(full) != 2 {
		t.Errorf("CommitsSince(nil, libs/pkg) returned %d commits, want 2", len(full))
	}
}

func TestRepository_CommitsSince_Canceled(t *testing.T) {
	testutil.SkipIfNoGit(t)

	dir := testutil.SetupTestRepo(t)
	repo, err := Open(dir)
	if err != nil {
		t.Fatalf("Open() error: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := repo.CommitsSince(ctx, nil, "."); err == nil {
		t.Error("CommitsSince() with canceled context should fail")
	}
}
