package strategy

import (
	"context"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"testing"
	"time"

	"github.com/Iron-Ham/versioner/internal/errors"
	"github.com/Iron-Ham/versioner/internal/git"
	"github.com/Iron-Ham/versioner/internal/history"
	"github.com/Iron-Ham/versioner/internal/workspace"
)

// fakeWriter is a test double for git.Writer
type fakeWriter struct {
	added     []string
	commits   []string
	noVerify  []bool
	tags      []string
	commitErr error
	tagErr    error
}

func (f *fakeWriter) Add(_ context.Context, paths ...string) error {
	f.added = append(f.added, paths...)
	return nil
}

func (f *fakeWriter) Commit(_ context.Context, message string, noVerify bool) error {
	if f.commitErr != nil {
		return f.commitErr
	}
	f.commits = append(f.commits, message)
	f.noVerify = append(f.noVerify, noVerify)
	return nil
}

func (f *fakeWriter) Tag(_ context.Context, name, _ string) error {
	if f.tagErr != nil {
		return f.tagErr
	}
	f.tags = append(f.tags, name)
	return nil
}

func (f *fakeWriter) Push(context.Context, git.PushOptions) error { return nil }

func (f *fakeWriter) Dir() string { return "" }

func writeFile(t *testing.T, root, path, content string) {
	t.Helper()
	full := filepath.Join(root, path)
	if err := os.MkdirAll(filepath.Dir(full), 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(full, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
}

func readFile(t *testing.T, root, path string) string {
	t.Helper()
	data, err := os.ReadFile(filepath.Join(root, path))
	if err != nil {
		t.Fatalf("read %s: %v", path, err)
	}
	return string(data)
}

func exists(root, path string) bool {
	_, err := os.Stat(filepath.Join(root, path))
	return err == nil
}

func projectOptions(root string) VersionOptions {
	return VersionOptions{
		NewVersion:      "1.3.0",
		TagPrefix:       "pkg-",
		ChangelogHeader: "# Changelog",
		WorkspaceRoot:   root,
		ProjectName:     "pkg",
		ProjectRoot:     "libs/pkg",
		Preset:          "angular",
		Commits:         []history.Commit{{Hash: "abcdef0123", Message: "feat: add exporter"}},
		Date:            time.Date(2024, 3, 9, 0, 0, 0, 0, time.UTC),
	}
}

func TestProject_Apply(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "libs/pkg/package.json", `{"name": "pkg", "version": "1.2.0"}`)

	w := &fakeWriter{}
	opts := projectOptions(root)
	opts.NoVerify = true

	out, err := NewProject(w).Apply(context.Background(), opts)
	if err != nil {
		t.Fatalf("Apply() error: %v", err)
	}

	if out.Tag != "pkg-1.3.0" {
		t.Errorf("Tag = %q, want pkg-1.3.0", out.Tag)
	}
	if out.CommitMessage != "chore(pkg): release version 1.3.0" {
		t.Errorf("CommitMessage = %q", out.CommitMessage)
	}
	if got := readFile(t, root, "libs/pkg/package.json"); !strings.Contains(got, `"version": "1.3.0"`) {
		t.Errorf("manifest = %s", got)
	}
	cl := readFile(t, root, "libs/pkg/CHANGELOG.md")
	if !strings.HasPrefix(cl, "# Changelog\n\n## 1.3.0 (2024-03-09)") || !strings.Contains(cl, "add exporter (abcdef0)") {
		t.Errorf("changelog = %q", cl)
	}

	wantFiles := []string{"libs/pkg/package.json", "libs/pkg/CHANGELOG.md"}
	if !slices.Equal(w.added, wantFiles) {
		t.Errorf("staged = %v, want %v", w.added, wantFiles)
	}
	if len(w.commits) != 1 || !w.noVerify[0] {
		t.Errorf("commits = %v, noVerify = %v", w.commits, w.noVerify)
	}
	if !slices.Equal(w.tags, []string{"pkg-1.3.0"}) {
		t.Errorf("tags = %v", w.tags)
	}
}

func TestProject_Apply_DryRun(t *testing.T) {
	root := t.TempDir()
	original := `{"name": "pkg", "version": "1.2.0"}`
	writeFile(t, root, "libs/pkg/package.json", original)

	w := &fakeWriter{}
	opts := projectOptions(root)
	opts.DryRun = true

	out, err := NewProject(w).Apply(context.Background(), opts)
	if err != nil {
		t.Fatalf("Apply() error: %v", err)
	}
	if !out.DryRun || out.Tag != "pkg-1.3.0" || len(out.Files) != 2 {
		t.Errorf("Outcome = %+v", out)
	}
	if got := readFile(t, root, "libs/pkg/package.json"); got != original {
		t.Errorf("dry run modified the manifest: %s", got)
	}
	if exists(root, "libs/pkg/CHANGELOG.md") {
		t.Error("dry run created a changelog")
	}
	if len(w.added)+len(w.commits)+len(w.tags) != 0 {
		t.Errorf("dry run touched git: %+v", w)
	}
}

func TestProject_Apply_MissingManifest(t *testing.T) {
	root := t.TempDir()
	w := &fakeWriter{}

	out, err := NewProject(w).Apply(context.Background(), projectOptions(root))
	if err != nil {
		t.Fatalf("Apply() error: %v", err)
	}
	if !slices.Equal(out.Files, []string{"libs/pkg/CHANGELOG.md"}) {
		t.Errorf("Files = %v, want only the changelog", out.Files)
	}
	if len(w.tags) != 1 {
		t.Errorf("tags = %v", w.tags)
	}
}

func TestApply_NothingWritten(t *testing.T) {
	tests := []struct {
		name   string
		dryRun bool
	}{
		{"release", false},
		{"dry run", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			root := t.TempDir()
			w := &fakeWriter{}
			opts := VersionOptions{
				NewVersion:           "1.0.0",
				TagPrefix:            "v",
				WorkspaceRoot:        root,
				ProjectName:          "workspace",
				Projects:             []*workspace.Project{{Name: "a", Root: "libs/a"}},
				SkipRootChangelog:    true,
				SkipProjectChangelog: true,
				DryRun:               tt.dryRun,
			}

			out, err := NewWorkspace(w).Apply(context.Background(), opts)
			if !errors.Is(err, errors.ErrNothingToRelease) {
				t.Fatalf("Apply() error = %v, want ErrNothingToRelease", err)
			}
			var vErr *errors.VersionError
			if !errors.As(err, &vErr) || vErr.Project != "workspace" {
				t.Errorf("error = %#v, want VersionError for workspace", err)
			}
			if len(out.Files) != 0 {
				t.Errorf("Files = %v", out.Files)
			}
			if len(w.added) != 0 || len(w.commits) != 0 || len(w.tags) != 0 {
				t.Errorf("git touched without files: %+v", w)
			}
		})
	}
}

func TestProject_Apply_Errors(t *testing.T) {
	t.Run("manifest write failure", func(t *testing.T) {
		root := t.TempDir()
		writeFile(t, root, "libs/pkg/package.json", `{"name": "pkg"}`)
		w := &fakeWriter{}

		_, err := NewProject(w).Apply(context.Background(), projectOptions(root))
		var vErr *errors.VersionError
		if !errors.As(err, &vErr) {
			t.Fatalf("Apply() error = %v, want VersionError", err)
		}
		if vErr.File != "libs/pkg/package.json" {
			t.Errorf("File = %q", vErr.File)
		}
		if len(w.commits) != 0 {
			t.Error("commit must not run after a failed write")
		}
	})

	t.Run("commit failure leaves written files", func(t *testing.T) {
		root := t.TempDir()
		writeFile(t, root, "libs/pkg/package.json", `{"version": "1.2.0"}`)
		w := &fakeWriter{commitErr: errors.NewGitError("hook failed", nil)}

		_, err := NewProject(w).Apply(context.Background(), projectOptions(root))
		if !errors.Is(err, &errors.GitError{}) {
			t.Fatalf("Apply() error = %v, want GitError", err)
		}
		if !strings.Contains(readFile(t, root, "libs/pkg/package.json"), "1.3.0") {
			t.Error("written manifest should not be rolled back")
		}
		if len(w.tags) != 0 {
			t.Error("tag must not run after a failed commit")
		}
	})
}

func TestWorkspace_Apply(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "package.json", `{"name": "root", "version": "0.9.0"}`)
	writeFile(t, root, "libs/a/package.json", `{"name": "a", "version": "0.9.0"}`)
	writeFile(t, root, "libs/b/project.yaml", "name: b\nversion: 0.9.0\n")

	projects := []*workspace.Project{
		{Name: "a", Root: "libs/a"},
		{Name: "b", Root: "libs/b", Manifest: "project.yaml"},
		{Name: "c", Root: "libs/c"},
	}

	tests := []struct {
		name          string
		skipRoot      bool
		skipProject   bool
		wantChangelog []string
	}{
		{
			name:          "all changelogs",
			wantChangelog: []string{"CHANGELOG.md", "libs/a/CHANGELOG.md", "libs/b/CHANGELOG.md", "libs/c/CHANGELOG.md"},
		},
		{
			name:          "skip root changelog",
			skipRoot:      true,
			wantChangelog: []string{"libs/a/CHANGELOG.md", "libs/b/CHANGELOG.md", "libs/c/CHANGELOG.md"},
		},
		{
			name:          "skip project changelogs",
			skipProject:   true,
			wantChangelog: []string{"CHANGELOG.md"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := &fakeWriter{}
			opts := VersionOptions{
				NewVersion:           "1.0.0",
				TagPrefix:            "v",
				WorkspaceRoot:        root,
				ProjectName:          "workspace",
				Projects:             projects,
				SkipRootChangelog:    tt.skipRoot,
				SkipProjectChangelog: tt.skipProject,
				DryRun:               true,
			}

			out, err := NewWorkspace(w).Apply(context.Background(), opts)
			if err != nil {
				t.Fatalf("Apply() error: %v", err)
			}
			if out.Tag != "v1.0.0" {
				t.Errorf("Tag = %q", out.Tag)
			}

			var changelogs []string
			for _, f := range out.Files {
				if strings.HasSuffix(f, "CHANGELOG.md") {
					changelogs = append(changelogs, f)
				}
			}
			if !slices.Equal(changelogs, tt.wantChangelog) {
				t.Errorf("changelogs = %v, want %v", changelogs, tt.wantChangelog)
			}
			if slices.Contains(out.Files, "libs/c/package.json") {
				t.Error("missing manifest of c should be skipped")
			}
		})
	}
}

func TestWorkspace_Apply_SingleCommit(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "libs/a/package.json", `{"version": "0.9.0"}`)
	writeFile(t, root, "libs/b/project.yaml", "version: 0.9.0\n")

	w := &fakeWriter{}
	opts := VersionOptions{
		NewVersion:    "1.0.0",
		TagPrefix:     "v",
		WorkspaceRoot: root,
		ProjectName:   "workspace",
		Projects: []*workspace.Project{
			{Name: "a", Root: "libs/a"},
			{Name: "b", Root: "libs/b", Manifest: "project.yaml"},
		},
		SkipRootChangelog: true,
	}

	if _, err := NewWorkspace(w).Apply(context.Background(), opts); err != nil {
		t.Fatalf("Apply() error: %v", err)
	}

	if len(w.commits) != 1 || len(w.tags) != 1 || w.tags[0] != "v1.0.0" {
		t.Fatalf("commits = %v, tags = %v, want one of each", w.commits, w.tags)
	}
	if w.commits[0] != "chore(workspace): release version 1.0.0" {
		t.Errorf("commit message = %q", w.commits[0])
	}
	if !strings.Contains(readFile(t, root, "libs/a/package.json"), `"1.0.0"`) {
		t.Error("a not bumped")
	}
	if !strings.Contains(readFile(t, root, "libs/b/project.yaml"), "version: 1.0.0") {
		t.Error("b not bumped")
	}
	want := []string{"libs/a/package.json", "libs/a/CHANGELOG.md", "libs/b/project.yaml", "libs/b/CHANGELOG.md"}
	if !slices.Equal(w.added, want) {
		t.Errorf("staged = %v, want %v", w.added, want)
	}
}
