// Package testutil provides testing utilities for versioner tests.
package testutil

import (
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"
)

// SetupTestRepo creates a temporary git repository on branch main with one
// commit. The repository is removed when the test completes.
func SetupTestRepo(t *testing.T) string {
	t.Helper()

	dir := t.TempDir()

	Git(t, dir, "init")
	Git(t, dir, "config", "user.email", "test@versioner.dev")
	Git(t, dir, "config", "user.name", "Versioner Test")
	Git(t, dir, "config", "commit.gpgsign", "false")
	Git(t, dir, "config", "tag.gpgsign", "false")

	readme := filepath.Join(dir, "README.md")
	if err := os.WriteFile(readme, []byte("# Test Repository\n"), 0644); err != nil {
		t.Fatalf("failed to create README: %v", err)
	}
	Git(t, dir, "add", ".")
	Git(t, dir, "commit", "-m", "chore: initial commit")

	// Some systems default to master
	Git(t, dir, "branch", "-M", "main")

	return dir
}

// SetupTestRepoWithRemote creates a test repository with a bare "origin"
// remote that already has main pushed.
func SetupTestRepoWithRemote(t *testing.T) (repoDir, remoteDir string) {
	t.Helper()

	remoteDir = t.TempDir()
	Git(t, remoteDir, "init", "--bare")

	repoDir = SetupTestRepo(t)
	Git(t, repoDir, "remote", "add", "origin", remoteDir)
	Git(t, repoDir, "push", "-u", "origin", "main")

	return repoDir, remoteDir
}

// CommitFile creates or updates a file and commits it.
func CommitFile(t *testing.T, repoDir, path, content, message string) {
	t.Helper()

	WriteFile(t, repoDir, path, content)
	Git(t, repoDir, "add", path)
	Git(t, repoDir, "commit", "-m", message)
}

// WriteFile writes content to repoDir/path, creating parent directories.
func WriteFile(t *testing.T, repoDir, path, content string) {
	t.Helper()

	fullPath := filepath.Join(repoDir, path)
	if err := os.MkdirAll(filepath.Dir(fullPath), 0755); err != nil {
		t.Fatalf("failed to create directory for %s: %v", path, err)
	}
	if err := os.WriteFile(fullPath, []byte(content), 0644); err != nil {
		t.Fatalf("failed to write file %s: %v", path, err)
	}
}

// Tag creates an annotated tag at HEAD.
func Tag(t *testing.T, repoDir, name string) {
	t.Helper()
	Git(t, repoDir, "tag", "-a", name, "-m", name)
}

// Tags returns the tags in the repository, sorted by name.
func Tags(t *testing.T, repoDir string) []string {
	t.Helper()
	return splitLines(Git(t, repoDir, "tag", "--list"))
}

// RemoteTags returns the tags present in a bare remote repository.
func RemoteTags(t *testing.T, remoteDir string) []string {
	t.Helper()
	return splitLines(Git(t, remoteDir, "tag", "--list"))
}

// LastCommitMessage returns the subject of HEAD.
func LastCommitMessage(t *testing.T, repoDir string) string {
	t.Helper()
	return strings.TrimSpace(Git(t, repoDir, "log", "-1", "--pretty=%s"))
}

// GetCommitCount returns the number of commits reachable from HEAD.
func GetCommitCount(t *testing.T, repoDir string) int {
	t.Helper()
	return len(splitLines(Git(t, repoDir, "rev-list", "HEAD")))
}

// HasUncommittedChanges returns true if the repository has uncommitted changes.
func HasUncommittedChanges(t *testing.T, repoDir string) bool {
	t.Helper()
	return strings.TrimSpace(Git(t, repoDir, "status", "--porcelain")) != ""
}

// SkipIfNoGit skips the test if git is not available.
func SkipIfNoGit(t *testing.T) {
	t.Helper()

	if _, err := exec.LookPath("git"); err != nil {
		t.Skip("git not available")
	}
}

// Git runs a git command in dir and fails the test on error.
func Git(t *testing.T, dir string, args ...string) string {
	t.Helper()

	cmd := exec.Command("git", args...)
	cmd.Dir = dir
	output, err := cmd.CombinedOutput()
	if err != nil {
		t.Fatalf("git %s failed: %v\n%s", strings.Join(args, " "), err, output)
	}
	return string(output)
}

func splitLines(s string) []string {
	var lines []string
	for _, line := range strings.Split(s, "\n") {
		if line = strings.TrimSpace(line); line != "" {
			lines = append(lines, line)
		}
	}
	return lines
}
