package executor

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/Iron-Ham/versioner/internal/errors"
	"github.com/Iron-Ham/versioner/internal/workspace"
)

// fakeShell is a test double for Shell
type fakeShell struct {
	commands []string
	dirs     []string
	failOn   string
}

func (f *fakeShell) Run(_ context.Context, dir, command string) ([]byte, error) {
	f.commands = append(f.commands, command)
	f.dirs = append(f.dirs, dir)
	if f.failOn != "" && strings.Contains(command, f.failOn) {
		return []byte("boom"), errors.New("exit status 1")
	}
	return []byte("ok"), nil
}

func testWorkspace() *workspace.Workspace {
	return workspace.New("/ws", &workspace.Project{
		Name: "pkg",
		Root: "libs/pkg",
		Targets: map[string]workspace.Target{
			"build": {
				Commands: []string{"make ${mode}", "echo ${projectName}:${target}:${configuration}"},
				Options:  map[string]string{"mode": "dev"},
				Configurations: map[string]map[string]string{
					"production": {"mode": "prod"},
				},
			},
			"publish": {
				Commands: []string{"npm publish --tag ${tag}", "git push", "notify"},
			},
		},
	})
}

func TestParseTargetRef(t *testing.T) {
	tests := []struct {
		id      string
		want    TargetRef
		wantErr bool
	}{
		{id: "pkg:build", want: TargetRef{Project: "pkg", Target: "build"}},
		{id: "pkg:build:production", want: TargetRef{Project: "pkg", Target: "build", Configuration: "production"}},
		{id: "pkg", wantErr: true},
		{id: "pkg::prod", wantErr: true},
		{id: "a:b:c:d", wantErr: true},
		{id: "", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.id, func(t *testing.T) {
			got, err := ParseTargetRef(tt.id)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseTargetRef(%q) error = %v, wantErr %v", tt.id, err, tt.wantErr)
			}
			if tt.wantErr {
				if !errors.Is(err, errors.ErrInvalidInput) {
					t.Errorf("error = %v, want ErrInvalidInput", err)
				}
				return
			}
			if got != tt.want {
				t.Errorf("ParseTargetRef() = %+v, want %+v", got, tt.want)
			}
			if got.String() != tt.id {
				t.Errorf("String() = %q, want %q", got.String(), tt.id)
			}
		})
	}
}

func TestWorkspaceExecutor_Invoke(t *testing.T) {
	tests := []struct {
		name    string
		ref     TargetRef
		options map[string]string
		want    []string
	}{
		{
			name: "target defaults",
			ref:  TargetRef{Project: "pkg", Target: "build"},
			want: []string{"make dev", "echo pkg:build:"},
		},
		{
			name: "configuration overrides defaults",
			ref:  TargetRef{Project: "pkg", Target: "build", Configuration: "production"},
			want: []string{"make prod", "echo pkg:build:production"},
		},
		{
			name:    "caller options override configuration",
			ref:     TargetRef{Project: "pkg", Target: "build", Configuration: "production"},
			options: map[string]string{"mode": "ci"},
			want:    []string{"make ci", "echo pkg:build:production"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			shell := &fakeShell{}
			e := NewWorkspaceExecutorWithShell(testWorkspace(), shell)

			results, err := e.Invoke(context.Background(), tt.ref, tt.options)
			if err != nil {
				t.Fatalf("Invoke() error: %v", err)
			}

			var got []string
			for res := range results {
				if !res.Success {
					t.Errorf("result for %q failed", res.Command)
				}
				got = append(got, res.Command)
			}
			if strings.Join(got, "|") != strings.Join(tt.want, "|") {
				t.Errorf("commands = %v, want %v", got, tt.want)
			}
			for _, dir := range shell.dirs {
				if dir != filepath.Join("/ws", "libs", "pkg") {
					t.Errorf("dir = %q", dir)
				}
			}
		})
	}
}

func TestWorkspaceExecutor_StreamIsLazy(t *testing.T) {
	shell := &fakeShell{failOn: "git push"}
	e := NewWorkspaceExecutorWithShell(testWorkspace(), shell)

	results, err := e.Invoke(context.Background(), TargetRef{Project: "pkg", Target: "publish"}, map[string]string{"tag": "next"})
	if err != nil {
		t.Fatalf("Invoke() error: %v", err)
	}
	if len(shell.commands) != 0 {
		t.Fatal("Invoke() ran commands before the stream was consumed")
	}

	for res := range results {
		if !res.Success {
			if res.Err == nil || res.Output != "boom" {
				t.Errorf("failed result = %+v", res)
			}
			break
		}
	}

	want := []string{"npm publish --tag next", "git push"}
	if strings.Join(shell.commands, "|") != strings.Join(want, "|") {
		t.Errorf("commands = %v, want %v", shell.commands, want)
	}
}

func TestWorkspaceExecutor_NotFound(t *testing.T) {
	e := NewWorkspaceExecutorWithShell(testWorkspace(), &fakeShell{})

	tests := []struct {
		name string
		ref  TargetRef
		want error
	}{
		{"unknown project", TargetRef{Project: "nope", Target: "build"}, errors.ErrProjectNotFound},
		{"unknown target", TargetRef{Project: "pkg", Target: "deploy"}, errors.ErrTargetNotFound},
		{"unknown configuration", TargetRef{Project: "pkg", Target: "build", Configuration: "staging"}, errors.ErrTargetNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := e.Invoke(context.Background(), tt.ref, nil)
			if !errors.Is(err, tt.want) {
				t.Errorf("Invoke() error = %v, want %v", err, tt.want)
			}
		})
	}
}

func TestSystemShell(t *testing.T) {
	dir := t.TempDir()
	out, err := SystemShell{}.Run(context.Background(), dir, "echo hello > out.txt && cat out.txt")
	if err != nil {
		t.Fatalf("Run() error: %v", err)
	}
	if strings.TrimSpace(string(out)) != "hello" {
		t.Errorf("output = %q", out)
	}
	if _, err := os.Stat(filepath.Join(dir, "out.txt")); err != nil {
		t.Errorf("command did not run in dir: %v", err)
	}

	if _, err := (SystemShell{}).Run(context.Background(), dir, "exit 3"); err == nil {
		t.Error("Run(exit 3) should fail")
	}
}
