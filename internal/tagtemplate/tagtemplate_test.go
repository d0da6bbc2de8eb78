package tagtemplate

import "testing"

func strPtr(s string) *string { return &s }

func TestResolve(t *testing.T) {
	ctx := Context{KeyProjectName: "pkg", KeyTarget: "version"}

	tests := []struct {
		name     string
		template string
		want     string
	}{
		{"no placeholders", "release-", "release-"},
		{"project name", "${projectName}@", "pkg@"},
		{"target and project", "${target}/${projectName}-", "version/pkg-"},
		{"repeated placeholder", "${projectName}-${projectName}-", "pkg-pkg-"},
		{"unknown placeholder stays literal", "${scope}/${projectName}-", "${scope}/pkg-"},
		{"unterminated placeholder", "${projectName", "${projectName"},
		{"empty", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Resolve(tt.template, ctx); got != tt.want {
				t.Errorf("Resolve(%q) = %q, want %q", tt.template, got, tt.want)
			}
		})
	}
}

func TestResolve_Idempotent(t *testing.T) {
	ctx := Context{KeyProjectName: "pkg"}
	first := Resolve("${projectName}-", ctx)
	second := Resolve("${projectName}-", ctx)
	if first != second {
		t.Errorf("Resolve is not deterministic: %q vs %q", first, second)
	}
}

func TestResolvePrefix(t *testing.T) {
	tests := []struct {
		name     string
		req      PrefixRequest
		want     string
		wantRule string
	}{
		{
			name:     "explicit template wins over sync",
			req:      PrefixRequest{Template: strPtr("${projectName}@"), SyncVersions: true, ProjectName: "pkg"},
			want:     "pkg@",
			wantRule: "template",
		},
		{
			name:     "empty template is honored",
			req:      PrefixRequest{Template: strPtr(""), ProjectName: "pkg"},
			want:     "",
			wantRule: "template",
		},
		{
			name:     "sync versions default",
			req:      PrefixRequest{SyncVersions: true, ProjectName: "workspace"},
			want:     "v",
			wantRule: "sync",
		},
		{
			name:     "per project default",
			req:      PrefixRequest{ProjectName: "pkg"},
			want:     "pkg-",
			wantRule: "project",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, rule := ResolvePrefix(tt.req)
			if got != tt.want {
				t.Errorf("ResolvePrefix() = %q, want %q", got, tt.want)
			}
			if rule != tt.wantRule {
				t.Errorf("rule = %q, want %q", rule, tt.wantRule)
			}
		})
	}
}

func TestContext_With(t *testing.T) {
	base := Context{KeyProjectName: "pkg"}
	ext := base.With(KeyVersion, "1.3.0")

	if got := Resolve("chore(${projectName}): release version ${version}", ext); got != "chore(pkg): release version 1.3.0" {
		t.Errorf("Resolve() = %q", got)
	}
	if _, ok := base[KeyVersion]; ok {
		t.Error("With() modified the receiver")
	}
	if got := Context(nil).With(KeyTag, "v1"); got[KeyTag] != "v1" {
		t.Errorf("nil With() = %v", got)
	}
}
