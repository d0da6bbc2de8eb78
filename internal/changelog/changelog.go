// Package changelog renders release notes from conventional commits and
// prepends them to a CHANGELOG.md file.
package changelog

import (
	"bytes"
	"os"
	"strings"
	"text/template"
	"time"

	"github.com/Iron-Ham/versioner/internal/convention"
	"github.com/Iron-Ham/versioner/internal/history"
)

// FileName is the changelog file written in every changelog directory.
const FileName = "CHANGELOG.md"

// DefaultHeader is used when no header is configured.
const DefaultHeader = "# Changelog"

// Entry is one line of a release section.
type Entry struct {
	Scope       string
	Description string
	Hash        string
}

// Release holds everything a release section shows.
type Release struct {
	Version  string
	Date     time.Time
	Features []Entry
	Fixes    []Entry
	Breaking []Entry
}

const sectionTemplate = `## {{.Version}} ({{.Date.Format "2006-01-02"}})
{{- template "group" dict "Title" "⚠ BREAKING CHANGES" "Entries" .Breaking}}
{{- template "group" dict "Title" "Features" "Entries" .Features}}
{{- template "group" dict "Title" "Bug Fixes" "Entries" .Fixes}}
{{define "group"}}{{if .Entries}}

### {{.Title}}
{{range .Entries}}
* {{if .Scope}}**{{.Scope}}:** {{end}}{{.Description}}{{if .Hash}} ({{.Hash}}){{end}}{{end}}{{end}}{{end}}`

var section = template.Must(template.New("section").Funcs(template.FuncMap{
	"dict": func(kv ...any) map[string]any {
		m := make(map[string]any, len(kv)/2)
		for i := 0; i+1 < len(kv); i += 2 {
			m[kv[i].(string)] = kv[i+1]
		}
		return m
	},
}).Parse(sectionTemplate))

// Build groups commits into a release. Commits that are neither features,
// fixes nor breaking changes are left out.
func Build(version string, date time.Time, commits []history.Commit, preset string) Release {
	r := Release{Version: version, Date: date}
	p := convention.NewParser(preset)

	for _, c := range commits {
		parsed := p.Parse(c.Message)
		if !parsed.Conventional {
			continue
		}
		e := Entry{Scope: parsed.Scope, Description: parsed.Description, Hash: c.ShortHash()}
		if parsed.Breaking {
			r.Breaking = append(r.Breaking, e)
		}
		switch parsed.Type {
		case "feat":
			r.Features = append(r.Features, e)
		case "fix":
			r.Fixes = append(r.Fixes, e)
		}
	}
	return r
}

// Render returns the markdown section for r.
func Render(r Release) (string, error) {
	var buf bytes.Buffer
	if err := section.Execute(&buf, r); err != nil {
		return "", err
	}
	return strings.TrimSpace(buf.String()) + "\n", nil
}

// Prepend inserts section below header in the file at path, creating the
// file when it does not exist. An existing header is kept in place.
func Prepend(path, header, section string) error {
	if header == "" {
		header = DefaultHeader
	}

	existing, err := os.ReadFile(path)
	if err != nil && !os.IsNotExist(err) {
		return err
	}

	body := strings.TrimLeft(string(existing), "\n")
	body = strings.TrimPrefix(body, header)
	body = strings.TrimLeft(body, "\n")

	var buf strings.Builder
	buf.WriteString(header)
	buf.WriteString("\n\n")
	buf.WriteString(strings.TrimRight(section, "\n"))
	buf.WriteString("\n")
	if body != "" {
		buf.WriteString("\n")
		buf.WriteString(body)
		if !strings.HasSuffix(body, "\n") {
			buf.WriteString("\n")
		}
	}

	return os.WriteFile(path, []byte(buf.String()), 0644)
}
