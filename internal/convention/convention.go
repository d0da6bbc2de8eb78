// Package convention classifies commit messages according to a commit
// naming convention and recommends the semantic version bump they call for.
package convention

import (
	"strings"

	"github.com/leodido/go-conventionalcommits"
	"github.com/leodido/go-conventionalcommits/parser"
)

// Supported presets.
const (
	PresetAngular             = "angular"
	PresetConventionalCommits = "conventionalcommits"
)

// Level is a recommended bump.
type Level int

const (
	// LevelPatch is recommended for any commit that is not a feature or breaking change.
	LevelPatch Level = iota
	// LevelMinor is recommended when at least one commit adds a feature.
	LevelMinor
	// LevelMajor is recommended when at least one commit is a breaking change.
	LevelMajor
)

// String returns the release keyword for the level.
func (l Level) String() string {
	switch l {
	case LevelMajor:
		return "major"
	case LevelMinor:
		return "minor"
	default:
		return "patch"
	}
}

// Commit is a commit message broken into its conventional parts.
type Commit struct {
	Type        string
	Scope       string
	Description string
	Breaking    bool
	// Conventional is false when the message does not follow the convention;
	// Description then holds the raw subject line.
	Conventional bool
}

// Parser parses commit messages for one preset.
type Parser struct {
	preset  string
	machine conventionalcommits.Machine
}

// NewParser returns a Parser for preset. Unknown presets behave like angular.
func NewParser(preset string) *Parser {
	return &Parser{
		preset:  preset,
		machine: parser.NewMachine(parser.WithTypes(conventionalcommits.TypesConventional)),
	}
}

// Parse classifies a single commit message.
func (p *Parser) Parse(message string) Commit {
	message = strings.TrimSpace(message)
	subject, _, _ := strings.Cut(message, "\n")

	res, err := p.machine.Parse([]byte(message))
	if err != nil || res == nil || !res.Ok() {
		return Commit{Description: strings.TrimSpace(subject)}
	}
	cc, ok := res.(*conventionalcommits.ConventionalCommit)
	if !ok {
		return Commit{Description: strings.TrimSpace(subject)}
	}

	c := Commit{
		Type:         strings.ToLower(cc.Type),
		Description:  cc.Description,
		Conventional: true,
		Breaking:     hasBreakingFooter(cc.Footers),
	}
	if cc.Scope != nil {
		c.Scope = *cc.Scope
	}
	// The angular preset only honors BREAKING CHANGE footers.
	if p.preset == PresetConventionalCommits && cc.Exclamation {
		c.Breaking = true
	}
	return c
}

func hasBreakingFooter(footers map[string][]string) bool {
	for key := range footers {
		normalized := strings.ReplaceAll(strings.ToLower(key), " ", "-")
		if normalized == "breaking-change" {
			return true
		}
	}
	return false
}

// Recommend returns the bump called for by commits.
func Recommend(commits []Commit) Level {
	level := LevelPatch
	for _, c := range commits {
		switch {
		case c.Breaking:
			return LevelMajor
		case c.Type == "feat":
			level = LevelMinor
		}
	}
	return level
}
