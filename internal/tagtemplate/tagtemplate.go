// Package tagtemplate renders tag-name templates and selects the tag prefix
// for a release.
//
// Templates use ${name} placeholders. Placeholders without a value in the
// context are left as literal text.
package tagtemplate

import (
	"regexp"
)

// Placeholder keys understood by tag prefix templates.
const (
	KeyTarget      = "target"
	KeyProjectName = "projectName"
)

// Keys of the release context used for commit messages and post target
// options.
const (
	KeyVersion    = "version"
	KeyTag        = "tag"
	KeyDryRun     = "dryRun"
	KeyNoVerify   = "noVerify"
	KeyRemote     = "remote"
	KeyBaseBranch = "baseBranch"
)

// SyncPrefix is the tag prefix used when the whole workspace is versioned in lock-step.
const SyncPrefix = "v"

var placeholderRe = regexp.MustCompile(`\$\{(\w+)\}`)

// Context maps placeholder names to their values.
type Context map[string]string

// With returns a copy of ctx with key set to value.
func (c Context) With(key, value string) Context {
	out := make(Context, len(c)+1)
	for k, v := range c {
		out[k] = v
	}
	out[key] = value
	return out
}

// Resolve substitutes every ${key} in template with ctx[key].
func Resolve(template string, ctx Context) string {
	return placeholderRe.ReplaceAllStringFunc(template, func(match string) string {
		key := placeholderRe.FindStringSubmatch(match)[1]
		if v, ok := ctx[key]; ok {
			return v
		}
		return match
	})
}

// PrefixRequest carries the inputs of the tag prefix decision.
type PrefixRequest struct {
	// Template is the caller supplied prefix template; nil means none was given.
	// An empty template is honored and produces prefix-less tags.
	Template     *string
	SyncVersions bool
	ProjectName  string
	Target       string
}

type prefixRule struct {
	name    string
	applies func(PrefixRequest) bool
	resolve func(PrefixRequest) string
}

// prefixRules is evaluated top to bottom; the first applicable rule wins.
var prefixRules = []prefixRule{
	{
		name:    "template",
		applies: func(r PrefixRequest) bool { return r.Template != nil },
		resolve: func(r PrefixRequest) string {
			return Resolve(*r.Template, Context{
				KeyTarget:      r.Target,
				KeyProjectName: r.ProjectName,
			})
		},
	},
	{
		name:    "sync",
		applies: func(r PrefixRequest) bool { return r.SyncVersions },
		resolve: func(PrefixRequest) string { return SyncPrefix },
	},
	{
		name:    "project",
		applies: func(PrefixRequest) bool { return true },
		resolve: func(r PrefixRequest) string { return r.ProjectName + "-" },
	},
}

// ResolvePrefix returns the tag prefix for a release and the name of the
// rule that produced it.
func ResolvePrefix(r PrefixRequest) (prefix string, rule string) {
	for _, rule := range prefixRules {
		if rule.applies(r) {
			return rule.resolve(r), rule.name
		}
	}
	return r.ProjectName + "-", "project"
}
