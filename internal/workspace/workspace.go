// Package workspace loads the projects of a monorepo from its workspace file.
//
// A workspace is described by versioner.yaml at its root:
//
//	projects:
//	  pkg:
//	    root: libs/pkg
//	    manifest: package.json
//	    postTargets: ["pkg:publish"]
//	    targets:
//	      publish:
//	        commands: ["npm publish --tag ${tag}"]
//	discover:
//	  - "apps/*"
//
// Projects listed explicitly win over discovered ones.
package workspace

import (
	"encoding/json"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"sort"
	"strings"

	"github.com/gobwas/glob"
	"gopkg.in/yaml.v3"

	"github.com/Iron-Ham/versioner/internal/errors"
)

// DefaultFile is the workspace file name.
const DefaultFile = "versioner.yaml"

// DefaultManifest is the manifest assumed when a project does not name one.
const DefaultManifest = "package.json"

// ProjectMarker is the file that marks a discoverable non-npm project.
const ProjectMarker = "project.yaml"

// Target is a named build action of a project.
type Target struct {
	// Commands run in order in the project root through the shell.
	Commands []string `yaml:"commands"`
	// Options are default ${option} values for the commands.
	Options map[string]string `yaml:"options,omitempty"`
	// Configurations override Options by configuration name.
	Configurations map[string]map[string]string `yaml:"configurations,omitempty"`
}

// Project is a releasable unit of the workspace.
type Project struct {
	Name string `yaml:"-"`
	// Root is the project directory relative to the workspace root.
	Root     string `yaml:"root"`
	Manifest string `yaml:"manifest,omitempty"`
	// TagPrefix is a tag template such as "${projectName}@". Empty selects
	// the default prefix policy.
	TagPrefix   string            `yaml:"tagPrefix,omitempty"`
	PostTargets []string          `yaml:"postTargets,omitempty"`
	Targets     map[string]Target `yaml:"targets,omitempty"`
}

// ManifestPath returns the manifest path relative to the workspace root.
func (p *Project) ManifestPath() string {
	manifest := p.Manifest
	if manifest == "" {
		manifest = DefaultManifest
	}
	return filepath.ToSlash(filepath.Join(p.Root, manifest))
}

// ChangelogPath returns the changelog path relative to the workspace root.
func (p *Project) ChangelogPath() string {
	return filepath.ToSlash(filepath.Join(p.Root, "CHANGELOG.md"))
}

// File is the on-disk workspace definition.
type File struct {
	Projects map[string]*Project `yaml:"projects"`
	Discover []string            `yaml:"discover,omitempty"`
}

// Workspace is a loaded workspace.
type Workspace struct {
	Root     string
	projects map[string]*Project
}

// New creates a workspace from explicit projects.
func New(root string, projects ...*Project) *Workspace {
	w := &Workspace{Root: root, projects: make(map[string]*Project, len(projects))}
	for _, p := range projects {
		w.projects[p.Name] = p
	}
	return w
}

// Load reads the workspace file in root. A missing file yields an empty
// workspace.
func Load(root, filename string) (*Workspace, error) {
	if filename == "" {
		filename = DefaultFile
	}

	var file File
	data, err := os.ReadFile(filepath.Join(root, filename))
	switch {
	case errors.Is(err, fs.ErrNotExist):
	case err != nil:
		return nil, errors.Wrapf(err, "read workspace file %s", filename)
	default:
		if err := yaml.Unmarshal(data, &file); err != nil {
			return nil, errors.NewValidationError("invalid workspace file").
				WithField(filename).
				WithCause(err)
		}
	}

	w := New(root)
	for name, p := range file.Projects {
		if p == nil {
			p = &Project{}
		}
		p.Name = name
		if p.Root == "" {
			return nil, errors.NewValidationError("project root is required").
				WithField("projects." + name + ".root")
		}
		p.Root = filepath.ToSlash(filepath.Clean(p.Root))
		w.projects[name] = p
	}

	if len(file.Discover) > 0 {
		discovered, err := Discover(root, file.Discover)
		if err != nil {
			return nil, err
		}
		for _, p := range discovered {
			if _, ok := w.projects[p.Name]; !ok {
				w.projects[p.Name] = p
			}
		}
	}

	return w, nil
}

// Project returns the named project.
func (w *Workspace) Project(name string) (*Project, error) {
	p, ok := w.projects[name]
	if !ok {
		return nil, errors.NewNotFoundError("project", name).WithCause(errors.ErrProjectNotFound)
	}
	return p, nil
}

// Projects returns every project sorted by name.
func (w *Workspace) Projects() []*Project {
	out := make([]*Project, 0, len(w.projects))
	for _, p := range w.projects {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// Target returns the named target of a project.
func (w *Workspace) Target(project, target string) (*Project, Target, error) {
	p, err := w.Project(project)
	if err != nil {
		return nil, Target{}, err
	}
	t, ok := p.Targets[target]
	if !ok {
		return nil, Target{}, errors.NewNotFoundError("target", project+":"+target).
			WithCause(errors.ErrTargetNotFound)
	}
	return p, t, nil
}

// Dir returns the absolute directory of a project.
func (w *Workspace) Dir(p *Project) string {
	return filepath.Join(w.Root, filepath.FromSlash(p.Root))
}

// -----------------------------------------------------------------------------
// Discovery
// -----------------------------------------------------------------------------

// skipDirs are never descended into during discovery.
var skipDirs = []string{".git", "node_modules", "dist", "vendor"}

// Discover finds project directories under root whose slash-separated
// relative path matches one of patterns and that contain a package.json or
// project.yaml.
func Discover(root string, patterns []string) ([]*Project, error) {
	globs := make([]glob.Glob, 0, len(patterns))
	for _, pattern := range patterns {
		g, err := glob.Compile(pattern, '/')
		if err != nil {
			return nil, errors.NewValidationError("invalid discovery pattern").
				WithField("discover").
				WithValue(pattern).
				WithCause(err)
		}
		globs = append(globs, g)
	}

	var projects []*Project
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			return nil
		}
		if path != root && slices.Contains(skipDirs, d.Name()) {
			return filepath.SkipDir
		}

		rel, err := filepath.Rel(root, path)
		if err != nil || rel == "." {
			return nil
		}
		rel = filepath.ToSlash(rel)
		if !matchAny(globs, rel) {
			return nil
		}

		if p := detectProject(path, rel); p != nil {
			projects = append(projects, p)
		}
		return nil
	})
	if err != nil {
		return nil, errors.Wrap(err, "discover projects")
	}
	return projects, nil
}

func matchAny(globs []glob.Glob, path string) bool {
	for _, g := range globs {
		if g.Match(path) {
			return true
		}
	}
	return false
}

// detectProject builds a project for dir when it carries a manifest. The name comes
// from the manifest, falling back to the directory name.
func detectProject(dir, rel string) *Project {
	if data, err := os.ReadFile(filepath.Join(dir, ProjectMarker)); err == nil {
		var p Project
		var meta struct {
			Name string `yaml:"name"`
		}
		if yaml.Unmarshal(data, &p) != nil || yaml.Unmarshal(data, &meta) != nil {
			return nil
		}
		p.Name = nameOr(meta.Name, rel)
		p.Root = rel
		if p.Manifest == "" {
			p.Manifest = ProjectMarker
		}
		return &p
	}

	if data, err := os.ReadFile(filepath.Join(dir, DefaultManifest)); err == nil {
		var pkg struct {
			Name string `json:"name"`
		}
		_ = json.Unmarshal(data, &pkg)
		return &Project{Name: nameOr(pkg.Name, rel), Root: rel, Manifest: DefaultManifest}
	}

	return nil
}

// nameOr strips an npm scope from name, or falls back to the last path
// element of rel.
func nameOr(name, rel string) string {
	if i := strings.LastIndex(name, "/"); i >= 0 {
		name = name[i+1:]
	}
	if name != "" {
		return name
	}
	return filepath.Base(rel)
}
