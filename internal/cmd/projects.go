package cmd

import (
	"fmt"
	"path/filepath"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/Iron-Ham/versioner/internal/config"
	"github.com/Iron-Ham/versioner/internal/manifest"
	"github.com/Iron-Ham/versioner/internal/tagtemplate"
	"github.com/Iron-Ham/versioner/internal/workspace"
)

var projectsCmd = &cobra.Command{
	Use:   "projects",
	Short: "List workspace projects",
	Long:  `List the projects of the workspace with their roots, manifests, current versions and tag prefixes.`,
	Args:  cobra.NoArgs,
	RunE:  runProjects,
}

func init() {
	rootCmd.AddCommand(projectsCmd)
}

func runProjects(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	root, err := workspaceRoot(cmd)
	if err != nil {
		return fmt.Errorf("failed to get current directory: %w", err)
	}

	ws, err := workspace.Load(root, cfg.Workspace.File)
	if err != nil {
		return fmt.Errorf("failed to load workspace: %w", err)
	}

	out := cmd.OutOrStdout()
	projects := ws.Projects()
	if len(projects) == 0 {
		fmt.Fprintln(out, mutedStyle.Render("No projects found in "+cfg.Workspace.File))
		return nil
	}

	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, headerStyle.Render("NAME")+"\t"+headerStyle.Render("ROOT")+"\t"+headerStyle.Render("MANIFEST")+"\t"+headerStyle.Render("VERSION")+"\t"+headerStyle.Render("TAG PREFIX"))
	for _, p := range projects {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n", p.Name, p.Root, p.ManifestPath(),
			manifestVersion(filepath.Join(ws.Root, filepath.FromSlash(p.ManifestPath()))),
			tagPrefix(p, cfg.Release.SyncVersions))
	}
	return w.Flush()
}

// manifestVersion returns the version recorded in a manifest, or "-" when
// it is missing or unreadable.
func manifestVersion(path string) string {
	if !manifest.Exists(path) {
		return "-"
	}
	v, err := manifest.ReadVersion(path)
	if err != nil || v == "" {
		return "-"
	}
	return v
}

// tagPrefix renders the prefix a release of p would use.
func tagPrefix(p *workspace.Project, sync bool) string {
	var template *string
	if p.TagPrefix != "" {
		template = &p.TagPrefix
	}
	prefix, _ := tagtemplate.ResolvePrefix(tagtemplate.PrefixRequest{
		Template:     template,
		SyncVersions: sync,
		ProjectName:  p.Name,
		Target:       p.Name,
	})
	return prefix
}
