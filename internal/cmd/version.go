package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Iron-Ham/versioner/internal/bump"
	"github.com/Iron-Ham/versioner/internal/config"
	"github.com/Iron-Ham/versioner/internal/errors"
	"github.com/Iron-Ham/versioner/internal/executor"
	"github.com/Iron-Ham/versioner/internal/git"
	"github.com/Iron-Ham/versioner/internal/history"
	"github.com/Iron-Ham/versioner/internal/logging"
	"github.com/Iron-Ham/versioner/internal/posttarget"
	"github.com/Iron-Ham/versioner/internal/release"
	"github.com/Iron-Ham/versioner/internal/workspace"
)

// errReleaseFailed is returned when the pipeline reports failure; details
// were already logged.
var errReleaseFailed = errors.New("release failed, see log for details")

var versionCmd = &cobra.Command{
	Use:   "version [project]",
	Short: "Release the next version of a project",
	Long: `Compute the next version of a project from its commit history, write its
manifest and changelog, then commit and tag the release.

With --sync-versions every workspace project is released with one shared
version and tag. Without a project argument the workspace must contain
exactly one project, unless versions are synchronized.

Flags override the release section of the config file when set.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runVersion,
}

var (
	versionDryRun               bool
	versionPush                 bool
	versionRemote               string
	versionBaseBranch           string
	versionNoVerify             bool
	versionSyncVersions         bool
	versionSkipRootChangelog    bool
	versionSkipProjectChangelog bool
	versionExplicit             string
	versionReleaseAs            string
	versionPreid                string
	versionChangelogHeader      string
	versionTagPrefix            string
	versionPreset               string
	versionPostTargets          []string
)

func init() {
	rootCmd.AddCommand(versionCmd)
	versionCmd.Flags().BoolVar(&versionDryRun, "dry-run", false, "Show what would change without writing, committing, pushing or running post targets")
	versionCmd.Flags().BoolVar(&versionPush, "push", false, "Push the release commit and tag")
	versionCmd.Flags().StringVar(&versionRemote, "remote", "", "Remote to push to")
	versionCmd.Flags().StringVar(&versionBaseBranch, "base-branch", "", "Branch to push")
	versionCmd.Flags().BoolVar(&versionNoVerify, "no-verify", false, "Skip git hooks on commit and push")
	versionCmd.Flags().BoolVar(&versionSyncVersions, "sync-versions", false, "Release every project with one shared version")
	versionCmd.Flags().BoolVar(&versionSkipRootChangelog, "skip-root-changelog", false, "Do not write the workspace changelog (with --sync-versions)")
	versionCmd.Flags().BoolVar(&versionSkipProjectChangelog, "skip-project-changelog", false, "Do not write project changelogs (with --sync-versions)")
	versionCmd.Flags().StringVar(&versionExplicit, "version", "", "Release this exact version")
	versionCmd.Flags().StringVar(&versionReleaseAs, "release-as", "", "Release type: a version or major, minor, patch, premajor, preminor, prepatch, prerelease")
	versionCmd.Flags().StringVar(&versionPreid, "preid", "", "Prerelease identifier, e.g. beta")
	versionCmd.Flags().StringVar(&versionChangelogHeader, "changelog-header", "", "Header written at the top of changelogs")
	versionCmd.Flags().StringVar(&versionTagPrefix, "tag-prefix", "", "Tag prefix template, e.g. ${projectName}@")
	versionCmd.Flags().StringVar(&versionPreset, "preset", "", "Commit convention: angular or conventionalcommits")
	versionCmd.Flags().StringSliceVar(&versionPostTargets, "post-target", nil, "Target to run after the release as project:target[:configuration] (repeatable)")
}

// buildOptions merges config defaults with explicitly set flags.
func buildOptions(cmd *cobra.Command, cfg *config.Config) release.Options {
	rc := cfg.Release
	opts := release.Options{
		Push:                rc.Push,
		Remote:              rc.Remote,
		BaseBranch:          rc.BaseBranch,
		NoVerify:            rc.NoVerify,
		SyncVersions:        rc.SyncVersions,
		ChangelogHeader:     rc.ChangelogHeader,
		CommitMessageFormat: rc.CommitMessageFormat,
		Preset:              rc.Preset,

		DryRun:               versionDryRun,
		SkipRootChangelog:    versionSkipRootChangelog,
		SkipProjectChangelog: versionSkipProjectChangelog,
		Version:              versionExplicit,
		ReleaseAs:            versionReleaseAs,
		Preid:                versionPreid,
	}

	flags := cmd.Flags()
	if flags.Changed("push") {
		opts.Push = versionPush
	}
	if flags.Changed("remote") {
		opts.Remote = versionRemote
	}
	if flags.Changed("base-branch") {
		opts.BaseBranch = versionBaseBranch
	}
	if flags.Changed("no-verify") {
		opts.NoVerify = versionNoVerify
	}
	if flags.Changed("sync-versions") {
		opts.SyncVersions = versionSyncVersions
	}
	if flags.Changed("changelog-header") {
		opts.ChangelogHeader = versionChangelogHeader
	}
	if flags.Changed("preset") {
		opts.Preset = versionPreset
	}
	if flags.Changed("tag-prefix") {
		prefix := versionTagPrefix
		opts.VersionTagPrefix = &prefix
	}
	return opts
}

// selectProject picks the released project. A nil project with no error
// means a synchronized workspace release.
func selectProject(ws *workspace.Workspace, args []string, sync bool) (*workspace.Project, error) {
	if len(args) == 1 {
		return ws.Project(args[0])
	}
	if sync {
		return nil, nil
	}

	projects := ws.Projects()
	if len(projects) == 1 {
		return projects[0], nil
	}
	return nil, errors.NewValidationError(
		fmt.Sprintf("a project name is required, the workspace has %d projects", len(projects))).
		WithField("project")
}

func runVersion(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	logger, err := logging.NewLogger(cfg.Logging.Dir, cfg.Logging.Level)
	if err != nil {
		return fmt.Errorf("failed to create logger: %w", err)
	}
	defer func() { _ = logger.Close() }()
	ctx := logging.WithContext(cmd.Context(), logger)

	root, err := workspaceRoot(cmd)
	if err != nil {
		return fmt.Errorf("failed to get current directory: %w", err)
	}

	ws, err := workspace.Load(root, cfg.Workspace.File)
	if err != nil {
		return fmt.Errorf("failed to load workspace: %w", err)
	}

	opts := buildOptions(cmd, cfg)
	project, err := selectProject(ws, args, opts.SyncVersions)
	if err != nil {
		return err
	}

	postTargets := versionPostTargets
	if !cmd.Flags().Changed("post-target") && project != nil {
		postTargets = project.PostTargets
	}
	opts.PostTargets, err = posttarget.Parse(postTargets)
	if err != nil {
		return fmt.Errorf("invalid post targets: %w", err)
	}

	repo, err := history.Open(root)
	if err != nil {
		return err
	}

	pipeline, err := release.NewPipeline(release.Config{
		Workspace: ws,
		Bumper:    bump.NewResolver(repo),
		Git:       git.NewCLIWriter(root),
		Executor:  executor.NewWorkspaceExecutor(ws),
	})
	if err != nil {
		return err
	}

	res := pipeline.Run(ctx, project, opts)
	printResult(cmd, res)
	if !res.Success {
		return errReleaseFailed
	}
	return nil
}

func printResult(cmd *cobra.Command, res release.Result) {
	out := cmd.OutOrStdout()

	switch {
	case !res.Success:
		fmt.Fprintln(out, failureStyle.Render("✗ Release failed"))
	case res.Version == "":
		fmt.Fprintln(out, mutedStyle.Render("Nothing changed since last release."))
	case res.DryRun:
		fmt.Fprintf(out, "%s %s\n", warnStyle.Render("Dry run:"), "would release "+headerStyle.Render(res.Tag))
	default:
		fmt.Fprintf(out, "%s %s\n", successStyle.Render("✓ Released"), headerStyle.Render(res.Tag))
	}
}
