package release

import (
	"context"
	"fmt"
	"runtime/debug"
	"strconv"

	"github.com/Iron-Ham/versioner/internal/bump"
	"github.com/Iron-Ham/versioner/internal/errors"
	"github.com/Iron-Ham/versioner/internal/executor"
	"github.com/Iron-Ham/versioner/internal/git"
	"github.com/Iron-Ham/versioner/internal/logging"
	"github.com/Iron-Ham/versioner/internal/posttarget"
	"github.com/Iron-Ham/versioner/internal/strategy"
	"github.com/Iron-Ham/versioner/internal/tagtemplate"
	"github.com/Iron-Ham/versioner/internal/workspace"
)

// Config holds required dependencies for creating a Pipeline.
type Config struct {
	Workspace *workspace.Workspace
	Bumper    bump.Bumper
	Git       git.Writer
	Executor  executor.Executor
}

// Pipeline orchestrates a release.
type Pipeline struct {
	cfg    Config
	pcfg   pipelineConfig
	push   *PushAgent
	runner *posttarget.Runner
}

// NewPipeline creates a Pipeline with the given configuration and options.
func NewPipeline(cfg Config, opts ...PipelineOption) (*Pipeline, error) {
	if cfg.Workspace == nil {
		return nil, errors.New("release: Workspace is required")
	}
	if cfg.Bumper == nil {
		return nil, errors.New("release: Bumper is required")
	}
	if cfg.Git == nil {
		return nil, errors.New("release: Git is required")
	}
	if cfg.Executor == nil {
		return nil, errors.New("release: Executor is required")
	}

	pc := pipelineConfig{
		project:   strategy.NewProject(cfg.Git),
		workspace: strategy.NewWorkspace(cfg.Git),
	}
	for _, opt := range opts {
		opt(&pc)
	}

	return &Pipeline{
		cfg:    cfg,
		pcfg:   pc,
		push:   NewPushAgent(cfg.Git),
		runner: posttarget.NewRunner(cfg.Executor),
	}, nil
}

// run carries the state of one invocation.
type run struct {
	p       *Pipeline
	project *workspace.Project
	opts    Options
	phase   Phase
	logger  *logging.Logger

	tagPrefix  string
	resolution bump.Resolution
}

// Run releases project. With SyncVersions set, project names the release
// in commit messages and every workspace project is released together.
// Run never returns an error: failures are logged and reported through
// Result.Success.
func (p *Pipeline) Run(ctx context.Context, project *workspace.Project, opts Options) Result {
	if project == nil {
		project = &workspace.Project{Name: WorkspaceProjectName, Root: "."}
	}

	logger := logging.FromContext(ctx).WithProject(project.Name)
	ctx = logging.WithContext(ctx, logger)

	r := &run{p: p, project: project, opts: opts, logger: logger}
	res := Result{DryRun: opts.DryRun}

	if err := r.safeExecute(ctx); err != nil {
		logger.Error("release failed",
			"phase", r.phase.String(),
			"error", err.Error(),
			"severity", errors.GetSeverity(err).String(),
			"retryable", errors.IsRetryable(err),
		)
		r.enter(PhaseFailed)
		res.Phase = PhaseFailed
		return res
	}

	r.enter(PhaseDone)
	res.Success = true
	res.Phase = PhaseDone
	if r.resolution.Changed() {
		res.Version = r.resolution.Version()
		res.Tag = r.tagPrefix + res.Version
	}
	return res
}

func (r *run) enter(phase Phase) {
	r.phase = phase
	r.logger.Debug("entering phase", "phase", phase.String())
	for _, fn := range r.p.pcfg.observers {
		fn(phase)
	}
}

// safeExecute turns a panic in a collaborator into an error of the phase
// that was running.
func (r *run) safeExecute(ctx context.Context) (err error) {
	defer func() {
		if rec := recover(); rec != nil {
			err = fmt.Errorf("panic during %s: %v", r.phase, rec)
			r.logger.Error("recovered from panic", "phase", r.phase.String(), "stack", string(debug.Stack()))
		}
	}()
	return r.execute(ctx)
}

func (r *run) execute(ctx context.Context) error {
	r.enter(PhaseResolveTag)
	r.resolveTag()

	r.enter(PhaseResolveVersion)
	if err := r.resolveVersion(ctx); err != nil {
		return err
	}
	if !r.resolution.Changed() {
		r.logger.Info("Nothing changed since last release.")
		return nil
	}

	r.enter(PhaseApplyVersion)
	if err := r.applyVersion(ctx); err != nil {
		return err
	}

	if r.opts.Push && !r.opts.DryRun {
		r.enter(PhasePush)
		err := r.p.push.Push(ctx, git.PushOptions{
			Remote:   r.opts.Remote,
			Branch:   r.opts.BaseBranch,
			NoVerify: r.opts.NoVerify,
		})
		if err != nil {
			return err
		}
	}

	if !r.opts.DryRun && len(r.opts.PostTargets) > 0 {
		r.enter(PhasePostTargets)
		if err := r.p.runner.Run(ctx, r.opts.PostTargets, r.vars()); err != nil {
			return err
		}
	}

	return nil
}

// resolveTag computes the tag prefix once; every later phase reuses it.
func (r *run) resolveTag() {
	template := r.opts.VersionTagPrefix
	if template == nil && r.project.TagPrefix != "" {
		template = &r.project.TagPrefix
	}

	// ${target} expands to the released project, so every project keeps
	// its own tag lineage.
	prefix, rule := tagtemplate.ResolvePrefix(tagtemplate.PrefixRequest{
		Template:     template,
		SyncVersions: r.opts.SyncVersions,
		ProjectName:  r.project.Name,
		Target:       r.project.Name,
	})
	r.tagPrefix = prefix
	r.logger.Debug("resolved tag prefix", "prefix", prefix, "rule", rule)
}

func (r *run) resolveVersion(ctx context.Context) error {
	root := r.project.Root
	if r.opts.SyncVersions {
		root = "."
	}

	res, err := r.p.cfg.Bumper.Bump(ctx, bump.Request{
		ProjectRoot: root,
		TagPrefix:   r.tagPrefix,
		ReleaseType: r.opts.releaseType(),
		Preid:       r.opts.Preid,
		Preset:      r.opts.Preset,
	})
	if err != nil {
		return err
	}
	r.resolution = res
	if res.Changed() {
		r.logger.Info("resolved version", "previous", res.Previous, "version", res.Version(), "commits", len(res.Commits))
	}
	return nil
}

func (r *run) applyVersion(ctx context.Context) error {
	vo := strategy.VersionOptions{
		DryRun:               r.opts.DryRun,
		NewVersion:           r.resolution.Version(),
		NoVerify:             r.opts.NoVerify,
		TagPrefix:            r.tagPrefix,
		ChangelogHeader:      r.opts.ChangelogHeader,
		CommitMessageFormat:  r.opts.CommitMessageFormat,
		Preset:               r.opts.Preset,
		WorkspaceRoot:        r.p.cfg.Workspace.Root,
		ProjectName:          r.project.Name,
		ProjectRoot:          r.project.Root,
		Manifest:             r.project.Manifest,
		SkipRootChangelog:    r.opts.SkipRootChangelog,
		SkipProjectChangelog: r.opts.SkipProjectChangelog,
		Commits:              r.resolution.Commits,
	}

	s := r.p.pcfg.project
	if r.opts.SyncVersions {
		s = r.p.pcfg.workspace
		vo.Projects = r.p.cfg.Workspace.Projects()
	}

	_, err := s.Apply(ctx, vo)
	return err
}

// vars is the release context handed to post targets.
func (r *run) vars() tagtemplate.Context {
	version := r.resolution.Version()
	return tagtemplate.Context{
		tagtemplate.KeyProjectName: r.project.Name,
		tagtemplate.KeyVersion:     version,
		tagtemplate.KeyTag:         r.tagPrefix + version,
		tagtemplate.KeyDryRun:      strconv.FormatBool(r.opts.DryRun),
		tagtemplate.KeyNoVerify:    strconv.FormatBool(r.opts.NoVerify),
		tagtemplate.KeyRemote:      r.opts.Remote,
		tagtemplate.KeyBaseBranch:  r.opts.BaseBranch,
	}
}
