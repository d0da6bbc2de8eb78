// Package release runs a release of one project, or of the whole workspace,
// as a single ordered pipeline.
//
// # Phases
//
// [Pipeline.Run] moves through these phases:
//
//	resolve_tag → resolve_version → apply_version → push → post_targets → done
//
// Resolving the version may end the run early with success when nothing
// changed since the last release. Any error moves the run to failed, is
// logged with its phase, and is reported as Result.Success == false; Run
// never returns an error.
//
// Push only runs when requested and not in a dry run. Post targets never run
// in a dry run, execute in order, and stop at the first failure.
//
// # Usage
//
//	p, _ := release.NewPipeline(release.Config{
//	    Workspace: ws,
//	    Bumper:    bump.NewResolver(repo),
//	    Git:       git.NewCLIWriter(ws.Root),
//	    Executor:  executor.NewWorkspaceExecutor(ws),
//	})
//	res := p.Run(ctx, project, release.Options{ReleaseAs: "minor", Push: true})
package release
