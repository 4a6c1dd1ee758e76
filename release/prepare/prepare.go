package prepare

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/byte4ever/releaser/release"
	"github.com/byte4ever/releaser/release/changelog"
	"github.com/byte4ever/releaser/release/commitmsg"
	"github.com/byte4ever/releaser/release/forge"
	"github.com/byte4ever/releaser/release/hook"
)

// Result describes how far a run went.
type Result struct {
	// State is Done or Cancelled.
	State release.State
	// PullRequestLink is the forge URL of the release
	// pull request. Empty when cancelled.
	PullRequestLink string
	// Committed reports whether a changelog commit was
	// pushed.
	Committed bool
	// Branches is the resolved branch pair.
	Branches Branches
}

// Run executes the preparation workflow for rc. A
// cancelled run returns a Cancelled result and a nil
// error. On error the returned result holds the state
// the run failed in.
func Run(ctx context.Context, rc *release.Context) (Result, error) {
	const errCtx = "preparing release"

	res := Result{State: release.Reconciling}

	fail := func(err error) (Result, error) {
		return res, fmt.Errorf("%s: %s: %w", errCtx, res.State, err)
	}

	up, err := changelog.NewUpdater(rc)
	if err != nil {
		return fail(err)
	}

	hooks := rc.Config.User.Hooks
	hc := rc.HookContext()

	slog.Info("preparing release", "version", rc.NextVersion)

	br, err := ResolveBranches(ctx, hooks, hc)
	if err != nil {
		return fail(err)
	}

	res.Branches = br

	if err := Sync(ctx, rc.VCS, br); err != nil {
		return fail(err)
	}

	res.State = release.HookGate

	proceed, err := hook.Gate(
		ctx, "beforePrepare", hooks.BeforePrepare, hc,
	)
	if err != nil {
		return fail(err)
	}

	if !proceed {
		slog.Info("beforePrepare hook returned false, skipping prepare")

		res.State = release.Cancelled

		return res, nil
	}

	res.State = release.ChangelogStep

	content, err := up.Write(ctx, rc.NextVersion, rc.Changes)
	if err != nil {
		return fail(err)
	}

	res.State = release.CommitPush

	res.Committed, err = up.CommitAndPush(
		ctx, rc.NextVersion, br.PullRequest,
	)
	if err != nil {
		return fail(err)
	}

	res.State = release.PRCreate

	res.PullRequestLink, err = openPullRequest(
		ctx, rc, hc, br, content,
	)
	if err != nil {
		return fail(err)
	}

	res.State = release.HookAfter

	if err := hook.Run(
		ctx, "afterPrepare", hooks.AfterPrepare, hc,
	); err != nil {
		return fail(err)
	}

	res.State = release.Done

	slog.Info(
		"release pull request ready",
		"version", rc.NextVersion,
		"link", res.PullRequestLink,
	)

	return res, nil
}

func openPullRequest(
	ctx context.Context,
	rc *release.Context,
	hc *hook.Context,
	br Branches,
	content string,
) (string, error) {
	ci := rc.Config.CI
	if err := ci.Validate(); err != nil {
		return "", err
	}

	description, err := hook.Value(
		ctx, "getReleaseDescription",
		rc.Config.User.Hooks.GetReleaseDescription, hc,
		content,
	)
	if err != nil {
		return "", err
	}

	link, err := rc.Forge.CreateOrUpdatePullRequest(
		ctx,
		forge.PullRequest{
			Owner:        ci.RepoOwner,
			Repo:         ci.RepoName,
			Title:        commitmsg.ReleaseTitle(rc.NextVersion),
			Description:  description,
			Draft:        true,
			SourceBranch: br.PullRequest,
			TargetBranch: br.Release,
		},
	)
	if err != nil {
		return "", fmt.Errorf("creating pull request: %w", err)
	}

	return link, nil
}
