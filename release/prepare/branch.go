package prepare

import (
	"context"
	"fmt"
	"log/slog"
	"slices"

	"github.com/byte4ever/releaser/release"
	"github.com/byte4ever/releaser/release/commitmsg"
	"github.com/byte4ever/releaser/release/hook"
)

const (
	// DefaultBranchPrefix prefixes the default pull
	// request branch name.
	DefaultBranchPrefix = "next-release/"

	// DefaultReleaseBranch is the default target of the
	// release pull request.
	DefaultReleaseBranch = "main"
)

// Branches is the pair of branches a run works on. It is
// resolved once per run.
type Branches struct {
	// PullRequest is the long-lived branch carrying
	// the release changes.
	PullRequest string
	// Release is the branch the pull request targets.
	Release string
}

// ResolveBranches asks the branch hooks for the branch
// names, falling back to "next-release/<version>" and
// "main".
func ResolveBranches(
	ctx context.Context,
	hooks hook.Hooks,
	hc *hook.Context,
) (Branches, error) {
	const errCtx = "resolving branches"

	prBranch, err := hook.Value(
		ctx, "getPullRequestBranch",
		hooks.GetPullRequestBranch, hc,
		DefaultBranchPrefix+hc.NextVersion,
	)
	if err != nil {
		return Branches{}, fmt.Errorf("%s: %w", errCtx, err)
	}

	releaseBranch, err := hook.Value(
		ctx, "getReleaseBranch",
		hooks.GetReleaseBranch, hc,
		DefaultReleaseBranch,
	)
	if err != nil {
		return Branches{}, fmt.Errorf("%s: %w", errCtx, err)
	}

	return Branches{
		PullRequest: prBranch,
		Release:     releaseBranch,
	}, nil
}

// Sync positions the checkout on br.PullRequest. When the
// remote already has that branch it is checked out,
// pulled and merged with the remote release branch; a
// failed pull is only logged, a failed merge is fatal.
// Otherwise the branch is created from HEAD and no merge
// happens.
//
// Existence is decided on the remote-tracking name only:
// a local branch without a remote counterpart counts as
// missing and is reset by the create path.
func Sync(
	ctx context.Context,
	vcs release.VCS,
	br Branches,
) error {
	const errCtx = "syncing pull request branch"

	branches, err := vcs.Branches(ctx)
	if err != nil {
		return fmt.Errorf("%s: %w", errCtx, err)
	}

	remote := vcs.Remote()

	if !slices.Contains(
		branches, "remotes/"+remote+"/"+br.PullRequest,
	) {
		slog.Info(
			"branch does not exist yet, creating it",
			"branch", br.PullRequest,
		)

		if err := vcs.Checkout(
			ctx, "-B", br.PullRequest, "--track",
		); err != nil {
			return fmt.Errorf("%s: %w", errCtx, err)
		}

		return nil
	}

	slog.Info(
		"branch already exists, checking it out",
		"branch", br.PullRequest,
	)

	if err := vcs.Checkout(ctx, br.PullRequest); err != nil {
		return fmt.Errorf("%s: %w", errCtx, err)
	}

	if err := vcs.Pull(ctx, br.PullRequest); err != nil {
		slog.Warn(
			"error pulling branch, maybe it does not exist yet",
			"branch", br.PullRequest,
			"error", err,
		)
	}

	upstream := remote + "/" + br.Release

	if err := vcs.Merge(
		ctx,
		upstream,
		"-m", commitmsg.Merge(upstream, br.PullRequest),
		"--no-edit",
	); err != nil {
		return fmt.Errorf("%s: %w", errCtx, err)
	}

	return nil
}
