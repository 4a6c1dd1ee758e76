package publish

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
	// State is Done or Cancelled, or the failing state.
	State release.State
	// ReleaseLink is the forge URL of the release.
	ReleaseLink string
	// Notified lists the pull requests that received a
	// comment, in order.
	Notified []int
}

// Description returns the default release description:
// the contributors block followed by the changelog
// section of the version.
func Description(
	rd *changelog.Renderer,
	version string,
	changes []release.Change,
) string {
	authors := make([]string, 0, len(changes))
	for _, c := range changes {
		authors = append(authors, c.Author)
	}

	return commitmsg.Contributors(authors) +
		"\n\n" + rd.Section(version, changes)
}

// Run executes the release workflow for rc. A cancelled
// run returns a Cancelled result and a nil error.
// Comments are posted one at a time and the first failure
// stops the run; pull requests commented before it keep
// their comment.
func Run(ctx context.Context, rc *release.Context) (Result, error) {
	const errCtx = "publishing release"

	res := Result{State: release.HookGate}

	fail := func(err error) (Result, error) {
		return res, fmt.Errorf("%s: %s: %w", errCtx, res.State, err)
	}

	rd, err := changelog.NewRenderer(rc.Config.User.Changelog)
	if err != nil {
		return fail(err)
	}

	hooks := rc.Config.User.Hooks
	hc := rc.HookContext()

	proceed, err := hook.Gate(
		ctx, "beforeRelease", hooks.BeforeRelease, hc,
	)
	if err != nil {
		return fail(err)
	}

	if !proceed {
		slog.Info("beforeRelease hook returned false, skipping release")

		res.State = release.Cancelled

		return res, nil
	}

	res.State = release.ReleaseCreate

	ci := rc.Config.CI
	if err := ci.Validate(); err != nil {
		return fail(err)
	}

	description, err := hook.Value(
		ctx, "getReleaseDescription",
		hooks.GetReleaseDescription, hc,
		Description(rd, rc.NextVersion, rc.Changes),
	)
	if err != nil {
		return fail(err)
	}

	slog.Info("creating release", "version", rc.NextVersion)

	res.ReleaseLink, err = rc.Forge.CreateRelease(
		ctx,
		forge.Release{
			Owner:       ci.RepoOwner,
			Repo:        ci.RepoName,
			Tag:         rc.NextVersion,
			Name:        rc.NextVersion,
			Description: description,
		},
	)
	if err != nil {
		return fail(err)
	}

	res.State = release.NotifyLoop

	body := commitmsg.PullRequestComment(
		rc.NextVersion, res.ReleaseLink,
	)

	for _, c := range rc.Changes {
		if !c.HasPullRequest() {
			continue
		}

		n := *c.PullRequestNumber

		slog.Info("commenting on pull request", "number", n)

		if err := rc.Forge.AddCommentToPullRequest(
			ctx,
			forge.Comment{
				Owner:             ci.RepoOwner,
				Repo:              ci.RepoName,
				PullRequestNumber: n,
				Body:              body,
			},
		); err != nil {
			return fail(fmt.Errorf("pull request #%d: %w", n, err))
		}

		res.Notified = append(res.Notified, n)
	}

	res.State = release.HookAfter

	if err := hook.Run(
		ctx, "afterRelease", hooks.AfterRelease, hc,
	); err != nil {
		return fail(err)
	}

	res.State = release.Done

	slog.Info(
		"release published",
		"version", rc.NextVersion,
		"link", res.ReleaseLink,
		"notified", len(res.Notified),
	)

	return res, nil
}
