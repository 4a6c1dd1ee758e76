package forge

import (
	"context"
	"fmt"
	"log/slog"
)

// DryRun is a Forge that only logs what it would do.
type DryRun struct{}

// CreateOrUpdatePullRequest logs the request and returns
// a placeholder link.
func (DryRun) CreateOrUpdatePullRequest(
	_ context.Context,
	pr PullRequest,
) (string, error) {
	slog.Info(
		"dry run: create or update pull request",
		"owner", pr.Owner,
		"repo", pr.Repo,
		"title", pr.Title,
		"source", pr.SourceBranch,
		"target", pr.TargetBranch,
		"draft", pr.Draft,
	)

	return fmt.Sprintf(
		"dry-run://%s/%s/pulls/%s",
		pr.Owner, pr.Repo, pr.SourceBranch,
	), nil
}

// CreateRelease logs the request and returns a
// placeholder link.
func (DryRun) CreateRelease(
	_ context.Context,
	rel Release,
) (string, error) {
	slog.Info(
		"dry run: create release",
		"owner", rel.Owner,
		"repo", rel.Repo,
		"tag", rel.Tag,
		"name", rel.Name,
	)

	return fmt.Sprintf(
		"dry-run://%s/%s/releases/%s",
		rel.Owner, rel.Repo, rel.Tag,
	), nil
}

// AddCommentToPullRequest logs the comment.
func (DryRun) AddCommentToPullRequest(
	_ context.Context,
	cm Comment,
) error {
	slog.Info(
		"dry run: comment on pull request",
		"owner", cm.Owner,
		"repo", cm.Repo,
		"number", cm.PullRequestNumber,
	)

	return nil
}
