package forge

import "context"

// Pattern: Strategy -- swap hosting platform without
// changing the release workflows.

// PullRequest describes a pull request to create or
// update.
type PullRequest struct {
	Owner        string
	Repo         string
	Title        string
	Description  string
	Draft        bool
	SourceBranch string
	TargetBranch string
}

// Release describes a release to create.
type Release struct {
	Owner       string
	Repo        string
	Tag         string
	Name        string
	Description string
}

// Comment describes a comment on a pull request.
type Comment struct {
	Owner             string
	Repo              string
	PullRequestNumber int
	Body              string
}

// Forge is a code hosting platform.
type Forge interface {
	// CreateOrUpdatePullRequest opens a pull request
	// from SourceBranch into TargetBranch, or updates
	// the open one for that pair in place. It returns
	// the pull request link.
	CreateOrUpdatePullRequest(
		ctx context.Context,
		pr PullRequest,
	) (string, error)

	// CreateRelease creates a release and returns its
	// link.
	CreateRelease(
		ctx context.Context,
		rel Release,
	) (string, error)

	// AddCommentToPullRequest posts a comment on a pull
	// request.
	AddCommentToPullRequest(
		ctx context.Context,
		cm Comment,
	) error
}
