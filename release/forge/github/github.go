package github

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	gh "github.com/google/go-github/v68/github"

	"github.com/byte4ever/releaser/release/forge"
)

// Config holds the settings needed to create a GitHub
// forge.
type Config struct {
	// AccessToken is a personal access token or
	// GitHub App token used for authentication.
	AccessToken string
	// EnterpriseHost is an optional GitHub Enterprise
	// hostname (e.g. "git.corp.example.com"). Leave
	// empty for github.com.
	EnterpriseHost string
	// APIURL is an optional full API base URL. It takes
	// precedence over EnterpriseHost.
	APIURL string
}

// Provider talks to GitHub.
//
// Pattern: Strategy -- implements forge.Forge.
type Provider struct {
	client *gh.Client
}

var _ forge.Forge = (*Provider)(nil)

// NewProvider validates cfg and returns a Provider.
func NewProvider(cfg Config) (*Provider, error) {
	const errCtx = "creating github provider"

	if cfg.AccessToken == "" {
		return nil, fmt.Errorf(
			"%s: access token must be set", errCtx,
		)
	}

	client := gh.NewClient(nil).
		WithAuthToken(cfg.AccessToken)

	baseURL, uploadURL := "", ""

	switch {
	case cfg.APIURL != "":
		baseURL, uploadURL = cfg.APIURL, cfg.APIURL
	case cfg.EnterpriseHost != "":
		baseURL = "https://" +
			cfg.EnterpriseHost + "/api/v3/"
		uploadURL = "https://" +
			cfg.EnterpriseHost + "/api/uploads/"
	}

	if baseURL != "" {
		var err error

		client, err = client.WithEnterpriseURLs(
			baseURL, uploadURL,
		)
		if err != nil {
			return nil, fmt.Errorf(
				"%s: enterprise urls: %w",
				errCtx, err,
			)
		}
	}

	return &Provider{client: client}, nil
}

// CreateOrUpdatePullRequest updates the open pull request
// from SourceBranch into TargetBranch, or creates one.
// An HTTP 422 on creation means another run opened the
// pull request meanwhile; it is then looked up and
// updated.
func (p *Provider) CreateOrUpdatePullRequest(
	ctx context.Context,
	pr forge.PullRequest,
) (string, error) {
	const errCtx = "creating or updating github pull request"

	link, found, err := p.updateOpen(ctx, pr)
	if err != nil {
		return "", fmt.Errorf("%s: %w", errCtx, err)
	}

	if found {
		return link, nil
	}

	created, resp, err := p.client.PullRequests.Create(
		ctx, pr.Owner, pr.Repo, &gh.NewPullRequest{
			Title: gh.Ptr(pr.Title),
			Head:  gh.Ptr(pr.SourceBranch),
			Base:  gh.Ptr(pr.TargetBranch),
			Body:  gh.Ptr(pr.Description),
			Draft: gh.Ptr(pr.Draft),
		},
	)
	if err == nil {
		slog.Info(
			"created pull request",
			"url", created.GetHTMLURL(),
		)

		return created.GetHTMLURL(), nil
	}

	if resp != nil &&
		resp.StatusCode ==
			http.StatusUnprocessableEntity {
		link, found, retryErr := p.updateOpen(ctx, pr)
		if retryErr != nil {
			return "", fmt.Errorf(
				"%s: %w", errCtx,
				errors.Join(err, retryErr),
			)
		}

		if found {
			return link, nil
		}
	}

	logResponse(resp)

	return "", fmt.Errorf("%s: %w", errCtx, err)
}

// updateOpen edits the open pull request for the branch
// pair if there is one.
func (p *Provider) updateOpen(
	ctx context.Context,
	pr forge.PullRequest,
) (string, bool, error) {
	open, resp, err := p.client.PullRequests.List(
		ctx, pr.Owner, pr.Repo,
		&gh.PullRequestListOptions{
			State: "open",
			Head:  pr.Owner + ":" + pr.SourceBranch,
			Base:  pr.TargetBranch,
		},
	)
	if err != nil {
		logResponse(resp)

		return "", false, fmt.Errorf(
			"list pull requests: %w", err,
		)
	}

	if len(open) == 0 {
		return "", false, nil
	}

	updated, resp, err := p.client.PullRequests.Edit(
		ctx, pr.Owner, pr.Repo, open[0].GetNumber(),
		&gh.PullRequest{
			Title: gh.Ptr(pr.Title),
			Body:  gh.Ptr(pr.Description),
		},
	)
	if err != nil {
		logResponse(resp)

		return "", false, fmt.Errorf(
			"edit pull request #%d: %w",
			open[0].GetNumber(), err,
		)
	}

	slog.Info(
		"updated existing pull request",
		"url", updated.GetHTMLURL(),
	)

	return updated.GetHTMLURL(), true, nil
}

// CreateRelease creates a GitHub release for rel.Tag.
func (p *Provider) CreateRelease(
	ctx context.Context,
	rel forge.Release,
) (string, error) {
	const errCtx = "creating github release"

	created, resp, err := p.client.Repositories.CreateRelease(
		ctx, rel.Owner, rel.Repo, &gh.RepositoryRelease{
			TagName: gh.Ptr(rel.Tag),
			Name:    gh.Ptr(rel.Name),
			Body:    gh.Ptr(rel.Description),
		},
	)
	if err != nil {
		logResponse(resp)

		return "", fmt.Errorf("%s: %w", errCtx, err)
	}

	return created.GetHTMLURL(), nil
}

// AddCommentToPullRequest comments on a pull request
// through the issues API.
func (p *Provider) AddCommentToPullRequest(
	ctx context.Context,
	cm forge.Comment,
) error {
	const errCtx = "commenting on github pull request"

	_, resp, err := p.client.Issues.CreateComment(
		ctx, cm.Owner, cm.Repo, cm.PullRequestNumber,
		&gh.IssueComment{Body: gh.Ptr(cm.Body)},
	)
	if err != nil {
		logResponse(resp)

		return fmt.Errorf(
			"%s #%d: %w", errCtx, cm.PullRequestNumber, err,
		)
	}

	return nil
}

// logResponse records the status of a failed call.
func logResponse(resp *gh.Response) {
	if resp == nil || resp.Response == nil {
		return
	}

	slog.Warn(
		"github response",
		"status", resp.Status,
	)
}
