package gitlab

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strings"

	gl "gitlab.com/gitlab-org/api/client-go"

	"github.com/byte4ever/releaser/release/forge"
)

const draftPrefix = "Draft: "

// Config holds the settings needed to create a GitLab
// forge.
type Config struct {
	// Host is the base URL of the GitLab instance
	// (e.g. "https://gitlab.com").
	Host string
	// AccessToken is a personal or project access
	// token used for authentication.
	AccessToken string
}

// Provider talks to GitLab. Owner and repository of each
// request form the project path ("owner/repo"); nested
// groups go into Owner ("group/subgroup").
//
// Pattern: Strategy -- implements forge.Forge.
type Provider struct {
	client *gl.Client
	host   string
}

var _ forge.Forge = (*Provider)(nil)

// NewProvider validates cfg and returns a Provider.
// Client-side retries are disabled; a failed call fails
// the run.
func NewProvider(cfg Config) (*Provider, error) {
	const errCtx = "creating gitlab provider"

	if cfg.AccessToken == "" {
		return nil, fmt.Errorf(
			"%s: access token must be set", errCtx,
		)
	}

	host := cfg.Host
	if host == "" {
		host = "https://gitlab.com"
	}

	client, err := gl.NewClient(
		cfg.AccessToken,
		gl.WithBaseURL(host),
		gl.WithoutRetries(),
	)
	if err != nil {
		return nil, fmt.Errorf(
			"%s: new client: %w", errCtx, err,
		)
	}

	return &Provider{
		client: client,
		host:   strings.TrimSuffix(host, "/"),
	}, nil
}

// CreateOrUpdatePullRequest updates the opened merge
// request for the branch pair, or creates one. Drafts are
// expressed with the "Draft: " title prefix.
func (p *Provider) CreateOrUpdatePullRequest(
	ctx context.Context,
	pr forge.PullRequest,
) (string, error) {
	const errCtx = "creating or updating gitlab merge request"

	pid := projectPath(pr.Owner, pr.Repo)

	title := pr.Title
	if pr.Draft && !strings.HasPrefix(title, draftPrefix) {
		title = draftPrefix + title
	}

	open, resp, err := p.client.MergeRequests.ListProjectMergeRequests(
		pid,
		&gl.ListProjectMergeRequestsOptions{
			State:        gl.Ptr("opened"),
			SourceBranch: gl.Ptr(pr.SourceBranch),
			TargetBranch: gl.Ptr(pr.TargetBranch),
		},
		gl.WithContext(ctx),
	)
	if err != nil {
		logResponse(resp)

		return "", fmt.Errorf(
			"%s: list merge requests: %w", errCtx, err,
		)
	}

	if len(open) > 0 {
		updated, resp, err := p.client.MergeRequests.UpdateMergeRequest(
			pid,
			open[0].IID,
			&gl.UpdateMergeRequestOptions{
				Title:       gl.Ptr(title),
				Description: gl.Ptr(pr.Description),
			},
			gl.WithContext(ctx),
		)
		if err != nil {
			logResponse(resp)

			return "", fmt.Errorf(
				"%s: update !%d: %w",
				errCtx, open[0].IID, err,
			)
		}

		slog.Info(
			"updated existing merge request",
			"url", updated.WebURL,
		)

		return updated.WebURL, nil
	}

	created, resp, err := p.client.MergeRequests.CreateMergeRequest(
		pid,
		&gl.CreateMergeRequestOptions{
			Title:        gl.Ptr(title),
			Description:  gl.Ptr(pr.Description),
			SourceBranch: gl.Ptr(pr.SourceBranch),
			TargetBranch: gl.Ptr(pr.TargetBranch),
		},
		gl.WithContext(ctx),
	)
	if err != nil {
		logResponse(resp)

		return "", fmt.Errorf("%s: %w", errCtx, err)
	}

	slog.Info(
		"created merge request",
		"url", created.WebURL,
	)

	return created.WebURL, nil
}

// CreateRelease creates a GitLab release. The tag must
// exist or be creatable from the default branch. The
// link is the release URL reported by GitLab, or the
// release page under Host when the response has none.
func (p *Provider) CreateRelease(
	ctx context.Context,
	rel forge.Release,
) (string, error) {
	const errCtx = "creating gitlab release"

	pid := projectPath(rel.Owner, rel.Repo)

	created, resp, err := p.client.Releases.CreateRelease(
		pid,
		&gl.CreateReleaseOptions{
			Name:        gl.Ptr(rel.Name),
			TagName:     gl.Ptr(rel.Tag),
			Description: gl.Ptr(rel.Description),
		},
		gl.WithContext(ctx),
	)
	if err != nil {
		logResponse(resp)

		return "", fmt.Errorf("%s: %w", errCtx, err)
	}

	if created != nil && created.Links.Self != "" {
		return created.Links.Self, nil
	}

	return p.host + "/" + pid + "/-/releases/" +
		url.PathEscape(rel.Tag), nil
}

// AddCommentToPullRequest adds a note to a merge request.
func (p *Provider) AddCommentToPullRequest(
	ctx context.Context,
	cm forge.Comment,
) error {
	const errCtx = "commenting on gitlab merge request"

	_, resp, err := p.client.Notes.CreateMergeRequestNote(
		projectPath(cm.Owner, cm.Repo),
		int64(cm.PullRequestNumber),
		&gl.CreateMergeRequestNoteOptions{
			Body: gl.Ptr(cm.Body),
		},
		gl.WithContext(ctx),
	)
	if err != nil {
		logResponse(resp)

		return fmt.Errorf(
			"%s !%d: %w", errCtx, cm.PullRequestNumber, err,
		)
	}

	return nil
}

func projectPath(owner string, repo string) string {
	return owner + "/" + repo
}

// logResponse records the status of a failed call.
func logResponse(resp *gl.Response) {
	if resp == nil || resp.Response == nil {
		return
	}

	level := slog.LevelWarn
	if resp.StatusCode >= http.StatusInternalServerError {
		level = slog.LevelError
	}

	slog.Log(
		context.Background(), level,
		"gitlab response",
		"status", resp.Status,
	)
}
