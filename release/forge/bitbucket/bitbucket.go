package bitbucket

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"slices"
	"strings"

	json "github.com/goccy/go-json"

	"github.com/byte4ever/releaser/release/forge"
)

// Config holds the settings needed to create a Bitbucket
// Server forge.
type Config struct {
	// BaseURL is the Bitbucket Server root (e.g.
	// "https://bb.example.com").
	BaseURL string
	// User is the Bitbucket API username.
	User string
	// Password is the Bitbucket API password (or
	// personal access token).
	Password string
	// ReleaseRef is the ref release tags are created
	// from. Empty means "refs/heads/main".
	ReleaseRef string
}

// Provider talks to Bitbucket Server. The request Owner is
// the project key and Repo the repository slug. Bitbucket
// has no releases; CreateRelease creates an annotated tag.
//
// Pattern: Strategy -- implements forge.Forge.
type Provider struct {
	baseURL    string
	user       string
	password   string
	releaseRef string
	client     *http.Client
}

var _ forge.Forge = (*Provider)(nil)

type project struct {
	Key string `json:"key,omitempty"`
}

type repository struct {
	Slug    string  `json:"slug,omitempty"`
	Project project `json:"project"`
}

type pullrequestEndpoint struct {
	ID         string     `json:"id,omitempty"`
	Repository repository `json:"repository,omitempty"`
}

type link struct {
	Href string `json:"href"`
}

type links struct {
	Self []link `json:"self,omitempty"`
}

type pullrequest struct {
	ID          int                  `json:"id,omitempty"`
	Version     int                  `json:"version,omitempty"`
	Title       string               `json:"title,omitempty"`
	Description string               `json:"description,omitempty"`
	State       string               `json:"state,omitempty"`
	Open        bool                 `json:"open"`
	Closed      bool                 `json:"closed"`
	Draft       bool                 `json:"draft,omitempty"`
	FromRef     *pullrequestEndpoint `json:"fromRef,omitempty"`
	ToRef       *pullrequestEndpoint `json:"toRef,omitempty"`
	Locked      bool                 `json:"locked"`
	Reviewers   []account            `json:"reviewers,omitempty"`
	Links       *links               `json:"links,omitempty"`
}

type pullrequestUpdate struct {
	Version     int    `json:"version"`
	Title       string `json:"title"`
	Description string `json:"description"`
}

type pullrequestPage struct {
	Values []pullrequest `json:"values"`
}

type account struct {
	User user `json:"user"`
}

type user struct {
	Name string `json:"name,omitempty"`
}

type comment struct {
	Text string `json:"text"`
}

type tag struct {
	Name       string `json:"name"`
	StartPoint string `json:"startPoint"`
	Message    string `json:"message,omitempty"`
}

// NewProvider validates cfg and returns a Provider.
func NewProvider(cfg Config) (*Provider, error) {
	const errCtx = "creating bitbucket provider"

	if cfg.BaseURL == "" {
		return nil, fmt.Errorf(
			"%s: base url must be set",
			errCtx,
		)
	}

	if cfg.User == "" {
		return nil, fmt.Errorf(
			"%s: user must be set", errCtx,
		)
	}

	if cfg.Password == "" {
		return nil, fmt.Errorf(
			"%s: password must be set", errCtx,
		)
	}

	ref := cfg.ReleaseRef
	if ref == "" {
		ref = "refs/heads/main"
	}

	return &Provider{
		baseURL:    strings.TrimSuffix(cfg.BaseURL, "/"),
		user:       cfg.User,
		password:   cfg.Password,
		releaseRef: ref,
		client:     http.DefaultClient,
	}, nil
}

// CreateOrUpdatePullRequest updates the open pull request
// whose source is SourceBranch and target TargetBranch, or
// creates one.
func (p *Provider) CreateOrUpdatePullRequest(
	ctx context.Context,
	pr forge.PullRequest,
) (string, error) {
	const errCtx = "creating or updating bitbucket pull request"

	endpoint := p.repoURL(pr.Owner, pr.Repo) + "/pull-requests"
	from := "refs/heads/" + pr.SourceBranch
	to := "refs/heads/" + pr.TargetBranch

	var page pullrequestPage

	query := url.Values{
		"state":     {"OPEN"},
		"direction": {"OUTGOING"},
		"at":        {from},
	}

	if err := p.do(
		ctx, http.MethodGet, endpoint+"?"+query.Encode(),
		nil, &page, http.StatusOK,
	); err != nil {
		return "", fmt.Errorf(
			"%s: list pull requests: %w", errCtx, err,
		)
	}

	for _, existing := range page.Values {
		if existing.ToRef == nil || existing.ToRef.ID != to {
			continue
		}

		update := pullrequestUpdate{
			Version:     existing.Version,
			Title:       pr.Title,
			Description: pr.Description,
		}

		var updated pullrequest

		if err := p.do(
			ctx, http.MethodPut,
			fmt.Sprintf("%s/%d", endpoint, existing.ID),
			&update, &updated, http.StatusOK,
		); err != nil {
			return "", fmt.Errorf(
				"%s: update #%d: %w",
				errCtx, existing.ID, err,
			)
		}

		slog.Info(
			"updated existing pull request",
			"id", existing.ID,
		)

		return p.pullRequestLink(pr, updated, existing.ID), nil
	}

	repo := repository{
		Slug:    pr.Repo,
		Project: project{Key: pr.Owner},
	}

	create := pullrequest{
		Title:       pr.Title,
		Description: pr.Description,
		State:       "OPEN",
		Open:        true,
		Closed:      false,
		Draft:       pr.Draft,
		FromRef: &pullrequestEndpoint{
			ID:         from,
			Repository: repo,
		},
		ToRef: &pullrequestEndpoint{
			ID:         to,
			Repository: repo,
		},
		Locked:    false,
		Reviewers: []account{},
	}

	var created pullrequest

	if err := p.do(
		ctx, http.MethodPost, endpoint,
		&create, &created, http.StatusCreated,
	); err != nil {
		return "", fmt.Errorf("%s: %w", errCtx, err)
	}

	slog.Info("pull request created", "id", created.ID)

	return p.pullRequestLink(pr, created, created.ID), nil
}

// CreateRelease creates an annotated tag named rel.Tag
// at the configured release ref and returns its browse
// link.
func (p *Provider) CreateRelease(
	ctx context.Context,
	rel forge.Release,
) (string, error) {
	const errCtx = "creating bitbucket release tag"

	body := tag{
		Name:       rel.Tag,
		StartPoint: p.releaseRef,
		Message:    rel.Description,
	}

	if err := p.do(
		ctx, http.MethodPost,
		p.repoURL(rel.Owner, rel.Repo)+"/tags",
		&body, nil, http.StatusOK, http.StatusCreated,
	); err != nil {
		return "", fmt.Errorf("%s: %w", errCtx, err)
	}

	return fmt.Sprintf(
		"%s/projects/%s/repos/%s/browse?at=%s",
		p.baseURL,
		url.PathEscape(rel.Owner),
		url.PathEscape(rel.Repo),
		url.QueryEscape("refs/tags/"+rel.Tag),
	), nil
}

// AddCommentToPullRequest comments on a pull request.
func (p *Provider) AddCommentToPullRequest(
	ctx context.Context,
	cm forge.Comment,
) error {
	const errCtx = "commenting on bitbucket pull request"

	if err := p.do(
		ctx, http.MethodPost,
		fmt.Sprintf(
			"%s/pull-requests/%d/comments",
			p.repoURL(cm.Owner, cm.Repo),
			cm.PullRequestNumber,
		),
		&comment{Text: cm.Body}, nil, http.StatusCreated,
	); err != nil {
		return fmt.Errorf(
			"%s #%d: %w", errCtx, cm.PullRequestNumber, err,
		)
	}

	return nil
}

func (p *Provider) repoURL(owner string, repo string) string {
	return fmt.Sprintf(
		"%s/rest/api/1.0/projects/%s/repos/%s",
		p.baseURL, url.PathEscape(owner), url.PathEscape(repo),
	)
}

// pullRequestLink prefers the self link returned by the
// server and falls back to the conventional web path.
func (p *Provider) pullRequestLink(
	pr forge.PullRequest,
	got pullrequest,
	id int,
) string {
	if got.Links != nil && len(got.Links.Self) > 0 {
		return got.Links.Self[0].Href
	}

	return fmt.Sprintf(
		"%s/projects/%s/repos/%s/pull-requests/%d",
		p.baseURL,
		url.PathEscape(pr.Owner),
		url.PathEscape(pr.Repo),
		id,
	)
}

// do sends a JSON request and decodes the response into
// out when out is non-nil. Any status outside want is an
// error.
func (p *Provider) do(
	ctx context.Context,
	method string,
	target string,
	in any,
	out any,
	want ...int,
) error {
	var body io.Reader = http.NoBody

	if in != nil {
		payload, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf(
				"marshal request: %w", err,
			)
		}

		body = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(
		ctx, method, target, body,
	)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}

	req.Header.Set(
		"Content-Type",
		"application/json; charset=utf-8",
	)
	req.Header.Set("Accept", "application/json")
	req.SetBasicAuth(p.user, p.password)

	resp, err := p.client.Do(req)
	if err != nil {
		return fmt.Errorf("send request: %w", err)
	}

	defer resp.Body.Close() //nolint:errcheck

	rb, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf(
			"read response: %w", err,
		)
	}

	slog.Debug(
		"bitbucket response",
		"method", method,
		"status", resp.Status,
		"body", string(rb),
	)

	if !slices.Contains(want, resp.StatusCode) {
		slog.Warn(
			"bitbucket response",
			"status", resp.Status,
			"body", string(rb),
		)

		return fmt.Errorf(
			"unexpected status %d", resp.StatusCode,
		)
	}

	if out != nil && len(rb) > 0 {
		if err := json.Unmarshal(rb, out); err != nil {
			return fmt.Errorf(
				"decode response: %w", err,
			)
		}
	}

	return nil
}
