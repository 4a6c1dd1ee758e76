// Package release holds the data model shared by the
// prepare and publish workflows.
package release

import (
	"context"
	"errors"

	"github.com/byte4ever/releaser/release/exec"
	"github.com/byte4ever/releaser/release/forge"
	"github.com/byte4ever/releaser/release/hook"
)

// ErrMissingRepo is returned when the forge coordinates
// are not configured.
var ErrMissingRepo = errors.New("missing repoOwner or repoName")

// Change is one entry of the release: a commit or merged
// pull request.
type Change struct {
	// Author is the forge handle of the change author.
	Author string `json:"author" yaml:"author"`
	// PullRequestNumber is nil when the change was
	// committed without a pull request.
	PullRequestNumber *int `json:"pullRequestNumber,omitempty" yaml:"pullRequestNumber,omitempty"`
	// Title is the one-line summary used in the changelog.
	Title string `json:"title,omitempty" yaml:"title,omitempty"`
}

// HasPullRequest reports whether the change came from a
// pull request.
func (c Change) HasPullRequest() bool {
	return c.PullRequestNumber != nil
}

// CI holds the forge coordinates of the repository.
type CI struct {
	RepoOwner string
	RepoName  string
}

// Validate returns ErrMissingRepo when either coordinate
// is empty.
func (c CI) Validate() error {
	if c.RepoOwner == "" || c.RepoName == "" {
		return ErrMissingRepo
	}

	return nil
}

// ChangelogOptions controls changelog rendering.
type ChangelogOptions struct {
	// Path is the changelog file, relative to the
	// repository root. Empty means CHANGELOG.md.
	Path string
	// SectionTemplate renders one version section. It
	// may reference {{version}} and {{changes}}.
	SectionTemplate string
	// ChangeTemplate renders one change line. It may
	// reference {{title}}, {{author}}, {{pr}} and
	// {{number}}.
	ChangeTemplate string
}

// User is the user-supplied part of the configuration.
type User struct {
	Hooks     hook.Hooks
	Changelog ChangelogOptions
}

// Config is the recognised configuration of a run.
type Config struct {
	CI   CI
	User User
}

// VCS is the subset of version-control operations the
// workflows need. git.Repo implements it.
type VCS interface {
	Branches(ctx context.Context) ([]string, error)
	Checkout(ctx context.Context, args ...string) error
	Pull(ctx context.Context, branch string) error
	Merge(ctx context.Context, args ...string) error
	DiffSummary(ctx context.Context, args ...string) ([]string, error)
	Add(ctx context.Context, path string) error
	Commit(ctx context.Context, message string) error
	Push(ctx context.Context, args ...string) error
	Remote() string
}

// Context is everything a workflow run needs. It is not
// modified during the run.
type Context struct {
	NextVersion string
	Changes     []Change
	Config      Config
	VCS         VCS
	Forge       forge.Forge
	// Exec is the command runner handed to hooks.
	Exec exec.Func
	// Dir is the repository root; the changelog path is
	// resolved against it. Empty means the working
	// directory.
	Dir string
}

// HookContext returns the restricted view handed to
// hooks.
func (c *Context) HookContext() *hook.Context {
	return hook.NewContext(c.NextVersion, c.Exec)
}
