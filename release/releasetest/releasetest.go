// Package releasetest provides in-memory doubles of the
// repository and forge used by the release workflows.
package releasetest

import (
	"context"
	"fmt"
	"slices"
	"strings"
	"sync"

	"github.com/byte4ever/releaser/release"
	"github.com/byte4ever/releaser/release/forge"
)

var _ release.VCS = (*VCS)(nil)

// Call is one recorded operation.
type Call struct {
	Op   string
	Args []string
}

// String renders the call as "op arg1 arg2".
func (c Call) String() string {
	return strings.TrimSpace(c.Op + " " + strings.Join(c.Args, " "))
}

// VCS records every operation. Branches returns
// BranchList, DiffSummary returns Staged, and an entry of
// Errs makes the operation of that name fail.
type VCS struct {
	mu sync.Mutex

	BranchList []string
	Staged     []string
	Errs       map[string]error
	RemoteName string

	calls []Call
}

// Calls returns a copy of the recorded calls.
func (v *VCS) Calls() []Call {
	v.mu.Lock()
	defer v.mu.Unlock()

	return slices.Clone(v.calls)
}

// Ops returns the recorded operation names in order.
func (v *VCS) Ops() []string {
	calls := v.Calls()
	ops := make([]string, 0, len(calls))

	for _, c := range calls {
		ops = append(ops, c.Op)
	}

	return ops
}

// Called reports whether op was recorded.
func (v *VCS) Called(op string) bool {
	return slices.Contains(v.Ops(), op)
}

func (v *VCS) record(op string, args ...string) error {
	v.mu.Lock()
	defer v.mu.Unlock()

	v.calls = append(v.calls, Call{Op: op, Args: args})

	if err, ok := v.Errs[op]; ok {
		return err
	}

	return nil
}

// Branches implements release.VCS.
func (v *VCS) Branches(_ context.Context) ([]string, error) {
	if err := v.record("branch"); err != nil {
		return nil, err
	}

	return slices.Clone(v.BranchList), nil
}

// Checkout implements release.VCS.
func (v *VCS) Checkout(_ context.Context, args ...string) error {
	return v.record("checkout", args...)
}

// Pull implements release.VCS.
func (v *VCS) Pull(_ context.Context, branch string) error {
	return v.record("pull", branch)
}

// Merge implements release.VCS.
func (v *VCS) Merge(_ context.Context, args ...string) error {
	return v.record("merge", args...)
}

// DiffSummary implements release.VCS.
func (v *VCS) DiffSummary(
	_ context.Context,
	args ...string,
) ([]string, error) {
	if err := v.record("diff", args...); err != nil {
		return nil, err
	}

	return slices.Clone(v.Staged), nil
}

// Add implements release.VCS.
func (v *VCS) Add(_ context.Context, path string) error {
	return v.record("add", path)
}

// Commit implements release.VCS.
func (v *VCS) Commit(_ context.Context, message string) error {
	return v.record("commit", message)
}

// Push implements release.VCS.
func (v *VCS) Push(_ context.Context, args ...string) error {
	return v.record("push", args...)
}

// Remote implements release.VCS.
func (v *VCS) Remote() string {
	if v.RemoteName == "" {
		return "origin"
	}

	return v.RemoteName
}

// Forge records every request and answers with canned
// links. CommentErrs maps a pull request number to the
// error its comment fails with.
type Forge struct {
	mu sync.Mutex

	PullRequestLink string
	ReleaseLink     string
	PullRequestErr  error
	ReleaseErr      error
	CommentErrs     map[int]error

	pullRequests []forge.PullRequest
	releases     []forge.Release
	comments     []forge.Comment
}

var _ forge.Forge = (*Forge)(nil)

// CreateOrUpdatePullRequest implements forge.Forge.
func (f *Forge) CreateOrUpdatePullRequest(
	_ context.Context,
	pr forge.PullRequest,
) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.pullRequests = append(f.pullRequests, pr)

	if f.PullRequestErr != nil {
		return "", f.PullRequestErr
	}

	if f.PullRequestLink != "" {
		return f.PullRequestLink, nil
	}

	return fmt.Sprintf(
		"https://forge.test/%s/%s/pull/1", pr.Owner, pr.Repo,
	), nil
}

// CreateRelease implements forge.Forge.
func (f *Forge) CreateRelease(
	_ context.Context,
	rel forge.Release,
) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.releases = append(f.releases, rel)

	if f.ReleaseErr != nil {
		return "", f.ReleaseErr
	}

	if f.ReleaseLink != "" {
		return f.ReleaseLink, nil
	}

	return fmt.Sprintf(
		"https://forge.test/%s/%s/releases/%s",
		rel.Owner, rel.Repo, rel.Tag,
	), nil
}

// AddCommentToPullRequest implements forge.Forge.
func (f *Forge) AddCommentToPullRequest(
	_ context.Context,
	cm forge.Comment,
) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.comments = append(f.comments, cm)

	return f.CommentErrs[cm.PullRequestNumber]
}

// PullRequests returns the recorded pull request calls.
func (f *Forge) PullRequests() []forge.PullRequest {
	f.mu.Lock()
	defer f.mu.Unlock()

	return slices.Clone(f.pullRequests)
}

// Releases returns the recorded release calls.
func (f *Forge) Releases() []forge.Release {
	f.mu.Lock()
	defer f.mu.Unlock()

	return slices.Clone(f.releases)
}

// Comments returns the recorded comment calls.
func (f *Forge) Comments() []forge.Comment {
	f.mu.Lock()
	defer f.mu.Unlock()

	return slices.Clone(f.comments)
}

// PR returns a pointer to n, for Change literals.
func PR(n int) *int {
	return &n
}
