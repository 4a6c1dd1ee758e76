package git

import (
	"bufio"
	"context"
	"fmt"
	"strings"

	"github.com/byte4ever/releaser/release/exec"
)

// DefaultRemote is the remote name used when Repo.RemoteName
// is empty.
const DefaultRemote = "origin"

// Repo is a local git checkout driven through the git
// CLI. The zero RemoteName means DefaultRemote.
type Repo struct {
	// Dir is the filesystem location of the checkout.
	// Empty means the current working directory.
	Dir string
	// RemoteName is the name of the upstream remote.
	RemoteName string
}

// Open returns a Repo rooted at dir using remote.
func Open(dir string, remote string) *Repo {
	return &Repo{Dir: dir, RemoteName: remote}
}

// Remote returns the configured remote name.
func (r *Repo) Remote() string {
	if r.RemoteName == "" {
		return DefaultRemote
	}

	return r.RemoteName
}

// Branches lists local and remote-tracking branches the
// way "git branch -a" prints them, e.g. "main" and
// "remotes/origin/main". Symbolic refs such as
// "remotes/origin/HEAD -> origin/main" are reported by
// their left-hand name.
func (r *Repo) Branches(ctx context.Context) ([]string, error) {
	const errCtx = "listing branches"

	out, err := r.git(ctx, "branch", "-a", "--no-color")
	if err != nil {
		return nil, fmt.Errorf("%s: %w", errCtx, err)
	}

	return parseBranches(out), nil
}

// Checkout runs "git checkout" with args.
func (r *Repo) Checkout(ctx context.Context, args ...string) error {
	const errCtx = "checking out"

	if _, err := r.git(
		ctx, append([]string{"checkout"}, args...)...,
	); err != nil {
		return fmt.Errorf("%s: %w", errCtx, err)
	}

	return nil
}

// Pull pulls branch from the remote into the current
// branch.
func (r *Repo) Pull(ctx context.Context, branch string) error {
	const errCtx = "pulling branch"

	if _, err := r.git(
		ctx, "pull", r.Remote(), branch,
	); err != nil {
		return fmt.Errorf("%s %s: %w", errCtx, branch, err)
	}

	return nil
}

// Merge runs "git merge" with args. A conflict surfaces
// as an error.
func (r *Repo) Merge(ctx context.Context, args ...string) error {
	const errCtx = "merging"

	if _, err := r.git(
		ctx, append([]string{"merge"}, args...)...,
	); err != nil {
		return fmt.Errorf("%s: %w", errCtx, err)
	}

	return nil
}

// DiffSummary returns the names of the files reported by
// "git diff --name-only" with args (e.g. "--cached").
func (r *Repo) DiffSummary(
	ctx context.Context,
	args ...string,
) ([]string, error) {
	const errCtx = "summarising diff"

	out, err := r.git(
		ctx,
		append([]string{"diff", "--name-only"}, args...)...,
	)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", errCtx, err)
	}

	return splitLines(out), nil
}

// Add stages path.
func (r *Repo) Add(ctx context.Context, path string) error {
	const errCtx = "staging"

	if _, err := r.git(ctx, "add", path); err != nil {
		return fmt.Errorf("%s %s: %w", errCtx, path, err)
	}

	return nil
}

// Commit records the index with message.
func (r *Repo) Commit(ctx context.Context, message string) error {
	const errCtx = "committing"

	if _, err := r.git(
		ctx, "commit", "-m", message,
	); err != nil {
		return fmt.Errorf("%s: %w", errCtx, err)
	}

	return nil
}

// Push runs "git push" with args.
func (r *Repo) Push(ctx context.Context, args ...string) error {
	const errCtx = "pushing"

	if _, err := r.git(
		ctx, append([]string{"push"}, args...)...,
	); err != nil {
		return fmt.Errorf("%s: %w", errCtx, err)
	}

	return nil
}

// CurrentBranch returns the checked out branch name.
func (r *Repo) CurrentBranch(ctx context.Context) (string, error) {
	const errCtx = "reading current branch"

	out, err := r.git(
		ctx, "rev-parse", "--abbrev-ref", "HEAD",
	)
	if err != nil {
		return "", fmt.Errorf("%s: %w", errCtx, err)
	}

	return strings.TrimSpace(out), nil
}

// LastCommitMessage returns the most recent commit
// message on the current branch.
func (r *Repo) LastCommitMessage(ctx context.Context) (string, error) {
	const errCtx = "reading last commit message"

	out, err := r.git(ctx, "log", "-1", "--pretty=%B")
	if err != nil {
		return "", fmt.Errorf("%s: %w", errCtx, err)
	}

	return out, nil
}

func (r *Repo) git(
	ctx context.Context,
	args ...string,
) (string, error) {
	return exec.Ex(ctx, r.Dir, "git", args...)
}

// parseBranches turns "git branch -a" output into bare
// branch names.
func parseBranches(out string) []string {
	var branches []string

	for _, line := range splitLines(out) {
		name := strings.TrimPrefix(line, "* ")
		name = strings.TrimSpace(name)

		if i := strings.Index(name, " -> "); i >= 0 {
			name = name[:i]
		}

		// Detached HEAD shows up as "(HEAD detached at ...)".
		if name == "" || strings.HasPrefix(name, "(") {
			continue
		}

		branches = append(branches, name)
	}

	return branches
}

// splitLines returns the non-blank lines of out.
func splitLines(out string) []string {
	var lines []string

	sc := bufio.NewScanner(strings.NewReader(out))
	for sc.Scan() {
		if line := strings.TrimRight(sc.Text(), " \t"); strings.TrimSpace(line) != "" {
			lines = append(lines, line)
		}
	}

	return lines
}
