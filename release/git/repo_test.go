package git_test

import (
	"context"
	"os"
	oe "os/exec"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/byte4ever/releaser/release/git"
)

func TestParseBranches(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		out  string
		want []string
	}{
		{
			name: "local and remote",
			out: "* main\n" +
				"  next-release/1.2.0\n" +
				"  remotes/origin/main\n",
			want: []string{
				"main",
				"next-release/1.2.0",
				"remotes/origin/main",
			},
		},
		{
			name: "symbolic head",
			out: "* main\n" +
				"  remotes/origin/HEAD -> origin/main\n",
			want: []string{
				"main",
				"remotes/origin/HEAD",
			},
		},
		{
			name: "detached head skipped",
			out: "* (HEAD detached at 1a2b3c4)\n" +
				"  main\n",
			want: []string{"main"},
		},
		{
			name: "empty output",
			out:  "",
			want: nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got := git.ParseBranchesForTest(tt.out)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestRepo_Remote_default(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "origin", (&git.Repo{}).Remote())
	assert.Equal(
		t, "upstream", git.Open("", "upstream").Remote(),
	)
}

func TestRepo_Branches(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	_, work := initClonedRepo(t)

	rp := git.Open(work, "origin")

	branches, err := rp.Branches(ctx)
	require.NoError(t, err)
	assert.Contains(t, branches, "main")
	assert.Contains(t, branches, "remotes/origin/main")
}

func TestRepo_Checkout_create_and_current(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	_, work := initClonedRepo(t)

	rp := git.Open(work, "origin")

	require.NoError(
		t,
		rp.Checkout(ctx, "-B", "next-release/1.0.0", "--track"),
	)

	cur, err := rp.CurrentBranch(ctx)
	require.NoError(t, err)
	assert.Equal(t, "next-release/1.0.0", cur)
}

func TestRepo_LastCommitMessage(t *testing.T) {
	t.Parallel()

	_, work := initClonedRepo(t)

	msg, err := git.Open(work, "").
		LastCommitMessage(context.Background())

	require.NoError(t, err)
	assert.Contains(t, msg, "initial")
}

func TestRepo_DiffSummary_cached(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	_, work := initClonedRepo(t)

	rp := git.Open(work, "origin")

	files, err := rp.DiffSummary(ctx, "--cached")
	require.NoError(t, err)
	assert.Empty(t, files)

	fp := filepath.Join(work, "CHANGELOG.md")
	require.NoError(
		t, os.WriteFile(fp, []byte("# Changelog\n"), 0o600),
	)

	// Unstaged files are not part of the cached diff.
	files, err = rp.DiffSummary(ctx, "--cached")
	require.NoError(t, err)
	assert.Empty(t, files)

	require.NoError(t, rp.Add(ctx, "CHANGELOG.md"))

	files, err = rp.DiffSummary(ctx, "--cached")
	require.NoError(t, err)
	assert.Equal(t, []string{"CHANGELOG.md"}, files)
}

func TestRepo_Commit_and_Push(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	remote, work := initClonedRepo(t)

	rp := git.Open(work, "origin")

	require.NoError(
		t, rp.Checkout(ctx, "-B", "release-branch", "--track"),
	)

	fp := filepath.Join(work, "file.txt")
	require.NoError(t, os.WriteFile(fp, []byte("v1\n"), 0o600))
	require.NoError(t, rp.Add(ctx, "."))
	require.NoError(t, rp.Commit(ctx, "add file"))
	require.NoError(
		t, rp.Push(ctx, "-u", "origin", "release-branch"),
	)

	out := gitOut(
		t, remote, "log", "--format=%s", "release-branch",
	)
	assert.Contains(t, out, "add file")
}

func TestRepo_Pull_missing_branch_fails(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	_, work := initClonedRepo(t)

	rp := git.Open(work, "origin")

	err := rp.Pull(ctx, "does-not-exist")
	assert.ErrorContains(t, err, "does-not-exist")
}

func TestRepo_Merge_conflict_fails(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	_, work := initClonedRepo(t)

	rp := git.Open(work, "origin")
	fp := filepath.Join(work, "conflict.txt")

	require.NoError(t, rp.Checkout(ctx, "-b", "left"))
	require.NoError(t, os.WriteFile(fp, []byte("left\n"), 0o600))
	require.NoError(t, rp.Add(ctx, "."))
	require.NoError(t, rp.Commit(ctx, "left"))

	require.NoError(t, rp.Checkout(ctx, "main"))
	require.NoError(t, os.WriteFile(fp, []byte("right\n"), 0o600))
	require.NoError(t, rp.Add(ctx, "."))
	require.NoError(t, rp.Commit(ctx, "right"))

	err := rp.Merge(ctx, "left", "-m", "merge left", "--no-edit")
	assert.ErrorContains(t, err, "merging")
}

// initClonedRepo creates a bare remote with one commit on
// main and a working clone of it. Git hooks are disabled
// to avoid interference from pre-commit hooks.
func initClonedRepo(tb testing.TB) (string, string) {
	tb.Helper()

	root := tb.TempDir()
	remote := filepath.Join(root, "remote.git")
	seed := filepath.Join(root, "seed")
	work := filepath.Join(root, "work")

	gitCmd(tb, root, "init", "--bare", "-b", "main", remote)
	gitCmd(tb, root, "init", "-b", "main", seed)
	configure(tb, seed)
	gitCmd(tb, seed, "commit", "--allow-empty", "-m", "initial")
	gitCmd(tb, seed, "push", remote, "main")

	gitCmd(tb, root, "clone", remote, work)
	configure(tb, work)

	return remote, work
}

func configure(tb testing.TB, dir string) {
	tb.Helper()

	cmds := [][]string{
		{"config", "user.email", "test@test.com"},
		{"config", "user.name", "Test"},
		{"config", "core.hooksPath", "/dev/null"},
		{"config", "commit.gpgsign", "false"},
	}

	for _, args := range cmds {
		gitCmd(tb, dir, args...)
	}
}

// gitCmd runs a git command in the given directory.
func gitCmd(tb testing.TB, dir string, args ...string) {
	tb.Helper()

	gitOut(tb, dir, args...)
}

func gitOut(tb testing.TB, dir string, args ...string) string {
	tb.Helper()

	//nolint:gosec // test helper
	cmd := oe.CommandContext(
		context.Background(), "git", args...,
	)
	cmd.Dir = dir

	out, err := cmd.CombinedOutput()
	if err != nil {
		tb.Fatalf(
			"git %s failed: %s: %v",
			strings.Join(args, " "), string(out), err,
		)
	}

	return string(out)
}
