package publish_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/byte4ever/releaser/release"
	"github.com/byte4ever/releaser/release/changelog"
	"github.com/byte4ever/releaser/release/forge"
	"github.com/byte4ever/releaser/release/hook"
	"github.com/byte4ever/releaser/release/publish"
	"github.com/byte4ever/releaser/release/releasetest"
)

func newContext(
	fg forge.Forge,
	changes []release.Change,
	hooks hook.Hooks,
) *release.Context {
	return &release.Context{
		NextVersion: "2.0.0",
		Changes:     changes,
		Config: release.Config{
			CI: release.CI{RepoOwner: "org", RepoName: "repo"},
			User: release.User{
				Hooks: hooks,
			},
		},
		Forge: fg,
	}
}

func TestRun_end_to_end(t *testing.T) {
	t.Parallel()

	fg := &releasetest.Forge{
		ReleaseLink: "https://forge.test/org/repo/releases/2.0.0",
	}
	rc := newContext(fg, []release.Change{
		{Author: "alice", PullRequestNumber: releasetest.PR(42)},
	}, hook.Hooks{})

	res, err := publish.Run(context.Background(), rc)
	require.NoError(t, err)

	assert.Equal(t, release.Done, res.State)
	assert.Equal(t, []int{42}, res.Notified)

	rels := fg.Releases()
	require.Len(t, rels, 1)
	assert.Equal(t, "2.0.0", rels[0].Tag)
	assert.Equal(t, "2.0.0", rels[0].Name)
	assert.Equal(t, "org", rels[0].Owner)
	assert.Equal(t, "repo", rels[0].Repo)

	comments := fg.Comments()
	require.Len(t, comments, 1)
	assert.Equal(t, 42, comments[0].PullRequestNumber)
	assert.Contains(t, comments[0].Body, "2.0.0")
	assert.Contains(t, comments[0].Body, res.ReleaseLink)
}

func TestRun_default_description(t *testing.T) {
	t.Parallel()

	fg := &releasetest.Forge{}
	rc := newContext(fg, []release.Change{
		{Author: "alice", PullRequestNumber: releasetest.PR(1), Title: "A"},
		{Author: "bob", Title: "B"},
		{Author: "alice", PullRequestNumber: releasetest.PR(3), Title: "C"},
	}, hook.Hooks{})

	_, err := publish.Run(context.Background(), rc)
	require.NoError(t, err)

	rels := fg.Releases()
	require.Len(t, rels, 1)
	assert.Equal(
		t,
		"# :heart: Thanks to all the people who contributed! :heart:"+
			"\n\n@alice, @bob, @alice\n\n"+
			"## 2.0.0\n\n"+
			"- A (#1) by @alice\n"+
			"- B by @bob\n"+
			"- C (#3) by @alice",
		rels[0].Description,
	)
}

func TestDescription_custom_templates(t *testing.T) {
	t.Parallel()

	rd, err := changelog.NewRenderer(release.ChangelogOptions{
		SectionTemplate: "### v{{version}}\n{{changes}}",
		ChangeTemplate:  "* {{title}} ({{author}})",
	})
	require.NoError(t, err)

	got := publish.Description(rd, "1.0.0", []release.Change{
		{Author: "carol", Title: "Z"},
	})

	assert.Equal(
		t,
		"# :heart: Thanks to all the people who contributed! :heart:"+
			"\n\n@carol\n\n### v1.0.0\n* Z (carol)",
		got,
	)
}

func TestRun_skips_changes_without_pull_request(t *testing.T) {
	t.Parallel()

	fg := &releasetest.Forge{}
	rc := newContext(fg, []release.Change{
		{Author: "alice", PullRequestNumber: releasetest.PR(5)},
		{Author: "bob"},
		{Author: "carol", PullRequestNumber: releasetest.PR(9)},
	}, hook.Hooks{})

	res, err := publish.Run(context.Background(), rc)
	require.NoError(t, err)

	assert.Equal(t, []int{5, 9}, res.Notified)

	comments := fg.Comments()
	require.Len(t, comments, 2)
	assert.Equal(t, 5, comments[0].PullRequestNumber)
	assert.Equal(t, 9, comments[1].PullRequestNumber)
}

func TestRun_comment_failure_stops_loop(t *testing.T) {
	t.Parallel()

	errComment := errors.New("forbidden")
	fg := &releasetest.Forge{
		CommentErrs: map[int]error{2: errComment},
	}

	afterCalled := false
	rc := newContext(fg, []release.Change{
		{Author: "a", PullRequestNumber: releasetest.PR(1)},
		{Author: "b", PullRequestNumber: releasetest.PR(2)},
		{Author: "c", PullRequestNumber: releasetest.PR(3)},
	}, hook.Hooks{
		AfterRelease: func(context.Context, *hook.Context) error {
			afterCalled = true

			return nil
		},
	})

	res, err := publish.Run(context.Background(), rc)

	require.ErrorIs(t, err, errComment)
	assert.ErrorContains(t, err, "pull request #2")
	assert.Equal(t, release.NotifyLoop, res.State)
	assert.Equal(t, []int{1}, res.Notified)
	assert.Len(t, fg.Comments(), 2)
	assert.False(t, afterCalled)
}

func TestRun_cancelled_by_gate(t *testing.T) {
	t.Parallel()

	fg := &releasetest.Forge{}
	rc := newContext(fg, []release.Change{
		{Author: "alice", PullRequestNumber: releasetest.PR(42)},
	}, hook.Hooks{
		BeforeRelease: func(
			_ context.Context, hc *hook.Context,
		) (bool, error) {
			return hc.NextVersion != "2.0.0", nil
		},
	})

	res, err := publish.Run(context.Background(), rc)
	require.NoError(t, err)

	assert.Equal(t, release.Cancelled, res.State)
	assert.Empty(t, fg.Releases())
	assert.Empty(t, fg.Comments())
}

func TestRun_missing_repo(t *testing.T) {
	t.Parallel()

	fg := &releasetest.Forge{}
	rc := newContext(fg, []release.Change{
		{Author: "alice", PullRequestNumber: releasetest.PR(42)},
	}, hook.Hooks{})
	rc.Config.CI.RepoOwner = ""

	res, err := publish.Run(context.Background(), rc)

	require.ErrorIs(t, err, release.ErrMissingRepo)
	assert.Equal(t, release.ReleaseCreate, res.State)
	assert.Empty(t, fg.Releases())
	assert.Empty(t, fg.Comments())
}

func TestRun_release_failure(t *testing.T) {
	t.Parallel()

	errForge := errors.New("tag exists")
	fg := &releasetest.Forge{ReleaseErr: errForge}
	rc := newContext(fg, []release.Change{
		{Author: "alice", PullRequestNumber: releasetest.PR(42)},
	}, hook.Hooks{})

	res, err := publish.Run(context.Background(), rc)

	require.ErrorIs(t, err, errForge)
	assert.Equal(t, release.ReleaseCreate, res.State)
	assert.Empty(t, fg.Comments())
}

func TestRun_hooks(t *testing.T) {
	t.Parallel()

	fg := &releasetest.Forge{}

	var seen []string
	rc := newContext(fg, nil, hook.Hooks{
		BeforeRelease: func(
			context.Context, *hook.Context,
		) (bool, error) {
			seen = append(seen, "beforeRelease")

			return true, nil
		},
		GetReleaseDescription: func(
			_ context.Context, hc *hook.Context,
		) (string, error) {
			seen = append(seen, "getReleaseDescription")

			return "notes for " + hc.NextVersion, nil
		},
		AfterRelease: func(context.Context, *hook.Context) error {
			seen = append(seen, "afterRelease")

			return nil
		},
		// Prepare-only hooks are never invoked here.
		BeforePrepare: func(
			context.Context, *hook.Context,
		) (bool, error) {
			seen = append(seen, "beforePrepare")

			return false, nil
		},
	})

	res, err := publish.Run(context.Background(), rc)
	require.NoError(t, err)

	assert.Equal(t, release.Done, res.State)
	assert.Empty(t, res.Notified)
	assert.Equal(
		t,
		[]string{"beforeRelease", "getReleaseDescription", "afterRelease"},
		seen,
	)

	rels := fg.Releases()
	require.Len(t, rels, 1)
	assert.Equal(t, "notes for 2.0.0", rels[0].Description)
}

func TestRun_after_hook_error(t *testing.T) {
	t.Parallel()

	errHook := errors.New("slack down")
	fg := &releasetest.Forge{}
	rc := newContext(fg, nil, hook.Hooks{
		AfterRelease: func(context.Context, *hook.Context) error {
			return errHook
		},
	})

	res, err := publish.Run(context.Background(), rc)

	require.ErrorIs(t, err, errHook)
	assert.Equal(t, release.HookAfter, res.State)
	assert.Len(t, fg.Releases(), 1)
}
