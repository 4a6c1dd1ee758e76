package changelog_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/byte4ever/releaser/release"
	"github.com/byte4ever/releaser/release/changelog"
	"github.com/byte4ever/releaser/release/releasetest"
)

func newUpdater(
	tb testing.TB,
	vcs *releasetest.VCS,
) *changelog.Updater {
	tb.Helper()

	up, err := changelog.NewUpdater(&release.Context{
		VCS: vcs,
		Dir: tb.TempDir(),
	})
	require.NoError(tb, err)

	return up
}

func TestUpdater_Write_creates_file(t *testing.T) {
	t.Parallel()

	vcs := &releasetest.VCS{}
	up := newUpdater(t, vcs)

	content, err := up.Write(
		context.Background(),
		"1.0.0",
		[]release.Change{{Author: "alice", Title: "First"}},
	)

	require.NoError(t, err)
	assert.Equal(
		t,
		"# Changelog\n\n## 1.0.0\n\n- First by @alice\n\n",
		content,
	)

	onDisk, err := os.ReadFile(
		filepath.Join(up.Dir, changelog.DefaultPath),
	)
	require.NoError(t, err)
	assert.Equal(t, content, string(onDisk))

	assert.Equal(
		t,
		[]releasetest.Call{
			{Op: "add", Args: []string{"CHANGELOG.md"}},
		},
		vcs.Calls(),
	)
}

func TestUpdater_Write_keeps_old_content(t *testing.T) {
	t.Parallel()

	vcs := &releasetest.VCS{}
	up := newUpdater(t, vcs)
	up.Path = "docs/CHANGES.md"

	full := filepath.Join(up.Dir, up.Path)
	require.NoError(t, os.MkdirAll(filepath.Dir(full), 0o750))
	require.NoError(t, os.WriteFile(
		full,
		[]byte("# Changelog\n\n## 0.9.0\n\n- old\n"),
		0o600,
	))

	content, err := up.Write(context.Background(), "1.0.0", nil)

	require.NoError(t, err)
	assert.Equal(
		t,
		"# Changelog\n\n## 1.0.0\n\n_No changes._\n\n"+
			"## 0.9.0\n\n- old\n",
		content,
	)
	assert.Equal(
		t, []string{"docs/CHANGES.md"}, vcs.Calls()[0].Args,
	)
}

func TestUpdater_Write_add_error(t *testing.T) {
	t.Parallel()

	errAdd := errors.New("add failed")
	vcs := &releasetest.VCS{
		Errs: map[string]error{"add": errAdd},
	}
	up := newUpdater(t, vcs)

	_, err := up.Write(context.Background(), "1.0.0", nil)

	assert.ErrorIs(t, err, errAdd)
}

func TestUpdater_CommitAndPush_nothing_staged(t *testing.T) {
	t.Parallel()

	vcs := &releasetest.VCS{}
	up := newUpdater(t, vcs)

	committed, err := up.CommitAndPush(
		context.Background(), "1.0.0", "next-release/1.0.0",
	)

	require.NoError(t, err)
	assert.False(t, committed)
	assert.Equal(t, []string{"diff"}, vcs.Ops())
	assert.Equal(t, []string{"--cached"}, vcs.Calls()[0].Args)
}

func TestUpdater_CommitAndPush_staged(t *testing.T) {
	t.Parallel()

	vcs := &releasetest.VCS{Staged: []string{"CHANGELOG.md"}}
	up := newUpdater(t, vcs)

	committed, err := up.CommitAndPush(
		context.Background(), "1.0.0", "next-release/1.0.0",
	)

	require.NoError(t, err)
	assert.True(t, committed)

	calls := vcs.Calls()
	require.Len(t, calls, 4)
	assert.Equal(t, "diff --cached", calls[0].String())
	assert.Equal(t, "add .", calls[1].String())
	assert.Equal(t, "commit 🎉 Release 1.0.0", calls[2].String())
	assert.Equal(
		t, "push -u origin next-release/1.0.0", calls[3].String(),
	)
}

func TestUpdater_CommitAndPush_push_error(t *testing.T) {
	t.Parallel()

	errPush := errors.New("rejected")
	vcs := &releasetest.VCS{
		Staged: []string{"CHANGELOG.md"},
		Errs:   map[string]error{"push": errPush},
	}
	up := newUpdater(t, vcs)

	committed, err := up.CommitAndPush(
		context.Background(), "1.0.0", "next-release/1.0.0",
	)

	assert.False(t, committed)
	assert.ErrorIs(t, err, errPush)
}
