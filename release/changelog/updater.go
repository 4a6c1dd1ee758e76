package changelog

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/byte4ever/releaser/release"
	"github.com/byte4ever/releaser/release/commitmsg"
)

// Updater regenerates the changelog file and commits it
// when its content changed.
type Updater struct {
	// VCS stages, commits and pushes the file.
	VCS release.VCS
	// Renderer produces the new section.
	Renderer *Renderer
	// Dir is the repository root. Empty means the
	// working directory.
	Dir string
	// Path is the changelog path relative to Dir.
	// Empty means DefaultPath.
	Path string
}

// NewUpdater builds an Updater for the run described by
// rc.
func NewUpdater(rc *release.Context) (*Updater, error) {
	const errCtx = "creating changelog updater"

	rd, err := NewRenderer(rc.Config.User.Changelog)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", errCtx, err)
	}

	return &Updater{
		VCS:      rc.VCS,
		Renderer: rd,
		Dir:      rc.Dir,
		Path:     rc.Config.User.Changelog.Path,
	}, nil
}

func (u *Updater) path() string {
	if u.Path == "" {
		return DefaultPath
	}

	return u.Path
}

// Write renders the section of version, merges it into
// the changelog file, overwrites the file and stages it.
// The file is written even when the content did not
// change. It returns the full new content.
func (u *Updater) Write(
	ctx context.Context,
	version string,
	changes []release.Change,
) (string, error) {
	const errCtx = "updating changelog"

	full := filepath.Join(u.Dir, u.path())

	//nolint:gosec // path comes from configuration
	old, err := os.ReadFile(full)
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return "", fmt.Errorf("%s: read: %w", errCtx, err)
	}

	content := Merge(
		string(old),
		u.Renderer.Section(version, changes),
		version,
	)

	slog.Info("updating changelog", "path", u.path())

	//nolint:gosec // changelog is a tracked text file
	if err := os.WriteFile(
		full, []byte(content), 0o644,
	); err != nil {
		return "", fmt.Errorf("%s: write: %w", errCtx, err)
	}

	if err := u.VCS.Add(ctx, u.path()); err != nil {
		return "", fmt.Errorf("%s: %w", errCtx, err)
	}

	return content, nil
}

// CommitAndPush commits and pushes branch when the index
// differs from HEAD. It reports whether a commit was made.
// An empty staged diff leaves the repository and the
// remote untouched.
func (u *Updater) CommitAndPush(
	ctx context.Context,
	version string,
	branch string,
) (bool, error) {
	const errCtx = "committing changelog"

	staged, err := u.VCS.DiffSummary(ctx, "--cached")
	if err != nil {
		return false, fmt.Errorf("%s: %w", errCtx, err)
	}

	if len(staged) == 0 {
		slog.Info("changelog unchanged, nothing to commit")

		return false, nil
	}

	if err := u.VCS.Add(ctx, "."); err != nil {
		return false, fmt.Errorf("%s: %w", errCtx, err)
	}

	if err := u.VCS.Commit(
		ctx, commitmsg.ReleaseTitle(version),
	); err != nil {
		return false, fmt.Errorf("%s: %w", errCtx, err)
	}

	if err := u.VCS.Push(
		ctx, "-u", u.VCS.Remote(), branch,
	); err != nil {
		return false, fmt.Errorf("%s: %w", errCtx, err)
	}

	slog.Info(
		"committed and pushed changelog",
		"branch", branch,
		"files", staged,
	)

	return true, nil
}
