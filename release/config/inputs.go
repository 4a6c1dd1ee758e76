package config

import (
	"errors"
	"fmt"
	"os"

	"github.com/Masterminds/semver/v3"
	json "github.com/goccy/go-json"

	"github.com/byte4ever/releaser/release"
)

var (
	// ErrInvalidVersion is returned for a next version
	// that is not a semantic version.
	ErrInvalidVersion = errors.New("invalid version")

	// ErrInvalidChange is returned for a change without
	// an author.
	ErrInvalidChange = errors.New("invalid change")
)

// CheckVersion returns v when it parses as a semantic
// version, with or without a leading "v".
func CheckVersion(v string) (string, error) {
	if _, err := semver.NewVersion(v); err != nil {
		return "", fmt.Errorf("%w %q: %w", ErrInvalidVersion, v, err)
	}

	return v, nil
}

// ParseChanges decodes a JSON array of changes.
func ParseChanges(data []byte) ([]release.Change, error) {
	const errCtx = "parsing changes"

	var changes []release.Change

	if err := json.Unmarshal(data, &changes); err != nil {
		return nil, fmt.Errorf("%s: %w", errCtx, err)
	}

	for i, c := range changes {
		if c.Author == "" {
			return nil, fmt.Errorf(
				"%s: %w: entry %d has no author",
				errCtx, ErrInvalidChange, i,
			)
		}

		if c.HasPullRequest() && *c.PullRequestNumber <= 0 {
			return nil, fmt.Errorf(
				"%s: %w: entry %d has pull request number %d",
				errCtx, ErrInvalidChange, i, *c.PullRequestNumber,
			)
		}
	}

	return changes, nil
}

// LoadChanges reads the changes file at path. An empty
// path means no changes.
func LoadChanges(path string) ([]release.Change, error) {
	const errCtx = "loading changes"

	if path == "" {
		return nil, nil
	}

	//nolint:gosec // path comes from the command line
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", errCtx, err)
	}

	return ParseChanges(data)
}
