package commitmsg_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/byte4ever/releaser/release/commitmsg"
)

func TestReleaseTitle(t *testing.T) {
	t.Parallel()

	assert.Equal(
		t, "🎉 Release 1.2.0", commitmsg.ReleaseTitle("1.2.0"),
	)
}

func TestExtractVersion(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		msg    string
		want   string
		wantOK bool
	}{
		{
			name:   "release commit",
			msg:    "🎉 Release 1.2.0\n",
			want:   "1.2.0",
			wantOK: true,
		},
		{
			name:   "release commit with body",
			msg:    "🎉 Release 2.0.0-rc.1\n\nbody\n",
			want:   "2.0.0-rc.1",
			wantOK: true,
		},
		{
			name:   "squash merge suffix",
			msg:    "🎉 Release 1.3.0 (#57)",
			want:   "1.3.0",
			wantOK: true,
		},
		{
			name: "other commit",
			msg:  "fix: typo",
		},
		{
			name: "prefix without version",
			msg:  "🎉 Release ",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got, ok := commitmsg.ExtractVersion(tt.msg)
			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestRoundTrip(t *testing.T) {
	t.Parallel()

	got, ok := commitmsg.ExtractVersion(
		commitmsg.ReleaseTitle("3.4.5"),
	)

	assert.True(t, ok)
	assert.Equal(t, "3.4.5", got)
}

func TestMerge(t *testing.T) {
	t.Parallel()

	assert.Equal(
		t,
		"Merge branch 'origin/main' into 'next-release/1.0.0'",
		commitmsg.Merge("origin/main", "next-release/1.0.0"),
	)
}

func TestContributors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		authors []string
		want    string
	}{
		{
			name:    "keeps order and duplicates",
			authors: []string{"alice", "bob", "alice"},
			want: commitmsg.ContributorsHeading +
				"\n\n@alice, @bob, @alice",
		},
		{
			name:    "single",
			authors: []string{"alice"},
			want:    commitmsg.ContributorsHeading + "\n\n@alice",
		},
		{
			name:    "none",
			authors: nil,
			want:    commitmsg.ContributorsHeading + "\n\n",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			assert.Equal(
				t, tt.want, commitmsg.Contributors(tt.authors),
			)
		})
	}
}

func TestPullRequestComment(t *testing.T) {
	t.Parallel()

	got := commitmsg.PullRequestComment(
		"2.0.0", "https://example.com/r/2.0.0",
	)

	assert.Contains(t, got, "version 2.0.0")
	assert.Contains(t, got, "(https://example.com/r/2.0.0)")
}
