package commitmsg

import (
	"fmt"
	"strings"
)

const releasePrefix = "🎉 Release "

// ContributorsHeading opens the thank-you block of a
// release description.
const ContributorsHeading = "# :heart: Thanks to all the people who contributed! :heart:"

// ReleaseTitle is the commit message and pull request
// title for version.
func ReleaseTitle(version string) string {
	return releasePrefix + version
}

// ExtractVersion returns the version of a release commit
// message, or false when msg is not one. A trailing pull
// request reference as added by squash merges, e.g.
// " (#12)", is ignored.
func ExtractVersion(msg string) (string, bool) {
	first, _, _ := strings.Cut(strings.TrimSpace(msg), "\n")

	version, ok := strings.CutPrefix(first, releasePrefix)
	if !ok {
		return "", false
	}

	if i := strings.Index(version, " (#"); i >= 0 {
		version = version[:i]
	}

	version = strings.TrimSpace(version)
	if version == "" {
		return "", false
	}

	return version, true
}

// Merge is the message of the commit merging from into
// into.
func Merge(from string, into string) string {
	return fmt.Sprintf("Merge branch '%s' into '%s'", from, into)
}

// Contributors renders the thank-you block with one
// @mention per author, in order and without removing
// duplicates.
func Contributors(authors []string) string {
	var sb strings.Builder

	sb.WriteString(ContributorsHeading)
	sb.WriteString("\n\n")

	for i, a := range authors {
		if i > 0 {
			sb.WriteString(", ")
		}

		sb.WriteByte('@')
		sb.WriteString(a)
	}

	return sb.String()
}

// PullRequestComment is posted on every pull request
// included in a release.
func PullRequestComment(version string, releaseLink string) string {
	return fmt.Sprintf(
		":tada: This PR is included in version %s :tada:\n\n"+
			"The release is now available [here](%s)\n\n"+
			"Thank you for your contribution. "+
			":heart::package::rocket:",
		version, releaseLink,
	)
}
