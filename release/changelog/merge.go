package changelog

import (
	"slices"
	"strings"
)

// Heading is the top-level title of the changelog file.
const Heading = "# Changelog"

// Merge places section, rendered for version, under the
// changelog heading and above the previous content. A
// leading heading in old is not repeated. A leading
// section of old that was rendered for the same version is
// replaced rather than stacked, so merging the same
// section twice yields the same text. Sections of other
// versions are always kept.
func Merge(old string, section string, version string) string {
	body := strings.TrimLeft(old, "\n")

	if rest, ok := strings.CutPrefix(body, Heading+"\n"); ok {
		body = strings.TrimLeft(rest, "\n")
	} else if body == Heading {
		body = ""
	}

	body = dropSection(body, section, version)

	return Heading + "\n\n" + section + "\n\n" + body
}

// dropSection removes the leading section of body when it
// matches section line for line up to and including the
// first line carrying version. The removed part ends
// before the next line that starts a section of any
// version, or before the next heading that is not nested
// under the section's own heading. Only a section with
// nothing after it is dropped to the end of body.
func dropSection(body string, section string, version string) string {
	if version == "" || body == "" {
		return body
	}

	want := strings.Split(section, "\n")

	key := slices.IndexFunc(want, func(l string) bool {
		return strings.Contains(l, version)
	})
	if key < 0 {
		return body
	}

	lines := strings.Split(body, "\n")
	if len(lines) <= key {
		return body
	}

	for i := 0; i <= key; i++ {
		if trimLine(lines[i]) != trimLine(want[i]) {
			return body
		}
	}

	first := trimLine(want[0])
	starts := sectionStart(first, version)
	level := headingLevel(first)

	for i := key + 1; i < len(lines); i++ {
		line := trimLine(lines[i])

		if starts(line) || endsSection(line, level) {
			return strings.Join(lines[i:], "\n")
		}
	}

	return ""
}

// sectionStart returns a matcher for the first line of a
// section of any version, derived from first as rendered
// for version. When first does not depend on the version,
// every section starts with the same line.
func sectionStart(first string, version string) func(string) bool {
	i := strings.Index(first, version)
	if i < 0 {
		return func(line string) bool {
			return line == first
		}
	}

	prefix, suffix := first[:i], first[i+len(version):]

	return func(line string) bool {
		if len(line) <= len(prefix)+len(suffix) ||
			!strings.HasPrefix(line, prefix) ||
			!strings.HasSuffix(line, suffix) {
			return false
		}

		mid := line[len(prefix) : len(line)-len(suffix)]

		return !strings.ContainsAny(mid, " \t")
	}
}

// endsSection reports whether line is a heading that
// closes a section opened by a heading of level. Any
// heading closes a section that does not start with one.
func endsSection(line string, level int) bool {
	n := headingLevel(line)

	return n > 0 && (level == 0 || n <= level)
}

// headingLevel returns the number of leading '#' of a
// markdown heading, or 0 when line is not one.
func headingLevel(line string) int {
	n := 0
	for n < len(line) && line[n] == '#' {
		n++
	}

	if n == 0 || n >= len(line) || line[n] != ' ' {
		return 0
	}

	return n
}

func trimLine(s string) string {
	return strings.TrimRight(s, " \t\r")
}
