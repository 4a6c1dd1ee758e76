package changelog

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/valyala/fasttemplate"

	"github.com/byte4ever/releaser/release"
)

const (
	// DefaultPath is the changelog file at the
	// repository root.
	DefaultPath = "CHANGELOG.md"

	// DefaultSectionTemplate renders one version.
	DefaultSectionTemplate = "## {{version}}\n\n{{changes}}"

	// DefaultChangeTemplate renders one change line.
	DefaultChangeTemplate = "- {{title}}{{pr}} by @{{author}}"

	noChanges = "_No changes._"
	untitled  = "Untitled change"
)

// Renderer turns a version and its changes into a
// changelog section.
type Renderer struct {
	section *fasttemplate.Template
	change  *fasttemplate.Template
}

// NewRenderer compiles the templates of opts, falling
// back to the defaults for empty ones. Unknown
// placeholders are kept verbatim.
func NewRenderer(opts release.ChangelogOptions) (*Renderer, error) {
	const errCtx = "creating changelog renderer"

	sectionTpl := opts.SectionTemplate
	if sectionTpl == "" {
		sectionTpl = DefaultSectionTemplate
	}

	changeTpl := opts.ChangeTemplate
	if changeTpl == "" {
		changeTpl = DefaultChangeTemplate
	}

	section, err := fasttemplate.NewTemplate(
		sectionTpl, "{{", "}}",
	)
	if err != nil {
		return nil, fmt.Errorf(
			"%s: section template: %w", errCtx, err,
		)
	}

	change, err := fasttemplate.NewTemplate(
		changeTpl, "{{", "}}",
	)
	if err != nil {
		return nil, fmt.Errorf(
			"%s: change template: %w", errCtx, err,
		)
	}

	return &Renderer{section: section, change: change}, nil
}

// Section renders the changelog section of version.
func (r *Renderer) Section(
	version string,
	changes []release.Change,
) string {
	lines := make([]string, 0, len(changes))

	for _, c := range changes {
		lines = append(lines, r.line(c))
	}

	body := strings.Join(lines, "\n")
	if body == "" {
		body = noChanges
	}

	return r.section.ExecuteStringStd(map[string]any{
		"version": version,
		"changes": body,
	})
}

func (r *Renderer) line(c release.Change) string {
	title := c.Title
	if title == "" {
		title = untitled
	}

	pr, number := "", ""
	if c.HasPullRequest() {
		number = strconv.Itoa(*c.PullRequestNumber)
		pr = " (#" + number + ")"
	}

	return r.change.ExecuteStringStd(map[string]any{
		"title":  title,
		"author": c.Author,
		"pr":     pr,
		"number": number,
	})
}
