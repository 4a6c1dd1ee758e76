package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"

	"github.com/goccy/go-yaml"

	"github.com/byte4ever/releaser/release"
)

// DefaultPath is the configuration file looked up at the
// repository root.
const DefaultPath = ".release.yaml"

// File is the parsed configuration file.
type File struct {
	CI                 CI        `yaml:"ci"`
	Branches           Branches  `yaml:"branches"`
	ReleaseDescription Value     `yaml:"releaseDescription"`
	Changelog          Changelog `yaml:"changelog"`
	Hooks              Hooks     `yaml:"hooks"`
}

// CI holds the forge coordinates.
type CI struct {
	RepoOwner string `yaml:"repoOwner"`
	RepoName  string `yaml:"repoName"`
}

// Branches overrides the branch names.
type Branches struct {
	PullRequest Value `yaml:"pullRequest"`
	Release     Value `yaml:"release"`
}

// Value produces a string either from a template or from
// the trimmed output of a shell command. Template wins
// when both are set; neither means the built-in default.
type Value struct {
	Template string `yaml:"template"`
	Command  string `yaml:"command"`
}

// IsZero reports whether the value is unset.
func (v Value) IsZero() bool {
	return v.Template == "" && v.Command == ""
}

// Changelog configures the changelog file.
type Changelog struct {
	Path            string `yaml:"path"`
	SectionTemplate string `yaml:"sectionTemplate"`
	ChangeTemplate  string `yaml:"changeTemplate"`
}

// Command is a lifecycle hook made of shell commands.
type Command struct {
	// ProceedIf is a shell check run by gate hooks
	// before Run; a non-zero exit cancels the workflow.
	// It is ignored on after hooks.
	ProceedIf string `yaml:"proceedIf"`
	// Run is executed in order; the first failure is
	// fatal.
	Run []string `yaml:"run"`
}

// IsZero reports whether the hook is unset.
func (c Command) IsZero() bool {
	return c.ProceedIf == "" && len(c.Run) == 0
}

// Hooks are the lifecycle hooks of the workflows.
type Hooks struct {
	BeforePrepare Command `yaml:"beforePrepare"`
	AfterPrepare  Command `yaml:"afterPrepare"`
	BeforeRelease Command `yaml:"beforeRelease"`
	AfterRelease  Command `yaml:"afterRelease"`
}

// Load reads the configuration file at path. A missing
// file yields an empty configuration.
func Load(path string) (*File, error) {
	const errCtx = "loading config"

	//nolint:gosec // path comes from the command line
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return &File{}, nil
	}

	if err != nil {
		return nil, fmt.Errorf("%s: %w", errCtx, err)
	}

	f, err := Parse(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%s: %s: %w", errCtx, path, err)
	}

	return f, nil
}

// Parse decodes a configuration document from in. Unknown
// keys are rejected.
func Parse(in io.Reader) (*File, error) {
	const errCtx = "parsing config"

	var f File

	decoder := yaml.NewDecoder(in, yaml.DisallowUnknownField())

	err := decoder.Decode(&f)
	if err == io.EOF {
		return &f, nil
	}

	if err != nil {
		return nil, fmt.Errorf("%s: %w", errCtx, err)
	}

	return &f, nil
}

// Config converts the file into the run configuration.
// Templates are compiled here so syntax errors surface
// before the workflow starts.
func (f *File) Config() (release.Config, error) {
	const errCtx = "building config"

	hooks, err := f.hooks()
	if err != nil {
		return release.Config{}, fmt.Errorf("%s: %w", errCtx, err)
	}

	return release.Config{
		CI: release.CI{
			RepoOwner: f.CI.RepoOwner,
			RepoName:  f.CI.RepoName,
		},
		User: release.User{
			Hooks: hooks,
			Changelog: release.ChangelogOptions{
				Path:            f.Changelog.Path,
				SectionTemplate: f.Changelog.SectionTemplate,
				ChangeTemplate:  f.Changelog.ChangeTemplate,
			},
		},
	}, nil
}
