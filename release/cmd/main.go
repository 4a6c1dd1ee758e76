// Command releaser runs one step of the release pipeline.
//
//	releaser [flags] prepare   open or refresh the release pull request
//	releaser [flags] release   publish the release and notify pull requests
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/byte4ever/releaser/release"
	"github.com/byte4ever/releaser/release/commitmsg"
	"github.com/byte4ever/releaser/release/config"
	"github.com/byte4ever/releaser/release/exec"
	"github.com/byte4ever/releaser/release/forge"
	"github.com/byte4ever/releaser/release/forge/bitbucket"
	"github.com/byte4ever/releaser/release/forge/github"
	"github.com/byte4ever/releaser/release/forge/gitlab"
	"github.com/byte4ever/releaser/release/git"
	"github.com/byte4ever/releaser/release/prepare"
	"github.com/byte4ever/releaser/release/publish"
)

func main() {
	if err := run(); err != nil {
		slog.Error("fatal", "error", err)
		os.Exit(1)
	}
}

//nolint:funlen // CLI flag setup is inherently long
func run() error {
	const errCtx = "running releaser"

	dir := flag.String(
		"dir", ".",
		"Repository root directory",
	)
	configPath := flag.String(
		"config", config.DefaultPath,
		"Configuration file, relative to -dir",
	)
	remote := flag.String(
		"remote", git.DefaultRemote,
		"Git remote to push to",
	)
	nextVersion := flag.String(
		"next_version", "",
		"Version to prepare or release; release infers "+
			"it from the last commit when empty",
	)
	changesPath := flag.String(
		"changes", "",
		"JSON file listing the changes of the release",
	)
	changelogPath := flag.String(
		"changelog", "",
		"Changelog file, overrides the configuration",
	)
	repoOwner := flag.String(
		"repo_owner", "",
		"Repository owner, overrides the configuration",
	)
	repoName := flag.String(
		"repo_name", "",
		"Repository name, overrides the configuration",
	)
	dryRun := flag.Bool(
		"dry_run", false,
		"Log forge requests instead of sending them",
	)
	verbose := flag.Bool(
		"verbose", false,
		"Log command output",
	)

	// Forge selection.
	gitServer := flag.String(
		"git_server", "github",
		"Forge: github, gitlab, or bitbucket",
	)

	// GitHub-specific flags.
	ghToken := flag.String(
		"github_access_token", "",
		"GitHub access token (default $GITHUB_TOKEN)",
	)
	ghEnterprise := flag.String(
		"github_enterprise_host", "",
		"GitHub Enterprise hostname",
	)

	// GitLab-specific flags.
	glHost := flag.String(
		"gitlab_host", "",
		"GitLab instance URL",
	)
	glToken := flag.String(
		"gitlab_access_token", "",
		"GitLab access token (default $GITLAB_TOKEN)",
	)

	// Bitbucket-specific flags.
	bbEndpoint := flag.String(
		"bitbucket_api_endpoint", "",
		"Bitbucket Server root URL",
	)
	bbUser := flag.String(
		"bitbucket_user", "",
		"Bitbucket API username",
	)
	bbPassword := flag.String(
		"bitbucket_password", "",
		"Bitbucket API password (default $BITBUCKET_PASSWORD)",
	)
	bbReleaseRef := flag.String(
		"bitbucket_release_ref", "",
		"Ref release tags are created from",
	)

	flag.Parse()

	setupLogging(*verbose)

	step := flag.Arg(0)
	if flag.NArg() != 1 || (step != "prepare" && step != "release") {
		flag.Usage()

		return fmt.Errorf(
			"%s: expected one step, prepare or release", errCtx,
		)
	}

	ctx, stop := signal.NotifyContext(
		context.Background(), os.Interrupt, syscall.SIGTERM,
	)
	defer stop()

	cfgFile := *configPath
	if !filepath.IsAbs(cfgFile) {
		cfgFile = filepath.Join(*dir, cfgFile)
	}

	file, err := config.Load(cfgFile)
	if err != nil {
		return fmt.Errorf("%s: %w", errCtx, err)
	}

	cfg, err := file.Config()
	if err != nil {
		return fmt.Errorf("%s: %w", errCtx, err)
	}

	if *repoOwner != "" {
		cfg.CI.RepoOwner = *repoOwner
	}

	if *repoName != "" {
		cfg.CI.RepoName = *repoName
	}

	if *changelogPath != "" {
		cfg.User.Changelog.Path = *changelogPath
	}

	repo := git.Open(*dir, *remote)

	version, err := resolveVersion(ctx, step, *nextVersion, repo)
	if err != nil {
		return fmt.Errorf("%s: %w", errCtx, err)
	}

	changes, err := config.LoadChanges(*changesPath)
	if err != nil {
		return fmt.Errorf("%s: %w", errCtx, err)
	}

	fg, err := newForge(
		*gitServer,
		*dryRun,
		forgeFlags{
			ghToken:      envOr(*ghToken, "GITHUB_TOKEN"),
			ghEnterprise: *ghEnterprise,
			glHost:       *glHost,
			glToken:      envOr(*glToken, "GITLAB_TOKEN"),
			bbEndpoint:   *bbEndpoint,
			bbUser:       *bbUser,
			bbPassword:   envOr(*bbPassword, "BITBUCKET_PASSWORD"),
			bbReleaseRef: *bbReleaseRef,
		},
	)
	if err != nil {
		return fmt.Errorf("%s: create forge: %w", errCtx, err)
	}

	rc := &release.Context{
		NextVersion: version,
		Changes:     changes,
		Config:      cfg,
		VCS:         repo,
		Forge:       fg,
		Exec:        exec.In(*dir),
		Dir:         *dir,
	}

	if step == "prepare" {
		res, err := prepare.Run(ctx, rc)
		if err != nil {
			return fmt.Errorf("%s: %w", errCtx, err)
		}

		printLink(res.State, res.PullRequestLink)

		return nil
	}

	res, err := publish.Run(ctx, rc)
	if err != nil {
		return fmt.Errorf("%s: %w", errCtx, err)
	}

	printLink(res.State, res.ReleaseLink)

	return nil
}

func setupLogging(verbose bool) {
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}

	slog.SetDefault(slog.New(slog.NewTextHandler(
		os.Stderr, &slog.HandlerOptions{Level: level},
	)))
}

// printLink writes the forge link to stdout so CI jobs
// can capture it.
func printLink(state release.State, link string) {
	if state == release.Done {
		fmt.Println(link) //nolint:forbidigo // CLI output
	}
}

func envOr(val string, key string) string {
	if val != "" {
		return val
	}

	return os.Getenv(key)
}

// resolveVersion validates the requested version. The
// release step falls back to the version of the release
// commit at HEAD, which is what merging the release pull
// request leaves behind.
func resolveVersion(
	ctx context.Context,
	step string,
	requested string,
	repo *git.Repo,
) (string, error) {
	const errCtx = "resolving version"

	if requested == "" && step == "release" {
		msg, err := repo.LastCommitMessage(ctx)
		if err != nil {
			return "", fmt.Errorf("%s: %w", errCtx, err)
		}

		v, ok := commitmsg.ExtractVersion(msg)
		if !ok {
			return "", fmt.Errorf(
				"%s: HEAD is not a release commit and "+
					"-next_version is empty", errCtx,
			)
		}

		slog.Info("inferred version from last commit", "version", v)

		requested = v
	}

	v, err := config.CheckVersion(requested)
	if err != nil {
		return "", fmt.Errorf("%s: %w", errCtx, err)
	}

	return v, nil
}

// forgeFlags bundles forge-specific flag values.
type forgeFlags struct {
	ghToken      string
	ghEnterprise string
	glHost       string
	glToken      string
	bbEndpoint   string
	bbUser       string
	bbPassword   string
	bbReleaseRef string
}

// newForge creates a forge.Forge based on the server
// name. Pattern: Factory -- selects platform
// implementation at runtime.
func newForge(
	server string,
	dryRun bool,
	ff forgeFlags,
) (forge.Forge, error) {
	const errCtx = "creating forge"

	if dryRun {
		return forge.DryRun{}, nil
	}

	switch server {
	case "github":
		p, err := github.NewProvider(github.Config{
			AccessToken:    ff.ghToken,
			EnterpriseHost: ff.ghEnterprise,
		})
		if err != nil {
			return nil, fmt.Errorf("%s: %w", errCtx, err)
		}

		return p, nil

	case "gitlab":
		p, err := gitlab.NewProvider(gitlab.Config{
			Host:        ff.glHost,
			AccessToken: ff.glToken,
		})
		if err != nil {
			return nil, fmt.Errorf("%s: %w", errCtx, err)
		}

		return p, nil

	case "bitbucket":
		p, err := bitbucket.NewProvider(bitbucket.Config{
			BaseURL:    ff.bbEndpoint,
			User:       ff.bbUser,
			Password:   ff.bbPassword,
			ReleaseRef: ff.bbReleaseRef,
		})
		if err != nil {
			return nil, fmt.Errorf("%s: %w", errCtx, err)
		}

		return p, nil

	default:
		return nil, fmt.Errorf(
			"%s: unknown server %q", errCtx, server,
		)
	}
}
