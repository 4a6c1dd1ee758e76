package config

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/valyala/fasttemplate"

	"github.com/byte4ever/releaser/release/hook"
)

// template is a compiled string with {{version}}
// placeholders.
type template struct {
	t *fasttemplate.Template
}

func compile(s string) (template, error) {
	t, err := fasttemplate.NewTemplate(s, "{{", "}}")
	if err != nil {
		return template{}, fmt.Errorf("template %q: %w", s, err)
	}

	return template{t: t}, nil
}

func (t template) expand(version string) string {
	return t.t.ExecuteStringStd(map[string]any{
		"version": version,
	})
}

// sh runs script through the hook context so it is
// logged like any other hook command.
func sh(
	ctx context.Context,
	hc *hook.Context,
	script template,
) (string, error) {
	return hc.Exec(ctx, "sh", "-c", script.expand(hc.NextVersion))
}

func (f *File) hooks() (hook.Hooks, error) {
	var (
		hs  hook.Hooks
		err error
	)

	if hs.GetPullRequestBranch, err = valueHook(
		f.Branches.PullRequest,
	); err != nil {
		return hook.Hooks{}, fmt.Errorf("branches.pullRequest: %w", err)
	}

	if hs.GetReleaseBranch, err = valueHook(
		f.Branches.Release,
	); err != nil {
		return hook.Hooks{}, fmt.Errorf("branches.release: %w", err)
	}

	if hs.GetReleaseDescription, err = valueHook(
		f.ReleaseDescription,
	); err != nil {
		return hook.Hooks{}, fmt.Errorf("releaseDescription: %w", err)
	}

	if hs.BeforePrepare, err = gateHook(
		f.Hooks.BeforePrepare,
	); err != nil {
		return hook.Hooks{}, fmt.Errorf("hooks.beforePrepare: %w", err)
	}

	if hs.AfterPrepare, err = runHook(
		f.Hooks.AfterPrepare,
	); err != nil {
		return hook.Hooks{}, fmt.Errorf("hooks.afterPrepare: %w", err)
	}

	if hs.BeforeRelease, err = gateHook(
		f.Hooks.BeforeRelease,
	); err != nil {
		return hook.Hooks{}, fmt.Errorf("hooks.beforeRelease: %w", err)
	}

	if hs.AfterRelease, err = runHook(
		f.Hooks.AfterRelease,
	); err != nil {
		return hook.Hooks{}, fmt.Errorf("hooks.afterRelease: %w", err)
	}

	return hs, nil
}

func valueHook(v Value) (hook.ValueFunc, error) {
	if v.IsZero() {
		return nil, nil
	}

	if v.Template != "" {
		tpl, err := compile(v.Template)
		if err != nil {
			return nil, err
		}

		return func(
			_ context.Context,
			hc *hook.Context,
		) (string, error) {
			return tpl.expand(hc.NextVersion), nil
		}, nil
	}

	cmd, err := compile(v.Command)
	if err != nil {
		return nil, err
	}

	return func(
		ctx context.Context,
		hc *hook.Context,
	) (string, error) {
		out, err := sh(ctx, hc, cmd)
		if err != nil {
			return "", err
		}

		return strings.TrimSpace(out), nil
	}, nil
}

func compileAll(scripts []string) ([]template, error) {
	out := make([]template, 0, len(scripts))

	for _, s := range scripts {
		tpl, err := compile(s)
		if err != nil {
			return nil, err
		}

		out = append(out, tpl)
	}

	return out, nil
}

func runAll(
	ctx context.Context,
	hc *hook.Context,
	scripts []template,
) error {
	for _, s := range scripts {
		if _, err := sh(ctx, hc, s); err != nil {
			return err
		}
	}

	return nil
}

func runHook(c Command) (hook.Func, error) {
	if len(c.Run) == 0 {
		return nil, nil
	}

	scripts, err := compileAll(c.Run)
	if err != nil {
		return nil, err
	}

	return func(ctx context.Context, hc *hook.Context) error {
		return runAll(ctx, hc, scripts)
	}, nil
}

func gateHook(c Command) (hook.GateFunc, error) {
	if c.IsZero() {
		return nil, nil
	}

	scripts, err := compileAll(c.Run)
	if err != nil {
		return nil, err
	}

	var check *template

	if c.ProceedIf != "" {
		tpl, err := compile(c.ProceedIf)
		if err != nil {
			return nil, err
		}

		check = &tpl
	}

	return func(ctx context.Context, hc *hook.Context) (bool, error) {
		if check != nil {
			if _, err := sh(ctx, hc, *check); err != nil {
				slog.Info("proceedIf check failed", "error", err)

				return false, nil
			}
		}

		if err := runAll(ctx, hc, scripts); err != nil {
			return false, err
		}

		return true, nil
	}, nil
}
