package exec

import (
	"context"
	"fmt"
	"log/slog"
	"os/exec"
	"strings"
)

// Func runs the named command and returns its combined
// output. It is the execution capability handed to
// hooks.
type Func func(
	ctx context.Context,
	name string,
	arg ...string,
) (string, error)

// Ex executes the named command in the given directory and
// returns combined stdout+stderr output. Pass empty dir to
// use the current working directory.
func Ex(
	ctx context.Context,
	dir string,
	name string,
	arg ...string,
) (string, error) {
	const errCtx = "executing command"

	slog.Info(
		"executing",
		"cmd", name,
		"args", strings.Join(arg, " "),
	)

	cmd := exec.CommandContext(ctx, name, arg...)
	if dir != "" {
		cmd.Dir = dir
	}

	by, err := cmd.CombinedOutput()

	slog.Debug("output", "result", string(by))

	if err != nil {
		return string(by), fmt.Errorf(
			"%s: %s %s: %w: %s",
			errCtx, name, strings.Join(arg, " "), err,
			strings.TrimSpace(string(by)),
		)
	}

	return string(by), nil
}

// In returns a Func bound to dir.
func In(dir string) Func {
	return func(
		ctx context.Context,
		name string,
		arg ...string,
	) (string, error) {
		return Ex(ctx, dir, name, arg...)
	}
}
