package hook

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/byte4ever/releaser/release/exec"
)

// Context is what hooks see of a release run: the next
// version and a command runner. Forge and repository
// handles are deliberately absent.
type Context struct {
	// NextVersion is the version being prepared or
	// released.
	NextVersion string

	exec exec.Func
}

// NewContext wraps run so every command is logged before
// it executes.
func NewContext(nextVersion string, run exec.Func) *Context {
	return &Context{
		NextVersion: nextVersion,
		exec:        run,
	}
}

// Exec logs and runs the named command.
func (c *Context) Exec(
	ctx context.Context,
	name string,
	arg ...string,
) (string, error) {
	slog.Info(
		"$ " + strings.TrimSpace(
			name+" "+strings.Join(arg, " "),
		),
	)

	return c.exec(ctx, name, arg...)
}

// Func is a hook whose result is ignored.
type Func func(ctx context.Context, hc *Context) error

// GateFunc is a hook that may cancel the workflow by
// returning false.
type GateFunc func(ctx context.Context, hc *Context) (bool, error)

// ValueFunc is a hook whose result substitutes a default
// value.
type ValueFunc func(ctx context.Context, hc *Context) (string, error)

// Hooks holds the optional lifecycle hooks. A nil field
// means the hook is not configured.
type Hooks struct {
	GetPullRequestBranch  ValueFunc
	GetReleaseBranch      ValueFunc
	GetReleaseDescription ValueFunc
	BeforePrepare         GateFunc
	AfterPrepare          Func
	BeforeRelease         GateFunc
	AfterRelease          Func
}

// Run invokes fn when set.
func Run(
	ctx context.Context,
	name string,
	fn Func,
	hc *Context,
) error {
	if fn == nil {
		return nil
	}

	slog.Info("running hook", "hook", name)

	if err := fn(ctx, hc); err != nil {
		return fmt.Errorf("hook %s: %w", name, err)
	}

	return nil
}

// Gate invokes fn when set and reports whether the
// workflow should proceed. An unset hook always proceeds.
func Gate(
	ctx context.Context,
	name string,
	fn GateFunc,
	hc *Context,
) (bool, error) {
	if fn == nil {
		return true, nil
	}

	slog.Info("running hook", "hook", name)

	proceed, err := fn(ctx, hc)
	if err != nil {
		return false, fmt.Errorf("hook %s: %w", name, err)
	}

	return proceed, nil
}

// Value invokes fn when set and returns its result, or
// def when fn is nil.
func Value(
	ctx context.Context,
	name string,
	fn ValueFunc,
	hc *Context,
	def string,
) (string, error) {
	if fn == nil {
		return def, nil
	}

	slog.Info("running hook", "hook", name)

	val, err := fn(ctx, hc)
	if err != nil {
		return "", fmt.Errorf("hook %s: %w", name, err)
	}

	return val, nil
}
