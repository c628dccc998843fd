package commands

import (
	"context"

	"github.com/spf13/pflag"

	"firelist/internal/exitcode"
	"firelist/internal/output"
	"firelist/internal/screen"
	"firelist/internal/service"
)

func init() {
	Register(&ListCmd{})
}

// ListCmd implements the list command.
// Handles both `firelist` (no args) and `firelist list`.
type ListCmd struct {
	watch bool
}

// SetWatch sets watch mode (for testing).
func (c *ListCmd) SetWatch(watch bool) {
	c.watch = watch
}

func (c *ListCmd) Name() string       { return "list" }
func (c *ListCmd) Aliases() []string  { return []string{"ls"} }
func (c *ListCmd) Synopsis() string   { return "List tasks" }
func (c *ListCmd) Usage() string      { return "firelist list [--watch]" }
func (c *ListCmd) NeedsBackend() bool { return true }

func (c *ListCmd) RegisterFlags(fs *pflag.FlagSet) {
	fs.BoolVarP(&c.watch, "watch", "w", false, "")
}

func (c *ListCmd) Run(ctx context.Context, env *Env, args []string) int {
	if len(args) > 0 {
		return userError(env, "unexpected argument: %s", args[0])
	}

	if c.watch {
		return watchTasks(ctx, env)
	}

	tasks, err := service.First(ctx, env.Svc.WatchTasks)
	if err != nil {
		return backendError(env, "error fetching tasks", err, env.tasksField())
	}

	if len(tasks) == 0 && env.Cfg.Quiet {
		return exitcode.Success
	}
	output.FormatTasks(env.Out, tasks)
	return exitcode.Success
}

// watchTasks renders every snapshot until ctx ends.
func watchTasks(ctx context.Context, env *Env) int {
	s := screen.NewTaskScreen(env.Svc, env.logger().With(env.tasksField()))

	seq := 0
	err := s.Mount(ctx, func(tasks []service.Task) {
		seq++
		output.FormatSnapshotHeader(env.Out, seq)
		output.FormatTasks(env.Out, tasks)
	})
	if err != nil {
		return backendError(env, "error watching tasks", err, env.tasksField())
	}
	return exitcode.Success
}

// watchProducts renders every products snapshot until ctx ends.
func watchProducts(ctx context.Context, env *Env) int {
	s := screen.NewProductScreen(env.Svc, env.logger().With(env.productsField()))

	seq := 0
	err := s.Mount(ctx, func(products []service.Product) {
		seq++
		output.FormatSnapshotHeader(env.Out, seq)
		output.FormatProducts(env.Out, products)
	})
	if err != nil {
		return backendError(env, "error watching products", err, env.productsField())
	}
	return exitcode.Success
}
