package commands

import (
	"context"

	"github.com/spf13/pflag"
	"go.uber.org/zap"

)

func init() {
	Register(&RmCmd{})
}

// RmCmd implements the rm command.
type RmCmd struct{}

func (c *RmCmd) Name() string       { return "rm" }
func (c *RmCmd) Aliases() []string  { return []string{"delete"} }
func (c *RmCmd) Synopsis() string   { return "Delete a task" }
func (c *RmCmd) Usage() string      { return "firelist rm <n>" }
func (c *RmCmd) NeedsBackend() bool { return true }

func (c *RmCmd) RegisterFlags(fs *pflag.FlagSet) {}

func (c *RmCmd) Run(ctx context.Context, env *Env, args []string) int {
	n, rest, err := ParsePosition(args)
	if err != nil {
		return userError(env, "%v", err)
	}
	if len(rest) > 0 {
		return userError(env, "unexpected argument: %s", rest[0])
	}

	task, err := itemAt(ctx, env.Svc.WatchTasks, n)
	if err != nil {
		return lookupError(env, env.tasksField(), err)
	}

	if err := env.Svc.DeleteTask(ctx, task.ID); err != nil {
		return backendError(env, "error deleting task", err,
			env.tasksField(), zap.String("id", task.ID))
	}
	return done(env)
}
