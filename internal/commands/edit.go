package commands

import (
	"context"
	"strings"

	"github.com/spf13/pflag"
	"go.uber.org/zap"

	"firelist/internal/screen"
	"firelist/internal/validate"
)

func init() {
	Register(&EditCmd{})
}

// EditCmd implements the edit command.
type EditCmd struct{}

func (c *EditCmd) Name() string       { return "edit" }
func (c *EditCmd) Aliases() []string  { return []string{"update"} }
func (c *EditCmd) Synopsis() string   { return "Change the text of a task" }
func (c *EditCmd) Usage() string      { return "firelist edit <n> <text...>" }
func (c *EditCmd) NeedsBackend() bool { return true }

func (c *EditCmd) RegisterFlags(fs *pflag.FlagSet) {}

func (c *EditCmd) Run(ctx context.Context, env *Env, args []string) int {
	n, rest, err := ParsePosition(args)
	if err != nil {
		return userError(env, "%v", err)
	}

	text := strings.Join(rest, " ")
	if err := validate.Task(validate.TaskForm{Text: text}); err != nil {
		return userError(env, "%s", screen.MsgTaskEmpty)
	}

	task, err := itemAt(ctx, env.Svc.WatchTasks, n)
	if err != nil {
		return lookupError(env, env.tasksField(), err)
	}

	if err := env.Svc.UpdateTask(ctx, task.ID, text); err != nil {
		return backendError(env, "error updating task", err,
			env.tasksField(), zap.String("id", task.ID))
	}
	return done(env)
}
