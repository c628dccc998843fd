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
	Register(&AddCmd{})
}

// AddCmd implements the add command.
type AddCmd struct{}

func (c *AddCmd) Name() string       { return "add" }
func (c *AddCmd) Aliases() []string  { return nil }
func (c *AddCmd) Synopsis() string   { return "Create a task" }
func (c *AddCmd) Usage() string      { return "firelist add <text...>" }
func (c *AddCmd) NeedsBackend() bool { return true }

func (c *AddCmd) RegisterFlags(fs *pflag.FlagSet) {}

func (c *AddCmd) Run(ctx context.Context, env *Env, args []string) int {
	text := strings.Join(args, " ")
	if err := validate.Task(validate.TaskForm{Text: text}); err != nil {
		return userError(env, "%s", screen.MsgEnterTask)
	}

	id, err := env.Svc.AddTask(ctx, text)
	if err != nil {
		return backendError(env, "error adding task", err, env.tasksField())
	}
	env.logger().Debug("task added", zap.String("id", id))

	return done(env)
}
