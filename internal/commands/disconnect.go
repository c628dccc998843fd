package commands

import (
	"context"
	"fmt"

	"github.com/spf13/pflag"

	"firelist/internal/exitcode"
)

func init() {
	Register(&DisconnectCmd{})
}

// DisconnectCmd implements the disconnect command.
type DisconnectCmd struct{}

func (c *DisconnectCmd) Name() string       { return "disconnect" }
func (c *DisconnectCmd) Aliases() []string  { return nil }
func (c *DisconnectCmd) Synopsis() string   { return "Remove the stored OAuth token" }
func (c *DisconnectCmd) Usage() string      { return "firelist disconnect [common flags]" }
func (c *DisconnectCmd) NeedsBackend() bool { return false }

func (c *DisconnectCmd) RegisterFlags(fs *pflag.FlagSet) {}

func (c *DisconnectCmd) Run(ctx context.Context, env *Env, args []string) int {
	cfg := env.Cfg

	if !cfg.HasToken() {
		if !cfg.Quiet {
			fmt.Fprintln(env.Out, "not connected")
		}
		return exitcode.Success
	}

	if err := cfg.RemoveToken(); err != nil {
		fmt.Fprintf(env.ErrOut, "error: failed to remove token: %v\n", err)
		return exitcode.AuthError
	}

	return done(env)
}
