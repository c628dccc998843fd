package commands

import (
	"context"
	"fmt"

	"github.com/spf13/pflag"

	"firelist/internal/exitcode"
)

func init() {
	Register(&HelpCmd{})
}

// HelpCmd implements the help command.
type HelpCmd struct{}

func (c *HelpCmd) Name() string       { return "help" }
func (c *HelpCmd) Aliases() []string  { return nil }
func (c *HelpCmd) Synopsis() string   { return "Print usage" }
func (c *HelpCmd) Usage() string      { return "firelist help" }
func (c *HelpCmd) NeedsBackend() bool { return false }

func (c *HelpCmd) RegisterFlags(fs *pflag.FlagSet) {}

func (c *HelpCmd) Run(ctx context.Context, env *Env, args []string) int {
	fmt.Fprint(env.Out, helpText)
	return exitcode.Success
}

const helpText = `Usage:
  firelist                                       List tasks
  firelist list [common flags] [--watch]         List tasks (alias: ls)
  firelist add [common flags] <text...>          Create a task
  firelist edit [common flags] <n> <text...>     Change task n (alias: update)
  firelist rm [common flags] <n>                 Delete task n (alias: delete)
  firelist products [common flags] [--watch]     List products
  firelist padd [common flags] --name <name> --type <type> --price <price>
  firelist pedit [common flags] <n> [--name <name>] [--type <type>] [--price <price>]
  firelist prm [common flags] <n>                Delete product n
  firelist signup [common flags] [--password <password>] <email>
  firelist shell [common flags] [--products]     Interactive live list
  firelist init [common flags] --project <id> [--credentials <file>]
  firelist connect [common flags]
  firelist disconnect [common flags]
  firelist help
  firelist version

Positions <n> are the numbers printed by list and products.

Common flags:
  --config <dir>   Override config directory
  --quiet          Suppress informational output
  --debug          Print debug logs to stderr
`
