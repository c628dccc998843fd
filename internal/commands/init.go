package commands

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/pflag"

	"firelist/internal/config"
	"firelist/internal/exitcode"
)

func init() {
	Register(&InitCmd{})
}

// InitCmd implements the init command.
// It writes config.json, keeping any settings not given on the command line.
type InitCmd struct {
	project     string
	credentials string
}

// SetProject sets the --project and --credentials values (for testing).
func (c *InitCmd) SetProject(project, credentials string) {
	c.project, c.credentials = project, credentials
}

func (c *InitCmd) Name() string       { return "init" }
func (c *InitCmd) Aliases() []string  { return nil }
func (c *InitCmd) Synopsis() string   { return "Configure the Firebase project" }
func (c *InitCmd) Usage() string      { return "firelist init --project <id> [--credentials <file>]" }
func (c *InitCmd) NeedsBackend() bool { return false }

func (c *InitCmd) RegisterFlags(fs *pflag.FlagSet) {
	fs.StringVar(&c.project, "project", "", "")
	fs.StringVar(&c.credentials, "credentials", "", "")
}

func (c *InitCmd) Run(ctx context.Context, env *Env, args []string) int {
	if len(args) > 0 {
		return userError(env, "unexpected argument: %s", args[0])
	}

	project := strings.TrimSpace(c.project)
	if project == "" {
		return userError(env, "--project is required")
	}

	// Environment overrides apply to this run only and are not persisted.
	settings, err := env.Cfg.FileSettings()
	if err != nil {
		fmt.Fprintf(env.ErrOut, "error: %v\n", err)
		return exitcode.AuthError
	}
	settings.ProjectID = project
	if c.credentials != "" {
		settings.CredentialsFile = c.credentials
	}

	if err := env.Cfg.SaveSettings(settings); err != nil {
		fmt.Fprintf(env.ErrOut, "error: %v\n", err)
		return exitcode.AuthError
	}

	if !env.Cfg.HasCredentials() && !env.Cfg.HasToken() && !env.Cfg.Quiet {
		fmt.Fprintf(env.ErrOut, "note: no credentials yet (save %s in %s or run: firelist connect)\n",
			config.ServiceAccountFile, env.Cfg.Dir)
	}
	return done(env)
}
