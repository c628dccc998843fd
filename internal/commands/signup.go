package commands

import (
	"context"
	"errors"
	"fmt"

	"github.com/peterh/liner"
	"github.com/spf13/pflag"

	"firelist/internal/exitcode"
	"firelist/internal/screen"
)

func init() {
	Register(&SignUpCmd{})
}

// SignUpCmd implements the signup command.
type SignUpCmd struct {
	password string
	flags    *pflag.FlagSet
}

// SetPassword sets the password as if --password were given (for testing).
func (c *SignUpCmd) SetPassword(password string) {
	fs := pflag.NewFlagSet(c.Name(), pflag.ContinueOnError)
	c.RegisterFlags(fs)
	_ = fs.Set("password", password)
}

func (c *SignUpCmd) Name() string       { return "signup" }
func (c *SignUpCmd) Aliases() []string  { return nil }
func (c *SignUpCmd) Synopsis() string   { return "Create an account" }
func (c *SignUpCmd) Usage() string      { return "firelist signup [--password <password>] <email>" }
func (c *SignUpCmd) NeedsBackend() bool { return true }

func (c *SignUpCmd) RegisterFlags(fs *pflag.FlagSet) {
	fs.StringVarP(&c.password, "password", "p", "", "")
	c.flags = fs
}

func (c *SignUpCmd) Run(ctx context.Context, env *Env, args []string) int {
	if len(args) > 1 {
		return userError(env, "unexpected argument: %s", args[1])
	}
	var email string
	if len(args) == 1 {
		email = args[0]
	}

	password := c.password
	if c.flags == nil || !c.flags.Changed("password") {
		p := env.prompter()
		pw, err := p.PasswordPrompt("Password: ")
		p.Close()
		if err != nil {
			if errors.Is(err, liner.ErrPromptAborted) {
				return userError(env, "cancelled")
			}
			return userError(env, "failed to read password: %v", err)
		}
		password = pw
	}

	var route string
	s := screen.NewSignUpScreen(env.Svc, env.logger(), screen.NavigatorFunc(func(r string) { route = r }))
	s.SetEmail(email)
	s.SetPassword(password)

	if _, err := s.Submit(ctx); err != nil {
		fmt.Fprintf(env.ErrOut, "error: %s\n", s.ErrorText())
		return exitcode.AuthError
	}

	if !env.Cfg.Quiet {
		fmt.Fprintln(env.Out, "ok")
		fmt.Fprintf(env.Out, "next: %s\n", route)
	}
	return exitcode.Success
}
