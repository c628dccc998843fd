// Package commands provides the command interface and implementations.
package commands

import (
	"context"
	"io"

	"github.com/peterh/liner"
	"github.com/spf13/pflag"
	"go.uber.org/zap"

	"firelist/internal/config"
	"firelist/internal/service"
)

// Command defines the interface for CLI commands.
type Command interface {
	// Name returns the primary command name.
	Name() string

	// Aliases returns alternative names for the command.
	Aliases() []string

	// Synopsis returns a short description for help output.
	Synopsis() string

	// Usage returns the usage string for help output.
	Usage() string

	// NeedsBackend returns true if the command talks to Firestore or Firebase Auth.
	// Commands like help, version, init, connect return false.
	NeedsBackend() bool

	// RegisterFlags registers command-specific flags.
	RegisterFlags(fs *pflag.FlagSet)

	// Run executes the command.
	// env.Svc is nil if NeedsBackend() returns false.
	// args contains positional arguments after flag parsing.
	// Returns exit code.
	Run(ctx context.Context, env *Env, args []string) int
}

// Env is what a command runs against.
type Env struct {
	Cfg *config.Config
	Svc service.Service
	Log *zap.Logger

	Out    io.Writer
	ErrOut io.Writer

	// NewPrompter opens the line editor. Nil means a terminal liner.
	NewPrompter func() Prompter
}

// Prompter reads lines from the user.
// *liner.State satisfies it.
type Prompter interface {
	Prompt(prompt string) (string, error)
	PasswordPrompt(prompt string) (string, error)
	AppendHistory(item string)
	Close() error
}

func (e *Env) prompter() Prompter {
	if e.NewPrompter != nil {
		return e.NewPrompter()
	}
	return NewLinePrompter()
}

func (e *Env) logger() *zap.Logger {
	if e.Log == nil {
		return zap.NewNop()
	}
	return e.Log
}

// tasksField and productsField tag log lines with the configured collection.
func (e *Env) tasksField() zap.Field {
	return zap.String("collection", e.Cfg.Settings.TasksCollection)
}

func (e *Env) productsField() zap.Field {
	return zap.String("collection", e.Cfg.Settings.ProductsCollection)
}

// NewLinePrompter returns a terminal line editor. Ctrl-C aborts the current
// prompt with liner.ErrPromptAborted.
func NewLinePrompter() Prompter {
	l := liner.NewLiner()
	l.SetCtrlCAborts(true)
	return l
}
