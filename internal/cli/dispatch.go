// Package cli parses the command line and dispatches to commands.
package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/pflag"
	"go.uber.org/zap"

	"firelist/internal/commands"
	"firelist/internal/config"
	"firelist/internal/exitcode"
	"firelist/internal/logging"
	"firelist/internal/service"
)

// ServiceFactory creates a Service from config.
// Used to inject the backend during dispatch.
type ServiceFactory func(ctx context.Context, cfg *config.Config, log *zap.Logger) (service.Service, error)

// Dispatcher handles command-line parsing and dispatch.
type Dispatcher struct {
	registry *commands.Registry
	factory  ServiceFactory

	// NewPrompter replaces the terminal line editor. Nil uses liner.
	NewPrompter func() commands.Prompter
}

// NewDispatcher creates a new dispatcher with the given registry and service factory.
func NewDispatcher(registry *commands.Registry, factory ServiceFactory) *Dispatcher {
	return &Dispatcher{
		registry: registry,
		factory:  factory,
	}
}

// Run parses arguments and dispatches to the appropriate command.
// Returns the exit code.
func (d *Dispatcher) Run(ctx context.Context, args []string, out, errOut io.Writer) int {
	// No args -> dispatch to "list" command with no args
	if len(args) == 0 {
		return d.dispatch(ctx, "list", nil, out, errOut)
	}

	cmdName := args[0]

	// If first token starts with -, it's an error (flags require a command)
	if strings.HasPrefix(cmdName, "-") {
		fmt.Fprintf(errOut, "error: unknown command: %s\n", cmdName)
		return exitcode.UserError
	}

	return d.dispatch(ctx, cmdName, args[1:], out, errOut)
}

func (d *Dispatcher) dispatch(ctx context.Context, cmdName string, args []string, out, errOut io.Writer) int {
	cmd, ok := d.registry.Find(cmdName)
	if !ok {
		fmt.Fprintf(errOut, "error: unknown command: %s\n", cmdName)
		return exitcode.UserError
	}
	return d.dispatchCommand(ctx, cmd, args, out, errOut)
}

func (d *Dispatcher) dispatchCommand(ctx context.Context, cmd commands.Command, args []string, out, errOut io.Writer) int {
	fs := pflag.NewFlagSet(cmd.Name(), pflag.ContinueOnError)
	fs.SetOutput(io.Discard) // We handle errors ourselves
	fs.Usage = func() {}

	// Common flags
	var configDir string
	var quiet bool
	var debug bool

	fs.StringVar(&configDir, "config", "", "")
	fs.BoolVar(&quiet, "quiet", false, "")
	fs.BoolVar(&debug, "debug", false, "")

	cmd.RegisterFlags(fs)

	if err := fs.Parse(args); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			fmt.Fprintf(out, "Usage: %s\n", cmd.Usage())
			return exitcode.Success
		}
		fmt.Fprintf(errOut, "error: %s\n", err)
		return exitcode.UserError
	}

	log := logging.New(errOut, debug, quiet)
	defer func() { _ = log.Sync() }()

	cfg, err := config.Load(configDir)
	if err != nil {
		fmt.Fprintf(errOut, "error: %s\n", err)
		return exitcode.AuthError
	}
	cfg.Quiet = quiet
	cfg.Debug = debug

	log.Debug("dispatch", zap.String("command", cmd.Name()), zap.String("config", cfg.Dir))

	env := &commands.Env{
		Cfg:         cfg,
		Log:         log,
		Out:         out,
		ErrOut:      errOut,
		NewPrompter: d.NewPrompter,
	}

	if cmd.NeedsBackend() {
		if d.factory == nil {
			fmt.Fprintln(errOut, "error: no backend configured")
			return exitcode.AuthError
		}
		svc, err := d.factory(ctx, cfg, log)
		if err != nil {
			if errors.Is(err, service.ErrNotConfigured) {
				fmt.Fprintf(errOut, "error: %s\n", err)
				return exitcode.AuthError
			}
			fmt.Fprintf(errOut, "error: backend error: %s\n", err)
			return exitcode.BackendError
		}
		defer func() {
			if err := svc.Close(); err != nil {
				log.Debug("close failed", zap.Error(err))
			}
		}()
		env.Svc = svc
	}

	return cmd.Run(ctx, env, fs.Args())
}
