package commands

import (
	"errors"
	"fmt"

	"go.uber.org/zap"

	"firelist/internal/exitcode"
	"firelist/internal/screen"
)

// done prints "ok" unless quiet.
func done(env *Env) int {
	if !env.Cfg.Quiet {
		fmt.Fprintln(env.Out, "ok")
	}
	return exitcode.Success
}

// userError prints a validation or usage error.
func userError(env *Env, format string, args ...any) int {
	fmt.Fprintf(env.ErrOut, "error: "+format+"\n", args...)
	return exitcode.UserError
}

// alertError prints a blocking alert the way the screens raise it.
func alertError(env *Env, err error) int {
	var alert *screen.Alert
	if errors.As(err, &alert) {
		return userError(env, "%s", alert.Message)
	}
	return userError(env, "%v", err)
}

// backendError logs a failed remote call and reports it.
func backendError(env *Env, msg string, err error, fields ...zap.Field) int {
	env.logger().Debug(msg, append(fields, zap.Error(err))...)
	fmt.Fprintf(env.ErrOut, "error: backend error: %v\n", err)
	return exitcode.BackendError
}

// lookupError reports a failed itemAt call.
func lookupError(env *Env, collection zap.Field, err error) int {
	if errors.Is(err, ErrOutOfRange) {
		return userError(env, "%v", err)
	}
	return backendError(env, "error reading snapshot", err, collection)
}
