// Package logging builds the zap logger used by commands and screens.
package logging

import (
	"io"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Level picks the minimum level from the common flags.
// --debug wins over --quiet.
func Level(debug, quiet bool) zapcore.Level {
	switch {
	case debug:
		return zapcore.DebugLevel
	case quiet:
		return zapcore.ErrorLevel
	default:
		return zapcore.WarnLevel
	}
}

// New returns a console logger writing to w.
// Every line carries a session field that is unique per invocation.
func New(w io.Writer, debug, quiet bool) *zap.Logger {
	encCfg := zap.NewDevelopmentEncoderConfig()
	encCfg.TimeKey = ""
	if !debug {
		encCfg.CallerKey = ""
	}

	core := zapcore.NewCore(
		zapcore.NewConsoleEncoder(encCfg),
		zapcore.Lock(zapcore.AddSync(w)),
		Level(debug, quiet),
	)

	opts := []zap.Option{zap.Fields(zap.String("session", uuid.NewString()))}
	if debug {
		opts = append(opts, zap.AddCaller())
	}
	return zap.New(core, opts...)
}
