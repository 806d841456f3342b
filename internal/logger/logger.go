// internal/logger/logger.go
//
// Structured JSON logger (Zap + Lumberjack).
//
// Context
// -------
// Bootstrap writes lifecycle and error events to one JSON log per day under
// the configured log path, `<log>/YYYY-MM-DD.log`.  When running in an
// interactive TTY the same events are teed to stdout in console format.
// Rotation, compression, and retention are handled by Lumberjack.
//
// Debug mode lowers the level to DEBUG and adds stack traces to WARN and
// above.  Outside debug mode the logger records INFO and above only.
//
// Usage
// -----
//
//	log, err := logger.New(paths.Log(), logger.Options{Tee: tty, Debug: d.Enabled})
//	if err != nil { … }
//	log.Infow("container ready", "environment", env)
//
// Notes
// -----
// • Zap core uses ISO-8601 timestamps and lowercase levels.
// • Errors are written to the same sink via `ErrorOutput`.
// • Oxford commas, two spaces after periods.
package logger

import (
	"os"
	"path/filepath"
	"time"

	"github.com/natefinch/lumberjack"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Options tunes New.
type Options struct {
	Tee   bool // also write console-formatted events to stdout
	Debug bool // debug level plus stack traces
}

// New returns a *zap.SugaredLogger writing JSON into logDir and installs it
// as the process-wide default via zap.ReplaceGlobals.
func New(logDir string, opts Options) (*zap.SugaredLogger, error) {
	if err := os.MkdirAll(logDir, 0o755); err != nil {
		return nil, err
	}

	fileName := time.Now().Format("2006-01-02") + ".log"
	fileSink := &lumberjack.Logger{
		Filename:   filepath.Join(logDir, fileName),
		MaxSize:    50, // MB
		MaxBackups: 7,
		MaxAge:     14, // days
		Compress:   true,
	}

	level := zap.InfoLevel
	if opts.Debug {
		level = zap.DebugLevel
	}

	encCfg := zapcore.EncoderConfig{
		TimeKey:       "ts",
		LevelKey:      "level",
		MessageKey:    "msg",
		CallerKey:     "caller",
		StacktraceKey: "stack",
		EncodeTime:    zapcore.ISO8601TimeEncoder,
		EncodeLevel:   zapcore.LowercaseLevelEncoder,
		EncodeCaller:  zapcore.ShortCallerEncoder,
	}

	cores := []zapcore.Core{
		zapcore.NewCore(zapcore.NewJSONEncoder(encCfg), zapcore.AddSync(fileSink), level),
	}
	if opts.Tee {
		cores = append(cores, zapcore.NewCore(
			zapcore.NewConsoleEncoder(encCfg),
			zapcore.AddSync(os.Stdout),
			level,
		))
	}

	zopts := []zap.Option{zap.ErrorOutput(zapcore.AddSync(fileSink))}
	if opts.Debug {
		zopts = append(zopts, zap.AddCaller(), zap.AddStacktrace(zap.WarnLevel))
	}

	z := zap.New(zapcore.NewTee(cores...), zopts...).Sugar()
	zap.ReplaceGlobals(z.Desugar())

	z.Infow("logger online", "dir", logDir, "tee", opts.Tee, "debug", opts.Debug)
	return z, nil
}
