// Package logger provides the category logger injected into every sweep
// component. The default implementation writes through go-log subsystems.
package logger

import (
	logging "github.com/ipfs/go-log/v2"
)

// Logger records one line per pipeline event, tagged with a category such
// as "Download" or "Thumbnail".
type Logger interface {
	Info(category, msg string)
	Success(category, msg string)
	Warning(category, msg string)
	Error(category, msg string)
	Skip(category, msg string)
	Detail(category, msg string)
}

// Subsystems are the go-log names used by this module.
var Subsystems = []string{"sweeper", "metadata", "asset", "thumbnail", "pipeline", "report", "config"}

// SetLevel applies a level ("debug", "info", "warn", "error") to every subsystem.
func SetLevel(level string) error {
	for _, name := range Subsystems {
		// SetLogLevel only knows loggers that have been created.
		logging.Logger(name)
		if err := logging.SetLogLevel(name, level); err != nil {
			return err
		}
	}
	return nil
}

type zapLogger struct {
	l *logging.ZapEventLogger
}

// New returns a Logger backed by the named go-log subsystem.
func New(system string) Logger {
	return &zapLogger{l: logging.Logger(system)}
}

func (z *zapLogger) Info(category, msg string) {
	z.l.Infow(msg, "category", category)
}

func (z *zapLogger) Success(category, msg string) {
	z.l.Infow(msg, "category", category, "outcome", "success")
}

func (z *zapLogger) Warning(category, msg string) {
	z.l.Warnw(msg, "category", category)
}

func (z *zapLogger) Error(category, msg string) {
	z.l.Errorw(msg, "category", category)
}

func (z *zapLogger) Skip(category, msg string) {
	z.l.Infow(msg, "category", category, "outcome", "skip")
}

func (z *zapLogger) Detail(category, msg string) {
	z.l.Debugw(msg, "category", category)
}

type nop struct{}

// Discard returns a Logger that drops everything.
func Discard() Logger { return nop{} }

func (nop) Info(string, string)    {}
func (nop) Success(string, string) {}
func (nop) Warning(string, string) {}
func (nop) Error(string, string)   {}
func (nop) Skip(string, string)    {}
func (nop) Detail(string, string)  {}
