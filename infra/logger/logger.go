package logger

import corelogger "github.com/kilianp07/shiftplan/core/logger"

// Logger is the core logging interface, backed here by zerolog.
type Logger = corelogger.Logger

// NopLogger implements Logger with no-op methods.
type NopLogger = corelogger.NopLogger

// New returns the logger of component; APP_ENV=dev selects console output.
func New(component string) Logger {
	return NewZerologLogger(component)
}
