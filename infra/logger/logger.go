package logger

import corelogger "github.com/kilianp07/relaycoord/core/logger"

// Logger is the core logging interface.
type Logger = corelogger.Logger

// NopLogger discards everything.
type NopLogger = corelogger.Nop

// New returns a Logger tagged with component. The output format follows the
// APP_ENV variable and the minimum level follows LOG_LEVEL.
func New(component string) Logger {
	return NewZerologLogger(component)
}
