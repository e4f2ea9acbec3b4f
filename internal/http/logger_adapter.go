package http

import (
	"github.com/anchore/go-logger"
	"github.com/hashicorp/go-retryablehttp"

	"github.com/appfy/gaesdk/internal/log"
)

var _ retryablehttp.LeveledLogger = (*leveledLogger)(nil)

// leveledLogger routes retryablehttp request logging into the application logger. Request
// chatter is demoted one level (info -> debug, debug -> trace).
type leveledLogger struct {
	lgr func() logger.Logger
}

// NewLeveledLogger creates a retryablehttp.LeveledLogger that looks up the global logger on
// every message, so a logger installed after the client was built is still honored.
func NewLeveledLogger() retryablehttp.LeveledLogger {
	return &leveledLogger{lgr: func() logger.Logger {
		return log.Get().Nested("component", "http-client")
	}}
}

func (l *leveledLogger) Error(msg string, keysAndValues ...interface{}) {
	l.lgr().WithFields(keysAndValues...).Error(msg)
}

func (l *leveledLogger) Warn(msg string, keysAndValues ...interface{}) {
	l.lgr().WithFields(keysAndValues...).Warn(msg)
}

func (l *leveledLogger) Info(msg string, keysAndValues ...interface{}) {
	l.lgr().WithFields(keysAndValues...).Debug(msg)
}

func (l *leveledLogger) Debug(msg string, keysAndValues ...interface{}) {
	l.lgr().WithFields(keysAndValues...).Trace(msg)
}
