package scheduler

import (
	"fmt"

	"github.com/rs/zerolog"
)

// cronLogger adapts zerolog to the cron.Logger interface so Recover and
// SkipIfStillRunning report through the same structured log.
type cronLogger struct {
	logger zerolog.Logger
}

func (l cronLogger) Info(msg string, keysAndValues ...any) {
	l.event(l.logger.Debug(), keysAndValues).Msg(msg)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...any) {
	l.event(l.logger.Error().Err(err), keysAndValues).Msg(msg)
}

func (l cronLogger) event(e *zerolog.Event, keysAndValues []any) *zerolog.Event {
	for i := 0; i+1 < len(keysAndValues); i += 2 {
		e = e.Interface(fmt.Sprint(keysAndValues[i]), keysAndValues[i+1])
	}
	return e
}
