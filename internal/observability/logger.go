package observability

import (
	"io"
	"os"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// LogConfig captures options for configuring the process logger.
type LogConfig struct {
	Level  string    // optional level ("debug", "info", ...); defaults to warn
	Output io.Writer // optional writer; defaults to os.Stderr
}

var (
	logOnce sync.Once
	logMu   sync.RWMutex
	base    zerolog.Logger
)

// Configure initialises the process logger. Only the first call has an
// effect, so commands call it from PersistentPreRun before any logging.
func Configure(cfg LogConfig) {
	logOnce.Do(func() {
		level := zerolog.WarnLevel
		raw := cfg.Level
		if raw == "" {
			raw = os.Getenv("DMENV_LOG_LEVEL")
		}
		if raw != "" {
			if parsed, err := zerolog.ParseLevel(raw); err == nil {
				level = parsed
			}
		}

		out := cfg.Output
		if out == nil {
			out = zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.Kitchen}
		}

		logMu.Lock()
		base = zerolog.New(out).Level(level).With().Timestamp().Logger()
		logMu.Unlock()
	})
}

// Logger returns the process logger, configuring defaults if needed.
func Logger() zerolog.Logger {
	Configure(LogConfig{})
	logMu.RLock()
	defer logMu.RUnlock()
	return base
}

// WithComponent returns a child logger annotated with the component name.
func WithComponent(component string) zerolog.Logger {
	return Logger().With().Str("component", component).Logger()
}
