package logging

import (
	"io"
	"os"
	"strings"
	"sync"

	"betking-casino/internal/config"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

var (
	writerMu sync.RWMutex
	writer   io.Writer = os.Stdout
)

// Init configures the global zerolog logger. When a log file is set, output
// goes to both stdout and the rotating file. Every record carries the
// service name.
func Init(cfg config.LogConfig) {
	level := zerolog.InfoLevel
	if v := strings.TrimSpace(cfg.Level); v != "" {
		if parsed, err := zerolog.ParseLevel(strings.ToLower(v)); err == nil {
			level = parsed
		}
	}

	var base io.Writer = os.Stdout
	if cfg.File != "" {
		fw, err := newRotatingWriter(cfg.File, cfg.MaxMB, cfg.Backups)
		if err == nil {
			base = io.MultiWriter(os.Stdout, fw)
		}
	}
	setWriter(base)

	var output = base
	if cfg.Pretty {
		output = zerolog.ConsoleWriter{Out: base}
	}

	zerolog.SetGlobalLevel(level)
	lc := zerolog.New(output).With().Timestamp()
	if cfg.Service != "" {
		lc = lc.Str("service", cfg.Service)
	}
	logger := lc.Logger()
	if cfg.SampleEvery > 1 {
		logger = logger.Sample(&zerolog.BasicSampler{N: uint32(cfg.SampleEvery)})
	}
	log.Logger = logger
}

// Writer returns the raw sink used by the global logger, for handlers that
// format their own records (slog request logs).
func Writer() io.Writer {
	writerMu.RLock()
	defer writerMu.RUnlock()
	return writer
}

func setWriter(w io.Writer) {
	writerMu.Lock()
	writer = w
	writerMu.Unlock()
}

// Component returns a child of the global logger tagged with a component name.
func Component(name string) zerolog.Logger {
	return log.Logger.With().Str("component", name).Logger()
}
