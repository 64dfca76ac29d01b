package logging

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"betking-casino/internal/config"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

func TestInitWritesToFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "casino.log")
	Init(config.LogConfig{Level: "debug", Service: "casino-test", File: path, MaxMB: 1})
	t.Cleanup(func() { Init(config.LogConfig{Level: "info"}) })

	if zerolog.GlobalLevel() != zerolog.DebugLevel {
		t.Fatalf("global level = %v, want debug", zerolog.GlobalLevel())
	}
	log.Info().Str("round_id", "7").Msg("round_start")

	b, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read log: %v", err)
	}
	if !strings.Contains(string(b), `"message":"round_start"`) {
		t.Fatalf("log file missing event: %s", b)
	}
	if !strings.Contains(string(b), `"service":"casino-test"`) {
		t.Fatalf("log record missing service: %s", b)
	}
}

func TestInitFallsBackOnBadLevel(t *testing.T) {
	Init(config.LogConfig{Level: "loud"})
	if zerolog.GlobalLevel() != zerolog.InfoLevel {
		t.Fatalf("global level = %v, want info", zerolog.GlobalLevel())
	}
	if Writer() != os.Stdout {
		t.Fatal("expected stdout writer without log file")
	}
}
