package sysutil

import (
	"bytes"
	"context"
	"encoding/json"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

func keepGlobals(t *testing.T) {
	t.Helper()
	lvl, lg, def := zerolog.GlobalLevel(), log.Logger, zerolog.DefaultContextLogger
	t.Cleanup(func() {
		zerolog.SetGlobalLevel(lvl)
		log.Logger = lg
		zerolog.DefaultContextLogger = def
	})
}

func TestParseLevel(t *testing.T) {
	for in, want := range map[string]zerolog.Level{
		"debug":    zerolog.DebugLevel,
		" TRACE ":  zerolog.TraceLevel,
		"warning":  zerolog.WarnLevel,
		"Error":    zerolog.ErrorLevel,
		"":         zerolog.InfoLevel,
		"disabled": zerolog.InfoLevel,
		"verbose":  zerolog.InfoLevel,
		"panic":    zerolog.PanicLevel,
	} {
		if got := ParseLevel(in); got != want {
			t.Fatalf("ParseLevel(%q) = %v, want %v", in, got, want)
		}
	}
}

func TestConfigureLogger_JSON(t *testing.T) {
	keepGlobals(t)

	var buf bytes.Buffer
	ConfigureLogger(LogOptions{Level: "info", Service: "mealplan", Version: "v1.4.0", Out: &buf})
	log.Debug().Msg("hidden")
	log.Info().Str("recipe_id", "r1").Msg("created")

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 1 {
		t.Fatalf("want one line with debug filtered, got %q", buf.String())
	}
	var rec map[string]any
	if err := json.Unmarshal([]byte(lines[0]), &rec); err != nil {
		t.Fatalf("not JSON: %v", err)
	}
	for k, want := range map[string]any{"recipe_id": "r1", "message": "created", "service": "mealplan", "version": "v1.4.0"} {
		if rec[k] != want {
			t.Fatalf("%s = %v, want %v (%v)", k, rec[k], want, rec)
		}
	}
	if rec["time"] == nil {
		t.Fatalf("missing timestamp: %v", rec)
	}

	buf.Reset()
	zerolog.Ctx(context.Background()).Info().Msg("from ctx")
	if !strings.Contains(buf.String(), `"from ctx"`) {
		t.Fatalf("context logger not wired: %q", buf.String())
	}
}

func TestConfigureLogger_Pretty(t *testing.T) {
	keepGlobals(t)

	var buf bytes.Buffer
	ConfigureLogger(LogOptions{Level: "debug", Pretty: true, Out: &buf})
	log.Debug().Msg("pretty line")
	if !strings.Contains(buf.String(), "pretty line") || strings.HasPrefix(buf.String(), "{") {
		t.Fatalf("expected console output, got %q", buf.String())
	}
	if strings.Contains(buf.String(), "service=") {
		t.Fatalf("blank service should not be stamped: %q", buf.String())
	}
}
