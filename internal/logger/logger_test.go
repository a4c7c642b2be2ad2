package logger_test

import (
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/omochice/line-chat/internal/logger"
)

func TestFromZap_WritesFields(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	log := logger.FromZap(zap.New(core)).With("conn_id", "c1")

	log.Info("connected", "addr", "127.0.0.1:1300")
	log.Debug("line received", "line", "msgok")

	entries := logs.All()
	if len(entries) != 2 {
		t.Fatalf("got %d entries, want 2", len(entries))
	}

	ctx := entries[0].ContextMap()
	if ctx["conn_id"] != "c1" {
		t.Errorf("conn_id = %v, want c1", ctx["conn_id"])
	}
	if ctx["addr"] != "127.0.0.1:1300" {
		t.Errorf("addr = %v, want 127.0.0.1:1300", ctx["addr"])
	}
	if entries[1].Level != zapcore.DebugLevel {
		t.Errorf("level = %v, want debug", entries[1].Level)
	}
}

func TestNew_InvalidLevelFallsBackToInfo(t *testing.T) {
	log := logger.New("not-a-level", "test")
	if log == nil {
		t.Fatal("New() returned nil")
	}
}

func TestNop(t *testing.T) {
	log := logger.Nop()
	log.Error("discarded", "key", "value")
	log.With("k", "v").Warn("discarded")
}
