package logging

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestZapLogger_Levels(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	log := NewZapLogger(zap.New(core).Sugar())
	ctx := context.Background()

	log.Debug(ctx, "dbg", "a", 1)
	log.Info(ctx, "inf", "b", 2)
	log.Warn(ctx, "wrn", "c", 3)
	log.Error(ctx, "err", "d", 4)

	entries := logs.All()
	if len(entries) != 4 {
		t.Fatalf("expected 4 entries, got %d", len(entries))
	}
	want := []zapcore.Level{zapcore.DebugLevel, zapcore.InfoLevel, zapcore.WarnLevel, zapcore.ErrorLevel}
	for i, e := range entries {
		if e.Level != want[i] {
			t.Fatalf("entry %d: expected level %v, got %v", i, want[i], e.Level)
		}
	}
	if got := entries[1].ContextMap()["b"]; got != int64(2) {
		t.Fatalf("expected b=2, got %v", got)
	}
}

func TestZapLogger_With(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	log := NewZapLogger(zap.New(core).Sugar()).With("module", "cache")

	log.Info(context.Background(), "hello")

	entries := logs.FilterField(zap.String("module", "cache")).All()
	if len(entries) != 1 {
		t.Fatalf("expected child logger field, got %d entries", len(entries))
	}
}

func TestNew_Formats(t *testing.T) {
	var buf bytes.Buffer

	l, err := New(FormatText, &buf)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	l.Info(context.Background(), "text-ok", "k", "v")
	if !strings.Contains(buf.String(), "msg=text-ok") {
		t.Fatalf("expected text output, got %q", buf.String())
	}

	buf.Reset()
	l, err = New(FormatJSON, &buf)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	l.Info(context.Background(), "json-ok")
	if !strings.Contains(buf.String(), `"msg":"json-ok"`) {
		t.Fatalf("expected json output, got %q", buf.String())
	}

	if _, err := New(FormatZap, &buf); err != nil {
		t.Fatalf("zap logger: %v", err)
	}

	if _, err := New("xml", &buf); err == nil {
		t.Fatal("expected error for unknown format")
	}
}

func TestNop(t *testing.T) {
	var l Logger = Nop{}
	l = l.With("a", 1)
	l.Info(context.Background(), "ignored")
}

func TestZapLogger_ContextFields(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	log := NewZapLogger(zap.New(core).Sugar())

	ctx := WithFields(context.Background(), "request_id", "r-9")
	log.Warn(ctx, "careful", "n", 1)

	entries := logs.FilterField(zap.String("request_id", "r-9")).All()
	if len(entries) != 1 {
		t.Fatalf("expected context field on entry, got %d entries", len(entries))
	}
}
