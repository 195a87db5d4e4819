package tracing

import (
	"bytes"
	"context"
	"log/slog"
	"strings"
	"testing"
)

func TestChildSpansInheritTraceID(t *testing.T) {
	ctx, root := StartSpan(context.Background(), "pair", "abc")
	_, merge := StartChildSpan(ctx, "merge")
	merge.End()
	_, final := StartChildSpan(ctx, "final")
	final.SetAttr("rows", 3)
	final.End()
	root.End()

	if merge.TraceID != "abc" || final.TraceID != "abc" {
		t.Errorf("expected children to carry the root trace id")
	}
	if root.Child("final") != final || root.Child("missing") != nil {
		t.Error("Child lookup failed")
	}
	if SpanFromContext(ctx) != root {
		t.Error("expected root span in context")
	}
}

func TestLogWritesTree(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))
	ctx, root := StartSpan(context.Background(), "pair", NewTraceID())
	_, child := StartChildSpan(ctx, "merge")
	child.End()
	root.End()
	root.Log(logger)

	out := buf.String()
	if strings.Count(out, "msg=span") != 2 {
		t.Fatalf("expected two span records, got:\n%s", out)
	}
	if !strings.Contains(out, "span=merge") || !strings.Contains(out, "depth=1") {
		t.Errorf("child span missing from output:\n%s", out)
	}
}

func TestNewTraceIDIsHex(t *testing.T) {
	id := NewTraceID()
	if len(id) != 16 || strings.Trim(id, "0123456789abcdef") != "" {
		t.Errorf("unexpected trace id %q", id)
	}
}
