package tracing

import (
	"context"
	"errors"
	"testing"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
)

func recordSpans(t *testing.T) *tracetest.SpanRecorder {
	t.Helper()
	recorder := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder))
	prev := otel.GetTracerProvider()
	otel.SetTracerProvider(tp)
	t.Cleanup(func() {
		_ = tp.Shutdown(context.Background())
		otel.SetTracerProvider(prev)
	})
	return recorder
}

func attrMap(attrs []attribute.KeyValue) map[attribute.Key]string {
	m := make(map[attribute.Key]string, len(attrs))
	for _, kv := range attrs {
		m[kv.Key] = kv.Value.Emit()
	}
	return m
}

func TestStartDBSpan(t *testing.T) {
	tests := []struct {
		name      string
		table     string
		operation DBOperation
		wantName  string
	}{
		{"query artists", "artists", DBOperationQuery, "query artists"},
		{"insert artists", "artists", DBOperationInsert, "insert artists"},
		{"query without table", "", DBOperationQuery, "query"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			recorder := recordSpans(t)

			_, endSpan := StartDBSpan(context.Background(), tt.table, tt.operation)
			endSpan(nil)

			spans := recorder.Ended()
			if len(spans) != 1 {
				t.Fatalf("expected 1 span, got %d", len(spans))
			}
			span := spans[0]
			if span.Name() != tt.wantName {
				t.Errorf("expected span name %q, got %q", tt.wantName, span.Name())
			}

			attrs := attrMap(span.Attributes())
			if attrs["db.system"] != "postgresql" {
				t.Errorf("expected db.system=postgresql, got %q", attrs["db.system"])
			}
			if attrs["db.operation"] != string(tt.operation) {
				t.Errorf("expected db.operation=%s, got %q", tt.operation, attrs["db.operation"])
			}
			table, hasTable := attrs["db.sql.table"]
			if tt.table != "" && table != tt.table {
				t.Errorf("expected db.sql.table=%s, got %q", tt.table, table)
			}
			if tt.table == "" && hasTable {
				t.Error("unexpected db.sql.table attribute")
			}
		})
	}
}

func TestStartDBSpan_WithError(t *testing.T) {
	recorder := recordSpans(t)
	testErr := errors.New("connection refused")

	_, endSpan := StartDBSpan(context.Background(), "artists", DBOperationQuery)
	endSpan(testErr)

	spans := recorder.Ended()
	if len(spans) != 1 {
		t.Fatalf("expected 1 span, got %d", len(spans))
	}
	if spans[0].Status().Code != codes.Error {
		t.Errorf("expected error status, got %s", spans[0].Status().Code)
	}
	if spans[0].Status().Description != testErr.Error() {
		t.Errorf("expected description %q, got %q", testErr.Error(), spans[0].Status().Description)
	}
}

func TestStartSpan(t *testing.T) {
	recorder := recordSpans(t)

	_, endSpan := StartSpan(context.Background(), "ranking.rank", attribute.Int("candidates", 4))
	endSpan(nil)

	spans := recorder.Ended()
	if len(spans) != 1 {
		t.Fatalf("expected 1 span, got %d", len(spans))
	}
	span := spans[0]
	if span.Name() != "ranking.rank" {
		t.Errorf("expected span name ranking.rank, got %q", span.Name())
	}
	if span.Status().Code == codes.Error {
		t.Error("expected non-error status")
	}
	if got := attrMap(span.Attributes())["candidates"]; got != "4" {
		t.Errorf("expected candidates=4, got %q", got)
	}
}

func TestStartSpan_WithError(t *testing.T) {
	recorder := recordSpans(t)

	_, endSpan := StartSpan(context.Background(), "artist.file.list")
	endSpan(errors.New("no such file"))

	spans := recorder.Ended()
	if len(spans) != 1 {
		t.Fatalf("expected 1 span, got %d", len(spans))
	}
	if spans[0].Status().Code != codes.Error {
		t.Errorf("expected error status, got %s", spans[0].Status().Code)
	}
	if len(spans[0].Events()) == 0 {
		t.Error("expected recorded error event")
	}
}

func TestSetAttributes(t *testing.T) {
	recorder := recordSpans(t)

	ctx, endSpan := StartSpan(context.Background(), "discovery.list")
	SetAttributes(ctx,
		attribute.Int("results", 2),
		attribute.String("filters", "distance,rate"),
	)
	endSpan(nil)

	spans := recorder.Ended()
	if len(spans) != 1 {
		t.Fatalf("expected 1 span, got %d", len(spans))
	}
	attrs := attrMap(spans[0].Attributes())
	if attrs["results"] != "2" {
		t.Errorf("expected results=2, got %q", attrs["results"])
	}
	if attrs["filters"] != "distance,rate" {
		t.Errorf("expected filters=distance,rate, got %q", attrs["filters"])
	}
}

func TestSetAttributes_NoSpan(t *testing.T) {
	// must not panic without an active span
	SetAttributes(context.Background(), attribute.String("k", "v"))
}
