package logging

import (
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestTraceFields(t *testing.T) {
	tests := []struct {
		name    string
		header  string
		sampled int64
	}{
		{name: "sampled", header: "00-3d23d071b5bfd6579171efce907685cb-08f067aa0ba902b7-01", sampled: 1},
		{name: "not sampled", header: "00-3d23d071b5bfd6579171efce907685cb-08f067aa0ba902b7-00", sampled: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fields := traceFields(tt.header, "test-project")
			if len(fields) != 3 {
				t.Fatalf("expected 3 fields, got %d", len(fields))
			}
			if fields[0].String != "projects/test-project/traces/3d23d071b5bfd6579171efce907685cb" {
				t.Fatalf("unexpected trace field: %+v", fields[0])
			}
			if fields[1].String != "08f067aa0ba902b7" {
				t.Fatalf("unexpected span field: %+v", fields[1])
			}
			if fields[2].Type != zapcore.BoolType || fields[2].Integer != tt.sampled {
				t.Fatalf("unexpected sampled field: %+v", fields[2])
			}
		})
	}
}

func TestTraceFieldsInvalid(t *testing.T) {
	if fields := traceFields("invalid", "test-project"); fields != nil {
		t.Fatalf("expected nil fields for invalid header, got %v", fields)
	}
	if fields := traceFields("00-3d23d071b5bfd6579171efce907685cb-08f067aa0ba902b7-01", ""); fields != nil {
		t.Fatalf("expected nil fields when project is missing, got %v", fields)
	}
	if res := traceResource("", "test-project"); res != "" {
		t.Fatalf("expected empty resource, got %q", res)
	}
}

func TestLoggerWithTraceAddsRequestID(t *testing.T) {
	core, recorded := observer.New(zapcore.InfoLevel)

	loggerWithTrace(zap.New(core), "", "test-project", "req-123").Info("hello")

	entries := recorded.All()
	if len(entries) != 1 {
		t.Fatalf("expected 1 log entry, got %d", len(entries))
	}
	if f, ok := fieldMap(entries[0])["requestId"]; !ok || f.String != "req-123" {
		t.Fatalf("expected requestId field, got %+v", entries[0].Context)
	}
}

func TestLoggerWithTraceNilBase(t *testing.T) {
	if loggerWithTrace(nil, "", "", "") == nil {
		t.Fatal("expected a no-op logger for nil base")
	}
}
