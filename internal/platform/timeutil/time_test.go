package timeutil

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/fxamacker/cbor/v2"
)

func TestTimeMarshalJSON(t *testing.T) {
	tests := []struct {
		name     string
		input    Time
		expected string
	}{
		{"zero milliseconds", NewTime(time.Date(2024, 1, 15, 10, 30, 0, 0, time.UTC)), `"2024-01-15T10:30:00.000Z"`},
		{"nanoseconds truncated", NewTime(time.Date(2024, 1, 15, 10, 30, 0, 123456789, time.UTC)), `"2024-01-15T10:30:00.123Z"`},
		{"positive offset", NewTime(time.Date(2024, 1, 15, 12, 30, 0, 0, time.FixedZone("CET", 2*60*60))), `"2024-01-15T10:30:00.000Z"`},
		{"negative offset", NewTime(time.Date(2024, 1, 15, 5, 30, 0, 0, time.FixedZone("EST", -5*60*60))), `"2024-01-15T10:30:00.000Z"`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := json.Marshal(tt.input)
			if err != nil {
				t.Fatalf("marshal: %v", err)
			}
			if string(got) != tt.expected {
				t.Fatalf("expected %s, got %s", tt.expected, got)
			}
		})
	}
}

func TestTimeUnmarshalJSON(t *testing.T) {
	want := time.Date(2024, 1, 15, 10, 30, 0, 0, time.UTC)
	for _, in := range []string{`"2024-01-15T10:30:00Z"`, `"2024-01-15T10:30:00.000Z"`, `"2024-01-15T12:30:00+02:00"`} {
		var got Time
		if err := json.Unmarshal([]byte(in), &got); err != nil {
			t.Fatalf("unmarshal %s: %v", in, err)
		}
		if !got.Equal(want) {
			t.Fatalf("unmarshal %s: expected %s, got %s", in, want, got.Time)
		}
	}
}

func TestTimeUnmarshalJSONNullPreservesValue(t *testing.T) {
	orig := NewTime(time.Date(2024, 1, 15, 10, 30, 0, 0, time.UTC))
	got := orig
	if err := json.Unmarshal([]byte("null"), &got); err != nil {
		t.Fatalf("unmarshal null: %v", err)
	}
	if !got.Equal(orig.Time) {
		t.Fatalf("expected value to be preserved, got %s", got.Time)
	}
}

func TestTimeUnmarshalJSONInvalid(t *testing.T) {
	var got Time
	if err := json.Unmarshal([]byte(`"yesterday"`), &got); err == nil {
		t.Fatal("expected error for invalid time")
	}
}

func TestTimeCBORUsesTextForm(t *testing.T) {
	in := NewTime(time.Date(2024, 6, 1, 8, 0, 0, 250000000, time.UTC))
	data, err := cbor.Marshal(in)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}

	var text string
	if err := cbor.Unmarshal(data, &text); err != nil {
		t.Fatalf("expected CBOR text string: %v", err)
	}
	if text != "2024-06-01T08:00:00.250Z" {
		t.Fatalf("unexpected text %q", text)
	}

	var out Time
	if err := cbor.Unmarshal(data, &out); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if !out.Equal(in.Time) {
		t.Fatalf("expected %s, got %s", in.Time, out.Time)
	}
}

func TestFromUnixMilli(t *testing.T) {
	got := FromUnixMilli(1718000000123)
	if got.String() != "2024-06-10T06:13:20.123Z" {
		t.Fatalf("unexpected time %s", got)
	}
}

func TestTimeSchemaIsDateTimeString(t *testing.T) {
	s := Time{}.Schema(nil)
	if s.Type != "string" || s.Format != "date-time" {
		t.Fatalf("unexpected schema %+v", s)
	}
}
