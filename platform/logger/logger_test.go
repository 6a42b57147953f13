package logger

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"
)

func TestWithContextAddsRequestAndVertical(t *testing.T) {
	var buf bytes.Buffer
	log := NewWithWriter("production", &buf)

	ctx := context.WithValue(context.Background(), RequestIDKey, "req-1")
	ctx = context.WithValue(ctx, VerticalKey, "hvac")
	log.WithContext(ctx).Info("hello")

	var entry map[string]any
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("expected JSON output, got %q", buf.String())
	}
	if entry["request_id"] != "req-1" || entry["vertical"] != "hvac" {
		t.Fatalf("expected request_id and vertical fields, got %v", entry)
	}
}

func TestWithContextEmptyReturnsSameLogger(t *testing.T) {
	log := NewWithWriter("production", &bytes.Buffer{})
	if log.WithContext(context.Background()) != log {
		t.Fatalf("expected the same logger when ctx carries nothing")
	}
}

func TestDevelopmentUsesTextAtDebug(t *testing.T) {
	var buf bytes.Buffer
	log := NewWithWriter("Development", &buf)
	log.Debug("probe")

	if !strings.Contains(buf.String(), "msg=probe") {
		t.Fatalf("expected text debug line, got %q", buf.String())
	}
}

func TestNotificationFailedIsWarning(t *testing.T) {
	var buf bytes.Buffer
	NewWithWriter("production", &buf).NotificationFailed("email", "a@b.co", errors.New("smtp down"))

	out := buf.String()
	if !strings.Contains(out, `"level":"WARN"`) || !strings.Contains(out, `"error":"smtp down"`) {
		t.Fatalf("unexpected log line %q", out)
	}
}
