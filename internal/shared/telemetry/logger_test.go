package telemetry

import (
	"bytes"
	"encoding/json"
	"errors"
	"os"
	"testing"
)

func TestInfoWritesJSONLine(t *testing.T) {
	var buf bytes.Buffer
	SetOutput(&buf)
	t.Cleanup(func() { SetOutput(os.Stdout) })

	Info("wallpaper.created", map[string]any{
		"wallpaper_id": "w-1",
		"tags":         3,
	})

	payload := decodeLine(t, &buf)
	if payload["level"] != "info" || payload["msg"] != "wallpaper.created" {
		t.Fatalf("unexpected level/msg: %v %v", payload["level"], payload["msg"])
	}
	if payload["wallpaper_id"] != "w-1" {
		t.Fatalf("expected wallpaper_id=w-1, got %v", payload["wallpaper_id"])
	}
	if payload["tags"] != float64(3) {
		t.Fatalf("expected tags=3, got %v", payload["tags"])
	}
	if payload["ts"] == nil || payload["ts"] == "" {
		t.Fatalf("expected ts to be set")
	}
}

func TestErrorFlattensErrValues(t *testing.T) {
	var buf bytes.Buffer
	SetOutput(&buf)
	t.Cleanup(func() { SetOutput(os.Stdout) })

	Error("object.save.failed", map[string]any{"err": errors.New("bucket missing")})

	payload := decodeLine(t, &buf)
	if payload["level"] != "error" {
		t.Fatalf("expected level=error, got %v", payload["level"])
	}
	if payload["err"] != "bucket missing" {
		t.Fatalf("expected err flattened to its message, got %v", payload["err"])
	}
}

func decodeLine(t *testing.T, buf *bytes.Buffer) map[string]any {
	t.Helper()
	var payload map[string]any
	if err := json.Unmarshal(bytes.TrimSpace(buf.Bytes()), &payload); err != nil {
		t.Fatalf("decode log line %q: %v", buf.String(), err)
	}
	return payload
}
