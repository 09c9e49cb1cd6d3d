package obs

import (
	"bytes"
	"encoding/json"
	"testing"
)

func TestLogKeepsBaseKeys(t *testing.T) {
	l := Logger()
	orig := l.Writer()
	var buf bytes.Buffer
	l.SetOutput(&buf)
	defer l.SetOutput(orig)

	Info("consent_resolved", map[string]any{"msg": "override", "consent_id": "consent_1"})

	var entry map[string]any
	if err := json.Unmarshal(bytes.TrimSpace(buf.Bytes()), &entry); err != nil {
		t.Fatalf("log is not valid JSON: %v", err)
	}
	if entry["msg"] != "consent_resolved" || entry["level"] != "info" {
		t.Fatalf("base keys overridden: %v", entry)
	}
	if entry["consent_id"] != "consent_1" {
		t.Fatalf("missing field: %v", entry)
	}
	if _, ok := entry["ts"]; !ok {
		t.Fatalf("missing ts: %v", entry)
	}
}

func TestSetLevelFiltersBelowThreshold(t *testing.T) {
	l := Logger()
	orig := l.Writer()
	var buf bytes.Buffer
	l.SetOutput(&buf)
	defer l.SetOutput(orig)
	defer SetLevel("info")

	if !SetLevel("WARN") {
		t.Fatal("warn should be a known level")
	}
	Info("dropped", nil)
	Warn("kept", nil)
	if bytes.Contains(buf.Bytes(), []byte("dropped")) || !bytes.Contains(buf.Bytes(), []byte("kept")) {
		t.Fatalf("unexpected output: %s", buf.String())
	}
	if SetLevel("verbose") {
		t.Fatal("unknown level accepted")
	}
}
