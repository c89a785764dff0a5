package logger

import (
	"bytes"
	"encoding/json"
	"errors"
	"strings"
	"testing"
)

func decodeLine(t *testing.T, buf *bytes.Buffer) map[string]interface{} {
	t.Helper()
	var entry map[string]interface{}
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("Expected valid JSON output, got error: %v (%q)", err, buf.String())
	}
	return entry
}

func TestNew_Environments(t *testing.T) {
	for _, env := range []string{"development", "production", "test"} {
		logger := New(env)
		if logger == nil {
			t.Fatalf("Expected logger to be created for %s", env)
		}
		if logger.GetZerolog() == nil {
			t.Errorf("Expected zerolog instance to be available for %s", env)
		}
	}
}

func TestNewWithWriter_DevelopmentIsConsole(t *testing.T) {
	var buf bytes.Buffer
	logger := NewWithWriter("development", &buf)

	logger.Debug("sweeping deadlines", map[string]interface{}{"properties": 3})

	output := buf.String()
	if !strings.Contains(output, "sweeping deadlines") {
		t.Error("Expected debug message in development output")
	}
	if strings.HasPrefix(strings.TrimSpace(output), "{") {
		t.Error("Expected console output, got JSON")
	}
}

func TestNewWithWriter_ProductionIsJSON(t *testing.T) {
	var buf bytes.Buffer
	logger := NewWithWriter("production", &buf)

	logger.Info("property created", map[string]interface{}{"property_id": 1})

	entry := decodeLine(t, &buf)
	if entry["message"] != "property created" {
		t.Errorf("Expected message field, got %v", entry["message"])
	}
	if entry["service"] != ServiceName {
		t.Errorf("Expected service %s, got %v", ServiceName, entry["service"])
	}
	if entry["property_id"] != float64(1) {
		t.Errorf("Expected property_id 1, got %v", entry["property_id"])
	}
}

func TestLogLevels(t *testing.T) {
	tests := []struct {
		env       string
		debugSeen bool
		infoSeen  bool
		warnSeen  bool
	}{
		{env: "development", debugSeen: true, infoSeen: true, warnSeen: true},
		{env: "production", debugSeen: false, infoSeen: true, warnSeen: true},
		{env: "test", debugSeen: false, infoSeen: false, warnSeen: true},
	}

	for _, tt := range tests {
		t.Run(tt.env, func(t *testing.T) {
			var buf bytes.Buffer
			logger := NewWithWriter(tt.env, &buf)

			logger.Debug("debug message", nil)
			logger.Info("info message", nil)
			logger.Warn("warn message", nil)
			output := buf.String()

			if got := strings.Contains(output, "debug message"); got != tt.debugSeen {
				t.Errorf("debug visible = %v, want %v", got, tt.debugSeen)
			}
			if got := strings.Contains(output, "info message"); got != tt.infoSeen {
				t.Errorf("info visible = %v, want %v", got, tt.infoSeen)
			}
			if got := strings.Contains(output, "warn message"); got != tt.warnSeen {
				t.Errorf("warn visible = %v, want %v", got, tt.warnSeen)
			}
		})
	}
}

func TestError(t *testing.T) {
	var buf bytes.Buffer
	logger := NewWithWriter("production", &buf)

	logger.Error("journal append failed", errors.New("disk full"), map[string]interface{}{
		"property_id": 7,
	})

	entry := decodeLine(t, &buf)
	if entry["level"] != "error" {
		t.Errorf("Expected error level, got %v", entry["level"])
	}
	if entry["error"] != "disk full" {
		t.Errorf("Expected error field, got %v", entry["error"])
	}
}

func TestWith(t *testing.T) {
	var buf bytes.Buffer
	logger := NewWithWriter("production", &buf)

	logger.With(map[string]interface{}{"component": "sweeper"}).Info("tick", nil)

	entry := decodeLine(t, &buf)
	if entry["component"] != "sweeper" {
		t.Error("Expected log output to contain component field from context")
	}
}

func TestWithRequestID(t *testing.T) {
	var buf bytes.Buffer
	logger := NewWithWriter("production", &buf)

	logger.WithRequestID("req-12345").Info("request received", nil)

	entry := decodeLine(t, &buf)
	if entry["request_id"] != "req-12345" {
		t.Errorf("Expected request_id field, got %v", entry["request_id"])
	}
}

func TestWithAccount(t *testing.T) {
	var buf bytes.Buffer
	logger := NewWithWriter("production", &buf)

	logger.WithAccount("0xalice").Info("investment recorded", nil)

	entry := decodeLine(t, &buf)
	if entry["account"] != "0xalice" {
		t.Errorf("Expected account field, got %v", entry["account"])
	}

	if logger.WithAccount("") != logger {
		t.Error("Expected empty account to return the same logger")
	}
}

func TestNop(t *testing.T) {
	logger := Nop()

	// Must not panic or write anywhere
	logger.Info("discarded", map[string]interface{}{"key": "value"})
	logger.Error("discarded", errors.New("boom"), nil)
}

func TestNilFields(t *testing.T) {
	var buf bytes.Buffer
	logger := NewWithWriter("production", &buf)

	logger.Info("message with nil fields", nil)

	if !strings.Contains(buf.String(), "message with nil fields") {
		t.Error("Expected message to be logged even with nil fields")
	}
}
