package logging_test

import (
	"strings"
	"testing"

	"logsweep/internal/logging"
)

func TestConsoleFormat(t *testing.T) {
	var out strings.Builder
	logger, err := logging.New(logging.Options{Level: "info", Format: "console", Writer: &out})
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	logger.Info("scan complete", "module", "nginx", "matches", 3)
	line := out.String()
	if !strings.Contains(line, "INFO scan complete") {
		t.Fatalf("unexpected line: %q", line)
	}
	if !strings.Contains(line, "module=nginx") || !strings.Contains(line, "matches=3") {
		t.Fatalf("attrs missing: %q", line)
	}
}

func TestLevelFiltering(t *testing.T) {
	var out strings.Builder
	logger, err := logging.New(logging.Options{Level: "warn", Format: "console", Writer: &out})
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	logger.Info("suppressed")
	logger.Warn("kept")
	if strings.Contains(out.String(), "suppressed") {
		t.Fatalf("info line not filtered: %q", out.String())
	}
	if !strings.Contains(out.String(), "kept") {
		t.Fatalf("warn line missing: %q", out.String())
	}
}

func TestJSONFormat(t *testing.T) {
	var out strings.Builder
	logger, err := logging.New(logging.Options{Level: "info", Format: "json", Writer: &out})
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	logger.Info("scan complete", "module", "nginx")
	line := out.String()
	if !strings.Contains(line, `"msg":"scan complete"`) {
		t.Fatalf("unexpected json line: %q", line)
	}
	if !strings.Contains(line, `"level":"info"`) {
		t.Fatalf("level not lowercased: %q", line)
	}
	if !strings.Contains(line, `"ts":`) {
		t.Fatalf("timestamp key not renamed: %q", line)
	}
}

func TestUnsupportedFormat(t *testing.T) {
	var out strings.Builder
	if _, err := logging.New(logging.Options{Format: "yaml", Writer: &out}); err == nil {
		t.Fatal("expected error for unsupported format")
	}
}

func TestQuotedAttrValues(t *testing.T) {
	var out strings.Builder
	logger, err := logging.New(logging.Options{Format: "console", Writer: &out})
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	logger.Info("run", "path", "/var/log/my app.log")
	if !strings.Contains(out.String(), `path="/var/log/my app.log"`) {
		t.Fatalf("value with spaces not quoted: %q", out.String())
	}
}
