package log

import (
	"bytes"
	"os"
	"strings"
	"testing"
)

func TestLoggerRespectsLevel(t *testing.T) {
	var buf bytes.Buffer
	SetSink(&buf)
	defer SetSink(os.Stderr)

	logger := New("occlusion")

	SetLevel(Warning)
	logger.Infof("building tree with %d faces", 12)
	if buf.Len() != 0 {
		t.Fatalf("Expected info message to be filtered at warning level, got %q", buf.String())
	}

	logger.Warningf("reduced albedo did not converge")
	out := buf.String()
	if !strings.Contains(out, "reduced albedo did not converge") {
		t.Errorf("Expected warning in output, got %q", out)
	}
	if !strings.Contains(out, "[occlusion]") {
		t.Errorf("Expected module name in output, got %q", out)
	}

	buf.Reset()
	SetLevel(Debug)
	logger.Debugf("stack depth %d", 4)
	if !strings.Contains(buf.String(), "stack depth 4") {
		t.Errorf("Expected debug message at debug level, got %q", buf.String())
	}
}
