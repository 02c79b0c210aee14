package shared

import (
	"bytes"
	"log"
	"strings"
	"testing"
)

func TestLevelWriter(t *testing.T) {
	tests := []struct {
		level string
		want  []string
		drop  []string
	}{
		{"debug", []string{"DEBUG: a", "INFO: b", "WARN: c"}, nil},
		{"info", []string{"INFO: b", "WARN: c", "plain line"}, []string{"DEBUG: a"}},
		{"warn", []string{"WARN: c", "ERROR: d", "plain line"}, []string{"DEBUG: a", "INFO: b"}},
		{"error", []string{"ERROR: d", "FATAL: e"}, []string{"INFO: b", "WARN: c"}},
	}

	for _, tc := range tests {
		t.Run(tc.level, func(t *testing.T) {
			var buf bytes.Buffer
			logger := log.New(NewLevelWriter(tc.level, &buf), "", log.LstdFlags)
			for _, line := range []string{"DEBUG: a", "INFO: b", "WARN: c", "ERROR: d", "FATAL: e", "plain line"} {
				logger.Println(line)
			}

			out := buf.String()
			for _, line := range tc.want {
				if !strings.Contains(out, line) {
					t.Errorf("Expected %q in output, got %q", line, out)
				}
			}
			for _, line := range tc.drop {
				if strings.Contains(out, line) {
					t.Errorf("Expected %q to be dropped, got %q", line, out)
				}
			}
		})
	}

	t.Run("Earliest tag decides", func(t *testing.T) {
		var buf bytes.Buffer
		w := NewLevelWriter("warn", &buf)
		w.Write([]byte("INFO: retry after WARN: earlier\n"))
		if buf.Len() != 0 {
			t.Errorf("Expected INFO line dropped, got %q", buf.String())
		}
	})
}
