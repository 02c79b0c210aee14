// ============================================================================
// backend/internal/shared/logging.go
// Level filtering for the "INFO:"/"WARN:" prefixed log lines
// ============================================================================

package shared

import (
	"bytes"
	"io"
	"log"
	"os"
)

var levelTags = []string{"DEBUG:", "INFO:", "WARN:", "ERROR:", "FATAL:"}

var levelRank = map[string]int{"debug": 0, "info": 1, "warn": 2, "error": 3}

// levelWriter drops log lines tagged below min. Untagged lines pass through.
type levelWriter struct {
	min int
	out io.Writer
}

// NewLevelWriter filters writes to out by the level tag in each line.
// Unknown levels behave like "info".
func NewLevelWriter(level string, out io.Writer) io.Writer {
	min, ok := levelRank[level]
	if !ok {
		min = levelRank["info"]
	}
	return &levelWriter{min: min, out: out}
}

func (w *levelWriter) Write(p []byte) (int, error) {
	if lvl := lineLevel(p); lvl >= 0 && lvl < w.min {
		return len(p), nil
	}
	return w.out.Write(p)
}

// lineLevel returns the rank of the earliest level tag in p, or -1.
func lineLevel(p []byte) int {
	lvl, at := -1, len(p)
	for rank, tag := range levelTags {
		if i := bytes.Index(p, []byte(tag)); i >= 0 && i < at {
			lvl, at = rank, i
		}
	}
	return lvl
}

// ConfigureLogging applies the configured level to the standard logger.
func ConfigureLogging(config *WebConfig) {
	log.SetOutput(NewLevelWriter(config.LogLevel, os.Stderr))
}
