package callback

import (
	"fmt"
	"io"
	"os"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// Logger writes one line per epoch to stdout (unless NoStdout) and,
// optionally, appends the same line to Filename — opened and closed on
// every call so a concurrently-tailed file never sees a partial line.
// Ported from logger.c.
type Logger struct {
	Filename string
	NoStdout bool

	epochCount int
}

var epochLineRe = regexp.MustCompile(`Epoch\s+(\d+)`)

// NewLogger builds a Logger. If filename already exists, epochCount
// resumes from one past the last "Epoch N" it can find on the file's last
// line — matching find_last_epoch_from_logfile exactly, including its
// silent failure mode: any read or parse problem just leaves epochCount
// at 0.
func NewLogger(filename string, noStdout bool) *Logger {
	l := &Logger{Filename: filename, NoStdout: noStdout}
	if filename == "" {
		return l
	}
	if _, err := os.Stat(filename); err != nil {
		return l
	}
	if n, ok := lastEpochFromFile(filename); ok {
		l.epochCount = n + 1
	}
	return l
}

func lastEpochFromFile(filename string) (int, bool) {
	f, err := os.Open(filename)
	if err != nil {
		return 0, false
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return 0, false
	}
	const tailBytes = 255
	start := int64(0)
	if info.Size() > tailBytes {
		start = info.Size() - tailBytes
	}
	if _, err := f.Seek(start, io.SeekStart); err != nil {
		return 0, false
	}
	buf, err := io.ReadAll(f)
	if err != nil {
		return 0, false
	}
	trimmed := strings.TrimRight(string(buf), "\n")
	if trimmed == "" {
		return 0, false
	}
	lines := strings.Split(trimmed, "\n")
	last := lines[len(lines)-1]

	matches := epochLineRe.FindAllStringSubmatch(last, -1)
	if len(matches) == 0 {
		return 0, false
	}
	n, err := strconv.Atoi(matches[len(matches)-1][1])
	if err != nil {
		return 0, false
	}
	return n, true
}

// Run formats "[HH:MM:SS] Epoch NNN name: value ..." for the training
// metrics, followed by "val_name: value ..." pairs when hasValidation,
// then writes it to stdout and/or Filename.
func (l *Logger) Run(metricNames []string, results []float32, hasValidation bool) error {
	var sb strings.Builder
	fmt.Fprintf(&sb, "[%s] Epoch %3d ", time.Now().Format("15:04:05"), l.epochCount)
	l.epochCount++

	n := len(metricNames)
	for i, name := range metricNames {
		fmt.Fprintf(&sb, "%s: %g ", name, results[i])
	}
	if hasValidation {
		for i, name := range metricNames {
			fmt.Fprintf(&sb, "val_%s: %g ", name, results[n+i])
		}
	}
	line := sb.String()

	if !l.NoStdout {
		fmt.Println(line)
	}
	if l.Filename != "" {
		f, err := os.OpenFile(l.Filename, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
		if err == nil {
			fmt.Fprintln(f, line)
			f.Close()
		}
	}
	return nil
}
