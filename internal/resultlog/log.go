// Package resultlog keeps the timestamped lines shown in the result area.
package resultlog

import (
	"fmt"
	"strings"
	"sync"
	"time"
)

// TimeLayout is the timestamp prefix format (HH:MM:SS)
const TimeLayout = "15:04:05"

// Log is an append-only list of timestamped lines. It is safe for concurrent use.
type Log struct {
	mu    sync.RWMutex
	lines []string
	now   func() time.Time
}

// New creates an empty log using the wall clock
func New() *Log {
	return &Log{now: time.Now}
}

// NewWithClock creates an empty log that reads time from now
func NewWithClock(now func() time.Time) *Log {
	return &Log{now: now}
}

// Append stores line prefixed with the current time
func (l *Log) Append(line string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.lines = append(l.lines, fmt.Sprintf("[%s] %s", l.now().Format(TimeLayout), line))
}

// Appendf formats and appends a line
func (l *Log) Appendf(format string, a ...any) {
	l.Append(fmt.Sprintf(format, a...))
}

// Clear drops every line
func (l *Log) Clear() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.lines = nil
}

// Len returns the number of lines
func (l *Log) Len() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.lines)
}

// Lines returns a copy of the stored lines
func (l *Log) Lines() []string {
	l.mu.RLock()
	defer l.mu.RUnlock()
	out := make([]string, len(l.lines))
	copy(out, l.lines)
	return out
}

// Render returns the whole log, one line per entry
func (l *Log) Render() string {
	l.mu.RLock()
	defer l.mu.RUnlock()
	var b strings.Builder
	for _, line := range l.lines {
		b.WriteString(line)
		b.WriteByte('\n')
	}
	return b.String()
}
