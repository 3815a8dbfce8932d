package models

import (
	"fmt"
	"time"
)

// LogTimeLayout is the timestamp layout of processing log entries.
const LogTimeLayout = "2006-01-02 15:04:05"

// LogEntry is one timestamped processing log line.
type LogEntry struct {
	Time    time.Time
	Message string
}

// String renders the entry as "[YYYY-MM-DD HH:MM:SS] message".
func (e LogEntry) String() string {
	return fmt.Sprintf("[%s] %s", e.Time.Format(LogTimeLayout), e.Message)
}

// ProcessingLog is an append-only record of what each stage did during a run.
type ProcessingLog struct {
	now     func() time.Time
	entries []LogEntry
	observe func(LogEntry)
}

// NewProcessingLog creates a log stamped by now. A nil clock uses time.Now.
func NewProcessingLog(now func() time.Time) *ProcessingLog {
	if now == nil {
		now = time.Now
	}

	return &ProcessingLog{now: now}
}

// OnAppend registers a callback invoked with every new entry, e.g. to echo it to the console.
func (l *ProcessingLog) OnAppend(fn func(LogEntry)) {
	l.observe = fn
}

// Add appends a message stamped with the current time.
func (l *ProcessingLog) Add(message string) {
	entry := LogEntry{Time: l.now(), Message: message}
	l.entries = append(l.entries, entry)

	if l.observe != nil {
		l.observe(entry)
	}
}

// Addf appends a formatted message.
func (l *ProcessingLog) Addf(format string, args ...any) {
	l.Add(fmt.Sprintf(format, args...))
}

// Entries returns a copy of the entries in insertion order.
func (l *ProcessingLog) Entries() []LogEntry {
	out := make([]LogEntry, len(l.entries))
	copy(out, l.entries)

	return out
}

// Lines returns the rendered entries in insertion order.
func (l *ProcessingLog) Lines() []string {
	lines := make([]string, len(l.entries))
	for i, e := range l.entries {
		lines[i] = e.String()
	}

	return lines
}

// Len returns the number of entries.
func (l *ProcessingLog) Len() int {
	return len(l.entries)
}
