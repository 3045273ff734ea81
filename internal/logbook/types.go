// Package logbook keeps the four bot log streams and pages through them.
package logbook

import "botpanel/internal/errors"

// Type names one log stream.
type Type string

const (
	Received  Type = "received"
	Plugin    Type = "plugin"
	Framework Type = "framework"
	Error     Type = "error"
)

// Types lists every stream in display order.
var Types = []Type{Received, Plugin, Framework, Error}

// DefaultLimit is how many entries the memory store keeps per stream.
const DefaultLimit = 1000

// TimeLayout formats entry timestamps.
const TimeLayout = "2006-01-02 15:04:05"

// Key is the wire key the stream is sent under in initial_data.
func (t Type) Key() string {
	switch t {
	case Received:
		return "received_messages"
	case Plugin:
		return "plugin_logs"
	case Framework:
		return "framework_logs"
	case Error:
		return "error_logs"
	}
	return string(t) + "_logs"
}

// ParseType validates a stream name.
func ParseType(s string) (Type, error) {
	for _, t := range Types {
		if string(t) == s {
			return t, nil
		}
	}
	return "", errors.New(errors.ErrLogs, "unknown log type "+s,
		"Use one of received, plugin, framework, error")
}

// Entry is one log line.
type Entry struct {
	ID         string `json:"id"`
	Timestamp  string `json:"timestamp"`
	Content    string `json:"content"`
	Traceback  string `json:"traceback,omitempty"`
	UserID     string `json:"user_id,omitempty"`
	GroupID    string `json:"group_id,omitempty"`
	PluginName string `json:"plugin_name,omitempty"`
}

// Store persists entries per stream. Page returns entries newest first.
type Store interface {
	Append(t Type, e Entry) error
	Page(t Type, offset, limit int) ([]Entry, int, error)
	Close() error
}
