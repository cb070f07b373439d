package logger

import (
	"errors"
	"io"
	"os"
	"sync"
	"time"

	json "github.com/goccy/go-json"
)

type Logger interface {
	Info(action, message string, details map[string]any)
	Debug(action, message string, details map[string]any)
	Error(action, message string, details map[string]any, err error)
	WithRequestID(requestID string) Logger
}

type LogEntry struct {
	Timestamp string         `json:"timestamp"`
	Level     string         `json:"level"`
	Service   string         `json:"service"`
	Hostname  string         `json:"hostname"`
	RequestID string         `json:"request_id,omitempty"`
	Action    string         `json:"action"`
	Message   string         `json:"message"`
	Details   map[string]any `json:"details,omitempty"`
	Error     *ErrorInfo     `json:"error,omitempty"`
}

type ErrorInfo struct {
	Msg   string `json:"msg"`
	Cause string `json:"cause,omitempty"`
}

type output struct {
	mu sync.Mutex
	w  io.Writer
}

type jsonLogger struct {
	service   string
	hostname  string
	requestID string
	debug     bool
	out       *output
}

// New writes JSON lines to stdout.
func New(service string, debug bool) Logger {
	return NewWithWriter(service, debug, os.Stdout)
}

func NewWithWriter(service string, debug bool, w io.Writer) Logger {
	hostname, _ := os.Hostname()
	return &jsonLogger{
		service:  service,
		hostname: hostname,
		debug:    debug,
		out:      &output{w: w},
	}
}

// Nop discards everything.
func Nop() Logger {
	return NewWithWriter("nop", false, io.Discard)
}

func (l *jsonLogger) WithRequestID(requestID string) Logger {
	c := *l
	c.requestID = requestID
	return &c
}

func (l *jsonLogger) Info(action, message string, details map[string]any) {
	l.log("INFO", action, message, details, nil)
}

func (l *jsonLogger) Debug(action, message string, details map[string]any) {
	if !l.debug {
		return
	}
	l.log("DEBUG", action, message, details, nil)
}

func (l *jsonLogger) Error(action, message string, details map[string]any, err error) {
	l.log("ERROR", action, message, details, err)
}

func (l *jsonLogger) log(level, action, message string, details map[string]any, err error) {
	entry := LogEntry{
		Timestamp: time.Now().UTC().Format(time.RFC3339Nano),
		Level:     level,
		Service:   l.service,
		Hostname:  l.hostname,
		RequestID: l.requestID,
		Action:    action,
		Message:   message,
		Details:   details,
	}
	if err != nil {
		entry.Error = &ErrorInfo{Msg: err.Error()}
		if errors.Unwrap(err) != nil {
			entry.Error.Cause = rootCause(err).Error()
		}
	}

	l.out.mu.Lock()
	defer l.out.mu.Unlock()
	_ = json.NewEncoder(l.out.w).Encode(entry)
}

// rootCause follows the single-error Unwrap chain to its end.
func rootCause(err error) error {
	for {
		next := errors.Unwrap(err)
		if next == nil {
			return err
		}
		err = next
	}
}
