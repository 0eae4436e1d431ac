package logging

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"sync"
	"time"

	"github.com/candelahq/candela/internal/interfaces"
)

// Logger and Field re-export the interfaces contract so packages can take
// a logging.Logger without importing interfaces directly.
type (
	Logger = interfaces.Logger
	Field  = interfaces.Field
)

// StdoutLogger is a tiny, structured logger used during development.
// It implements interfaces.Logger and prints JSON lines to stdout.
type StdoutLogger struct {
	component string
	mu        *sync.Mutex
	out       io.Writer
}

// NewStdoutLogger creates a new simple StdoutLogger. component is optional
// and is carried through With().
func NewStdoutLogger(component string) *StdoutLogger {
	return &StdoutLogger{component: component, mu: &sync.Mutex{}, out: os.Stdout}
}

// NewStderrLogger logs to stderr instead, keeping stdout free for command
// output.
func NewStderrLogger(component string) *StdoutLogger {
	return &StdoutLogger{component: component, mu: &sync.Mutex{}, out: os.Stderr}
}

func (s *StdoutLogger) log(level string, msg string, fields ...Field) {
	type outEntry struct {
		Level     string         `json:"level"`
		Msg       string         `json:"msg"`
		Component string         `json:"component,omitempty"`
		Time      string         `json:"time"`
		Fields    map[string]any `json:"fields,omitempty"`
	}
	m := make(map[string]any)
	for _, f := range fields {
		m[f.Key] = f.Value
	}
	entry := outEntry{
		Level:     level,
		Msg:       msg,
		Component: s.component,
		Time:      time.Now().UTC().Format(time.RFC3339),
		Fields:    m,
	}
	enc, err := json.Marshal(entry)
	s.mu.Lock()
	defer s.mu.Unlock()
	if err != nil {
		// Fallback simple formatting if JSON marshal fails
		fmt.Fprintf(s.out, "%s %s %v\n", level, msg, m)
		return
	}
	fmt.Fprintln(s.out, string(enc))
}

func (s *StdoutLogger) Debug(msg string, fields ...Field) {
	s.log("debug", msg, fields...)
}

func (s *StdoutLogger) Info(msg string, fields ...Field) {
	s.log("info", msg, fields...)
}

func (s *StdoutLogger) Warn(msg string, fields ...Field) {
	s.log("warn", msg, fields...)
}

func (s *StdoutLogger) Error(msg string, fields ...Field) {
	s.log("error", msg, fields...)
}

func (s *StdoutLogger) With(fields ...Field) Logger {
	// Child logger shares the writer and lock; a "component" field renames
	// the child.
	child := &StdoutLogger{component: s.component, mu: s.mu, out: s.out}
	for _, f := range fields {
		if f.Key == "component" {
			if str, ok := f.Value.(string); ok {
				child.component = str
			}
		}
	}
	return child
}
