package logger

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"runtime"
	"sort"
	"strings"
	"sync"
	"time"
)

// DefaultComponent is the component name stamped on every entry unless overridden.
const DefaultComponent = "execmanifest"

// Level represents the severity level of log messages
type Level int

const (
	TraceLevel Level = iota
	DebugLevel
	InfoLevel
	WarnLevel
	ErrorLevel
)

var levelNames = [...]string{"TRACE", "DEBUG", "INFO", "WARN", "ERROR"}

// ANSI colors per level; NO-OP is tagged magenta.
var levelColors = [...]string{"37", "36", "32", "33", "31"}

const noOpColor = "35"

// String returns the string representation of the level
func (l Level) String() string {
	if l < TraceLevel || l > ErrorLevel {
		return "UNKNOWN"
	}
	return levelNames[l]
}

// ParseLevel maps a --log-level value to a Level. Unknown values report false
// and resolve to InfoLevel.
func ParseLevel(s string) (Level, bool) {
	name := strings.ToUpper(strings.TrimSpace(s))
	if name == "WARNING" {
		name = "WARN"
	}
	for i, n := range levelNames {
		if n == name {
			return Level(i), true
		}
	}
	return InfoLevel, false
}

// Config holds the logger configuration
type Config struct {
	Level     Level
	UseColor  bool
	JSON      bool
	Component string
	NoOp      bool
	// Output defaults to os.Stderr. Stdout is reserved for usage text and --no-op documents.
	Output io.Writer
}

// Logger writes one line per entry to its output.
type Logger struct {
	config Config

	mu  sync.Mutex
	out io.Writer
}

var defaultLogger *Logger

// New builds a Logger without installing it as the default.
func New(config Config) *Logger {
	if config.Component == "" {
		config.Component = DefaultComponent
	}
	out := config.Output
	if out == nil {
		out = os.Stderr
	}
	return &Logger{config: config, out: out}
}

// Initialize sets up the default logger
func Initialize(config Config) error {
	defaultLogger = New(config)
	return nil
}

// std returns the default logger, creating an info-level stderr logger when
// Initialize has not run yet (e.g. a failure during flag parsing).
func std() *Logger {
	if defaultLogger == nil {
		defaultLogger = New(Config{Level: InfoLevel})
	}
	return defaultLogger
}

// Enabled reports whether entries at level would be written.
func (l *Logger) Enabled(level Level) bool {
	return level >= l.config.Level
}

// SetOutput redirects the logger.
func (l *Logger) SetOutput(w io.Writer) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.out = w
}

// Log writes a log message
func (l *Logger) Log(level Level, message string, fields ...Field) {
	l.log(level, message, fields)
}

func (l *Logger) log(level Level, message string, fields []Field) {
	if !l.Enabled(level) {
		return
	}

	entry := LogEntry{
		Time:      time.Now(),
		Level:     level.String(),
		Message:   message,
		Component: l.config.Component,
	}

	// Debug and trace lines point at the caller.
	if level <= DebugLevel {
		if _, file, line, ok := runtime.Caller(2); ok {
			entry.File = filepath.Base(file)
			entry.Line = line
		}
	}

	if len(fields) > 0 {
		entry.Fields = make(map[string]interface{}, len(fields))
		for _, field := range fields {
			entry.Fields[field.Key] = field.Value
		}
	}

	var line string
	if l.config.JSON {
		encoded, err := json.Marshal(entry)
		if err != nil {
			encoded = []byte(fmt.Sprintf(`{"level":%q,"message":%q}`, entry.Level, message))
		}
		line = string(encoded)
	} else {
		line = l.formatPretty(level, entry)
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	_, _ = io.WriteString(l.out, line+"\n")
}

func (l *Logger) paint(color, text string) string {
	if !l.config.UseColor {
		return text
	}
	return "\033[" + color + "m" + text + "\033[0m"
}

// formatPretty renders "time [LEVEL] component: [NO-OP] message {k=v, ...} (file:line)".
func (l *Logger) formatPretty(level Level, entry LogEntry) string {
	var b strings.Builder

	b.WriteString(entry.Time.Format("2006-01-02 15:04:05"))

	name := entry.Level
	if level >= TraceLevel && level <= ErrorLevel {
		name = l.paint(levelColors[level], name)
	}
	fmt.Fprintf(&b, " [%s]", name)

	if entry.Component != "" {
		fmt.Fprintf(&b, " %s:", entry.Component)
	}
	if l.config.NoOp {
		b.WriteString(" " + l.paint(noOpColor, "[NO-OP]"))
	}
	b.WriteString(" " + entry.Message)

	if len(entry.Fields) > 0 {
		keys := make([]string, 0, len(entry.Fields))
		for k := range entry.Fields {
			keys = append(keys, k)
		}
		sort.Strings(keys)

		b.WriteString(" {")
		for i, k := range keys {
			if i > 0 {
				b.WriteString(", ")
			}
			fmt.Fprintf(&b, "%s=%v", k, entry.Fields[k])
		}
		b.WriteString("}")
	}

	if entry.File != "" {
		fmt.Fprintf(&b, " (%s:%d)", entry.File, entry.Line)
	}

	return b.String()
}

// Field represents a structured field in a log entry
type Field struct {
	Key   string
	Value interface{}
}

// String creates a string field
func String(key, value string) Field {
	return Field{Key: key, Value: value}
}

// Int creates an int field
func Int(key string, value int) Field {
	return Field{Key: key, Value: value}
}

// Bool creates a bool field
func Bool(key string, value bool) Field {
	return Field{Key: key, Value: value}
}

// Path creates the conventional "path" field for the manifest being processed
func Path(value string) Field {
	return Field{Key: "path", Value: value}
}

// Err creates an error field
func Err(err error) Field {
	if err == nil {
		return Field{Key: "error", Value: "<nil>"}
	}
	return Field{Key: "error", Value: err.Error()}
}

// LogEntry is the JSON shape of one line.
type LogEntry struct {
	Time      time.Time              `json:"time"`
	Level     string                 `json:"level"`
	Message   string                 `json:"message"`
	Component string                 `json:"component,omitempty"`
	File      string                 `json:"file,omitempty"`
	Line      int                    `json:"line,omitempty"`
	Fields    map[string]interface{} `json:"fields,omitempty"`
}

// Enabled reports whether the default logger writes entries at level.
func Enabled(level Level) bool {
	return std().Enabled(level)
}

func Trace(message string, fields ...Field) {
	std().log(TraceLevel, message, fields)
}

func Debug(message string, fields ...Field) {
	std().log(DebugLevel, message, fields)
}

func Info(message string, fields ...Field) {
	std().log(InfoLevel, message, fields)
}

func Warn(message string, fields ...Field) {
	std().log(WarnLevel, message, fields)
}

func Error(message string, fields ...Field) {
	std().log(ErrorLevel, message, fields)
}

// SetOutput sets the output writer for the default logger
func SetOutput(w io.Writer) {
	std().SetOutput(w)
}
