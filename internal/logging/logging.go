// Package logging builds the application logger: a console writer and an
// optional timestamped log file, each with its own level.
package logging

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
)

const (
	dirPerm  = 0o750
	filePerm = 0o600
)

// Options configures New
type Options struct {
	ConsoleLevel string
	FileLevel    string
	Directory    string // empty disables the log file
	Prefix       string
	Format       string // "text" or "json"
	Console      io.Writer
	Now          func() time.Time
}

// Logger is a logrus logger that owns its log file
type Logger struct {
	*logrus.Logger
	FilePath string
	file     *os.File
}

// New creates a logger. Entries are routed through one hook per sink so the
// console and the file can filter at different levels; the logger itself
// runs at the more verbose of the two.
func New(opts Options) (*Logger, error) {
	consoleLevel, err := ParseLevel(opts.ConsoleLevel)
	if err != nil {
		return nil, err
	}

	console := opts.Console
	if console == nil {
		console = os.Stderr
	}
	now := opts.Now
	if now == nil {
		now = time.Now
	}

	base := logrus.New()
	base.SetOutput(io.Discard)
	base.AddHook(newWriterHook(console, consoleLevel, formatter(opts.Format)))
	level := consoleLevel

	l := &Logger{Logger: base}

	if opts.Directory != "" {
		fileLevel, err := ParseLevel(opts.FileLevel)
		if err != nil {
			return nil, err
		}
		if err := os.MkdirAll(opts.Directory, dirPerm); err != nil {
			return nil, fmt.Errorf("failed to create log directory %s: %w", opts.Directory, err)
		}

		name := fmt.Sprintf("%s%s.log", opts.Prefix, now().Format("20060102_150405"))
		path := filepath.Join(opts.Directory, name)
		f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, filePerm)
		if err != nil {
			return nil, fmt.Errorf("failed to open log file %s: %w", path, err)
		}

		base.AddHook(newWriterHook(f, fileLevel, &logrus.TextFormatter{
			FullTimestamp:    true,
			DisableColors:    true,
			DisableQuote:     true,
			QuoteEmptyFields: true,
		}))
		if fileLevel > level {
			level = fileLevel
		}
		l.FilePath = path
		l.file = f
	}

	base.SetLevel(level)
	return l, nil
}

// Close releases the log file
func (l *Logger) Close() error {
	if l.file == nil {
		return nil
	}
	err := l.file.Close()
	l.file = nil
	return err
}

// ParseLevel accepts logrus level names as well as WARNING and CRITICAL
func ParseLevel(name string) (logrus.Level, error) {
	switch strings.ToUpper(strings.TrimSpace(name)) {
	case "":
		return logrus.InfoLevel, nil
	case "WARNING":
		return logrus.WarnLevel, nil
	case "CRITICAL":
		return logrus.ErrorLevel, nil
	}
	level, err := logrus.ParseLevel(name)
	if err != nil {
		return logrus.InfoLevel, fmt.Errorf("invalid log level %q: %w", name, err)
	}
	return level, nil
}

// Discard returns a logger that drops everything, for tests and callers
// that do not care about logs
func Discard() *logrus.Logger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l
}

func formatter(format string) logrus.Formatter {
	if format == "json" {
		return &logrus.JSONFormatter{}
	}
	return &logrus.TextFormatter{FullTimestamp: true}
}

type writerHook struct {
	mu        sync.Mutex
	w         io.Writer
	levels    []logrus.Level
	formatter logrus.Formatter
}

func newWriterHook(w io.Writer, max logrus.Level, f logrus.Formatter) *writerHook {
	return &writerHook{
		w:         w,
		levels:    logrus.AllLevels[:max+1],
		formatter: f,
	}
}

func (h *writerHook) Levels() []logrus.Level {
	return h.levels
}

func (h *writerHook) Fire(entry *logrus.Entry) error {
	line, err := h.formatter.Format(entry)
	if err != nil {
		return err
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	_, err = h.w.Write(line)
	return err
}
