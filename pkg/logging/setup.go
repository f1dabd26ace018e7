package logging

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"
)

const (
	filePrefix = "deskshell-"
	fileSuffix = ".log"
)

// Options configures Setup.
type Options struct {
	// Now defaults to time.Now and picks the daily log file name.
	Now func() time.Time
	// Console receives log output unless nil. Pass nil for --no-console-logs.
	Console io.Writer
	// Dir holds the daily log files. Empty disables file logging.
	Dir   string
	Debug bool
}

// Logger is a configured slog.Logger plus the file it writes to.
type Logger struct {
	*slog.Logger
	file *os.File
	Path string
}

// Setup builds a logger writing to the console and to a daily file in opts.Dir.
// A log file that cannot be opened is reported and console logging still works.
func Setup(opts Options) (*Logger, error) {
	level := slog.LevelInfo
	if opts.Debug {
		level = slog.LevelDebug
	}
	hopts := &slog.HandlerOptions{AddSource: true, Level: level}

	var handlers []slog.Handler
	if opts.Console != nil {
		handlers = append(handlers, slog.NewTextHandler(opts.Console, hopts))
	}

	l := &Logger{}
	var fileErr error
	if opts.Dir != "" {
		now := time.Now
		if opts.Now != nil {
			now = opts.Now
		}
		l.Path = filepath.Join(opts.Dir, filePrefix+now().Format("2006-01-02")+fileSuffix)
		f, err := openLogFile(l.Path)
		if err != nil {
			fileErr = err
			l.Path = ""
		} else {
			l.file = f
			handlers = append(handlers, slog.NewTextHandler(f, hopts))
		}
	}

	l.Logger = slog.New(NewMultiHandler(handlers...))
	return l, fileErr
}

func openLogFile(path string) (*os.File, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return nil, fmt.Errorf("create log directory: %w", err)
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o600)
	if err != nil {
		return nil, fmt.Errorf("open log file: %w", err)
	}
	return f, nil
}

// Close closes the log file, if any.
func (l *Logger) Close() error {
	if l.file == nil {
		return nil
	}
	return l.file.Close()
}

// Prune removes log files in dir last modified more than maxAge before now.
// It returns the number of files removed.
func Prune(dir string, maxAge time.Duration, now time.Time) (int, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return 0, nil
		}
		return 0, fmt.Errorf("read log directory: %w", err)
	}

	removed := 0
	var errs []error
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || !strings.HasPrefix(name, filePrefix) || !strings.HasSuffix(name, fileSuffix) {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			errs = append(errs, err)
			continue
		}
		if now.Sub(info.ModTime()) <= maxAge {
			continue
		}
		if err := os.Remove(filepath.Join(dir, name)); err != nil {
			errs = append(errs, err)
			continue
		}
		removed++
	}
	return removed, errors.Join(errs...)
}
