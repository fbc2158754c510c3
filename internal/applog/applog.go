package applog

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"
)

const (
	fileName    = "tabsave.log"
	maxFileMB   = 5
	maxValueLen = 200
	truncSuffix = "…"
)

var (
	mu     sync.Mutex
	logger = zap.NewNop()
	sink   *lumberjack.Logger
)

// Init opens the log file in dir for appending. Call once at startup.
// The file is rotated to one backup once it exceeds 5 MB.
// Safe to skip: all log calls are no-ops if not initialized.
func Init(dir, level string) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}

	lvl, err := zapcore.ParseLevel(level)
	if err != nil {
		return fmt.Errorf("log level %q: %w", level, err)
	}

	w := &lumberjack.Logger{
		Filename:   filepath.Join(dir, fileName),
		MaxSize:    maxFileMB,
		MaxBackups: 1,
	}

	enc := zap.NewProductionEncoderConfig()
	enc.TimeKey = "ts"
	enc.EncodeTime = zapcore.ISO8601TimeEncoder
	enc.EncodeLevel = zapcore.CapitalLevelEncoder
	enc.CallerKey = ""

	core := zapcore.NewCore(zapcore.NewConsoleEncoder(enc), zapcore.AddSync(w), lvl)

	mu.Lock()
	defer mu.Unlock()
	if sink != nil {
		logger.Sync()
		sink.Close()
	}
	logger = zap.New(core)
	sink = w
	return nil
}

// Close flushes and closes the log file.
func Close() {
	mu.Lock()
	defer mu.Unlock()
	if sink != nil {
		logger.Sync()
		sink.Close()
		sink = nil
	}
	logger = zap.NewNop()
}

// Debug logs a structured event line at debug level.
func Debug(event string, kv ...any) {
	current().Debug(event, fields(kv)...)
}

// Info logs a structured event line.
//
//	applog.Info("session.loaded", "path", path, "tabs", 42)
//	applog.Info("snapshot.created", "rev", 5, "tabs", 42)
func Info(event string, kv ...any) {
	current().Info(event, fields(kv)...)
}

// Error logs an event with an error.
//
//	applog.Error("export.write", err, "path", path)
func Error(event string, err error, kv ...any) {
	current().Error(event, append(fields(kv), zap.Error(err))...)
}

func current() *zap.Logger {
	mu.Lock()
	defer mu.Unlock()
	return logger
}

func fields(kv []any) []zap.Field {
	out := make([]zap.Field, 0, len(kv)/2)
	for i := 0; i+1 < len(kv); i += 2 {
		key := fmt.Sprint(kv[i])
		switch v := kv[i+1].(type) {
		case string:
			out = append(out, zap.String(key, truncate(v)))
		case fmt.Stringer:
			out = append(out, zap.String(key, truncate(v.String())))
		default:
			out = append(out, zap.Any(key, v))
		}
	}
	return out
}

func truncate(s string) string {
	if len(s) > maxValueLen {
		return strings.ToValidUTF8(s[:maxValueLen], "") + truncSuffix
	}
	return s
}
