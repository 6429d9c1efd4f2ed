package utils

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/cockroachdb/errors"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Logger writes every record to a per-run file and info and above to the
// console. It is built once in main and handed to each component.
type Logger struct {
	*zap.SugaredLogger
	path string
	file *os.File
}

// NewLogger creates <dir>/easyapply_<timestamp>.log and tees it with a
// colored console sink.
func NewLogger(dir string, runID string, now time.Time) (*Logger, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, errors.Wrapf(err, "create log directory %s", dir)
	}

	path := filepath.Join(dir, fmt.Sprintf("easyapply_%s.log", now.Format("20060102_150405")))
	file, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, errors.Wrapf(err, "open log file %s", path)
	}

	core := zapcore.NewTee(
		zapcore.NewCore(fileEncoder(), zapcore.AddSync(file), zapcore.DebugLevel),
		zapcore.NewCore(consoleEncoder(), zapcore.Lock(os.Stdout), zapcore.InfoLevel),
	)
	zl := zap.New(core, zap.AddCaller()).With(zap.String("run_id", runID))

	return &Logger{SugaredLogger: zl.Sugar(), path: path, file: file}, nil
}

// Path is the file the run is being logged to.
func (l *Logger) Path() string { return l.path }

// Close flushes buffered entries and closes the log file.
func (l *Logger) Close() error {
	_ = l.Sync()
	return l.file.Close()
}

func fileEncoder() zapcore.Encoder {
	cfg := zap.NewDevelopmentEncoderConfig()
	cfg.EncodeTime = zapcore.TimeEncoderOfLayout("2006-01-02 15:04:05.000")
	cfg.EncodeLevel = zapcore.CapitalLevelEncoder
	cfg.EncodeCaller = zapcore.ShortCallerEncoder
	cfg.ConsoleSeparator = " - "
	return zapcore.NewConsoleEncoder(cfg)
}

func consoleEncoder() zapcore.Encoder {
	cfg := zap.NewDevelopmentEncoderConfig()
	cfg.EncodeTime = zapcore.TimeEncoderOfLayout("15:04:05")
	cfg.EncodeLevel = zapcore.CapitalColorLevelEncoder
	cfg.CallerKey = zapcore.OmitKey
	cfg.NameKey = zapcore.OmitKey
	cfg.ConsoleSeparator = " - "
	return zapcore.NewConsoleEncoder(cfg)
}
