package logging

import (
	"os"
	"path/filepath"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"
)

// FileLogger is a file-only logger; stdout belongs to the terminal UI.
type FileLogger struct {
	Logger *zap.Logger
	Path   string
	Close  func() error
}

// Nop returns a logger that drops everything.
func Nop() *zap.Logger {
	return zap.NewNop()
}

// NewFileLogger writes JSON lines to a rotating file at path.
func NewFileLogger(path string, debug bool) (FileLogger, error) {
	if path == "" {
		return FileLogger{Logger: Nop(), Close: func() error { return nil }}, nil
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return FileLogger{Logger: Nop(), Close: func() error { return nil }}, err
	}
	rotator := &lumberjack.Logger{
		Filename:   path,
		MaxSize:    10, // megabytes
		MaxBackups: 5,
		MaxAge:     30, // days
		Compress:   true,
	}

	encoderConfig := zap.NewProductionEncoderConfig()
	encoderConfig.TimeKey = "timestamp"
	encoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	encoderConfig.MessageKey = "message"
	encoderConfig.EncodeLevel = zapcore.CapitalLevelEncoder

	level := zap.InfoLevel
	if debug {
		level = zap.DebugLevel
	}
	core := zapcore.NewCore(zapcore.NewJSONEncoder(encoderConfig), zapcore.AddSync(rotator), level)
	logger := zap.New(core, zap.AddCaller())
	return FileLogger{
		Logger: logger,
		Path:   path,
		Close: func() error {
			_ = logger.Sync()
			return rotator.Close()
		},
	}, nil
}

// DefaultPath is the log file location when none is configured.
func DefaultPath() string {
	base, err := os.UserCacheDir()
	if err != nil {
		base = os.TempDir()
	}
	return filepath.Join(base, "reportdesk", "reportdesk.log")
}
