package logging

import (
	"os"
	"strings"
	"sync/atomic"

	"github.com/sirupsen/logrus"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var logger atomic.Pointer[zap.SugaredLogger]

func init() {
	logger.Store(zap.NewNop().Sugar())
}

// Setup configures the global logger.
// level is one of DEBUG, INFO, WARN, ERROR (default INFO); format is "json"
// (default) or "console". ERROR-level logs automatically include a stack trace.
func Setup(level, format string) {
	cfg := zap.NewProductionConfig()
	if strings.EqualFold(format, "console") {
		cfg = zap.NewDevelopmentConfig()
	}
	cfg.Level = zap.NewAtomicLevelAt(parseLevel(level))
	cfg.EncoderConfig.TimeKey = "ts"
	cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	cfg.OutputPaths = []string{"stdout"}
	cfg.ErrorOutputPaths = []string{"stderr"}
	cfg.Sampling = nil

	l, err := cfg.Build(zap.AddCaller(), zap.AddCallerSkip(1), zap.AddStacktrace(zapcore.ErrorLevel))
	if err != nil {
		l = zap.NewExample()
	}
	Replace(l)
}

// Replace swaps the global logger. Tests use it with zaptest/observer cores.
func Replace(l *zap.Logger) {
	logger.Store(l.Sugar())
	zap.ReplaceGlobals(l)
}

func parseLevel(s string) zapcore.Level {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "DEBUG":
		return zapcore.DebugLevel
	case "WARN", "WARNING":
		return zapcore.WarnLevel
	case "ERROR":
		return zapcore.ErrorLevel
	default:
		return zapcore.InfoLevel
	}
}

// L returns the global sugared logger.
func L() *zap.SugaredLogger {
	return logger.Load()
}

func Debug(msg string, kv ...any) { L().Debugw(msg, kv...) }
func Info(msg string, kv ...any)  { L().Infow(msg, kv...) }
func Warn(msg string, kv ...any)  { L().Warnw(msg, kv...) }
func Error(msg string, kv ...any) { L().Errorw(msg, kv...) }

// Sync flushes buffered entries.
func Sync() {
	_ = L().Sync()
}

// Fatal logs at Error level and exits with code 1.
func Fatal(msg string, kv ...any) {
	L().Errorw(msg, kv...)
	Sync()
	os.Exit(1)
}

// NewLogrus returns a logrus logger that honours the same LOG_LEVEL and
// LOG_FORMAT as Setup. The Supabase client logs through it.
func NewLogrus(level, format string) *logrus.Logger {
	l := logrus.New()
	l.SetOutput(os.Stdout)
	if strings.EqualFold(format, "console") {
		l.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	} else {
		l.SetFormatter(&logrus.JSONFormatter{})
	}
	// zap と同じ規則で解釈する（WARNING も可）
	switch parseLevel(level) {
	case zapcore.DebugLevel:
		l.SetLevel(logrus.DebugLevel)
	case zapcore.WarnLevel:
		l.SetLevel(logrus.WarnLevel)
	case zapcore.ErrorLevel:
		l.SetLevel(logrus.ErrorLevel)
	default:
		l.SetLevel(logrus.InfoLevel)
	}
	return l
}
