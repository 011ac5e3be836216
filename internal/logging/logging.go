package logging

import (
	"fmt"
	"os"

	"github.com/san-kum/mhsim/internal/config"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"
)

// New builds a logger writing to stderr, plus a rotated JSON file when
// cfg.File is set.
func New(cfg config.LogConfig) (*zap.Logger, error) {
	return NewWithWriter(cfg, zapcore.Lock(os.Stderr))
}

func NewWithWriter(cfg config.LogConfig, console zapcore.WriteSyncer) (*zap.Logger, error) {
	level := zap.NewAtomicLevel()
	if cfg.Level != "" {
		if err := level.UnmarshalText([]byte(cfg.Level)); err != nil {
			return nil, fmt.Errorf("log level %q: %w", cfg.Level, err)
		}
	}

	enc, err := encoder(cfg.Format)
	if err != nil {
		return nil, err
	}
	cores := []zapcore.Core{zapcore.NewCore(enc, console, level)}

	if cfg.File != "" {
		fileEnc, _ := encoder("json")
		w := zapcore.AddSync(&lumberjack.Logger{
			Filename:   cfg.File,
			MaxSize:    cfg.MaxSize,
			MaxBackups: cfg.MaxBackups,
			MaxAge:     cfg.MaxAge,
			Compress:   cfg.Compress,
		})
		cores = append(cores, zapcore.NewCore(fileEnc, w, level))
	}

	return zap.New(zapcore.NewTee(cores...), zap.AddStacktrace(zap.ErrorLevel)).Named("mhsim"), nil
}

func encoder(format string) (zapcore.Encoder, error) {
	ec := zap.NewProductionEncoderConfig()
	ec.TimeKey = "ts"
	ec.EncodeTime = zapcore.ISO8601TimeEncoder

	switch format {
	case "", "console":
		ec.EncodeLevel = zapcore.CapitalColorLevelEncoder
		return zapcore.NewConsoleEncoder(ec), nil
	case "json":
		return zapcore.NewJSONEncoder(ec), nil
	default:
		return nil, fmt.Errorf("unknown log format %q", format)
	}
}
