// Package logging builds the zap logger shared across the service.
package logging

import (
	"os"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"
)

// Init returns a logger writing human-readable output to stdout and, when
// filePath is non-empty, JSON to a rotating file.
func Init(level string, filePath string) (*zap.Logger, error) {
	lvl, err := zapcore.ParseLevel(level)
	if err != nil {
		lvl = zapcore.InfoLevel
	}

	consoleConfig := zap.NewDevelopmentEncoderConfig()
	consoleConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	consoleCore := zapcore.NewCore(
		zapcore.NewConsoleEncoder(consoleConfig),
		zapcore.AddSync(os.Stdout),
		lvl,
	)

	if filePath == "" {
		return zap.New(consoleCore, zap.AddCaller()), nil
	}

	fileConfig := zapcore.EncoderConfig{
		MessageKey:   "message",
		LevelKey:     "level",
		TimeKey:      "time",
		CallerKey:    "caller",
		EncodeLevel:  zapcore.CapitalLevelEncoder,
		EncodeTime:   zapcore.ISO8601TimeEncoder,
		EncodeCaller: zapcore.ShortCallerEncoder,
	}
	fileCore := zapcore.NewCore(
		zapcore.NewJSONEncoder(fileConfig),
		zapcore.AddSync(&lumberjack.Logger{
			Filename:   filePath,
			MaxSize:    10, // megabytes
			MaxBackups: 3,
			MaxAge:     7, // days
			Compress:   true,
		}),
		lvl,
	)

	return zap.New(zapcore.NewTee(consoleCore, fileCore), zap.AddCaller()), nil
}
