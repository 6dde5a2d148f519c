package logging

import (
	"io"
	"os"
	"strings"

	"github.com/natefinch/lumberjack"
	"go.elastic.co/ecszap"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// LOG_LEVEL values with a special meaning. Any other value is parsed as a
// zap level ("debug", "info", ...) with the development encoder.
const (
	LOG_LEVEL_PROD = "prod"
	LOG_LEVEL_ELK  = "elk"
)

type WriteSyncer struct {
	io.Writer
}

func (ws WriteSyncer) Sync() error {
	return nil
}

func GetWriteSyncer(logName string) zapcore.WriteSyncer {
	var ioWriter = &lumberjack.Logger{
		Filename:   logName,
		MaxSize:    20, // MB
		MaxBackups: 5,
		MaxAge:     28, // days
		LocalTime:  true,
	}
	return WriteSyncer{ioWriter}
}

// SetupLogger builds the process logger. Errors go to stderr and everything
// else to stdout; when fileName is set, JSON lines are also written to a
// rotating file.
func SetupLogger(level, fileName string) *zap.Logger {
	level = strings.ToLower(strings.TrimSpace(level))
	if level == LOG_LEVEL_ELK {
		return SetupLoggerELK(os.Stdout)
	}

	var config zap.Config
	minLevel := zapcore.DebugLevel
	if level == LOG_LEVEL_PROD {
		config = zap.NewProductionConfig()
		config.EncoderConfig = zap.NewProductionEncoderConfig()
		config.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
		minLevel = zapcore.InfoLevel
	} else {
		config = zap.NewDevelopmentConfig()
		config.EncoderConfig = zap.NewDevelopmentEncoderConfig()
		if l, err := zapcore.ParseLevel(level); err == nil {
			minLevel = l
		}
	}

	highPriority := zap.LevelEnablerFunc(func(lvl zapcore.Level) bool {
		return lvl >= zapcore.ErrorLevel && lvl >= minLevel
	})
	lowPriority := zap.LevelEnablerFunc(func(lvl zapcore.Level) bool {
		return lvl < zapcore.ErrorLevel && lvl >= minLevel
	})

	configConsole := config
	configConsole.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	consoleEncoder := zapcore.NewConsoleEncoder(configConsole.EncoderConfig)

	cores := []zapcore.Core{
		zapcore.NewCore(consoleEncoder, zapcore.Lock(os.Stderr), highPriority),
		zapcore.NewCore(consoleEncoder, zapcore.Lock(os.Stdout), lowPriority),
	}
	if fileName != "" {
		fileEncoder := zapcore.NewJSONEncoder(config.EncoderConfig)
		logFile := zapcore.AddSync(GetWriteSyncer(fileName))
		cores = append(cores,
			zapcore.NewCore(fileEncoder, logFile, highPriority),
			zapcore.NewCore(fileEncoder, logFile, lowPriority),
		)
	}

	return zap.New(zapcore.NewTee(cores...), zap.AddCaller())
}

// SetupLoggerELK writes ECS-formatted JSON for Elastic ingestion.
func SetupLoggerELK(w io.Writer) *zap.Logger {
	encoderConfig := ecszap.EncoderConfig{
		EncodeLevel:    zapcore.CapitalLevelEncoder,
		EncodeDuration: zapcore.MillisDurationEncoder,
		EncodeCaller:   ecszap.FullCallerEncoder,
	}
	core := ecszap.NewCore(encoderConfig, zapcore.AddSync(w), zap.DebugLevel)
	return zap.New(core, zap.AddCaller())
}
