package logger

import (
	"os"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"
)

var instance *zap.Logger = func() *zap.Logger {
	log, err := zap.NewProduction(zap.AddCallerSkip(1))
	if err != nil {
		panic(err)
	}
	return log
}()

type Config struct {
	Level    string
	Filename string
}

// Init replaces the default production logger. When Filename is set, entries
// are written to stdout and to a rotating file.
func Init(cfg Config) error {
	level := zap.NewAtomicLevel()
	if cfg.Level != "" {
		if err := level.UnmarshalText([]byte(cfg.Level)); err != nil {
			return err
		}
	}

	encoderConfig := zap.NewProductionEncoderConfig()
	encoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder

	ws := zapcore.AddSync(os.Stdout)
	if cfg.Filename != "" {
		ws = zapcore.NewMultiWriteSyncer(ws, zapcore.AddSync(&lumberjack.Logger{
			Filename:   cfg.Filename,
			MaxSize:    100,
			MaxBackups: 3,
			MaxAge:     28,
		}))
	}

	instance = zap.New(zapcore.NewCore(zapcore.NewJSONEncoder(encoderConfig), ws, level), zap.AddCaller(), zap.AddCallerSkip(1))
	return nil
}

// L exposes the underlying logger for libraries that take their own logger.
func L() *zap.Logger {
	return instance.WithOptions(zap.AddCallerSkip(-1))
}

func Sync() {
	_ = instance.Sync()
}

func Fatal(msg string, err error, fields ...zap.Field) {
	instance.Fatal(msg, append(fields, zap.Error(err))...)
}

func Error(msg string, err error, fields ...zap.Field) {
	instance.Error(msg, append(fields, zap.Error(err))...)
}

func Warn(msg string, fields ...zap.Field) {
	instance.Warn(msg, fields...)
}

func Info(msg string, fields ...zap.Field) {
	instance.Info(msg, fields...)
}
