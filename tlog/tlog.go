// Package tlog sets up process wide logging to the console and a log file
package tlog

import (
	"bytes"
	"io"
	"os"
	"runtime"
	"strings"
	"sync"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var (
	mu            sync.Mutex
	isInitialized bool
	logger        *zap.Logger
	sugar         *zap.SugaredLogger
	level         = zap.NewAtomicLevelAt(zap.DebugLevel)
)

// Init creates and initializes the logging. Console output is colored on non-windows systems,
// file output is plain text. The zerolog global logger is routed through the same outputs
func Init(fileWriter io.Writer, consoleWriter io.Writer) {
	mu.Lock()
	defer mu.Unlock()
	if isInitialized {
		return
	}
	isInitialized = true
	setup(fileWriter, consoleWriter)
}

func setup(fileWriter io.Writer, consoleWriter io.Writer) {
	consoleConfig := zap.NewDevelopmentEncoderConfig()
	consoleConfig.EncodeLevel = shortLevelEncoder
	if runtime.GOOS != "windows" {
		consoleConfig.EncodeLevel = shortColorLevelEncoder
	}
	consoleConfig.ConsoleSeparator = " "
	consoleConfig.TimeKey = ""

	if consoleWriter == nil {
		consoleWriter = os.Stdout
	}
	cores := []zapcore.Core{
		zapcore.NewCore(zapcore.NewConsoleEncoder(consoleConfig), zapcore.AddSync(consoleWriter), level),
	}

	if fileWriter != nil {
		fileConfig := zap.NewDevelopmentEncoderConfig()
		fileConfig.LevelKey = "L"
		fileConfig.EncodeLevel = shortLevelEncoder
		fileConfig.ConsoleSeparator = " "
		cores = append(cores, zapcore.NewCore(zapcore.NewConsoleEncoder(fileConfig), zapcore.AddSync(fileWriter), level))
	}

	logger = zap.New(zapcore.NewTee(cores...))
	sugar = logger.Sugar()
	log.Logger = zerolog.New(zapWriter{logger: logger})
}

func get() *zap.SugaredLogger {
	mu.Lock()
	defer mu.Unlock()
	if !isInitialized {
		isInitialized = true
		setup(nil, nil)
	}
	return sugar
}

// SetDebug toggles debug level output
func SetDebug(isDebug bool) {
	if isDebug {
		level.SetLevel(zap.DebugLevel)
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
		return
	}
	level.SetLevel(zap.InfoLevel)
	zerolog.SetGlobalLevel(zerolog.InfoLevel)
}

// Debugf uses fmt.Sprintf to log a templated message.
func Debugf(template string, args ...interface{}) {
	get().Debugf(template, args...)
}

// Infof uses fmt.Sprintf to log a templated message.
func Infof(template string, args ...interface{}) {
	get().Infof(template, args...)
}

// Warnf uses fmt.Sprintf to log a templated message.
func Warnf(template string, args ...interface{}) {
	get().Warnf(template, args...)
}

// Errorf uses fmt.Sprintf to log a templated message.
func Errorf(template string, args ...interface{}) {
	get().Errorf(template, args...)
}

// Sync flushes any buffered log entries.
func Sync() error {
	return get().Sync()
}

// zapWriter feeds zerolog events into the zap cores, so both loggers share outputs and level
type zapWriter struct {
	logger *zap.Logger
}

func (w zapWriter) Write(p []byte) (int, error) {
	return w.WriteLevel(zerolog.NoLevel, p)
}

func (w zapWriter) WriteLevel(l zerolog.Level, p []byte) (int, error) {
	ce := w.logger.Check(zapLevel(l), "")
	if ce == nil {
		return len(p), nil
	}
	buf := &bytes.Buffer{}
	cw := zerolog.ConsoleWriter{
		Out:          buf,
		NoColor:      true,
		PartsExclude: []string{zerolog.TimestampFieldName, zerolog.LevelFieldName},
	}
	_, err := cw.Write(p)
	if err != nil {
		return 0, err
	}
	ce.Message = strings.TrimRight(buf.String(), "\n")
	ce.Write()
	return len(p), nil
}

func zapLevel(l zerolog.Level) zapcore.Level {
	switch l {
	case zerolog.TraceLevel, zerolog.DebugLevel:
		return zap.DebugLevel
	case zerolog.WarnLevel:
		return zap.WarnLevel
	case zerolog.ErrorLevel, zerolog.FatalLevel, zerolog.PanicLevel:
		// zerolog exits or panics itself
		return zap.ErrorLevel
	}
	return zap.InfoLevel
}

var (
	levelToColorString = map[zapcore.Level]string{
		zapcore.DebugLevel: "\x1b[32mDBG\x1b[0m", //green
		zapcore.InfoLevel:  "\x1b[94mINF\x1b[0m", //bright blue
		zapcore.WarnLevel:  "\x1b[33mWRN\x1b[0m", //yellow
		zapcore.ErrorLevel: "\x1b[31mERR\x1b[0m", //red
	}
	levelToString = map[zapcore.Level]string{
		zapcore.DebugLevel: "DBG",
		zapcore.InfoLevel:  "INF",
		zapcore.WarnLevel:  "WRN",
		zapcore.ErrorLevel: "ERR",
	}
)

func shortColorLevelEncoder(l zapcore.Level, enc zapcore.PrimitiveArrayEncoder) {
	s, ok := levelToColorString[l]
	if !ok {
		s = levelToColorString[zapcore.ErrorLevel]
	}
	enc.AppendString(s)
}

func shortLevelEncoder(l zapcore.Level, enc zapcore.PrimitiveArrayEncoder) {
	s, ok := levelToString[l]
	if !ok {
		s = levelToString[zapcore.ErrorLevel]
	}
	enc.AppendString(s)
}
