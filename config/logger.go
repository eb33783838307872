package config

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/rs/zerolog"
	zlog "github.com/rs/zerolog/log"
)

type Logger struct{}

// Log is the process wide logger, backed by the global zerolog logger.
var Log *Logger

var logLevels = map[string]zerolog.Level{
	"debug": zerolog.DebugLevel,
	"info":  zerolog.InfoLevel,
	"warn":  zerolog.WarnLevel,
	"error": zerolog.ErrorLevel,
	"fatal": zerolog.FatalLevel,
	"panic": zerolog.PanicLevel,
}

func (l *Logger) ZDebug() *zerolog.Event {
	return zlog.Debug()
}

func (l *Logger) ZInfo() *zerolog.Event {
	return zlog.Info()
}

func (l *Logger) ZWarn() *zerolog.Event {
	return zlog.Warn()
}

func (l *Logger) ZError() *zerolog.Event {
	return zlog.Error()
}

func (l *Logger) Debug(msg string, err ...error) {
	withErr(zlog.Debug(), err).Msg(msg)
}

func (l *Logger) Debugf(msg string, args ...interface{}) {
	zlog.Debug().Msg(fmt.Sprintf(msg, args...))
}

func (l *Logger) Info(msg string, err ...error) {
	withErr(zlog.Info(), err).Msg(msg)
}

func (l *Logger) Infof(msg string, args ...interface{}) {
	zlog.Info().Msg(fmt.Sprintf(msg, args...))
}

func (l *Logger) Warn(msg string, err ...error) {
	withErr(zlog.Warn(), err).Msg(msg)
}

func (l *Logger) Warnf(msg string, args ...interface{}) {
	zlog.Warn().Msg(fmt.Sprintf(msg, args...))
}

func (l *Logger) Error(msg string, err ...error) {
	withErr(zlog.Error(), err).Msg(msg)
}

func (l *Logger) Errorf(msg string, args ...interface{}) {
	zlog.Error().Msg(fmt.Sprintf(msg, args...))
}

func (l *Logger) Fatal(msg string, err ...error) {
	withErr(zlog.Fatal(), err).Msg(msg)
}

func (l *Logger) Fatalf(msg string, args ...interface{}) {
	zlog.Fatal().Msg(fmt.Sprintf(msg, args...))
}

func withErr(event *zerolog.Event, err []error) *zerolog.Event {
	if len(err) == 1 {
		return event.Err(err[0])
	}
	return event
}

func DoConfigureLogger(logPath string, logLevel string, prettyLogging bool) {
	writers := io.MultiWriter(os.Stdout)
	if len(logPath) > 0 {
		file, err := openLogFile(logPath)
		if err != nil {
			panic(err)
		}
		writers = io.MultiWriter(os.Stdout, file)
	}

	if prettyLogging {
		zlog.Logger = zlog.Output(zerolog.ConsoleWriter{Out: writers})
	} else {
		zlog.Logger = zlog.Output(writers)
	}

	level, ok := logLevels[strings.ToLower(logLevel)]
	if !ok {
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)
}

func openLogFile(logPath string) (*os.File, error) {
	if _, err := os.Stat(logPath); os.IsNotExist(err) {
		return os.Create(logPath)
	}
	return os.OpenFile(logPath, os.O_APPEND|os.O_WRONLY, os.ModeAppend)
}
