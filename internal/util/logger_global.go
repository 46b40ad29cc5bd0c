package util

import (
	"sync"
)

var (
	globalLogger LoggerInterface
	loggerMu     sync.RWMutex
)

// InitLogger installs the process-wide logger. Calling it again replaces
// the previous logger and closes it.
func InitLogger(logLevel, logFile string, toConsole bool, format LogFormat) error {
	l, err := NewLogger(logLevel, logFile, toConsole, format)
	if err != nil {
		return err
	}
	SetLogger(l)
	return nil
}

// SetLogger swaps the global logger; nil disables logging.
func SetLogger(l LoggerInterface) {
	loggerMu.Lock()
	prev := globalLogger
	globalLogger = l
	loggerMu.Unlock()

	if prev != nil && prev != l {
		prev.Close()
	}
}

// GetLogger returns the global logger, or nil before InitLogger.
func GetLogger() LoggerInterface {
	loggerMu.RLock()
	defer loggerMu.RUnlock()
	return globalLogger
}

func LogInfo(msg string, fields ...Field) {
	if l := GetLogger(); l != nil {
		l.Info(msg, fields...)
	}
}

func LogInfof(format string, args ...interface{}) {
	if l := GetLogger(); l != nil {
		l.Infof(format, args...)
	}
}

func LogDebug(msg string, fields ...Field) {
	if l := GetLogger(); l != nil {
		l.Debug(msg, fields...)
	}
}

func LogDebugf(format string, args ...interface{}) {
	if l := GetLogger(); l != nil {
		l.Debugf(format, args...)
	}
}

func LogWarn(msg string, fields ...Field) {
	if l := GetLogger(); l != nil {
		l.Warn(msg, fields...)
	}
}

func LogWarnf(format string, args ...interface{}) {
	if l := GetLogger(); l != nil {
		l.Warnf(format, args...)
	}
}

func LogError(msg string, fields ...Field) {
	if l := GetLogger(); l != nil {
		l.Error(msg, fields...)
	}
}

func LogErrorf(format string, args ...interface{}) {
	if l := GetLogger(); l != nil {
		l.Errorf(format, args...)
	}
}
