// Package logger is the logging surface shared by the library packages.
// Library code only logs at debug level and never requires a logger: a nil
// one is replaced by NoOpLogger.
package logger

import (
	"fmt"

	sdklogging "github.com/Layr-Labs/eigensdk-go/logging"
)

type Logger = sdklogging.Logger

// New returns the zap backed logger for "production" or "development".
func New(environment sdklogging.LogLevel) (Logger, error) {
	switch environment {
	case "":
		environment = sdklogging.Production
	case sdklogging.Production, sdklogging.Development:
	default:
		return nil, fmt.Errorf("unknown log environment %q, expected %s or %s", environment, sdklogging.Production, sdklogging.Development)
	}
	return sdklogging.NewZapLogger(environment)
}

// NoOpLogger discards everything.
type NoOpLogger struct{}

func (l *NoOpLogger) Info(msg string, keysAndValues ...interface{})  {}
func (l *NoOpLogger) Infof(format string, args ...interface{})       {}
func (l *NoOpLogger) Debug(msg string, keysAndValues ...interface{}) {}
func (l *NoOpLogger) Debugf(format string, args ...interface{})      {}
func (l *NoOpLogger) Error(msg string, keysAndValues ...interface{}) {}
func (l *NoOpLogger) Errorf(format string, args ...interface{})      {}
func (l *NoOpLogger) Warn(msg string, keysAndValues ...interface{})  {}
func (l *NoOpLogger) Warnf(format string, args ...interface{})       {}
func (l *NoOpLogger) Fatal(msg string, keysAndValues ...interface{}) {}
func (l *NoOpLogger) Fatalf(format string, args ...interface{})      {}
func (l *NoOpLogger) With(keysAndValues ...interface{}) Logger       { return l }
func (l *NoOpLogger) WithComponent(componentName string) Logger      { return l }
func (l *NoOpLogger) WithName(name string) Logger                    { return l }
func (l *NoOpLogger) WithServiceName(serviceName string) Logger      { return l }
func (l *NoOpLogger) WithHostName(hostName string) Logger            { return l }
func (l *NoOpLogger) Sync() error                                    { return nil }

func NewNoOpLogger() Logger {
	return &NoOpLogger{}
}

// EnsureLogger returns l, or a NoOpLogger when l is nil.
func EnsureLogger(l Logger) Logger {
	if l == nil {
		return NewNoOpLogger()
	}
	return l
}
