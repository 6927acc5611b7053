package logger

import (
	"fmt"
	"sync"

	"go.uber.org/zap"
)

var (
	mu          sync.Mutex
	base        *zap.Logger
	serviceName = "default"
)

func SetServiceName(newName string) string {
	mu.Lock()
	defer mu.Unlock()

	oldName := serviceName
	serviceName = newName

	return oldName
}

// Init позволяет подменить логгер (например zap.NewNop в тестах).
func Init(l *zap.Logger) {
	mu.Lock()
	defer mu.Unlock()
	base = l
}

func get() (*zap.Logger, string) {
	mu.Lock()
	defer mu.Unlock()
	if base == nil {
		base, _ = zap.NewProduction(zap.AddCallerSkip(1))
	}
	return base, serviceName
}

func Info(format string, args ...interface{}) {
	l, svc := get()
	l.With(zap.String("service", svc)).Info(fmt.Sprintf(format, args...))
}

func Error(format string, args ...interface{}) {
	l, svc := get()
	l.With(zap.String("service", svc)).Error(fmt.Sprintf(format, args...))
}

func Fatal(format string, args ...interface{}) {
	l, svc := get()
	l.With(zap.String("service", svc)).Fatal(fmt.Sprintf(format, args...))
}
