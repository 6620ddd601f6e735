package logging

import (
	"errors"
	"fmt"
	"os"
	"sync"
)

// LoggerManager раздает файловые логгеры компонентов с общими уровнями
type LoggerManager struct {
	mu           sync.Mutex
	loggers      map[string]*Logger
	consoleLevel LogLevel
	fileLevel    LogLevel
}

var (
	globalManager *LoggerManager
	managerOnce   sync.Once
)

// NewLoggerManager создает менеджер с уровнями INFO для консоли и TRACE для файла
func NewLoggerManager() *LoggerManager {
	return &LoggerManager{
		loggers:      make(map[string]*Logger),
		consoleLevel: INFO,
		fileLevel:    TRACE,
	}
}

// GetLoggerManager возвращает глобальный менеджер логгеров
func GetLoggerManager() *LoggerManager {
	managerOnce.Do(func() {
		globalManager = NewLoggerManager()
	})
	return globalManager
}

// Configure задает уровни для уже созданных и будущих логгеров компонентов
func (lm *LoggerManager) Configure(console, file LogLevel) {
	lm.mu.Lock()
	defer lm.mu.Unlock()

	lm.consoleLevel, lm.fileLevel = console, file
	for _, l := range lm.loggers {
		l.SetLevels(console, file)
	}
}

// Logger возвращает логгер компонента, создавая файл при первом обращении.
// Если файл создать не удалось, возвращается консольный логгер.
func (lm *LoggerManager) Logger(component string) *Logger {
	lm.mu.Lock()
	defer lm.mu.Unlock()

	if l, ok := lm.loggers[component]; ok {
		return l
	}

	l, err := NewLogger(component)
	if err != nil {
		Warn("⚠️ Логгер %s без файла: %v", component, err)
		l = NewWriterLogger(component, os.Stdout, nil)
	}
	l.SetLevels(lm.consoleLevel, lm.fileLevel)
	lm.loggers[component] = l
	return l
}

// CloseAll закрывает файлы всех логгеров и забывает их
func (lm *LoggerManager) CloseAll() error {
	lm.mu.Lock()
	defer lm.mu.Unlock()

	var errs []error
	for component, l := range lm.loggers {
		if err := l.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close logger %s: %w", component, err))
		}
	}
	lm.loggers = make(map[string]*Logger)
	return errors.Join(errs...)
}

// GetComponentLogger возвращает логгер компонента из глобального менеджера
func GetComponentLogger(component string) *Logger {
	return GetLoggerManager().Logger(component)
}

// GetAPILogger возвращает логгер отладочного API
func GetAPILogger() *Logger {
	return GetComponentLogger("api")
}
