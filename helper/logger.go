package helper

import (
	"fmt"
	"log"
	"os"
	"time"
)

type LogLevel int

const (
	DEBUG LogLevel = iota
	INFO
	WARN
	ERROR
	FATAL
)

var LogLevelString = map[LogLevel]string{
	DEBUG: "DEBUG",
	INFO:  "INFO",
	WARN:  "WARN",
	ERROR: "ERROR",
	FATAL: "FATAL",
}

// ANSI colors per level
var LogLevelColor = map[LogLevel]string{
	DEBUG: "\033[36m",
	INFO:  "\033[32m",
	WARN:  "\033[33m",
	ERROR: "\033[31m",
	FATAL: "\033[35m",
}

const resetColor = "\033[0m"

// Logger writes leveled, prefixed lines through the standard log package so
// they land in the same stdout+file sink set up by config.SetupLogfile.
type Logger struct {
	prefix string
	level  LogLevel
}

func NewLogger(prefix string) *Logger {
	return &Logger{prefix: prefix, level: INFO}
}

// SetLevel drops messages below level.
func (l *Logger) SetLevel(level LogLevel) {
	l.level = level
}

func (l *Logger) formatMessage(level LogLevel, message string) string {
	timestamp := time.Now().Format("2006-01-02 15:04:05")
	levelStr := LogLevelString[level]
	color := LogLevelColor[level]

	if l.prefix != "" {
		return fmt.Sprintf("%s[%s] %s%s %s[%s]%s %s",
			color, timestamp, levelStr, resetColor,
			color, l.prefix, resetColor, message)
	}

	return fmt.Sprintf("%s[%s] %s%s %s",
		color, timestamp, levelStr, resetColor, message)
}

func (l *Logger) output(level LogLevel, format string, args ...interface{}) {
	if level < l.level {
		return
	}
	log.Println(l.formatMessage(level, fmt.Sprintf(format, args...)))
}

func (l *Logger) Debug(format string, args ...interface{}) { l.output(DEBUG, format, args...) }
func (l *Logger) Info(format string, args ...interface{})  { l.output(INFO, format, args...) }
func (l *Logger) Warn(format string, args ...interface{})  { l.output(WARN, format, args...) }
func (l *Logger) Error(format string, args ...interface{}) { l.output(ERROR, format, args...) }

// Fatal logs and exits the process.
func (l *Logger) Fatal(format string, args ...interface{}) {
	l.output(FATAL, format, args...)
	os.Exit(1)
}

func (l *Logger) Section(title string) {
	log.Println("")
	log.Printf("=== %s ===", title)
}

func (l *Logger) EndSection() {
	log.Println("=== END SECTION ===")
	log.Println("")
}

// Data logs structured data in a readable block.
func (l *Logger) Data(title string, data interface{}) {
	l.Section(title)

	switch v := data.(type) {
	case []interface{}:
		for i, item := range v {
			log.Printf("[%d] %+v", i+1, item)
		}
	case map[string]interface{}:
		for key, value := range v {
			log.Printf("%s: %+v", key, value)
		}
	default:
		log.Printf("%+v", data)
	}

	l.EndSection()
}

var AppLogger = NewLogger("BACKOFFICE")

func Debug(format string, args ...interface{}) {
	AppLogger.Debug(format, args...)
}

func Info(format string, args ...interface{}) {
	AppLogger.Info(format, args...)
}

func Warn(format string, args ...interface{}) {
	AppLogger.Warn(format, args...)
}

func Error(format string, args ...interface{}) {
	AppLogger.Error(format, args...)
}

func Fatal(format string, args ...interface{}) {
	AppLogger.Fatal(format, args...)
}

func Data(title string, data interface{}) {
	AppLogger.Data(title, data)
}
