package logger

import (
	"io"
	"log"
	"os"
)

var (
	Info   *log.Logger
	Warn   *log.Logger
	Debug  *log.Logger
	Error  *log.Logger
	Always *log.Logger // Always logs to file regardless of log level

	// Current log level for filtering
	currentLogLevel string
)

// Until InitWithConfig runs only errors are visible, on stderr.
func init() {
	Info = log.New(io.Discard, "INFO: ", log.Ldate|log.Ltime)
	Warn = log.New(io.Discard, "WARN: ", log.Ldate|log.Ltime|log.Lshortfile)
	Debug = log.New(io.Discard, "DEBUG: ", log.Ldate|log.Ltime|log.Lshortfile)
	Error = log.New(os.Stderr, "ERROR: ", log.Ldate|log.Ltime|log.Lshortfile)
	Always = log.New(io.Discard, "ALWAYS: ", log.Ldate|log.Ltime)
}

func Init() error {
	return InitWithConfig("info", "finsea.log")
}

func InitWithConfig(logLevel, logFilePath string) error {
	currentLogLevel = logLevel

	logFile, err := os.OpenFile(logFilePath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0666)
	if err != nil {
		return err
	}

	nullWriter := io.Discard

	Info = log.New(getWriter("info", logFile, nullWriter), "INFO: ", log.Ldate|log.Ltime)
	Warn = log.New(getWriter("warn", logFile, nullWriter), "WARN: ", log.Ldate|log.Ltime|log.Lshortfile)
	Debug = log.New(getWriter("debug", logFile, nullWriter), "DEBUG: ", log.Ldate|log.Ltime|log.Lshortfile)
	Error = log.New(io.MultiWriter(os.Stderr, logFile), "ERROR: ", log.Ldate|log.Ltime|log.Lshortfile)
	Always = log.New(logFile, "ALWAYS: ", log.Ldate|log.Ltime) // bypasses level filtering

	return nil
}

// getWriter returns the appropriate writer based on log level
func getWriter(level string, activeWriter, disabledWriter io.Writer) io.Writer {
	if shouldLog(level) {
		return activeWriter
	}
	return disabledWriter
}

// shouldLog determines if a log level should be active
func shouldLog(level string) bool {
	levels := map[string]int{
		"error": 0,
		"warn":  1,
		"info":  2,
		"debug": 3,
	}

	currentLevel, exists := levels[currentLogLevel]
	if !exists {
		currentLevel = 2 // default to info
	}

	requiredLevel, exists := levels[level]
	if !exists {
		return false
	}

	return currentLevel >= requiredLevel
}
