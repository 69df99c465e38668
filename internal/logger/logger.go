package logger

import (
	"io"
	"log"
	"os"
)

var errorLogger *log.Logger
var outLogger *log.Logger
var debugLogger *log.Logger
var logFile *os.File

func init() {
	outLogger = log.New(os.Stdout, "[INFO] ", log.Flags())
	errorLogger = log.New(os.Stderr, "[ERROR] ", log.Flags())
	debugLogger = log.New(os.Stdout, "[DEBUG] ", log.Flags())
}

// Setup mirrors log output into the given file in addition to the console.
// An empty path keeps console-only logging.
func Setup(path string) error {
	if path == "" {
		return nil
	}

	var err error
	logFile, err = os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return err
	}

	outLogger = log.New(io.MultiWriter(os.Stdout, logFile), "[INFO] ", log.Flags())
	errorLogger = log.New(io.MultiWriter(os.Stderr, logFile), "[ERROR] ", log.Flags())
	debugLogger = log.New(io.MultiWriter(os.Stdout, logFile), "[DEBUG] ", log.Flags())
	return nil
}

func Close() error {
	if logFile == nil {
		return nil
	}
	return logFile.Close()
}

func Out() *log.Logger {
	return outLogger
}

func Err() *log.Logger {
	return errorLogger
}

func Debug() *log.Logger {
	return debugLogger
}
