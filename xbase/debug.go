package xbase

import (
	"io"
	"log"
	"os"
)

var (
	debugEnabled = false
	debugLogger  = log.New(os.Stdout, "[xbase] [DEBUG] ", log.LstdFlags)
	errorLogger  = log.New(os.Stdout, "[xbase] [ERROR] ", log.LstdFlags)
)

// Debug toggles verbose internal logging. When out is non-nil both the
// debug and error loggers are redirected to it.
func Debug(enabled bool, out io.Writer) {
	if out != nil {
		debugLogger.SetOutput(out)
		errorLogger.SetOutput(out)
	}
	debugEnabled = enabled
}

func debugf(format string, v ...interface{}) {
	if debugEnabled {
		debugLogger.Printf(format, v...)
	}
}
