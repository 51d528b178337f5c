package logger

import (
	"fmt"
	"log"
	"os"
	"strings"
)

var (
	InfoLogger  *log.Logger
	ErrorLogger *log.Logger
	DebugLogger *log.Logger
)

func Init() {
	InfoLogger = log.New(os.Stdout, "INFO: ", log.Ldate|log.Ltime|log.Lshortfile)
	ErrorLogger = log.New(os.Stderr, "ERROR: ", log.Ldate|log.Ltime|log.Lshortfile)
	DebugLogger = log.New(os.Stdout, "DEBUG: ", log.Ldate|log.Ltime|log.Lshortfile)
}

// Info logs a message with optional key-value pairs appended as k=v.
func Info(msg string, kv ...interface{}) {
	InfoLogger.Println(withFields(msg, kv...))
}

func Infof(format string, v ...interface{}) {
	InfoLogger.Printf(format, v...)
}

func Error(msg string, kv ...interface{}) {
	ErrorLogger.Println(withFields(msg, kv...))
}

func Errorf(format string, v ...interface{}) {
	ErrorLogger.Printf(format, v...)
}

func Debug(msg string, kv ...interface{}) {
	DebugLogger.Println(withFields(msg, kv...))
}

func Debugf(format string, v ...interface{}) {
	DebugLogger.Printf(format, v...)
}

func Fatal(msg string) {
	ErrorLogger.Fatal(msg)
}

func Fatalf(format string, v ...interface{}) {
	ErrorLogger.Fatalf(format, v...)
}

func withFields(msg string, kv ...interface{}) string {
	if len(kv) == 0 {
		return msg
	}
	var b strings.Builder
	b.WriteString(msg)
	for i := 0; i+1 < len(kv); i += 2 {
		fmt.Fprintf(&b, " %v=%v", kv[i], kv[i+1])
	}
	if len(kv)%2 != 0 {
		fmt.Fprintf(&b, " %v", kv[len(kv)-1])
	}
	return b.String()
}
