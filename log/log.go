package log

import (
	"io"
	"log"
	"os"
)

var (
	Trace   = log.New(io.Discard, "TRACE: ", log.Ldate|log.Ltime|log.Lshortfile)
	Info    = log.New(os.Stdout, "", 0)
	Warning = log.New(os.Stdout, "WARNING: ", log.Ldate|log.Ltime|log.Lshortfile)
	Error   = log.New(os.Stderr, "ERROR: ", log.Ldate|log.Ltime|log.Lshortfile)
)

func Init(
	traceHandle io.Writer,
	infoHandle io.Writer,
	warningHandle io.Writer,
	errorHandle io.Writer) {

	Trace = log.New(traceHandle, "TRACE: ", log.Ldate|log.Ltime|log.Lshortfile)
	Info = log.New(infoHandle, "", 0)
	Warning = log.New(warningHandle, "WARNING: ", log.Ldate|log.Ltime|log.Lshortfile)
	Error = log.New(errorHandle, "ERROR: ", log.Ldate|log.Ltime|log.Lshortfile)
}

// InitLog wires the loggers to the standard streams. Trace output is
// only enabled when INKOCR_TRACE is set to 1 or 2; 2 also sends it to stderr.
func InitLog() {
	var trace io.Writer
	switch os.Getenv("INKOCR_TRACE") {
	case "1":
		trace = os.Stdout
	case "2":
		trace = os.Stderr
	default:
		trace = io.Discard
	}

	Init(trace, os.Stdout, os.Stdout, os.Stderr)
}
