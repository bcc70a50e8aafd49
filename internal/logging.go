package internal

import (
	"io"
	"log"
	"os"
)

// LogPrefix tags every line written by the service
const LogPrefix = "[zhbus] "

// InitLogging sends the standard logger to stdout with microsecond timestamps
// and returns the writer so other loggers (gin) can share it.
func InitLogging() io.Writer {
	out := io.Writer(os.Stdout)
	log.SetOutput(out)
	log.SetPrefix(LogPrefix)
	log.SetFlags(log.LstdFlags | log.Lmicroseconds | log.Lmsgprefix)
	return out
}
