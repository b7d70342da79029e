package simplelogger

import (
	"bytes"
	"fmt"
	"os"
	"sync"
)

// EnvVar names the environment variable holding the log file path.
const EnvVar = "DELTAS_LOG_FILE"

var mu sync.Mutex

// Enabled reports whether Log would write anywhere. Callers can use it to skip building expensive arguments.
func Enabled() bool {
	return os.Getenv(EnvVar) != ""
}

// Log is a minimal printf-style debug logger. It appends formatted output, one line per call, to the file named by DELTAS_LOG_FILE.
//
// If DELTAS_LOG_FILE is unset/empty or the path can't be opened as a file, Log is a no-op.
func Log(format string, args ...any) {
	path := os.Getenv(EnvVar)
	if path == "" {
		return
	}

	mu.Lock()
	defer mu.Unlock()

	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return
	}
	defer f.Close()

	var b bytes.Buffer
	_, _ = fmt.Fprintf(&b, format, args...)
	if b.Len() == 0 || b.Bytes()[b.Len()-1] != '\n' {
		_ = b.WriteByte('\n')
	}
	_, _ = f.Write(b.Bytes())
}
