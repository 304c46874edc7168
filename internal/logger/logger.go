// Package logger configures levelled logging for mdref.
// Library packages obtain a named logger with GetLogger and never print to
// stdout; the CLI calls Configure once with the requested verbosity.
package logger

import (
	"sync"

	"github.com/tliron/commonlog"
	_ "github.com/tliron/commonlog/simple"
)

const prefix = "mdref"

var (
	mu        sync.Mutex
	verbosity int
)

// Configure sets the global verbosity. 0 logs warnings and errors,
// 1 adds notices, 2 adds info and 3 or more adds debug. A non-empty
// path sends log output to that file instead of stderr.
func Configure(v int, path string) {
	mu.Lock()
	defer mu.Unlock()
	verbosity = v
	var p *string
	if path != "" {
		p = &path
	}
	// commonlog verbosity -1 is warnings, 0 notices.
	commonlog.Configure(v-1, p)
}

// Verbosity returns the value last passed to Configure.
func Verbosity() int {
	mu.Lock()
	defer mu.Unlock()
	return verbosity
}

// GetLogger returns the logger for a component, e.g. "core" -> "mdref.core".
func GetLogger(name string) commonlog.Logger {
	if name == "" {
		return commonlog.GetLogger(prefix)
	}
	return commonlog.GetLogger(prefix + "." + name)
}
