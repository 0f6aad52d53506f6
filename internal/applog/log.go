// Package applog sets up process-wide logging for the fudgedump command.
//
// Grounded on kryptco-kr's logging.go: a single package-level *logging.Logger obtained via
// logging.MustGetLogger, a stderr backend with a custom format string, and a level chosen by name. Here the
// level name is passed to Setup by the caller (fudgedump's --log-level flag) instead of being read from an
// environment variable as kryptco-kr does with KR_LOG_LEVEL.
package applog

import (
	"os"

	"github.com/op/go-logging"
)

var log = logging.MustGetLogger("fudge")

var stderrFormat = logging.MustStringFormatter(
	`%{time:15:04:05.000} %{level:.4s} %{message}`,
)

// Setup installs a stderr backend at the given level and returns the shared logger. levelName is one of the
// names accepted by logging.LogLevel ("CRITICAL", "ERROR", "WARNING", "NOTICE", "INFO", "DEBUG"); an
// unrecognized or empty name falls back to NOTICE, matching op/go-logging's own default.
func Setup(levelName string) *logging.Logger {
	backend := logging.NewLogBackend(os.Stderr, "", 0)
	formatted := logging.NewBackendFormatter(backend, stderrFormat)
	leveled := logging.AddModuleLevel(formatted)

	level, err := logging.LogLevel(levelName)
	if err != nil {
		level = logging.NOTICE
	}
	leveled.SetLevel(level, "")

	logging.SetBackend(leveled)
	return log
}

// Logger returns the shared logger without reconfiguring its backend, for packages that want to log but
// should not own process-wide setup.
func Logger() *logging.Logger {
	return log
}
