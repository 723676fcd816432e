package logger

import (
	"errors"
	"sort"
	"strings"
	"sync"

	"github.com/decred/slog"
)

type logger struct {
	subsystemLoggers map[string]slog.Logger
}

var instance *logger
var initCtx sync.Once

// New registers the subsystem loggers whose levels are managed by this
// package. Only the first call has any effect.
func New(loggers map[string]slog.Logger) {
	initCtx.Do(func() {
		instance = &logger{
			subsystemLoggers: loggers,
		}
	})
}

// SupportedSubsystems returns a sorted slice of the registered subsystems.
func SupportedSubsystems() []string {
	if instance == nil {
		return nil
	}
	subsystems := make([]string, 0, len(instance.subsystemLoggers))
	for subsysID := range instance.subsystemLoggers {
		subsystems = append(subsystems, subsysID)
	}
	sort.Strings(subsystems)
	return subsystems
}

// SetLogLevels sets the log level for all subsystem loggers to the passed
// level.
func SetLogLevels(logLevel string) error {
	if instance == nil {
		return errors.New("cannot set log level on nil logger")
	}
	level, ok := slog.LevelFromString(logLevel)
	if !ok {
		return errors.New("invalid log level: " + logLevel)
	}
	for _, subsystem := range instance.subsystemLoggers {
		subsystem.SetLevel(level)
	}
	return nil
}

// SetLogLevel sets the logging level for provided subsystem.  Invalid
// subsystems are ignored.
func SetLogLevel(subsystemID string, logLevel string) {
	if instance == nil {
		return
	}
	if subsystem, ok := instance.subsystemLoggers[subsystemID]; ok {
		// Defaults to info if the log level is invalid.
		level, _ := slog.LevelFromString(logLevel)
		subsystem.SetLevel(level)
	}
}

// ParseAndSetDebugLevels applies a debug level specification of the form
// "level" or "SUBSYS=level,SUBSYS=level".
func ParseAndSetDebugLevels(debugLevel string) error {
	if instance == nil {
		return errors.New("cannot set log level on nil logger")
	}
	if !strings.Contains(debugLevel, ",") && !strings.Contains(debugLevel, "=") {
		return SetLogLevels(debugLevel)
	}

	for _, pair := range strings.Split(debugLevel, ",") {
		fields := strings.Split(pair, "=")
		if len(fields) != 2 {
			return errors.New("the specified debug level contains an invalid subsystem/level pair [" + pair + "]")
		}
		subsysID, logLevel := fields[0], fields[1]
		if _, ok := instance.subsystemLoggers[subsysID]; !ok {
			return errors.New("the specified subsystem [" + subsysID + "] is invalid -- supported subsystems " +
				strings.Join(SupportedSubsystems(), ", "))
		}
		if _, ok := slog.LevelFromString(logLevel); !ok {
			return errors.New("the specified debug level [" + logLevel + "] is invalid")
		}
		SetLogLevel(subsysID, logLevel)
	}
	return nil
}
