package sim

import (
	"fmt"
	"log"
	"strings"
)

// LogLevel is the severity of a log line.
type LogLevel int

// Severities, from the most verbose to the most severe.
const (
	LogLevelTrace LogLevel = iota
	LogLevelInfo
	LogLevelSevere
)

func (l LogLevel) String() string {
	switch l {
	case LogLevelTrace:
		return "TRACE"
	case LogLevelInfo:
		return "INFO"
	case LogLevelSevere:
		return "SEVERE"
	default:
		return fmt.Sprintf("LogLevel(%d)", int(l))
	}
}

// ParseLogLevel converts "trace", "info" or "severe" (case insensitive) into a
// LogLevel.
func ParseLogLevel(s string) (LogLevel, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "trace":
		return LogLevelTrace, nil
	case "info", "":
		return LogLevelInfo, nil
	case "severe":
		return LogLevelSevere, nil
	}

	return LogLevelInfo, fmt.Errorf("unknown log level %q", s)
}

// A LogHook is a hook that is resonsible for recording information from the
// simulation
type LogHook interface {
	Hook
}

// LogHookBase proovides the common logic for all LogHooks. Lines below Level
// are dropped.
type LogHookBase struct {
	*log.Logger
	Level LogLevel
}

// Logf writes a line tagged with the severity if the severity is not filtered.
func (h *LogHookBase) Logf(level LogLevel, format string, args ...interface{}) {
	if h.Logger == nil || level < h.Level {
		return
	}

	h.Logger.Printf("[%s] "+format, append([]interface{}{level}, args...)...)
}
