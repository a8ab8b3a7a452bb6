package logging

import (
	"fmt"
	"os"
	"strings"

	"github.com/labstack/gommon/log"
	"github.com/mattn/go-isatty"
)

const (
	terminalHeader = "${time_rfc3339} ${level} ${short_file}:${line}"
	jsonHeader     = `{"time":"${time_rfc3339}","level":"${level}","file":"${short_file}","line":"${line}"}`
)

func ParseLevel(s string) (log.Lvl, error) {
	switch strings.ToLower(s) {
	case "debug":
		return log.DEBUG, nil
	case "", "info":
		return log.INFO, nil
	case "warn", "warning":
		return log.WARN, nil
	case "error":
		return log.ERROR, nil
	case "off":
		return log.OFF, nil
	}
	return log.INFO, fmt.Errorf("unknown log level %q", s)
}

// Setup configures the global gommon logger and returns the parsed level so
// echo's own logger can be set to match.
func Setup(level string) (log.Lvl, error) {
	lvl, err := ParseLevel(level)
	if err != nil {
		return lvl, err
	}
	log.SetLevel(lvl)
	log.SetOutput(os.Stderr)
	log.SetHeader(Header(isatty.IsTerminal(os.Stderr.Fd())))
	return lvl, nil
}

func Header(terminal bool) string {
	if terminal {
		return terminalHeader
	}
	return jsonHeader
}
