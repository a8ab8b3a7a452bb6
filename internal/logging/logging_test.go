package logging

import (
	"testing"

	"github.com/labstack/gommon/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	for in, want := range map[string]log.Lvl{
		"debug":   log.DEBUG,
		"INFO":    log.INFO,
		"":        log.INFO,
		"warning": log.WARN,
		"error":   log.ERROR,
		"off":     log.OFF,
	} {
		got, err := ParseLevel(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}

	_, err := ParseLevel("verbose")
	assert.Error(t, err)
}

func TestHeader(t *testing.T) {
	assert.Contains(t, Header(false), `"level":"${level}"`)
	assert.NotContains(t, Header(true), `"level"`)
}
