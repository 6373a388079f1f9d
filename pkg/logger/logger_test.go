package logger

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLogBeforeSetup(t *testing.T) {
	// The package-level helpers must work even when Setup never ran,
	// e.g. from service code exercised directly by tests.
	assert.NotNil(t, Log)
	assert.NotPanics(t, func() {
		Info("info message", "key", "value")
		Warn("warn message")
		Error("error message", "key", "value")
		Debug("debug message")
	})
}

func TestSetup(t *testing.T) {
	Setup("development")
	assert.NotNil(t, Log)
	assert.NotPanics(t, func() { Info("after setup") })

	Setup("production")
	assert.NotNil(t, Log)
	assert.NotPanics(t, func() { Info("after production setup") })
}
