package logging

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSetup_RejectsUnknownFormat(t *testing.T) {
	err := Setup("unknown")
	assert.Error(t, err)
}

func TestSetup_AcceptsKnownFormats(t *testing.T) {
	assert.NoError(t, Setup(TextFormat))
	assert.NoError(t, Setup(JSONFormat))
}

func TestWithName_DoesNotPanicBeforeSetup(t *testing.T) {
	assert.NotPanics(t, func() {
		WithName("test").Info("hello")
	})
}
