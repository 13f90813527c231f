package cli

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestVersionCmd_Use(t *testing.T) {
	assert.Equal(t, "version", versionCmd.Use)
}

func TestVersionCmd_PrintsVersion(t *testing.T) {
	prev := version
	version = "0.4.0"
	defer func() { version = prev }()

	out, err := execute(t, "version")

	assert.NoError(t, err)
	assert.Contains(t, out, "kbase version 0.4.0")
}
