package main

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRunWithoutArgsPrintsUsage(t *testing.T) {
	var out bytes.Buffer
	require.NoError(t, run(&out, nil))
	assert.Contains(t, out.String(), "Usage:")
}

func TestRunRejectsInvalidFlags(t *testing.T) {
	var out bytes.Buffer
	err := run(&out, []string{"--log-format", "xml", "host.hcl"})
	assert.Error(t, err)
}
