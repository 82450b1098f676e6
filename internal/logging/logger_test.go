package logging

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewWithWriter_InfoLevel(t *testing.T) {
	t.Parallel()
	var buf bytes.Buffer
	log := NewWithWriter(&buf, false)

	log.Info("linked routing instance", "network", "left")
	log.V(1).Info("request detail")

	out := buf.String()
	assert.Contains(t, out, "linked routing instance")
	assert.Contains(t, out, "left")
	assert.NotContains(t, out, "request detail")
}

func TestNewWithWriter_Verbose(t *testing.T) {
	t.Parallel()
	var buf bytes.Buffer
	log := NewWithWriter(&buf, true)

	log.V(1).Info("request detail", "path", "/ref-update")

	assert.Contains(t, buf.String(), "request detail")
	assert.Contains(t, buf.String(), "/ref-update")
}
