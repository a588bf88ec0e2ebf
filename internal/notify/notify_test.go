package notify

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestConsole(t *testing.T) {
	var out, errOut bytes.Buffer
	c := NewConsole(&out, &errOut, false)

	c.Success("Task created successfully")
	c.Error("Failed to fetch tasks")

	assert.Equal(t, "Task created successfully\n", out.String())
	assert.Equal(t, "error: Failed to fetch tasks\n", errOut.String())
}

func TestConsole_Quiet(t *testing.T) {
	var out, errOut bytes.Buffer
	c := NewConsole(&out, &errOut, true)

	c.Success("ok")
	c.Error("boom")

	assert.Empty(t, out.String())
	assert.Equal(t, "error: boom\n", errOut.String())
}
