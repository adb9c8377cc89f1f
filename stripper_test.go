package spritebuilder

import (
	"context"
	"os/exec"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewStripper(t *testing.T) {
	assert.Equal(t, NopStripper{}, NewStripper(StripperConfig{}))
	s := NewStripper(StripperConfig{Command: "rembg", Args: []string{"i"}})
	assert.Equal(t, CommandStripper{Command: "rembg", Args: []string{"i"}}, s)
}

func TestNopStripper(t *testing.T) {
	out, err := NopStripper{}.Strip(context.Background(), []byte("png"))
	require.NoError(t, err)
	assert.Equal(t, []byte("png"), out)
}

func TestCommandStripperArgs(t *testing.T) {
	c := CommandStripper{Command: "rembg", Args: []string{"i"}}
	assert.Equal(t, []string{"i", "/a", "/b"}, c.args("/a", "/b"))

	c.Args = []string{"-o", "{out}", "--alpha", "{in}"}
	assert.Equal(t, []string{"-o", "/b", "--alpha", "/a"}, c.args("/a", "/b"))
}

func TestCommandStripperRun(t *testing.T) {
	if _, err := exec.LookPath("cp"); err != nil {
		t.Skip("cp not available")
	}
	c := CommandStripper{Command: "cp"}
	out, err := c.Strip(context.Background(), []byte("cutout"))
	require.NoError(t, err)
	assert.Equal(t, []byte("cutout"), out)

	c = CommandStripper{Command: "cp", Args: []string{"{in}", "/nonexistent/dir/out.png"}}
	_, err = c.Strip(context.Background(), []byte("cutout"))
	assert.Error(t, err)
}
