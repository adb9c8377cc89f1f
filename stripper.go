package spritebuilder

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
)

// Stripper removes the background from an encoded source image and returns
// an encoded RGBA cutout.
type Stripper interface {
	Strip(ctx context.Context, src []byte) ([]byte, error)
}

// NopStripper returns its input, for sources that already are cutouts.
type NopStripper struct{}

func (NopStripper) Strip(_ context.Context, src []byte) ([]byte, error) {
	return src, nil
}

// CommandStripper runs an external background removal tool that takes an
// input and an output file, e.g. `rembg i <in> <out>`.
//
// Args may contain the placeholders {in} and {out}; without them the two
// paths are appended.
type CommandStripper struct {
	Command string
	Args    []string
}

func (c CommandStripper) Strip(ctx context.Context, src []byte) ([]byte, error) {
	tmp, err := os.MkdirTemp("", "spritebuilder-")
	if err != nil {
		return nil, err
	}
	defer os.RemoveAll(tmp)

	in := filepath.Join(tmp, "in.png")
	out := filepath.Join(tmp, "out.png")
	err = os.WriteFile(in, src, 0644)
	if err != nil {
		return nil, err
	}

	cmd := exec.CommandContext(ctx, c.Command, c.args(in, out)...)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr
	err = cmd.Run()
	if err != nil {
		msg := strings.TrimSpace(stderr.String())
		if msg != "" {
			return nil, fmt.Errorf("%v: %w: %v", c.Command, err, msg)
		}
		return nil, Wrap(err, "%v", c.Command)
	}
	return os.ReadFile(out)
}

func (c CommandStripper) args(in, out string) []string {
	args := make([]string, 0, len(c.Args)+2)
	placed := false
	for _, a := range c.Args {
		switch a {
		case "{in}":
			a = in
			placed = true
		case "{out}":
			a = out
			placed = true
		}
		args = append(args, a)
	}
	if !placed {
		args = append(args, in, out)
	}
	return args
}

// NewStripper returns the stripper described by cfg.
func NewStripper(cfg StripperConfig) Stripper {
	if cfg.Command == "" {
		return NopStripper{}
	}
	return CommandStripper{Command: cfg.Command, Args: cfg.Args}
}
