package camera

import (
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"
)

// CommandCapturer runs an external program such as fswebcam. The literal
// argument "{path}" is replaced with the output file; without one, the path
// is appended as the last argument.
type CommandCapturer struct {
	Program string
	Args    []string
}

func (c CommandCapturer) Capture(ctx context.Context, path string) error {
	if c.Program == "" {
		return errors.New("no capture command configured")
	}
	args := make([]string, 0, len(c.Args)+1)
	replaced := false
	for _, a := range c.Args {
		if strings.Contains(a, "{path}") {
			a = strings.ReplaceAll(a, "{path}", path)
			replaced = true
		}
		args = append(args, a)
	}
	if !replaced {
		args = append(args, path)
	}

	out, err := exec.CommandContext(ctx, c.Program, args...).CombinedOutput()
	if err != nil {
		return fmt.Errorf("%s: %w: %s", c.Program, err, strings.TrimSpace(string(out)))
	}
	return nil
}
