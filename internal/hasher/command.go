package hasher

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"
	"time"

	berrors "github.com/boldpkg/bold/internal/errors"
	"github.com/boldpkg/bold/internal/output"
)

const waitDelay = 2 * time.Second

// Command hashes text by running an external process that reads the text on
// stdin and prints the digest on stdout.
//
// Stdin and stdout are both backed by in-memory buffers, so os/exec copies them
// on separate goroutines and a large input cannot fill the pipe while the
// process is blocked on writing its output.
type Command struct {
	// Argv is the program and its arguments.
	Argv []string

	// Timeout bounds each run. Zero disables it.
	Timeout time.Duration
}

// NewCommand creates a Command hasher.
func NewCommand(argv []string, timeout time.Duration) *Command {
	return &Command{
		Argv:    append([]string(nil), argv...),
		Timeout: timeout,
	}
}

// Hash implements Hasher.
func (c *Command) Hash(text []byte) (string, error) {
	return c.HashContext(context.Background(), text)
}

// HashContext runs the digest process and returns its trimmed stdout.
// A missing program, non-zero exit, timeout or empty output is an ErrHash.
func (c *Command) HashContext(ctx context.Context, text []byte) (string, error) {
	if len(c.Argv) == 0 {
		return "", fmt.Errorf("%w: empty digest command", berrors.ErrHash)
	}

	if c.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.Timeout)
		defer cancel()
	}

	cmd := exec.CommandContext(ctx, c.Argv[0], c.Argv[1:]...)
	cmd.Stdin = bytes.NewReader(text)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	// Children that inherit stdout must not hold Wait open after a kill.
	cmd.WaitDelay = waitDelay

	if err := cmd.Run(); err != nil {
		if ctx.Err() != nil {
			return "", fmt.Errorf("%w: %s: %v", berrors.ErrHash, c.name(), ctx.Err())
		}
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			return "", fmt.Errorf("%w: %s failed with exit code %d: %s",
				berrors.ErrHash, c.name(), exitErr.ExitCode(), strings.TrimSpace(stderr.String()))
		}
		return "", fmt.Errorf("%w: %s: %v", berrors.ErrHash, c.name(), err)
	}

	digest := strings.TrimSpace(stdout.String())
	if digest == "" {
		return "", fmt.Errorf("%w: %s produced no output", berrors.ErrHash, c.name())
	}

	output.Debug("digest computed", "command", c.name(), "bytes", len(text), "digest", digest)
	return digest, nil
}

func (c *Command) name() string {
	return strings.Join(c.Argv, " ")
}
