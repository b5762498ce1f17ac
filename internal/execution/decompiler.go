package execution

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"strings"

	"fxd/internal/config"
)

// Decompiler is the decompiler-under-test
type Decompiler interface {
	Decompile(ctx context.Context, fixturePath string) (string, error)
}

// DecompilerFunc adapts an in-process decompiler function
type DecompilerFunc func(ctx context.Context, fixturePath string) (string, error)

// Decompile calls f
func (f DecompilerFunc) Decompile(ctx context.Context, fixturePath string) (string, error) {
	return f(ctx, fixturePath)
}

// CommandDecompiler runs an external command once per fixture. The fixture
// path is appended to the command line and stdout is the decompiled text.
type CommandDecompiler struct {
	config  *config.Config
	command []string
}

// NewCommandDecompiler creates a CommandDecompiler from cfg.Decompiler
func NewCommandDecompiler(cfg *config.Config) (*CommandDecompiler, error) {
	command := strings.Fields(cfg.Decompiler)
	if len(command) == 0 {
		return nil, fmt.Errorf("no decompiler command configured (set %s)", config.EnvDecompiler)
	}
	return &CommandDecompiler{config: cfg, command: command}, nil
}

// Decompile executes the command for a single fixture
func (d *CommandDecompiler) Decompile(ctx context.Context, fixturePath string) (string, error) {
	if d.config.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, d.config.Timeout)
		defer cancel()
	}

	args := append(append([]string{}, d.command[1:]...), fixturePath)
	cmd := exec.CommandContext(ctx, d.command[0], args...)

	// Set environment variables
	cmd.Env = os.Environ()
	cmd.Env = append(cmd.Env,
		"FXD_FIXTURE="+fixturePath,
		"FXD_TARGET_BACKEND="+d.config.TargetBackend,
	)

	// Set working directory
	cmd.Dir = d.config.ProjectPath

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return stdout.String(), fmt.Errorf("decompiler timed out after %s", d.config.Timeout)
		}
		msg := strings.TrimSpace(stderr.String())
		if msg == "" {
			msg = strings.TrimSpace(stdout.String())
		}
		return stdout.String(), fmt.Errorf("decompiler failed: %w: %s", err, msg)
	}
	return stdout.String(), nil
}
