package execution

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"fxd/internal/discovery"
	"fxd/internal/dispatch"
	"fxd/internal/domain"
	"fxd/internal/textdiff"
)

// BoxOK is the output a box fixture must produce
const BoxOK = "OK"

// Runner judges the decompiler-under-test on a single fixture
type Runner struct {
	decompiler Decompiler
	parser     *discovery.Parser
	logger     *slog.Logger
}

// NewRunner creates a new Runner
func NewRunner(decompiler Decompiler, parser *discovery.Parser, logger *slog.Logger) *Runner {
	if logger == nil {
		logger = slog.Default()
	}
	return &Runner{decompiler: decompiler, parser: parser, logger: logger}
}

// Run decompiles one fixture and compares the output. It reads the
// fixture and its expected output and never writes to disk.
func (r *Runner) Run(ctx context.Context, c dispatch.Case) domain.Outcome {
	start := time.Now()
	outcome := domain.Outcome{Group: c.Group, Entry: c.Entry, Status: domain.StatusFail}

	directives, err := r.parser.Parse(c.AbsPath)
	if err != nil {
		outcome.Err = err
		return r.finish(outcome, start)
	}

	output, err := r.decompiler.Decompile(ctx, c.AbsPath)
	outcome.Output = output
	if err == nil {
		err = r.judge(c, output)
	}

	ignored := directives.IgnoresBackend(c.Target)
	switch {
	case err != nil && ignored:
		outcome.Status = domain.StatusIgnored
		outcome.Err = err
	case err != nil:
		outcome.Err = err
	case ignored:
		outcome.Err = fmt.Errorf("fixture passes but is marked %s: %s; remove the directive",
			discovery.DirectiveIgnoreBackend, c.Target)
	default:
		outcome.Status = domain.StatusPass
	}
	return r.finish(outcome, start)
}

func (r *Runner) finish(o domain.Outcome, start time.Time) domain.Outcome {
	o.Duration = time.Since(start)
	switch o.Status {
	case domain.StatusFail:
		r.logger.Debug("fixture failed", "group", o.Group, "fixture", o.Entry.Path, "err", o.Err)
	case domain.StatusIgnored:
		r.logger.Debug("fixture ignored", "group", o.Group, "fixture", o.Entry.Path)
	}
	return o
}

func (r *Runner) judge(c dispatch.Case, output string) error {
	if c.Mode == domain.ModeBox {
		if strings.TrimSpace(output) == BoxOK {
			return nil
		}
		return &domain.MismatchError{Path: c.Entry.Path, Expected: BoxOK, Actual: output}
	}

	expectedPath := ExpectedPath(c.AbsPath, c.ExpectedSuffix)
	data, err := os.ReadFile(expectedPath)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return &domain.NotFoundError{Path: expectedPath, Err: errors.New("expected output file is missing")}
		}
		return fmt.Errorf("read expected output: %w", err)
	}

	expected := textdiff.Normalize(string(data))
	actual := textdiff.Normalize(output)
	if expected == actual {
		return nil
	}

	expectedName := filepath.ToSlash(filepath.Join(filepath.Dir(c.Entry.Path), filepath.Base(expectedPath)))
	return &domain.MismatchError{
		Path:     c.Entry.Path,
		Expected: expected,
		Actual:   actual,
		Diff:     textdiff.Unified(expectedName, c.Entry.Path+" (decompiled)", lines(expected), lines(actual)),
	}
}

// ExpectedPath returns the expected-output file for a fixture:
// "dir/a.kt" with suffix ".decompiled.kt" is "dir/a.decompiled.kt".
func ExpectedPath(fixturePath, suffix string) string {
	return strings.TrimSuffix(fixturePath, filepath.Ext(fixturePath)) + suffix
}

func lines(s string) string {
	if s == "" {
		return s
	}
	return s + "\n"
}
