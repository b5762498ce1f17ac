package dispatchtest

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"fxd/internal/discovery"
	"fxd/internal/dispatch"
	"fxd/internal/domain"
)

// A suite declared ahead of time, run against a fixture tree built on the fly.
func TestRun(t *testing.T) {
	root := t.TempDir()
	for _, f := range []string{"simpleOperators.kt", "classes/classes.kt", "classes/primaryConstructor.kt"} {
		p := filepath.Join(root, filepath.FromSlash(f))
		require.NoError(t, os.MkdirAll(filepath.Dir(p), 0o755))
		require.NoError(t, os.WriteFile(p, []byte("fun box() = \"OK\"\n"), 0o644))
	}

	suite := dispatch.NewGroup("decompiler", root, discovery.MustRegexRule(`^(.+)\.kt$`))
	require.NoError(t, suite.Declare("simpleOperators.kt"))
	_, err := suite.Nest("classes", "classes", "classes.kt", "primaryConstructor.kt")
	require.NoError(t, err)

	routine := dispatch.RoutineFunc(func(ctx context.Context, c dispatch.Case) domain.Outcome {
		data, err := os.ReadFile(c.AbsPath)
		if err != nil {
			return domain.Outcome{Status: domain.StatusFail, Err: err}
		}
		if !strings.Contains(string(data), "box()") {
			return domain.Outcome{Status: domain.StatusFail}
		}
		return domain.Outcome{Status: domain.StatusPass}
	})

	Run(t, dispatch.NewDispatcher(discovery.NewScanner(nil), routine), suite)
}

func TestAssertPass_Ignored(t *testing.T) {
	t.Run("ignored outcome skips", func(t *testing.T) {
		AssertPass(t, domain.Outcome{
			Status: domain.StatusIgnored,
			Entry:  domain.NewEntry("when_subject.kt"),
		})
		t.Error("AssertPass should have skipped")
	})
}
