package snippet

import (
	"context"
	"fmt"
	"os"
	"syscall"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newShellRegistry(t *testing.T, commands [][]string) *ProfileRegistry {
	t.Helper()
	registry := NewProfileRegistry()
	require.NoError(t, registry.Override("shelltest", Profile{
		Filename: "snippet.sh",
		Commands: commands,
	}))
	return registry
}

func waitForStatus(t *testing.T, state *ExecutionState, want Status) {
	t.Helper()
	deadline := time.Now().Add(3 * time.Second)
	for time.Now().Before(deadline) {
		if state.StatusNow() == want {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("timed out waiting for status %v, got %v", want, state.StatusNow())
}

func TestExecutorRunCapturesOutput(t *testing.T) {
	registry := newShellRegistry(t, [][]string{{"/bin/sh", "$pwd/snippet.sh"}})
	executor := NewExecutor(registry)
	executor.TmpDir = t.TempDir()

	handle, err := executor.Run(context.Background(), "t1", Snippet{
		Contents:   "echo hello-from-snippet\n",
		Attributes: Attributes{ExecutionProfile: "shelltest"},
	}, t.TempDir())
	require.NoError(t, err)

	waitForStatus(t, handle.State, StatusSuccess)
	assert.Contains(t, handle.State.Lines(), "hello-from-snippet")
}

func TestExecutorCancelKillsProcessGroup(t *testing.T) {
	registry := newShellRegistry(t, [][]string{{"/bin/sh", "$pwd/snippet.sh"}})
	executor := NewExecutor(registry)
	executor.TmpDir = t.TempDir()

	ctx, cancel := context.WithCancel(context.Background())
	pidFile := t.TempDir() + "/child.pid"

	handle, err := executor.Run(ctx, "t2", Snippet{
		// The child backgrounds a long sleep and records its own pid: if
		// Cancel only killed the direct /bin/sh process, this grandchild
		// would survive and keep running after the test returns.
		Contents:   "sleep 30 & echo $! > " + pidFile + "\nwait\n",
		Attributes: Attributes{ExecutionProfile: "shelltest"},
	}, t.TempDir())
	require.NoError(t, err)

	var childPID int
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		data, readErr := os.ReadFile(pidFile)
		if readErr == nil && len(data) > 0 {
			_, scanErr := fmt.Sscan(string(data), &childPID)
			require.NoError(t, scanErr)
			break
		}
		time.Sleep(10 * time.Millisecond)
	}
	require.NotZero(t, childPID, "child never wrote its pid")

	cancel()
	handle.Cancel()
	waitForStatus(t, handle.State, StatusFailure)

	deadline = time.Now().Add(2 * time.Second)
	var killErr error
	for time.Now().Before(deadline) {
		killErr = syscall.Kill(childPID, 0)
		if killErr != nil {
			break
		}
		time.Sleep(10 * time.Millisecond)
	}
	assert.Error(t, killErr, "grandchild sleep process should have been killed with its group")
}
