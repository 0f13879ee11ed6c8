package procattr

import (
	"errors"
	"os/exec"
	"syscall"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSet_CreatesProcessGroup(t *testing.T) {
	t.Parallel()
	cmd := exec.Command("true")
	require.Nil(t, cmd.SysProcAttr)

	Set(cmd)

	require.NotNil(t, cmd.SysProcAttr)
	assert.True(t, cmd.SysProcAttr.Setpgid)
}

func TestSignalGroup_NilProcess(t *testing.T) {
	t.Parallel()
	assert.NoError(t, SignalGroup(nil, syscall.SIGTERM))
	assert.NoError(t, InterruptGroup(nil))
	assert.NoError(t, KillGroup(nil))
}

func TestInterruptGroup_StopsShellAndChild(t *testing.T) {
	t.Parallel()

	// The shell waits on a child sleep; both share the group.
	cmd := exec.Command("/bin/sh", "-c", "sleep 60; exit 0")
	Set(cmd)
	require.NoError(t, cmd.Start())

	require.NoError(t, InterruptGroup(cmd.Process))

	done := make(chan error, 1)
	go func() { done <- cmd.Wait() }()
	select {
	case err := <-done:
		var exitErr *exec.ExitError
		require.True(t, errors.As(err, &exitErr), "expected exit error, got %v", err)
		assert.NotEqual(t, 0, exitErr.ExitCode())
	case <-time.After(5 * time.Second):
		_ = KillGroup(cmd.Process)
		t.Fatal("process group did not stop on SIGINT")
	}
}

func TestSignalGroup_ExitedProcess(t *testing.T) {
	t.Parallel()

	cmd := exec.Command("true")
	Set(cmd)
	require.NoError(t, cmd.Start())
	require.NoError(t, cmd.Wait())

	assert.NoError(t, InterruptGroup(cmd.Process))
}

func TestKillGroup_RunningProcess(t *testing.T) {
	t.Parallel()

	cmd := exec.Command("sleep", "60")
	Set(cmd)
	require.NoError(t, cmd.Start())

	assert.NoError(t, KillGroup(cmd.Process))
	_ = cmd.Wait()
}
