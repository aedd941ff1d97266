//go:build !windows

package conn

import (
	"errors"
	"io"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func readAll(t *testing.T, h *ProcessHandle) string {
	var out []byte
	require.Eventually(t, func() bool {
		b, err := h.ReadAvailable()
		out = append(out, b...)
		return errors.Is(err, io.EOF)
	}, 5*time.Second, 10*time.Millisecond)
	return string(out)
}

func TestSpawnMergesStderrIntoStdout(t *testing.T) {
	h, err := Spawn([]string{"/bin/sh", "-c", "echo out; echo err 1>&2"})
	require.NoError(t, err)

	code, err := h.Wait()
	assert.NoError(t, err)
	assert.Equal(t, 0, code)

	out := readAll(t, h)
	assert.Contains(t, out, "out\n")
	assert.Contains(t, out, "err\n")
}

func TestSpawnMissingBinary(t *testing.T) {
	_, err := Spawn([]string{"/nonexistent/iodine", "-f"})
	var spawnErr *SpawnError
	require.True(t, errors.As(err, &spawnErr))
	assert.Equal(t, "/nonexistent/iodine", spawnErr.Path)
}

func TestSpawnEmptyCommandLine(t *testing.T) {
	_, err := Spawn(nil)
	var spawnErr *SpawnError
	assert.True(t, errors.As(err, &spawnErr))
}

func TestReadAvailableDoesNotBlock(t *testing.T) {
	h, err := Spawn([]string{"/bin/sh", "-c", "sleep 30"})
	require.NoError(t, err)
	defer func() {
		_ = h.Destroy()
		_, _ = h.Wait()
	}()

	start := time.Now()
	b, err := h.ReadAvailable()
	assert.Empty(t, b)
	assert.NoError(t, err)
	assert.Less(t, time.Since(start), time.Second)
}

func TestDestroyTerminatesProcess(t *testing.T) {
	h, err := Spawn([]string{"/bin/sh", "-c", "echo started; sleep 30"})
	require.NoError(t, err)

	assert.NoError(t, h.Destroy())

	exited := make(chan int)
	go func() {
		code, _ := h.Wait()
		exited <- code
	}()
	select {
	case code := <-exited:
		assert.NotEqual(t, 0, code)
	case <-time.After(5 * time.Second):
		t.Fatal("process survived Destroy")
	}
}

func TestDestroyAfterExit(t *testing.T) {
	h, err := Spawn([]string{"/bin/sh", "-c", "exit 0"})
	require.NoError(t, err)
	_, _ = h.Wait()
	assert.NoError(t, h.Destroy())
}

func TestWaitReportsExitCode(t *testing.T) {
	h, err := Spawn([]string{"/bin/sh", "-c", "exit 7"})
	require.NoError(t, err)
	code, err := h.Wait()
	assert.Error(t, err)
	assert.Equal(t, 7, code)
}

func TestDrainedAfterExit(t *testing.T) {
	h, err := Spawn([]string{"/bin/sh", "-c", "echo last words; exit 1"})
	require.NoError(t, err)

	code, _ := h.Wait()
	assert.Equal(t, 1, code)
	select {
	case <-h.Drained():
	case <-time.After(5 * time.Second):
		t.Fatal("output pipe was not drained")
	}

	b, err := h.ReadAvailable()
	assert.NoError(t, err)
	assert.Equal(t, "last words\n", string(b))
	_, err = h.ReadAvailable()
	assert.ErrorIs(t, err, io.EOF)
}
