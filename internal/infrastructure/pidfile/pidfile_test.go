package pidfile_test

import (
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tmurata/inspection-dispatch/internal/infrastructure/pidfile"
)

func TestAcquireRecordsOwnPID(t *testing.T) {
	path := filepath.Join(t.TempDir(), "dispatchd.pid")
	pf := pidfile.New(path)

	require.NoError(t, pf.Acquire())
	t.Cleanup(func() { _ = pf.Release() })

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	pid, err := strconv.Atoi(strings.TrimSpace(string(data)))
	require.NoError(t, err)
	assert.Equal(t, os.Getpid(), pid)
}

func TestAcquireFailsWhileHolderIsAlive(t *testing.T) {
	path := filepath.Join(t.TempDir(), "dispatchd.pid")
	first := pidfile.New(path)
	require.NoError(t, first.Acquire())
	t.Cleanup(func() { _ = first.Release() })

	// The test process itself holds the file and is clearly alive.
	second := pidfile.New(path)
	assert.Error(t, second.Acquire())
}

func TestAcquireReplacesMalformedFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "dispatchd.pid")
	require.NoError(t, os.WriteFile(path, []byte("garbage\n"), 0o644))

	pf := pidfile.New(path)
	require.NoError(t, pf.Acquire())
	t.Cleanup(func() { _ = pf.Release() })
}

func TestReleaseIsIdempotent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "dispatchd.pid")
	pf := pidfile.New(path)

	require.NoError(t, pf.Acquire())
	require.NoError(t, pf.Release())
	assert.NoError(t, pf.Release())
}
