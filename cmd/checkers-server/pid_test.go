package main

import (
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPIDFileLifecycle(t *testing.T) {
	path := filepath.Join(t.TempDir(), "server.pid")

	cleanup, err := managePIDFile(path, true)
	require.NoError(t, err)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, strconv.Itoa(os.Getpid()), strings.TrimSpace(string(data)))

	// our own live process owns the file
	_, err = managePIDFile(path, true)
	assert.ErrorIs(t, err, errInstanceRunning)

	cleanup()
	_, err = os.Stat(path)
	assert.True(t, os.IsNotExist(err))
}

func TestPIDFileReplacesStaleEntry(t *testing.T) {
	path := filepath.Join(t.TempDir(), "server.pid")
	// PIDs are capped well below this value on Linux
	require.NoError(t, os.WriteFile(path, []byte("99999999\n"), 0o644))

	cleanup, err := managePIDFile(path, true)
	require.NoError(t, err)
	defer cleanup()

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, strconv.Itoa(os.Getpid()), strings.TrimSpace(string(data)))
}

func TestPIDFileCorrupted(t *testing.T) {
	path := filepath.Join(t.TempDir(), "server.pid")
	require.NoError(t, os.WriteFile(path, []byte("not a pid"), 0o644))

	_, err := managePIDFile(path, true)
	assert.ErrorContains(t, err, "corrupted")

	cleanup, err := managePIDFile(path, false)
	require.NoError(t, err, "without lock an existing file is overwritten")
	cleanup()
}
