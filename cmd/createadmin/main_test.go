package main

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRun(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)
	t.Setenv("JWT_SECRET", "test-secret")
	t.Setenv("DB_DRIVER", "sqlite")
	t.Setenv("SQLITE_PATH", filepath.Join(dir, "admins.db"))
	t.Setenv("ADMIN_PASSWORD", "")

	require.NoError(t, run("alice", "testpass123"))
	assert.ErrorContains(t, run("alice", "testpass123"), "already exists")
	assert.ErrorContains(t, run("bob", ""), "required")

	t.Setenv("ADMIN_PASSWORD", "fromenv123")
	assert.NoError(t, run("bob", ""))
}
