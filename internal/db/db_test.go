package db

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestOpenMigratesIdempotently(t *testing.T) {
	path := filepath.Join(t.TempDir(), "usage.db")

	conn, err := Open(path)
	require.NoError(t, err)
	require.NoError(t, conn.Close())

	conn, err = Open(path)
	require.NoError(t, err)
	defer conn.Close()

	var count int
	err = conn.QueryRow(`SELECT COUNT(*) FROM completion_usage;`).Scan(&count)
	require.NoError(t, err)
	require.Zero(t, count)
}
