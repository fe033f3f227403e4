package logger

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestNewWritesJSONFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "app.log")
	log := New(path, true)

	Module(log, "test").Info("hello", zap.Int("n", 1))
	_ = log.Sync()

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"message":"hello"`)
	assert.Contains(t, string(data), `"module":"test"`)
}

func TestModuleAcceptsNil(t *testing.T) {
	assert.NotPanics(t, func() {
		Module(nil, "x").Info("dropped")
	})
}
