package logger

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIsolatedLogger_WritesJSONToFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "usage.log")
	l := NewIsolatedLogger(path)

	l.Info("LLM", "Model call finished", map[string]interface{}{"model": "gpt-4o-mini", "total_tokens": 42})
	l.Debug("LLM", "dropped below info level", nil)
	require.NoError(t, l.Sync())

	raw, err := os.ReadFile(path)
	require.NoError(t, err)

	content := string(raw)
	assert.Contains(t, content, `"message":"Model call finished"`)
	assert.Contains(t, content, `"module":"LLM"`)
	assert.Contains(t, content, `"total_tokens":42`)
	assert.False(t, strings.Contains(content, "dropped below info level"))
}

func TestNopLogger_AcceptsNilDetails(t *testing.T) {
	l := NewNopLogger()
	assert.NotPanics(t, func() {
		l.Info("TEST", "hello", nil)
		l.Error("TEST", "boom", map[string]interface{}{"error": "x"})
	})
}
