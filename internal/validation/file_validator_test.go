package validation

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateUpload(t *testing.T) {
	v := NewFileValidator(nil)

	tests := []struct {
		name     string
		filename string
		size     int64
		wantErr  string
	}{
		{"valid csv", "orders.csv", 100, ""},
		{"valid xlsx", "Orders.XLSX", 100, ""},
		{"valid xlsm", "orders.xlsm", 100, ""},
		{"empty name", "  ", 100, "must not be empty"},
		{"path traversal", "../orders.csv", 100, "path separators"},
		{"windows path", `C:\orders.csv`, 100, "path separators"},
		{"unsupported type", "orders.txt", 100, "unsupported file type"},
		{"no extension", "orders", 100, "unsupported file type"},
		{"empty file", "orders.csv", 0, "is empty"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := v.ValidateUpload(tt.filename, tt.size)
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestValidateFile(t *testing.T) {
	v := NewFileValidator(nil)
	dir := t.TempDir()

	good := filepath.Join(dir, "orders.csv")
	require.NoError(t, os.WriteFile(good, []byte("order_id\nA1\n"), 0644))
	assert.NoError(t, v.ValidateFile(good))

	assert.Error(t, v.ValidateFile(filepath.Join(dir, "missing.csv")))
	assert.Error(t, v.ValidateFile(dir), "directories are rejected")

	empty := filepath.Join(dir, "empty.csv")
	require.NoError(t, os.WriteFile(empty, nil, 0644))
	assert.Error(t, v.ValidateFile(empty))

	wrongType := filepath.Join(dir, "orders.json")
	require.NoError(t, os.WriteFile(wrongType, []byte("{}"), 0644))
	assert.Error(t, v.ValidateFile(wrongType))
}

func TestValidateOutputDirectory(t *testing.T) {
	v := NewFileValidator(nil)

	dir := filepath.Join(t.TempDir(), "exports", "daily")
	require.NoError(t, v.ValidateOutputDirectory(dir))

	info, err := os.Stat(dir)
	require.NoError(t, err)
	assert.True(t, info.IsDir())

	// No probe file is left behind.
	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Empty(t, entries)
}
