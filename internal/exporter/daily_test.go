package exporter

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"shoppulse/pkg/contracts/domain"
)

func TestDailyExporterGroupsByDate(t *testing.T) {
	day1 := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)
	day2 := time.Date(2024, 3, 2, 9, 0, 0, 0, time.UTC)
	records := []domain.TransactionRecord{
		sampleRecord("A2", "P1", day1),
		sampleRecord("A1", "P2", day1),
		sampleRecord("A3", "P1", day2),
	}

	dir := t.TempDir()
	paths, err := NewDailyExporter(WriteOptions{}).Export(records, dir)
	require.NoError(t, err)

	require.Len(t, paths, 2)
	assert.Equal(t, filepath.Join(dir, "shoppulse_daily_2024_03_01.csv"), paths[0])
	assert.Equal(t, filepath.Join(dir, "shoppulse_daily_2024_03_02.csv"), paths[1])

	data, err := os.ReadFile(paths[0])
	require.NoError(t, err)
	content := string(data)
	assert.Contains(t, content, "A1,P2")
	assert.Contains(t, content, "A2,P1")
	assert.Less(t, strings.Index(content, "A1,P2"), strings.Index(content, "A2,P1"), "rows within a day are sorted by order")
}

func TestDailyExporterEmptyInput(t *testing.T) {
	paths, err := NewDailyExporter(WriteOptions{}).Export(nil, t.TempDir())
	require.NoError(t, err)
	assert.Empty(t, paths)
}
