package storage

import (
	"encoding/csv"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func readCSV(t *testing.T, path string) [][]string {
	t.Helper()
	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()

	records, err := csv.NewReader(f).ReadAll()
	require.NoError(t, err)
	return records
}

func TestNewCSVFileCreatesDirectory(t *testing.T) {
	path := filepath.Join(t.TempDir(), "public", "nested", "waves.csv")

	f, err := NewCSVFile(path)
	require.NoError(t, err)
	assert.Equal(t, path, f.Path())

	info, err := os.Stat(filepath.Dir(path))
	require.NoError(t, err)
	assert.True(t, info.IsDir())
}

func TestNewCSVFileRequiresPath(t *testing.T) {
	_, err := NewCSVFile("")
	assert.Error(t, err)
}

func TestReplaceWritesHeaderAndRows(t *testing.T) {
	path := filepath.Join(t.TempDir(), "waves.csv")
	f, err := NewCSVFile(path)
	require.NoError(t, err)

	header := []string{"timestamp", "accel_z", "wave_height"}
	rows := [][]string{
		{"2025-05-01T17:39:16Z", "9.81", ""},
		{"2025-05-01T17:39:16.1Z", "9.9", "0.004"},
	}
	require.NoError(t, f.Replace(header, rows))

	got := readCSV(t, path)
	assert.Equal(t, append([][]string{header}, rows...), got)
}

func TestReplaceOverwritesPreviousContents(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "waves.csv")
	f, err := NewCSVFile(path)
	require.NoError(t, err)

	header := []string{"a"}
	require.NoError(t, f.Replace(header, [][]string{{"1"}, {"2"}, {"3"}}))
	require.NoError(t, f.Replace(header, [][]string{{"4"}}))

	assert.Equal(t, [][]string{{"a"}, {"4"}}, readCSV(t, path))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, entries, 1, "temp files must not be left behind")
}
