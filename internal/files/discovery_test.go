package files

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func touch(t *testing.T, dir string, names ...string) {
	t.Helper()
	for _, name := range names {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte("Brand,Retail\n"), 0644))
	}
}

func names(files []FileInfo) []string {
	out := make([]string, len(files))
	for i, f := range files {
		out[i] = f.Name
	}
	return out
}

func TestFindYearlyFiles(t *testing.T) {
	tests := []struct {
		name  string
		files []string
		want  []string
	}{
		{
			name:  "naming convention wins",
			files: []string{"2021_data.csv", "2020_data.xlsx", "notes.csv", "2019_data.txt"},
			want:  []string{"2020_data.xlsx", "2021_data.csv"},
		},
		{
			name:  "fallback to every tabular file",
			files: []string{"sales2021.csv", "Sales 2020.XLSX", "readme.md"},
			want:  []string{"Sales 2020.XLSX", "sales2021.csv"},
		},
		{
			name:  "pattern matches only unsupported files",
			files: []string{"2020_data.pdf", "retail.csv"},
			want:  []string{"retail.csv"},
		},
		{
			name:  "lock files are ignored",
			files: []string{"~$2020_data.xlsx", "2020_data.xlsx"},
			want:  []string{"2020_data.xlsx"},
		},
		{
			name:  "fallback ignores lock files",
			files: []string{"~$sales.xlsx", "sales.xlsx"},
			want:  []string{"sales.xlsx"},
		},
		{
			name:  "empty folder",
			files: nil,
			want:  []string{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := t.TempDir()
			touch(t, dir, tt.files...)
			require.NoError(t, os.Mkdir(filepath.Join(dir, "2018_data.csv"), 0755))

			found, err := NewDiscovery("").FindYearlyFiles(dir, "*_data.*")
			require.NoError(t, err)
			assert.Equal(t, tt.want, names(found))
			for _, f := range found {
				assert.Equal(t, filepath.Join(dir, f.Name), f.Path)
				assert.False(t, f.IsDir)
			}
		})
	}
}

func TestFindYearlyFilesMissingDir(t *testing.T) {
	_, err := NewDiscovery("").FindYearlyFiles(filepath.Join(t.TempDir(), "absent"), "*_data.*")
	assert.Error(t, err)
}

func TestDiscoveryRelativeToBase(t *testing.T) {
	base := t.TempDir()
	require.NoError(t, os.Mkdir(filepath.Join(base, "data"), 0755))
	touch(t, filepath.Join(base, "data"), "2022_data.csv")

	found, err := NewDiscovery(base).FindTabularFiles("data")
	require.NoError(t, err)
	require.Len(t, found, 1)
	assert.Equal(t, filepath.Join(base, "data", "2022_data.csv"), found[0].Path)
}

func TestFindFilesByPatternInvalid(t *testing.T) {
	_, err := NewDiscovery("").FindFilesByPattern(t.TempDir(), "[")
	assert.Error(t, err)
}

func TestIsTabular(t *testing.T) {
	assert.True(t, IsTabular("2020_data.CSV"))
	assert.True(t, IsTabular("book.xlsx"))
	assert.False(t, IsTabular("book.xls"))
	assert.False(t, IsTabular("csv"))
}

func TestIsLockFile(t *testing.T) {
	assert.True(t, IsLockFile("~$2020_data.xlsx"))
	assert.False(t, IsLockFile("2020_data.xlsx"))
	assert.False(t, IsLockFile("$~book.csv"))
}
