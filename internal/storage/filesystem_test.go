package storage

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFileSystemSecurity(t *testing.T) {
	tempDir := t.TempDir()

	outsideFile := filepath.Join(filepath.Dir(tempDir), "outside.txt")
	require.NoError(t, os.WriteFile(outsideFile, []byte("secret"), 0644))
	defer os.Remove(outsideFile)

	fs := NewFileSystem(tempDir)
	ctx := context.Background()

	t.Run("Save prevents directory traversal", func(t *testing.T) {
		tests := []struct {
			name string
			path string
			want bool
		}{
			{"normal path", "index.html", true},
			{"subdirectory", "pages/page-01.html", true},
			{"parent traversal", "../test.txt", false},
			{"complex traversal", "pages/../../test.txt", false},
			{"absolute path", "/etc/passwd", false},
		}

		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				err := fs.Save(ctx, tt.path, []byte("test"))
				if tt.want {
					assert.NoError(t, err)
				} else {
					assert.Error(t, err)
				}
			})
		}
	})

	t.Run("Load prevents directory traversal", func(t *testing.T) {
		_, err := fs.Load(ctx, "../outside.txt")
		assert.Error(t, err)

		_, err = fs.Load(ctx, outsideFile)
		assert.Error(t, err)
	})

	t.Run("Exists is false outside the base directory", func(t *testing.T) {
		assert.False(t, fs.Exists(ctx, "../outside.txt"))
	})
}

func TestFileSystemSaveIsAtomic(t *testing.T) {
	fs := NewFileSystem(t.TempDir())
	ctx := context.Background()

	require.NoError(t, fs.Save(ctx, "interactive/quiz.js", []byte("first")))
	require.NoError(t, fs.Save(ctx, "interactive/quiz.js", []byte("second")))

	data, err := fs.Load(ctx, "interactive/quiz.js")
	require.NoError(t, err)
	assert.Equal(t, "second", string(data))

	entries, err := os.ReadDir(filepath.Join(fs.BaseDir(), "interactive"))
	require.NoError(t, err)
	assert.Len(t, entries, 1, "temp files must not be left behind")
}

func TestFileSystemList(t *testing.T) {
	fs := NewFileSystem(t.TempDir())
	ctx := context.Background()

	for _, n := range []int{3, 1, 2} {
		require.NoError(t, fs.Save(ctx, PagePath(n), []byte("<html></html>")))
	}
	require.NoError(t, fs.Save(ctx, "pages/notes.txt", []byte("x")))

	pages, err := fs.List(ctx, "pages/page-*.html")
	require.NoError(t, err)
	assert.Equal(t, []string{
		filepath.Join("pages", "page-01.html"),
		filepath.Join("pages", "page-02.html"),
		filepath.Join("pages", "page-03.html"),
	}, pages)

	_, err = fs.List(ctx, "../*")
	assert.Error(t, err)
}
