package storage

import (
	"bytes"
	"mime/multipart"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fileHeaders builds real multipart headers by round-tripping a form.
func fileHeaders(t *testing.T, files map[string]string) []*multipart.FileHeader {
	t.Helper()
	var body bytes.Buffer
	w := multipart.NewWriter(&body)
	for name, content := range files {
		part, err := w.CreateFormFile("images", name)
		require.NoError(t, err)
		_, err = part.Write([]byte(content))
		require.NoError(t, err)
	}
	require.NoError(t, w.Close())

	req := httptest.NewRequest("POST", "/", &body)
	req.Header.Set("Content-Type", w.FormDataContentType())
	require.NoError(t, req.ParseMultipartForm(1<<20))
	return req.MultipartForm.File["images"]
}

func TestSave(t *testing.T) {
	root := t.TempDir()
	store, err := NewStore(root, 1024)
	require.NoError(t, err)

	paths, err := store.Save("projects/p1", fileHeaders(t, map[string]string{"front.PNG": "png-bytes"}))

	require.NoError(t, err)
	require.Len(t, paths, 1)
	assert.True(t, strings.HasPrefix(paths[0], "/uploads/projects/p1/"))
	assert.True(t, strings.HasSuffix(paths[0], ".png"))

	data, err := os.ReadFile(filepath.Join(root, strings.TrimPrefix(paths[0], "/uploads/")))
	require.NoError(t, err)
	assert.Equal(t, "png-bytes", string(data))

	store.Delete(paths...)
	_, err = os.Stat(filepath.Join(root, strings.TrimPrefix(paths[0], "/uploads/")))
	assert.True(t, os.IsNotExist(err))
}

func TestSaveRejects(t *testing.T) {
	tests := []struct {
		name    string
		files   map[string]string
		wantErr error
	}{
		{"executable", map[string]string{"run.exe": "x"}, ErrInvalidExtension},
		{"too large", map[string]string{"big.jpg": strings.Repeat("x", 2048)}, ErrFileTooLarge},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			root := t.TempDir()
			store, err := NewStore(root, 1024)
			require.NoError(t, err)

			_, err = store.Save("services", fileHeaders(t, tt.files))

			assert.ErrorIs(t, err, tt.wantErr)
			entries, _ := os.ReadDir(root)
			assert.Empty(t, entries, "nothing is written when a file is rejected")
		})
	}
}

func TestSaveKeepsInsideRoot(t *testing.T) {
	root := t.TempDir()
	store, err := NewStore(root, 1024)
	require.NoError(t, err)

	paths, err := store.Save("../../etc", fileHeaders(t, map[string]string{"a.jpg": "x"}))

	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(paths[0], "/uploads/etc/"))
	_, err = os.Stat(filepath.Join(root, "etc"))
	assert.NoError(t, err)
}
