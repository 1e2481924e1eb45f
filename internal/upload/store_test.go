package upload

import (
	"bytes"
	"context"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func formFile(t *testing.T, filename string, content []byte) (multipart.File, *multipart.FileHeader) {
	t.Helper()
	buf := &bytes.Buffer{}
	mw := multipart.NewWriter(buf)
	fw, err := mw.CreateFormFile("image", filename)
	require.NoError(t, err)
	_, err = fw.Write(content)
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/", buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	file, header, err := req.FormFile("image")
	require.NoError(t, err)
	return file, header
}

func TestStore_Save(t *testing.T) {
	store, err := NewStore(t.TempDir())
	require.NoError(t, err)

	file, header := formFile(t, "lamp photo.jpg", []byte("jpeg-bytes"))
	defer file.Close()

	stored, err := store.Save(file, header)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(stored, Prefix))
	// Unsafe filename characters are replaced.
	assert.NotContains(t, stored, " ")
	assert.True(t, strings.HasSuffix(stored, "lamp_photo.jpg"))

	data, err := os.ReadFile(store.FilePath(stored))
	require.NoError(t, err)
	assert.Equal(t, []byte("jpeg-bytes"), data)
}

func TestStore_Save_UniqueNames(t *testing.T) {
	store, err := NewStore(t.TempDir())
	require.NoError(t, err)

	file1, header1 := formFile(t, "lamp.jpg", []byte("one"))
	defer file1.Close()
	file2, header2 := formFile(t, "lamp.jpg", []byte("two"))
	defer file2.Close()

	first, err := store.Save(file1, header1)
	require.NoError(t, err)
	second, err := store.Save(file2, header2)
	require.NoError(t, err)

	assert.NotEqual(t, first, second)
}

func TestStore_Remove(t *testing.T) {
	store, err := NewStore(t.TempDir())
	require.NoError(t, err)

	file, header := formFile(t, "lamp.jpg", []byte("jpeg-bytes"))
	defer file.Close()
	stored, err := store.Save(file, header)
	require.NoError(t, err)

	store.Remove(stored)
	_, err = os.Stat(store.FilePath(stored))
	assert.True(t, os.IsNotExist(err))

	// Removing again, or removing a non-local path, is a no-op.
	store.Remove(stored)
	store.Remove("https://cdn.example.com/lamp.jpg")
}

func TestIsLocal(t *testing.T) {
	assert.True(t, IsLocal("/uploads/123-abc-lamp.jpg"))
	assert.False(t, IsLocal("https://cdn.example.com/lamp.jpg"))
	assert.False(t, IsLocal(""))
}

type staticRefs struct {
	images []string
}

func (r staticRefs) ReferencedImages(ctx context.Context) ([]string, error) {
	return r.images, nil
}

func TestSweeper_Sweep(t *testing.T) {
	dir := t.TempDir()
	store, err := NewStore(dir)
	require.NoError(t, err)

	old := func(name string) string {
		path := filepath.Join(dir, name)
		require.NoError(t, os.WriteFile(path, []byte("x"), 0o644))
		past := time.Now().Add(-2 * time.Hour)
		require.NoError(t, os.Chtimes(path, past, past))
		return path
	}

	referenced := old("1-aaaa-kept.jpg")
	orphan := old("2-bbbb-orphan.jpg")
	fresh := filepath.Join(dir, "3-cccc-fresh.jpg")
	require.NoError(t, os.WriteFile(fresh, []byte("x"), 0o644))

	sweeper := NewSweeper(store, staticRefs{images: []string{Prefix + "1-aaaa-kept.jpg"}}, time.Hour)
	require.NoError(t, sweeper.Sweep(context.Background()))

	_, err = os.Stat(referenced)
	assert.NoError(t, err, "referenced file stays")

	_, err = os.Stat(orphan)
	assert.True(t, os.IsNotExist(err), "orphan older than min age goes")

	_, err = os.Stat(fresh)
	assert.NoError(t, err, "fresh file stays even when unreferenced")
}

func TestSweeper_EmptyScheduleDisabled(t *testing.T) {
	store, err := NewStore(t.TempDir())
	require.NoError(t, err)

	sweeper := NewSweeper(store, staticRefs{}, time.Hour)
	require.NoError(t, sweeper.Start(""))
	sweeper.Stop()
}
