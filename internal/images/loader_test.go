package images

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLoadFromFolderFiltersByExtension(t *testing.T) {
	dir := t.TempDir()
	assert.NoError(t, os.WriteFile(filepath.Join(dir, "photo.png"), []byte("png-bytes"), 0o644))
	assert.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("text"), 0o644))
	assert.NoError(t, os.Mkdir(filepath.Join(dir, "thumbnails"), 0o755))

	imgs, err := LoadFromFolder(dir)
	assert.NoError(t, err)
	assert.Len(t, imgs, 1)
	assert.Equal(t, "photo.png", imgs[0].Filename)
	assert.Equal(t, "image/png", imgs[0].MimeType)
	assert.Equal(t, int64(len("png-bytes")), imgs[0].Size)
	assert.Equal(t, []byte("png-bytes"), imgs[0].Data)
}

func TestLoadFromFolderUppercaseExtension(t *testing.T) {
	dir := t.TempDir()
	assert.NoError(t, os.WriteFile(filepath.Join(dir, "IMG_001.JPG"), []byte("jpg"), 0o644))

	imgs, err := LoadFromFolder(dir)
	assert.NoError(t, err)
	assert.Len(t, imgs, 1)
	assert.Equal(t, "image/jpeg", imgs[0].MimeType)
}

func TestLoadFromFolderNoImages(t *testing.T) {
	dir := t.TempDir()
	assert.NoError(t, os.WriteFile(filepath.Join(dir, "readme.md"), []byte("x"), 0o644))

	_, err := LoadFromFolder(dir)
	assert.ErrorIs(t, err, ErrNoImagesFound)
}

func TestLoadFromFolderMissing(t *testing.T) {
	_, err := LoadFromFolder(filepath.Join(t.TempDir(), "does-not-exist"))
	assert.ErrorIs(t, err, ErrFolderNotFound)
}

func TestMimeTypeForExt(t *testing.T) {
	assert.Equal(t, "image/webp", MimeTypeForExt(".webp"))
	assert.Equal(t, "application/octet-stream", MimeTypeForExt(".bmp"))
}
