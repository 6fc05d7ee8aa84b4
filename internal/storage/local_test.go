package storage

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSaveAndDeleteImage(t *testing.T) {
	root := t.TempDir()
	store := NewLocalStore(root, "https://shop.example.com/", nil)

	url, err := store.SaveImage("Photo.PNG", 4, bytes.NewBufferString("data"))
	require.NoError(t, err)
	require.True(t, strings.HasPrefix(url, "https://shop.example.com/uploads/products/"))
	assert.True(t, strings.HasSuffix(url, ".png"))

	name := filepath.Base(url)
	stored := filepath.Join(root, "products", name)
	content, err := os.ReadFile(stored)
	require.NoError(t, err)
	assert.Equal(t, "data", string(content))

	require.NoError(t, store.Delete(url))
	_, err = os.Stat(stored)
	assert.True(t, os.IsNotExist(err))

	assert.NoError(t, store.Delete(url))
	assert.NoError(t, store.Delete(""))
}

func TestSaveImageRejectsBadInput(t *testing.T) {
	store := NewLocalStore(t.TempDir(), "", nil)

	_, err := store.SaveImage("notes.txt", 1, bytes.NewBufferString("x"))
	assert.ErrorIs(t, err, ErrUnsupportedImage)

	_, err = store.SaveImage("noext", 1, bytes.NewBufferString("x"))
	assert.ErrorIs(t, err, ErrUnsupportedImage)

	_, err = store.SaveImage("big.jpg", MaxImageSize+1, bytes.NewBufferString("x"))
	assert.ErrorIs(t, err, ErrImageTooLarge)

	_, err = store.SaveImage("sneaky.jpg", 10, bytes.NewReader(make([]byte, MaxImageSize+10)))
	assert.ErrorIs(t, err, ErrImageTooLarge)
}

func TestDeleteRefusesOutsideUploads(t *testing.T) {
	store := NewLocalStore(t.TempDir(), "", nil)

	assert.Error(t, store.Delete("/etc/passwd"))
	assert.Error(t, store.Delete("/uploads/../../etc/passwd"))
	assert.Error(t, store.Delete("/uploads"))
}
