package storage

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
)

func TestDiskStore(t *testing.T) {
	dir := t.TempDir()
	store, err := NewDiskStore(dir, zerolog.Nop())
	assert.NoError(t, err)

	t.Run("save returns an images locator", func(t *testing.T) {
		locator, err := store.Save([]byte("fake png bytes"), ".png")
		assert.NoError(t, err)
		assert.True(t, strings.HasPrefix(locator, "images/"))
		assert.True(t, strings.HasSuffix(locator, ".png"))

		data, err := os.ReadFile(filepath.Join(dir, filepath.Base(locator)))
		assert.NoError(t, err)
		assert.Equal(t, []byte("fake png bytes"), data)
	})

	t.Run("delete removes the blob", func(t *testing.T) {
		locator, err := store.Save([]byte("to be deleted"), ".jpg")
		assert.NoError(t, err)

		store.Delete(locator)

		_, err = os.Stat(filepath.Join(dir, filepath.Base(locator)))
		assert.True(t, os.IsNotExist(err))
	})

	t.Run("delete of a missing blob is silent", func(t *testing.T) {
		store.Delete("images/does-not-exist.png")
	})

	t.Run("delete is confined to the blob directory", func(t *testing.T) {
		outside := filepath.Join(dir, "..", "escape.txt")
		assert.NoError(t, os.WriteFile(outside, []byte("keep me"), 0o644))

		store.Delete("../escape.txt")

		_, err := os.Stat(outside)
		assert.NoError(t, err, "file outside the blob directory must survive")
	})

	t.Run("empty locator is a no-op", func(t *testing.T) {
		store.Delete("")
	})
}
