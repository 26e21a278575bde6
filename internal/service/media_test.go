package service

import (
	"encoding/base64"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/smizereens/foodgram-st/internal/config"
)

func TestParseDataURI(t *testing.T) {
	t.Run("valid", func(t *testing.T) {
		payload := []byte("png bytes")
		uri := "data:image/png;base64," + base64.StdEncoding.EncodeToString(payload)

		mime, data, err := ParseDataURI(uri)
		require.NoError(t, err)
		assert.Equal(t, "image/png", mime)
		assert.Equal(t, payload, data)
	})

	t.Run("not a data URI", func(t *testing.T) {
		_, _, err := ParseDataURI("https://example.com/image.png")
		assert.Error(t, err)
	})

	t.Run("not base64", func(t *testing.T) {
		_, _, err := ParseDataURI("data:image/png,rawpayload")
		assert.Error(t, err)
	})

	t.Run("bad payload", func(t *testing.T) {
		_, _, err := ParseDataURI("data:image/png;base64,???")
		assert.Error(t, err)
	})
}

func TestMediaSaveAndDelete(t *testing.T) {
	dir := t.TempDir()
	media, err := NewMedia(&config.Config{MediaDir: dir}, testLogger())
	require.NoError(t, err)

	name, err := media.Save(testDataURI())
	require.NoError(t, err)
	assert.Equal(t, ".png", filepath.Ext(name))

	content, err := os.ReadFile(filepath.Join(dir, name))
	require.NoError(t, err)
	assert.Equal(t, []byte("png bytes"), content)

	require.NoError(t, media.Delete(name))
	_, err = os.Stat(filepath.Join(dir, name))
	assert.True(t, os.IsNotExist(err))

	// deleting twice is fine
	assert.NoError(t, media.Delete(name))
}

func TestMediaSaveRejectsBadInput(t *testing.T) {
	media := testMedia(t)

	_, err := media.Save("not a data uri")
	assert.ErrorIs(t, err, ErrInvalidImage)
}
