package infrastructure

import (
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMediaStorePaths(t *testing.T) {
	root := t.TempDir()
	store, err := NewMediaStore(root, "https://animator.example.com/", sceneClass)
	require.NoError(t, err)

	assert.Equal(t,
		"https://animator.example.com/videos/temp_scene_0123456789abcdef/480p15/GeneratedAnimationScene.mp4",
		store.VideoURL("temp_scene_0123456789abcdef"))
	assert.Equal(t,
		filepath.Join(root, "videos", "temp_scene_0123456789abcdef", "480p15", "GeneratedAnimationScene.mp4"),
		store.VideoPath("temp_scene_0123456789abcdef"))
	assert.False(t, store.HasVideo("temp_scene_0123456789abcdef"))
}

func TestMediaStoreServesVideos(t *testing.T) {
	root := t.TempDir()
	store, err := NewMediaStore(root, "http://localhost:5001", sceneClass)
	require.NoError(t, err)

	path := store.VideoPath("temp_scene_aa")
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte("fake-mp4"), 0o644))
	assert.True(t, store.HasVideo("temp_scene_aa"))

	router := gin.New()
	store.Register(router)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/videos/temp_scene_aa/480p15/GeneratedAnimationScene.mp4", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "fake-mp4", rec.Body.String())

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/videos/temp_scene_missing/480p15/GeneratedAnimationScene.mp4", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
