// infrastructure/media_store.go
package infrastructure

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/gin-gonic/gin"
)

const (
	// manim -ql writes 854x480 at 15fps into this directory.
	lowQualityDir = "480p15"
	videosPrefix  = "videos"
)

// MediaStore maps rendered scenes to their files under Root and to the
// public URLs that the static route serves.
type MediaStore struct {
	Root      string
	BaseURL   string
	VideoFile string
}

func NewMediaStore(root, baseURL, sceneClass string) (*MediaStore, error) {
	if err := os.MkdirAll(filepath.Join(root, videosPrefix), 0o755); err != nil {
		return nil, fmt.Errorf("creating media dir: %w", err)
	}
	root, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("resolving media dir: %w", err)
	}
	return &MediaStore{
		Root:      root,
		BaseURL:   strings.TrimRight(baseURL, "/"),
		VideoFile: sceneClass + ".mp4",
	}, nil
}

// VideoURL is <base>/videos/<scene>/480p15/<Class>.mp4.
func (s *MediaStore) VideoURL(sceneName string) string {
	return fmt.Sprintf("%s/%s/%s/%s/%s", s.BaseURL, videosPrefix, sceneName, lowQualityDir, s.VideoFile)
}

func (s *MediaStore) VideoPath(sceneName string) string {
	return filepath.Join(s.Root, videosPrefix, sceneName, lowQualityDir, s.VideoFile)
}

func (s *MediaStore) HasVideo(sceneName string) bool {
	info, err := os.Stat(s.VideoPath(sceneName))
	return err == nil && info.Mode().IsRegular()
}

// Register serves Root/videos at /videos. Directory listings are off.
func (s *MediaStore) Register(r gin.IRoutes) {
	r.Static("/"+videosPrefix, filepath.Join(s.Root, videosPrefix))
}
