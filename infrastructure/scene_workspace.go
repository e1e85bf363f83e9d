// infrastructure/scene_workspace.go
package infrastructure

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/vitovidale/ai-animator/domain"
)

const sceneFilePrefix = "temp_scene_"

// LocalSceneWorkspace writes scene sources into Dir under a random
// 16-hex-character identifier.
type LocalSceneWorkspace struct {
	Dir string
	// Random defaults to crypto/rand.Reader.
	Random io.Reader
}

func NewLocalSceneWorkspace(dir string) (*LocalSceneWorkspace, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating work dir: %w", err)
	}
	abs, err := filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("resolving work dir: %w", err)
	}
	return &LocalSceneWorkspace{Dir: abs, Random: rand.Reader}, nil
}

func (w *LocalSceneWorkspace) Create(ctx context.Context, source string) (*domain.SceneFile, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	id, err := w.newID()
	if err != nil {
		return nil, err
	}
	name := sceneFilePrefix + id
	path := filepath.Join(w.Dir, name+".py")

	// O_EXCL turns an identifier collision into an error instead of
	// overwriting another request's source.
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o600)
	if err != nil {
		return nil, fmt.Errorf("creating scene file %s: %w", name, err)
	}
	if _, err := io.WriteString(f, source); err != nil {
		f.Close()
		os.Remove(path)
		return nil, fmt.Errorf("writing scene file %s: %w", name, err)
	}
	if err := f.Close(); err != nil {
		os.Remove(path)
		return nil, fmt.Errorf("closing scene file %s: %w", name, err)
	}
	return &domain.SceneFile{ID: id, Name: name, Path: path}, nil
}

// Release removes the scene source. A file that is already gone counts
// as released.
func (w *LocalSceneWorkspace) Release(scene *domain.SceneFile) error {
	if scene == nil {
		return nil
	}
	if err := os.Remove(scene.Path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("%w: %s: %v", domain.ErrCleanupFailed, scene.Name, err)
	}
	return nil
}

func (w *LocalSceneWorkspace) newID() (string, error) {
	r := w.Random
	if r == nil {
		r = rand.Reader
	}
	buf := make([]byte, 8)
	if _, err := io.ReadFull(r, buf); err != nil {
		return "", fmt.Errorf("generating scene id: %w", err)
	}
	return hex.EncodeToString(buf), nil
}
