// infrastructure/manim_renderer.go
package infrastructure

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/vitovidale/ai-animator/domain"
)

// ManimRenderer runs `<Binary> <scene.py> <SceneClass> -ql` in WorkDir.
type ManimRenderer struct {
	Binary     string
	WorkDir    string
	SceneClass string
	// MediaDir is scrubbed from output alongside WorkDir.
	MediaDir string
	// Timeout of zero lets the subprocess run until it exits.
	Timeout time.Duration
	Logger  *logrus.Logger
}

func (r *ManimRenderer) Render(ctx context.Context, scene *domain.SceneFile) (*domain.RenderResult, error) {
	if r.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.Timeout)
		defer cancel()
	}

	cmd := exec.CommandContext(ctx, r.Binary, scene.Path, r.SceneClass, "-ql")
	cmd.Dir = r.WorkDir
	// manim spawns ffmpeg; don't wait forever on pipes a killed child left open.
	cmd.WaitDelay = 5 * time.Second

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	start := time.Now()
	err := cmd.Run()
	result := &domain.RenderResult{
		Stdout:   r.scrub(stdout.String()),
		Stderr:   r.scrub(stderr.String()),
		Duration: time.Since(start),
	}
	if err != nil {
		renderErr := &domain.RenderError{
			SceneName: scene.Name,
			Reason:    r.describe(ctx, err),
			TimedOut:  errors.Is(ctx.Err(), context.DeadlineExceeded),
			Stdout:    result.Stdout,
			Stderr:    result.Stderr,
			Err:       err,
		}
		r.Logger.WithFields(logrus.Fields{
			"scene":    scene.Name,
			"reason":   renderErr.Reason,
			"duration": result.Duration.String(),
		}).Warn("manim render failed")
		return result, renderErr
	}

	r.Logger.WithFields(logrus.Fields{
		"scene":    scene.Name,
		"duration": result.Duration.String(),
	}).Info("manim render finished")
	return result, nil
}

// describe turns a run error into a caller-safe reason. Spawn errors
// embed the binary path, so they are summarised instead of echoed.
func (r *ManimRenderer) describe(ctx context.Context, err error) string {
	if errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return fmt.Sprintf("timed out after %s", r.Timeout)
	}
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		return exitErr.Error()
	}
	if errors.Is(err, exec.ErrNotFound) {
		return "renderer executable not found"
	}
	return "renderer could not be started"
}

// scrub strips the work and media directories from subprocess output so
// only the scene identifier reaches the caller.
func (r *ManimRenderer) scrub(out string) string {
	for _, dir := range []string{r.WorkDir, r.MediaDir} {
		if dir == "" {
			continue
		}
		out = strings.ReplaceAll(out, filepath.Clean(dir)+string(filepath.Separator), "")
	}
	return out
}
