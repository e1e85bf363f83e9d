// usecase/render_animation.go
package usecase

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/vitovidale/ai-animator/domain"
)

type RenderAnimationInput struct {
	UserID string
	Code   string
	Prompt string
}

type RenderAnimationOutput struct {
	VideoURL string
	Creation *domain.Creation
}

// RenderAnimationUseCase writes the scene, renders it, records the
// creation and announces it.
type RenderAnimationUseCase struct {
	Workspace domain.SceneWorkspace
	Renderer  domain.SceneRenderer
	Artifacts domain.ArtifactLocator
	Creations domain.CreationRepository
	Events    domain.EventPublisher
	Logger    *logrus.Logger
}

func (uc *RenderAnimationUseCase) Execute(ctx context.Context, input RenderAnimationInput) (*RenderAnimationOutput, error) {
	if strings.TrimSpace(input.Code) == "" || strings.TrimSpace(input.Prompt) == "" {
		return nil, fmt.Errorf("%w: code and prompt must be provided", domain.ErrInvalidInput)
	}
	if input.UserID == "" {
		return nil, domain.ErrUnauthenticated
	}

	// A started render runs to completion even if the client disconnects.
	ctx = context.WithoutCancel(ctx)
	log := uc.Logger.WithField("user_id", input.UserID)

	scene, err := uc.Workspace.Create(ctx, input.Code)
	if err != nil {
		log.WithError(err).Error("could not write scene source")
		return nil, &domain.RenderError{SceneName: "scene", Reason: "scene source could not be written", Err: err}
	}
	log = log.WithField("scene", scene.Name)

	release := sync.OnceFunc(func() {
		if err := uc.Workspace.Release(scene); err != nil {
			log.WithError(err).Warn("scene source cleanup failed")
		}
	})
	defer release()

	result, err := uc.Renderer.Render(ctx, scene)
	release()
	if err != nil {
		return nil, err
	}
	if !uc.Artifacts.HasVideo(scene.Name) {
		renderErr := &domain.RenderError{SceneName: scene.Name, Reason: "renderer exited cleanly but produced no video"}
		if result != nil {
			renderErr.Stdout, renderErr.Stderr = result.Stdout, result.Stderr
		}
		return nil, renderErr
	}
	videoURL := uc.Artifacts.VideoURL(scene.Name)

	creation := &domain.Creation{
		Prompt:   input.Prompt,
		Code:     input.Code,
		VideoURL: videoURL,
	}
	if err := uc.Creations.Append(ctx, input.UserID, creation); err != nil {
		log.WithError(err).Error("rendered video could not be recorded")
		return nil, &domain.PersistenceError{VideoURL: videoURL, Err: err}
	}
	log.WithField("creation_id", creation.ID).Info("saved creation")

	event := domain.CreationEvent{
		CreationID: creation.ID,
		UserID:     input.UserID,
		Prompt:     input.Prompt,
		VideoURL:   videoURL,
		RenderedAt: time.Now().UTC(),
	}
	if err := uc.Events.PublishCreation(ctx, event); err != nil {
		log.WithError(err).Warn("creation event not published")
	}

	return &RenderAnimationOutput{VideoURL: videoURL, Creation: creation}, nil
}
