package usecase

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vitovidale/ai-animator/domain"
)

type renderFixture struct {
	j         *journal
	workspace *fakeWorkspace
	renderer  *fakeRenderer
	artifacts *fakeArtifacts
	repo      *fakeRepository
	events    *fakePublisher
	uc        *RenderAnimationUseCase
}

func newRenderFixture() *renderFixture {
	j := &journal{}
	f := &renderFixture{
		j:         j,
		workspace: &fakeWorkspace{j: j},
		renderer:  &fakeRenderer{j: j},
		artifacts: &fakeArtifacts{},
		repo:      newFakeRepository(j),
		events:    &fakePublisher{j: j},
	}
	f.uc = &RenderAnimationUseCase{
		Workspace: f.workspace,
		Renderer:  f.renderer,
		Artifacts: f.artifacts,
		Creations: f.repo,
		Events:    f.events,
		Logger:    quietLogger(),
	}
	return f
}

var validInput = RenderAnimationInput{UserID: "alice", Code: "from manim import *", Prompt: "A circle"}

func TestRenderAnimationSuccess(t *testing.T) {
	f := newRenderFixture()

	out, err := f.uc.Execute(context.Background(), validInput)
	require.NoError(t, err)

	wantURL := "http://localhost:5001/videos/temp_scene_0123456789abcdef/480p15/GeneratedAnimationScene.mp4"
	assert.Equal(t, wantURL, out.VideoURL)
	assert.Equal(t, "creation-1", out.Creation.ID)

	saved := f.repo.byOwner["alice"]
	require.Len(t, saved, 1)
	assert.Equal(t, "A circle", saved[0].Prompt)
	assert.Equal(t, "from manim import *", saved[0].Code)
	assert.Equal(t, wantURL, saved[0].VideoURL)

	require.Len(t, f.events.events, 1)
	assert.Equal(t, "creation-1", f.events.events[0].CreationID)
	assert.Equal(t, "alice", f.events.events[0].UserID)

	// The scene is released once, after rendering and before recording.
	assert.Equal(t, []string{"create", "render", "release", "append", "publish"}, f.j.steps)
}

func TestRenderAnimationRejectsInvalidInput(t *testing.T) {
	cases := map[string]RenderAnimationInput{
		"missing code":   {UserID: "alice", Prompt: "p"},
		"missing prompt": {UserID: "alice", Code: "c"},
		"blank":          {UserID: "alice", Code: " \t", Prompt: "\n"},
	}
	for name, input := range cases {
		t.Run(name, func(t *testing.T) {
			f := newRenderFixture()
			_, err := f.uc.Execute(context.Background(), input)
			assert.ErrorIs(t, err, domain.ErrInvalidInput)
			assert.Empty(t, f.j.steps)
		})
	}

	f := newRenderFixture()
	_, err := f.uc.Execute(context.Background(), RenderAnimationInput{Code: "c", Prompt: "p"})
	assert.ErrorIs(t, err, domain.ErrUnauthenticated)
	assert.Empty(t, f.j.steps)
}

func TestRenderAnimationRenderFailure(t *testing.T) {
	f := newRenderFixture()
	f.renderer.render = func(context.Context, *domain.SceneFile) (*domain.RenderResult, error) {
		return &domain.RenderResult{Stderr: "SyntaxError"}, &domain.RenderError{
			SceneName: "temp_scene_0123456789abcdef",
			Reason:    "exit status 1",
			Stderr:    "SyntaxError",
		}
	}

	_, err := f.uc.Execute(context.Background(), validInput)
	require.ErrorIs(t, err, domain.ErrRenderFailed)

	var renderErr *domain.RenderError
	require.True(t, errors.As(err, &renderErr))
	assert.Equal(t, "SyntaxError", renderErr.Stderr)

	assert.Equal(t, []string{"create", "render", "release"}, f.j.steps)
	assert.Empty(t, f.repo.byOwner)
	assert.Empty(t, f.events.events)
}

func TestRenderAnimationMissingVideo(t *testing.T) {
	f := newRenderFixture()
	f.artifacts.missing = true

	_, err := f.uc.Execute(context.Background(), validInput)
	var renderErr *domain.RenderError
	require.True(t, errors.As(err, &renderErr))
	assert.Contains(t, renderErr.Reason, "no video")
	assert.Equal(t, "File ready", renderErr.Stdout)
	assert.Equal(t, []string{"create", "render", "release"}, f.j.steps)
}

func TestRenderAnimationSceneNotWritten(t *testing.T) {
	f := newRenderFixture()
	f.workspace.createErr = errors.New("disk full")

	_, err := f.uc.Execute(context.Background(), validInput)
	assert.ErrorIs(t, err, domain.ErrRenderFailed)
	assert.Equal(t, []string{"create"}, f.j.steps)
}

func TestRenderAnimationPersistenceFailure(t *testing.T) {
	f := newRenderFixture()
	f.repo.appendErr = errors.New("firestore unavailable")

	_, err := f.uc.Execute(context.Background(), validInput)
	require.ErrorIs(t, err, domain.ErrPersistenceFailed)

	var persistErr *domain.PersistenceError
	require.True(t, errors.As(err, &persistErr))
	assert.Contains(t, persistErr.VideoURL, "temp_scene_0123456789abcdef")
	assert.Empty(t, f.events.events)
	assert.Equal(t, []string{"temp_scene_0123456789abcdef"}, f.workspace.released)
}

func TestRenderAnimationSideFailuresDoNotFailTheRequest(t *testing.T) {
	f := newRenderFixture()
	f.workspace.releaseErr = domain.ErrCleanupFailed
	f.events.err = errors.New("broker down")

	out, err := f.uc.Execute(context.Background(), validInput)
	require.NoError(t, err)
	assert.NotEmpty(t, out.VideoURL)
	assert.Len(t, f.repo.byOwner["alice"], 1)
	assert.Len(t, f.workspace.released, 1)
}

func TestRenderAnimationSurvivesClientCancellation(t *testing.T) {
	f := newRenderFixture()
	f.renderer.render = func(ctx context.Context, _ *domain.SceneFile) (*domain.RenderResult, error) {
		assert.NoError(t, ctx.Err())
		return &domain.RenderResult{}, nil
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := f.uc.Execute(ctx, validInput)
	require.NoError(t, err)
	assert.Len(t, f.repo.byOwner["alice"], 1)
}
