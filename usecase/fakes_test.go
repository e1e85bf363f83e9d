package usecase

import (
	"context"
	"io"
	"sync"

	"github.com/sirupsen/logrus"

	"github.com/vitovidale/ai-animator/domain"
)

// journal records the order in which collaborators were called.
type journal struct {
	mu    sync.Mutex
	steps []string
}

func (j *journal) add(step string) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.steps = append(j.steps, step)
}

type fakeWorkspace struct {
	j          *journal
	createErr  error
	releaseErr error
	created    []*domain.SceneFile
	released   []string
}

func (w *fakeWorkspace) Create(_ context.Context, source string) (*domain.SceneFile, error) {
	w.j.add("create")
	if w.createErr != nil {
		return nil, w.createErr
	}
	scene := &domain.SceneFile{ID: "0123456789abcdef", Name: "temp_scene_0123456789abcdef", Path: "/work/temp_scene_0123456789abcdef.py"}
	w.created = append(w.created, scene)
	return scene, nil
}

func (w *fakeWorkspace) Release(scene *domain.SceneFile) error {
	w.j.add("release")
	w.released = append(w.released, scene.Name)
	return w.releaseErr
}

type fakeRenderer struct {
	j      *journal
	render func(ctx context.Context, scene *domain.SceneFile) (*domain.RenderResult, error)
}

func (r *fakeRenderer) Render(ctx context.Context, scene *domain.SceneFile) (*domain.RenderResult, error) {
	r.j.add("render")
	if r.render != nil {
		return r.render(ctx, scene)
	}
	return &domain.RenderResult{Stdout: "File ready"}, nil
}

type fakeArtifacts struct {
	missing bool
}

func (a *fakeArtifacts) VideoURL(sceneName string) string {
	return "http://localhost:5001/videos/" + sceneName + "/480p15/GeneratedAnimationScene.mp4"
}

func (a *fakeArtifacts) HasVideo(string) bool { return !a.missing }

type fakeRepository struct {
	j         *journal
	appendErr error
	listErr   error
	deleteErr error
	byOwner   map[string][]domain.Creation
}

func newFakeRepository(j *journal) *fakeRepository {
	return &fakeRepository{j: j, byOwner: map[string][]domain.Creation{}}
}

func (r *fakeRepository) Append(_ context.Context, userID string, c *domain.Creation) error {
	r.j.add("append")
	if r.appendErr != nil {
		return r.appendErr
	}
	c.ID = "creation-1"
	c.UserID = userID
	r.byOwner[userID] = append(r.byOwner[userID], *c)
	return nil
}

func (r *fakeRepository) List(_ context.Context, userID string) ([]domain.Creation, error) {
	if r.listErr != nil {
		return nil, r.listErr
	}
	return r.byOwner[userID], nil
}

func (r *fakeRepository) DeleteOne(_ context.Context, userID, creationID string) error {
	if r.deleteErr != nil {
		return r.deleteErr
	}
	kept := r.byOwner[userID][:0]
	for _, c := range r.byOwner[userID] {
		if c.ID != creationID {
			kept = append(kept, c)
		}
	}
	r.byOwner[userID] = kept
	return nil
}

func (r *fakeRepository) DeleteAll(_ context.Context, userID string) (int, error) {
	if r.deleteErr != nil {
		return 0, r.deleteErr
	}
	n := len(r.byOwner[userID])
	delete(r.byOwner, userID)
	return n, nil
}

type fakePublisher struct {
	j      *journal
	err    error
	events []domain.CreationEvent
}

func (p *fakePublisher) PublishCreation(_ context.Context, event domain.CreationEvent) error {
	p.j.add("publish")
	p.events = append(p.events, event)
	return p.err
}

func quietLogger() *logrus.Logger {
	log := logrus.New()
	log.SetOutput(io.Discard)
	return log
}
