// client/session.go
package client

import (
	"context"
	"errors"
	"fmt"
	"sync"
)

type State int

const (
	Idle State = iota
	GeneratingCode
	RenderingVideo
	ShowingResult
	ShowingError
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case GeneratingCode:
		return "generating_code"
	case RenderingVideo:
		return "rendering_video"
	case ShowingResult:
		return "showing_result"
	case ShowingError:
		return "showing_error"
	}
	return fmt.Sprintf("state(%d)", int(s))
}

// Busy reports whether a generation or render is in flight.
func (s State) Busy() bool {
	return s == GeneratingCode || s == RenderingVideo
}

type Event string

const (
	EventSubmit     Event = "submit"
	EventCodeReady  Event = "codeReady"
	EventVideoReady Event = "videoReady"
	EventFail       Event = "fail"
	EventReset      Event = "reset"
)

var (
	ErrBusy              = errors.New("an animation is already being generated")
	ErrIllegalTransition = errors.New("illegal session transition")
)

var transitions = map[State]map[Event]State{
	Idle:           {EventSubmit: GeneratingCode},
	GeneratingCode: {EventCodeReady: RenderingVideo, EventFail: ShowingError},
	RenderingVideo: {EventVideoReady: ShowingResult, EventFail: ShowingError},
	ShowingResult:  {EventSubmit: GeneratingCode, EventReset: Idle},
	ShowingError:   {EventSubmit: GeneratingCode, EventReset: Idle},
}

// Snapshot is a consistent copy of what a Session is showing.
type Snapshot struct {
	State    State
	Prompt   string
	Code     string
	VideoURL string
	Err      error
}

// Session is the prompt-to-video workflow of one user. It is safe for
// concurrent use; every mutation goes through fire.
type Session struct {
	mu   sync.Mutex
	snap Snapshot
}

func NewSession() *Session {
	return &Session{}
}

func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snap.State
}

func (s *Session) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snap
}

func (s *Session) fire(ev Event, apply func(*Snapshot)) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	next, ok := transitions[s.snap.State][ev]
	if !ok {
		if ev == EventSubmit && s.snap.State.Busy() {
			return ErrBusy
		}
		return fmt.Errorf("%w: %s on %s", ErrIllegalTransition, ev, s.snap.State)
	}
	s.snap.State = next
	if apply != nil {
		apply(&s.snap)
	}
	return nil
}

// Submit starts a new generation and clears the previous result.
func (s *Session) Submit(prompt string) error {
	if prompt == "" {
		return errors.New("please enter a prompt to generate an animation")
	}
	return s.fire(EventSubmit, func(snap *Snapshot) {
		*snap = Snapshot{State: snap.State, Prompt: prompt}
	})
}

func (s *Session) CodeReady(code string) error {
	return s.fire(EventCodeReady, func(snap *Snapshot) { snap.Code = code })
}

func (s *Session) VideoReady(videoURL string) error {
	return s.fire(EventVideoReady, func(snap *Snapshot) { snap.VideoURL = videoURL })
}

func (s *Session) Fail(err error) error {
	return s.fire(EventFail, func(snap *Snapshot) { snap.Err = err })
}

func (s *Session) Reset() error {
	return s.fire(EventReset, func(snap *Snapshot) { *snap = Snapshot{State: snap.State} })
}

type SceneCodeGenerator interface {
	GenerateSceneCode(ctx context.Context, prompt string) (string, error)
}

type SceneRenderer interface {
	Render(ctx context.Context, code, prompt string) (string, error)
}

// Run drives one full submit → codeReady → videoReady cycle, landing in
// ShowingError if either step fails.
func (s *Session) Run(ctx context.Context, gen SceneCodeGenerator, renderer SceneRenderer, prompt string) (string, error) {
	if err := s.Submit(prompt); err != nil {
		return "", err
	}

	code, err := gen.GenerateSceneCode(ctx, prompt)
	if err != nil {
		return "", s.failWith(err)
	}
	if err := s.CodeReady(code); err != nil {
		return "", err
	}

	videoURL, err := renderer.Render(ctx, code, prompt)
	if err != nil {
		return "", s.failWith(fmt.Errorf("video rendering failed: %w", err))
	}
	if err := s.VideoReady(videoURL); err != nil {
		return "", err
	}
	return videoURL, nil
}

func (s *Session) failWith(err error) error {
	if ferr := s.Fail(err); ferr != nil {
		return errors.Join(err, ferr)
	}
	return err
}
