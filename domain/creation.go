// domain/creation.go
package domain

import "time"

// Creation is one rendered animation recorded for its owner.
type Creation struct {
	ID        string    `json:"id" firestore:"-"`
	Prompt    string    `json:"prompt" firestore:"prompt"`
	Code      string    `json:"code" firestore:"code"`
	VideoURL  string    `json:"videoUrl" firestore:"videoUrl"`
	CreatedAt time.Time `json:"createdAt" firestore:"createdAt"`
	UserID    string    `json:"userId" firestore:"userId"`
}

type RenderRequest struct {
	Code   string `json:"code"`
	Prompt string `json:"prompt"`
}

// Identity is the verified caller of a protected endpoint.
type Identity struct {
	UID      string
	Email    string
	Provider string
}

// SceneFile is a temporary scene source written for a single render.
// Name doubles as the module name manim uses for its output directory.
type SceneFile struct {
	ID   string
	Name string
	Path string
}

type RenderResult struct {
	Stdout   string
	Stderr   string
	Duration time.Duration
}

type CreationEvent struct {
	CreationID string    `json:"creation_id"`
	UserID     string    `json:"user_id"`
	Prompt     string    `json:"prompt"`
	VideoURL   string    `json:"video_url"`
	RenderedAt time.Time `json:"rendered_at"`
}
