// domain/interfaces.go
package domain

import "context"

// CreationRepository stores creations partitioned by owner. Every
// operation is scoped to userID; no call reads or deletes across owners.
type CreationRepository interface {
	// Append stores c under userID and fills in c.ID and c.CreatedAt.
	Append(ctx context.Context, userID string, c *Creation) error
	// List returns the owner's creations, newest first.
	List(ctx context.Context, userID string) ([]Creation, error)
	// DeleteOne removes a single creation. Deleting a missing id is not an error.
	DeleteOne(ctx context.Context, userID, creationID string) error
	// DeleteAll removes every creation visible in a snapshot read and
	// reports how many were deleted.
	DeleteAll(ctx context.Context, userID string) (int, error)
}

// Pinger is implemented by stores and brokers that can report liveness.
type Pinger interface {
	Ping(ctx context.Context) error
}

type IdentityVerifier interface {
	Verify(ctx context.Context, token string) (*Identity, error)
}

// SceneWorkspace hands out scene files. The caller that receives a
// SceneFile from Create owns it and must Release it on every path.
type SceneWorkspace interface {
	Create(ctx context.Context, source string) (*SceneFile, error)
	Release(scene *SceneFile) error
}

type SceneRenderer interface {
	Render(ctx context.Context, scene *SceneFile) (*RenderResult, error)
}

type ArtifactLocator interface {
	VideoURL(sceneName string) string
	HasVideo(sceneName string) bool
}

type EventPublisher interface {
	PublishCreation(ctx context.Context, event CreationEvent) error
}
