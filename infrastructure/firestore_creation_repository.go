// infrastructure/firestore_creation_repository.go
package infrastructure

import (
	"context"
	"fmt"
	"time"

	"cloud.google.com/go/firestore"

	"github.com/vitovidale/ai-animator/domain"
)

// Firestore caps a transaction at 500 writes.
const firestoreBatchLimit = 500

// FirestoreCreationRepository keeps each owner's creations under
// creations/{uid}/userCreations.
type FirestoreCreationRepository struct {
	Client *firestore.Client
}

func NewFirestoreCreationRepository(client *firestore.Client) *FirestoreCreationRepository {
	return &FirestoreCreationRepository{Client: client}
}

// Ping reads at most one owner document.
func (r *FirestoreCreationRepository) Ping(ctx context.Context) error {
	if _, err := r.Client.Collection("creations").Limit(1).Documents(ctx).GetAll(); err != nil {
		return fmt.Errorf("firestore unreachable: %w", err)
	}
	return nil
}

func (r *FirestoreCreationRepository) userCreations(userID string) *firestore.CollectionRef {
	return r.Client.Collection("creations").Doc(userID).Collection("userCreations")
}

func (r *FirestoreCreationRepository) Append(ctx context.Context, userID string, c *domain.Creation) error {
	ref, _, err := r.userCreations(userID).Add(ctx, map[string]interface{}{
		"prompt":    c.Prompt,
		"code":      c.Code,
		"videoUrl":  c.VideoURL,
		"createdAt": firestore.ServerTimestamp,
		"userId":    userID,
	})
	if err != nil {
		return fmt.Errorf("adding creation: %w", err)
	}
	c.ID = ref.ID
	c.UserID = userID
	// The stored value is the server timestamp; this is the local estimate.
	c.CreatedAt = time.Now().UTC()
	return nil
}

func (r *FirestoreCreationRepository) List(ctx context.Context, userID string) ([]domain.Creation, error) {
	docs, err := r.userCreations(userID).OrderBy("createdAt", firestore.Desc).Documents(ctx).GetAll()
	if err != nil {
		return nil, fmt.Errorf("failed to query creations: %w", err)
	}
	creations := make([]domain.Creation, 0, len(docs))
	for _, doc := range docs {
		var c domain.Creation
		if err := doc.DataTo(&c); err != nil {
			return nil, fmt.Errorf("decoding creation %s: %w", doc.Ref.ID, err)
		}
		c.ID = doc.Ref.ID
		creations = append(creations, c)
	}
	return creations, nil
}

func (r *FirestoreCreationRepository) DeleteOne(ctx context.Context, userID, creationID string) error {
	if _, err := r.userCreations(userID).Doc(creationID).Delete(ctx); err != nil {
		return fmt.Errorf("deleting creation %s: %w", creationID, err)
	}
	return nil
}

// DeleteAll reads a snapshot of the owner's documents and deletes them,
// one transaction per chunk. Documents added after the read are left alone.
func (r *FirestoreCreationRepository) DeleteAll(ctx context.Context, userID string) (int, error) {
	docs, err := r.userCreations(userID).Documents(ctx).GetAll()
	if err != nil {
		return 0, fmt.Errorf("reading creations snapshot: %w", err)
	}
	deleted := 0
	for start := 0; start < len(docs); start += firestoreBatchLimit {
		chunk := docs[start:min(start+firestoreBatchLimit, len(docs))]
		err := r.Client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
			for _, doc := range chunk {
				if err := tx.Delete(doc.Ref); err != nil {
					return err
				}
			}
			return nil
		})
		if err != nil {
			return deleted, fmt.Errorf("deleting creations chunk: %w", err)
		}
		deleted += len(chunk)
	}
	return deleted, nil
}
