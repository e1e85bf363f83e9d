// infrastructure/postgrest_creation_repository.go
package infrastructure

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	postgrest "github.com/supabase-community/postgrest-go"

	"github.com/vitovidale/ai-animator/domain"
)

// PostgRESTCreationRepository stores creations in a Supabase-hosted table
// through its REST interface. The table needs a created_at column
// defaulting to now().
type PostgRESTCreationRepository struct {
	Client *postgrest.Client
	Table  string
}

type postgrestCreationRow struct {
	ID        string     `json:"id"`
	UserID    string     `json:"user_id"`
	Prompt    string     `json:"prompt"`
	Code      string     `json:"code"`
	VideoURL  string     `json:"video_url"`
	CreatedAt *time.Time `json:"created_at,omitempty"`
}

type postgrestIDRow struct {
	ID string `json:"id"`
}

// NewPostgRESTClient points postgrest-go at <supabaseURL>/rest/v1 with the
// service key as both apikey and bearer.
func NewPostgRESTClient(supabaseURL, serviceKey string) (*postgrest.Client, error) {
	client := postgrest.NewClient(supabaseURL+"/rest/v1", "", map[string]string{
		"apikey":        serviceKey,
		"Authorization": fmt.Sprintf("Bearer %s", serviceKey),
	})
	if client.ClientError != nil {
		return nil, fmt.Errorf("failed to initialize PostgREST client: %w", client.ClientError)
	}
	return client, nil
}

func NewPostgRESTCreationRepository(client *postgrest.Client, table string) *PostgRESTCreationRepository {
	return &PostgRESTCreationRepository{Client: client, Table: table}
}

// Ping fetches at most one id from the table.
func (r *PostgRESTCreationRepository) Ping(context.Context) error {
	var rows []postgrestIDRow
	if _, err := r.Client.From(r.Table).Select("id", "", false).Limit(1, "").ExecuteTo(&rows); err != nil {
		return fmt.Errorf("postgrest unreachable: %w", err)
	}
	return nil
}

func (r *PostgRESTCreationRepository) Append(ctx context.Context, userID string, c *domain.Creation) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	row := postgrestCreationRow{
		ID:       uuid.NewString(),
		UserID:   userID,
		Prompt:   c.Prompt,
		Code:     c.Code,
		VideoURL: c.VideoURL,
	}
	var inserted []postgrestCreationRow
	if _, err := r.Client.From(r.Table).Insert(row, false, "", "representation", "").ExecuteTo(&inserted); err != nil {
		return fmt.Errorf("inserting creation: %w", err)
	}
	if len(inserted) == 0 {
		return fmt.Errorf("inserting creation: no row returned for %s", row.ID)
	}
	*c = inserted[0].toDomain()
	return nil
}

func (r *PostgRESTCreationRepository) List(ctx context.Context, userID string) ([]domain.Creation, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	var rows []postgrestCreationRow
	_, err := r.Client.From(r.Table).
		Select("*", "", false).
		Eq("user_id", userID).
		Order("created_at", &postgrest.OrderOpts{Ascending: false}).
		ExecuteTo(&rows)
	if err != nil {
		return nil, fmt.Errorf("failed to query creations: %w", err)
	}
	creations := make([]domain.Creation, 0, len(rows))
	for _, row := range rows {
		creations = append(creations, row.toDomain())
	}
	return creations, nil
}

func (r *PostgRESTCreationRepository) DeleteOne(ctx context.Context, userID, creationID string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	_, _, err := r.Client.From(r.Table).
		Delete("", "").
		Eq("user_id", userID).
		Eq("id", creationID).
		Execute()
	if err != nil {
		return fmt.Errorf("deleting creation %s: %w", creationID, err)
	}
	return nil
}

// DeleteAll reads the owner's ids, then deletes exactly that set in one
// request.
func (r *PostgRESTCreationRepository) DeleteAll(ctx context.Context, userID string) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	var snapshot []postgrestIDRow
	if _, err := r.Client.From(r.Table).Select("id", "", false).Eq("user_id", userID).ExecuteTo(&snapshot); err != nil {
		return 0, fmt.Errorf("reading creations snapshot: %w", err)
	}
	if len(snapshot) == 0 {
		return 0, nil
	}
	ids := make([]string, len(snapshot))
	for i, row := range snapshot {
		ids[i] = row.ID
	}
	_, _, err := r.Client.From(r.Table).
		Delete("", "").
		Eq("user_id", userID).
		In("id", ids).
		Execute()
	if err != nil {
		return 0, fmt.Errorf("batch deleting creations: %w", err)
	}
	return len(ids), nil
}

func (row postgrestCreationRow) toDomain() domain.Creation {
	c := domain.Creation{
		ID:       row.ID,
		UserID:   row.UserID,
		Prompt:   row.Prompt,
		Code:     row.Code,
		VideoURL: row.VideoURL,
	}
	if row.CreatedAt != nil {
		c.CreatedAt = *row.CreatedAt
	}
	return c
}
