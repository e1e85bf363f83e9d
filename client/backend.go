// client/backend.go
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/vitovidale/ai-animator/domain"
)

// BackendError is a non-2xx answer from the animator backend.
type BackendError struct {
	StatusCode int
	Message    string `json:"error"`
	Detail     string `json:"message"`
	Stdout     string `json:"stdout"`
	Stderr     string `json:"stderr"`
	VideoURL   string `json:"videoUrl"`
}

func (e *BackendError) Error() string {
	switch {
	case e.Stderr != "":
		return e.Stderr
	case e.Message != "":
		return fmt.Sprintf("backend returned %d: %s", e.StatusCode, e.Message)
	default:
		return fmt.Sprintf("backend returned %d", e.StatusCode)
	}
}

// BackendClient talks to the render and history routes as one signed-in user.
type BackendClient struct {
	HTTPClient *http.Client
	BaseURL    string
	Token      string
}

func NewBackendClient(baseURL, token string) *BackendClient {
	return &BackendClient{
		HTTPClient: http.DefaultClient,
		BaseURL:    strings.TrimRight(baseURL, "/"),
		Token:      token,
	}
}

func (b *BackendClient) Render(ctx context.Context, code, prompt string) (string, error) {
	var out struct {
		VideoURL string `json:"videoUrl"`
	}
	err := b.do(ctx, http.MethodPost, "/render", domain.RenderRequest{Code: code, Prompt: prompt}, &out)
	if err != nil {
		return "", err
	}
	if out.VideoURL == "" {
		return "", errors.New("backend response carried no videoUrl")
	}
	return out.VideoURL, nil
}

func (b *BackendClient) History(ctx context.Context) ([]domain.Creation, error) {
	var creations []domain.Creation
	if err := b.do(ctx, http.MethodGet, "/history", nil, &creations); err != nil {
		return nil, err
	}
	return creations, nil
}

func (b *BackendClient) DeleteCreation(ctx context.Context, id string) error {
	if id == "" {
		return errors.New("creation id is required")
	}
	return b.do(ctx, http.MethodDelete, "/history/"+url.PathEscape(id), nil, nil)
}

// ClearHistory returns how many creations the backend removed.
func (b *BackendClient) ClearHistory(ctx context.Context) (int, error) {
	var out struct {
		Deleted int `json:"deleted"`
	}
	if err := b.do(ctx, http.MethodDelete, "/history", nil, &out); err != nil {
		return 0, err
	}
	return out.Deleted, nil
}

func (b *BackendClient) do(ctx context.Context, method, path string, in, out any) error {
	var body io.Reader
	if in != nil {
		raw, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("marshal request: %w", err)
		}
		body = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, method, b.BaseURL+path, body)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if b.Token != "" {
		req.Header.Set("Authorization", "Bearer "+b.Token)
	}

	client := b.HTTPClient
	if client == nil {
		client = http.DefaultClient
	}
	resp, err := client.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		backendErr := &BackendError{StatusCode: resp.StatusCode}
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
		if json.Unmarshal(raw, backendErr) != nil {
			backendErr.Message = strings.TrimSpace(string(raw))
		}
		return backendErr
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode %s %s response: %w", method, path, err)
	}
	return nil
}
