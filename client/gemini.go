// client/gemini.go
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
)

const (
	DefaultGeminiBaseURL = "https://generativelanguage.googleapis.com/v1beta"
	DefaultGeminiModel   = "gemini-2.0-flash"

	manimImport = "from manim import *"
)

// ErrEmptyCandidate is returned when the model answers without any text.
var ErrEmptyCandidate = errors.New("the model returned an empty response")

// GeminiClient calls the generateContent endpoint of the Generative
// Language API.
type GeminiClient struct {
	HTTPClient *http.Client
	BaseURL    string
	Model      string
	APIKey     string
}

func NewGeminiClient(apiKey string) *GeminiClient {
	return &GeminiClient{
		HTTPClient: http.DefaultClient,
		BaseURL:    DefaultGeminiBaseURL,
		Model:      DefaultGeminiModel,
		APIKey:     apiKey,
	}
}

type geminiPart struct {
	Text string `json:"text"`
}

type geminiContent struct {
	Role  string       `json:"role,omitempty"`
	Parts []geminiPart `json:"parts"`
}

type geminiRequest struct {
	Contents []geminiContent `json:"contents"`
}

type geminiResponse struct {
	Candidates []struct {
		Content geminiContent `json:"content"`
	} `json:"candidates"`
	Error *struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
		Status  string `json:"status"`
	} `json:"error,omitempty"`
}

func sceneCodePrompt(prompt string) string {
	return fmt.Sprintf("You are an expert in Manim, the mathematical animation library for Python. "+
		"Generate Python code for a Manim animation based on the following user request: %q. "+
		"RULES: The code must be a single, complete, and runnable Manim scene. "+
		"The class must inherit from `Scene`, `ThreeDScene`, or another appropriate Manim scene type. "+
		"Name the class `GeneratedAnimationScene`. "+
		"The code should be self-contained and not require external files. "+
		"Do not include any explanation, comments, or markdown formatting like ```python. "+
		"Only return the raw Python code.", prompt)
}

func explainPrompt(code string) string {
	return "You are an expert Python and Manim developer acting as a helpful programming tutor. " +
		"Explain the following Manim code snippet step-by-step. Break down what each line or section does. " +
		"Use simple language and assume the reader is a beginner. " +
		"Use markdown for formatting, including headings and bullet points. " +
		"Code to explain:\n```python\n" + code + "\n```"
}

// GenerateSceneCode asks the model for a scene and returns source ready to
// render: fences removed and the manim import prepended.
func (g *GeminiClient) GenerateSceneCode(ctx context.Context, prompt string) (string, error) {
	if strings.TrimSpace(prompt) == "" {
		return "", errors.New("a prompt is required to generate an animation")
	}
	text, err := g.generate(ctx, sceneCodePrompt(prompt))
	if err != nil {
		return "", fmt.Errorf("code generation failed: %w", err)
	}
	return manimImport + "\n\n" + StripCodeFence(text), nil
}

func (g *GeminiClient) ExplainCode(ctx context.Context, code string) (string, error) {
	if strings.TrimSpace(code) == "" {
		return "", errors.New("there is no code to explain")
	}
	text, err := g.generate(ctx, explainPrompt(code))
	if err != nil {
		return "", fmt.Errorf("explanation failed: %w", err)
	}
	return text, nil
}

// StripCodeFence removes a leading ```python and a trailing ``` if present.
func StripCodeFence(text string) string {
	text = strings.TrimSpace(text)
	if rest, ok := strings.CutPrefix(text, "```python"); ok {
		text = strings.TrimSpace(rest)
	}
	if rest, ok := strings.CutSuffix(text, "```"); ok {
		text = strings.TrimSpace(rest)
	}
	return text
}

func (g *GeminiClient) generate(ctx context.Context, text string) (string, error) {
	body, err := json.Marshal(geminiRequest{
		Contents: []geminiContent{{Role: "user", Parts: []geminiPart{{Text: text}}}},
	})
	if err != nil {
		return "", fmt.Errorf("marshal request: %w", err)
	}

	endpoint := fmt.Sprintf("%s/models/%s:generateContent", strings.TrimRight(g.BaseURL, "/"), g.Model)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-goog-api-key", g.APIKey)

	resp, err := g.httpClient().Do(req)
	if err != nil {
		return "", fmt.Errorf("send request: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 4<<20))
	if err != nil {
		return "", fmt.Errorf("read response: %w", err)
	}

	var decoded geminiResponse
	if err := json.Unmarshal(raw, &decoded); err != nil {
		if resp.StatusCode != http.StatusOK {
			return "", fmt.Errorf("HTTP %d: %s", resp.StatusCode, strings.TrimSpace(string(raw)))
		}
		return "", fmt.Errorf("decode response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		if decoded.Error != nil {
			return "", fmt.Errorf("HTTP %d: %s", resp.StatusCode, decoded.Error.Message)
		}
		return "", fmt.Errorf("HTTP %d", resp.StatusCode)
	}

	if len(decoded.Candidates) == 0 || len(decoded.Candidates[0].Content.Parts) == 0 {
		return "", ErrEmptyCandidate
	}
	out := strings.TrimSpace(decoded.Candidates[0].Content.Parts[0].Text)
	if out == "" {
		return "", ErrEmptyCandidate
	}
	return out, nil
}

func (g *GeminiClient) httpClient() *http.Client {
	if g.HTTPClient != nil {
		return g.HTTPClient
	}
	return http.DefaultClient
}
