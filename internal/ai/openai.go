package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"vive-gamer/internal/words"
)

const visionInstruction = "あなたはお絵かきゲームの参加者です。この絵が何を描いているか、日本語1単語で答えてください。単語のみを回答し、説明は不要です。"

type visionRequest struct {
	Model     string          `json:"model"`
	Messages  []visionMessage `json:"messages"`
	MaxTokens int             `json:"max_tokens,omitempty"`
}

type visionMessage struct {
	Role    string       `json:"role"`
	Content []visionPart `json:"content"`
}

type visionPart struct {
	Type     string          `json:"type"`
	Text     string          `json:"text,omitempty"`
	ImageURL *visionImageURL `json:"image_url,omitempty"`
}

type visionImageURL struct {
	URL string `json:"url"`
}

type visionResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error,omitempty"`
}

// Vision asks an OpenAI-compatible vision model what the canvas shows. It
// defers to Fallback when there is no key, no snapshot, or the call fails.
type Vision struct {
	APIKey   string
	BaseURL  string
	Model    string
	Client   *http.Client
	Fallback Responder
	Log      logrus.FieldLogger
}

func NewVision(apiKey, baseURL, model string, fallback Responder, log logrus.FieldLogger) *Vision {
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &Vision{
		APIKey:   strings.TrimSpace(apiKey),
		BaseURL:  strings.TrimRight(baseURL, "/"),
		Model:    model,
		Client:   &http.Client{Timeout: 30 * time.Second},
		Fallback: fallback,
		Log:      log,
	}
}

func (v *Vision) Guess(ctx context.Context, req Request) Result {
	if v.APIKey == "" || req.Snapshot == "" {
		return v.fallback(ctx, req)
	}
	text, err := v.ask(ctx, req.Snapshot)
	if err != nil {
		v.Log.WithError(err).WithField("attempt", req.Attempt).Warn("vision guess failed, using fallback")
		return v.fallback(ctx, req)
	}
	return Result{Text: text, IsCorrect: words.Loosely(text, req.Word)}
}

func (v *Vision) fallback(ctx context.Context, req Request) Result {
	if v.Fallback == nil {
		return Result{Text: scriptedWrong(req.Word, req.Attempt)}
	}
	return v.Fallback.Guess(ctx, req)
}

func (v *Vision) ask(ctx context.Context, snapshot string) (string, error) {
	if !strings.HasPrefix(snapshot, "data:") {
		snapshot = "data:image/png;base64," + snapshot
	}
	reqBody := visionRequest{
		Model: v.Model,
		Messages: []visionMessage{{
			Role: "user",
			Content: []visionPart{
				{Type: "image_url", ImageURL: &visionImageURL{URL: snapshot}},
				{Type: "text", Text: visionInstruction},
			},
		}},
		MaxTokens: 20,
	}
	payload, err := json.Marshal(reqBody)
	if err != nil {
		return "", fmt.Errorf("build vision request: %w", err)
	}

	reqCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	httpReq, err := http.NewRequestWithContext(reqCtx, http.MethodPost, v.BaseURL+"/chat/completions", bytes.NewReader(payload))
	if err != nil {
		return "", fmt.Errorf("build vision request: %w", err)
	}
	httpReq.Header.Set("Authorization", "Bearer "+v.APIKey)
	httpReq.Header.Set("Content-Type", "application/json")

	client := v.Client
	if client == nil {
		client = http.DefaultClient
	}
	resp, err := client.Do(httpReq)
	if err != nil {
		return "", fmt.Errorf("reach vision model: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("read vision response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", fmt.Errorf("vision request failed (%d)", resp.StatusCode)
	}
	var parsed visionResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return "", fmt.Errorf("parse vision response: %w", err)
	}
	if parsed.Error != nil && parsed.Error.Message != "" {
		return "", fmt.Errorf("vision error: %s", parsed.Error.Message)
	}
	if len(parsed.Choices) == 0 {
		return "", errors.New("vision model returned no choices")
	}
	text := strings.TrimSpace(parsed.Choices[0].Message.Content)
	if text == "" {
		return "", errors.New("vision model returned an empty guess")
	}
	return text, nil
}
