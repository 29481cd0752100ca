package imagegen

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
)

type imageRequest struct {
	Model  string `json:"model"`
	Prompt string `json:"prompt"`
	Size   string `json:"size,omitempty"`
	N      int    `json:"n"`
}

type imageResponse struct {
	Data []struct {
		B64JSON string `json:"b64_json"`
		URL     string `json:"url"`
	} `json:"data"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error,omitempty"`
}

// OpenAI calls an OpenAI-compatible image generation endpoint.
type OpenAI struct {
	APIKey  string
	BaseURL string
	Model   string
	Client  *http.Client
}

func NewOpenAI(apiKey, baseURL, model string) *OpenAI {
	return &OpenAI{
		APIKey:  strings.TrimSpace(apiKey),
		BaseURL: strings.TrimRight(baseURL, "/"),
		Model:   model,
		Client:  &http.Client{Timeout: 60 * time.Second},
	}
}

func imagePrompt(prompt, style string) string {
	if style == "" {
		return "以下のプロンプトを画像にしてください。テキストや文字は含めないでください。\n\nプロンプト: " + prompt
	}
	return "以下のプロンプトを「" + style + "」スタイルで画像にしてください。テキストや文字は含めないでください。\n\nプロンプト: " + prompt
}

func (o *OpenAI) Generate(ctx context.Context, prompt, style string) (string, error) {
	if o.APIKey == "" {
		return "", errors.New("image API key is not configured")
	}
	payload, err := json.Marshal(imageRequest{
		Model:  o.Model,
		Prompt: imagePrompt(prompt, style),
		Size:   "1024x1024",
		N:      1,
	})
	if err != nil {
		return "", fmt.Errorf("build image request: %w", err)
	}

	reqCtx, cancel := context.WithTimeout(ctx, 60*time.Second)
	defer cancel()

	req, err := http.NewRequestWithContext(reqCtx, http.MethodPost, o.BaseURL+"/images/generations", bytes.NewReader(payload))
	if err != nil {
		return "", fmt.Errorf("build image request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+o.APIKey)
	req.Header.Set("Content-Type", "application/json")

	client := o.Client
	if client == nil {
		client = http.DefaultClient
	}
	resp, err := client.Do(req)
	if err != nil {
		return "", fmt.Errorf("reach image model: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("read image response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", fmt.Errorf("image request failed (%d)", resp.StatusCode)
	}
	var parsed imageResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return "", fmt.Errorf("parse image response: %w", err)
	}
	if parsed.Error != nil && parsed.Error.Message != "" {
		return "", fmt.Errorf("image error: %s", parsed.Error.Message)
	}
	for _, item := range parsed.Data {
		if item.B64JSON != "" {
			return "data:image/png;base64," + item.B64JSON, nil
		}
		if item.URL != "" {
			return item.URL, nil
		}
	}
	return "", errors.New("image model returned no image")
}
