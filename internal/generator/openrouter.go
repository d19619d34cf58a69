package generator

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/Killo023/assignment-sub000/internal/utils"
)

// Generator produces the generated text for a submission. Single shot: a
// failed call is reported, never retried.
type Generator interface {
	Generate(ctx context.Context, text, category string) (string, error)
}

type openRouterGenerator struct {
	apiKey string
	model  string
	logger *utils.Logger
	client *http.Client
}

type openRouterRequest struct {
	Model    string    `json:"model"`
	Messages []message `json:"messages"`
}

type message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type openRouterResponse struct {
	Choices []choice `json:"choices"`
	Error   *struct {
		Message string `json:"message"`
		Code    string `json:"code"`
	} `json:"error,omitempty"`
}

type choice struct {
	Message message `json:"message"`
}

func NewOpenRouterGenerator(apiKey, model string, logger *utils.Logger) Generator {
	return &openRouterGenerator{
		apiKey: apiKey,
		model:  model,
		logger: logger,
		client: &http.Client{
			Timeout: 120 * time.Second,
		},
	}
}

func (g *openRouterGenerator) Generate(ctx context.Context, text, category string) (string, error) {
	// Keep the prompt within model context; the tail of very long
	// documents contributes little to the result.
	if len(text) > 12000 {
		text = text[:12000] + "..."
	}

	prompt := fmt.Sprintf(`You are an expert academic writer. Using the source material below, write a complete, well-structured response for the subject %q. Write in clear prose with an introduction, body and conclusion. Respond with the text only, no preamble.

Source material:
%s`, category, text)

	reqBody := openRouterRequest{
		Model: g.model,
		Messages: []message{
			{
				Role:    "user",
				Content: prompt,
			},
		},
	}

	jsonData, err := json.Marshal(reqBody)
	if err != nil {
		return "", fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, "POST", "https://openrouter.ai/api/v1/chat/completions", bytes.NewBuffer(jsonData))
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Authorization", "Bearer "+g.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := g.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		g.logger.Error("OpenRouter API error", "status", resp.StatusCode, "body", string(body))
		return "", fmt.Errorf("OpenRouter API returned status %d", resp.StatusCode)
	}

	var orResp openRouterResponse
	if err := json.Unmarshal(body, &orResp); err != nil {
		return "", fmt.Errorf("failed to unmarshal response: %w", err)
	}

	if orResp.Error != nil {
		return "", fmt.Errorf("OpenRouter API error: %s", orResp.Error.Message)
	}

	if len(orResp.Choices) == 0 {
		return "", fmt.Errorf("no choices in response")
	}

	content := stripCodeFence(orResp.Choices[0].Message.Content)
	if content == "" {
		return "", fmt.Errorf("empty completion in response")
	}

	return content, nil
}

// stripCodeFence removes a surrounding markdown code block if the model
// wrapped its answer in one.
func stripCodeFence(content string) string {
	if len(content) > 7 && content[:3] == "```" {
		start := 0
		end := len(content)

		for i := 3; i < len(content); i++ {
			if content[i] == '\n' {
				start = i + 1
				break
			}
		}

		for i := len(content) - 1; i >= 0; i-- {
			if i >= 2 && content[i-2:i+1] == "```" {
				end = i - 2
				break
			}
		}

		if start < end {
			content = content[start:end]
		}
	}

	return content
}
