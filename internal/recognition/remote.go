// internal/recognition/remote.go
package recognition

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	recerr "mcp-meal-score/internal/errors"
)

// DefaultRemoteTimeout bounds one call to the vision endpoint.
const DefaultRemoteTimeout = 30 * time.Second

const identifyPrompt = `Look at this photo and identify the main food item in it.
Respond with ONLY the food name in lowercase, for example "pizza", "caesar salad" or "banana".
Do not add punctuation, quantities or any other words.`

// Identifier names the food in an encoded JPEG.
type Identifier interface {
	Identify(ctx context.Context, jpeg []byte) (string, error)
}

// VisionClient calls an OpenAI-compatible chat completions endpoint.
type VisionClient struct {
	httpClient *http.Client
	apiURL     string
	apiKey     string
	model      string
	timeout    time.Duration
}

func NewVisionClient(apiURL, apiKey, model string) *VisionClient {
	c := &VisionClient{
		httpClient: &http.Client{},
		apiURL:     apiURL,
		apiKey:     apiKey,
		model:      model,
	}
	c.setTimeout(DefaultRemoteTimeout)
	return c
}

func (c *VisionClient) setTimeout(d time.Duration) {
	c.timeout = d
	c.httpClient.Timeout = d
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

// Identify sends the image once, without retry. Every failure is a
// *errors.RecognitionError.
func (c *VisionClient) Identify(ctx context.Context, jpeg []byte) (string, error) {
	if c.apiKey == "" {
		return "", recerr.NewCredentialMissingError()
	}

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	completionRequest := map[string]interface{}{
		"model": c.model,
		"messages": []map[string]interface{}{
			{
				"role": "user",
				"content": []map[string]interface{}{
					{
						"type": "text",
						"text": identifyPrompt,
					},
					{
						"type": "image_url",
						"image_url": map[string]string{
							"url": "data:image/jpeg;base64," + base64.StdEncoding.EncodeToString(jpeg),
						},
					},
				},
			},
		},
		"max_tokens": 50,
	}

	jsonData, err := json.Marshal(completionRequest)
	if err != nil {
		return "", recerr.NewNetworkError(fmt.Errorf("failed to marshal request: %w", err))
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.apiURL, bytes.NewReader(jsonData))
	if err != nil {
		return "", recerr.NewNetworkError(fmt.Errorf("failed to create HTTP request: %w", err))
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", recerr.NewNetworkError(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		bodyBytes, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return "", recerr.NewStatusError(resp.StatusCode, strings.TrimSpace(string(bodyBytes)))
	}

	var completion chatResponse
	if err := json.NewDecoder(resp.Body).Decode(&completion); err != nil {
		return "", recerr.NewMalformedResponseError("failed to decode response", err)
	}
	if len(completion.Choices) == 0 {
		return "", recerr.NewMalformedResponseError("response has no choices", nil)
	}

	label := strings.ToLower(strings.TrimSpace(completion.Choices[0].Message.Content))
	if label == "" {
		return "", recerr.NewMalformedResponseError("response content is empty", nil)
	}
	return label, nil
}
