package openai

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

	"shaggydog/internal/services"
)

const defaultHTTPTimeout = 120 * time.Second

// Config captures the runtime settings required to talk to the provider.
type Config struct {
	APIKey         string
	BaseURL        string
	VisionModel    string
	ImageModel     string
	TimeoutSeconds int
}

// Client talks to an OpenAI-compatible API for vision classification and
// image generation.
type Client struct {
	cfg        Config
	httpClient *http.Client
}

// Option customizes the client.
type Option func(*Client)

// WithHTTPClient overrides the default HTTP client (used in tests).
func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) {
		if client != nil {
			c.httpClient = client
		}
	}
}

// NewClient constructs a provider client using the supplied configuration.
func NewClient(cfg Config, opts ...Option) *Client {
	timeout := defaultHTTPTimeout
	if cfg.TimeoutSeconds > 0 {
		timeout = time.Duration(cfg.TimeoutSeconds) * time.Second
	}
	client := &Client{
		cfg: Config{
			APIKey:         strings.TrimSpace(cfg.APIKey),
			BaseURL:        strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/"),
			VisionModel:    strings.TrimSpace(cfg.VisionModel),
			ImageModel:     strings.TrimSpace(cfg.ImageModel),
			TimeoutSeconds: cfg.TimeoutSeconds,
		},
		httpClient: &http.Client{Timeout: timeout},
	}
	for _, opt := range opts {
		opt(client)
	}
	if client.cfg.BaseURL == "" {
		client.cfg.BaseURL = "https://api.openai.com/v1"
	}
	if client.httpClient == nil {
		client.httpClient = &http.Client{Timeout: timeout}
	}
	return client
}

// Classify sends the image with a system instruction and question to the
// vision model and returns the trimmed single-label response.
func (c *Client) Classify(ctx context.Context, image []byte, system, question string) (string, error) {
	return c.visionCompletion(ctx, "classify", image, system, question, 50, 0.7)
}

// Describe sends the image with a system instruction and question to the
// vision model and returns free text used to seed later prompts.
func (c *Client) Describe(ctx context.Context, image []byte, system, question string) (string, error) {
	return c.visionCompletion(ctx, "describe", image, system, question, 150, 0)
}

func (c *Client) visionCompletion(ctx context.Context, op string, image []byte, system, question string, maxTokens int, temperature float64) (string, error) {
	system = strings.TrimSpace(system)
	question = strings.TrimSpace(question)
	if len(image) == 0 {
		return "", services.Wrap(services.ErrRemote, "openai", op, "image bytes required", nil)
	}
	if system == "" || question == "" {
		return "", services.Wrap(services.ErrRemote, "openai", op, "prompt required", nil)
	}
	if c.cfg.APIKey == "" {
		return "", services.Wrap(services.ErrRemote, "openai", op, "api key required", nil)
	}

	dataURI := "data:image/jpeg;base64," + base64.StdEncoding.EncodeToString(image)
	payload := chatRequest{
		Model: c.cfg.VisionModel,
		Messages: []chatMessage{
			{Role: "system", Content: system},
			{
				Role: "user",
				Content: []contentPart{
					{Type: "text", Text: question},
					{Type: "image_url", ImageURL: &imageURLPart{URL: dataURI, Detail: "low"}},
				},
			},
		},
		MaxTokens:   maxTokens,
		Temperature: temperature,
	}

	body, err := c.post(ctx, op, "/chat/completions", payload)
	if err != nil {
		return "", err
	}

	var completion chatResponse
	if err := json.Unmarshal(body, &completion); err != nil {
		return "", services.Wrap(services.ErrRemote, "openai", op, "decode response", err)
	}
	if completion.Error != nil {
		return "", services.Wrap(services.ErrRemote, "openai", op, "api error: "+strings.TrimSpace(completion.Error.Message), nil)
	}
	if len(completion.Choices) == 0 {
		return "", services.Wrap(services.ErrRemote, "openai", op, "empty choices", nil)
	}
	content := strings.TrimSpace(completion.Choices[0].Message.Content)
	if content == "" {
		return "", services.Wrap(services.ErrRemote, "openai", op, "empty content", nil)
	}
	return content, nil
}

// Generate requests a new image from a text prompt and returns its bytes.
// Providers answer with either a URL (followed with a GET) or inline base64.
func (c *Client) Generate(ctx context.Context, prompt, size, quality string) ([]byte, error) {
	prompt = strings.TrimSpace(prompt)
	if prompt == "" {
		return nil, services.Wrap(services.ErrRemote, "openai", "generate", "prompt required", nil)
	}
	if c.cfg.APIKey == "" {
		return nil, services.Wrap(services.ErrRemote, "openai", "generate", "api key required", nil)
	}

	payload := imageRequest{
		Model:   c.cfg.ImageModel,
		Prompt:  prompt,
		N:       1,
		Size:    size,
		Quality: quality,
	}
	body, err := c.post(ctx, "generate", "/images/generations", payload)
	if err != nil {
		return nil, err
	}

	var resp imageResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, services.Wrap(services.ErrRemote, "openai", "generate", "decode response", err)
	}
	if resp.Error != nil {
		return nil, services.Wrap(services.ErrRemote, "openai", "generate", "api error: "+strings.TrimSpace(resp.Error.Message), nil)
	}
	if len(resp.Data) == 0 {
		return nil, services.Wrap(services.ErrRemote, "openai", "generate", "empty data", nil)
	}

	if b64 := strings.TrimSpace(resp.Data[0].B64JSON); b64 != "" {
		decoded, err := base64.StdEncoding.DecodeString(b64)
		if err != nil {
			return nil, services.Wrap(services.ErrRemote, "openai", "generate", "decode inline image", err)
		}
		return decoded, nil
	}

	imageURL := strings.TrimSpace(resp.Data[0].URL)
	if imageURL == "" {
		return nil, services.Wrap(services.ErrRemote, "openai", "generate", "no image url in response", nil)
	}
	return c.fetch(ctx, imageURL)
}

func (c *Client) post(ctx context.Context, op, path string, payload any) ([]byte, error) {
	encoded, err := json.Marshal(payload)
	if err != nil {
		return nil, services.Wrap(services.ErrRemote, "openai", op, "encode body", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.BaseURL+path, bytes.NewReader(encoded))
	if err != nil {
		return nil, services.Wrap(services.ErrRemote, "openai", op, "new request", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.cfg.APIKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, services.Wrap(services.ErrRemote, "openai", op, "http error", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, services.Wrap(services.ErrRemote, "openai", op, "read body", err)
	}
	if resp.StatusCode >= http.StatusMultipleChoices {
		snippet := summarizeBody(body)
		return nil, services.Wrap(services.ErrRemote, "openai", op, fmt.Sprintf("http %d: %s", resp.StatusCode, snippet), nil)
	}
	return body, nil
}

func (c *Client) fetch(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, services.Wrap(services.ErrRemote, "openai", "fetch image", "new request", err)
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, services.Wrap(services.ErrRemote, "openai", "fetch image", "http error", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusMultipleChoices {
		return nil, services.Wrap(services.ErrRemote, "openai", "fetch image", fmt.Sprintf("http %d", resp.StatusCode), nil)
	}
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, services.Wrap(services.ErrRemote, "openai", "fetch image", "read body", err)
	}
	if len(data) == 0 {
		return nil, services.Wrap(services.ErrRemote, "openai", "fetch image", "empty image body", nil)
	}
	return data, nil
}

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	MaxTokens   int           `json:"max_tokens,omitempty"`
	Temperature float64       `json:"temperature,omitempty"`
}

type chatMessage struct {
	Role string `json:"role"`
	// Content is either a plain string (system messages) or a list of
	// content parts (user messages carrying an image).
	Content any `json:"content"`
}

type contentPart struct {
	Type     string        `json:"type"`
	Text     string        `json:"text,omitempty"`
	ImageURL *imageURLPart `json:"image_url,omitempty"`
}

type imageURLPart struct {
	URL    string `json:"url"`
	Detail string `json:"detail,omitempty"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
	Error *apiError `json:"error"`
}

type imageRequest struct {
	Model   string `json:"model"`
	Prompt  string `json:"prompt"`
	N       int    `json:"n"`
	Size    string `json:"size,omitempty"`
	Quality string `json:"quality,omitempty"`
}

type imageResponse struct {
	Data []struct {
		URL     string `json:"url"`
		B64JSON string `json:"b64_json"`
	} `json:"data"`
	Error *apiError `json:"error"`
}

type apiError struct {
	Message string `json:"message"`
}

func summarizeBody(body []byte) string {
	clean := strings.Join(strings.Fields(string(body)), " ")
	const limit = 160
	runes := []rune(clean)
	if len(runes) > limit {
		clean = string(runes[:limit]) + "..."
	}
	if clean == "" {
		return "<empty>"
	}
	return clean
}
