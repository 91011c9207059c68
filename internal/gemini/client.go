package gemini

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"google.golang.org/genai"

	"github.com/divyampandey/pixel-llm-server-go/internal/config"
	"github.com/divyampandey/pixel-llm-server-go/internal/llm"
	"github.com/divyampandey/pixel-llm-server-go/internal/metrics"
)

var (
	// ErrMissingAPIKey is returned when no Gemini API key is configured.
	ErrMissingAPIKey = errors.New("missing gemini api key")
	// ErrInvalidModel is returned when no usable model is configured.
	ErrInvalidModel = errors.New("invalid model")
)

// Request is one Gemini chat request.
type Request struct {
	Prompt       string
	SystemPrompt string
	History      []llm.HistoryEntry
	Model        string
}

// Client calls the Gemini API with key rotation and model failover.
type Client struct {
	cfg       *config.Config
	metrics   *metrics.Store
	mu        sync.Mutex
	clients   map[string]*genai.Client
	apiKeys   []string
	apiKeyIdx int
}

// NewClient creates the Gemini client.
func NewClient(cfg *config.Config, metricsStore *metrics.Store) (*Client, error) {
	if cfg == nil {
		return nil, errors.New("config is nil")
	}
	if metricsStore == nil {
		return nil, errors.New("metrics store is nil")
	}
	return &Client{
		cfg:     cfg,
		metrics: metricsStore,
		clients: make(map[string]*genai.Client),
		apiKeys: cfg.Gemini.APIKeys,
	}, nil
}

// Chat performs a text chat request. On upstream failure the configured
// fallback models are tried in order before giving up.
func (c *Client) Chat(ctx context.Context, req Request) (llm.ChatResult, error) {
	start := time.Now()
	response, model, err := c.generate(ctx, req)
	if err != nil {
		c.metrics.RecordError(time.Since(start))
		return llm.ChatResult{}, err
	}

	usage := extractUsage(response)
	c.metrics.RecordSuccess(time.Since(start), usage)
	return llm.ChatResult{
		Text:  response.Text(),
		Model: model,
		Usage: usage,
	}, nil
}

func (c *Client) generate(ctx context.Context, req Request) (*genai.GenerateContentResponse, string, error) {
	client, err := c.selectClient(ctx)
	if err != nil {
		return nil, "", err
	}

	candidates := c.resolveModels(req.Model)
	if len(candidates) == 0 {
		return nil, "", ErrInvalidModel
	}

	generateConfig := c.buildGenerateConfig(req.SystemPrompt)
	contents := buildContents(req.Prompt, req.History)

	var lastErr error
	lastModel := candidates[0]
	for _, model := range candidates {
		response, err := client.Models.GenerateContent(ctx, model, contents, generateConfig)
		if err == nil {
			return response, model, nil
		}
		lastErr = err
		lastModel = model
		if ctx.Err() != nil {
			break
		}
	}
	return nil, lastModel, fmt.Errorf("generate content: %w", lastErr)
}

func (c *Client) selectClient(ctx context.Context) (*genai.Client, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if len(c.apiKeys) == 0 {
		return nil, ErrMissingAPIKey
	}

	key := c.apiKeys[c.apiKeyIdx%len(c.apiKeys)]
	c.apiKeyIdx++
	if client, ok := c.clients[key]; ok {
		return client, nil
	}

	timeout := time.Duration(c.cfg.Gemini.TimeoutSeconds) * time.Second
	client, err := genai.NewClient(context.WithoutCancel(ctx), &genai.ClientConfig{
		APIKey:  key,
		Backend: genai.BackendGeminiAPI,
		HTTPOptions: genai.HTTPOptions{
			Timeout: genai.Ptr(timeout),
		},
	})
	if err != nil {
		return nil, fmt.Errorf("create genai client: %w", err)
	}

	c.clients[key] = client
	return client, nil
}

// resolveModels returns the failover order: an explicit override wins
// outright, otherwise the configured model plus its fallbacks.
func (c *Client) resolveModels(modelOverride string) []string {
	if model := strings.TrimSpace(modelOverride); model != "" {
		return []string{model}
	}
	return c.cfg.Gemini.ModelCandidates()
}

func (c *Client) buildGenerateConfig(systemPrompt string) *genai.GenerateContentConfig {
	generateConfig := &genai.GenerateContentConfig{
		Temperature:     genai.Ptr(float32(c.cfg.Gemini.Temperature)),
		MaxOutputTokens: int32(c.cfg.Gemini.MaxOutputTokens),
	}
	if systemPrompt != "" {
		generateConfig.SystemInstruction = genai.NewContentFromText(systemPrompt, genai.RoleUser)
	}
	return generateConfig
}

func buildContents(prompt string, history []llm.HistoryEntry) []*genai.Content {
	contents := make([]*genai.Content, 0, len(history)+1)
	for _, entry := range history {
		var role genai.Role = genai.RoleUser
		if strings.EqualFold(entry.Role, "assistant") {
			role = genai.RoleModel
		}
		contents = append(contents, genai.NewContentFromText(entry.Content, role))
	}
	contents = append(contents, genai.NewContentFromText(prompt, genai.RoleUser))
	return contents
}

func extractUsage(response *genai.GenerateContentResponse) llm.Usage {
	if response == nil || response.UsageMetadata == nil {
		return llm.Usage{}
	}
	usage := response.UsageMetadata
	return llm.Usage{
		InputTokens:  int(usage.PromptTokenCount),
		OutputTokens: int(usage.CandidatesTokenCount),
		TotalTokens:  int(usage.TotalTokenCount),
	}
}
