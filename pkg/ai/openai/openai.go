package openai

import (
	"sync"

	"github.com/caseweave/backend/pkg/ai"

	"github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"
)

// NetworkOpenAIClient implements ai.NetworkAIClient against any
// OpenAI-compatible chat completion API.
//
// A NetworkOpenAIClient should be created using NewNetworkOpenAIClient.
type NetworkOpenAIClient struct {
	completionModel string
	extractionModel string

	metricsLock sync.Mutex
	metrics     ai.ModelMetrics

	ChatClient *openai.Client
}

// NewNetworkOpenAIClientParams defines the configuration parameters for
// creating a new NetworkOpenAIClient.
//
// CompletionModel is used for free-text generation (descriptions,
// enrichment). ExtractionModel is used for schema-constrained extraction
// and discovery. BaseURL may point at any OpenAI-compatible endpoint; when
// empty, the official API is used.
type NewNetworkOpenAIClientParams struct {
	CompletionModel string
	ExtractionModel string

	BaseURL string
	ApiKey  string
}

// NewNetworkOpenAIClient creates and returns a new NetworkOpenAIClient
// configured with the provided parameters.
//
// Example:
//
//	client := openai.NewNetworkOpenAIClient(openai.NewNetworkOpenAIClientParams{
//		CompletionModel: "gpt-4o-mini",
//		ExtractionModel: "gpt-4o-mini",
//		ApiKey:          os.Getenv("OPENAI_API_KEY"),
//	})
func NewNetworkOpenAIClient(params NewNetworkOpenAIClientParams) *NetworkOpenAIClient {
	opts := []option.RequestOption{
		option.WithAPIKey(params.ApiKey),
	}
	if params.BaseURL != "" {
		opts = append(opts, option.WithBaseURL(params.BaseURL))
	}
	client := openai.NewClient(opts...)

	return &NetworkOpenAIClient{
		completionModel: params.CompletionModel,
		extractionModel: params.ExtractionModel,
		ChatClient:      &client,
	}
}

func (c *NetworkOpenAIClient) modifyMetrics(delta ai.ModelMetrics) {
	c.metricsLock.Lock()
	defer c.metricsLock.Unlock()

	c.metrics.InputTokens += delta.InputTokens
	c.metrics.OutputTokens += delta.OutputTokens
	c.metrics.TotalTokens += delta.TotalTokens
	c.metrics.DurationMs += delta.DurationMs
}

// ResetMetrics clears the accumulated usage metrics.
func (c *NetworkOpenAIClient) ResetMetrics() {
	c.metricsLock.Lock()
	defer c.metricsLock.Unlock()

	c.metrics = ai.ModelMetrics{}
}

// GetMetrics returns the accumulated usage metrics.
func (c *NetworkOpenAIClient) GetMetrics() ai.ModelMetrics {
	c.metricsLock.Lock()
	defer c.metricsLock.Unlock()

	return c.metrics
}
