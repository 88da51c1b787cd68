// Package llm is the HTTP client for the external text-generation and
// embedding service.
package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/hashicorp/go-retryablehttp"
	"github.com/sirupsen/logrus"
	"github.com/sony/gobreaker"
	"golang.org/x/time/rate"
)

// Defaults for the inference client. The service runs a small local model,
// so requests are slow and concurrency has to be kept modest.
const (
	DefaultTimeout     = 30 * time.Second
	DefaultMaxRetries  = 3
	DefaultTemperature = 0.3
	defaultRateLimit   = 5 // requests per second
)

// Config holds the inference service connection settings.
type Config struct {
	BaseURL     string
	Timeout     time.Duration
	MaxRetries  int
	Temperature float64
	RateLimit   float64
}

// Client talks to the inference service. Calls are rate limited and pass
// through a circuit breaker so a wedged model server fails fast instead of
// stacking up blocked requests.
type Client struct {
	baseURL     string
	http        *retryablehttp.Client
	breaker     *gobreaker.CircuitBreaker
	limiter     *rate.Limiter
	temperature float64
	log         *logrus.Logger
}

// NewClient builds an inference client. Zero config fields fall back to
// package defaults.
func NewClient(cfg Config, log *logrus.Logger) *Client {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	maxRetries := cfg.MaxRetries
	if maxRetries <= 0 {
		maxRetries = DefaultMaxRetries
	}
	temperature := cfg.Temperature
	if temperature <= 0 {
		temperature = DefaultTemperature
	}
	rateLimit := cfg.RateLimit
	if rateLimit <= 0 {
		rateLimit = defaultRateLimit
	}

	httpClient := retryablehttp.NewClient()
	httpClient.RetryMax = maxRetries
	httpClient.RetryWaitMin = 500 * time.Millisecond
	httpClient.RetryWaitMax = 5 * time.Second
	httpClient.HTTPClient.Timeout = timeout
	httpClient.Logger = nil

	breaker := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:    "llm-service",
		Timeout: timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 5
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			log.WithFields(logrus.Fields{
				"breaker": name,
				"from":    from.String(),
				"to":      to.String(),
			}).Warn("Inference service circuit breaker state changed")
		},
	})

	return &Client{
		baseURL:     cfg.BaseURL,
		http:        httpClient,
		breaker:     breaker,
		limiter:     rate.NewLimiter(rate.Limit(rateLimit), 1),
		temperature: temperature,
		log:         log,
	}
}

type generateRequest struct {
	Prompt      string  `json:"prompt"`
	MaxLength   int     `json:"max_length"`
	Temperature float64 `json:"temperature"`
}

type generateResponse struct {
	GeneratedText string `json:"generated_text"`
}

type embeddingsRequest struct {
	Texts []string `json:"texts"`
}

type embeddingsResponse struct {
	Embeddings [][]float64 `json:"embeddings"`
}

// Generate produces completion text for a prompt.
func (c *Client) Generate(ctx context.Context, prompt string, maxTokens int) (string, error) {
	var resp generateResponse
	err := c.post(ctx, "/generate", generateRequest{
		Prompt:      prompt,
		MaxLength:   maxTokens,
		Temperature: c.temperature,
	}, &resp)
	if err != nil {
		return "", err
	}
	return resp.GeneratedText, nil
}

// Embeddings returns one embedding vector per input text.
func (c *Client) Embeddings(ctx context.Context, texts []string) ([][]float64, error) {
	var resp embeddingsResponse
	if err := c.post(ctx, "/embeddings", embeddingsRequest{Texts: texts}, &resp); err != nil {
		return nil, err
	}
	return resp.Embeddings, nil
}

// Health probes the inference service.
func (c *Client) Health(ctx context.Context) error {
	req, err := retryablehttp.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/health", nil)
	if err != nil {
		return fmt.Errorf("building health request: %w", err)
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("inference service unreachable: %w", err)
	}
	defer resp.Body.Close()
	io.Copy(io.Discard, resp.Body)

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("inference service unhealthy: status %d", resp.StatusCode)
	}
	return nil
}

func (c *Client) post(ctx context.Context, path string, payload, out any) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("rate limiter: %w", err)
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("encoding request: %w", err)
	}

	result, err := c.breaker.Execute(func() (interface{}, error) {
		req, err := retryablehttp.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(body))
		if err != nil {
			return nil, fmt.Errorf("building request: %w", err)
		}
		req.Header.Set("Content-Type", "application/json")

		resp, err := c.http.Do(req)
		if err != nil {
			return nil, fmt.Errorf("calling inference service: %w", err)
		}
		defer resp.Body.Close()

		raw, err := io.ReadAll(resp.Body)
		if err != nil {
			return nil, fmt.Errorf("reading response: %w", err)
		}
		if resp.StatusCode != http.StatusOK {
			return nil, fmt.Errorf("inference service returned status %d", resp.StatusCode)
		}
		return raw, nil
	})
	if err != nil {
		return err
	}

	if err := json.Unmarshal(result.([]byte), out); err != nil {
		return fmt.Errorf("decoding response: %w", err)
	}
	return nil
}
