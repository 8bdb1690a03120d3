package chronicity

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/prefixlens/backend/internal/domain"
	"golang.org/x/time/rate"
)

const maxAttempts = 3

// promptTemplate asks for a single digit chronicity score for a pharmacy product
const promptTemplate = `Voici un nom de produit pharmaceutique : "%s".
Sur une échelle de 1 à 5, attribue un score de chronicité d'achat basé sur l'usage typique :
1 = ultra-ponctuel (urgence uniquement),
2 = occasionnel ou saisonnier,
3 = modérément répété,
4 = semi-chronique,
5 = chronique (besoin constant).
Réponds uniquement par un chiffre entre 1 et 5. Pas d'explication.`

var _ domain.ChronicityClient = (*Client)(nil)

// Client scores products through an OpenAI-compatible chat completions API
type Client struct {
	httpClient  *http.Client
	apiKey      string
	baseURL     string
	model       string
	rateLimiter *rate.Limiter
	backoff     func(attempt int) time.Duration
	debug       bool
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	Temperature float64       `json:"temperature"`
}

type chatResponse struct {
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
}

// NewClient creates a new chronicity scoring client.
// requestsPerSecond bounds outbound calls; burst <= 0 is treated as 1.
func NewClient(apiKey, baseURL, model string, requestsPerSecond float64, burst int) *Client {
	if burst <= 0 {
		burst = 1
	}

	return &Client{
		httpClient: &http.Client{
			Timeout: 60 * time.Second,
		},
		apiKey:      apiKey,
		baseURL:     strings.TrimRight(baseURL, "/"),
		model:       model,
		rateLimiter: rate.NewLimiter(rate.Limit(requestsPerSecond), burst),
		backoff:     exponentialBackoff,
	}
}

// SetDebug enables request/response logging
func (c *Client) SetDebug(debug bool) {
	c.debug = debug
}

// exponentialBackoff returns 500ms, 1s, 2s, ... for attempts 1, 2, 3, ...
func exponentialBackoff(attempt int) time.Duration {
	return time.Duration(500*(1<<(attempt-1))) * time.Millisecond
}

// Score asks the model for the chronicity of name and returns a value in [1, 5].
// Transport errors, 429 and 5xx replies are retried; other failures are returned as is.
func (c *Client) Score(ctx context.Context, code, name string) (int, error) {
	payload, err := json.Marshal(chatRequest{
		Model:       c.model,
		Messages:    []chatMessage{{Role: "user", Content: fmt.Sprintf(promptTemplate, name)}},
		Temperature: 0,
	})
	if err != nil {
		return 0, fmt.Errorf("failed to encode request: %w", err)
	}

	var lastErr error
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		if attempt > 1 {
			if err := sleepContext(ctx, c.backoff(attempt-1)); err != nil {
				return 0, err
			}
		}

		if err := c.rateLimiter.Wait(ctx); err != nil {
			return 0, fmt.Errorf("rate limiter error: %w", err)
		}

		content, retry, err := c.complete(ctx, payload)
		if err != nil {
			if c.debug {
				log.Printf("[CHRONICITY] code=%s attempt %d failed: %v", code, attempt, err)
			}
			lastErr = err
			if retry {
				continue
			}
			return 0, err
		}

		if c.debug {
			log.Printf("[CHRONICITY] code=%s name=%q reply=%q", code, name, content)
		}
		return parseScore(content)
	}

	return 0, lastErr
}

// complete performs one chat completion call. The bool reports whether the
// failure is transient.
func (c *Client) complete(ctx context.Context, payload []byte) (string, bool, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/chat/completions", bytes.NewReader(payload))
	if err != nil {
		return "", false, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("User-Agent", "PrefixLens/1.0")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return "", false, ctx.Err()
		}
		return "", true, fmt.Errorf("%w: %v", domain.ErrScoringFailure, err)
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(resp.Body)

	if resp.StatusCode != http.StatusOK {
		retry := resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500
		return "", retry, fmt.Errorf("%w: status %d, body: %s", domain.ErrScoringFailure, resp.StatusCode, string(body))
	}

	var completion chatResponse
	if err := json.Unmarshal(body, &completion); err != nil {
		return "", false, fmt.Errorf("%w: failed to decode response: %v", domain.ErrScoringFailure, err)
	}
	if len(completion.Choices) == 0 {
		return "", false, fmt.Errorf("%w: empty choices", domain.ErrScoringFailure)
	}

	return completion.Choices[0].Message.Content, false, nil
}

// parseScore reads the first character of the trimmed reply as the score
func parseScore(content string) (int, error) {
	content = strings.TrimSpace(content)
	if content == "" {
		return 0, fmt.Errorf("%w: empty reply", domain.ErrInvalidScore)
	}

	d := content[0]
	if d < '1' || d > '5' {
		return 0, fmt.Errorf("%w: %q", domain.ErrInvalidScore, content)
	}
	return int(d - '0'), nil
}

func sleepContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
