package barista

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/tidwall/gjson"
	"golang.org/x/time/rate"

	"cafe-orders/internal/common/logger"
	"cafe-orders/internal/config"
	"cafe-orders/internal/domain"
)

// Fallback is returned whenever a recommendation cannot be produced.
const Fallback = "I'm having a little trouble checking the menu right now, but a Latte is always a safe choice!"

const Greeting = "Welcome to Mr. Beans. I'm your Virtual Barista. How are you feeling today? Or what flavors are you craving?"

var (
	errThrottled = errors.New("recommendation rate limit reached")
	errNoText    = errors.New("response carried no text")
)

type Recommender interface {
	Recommend(ctx context.Context, message string) string
}

// SystemInstruction steers the model to name exactly one catalog item.
func SystemInstruction() string {
	return `You are the "Virtual Barista" for Mr. Beans Cafe. Your tone is warm, sophisticated, and inviting.
You are an expert on coffee flavors.
Your goal is to recommend ONE specific item from the provided menu based on the user's input (mood, weather, or flavor preference).
Always mention the name of the item from the menu exactly as written.
Briefly explain why it fits their vibe.
Keep the response short (under 50 words).

Here is the Menu:
` + domain.MenuListing()
}

// Client calls a Gemini-style generateContent endpoint.
type Client struct {
	http        *http.Client
	endpoint    string
	apiKey      string
	model       string
	temperature float64
	limiter     *rate.Limiter
	lg          *logger.Logger
}

func NewClient(cfg config.BaristaConfig) *Client {
	limit := rate.Limit(cfg.RatePerSecond)
	if cfg.RatePerSecond <= 0 {
		limit = rate.Inf
	}
	burst := cfg.Burst
	if burst <= 0 {
		burst = 1
	}
	return &Client{
		http:        &http.Client{Timeout: cfg.Timeout},
		endpoint:    strings.TrimRight(cfg.Endpoint, "/"),
		apiKey:      cfg.APIKey,
		model:       cfg.Model,
		temperature: cfg.Temperature,
		limiter:     rate.NewLimiter(limit, burst),
		lg:          logger.New("barista"),
	}
}

type part struct {
	Text string `json:"text"`
}

type content struct {
	Role  string `json:"role,omitempty"`
	Parts []part `json:"parts"`
}

type generateRequest struct {
	SystemInstruction content   `json:"systemInstruction"`
	Contents          []content `json:"contents"`
	GenerationConfig  struct {
		Temperature float64 `json:"temperature"`
	} `json:"generationConfig"`
}

// Recommend never fails; errors are logged and answered with Fallback.
func (c *Client) Recommend(ctx context.Context, message string) string {
	start := time.Now()
	text, err := c.generate(ctx, message)
	if err != nil {
		c.lg.Warn("recommendation_failed", err, map[string]any{"duration_ms": time.Since(start).Milliseconds()})
		return Fallback
	}
	c.lg.Debug("recommendation_served", map[string]any{"duration_ms": time.Since(start).Milliseconds()})
	return text
}

func (c *Client) generate(ctx context.Context, message string) (string, error) {
	if !c.limiter.Allow() {
		return "", errThrottled
	}

	var req generateRequest
	req.SystemInstruction = content{Parts: []part{{Text: SystemInstruction()}}}
	req.Contents = []content{{Role: "user", Parts: []part{{Text: message}}}}
	req.GenerationConfig.Temperature = c.temperature

	body, err := json.Marshal(req)
	if err != nil {
		return "", err
	}

	u := fmt.Sprintf("%s/v1beta/models/%s:generateContent", c.endpoint, url.PathEscape(c.model))
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, u, bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	httpReq.Header.Set("Content-Type", "application/json")
	if c.apiKey != "" {
		httpReq.Header.Set("x-goog-api-key", c.apiKey)
	}

	resp, err := c.http.Do(httpReq)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return "", err
	}
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("generateContent: status %d: %s", resp.StatusCode, gjson.GetBytes(raw, "error.message").String())
	}

	text := strings.TrimSpace(gjson.GetBytes(raw, "candidates.0.content.parts.0.text").String())
	if text == "" {
		return "", errNoText
	}
	return text, nil
}
