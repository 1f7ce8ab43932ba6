package sentiment

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net"
	"net/http"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"review_pulse/internal/adapters/observability"
	"review_pulse/internal/domain"
)

const (
	connectTimeout = 10 * time.Second
	requestTimeout = 30 * time.Second
)

// Client talks to the remote sentiment classifier. A failed call surfaces as
// domain.ErrEnrichmentUnavailable and is made exactly once per review: the
// caller treats enrichment as best-effort, so there is no retry machinery
// here, only client-side rate limiting and bounded timeouts.
type Client struct {
	base string
	hc   *http.Client
	rl   *rate.Limiter
}

func New(base string, rps int) (*Client, error) {
	if base == "" {
		return nil, fmt.Errorf("sentiment base URL is required")
	}
	if rps <= 0 {
		rps = 5
	}
	transport := &http.Transport{
		DialContext:         (&net.Dialer{Timeout: connectTimeout}).DialContext,
		TLSHandshakeTimeout: connectTimeout,
	}
	return &Client{
		base: strings.TrimRight(base, "/"),
		hc:   &http.Client{Timeout: requestTimeout, Transport: transport},
		rl:   rate.NewLimiter(rate.Limit(rps), rps),
	}, nil
}

type predictRequest struct {
	Text string `json:"text"`
}

type predictResponse struct {
	Label     string  `json:"label"`
	Sentiment string  `json:"sentiment"`
	Score     float64 `json:"score"`
}

// Analyze classifies text and maps the response onto a single positivity
// axis. Blank input short-circuits locally to a neutral zero result; the
// 0.0 here is distinct from the 0.5 no-signal midpoint used for
// unrecognized labels.
func (c *Client) Analyze(ctx context.Context, text string) (domain.SentimentResult, error) {
	if strings.TrimSpace(text) == "" {
		return domain.SentimentResult{Label: "neutral", Score: 0, Normalized: 0}, nil
	}

	if err := c.rl.Wait(ctx); err != nil {
		return domain.SentimentResult{}, fmt.Errorf("%w: %v", domain.ErrEnrichmentUnavailable, err)
	}

	body, err := json.Marshal(predictRequest{Text: text})
	if err != nil {
		return domain.SentimentResult{}, fmt.Errorf("%w: encode request: %v", domain.ErrEnrichmentUnavailable, err)
	}

	url := c.base + "/predict"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return domain.SentimentResult{}, fmt.Errorf("%w: %v", domain.ErrEnrichmentUnavailable, err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", "review-pulse/1.0")

	start := time.Now()
	resp, err := c.hc.Do(req)
	if err != nil {
		observability.ObserveExternal("sentiment", "/predict", 0, time.Since(start))
		if ctx.Err() != nil {
			return domain.SentimentResult{}, fmt.Errorf("%w: %v", domain.ErrEnrichmentUnavailable, ctx.Err())
		}
		return domain.SentimentResult{}, fmt.Errorf("%w: %v", domain.ErrEnrichmentUnavailable, err)
	}
	defer resp.Body.Close()
	observability.ObserveExternal("sentiment", "/predict", resp.StatusCode, time.Since(start))

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		b, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return domain.SentimentResult{}, fmt.Errorf("%w: status %d: %s",
			domain.ErrEnrichmentUnavailable, resp.StatusCode, strings.TrimSpace(string(b)))
	}

	var pr predictResponse
	if err := json.NewDecoder(resp.Body).Decode(&pr); err != nil {
		return domain.SentimentResult{}, fmt.Errorf("%w: decode response: %v", domain.ErrEnrichmentUnavailable, err)
	}

	return mapResult(pr), nil
}

// mapResult converts a classifier prediction onto the positivity scale:
// LABEL_1 (positive) keeps the raw confidence, LABEL_2 (negative) inverts it,
// everything else (LABEL_0 / unknown) is pinned to the 0.5 midpoint.
func mapResult(pr predictResponse) domain.SentimentResult {
	res := domain.SentimentResult{Label: pr.Sentiment, Score: pr.Score}
	switch pr.Label {
	case "LABEL_1":
		res.Normalized = pr.Score
	case "LABEL_2":
		res.Normalized = 1 - pr.Score
	default:
		res.Normalized = 0.5
	}
	return res
}

// Healthy probes the classifier's /health endpoint.
func (c *Client) Healthy(ctx context.Context) bool {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.base+"/health", nil)
	if err != nil {
		return false
	}
	resp, err := c.hc.Do(req)
	if err != nil {
		return false
	}
	defer resp.Body.Close()
	io.Copy(io.Discard, resp.Body)
	return resp.StatusCode == http.StatusOK
}
