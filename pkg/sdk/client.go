package sdk

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	json "github.com/goccy/go-json"
)

const defaultTimeout = 90 * time.Second

// Option configures the Client.
type Option interface {
	apply(*clientConfig)
}

type optionFunc func(*clientConfig)

func (f optionFunc) apply(c *clientConfig) { f(c) }

type clientConfig struct {
	apiKey     string
	httpClient *http.Client
}

// WithAPIKey sends the key as a Bearer token on every request.
func WithAPIKey(key string) Option {
	return optionFunc(func(c *clientConfig) {
		c.apiKey = key
	})
}

// WithHTTPClient replaces the default HTTP client. Useful for custom
// timeouts, transports, or instrumentation.
func WithHTTPClient(hc *http.Client) Option {
	return optionFunc(func(c *clientConfig) {
		c.httpClient = hc
	})
}

// Client is the shelfdex API client.
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
}

// New creates a client for the service at baseURL.
func New(baseURL string, opts ...Option) (*Client, error) {
	baseURL = strings.TrimRight(strings.TrimSpace(baseURL), "/")
	if baseURL == "" {
		return nil, fmt.Errorf("shelfdex: base URL required")
	}
	if _, err := url.Parse(baseURL); err != nil {
		return nil, fmt.Errorf("shelfdex: invalid base URL: %w", err)
	}

	cfg := &clientConfig{}
	for _, o := range opts {
		o.apply(cfg)
	}
	if cfg.httpClient == nil {
		cfg.httpClient = &http.Client{Timeout: defaultTimeout}
	}

	return &Client{
		baseURL:    baseURL,
		apiKey:     cfg.apiKey,
		httpClient: cfg.httpClient,
	}, nil
}

// Recommend asks for book recommendations for a free-text query.
func (c *Client) Recommend(ctx context.Context, req RecommendRequest) (RecommendResult, error) {
	var out RecommendResult
	err := c.do(ctx, http.MethodPost, "/recommend", nil, req, &out)
	return out, err
}

// Books lists every title in the service catalog.
func (c *Client) Books(ctx context.Context) ([]string, error) {
	var out struct {
		Titles []string `json:"titles"`
	}
	if err := c.do(ctx, http.MethodGet, "/books", nil, nil, &out); err != nil {
		return nil, err
	}
	return out.Titles, nil
}

// Similar returns the k nearest catalog neighbors of a known title.
// An unknown title yields a 404 APIError; check with IsNotFound.
func (c *Client) Similar(ctx context.Context, title string, k int) ([]SimilarBook, error) {
	q := url.Values{"title": {title}}
	if k > 0 {
		q.Set("k", strconv.Itoa(k))
	}
	var out struct {
		Similar []SimilarBook `json:"similar"`
	}
	if err := c.do(ctx, http.MethodGet, "/books/similar", q, nil, &out); err != nil {
		return nil, err
	}
	return out.Similar, nil
}

// Stats returns per-title recommendation counts since server start.
func (c *Client) Stats(ctx context.Context) (map[string]int, error) {
	var out struct {
		Counts map[string]int `json:"recommendation_counts"`
	}
	if err := c.do(ctx, http.MethodGet, "/stats", nil, nil, &out); err != nil {
		return nil, err
	}
	return out.Counts, nil
}

// Health reports service readiness. A degraded service answers with 503;
// the report is still decoded and returned alongside the APIError.
func (c *Client) Health(ctx context.Context) (HealthReport, error) {
	httpReq, err := c.newRequest(ctx, http.MethodGet, "/health", nil, nil)
	if err != nil {
		return HealthReport{}, err
	}
	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return HealthReport{}, fmt.Errorf("shelfdex: health request: %w", err)
	}
	defer resp.Body.Close()

	var report HealthReport
	if err := json.NewDecoder(resp.Body).Decode(&report); err != nil {
		return HealthReport{}, fmt.Errorf("shelfdex: decode health response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return report, &APIError{StatusCode: resp.StatusCode, Code: "degraded", Message: "service degraded"}
	}
	return report, nil
}

func (c *Client) do(ctx context.Context, method, path string, query url.Values, body, out any) error {
	req, err := c.newRequest(ctx, method, path, query, body)
	if err != nil {
		return err
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("shelfdex: %s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return decodeAPIError(resp)
	}
	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("shelfdex: decode %s response: %w", path, err)
	}
	return nil
}

func (c *Client) newRequest(ctx context.Context, method, path string, query url.Values, body any) (*http.Request, error) {
	u := c.baseURL + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}

	var payload *bytes.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("shelfdex: encode request: %w", err)
		}
		payload = bytes.NewReader(data)
	} else {
		payload = bytes.NewReader(nil)
	}

	req, err := http.NewRequestWithContext(ctx, method, u, payload)
	if err != nil {
		return nil, fmt.Errorf("shelfdex: build request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}
	return req, nil
}

func decodeAPIError(resp *http.Response) error {
	apiErr := &APIError{StatusCode: resp.StatusCode, Code: "unknown", Message: resp.Status}
	var body struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err == nil && body.Message != "" {
		apiErr.Code = body.Code
		apiErr.Message = body.Message
	}
	return apiErr
}
