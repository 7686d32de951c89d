package guideclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/adamavenir/amelie/internal/types"
	"github.com/google/uuid"
)

// DefaultTimeout applies when no timeout is configured.
const DefaultTimeout = 30 * time.Second

// Client talks to the guide service. It keeps no retry state and caches
// nothing: every call is exactly one round trip.
type Client struct {
	baseURL    string
	httpClient *http.Client
	timeout    time.Duration
	userAgent  string
	logger     *log.Logger
	now        func() time.Time
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.httpClient = hc
		}
	}
}

// WithTimeout sets the per-request timeout. It applies to whichever HTTP
// client ends up configured, without modifying a client passed in by the
// caller.
func WithTimeout(timeout time.Duration) Option {
	return func(c *Client) {
		if timeout > 0 {
			c.timeout = timeout
		}
	}
}

// WithLogger logs each request at completion.
func WithLogger(logger *log.Logger) Option {
	return func(c *Client) {
		c.logger = logger
	}
}

// WithUserAgent sets the User-Agent header.
func WithUserAgent(ua string) Option {
	return func(c *Client) {
		c.userAgent = ua
	}
}

// New constructs a client for the service at baseURL.
func New(baseURL string, opts ...Option) (*Client, error) {
	normalized, err := NormalizeBaseURL(baseURL)
	if err != nil {
		return nil, err
	}
	c := &Client{
		baseURL:    normalized,
		httpClient: &http.Client{Timeout: DefaultTimeout},
		userAgent:  "amelie",
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.timeout > 0 {
		hc := *c.httpClient
		hc.Timeout = c.timeout
		c.httpClient = &hc
	}
	return c, nil
}

// BaseURL returns the normalized service address.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// NormalizeBaseURL trims a service address and ensures it has a scheme.
func NormalizeBaseURL(raw string) (string, error) {
	value := strings.TrimSpace(raw)
	if value == "" {
		return "", fmt.Errorf("api base url cannot be empty")
	}
	parsed, err := url.Parse(value)
	if err != nil {
		return "", fmt.Errorf("invalid api base url: %w", err)
	}
	if parsed.Scheme == "" || parsed.Host == "" {
		return "", fmt.Errorf("api base url must include scheme and host (https://...)")
	}
	return strings.TrimRight(value, "/"), nil
}

// GuideResponse is a generated guide as returned by the service.
type GuideResponse struct {
	RawText     string
	Timestamp   string
	GeneratedAt time.Time
}

// RequestGuide asks the service for a guide to city.
func (c *Client) RequestGuide(ctx context.Context, city string) (GuideResponse, error) {
	var resp guideResponse
	if err := c.doJSON(ctx, "guide", http.MethodPost, "/guide", guideRequest{City: city}, &resp); err != nil {
		return GuideResponse{}, err
	}
	return GuideResponse{
		RawText:     resp.GuideContent,
		Timestamp:   resp.Timestamp,
		GeneratedAt: ParseTimestamp(resp.Timestamp, c.now()),
	}, nil
}

// SendChatTurn sends the transcript, ending with the user's message, and
// returns the assistant's reply.
func (c *Client) SendChatTurn(ctx context.Context, transcript []types.ChatMessage, cityContext string) (string, error) {
	req := chatRequest{
		Messages:    toWireMessages(transcript),
		CityContext: cityContext,
	}
	var resp chatResponse
	if err := c.doJSON(ctx, "chat", http.MethodPost, "/chat", req, &resp); err != nil {
		return "", err
	}
	return resp.Response, nil
}

// SaveFavorite stores a favorite and returns the server's confirmation.
func (c *Client) SaveFavorite(ctx context.Context, city, place string) (string, error) {
	var resp messageResponse
	req := saveFavoriteRequest{City: city, PlaceName: place}
	if err := c.doJSON(ctx, "save favorite", http.MethodPost, "/favorites", req, &resp); err != nil {
		return "", err
	}
	return resp.Message, nil
}

// ListFavorites returns the server's favorites in server order.
func (c *Client) ListFavorites(ctx context.Context) ([]types.Favorite, error) {
	var resp favoritesResponse
	if err := c.doJSON(ctx, "list favorites", http.MethodGet, "/favorites", nil, &resp); err != nil {
		return nil, err
	}
	return resp.toFavorites(), nil
}

// ClearFavorites deletes all favorites. Clearing an empty list succeeds.
func (c *Client) ClearFavorites(ctx context.Context) error {
	return c.doJSON(ctx, "clear favorites", http.MethodDelete, "/favorites", nil, nil)
}

func (c *Client) doJSON(ctx context.Context, op, method, path string, reqBody any, respBody any) (err error) {
	requestID := uuid.NewString()
	started := c.now()
	defer func() {
		if c.logger == nil {
			return
		}
		elapsed := c.now().Sub(started).Round(time.Millisecond)
		if err != nil {
			c.logger.Printf("%s %s (%s) failed after %s: %v", method, path, requestID, elapsed, err)
			return
		}
		c.logger.Printf("%s %s (%s) ok in %s", method, path, requestID, elapsed)
	}()

	endpoint, err := c.buildURL(path)
	if err != nil {
		return wrap(op, err)
	}

	var body io.Reader
	if reqBody != nil {
		data, err := json.Marshal(reqBody)
		if err != nil {
			return wrap(op, err)
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, body)
	if err != nil {
		return wrap(op, err)
	}
	if reqBody != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Request-ID", requestID)
	if c.userAgent != "" {
		req.Header.Set("User-Agent", c.userAgent)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return wrap(op, err)
	}
	defer resp.Body.Close()

	respData, err := io.ReadAll(resp.Body)
	if err != nil {
		return wrap(op, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return statusError(op, resp.StatusCode, respData)
	}

	if respBody == nil || len(bytes.TrimSpace(respData)) == 0 {
		return nil
	}
	if err := json.Unmarshal(respData, respBody); err != nil {
		return wrap(op, fmt.Errorf("decode response: %w", err))
	}
	return nil
}

func (c *Client) buildURL(path string) (string, error) {
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	base, err := url.Parse(c.baseURL)
	if err != nil {
		return "", err
	}
	base.Path = strings.TrimRight(base.Path, "/") + path
	return base.String(), nil
}

var timestampLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05.999999",
	"2006-01-02 15:04:05",
}

// ParseTimestamp parses the service's timestamp string, falling back to
// fallback when the value is empty or in an unknown layout.
func ParseTimestamp(value string, fallback time.Time) time.Time {
	value = strings.TrimSpace(value)
	if value == "" {
		return fallback
	}
	for _, layout := range timestampLayouts {
		if ts, err := time.Parse(layout, value); err == nil {
			return ts
		}
	}
	return fallback
}
