package sdk

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/gorilla/websocket"
)

// Option configures the Client.
type Option func(*Client)

// Client provides typed access to the economy HTTP + WebSocket API.
type Client struct {
	baseURL    string
	wsURL      string
	httpClient *http.Client
	headers    http.Header
}

// NewClient constructs a new SDK client targeting the given baseURL (e.g., http://localhost:8080/api).
func NewClient(baseURL string, opts ...Option) (*Client, error) {
	if strings.TrimSpace(baseURL) == "" {
		return nil, errors.New("baseURL is required")
	}
	baseURL = strings.TrimSuffix(baseURL, "/")

	c := &Client{
		baseURL:    baseURL,
		wsURL:      deriveWSURL(baseURL),
		httpClient: http.DefaultClient,
		headers:    make(http.Header),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(h *http.Client) Option {
	return func(c *Client) {
		if h != nil {
			c.httpClient = h
		}
	}
}

// WithAuthToken adds an Authorization: Bearer token header to all requests (HTTP + WS).
func WithAuthToken(token string) Option {
	return func(c *Client) {
		if strings.TrimSpace(token) != "" {
			c.headers.Set("Authorization", "Bearer "+token)
		}
	}
}

// WithAPIKey adds an X-API-Key header.
func WithAPIKey(key string) Option {
	return func(c *Client) {
		if strings.TrimSpace(key) != "" {
			c.headers.Set("X-API-Key", key)
		}
	}
}

// WithHeader sets an arbitrary header applied to HTTP and WS calls.
func WithHeader(k, v string) Option {
	return func(c *Client) {
		if k != "" {
			c.headers.Set(k, v)
		}
	}
}

// Balance fetches the current balance for a player.
func (c *Client) Balance(ctx context.Context, player string) (PlayerBalance, error) {
	if strings.TrimSpace(player) == "" {
		return PlayerBalance{}, ErrEmptyPlayer
	}
	u := fmt.Sprintf("%s/players/%s", c.baseURL, url.PathEscape(player))
	var pb PlayerBalance
	if err := c.getJSON(ctx, u, &pb); err != nil {
		return PlayerBalance{}, err
	}
	return pb, nil
}

// Rank fetches the 1-based leaderboard position for a player.
func (c *Client) Rank(ctx context.Context, player string) (PlayerRank, error) {
	if strings.TrimSpace(player) == "" {
		return PlayerRank{}, ErrEmptyPlayer
	}
	u := fmt.Sprintf("%s/players/%s/rank", c.baseURL, url.PathEscape(player))
	var pr PlayerRank
	if err := c.getJSON(ctx, u, &pr); err != nil {
		return PlayerRank{}, err
	}
	return pr, nil
}

// SetBalance overwrites the player's balance and returns the committed value.
func (c *Client) SetBalance(ctx context.Context, player string, amount int64) (int64, error) {
	return c.postBalance(ctx, player, "balance", amount)
}

// Deposit credits amount to the player and returns the new balance.
func (c *Client) Deposit(ctx context.Context, player string, amount int64) (int64, error) {
	return c.postBalance(ctx, player, "deposit", amount)
}

// Withdraw debits amount from the player and returns the new balance.
func (c *Client) Withdraw(ctx context.Context, player string, amount int64) (int64, error) {
	return c.postBalance(ctx, player, "withdraw", amount)
}

func (c *Client) postBalance(ctx context.Context, player, op string, amount int64) (int64, error) {
	if strings.TrimSpace(player) == "" {
		return 0, ErrEmptyPlayer
	}
	u, err := url.Parse(fmt.Sprintf("%s/players/%s/%s", c.baseURL, url.PathEscape(player), op))
	if err != nil {
		return 0, err
	}
	q := u.Query()
	q.Set("amount", fmt.Sprintf("%d", amount))
	u.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, u.String(), nil)
	if err != nil {
		return 0, err
	}
	c.applyHeaders(req)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return 0, err
	}
	defer resp.Body.Close()

	var body struct {
		Balance int64 `json:"balance"`
	}
	if err := decodeJSON(resp, &body); err != nil {
		return 0, err
	}
	return body.Balance, nil
}

// Pay moves amount from one player to another and returns the payer's
// resulting balance.
func (c *Client) Pay(ctx context.Context, from, to string, amount int64) (int64, error) {
	if strings.TrimSpace(from) == "" || strings.TrimSpace(to) == "" {
		return 0, ErrEmptyPlayer
	}
	u, err := url.Parse(c.baseURL + "/pay")
	if err != nil {
		return 0, err
	}
	q := u.Query()
	q.Set("from", from)
	q.Set("to", to)
	q.Set("amount", fmt.Sprintf("%d", amount))
	u.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, u.String(), nil)
	if err != nil {
		return 0, err
	}
	c.applyHeaders(req)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return 0, err
	}
	defer resp.Body.Close()

	var body struct {
		Balance int64 `json:"balance"`
	}
	if err := decodeJSON(resp, &body); err != nil {
		return 0, err
	}
	return body.Balance, nil
}

// Top fetches the leaderboard page [offset, offset+limit).
func (c *Client) Top(ctx context.Context, limit, offset int) ([]Entry, error) {
	u, err := url.Parse(c.baseURL + "/top")
	if err != nil {
		return nil, err
	}
	q := u.Query()
	q.Set("limit", fmt.Sprintf("%d", limit))
	q.Set("offset", fmt.Sprintf("%d", offset))
	u.RawQuery = q.Encode()

	var body struct {
		Entries []Entry `json:"entries"`
	}
	if err := c.getJSON(ctx, u.String(), &body); err != nil {
		return nil, err
	}
	return body.Entries, nil
}

// Health probes /healthz and returns status + storage check.
func (c *Client) Health(ctx context.Context) (HealthStatus, error) {
	var hs HealthStatus
	if err := c.getJSON(ctx, c.baseURL+"/healthz", &hs); err != nil {
		return HealthStatus{}, err
	}
	return hs, nil
}

// SubscribeTransactions connects to the WebSocket stream and emits committed
// transactions. The returned channel closes when ctx is done or the
// connection drops.
func (c *Client) SubscribeTransactions(ctx context.Context) (<-chan Transaction, error) {
	if c.wsURL == "" {
		return nil, errors.New("wsURL is not set; ensure baseURL is http/https")
	}
	dialer := websocket.Dialer{
		HandshakeTimeout: 5 * time.Second,
	}
	conn, _, err := dialer.DialContext(ctx, c.wsURL, c.headers)
	if err != nil {
		return nil, err
	}

	out := make(chan Transaction, 32)
	go func() {
		defer close(out)
		defer conn.Close()
		for {
			select {
			case <-ctx.Done():
				return
			default:
				var tx Transaction
				if err := conn.ReadJSON(&tx); err != nil {
					return
				}
				select {
				case out <- tx:
				default:
					// drop if consumer is slow
				}
			}
		}
	}()
	return out, nil
}

func (c *Client) getJSON(ctx context.Context, u string, target any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return err
	}
	c.applyHeaders(req)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	return decodeJSON(resp, target)
}

func (c *Client) applyHeaders(r *http.Request) {
	for k, vals := range c.headers {
		for _, v := range vals {
			r.Header.Add(k, v)
		}
	}
}

func deriveWSURL(httpBase string) string {
	u, err := url.Parse(httpBase)
	if err != nil {
		return ""
	}
	switch u.Scheme {
	case "https":
		u.Scheme = "wss"
	case "http":
		u.Scheme = "ws"
	default:
		// leave as-is for custom schemes
	}
	u.Path = strings.TrimSuffix(u.Path, "/") + "/ws"
	return u.String()
}
