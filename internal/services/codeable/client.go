package codeable

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"golang.org/x/oauth2"

	"expertstats/internal/services"
)

const (
	defaultPerPage = 20
	authHeader     = "auth-token"
)

// Client provides access to the platform API for the signed-in expert.
type Client struct {
	baseURL    string
	token      string
	perPage    int
	timeout    time.Duration
	baseHTTP   *http.Client
	httpClient *http.Client
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient overrides the default HTTP client. Authenticated requests
// wrap its transport with the bearer token.
func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) {
		if client != nil {
			c.baseHTTP = client
		}
	}
}

// WithPerPage sets the page size requested from the task endpoints.
func WithPerPage(n int) Option {
	return func(c *Client) {
		if n > 0 {
			c.perPage = n
		}
	}
}

// WithTimeout sets the request timeout. A client passed to WithHTTPClient is
// copied, never modified.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.timeout = d
		}
	}
}

// New creates an API client. An empty token yields a client that can only
// log in; RequireSession reports it as unauthenticated.
func New(baseURL, token string, opts ...Option) (*Client, error) {
	baseURL = strings.TrimSpace(baseURL)
	if baseURL == "" {
		return nil, errors.New("api base url required")
	}
	client := &Client{
		baseURL:  strings.TrimRight(baseURL, "/"),
		token:    strings.TrimSpace(token),
		perPage:  defaultPerPage,
		baseHTTP: &http.Client{Timeout: 30 * time.Second},
	}
	for _, opt := range opts {
		opt(client)
	}
	if client.timeout > 0 && client.baseHTTP.Timeout != client.timeout {
		copied := *client.baseHTTP
		copied.Timeout = client.timeout
		client.baseHTTP = &copied
	}
	client.httpClient = client.baseHTTP
	if client.token != "" {
		ctx := context.WithValue(context.Background(), oauth2.HTTPClient, client.baseHTTP)
		authed := oauth2.NewClient(ctx, oauth2.StaticTokenSource(&oauth2.Token{
			AccessToken: client.token,
			TokenType:   "Bearer",
		}))
		authed.Timeout = client.baseHTTP.Timeout
		client.httpClient = authed
	}
	return client, nil
}

// Authenticated reports whether the client carries a session token.
func (c *Client) Authenticated() bool {
	return c != nil && c.token != ""
}

// RequireSession returns an ErrNotAuthenticated error naming reason when no
// session token is configured.
func (c *Client) RequireSession(reason string) error {
	if c.Authenticated() {
		return nil
	}
	return services.Wrap(
		services.ErrNotAuthenticated,
		"",
		reason,
		"login required: run `expertstats login` or set EXPERTSTATS_API_TOKEN",
		nil,
	)
}

// Self fetches the signed-in expert's profile as raw JSON.
func (c *Client) Self(ctx context.Context) (json.RawMessage, error) {
	var payload json.RawMessage
	if err := c.getJSON(ctx, "/users/me", nil, &payload); err != nil {
		return nil, err
	}
	return payload, nil
}

// TransactionsPage fetches one page of the transactions feed.
func (c *Client) TransactionsPage(ctx context.Context, page int) (*TransactionsPage, error) {
	params := url.Values{}
	params.Set("page", strconv.Itoa(page))
	var payload TransactionsPage
	if err := c.getJSON(ctx, "/users/me/transactions", params, &payload); err != nil {
		return nil, err
	}
	return &payload, nil
}

// TasksPage fetches one page of the task list for the given filter
// (preferred, pending, active, archived, hidden_tasks, promoted).
func (c *Client) TasksPage(ctx context.Context, filter string, page int) ([]Task, error) {
	filter = strings.TrimSpace(filter)
	if filter == "" {
		return nil, errors.New("task filter must not be empty")
	}
	params := url.Values{}
	params.Set("page", strconv.Itoa(page))
	params.Set("per_page", strconv.Itoa(c.perPage))
	var payload []Task
	if err := c.getJSON(ctx, "/users/me/tasks/"+url.PathEscape(filter), params, &payload); err != nil {
		return nil, err
	}
	return payload, nil
}

// Login exchanges credentials for a session token.
func (c *Client) Login(ctx context.Context, email, password string) (string, error) {
	email = strings.TrimSpace(email)
	if email == "" || password == "" {
		return "", services.Wrap(services.ErrValidation, "", "login", "email and password are required", nil)
	}
	body, err := json.Marshal(map[string]string{"email": email, "password": password})
	if err != nil {
		return "", fmt.Errorf("encode login body: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/users/login", bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	requestStart := time.Now()
	resp, err := c.baseHTTP.Do(req)
	latency := time.Since(requestStart)
	if err != nil {
		return "", services.Wrap(services.ErrRemote, "", "login", fmt.Sprintf("execute request (latency=%v)", latency), err)
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)

	if resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden {
		return "", services.Wrap(services.ErrNotAuthenticated, "", "login", fmt.Sprintf("credentials rejected (status=%d)", resp.StatusCode), nil)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", services.Wrap(services.ErrRemote, "", "login", fmt.Sprintf("returned %d (latency=%v)", resp.StatusCode, latency), nil)
	}
	token := strings.TrimSpace(resp.Header.Get(authHeader))
	if token == "" {
		return "", services.Wrap(services.ErrRemote, "", "login", "response carried no auth-token header", nil)
	}
	return token, nil
}

func (c *Client) getJSON(ctx context.Context, path string, params url.Values, out any) error {
	endpoint, err := url.Parse(c.baseURL + path)
	if err != nil {
		return fmt.Errorf("parse api url: %w", err)
	}
	if len(params) > 0 {
		endpoint.RawQuery = params.Encode()
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint.String(), nil)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	requestStart := time.Now()
	resp, err := c.httpClient.Do(req)
	latency := time.Since(requestStart)
	if err != nil {
		return services.Wrap(services.ErrRemote, "", "GET "+path, fmt.Sprintf("execute request (latency=%v)", latency), err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusUnauthorized {
		return services.Wrap(services.ErrNotAuthenticated, "", "GET "+path, "session rejected (status=401)", nil)
	}
	if resp.StatusCode != http.StatusOK {
		return services.Wrap(services.ErrRemote, "", "GET "+path, fmt.Sprintf("returned %d (latency=%v)", resp.StatusCode, latency), nil)
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return services.Wrap(services.ErrRemote, "", "GET "+path, "decode response", err)
	}
	return nil
}
