// Package portainer lists running containers of a docker environment via Portainer API.
package portainer

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/dashsync/dashsync/pkg/buildtime"
	xe "github.com/dashsync/dashsync/pkg/errors"
	xlog "github.com/dashsync/dashsync/pkg/logger"
	"github.com/dashsync/dashsync/pkg/utils/retry"
	"github.com/golang-jwt/jwt/v5"
)

var (
	// Portainer has refused the credential.
	ErrUnauthorized = errors.New("portainer: unauthorized")

	// Portainer has responded with unexpected status or payload.
	ErrUnexpectedResponse = errors.New("portainer: unexpected response")
)

// a JWT is renewed this much before its expiry.
const expiryMargin = 30 * time.Second

const (
	// requests failed by network errors or 5xx are sent again, up to this times in total.
	DefaultAttempts = 3

	// wait before the first retry. It doubles for each retry.
	DefaultBackoff = time.Second
)

type Config struct {
	// API root, like http://portainer:9000/api
	URL string

	// environment (endpoint) id of docker.
	Endpoint int

	// API access token, sent as X-API-Key.
	Token string

	// used to login when Token is empty.
	Username string
	Password string

	// timeout per request. No timeout if 0.
	Timeout time.Duration
}

type Client struct {
	httpclient *http.Client
	api        string
	endpoint   int
	token      string
	username   string
	password   string
	logger     *log.Logger
	now        func() time.Time
	attempts   uint
	backoff    func() retry.Backoff

	mu     sync.Mutex
	jwt    string
	expiry time.Time // zero means no expiry
}

type Option func(*Client) *Client

func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) *Client {
		c.httpclient = hc
		return c
	}
}

func WithLogger(l *log.Logger) Option {
	return func(c *Client) *Client {
		c.logger = l
		return c
	}
}

// WithRetry sets how many times a listing is attempted, and the backoff between attempts.
//
// backoff is called once for each listing.
func WithRetry(attempts uint, backoff func() retry.Backoff) Option {
	return func(c *Client) *Client {
		c.attempts = attempts
		c.backoff = backoff
		return c
	}
}

// WithClock replaces time.Now, to decide whether a JWT is expired.
func WithClock(now func() time.Time) Option {
	return func(c *Client) *Client {
		c.now = now
		return c
	}
}

func New(config Config, options ...Option) *Client {
	c := &Client{
		httpclient: &http.Client{Timeout: config.Timeout},
		api:        strings.TrimSuffix(config.URL, "/"),
		endpoint:   config.Endpoint,
		token:      config.Token,
		username:   config.Username,
		password:   config.Password,
		now:        time.Now,
		attempts:   DefaultAttempts,
		backoff: func() retry.Backoff {
			return retry.ExponentialBackoff(DefaultBackoff, 2)
		},
	}
	for _, opt := range options {
		c = opt(c)
	}
	c.logger = xlog.OrDefault(c.logger)
	return c
}

// build URL with path
func (c *Client) apipath(path ...string) string {
	for i := range path {
		path[i] = strings.Trim(path[i], "/")
	}
	return strings.Join(append([]string{c.api}, path...), "/")
}

type container struct {
	Names []string `json:"Names"`
	State string   `json:"State"`
}

// ListRunningContainerNames returns names of running containers, without leading "/".
//
// Containers are in the order Portainer returns.
//
// Network errors and 5xx responses are retried. See WithRetry.
func (c *Client) ListRunningContainerNames(ctx context.Context) ([]string, error) {
	return retry.Do(ctx, c.attempts, c.backoff(), func(ctx context.Context) ([]string, error) {
		names, err := c.listOnce(ctx)
		if errors.Is(err, retry.ErrRetry) {
			c.logger.Printf("listing containers has failed: %s", err)
		}
		return names, err
	})
}

func (c *Client) listOnce(ctx context.Context) ([]string, error) {
	req, err := http.NewRequestWithContext(
		ctx, http.MethodGet,
		c.apipath("endpoints", strconv.Itoa(c.endpoint), "docker", "containers", "json"),
		nil,
	)
	if err != nil {
		return nil, err
	}
	if err := c.authorize(ctx, req); err != nil {
		return nil, err
	}

	resp, err := c.httpclient.Do(req)
	if err != nil {
		if ctx.Err() == nil {
			err = fmt.Errorf("%w: %w", retry.ErrRetry, err)
		}
		return nil, xe.Wrap(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusUnauthorized {
		c.forget()
		return nil, fmt.Errorf("%w: %s", ErrUnauthorized, readMessage(resp.Body))
	}

	var containers []container
	if err := unmarshalJsonResponse(resp, &containers); err != nil {
		if 500 <= resp.StatusCode {
			err = fmt.Errorf("%w: %w", retry.ErrRetry, err)
		}
		return nil, err
	}

	names := make([]string, 0, len(containers))
	for _, ctr := range containers {
		if len(ctr.Names) == 0 {
			continue
		}
		if ctr.State != "" && ctr.State != "running" {
			continue
		}
		names = append(names, strings.TrimPrefix(ctr.Names[0], "/"))
	}
	return names, nil
}

func (c *Client) authorize(ctx context.Context, req *http.Request) error {
	req.Header.Set("User-Agent", buildtime.UserAgent())
	if c.token != "" {
		req.Header.Set("X-API-Key", c.token)
		return nil
	}

	tok, err := c.bearer(ctx)
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+tok)
	return nil
}

// bearer returns a cached JWT, or login for a new one.
func (c *Client) bearer(ctx context.Context) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.jwt != "" && (c.expiry.IsZero() || c.now().Before(c.expiry)) {
		return c.jwt, nil
	}

	tok, err := c.login(ctx)
	if err != nil {
		return "", err
	}

	expiry, err := expiryOf(tok)
	if err != nil {
		return "", fmt.Errorf("%w: malformed jwt: %w", ErrUnexpectedResponse, err)
	}
	if !expiry.IsZero() {
		expiry = expiry.Add(-expiryMargin)
	}
	c.jwt, c.expiry = tok, expiry
	c.logger.Printf("logged in as %s (expiry: %s)", c.username, expiry)
	return tok, nil
}

func (c *Client) forget() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.jwt, c.expiry = "", time.Time{}
}

func (c *Client) login(ctx context.Context) (string, error) {
	payload, err := json.Marshal(struct {
		Username string `json:"username"`
		Password string `json:"password"`
	}{Username: c.username, Password: c.password})
	if err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(
		ctx, http.MethodPost, c.apipath("auth"), bytes.NewReader(payload),
	)
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("User-Agent", buildtime.UserAgent())

	resp, err := c.httpclient.Do(req)
	if err != nil {
		if ctx.Err() == nil {
			err = fmt.Errorf("%w: %w", retry.ErrRetry, err)
		}
		return "", xe.WrapWithNote("login", err)
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusUnauthorized, http.StatusUnprocessableEntity:
		return "", fmt.Errorf("%w: login as %s: %s", ErrUnauthorized, c.username, readMessage(resp.Body))
	}

	var auth struct {
		JWT string `json:"jwt"`
	}
	if err := unmarshalJsonResponse(resp, &auth); err != nil {
		if 500 <= resp.StatusCode {
			err = fmt.Errorf("%w: %w", retry.ErrRetry, err)
		}
		return "", err
	}
	if auth.JWT == "" {
		return "", fmt.Errorf("%w: login response has no jwt", ErrUnexpectedResponse)
	}
	return auth.JWT, nil
}

// expiryOf returns the "exp" claim of tok, or zero time if it has no "exp".
//
// The signature is not verified: the token is only passed back to its issuer.
func expiryOf(tok string) (time.Time, error) {
	claims := &jwt.RegisteredClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(tok, claims); err != nil {
		return time.Time{}, err
	}
	if claims.ExpiresAt == nil {
		return time.Time{}, nil
	}
	return claims.ExpiresAt.Time, nil
}

func unmarshalJsonResponse[T any](resp *http.Response, v *T) error {
	if resp.StatusCode < 200 || 300 <= resp.StatusCode {
		return fmt.Errorf(
			"%w: %s %s (status code = %d): %s",
			ErrUnexpectedResponse, resp.Request.Method, resp.Request.URL, resp.StatusCode,
			readMessage(resp.Body),
		)
	}
	if err := json.NewDecoder(resp.Body).Decode(v); err != nil {
		return fmt.Errorf("%w: %w", ErrUnexpectedResponse, err)
	}
	return nil
}

// readMessage reads the "message" of Portainer's error payload, or the raw body.
func readMessage(r io.Reader) string {
	body, err := io.ReadAll(io.LimitReader(r, 4096))
	if err != nil {
		return fmt.Sprintf("(cannot read message: %s)", err)
	}
	msg := struct {
		Message string `json:"message"`
		Details string `json:"details"`
	}{}
	if err := json.Unmarshal(body, &msg); err == nil && msg.Message != "" {
		if msg.Details != "" {
			return msg.Message + ": " + msg.Details
		}
		return msg.Message
	}
	return strings.TrimSpace(string(body))
}
