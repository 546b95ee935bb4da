// Package client is the Go SDK for the TripSync gateway. It implements
// the entity-store contracts — create/read/update/delete plus live
// Subscribe* views — over the HTTP binding, and can run either strategy
// of the subscription multiplexer: polling the JSON endpoints on an
// interval, or re-fetching on signals from the websocket change stream.
// Application code is identical in both modes.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/sethvargo/go-retry"

	"github.com/pkordes/tripsync/internal/domain"
	"github.com/pkordes/tripsync/internal/live"
	"github.com/pkordes/tripsync/internal/middleware"
)

// Mode selects the subscription strategy.
type Mode int

const (
	// ModePoll re-reads each subscribed query every poll interval.
	ModePoll Mode = iota
	// ModePush re-reads a subscribed query when the gateway's watch
	// stream signals a change on its topic.
	ModePush
)

// IdentityProvider supplies the caller identity sent with every request.
// identity.Provider satisfies it.
type IdentityProvider interface {
	Current() string
}

// Options configures a Client.
type Options struct {
	// BaseURL is the gateway root, e.g. "http://localhost:8080".
	BaseURL string

	// Identity supplies the anonymous identity header. Required.
	Identity IdentityProvider

	// Mode selects poll or push subscriptions. Default ModePoll.
	Mode Mode

	// PollInterval overrides the poll cadence. Zero keeps the default.
	PollInterval time.Duration

	// HTTPClient overrides the transport. Nil uses a client with a
	// 10 second timeout.
	HTTPClient *http.Client
}

// Client talks to one gateway on behalf of one identity.
type Client struct {
	baseURL  string
	http     *http.Client
	identity IdentityProvider
	mux      *live.Multiplexer
}

// New validates opts and returns a Client.
func New(opts Options) (*Client, error) {
	if opts.BaseURL == "" {
		return nil, fmt.Errorf("client.New: BaseURL is required")
	}
	if opts.Identity == nil {
		return nil, fmt.Errorf("client.New: Identity is required")
	}

	httpClient := opts.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 10 * time.Second}
	}

	c := &Client{
		baseURL:  strings.TrimSuffix(opts.BaseURL, "/"),
		http:     httpClient,
		identity: opts.Identity,
		mux:      &live.Multiplexer{Interval: opts.PollInterval},
	}
	if opts.Mode == ModePush {
		c.mux.Notifier = newWSNotifier(c.baseURL, opts.Identity)
	}
	return c, nil
}

// Identity returns the identity the client acts as.
func (c *Client) Identity() string {
	return c.identity.Current()
}

// do performs one request against the gateway. Response bodies are decoded
// into out when it is non-nil. Gateway error bodies are mapped back onto
// the domain error taxonomy; network failures and 5xx responses come back
// wrapped in domain.ErrTransport.
func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	var reqBody *bytes.Buffer
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("client: encode request: %w", err)
		}
		reqBody = bytes.NewBuffer(b)
	} else {
		reqBody = &bytes.Buffer{}
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reqBody)
	if err != nil {
		return fmt.Errorf("client: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set(middleware.IdentityHeader, c.identity.Current())

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("client: %s %s: %w: %w", method, path, domain.ErrTransport, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return c.mapError(method, path, resp)
	}
	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return fmt.Errorf("client: %s %s: decode response: %w", method, path, err)
		}
	}
	return nil
}

// get performs a read with retry: transport failures back off and retry a
// few times before surfacing, so a blip does not fail a snapshot fetch.
func (c *Client) get(ctx context.Context, path string, out any) error {
	backoff := retry.WithMaxRetries(3, retry.NewFibonacci(100*time.Millisecond))
	return retry.Do(ctx, backoff, func(ctx context.Context) error {
		err := c.do(ctx, http.MethodGet, path, nil, out)
		if err != nil && isTransport(err) {
			return retry.RetryableError(err)
		}
		return err
	})
}

// mapError converts a gateway error response into a typed error.
func (c *Client) mapError(method, path string, resp *http.Response) error {
	var body struct {
		Error struct {
			Code    string `json:"code"`
			Message string `json:"message"`
		} `json:"error"`
	}
	_ = json.NewDecoder(resp.Body).Decode(&body)
	msg := body.Error.Message
	if msg == "" {
		msg = resp.Status
	}

	var kind error
	switch resp.StatusCode {
	case http.StatusNotFound:
		kind = domain.ErrNotFound
	case http.StatusUnprocessableEntity:
		kind = domain.ErrValidation
	case http.StatusConflict:
		kind = domain.ErrScope
	default:
		kind = domain.ErrTransport
	}
	return fmt.Errorf("client: %s %s: %w: %s", method, path, kind, msg)
}

func isTransport(err error) bool {
	return errors.Is(err, domain.ErrTransport)
}
