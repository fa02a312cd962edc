// Package records is a client for the hosted record CRUD service that owns
// products, orders and reviews in production.
package records

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

	pkgerrors "github.com/artisanmarket/storefront/pkg/errors"
)

const (
	defaultTimeout            = 10 * time.Second
	errorBodyReadLimit  int64 = 1024
	defaultErrorMessage       = "record service request failed"
)

var errBaseURLRequired = errors.New("records base url is required")

// Client talks to the record service over HTTP.
type Client struct {
	httpClient *http.Client
	baseURL    string
	apiKey     string
}

// Option configures optional client behavior.
type Option func(*Client)

// WithHTTPClient overrides the default HTTP client.
func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) {
		if client != nil {
			c.httpClient = client
		}
	}
}

// WithAPIKey sets the bearer key sent with every request.
func WithAPIKey(key string) Option {
	return func(c *Client) {
		c.apiKey = strings.TrimSpace(key)
	}
}

// NewClient builds a record service client rooted at baseURL.
func NewClient(baseURL string, opts ...Option) (*Client, error) {
	trimmed := strings.TrimRight(strings.TrimSpace(baseURL), "/")
	if trimmed == "" {
		return nil, errBaseURLRequired
	}
	client := &Client{
		baseURL:    trimmed,
		httpClient: &http.Client{Timeout: defaultTimeout},
	}
	for _, opt := range opts {
		if opt != nil {
			opt(client)
		}
	}
	return client, nil
}

// envelope is the uniform {success, data|message} response shape.
type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Total   int64           `json:"total"`
	Message string          `json:"message"`
	Results []result        `json:"results"`
}

type result struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Message string          `json:"message"`
}

// FetchResult carries the raw records of one page and the total match count.
type FetchResult struct {
	Data  json.RawMessage
	Total int64
}

// Fetch runs a query against a collection.
func (c *Client) Fetch(ctx context.Context, collection string, q Query) (*FetchResult, error) {
	env, err := c.do(ctx, http.MethodPost, c.collectionURL(collection, "query"), q)
	if err != nil {
		return nil, err
	}
	data := env.Data
	if len(data) == 0 || string(data) == "null" {
		data = json.RawMessage("[]")
	}
	return &FetchResult{Data: data, Total: env.Total}, nil
}

// GetByID returns a single record. Missing records are CodeNotFound.
func (c *Client) GetByID(ctx context.Context, collection string, id int64) (json.RawMessage, error) {
	env, err := c.do(ctx, http.MethodGet, c.collectionURL(collection, strconv.FormatInt(id, 10)), nil)
	if err != nil {
		return nil, err
	}
	if len(env.Data) == 0 || string(env.Data) == "null" {
		return nil, pkgerrors.Newf(pkgerrors.CodeNotFound, "%s record %d not found", collection, id)
	}
	return env.Data, nil
}

// Create inserts one record and returns it as stored.
func (c *Client) Create(ctx context.Context, collection string, record any) (json.RawMessage, error) {
	env, err := c.do(ctx, http.MethodPost, c.collectionURL(collection), map[string]any{"records": []any{record}})
	if err != nil {
		return nil, err
	}
	return firstResult(env, "create")
}

// Update patches one record (the payload must carry its Id).
func (c *Client) Update(ctx context.Context, collection string, record any) (json.RawMessage, error) {
	env, err := c.do(ctx, http.MethodPatch, c.collectionURL(collection), map[string]any{"records": []any{record}})
	if err != nil {
		return nil, err
	}
	return firstResult(env, "update")
}

// Delete removes one record by id.
func (c *Client) Delete(ctx context.Context, collection string, id int64) error {
	env, err := c.do(ctx, http.MethodDelete, c.collectionURL(collection), map[string]any{"RecordIds": []int64{id}})
	if err != nil {
		return err
	}
	_, err = firstResult(env, "delete")
	return err
}

func firstResult(env *envelope, op string) (json.RawMessage, error) {
	if len(env.Results) == 0 {
		return env.Data, nil
	}
	first := env.Results[0]
	if !first.Success {
		msg := first.Message
		if msg == "" {
			msg = fmt.Sprintf("record %s failed", op)
		}
		return nil, pkgerrors.New(pkgerrors.CodeDependency, msg)
	}
	return first.Data, nil
}

func (c *Client) do(ctx context.Context, method, endpoint string, body any) (*envelope, error) {
	if c == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "records client not configured")
	}

	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "marshal records request")
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, reader)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "build records request")
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "execute records request")
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode == http.StatusNotFound {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "record not found")
	}
	if resp.StatusCode >= http.StatusBadRequest {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, errorBodyReadLimit))
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency,
			fmt.Errorf("status %d: %s", resp.StatusCode, strings.TrimSpace(string(msg))),
			defaultErrorMessage)
	}

	var env envelope
	if err := json.NewDecoder(resp.Body).Decode(&env); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "decode records response")
	}
	if !env.Success {
		msg := env.Message
		if msg == "" {
			msg = defaultErrorMessage
		}
		return nil, pkgerrors.New(pkgerrors.CodeDependency, msg)
	}
	return &env, nil
}

func (c *Client) collectionURL(collection string, parts ...string) string {
	segments := []string{c.baseURL, "records", url.PathEscape(collection)}
	for _, p := range parts {
		segments = append(segments, url.PathEscape(p))
	}
	return strings.Join(segments, "/")
}

// Store is the record-service surface the domain mappers depend on.
type Store interface {
	Fetch(ctx context.Context, collection string, q Query) (*FetchResult, error)
	GetByID(ctx context.Context, collection string, id int64) (json.RawMessage, error)
	Create(ctx context.Context, collection string, record any) (json.RawMessage, error)
	Update(ctx context.Context, collection string, record any) (json.RawMessage, error)
	Delete(ctx context.Context, collection string, id int64) error
}

var _ Store = (*Client)(nil)
