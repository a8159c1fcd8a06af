// Package postgrest talks to a PostgREST-compatible endpoint: tables and
// views addressed by name, rows sent and received as JSON.
package postgrest

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/joao-fontenele/order-intake/internal/credentials"
)

const restPath = "/rest/v1/"

type Client struct {
	baseURL    string
	serviceKey string
	client     *http.Client
}

func NewClient(baseURL, serviceKey string, client *http.Client) *Client {
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		serviceKey: serviceKey,
		client:     client,
	}
}

// APIError is a non-2xx answer from the endpoint. Error returns the
// endpoint's own message when it sent one.
type APIError struct {
	Status  int    `json:"-"`
	Code    string `json:"code"`
	Message string `json:"message"`
	Details string `json:"details"`
	Hint    string `json:"hint"`
}

func (e *APIError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return fmt.Sprintf("store returned status %d", e.Status)
}

// Insert posts one row into table. When returning is non-empty the inserted
// row's columns are decoded into out, which must point to a slice.
func (c *Client) Insert(ctx context.Context, table string, row any, returning string, out any) error {
	query := url.Values{}
	prefer := "return=minimal"
	if returning != "" {
		query.Set("select", returning)
		prefer = "return=representation"
	}
	return c.do(ctx, http.MethodPost, table, query, row, prefer, out)
}

// Select reads every row of table visible to the forwarded credential.
func (c *Client) Select(ctx context.Context, table, columns string, out any) error {
	query := url.Values{}
	query.Set("select", columns)
	return c.do(ctx, http.MethodGet, table, query, nil, "", out)
}

func (c *Client) do(ctx context.Context, method, table string, query url.Values, body any, prefer string, out any) error {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshal %s row: %w", table, err)
		}
		reader = bytes.NewReader(data)
	}

	endpoint := c.baseURL + restPath + table
	if len(query) > 0 {
		endpoint += "?" + query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, reader)
	if err != nil {
		return err
	}

	req.Header.Set("apikey", c.serviceKey)
	req.Header.Set("Authorization", credentials.Authorization(ctx))
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if prefer != "" {
		req.Header.Set("Prefer", prefer)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return err
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return decodeAPIError(resp)
	}

	if out == nil {
		return nil
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode %s response: %w", table, err)
	}

	return nil
}

func decodeAPIError(resp *http.Response) error {
	apiErr := &APIError{Status: resp.StatusCode}

	data, err := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
	if err != nil || len(data) == 0 {
		return apiErr
	}

	if err := json.Unmarshal(data, apiErr); err != nil {
		apiErr.Message = strings.TrimSpace(string(data))
	}
	return apiErr
}
