// Package cms talks to the microCMS content API that hosts published
// proposals.
package cms

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"
)

const pageSize = 100

// Record is one published proposal as stored in the CMS.
type Record struct {
	ID            string `json:"id,omitempty"`
	Title         string `json:"title"`
	Content       string `json:"content"`
	ProposalID    string `json:"proposalId"`
	Status        string `json:"status"`
	Authors       string `json:"authors"`
	ReviewManager string `json:"reviewManager"`
}

type listResponse struct {
	Contents   []Record `json:"contents"`
	TotalCount int      `json:"totalCount"`
	Offset     int      `json:"offset"`
	Limit      int      `json:"limit"`
}

// Client calls a single microCMS list endpoint.
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client

	Stats *Stats
}

// ServiceURL returns the list endpoint URL for a microCMS service domain.
func ServiceURL(domain, endpoint string) string {
	return fmt.Sprintf("https://%s.microcms.io/api/v1/%s", domain, endpoint)
}

func NewClient(baseURL, apiKey string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Client{
		baseURL: baseURL,
		apiKey:  apiKey,
		httpClient: &http.Client{
			Timeout: timeout,
		},
		Stats: NewStats(time.Hour),
	}
}

// List fetches every record, paging until totalCount is reached.
func (c *Client) List(ctx context.Context) ([]Record, error) {
	var all []Record
	for offset := 0; ; {
		q := url.Values{}
		q.Set("limit", strconv.Itoa(pageSize))
		q.Set("offset", strconv.Itoa(offset))

		var page listResponse
		err := withRetry(ctx, func() error {
			return c.doJSON(ctx, http.MethodGet, c.baseURL+"?"+q.Encode(), nil, &page, http.StatusOK)
		})
		if err != nil {
			return nil, fmt.Errorf("list contents at offset %d: %w", offset, err)
		}

		all = append(all, page.Contents...)
		offset += len(page.Contents)
		if len(page.Contents) == 0 || offset >= page.TotalCount {
			return all, nil
		}
	}
}

// Create stores rec and returns the content ID assigned by the CMS.
func (c *Client) Create(ctx context.Context, rec Record) (string, error) {
	rec.ID = ""
	var created struct {
		ID string `json:"id"`
	}
	err := withRetry(ctx, func() error {
		return c.doJSON(ctx, http.MethodPost, c.baseURL, rec, &created, http.StatusCreated, http.StatusOK)
	})
	if err != nil {
		return "", fmt.Errorf("create proposal %s: %w", rec.ProposalID, err)
	}
	return created.ID, nil
}

// Delete removes the record with the given content ID.
func (c *Client) Delete(ctx context.Context, contentID string) error {
	err := withRetry(ctx, func() error {
		return c.doJSON(ctx, http.MethodDelete, c.baseURL+"/"+url.PathEscape(contentID), nil, nil,
			http.StatusAccepted, http.StatusNoContent, http.StatusOK)
	})
	if err != nil {
		return fmt.Errorf("delete content %s: %w", contentID, err)
	}
	return nil
}

// doJSON sends one request. Throttling and server errors come back as
// *RetryableError.
func (c *Client) doJSON(ctx context.Context, method, u string, in, out any, ok ...int) error {
	var body io.Reader
	if in != nil {
		b, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("marshal request: %w", err)
		}
		body = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, u, body)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("X-MICROCMS-API-KEY", c.apiKey)
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.Stats.Record(time.Since(start).Milliseconds(), true)
		return fmt.Errorf("%s %s: %w", method, u, err)
	}
	defer resp.Body.Close()
	c.Stats.Record(time.Since(start).Milliseconds(), !statusIn(resp.StatusCode, ok))

	respBody, err := io.ReadAll(io.LimitReader(resp.Body, 8<<20))
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500 {
		return &RetryableError{StatusCode: resp.StatusCode, Message: string(respBody)}
	}
	if !statusIn(resp.StatusCode, ok) {
		return &StatusError{StatusCode: resp.StatusCode, Message: truncate(string(respBody), 1024)}
	}
	if out == nil || len(respBody) == 0 {
		return nil
	}
	if err := json.Unmarshal(respBody, out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

func statusIn(code int, ok []int) bool {
	for _, c := range ok {
		if c == code {
			return true
		}
	}
	return false
}

// Close releases idle connections.
func (c *Client) Close() {
	c.httpClient.CloseIdleConnections()
}
