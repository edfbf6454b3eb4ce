package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/hashicorp/go-retryablehttp"

	"audioconvert/pkg/models"
)

// Client is a typed client for the conversion endpoint, used by the
// demonstration CLI and integration tests.
type Client struct {
	baseURL    string
	secret     string
	httpClient *http.Client
}

// New creates a client with connection-level retries. The server holds the
// request open for the whole conversion budget, so the client timeout is
// generous.
func New(baseURL, secret string) *Client {
	rc := retryablehttp.NewClient()
	rc.RetryMax = 2
	rc.RetryWaitMin = 1 * time.Second
	rc.RetryWaitMax = 5 * time.Second
	rc.Logger = nil // Silence default debug logger
	c := rc.StandardClient()
	c.Timeout = 60 * time.Second

	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		secret:     secret,
		httpClient: c,
	}
}

// Convert posts sourceURL for conversion and streams the audio payload into
// w. On a non-2xx response the server's structured error is returned.
func (c *Client) Convert(ctx context.Context, sourceURL string, w io.Writer) (*models.ConvertInfo, error) {
	body, err := json.Marshal(models.ConvertRequest{URL: sourceURL})
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/convert", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.secret != "" {
		req.Header.Set("Authorization", "Bearer "+c.secret)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		var errResp models.ErrorResponse
		if decodeErr := json.NewDecoder(resp.Body).Decode(&errResp); decodeErr == nil && errResp.Code != "" {
			cerr := models.NewError(errResp.Code, "%s", errResp.Error)
			cerr.Status = resp.StatusCode
			cerr.Attempted = errResp.Attempted
			return nil, cerr
		}
		return nil, fmt.Errorf("server returned status %d", resp.StatusCode)
	}

	n, err := io.Copy(w, resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading audio payload: %w", err)
	}

	info := &models.ConvertInfo{
		ContentType: resp.Header.Get("Content-Type"),
		Filename:    dispositionFilename(resp.Header.Get("Content-Disposition")),
		SizeBytes:   n,
	}
	if ms, parseErr := strconv.ParseInt(resp.Header.Get("X-Processing-Time-Ms"), 10, 64); parseErr == nil {
		info.ProcessingTimeMs = ms
	}
	return info, nil
}

// dispositionFilename pulls the suggested filename out of a
// Content-Disposition header, empty when absent.
func dispositionFilename(header string) string {
	const marker = `filename="`
	i := strings.Index(header, marker)
	if i < 0 {
		return ""
	}
	rest := header[i+len(marker):]
	if j := strings.Index(rest, `"`); j >= 0 {
		return rest[:j]
	}
	return ""
}
