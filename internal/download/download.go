// Package download streams the remote source file to local scratch storage
// under a size cap and a budget-derived timeout.
package download

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/url"
	"os"
	"time"

	"github.com/hashicorp/go-retryablehttp"

	"audioconvert/internal/trace"
	"audioconvert/pkg/models"
)

// Options bounds a single fetch.
type Options struct {
	MaxBytes int64
	Timeout  time.Duration
}

// NewHTTPClient builds the retrying HTTP client used for source downloads.
// One retry only: the invocation budget is too tight for a longer backoff
// ladder, and download failures are otherwise terminal by contract.
func NewHTTPClient() *http.Client {
	rc := retryablehttp.NewClient()
	rc.RetryMax = 1
	rc.RetryWaitMin = 250 * time.Millisecond
	rc.RetryWaitMax = 1 * time.Second
	rc.Logger = nil // Silence default debug logger
	return rc.StandardClient()
}

// Fetch downloads rawURL into destPath. It returns the byte count written.
// Failures are classified: bad URL and upstream errors map to a 400-class
// DownloadFailed, timeouts to a 504-class one, and a zero-byte body to
// EmptyInput before any transcode is attempted.
func Fetch(ctx context.Context, client *http.Client, rawURL, destPath string, opts Options, tr *trace.Recorder) (int64, error) {
	u, err := url.Parse(rawURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return 0, models.NewError(models.CodeDownloadFailed,
			"url must be an absolute http or https URL")
	}

	ctx, cancel := context.WithTimeout(ctx, opts.Timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return 0, models.WrapError(models.CodeDownloadFailed, err, "building download request")
	}

	resp, err := client.Do(req)
	if err != nil {
		return 0, classifyFetchError(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return 0, models.NewError(models.CodeDownloadFailed,
			"source returned status %d", resp.StatusCode)
	}
	if resp.ContentLength > 0 && resp.ContentLength > opts.MaxBytes {
		return 0, models.NewError(models.CodeDownloadFailed,
			"source is %d bytes, cap is %d", resp.ContentLength, opts.MaxBytes)
	}

	out, err := os.Create(destPath)
	if err != nil {
		return 0, models.WrapError(models.CodeInternal, err, "creating scratch file")
	}
	defer out.Close()

	// Read one byte past the cap so an at-cap file and an over-cap stream
	// are distinguishable.
	written, err := io.Copy(out, io.LimitReader(resp.Body, opts.MaxBytes+1))
	if err != nil {
		return written, classifyFetchError(err)
	}
	if written > opts.MaxBytes {
		return written, models.NewError(models.CodeDownloadFailed,
			"source exceeds size cap of %d bytes", opts.MaxBytes)
	}
	if written == 0 {
		return 0, models.NewError(models.CodeEmptyInput, "downloaded file is empty")
	}

	if tr != nil {
		tr.Addf("downloaded %d bytes", written)
	}
	return written, nil
}

func classifyFetchError(err error) *models.ConvertError {
	cerr := models.WrapError(models.CodeDownloadFailed, err, "fetching source")
	if errors.Is(err, context.DeadlineExceeded) || isTimeout(err) {
		cerr.Message = "download timed out"
		cerr.Status = http.StatusGatewayTimeout
	}
	return cerr
}

func isTimeout(err error) bool {
	var nerr interface{ Timeout() bool }
	if errors.As(err, &nerr) {
		return nerr.Timeout()
	}
	return false
}
