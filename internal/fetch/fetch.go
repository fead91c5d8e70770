// Package fetch resolves and downloads dataset archives from the DWD open
// data origin. Resolution probes a ranked list of candidate URLs because the
// CDC directory layout shifts between dataset versions.
package fetch

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/neotopiaGbR/neotopia-navigator/internal/observability"
)

// ErrNoLocation signals that no candidate URL answered the existence probe.
// Callers treat this as a degrade signal, not a hard failure.
var ErrNoLocation = errors.New("no remote location resolved")

// Client probes and downloads dataset files over HTTP.
type Client struct {
	httpClient   *http.Client
	probeTimeout time.Duration
	logger       *slog.Logger
	metrics      *observability.Metrics
}

// NewClient creates a fetch client. downloadTimeout bounds a whole streamed
// download; probeTimeout bounds each individual HEAD probe.
func NewClient(probeTimeout, downloadTimeout time.Duration, logger *slog.Logger, metrics *observability.Metrics) *Client {
	return &Client{
		httpClient:   &http.Client{Timeout: downloadTimeout},
		probeTimeout: probeTimeout,
		logger:       logger,
		metrics:      metrics,
	}
}

// Resolve probes the candidate URLs in order and returns the first one that
// responds 200 to a HEAD request. Probe errors on individual candidates are
// logged and skipped; if none succeed, ErrNoLocation is returned.
func (c *Client) Resolve(ctx context.Context, candidates []string) (string, error) {
	for _, url := range candidates {
		ok, err := c.probe(ctx, url)
		if err != nil {
			if ctx.Err() != nil {
				return "", ctx.Err()
			}
			c.logger.Debug("probe failed", "url", url, "error", err)
			continue
		}
		if ok {
			c.logger.Info("resolved remote location", "url", url)
			return url, nil
		}
	}
	return "", ErrNoLocation
}

func (c *Client) probe(ctx context.Context, url string) (bool, error) {
	probeCtx, cancel := context.WithTimeout(ctx, c.probeTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(probeCtx, http.MethodHead, url, nil)
	if err != nil {
		return false, err
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return false, err
	}
	defer resp.Body.Close()
	io.Copy(io.Discard, resp.Body) //nolint:errcheck // HEAD bodies are empty

	return resp.StatusCode == http.StatusOK, nil
}

// Download streams the URL into dest, reporting progress as a fraction of the
// declared Content-Length when the origin provides one. A partially written
// file is removed on failure.
func (c *Client) Download(ctx context.Context, url, dest string) error {
	c.logger.Info("downloading", "url", url)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("download failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("download failed: status %d", resp.StatusCode)
	}

	f, err := os.Create(dest)
	if err != nil {
		return fmt.Errorf("create %s: %w", dest, err)
	}

	pw := &progressWriter{total: resp.ContentLength, logger: c.logger}
	written, err := io.Copy(io.MultiWriter(f, pw), resp.Body)
	c.metrics.BytesDownloaded.Add(float64(written))

	if cerr := f.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		os.Remove(dest)
		return fmt.Errorf("download failed: %w", err)
	}

	c.logger.Info("downloaded", "dest", dest, "bytes", written)
	return nil
}

// progressWriter logs download progress at quarter steps when the total size
// is known. With an unknown total only the final byte count is reported.
type progressWriter struct {
	total    int64
	written  int64
	lastStep int
	logger   *slog.Logger
}

func (p *progressWriter) Write(b []byte) (int, error) {
	p.written += int64(len(b))
	if p.total > 0 {
		step := int(p.written * 4 / p.total)
		if step > p.lastStep {
			p.lastStep = step
			p.logger.Info("download progress",
				"percent", p.written*100/p.total,
				"bytes", p.written,
			)
		}
	}
	return len(b), nil
}
