package probe

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"strings"
	"syscall"
	"time"

	"wisecow/internal/models"
)

const (
	ReasonTimeout = "timeout"
	ReasonRefused = "connection refused"
)

// Client issues single-attempt health probes. No retries, no backoff; callers
// that want either wrap the client themselves.
type Client struct {
	HTTP *http.Client
}

func NewClient(timeout time.Duration) *Client {
	return &Client{HTTP: &http.Client{Timeout: timeout}}
}

// Probe issues one request against target and classifies the outcome. The
// target may be a full URL or a bare host:port, in which case http:// is
// assumed.
func (c *Client) Probe(ctx context.Context, target string) models.ProbeResult {
	res := models.ProbeResult{Target: target, TS: time.Now().UTC()}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, Normalize(target), nil)
	if err != nil {
		res.Reason = err.Error()
		return res
	}
	start := time.Now()
	resp, err := c.HTTP.Do(req)
	res.Latency = time.Since(start)
	if err != nil {
		res.Reason = classify(err)
		return res
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 1<<20))

	res.StatusCode = resp.StatusCode
	if resp.StatusCode >= 200 && resp.StatusCode < 400 {
		res.Succeeded = true
		res.Reason = StatusReason(resp.StatusCode)
	} else {
		res.Reason = fmt.Sprintf("%s: %d", StatusReason(resp.StatusCode), resp.StatusCode)
	}
	return res
}

// Normalize prefixes bare host:port targets with http://.
func Normalize(target string) string {
	if strings.Contains(target, "://") {
		return target
	}
	return "http://" + target
}

// StatusReason buckets a status code into a human-readable class.
func StatusReason(code int) string {
	switch {
	case code >= 200 && code < 300:
		return "Success"
	case code >= 300 && code < 400:
		return "Redirection"
	case code >= 400 && code < 500:
		return "Client Error"
	case code >= 500 && code < 600:
		return "Server Error"
	default:
		return "Unknown Status"
	}
}

func classify(err error) string {
	if errors.Is(err, syscall.ECONNREFUSED) {
		return ReasonRefused
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return ReasonTimeout
	}
	var ne net.Error
	if errors.As(err, &ne) && ne.Timeout() {
		return ReasonTimeout
	}
	return err.Error()
}
