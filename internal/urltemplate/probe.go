package urltemplate

import (
	"context"
	"net/http"
	"time"
)

// DefaultProbeTimeout bounds one availability check.
const DefaultProbeTimeout = 5 * time.Second

// HTTPProber checks pages with a HEAD request; only 200 counts as available.
type HTTPProber struct {
	Client  *http.Client
	Timeout time.Duration
}

// Available implements Prober. Network errors count as unavailable.
func (p *HTTPProber) Available(ctx context.Context, rawURL string) bool {
	timeout := p.Timeout
	if timeout <= 0 {
		timeout = DefaultProbeTimeout
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodHead, rawURL, nil)
	if err != nil {
		return false
	}
	client := p.Client
	if client == nil {
		client = http.DefaultClient
	}
	resp, err := client.Do(req)
	if err != nil {
		return false
	}
	resp.Body.Close()
	return resp.StatusCode == http.StatusOK
}
