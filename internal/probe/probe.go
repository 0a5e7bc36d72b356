package probe

import (
	"context"
	"fmt"
	"net/http"

	"github.com/jwillemsen/baanradar/internal/model"
)

// Ensure HTTPProber implements model.Prober.
var _ model.Prober = (*HTTPProber)(nil)

const userAgent = "baanradar/1.0"

// HTTPProber checks whether a vacancy URL still resolves. It tries a cheap
// HEAD request first and falls back to GET for servers that reject HEAD.
//
// Only a definite 404 or 410 maps to StatusGone. Everything else that is not
// a success, including transport errors, maps to StatusUnknown so that a
// flaky broker never causes deletions.
type HTTPProber struct {
	client *http.Client
}

// NewHTTPProber creates a prober using the given HTTP client.
func NewHTTPProber(client *http.Client) *HTTPProber {
	return &HTTPProber{client: client}
}

// Probe reports whether the posting behind url is still being served.
func (p *HTTPProber) Probe(ctx context.Context, url string) (model.ProbeStatus, error) {
	status, err := p.request(ctx, http.MethodHead, url)
	if err != nil {
		return model.StatusUnknown, err
	}
	if status == http.StatusMethodNotAllowed || status == http.StatusNotImplemented {
		status, err = p.request(ctx, http.MethodGet, url)
		if err != nil {
			return model.StatusUnknown, err
		}
	}

	switch {
	case status == http.StatusNotFound || status == http.StatusGone:
		return model.StatusGone, nil
	case status >= 200 && status < 300:
		return model.StatusAlive, nil
	default:
		return model.StatusUnknown, nil
	}
}

func (p *HTTPProber) request(ctx context.Context, method, url string) (int, error) {
	req, err := http.NewRequestWithContext(ctx, method, url, nil)
	if err != nil {
		return 0, fmt.Errorf("building %s request for %s: %w", method, url, err)
	}
	req.Header.Set("User-Agent", userAgent)

	resp, err := p.client.Do(req)
	if err != nil {
		return 0, fmt.Errorf("probing %s: %w", url, err)
	}
	defer resp.Body.Close()
	return resp.StatusCode, nil
}
