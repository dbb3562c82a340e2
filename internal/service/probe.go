package service

import (
	"bitwise74/dashboard-api/pkg/apperr"
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"slices"
	"time"

	"github.com/goccy/go-json"
)

var ProbeMethods = []string{http.MethodGet, http.MethodPost, http.MethodPut}

// maxProbeBody caps how much of a probed response is passed back
const maxProbeBody = 1 << 20

// ProbeResult is the raw outcome of a probe
type ProbeResult struct {
	Status int
	Body   string
}

// Prober performs the outbound requests behind the URL testing endpoints
type Prober struct {
	Client *http.Client
}

func NewProber(timeout time.Duration) *Prober {
	return &Prober{Client: &http.Client{Timeout: timeout}}
}

// ProbeRequest describes an outbound request. Params are merged into the
// query string and Body is sent as JSON for POST and PUT.
type ProbeRequest struct {
	URL    string
	Method string
	Params map[string]any
	Body   json.RawMessage
}

func (p *Prober) Do(ctx context.Context, r ProbeRequest) (*ProbeResult, error) {
	if !slices.Contains(ProbeMethods, r.Method) {
		return nil, apperr.Validation("unsupported request type " + r.Method)
	}

	u, err := url.Parse(r.URL)
	if err != nil {
		return nil, apperr.Validation("invalid url")
	}

	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, apperr.Validation("url must use http or https")
	}

	if len(r.Params) > 0 {
		q := u.Query()
		for k, v := range r.Params {
			q.Set(k, fmt.Sprint(v))
		}
		u.RawQuery = q.Encode()
	}

	var body io.Reader
	if r.Method != http.MethodGet && len(r.Body) > 0 {
		body = bytes.NewReader(r.Body)
	}

	req, err := http.NewRequestWithContext(ctx, r.Method, u.String(), body)
	if err != nil {
		return nil, fmt.Errorf("failed to prepare probe request, %w", err)
	}

	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := p.Client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("probe of %s failed, %w", u.Host, err)
	}
	defer resp.Body.Close()

	b, err := io.ReadAll(io.LimitReader(resp.Body, maxProbeBody))
	if err != nil {
		return nil, fmt.Errorf("failed to read probe response, %w", err)
	}

	return &ProbeResult{Status: resp.StatusCode, Body: string(b)}, nil
}
