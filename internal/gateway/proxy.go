package gateway

import (
	"context"
	"net/http"
	"strings"
)

// Only the envelope and the caller credential cross the edge. The intake
// service forwards Authorization to the store, so it must arrive untouched.
var requestHeaders = []string{"Content-Type", "Authorization"}

// responseHeaders are copied back from the intake service to the caller.
var responseHeaders = []string{"Content-Type", "X-Content-Type-Options"}

// Upstream is the intake service as seen from the gateway.
type Upstream struct {
	baseURL string
	client  *http.Client
}

func NewUpstream(baseURL string, client *http.Client) *Upstream {
	return &Upstream{
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  client,
	}
}

// Forward replays r against path on the intake service, keeping the method,
// body and query string.
func (u *Upstream) Forward(ctx context.Context, r *http.Request, path string) (*http.Response, error) {
	target := u.baseURL + path
	if r.URL.RawQuery != "" {
		target += "?" + r.URL.RawQuery
	}

	req, err := http.NewRequestWithContext(ctx, r.Method, target, r.Body)
	if err != nil {
		return nil, err
	}
	req.ContentLength = r.ContentLength

	for _, name := range requestHeaders {
		if values, ok := r.Header[name]; ok {
			req.Header[name] = values
		}
	}

	return u.client.Do(req)
}

func copyResponseHeaders(dst, src http.Header) {
	for _, name := range responseHeaders {
		if v := src.Get(name); v != "" {
			dst.Set(name, v)
		}
	}
}
