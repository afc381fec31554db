package directory

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
)

// Transport handles low-level HTTP and authentication against the
// directory API.
type Transport struct {
	BaseURL    string
	AuthToken  string
	HTTPClient *http.Client
}

func NewTransport(baseURL, token string) *Transport {
	return &Transport{
		BaseURL:    baseURL,
		AuthToken:  token,
		HTTPClient: &http.Client{},
	}
}

func (t *Transport) buildURL(path string, query map[string]string) string {
	u, _ := url.Parse(t.BaseURL + path)
	q := u.Query()
	for k, v := range query {
		q.Set(k, v)
	}
	u.RawQuery = q.Encode()
	return u.String()
}

// Get sends a GET request and returns the response body.
func (t *Transport) Get(ctx context.Context, path string, query map[string]string) ([]byte, error) {
	fullURL := t.buildURL(path, query)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fullURL, nil)
	if err != nil {
		return nil, err
	}
	if t.AuthToken != "" {
		req.Header.Set("Authorization", fmt.Sprintf("Bearer %s", t.AuthToken))
	}

	resp, err := t.HTTPClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		b, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("GET %s failed with status code %d: %s", path, resp.StatusCode, string(b))
	}

	return io.ReadAll(resp.Body)
}
