package snapshot

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// DefaultMaxPayload bounds the size of a single collection response.
const DefaultMaxPayload = 64 << 20

// ErrPayloadTooLarge is returned when a response exceeds MaxPayload.
var ErrPayloadTooLarge = errors.New("payload too large")

// HTTPSource fetches collections from a REST backend at
// GET <BaseURL>/<collection>.
type HTTPSource struct {
	BaseURL    string
	Token      string
	Client     *http.Client
	MaxPayload int64 // bytes; DefaultMaxPayload when not positive
}

// NewHTTPSource creates an HTTPSource with a per-request timeout.
func NewHTTPSource(baseURL, token string, timeout time.Duration) *HTTPSource {
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	return &HTTPSource{
		BaseURL:    strings.TrimRight(baseURL, "/"),
		Token:      token,
		Client:     &http.Client{Timeout: timeout},
		MaxPayload: DefaultMaxPayload,
	}
}

// Name returns the source name.
func (s *HTTPSource) Name() string { return "http:" + s.BaseURL }

// Fetch requests a collection. Non-2xx responses are errors.
func (s *HTTPSource) Fetch(ctx context.Context, c Collection) ([]byte, error) {
	if !c.Valid() {
		return nil, fmt.Errorf("%w: %q", ErrUnknownCollection, c)
	}

	url := s.BaseURL + "/" + string(c)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("building request for %s: %w", c, err)
	}
	req.Header.Set("Accept", "application/json")
	if s.Token != "" {
		req.Header.Set("Authorization", "Bearer "+s.Token)
	}

	resp, err := s.Client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetching %s: %w", c, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("fetching %s: unexpected status %s", c, resp.Status)
	}

	limit := s.MaxPayload
	if limit <= 0 {
		limit = DefaultMaxPayload
	}
	data, err := io.ReadAll(io.LimitReader(resp.Body, limit+1))
	if err != nil {
		return nil, fmt.Errorf("reading %s response: %w", c, err)
	}
	if int64(len(data)) > limit {
		return nil, fmt.Errorf("fetching %s: %w (limit %d bytes)", c, ErrPayloadTooLarge, limit)
	}
	return data, nil
}
