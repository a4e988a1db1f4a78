// Package rooms asks the space CRUD service whether a room key is real.
package rooms

import (
	"context"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/dkeye/Plaza/internal/domain"
)

// Directory is the room-existence boundary.
type Directory interface {
	Exists(ctx context.Context, key domain.RoomKey) (bool, error)
}

// HTTPDirectory checks room keys against the space service, caching
// positive answers so join latency stays off the CRUD path.
type HTTPDirectory struct {
	baseURL    string
	httpClient *http.Client
	cacheTTL   time.Duration

	mu    sync.RWMutex
	cache map[domain.RoomKey]time.Time
}

func NewHTTPDirectory(baseURL string, cacheTTL time.Duration) *HTTPDirectory {
	return &HTTPDirectory{
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: 10 * time.Second},
		cacheTTL:   cacheTTL,
		cache:      make(map[domain.RoomKey]time.Time),
	}
}

func (d *HTTPDirectory) Exists(ctx context.Context, key domain.RoomKey) (bool, error) {
	if d.cachedFresh(key) {
		return true, nil
	}

	url := fmt.Sprintf("%s/api/rooms/%s", d.baseURL, string(key))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return false, fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := d.httpClient.Do(req)
	if err != nil {
		return false, fmt.Errorf("failed to reach room service: %w", err)
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK:
		d.remember(key)
		return true, nil
	case http.StatusNotFound:
		return false, nil
	default:
		return false, fmt.Errorf("room service returned status: %d", resp.StatusCode)
	}
}

func (d *HTTPDirectory) cachedFresh(key domain.RoomKey) bool {
	d.mu.RLock()
	defer d.mu.RUnlock()
	seen, ok := d.cache[key]
	return ok && time.Since(seen) < d.cacheTTL
}

func (d *HTTPDirectory) remember(key domain.RoomKey) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.cache[key] = time.Now()
}
