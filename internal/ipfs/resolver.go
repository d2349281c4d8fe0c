// Package ipfs resolves content-addressed locators through an HTTP
// gateway and pins new content through the Pinata API.
package ipfs

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/CocDap/marketplace-polkavm-frontend/internal/models"
)

const locatorScheme = "ipfs://"

// Resolver fetches NftMetadata documents referenced by token URIs
type Resolver struct {
	gateway  string
	hc       *http.Client
	maxBytes int64
	logger   *zap.SugaredLogger
}

// NewResolver creates a Resolver against the given gateway base URL
func NewResolver(gateway string, logger *zap.SugaredLogger) *Resolver {
	return &Resolver{
		gateway:  strings.TrimRight(gateway, "/"),
		hc:       &http.Client{Timeout: 15 * time.Second},
		maxBytes: 1 << 20, // metadata documents are small
		logger:   logger,
	}
}

// Resolve rewrites an ipfs:// locator to a gateway URL. Plain http(s)
// URIs pass through unchanged.
func (r *Resolver) Resolve(uri string) string {
	if !strings.HasPrefix(uri, locatorScheme) {
		return uri
	}
	return r.gateway + "/" + strings.TrimPrefix(uri, locatorScheme)
}

// FetchMetadata resolves one locator and decodes the JSON document
// behind it
func (r *Resolver) FetchMetadata(ctx context.Context, uri string) (*models.NftMetadata, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, r.Resolve(uri), nil)
	if err != nil {
		return nil, fmt.Errorf("build metadata request: %w", err)
	}

	resp, err := r.hc.Do(req)
	if err != nil {
		return nil, fmt.Errorf("metadata http get: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode/100 != 2 {
		return nil, fmt.Errorf("metadata http status: %d", resp.StatusCode)
	}

	var meta models.NftMetadata
	if err := json.NewDecoder(io.LimitReader(resp.Body, r.maxBytes)).Decode(&meta); err != nil {
		return nil, fmt.Errorf("metadata decode: %w", err)
	}
	return &meta, nil
}

// FetchBatch fetches metadata for every locator concurrently and returns
// the results in input order. A missing locator or any per-item failure
// yields a nil slot; failures never abort the batch. The call returns
// only once every fetch has settled.
func (r *Resolver) FetchBatch(ctx context.Context, uris []string) []*models.NftMetadata {
	results := make([]*models.NftMetadata, len(uris))

	var wg sync.WaitGroup
	for i, uri := range uris {
		if uri == "" {
			continue
		}
		wg.Add(1)
		go func(i int, uri string) {
			defer wg.Done()
			meta, err := r.FetchMetadata(ctx, uri)
			if err != nil {
				// Unresolvable items are dropped from display, not surfaced
				r.logger.Debugw("metadata fetch failed", "uri", uri, "error", err)
				return
			}
			results[i] = meta
		}(i, uri)
	}
	wg.Wait()

	return results
}
