package presence

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"staffping/internal/providers"
	"staffping/internal/structures"

	json "github.com/goccy/go-json"
)

// Profile is a resolved identity: the stable id and the current display
// name it was resolved from.
type Profile struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// ResolverInterface resolves display names to stable identities.
type ResolverInterface interface {
	// Resolve maps names to profiles. Names without an account are simply
	// absent from the result; any transport or decode failure fails the
	// whole resolution.
	Resolve(ctx context.Context, names []string) ([]Profile, error)
	// Lookup resolves a single stable id to its current profile, used to
	// pick up display-name changes.
	Lookup(ctx context.Context, id string) (*Profile, error)
}

// batchSize is the identity service's hard per-call limit.
const batchSize = 10

type Resolver struct {
	http       *http.Client
	profileURL string
	lookupURL  string
	cache      providers.CacheProviderInterface
	metrics    providers.MetricsProviderInterface
	logger     providers.Logger
}

func NewResolver(conf *structures.Config, cache providers.CacheProviderInterface, metrics providers.MetricsProviderInterface, logger providers.Logger) ResolverInterface {
	return &Resolver{
		http:       &http.Client{Timeout: conf.Presence.Timeout},
		profileURL: conf.Presence.ProfileURL,
		lookupURL:  conf.Presence.LookupURL,
		cache:      cache,
		metrics:    metrics,
		logger:     logger,
	}
}

func (r *Resolver) Resolve(ctx context.Context, names []string) ([]Profile, error) {
	if len(names) == 0 {
		return nil, nil
	}

	profiles := make([]Profile, 0, len(names))
	var misses []string

	for _, name := range names {
		if data, ok := r.cache.Get("profile:" + name); ok {
			var p Profile
			if err := json.Unmarshal(data, &p); err == nil {
				r.metrics.IncResolverCacheHits()
				profiles = append(profiles, p)
				continue
			}
		}
		r.metrics.IncResolverCacheMisses()
		misses = append(misses, name)
	}

	for start := 0; start < len(misses); start += batchSize {
		end := min(start+batchSize, len(misses))
		batch, err := r.resolveBatch(ctx, misses[start:end])
		if err != nil {
			// A partial result would read as "those players are offline",
			// so the whole resolution fails instead.
			return nil, err
		}
		for _, p := range batch {
			if data, err := json.Marshal(p); err == nil {
				r.cache.Set("profile:"+p.Name, data)
			}
		}
		profiles = append(profiles, batch...)
	}

	return profiles, nil
}

func (r *Resolver) resolveBatch(ctx context.Context, names []string) ([]Profile, error) {
	body, err := json.Marshal(names)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, r.profileURL, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := r.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("resolve batch of %d names: %w", len(names), err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("resolve batch of %d names: unexpected status %d", len(names), resp.StatusCode)
	}

	var profiles []Profile
	if err := json.NewDecoder(resp.Body).Decode(&profiles); err != nil {
		return nil, fmt.Errorf("resolve batch of %d names: %w", len(names), err)
	}
	return profiles, nil
}

func (r *Resolver) Lookup(ctx context.Context, id string) (*Profile, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, r.lookupURL+id, nil)
	if err != nil {
		return nil, err
	}

	resp, err := r.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("lookup %s: %w", id, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("lookup %s: unexpected status %d", id, resp.StatusCode)
	}

	var p Profile
	if err := json.NewDecoder(resp.Body).Decode(&p); err != nil {
		return nil, fmt.Errorf("lookup %s: %w", id, err)
	}
	return &p, nil
}
