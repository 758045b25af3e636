package presence

import (
	"context"
	"fmt"
	"net/http"
	"staffping/internal/structures"

	json "github.com/goccy/go-json"
)

// Feed is one source of currently-online display names. A feed's sample may
// be partial: the map overlay hides vanished players, the status probe may
// cap or drop its player list.
type Feed interface {
	Names(ctx context.Context) ([]string, error)
}

// MapFeed reads the live map overlay's player list.
type MapFeed struct {
	http *http.Client
	url  string
}

func NewMapFeed(conf *structures.Config) *MapFeed {
	return &MapFeed{
		http: &http.Client{Timeout: conf.Presence.Timeout},
		url:  conf.Presence.MapFeedURL,
	}
}

func (f *MapFeed) Names(ctx context.Context) ([]string, error) {
	var payload struct {
		Players []struct {
			Account string `json:"account"`
			Name    string `json:"name"`
		} `json:"players"`
	}
	if err := getJSON(ctx, f.http, f.url, &payload); err != nil {
		return nil, fmt.Errorf("map feed: %w", err)
	}

	names := make([]string, 0, len(payload.Players))
	for _, p := range payload.Players {
		if p.Account != "" {
			names = append(names, p.Account)
		} else if p.Name != "" {
			names = append(names, p.Name)
		}
	}
	return names, nil
}

// StatusProbe reads the server status endpoint's player sample. An empty
// sample is valid data, not a failure.
type StatusProbe struct {
	http *http.Client
	url  string
}

func NewStatusProbe(conf *structures.Config) *StatusProbe {
	return &StatusProbe{
		http: &http.Client{Timeout: conf.Presence.Timeout},
		url:  conf.Presence.ProbeURL,
	}
}

func (f *StatusProbe) Names(ctx context.Context) ([]string, error) {
	var payload struct {
		Players struct {
			List []struct {
				Name      string `json:"name"`
				NameClean string `json:"name_clean"`
			} `json:"list"`
		} `json:"players"`
	}
	if err := getJSON(ctx, f.http, f.url, &payload); err != nil {
		return nil, fmt.Errorf("status probe: %w", err)
	}

	names := make([]string, 0, len(payload.Players.List))
	for _, p := range payload.Players.List {
		if p.NameClean != "" {
			names = append(names, p.NameClean)
		} else if p.Name != "" {
			names = append(names, p.Name)
		}
	}
	return names, nil
}

func getJSON(ctx context.Context, client *http.Client, url string, v any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return err
	}

	resp, err := client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("unexpected status %d", resp.StatusCode)
	}
	return json.NewDecoder(resp.Body).Decode(v)
}
