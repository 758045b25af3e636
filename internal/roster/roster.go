package roster

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"staffping/internal/models"
	"staffping/internal/structures"

	json "github.com/goccy/go-json"
)

// ClientInterface fetches the staff roster.
type ClientInterface interface {
	Fetch(ctx context.Context) ([]models.StaffEntry, error)
}

// Client reads the staff sheet through its export endpoint. The sheet is
// eventually consistent and read-only to this process.
type Client struct {
	http *http.Client
	url  string
}

func NewClient(conf *structures.Config) ClientInterface {
	u := fmt.Sprintf("%s?spreadsheetId=%s&sheetName=%s",
		conf.Roster.URL,
		url.QueryEscape(conf.Roster.SpreadsheetID),
		url.QueryEscape(conf.Roster.SheetName),
	)
	return &Client{
		http: &http.Client{Timeout: conf.Presence.Timeout},
		url:  u,
	}
}

func (c *Client) Fetch(ctx context.Context) ([]models.StaffEntry, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.url, nil)
	if err != nil {
		return nil, err
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch roster: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetch roster: unexpected status %d", resp.StatusCode)
	}

	var entries []models.StaffEntry
	if err := json.NewDecoder(resp.Body).Decode(&entries); err != nil {
		return nil, fmt.Errorf("fetch roster: %w", err)
	}
	if len(entries) == 0 {
		return nil, fmt.Errorf("fetch roster: empty staff list")
	}
	return entries, nil
}
