package roster

import (
	"context"
	"fmt"
	"net/http"
	"staffping/internal/discord"
	"staffping/internal/models"
	"staffping/internal/providers"
	"staffping/internal/structures"
	"time"

	json "github.com/goccy/go-json"
)

const alertInterval = 24 * time.Hour

// DiscrepancyChecker compares the sheet's per-rank member counts against a
// secondary member list and raises a throttled operator alert on mismatch.
// It is decoupled from the notification path: a failed check is logged and
// never fails a cycle.
type DiscrepancyChecker struct {
	http       *http.Client
	url        string
	api        discord.ChannelAPI
	opsChannel string
	logger     providers.Logger
	metrics    providers.MetricsProviderInterface
}

func NewDiscrepancyChecker(conf *structures.Config, api discord.ChannelAPI, logger providers.Logger, metrics providers.MetricsProviderInterface) *DiscrepancyChecker {
	return &DiscrepancyChecker{
		http:       &http.Client{Timeout: conf.Presence.Timeout},
		url:        conf.Roster.MemberListURL,
		api:        api,
		opsChannel: conf.Discord.Channels.Ops,
		logger:     logger,
		metrics:    metrics,
	}
}

// Check returns true when it mutated the ops document (alert timestamp).
func (c *DiscrepancyChecker) Check(ctx context.Context, staff []models.StaffEntry, ops models.OpsDoc, now time.Time) (bool, error) {
	if c.url == "" {
		return false, nil
	}

	secondary, err := c.fetchSecondary(ctx)
	if err != nil {
		return false, err
	}

	sheetCounts := countByRank(staff)
	listCounts := countByRank(secondary)

	var mismatches []string
	for _, rank := range models.Ranks() {
		if sheetCounts[rank] != listCounts[rank] {
			mismatches = append(mismatches, fmt.Sprintf("%s: sheet has %d, member list has %d",
				rank, sheetCounts[rank], listCounts[rank]))
		}
	}
	if len(mismatches) == 0 {
		return false, nil
	}

	if now.Sub(time.UnixMilli(ops.Get(models.OpsLastDiscrepancyAlert))) < alertInterval {
		c.logger.Debugf(providers.TypeMonitor, "Roster discrepancy still present, alert throttled")
		return false, nil
	}

	msg := "**Roster discrepancy detected**"
	for _, m := range mismatches {
		msg += "\n" + m
	}
	if _, err := c.api.Send(ctx, c.opsChannel, msg); err != nil {
		return false, fmt.Errorf("discrepancy alert: %w", err)
	}
	c.metrics.IncNotifications("operator")
	ops.Set(models.OpsLastDiscrepancyAlert, now.UnixMilli())
	return true, nil
}

func (c *DiscrepancyChecker) fetchSecondary(ctx context.Context) ([]models.StaffEntry, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.url, nil)
	if err != nil {
		return nil, err
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch member list: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetch member list: unexpected status %d", resp.StatusCode)
	}

	var entries []models.StaffEntry
	if err := json.NewDecoder(resp.Body).Decode(&entries); err != nil {
		return nil, fmt.Errorf("fetch member list: %w", err)
	}
	return entries, nil
}

func countByRank(entries []models.StaffEntry) map[models.Rank]int {
	counts := make(map[models.Rank]int)
	for _, e := range entries {
		if rank, ok := e.ParsedRank(); ok {
			counts[rank]++
		}
	}
	return counts
}
