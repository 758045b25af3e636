package store

import (
	"context"
	"fmt"
	"staffping/internal/discord"
	"staffping/internal/providers"
	"strings"
)

// Placeholder overwrites spare records after a render. Blanking is cheaper
// than deleting under the platform's rate limits and still removes stale
// content; spare records then get reused by the next render.
const Placeholder = "\u200b"

// PageRenderer reflows a list of display lines onto a channel's records.
// Lines are packed greedily into record-sized pages and never split across
// records; existing records are reused by edit before anything is appended.
type PageRenderer struct {
	api       discord.ChannelAPI
	channelID string
	logger    providers.Logger
}

func NewPageRenderer(api discord.ChannelAPI, channelID string, logger providers.Logger) *PageRenderer {
	return &PageRenderer{api: api, channelID: channelID, logger: logger}
}

// Render writes lines to the channel. A single line longer than the record
// limit is a caller error.
func (r *PageRenderer) Render(ctx context.Context, lines []string) error {
	pages, err := packLines(lines, discord.RecordLimit)
	if err != nil {
		return err
	}

	existing, err := r.api.FetchRecent(ctx, r.channelID, discord.FetchLimit)
	if err != nil {
		return fmt.Errorf("render: %w", err)
	}

	for i, page := range pages {
		if i < len(existing) {
			if existing[i].Content == page {
				continue
			}
			if err := r.api.Edit(ctx, r.channelID, existing[i].ID, page); err != nil {
				return fmt.Errorf("render: %w", err)
			}
			continue
		}
		if _, err := r.api.Send(ctx, r.channelID, page); err != nil {
			return fmt.Errorf("render: %w", err)
		}
	}

	for _, spare := range existing[min(len(pages), len(existing)):] {
		if spare.Content == Placeholder {
			continue
		}
		if err := r.api.Edit(ctx, r.channelID, spare.ID, Placeholder); err != nil {
			return fmt.Errorf("render: %w", err)
		}
	}

	return nil
}

// packLines joins lines with newlines into pages of at most limit code
// points each.
func packLines(lines []string, limit int) ([]string, error) {
	var pages []string
	var buf []string
	bufLen := 0

	for _, line := range lines {
		lineLen := len([]rune(line))
		if lineLen > limit {
			return nil, fmt.Errorf("line of %d chars exceeds record limit %d", lineLen, limit)
		}

		// +1 for the joining newline.
		next := bufLen + lineLen
		if len(buf) > 0 {
			next++
		}
		if next > limit {
			pages = append(pages, strings.Join(buf, "\n"))
			buf = buf[:0]
			bufLen = 0
			next = lineLen
		}
		buf = append(buf, line)
		bufLen = next
	}

	if len(buf) > 0 {
		pages = append(pages, strings.Join(buf, "\n"))
	}
	return pages, nil
}
