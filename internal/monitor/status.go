package monitor

import (
	"fmt"
	"staffping/internal/discord"
	"staffping/internal/models"
	"staffping/internal/presence"
	"time"
)

const (
	onlineMarker  = ":green_square:"
	offlineMarker = ":red_square:"
	unknownMarker = ":shrug:"
)

func rankTag(rank string) string {
	if r, ok := models.ParseRank(rank); ok {
		return "`[" + r.String() + "]`"
	}
	return "`[?]`"
}

// BuildStatusLines renders the status board: a rank summary followed by one
// line per staff member.
func BuildStatusLines(staff []models.StaffEntry, lastSeen models.LastSeenDoc, onlineSince models.OnlineSinceDoc, res *presence.Result) []string {
	lines := []string{"**Roles and their Last Seen Dates**"}

	if res.Degraded != "" {
		lines = append(lines, fmt.Sprintf(":warning: Running on a single presence source (%s unavailable)", res.Degraded))
	}

	highest, top := highestPresentRank(res.Staff)
	for _, rank := range models.Ranks() {
		if top != nil && highest.Satisfies(rank) {
			lines = append(lines, fmt.Sprintf("%s: %s (%s)", rank, onlineMarker, discord.EscapeMarkdown(top.Name)))
			continue
		}
		seen := unknownMarker
		if lastSeen.Has(rank.Key()) {
			seen = discord.RelativeTimestamp(lastSeen.Get(rank.Key()))
		}
		lines = append(lines, fmt.Sprintf("%s: %s (%s)", rank, offlineMarker, seen))
	}

	lines = append(lines, "", "**Staff/Conductors and their Last Seen Dates**")
	for _, member := range staff {
		lines = append(lines, staffLine(member, lastSeen, onlineSince, res.Online(member.UUID)))
	}

	return lines
}

func staffLine(member models.StaffEntry, lastSeen models.LastSeenDoc, onlineSince models.OnlineSinceDoc, online bool) string {
	name := discord.EscapeMarkdown(member.Name)
	if online {
		line := fmt.Sprintf("%s %s %s", onlineMarker, rankTag(member.Rank), name)
		if onlineSince.Has(member.UUID) {
			line += fmt.Sprintf(" (online since %s)", discord.RelativeTimestamp(onlineSince.Get(member.UUID)))
		}
		return line
	}

	seen := unknownMarker
	if lastSeen.Has(member.UUID) {
		seen = discord.RelativeTimestamp(lastSeen.Get(member.UUID))
	}
	return fmt.Sprintf("%s %s %s: %s", offlineMarker, rankTag(member.Rank), name, seen)
}

// BuildOutageLines replaces the status board content while cycles are
// failing.
func BuildOutageLines(since time.Time, lastErr string) []string {
	return []string{
		":warning: **The staff monitor is having issues and presence data is stale.**",
		fmt.Sprintf("Issues began %s.", discord.RelativeTimestamp(since.UnixMilli())),
		fmt.Sprintf("Last error: %s", discord.EscapeMarkdown(lastErr)),
		"The board will recover on its own once the upstream sources respond again.",
	}
}
