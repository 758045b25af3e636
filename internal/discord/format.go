package discord

import (
	"fmt"
	"strings"
)

var markdownEscaper = strings.NewReplacer(
	"\\", "\\\\",
	"`", "\\`",
	"*", "\\*",
	"_", "\\_",
	"~", "\\~",
	"|", "\\|",
	">", "\\>",
)

// EscapeMarkdown escapes characters that would otherwise format a player
// name as markdown.
func EscapeMarkdown(s string) string {
	return markdownEscaper.Replace(s)
}

func Mention(userID string) string {
	return "<@" + userID + ">"
}

func RoleMention(roleID string) string {
	return "<@&" + roleID + ">"
}

// RelativeTimestamp renders an epoch-millisecond time as the platform's
// relative timestamp markup ("3 hours ago").
func RelativeTimestamp(ms int64) string {
	return fmt.Sprintf("<t:%d:R>", ms/1000)
}
