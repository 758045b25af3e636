package discord

import "context"

// Record is one addressable text record of a record list (a message in a
// storage channel). Content is capped at RecordLimit code points by the
// platform.
type Record struct {
	ID      string
	Content string
}

// RecordLimit is the maximum number of code points per record.
const RecordLimit = 2000

// FetchLimit is the maximum number of records returned per fetch.
const FetchLimit = 100

// ChannelAPI is the messaging-platform collaborator. Implementations return
// records oldest-first.
type ChannelAPI interface {
	FetchRecent(ctx context.Context, channelID string, limit int) ([]Record, error)
	Send(ctx context.Context, channelID, content string) (Record, error)
	Edit(ctx context.Context, channelID, recordID, content string) error
	Delete(ctx context.Context, channelID, recordID string) error
	CreatePrivateThread(ctx context.Context, channelID, name string) (string, error)
	Unarchive(ctx context.Context, threadID string) error
}

// StatusSource reports a guild member's current presence status ("online",
// "idle", "dnd", "offline"). An error means the member is not visible at
// all (left the guild, uncached).
type StatusSource interface {
	MemberStatus(guildID, userID string) (string, error)
}
