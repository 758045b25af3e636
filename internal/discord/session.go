package discord

import (
	"context"
	"fmt"
	"staffping/internal/providers"
	"staffping/internal/structures"

	"github.com/bwmarrin/discordgo"
)

// Session adapts a discordgo gateway session to the ChannelAPI and
// StatusSource collaborator interfaces.
type Session struct {
	s      *discordgo.Session
	logger providers.Logger
}

func NewSession(conf *structures.Config, logger providers.Logger) (*Session, error) {
	s, err := discordgo.New("Bot " + conf.Discord.Token)
	if err != nil {
		return nil, fmt.Errorf("discord session: %w", err)
	}
	s.Identify.Intents = discordgo.IntentsGuilds |
		discordgo.IntentsGuildMessages |
		discordgo.IntentsGuildMembers |
		discordgo.IntentsGuildPresences

	if err := s.Open(); err != nil {
		return nil, fmt.Errorf("discord gateway: %w", err)
	}
	logger.Infof(providers.TypeApp, "Discord session opened as %s", s.State.User.Username)

	return &Session{s: s, logger: logger}, nil
}

func (d *Session) Close() {
	if err := d.s.Close(); err != nil {
		d.logger.Errorf(providers.TypeApp, "Error closing discord session: %s", err)
	}
}

// FetchRecent returns up to limit most recent records, oldest-first. The API
// hands them back newest-first, so the slice is reversed before returning.
func (d *Session) FetchRecent(ctx context.Context, channelID string, limit int) ([]Record, error) {
	msgs, err := d.s.ChannelMessages(channelID, limit, "", "", "", discordgo.WithContext(ctx))
	if err != nil {
		return nil, fmt.Errorf("fetch messages from %s: %w", channelID, err)
	}

	records := make([]Record, 0, len(msgs))
	for i := len(msgs) - 1; i >= 0; i-- {
		records = append(records, Record{ID: msgs[i].ID, Content: msgs[i].Content})
	}
	return records, nil
}

func (d *Session) Send(ctx context.Context, channelID, content string) (Record, error) {
	m, err := d.s.ChannelMessageSend(channelID, content, discordgo.WithContext(ctx))
	if err != nil {
		return Record{}, fmt.Errorf("send to %s: %w", channelID, err)
	}
	return Record{ID: m.ID, Content: m.Content}, nil
}

func (d *Session) Edit(ctx context.Context, channelID, recordID, content string) error {
	_, err := d.s.ChannelMessageEdit(channelID, recordID, content, discordgo.WithContext(ctx))
	if err != nil {
		return fmt.Errorf("edit %s in %s: %w", recordID, channelID, err)
	}
	return nil
}

func (d *Session) Delete(ctx context.Context, channelID, recordID string) error {
	if err := d.s.ChannelMessageDelete(channelID, recordID, discordgo.WithContext(ctx)); err != nil {
		return fmt.Errorf("delete %s in %s: %w", recordID, channelID, err)
	}
	return nil
}

func (d *Session) CreatePrivateThread(ctx context.Context, channelID, name string) (string, error) {
	th, err := d.s.ThreadStartComplex(channelID, &discordgo.ThreadStart{
		Name:                name,
		Type:                discordgo.ChannelTypeGuildPrivateThread,
		AutoArchiveDuration: 10080,
	}, discordgo.WithContext(ctx))
	if err != nil {
		return "", fmt.Errorf("create thread in %s: %w", channelID, err)
	}
	return th.ID, nil
}

func (d *Session) Unarchive(ctx context.Context, threadID string) error {
	archived := false
	_, err := d.s.ChannelEditComplex(threadID, &discordgo.ChannelEdit{Archived: &archived}, discordgo.WithContext(ctx))
	if err != nil {
		return fmt.Errorf("unarchive thread %s: %w", threadID, err)
	}
	return nil
}

func (d *Session) MemberStatus(guildID, userID string) (string, error) {
	if _, err := d.s.State.Member(guildID, userID); err != nil {
		return "", fmt.Errorf("member %s not visible: %w", userID, err)
	}
	p, err := d.s.State.Presence(guildID, userID)
	if err != nil {
		return "offline", nil
	}
	return string(p.Status), nil
}
