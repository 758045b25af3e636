package watchlist

import (
	"context"
	"fmt"
	"staffping/internal/discord"
	"staffping/internal/models"
	"staffping/internal/presence"
	"staffping/internal/providers"
	"staffping/internal/store"
	"staffping/internal/structures"
	"strings"
	"sync"
	"time"
)

// reannounceInterval is how long a status-blocked identity stays quiet
// before it may be mentioned again.
const reannounceInterval = 24 * time.Hour

// EditResult reports the outcome of a subscription edit.
type EditResult struct {
	// Watching maps stable ids to display names now being watched.
	Watching map[string]string
	// Failed lists names no account could be found for.
	Failed []string
}

type EngineInterface interface {
	Restore(ctx context.Context) error
	Persist(ctx context.Context) error
	ReportOnline(ctx context.Context, identities map[string]string, names []string) error
	SetSubscriptions(ctx context.Context, subscriberID, username, input string) (*EditResult, error)
	SetStatuses(ctx context.Context, subscriberID string, statuses []string) error
}

// Engine owns the per-subscriber watchlist document and delivers one-shot
// notifications to private threads when watched identities come online.
type Engine struct {
	guildID     string
	pingChannel string
	api         discord.ChannelAPI
	status      discord.StatusSource
	resolver    presence.ResolverInterface
	channel     *store.DataChannel
	logger      providers.Logger
	metrics     providers.MetricsProviderInterface

	// Event handlers and the polling cycle run on separate goroutines, so
	// unlike the documents owned by the monitor this one needs a lock.
	mu  sync.Mutex
	doc models.WatchlistDoc
	now func() time.Time
}

func NewEngine(conf *structures.Config, api discord.ChannelAPI, status discord.StatusSource, resolver presence.ResolverInterface, logger providers.Logger, metrics providers.MetricsProviderInterface, backup *store.Backup) EngineInterface {
	return &Engine{
		guildID:     conf.Discord.Guild,
		pingChannel: conf.Discord.Channels.Ping,
		api:         api,
		status:      status,
		resolver:    resolver,
		channel:     store.NewDataChannel(api, conf.Discord.Channels.Watchlist, "watchlist", logger, metrics, backup),
		logger:      logger,
		metrics:     metrics,
		doc:         models.NewWatchlistDoc(),
		now:         time.Now,
	}
}

func (e *Engine) Restore(ctx context.Context) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.doc = models.NewWatchlistDoc()
	return e.channel.Open(ctx, &e.doc)
}

func (e *Engine) Persist(ctx context.Context) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.channel.Persist(ctx, &e.doc)
}

type foundPlayer struct {
	uuid       string
	storedName string
	newName    string
}

func (p foundPlayer) display() string {
	if p.newName == "" {
		return "**" + discord.EscapeMarkdown(p.storedName) + "**"
	}
	return fmt.Sprintf("**%s** (%s)", discord.EscapeMarkdown(p.newName), discord.EscapeMarkdown(p.storedName))
}

// ReportOnline checks every subscriber's watch set against the online
// identities. Found identities are consumed (one-shot) and announced in the
// subscriber's private thread; when the subscriber's status filter blocks
// delivery, the identities stay subscribed and the batch is only announced
// if at least one of them has been quiet for 24 hours.
func (e *Engine) ReportOnline(ctx context.Context, identities map[string]string, names []string) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	onlineNames := make(map[string]struct{}, len(names))
	for _, n := range names {
		onlineNames[n] = struct{}{}
	}

	changed := false
	for subscriberID, sub := range e.doc {
		status, err := e.status.MemberStatus(e.guildID, subscriberID)
		if err != nil {
			continue
		}
		permitted := sub.WantsStatus(status)

		found := e.collectFound(ctx, sub, identities, onlineNames)
		if len(found) == 0 {
			continue
		}

		if !permitted {
			if e.announceBlocked(ctx, sub, found, status) {
				changed = true
			}
			continue
		}

		for _, p := range found {
			delete(sub.Subscribe, p.uuid)
		}

		displays := make([]string, 0, len(found))
		for _, p := range found {
			displays = append(displays, p.display())
		}
		msg := fmt.Sprintf("%s %s %s online! They will now be removed from your notification list.",
			discord.Mention(subscriberID), HumanList(displays), isAre(len(displays)))
		if err := e.sendToThread(ctx, sub.Thread, msg); err != nil {
			e.logger.Errorf(providers.TypeMonitor, "Watchlist delivery to %s failed: %s", subscriberID, err)
			continue
		}
		e.metrics.IncNotifications("watchlist")
		changed = true
	}

	if !changed {
		return nil
	}
	return e.channel.Persist(ctx, &e.doc)
}

// collectFound returns the subscriber's watched identities that are online
// this cycle, resolving renamed players for display purposes only.
func (e *Engine) collectFound(ctx context.Context, sub *models.Subscriber, identities map[string]string, onlineNames map[string]struct{}) []foundPlayer {
	var found []foundPlayer
	for uuid, target := range sub.Subscribe {
		if _, online := identities[strings.ToLower(uuid)]; !online {
			continue
		}

		p := foundPlayer{uuid: uuid, storedName: target.Name}
		if _, ok := onlineNames[target.Name]; !ok {
			// The stored display name is no longer among the online names,
			// so the player renamed. The stable id key is unaffected.
			if profile, err := e.resolver.Lookup(ctx, uuid); err == nil {
				p.newName = profile.Name
				target.Name = profile.Name
			}
		}
		found = append(found, p)
	}
	return found
}

func (e *Engine) announceBlocked(ctx context.Context, sub *models.Subscriber, found []foundPlayer, status string) bool {
	// One due identity is enough to announce the whole batch; the rest
	// ride along rather than waiting out their own cooldowns.
	nowMs := e.now().UnixMilli()
	due := false
	for _, p := range found {
		last := sub.Subscribe[p.uuid].LastAnnounced
		if last == 0 || nowMs-last > reannounceInterval.Milliseconds() {
			due = true
			break
		}
	}
	if !due {
		return false
	}

	displays := make([]string, 0, len(found))
	for _, p := range found {
		displays = append(displays, p.display())
	}
	statuses := make([]string, 0, len(sub.Statuses))
	for _, s := range sub.Statuses {
		statuses = append(statuses, "**"+s+"**")
	}

	msg := fmt.Sprintf("%s %s online but your status is **%s** and you requested only to be pinged when you have these statuses: %s",
		HumanList(displays), isAre(len(displays)), status, HumanList(statuses))
	if err := e.sendToThread(ctx, sub.Thread, msg); err != nil {
		e.logger.Errorf(providers.TypeMonitor, "Blocked watchlist delivery failed: %s", err)
		return false
	}

	for _, p := range found {
		sub.Subscribe[p.uuid].LastAnnounced = nowMs
	}
	e.metrics.IncNotifications("watchlist")
	return true
}

// SetSubscriptions replaces a subscriber's watch set from the line-oriented
// editor format: either "Name | uuid" for an existing entry or a bare name
// to be resolved. The private thread is created lazily on the first
// non-empty watch set and never recreated.
func (e *Engine) SetSubscriptions(ctx context.Context, subscriberID, username, input string) (*EditResult, error) {
	entries := make(map[string]*models.WatchTarget)
	var bareNames []string

	for _, line := range strings.Split(input, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		parts := strings.Split(line, "|")
		for i := range parts {
			parts[i] = strings.TrimSpace(parts[i])
		}
		if len(parts) == 2 {
			entries[parts[1]] = &models.WatchTarget{Name: parts[0]}
		} else {
			bareNames = append(bareNames, parts[0])
		}
	}

	result := &EditResult{Watching: make(map[string]string)}

	if len(bareNames) > 0 {
		profiles, err := e.resolver.Resolve(ctx, bareNames)
		if err != nil {
			return nil, fmt.Errorf("resolve subscriptions: %w", err)
		}
		resolved := make(map[string]presence.Profile, len(profiles))
		for _, p := range profiles {
			resolved[strings.ToLower(p.Name)] = p
		}
		for _, name := range bareNames {
			p, ok := resolved[strings.ToLower(name)]
			if !ok {
				result.Failed = append(result.Failed, name)
				continue
			}
			entries[strings.ToLower(p.ID)] = &models.WatchTarget{Name: p.Name}
		}
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	sub, ok := e.doc[subscriberID]
	if !ok {
		sub = &models.Subscriber{OwnUsername: username}
		e.doc[subscriberID] = sub
	}
	sub.Subscribe = entries

	if sub.Thread == "" && len(entries) > 0 {
		threadID, err := e.api.CreatePrivateThread(ctx, e.pingChannel, username)
		if err != nil {
			return nil, fmt.Errorf("create notification thread: %w", err)
		}
		sub.Thread = threadID
		welcome := discord.Mention(subscriberID) + " Welcome to your private notification thread."
		if _, err := e.api.Send(ctx, threadID, welcome); err != nil {
			e.logger.Warnf(providers.TypeMonitor, "Thread welcome failed: %s", err)
		}
	}

	for uuid, target := range entries {
		result.Watching[uuid] = target.Name
	}

	if err := e.channel.Persist(ctx, &e.doc); err != nil {
		return nil, err
	}
	return result, nil
}

// SetStatuses restricts a subscriber's deliveries to the given presence
// statuses. An empty list clears the filter.
func (e *Engine) SetStatuses(ctx context.Context, subscriberID string, statuses []string) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	sub, ok := e.doc[subscriberID]
	if !ok {
		sub = &models.Subscriber{}
		e.doc[subscriberID] = sub
	}
	sub.Statuses = statuses

	if sub.Thread != "" && len(statuses) > 0 {
		display := make([]string, 0, len(statuses))
		for _, s := range statuses {
			display = append(display, "**"+s+"**")
		}
		msg := "Now only pinging you if a person joins and you have one of these statuses: " + HumanList(display)
		if err := e.sendToThread(ctx, sub.Thread, msg); err != nil {
			e.logger.Warnf(providers.TypeMonitor, "Status filter notice failed: %s", err)
		}
	}

	return e.channel.Persist(ctx, &e.doc)
}

// sendToThread unarchives the thread first; delivery after a quiet day
// would otherwise bounce off an auto-archived thread.
func (e *Engine) sendToThread(ctx context.Context, threadID, msg string) error {
	if threadID == "" {
		return fmt.Errorf("subscriber has no notification thread")
	}
	if err := e.api.Unarchive(ctx, threadID); err != nil {
		e.logger.Debugf(providers.TypeMonitor, "Unarchive of %s: %s", threadID, err)
	}
	_, err := e.api.Send(ctx, threadID, msg)
	return err
}
