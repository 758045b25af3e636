package monitor

import (
	"context"
	"fmt"
	"staffping/internal/discord"
	"staffping/internal/models"
	"staffping/internal/presence"
	"staffping/internal/providers"
	"staffping/internal/roster"
	"staffping/internal/store"
	"staffping/internal/structures"
	"staffping/internal/watchlist"
	"sync"
	"time"

	"go.uber.org/atomic"
)

// sizeWarnThreshold is the serialized lastSeen size at which the transport's
// aggregate limits become a risk and pruning kicks in.
const sizeWarnThreshold = 1900

// sizePruneTarget is what pruning shrinks the document back under.
const sizePruneTarget = 1700

// Snapshot is the monitor's current picture, served by the read API.
type Snapshot struct {
	OnlineStaff   []models.StaffEntry `json:"online_staff"`
	RankLastSeen  map[string]int64    `json:"rank_last_seen"`
	StaffLastSeen map[string]int64    `json:"staff_last_seen"`
	Degraded      string              `json:"degraded,omitempty"`
	LastCycleOK   int64               `json:"last_cycle_ok"`
	Outage        bool                `json:"outage"`
	OutageSince   int64               `json:"outage_since,omitempty"`
}

type MonitorInterface interface {
	Restore(ctx context.Context) error
	RunCycle(ctx context.Context) error
	Persist(ctx context.Context) error
	Snapshot() Snapshot
}

// ServerMonitor owns the presence documents and runs the polling cycle:
// roster fetch, presence reconciliation, deadzone evaluation, status board
// render and watchlist delivery. All document mutation happens inside the
// cycle, which the scheduler never overlaps.
type ServerMonitor struct {
	conf        *structures.Config
	logger      providers.Logger
	metrics     providers.MetricsProviderInterface
	api         discord.ChannelAPI
	roster      roster.ClientInterface
	reconciler  presence.ReconcilerInterface
	watchlist   watchlist.EngineInterface
	discrepancy *roster.DiscrepancyChecker
	deadzone    *DeadzoneNotifier
	renderer    *store.PageRenderer

	lastSeenCh    *store.DataChannel
	onlineSinceCh *store.DataChannel
	opsCh         *store.DataChannel

	lastSeen    models.LastSeenDoc
	onlineSince models.OnlineSinceDoc
	ops         models.OpsDoc

	outage      atomic.Bool
	outageSince atomic.Int64
	lastErr     atomic.String

	snapMu   sync.RWMutex
	snapshot Snapshot

	now func() time.Time
}

func NewServerMonitor(conf *structures.Config, api discord.ChannelAPI, rosterClient roster.ClientInterface, reconciler presence.ReconcilerInterface, engine watchlist.EngineInterface, logger providers.Logger, metrics providers.MetricsProviderInterface, backup *store.Backup) MonitorInterface {
	return &ServerMonitor{
		conf:          conf,
		logger:        logger,
		metrics:       metrics,
		api:           api,
		roster:        rosterClient,
		reconciler:    reconciler,
		watchlist:     engine,
		discrepancy:   roster.NewDiscrepancyChecker(conf, api, logger, metrics),
		deadzone:      NewDeadzoneNotifier(DeadzonesFromConfig(conf)),
		renderer:      store.NewPageRenderer(api, conf.Discord.Channels.Status, logger),
		lastSeenCh:    store.NewDataChannel(api, conf.Discord.Channels.LastSeen, "lastSeen", logger, metrics, backup),
		onlineSinceCh: store.NewDataChannel(api, conf.Discord.Channels.OnlineSince, "onlineSince", logger, metrics, backup),
		opsCh:         store.NewDataChannel(api, conf.Discord.Channels.Other, "other", logger, metrics, backup),
		lastSeen:      models.NewLastSeenDoc(),
		onlineSince:   models.NewOnlineSinceDoc(),
		ops:           models.NewOpsDoc(),
		now:           time.Now,
	}
}

// Restore opens every document. A parse failure here is fatal for startup:
// proceeding with an empty default would overwrite the surviving state on
// the next persist.
func (m *ServerMonitor) Restore(ctx context.Context) error {
	if err := m.lastSeenCh.Open(ctx, &m.lastSeen); err != nil {
		return err
	}
	if err := m.onlineSinceCh.Open(ctx, &m.onlineSince); err != nil {
		return err
	}
	if err := m.opsCh.Open(ctx, &m.ops); err != nil {
		return err
	}
	return m.watchlist.Restore(ctx)
}

func (m *ServerMonitor) Persist(ctx context.Context) error {
	if err := m.lastSeenCh.Persist(ctx, &m.lastSeen); err != nil {
		return err
	}
	if err := m.onlineSinceCh.Persist(ctx, &m.onlineSince); err != nil {
		return err
	}
	if err := m.opsCh.Persist(ctx, &m.ops); err != nil {
		return err
	}
	return m.watchlist.Persist(ctx)
}

func (m *ServerMonitor) Snapshot() Snapshot {
	m.snapMu.RLock()
	defer m.snapMu.RUnlock()
	return m.snapshot
}

// RunCycle executes one polling cycle. A failure flips the board into its
// outage banner and leaves every timer untouched, so no presence event is
// lost once the upstream sources recover.
func (m *ServerMonitor) RunCycle(ctx context.Context) error {
	start := m.now()

	err := m.cycle(ctx, start)
	m.metrics.ObserveCycleDuration(m.now().Sub(start))

	if err != nil {
		m.lastErr.Store(err.Error())
		if m.outage.CompareAndSwap(false, true) {
			m.outageSince.Store(start.UnixMilli())
		}
		m.metrics.IncCycles("failed")
		m.logger.Errorf(providers.TypeMonitor, "Cycle failed: %s", err)
		m.publishOutageSnapshot()
		m.renderOutage(ctx)
		return err
	}

	if m.outage.CompareAndSwap(true, false) {
		down := m.now().Sub(time.UnixMilli(m.outageSince.Load()))
		m.logger.Infof(providers.TypeMonitor, "Recovered after %s of failing cycles", down)
		msg := fmt.Sprintf("Staff monitor recovered after %s of upstream issues.", formatDurationVerbose(down))
		if _, err := m.api.Send(ctx, m.conf.Discord.Channels.Ops, msg); err != nil {
			m.logger.Warnf(providers.TypeMonitor, "Recovery notice failed: %s", err)
		}
	}
	return nil
}

func (m *ServerMonitor) cycle(ctx context.Context, start time.Time) error {
	staff, err := m.roster.Fetch(ctx)
	if err != nil {
		return err
	}

	res, err := m.reconciler.ComputeOnline(ctx, staff)
	if err != nil {
		return err
	}

	nowMs := start.UnixMilli()
	m.trackSessions(staff, res, nowMs)

	if marks, top := m.deadzone.Evaluate(m.lastSeen, res.Staff, start); len(marks) > 0 {
		if err := m.sendDeadzoneNotification(ctx, marks, top); err != nil {
			return err
		}
	}

	m.guardDocumentSize(ctx, staff, start)

	if err := m.lastSeenCh.Persist(ctx, &m.lastSeen); err != nil {
		return err
	}
	if err := m.onlineSinceCh.Persist(ctx, &m.onlineSince); err != nil {
		return err
	}

	if err := m.renderer.Render(ctx, BuildStatusLines(staff, m.lastSeen, m.onlineSince, res)); err != nil {
		return err
	}

	if err := m.watchlist.ReportOnline(ctx, res.Identities, res.Names); err != nil {
		m.logger.Errorf(providers.TypeMonitor, "Watchlist delivery failed: %s", err)
	}

	if _, err := m.discrepancy.Check(ctx, staff, m.ops, start); err != nil {
		m.logger.Warnf(providers.TypeMonitor, "Roster discrepancy check failed: %s", err)
	}

	m.ops.Set(models.OpsLastCycleOK, nowMs)
	if err := m.opsCh.Persist(ctx, &m.ops); err != nil {
		return err
	}

	m.publishSnapshot(staff, res, nowMs)

	if res.Degraded != "" {
		m.metrics.IncCycles("degraded")
	} else {
		m.metrics.IncCycles("ok")
	}
	return nil
}

// trackSessions refreshes individual last-seen timestamps and maintains the
// online-session document: a key exists iff the identity is online, and is
// dropped the cycle after it is observed offline.
func (m *ServerMonitor) trackSessions(staff []models.StaffEntry, res *presence.Result, nowMs int64) {
	onlineByRank := make(map[models.Rank]int)

	for _, member := range staff {
		if res.Online(member.UUID) {
			m.lastSeen.Set(member.UUID, nowMs)
			if !m.onlineSince.Has(member.UUID) {
				m.onlineSince.Set(member.UUID, nowMs)
			}
			if rank, ok := member.ParsedRank(); ok {
				onlineByRank[rank]++
			}
		} else {
			m.onlineSince.Delete(member.UUID)
		}
	}

	for _, rank := range models.Ranks() {
		m.metrics.SetOnlineStaff(rank.String(), onlineByRank[rank])
	}
}

func (m *ServerMonitor) sendDeadzoneNotification(ctx context.Context, marks []RankMark, top *models.StaffEntry) error {
	roles := map[models.Rank]string{
		models.RankConductor: m.conf.Discord.Roles.Conductor,
		models.RankMod:       m.conf.Discord.Roles.Mod,
		models.RankAdmin:     m.conf.Discord.Roles.Admin,
	}

	mentions := ""
	for _, mark := range marks {
		if mentions != "" {
			mentions += " "
		}
		mentions += discord.RoleMention(roles[mark.Rank])
	}

	msg := fmt.Sprintf("%s **%s** has joined! Deadzones ended:", mentions, discord.EscapeMarkdown(top.Name))
	for _, mark := range marks {
		msg += fmt.Sprintf("\n**%s:** %s", mark.Rank, formatDurationVerbose(mark.Elapsed))
	}

	if _, err := m.api.Send(ctx, m.conf.Discord.Channels.Ping, msg); err != nil {
		return fmt.Errorf("deadzone notification: %w", err)
	}
	m.metrics.IncNotifications("deadzone")
	return nil
}

// guardDocumentSize warns and prunes when the serialized lastSeen document
// creeps toward the record list's practical capacity. Reserved rank keys and
// current roster members are pruned last.
func (m *ServerMonitor) guardDocumentSize(ctx context.Context, staff []models.StaffEntry, now time.Time) {
	size, err := store.SerializedSize(&m.lastSeen)
	if err != nil || size <= sizeWarnThreshold {
		return
	}

	if now.Sub(time.UnixMilli(m.ops.Get(models.OpsLastSizeWarning))) > 24*time.Hour {
		msg := fmt.Sprintf("lastSeen document is at %d characters, pruning stale entries", size)
		if _, err := m.api.Send(ctx, m.conf.Discord.Channels.Ops, msg); err != nil {
			m.logger.Warnf(providers.TypeMonitor, "Size warning failed: %s", err)
		}
		m.ops.Set(models.OpsLastSizeWarning, now.UnixMilli())
	}

	m.pruneLastSeen(staff)
}

func (m *ServerMonitor) pruneLastSeen(staff []models.StaffEntry) {
	reserved := make(map[string]struct{})
	for _, rank := range models.Ranks() {
		reserved[rank.Key()] = struct{}{}
	}
	onRoster := make(map[string]struct{}, len(staff))
	for _, member := range staff {
		onRoster[member.UUID] = struct{}{}
	}

	prunable := func(departedOnly bool) []string {
		var keys []string
		for key := range m.lastSeen {
			if _, ok := reserved[key]; ok {
				continue
			}
			if _, ok := onRoster[key]; departedOnly && ok {
				continue
			}
			keys = append(keys, key)
		}
		return keys
	}

	pruned := 0
	for _, departedOnly := range []bool{true, false} {
		for _, key := range oldestFirst(m.lastSeen, prunable(departedOnly)) {
			if size, err := store.SerializedSize(&m.lastSeen); err != nil || size <= sizePruneTarget {
				break
			}
			m.lastSeen.Delete(key)
			pruned++
		}
	}

	if pruned > 0 {
		m.logger.Warnf(providers.TypeMonitor, "Pruned %d stale lastSeen entries", pruned)
	}
}

func oldestFirst(doc models.LastSeenDoc, keys []string) []string {
	sorted := append([]string(nil), keys...)
	for i := 1; i < len(sorted); i++ {
		for j := i; j > 0 && doc.Get(sorted[j]) < doc.Get(sorted[j-1]); j-- {
			sorted[j], sorted[j-1] = sorted[j-1], sorted[j]
		}
	}
	return sorted
}

func (m *ServerMonitor) publishSnapshot(staff []models.StaffEntry, res *presence.Result, nowMs int64) {
	snap := Snapshot{
		OnlineStaff:   append([]models.StaffEntry(nil), res.Staff...),
		RankLastSeen:  make(map[string]int64),
		StaffLastSeen: make(map[string]int64),
		Degraded:      res.Degraded,
		LastCycleOK:   nowMs,
	}
	for _, rank := range models.Ranks() {
		snap.RankLastSeen[rank.Key()] = m.lastSeen.Get(rank.Key())
	}
	for _, member := range staff {
		if m.lastSeen.Has(member.UUID) {
			snap.StaffLastSeen[member.UUID] = m.lastSeen.Get(member.UUID)
		}
	}

	m.snapMu.Lock()
	m.snapshot = snap
	m.snapMu.Unlock()
}

func (m *ServerMonitor) publishOutageSnapshot() {
	m.snapMu.Lock()
	m.snapshot.Outage = true
	m.snapshot.OutageSince = m.outageSince.Load()
	m.snapMu.Unlock()
}

func (m *ServerMonitor) renderOutage(ctx context.Context) {
	lines := BuildOutageLines(time.UnixMilli(m.outageSince.Load()), m.lastErr.Load())
	if err := m.renderer.Render(ctx, lines); err != nil {
		m.logger.Errorf(providers.TypeMonitor, "Outage banner render failed: %s", err)
	}
}
