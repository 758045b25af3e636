package watchlist

import (
	"context"
	"errors"
	"staffping/internal/models"
	"staffping/internal/presence"
	"staffping/internal/structures"
	"staffping/internal/testutil"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// local mock resolver to avoid import cycle with testutil
type stubResolver struct {
	byName map[string]presence.Profile
	byID   map[string]presence.Profile
	err    error
}

func (s *stubResolver) Resolve(_ context.Context, names []string) ([]presence.Profile, error) {
	if s.err != nil {
		return nil, s.err
	}
	var out []presence.Profile
	for _, name := range names {
		if p, ok := s.byName[name]; ok {
			out = append(out, p)
		}
	}
	return out, nil
}

func (s *stubResolver) Lookup(_ context.Context, id string) (*presence.Profile, error) {
	if p, ok := s.byID[id]; ok {
		return &p, nil
	}
	return nil, errors.New("not found")
}

type engineFixture struct {
	api      *testutil.MockChannelAPI
	status   *testutil.MockStatusSource
	resolver *stubResolver
	metrics  *testutil.MockMetrics
	engine   *Engine
	clock    time.Time
}

func newEngineFixture(t *testing.T) *engineFixture {
	t.Helper()
	conf := &structures.Config{}
	conf.Discord.Guild = "guild-1"
	conf.Discord.Channels.Ping = "ch-ping"
	conf.Discord.Channels.Watchlist = "ch-watchlist"

	f := &engineFixture{
		api:      testutil.NewMockChannelAPI(),
		status:   &testutil.MockStatusSource{Statuses: map[string]string{}},
		resolver: &stubResolver{byName: map[string]presence.Profile{}, byID: map[string]presence.Profile{}},
		metrics:  &testutil.MockMetrics{},
		clock:    time.UnixMilli(1700000000000),
	}
	f.engine = NewEngine(conf, f.api, f.status, f.resolver, &testutil.MockLogger{}, f.metrics, nil).(*Engine)
	f.engine.now = func() time.Time { return f.clock }
	return f
}

// subscribe seeds a subscriber directly, with a thread already provisioned.
func (f *engineFixture) subscribe(userID string, targets map[string]string, statuses ...string) *models.Subscriber {
	sub := &models.Subscriber{
		Subscribe:   make(map[string]*models.WatchTarget),
		Statuses:    statuses,
		Thread:      "thread-" + userID,
		OwnUsername: userID,
	}
	for uuid, name := range targets {
		sub.Subscribe[uuid] = &models.WatchTarget{Name: name}
	}
	f.engine.doc[userID] = sub
	return sub
}

func TestReportOnlineConsumesSubscription(t *testing.T) {
	f := newEngineFixture(t)
	sub := f.subscribe("user-1", map[string]string{"uuid-a": "Alice"})
	f.status.Statuses["user-1"] = "online"

	err := f.engine.ReportOnline(context.Background(),
		map[string]string{"uuid-a": "Alice"}, []string{"Alice"})

	require.NoError(t, err)
	assert.Empty(t, sub.Subscribe)
	msg := f.api.Last("thread-user-1")
	assert.Contains(t, msg, "<@user-1>")
	assert.Contains(t, msg, "**Alice** is online!")
	assert.Contains(t, msg, "removed from your notification list")
	assert.Equal(t, 1, f.metrics.Notifications["watchlist"])
	// The consumed subscription was persisted.
	assert.NotEmpty(t, f.api.Contents("ch-watchlist"))
}

func TestReportOnlineNotWatchedNoDelivery(t *testing.T) {
	f := newEngineFixture(t)
	sub := f.subscribe("user-1", map[string]string{"uuid-a": "Alice"})
	f.status.Statuses["user-1"] = "online"

	err := f.engine.ReportOnline(context.Background(),
		map[string]string{"uuid-z": "Zed"}, []string{"Zed"})

	require.NoError(t, err)
	assert.Len(t, sub.Subscribe, 1)
	assert.Empty(t, f.api.Contents("thread-user-1"))
}

func TestReportOnlineMultipleFound(t *testing.T) {
	f := newEngineFixture(t)
	f.subscribe("user-1", map[string]string{"uuid-a": "Alice", "uuid-b": "Bob"})
	f.status.Statuses["user-1"] = "online"

	err := f.engine.ReportOnline(context.Background(),
		map[string]string{"uuid-a": "Alice", "uuid-b": "Bob"}, []string{"Alice", "Bob"})

	require.NoError(t, err)
	msg := f.api.Last("thread-user-1")
	assert.Contains(t, msg, "are online!")
	assert.Contains(t, msg, " and ")
}

func TestReportOnlineStatusBlockedKeepsSubscription(t *testing.T) {
	f := newEngineFixture(t)
	sub := f.subscribe("user-1", map[string]string{"uuid-a": "Alice"}, "dnd")
	f.status.Statuses["user-1"] = "online"

	err := f.engine.ReportOnline(context.Background(),
		map[string]string{"uuid-a": "Alice"}, []string{"Alice"})

	require.NoError(t, err)
	require.Len(t, sub.Subscribe, 1)
	assert.Equal(t, f.clock.UnixMilli(), sub.Subscribe["uuid-a"].LastAnnounced)

	msg := f.api.Last("thread-user-1")
	assert.Contains(t, msg, "**Alice** is online but your status is **online**")
	assert.Contains(t, msg, "**dnd**")
}

func TestReportOnlineBlockedCooldown(t *testing.T) {
	f := newEngineFixture(t)
	f.subscribe("user-1", map[string]string{"uuid-a": "Alice"}, "dnd")
	f.status.Statuses["user-1"] = "online"

	online := map[string]string{"uuid-a": "Alice"}
	names := []string{"Alice"}

	require.NoError(t, f.engine.ReportOnline(context.Background(), online, names))
	require.Len(t, f.api.Contents("thread-user-1"), 1)

	// Still online next cycle: quiet.
	f.clock = f.clock.Add(time.Minute)
	require.NoError(t, f.engine.ReportOnline(context.Background(), online, names))
	assert.Len(t, f.api.Contents("thread-user-1"), 1)

	// A day later the reminder fires again.
	f.clock = f.clock.Add(25 * time.Hour)
	require.NoError(t, f.engine.ReportOnline(context.Background(), online, names))
	assert.Len(t, f.api.Contents("thread-user-1"), 2)
}

func TestReportOnlinePermittedStatusDelivers(t *testing.T) {
	f := newEngineFixture(t)
	sub := f.subscribe("user-1", map[string]string{"uuid-a": "Alice"}, "dnd")
	f.status.Statuses["user-1"] = "dnd"

	err := f.engine.ReportOnline(context.Background(),
		map[string]string{"uuid-a": "Alice"}, []string{"Alice"})

	require.NoError(t, err)
	assert.Empty(t, sub.Subscribe)
}

func TestReportOnlineInvisibleSubscriberSkipped(t *testing.T) {
	f := newEngineFixture(t)
	sub := f.subscribe("user-1", map[string]string{"uuid-a": "Alice"})
	f.status.Err = errors.New("member not cached")

	err := f.engine.ReportOnline(context.Background(),
		map[string]string{"uuid-a": "Alice"}, []string{"Alice"})

	require.NoError(t, err)
	assert.Len(t, sub.Subscribe, 1)
	assert.Empty(t, f.api.Contents("thread-user-1"))
}

func TestReportOnlineDetectsRename(t *testing.T) {
	f := newEngineFixture(t)
	f.subscribe("user-1", map[string]string{"uuid-a": "OldName"})
	f.status.Statuses["user-1"] = "online"
	f.resolver.byID["uuid-a"] = presence.Profile{ID: "uuid-a", Name: "NewName"}

	// The id is online but its display name changed, so the stored name is
	// absent from the online name list.
	err := f.engine.ReportOnline(context.Background(),
		map[string]string{"uuid-a": "NewName"}, []string{"NewName"})

	require.NoError(t, err)
	msg := f.api.Last("thread-user-1")
	assert.Contains(t, msg, "**NewName** (OldName)")
}

func TestReportOnlineUnarchivesThread(t *testing.T) {
	f := newEngineFixture(t)
	f.subscribe("user-1", map[string]string{"uuid-a": "Alice"})
	f.status.Statuses["user-1"] = "online"

	require.NoError(t, f.engine.ReportOnline(context.Background(),
		map[string]string{"uuid-a": "Alice"}, []string{"Alice"}))

	assert.Contains(t, f.api.Unarchives, "thread-user-1")
}

func TestSetSubscriptionsParsesEditorFormat(t *testing.T) {
	f := newEngineFixture(t)
	f.resolver.byName["Bob"] = presence.Profile{ID: "UUID-B", Name: "Bob"}

	result, err := f.engine.SetSubscriptions(context.Background(), "user-1", "tester",
		"Alice | uuid-a\n\n  Bob  \n")

	require.NoError(t, err)
	assert.Empty(t, result.Failed)
	assert.Equal(t, map[string]string{"uuid-a": "Alice", "uuid-b": "Bob"}, result.Watching)
}

func TestSetSubscriptionsCreatesThreadLazily(t *testing.T) {
	f := newEngineFixture(t)
	f.resolver.byName["Alice"] = presence.Profile{ID: "uuid-a", Name: "Alice"}

	_, err := f.engine.SetSubscriptions(context.Background(), "user-1", "tester", "Alice")
	require.NoError(t, err)

	sub := f.engine.doc["user-1"]
	require.NotNil(t, sub)
	require.NotEmpty(t, sub.Thread)
	assert.Equal(t, "ch-ping", f.api.Threads[sub.Thread])
	assert.Contains(t, f.api.Last(sub.Thread), "Welcome to your private notification thread")

	// A later edit reuses the thread.
	thread := sub.Thread
	_, err = f.engine.SetSubscriptions(context.Background(), "user-1", "tester", "Alice")
	require.NoError(t, err)
	assert.Equal(t, thread, f.engine.doc["user-1"].Thread)
}

func TestSetSubscriptionsUnresolvedNameFails(t *testing.T) {
	f := newEngineFixture(t)

	result, err := f.engine.SetSubscriptions(context.Background(), "user-1", "tester", "Ghost")

	require.NoError(t, err)
	assert.Equal(t, []string{"Ghost"}, result.Failed)
	assert.Empty(t, result.Watching)
}

func TestSetSubscriptionsReplacesWatchSet(t *testing.T) {
	f := newEngineFixture(t)
	sub := f.subscribe("user-1", map[string]string{"uuid-old": "Old"})

	result, err := f.engine.SetSubscriptions(context.Background(), "user-1", "tester", "New | uuid-new")

	require.NoError(t, err)
	assert.Equal(t, map[string]string{"uuid-new": "New"}, result.Watching)
	assert.False(t, func() bool { _, ok := sub.Subscribe["uuid-old"]; return ok }())
}

func TestSetStatusesNotifiesThread(t *testing.T) {
	f := newEngineFixture(t)
	f.subscribe("user-1", map[string]string{"uuid-a": "Alice"})

	require.NoError(t, f.engine.SetStatuses(context.Background(), "user-1", []string{"dnd", "idle"}))

	assert.Equal(t, []string{"dnd", "idle"}, f.engine.doc["user-1"].Statuses)
	msg := f.api.Last("thread-user-1")
	assert.Contains(t, msg, "**dnd** and **idle**")
}

func TestRestorePersistRoundTrip(t *testing.T) {
	f := newEngineFixture(t)
	f.subscribe("user-1", map[string]string{"uuid-a": "Alice"}, "dnd")
	require.NoError(t, f.engine.Persist(context.Background()))

	// A fresh engine over the same channel reads the document back.
	g := newEngineFixture(t)
	g.api.Channels = f.api.Channels
	require.NoError(t, g.engine.Restore(context.Background()))

	sub := g.engine.doc["user-1"]
	require.NotNil(t, sub)
	assert.Equal(t, "Alice", sub.Subscribe["uuid-a"].Name)
	assert.Equal(t, []string{"dnd"}, sub.Statuses)
	assert.Equal(t, "thread-user-1", sub.Thread)
}
