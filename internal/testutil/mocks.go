package testutil

import (
	"context"
	"fmt"
	"staffping/internal/discord"
	"staffping/internal/models"
	"staffping/internal/providers"
	"sync"
	"time"
)

// MockLogger implements providers.Logger and records calls.
type MockLogger struct {
	mu   sync.Mutex
	Logs []LogEntry
}

type LogEntry struct {
	Level  string
	Type   providers.TypeEnum
	Format string
	Args   []interface{}
}

func (m *MockLogger) record(level string, t providers.TypeEnum, format string, args ...interface{}) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Logs = append(m.Logs, LogEntry{Level: level, Type: t, Format: format, Args: args})
}

func (m *MockLogger) Errorf(t providers.TypeEnum, format string, args ...interface{}) {
	m.record("error", t, format, args...)
}
func (m *MockLogger) Warnf(t providers.TypeEnum, format string, args ...interface{}) {
	m.record("warn", t, format, args...)
}
func (m *MockLogger) Debugf(t providers.TypeEnum, format string, args ...interface{}) {
	m.record("debug", t, format, args...)
}
func (m *MockLogger) Infof(t providers.TypeEnum, format string, args ...interface{}) {
	m.record("info", t, format, args...)
}
func (m *MockLogger) Fatalf(t providers.TypeEnum, format string, args ...interface{}) {
	m.record("fatal", t, format, args...)
}
func (m *MockLogger) Close() {}

// Count returns how many entries were recorded at the given level.
func (m *MockLogger) Count(level string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for _, e := range m.Logs {
		if e.Level == level {
			n++
		}
	}
	return n
}

// MockCache implements providers.CacheProviderInterface.
type MockCache struct {
	mu   sync.Mutex
	Data map[string][]byte
}

func NewMockCache() *MockCache {
	return &MockCache{Data: make(map[string][]byte)}
}

func (m *MockCache) Get(key string) ([]byte, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	val, ok := m.Data[key]
	return val, ok
}

func (m *MockCache) Set(key string, value []byte) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Data[key] = value
}

// MockMetrics implements providers.MetricsProviderInterface and counts calls.
type MockMetrics struct {
	mu            sync.Mutex
	Requests      int
	Cycles        map[string]int
	Notifications map[string]int
	OnlineStaff   map[string]int
	DocRecords    map[string]int
	CacheHits     int
	CacheMisses   int
}

func (m *MockMetrics) IncRequestsTotal(_ string, _ int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Requests++
}

func (m *MockMetrics) ObserveRequestDuration(_ string, _ time.Duration) {}

func (m *MockMetrics) IncCycles(result string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Cycles == nil {
		m.Cycles = make(map[string]int)
	}
	m.Cycles[result]++
}

func (m *MockMetrics) ObserveCycleDuration(_ time.Duration) {}

func (m *MockMetrics) IncNotifications(kind string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Notifications == nil {
		m.Notifications = make(map[string]int)
	}
	m.Notifications[kind]++
}

func (m *MockMetrics) SetOnlineStaff(rank string, count int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.OnlineStaff == nil {
		m.OnlineStaff = make(map[string]int)
	}
	m.OnlineStaff[rank] = count
}

func (m *MockMetrics) SetDocumentRecords(document string, count int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.DocRecords == nil {
		m.DocRecords = make(map[string]int)
	}
	m.DocRecords[document] = count
}

func (m *MockMetrics) IncResolverCacheHits() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.CacheHits++
}

func (m *MockMetrics) IncResolverCacheMisses() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.CacheMisses++
}

// MockChannelAPI implements discord.ChannelAPI on an in-memory record store.
// Records keep insertion order per channel, matching the oldest-first
// contract of FetchRecent.
type MockChannelAPI struct {
	mu       sync.Mutex
	Channels map[string][]discord.Record
	Threads  map[string]string // thread id -> parent channel

	Sends      int
	Edits      int
	Deletes    int
	Fetches    int
	Unarchives []string

	SendErr   error
	EditErr   error
	DeleteErr error
	FetchErr  error
	ThreadErr error

	nextID int
}

func NewMockChannelAPI() *MockChannelAPI {
	return &MockChannelAPI{
		Channels: make(map[string][]discord.Record),
		Threads:  make(map[string]string),
	}
}

func (m *MockChannelAPI) FetchRecent(_ context.Context, channelID string, limit int) ([]discord.Record, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Fetches++
	if m.FetchErr != nil {
		return nil, m.FetchErr
	}
	records := m.Channels[channelID]
	if len(records) > limit {
		records = records[len(records)-limit:]
	}
	out := make([]discord.Record, len(records))
	copy(out, records)
	return out, nil
}

func (m *MockChannelAPI) Send(_ context.Context, channelID, content string) (discord.Record, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Sends++
	if m.SendErr != nil {
		return discord.Record{}, m.SendErr
	}
	m.nextID++
	rec := discord.Record{ID: fmt.Sprintf("msg-%d", m.nextID), Content: content}
	m.Channels[channelID] = append(m.Channels[channelID], rec)
	return rec, nil
}

func (m *MockChannelAPI) Edit(_ context.Context, channelID, recordID, content string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Edits++
	if m.EditErr != nil {
		return m.EditErr
	}
	for i, rec := range m.Channels[channelID] {
		if rec.ID == recordID {
			m.Channels[channelID][i].Content = content
			return nil
		}
	}
	return fmt.Errorf("record %s not found in %s", recordID, channelID)
}

func (m *MockChannelAPI) Delete(_ context.Context, channelID, recordID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Deletes++
	if m.DeleteErr != nil {
		return m.DeleteErr
	}
	records := m.Channels[channelID]
	for i, rec := range records {
		if rec.ID == recordID {
			m.Channels[channelID] = append(records[:i:i], records[i+1:]...)
			return nil
		}
	}
	return fmt.Errorf("record %s not found in %s", recordID, channelID)
}

func (m *MockChannelAPI) CreatePrivateThread(_ context.Context, channelID, name string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.ThreadErr != nil {
		return "", m.ThreadErr
	}
	m.nextID++
	threadID := fmt.Sprintf("thread-%d", m.nextID)
	m.Threads[threadID] = channelID
	return threadID, nil
}

func (m *MockChannelAPI) Unarchive(_ context.Context, threadID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Unarchives = append(m.Unarchives, threadID)
	return nil
}

// Contents returns the channel's record contents in order.
func (m *MockChannelAPI) Contents(channelID string) []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []string
	for _, rec := range m.Channels[channelID] {
		out = append(out, rec.Content)
	}
	return out
}

// Last returns the content of the channel's newest record, or "".
func (m *MockChannelAPI) Last(channelID string) string {
	m.mu.Lock()
	defer m.mu.Unlock()
	records := m.Channels[channelID]
	if len(records) == 0 {
		return ""
	}
	return records[len(records)-1].Content
}

// MockStatusSource implements discord.StatusSource from a fixed map.
type MockStatusSource struct {
	Statuses map[string]string
	Err      error
}

func (m *MockStatusSource) MemberStatus(_, userID string) (string, error) {
	if m.Err != nil {
		return "", m.Err
	}
	if s, ok := m.Statuses[userID]; ok {
		return s, nil
	}
	return "offline", nil
}

// MockRoster implements roster.ClientInterface with fixed staff data.
type MockRoster struct {
	Staff []models.StaffEntry
	Err   error
}

func (m *MockRoster) Fetch(_ context.Context) ([]models.StaffEntry, error) {
	if m.Err != nil {
		return nil, m.Err
	}
	return m.Staff, nil
}

// MockFeed implements presence.Feed with fixed names.
type MockFeed struct {
	List []string
	Err  error
}

func (m *MockFeed) Names(_ context.Context) ([]string, error) {
	if m.Err != nil {
		return nil, m.Err
	}
	return m.List, nil
}
