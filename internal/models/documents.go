package models

import "github.com/spf13/cast"

// LastSeenDoc maps stable ids to the epoch-millisecond timestamp of the last
// confirmed online observation. The reserved rank keys (Rank.Key) hold the
// last time any member of that rank-or-above was seen. Values are kept as
// `any` because earlier revisions of the document stored timestamps as
// strings; cast coerces both.
type LastSeenDoc map[string]any

func NewLastSeenDoc() LastSeenDoc { return make(LastSeenDoc) }

func (d LastSeenDoc) Get(key string) int64 {
	return cast.ToInt64(d[key])
}

func (d LastSeenDoc) Has(key string) bool {
	_, ok := d[key]
	return ok
}

func (d LastSeenDoc) Set(key string, ms int64) {
	d[key] = ms
}

func (d LastSeenDoc) Delete(key string) {
	delete(d, key)
}

// OnlineSinceDoc maps stable ids to the epoch-millisecond start of the
// current unbroken online session. A key is present iff the identity is
// currently online.
type OnlineSinceDoc map[string]any

func NewOnlineSinceDoc() OnlineSinceDoc { return make(OnlineSinceDoc) }

func (d OnlineSinceDoc) Get(key string) int64 {
	return cast.ToInt64(d[key])
}

func (d OnlineSinceDoc) Has(key string) bool {
	_, ok := d[key]
	return ok
}

func (d OnlineSinceDoc) Set(key string, ms int64) {
	d[key] = ms
}

func (d OnlineSinceDoc) Delete(key string) {
	delete(d, key)
}

// Keys of the OpsDoc.
const (
	OpsLastDiscrepancyAlert = "lastDiscrepancyAlert"
	OpsLastSizeWarning      = "lastSizeWarning"
	OpsLastCycleOK          = "lastCycleOk"
)

// OpsDoc holds miscellaneous operational timestamps (epoch ms).
type OpsDoc map[string]any

func NewOpsDoc() OpsDoc { return make(OpsDoc) }

func (d OpsDoc) Get(key string) int64 {
	return cast.ToInt64(d[key])
}

func (d OpsDoc) Set(key string, ms int64) {
	d[key] = ms
}

// WatchTarget is a single watched identity inside a subscriber's watch set.
type WatchTarget struct {
	Name          string `json:"name"`
	LastAnnounced int64  `json:"lastAnnounced,omitempty"`
}

// Subscriber is one user's watchlist entry.
type Subscriber struct {
	Subscribe   map[string]*WatchTarget `json:"subscribe"`
	Statuses    []string                `json:"statuses,omitempty"`
	Thread      string                  `json:"thread,omitempty"`
	OwnUsername string                  `json:"ownUsername,omitempty"`
}

// WantsStatus reports whether the subscriber's status filter permits
// immediate delivery while they have the given presence status. An absent
// filter permits everything.
func (s *Subscriber) WantsStatus(status string) bool {
	if len(s.Statuses) == 0 {
		return true
	}
	for _, v := range s.Statuses {
		if v == status {
			return true
		}
	}
	return false
}

// WatchlistDoc maps subscriber ids to their watchlist entries.
type WatchlistDoc map[string]*Subscriber

func NewWatchlistDoc() WatchlistDoc { return make(WatchlistDoc) }
