package monitor

import (
	"staffping/internal/models"
	"staffping/internal/structures"
	"time"
)

// Deadzones holds the configured minimum silent interval per rank.
type Deadzones map[models.Rank]time.Duration

func DeadzonesFromConfig(conf *structures.Config) Deadzones {
	return Deadzones{
		models.RankConductor: conf.Monitor.Deadzones.Conductor,
		models.RankMod:       conf.Monitor.Deadzones.Mod,
		models.RankAdmin:     conf.Monitor.Deadzones.Admin,
	}
}

// RankMark is a rank whose deadzone elapsed this cycle.
type RankMark struct {
	Rank    models.Rank
	Elapsed time.Duration
}

// DeadzoneNotifier decides, with hysteresis, which ranks to notify for when
// staff presence is observed. Rank presence cascades: an online Admin counts
// as Mod and Conductor presence too, so a higher rank always refreshes lower
// ranks' timers even when its own deadzone has not elapsed.
type DeadzoneNotifier struct {
	deadzones Deadzones
}

func NewDeadzoneNotifier(deadzones Deadzones) *DeadzoneNotifier {
	return &DeadzoneNotifier{deadzones: deadzones}
}

// Evaluate inspects this cycle's online staff, marks every rank up to the
// highest present one whose deadzone has elapsed, and refreshes those ranks'
// reserved last-seen timestamps in the document. It returns the marks from
// highest rank to lowest and the highest-rank online individual. A rank with
// no stored timestamp yet (fresh document) is refreshed without being
// marked, so a bootstrap never pings.
func (n *DeadzoneNotifier) Evaluate(lastSeen models.LastSeenDoc, onlineStaff []models.StaffEntry, now time.Time) ([]RankMark, *models.StaffEntry) {
	highest, top := highestPresentRank(onlineStaff)
	if top == nil {
		return nil, nil
	}

	nowMs := now.UnixMilli()
	var marks []RankMark

	for _, rank := range models.RanksDescending() {
		if !highest.Satisfies(rank) {
			continue
		}
		key := rank.Key()
		if lastSeen.Has(key) {
			elapsed := time.Duration(nowMs-lastSeen.Get(key)) * time.Millisecond
			if elapsed > n.deadzones[rank] {
				marks = append(marks, RankMark{Rank: rank, Elapsed: elapsed})
			}
		}
		lastSeen.Set(key, nowMs)
	}

	return marks, top
}

// highestPresentRank returns the highest rank held by any online staff
// member and the first member holding it.
func highestPresentRank(onlineStaff []models.StaffEntry) (models.Rank, *models.StaffEntry) {
	var top *models.StaffEntry
	var highest models.Rank

	for i := range onlineStaff {
		rank, ok := onlineStaff[i].ParsedRank()
		if !ok {
			continue
		}
		if top == nil || rank > highest {
			top = &onlineStaff[i]
			highest = rank
		}
	}
	return highest, top
}
