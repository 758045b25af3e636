package models

// Rank is a staff rank in ascending order of privilege.
type Rank int

const (
	RankConductor Rank = iota
	RankMod
	RankAdmin
)

var rankNames = [...]string{"Conductor", "Mod", "Admin"}

// Ranks returns all ranks in ascending privilege order.
func Ranks() []Rank {
	return []Rank{RankConductor, RankMod, RankAdmin}
}

// RanksDescending returns all ranks from highest privilege to lowest.
func RanksDescending() []Rank {
	return []Rank{RankAdmin, RankMod, RankConductor}
}

func (r Rank) String() string {
	if r < RankConductor || r > RankAdmin {
		return "Unknown"
	}
	return rankNames[r]
}

// Key is the reserved key under which the rank's last-seen timestamp is
// stored in the lastSeen document.
func (r Rank) Key() string {
	switch r {
	case RankConductor:
		return "conductor"
	case RankMod:
		return "mod"
	case RankAdmin:
		return "admin"
	}
	return ""
}

// Satisfies reports whether presence of this rank counts as presence of
// the other. A higher rank always satisfies a lower one.
func (r Rank) Satisfies(other Rank) bool {
	return r >= other
}

func ParseRank(s string) (Rank, bool) {
	for i, name := range rankNames {
		if name == s {
			return Rank(i), true
		}
	}
	return 0, false
}
