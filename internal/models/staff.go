package models

// StaffEntry is one row of the staff roster sheet. Field names mirror the
// sheet columns as the roster endpoint returns them.
type StaffEntry struct {
	Name string `json:"Name"`
	UUID string `json:"UUID"`
	Rank string `json:"Rank"`
}

// ParsedRank resolves the sheet's rank column to a Rank. Unknown rank
// strings (new ranks, typos in the sheet) report ok=false and the entry is
// skipped by rank-level logic while still being tracked individually.
func (s StaffEntry) ParsedRank() (Rank, bool) {
	return ParseRank(s.Rank)
}
