package store

import "staffping/internal/discord"

// Edit replaces an existing record's content.
type Edit struct {
	RecordID string
	Content  string
}

// Plan is the reconciliation of a chunk list against the records currently
// holding a document. Applying Edits, then Deletes, then Appends (in order)
// makes the record list read back as exactly the chunk sequence.
type Plan struct {
	Edits   []Edit
	Deletes []string
	Appends []string
}

// Reconcile maps new document chunks onto existing records, oldest-first:
// each existing record consumes one chunk as an in-place edit, leftover
// records are deleted, leftover chunks are appended. Records whose content
// already equals their chunk are skipped, which keeps a repeated persist of
// the same document free of write calls.
func Reconcile(existing []discord.Record, chunks []string) Plan {
	var plan Plan

	for i, rec := range existing {
		if i < len(chunks) {
			if rec.Content != chunks[i] {
				plan.Edits = append(plan.Edits, Edit{RecordID: rec.ID, Content: chunks[i]})
			}
			continue
		}
		plan.Deletes = append(plan.Deletes, rec.ID)
	}

	if len(chunks) > len(existing) {
		plan.Appends = append(plan.Appends, chunks[len(existing):]...)
	}

	return plan
}

// SplitChunks splits s into pieces of at most limit code points. Counting
// runes rather than bytes keeps a chunk under the platform's character
// limit regardless of multi-byte content. An empty string yields no chunks.
func SplitChunks(s string, limit int) []string {
	if s == "" {
		return nil
	}

	runes := []rune(s)
	chunks := make([]string, 0, (len(runes)+limit-1)/limit)
	for start := 0; start < len(runes); start += limit {
		end := min(start+limit, len(runes))
		chunks = append(chunks, string(runes[start:end]))
	}
	return chunks
}
