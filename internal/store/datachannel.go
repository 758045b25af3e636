package store

import (
	"context"
	"fmt"
	"staffping/internal/discord"
	"staffping/internal/providers"
	"sync"

	json "github.com/goccy/go-json"
)

// DataChannel persists one logical JSON document across the ordered records
// of a single storage channel. At most one logical writer may mutate the
// document between Persist calls.
type DataChannel struct {
	api       discord.ChannelAPI
	channelID string
	name      string
	logger    providers.Logger
	metrics   providers.MetricsProviderInterface
	backup    *Backup

	// Serializes Persist calls: a new persist must not start before the
	// prior one's record mutations completed, or readers could observe
	// interleaved partial writes.
	mu sync.Mutex
}

func NewDataChannel(api discord.ChannelAPI, channelID, name string, logger providers.Logger, metrics providers.MetricsProviderInterface, backup *Backup) *DataChannel {
	return &DataChannel{
		api:       api,
		channelID: channelID,
		name:      name,
		logger:    logger,
		metrics:   metrics,
		backup:    backup,
	}
}

// Name returns the document name used for logs, metrics and backups.
func (d *DataChannel) Name() string {
	return d.name
}

// Open reads the full record list, concatenates the records oldest-first and
// parses the result into v. An empty list bootstraps the channel by
// persisting v as constructed (the list is never left empty after a first
// Open). A parse failure is fatal for the document and is returned, never
// papered over with an empty default: defaulting would destroy state on the
// next persist.
func (d *DataChannel) Open(ctx context.Context, v any) error {
	records, err := d.api.FetchRecent(ctx, d.channelID, discord.FetchLimit)
	if err != nil {
		return fmt.Errorf("open document %s: %w", d.name, err)
	}

	var raw string
	for _, rec := range records {
		raw += rec.Content
	}

	if raw == "" {
		d.logger.Infof(providers.TypeStore, "Document %s is empty, bootstrapping", d.name)
		return d.Persist(ctx, v)
	}

	if err := json.Unmarshal([]byte(raw), v); err != nil {
		return fmt.Errorf("document %s is corrupted (%d records, %d chars): %w", d.name, len(records), len(raw), err)
	}

	d.logger.Debugf(providers.TypeStore, "Opened document %s from %d records", d.name, len(records))
	return nil
}

// Persist serializes v, splits it into record-sized chunks and reconciles
// the channel's records to match: edits oldest-first, then deletes, then
// appends. Record order after Persist equals chunk order, so a subsequent
// Open round-trips the document exactly.
func (d *DataChannel) Persist(ctx context.Context, v any) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	raw, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("serialize document %s: %w", d.name, err)
	}

	chunks := SplitChunks(string(raw), discord.RecordLimit)

	records, err := d.api.FetchRecent(ctx, d.channelID, discord.FetchLimit)
	if err != nil {
		return fmt.Errorf("persist document %s: %w", d.name, err)
	}

	plan := Reconcile(records, chunks)

	for _, edit := range plan.Edits {
		if err := d.api.Edit(ctx, d.channelID, edit.RecordID, edit.Content); err != nil {
			return fmt.Errorf("persist document %s: %w", d.name, err)
		}
	}
	for _, id := range plan.Deletes {
		if err := d.api.Delete(ctx, d.channelID, id); err != nil {
			return fmt.Errorf("persist document %s: %w", d.name, err)
		}
	}
	for _, chunk := range plan.Appends {
		if _, err := d.api.Send(ctx, d.channelID, chunk); err != nil {
			return fmt.Errorf("persist document %s: %w", d.name, err)
		}
	}

	d.metrics.SetDocumentRecords(d.name, len(chunks))

	if d.backup != nil {
		if err := d.backup.Write(d.name, raw); err != nil {
			// The channel write already succeeded, the local snapshot is
			// a recovery aid only.
			d.logger.Errorf(providers.TypeStore, "Backup of document %s failed: %s", d.name, err)
		}
	}

	d.logger.Debugf(providers.TypeStore, "Persisted document %s: %d chunks, %d edits, %d deletes, %d appends",
		d.name, len(chunks), len(plan.Edits), len(plan.Deletes), len(plan.Appends))
	return nil
}

// SerializedSize returns the length in code points of v's serialized form,
// for callers that guard on document size before persisting.
func SerializedSize(v any) (int, error) {
	raw, err := json.Marshal(v)
	if err != nil {
		return 0, err
	}
	return len([]rune(string(raw))), nil
}
