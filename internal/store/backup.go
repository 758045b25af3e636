package store

import (
	"fmt"
	"os"
	"path/filepath"
	"staffping/internal/providers"
	"staffping/internal/structures"

	"github.com/klauspost/compress/zstd"
)

// Backup keeps a zstd-compressed local snapshot of each document as it is
// persisted. The snapshot is never read automatically: a corrupted channel
// surfaces as an Open error and an operator restores from here by hand.
type Backup struct {
	dir     string
	encoder *zstd.Encoder
	decoder *zstd.Decoder
	logger  providers.Logger
}

func NewBackup(conf *structures.Config, logger providers.Logger) (*Backup, error) {
	if err := os.MkdirAll(conf.Persistence.Dir, 0o755); err != nil {
		return nil, fmt.Errorf("backup dir: %w", err)
	}
	encoder, err := zstd.NewWriter(nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create zstd encoder: %w", err)
	}
	decoder, err := zstd.NewReader(nil, zstd.WithDecoderConcurrency(0))
	if err != nil {
		return nil, fmt.Errorf("failed to create zstd decoder: %w", err)
	}
	return &Backup{dir: conf.Persistence.Dir, encoder: encoder, decoder: decoder, logger: logger}, nil
}

// Write stores raw (the serialized document) under name, atomically via a
// temp file.
func (b *Backup) Write(name string, raw []byte) error {
	data := b.encoder.EncodeAll(raw, make([]byte, 0, len(raw)/2))

	fileName := filepath.Join(b.dir, name+".json.zst")
	tmpFile := fileName + ".tmp"

	file, err := os.Create(tmpFile)
	if err != nil {
		return err
	}

	if _, err = file.Write(data); err != nil {
		file.Close()
		os.Remove(tmpFile)
		return err
	}

	if err = file.Sync(); err != nil {
		file.Close()
		os.Remove(tmpFile)
		return err
	}

	if err = file.Close(); err != nil {
		os.Remove(tmpFile)
		return err
	}

	return os.Rename(tmpFile, fileName)
}

// Read returns the raw serialized document last backed up under name.
func (b *Backup) Read(name string) ([]byte, error) {
	data, err := os.ReadFile(filepath.Join(b.dir, name+".json.zst"))
	if err != nil {
		return nil, err
	}
	return b.decoder.DecodeAll(data, nil)
}

func (b *Backup) Close() {
	b.encoder.Close()
	b.decoder.Close()
}
