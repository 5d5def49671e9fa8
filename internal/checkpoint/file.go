package checkpoint

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/klauspost/compress/zstd"
	"github.com/rs/zerolog/log"
)

// File format: magic, one format version byte, then the zstd-compressed
// JSON snapshot body.
const FormatVersion = 1

var magic = []byte("CVCKPT")

// ErrVersionMismatch is returned when a checkpoint file was written with
// a different format version. This is a fatal startup condition, not a
// recoverable one: the snapshot shape cannot be trusted.
var ErrVersionMismatch = errors.New("checkpoint format version mismatch")

// Save writes the snapshot to path atomically: temp file in the same
// directory, fsync, then rename. A crash mid-save leaves the previous
// checkpoint intact.
func Save(path string, s *Snapshot) error {
	body, err := json.Marshal(s)
	if err != nil {
		return fmt.Errorf("marshal snapshot: %w", err)
	}

	enc, err := zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedDefault))
	if err != nil {
		return fmt.Errorf("create zstd encoder: %w", err)
	}
	compressed := enc.EncodeAll(body, nil)
	_ = enc.Close()

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("create checkpoint dir: %w", err)
	}

	tmpFile, err := os.CreateTemp(filepath.Dir(path), ".checkpoint-*.tmp")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmpPath := tmpFile.Name()

	cleanup := func() {
		_ = tmpFile.Close()
		_ = os.Remove(tmpPath)
	}

	if _, err := tmpFile.Write(magic); err != nil {
		cleanup()
		return fmt.Errorf("write checkpoint header: %w", err)
	}
	if _, err := tmpFile.Write([]byte{FormatVersion}); err != nil {
		cleanup()
		return fmt.Errorf("write checkpoint header: %w", err)
	}
	if _, err := tmpFile.Write(compressed); err != nil {
		cleanup()
		return fmt.Errorf("write checkpoint body: %w", err)
	}
	if err := tmpFile.Sync(); err != nil {
		cleanup()
		return fmt.Errorf("sync checkpoint: %w", err)
	}
	if err := tmpFile.Close(); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("close checkpoint: %w", err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("rename checkpoint: %w", err)
	}

	log.Info().Str("path", path).
		Int("objects", len(s.Objects)).Int("chunks", len(s.Chunks)).
		Msg("Checkpoint saved")
	return nil
}

// Load reads a snapshot from path. Returns ErrVersionMismatch when the
// file was written with a different format version; the caller must
// treat that as fatal rather than start with partial state.
func Load(path string) (*Snapshot, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read checkpoint: %w", err)
	}

	if len(data) < len(magic)+1 || !bytes.Equal(data[:len(magic)], magic) {
		return nil, fmt.Errorf("not a checkpoint file: %s", path)
	}
	if version := data[len(magic)]; version != FormatVersion {
		return nil, fmt.Errorf("%w: file has version %d, expected %d", ErrVersionMismatch, version, FormatVersion)
	}

	dec, err := zstd.NewReader(nil)
	if err != nil {
		return nil, fmt.Errorf("create zstd decoder: %w", err)
	}
	defer dec.Close()

	body, err := dec.DecodeAll(data[len(magic)+1:], nil)
	if err != nil {
		return nil, fmt.Errorf("decompress checkpoint: %w", err)
	}

	var s Snapshot
	if err := json.Unmarshal(body, &s); err != nil {
		return nil, fmt.Errorf("unmarshal snapshot: %w", err)
	}

	log.Info().Str("path", path).
		Int("objects", len(s.Objects)).Int("chunks", len(s.Chunks)).
		Msg("Checkpoint loaded")
	return &s, nil
}
