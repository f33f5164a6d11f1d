package sync

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/cyberyard-io/cyberyard/internal/player/playback"
)

// Snapshot is the last playlist the device successfully received, persisted
// so a reboot with no network still has something to play.
type Snapshot struct {
	Clips      []playback.Clip `json:"clips"`
	PlaylistID *int            `json:"playlist_id"`
	Suspended  bool            `json:"suspended"`
	ETag       string          `json:"etag"`
	SyncedAt   time.Time       `json:"synced_at"`
}

// Cache stores one Snapshot as a JSON file, written atomically.
type Cache struct {
	path string
}

func NewCache(dir string) *Cache {
	return &Cache{path: filepath.Join(dir, "playlist.json")}
}

func (c *Cache) Save(s Snapshot) error {
	data, err := json.Marshal(s)
	if err != nil {
		return fmt.Errorf("failed to marshal playlist snapshot: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(c.path), 0700); err != nil {
		return fmt.Errorf("failed to create state directory: %w", err)
	}
	tmp := c.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0600); err != nil {
		return fmt.Errorf("failed to write playlist snapshot: %w", err)
	}
	if err := os.Rename(tmp, c.path); err != nil {
		return fmt.Errorf("failed to commit playlist snapshot: %w", err)
	}
	return nil
}

// Load returns (nil, nil) when no snapshot exists. A corrupt snapshot is
// discarded rather than surfaced, the next sync rewrites it.
func (c *Cache) Load() (*Snapshot, error) {
	data, err := os.ReadFile(c.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read playlist snapshot: %w", err)
	}
	var s Snapshot
	if err := json.Unmarshal(data, &s); err != nil {
		log.Warn().Err(err).Str("path", c.path).Msg("discarding corrupt playlist snapshot")
		return nil, nil
	}
	return &s, nil
}

func (c *Cache) Clear() error {
	if err := os.Remove(c.path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("failed to clear playlist snapshot: %w", err)
	}
	return nil
}
