package credentials

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/rs/zerolog/log"
)

// Info is the device identity returned by pairing, kept alongside the auth
// token so the player can label itself without a network round trip.
type Info struct {
	DeviceID   int    `json:"device_id"`
	DeviceName string `json:"device_name"`
	CompanyID  int    `json:"company_id"`
	PlaylistID *int   `json:"playlist_id"`
}

// Store is the single owner of the device's persisted credentials. Every
// other component receives the token by parameter, never by re-reading disk.
type Store interface {
	Save(token string, info Info) error
	// Load returns ("", nil, nil) when no credentials are stored.
	Load() (string, *Info, error)
	Clear() error
}

type payload struct {
	AuthToken string `json:"auth_token"`
	Info      Info   `json:"info"`
}

// FileStore persists credentials as one JSON file, written atomically so a
// crash mid-save never leaves a torn token behind.
type FileStore struct {
	path string
}

func NewFileStore(dir string) *FileStore {
	return &FileStore{path: filepath.Join(dir, "credentials.json")}
}

func (f *FileStore) Save(token string, info Info) error {
	data, err := json.Marshal(payload{AuthToken: token, Info: info})
	if err != nil {
		return fmt.Errorf("failed to marshal credentials: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(f.path), 0700); err != nil {
		return fmt.Errorf("failed to create state directory: %w", err)
	}

	tmp := f.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0600); err != nil {
		return fmt.Errorf("failed to write credentials: %w", err)
	}
	if err := os.Rename(tmp, f.path); err != nil {
		return fmt.Errorf("failed to commit credentials: %w", err)
	}

	log.Debug().Int("device_id", info.DeviceID).Msg("credentials saved")
	return nil
}

func (f *FileStore) Load() (string, *Info, error) {
	data, err := os.ReadFile(f.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return "", nil, nil
		}
		return "", nil, fmt.Errorf("failed to read credentials: %w", err)
	}

	var p payload
	if err := json.Unmarshal(data, &p); err != nil {
		// a corrupt file is treated as unpaired rather than fatal
		log.Warn().Err(err).Str("path", f.path).Msg("discarding corrupt credentials file")
		return "", nil, nil
	}
	if p.AuthToken == "" {
		return "", nil, nil
	}
	return p.AuthToken, &p.Info, nil
}

func (f *FileStore) Clear() error {
	if err := os.Remove(f.path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("failed to clear credentials: %w", err)
	}
	log.Debug().Msg("credentials cleared")
	return nil
}
