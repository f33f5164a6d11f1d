package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// Player holds the environment-based settings of the player binary.
type Player struct {
	// ServerURL is the base URL of the cyberyard server, without a trailing
	// slash.
	ServerURL string

	// StateDir is where credentials and the cached playlist live.
	StateDir string

	// MQTTBrokerURL enables push-triggered syncs when set; polling alone
	// otherwise.
	MQTTBrokerURL string

	// PlayerCommand is the external renderer invoked per clip, with the clip
	// URL appended as the last argument. Empty means log-only playback.
	PlayerCommand string

	SyncInterval time.Duration
}

// LoadPlayer reads player configuration from environment variables.
func LoadPlayer() (*Player, error) {
	serverURL := os.Getenv("CYBERYARD_SERVER_URL")
	if serverURL == "" {
		return nil, fmt.Errorf("CYBERYARD_SERVER_URL is required")
	}

	stateDir := os.Getenv("CYBERYARD_STATE_DIR")
	if stateDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("CYBERYARD_STATE_DIR is required when no home directory exists: %w", err)
		}
		stateDir = filepath.Join(home, ".cyberyard")
	}

	interval := 5 * time.Minute
	if raw := os.Getenv("CYBERYARD_SYNC_INTERVAL"); raw != "" {
		d, err := time.ParseDuration(raw)
		if err != nil {
			return nil, fmt.Errorf("invalid CYBERYARD_SYNC_INTERVAL: %w", err)
		}
		interval = d
	}

	return &Player{
		ServerURL:     serverURL,
		StateDir:      stateDir,
		MQTTBrokerURL: os.Getenv("CYBERYARD_MQTT_BROKER_URL"),
		PlayerCommand: os.Getenv("CYBERYARD_PLAYER_CMD"),
		SyncInterval:  interval,
	}, nil
}
