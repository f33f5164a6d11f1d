package overlay

import (
	"context"
	"encoding/json"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/cyberyard-io/cyberyard/internal/http/api/player/packets"
)

// ToolClient is the slice of the server client the overlay tools use.
type ToolClient interface {
	FetchPairingQR(ctx context.Context, token string) ([]byte, error)
	ListPlaylists(ctx context.Context, token string) ([]packets.PlaylistSummary, error)
	SwitchPlaylist(ctx context.Context, token string, playlistID int) error
	RemoveVideo(ctx context.Context, token string, videoID int) error
	GenerateVideo(ctx context.Context, token string, req packets.GenerateVideoRequest) (*packets.GenerateVideoResponse, error)
	ReportProblem(ctx context.Context, token, description string, diagnostics json.RawMessage) error
}

// ToolsConfig wires the overlay's tool screens to the rest of the player.
// WifiSettings and Dial are platform hooks; nil means the button is hidden.
type ToolsConfig struct {
	Client ToolClient
	Token  func() string

	ForceSync      func()
	ClearCache     func() error
	ResumePlayback func()

	WifiSettings    func()
	Dial            func(number string)
	EmergencyNumber string
}

// confirmWindow is how long an emergency call request stays armed.
const confirmWindow = 5 * time.Second

// Tools implements the actions behind the unlocked admin overlay. Server
// actions that change what the device should play are followed by a forced
// sync so the screen reflects them immediately.
type Tools struct {
	cfg ToolsConfig

	emergencyArmedAt time.Time
}

func NewTools(cfg ToolsConfig) *Tools {
	return &Tools{cfg: cfg}
}

// ForceSync requests an immediate playlist refresh.
func (t *Tools) ForceSync() {
	t.cfg.ForceSync()
}

// SafeMode clears the cached playlist and refetches from scratch, the
// recovery path for a unit looping stale or broken content.
func (t *Tools) SafeMode() error {
	if err := t.cfg.ClearCache(); err != nil {
		return err
	}
	t.cfg.ForceSync()
	return nil
}

// ResumePlayback restarts a loop that halted after repeated clip failures.
func (t *Tools) ResumePlayback() bool {
	if t.cfg.ResumePlayback == nil {
		return false
	}
	t.cfg.ResumePlayback()
	return true
}

// PairingQR fetches the PNG for the re-pair screen.
func (t *Tools) PairingQR(ctx context.Context) ([]byte, error) {
	return t.cfg.Client.FetchPairingQR(ctx, t.cfg.Token())
}

func (t *Tools) Playlists(ctx context.Context) ([]packets.PlaylistSummary, error) {
	return t.cfg.Client.ListPlaylists(ctx, t.cfg.Token())
}

func (t *Tools) SwitchPlaylist(ctx context.Context, playlistID int) error {
	if err := t.cfg.Client.SwitchPlaylist(ctx, t.cfg.Token(), playlistID); err != nil {
		return err
	}
	t.cfg.ForceSync()
	return nil
}

func (t *Tools) RemoveVideo(ctx context.Context, videoID int) error {
	if err := t.cfg.Client.RemoveVideo(ctx, t.cfg.Token(), videoID); err != nil {
		return err
	}
	t.cfg.ForceSync()
	return nil
}

func (t *Tools) GenerateVideo(ctx context.Context, req packets.GenerateVideoRequest) (*packets.GenerateVideoResponse, error) {
	resp, err := t.cfg.Client.GenerateVideo(ctx, t.cfg.Token(), req)
	if err != nil {
		return nil, err
	}
	t.cfg.ForceSync()
	return resp, nil
}

func (t *Tools) ReportProblem(ctx context.Context, description string, diagnostics json.RawMessage) error {
	return t.cfg.Client.ReportProblem(ctx, t.cfg.Token(), description, diagnostics)
}

// OpenWifiSettings hands off to the platform hook when one is installed.
func (t *Tools) OpenWifiSettings() bool {
	if t.cfg.WifiSettings == nil {
		return false
	}
	t.cfg.WifiSettings()
	return true
}

// RequestEmergencyCall arms the two-step confirmation. The call only goes
// out if ConfirmEmergencyCall follows within the window.
func (t *Tools) RequestEmergencyCall(now time.Time) bool {
	if t.cfg.Dial == nil || t.cfg.EmergencyNumber == "" {
		return false
	}
	t.emergencyArmedAt = now
	return true
}

// ConfirmEmergencyCall places the call if a request is still armed.
func (t *Tools) ConfirmEmergencyCall(now time.Time) bool {
	if t.emergencyArmedAt.IsZero() || now.Sub(t.emergencyArmedAt) > confirmWindow {
		t.emergencyArmedAt = time.Time{}
		return false
	}
	t.emergencyArmedAt = time.Time{}
	log.Warn().Str("number", t.cfg.EmergencyNumber).Msg("placing emergency call")
	t.cfg.Dial(t.cfg.EmergencyNumber)
	return true
}

// CancelEmergencyCall disarms a pending request.
func (t *Tools) CancelEmergencyCall() {
	t.emergencyArmedAt = time.Time{}
}
