package overlay

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/cyberyard-io/cyberyard/internal/http/api/player/packets"
)

type recordingClient struct {
	switched []int
	removed  []int
	reports  []string
	qrTokens []string
}

func (r *recordingClient) FetchPairingQR(ctx context.Context, token string) ([]byte, error) {
	r.qrTokens = append(r.qrTokens, token)
	return []byte{0x89, 'P', 'N', 'G'}, nil
}

func (r *recordingClient) ListPlaylists(ctx context.Context, token string) ([]packets.PlaylistSummary, error) {
	return []packets.PlaylistSummary{{ID: 1, Name: "Default"}}, nil
}

func (r *recordingClient) SwitchPlaylist(ctx context.Context, token string, playlistID int) error {
	r.switched = append(r.switched, playlistID)
	return nil
}

func (r *recordingClient) RemoveVideo(ctx context.Context, token string, videoID int) error {
	r.removed = append(r.removed, videoID)
	return nil
}

func (r *recordingClient) GenerateVideo(ctx context.Context, token string, req packets.GenerateVideoRequest) (*packets.GenerateVideoResponse, error) {
	return &packets.GenerateVideoResponse{Success: true, VideoID: 42}, nil
}

func (r *recordingClient) ReportProblem(ctx context.Context, token, description string, diagnostics json.RawMessage) error {
	r.reports = append(r.reports, description)
	return nil
}

func newTools(client ToolClient) (*Tools, *int, *int) {
	syncs := 0
	clears := 0
	return NewTools(ToolsConfig{
		Client:     client,
		Token:      func() string { return "tok" },
		ForceSync:  func() { syncs++ },
		ClearCache: func() error { clears++; return nil },
	}), &syncs, &clears
}

func TestToolsSafeModeClearsThenSyncs(t *testing.T) {
	tools, syncs, clears := newTools(&recordingClient{})

	if err := tools.SafeMode(); err != nil {
		t.Fatalf("SafeMode: %v", err)
	}
	if *clears != 1 || *syncs != 1 {
		t.Errorf("clears=%d syncs=%d, want 1 and 1", *clears, *syncs)
	}
}

func TestToolsMutationsForceSync(t *testing.T) {
	client := &recordingClient{}
	tools, syncs, _ := newTools(client)
	ctx := context.Background()

	if err := tools.SwitchPlaylist(ctx, 7); err != nil {
		t.Fatal(err)
	}
	if err := tools.RemoveVideo(ctx, 3); err != nil {
		t.Fatal(err)
	}
	if _, err := tools.GenerateVideo(ctx, packets.GenerateVideoRequest{Title: "t", Prompt: "p", ImageURL: "u"}); err != nil {
		t.Fatal(err)
	}

	if len(client.switched) != 1 || client.switched[0] != 7 {
		t.Errorf("switched = %v", client.switched)
	}
	if len(client.removed) != 1 || client.removed[0] != 3 {
		t.Errorf("removed = %v", client.removed)
	}
	if *syncs != 3 {
		t.Errorf("syncs = %d, want one per mutation", *syncs)
	}
}

func TestToolsResumePlaybackHookOptional(t *testing.T) {
	tools, _, _ := newTools(&recordingClient{})
	if tools.ResumePlayback() {
		t.Error("no hook installed, should report unavailable")
	}

	resumed := 0
	withHook := NewTools(ToolsConfig{
		Client: &recordingClient{}, Token: func() string { return "tok" },
		ForceSync: func() {}, ClearCache: func() error { return nil },
		ResumePlayback: func() { resumed++ },
	})
	if !withHook.ResumePlayback() || resumed != 1 {
		t.Errorf("resumed = %d, want the hook invoked once", resumed)
	}
}

func TestToolsPairingQRUsesDeviceToken(t *testing.T) {
	client := &recordingClient{}
	tools, _, _ := newTools(client)

	png, err := tools.PairingQR(context.Background())
	if err != nil {
		t.Fatalf("PairingQR: %v", err)
	}
	if len(png) == 0 {
		t.Fatal("expected PNG bytes")
	}
	if len(client.qrTokens) != 1 || client.qrTokens[0] != "tok" {
		t.Errorf("qrTokens = %v, want the stored device token", client.qrTokens)
	}
}

func TestToolsWifiHookOptional(t *testing.T) {
	tools, _, _ := newTools(&recordingClient{})
	if tools.OpenWifiSettings() {
		t.Error("no hook installed, should report unavailable")
	}

	opened := false
	withHook := NewTools(ToolsConfig{
		Client: &recordingClient{}, Token: func() string { return "tok" },
		ForceSync: func() {}, ClearCache: func() error { return nil },
		WifiSettings: func() { opened = true },
	})
	if !withHook.OpenWifiSettings() || !opened {
		t.Error("hook should be invoked")
	}
}

func TestToolsEmergencyCallNeedsConfirmation(t *testing.T) {
	dialed := ""
	tools := NewTools(ToolsConfig{
		Client: &recordingClient{}, Token: func() string { return "tok" },
		ForceSync: func() {}, ClearCache: func() error { return nil },
		Dial:            func(n string) { dialed = n },
		EmergencyNumber: "911",
	})
	now := time.Now()

	// confirm without a request does nothing
	if tools.ConfirmEmergencyCall(now) {
		t.Fatal("confirmed without arming")
	}

	if !tools.RequestEmergencyCall(now) {
		t.Fatal("request should arm")
	}
	if !tools.ConfirmEmergencyCall(now.Add(2 * time.Second)) {
		t.Fatal("confirm within the window should dial")
	}
	if dialed != "911" {
		t.Errorf("dialed = %q", dialed)
	}

	// a stale confirmation is rejected
	dialed = ""
	tools.RequestEmergencyCall(now)
	if tools.ConfirmEmergencyCall(now.Add(10 * time.Second)) {
		t.Error("late confirm should not dial")
	}
	if dialed != "" {
		t.Errorf("dialed = %q after expiry", dialed)
	}

	// cancel disarms
	tools.RequestEmergencyCall(now)
	tools.CancelEmergencyCall()
	if tools.ConfirmEmergencyCall(now) {
		t.Error("canceled request should not dial")
	}
}

func TestToolsEmergencyCallUnavailableWithoutDialer(t *testing.T) {
	tools, _, _ := newTools(&recordingClient{})
	if tools.RequestEmergencyCall(time.Now()) {
		t.Error("no dialer configured, request should report unavailable")
	}
}
