package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/cyberyard-io/cyberyard/internal/http/api/player/packets"
	"github.com/cyberyard-io/cyberyard/internal/http/middleware"
)

var (
	// ErrPairingInvalid means the code or QR token was rejected, either
	// because it is unknown or because another device already consumed it.
	ErrPairingInvalid = errors.New("pairing code invalid or already used")

	// ErrAuthExpired means the server no longer recognizes our auth token.
	// The caller must clear credentials and return to pairing.
	ErrAuthExpired = errors.New("device credentials rejected")

	// ErrNetworkUnavailable wraps transport-level failures so callers can
	// distinguish "offline" from a real server rejection.
	ErrNetworkUnavailable = errors.New("server unreachable")
)

// Telemetry is the optional device state stamped onto authenticated requests.
type Telemetry struct {
	BatteryLevel *int
	ScreenWidth  *int
	ScreenHeight *int
}

// PlaylistResult is a playlist fetch outcome. NotModified means the server
// confirmed our cached list is still current and sent no body.
type PlaylistResult struct {
	Playlist    *packets.PlaylistResponse
	ETag        string
	NotModified bool
}

// Client talks to the player endpoints of a cyberyard server.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

func NewClient(baseURL string) *Client {
	return &Client{
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: 15 * time.Second},
	}
}

// Pair exchanges a pairing credential for a long-lived auth token. A
// 6-character input is sent as a typed code, anything longer as a QR token.
func (c *Client) Pair(ctx context.Context, input string) (*packets.PairResponse, error) {
	req := packets.PairRequest{}
	if len(input) == 6 {
		req.DeviceCode = input
	} else {
		req.PairingQRToken = input
	}

	var out packets.PairResponse
	status, err := c.postJSON(ctx, "/api/player/pair", "", req, &out)
	if err != nil {
		return nil, err
	}
	if status == http.StatusBadRequest {
		return nil, ErrPairingInvalid
	}
	if status != http.StatusOK {
		return nil, fmt.Errorf("pairing failed with status %d", status)
	}
	return &out, nil
}

// FetchPlaylist retrieves the device's current playlist. Passing the ETag from
// a previous fetch lets the server answer 304 when nothing changed.
func (c *Client) FetchPlaylist(ctx context.Context, token, etag string, t Telemetry) (*PlaylistResult, error) {
	req, err := c.newRequest(ctx, http.MethodGet, "/api/player/playlist", token, nil)
	if err != nil {
		return nil, err
	}
	if etag != "" {
		req.Header.Set("If-None-Match", etag)
	}
	setTelemetryHeaders(req, t)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrNetworkUnavailable, err)
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusNotModified:
		return &PlaylistResult{ETag: resp.Header.Get("ETag"), NotModified: true}, nil
	case http.StatusUnauthorized:
		return nil, ErrAuthExpired
	case http.StatusOK:
		var out packets.PlaylistResponse
		if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
			return nil, fmt.Errorf("failed to decode playlist: %w", err)
		}
		return &PlaylistResult{Playlist: &out, ETag: resp.Header.Get("ETag")}, nil
	default:
		return nil, fmt.Errorf("playlist fetch failed with status %d", resp.StatusCode)
	}
}

// FetchPairingQR retrieves the PNG of the device's current pairing token,
// shown by the admin overlay so on-site staff can re-pair the unit.
func (c *Client) FetchPairingQR(ctx context.Context, token string) ([]byte, error) {
	req, err := c.newRequest(ctx, http.MethodGet, "/api/player/pairing-qr", token, nil)
	if err != nil {
		return nil, err
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrNetworkUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusUnauthorized {
		return nil, ErrAuthExpired
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("pairing QR fetch failed with status %d", resp.StatusCode)
	}

	png, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read pairing QR: %w", err)
	}
	return png, nil
}

// CheckPIN verifies an admin PIN. A wrong PIN is a valid=false result, not an
// error, so callers can show "incorrect PIN" without inspecting errors.
func (c *Client) CheckPIN(ctx context.Context, token, pin string) (bool, error) {
	var out packets.CheckPinResponse
	status, err := c.postJSON(ctx, "/api/player/check-pin", token, packets.CheckPinRequest{Pin: pin}, &out)
	if err != nil {
		return false, err
	}
	if status == http.StatusUnauthorized {
		return false, ErrAuthExpired
	}
	if status != http.StatusOK {
		return false, fmt.Errorf("pin check failed with status %d", status)
	}
	return out.Valid, nil
}

// ListPlaylists returns the playlists of the device's company, for the admin
// overlay's playlist picker.
func (c *Client) ListPlaylists(ctx context.Context, token string) ([]packets.PlaylistSummary, error) {
	req, err := c.newRequest(ctx, http.MethodGet, "/api/player/playlists", token, nil)
	if err != nil {
		return nil, err
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrNetworkUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusUnauthorized {
		return nil, ErrAuthExpired
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("playlist listing failed with status %d", resp.StatusCode)
	}

	var out packets.PlaylistsResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("failed to decode playlists: %w", err)
	}
	return out.Playlists, nil
}

// SwitchPlaylist assigns a different playlist to this device.
func (c *Client) SwitchPlaylist(ctx context.Context, token string, playlistID int) error {
	return c.simplePost(ctx, "/api/player/playlist", token, packets.SwitchPlaylistRequest{PlaylistID: playlistID})
}

// RemoveVideo detaches a video from the device's current playlist.
func (c *Client) RemoveVideo(ctx context.Context, token string, videoID int) error {
	req, err := c.newRequest(ctx, http.MethodDelete, fmt.Sprintf("/api/player/playlist/videos/%d", videoID), token, nil)
	if err != nil {
		return err
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrNetworkUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusUnauthorized {
		return ErrAuthExpired
	}
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("video removal failed with status %d", resp.StatusCode)
	}
	return nil
}

// GenerateVideo asks the server to render a new AI video and append it to the
// device's playlist. Rendering is slow, so the per-call timeout is stretched.
func (c *Client) GenerateVideo(ctx context.Context, token string, req packets.GenerateVideoRequest) (*packets.GenerateVideoResponse, error) {
	body, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	httpReq, err := c.newRequest(ctx, http.MethodPost, "/api/player/generate-video", token, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	httpReq.Header.Set("Content-Type", "application/json")

	long := &http.Client{Timeout: 5 * time.Minute}
	resp, err := long.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrNetworkUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusUnauthorized {
		return nil, ErrAuthExpired
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("video generation failed with status %d", resp.StatusCode)
	}

	var out packets.GenerateVideoResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("failed to decode generation result: %w", err)
	}
	return &out, nil
}

// ReportProblem sends a free-text problem report with optional diagnostics.
func (c *Client) ReportProblem(ctx context.Context, token, description string, diagnostics json.RawMessage) error {
	return c.simplePost(ctx, "/api/player/report-problem", token, packets.ReportProblemRequest{
		Description: description,
		Diagnostics: diagnostics,
	})
}

func (c *Client) newRequest(ctx context.Context, method, path, token string, body io.Reader) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}
	if token != "" {
		req.Header.Set(middleware.HeaderDeviceToken, token)
	}
	return req, nil
}

func (c *Client) postJSON(ctx context.Context, path, token string, in, out any) (int, error) {
	body, err := json.Marshal(in)
	if err != nil {
		return 0, fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := c.newRequest(ctx, http.MethodPost, path, token, bytes.NewReader(body))
	if err != nil {
		return 0, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrNetworkUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusOK && out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return resp.StatusCode, fmt.Errorf("failed to decode response: %w", err)
		}
	}
	return resp.StatusCode, nil
}

func (c *Client) simplePost(ctx context.Context, path, token string, in any) error {
	status, err := c.postJSON(ctx, path, token, in, nil)
	if err != nil {
		return err
	}
	if status == http.StatusUnauthorized {
		return ErrAuthExpired
	}
	if status != http.StatusOK {
		return fmt.Errorf("request to %s failed with status %d", path, status)
	}
	return nil
}

func setTelemetryHeaders(req *http.Request, t Telemetry) {
	if t.BatteryLevel != nil {
		req.Header.Set(middleware.HeaderBatteryLevel, strconv.Itoa(*t.BatteryLevel))
	}
	if t.ScreenWidth != nil {
		req.Header.Set(middleware.HeaderScreenWidth, strconv.Itoa(*t.ScreenWidth))
	}
	if t.ScreenHeight != nil {
		req.Header.Set(middleware.HeaderScreenHeight, strconv.Itoa(*t.ScreenHeight))
	}
}
