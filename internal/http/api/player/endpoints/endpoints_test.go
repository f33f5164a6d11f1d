package endpoints_test

import (
	"bytes"
	"database/sql"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"sync"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cyberyard-io/cyberyard/internal/db"
	"github.com/cyberyard-io/cyberyard/internal/http/api"
	"github.com/cyberyard-io/cyberyard/internal/http/api/player/endpoints"
	"github.com/cyberyard-io/cyberyard/internal/http/api/player/packets"
	"github.com/cyberyard-io/cyberyard/internal/http/middleware"
	"github.com/cyberyard-io/cyberyard/internal/model"
	"github.com/cyberyard-io/cyberyard/internal/redis"
)

// TestMain runs once for the whole package.
func TestMain(m *testing.M) {
	gin.SetMode(gin.TestMode)

	// the ETag cache is advisory; an unreachable redis degrades to rebuilds
	redis.InitRedis("localhost:6379", "", "")

	os.Exit(m.Run())
}

// fakeStore implements the slice of db.Store the player endpoints touch.
// Unimplemented methods panic through the embedded nil interface.
type fakeStore struct {
	db.Store

	mu        sync.Mutex
	devices   []*model.Device
	playlists []model.Playlist
	items     map[int][]model.PlaylistVideo // playlist id -> rows

	lastBattery *int
}

func (f *fakeStore) PairDeviceByCode(code, authToken, nextCode, nextToken string) (model.Device, error) {
	return f.pair(func(d *model.Device) bool { return d.PairingCode == code }, authToken, nextCode, nextToken)
}

func (f *fakeStore) PairDeviceByToken(pairingToken, authToken, nextCode, nextToken string) (model.Device, error) {
	return f.pair(func(d *model.Device) bool { return d.PairingToken == pairingToken }, authToken, nextCode, nextToken)
}

func (f *fakeStore) pair(match func(*model.Device) bool, authToken, nextCode, nextToken string) (model.Device, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, d := range f.devices {
		if match(d) && d.Status == model.DeviceUnpaired {
			d.AuthToken = &authToken
			d.PairingCode = nextCode
			d.PairingToken = nextToken
			d.Status = model.DeviceActive
			return *d, nil
		}
	}
	return model.Device{}, sql.ErrNoRows
}

func (f *fakeStore) GetDeviceByAuthToken(token string) (model.Device, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, d := range f.devices {
		if d.AuthToken != nil && *d.AuthToken == token {
			return *d, nil
		}
	}
	return model.Device{}, sql.ErrNoRows
}

func (f *fakeStore) TouchDevice(id int, batteryLevel, screenWidth, screenHeight *int) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.lastBattery = batteryLevel
	return nil
}

func (f *fakeStore) ListPlaylists(companyID int) ([]model.Playlist, error) {
	var out []model.Playlist
	for _, p := range f.playlists {
		if p.CompanyID == companyID {
			out = append(out, p)
		}
	}
	return out, nil
}

func (f *fakeStore) GetPlaylistByID(id int) (model.Playlist, error) {
	for _, p := range f.playlists {
		if p.ID == id {
			return p, nil
		}
	}
	return model.Playlist{}, sql.ErrNoRows
}

func (f *fakeStore) ListPlaylistVideosForCompany(playlistID, companyID int) ([]model.PlaylistVideo, error) {
	var out []model.PlaylistVideo
	for _, it := range f.items[playlistID] {
		if it.Video != nil && it.Video.CompanyID == companyID {
			out = append(out, it)
		}
	}
	return out, nil
}

func intPtr(v int) *int { return &v }

func video(id, companyID int, title string) *model.Video {
	return &model.Video{ID: id, CompanyID: companyID, Title: title, URL: "https://cdn.example.com/v.mp4", Source: model.VideoSourceManual}
}

// newFixture builds a store with one unpaired and one paired device plus a
// two-video playlist, and mounts the player routes the way the server does.
func newFixture(t *testing.T) (*fakeStore, *gin.Engine) {
	t.Helper()

	pinHash, err := middleware.HashPassword("4821")
	require.NoError(t, err)

	activeToken := "active-device-token"
	store := &fakeStore{
		devices: []*model.Device{
			{
				ID: 1, CompanyID: 10, Name: "Yard Gate", Status: model.DeviceUnpaired,
				PairingCode: "AB12CD", PairingToken: "qr-token-fresh", AdminPinHash: pinHash,
			},
			{
				ID: 2, CompanyID: 10, Name: "Lobby Screen", Status: model.DeviceActive,
				PairingCode: "ZZ99ZZ", PairingToken: "qr-token-lobby", AdminPinHash: pinHash,
				AuthToken: &activeToken, PlaylistID: intPtr(100),
			},
		},
		playlists: []model.Playlist{
			{ID: 100, CompanyID: 10, Name: "Default Loop"},
			{ID: 200, CompanyID: 99, Name: "Someone Else's"},
		},
		items: map[int][]model.PlaylistVideo{
			100: {
				{ID: 1, PlaylistID: 100, VideoID: 11, OrderIndex: 0, Video: video(11, 10, "Opening")},
				{ID: 2, PlaylistID: 100, VideoID: 12, OrderIndex: 1, Video: video(12, 10, "Promo")},
				{ID: 3, PlaylistID: 100, VideoID: 13, OrderIndex: 2, Video: video(13, 99, "Foreign")},
			},
		},
	}

	r := gin.New()
	api.MountGroup(r, api.GroupConfig{Prefix: "/api/player", Store: store},
		endpoints.PairingModule(store))
	api.MountGroup(r, api.GroupConfig{Prefix: "/api/player", DeviceAuth: true, Store: store},
		endpoints.SyncModule(store),
		endpoints.OverlayModule(store, nil))
	return store, r
}

func doJSON(r *gin.Engine, method, path, token string, payload any) *httptest.ResponseRecorder {
	var body *bytes.Reader
	if payload != nil {
		b, _ := json.Marshal(payload)
		body = bytes.NewReader(b)
	} else {
		body = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, body)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set(middleware.HeaderDeviceToken, token)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestPair_SuccessWithCode(t *testing.T) {
	_, r := newFixture(t)

	w := doJSON(r, http.MethodPost, "/api/player/pair", "", packets.PairRequest{DeviceCode: "ab12cd"})
	assert.Equal(t, http.StatusOK, w.Code)

	var resp packets.PairResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.True(t, resp.Success)
	assert.Equal(t, 1, resp.DeviceID)
	assert.Equal(t, 10, resp.CompanyID)
	assert.GreaterOrEqual(t, len(resp.AuthToken), 64, "auth token should not be guessable")
}

func TestPair_CodeIsSingleUse(t *testing.T) {
	_, r := newFixture(t)

	first := doJSON(r, http.MethodPost, "/api/player/pair", "", packets.PairRequest{DeviceCode: "AB12CD"})
	require.Equal(t, http.StatusOK, first.Code)

	second := doJSON(r, http.MethodPost, "/api/player/pair", "", packets.PairRequest{DeviceCode: "AB12CD"})
	assert.Equal(t, http.StatusBadRequest, second.Code)
}

func TestPair_QRTokenRotatesAfterUse(t *testing.T) {
	store, r := newFixture(t)

	w := doJSON(r, http.MethodPost, "/api/player/pair", "", packets.PairRequest{PairingQRToken: "qr-token-fresh"})
	require.Equal(t, http.StatusOK, w.Code)

	store.mu.Lock()
	rotated := store.devices[0].PairingToken
	store.mu.Unlock()
	assert.NotEqual(t, "qr-token-fresh", rotated, "consumed QR token must be replaced")
}

func TestPair_RejectsUnknownCode(t *testing.T) {
	_, r := newFixture(t)

	w := doJSON(r, http.MethodPost, "/api/player/pair", "", packets.PairRequest{DeviceCode: "NOPE11"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestPair_RejectsBothOrNeitherCredential(t *testing.T) {
	_, r := newFixture(t)

	w := doJSON(r, http.MethodPost, "/api/player/pair", "", packets.PairRequest{})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = doJSON(r, http.MethodPost, "/api/player/pair", "", packets.PairRequest{DeviceCode: "AB12CD", PairingQRToken: "qr-token-fresh"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestPlaylist_RequiresDeviceToken(t *testing.T) {
	_, r := newFixture(t)

	w := doJSON(r, http.MethodGet, "/api/player/playlist", "", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = doJSON(r, http.MethodGet, "/api/player/playlist", "no-such-token", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestPlaylist_ServesOrderedCompanyVideos(t *testing.T) {
	_, r := newFixture(t)

	w := doJSON(r, http.MethodGet, "/api/player/playlist", "active-device-token", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.NotEmpty(t, w.Header().Get("ETag"))

	var resp packets.PlaylistResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.True(t, resp.Success)
	assert.False(t, resp.Suspended)
	// the foreign company's video must be filtered out
	require.Len(t, resp.Videos, 2)
	assert.Equal(t, "Opening", resp.Videos[0].Title)
	assert.Equal(t, "Promo", resp.Videos[1].Title)
}

func TestPlaylist_ETagRoundTripReturns304(t *testing.T) {
	_, r := newFixture(t)

	first := doJSON(r, http.MethodGet, "/api/player/playlist", "active-device-token", nil)
	require.Equal(t, http.StatusOK, first.Code)
	etag := first.Header().Get("ETag")
	require.NotEmpty(t, etag)

	req := httptest.NewRequest(http.MethodGet, "/api/player/playlist", nil)
	req.Header.Set(middleware.HeaderDeviceToken, "active-device-token")
	req.Header.Set("If-None-Match", etag)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNotModified, w.Code)
	assert.Empty(t, w.Body.String())
}

func TestPlaylist_SuspendedDeviceGetsEmptyList(t *testing.T) {
	store, r := newFixture(t)
	store.devices[1].Status = model.DeviceSuspended

	w := doJSON(r, http.MethodGet, "/api/player/playlist", "active-device-token", nil)
	require.Equal(t, http.StatusOK, w.Code, "suspension is not an auth failure")

	var resp packets.PlaylistResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.True(t, resp.Suspended)
	assert.Empty(t, resp.Videos)
}

func TestPlaylist_RetiredDeviceGets401(t *testing.T) {
	store, r := newFixture(t)
	store.devices[1].Status = model.DeviceRetired

	w := doJSON(r, http.MethodGet, "/api/player/playlist", "active-device-token", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestPlaylist_TelemetryHeadersAreStamped(t *testing.T) {
	store, r := newFixture(t)

	req := httptest.NewRequest(http.MethodGet, "/api/player/playlist", nil)
	req.Header.Set(middleware.HeaderDeviceToken, "active-device-token")
	req.Header.Set(middleware.HeaderBatteryLevel, "73")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	store.mu.Lock()
	defer store.mu.Unlock()
	require.NotNil(t, store.lastBattery)
	assert.Equal(t, 73, *store.lastBattery)
}

func TestCheckPin_ValidAndInvalid(t *testing.T) {
	_, r := newFixture(t)

	w := doJSON(r, http.MethodPost, "/api/player/check-pin", "active-device-token", packets.CheckPinRequest{Pin: "4821"})
	require.Equal(t, http.StatusOK, w.Code)
	var resp packets.CheckPinResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.True(t, resp.Valid)

	w = doJSON(r, http.MethodPost, "/api/player/check-pin", "active-device-token", packets.CheckPinRequest{Pin: "0000"})
	require.Equal(t, http.StatusOK, w.Code, "a wrong pin is not an HTTP error")
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.False(t, resp.Valid)
}

func TestListPlaylists_ScopedToCompany(t *testing.T) {
	_, r := newFixture(t)

	w := doJSON(r, http.MethodGet, "/api/player/playlists", "active-device-token", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var resp packets.PlaylistsResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.Len(t, resp.Playlists, 1)
	assert.Equal(t, "Default Loop", resp.Playlists[0].Name)
}

func TestSwitchPlaylist_RejectsForeignPlaylist(t *testing.T) {
	_, r := newFixture(t)

	w := doJSON(r, http.MethodPost, "/api/player/playlist", "active-device-token", packets.SwitchPlaylistRequest{PlaylistID: 200})
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = doJSON(r, http.MethodPost, "/api/player/playlist", "active-device-token", packets.SwitchPlaylistRequest{PlaylistID: 12345})
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestPairingQR_ServesPNG(t *testing.T) {
	_, r := newFixture(t)

	w := doJSON(r, http.MethodGet, "/api/player/pairing-qr", "active-device-token", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "image/png", w.Header().Get("Content-Type"))
	assert.NotEmpty(t, w.Body.Bytes())
}
