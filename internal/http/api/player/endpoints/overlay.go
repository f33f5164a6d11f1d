package endpoints

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
	qrcode "github.com/skip2/go-qrcode"

	"github.com/cyberyard-io/cyberyard/internal/db"
	"github.com/cyberyard-io/cyberyard/internal/http/api"
	"github.com/cyberyard-io/cyberyard/internal/http/api/player/packets"
	"github.com/cyberyard-io/cyberyard/internal/http/middleware"
	"github.com/cyberyard-io/cyberyard/internal/model"
	"github.com/cyberyard-io/cyberyard/internal/realtime"
	redisclient "github.com/cyberyard-io/cyberyard/internal/redis"
	"github.com/cyberyard-io/cyberyard/internal/render"
)

type OverlayController struct {
	store    db.Store
	renderer *render.Client
}

func newOverlayController(store db.Store, renderer *render.Client) *OverlayController {
	return &OverlayController{store: store, renderer: renderer}
}

// OverlayModule mounts the device-authenticated endpoints backing the on-site
// admin overlay: PIN check, re-pairing QR, playlist tools, AI video creation
// and problem reports.
func OverlayModule(store db.Store, renderer *render.Client) api.Module {
	ctl := newOverlayController(store, renderer)
	return api.ModuleFunc(func(c *api.Controller) {
		c.POST("/check-pin", api.WithDevice(ctl.checkPin))
		c.GET("/pairing-qr", ctl.pairingQR)
		c.GET("/playlists", api.WithDevice(ctl.listPlaylists))
		c.POST("/playlist", api.WithDevice(ctl.switchPlaylist))
		c.DELETE("/playlist/videos/:video_id", api.WithDevice(ctl.removeVideo))
		c.POST("/generate-video", api.WithDevice(ctl.generateVideo))
		c.POST("/report-problem", api.WithDevice(ctl.reportProblem))
	})
}

// POST /api/player/check-pin
//
// Unlocks the overlay. A wrong PIN is a normal response, not a 4xx, so the
// player can re-prompt without treating it as an auth failure.
func (o *OverlayController) checkPin(ctx *gin.Context, device *model.Device) (any, *api.APIError) {
	var req packets.CheckPinRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		return nil, &api.APIError{Code: http.StatusBadRequest, Message: err.Error()}
	}

	valid := middleware.CheckPassword(device.AdminPinHash, req.Pin)
	if !valid {
		log.Info().Int("device_id", device.ID).Msg("overlay pin rejected")
	}

	return packets.CheckPinResponse{
		Success:   true,
		Valid:     valid,
		DeviceID:  device.ID,
		CompanyID: device.CompanyID,
	}, nil
}

// GET /api/player/pairing-qr
//
// Serves a PNG of the device's still-valid pairing token so on-site staff can
// re-pair the unit after a reset.
func (o *OverlayController) pairingQR(c *gin.Context) {
	device, ok := middleware.GetCurrentDevice(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	png, err := qrcode.Encode(device.PairingToken, qrcode.Medium, 256)
	if err != nil {
		log.Error().Err(err).Int("device_id", device.ID).Msg("[player] pairing-qr: encode failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not generate QR code"})
		return
	}

	c.Data(http.StatusOK, "image/png", png)
}

// GET /api/player/playlists
func (o *OverlayController) listPlaylists(ctx *gin.Context, device *model.Device) (any, *api.APIError) {
	playlists, err := o.store.ListPlaylists(device.CompanyID)
	if err != nil {
		log.Error().Err(err).Int("device_id", device.ID).Msg("[player] playlists: could not list")
		return nil, &api.APIError{Code: http.StatusInternalServerError, Message: "could not list playlists"}
	}

	out := packets.PlaylistsResponse{Playlists: []packets.PlaylistSummary{}}
	for _, p := range playlists {
		out.Playlists = append(out.Playlists, packets.PlaylistSummary{
			ID:        p.ID,
			Name:      p.Name,
			CreatedAt: p.CreatedAt.Format(time.RFC3339),
		})
	}
	return out, nil
}

// POST /api/player/playlist
func (o *OverlayController) switchPlaylist(ctx *gin.Context, device *model.Device) (any, *api.APIError) {
	var req packets.SwitchPlaylistRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		return nil, &api.APIError{Code: http.StatusBadRequest, Message: err.Error()}
	}

	playlist, err := o.store.GetPlaylistByID(req.PlaylistID)
	if err != nil {
		return nil, &api.APIError{Code: http.StatusNotFound, Message: "playlist not found"}
	}
	if playlist.CompanyID != device.CompanyID {
		return nil, &api.APIError{Code: http.StatusForbidden, Message: "playlist belongs to another company"}
	}

	if err := o.store.AssignPlaylistToDevice(device.ID, &req.PlaylistID); err != nil {
		log.Error().Err(err).Int("device_id", device.ID).Msg("[player] switch playlist: store failure")
		return nil, &api.APIError{Code: http.StatusInternalServerError, Message: "could not switch playlist"}
	}

	redisclient.Del(context.Background(), DeviceETagKey(device.ID))
	realtime.PublishDeviceEvent(device.ID, realtime.EventPlaylistUpdated)

	return packets.OKResponse{Success: true}, nil
}

// DELETE /api/player/playlist/videos/:video_id
func (o *OverlayController) removeVideo(ctx *gin.Context, device *model.Device) (any, *api.APIError) {
	videoID, err := strconv.Atoi(ctx.Param("video_id"))
	if err != nil {
		return nil, &api.APIError{Code: http.StatusBadRequest, Message: "invalid video id"}
	}
	if device.PlaylistID == nil {
		return nil, &api.APIError{Code: http.StatusNotFound, Message: "device has no playlist assigned"}
	}

	if err := o.store.RemoveVideoFromPlaylist(*device.PlaylistID, videoID); err != nil {
		log.Error().Err(err).Int("device_id", device.ID).Msg("[player] remove video: store failure")
		return nil, &api.APIError{Code: http.StatusInternalServerError, Message: "could not remove video"}
	}

	InvalidateDeviceETags(o.store, *device.PlaylistID)
	return packets.OKResponse{Success: true}, nil
}

// POST /api/player/generate-video
//
// Blocks while the external render job runs, then appends the finished clip
// to the device's playlist. Failures surface as messages for the overlay to
// toast; there is no automatic retry.
func (o *OverlayController) generateVideo(ctx *gin.Context, device *model.Device) (any, *api.APIError) {
	var req packets.GenerateVideoRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		return nil, &api.APIError{Code: http.StatusBadRequest, Message: err.Error()}
	}
	if req.ImageURL == "" && req.ImageData == "" {
		return nil, &api.APIError{Code: http.StatusBadRequest, Message: "provide image_url or image_data"}
	}

	videoURL, err := o.renderer.Render(ctx, render.Job{
		ImageURL:    req.ImageURL,
		ImageData:   req.ImageData,
		Prompt:      req.Prompt,
		OverlayText: req.OverlayText,
		Style:       req.Style,
		Duration:    req.Duration,
	})
	if err != nil {
		if errors.Is(err, render.ErrRenderTimeout) {
			return nil, &api.APIError{Code: http.StatusGatewayTimeout, Message: "video generation timed out"}
		}
		log.Error().Err(err).Int("device_id", device.ID).Msg("[player] generate video: render failed")
		return nil, &api.APIError{Code: http.StatusBadGateway, Message: "video generation failed"}
	}

	duration := req.Duration
	video, err := o.store.CreateVideo(model.Video{
		CompanyID:     device.CompanyID,
		Title:         req.Title,
		URL:           videoURL,
		Source:        model.VideoSourceAIGenerated,
		AIPrompt:      &req.Prompt,
		AISourceImage: optional(req.ImageURL),
		AIStyle:       optional(req.Style),
		AIDuration:    &duration,
	})
	if err != nil {
		log.Error().Err(err).Int("device_id", device.ID).Msg("[player] generate video: could not save video")
		return nil, &api.APIError{Code: http.StatusInternalServerError, Message: "could not save generated video"}
	}

	if device.PlaylistID != nil {
		items, err := o.store.ListPlaylistVideos(*device.PlaylistID)
		if err == nil {
			if _, err := o.store.AddVideoToPlaylist(*device.PlaylistID, video.ID, len(items)); err != nil {
				log.Warn().Err(err).Int("video_id", video.ID).Msg("[player] generate video: could not append to playlist")
			} else {
				InvalidateDeviceETags(o.store, *device.PlaylistID)
			}
		}
	}

	return packets.GenerateVideoResponse{
		Success:  true,
		VideoURL: video.URL,
		VideoID:  video.ID,
	}, nil
}

// POST /api/player/report-problem
func (o *OverlayController) reportProblem(ctx *gin.Context, device *model.Device) (any, *api.APIError) {
	var req packets.ReportProblemRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		return nil, &api.APIError{Code: http.StatusBadRequest, Message: err.Error()}
	}

	log.Warn().
		Int("device_id", device.ID).
		Int("company_id", device.CompanyID).
		Str("description", req.Description).
		RawJSON("diagnostics", diagnosticsOrEmpty(req)).
		Msg("device problem report")

	return packets.OKResponse{Success: true}, nil
}

func diagnosticsOrEmpty(req packets.ReportProblemRequest) []byte {
	if len(req.Diagnostics) == 0 {
		return []byte("{}")
	}
	return req.Diagnostics
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
