package endpoints

import (
	"context"
	"crypto/sha256"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"github.com/cyberyard-io/cyberyard/internal/db"
	"github.com/cyberyard-io/cyberyard/internal/http/api"
	"github.com/cyberyard-io/cyberyard/internal/http/api/player/packets"
	"github.com/cyberyard-io/cyberyard/internal/http/middleware"
	"github.com/cyberyard-io/cyberyard/internal/model"
	"github.com/cyberyard-io/cyberyard/internal/realtime"
	redisclient "github.com/cyberyard-io/cyberyard/internal/redis"
)

type SyncController struct {
	store db.Store
}

func newSyncController(store db.Store) *SyncController {
	return &SyncController{store: store}
}

// SyncModule mounts the device-authenticated playlist fetch. This is the
// endpoint players poll; it carries an ETag so an unchanged playlist costs a
// 304.
func SyncModule(store db.Store) api.Module {
	ctl := newSyncController(store)
	return api.ModuleFunc(func(c *api.Controller) {
		c.GET("/playlist", ctl.getPlaylist)
	})
}

// DeviceETagKey is the redis key holding the last playlist ETag served to a
// device. Mutations that affect the device delete it.
func DeviceETagKey(deviceID int) string {
	return fmt.Sprintf("device:%d:etag", deviceID)
}

// InvalidateDeviceETags drops cached ETags for every device assigned to a
// playlist and notifies them over MQTT.
func InvalidateDeviceETags(store db.Store, playlistID int) {
	devices, err := store.GetDevicesUsingPlaylist(playlistID)
	if err != nil {
		log.Error().Err(err).Int("playlist_id", playlistID).
			Msg("failed to get devices for playlist notification")
		return
	}
	if len(devices) == 0 {
		log.Debug().Int("playlist_id", playlistID).Msg("no devices assigned to playlist")
		return
	}

	for _, d := range devices {
		redisclient.Del(context.Background(), DeviceETagKey(d.ID))
		realtime.PublishDeviceEvent(d.ID, realtime.EventPlaylistUpdated)
	}

	log.Info().Int("playlist_id", playlistID).Int("affected_devices", len(devices)).
		Msg("playlist updated - invalidated device ETags")
}

// GET /api/player/playlist
func (s *SyncController) getPlaylist(c *gin.Context) {
	device, ok := middleware.GetCurrentDevice(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	// cheap path: the cached ETag lets an unchanged device skip the rebuild
	if match := c.GetHeader("If-None-Match"); match != "" {
		if cached := redisclient.Get(c, DeviceETagKey(device.ID)); cached != "" && cached == match {
			c.Header("ETag", cached)
			c.Status(http.StatusNotModified)
			return
		}
	}

	resp := packets.PlaylistResponse{
		Success:    true,
		Suspended:  device.Status == model.DeviceSuspended,
		DeviceID:   device.ID,
		DeviceName: device.Name,
		CompanyID:  device.CompanyID,
		PlaylistID: device.PlaylistID,
		Videos:     []packets.VideoItem{},
	}

	// suspended devices keep their credentials but are served no videos, so
	// reactivation is picked up on the next poll
	if !resp.Suspended && device.PlaylistID != nil {
		items, err := s.store.ListPlaylistVideosForCompany(*device.PlaylistID, device.CompanyID)
		if err != nil {
			log.Error().Err(err).Int("device_id", device.ID).Msg("[player] playlist: could not list videos")
			c.JSON(http.StatusInternalServerError, gin.H{"error": "could not load playlist"})
			return
		}
		for _, it := range items {
			if it.Video == nil {
				continue
			}
			resp.Videos = append(resp.Videos, packets.VideoItem{
				ID:         it.Video.ID,
				Title:      it.Video.Title,
				VideoURL:   it.Video.URL,
				OrderIndex: it.OrderIndex,
			})
		}
	}

	etag := computeETag(resp)
	redisclient.Set(c, DeviceETagKey(device.ID), etag, 24*time.Hour)

	if c.GetHeader("If-None-Match") == etag {
		c.Header("ETag", etag)
		c.Status(http.StatusNotModified)
		return
	}

	c.Header("ETag", etag)
	c.JSON(http.StatusOK, resp)
}

func computeETag(resp packets.PlaylistResponse) string {
	body, err := json.Marshal(resp)
	if err != nil {
		return ""
	}
	sum := sha256.Sum256(body)
	return fmt.Sprintf("%x", sum[:8])
}
