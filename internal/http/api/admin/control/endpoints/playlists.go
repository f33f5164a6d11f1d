package endpoints

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"github.com/cyberyard-io/cyberyard/internal/db"
	"github.com/cyberyard-io/cyberyard/internal/http/api"
	"github.com/cyberyard-io/cyberyard/internal/http/api/admin/control/packets"
	playerendpoints "github.com/cyberyard-io/cyberyard/internal/http/api/player/endpoints"
	"github.com/cyberyard-io/cyberyard/internal/model"
)

type PlaylistController struct {
	store db.Store
}

func newPlaylistController(store db.Store) *PlaylistController {
	return &PlaylistController{store: store}
}

// PlaylistModule mounts all authenticated /playlists endpoints.
func PlaylistModule(store db.Store) api.Module {
	ctl := newPlaylistController(store)
	return api.ModuleFunc(func(c *api.Controller) {
		c.GET("/playlists", api.WithUser(ctl.listPlaylists))
		c.POST("/playlists", api.WithUser(ctl.createPlaylist))
		c.GET("/playlists/:id", api.WithUser(ctl.getPlaylist))
		c.PUT("/playlists/:id", api.WithUser(ctl.updatePlaylist))
		c.DELETE("/playlists/:id", api.WithUser(ctl.deletePlaylist))

		c.POST("/playlists/:id/videos", api.WithUser(ctl.addVideo))
		c.DELETE("/playlists/:id/videos/:video_id", api.WithUser(ctl.removeVideo))
		c.PUT("/playlists/:id/videos", api.WithUser(ctl.reorderVideos))
	})
}

func mapPlaylist(pl model.Playlist) packets.PlaylistResponse {
	items := make([]packets.PlaylistVideoResponse, len(pl.Items))
	for i, it := range pl.Items {
		items[i] = packets.PlaylistVideoResponse{
			ID:         it.ID,
			VideoID:    it.VideoID,
			OrderIndex: it.OrderIndex,
		}
		if it.Video != nil {
			v := mapVideo(*it.Video)
			items[i].Video = &v
		}
	}

	return packets.PlaylistResponse{
		ID:        pl.ID,
		CompanyID: pl.CompanyID,
		Name:      pl.Name,
		CreatedBy: pl.CreatedBy,
		CreatedAt: pl.CreatedAt,
		UpdatedAt: pl.UpdatedAt,
		Items:     items,
	}
}

// ownedPlaylist loads a playlist and enforces company scoping.
func (p *PlaylistController) ownedPlaylist(ctx *gin.Context, user *model.User) (model.Playlist, *api.APIError) {
	id, err := strconv.Atoi(ctx.Param("id"))
	if err != nil {
		return model.Playlist{}, &api.APIError{Code: http.StatusBadRequest, Message: "invalid id"}
	}
	pl, err := p.store.GetPlaylistByID(id)
	if err != nil {
		return model.Playlist{}, &api.APIError{Code: http.StatusNotFound, Message: "playlist not found"}
	}
	if !user.IsSuperAdmin() && pl.CompanyID != user.CompanyID {
		return model.Playlist{}, &api.APIError{Code: http.StatusForbidden, Message: "forbidden"}
	}
	return pl, nil
}

// GET /api/admin/playlists
func (p *PlaylistController) listPlaylists(_ *gin.Context, user *model.User) (any, *api.APIError) {
	all, err := p.store.ListPlaylists(listScope(user))
	if err != nil {
		log.Error().Err(err).Msg("[playlist] list: could not list playlists")
		return nil, &api.APIError{Code: http.StatusInternalServerError, Message: "could not list playlists"}
	}

	out := make([]packets.PlaylistResponse, len(all))
	for i, pl := range all {
		out[i] = mapPlaylist(pl)
	}
	return out, nil
}

// POST /api/admin/playlists
func (p *PlaylistController) createPlaylist(ctx *gin.Context, user *model.User) (any, *api.APIError) {
	var req packets.CreatePlaylistRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		log.Error().Err(err).Msg("[playlist] create: bad request")
		return nil, &api.APIError{Code: http.StatusBadRequest, Message: err.Error()}
	}

	pl, err := p.store.CreatePlaylist(user.CompanyID, req.Name, user.ID)
	if err != nil {
		log.Error().Err(err).Msg("[playlist] create: could not create playlist")
		return nil, &api.APIError{Code: http.StatusInternalServerError, Message: "could not create playlist"}
	}

	full, _ := p.store.GetPlaylistByID(pl.ID)
	return mapPlaylist(full), nil
}

// GET /api/admin/playlists/:id
func (p *PlaylistController) getPlaylist(ctx *gin.Context, user *model.User) (any, *api.APIError) {
	pl, apiErr := p.ownedPlaylist(ctx, user)
	if apiErr != nil {
		return nil, apiErr
	}
	return mapPlaylist(pl), nil
}

// PUT /api/admin/playlists/:id
func (p *PlaylistController) updatePlaylist(ctx *gin.Context, user *model.User) (any, *api.APIError) {
	pl, apiErr := p.ownedPlaylist(ctx, user)
	if apiErr != nil {
		return nil, apiErr
	}

	var req packets.UpdatePlaylistRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		return nil, &api.APIError{Code: http.StatusBadRequest, Message: err.Error()}
	}

	if err := p.store.UpdatePlaylist(pl.ID, req.Name); err != nil {
		return nil, &api.APIError{Code: http.StatusInternalServerError, Message: "could not update playlist"}
	}

	full, _ := p.store.GetPlaylistByID(pl.ID)
	return mapPlaylist(full), nil
}

// DELETE /api/admin/playlists/:id
func (p *PlaylistController) deletePlaylist(ctx *gin.Context, user *model.User) (any, *api.APIError) {
	pl, apiErr := p.ownedPlaylist(ctx, user)
	if apiErr != nil {
		return nil, apiErr
	}

	playerendpoints.InvalidateDeviceETags(p.store, pl.ID)
	if err := p.store.DeletePlaylist(pl.ID); err != nil {
		return nil, &api.APIError{Code: http.StatusInternalServerError, Message: "could not delete playlist"}
	}
	return gin.H{"deleted": pl.ID}, nil
}

// POST /api/admin/playlists/:id/videos
func (p *PlaylistController) addVideo(ctx *gin.Context, user *model.User) (any, *api.APIError) {
	pl, apiErr := p.ownedPlaylist(ctx, user)
	if apiErr != nil {
		return nil, apiErr
	}

	var req packets.AddPlaylistVideoRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		return nil, &api.APIError{Code: http.StatusBadRequest, Message: err.Error()}
	}

	video, err := p.store.GetVideoByID(req.VideoID)
	if err != nil {
		return nil, &api.APIError{Code: http.StatusNotFound, Message: "video not found"}
	}
	if !user.IsSuperAdmin() && video.CompanyID != user.CompanyID {
		return nil, &api.APIError{Code: http.StatusForbidden, Message: "forbidden"}
	}

	orderIndex := req.OrderIndex
	if orderIndex == 0 {
		orderIndex = len(pl.Items)
	}

	pv, err := p.store.AddVideoToPlaylist(pl.ID, req.VideoID, orderIndex)
	if err != nil {
		log.Error().Err(err).Msg("[playlist] add video: store failure")
		return nil, &api.APIError{Code: http.StatusInternalServerError, Message: "could not add video"}
	}

	playerendpoints.InvalidateDeviceETags(p.store, pl.ID)
	return packets.PlaylistVideoResponse{ID: pv.ID, VideoID: pv.VideoID, OrderIndex: pv.OrderIndex}, nil
}

// DELETE /api/admin/playlists/:id/videos/:video_id
func (p *PlaylistController) removeVideo(ctx *gin.Context, user *model.User) (any, *api.APIError) {
	pl, apiErr := p.ownedPlaylist(ctx, user)
	if apiErr != nil {
		return nil, apiErr
	}

	videoID, err := strconv.Atoi(ctx.Param("video_id"))
	if err != nil {
		return nil, &api.APIError{Code: http.StatusBadRequest, Message: "invalid video id"}
	}

	if err := p.store.RemoveVideoFromPlaylist(pl.ID, videoID); err != nil {
		return nil, &api.APIError{Code: http.StatusInternalServerError, Message: "could not remove video"}
	}

	playerendpoints.InvalidateDeviceETags(p.store, pl.ID)
	return gin.H{"removed": videoID}, nil
}

// PUT /api/admin/playlists/:id/videos
func (p *PlaylistController) reorderVideos(ctx *gin.Context, user *model.User) (any, *api.APIError) {
	pl, apiErr := p.ownedPlaylist(ctx, user)
	if apiErr != nil {
		return nil, apiErr
	}

	var req packets.ReorderVideosRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		return nil, &api.APIError{Code: http.StatusBadRequest, Message: err.Error()}
	}

	if err := p.store.ReorderPlaylistVideos(pl.ID, req.VideoIDs); err != nil {
		log.Error().Err(err).Msg("[playlist] reorder: store failure")
		return nil, &api.APIError{Code: http.StatusInternalServerError, Message: "could not reorder videos"}
	}

	playerendpoints.InvalidateDeviceETags(p.store, pl.ID)
	full, _ := p.store.GetPlaylistByID(pl.ID)
	return mapPlaylist(full), nil
}
