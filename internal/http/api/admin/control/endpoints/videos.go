package endpoints

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"github.com/cyberyard-io/cyberyard/internal/db"
	"github.com/cyberyard-io/cyberyard/internal/http/api"
	"github.com/cyberyard-io/cyberyard/internal/http/api/admin/control/packets"
	"github.com/cyberyard-io/cyberyard/internal/model"
	"github.com/cyberyard-io/cyberyard/internal/render"
	"github.com/cyberyard-io/cyberyard/internal/storage"
)

type VideoController struct {
	store         db.Store
	storageSystem storage.Storage
	renderer      *render.Client
}

func newVideoController(store db.Store, storageSystem storage.Storage, renderer *render.Client) *VideoController {
	return &VideoController{store: store, storageSystem: storageSystem, renderer: renderer}
}

// VideoModule mounts all authenticated /videos endpoints.
func VideoModule(store db.Store, storageSystem storage.Storage, renderer *render.Client) api.Module {
	ctl := newVideoController(store, storageSystem, renderer)
	return api.ModuleFunc(func(c *api.Controller) {
		c.GET("/videos", api.WithUser(ctl.listVideos))
		c.POST("/videos", api.WithUser(ctl.createVideo))
		c.POST("/videos/upload", api.WithUser(ctl.uploadVideo))
		c.POST("/videos/generate", api.WithUser(ctl.generateVideo))
		c.GET("/videos/:id", api.WithUser(ctl.getVideo))
		c.DELETE("/videos/:id", api.WithUser(ctl.deleteVideo))
	})
}

func mapVideo(v model.Video) packets.VideoResponse {
	return packets.VideoResponse{
		ID:        v.ID,
		CompanyID: v.CompanyID,
		Title:     v.Title,
		URL:       v.URL,
		Source:    string(v.Source),
		CreatedAt: v.CreatedAt.Format(time.RFC3339),
	}
}

func (v *VideoController) ownedVideo(ctx *gin.Context, user *model.User) (model.Video, *api.APIError) {
	id, err := strconv.Atoi(ctx.Param("id"))
	if err != nil {
		return model.Video{}, &api.APIError{Code: http.StatusBadRequest, Message: "invalid id"}
	}
	video, err := v.store.GetVideoByID(id)
	if err != nil {
		return model.Video{}, &api.APIError{Code: http.StatusNotFound, Message: "video not found"}
	}
	if !user.IsSuperAdmin() && video.CompanyID != user.CompanyID {
		return model.Video{}, &api.APIError{Code: http.StatusForbidden, Message: "forbidden"}
	}
	return video, nil
}

// GET /api/admin/videos
func (v *VideoController) listVideos(_ *gin.Context, user *model.User) (any, *api.APIError) {
	all, err := v.store.ListVideos(listScope(user))
	if err != nil {
		log.Error().Err(err).Msg("[video] list: could not list videos")
		return nil, &api.APIError{Code: http.StatusInternalServerError, Message: "could not list videos"}
	}

	out := make([]packets.VideoResponse, len(all))
	for i, vid := range all {
		out[i] = mapVideo(vid)
	}
	return out, nil
}

// POST /api/admin/videos registers an already-hosted clip by URL.
func (v *VideoController) createVideo(ctx *gin.Context, user *model.User) (any, *api.APIError) {
	var req packets.CreateVideoRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		return nil, &api.APIError{Code: http.StatusBadRequest, Message: err.Error()}
	}

	video, err := v.store.CreateVideo(model.Video{
		CompanyID: user.CompanyID,
		Title:     req.Title,
		URL:       req.URL,
		Source:    model.VideoSourceManual,
	})
	if err != nil {
		log.Error().Err(err).Msg("[video] create: store failure")
		return nil, &api.APIError{Code: http.StatusInternalServerError, Message: "could not create video"}
	}
	return mapVideo(video), nil
}

// POST /api/admin/videos/upload takes a multipart file and stores it on the
// configured storage backend.
func (v *VideoController) uploadVideo(ctx *gin.Context, user *model.User) (any, *api.APIError) {
	fileHeader, err := ctx.FormFile("file")
	if err != nil {
		return nil, &api.APIError{Code: http.StatusBadRequest, Message: "missing file"}
	}
	title := ctx.PostForm("title")
	if title == "" {
		title = fileHeader.Filename
	}

	url, err := v.storageSystem.SaveFile(fileHeader, fileHeader.Filename)
	if err != nil {
		log.Error().Err(err).Msg("[video] upload: storage failure")
		return nil, &api.APIError{Code: http.StatusInternalServerError, Message: "could not store video"}
	}

	video, err := v.store.CreateVideo(model.Video{
		CompanyID: user.CompanyID,
		Title:     title,
		URL:       url,
		Source:    model.VideoSourceManual,
	})
	if err != nil {
		log.Error().Err(err).Msg("[video] upload: store failure")
		return nil, &api.APIError{Code: http.StatusInternalServerError, Message: "could not create video"}
	}
	return mapVideo(video), nil
}

// POST /api/admin/videos/generate runs the external render job with the
// user's JWT session, the dashboard counterpart of the overlay flow.
func (v *VideoController) generateVideo(ctx *gin.Context, user *model.User) (any, *api.APIError) {
	var req packets.GenerateVideoRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		return nil, &api.APIError{Code: http.StatusBadRequest, Message: err.Error()}
	}
	if req.ImageURL == "" && req.ImageData == "" {
		return nil, &api.APIError{Code: http.StatusBadRequest, Message: "provide image_url or image_data"}
	}

	videoURL, err := v.renderer.Render(ctx, render.Job{
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
		log.Error().Err(err).Int("user_id", user.ID).Msg("[video] generate: render failed")
		return nil, &api.APIError{Code: http.StatusBadGateway, Message: "video generation failed"}
	}

	duration := req.Duration
	video, err := v.store.CreateVideo(model.Video{
		CompanyID:     user.CompanyID,
		Title:         req.Title,
		URL:           videoURL,
		Source:        model.VideoSourceAIGenerated,
		AIPrompt:      &req.Prompt,
		AISourceImage: optionalString(req.ImageURL),
		AIStyle:       optionalString(req.Style),
		AIDuration:    &duration,
	})
	if err != nil {
		log.Error().Err(err).Msg("[video] generate: store failure")
		return nil, &api.APIError{Code: http.StatusInternalServerError, Message: "could not save generated video"}
	}
	return mapVideo(video), nil
}

// GET /api/admin/videos/:id
func (v *VideoController) getVideo(ctx *gin.Context, user *model.User) (any, *api.APIError) {
	video, apiErr := v.ownedVideo(ctx, user)
	if apiErr != nil {
		return nil, apiErr
	}
	return mapVideo(video), nil
}

// DELETE /api/admin/videos/:id
func (v *VideoController) deleteVideo(ctx *gin.Context, user *model.User) (any, *api.APIError) {
	video, apiErr := v.ownedVideo(ctx, user)
	if apiErr != nil {
		return nil, apiErr
	}
	if err := v.store.DeleteVideo(video.ID); err != nil {
		return nil, &api.APIError{Code: http.StatusInternalServerError, Message: "could not delete video"}
	}
	return gin.H{"deleted": video.ID}, nil
}

func optionalString(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
