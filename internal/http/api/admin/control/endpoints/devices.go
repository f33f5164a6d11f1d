package endpoints

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
	qrcode "github.com/skip2/go-qrcode"

	"github.com/cyberyard-io/cyberyard/internal/auth"
	"github.com/cyberyard-io/cyberyard/internal/db"
	"github.com/cyberyard-io/cyberyard/internal/http/api"
	"github.com/cyberyard-io/cyberyard/internal/http/api/admin/control/packets"
	playerendpoints "github.com/cyberyard-io/cyberyard/internal/http/api/player/endpoints"
	"github.com/cyberyard-io/cyberyard/internal/http/middleware"
	"github.com/cyberyard-io/cyberyard/internal/model"
	"github.com/cyberyard-io/cyberyard/internal/realtime"
	redisclient "github.com/cyberyard-io/cyberyard/internal/redis"
)

type DeviceController struct {
	store db.Store
}

func newDeviceController(store db.Store) *DeviceController {
	return &DeviceController{store: store}
}

// DeviceModule mounts all authenticated /devices endpoints.
func DeviceModule(store db.Store) api.Module {
	ctl := newDeviceController(store)
	return api.ModuleFunc(func(c *api.Controller) {
		c.GET("/devices", api.WithUser(ctl.listDevices))
		c.POST("/devices", api.WithUser(ctl.createDevice))
		c.GET("/devices/:id", api.WithUser(ctl.getDevice))
		c.PUT("/devices/:id", api.WithUser(ctl.updateDevice))
		c.DELETE("/devices/:id", api.WithUser(ctl.deleteDevice))

		// lifecycle
		c.POST("/devices/:id/suspend", api.WithUser(ctl.suspendDevice))
		c.POST("/devices/:id/resume", api.WithUser(ctl.resumeDevice))
		c.POST("/devices/:id/retire", api.WithUser(ctl.retireDevice))
		c.POST("/devices/:id/unpair", api.WithUser(ctl.unpairDevice))

		// assignment
		c.POST("/devices/:id/playlist", api.WithUser(ctl.assignPlaylist))

		c.GET("/devices/:id/pairing-qr", ctl.pairingQR)
	})
}

func mapDevice(d model.Device) packets.DeviceResponse {
	return packets.DeviceResponse{
		ID:               d.ID,
		CompanyID:        d.CompanyID,
		VenueID:          d.VenueID,
		Name:             d.Name,
		PairingCode:      d.PairingCode,
		Status:           string(d.Status),
		PlaylistID:       d.PlaylistID,
		LastSeenAt:       d.LastSeenAt,
		LastBatteryLevel: d.LastBatteryLevel,
		CreatedAt:        d.CreatedAt.Format(time.RFC3339),
		UpdatedAt:        d.UpdatedAt.Format(time.RFC3339),
	}
}

// ownedDevice loads a device and enforces company scoping.
func (d *DeviceController) ownedDevice(ctx *gin.Context, user *model.User) (model.Device, *api.APIError) {
	id, err := strconv.Atoi(ctx.Param("id"))
	if err != nil {
		return model.Device{}, &api.APIError{Code: http.StatusBadRequest, Message: "invalid id"}
	}
	device, err := d.store.GetDeviceByID(id)
	if err != nil {
		return model.Device{}, &api.APIError{Code: http.StatusNotFound, Message: "device not found"}
	}
	if !user.IsSuperAdmin() && device.CompanyID != user.CompanyID {
		return model.Device{}, &api.APIError{Code: http.StatusForbidden, Message: "forbidden"}
	}
	return device, nil
}

// listScope is the company filter for list endpoints: super admins see every
// company's rows, signalled to the store as company 0.
func listScope(user *model.User) int {
	if user.IsSuperAdmin() {
		return 0
	}
	return user.CompanyID
}

// GET /api/admin/devices
func (d *DeviceController) listDevices(_ *gin.Context, user *model.User) (any, *api.APIError) {
	all, err := d.store.ListDevices(listScope(user))
	if err != nil {
		log.Error().Err(err).Msg("[device] list: could not list devices")
		return nil, &api.APIError{Code: http.StatusInternalServerError, Message: "could not list devices"}
	}

	out := make([]packets.DeviceResponse, len(all))
	for i, dev := range all {
		out[i] = mapDevice(dev)
	}
	return out, nil
}

// POST /api/admin/devices
func (d *DeviceController) createDevice(ctx *gin.Context, user *model.User) (any, *api.APIError) {
	var req packets.CreateDeviceRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		return nil, &api.APIError{Code: http.StatusBadRequest, Message: err.Error()}
	}

	pairingCode, err := auth.GeneratePairingCode()
	if err != nil {
		log.Error().Err(err).Msg("[device] create: code generation failed")
		return nil, &api.APIError{Code: http.StatusInternalServerError, Message: "could not create device"}
	}
	pin, err := auth.GeneratePIN()
	if err != nil {
		log.Error().Err(err).Msg("[device] create: pin generation failed")
		return nil, &api.APIError{Code: http.StatusInternalServerError, Message: "could not create device"}
	}
	pinHash, err := middleware.HashPassword(pin)
	if err != nil {
		log.Error().Err(err).Msg("[device] create: pin hash failed")
		return nil, &api.APIError{Code: http.StatusInternalServerError, Message: "could not create device"}
	}

	device, err := d.store.CreateDevice(user.CompanyID, req.VenueID, req.Name, pairingCode, auth.GeneratePairingToken(), pinHash)
	if err != nil {
		log.Error().Err(err).Msg("[device] create: store failure")
		return nil, &api.APIError{Code: http.StatusInternalServerError, Message: "could not create device"}
	}

	// the PIN only exists hashed from here on; return it once
	return packets.CreatedDeviceResponse{DeviceResponse: mapDevice(device), AdminPIN: pin}, nil
}

// GET /api/admin/devices/:id
func (d *DeviceController) getDevice(ctx *gin.Context, user *model.User) (any, *api.APIError) {
	device, apiErr := d.ownedDevice(ctx, user)
	if apiErr != nil {
		return nil, apiErr
	}
	return mapDevice(device), nil
}

// PUT /api/admin/devices/:id
func (d *DeviceController) updateDevice(ctx *gin.Context, user *model.User) (any, *api.APIError) {
	device, apiErr := d.ownedDevice(ctx, user)
	if apiErr != nil {
		return nil, apiErr
	}

	var req packets.UpdateDeviceRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		return nil, &api.APIError{Code: http.StatusBadRequest, Message: err.Error()}
	}

	if err := d.store.UpdateDevice(device.ID, req.Name, req.VenueID); err != nil {
		return nil, &api.APIError{Code: http.StatusInternalServerError, Message: "could not update device"}
	}

	updated, _ := d.store.GetDeviceByID(device.ID)
	return mapDevice(updated), nil
}

// DELETE /api/admin/devices/:id
func (d *DeviceController) deleteDevice(ctx *gin.Context, user *model.User) (any, *api.APIError) {
	device, apiErr := d.ownedDevice(ctx, user)
	if apiErr != nil {
		return nil, apiErr
	}
	if err := d.store.DeleteDevice(device.ID); err != nil {
		return nil, &api.APIError{Code: http.StatusInternalServerError, Message: "could not delete device"}
	}
	return gin.H{"deleted": device.ID}, nil
}

func (d *DeviceController) setStatus(ctx *gin.Context, user *model.User, from, to model.DeviceStatus, event string) (any, *api.APIError) {
	device, apiErr := d.ownedDevice(ctx, user)
	if apiErr != nil {
		return nil, apiErr
	}
	if device.Status != from {
		return nil, &api.APIError{Code: http.StatusConflict, Message: "device is " + string(device.Status)}
	}

	if err := d.store.SetDeviceStatus(device.ID, to); err != nil {
		return nil, &api.APIError{Code: http.StatusInternalServerError, Message: "could not update device status"}
	}

	redisclient.Del(context.Background(), playerendpoints.DeviceETagKey(device.ID))
	realtime.PublishDeviceEvent(device.ID, event)

	updated, _ := d.store.GetDeviceByID(device.ID)
	return mapDevice(updated), nil
}

// POST /api/admin/devices/:id/suspend
func (d *DeviceController) suspendDevice(ctx *gin.Context, user *model.User) (any, *api.APIError) {
	return d.setStatus(ctx, user, model.DeviceActive, model.DeviceSuspended, realtime.EventSuspended)
}

// POST /api/admin/devices/:id/resume
func (d *DeviceController) resumeDevice(ctx *gin.Context, user *model.User) (any, *api.APIError) {
	return d.setStatus(ctx, user, model.DeviceSuspended, model.DeviceActive, realtime.EventResumed)
}

// POST /api/admin/devices/:id/retire
func (d *DeviceController) retireDevice(ctx *gin.Context, user *model.User) (any, *api.APIError) {
	device, apiErr := d.ownedDevice(ctx, user)
	if apiErr != nil {
		return nil, apiErr
	}

	if err := d.store.RetireDevice(device.ID); err != nil {
		return nil, &api.APIError{Code: http.StatusInternalServerError, Message: "could not retire device"}
	}

	redisclient.Del(context.Background(), playerendpoints.DeviceETagKey(device.ID))
	realtime.PublishDeviceEvent(device.ID, realtime.EventUnpaired)

	updated, _ := d.store.GetDeviceByID(device.ID)
	return mapDevice(updated), nil
}

// POST /api/admin/devices/:id/unpair
//
// Clears the device's credentials and rotates its pairing code and token so
// the same physical unit can be paired again.
func (d *DeviceController) unpairDevice(ctx *gin.Context, user *model.User) (any, *api.APIError) {
	device, apiErr := d.ownedDevice(ctx, user)
	if apiErr != nil {
		return nil, apiErr
	}

	nextCode, err := auth.GeneratePairingCode()
	if err != nil {
		return nil, &api.APIError{Code: http.StatusInternalServerError, Message: "could not unpair device"}
	}

	if err := d.store.UnpairDevice(device.ID, nextCode, auth.GeneratePairingToken()); err != nil {
		return nil, &api.APIError{Code: http.StatusInternalServerError, Message: "could not unpair device"}
	}

	redisclient.Del(context.Background(), playerendpoints.DeviceETagKey(device.ID))
	realtime.PublishDeviceEvent(device.ID, realtime.EventUnpaired)
	log.Info().Int("device_id", device.ID).Msg("device unpaired")

	updated, _ := d.store.GetDeviceByID(device.ID)
	return mapDevice(updated), nil
}

// POST /api/admin/devices/:id/playlist
func (d *DeviceController) assignPlaylist(ctx *gin.Context, user *model.User) (any, *api.APIError) {
	device, apiErr := d.ownedDevice(ctx, user)
	if apiErr != nil {
		return nil, apiErr
	}

	var req packets.AssignPlaylistToDeviceRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		return nil, &api.APIError{Code: http.StatusBadRequest, Message: err.Error()}
	}

	if req.PlaylistID != nil {
		playlist, err := d.store.GetPlaylistByID(*req.PlaylistID)
		if err != nil {
			return nil, &api.APIError{Code: http.StatusNotFound, Message: "playlist not found"}
		}
		if !user.IsSuperAdmin() && playlist.CompanyID != user.CompanyID {
			return nil, &api.APIError{Code: http.StatusForbidden, Message: "forbidden"}
		}
	}

	if err := d.store.AssignPlaylistToDevice(device.ID, req.PlaylistID); err != nil {
		return nil, &api.APIError{Code: http.StatusInternalServerError, Message: "could not assign playlist"}
	}

	redisclient.Del(context.Background(), playerendpoints.DeviceETagKey(device.ID))
	realtime.PublishDeviceEvent(device.ID, realtime.EventPlaylistUpdated)

	updated, _ := d.store.GetDeviceByID(device.ID)
	return mapDevice(updated), nil
}

// GET /api/admin/devices/:id/pairing-qr
func (d *DeviceController) pairingQR(c *gin.Context) {
	user, ok := middleware.GetCurrentUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}
	device, apiErr := d.ownedDevice(c, user)
	if apiErr != nil {
		c.JSON(apiErr.Code, gin.H{"error": apiErr.Message})
		return
	}

	png, err := qrcode.Encode(device.PairingToken, qrcode.Medium, 256)
	if err != nil {
		log.Error().Err(err).Int("device_id", device.ID).Msg("[device] pairing-qr: encode failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not generate QR code"})
		return
	}
	c.Data(http.StatusOK, "image/png", png)
}
