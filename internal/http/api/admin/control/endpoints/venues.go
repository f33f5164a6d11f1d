package endpoints

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"github.com/cyberyard-io/cyberyard/internal/db"
	"github.com/cyberyard-io/cyberyard/internal/http/api"
	"github.com/cyberyard-io/cyberyard/internal/http/api/admin/control/packets"
	"github.com/cyberyard-io/cyberyard/internal/model"
)

type VenueController struct {
	store db.Store
}

func newVenueController(store db.Store) *VenueController {
	return &VenueController{store: store}
}

// VenueModule mounts all authenticated /venues endpoints.
func VenueModule(store db.Store) api.Module {
	ctl := newVenueController(store)
	return api.ModuleFunc(func(c *api.Controller) {
		c.GET("/venues", api.WithUser(ctl.listVenues))
		c.POST("/venues", api.WithUser(ctl.createVenue))
		c.GET("/venues/:id", api.WithUser(ctl.getVenue))
		c.PUT("/venues/:id", api.WithUser(ctl.updateVenue))
		c.DELETE("/venues/:id", api.WithUser(ctl.deleteVenue))
	})
}

func mapVenue(v model.Venue) packets.VenueResponse {
	return packets.VenueResponse{
		ID:        v.ID,
		CompanyID: v.CompanyID,
		Name:      v.Name,
		Address:   v.Address,
		CreatedAt: v.CreatedAt.Format(time.RFC3339),
		UpdatedAt: v.UpdatedAt.Format(time.RFC3339),
	}
}

func (vc *VenueController) ownedVenue(ctx *gin.Context, user *model.User) (model.Venue, *api.APIError) {
	id, err := strconv.Atoi(ctx.Param("id"))
	if err != nil {
		return model.Venue{}, &api.APIError{Code: http.StatusBadRequest, Message: "invalid id"}
	}
	venue, err := vc.store.GetVenueByID(id)
	if err != nil {
		return model.Venue{}, &api.APIError{Code: http.StatusNotFound, Message: "venue not found"}
	}
	if !user.IsSuperAdmin() && venue.CompanyID != user.CompanyID {
		return model.Venue{}, &api.APIError{Code: http.StatusForbidden, Message: "forbidden"}
	}
	return venue, nil
}

// GET /api/admin/venues
func (vc *VenueController) listVenues(_ *gin.Context, user *model.User) (any, *api.APIError) {
	all, err := vc.store.ListVenues(listScope(user))
	if err != nil {
		log.Error().Err(err).Msg("[venue] list: could not list venues")
		return nil, &api.APIError{Code: http.StatusInternalServerError, Message: "could not list venues"}
	}

	out := make([]packets.VenueResponse, len(all))
	for i, v := range all {
		out[i] = mapVenue(v)
	}
	return out, nil
}

// POST /api/admin/venues
func (vc *VenueController) createVenue(ctx *gin.Context, user *model.User) (any, *api.APIError) {
	var req packets.CreateVenueRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		return nil, &api.APIError{Code: http.StatusBadRequest, Message: err.Error()}
	}

	venue, err := vc.store.CreateVenue(user.CompanyID, req.Name, req.Address)
	if err != nil {
		log.Error().Err(err).Msg("[venue] create: store failure")
		return nil, &api.APIError{Code: http.StatusInternalServerError, Message: "could not create venue"}
	}
	return mapVenue(venue), nil
}

// GET /api/admin/venues/:id
func (vc *VenueController) getVenue(ctx *gin.Context, user *model.User) (any, *api.APIError) {
	venue, apiErr := vc.ownedVenue(ctx, user)
	if apiErr != nil {
		return nil, apiErr
	}
	return mapVenue(venue), nil
}

// PUT /api/admin/venues/:id
func (vc *VenueController) updateVenue(ctx *gin.Context, user *model.User) (any, *api.APIError) {
	venue, apiErr := vc.ownedVenue(ctx, user)
	if apiErr != nil {
		return nil, apiErr
	}

	var req packets.UpdateVenueRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		return nil, &api.APIError{Code: http.StatusBadRequest, Message: err.Error()}
	}

	if err := vc.store.UpdateVenue(venue.ID, req.Name, req.Address); err != nil {
		return nil, &api.APIError{Code: http.StatusInternalServerError, Message: "could not update venue"}
	}

	updated, _ := vc.store.GetVenueByID(venue.ID)
	return mapVenue(updated), nil
}

// DELETE /api/admin/venues/:id
func (vc *VenueController) deleteVenue(ctx *gin.Context, user *model.User) (any, *api.APIError) {
	venue, apiErr := vc.ownedVenue(ctx, user)
	if apiErr != nil {
		return nil, apiErr
	}
	if err := vc.store.DeleteVenue(venue.ID); err != nil {
		return nil, &api.APIError{Code: http.StatusInternalServerError, Message: "could not delete venue"}
	}
	return gin.H{"deleted": venue.ID}, nil
}
