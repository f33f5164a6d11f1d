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

type CompanyController struct {
	store db.Store
}

func newCompanyController(store db.Store) *CompanyController {
	return &CompanyController{store: store}
}

// CompanyModule mounts the /companies endpoints. Listing and status
// transitions are super-admin only; regular admins can read their own
// company.
func CompanyModule(store db.Store) api.Module {
	ctl := newCompanyController(store)
	return api.ModuleFunc(func(c *api.Controller) {
		c.GET("/companies", api.WithUser(ctl.listCompanies))
		c.POST("/companies", api.WithUser(ctl.createCompany))
		c.GET("/companies/:id", api.WithUser(ctl.getCompany))
		c.PUT("/companies/:id/status", api.WithUser(ctl.updateStatus))
		c.DELETE("/companies/:id", api.WithUser(ctl.deleteCompany))
	})
}

func mapCompany(c model.Company) packets.CompanyResponse {
	return packets.CompanyResponse{
		ID:        c.ID,
		Name:      c.Name,
		Status:    string(c.Status),
		StartsAt:  c.StartsAt,
		EndsAt:    c.EndsAt,
		CreatedAt: c.CreatedAt.Format(time.RFC3339),
		UpdatedAt: c.UpdatedAt.Format(time.RFC3339),
	}
}

// GET /api/admin/companies
func (cc *CompanyController) listCompanies(_ *gin.Context, user *model.User) (any, *api.APIError) {
	if !user.IsSuperAdmin() {
		return nil, &api.APIError{Code: http.StatusForbidden, Message: "forbidden"}
	}

	all, err := cc.store.ListCompanies()
	if err != nil {
		log.Error().Err(err).Msg("[company] list: could not list companies")
		return nil, &api.APIError{Code: http.StatusInternalServerError, Message: "could not list companies"}
	}

	out := make([]packets.CompanyResponse, len(all))
	for i, c := range all {
		out[i] = mapCompany(c)
	}
	return out, nil
}

// POST /api/admin/companies
func (cc *CompanyController) createCompany(ctx *gin.Context, user *model.User) (any, *api.APIError) {
	if !user.IsSuperAdmin() {
		return nil, &api.APIError{Code: http.StatusForbidden, Message: "forbidden"}
	}

	var req packets.CreateCompanyRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		return nil, &api.APIError{Code: http.StatusBadRequest, Message: err.Error()}
	}

	company, err := cc.store.CreateCompany(req.Name, model.CompanyPending)
	if err != nil {
		log.Error().Err(err).Msg("[company] create: store failure")
		return nil, &api.APIError{Code: http.StatusInternalServerError, Message: "could not create company"}
	}
	return mapCompany(company), nil
}

// GET /api/admin/companies/:id
func (cc *CompanyController) getCompany(ctx *gin.Context, user *model.User) (any, *api.APIError) {
	id, err := strconv.Atoi(ctx.Param("id"))
	if err != nil {
		return nil, &api.APIError{Code: http.StatusBadRequest, Message: "invalid id"}
	}
	if !user.IsSuperAdmin() && user.CompanyID != id {
		return nil, &api.APIError{Code: http.StatusForbidden, Message: "forbidden"}
	}

	company, err := cc.store.GetCompanyByID(id)
	if err != nil {
		return nil, &api.APIError{Code: http.StatusNotFound, Message: "company not found"}
	}
	return mapCompany(company), nil
}

// PUT /api/admin/companies/:id/status
func (cc *CompanyController) updateStatus(ctx *gin.Context, user *model.User) (any, *api.APIError) {
	if !user.IsSuperAdmin() {
		return nil, &api.APIError{Code: http.StatusForbidden, Message: "forbidden"}
	}

	id, err := strconv.Atoi(ctx.Param("id"))
	if err != nil {
		return nil, &api.APIError{Code: http.StatusBadRequest, Message: "invalid id"}
	}

	var req packets.UpdateCompanyStatusRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		return nil, &api.APIError{Code: http.StatusBadRequest, Message: err.Error()}
	}

	status := model.CompanyStatus(req.Status)
	if !status.Valid() {
		return nil, &api.APIError{Code: http.StatusBadRequest, Message: "invalid status"}
	}

	if err := cc.store.UpdateCompanyStatus(id, status); err != nil {
		log.Error().Err(err).Int("company_id", id).Msg("[company] update status: store failure")
		return nil, &api.APIError{Code: http.StatusInternalServerError, Message: "could not update company"}
	}

	updated, _ := cc.store.GetCompanyByID(id)
	return mapCompany(updated), nil
}

// DELETE /api/admin/companies/:id
func (cc *CompanyController) deleteCompany(ctx *gin.Context, user *model.User) (any, *api.APIError) {
	if !user.IsSuperAdmin() {
		return nil, &api.APIError{Code: http.StatusForbidden, Message: "forbidden"}
	}

	id, err := strconv.Atoi(ctx.Param("id"))
	if err != nil {
		return nil, &api.APIError{Code: http.StatusBadRequest, Message: "invalid id"}
	}

	if err := cc.store.DeleteCompany(id); err != nil {
		return nil, &api.APIError{Code: http.StatusInternalServerError, Message: "could not delete company"}
	}
	return gin.H{"deleted": id}, nil
}
