package endpoints

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"github.com/cyberyard-io/cyberyard/internal/db"
	"github.com/cyberyard-io/cyberyard/internal/http/api"
	"github.com/cyberyard-io/cyberyard/internal/http/api/admin/auth/packets"
	"github.com/cyberyard-io/cyberyard/internal/http/middleware"
	"github.com/cyberyard-io/cyberyard/internal/model"
)

type AccountManager struct {
	jwtSecret string
	store     db.Store
}

func accountManagementController(secret string, store db.Store) *AccountManager {
	return &AccountManager{jwtSecret: secret, store: store}
}

// AuthPublicModule mounts signup/login, which issue tokens and therefore
// sit outside the JWT middleware.
func AuthPublicModule(secret string, store db.Store) api.Module {
	ctl := accountManagementController(secret, store)
	return api.ModuleFunc(func(c *api.Controller) {
		c.POST("/auth/signup", ctl.userSignup)
		c.POST("/auth/login", ctl.userLogin)
	})
}

// AuthSessionModule mounts the profile endpoints that require a session.
func AuthSessionModule(secret string, store db.Store) api.Module {
	ctl := accountManagementController(secret, store)
	return api.ModuleFunc(func(c *api.Controller) {
		c.GET("/auth/current_profile", api.WithUser(ctl.getCurrentProfile))
		c.PUT("/auth/current_profile", api.WithUser(ctl.updateCurrentProfile))
	})
}

// POST /api/admin/auth/signup
//
// Creates the company alongside its first admin user. The company starts
// pending until a super admin activates the subscription.
func (a *AccountManager) userSignup(c *gin.Context) {
	var request packets.SignupRequest
	if err := c.ShouldBindJSON(&request); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		log.Error().Err(err).Msg("[auth] signup: bad request")
		return
	}

	if existing, _ := a.store.GetUserByEmail(request.Email); existing != nil {
		c.JSON(http.StatusConflict, gin.H{"error": "Email already registered, please sign up with a different email"})
		log.Info().Str("email", request.Email).Msg("[auth] signup: email conflict")
		return
	}

	hashed, err := middleware.HashPassword(request.Password)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Something went wrong, please try again"})
		log.Error().Err(err).Str("email", request.Email).Msg("[auth] signup: could not hash password")
		return
	}

	company, err := a.store.CreateCompany(request.CompanyName, model.CompanyPending)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Something went wrong, please try again"})
		log.Error().Err(err).Str("company", request.CompanyName).Msg("[auth] signup: could not create company")
		return
	}

	userID, err := a.store.CreateUser(request.Email, hashed, request.Name, company.ID, model.RoleAdmin)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Something went wrong, please try again"})
		log.Error().Err(err).Str("email", request.Email).Msg("[auth] signup: could not create user")
		return
	}

	token, err := middleware.GenerateJWT(userID, a.jwtSecret)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Something went wrong, please try again"})
		log.Error().Err(err).Int("user_id", userID).Msg("[auth] signup: could not generate JWT")
		return
	}

	c.JSON(http.StatusCreated, packets.TokenResponse{Token: token})
}

// POST /api/admin/auth/login
func (a *AccountManager) userLogin(c *gin.Context) {
	var request packets.LoginRequest
	if err := c.ShouldBindJSON(&request); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		log.Error().Err(err).Msg("[auth] login: bad request")
		return
	}

	user, err := a.store.GetUserByEmail(request.Email)
	if err != nil || !middleware.CheckPassword(user.HashedPassword, request.Password) {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid email or password"})
		log.Info().Str("email", request.Email).Msg("[auth] login failed")
		return
	}

	token, err := middleware.GenerateJWT(user.ID, a.jwtSecret)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Something went wrong, please try again"})
		log.Error().Err(err).Int("user_id", user.ID).Msg("[auth] login: could not generate JWT")
		return
	}

	c.JSON(http.StatusOK, packets.TokenResponse{Token: token})
}

// GET /api/admin/auth/current_profile
func (a *AccountManager) getCurrentProfile(_ *gin.Context, user *model.User) (any, *api.APIError) {
	return mapProfile(user), nil
}

// PUT /api/admin/auth/current_profile
func (a *AccountManager) updateCurrentProfile(c *gin.Context, user *model.User) (any, *api.APIError) {
	var request packets.UpdateCurrentProfileRequest
	if err := c.ShouldBindJSON(&request); err != nil {
		log.Error().Err(err).Msg("[auth] update profile: bad request")
		return nil, &api.APIError{Code: http.StatusBadRequest, Message: err.Error()}
	}

	if request.Email != user.Email {
		if other, _ := a.store.GetUserByEmail(request.Email); other != nil {
			log.Info().Str("email", request.Email).Msg("[auth] update profile: email conflict")
			return nil, &api.APIError{Code: http.StatusConflict, Message: "Email already registered"}
		}
	}

	if err := a.store.UpdateUserProfile(user.ID, request.Email, request.Name); err != nil {
		log.Error().Err(err).Int("user_id", user.ID).Msg("[auth] update profile: store failure")
		return nil, &api.APIError{Code: http.StatusInternalServerError, Message: "Something went wrong, please try again"}
	}

	updated, err := a.store.GetUserByID(user.ID)
	if err != nil {
		log.Error().Err(err).Int("user_id", user.ID).Msg("[auth] update profile: could not reload user")
		return nil, &api.APIError{Code: http.StatusInternalServerError, Message: "Something went wrong, please try again"}
	}

	return mapProfile(updated), nil
}

func mapProfile(u *model.User) packets.ProfileResponse {
	return packets.ProfileResponse{
		ID:        u.ID,
		Email:     u.Email,
		Name:      u.Name,
		CompanyID: u.CompanyID,
		Role:      string(u.Role),
		CreatedAt: u.CreatedAt.Format(time.RFC3339),
		UpdatedAt: u.UpdatedAt.Format(time.RFC3339),
	}
}
