package main

import (
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/cyberyard-io/cyberyard/internal/db"
	"github.com/cyberyard-io/cyberyard/internal/http/api"
	authapi "github.com/cyberyard-io/cyberyard/internal/http/api/admin/auth/endpoints"
	adminapi "github.com/cyberyard-io/cyberyard/internal/http/api/admin/control/endpoints"
	playerapi "github.com/cyberyard-io/cyberyard/internal/http/api/player/endpoints"
	"github.com/cyberyard-io/cyberyard/internal/http/middleware"
	"github.com/cyberyard-io/cyberyard/internal/render"
	"github.com/cyberyard-io/cyberyard/internal/storage"
)

// RegisterRoutes sets up all application routes
func RegisterRoutes(r *gin.Engine, env Environment, store db.Store, storageSystem storage.Storage, renderer *render.Client) {
	// CORS
	r.Use(cors.New(cors.Config{
		AllowOriginFunc: func(origin string) bool { return true },
		AllowMethods: []string{
			"GET",
			"POST",
			"PUT",
			"PATCH",
			"DELETE",
			"OPTIONS",
			"HEAD",
		},
		AllowHeaders: []string{
			"Origin",
			"Content-Type",
			"Authorization",
			"Accept",
			"If-None-Match",
			middleware.HeaderDeviceToken,
			middleware.HeaderBatteryLevel,
			middleware.HeaderScreenWidth,
			middleware.HeaderScreenHeight,
		},
		ExposeHeaders: []string{
			"Content-Length",
			"ETag",
		},
		AllowCredentials: false,
	}))

	api.MountGroup(r, api.GroupConfig{
		Prefix: "/api/admin",
		Auth:   false,
	},
		authapi.AuthPublicModule(env.SecretKey, store),
	)

	api.MountGroup(r, api.GroupConfig{
		Prefix:    "/api/admin",
		Auth:      true,
		SecretKey: env.SecretKey,
		Store:     store,
	},
		// session endpoints that require auth but no active subscription
		authapi.AuthSessionModule(env.SecretKey, store),
		adminapi.CompanyModule(store),
	)

	api.MountGroup(r, api.GroupConfig{
		Prefix:    "/api/admin",
		Auth:      true,
		SecretKey: env.SecretKey,
		Store:     store,
		// control modules additionally require an active subscription
		Middleware: []gin.HandlerFunc{middleware.CompanyGateMiddleware(store)},
	},
		adminapi.VenueModule(store),
		adminapi.DeviceModule(store),
		adminapi.PlaylistModule(store),
		adminapi.VideoModule(store, storageSystem, renderer),
	)

	// unauthenticated pairing, then device-token endpoints
	api.MountGroup(r, api.GroupConfig{
		Prefix: "/api/player",
	},
		playerapi.PairingModule(store),
	)

	api.MountGroup(r, api.GroupConfig{
		Prefix:     "/api/player",
		DeviceAuth: true,
		Store:      store,
	},
		playerapi.SyncModule(store),
		playerapi.OverlayModule(store, renderer),
	)

	// Static content
	if !env.UseSpaces {
		r.Static("/uploads", "./uploads")
	}
}
