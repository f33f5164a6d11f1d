package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/cyberyard-io/cyberyard/internal/http/middleware"
	"github.com/cyberyard-io/cyberyard/internal/model"
)

type APIError struct {
	Code    int
	Message string
}

type HandlerFunc func(ctx *gin.Context) (any, *APIError)

// AuthHandlerFunc handlers run behind JWTMiddleware and receive the admin user.
type AuthHandlerFunc func(ctx *gin.Context, user *model.User) (any, *APIError)

// DeviceHandlerFunc handlers run behind DeviceAuthMiddleware and receive the
// authenticated device row.
type DeviceHandlerFunc func(ctx *gin.Context, device *model.Device) (any, *APIError)

// Resolve adapts a HandlerFunc to gin, writing either the result or the error.
func Resolve(h HandlerFunc) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		result, apiErr := h(ctx)
		if apiErr != nil {
			ctx.JSON(apiErr.Code, gin.H{"error": apiErr.Message})
			return
		}
		ctx.JSON(http.StatusOK, result)
	}
}

func WithUser(h AuthHandlerFunc) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		user, ok := middleware.GetCurrentUser(ctx)
		if !ok {
			ctx.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
			return
		}

		result, apiErr := h(ctx, user)
		if apiErr != nil {
			ctx.JSON(apiErr.Code, gin.H{"error": apiErr.Message})
			return
		}
		ctx.JSON(http.StatusOK, result)
	}
}

func WithDevice(h DeviceHandlerFunc) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		device, ok := middleware.GetCurrentDevice(ctx)
		if !ok {
			ctx.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
			return
		}

		result, apiErr := h(ctx, device)
		if apiErr != nil {
			ctx.JSON(apiErr.Code, gin.H{"error": apiErr.Message})
			return
		}
		ctx.JSON(http.StatusOK, result)
	}
}
