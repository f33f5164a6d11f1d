package middleware

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"github.com/cyberyard-io/cyberyard/internal/db"
)

// HeaderDeviceToken carries the device's long-lived credential on every
// player API call.
const HeaderDeviceToken = "x-device-token"

// Optional telemetry headers the player sends alongside requests.
const (
	HeaderBatteryLevel = "x-battery-level"
	HeaderScreenWidth  = "x-screen-width"
	HeaderScreenHeight = "x-screen-height"
)

// DeviceAuthMiddleware authenticates a device by its x-device-token header,
// stamps last-seen plus any telemetry headers, and sets "currentDevice" in
// context. Suspended devices still authenticate; handlers decide what a
// suspended device may see. Unpaired and retired devices get 401 so the
// player clears its credentials and re-pairs.
func DeviceAuthMiddleware(store db.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := c.GetHeader(HeaderDeviceToken)
		if token == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "missing device token"})
			return
		}

		device, err := store.GetDeviceByAuthToken(token)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid device token"})
			return
		}
		if !device.Status.HasCredentials() {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "device is not active"})
			return
		}

		battery := intHeader(c, HeaderBatteryLevel)
		width := intHeader(c, HeaderScreenWidth)
		height := intHeader(c, HeaderScreenHeight)
		if err := store.TouchDevice(device.ID, battery, width, height); err != nil {
			log.Warn().Err(err).Int("device_id", device.ID).Msg("failed to stamp device last-seen")
		}

		c.Set("currentDevice", &device)
		c.Next()
	}
}

func intHeader(c *gin.Context, name string) *int {
	raw := c.GetHeader(name)
	if raw == "" {
		return nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return nil
	}
	return &v
}
