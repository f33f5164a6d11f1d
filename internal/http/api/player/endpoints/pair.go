package endpoints

import (
	"database/sql"
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"github.com/cyberyard-io/cyberyard/internal/auth"
	"github.com/cyberyard-io/cyberyard/internal/db"
	"github.com/cyberyard-io/cyberyard/internal/http/api"
	"github.com/cyberyard-io/cyberyard/internal/http/api/player/packets"
	"github.com/cyberyard-io/cyberyard/internal/model"
)

type PairingController struct {
	store db.Store
}

func newPairingController(store db.Store) *PairingController {
	return &PairingController{store: store}
}

// PairingModule mounts the unauthenticated pairing endpoint. Everything else
// under /api/player requires a device token; this is where devices get one.
func PairingModule(store db.Store) api.Module {
	ctl := newPairingController(store)
	return api.ModuleFunc(func(c *api.Controller) {
		c.POST("/pair", api.Resolve(ctl.pair))
	})
}

// pair exchanges a one-time pairing credential for a long-lived auth token.
// The store performs a single conditional update guarded by the unpaired
// status, so of two racing attempts exactly one wins; the loser sees the
// same error as a bad code.
func (p *PairingController) pair(ctx *gin.Context) (any, *api.APIError) {
	var req packets.PairRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		log.Error().Err(err).Msg("[player] pair: bad request")
		return nil, &api.APIError{Code: http.StatusBadRequest, Message: err.Error()}
	}

	code := strings.ToUpper(strings.TrimSpace(req.DeviceCode))
	qrToken := strings.TrimSpace(req.PairingQRToken)
	if (code == "") == (qrToken == "") {
		return nil, &api.APIError{Code: http.StatusBadRequest, Message: "provide either device_code or pairing_qr_token"}
	}

	authToken, err := auth.GenerateAuthToken()
	if err != nil {
		log.Error().Err(err).Msg("[player] pair: token generation failed")
		return nil, &api.APIError{Code: http.StatusInternalServerError, Message: "could not pair device"}
	}
	// fresh pairing credentials replace the consumed ones
	nextCode, err := auth.GeneratePairingCode()
	if err != nil {
		log.Error().Err(err).Msg("[player] pair: code generation failed")
		return nil, &api.APIError{Code: http.StatusInternalServerError, Message: "could not pair device"}
	}
	nextToken := auth.GeneratePairingToken()

	var device model.Device
	if code != "" {
		device, err = p.store.PairDeviceByCode(code, authToken, nextCode, nextToken)
	} else {
		device, err = p.store.PairDeviceByToken(qrToken, authToken, nextCode, nextToken)
	}
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, &api.APIError{Code: http.StatusBadRequest, Message: "Invalid pairing code or device already paired"}
		}
		log.Error().Err(err).Msg("[player] pair: store failure")
		return nil, &api.APIError{Code: http.StatusInternalServerError, Message: "could not pair device"}
	}

	log.Info().Int("device_id", device.ID).Int("company_id", device.CompanyID).Msg("device paired")

	return packets.PairResponse{
		Success:    true,
		AuthToken:  authToken,
		DeviceID:   device.ID,
		CompanyID:  device.CompanyID,
		PlaylistID: device.PlaylistID,
		DeviceName: device.Name,
	}, nil
}
