package packets

import "encoding/json"

// REQUESTS FOR /api/player

// PairRequest carries exactly one pairing credential: the 6-character code a
// human typed in, or the opaque token decoded from a pairing QR.
type PairRequest struct {
	DeviceCode     string `json:"device_code"`
	PairingQRToken string `json:"pairing_qr_token"`
}

type CheckPinRequest struct {
	Pin string `json:"pin" binding:"required"`
}

type SwitchPlaylistRequest struct {
	PlaylistID int `json:"playlist_id" binding:"required"`
}

type GenerateVideoRequest struct {
	Title       string `json:"title" binding:"required"`
	ImageURL    string `json:"image_url"`
	ImageData   string `json:"image_data"` // base64, alternative to ImageURL
	Prompt      string `json:"prompt" binding:"required"`
	OverlayText string `json:"overlay_text"`
	Style       string `json:"style"`
	Duration    int    `json:"duration"`
}

type ReportProblemRequest struct {
	Description string          `json:"description" binding:"required"`
	Diagnostics json.RawMessage `json:"diagnostics"`
}
