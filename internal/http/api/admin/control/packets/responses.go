package packets

import "time"

// DeviceResponse mirrors model.Device but flattens times to RFC3339 and only
// exposes pairing credentials to the dashboard, never the auth token.
type DeviceResponse struct {
	ID               int        `json:"id"`
	CompanyID        int        `json:"company_id"`
	VenueID          *int       `json:"venue_id"`
	Name             string     `json:"name"`
	PairingCode      string     `json:"pairing_code"`
	Status           string     `json:"status"`
	PlaylistID       *int       `json:"playlist_id"`
	LastSeenAt       *time.Time `json:"last_seen_at"`
	LastBatteryLevel *int       `json:"last_battery_level"`
	CreatedAt        string     `json:"created_at"`
	UpdatedAt        string     `json:"updated_at"`
}

// CreatedDeviceResponse additionally carries the one-time admin PIN, shown
// exactly once at provisioning.
type CreatedDeviceResponse struct {
	DeviceResponse
	AdminPIN string `json:"admin_pin"`
}

type VenueResponse struct {
	ID        int     `json:"id"`
	CompanyID int     `json:"company_id"`
	Name      string  `json:"name"`
	Address   *string `json:"address,omitempty"`
	CreatedAt string  `json:"created_at"`
	UpdatedAt string  `json:"updated_at"`
}

type CompanyResponse struct {
	ID        int        `json:"id"`
	Name      string     `json:"name"`
	Status    string     `json:"status"`
	StartsAt  *time.Time `json:"starts_at"`
	EndsAt    *time.Time `json:"ends_at"`
	CreatedAt string     `json:"created_at"`
	UpdatedAt string     `json:"updated_at"`
}

type PlaylistVideoResponse struct {
	ID         int            `json:"id"`
	VideoID    int            `json:"video_id"`
	OrderIndex int            `json:"order_index"`
	Video      *VideoResponse `json:"video,omitempty"`
}

type PlaylistResponse struct {
	ID        int                     `json:"id"`
	CompanyID int                     `json:"company_id"`
	Name      string                  `json:"name"`
	CreatedBy int                     `json:"created_by"`
	CreatedAt time.Time               `json:"created_at"`
	UpdatedAt time.Time               `json:"updated_at"`
	Items     []PlaylistVideoResponse `json:"items"`
}

type VideoResponse struct {
	ID        int    `json:"id"`
	CompanyID int    `json:"company_id"`
	Title     string `json:"title"`
	URL       string `json:"video_url"`
	Source    string `json:"source"`
	CreatedAt string `json:"created_at"`
}
