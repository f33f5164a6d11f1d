package packets

// RESPONSES FOR /api/player

type PairResponse struct {
	Success    bool   `json:"success"`
	AuthToken  string `json:"auth_token"`
	DeviceID   int    `json:"device_id"`
	CompanyID  int    `json:"company_id"`
	PlaylistID *int   `json:"playlist_id"`
	DeviceName string `json:"device_name"`
}

type VideoItem struct {
	ID         int    `json:"id"`
	Title      string `json:"title"`
	VideoURL   string `json:"video_url"`
	OrderIndex int    `json:"order_index"`
}

type PlaylistResponse struct {
	Success    bool        `json:"success"`
	Suspended  bool        `json:"suspended"`
	DeviceID   int         `json:"device_id"`
	DeviceName string      `json:"device_name"`
	CompanyID  int         `json:"company_id"`
	PlaylistID *int        `json:"playlist_id"`
	Videos     []VideoItem `json:"videos"`
}

type PlaylistSummary struct {
	ID        int    `json:"id"`
	Name      string `json:"name"`
	CreatedAt string `json:"created_at"`
}

type PlaylistsResponse struct {
	Playlists []PlaylistSummary `json:"playlists"`
}

type CheckPinResponse struct {
	Success   bool `json:"success"`
	Valid     bool `json:"valid"`
	DeviceID  int  `json:"device_id"`
	CompanyID int  `json:"company_id"`
}

type GenerateVideoResponse struct {
	Success  bool   `json:"success"`
	VideoURL string `json:"video_url"`
	VideoID  int    `json:"video_id"`
}

type OKResponse struct {
	Success bool `json:"success"`
}
