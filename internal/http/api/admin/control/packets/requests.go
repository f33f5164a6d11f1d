package packets

// CreateDeviceRequest provisions an unpaired device; the server generates its
// pairing code, QR token and admin PIN.
type CreateDeviceRequest struct {
	Name    string `json:"name" binding:"required"`
	VenueID *int   `json:"venue_id"`
}

type UpdateDeviceRequest struct {
	Name    *string `json:"name"`
	VenueID *int    `json:"venue_id"`
}

type AssignPlaylistToDeviceRequest struct {
	PlaylistID *int `json:"playlist_id"`
}

type CreateVenueRequest struct {
	Name    string  `json:"name" binding:"required"`
	Address *string `json:"address"`
}

type UpdateVenueRequest struct {
	Name    *string `json:"name"`
	Address *string `json:"address"`
}

type CreateCompanyRequest struct {
	Name string `json:"name" binding:"required"`
}

type UpdateCompanyStatusRequest struct {
	Status string `json:"status" binding:"required,oneof=pending active expired suspended"`
}

type CreatePlaylistRequest struct {
	Name string `json:"name" binding:"required"`
}

type UpdatePlaylistRequest struct {
	Name *string `json:"name"`
}

type AddPlaylistVideoRequest struct {
	VideoID    int `json:"video_id" binding:"required"`
	OrderIndex int `json:"order_index"`
}

type ReorderVideosRequest struct {
	VideoIDs []int `json:"video_ids" binding:"required"`
}

type CreateVideoRequest struct {
	Title string `json:"title" binding:"required"`
	URL   string `json:"video_url" binding:"required,url"`
}

type GenerateVideoRequest struct {
	Title       string `json:"title" binding:"required"`
	ImageURL    string `json:"image_url"`
	ImageData   string `json:"image_data"`
	Prompt      string `json:"prompt" binding:"required"`
	OverlayText string `json:"overlay_text"`
	Style       string `json:"style"`
	Duration    int    `json:"duration"`
}
