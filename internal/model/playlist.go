package model

import "time"

type Playlist struct {
	ID        int       `db:"id"           json:"id"`
	CompanyID int       `db:"company_id"   json:"company_id"`
	Name      string    `db:"name"         json:"name"`
	CreatedAt time.Time `db:"created_at"   json:"created_at"`
	UpdatedAt time.Time `db:"updated_at"   json:"updated_at"`
	CreatedBy int       `db:"created_by"   json:"created_by"`
	Items     []PlaylistVideo `json:"items,omitempty"`
}

// PlaylistVideo is the join row between playlists and videos; order_index
// here is the only place ordering is recorded.
type PlaylistVideo struct {
	ID         int    `db:"id"           json:"id"`
	PlaylistID int    `db:"playlist_id"  json:"playlist_id"`
	VideoID    int    `db:"video_id"     json:"video_id"`
	OrderIndex int    `db:"order_index"  json:"order_index"`
	Video      *Video `db:"-"            json:"video,omitempty"`
}
