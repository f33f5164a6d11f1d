package db

import (
	"github.com/jmoiron/sqlx"

	"github.com/cyberyard-io/cyberyard/internal/model"
)

// Store exposes the persistence operations handlers depend on, so tests can
// substitute a fake.
type Store interface {
	// user functions
	CreateUser(email, hashedPassword string, name *string, companyID int, role model.UserRole) (int, error)
	GetUserByEmail(email string) (*model.User, error)
	GetUserByID(id int) (*model.User, error)
	UpdateUserProfile(id int, email string, name *string) error

	// company functions
	CreateCompany(name string, status model.CompanyStatus) (model.Company, error)
	GetCompanyByID(id int) (model.Company, error)
	ListCompanies() ([]model.Company, error)
	UpdateCompanyStatus(id int, status model.CompanyStatus) error
	DeleteCompany(id int) error

	// List* methods taking a companyID treat 0 as "every company", the
	// super admin view.

	// venue functions
	CreateVenue(companyID int, name string, address *string) (model.Venue, error)
	GetVenueByID(id int) (model.Venue, error)
	ListVenues(companyID int) ([]model.Venue, error)
	UpdateVenue(id int, name, address *string) error
	DeleteVenue(id int) error

	// device functions
	CreateDevice(companyID int, venueID *int, name, pairingCode, pairingToken, adminPinHash string) (model.Device, error)
	GetDeviceByID(id int) (model.Device, error)
	GetDeviceByAuthToken(token string) (model.Device, error)
	GetDeviceByPairingToken(token string) (model.Device, error)
	ListDevices(companyID int) ([]model.Device, error)
	UpdateDevice(id int, name *string, venueID *int) error
	DeleteDevice(id int) error
	SetDeviceStatus(id int, status model.DeviceStatus) error

	// PairDeviceByCode and PairDeviceByToken consume a pairing credential:
	// a single conditional update guarded by status='unpaired', so exactly
	// one of two racing calls can win. sql.ErrNoRows means the code was
	// unknown or already consumed.
	PairDeviceByCode(code, authToken, nextCode, nextToken string) (model.Device, error)
	PairDeviceByToken(pairingToken, authToken, nextCode, nextToken string) (model.Device, error)
	UnpairDevice(id int, nextCode, nextToken string) error
	// RetireDevice also clears the auth token: only active and suspended
	// devices hold credentials.
	RetireDevice(id int) error
	AssignPlaylistToDevice(deviceID int, playlistID *int) error
	TouchDevice(id int, batteryLevel, screenWidth, screenHeight *int) error
	GetDevicesUsingPlaylist(playlistID int) ([]model.Device, error)

	// playlist functions
	CreatePlaylist(companyID int, name string, createdBy int) (model.Playlist, error)
	GetPlaylistByID(id int) (model.Playlist, error)
	ListPlaylists(companyID int) ([]model.Playlist, error)
	UpdatePlaylist(id int, name *string) error
	DeletePlaylist(id int) error
	AddVideoToPlaylist(playlistID, videoID, orderIndex int) (model.PlaylistVideo, error)
	RemoveVideoFromPlaylist(playlistID, videoID int) error
	ReorderPlaylistVideos(playlistID int, videoIDs []int) error
	ListPlaylistVideos(playlistID int) ([]model.PlaylistVideo, error)
	// ListPlaylistVideosForCompany filters out videos whose owning company
	// does not match, which is what devices are served.
	ListPlaylistVideosForCompany(playlistID, companyID int) ([]model.PlaylistVideo, error)

	// video functions
	CreateVideo(v model.Video) (model.Video, error)
	GetVideoByID(id int) (model.Video, error)
	ListVideos(companyID int) ([]model.Video, error)
	DeleteVideo(id int) error
}

type pgStore struct {
	db *sqlx.DB
}

// compile-time check that pgStore implements Store
var _ Store = (*pgStore)(nil)

func NewStore() Store {
	return &pgStore{db: DB}
}
