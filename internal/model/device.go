package model

import "time"

// DeviceStatus is the closed set of lifecycle states for a device.
type DeviceStatus string

const (
	DeviceUnpaired  DeviceStatus = "unpaired"
	DeviceActive    DeviceStatus = "active"
	DeviceSuspended DeviceStatus = "suspended"
	DeviceRetired   DeviceStatus = "retired"
)

// Valid reports whether s is one of the known lifecycle states.
func (s DeviceStatus) Valid() bool {
	switch s {
	case DeviceUnpaired, DeviceActive, DeviceSuspended, DeviceRetired:
		return true
	}
	return false
}

// HasCredentials reports whether a device in this state is expected
// to hold an auth token.
func (s DeviceStatus) HasCredentials() bool {
	return s == DeviceActive || s == DeviceSuspended
}

// Device is one paired screen running the player.
type Device struct {
	ID               int          `db:"id"                 json:"id"`
	CompanyID        int          `db:"company_id"         json:"company_id"`
	VenueID          *int         `db:"venue_id"           json:"venue_id"`
	Name             string       `db:"name"               json:"name"`
	PairingCode      string       `db:"pairing_code"       json:"pairing_code"`
	PairingToken     string       `db:"pairing_token"      json:"pairing_token"`
	AuthToken        *string      `db:"auth_token"         json:"-"`
	Status           DeviceStatus `db:"status"             json:"status"`
	PlaylistID       *int         `db:"playlist_id"        json:"playlist_id"`
	AdminPinHash     string       `db:"admin_pin_hash"     json:"-"`
	LastSeenAt       *time.Time   `db:"last_seen_at"       json:"last_seen_at"`
	LastBatteryLevel *int         `db:"last_battery_level" json:"last_battery_level"`
	ScreenWidth      *int         `db:"screen_width"       json:"screen_width"`
	ScreenHeight     *int         `db:"screen_height"      json:"screen_height"`
	CreatedAt        time.Time    `db:"created_at"         json:"created_at"`
	UpdatedAt        time.Time    `db:"updated_at"         json:"updated_at"`
}
