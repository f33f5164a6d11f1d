package db

import (
	"database/sql"

	_ "github.com/lib/pq"
	"github.com/rs/zerolog/log"

	"github.com/cyberyard-io/cyberyard/internal/model"
)

const deviceColumns = `
	id, company_id, venue_id, name, pairing_code, pairing_token, auth_token,
	status, playlist_id, admin_pin_hash, last_seen_at, last_battery_level,
	screen_width, screen_height, created_at, updated_at`

func (s *pgStore) CreateDevice(companyID int, venueID *int, name, pairingCode, pairingToken, adminPinHash string) (model.Device, error) {
	var d model.Device
	q := `
	INSERT INTO devices
	(company_id, venue_id, name, pairing_code, pairing_token, status, admin_pin_hash, created_at, updated_at)
	VALUES ($1, $2, $3, $4, $5, 'unpaired', $6, now(), now())
	RETURNING ` + deviceColumns + `;`
	if err := s.db.Get(&d, q, companyID, venueID, name, pairingCode, pairingToken, adminPinHash); err != nil {
		log.Error().Err(err).Msg("[db] CreateDevice: failed to insert device")
		return model.Device{}, err
	}
	return d, nil
}

func (s *pgStore) GetDeviceByID(id int) (model.Device, error) {
	var d model.Device
	err := s.db.Get(&d, `SELECT `+deviceColumns+` FROM devices WHERE id = $1`, id)
	if err != nil {
		log.Error().Err(err).Int("device_id", id).Msg("[db] GetDeviceByID")
	}
	return d, err
}

func (s *pgStore) GetDeviceByAuthToken(token string) (model.Device, error) {
	var d model.Device
	err := s.db.Get(&d, `
		SELECT `+deviceColumns+`
		FROM devices
		WHERE auth_token = $1
		`, token)
	return d, err
}

func (s *pgStore) GetDeviceByPairingToken(token string) (model.Device, error) {
	var d model.Device
	err := s.db.Get(&d, `
		SELECT `+deviceColumns+`
		FROM devices
		WHERE pairing_token = $1
		`, token)
	return d, err
}

func (s *pgStore) ListDevices(companyID int) ([]model.Device, error) {
	var devices []model.Device
	err := s.db.Select(&devices, `
		SELECT `+deviceColumns+`
		FROM devices
		WHERE ($1 = 0 OR company_id = $1)
		ORDER BY id
		`, companyID)
	if err != nil {
		log.Error().Err(err).Msg("[db] ListDevices: failed to select devices")
	}
	return devices, err
}

func (s *pgStore) UpdateDevice(id int, name *string, venueID *int) error {
	_, err := s.db.Exec(`
		UPDATE devices
		SET name = COALESCE($2, name),
		venue_id = COALESCE($3, venue_id),
		updated_at = now()
		WHERE id = $1
		`, id, name, venueID)
	if err != nil {
		log.Error().Err(err).Int("device_id", id).Msg("[db] UpdateDevice")
	}
	return err
}

func (s *pgStore) DeleteDevice(id int) error {
	_, err := s.db.Exec(`DELETE FROM devices WHERE id = $1`, id)
	if err != nil {
		log.Error().Err(err).Int("device_id", id).Msg("[db] DeleteDevice")
	}
	return err
}

func (s *pgStore) SetDeviceStatus(id int, status model.DeviceStatus) error {
	_, err := s.db.Exec(`
		UPDATE devices
		SET status = $2,
		updated_at = now()
		WHERE id = $1
		`, id, status)
	if err != nil {
		log.Error().Err(err).Int("device_id", id).Msg("[db] SetDeviceStatus")
	}
	return err
}

// pairDevice consumes a pairing credential with a single conditional update.
// The status guard makes concurrent pairing attempts single-winner: the row
// is only updated while still unpaired, and the losing call gets
// sql.ErrNoRows. Consuming also rotates both pairing credentials.
func (s *pgStore) pairDevice(whereColumn, credential, authToken, nextCode, nextToken string) (model.Device, error) {
	var d model.Device
	q := `
	UPDATE devices
	SET auth_token = $2,
	pairing_code = $3,
	pairing_token = $4,
	status = 'active',
	last_seen_at = now(),
	updated_at = now()
	WHERE ` + whereColumn + ` = $1
	AND status = 'unpaired'
	RETURNING ` + deviceColumns + `;`
	err := s.db.Get(&d, q, credential, authToken, nextCode, nextToken)
	if err != nil && err != sql.ErrNoRows {
		log.Error().Err(err).Msg("[db] pairDevice: conditional update failed")
	}
	return d, err
}

func (s *pgStore) PairDeviceByCode(code, authToken, nextCode, nextToken string) (model.Device, error) {
	return s.pairDevice("pairing_code", code, authToken, nextCode, nextToken)
}

func (s *pgStore) PairDeviceByToken(pairingToken, authToken, nextCode, nextToken string) (model.Device, error) {
	return s.pairDevice("pairing_token", pairingToken, authToken, nextCode, nextToken)
}

// UnpairDevice clears the auth token and rotates the pairing credentials so
// the same physical unit can pair again.
func (s *pgStore) UnpairDevice(id int, nextCode, nextToken string) error {
	_, err := s.db.Exec(`
		UPDATE devices
		SET auth_token = NULL,
		pairing_code = $2,
		pairing_token = $3,
		status = 'unpaired',
		updated_at = now()
		WHERE id = $1
		`, id, nextCode, nextToken)
	if err != nil {
		log.Error().Err(err).Int("device_id", id).Msg("[db] UnpairDevice")
	}
	return err
}

func (s *pgStore) RetireDevice(id int) error {
	_, err := s.db.Exec(`
		UPDATE devices
		SET auth_token = NULL,
		status = 'retired',
		updated_at = now()
		WHERE id = $1
		`, id)
	if err != nil {
		log.Error().Err(err).Int("device_id", id).Msg("[db] RetireDevice")
	}
	return err
}

func (s *pgStore) AssignPlaylistToDevice(deviceID int, playlistID *int) error {
	_, err := s.db.Exec(`
		UPDATE devices
		SET playlist_id = $2,
		updated_at = now()
		WHERE id = $1
		`, deviceID, playlistID)
	if err != nil {
		log.Error().Err(err).Int("device_id", deviceID).Msg("[db] AssignPlaylistToDevice")
	}
	return err
}

// TouchDevice stamps last_seen and records the client-reported telemetry
// headers when present.
func (s *pgStore) TouchDevice(id int, batteryLevel, screenWidth, screenHeight *int) error {
	_, err := s.db.Exec(`
		UPDATE devices
		SET last_seen_at = now(),
		last_battery_level = COALESCE($2, last_battery_level),
		screen_width = COALESCE($3, screen_width),
		screen_height = COALESCE($4, screen_height)
		WHERE id = $1
		`, id, batteryLevel, screenWidth, screenHeight)
	if err != nil {
		log.Error().Err(err).Int("device_id", id).Msg("[db] TouchDevice")
	}
	return err
}

func (s *pgStore) GetDevicesUsingPlaylist(playlistID int) ([]model.Device, error) {
	var devices []model.Device
	err := s.db.Select(&devices, `
		SELECT `+deviceColumns+`
		FROM devices
		WHERE playlist_id = $1
		`, playlistID)
	if err != nil {
		log.Error().Err(err).Int("playlist_id", playlistID).Msg("[db] GetDevicesUsingPlaylist")
	}
	return devices, err
}
