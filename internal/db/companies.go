package db

import (
	_ "github.com/lib/pq"
	"github.com/rs/zerolog/log"

	"github.com/cyberyard-io/cyberyard/internal/model"
)

func (s *pgStore) CreateCompany(name string, status model.CompanyStatus) (model.Company, error) {
	var c model.Company
	q := `
	INSERT INTO companies (name, status, created_at, updated_at)
	VALUES ($1, $2, now(), now())
	RETURNING id, name, status, starts_at, ends_at, created_at, updated_at;`
	if err := s.db.Get(&c, q, name, status); err != nil {
		log.Error().Err(err).Msg("[db] CreateCompany: failed to insert company")
		return model.Company{}, err
	}
	return c, nil
}

func (s *pgStore) GetCompanyByID(id int) (model.Company, error) {
	var c model.Company
	err := s.db.Get(&c, `
		SELECT id, name, status, starts_at, ends_at, created_at, updated_at
		FROM companies
		WHERE id = $1
		`, id)
	if err != nil {
		log.Error().Err(err).Int("company_id", id).Msg("[db] GetCompanyByID")
	}
	return c, err
}

func (s *pgStore) ListCompanies() ([]model.Company, error) {
	var out []model.Company
	err := s.db.Select(&out, `
		SELECT id, name, status, starts_at, ends_at, created_at, updated_at
		FROM companies
		ORDER BY id
		`)
	if err != nil {
		log.Error().Err(err).Msg("[db] ListCompanies: failed to select companies")
	}
	return out, err
}

func (s *pgStore) UpdateCompanyStatus(id int, status model.CompanyStatus) error {
	_, err := s.db.Exec(`
		UPDATE companies
		SET status = $2,
		updated_at = now()
		WHERE id = $1
		`, id, status)
	if err != nil {
		log.Error().Err(err).Int("company_id", id).Msg("[db] UpdateCompanyStatus")
	}
	return err
}

func (s *pgStore) DeleteCompany(id int) error {
	_, err := s.db.Exec(`DELETE FROM companies WHERE id = $1`, id)
	if err != nil {
		log.Error().Err(err).Int("company_id", id).Msg("[db] DeleteCompany")
	}
	return err
}

func (s *pgStore) CreateVenue(companyID int, name string, address *string) (model.Venue, error) {
	var v model.Venue
	q := `
	INSERT INTO venues (company_id, name, address, created_at, updated_at)
	VALUES ($1, $2, $3, now(), now())
	RETURNING id, company_id, name, address, created_at, updated_at;`
	if err := s.db.Get(&v, q, companyID, name, address); err != nil {
		log.Error().Err(err).Msg("[db] CreateVenue: failed to insert venue")
		return model.Venue{}, err
	}
	return v, nil
}

func (s *pgStore) GetVenueByID(id int) (model.Venue, error) {
	var v model.Venue
	err := s.db.Get(&v, `
		SELECT id, company_id, name, address, created_at, updated_at
		FROM venues
		WHERE id = $1
		`, id)
	if err != nil {
		log.Error().Err(err).Int("venue_id", id).Msg("[db] GetVenueByID")
	}
	return v, err
}

func (s *pgStore) ListVenues(companyID int) ([]model.Venue, error) {
	var out []model.Venue
	err := s.db.Select(&out, `
		SELECT id, company_id, name, address, created_at, updated_at
		FROM venues
		WHERE ($1 = 0 OR company_id = $1)
		ORDER BY id
		`, companyID)
	if err != nil {
		log.Error().Err(err).Msg("[db] ListVenues: failed to select venues")
	}
	return out, err
}

func (s *pgStore) UpdateVenue(id int, name, address *string) error {
	_, err := s.db.Exec(`
		UPDATE venues
		SET name = COALESCE($2, name),
		address = COALESCE($3, address),
		updated_at = now()
		WHERE id = $1
		`, id, name, address)
	if err != nil {
		log.Error().Err(err).Int("venue_id", id).Msg("[db] UpdateVenue")
	}
	return err
}

func (s *pgStore) DeleteVenue(id int) error {
	_, err := s.db.Exec(`DELETE FROM venues WHERE id = $1`, id)
	if err != nil {
		log.Error().Err(err).Int("venue_id", id).Msg("[db] DeleteVenue")
	}
	return err
}
