package model

import "time"

// CompanyStatus gates whether a company's users and devices may use the system.
type CompanyStatus string

const (
	CompanyPending   CompanyStatus = "pending"
	CompanyActive    CompanyStatus = "active"
	CompanyExpired   CompanyStatus = "expired"
	CompanySuspended CompanyStatus = "suspended"
)

func (s CompanyStatus) Valid() bool {
	switch s {
	case CompanyPending, CompanyActive, CompanyExpired, CompanySuspended:
		return true
	}
	return false
}

type Company struct {
	ID        int           `db:"id"         json:"id"`
	Name      string        `db:"name"       json:"name"`
	Status    CompanyStatus `db:"status"     json:"status"`
	StartsAt  *time.Time    `db:"starts_at"  json:"starts_at"`
	EndsAt    *time.Time    `db:"ends_at"    json:"ends_at"`
	CreatedAt time.Time     `db:"created_at" json:"created_at"`
	UpdatedAt time.Time     `db:"updated_at" json:"updated_at"`
}

type Venue struct {
	ID        int       `db:"id"         json:"id"`
	CompanyID int       `db:"company_id" json:"company_id"`
	Name      string    `db:"name"       json:"name"`
	Address   *string   `db:"address"    json:"address,omitempty"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
}
