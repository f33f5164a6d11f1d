package db

import (
	_ "github.com/lib/pq"
	"github.com/rs/zerolog/log"

	"github.com/cyberyard-io/cyberyard/internal/model"
)

func (s *pgStore) CreateUser(email, hashedPassword string, name *string, companyID int, role model.UserRole) (int, error) {
	var id int
	err := s.db.Get(&id, `
		INSERT INTO users (email, hashed_password, name, company_id, role, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, now(), now())
		RETURNING id;
		`, email, hashedPassword, name, companyID, role)
	if err != nil {
		log.Error().Err(err).Msg("[db] CreateUser: failed to insert user")
	}
	return id, err
}

func (s *pgStore) GetUserByEmail(email string) (*model.User, error) {
	var u model.User
	err := s.db.Get(&u, `
		SELECT id, email, hashed_password, name, company_id, role, created_at, updated_at
		FROM users
		WHERE email = $1
		`, email)
	if err != nil {
		return nil, err
	}
	return &u, nil
}

func (s *pgStore) GetUserByID(id int) (*model.User, error) {
	var u model.User
	err := s.db.Get(&u, `
		SELECT id, email, hashed_password, name, company_id, role, created_at, updated_at
		FROM users
		WHERE id = $1
		`, id)
	if err != nil {
		return nil, err
	}
	return &u, nil
}

func (s *pgStore) UpdateUserProfile(id int, email string, name *string) error {
	_, err := s.db.Exec(`
		UPDATE users
		SET email = $2,
		name = COALESCE($3, name),
		updated_at = now()
		WHERE id = $1
		`, id, email, name)
	if err != nil {
		log.Error().Err(err).Int("user_id", id).Msg("[db] UpdateUserProfile")
	}
	return err
}
