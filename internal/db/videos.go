package db

import (
	_ "github.com/lib/pq"
	"github.com/rs/zerolog/log"

	"github.com/cyberyard-io/cyberyard/internal/model"
)

const videoColumns = `
	id, company_id, title, video_url, source,
	ai_prompt, ai_source_image, ai_style, ai_duration, created_at`

func (s *pgStore) CreateVideo(v model.Video) (model.Video, error) {
	var out model.Video
	q := `
	INSERT INTO videos
	(company_id, title, video_url, source, ai_prompt, ai_source_image, ai_style, ai_duration, created_at)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8, now())
	RETURNING ` + videoColumns + `;`
	if err := s.db.Get(&out, q,
		v.CompanyID, v.Title, v.URL, v.Source,
		v.AIPrompt, v.AISourceImage, v.AIStyle, v.AIDuration,
	); err != nil {
		log.Error().Err(err).Msg("[db] CreateVideo: failed to insert video")
		return model.Video{}, err
	}
	return out, nil
}

func (s *pgStore) GetVideoByID(id int) (model.Video, error) {
	var v model.Video
	err := s.db.Get(&v, `SELECT `+videoColumns+` FROM videos WHERE id = $1`, id)
	if err != nil {
		log.Error().Err(err).Int("video_id", id).Msg("[db] GetVideoByID")
	}
	return v, err
}

func (s *pgStore) ListVideos(companyID int) ([]model.Video, error) {
	var out []model.Video
	err := s.db.Select(&out, `
		SELECT `+videoColumns+`
		FROM videos
		WHERE ($1 = 0 OR company_id = $1)
		ORDER BY id
		`, companyID)
	if err != nil {
		log.Error().Err(err).Msg("[db] ListVideos: failed to select videos")
	}
	return out, err
}

func (s *pgStore) DeleteVideo(id int) error {
	_, err := s.db.Exec(`DELETE FROM videos WHERE id = $1`, id)
	if err != nil {
		log.Error().Err(err).Int("video_id", id).Msg("[db] DeleteVideo")
	}
	return err
}
