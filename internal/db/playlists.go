package db

import (
	_ "github.com/lib/pq"
	"github.com/rs/zerolog/log"

	"github.com/cyberyard-io/cyberyard/internal/model"
)

func (s *pgStore) CreatePlaylist(companyID int, name string, createdBy int) (model.Playlist, error) {
	var p model.Playlist
	const q = `
    INSERT INTO playlists (company_id, name, created_by, created_at, updated_at)
    VALUES ($1, $2, $3, now(), now())
    RETURNING id, company_id, name, created_by, created_at, updated_at;
    `
	if err := s.db.Get(&p, q, companyID, name, createdBy); err != nil {
		log.Error().Err(err).Msg("[db] CreatePlaylist: failed to insert playlist")
		return model.Playlist{}, err
	}
	return p, nil
}

func (s *pgStore) GetPlaylistByID(id int) (model.Playlist, error) {
	var p model.Playlist
	q := `
	SELECT id, company_id, name, created_by, created_at, updated_at
	FROM playlists
	WHERE id = $1;`
	if err := s.db.Get(&p, q, id); err != nil {
		log.Error().Err(err).Msg("[db] GetPlaylistByID")
		return model.Playlist{}, err
	}

	items, err := s.ListPlaylistVideos(id)
	if err != nil {
		return p, err
	}
	p.Items = items
	return p, nil
}

func (s *pgStore) ListPlaylists(companyID int) ([]model.Playlist, error) {
	var out []model.Playlist
	const q = `
	SELECT id, company_id, name, created_by, created_at, updated_at
	FROM playlists
	WHERE ($1 = 0 OR company_id = $1)
	ORDER BY id;`
	if err := s.db.Select(&out, q, companyID); err != nil {
		log.Error().Err(err).Msg("[db] ListPlaylists: failed to select playlists")
		return nil, err
	}

	for i := range out {
		items, err := s.ListPlaylistVideos(out[i].ID)
		if err != nil {
			log.Error().Err(err).Msgf("[db] ListPlaylists: failed to load items for playlist %d", out[i].ID)
			return nil, err
		}
		out[i].Items = items
	}
	return out, nil
}

func (s *pgStore) UpdatePlaylist(id int, name *string) error {
	_, err := s.db.Exec(`
		UPDATE playlists
		SET
		name       = COALESCE($2, name),
		updated_at = now()
		WHERE id = $1;`,
		id, name,
	)
	if err != nil {
		log.Error().Err(err).Msg("[db] UpdatePlaylist")
	}
	return err
}

func (s *pgStore) DeletePlaylist(id int) error {
	_, err := s.db.Exec(`DELETE FROM playlists WHERE id = $1;`, id)
	if err != nil {
		log.Error().Err(err).Msg("[db] DeletePlaylist")
	}
	return err
}

func (s *pgStore) AddVideoToPlaylist(playlistID, videoID, orderIndex int) (model.PlaylistVideo, error) {
	var pv model.PlaylistVideo
	query := `
	INSERT INTO playlist_videos
	(playlist_id, video_id, order_index)
	VALUES
	($1,          $2,       $3)
	RETURNING
	id, playlist_id, video_id, order_index;`

	if err := s.db.Get(&pv, query, playlistID, videoID, orderIndex); err != nil {
		log.Error().Err(err).Msg("[db] AddVideoToPlaylist")
		return model.PlaylistVideo{}, err
	}
	return pv, nil
}

func (s *pgStore) RemoveVideoFromPlaylist(playlistID, videoID int) error {
	_, err := s.db.Exec(`
		DELETE FROM playlist_videos
		WHERE playlist_id = $1 AND video_id = $2;`,
		playlistID, videoID,
	)
	if err != nil {
		log.Error().Err(err).Msg("[db] RemoveVideoFromPlaylist")
	}
	return err
}

func (s *pgStore) ListPlaylistVideos(playlistID int) ([]model.PlaylistVideo, error) {
	var list []model.PlaylistVideo
	const query = `
    SELECT id, playlist_id, video_id, order_index
    FROM playlist_videos
    WHERE playlist_id = $1
    ORDER BY order_index;`

	err := s.db.Select(&list, query, playlistID)
	if err != nil {
		log.Error().Err(err).Msg("[db] ListPlaylistVideos")
		return nil, err
	}

	for i := range list {
		v, err := s.GetVideoByID(list[i].VideoID)
		if err != nil {
			return nil, err
		}
		list[i].Video = &v
	}
	return list, nil
}

// ListPlaylistVideosForCompany is the device-facing variant: cross-company
// videos that ended up in a shared playlist are filtered out, and ordering
// follows order_index.
func (s *pgStore) ListPlaylistVideosForCompany(playlistID, companyID int) ([]model.PlaylistVideo, error) {
	var list []model.PlaylistVideo
	const query = `
    SELECT pv.id, pv.playlist_id, pv.video_id, pv.order_index
    FROM playlist_videos pv
    JOIN videos v ON pv.video_id = v.id
    WHERE pv.playlist_id = $1
      AND v.company_id = $2
    ORDER BY pv.order_index;`

	err := s.db.Select(&list, query, playlistID, companyID)
	if err != nil {
		log.Error().Err(err).Int("playlist_id", playlistID).Msg("[db] ListPlaylistVideosForCompany")
		return nil, err
	}

	for i := range list {
		v, err := s.GetVideoByID(list[i].VideoID)
		if err != nil {
			return nil, err
		}
		list[i].Video = &v
	}
	return list, nil
}

// ReorderPlaylistVideos rewrites order_index densely in the given order,
// inside one transaction.
func (s *pgStore) ReorderPlaylistVideos(playlistID int, videoIDs []int) error {
	tx, err := s.db.Beginx()
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			if rbErr := tx.Rollback(); rbErr != nil {
				return
			}
		} else {
			if cmErr := tx.Commit(); cmErr != nil {
				return
			}
		}
	}()

	count := len(videoIDs)
	if _, err = tx.Exec(`
        UPDATE playlist_videos
           SET order_index = order_index + $1
         WHERE playlist_id = $2;
    `, count, playlistID); err != nil {
		return err
	}

	for idx, videoID := range videoIDs {
		if _, err = tx.Exec(`
            UPDATE playlist_videos
               SET order_index = $1
             WHERE video_id = $2
               AND playlist_id = $3;
        `, idx, videoID, playlistID); err != nil {
			return err
		}
	}

	return nil
}
