package db

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/lib/pq"
	"podcast-studio/internal/models"
)

const episodeColumns = `id, podcast_id, name, number, description, links, release_date, format,
	notes, guests, output_formats, deliver_mp3, deliver_mp4, deliver_mov, status, created_at, updated_at`

// CreateEpisode inserts the empty draft row an episode wizard starts from.
func (s *Store) CreateEpisode(ctx context.Context, podcastID int64) (*models.Episode, error) {
	episode := &models.Episode{}
	err := s.db.GetContext(ctx, episode,
		`INSERT INTO episodes (podcast_id) VALUES ($1) RETURNING `+episodeColumns, podcastID)
	if err != nil {
		return nil, fmt.Errorf("create episode for podcast %d: %w", podcastID, err)
	}
	return episode, nil
}

// GetEpisode loads an episode scoped to its podcast.
func (s *Store) GetEpisode(ctx context.Context, podcastID, id int64) (*models.Episode, error) {
	episode := &models.Episode{}
	err := s.db.GetContext(ctx, episode,
		`SELECT `+episodeColumns+` FROM episodes WHERE id = $1 AND podcast_id = $2`, id, podcastID)
	if err != nil {
		return nil, fmt.Errorf("get episode %d: %w", id, notFound(err))
	}
	return episode, nil
}

func (s *Store) GetEpisodeByID(ctx context.Context, id int64) (*models.Episode, error) {
	episode := &models.Episode{}
	err := s.db.GetContext(ctx, episode,
		`SELECT `+episodeColumns+` FROM episodes WHERE id = $1`, id)
	if err != nil {
		return nil, fmt.Errorf("get episode %d: %w", id, notFound(err))
	}
	return episode, nil
}

// SaveEpisode writes every attribute except status. A duplicate number
// within the podcast yields ErrConflict.
func (s *Store) SaveEpisode(ctx context.Context, e *models.Episode) error {
	res, err := s.db.ExecContext(ctx, `
		UPDATE episodes
		SET name = $1, number = $2, description = $3, links = $4, release_date = $5, format = $6,
			notes = $7, guests = $8, output_formats = $9, deliver_mp3 = $10, deliver_mp4 = $11,
			deliver_mov = $12, updated_at = NOW()
		WHERE id = $13`,
		e.Name, e.Number, e.Description, e.Links, e.ReleaseDate, e.Format,
		e.Notes, e.Guests, e.OutputFormats, e.DeliverMP3, e.DeliverMP4,
		e.DeliverMOV, e.ID)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("save episode %d: %w", e.ID, ErrConflict)
		}
		return fmt.Errorf("save episode %d: %w", e.ID, err)
	}
	return requireRow(res, "save episode", e.ID)
}

// MaxEpisodeNumber returns the highest number among the podcast's
// episodes other than excludeID, or 0 when there are none.
func (s *Store) MaxEpisodeNumber(ctx context.Context, podcastID, excludeID int64) (int, error) {
	var max int
	err := s.db.GetContext(ctx, &max,
		`SELECT COALESCE(MAX(number), 0) FROM episodes WHERE podcast_id = $1 AND id <> $2`,
		podcastID, excludeID)
	if err != nil {
		return 0, fmt.Errorf("max episode number for podcast %d: %w", podcastID, err)
	}
	return max, nil
}

// SwapEpisodeStatus sets the status to `to` only while the current status
// is one of `from`. It reports whether the row was updated.
func (s *Store) SwapEpisodeStatus(ctx context.Context, id int64, from []models.EpisodeStatus, to models.EpisodeStatus) (bool, error) {
	allowed := make([]string, len(from))
	for i, st := range from {
		allowed[i] = string(st)
	}
	res, err := s.db.ExecContext(ctx,
		`UPDATE episodes SET status = $1, updated_at = NOW() WHERE id = $2 AND status = ANY($3)`,
		to, id, pq.Array(allowed))
	if err != nil {
		return false, fmt.Errorf("swap episode %d status: %w", id, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n == 1, nil
}

// ListEpisodesByStatus returns episodes across all podcasts, newest first.
func (s *Store) ListEpisodesByStatus(ctx context.Context, statuses ...models.EpisodeStatus) ([]models.Episode, error) {
	names := make([]string, len(statuses))
	for i, st := range statuses {
		names[i] = string(st)
	}
	var episodes []models.Episode
	err := s.db.SelectContext(ctx, &episodes,
		`SELECT `+episodeColumns+` FROM episodes WHERE status = ANY($1) ORDER BY created_at DESC`,
		pq.Array(names))
	if err != nil {
		return nil, fmt.Errorf("list episodes by status: %w", err)
	}
	return episodes, nil
}

// ListPodcastEpisodes returns a podcast's episodes in the given statuses by number.
func (s *Store) ListPodcastEpisodes(ctx context.Context, podcastID int64, statuses ...models.EpisodeStatus) ([]models.Episode, error) {
	names := make([]string, len(statuses))
	for i, st := range statuses {
		names[i] = string(st)
	}
	var episodes []models.Episode
	err := s.db.SelectContext(ctx, &episodes,
		`SELECT `+episodeColumns+` FROM episodes WHERE podcast_id = $1 AND status = ANY($2) ORDER BY number`,
		podcastID, pq.Array(names))
	if err != nil {
		return nil, fmt.Errorf("list episodes for podcast %d: %w", podcastID, err)
	}
	return episodes, nil
}

func (s *Store) DeleteEpisode(ctx context.Context, podcastID, id int64) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM episodes WHERE id = $1 AND podcast_id = $2`, id, podcastID)
	if err != nil {
		return fmt.Errorf("delete episode %d: %w", id, err)
	}
	return requireRow(res, "delete episode", id)
}

func requireRow(res sql.Result, op string, id int64) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("%s %d: %w", op, id, err)
	}
	if n == 0 {
		return fmt.Errorf("%s %d: %w", op, id, ErrNotFound)
	}
	return nil
}
