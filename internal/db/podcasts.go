package db

import (
	"context"
	"fmt"

	"podcast-studio/internal/models"
)

const podcastColumns = `id, user_id, name, description, website_url, primary_category,
	secondary_category, tertiary_category, episode_type, status, created_at, updated_at`

// CreatePodcast inserts the empty draft row a wizard starts from.
func (s *Store) CreatePodcast(ctx context.Context, userID int64) (*models.Podcast, error) {
	podcast := &models.Podcast{}
	err := s.db.GetContext(ctx, podcast,
		`INSERT INTO podcasts (user_id) VALUES ($1) RETURNING `+podcastColumns, userID)
	if err != nil {
		return nil, fmt.Errorf("create podcast for user %d: %w", userID, err)
	}
	return podcast, nil
}

func (s *Store) GetPodcast(ctx context.Context, id int64) (*models.Podcast, error) {
	podcast := &models.Podcast{}
	err := s.db.GetContext(ctx, podcast,
		`SELECT `+podcastColumns+` FROM podcasts WHERE id = $1`, id)
	if err != nil {
		return nil, fmt.Errorf("get podcast %d: %w", id, notFound(err))
	}
	return podcast, nil
}

// SavePodcast writes every attribute of the podcast without validating it.
func (s *Store) SavePodcast(ctx context.Context, p *models.Podcast) error {
	res, err := s.db.ExecContext(ctx, `
		UPDATE podcasts
		SET name = $1, description = $2, website_url = $3, primary_category = $4,
			secondary_category = $5, tertiary_category = $6, episode_type = $7, updated_at = NOW()
		WHERE id = $8`,
		p.Name, p.Description, p.WebsiteURL, p.PrimaryCategory,
		p.SecondaryCategory, p.TertiaryCategory, p.EpisodeType, p.ID)
	if err != nil {
		return fmt.Errorf("save podcast %d: %w", p.ID, err)
	}
	return requireRow(res, "save podcast", p.ID)
}

// SwapPodcastStatus moves the podcast to `to` only if it is currently `from`.
func (s *Store) SwapPodcastStatus(ctx context.Context, id int64, from, to models.PodcastStatus) (bool, error) {
	res, err := s.db.ExecContext(ctx,
		`UPDATE podcasts SET status = $1, updated_at = NOW() WHERE id = $2 AND status = $3`, to, id, from)
	if err != nil {
		return false, fmt.Errorf("swap podcast %d status: %w", id, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n == 1, nil
}

// DeletePodcast removes the podcast; its episodes go with it by foreign key.
// Attachments are not covered by the cascade and must be purged first.
func (s *Store) DeletePodcast(ctx context.Context, id int64) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM podcasts WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete podcast %d: %w", id, err)
	}
	return requireRow(res, "delete podcast", id)
}
