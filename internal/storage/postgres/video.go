package postgres

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/jmoiron/sqlx"

	"campus_sync/internal/domain"
)

const videoColumns = `id, title_ua, title_en, description_ua, description_en, src, image, category, position, published, date`

type videoRow struct {
	ID            string         `db:"id"`
	TitleUA       string         `db:"title_ua"`
	TitleEN       string         `db:"title_en"`
	DescriptionUA string         `db:"description_ua"`
	DescriptionEN string         `db:"description_en"`
	Src           string         `db:"src"`
	Image         sql.NullString `db:"image"`
	Category      string         `db:"category"`
	Position      int            `db:"position"`
	Published     bool           `db:"published"`
	Date          time.Time      `db:"date"`
}

func (r videoRow) toDomain() domain.Video {
	return domain.Video{
		ID:          r.ID,
		Title:       domain.LocalizedText{UA: r.TitleUA, EN: r.TitleEN},
		Description: domain.LocalizedText{UA: r.DescriptionUA, EN: r.DescriptionEN},
		Src:         r.Src,
		Image:       fromNull(r.Image),
		Category:    r.Category,
		Position:    r.Position,
		Published:   r.Published,
		Date:        r.Date,
	}
}

// VideoStore is the video library gateway. Videos are not scraped: All and
// ListCategories serve the public API, the write operations serve the admin panel.
type VideoStore struct {
	db *sqlx.DB
}

func NewVideoStore(db *sqlx.DB) *VideoStore {
	return &VideoStore{db: db}
}

// All lists videos, newest position first.
func (s *VideoStore) All(ctx context.Context, includeUnpublished bool) ([]domain.Video, error) {
	query := `SELECT ` + videoColumns + ` FROM videos`
	if !includeUnpublished {
		query += ` WHERE published = TRUE`
	}
	query += ` ORDER BY position DESC`

	var rows []videoRow
	if err := s.db.SelectContext(ctx, &rows, query); err != nil {
		return nil, err
	}

	videos := make([]domain.Video, len(rows))
	for i, r := range rows {
		videos[i] = r.toDomain()
	}
	return videos, nil
}

func (s *VideoStore) ListCategories(ctx context.Context) ([]string, error) {
	var categories []string
	err := s.db.SelectContext(ctx, &categories, `SELECT DISTINCT category FROM videos ORDER BY category`)
	return categories, err
}

func (s *VideoStore) Get(ctx context.Context, id string) (*domain.Video, error) {
	var row videoRow
	err := s.db.GetContext(ctx, &row, `SELECT `+videoColumns+` FROM videos WHERE id = $1`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	v := row.toDomain()
	return &v, nil
}

func (s *VideoStore) Create(ctx context.Context, v *domain.Video) error {
	if v.Date.IsZero() {
		v.Date = time.Now().UTC()
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO videos (`+videoColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`,
		v.ID, v.Title.UA, v.Title.EN, v.Description.UA, v.Description.EN,
		v.Src, v.Image, v.Category, v.Position, v.Published, v.Date,
	)
	return err
}

func (s *VideoStore) Update(ctx context.Context, v *domain.Video) error {
	res, err := s.db.ExecContext(ctx, `
		UPDATE videos SET
			title_ua = $2, title_en = $3, description_ua = $4, description_en = $5,
			src = $6, image = $7, category = $8, position = $9, published = $10
		WHERE id = $1`,
		v.ID, v.Title.UA, v.Title.EN, v.Description.UA, v.Description.EN,
		v.Src, v.Image, v.Category, v.Position, v.Published,
	)
	if err != nil {
		return err
	}
	return expectRow(res)
}

func (s *VideoStore) Delete(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM videos WHERE id = $1`, id)
	if err != nil {
		return err
	}
	return expectRow(res)
}
