package postgres

import (
	"context"
	"database/sql"
	"errors"
	"strconv"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"campus_sync/internal/domain"
)

const cardColumns = `id, title_ua, title_en, subtitle_ua, subtitle_en, content_ua, content_en,
	image, image_source, category, subcategory, resource, position, published, date`

type cardRow struct {
	ID          string         `db:"id"`
	TitleUA     string         `db:"title_ua"`
	TitleEN     string         `db:"title_en"`
	SubtitleUA  string         `db:"subtitle_ua"`
	SubtitleEN  string         `db:"subtitle_en"`
	ContentUA   string         `db:"content_ua"`
	ContentEN   string         `db:"content_en"`
	Image       sql.NullString `db:"image"`
	ImageSource string         `db:"image_source"`
	Category    string         `db:"category"`
	Subcategory sql.NullString `db:"subcategory"`
	Resource    sql.NullString `db:"resource"`
	Position    int            `db:"position"`
	Published   bool           `db:"published"`
	Date        time.Time      `db:"date"`
}

func (r cardRow) toDomain() domain.ContentCard {
	return domain.ContentCard{
		ID:          r.ID,
		Title:       domain.LocalizedText{UA: r.TitleUA, EN: r.TitleEN},
		Subtitle:    domain.LocalizedText{UA: r.SubtitleUA, EN: r.SubtitleEN},
		Content:     domain.LocalizedText{UA: r.ContentUA, EN: r.ContentEN},
		Image:       fromNull(r.Image),
		ImageSource: domain.ImageSource(r.ImageSource),
		Category:    r.Category,
		Subcategory: fromNull(r.Subcategory),
		Resource:    fromNull(r.Resource),
		Position:    r.Position,
		Published:   r.Published,
		Date:        r.Date,
	}
}

// CardStore is the persistence gateway for info cards. Inside a transaction
// started by TransactionManager, Get locks the row until commit.
type CardStore struct {
	db *sqlx.DB
}

func NewCardStore(db *sqlx.DB) *CardStore {
	return &CardStore{db: db}
}

// Get returns the card with id, or nil when there is none.
func (s *CardStore) Get(ctx context.Context, id string) (*domain.ContentCard, error) {
	query := `SELECT ` + cardColumns + ` FROM info_cards WHERE id = $1`
	if GetTxFromContext(ctx) != nil {
		query += ` FOR UPDATE`
	}

	var row cardRow
	err := sqlx.GetContext(ctx, GetExecutor(ctx, s.db), &row, query, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	card := row.toDomain()
	return &card, nil
}

// GetInCategory returns the card with id in category, or nil.
func (s *CardStore) GetInCategory(ctx context.Context, id, category string) (*domain.ContentCard, error) {
	card, err := s.Get(ctx, id)
	if err != nil || card == nil || card.Category != category {
		return nil, err
	}
	return card, nil
}

func (s *CardStore) Create(ctx context.Context, card *domain.ContentCard) error {
	if card.Date.IsZero() {
		card.Date = time.Now().UTC()
	}

	query := `
		INSERT INTO info_cards (` + cardColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)`

	_, err := GetExecutor(ctx, s.db).ExecContext(ctx, query,
		card.ID,
		card.Title.UA,
		card.Title.EN,
		card.Subtitle.UA,
		card.Subtitle.EN,
		card.Content.UA,
		card.Content.EN,
		card.Image,
		string(card.ImageSource),
		card.Category,
		card.Subcategory,
		card.Resource,
		card.Position,
		card.Published,
		card.Date,
	)
	return err
}

// Update overwrites every column of an existing card.
func (s *CardStore) Update(ctx context.Context, card *domain.ContentCard) error {
	query := `
		UPDATE info_cards SET
			title_ua = $2, title_en = $3,
			subtitle_ua = $4, subtitle_en = $5,
			content_ua = $6, content_en = $7,
			image = $8, image_source = $9,
			category = $10, subcategory = $11, resource = $12,
			position = $13, published = $14
		WHERE id = $1`

	res, err := GetExecutor(ctx, s.db).ExecContext(ctx, query,
		card.ID,
		card.Title.UA,
		card.Title.EN,
		card.Subtitle.UA,
		card.Subtitle.EN,
		card.Content.UA,
		card.Content.EN,
		card.Image,
		string(card.ImageSource),
		card.Category,
		card.Subcategory,
		card.Resource,
		card.Position,
		card.Published,
	)
	if err != nil {
		return err
	}
	return expectRow(res)
}

func (s *CardStore) All(ctx context.Context, filter domain.CardFilter) ([]domain.ContentCard, error) {
	var (
		where []string
		args  []any
	)
	if filter.Category != "" {
		args = append(args, filter.Category)
		where = append(where, "category = $"+strconv.Itoa(len(args)))
	}
	if !filter.IncludeUnpublished {
		where = append(where, "published = TRUE")
	}

	var sb strings.Builder
	sb.WriteString("SELECT " + cardColumns + " FROM info_cards")
	if len(where) > 0 {
		sb.WriteString(" WHERE " + strings.Join(where, " AND "))
	}
	if filter.OrderByDate {
		sb.WriteString(" ORDER BY date DESC")
	} else {
		sb.WriteString(" ORDER BY position ASC")
	}
	if filter.Limit > 0 {
		args = append(args, filter.Limit)
		sb.WriteString(" LIMIT $" + strconv.Itoa(len(args)))
	}

	var rows []cardRow
	if err := sqlx.SelectContext(ctx, GetExecutor(ctx, s.db), &rows, sb.String(), args...); err != nil {
		return nil, err
	}

	cards := make([]domain.ContentCard, len(rows))
	for i, r := range rows {
		cards[i] = r.toDomain()
	}
	return cards, nil
}

func (s *CardStore) ListCategories(ctx context.Context) ([]string, error) {
	var categories []string
	err := sqlx.SelectContext(ctx, GetExecutor(ctx, s.db), &categories,
		`SELECT DISTINCT category FROM info_cards ORDER BY category ASC`)
	return categories, err
}

// Delete removes a card on admin request; sync passes never delete.
func (s *CardStore) Delete(ctx context.Context, id string) error {
	res, err := GetExecutor(ctx, s.db).ExecContext(ctx, `DELETE FROM info_cards WHERE id = $1`, id)
	if err != nil {
		return err
	}
	return expectRow(res)
}

// Reorder sets positions in category to the index of each id in ids, as the
// admin panel's drag-and-drop ordering does. Cards not listed keep their position.
func (s *CardStore) Reorder(ctx context.Context, category string, ids []string) error {
	if len(ids) == 0 {
		return nil
	}
	query := `
		UPDATE info_cards
		SET position = array_position($1::text[], id) - 1
		WHERE category = $2 AND id = ANY($1::text[])`

	_, err := GetExecutor(ctx, s.db).ExecContext(ctx, query, pq.Array(ids), category)
	return err
}

func expectRow(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func fromNull(s sql.NullString) *string {
	if !s.Valid {
		return nil
	}
	return &s.String
}
