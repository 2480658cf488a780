package repository

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"watch-catalog/internal/domain"
)

// ErrDuplicate indica una violación de unicidad (p. ej. segundo comentario del mismo autor).
var ErrDuplicate = errors.New("duplicate record")

type WatchRepository interface {
	Create(ctx context.Context, watch domain.Watch) (domain.Watch, error)
	GetByID(ctx context.Context, id string) (domain.Watch, error)
	Update(ctx context.Context, id string, patch WatchPatch) (domain.Watch, error)
	Delete(ctx context.Context, id string) (domain.Watch, error)
	List(ctx context.Context, filter WatchFilter) ([]domain.Watch, error)
	Count(ctx context.Context, filter WatchFilter) (int64, error)

	AddComment(ctx context.Context, comment domain.Comment) (domain.Comment, error)
	UpdateComment(ctx context.Context, comment domain.Comment) error
	DeleteComment(ctx context.Context, commentID string) error
}

// WatchFilter refleja los query params de GET /watches.
type WatchFilter struct {
	WatchNameLike        string
	WatchDescriptionLike string
	BrandID              string
	Sort                 Sort
}

// WatchPatch contiene solo los campos enviados en un PATCH.
type WatchPatch struct {
	WatchName        *string  `json:"watchName"`
	Image            *string  `json:"image"`
	Price            *float64 `json:"price"`
	Automatic        *bool    `json:"automatic"`
	WatchDescription *string  `json:"watchDescription"`
	BrandID          *string  `json:"brand"`
}

var watchSortColumns = map[string]string{
	"_id":              "w.id",
	"watchName":        "w.watch_name",
	"price":            "w.price",
	"automatic":        "w.automatic",
	"watchDescription": "w.watch_description",
	"brand":            "b.brand_name",
	"createdAt":        "w.created_at",
	"updatedAt":        "w.updated_at",
}

const watchSelect = `
	SELECT w.id, w.watch_name, w.image, w.price, w.automatic, w.watch_description,
	       w.brand_id, b.brand_name, b.created_at, b.updated_at, w.created_at, w.updated_at
	FROM watches w
	JOIN brands b ON b.id = w.brand_id`

type PgWatchRepository struct {
	pool querier
}

func NewPgWatchRepository(pool *pgxpool.Pool) *PgWatchRepository {
	return &PgWatchRepository{pool: pool}
}

func (r *PgWatchRepository) Create(ctx context.Context, watch domain.Watch) (domain.Watch, error) {
	const query = `
		INSERT INTO watches (id, watch_name, image, price, automatic, watch_description, brand_id, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $8)
	`
	if watch.ID == "" {
		watch.ID = uuid.NewString()
	}
	_, err := r.pool.Exec(ctx, query,
		watch.ID,
		watch.WatchName,
		watch.Image,
		watch.Price,
		watch.Automatic,
		watch.WatchDescription,
		watch.BrandID,
		time.Now().UTC(),
	)
	if err != nil {
		return domain.Watch{}, err
	}
	return r.GetByID(ctx, watch.ID)
}

func (r *PgWatchRepository) GetByID(ctx context.Context, id string) (domain.Watch, error) {
	w, err := scanWatch(r.pool.QueryRow(ctx, watchSelect+` WHERE w.id = $1`, id))
	if err != nil {
		return domain.Watch{}, err
	}
	watches := []domain.Watch{w}
	if err := r.attachComments(ctx, watches); err != nil {
		return domain.Watch{}, err
	}
	return watches[0], nil
}

func (r *PgWatchRepository) Update(ctx context.Context, id string, p WatchPatch) (domain.Watch, error) {
	const query = `
		UPDATE watches SET
			watch_name        = COALESCE($2, watch_name),
			image             = COALESCE($3, image),
			price             = COALESCE($4, price),
			automatic         = COALESCE($5, automatic),
			watch_description = COALESCE($6, watch_description),
			brand_id          = COALESCE($7, brand_id),
			updated_at        = now()
		WHERE id = $1
	`
	tag, err := r.pool.Exec(ctx, query, id, p.WatchName, p.Image, p.Price, p.Automatic, p.WatchDescription, p.BrandID)
	if err != nil {
		return domain.Watch{}, err
	}
	if tag.RowsAffected() == 0 {
		return domain.Watch{}, pgx.ErrNoRows
	}
	return r.GetByID(ctx, id)
}

func (r *PgWatchRepository) Delete(ctx context.Context, id string) (domain.Watch, error) {
	w, err := r.GetByID(ctx, id)
	if err != nil {
		return domain.Watch{}, err
	}
	tag, err := r.pool.Exec(ctx, `DELETE FROM watches WHERE id = $1`, id)
	if err != nil {
		return domain.Watch{}, err
	}
	if tag.RowsAffected() == 0 {
		return domain.Watch{}, pgx.ErrNoRows
	}
	return w, nil
}

func (r *PgWatchRepository) List(ctx context.Context, filter WatchFilter) ([]domain.Watch, error) {
	where := watchWhere(filter)
	query := watchSelect + where.sql() + orderBy(filter.Sort, watchSortColumns, "w.created_at ASC")

	rows, err := r.pool.Query(ctx, query, where.args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	watches := []domain.Watch{}
	for rows.Next() {
		w, err := scanWatch(rows)
		if err != nil {
			return nil, err
		}
		watches = append(watches, w)
	}
	if err = rows.Err(); err != nil {
		return nil, err
	}
	if err := r.attachComments(ctx, watches); err != nil {
		return nil, err
	}
	return watches, nil
}

func (r *PgWatchRepository) Count(ctx context.Context, filter WatchFilter) (int64, error) {
	where := watchWhere(filter)
	query := `SELECT COUNT(*) FROM watches w` + where.sql()
	var total int64
	err := r.pool.QueryRow(ctx, query, where.args...).Scan(&total)
	return total, err
}

func (r *PgWatchRepository) AddComment(ctx context.Context, c domain.Comment) (domain.Comment, error) {
	const query = `
		INSERT INTO comments (id, watch_id, author_id, rating, content, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $6)
	`
	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	c.CreatedAt = now
	c.UpdatedAt = now

	_, err := r.pool.Exec(ctx, query, c.ID, c.WatchID, c.AuthorID, c.Rating, c.Content, now)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return domain.Comment{}, ErrDuplicate
		}
		return domain.Comment{}, err
	}
	return c, nil
}

func (r *PgWatchRepository) UpdateComment(ctx context.Context, c domain.Comment) error {
	const query = `
		UPDATE comments SET rating = $2, content = $3, updated_at = now()
		WHERE id = $1
	`
	tag, err := r.pool.Exec(ctx, query, c.ID, c.Rating, c.Content)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *PgWatchRepository) DeleteComment(ctx context.Context, commentID string) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM comments WHERE id = $1`, commentID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

// attachComments carga en una sola consulta los comentarios (con autor) de todos los relojes.
func (r *PgWatchRepository) attachComments(ctx context.Context, watches []domain.Watch) error {
	if len(watches) == 0 {
		return nil
	}
	ids := make([]string, len(watches))
	index := make(map[string]int, len(watches))
	for i, w := range watches {
		ids[i] = w.ID
		index[w.ID] = i
		watches[i].Comments = []domain.Comment{}
	}

	const query = `
		SELECT c.id, c.watch_id, c.rating, c.content, c.author_id, m.membername, m.email, c.created_at, c.updated_at
		FROM comments c
		JOIN members m ON m.id = c.author_id
		WHERE c.watch_id = ANY($1)
		ORDER BY c.created_at ASC
	`
	rows, err := r.pool.Query(ctx, query, ids)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var c domain.Comment
		err := rows.Scan(&c.ID, &c.WatchID, &c.Rating, &c.Content, &c.AuthorID,
			&c.Author.Membername, &c.Author.Email, &c.CreatedAt, &c.UpdatedAt)
		if err != nil {
			return err
		}
		c.Author.ID = c.AuthorID
		i := index[c.WatchID]
		watches[i].Comments = append(watches[i].Comments, c)
	}
	return rows.Err()
}

func watchWhere(f WatchFilter) *whereBuilder {
	b := &whereBuilder{}
	if f.WatchNameLike != "" {
		b.addLike("w.watch_name", f.WatchNameLike)
	}
	if f.WatchDescriptionLike != "" {
		b.addLike("w.watch_description", f.WatchDescriptionLike)
	}
	if f.BrandID != "" {
		b.add("w.brand_id = $%d", f.BrandID)
	}
	return b
}

func scanWatch(row pgx.Row) (domain.Watch, error) {
	var (
		w domain.Watch
		b domain.Brand
	)
	err := row.Scan(&w.ID, &w.WatchName, &w.Image, &w.Price, &w.Automatic, &w.WatchDescription,
		&w.BrandID, &b.BrandName, &b.CreatedAt, &b.UpdatedAt, &w.CreatedAt, &w.UpdatedAt)
	if err != nil {
		return domain.Watch{}, err
	}
	b.ID = w.BrandID
	w.Brand = &b
	w.Comments = []domain.Comment{}
	return w, nil
}
