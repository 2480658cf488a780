package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"watch-catalog/internal/domain"
)

type BrandRepository interface {
	Create(ctx context.Context, brand domain.Brand) (domain.Brand, error)
	GetByID(ctx context.Context, id string) (domain.Brand, error)
	List(ctx context.Context) ([]domain.Brand, error)
	Update(ctx context.Context, brand domain.Brand) (domain.Brand, error)
	Delete(ctx context.Context, id string) (domain.Brand, error)
}

type PgBrandRepository struct {
	pool querier
}

func NewPgBrandRepository(pool *pgxpool.Pool) *PgBrandRepository {
	return &PgBrandRepository{pool: pool}
}

func (r *PgBrandRepository) Create(ctx context.Context, brand domain.Brand) (domain.Brand, error) {
	const query = `
		INSERT INTO brands (id, brand_name, created_at, updated_at)
		VALUES ($1, $2, $3, $3)
	`
	if brand.ID == "" {
		brand.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	brand.CreatedAt = now
	brand.UpdatedAt = now

	if _, err := r.pool.Exec(ctx, query, brand.ID, brand.BrandName, now); err != nil {
		return domain.Brand{}, err
	}
	return brand, nil
}

func (r *PgBrandRepository) GetByID(ctx context.Context, id string) (domain.Brand, error) {
	const query = `
		SELECT id, brand_name, created_at, updated_at
		FROM brands
		WHERE id = $1
	`
	return scanBrand(r.pool.QueryRow(ctx, query, id))
}

func (r *PgBrandRepository) List(ctx context.Context) ([]domain.Brand, error) {
	const query = `
		SELECT id, brand_name, created_at, updated_at
		FROM brands
		ORDER BY created_at ASC
	`
	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	brands := []domain.Brand{}
	for rows.Next() {
		b, err := scanBrand(rows)
		if err != nil {
			return nil, err
		}
		brands = append(brands, b)
	}
	if err = rows.Err(); err != nil {
		return nil, err
	}
	return brands, nil
}

func (r *PgBrandRepository) Update(ctx context.Context, brand domain.Brand) (domain.Brand, error) {
	const query = `
		UPDATE brands SET brand_name = $2, updated_at = now()
		WHERE id = $1
		RETURNING id, brand_name, created_at, updated_at
	`
	return scanBrand(r.pool.QueryRow(ctx, query, brand.ID, brand.BrandName))
}

func (r *PgBrandRepository) Delete(ctx context.Context, id string) (domain.Brand, error) {
	const query = `
		DELETE FROM brands WHERE id = $1
		RETURNING id, brand_name, created_at, updated_at
	`
	return scanBrand(r.pool.QueryRow(ctx, query, id))
}

func scanBrand(row pgx.Row) (domain.Brand, error) {
	var b domain.Brand
	if err := row.Scan(&b.ID, &b.BrandName, &b.CreatedAt, &b.UpdatedAt); err != nil {
		return domain.Brand{}, err
	}
	return b, nil
}
