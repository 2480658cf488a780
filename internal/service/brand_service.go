package service

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"watch-catalog/internal/domain"
	"watch-catalog/internal/repository"
)

const brandListCacheKey = "brands"

// BrandService gestiona marcas; la lista completa se sirve desde CatalogCache.
type BrandService struct {
	logger   *zap.Logger
	brands   repository.BrandRepository
	watches  repository.WatchRepository
	cache    CatalogCache
	cacheTTL time.Duration
}

func NewBrandService(logger *zap.Logger, brands repository.BrandRepository, watches repository.WatchRepository, cache CatalogCache, cacheTTL time.Duration) *BrandService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cache == nil {
		cache = NewMemoryCatalogCache()
	}
	if cacheTTL <= 0 {
		cacheTTL = time.Minute
	}
	return &BrandService{
		logger:   logger,
		brands:   brands,
		watches:  watches,
		cache:    cache,
		cacheTTL: cacheTTL,
	}
}

// List devuelve todas las marcas. Un fallo de la caché se trata como miss.
func (s *BrandService) List(ctx context.Context) ([]domain.Brand, error) {
	raw, ok, err := s.cache.Get(brandListCacheKey)
	if err != nil {
		s.logger.Warn("catalog cache get failed", zap.Error(err))
	}
	if ok {
		var brands []domain.Brand
		if err := json.Unmarshal(raw, &brands); err == nil {
			return brands, nil
		}
	}

	brands, err := s.brands.List(ctx)
	if err != nil {
		return nil, err
	}
	if raw, err := json.Marshal(brands); err == nil {
		if err := s.cache.Set(brandListCacheKey, raw, s.cacheTTL); err != nil {
			s.logger.Warn("catalog cache set failed", zap.Error(err))
		}
	}
	return brands, nil
}

func (s *BrandService) Get(ctx context.Context, id string) (domain.Brand, error) {
	brand, err := s.brands.GetByID(ctx, strings.TrimSpace(id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.Brand{}, ErrBrandNotFound
		}
		return domain.Brand{}, err
	}
	return brand, nil
}

// Watches lista los relojes de una marca existente.
func (s *BrandService) Watches(ctx context.Context, id string) ([]domain.Watch, error) {
	brand, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	return s.watches.List(ctx, repository.WatchFilter{BrandID: brand.ID})
}

func (s *BrandService) Create(ctx context.Context, brandName string) (domain.Brand, error) {
	brandName = strings.TrimSpace(brandName)
	if brandName == "" {
		return domain.Brand{}, ErrMissingFields
	}
	brand, err := s.brands.Create(ctx, domain.Brand{BrandName: brandName})
	if err != nil {
		return domain.Brand{}, err
	}
	s.invalidate()
	return brand, nil
}

func (s *BrandService) Update(ctx context.Context, id, brandName string) (domain.Brand, error) {
	brandName = strings.TrimSpace(brandName)
	if brandName == "" {
		return domain.Brand{}, ErrMissingFields
	}
	brand, err := s.brands.Update(ctx, domain.Brand{ID: strings.TrimSpace(id), BrandName: brandName})
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.Brand{}, ErrBrandNotFound
		}
		return domain.Brand{}, err
	}
	s.invalidate()
	return brand, nil
}

// Delete rechaza borrar una marca que todavía tiene relojes.
func (s *BrandService) Delete(ctx context.Context, id string) error {
	id = strings.TrimSpace(id)
	n, err := s.watches.Count(ctx, repository.WatchFilter{BrandID: id})
	if err != nil {
		return err
	}
	if n > 0 {
		return ErrBrandHasWatches
	}
	if _, err := s.brands.Delete(ctx, id); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ErrBrandNotFound
		}
		return err
	}
	s.invalidate()
	return nil
}

func (s *BrandService) invalidate() {
	if err := s.cache.Invalidate(brandListCacheKey); err != nil {
		s.logger.Warn("catalog cache invalidate failed", zap.Error(err))
	}
}
