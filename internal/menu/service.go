package menu

import (
	"context"

	"cozycorner-be/internal/cache"
	"cozycorner-be/internal/logger"
	"cozycorner-be/internal/metrics"

	"go.uber.org/zap"
)

type Service interface {
	ListItems(ctx context.Context, filter *ListFilter) ([]MenuItem, error)
	SearchItems(ctx context.Context, query string) ([]MenuItem, error)
	FeaturedItems(ctx context.Context) ([]MenuItem, error)
	GetItem(ctx context.Context, id uint) (*MenuItem, error)
	CreateItem(ctx context.Context, item *MenuItem) error
	UpdateItem(ctx context.Context, item *MenuItem) error
	DeleteItem(ctx context.Context, id uint) error
}

type service struct {
	repo  Repository
	cache *cache.Cache
}

func NewService(repo Repository, c *cache.Cache) Service {
	return &service{repo: repo, cache: c}
}

// ListItems serves the unfiltered public catalog from cache when possible.
// Filtered reads always hit the database; the filter space is not worth
// enumerating into cache keys.
func (s *service) ListItems(ctx context.Context, filter *ListFilter) ([]MenuItem, error) {
	cacheable := filter == nil
	if filter == nil {
		// Public default: available items only.
		filter = &ListFilter{AvailableOnly: true}
	}

	if cacheable {
		var cached []MenuItem
		if s.cache.GetJSON(ctx, cache.MenuCatalogKey, &cached) {
			metrics.Default.CacheHits.Inc()
			return cached, nil
		}
		metrics.Default.CacheMisses.Inc()
	}

	items, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, err
	}

	if cacheable {
		s.cache.SetJSON(ctx, cache.MenuCatalogKey, items)
	}
	return items, nil
}

func (s *service) SearchItems(ctx context.Context, query string) ([]MenuItem, error) {
	return s.repo.Search(ctx, query)
}

func (s *service) FeaturedItems(ctx context.Context) ([]MenuItem, error) {
	return s.repo.Featured(ctx)
}

func (s *service) GetItem(ctx context.Context, id uint) (*MenuItem, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *service) CreateItem(ctx context.Context, item *MenuItem) error {
	if err := validateItem(item); err != nil {
		return err
	}

	if err := s.repo.Create(ctx, item); err != nil {
		logger.FromCtx(ctx).Error("failed to create menu item",
			zap.String("name", item.Name), zap.Error(err))
		return err
	}

	s.cache.Invalidate(ctx, cache.MenuCatalogKey)
	return nil
}

func (s *service) UpdateItem(ctx context.Context, item *MenuItem) error {
	if err := validateItem(item); err != nil {
		return err
	}

	if err := s.repo.Update(ctx, item); err != nil {
		return err
	}

	s.cache.Invalidate(ctx, cache.MenuCatalogKey)
	return nil
}

func (s *service) DeleteItem(ctx context.Context, id uint) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}

	s.cache.Invalidate(ctx, cache.MenuCatalogKey)
	return nil
}

func validateItem(item *MenuItem) error {
	if !ValidCategory(item.Category) {
		return ErrInvalidCategory
	}
	if item.Price < 0 {
		return ErrInvalidPrice
	}
	return nil
}
