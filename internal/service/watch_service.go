package service

import (
	"context"
	"errors"
	"strings"

	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"watch-catalog/internal/domain"
	"watch-catalog/internal/repository"
)

// WatchService gestiona relojes y sus comentarios.
type WatchService struct {
	logger  *zap.Logger
	watches repository.WatchRepository
	brands  repository.BrandRepository
}

func NewWatchService(logger *zap.Logger, watches repository.WatchRepository, brands repository.BrandRepository) *WatchService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &WatchService{logger: logger, watches: watches, brands: brands}
}

type CreateWatchInput struct {
	WatchName        string
	Image            string
	Price            float64
	Automatic        bool
	WatchDescription string
	BrandID          string
}

type CommentInput struct {
	Rating  int
	Content string
}

// List devuelve la página filtrada y el total que coincide con el filtro.
func (s *WatchService) List(ctx context.Context, filter repository.WatchFilter) ([]domain.Watch, int64, error) {
	watches, err := s.watches.List(ctx, filter)
	if err != nil {
		return nil, 0, err
	}
	total, err := s.watches.Count(ctx, filter)
	if err != nil {
		return nil, 0, err
	}
	return watches, total, nil
}

func (s *WatchService) Get(ctx context.Context, id string) (domain.Watch, error) {
	watch, err := s.watches.GetByID(ctx, strings.TrimSpace(id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.Watch{}, ErrWatchNotFound
		}
		return domain.Watch{}, err
	}
	return watch, nil
}

func (s *WatchService) Create(ctx context.Context, input CreateWatchInput) (domain.Watch, error) {
	input.WatchName = strings.TrimSpace(input.WatchName)
	input.BrandID = strings.TrimSpace(input.BrandID)
	if input.WatchName == "" || input.BrandID == "" {
		return domain.Watch{}, ErrMissingFields
	}
	if err := s.ensureBrand(ctx, input.BrandID); err != nil {
		return domain.Watch{}, err
	}
	return s.watches.Create(ctx, domain.Watch{
		WatchName:        input.WatchName,
		Image:            input.Image,
		Price:            input.Price,
		Automatic:        input.Automatic,
		WatchDescription: input.WatchDescription,
		BrandID:          input.BrandID,
	})
}

func (s *WatchService) Update(ctx context.Context, id string, patch repository.WatchPatch) (domain.Watch, error) {
	if patch.WatchName != nil && strings.TrimSpace(*patch.WatchName) == "" {
		return domain.Watch{}, ErrMissingFields
	}
	if patch.BrandID != nil {
		if err := s.ensureBrand(ctx, strings.TrimSpace(*patch.BrandID)); err != nil {
			return domain.Watch{}, err
		}
	}
	watch, err := s.watches.Update(ctx, strings.TrimSpace(id), patch)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.Watch{}, ErrWatchNotFound
		}
		return domain.Watch{}, err
	}
	return watch, nil
}

func (s *WatchService) Delete(ctx context.Context, id string) (domain.Watch, error) {
	watch, err := s.watches.Delete(ctx, strings.TrimSpace(id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.Watch{}, ErrWatchNotFound
		}
		return domain.Watch{}, err
	}
	return watch, nil
}

// AddComment publica la reseña del autor; los admins no comentan y cada
// miembro comenta una sola vez por reloj.
func (s *WatchService) AddComment(ctx context.Context, watchID string, author domain.Member, input CommentInput) (domain.Watch, error) {
	if author.IsAdmin {
		return domain.Watch{}, ErrAdminCannotComment
	}
	if err := validateComment(input); err != nil {
		return domain.Watch{}, err
	}
	watch, err := s.Get(ctx, watchID)
	if err != nil {
		return domain.Watch{}, err
	}
	for _, c := range watch.Comments {
		if c.AuthorID == author.ID {
			return domain.Watch{}, ErrAlreadyCommented
		}
	}

	_, err = s.watches.AddComment(ctx, domain.Comment{
		WatchID:  watch.ID,
		AuthorID: author.ID,
		Rating:   input.Rating,
		Content:  strings.TrimSpace(input.Content),
	})
	if err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return domain.Watch{}, ErrAlreadyCommented
		}
		return domain.Watch{}, err
	}
	return s.Get(ctx, watch.ID)
}

func (s *WatchService) UpdateComment(ctx context.Context, watchID, commentID, authorID string, input CommentInput) (domain.Watch, error) {
	if err := validateComment(input); err != nil {
		return domain.Watch{}, err
	}
	watch, comment, err := s.findComment(ctx, watchID, commentID)
	if err != nil {
		return domain.Watch{}, err
	}
	if comment.AuthorID != authorID {
		return domain.Watch{}, ErrNotCommentAuthor
	}
	comment.Rating = input.Rating
	comment.Content = strings.TrimSpace(input.Content)
	if err := s.watches.UpdateComment(ctx, comment); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.Watch{}, ErrCommentNotFound
		}
		return domain.Watch{}, err
	}
	return s.Get(ctx, watch.ID)
}

func (s *WatchService) DeleteComment(ctx context.Context, watchID, commentID, authorID string) (domain.Watch, error) {
	watch, comment, err := s.findComment(ctx, watchID, commentID)
	if err != nil {
		return domain.Watch{}, err
	}
	if comment.AuthorID != authorID {
		return domain.Watch{}, ErrNotCommentAuthor
	}
	if err := s.watches.DeleteComment(ctx, comment.ID); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.Watch{}, ErrCommentNotFound
		}
		return domain.Watch{}, err
	}
	return s.Get(ctx, watch.ID)
}

func (s *WatchService) findComment(ctx context.Context, watchID, commentID string) (domain.Watch, domain.Comment, error) {
	watch, err := s.Get(ctx, watchID)
	if err != nil {
		return domain.Watch{}, domain.Comment{}, err
	}
	commentID = strings.TrimSpace(commentID)
	for _, c := range watch.Comments {
		if c.ID == commentID {
			return watch, c, nil
		}
	}
	return domain.Watch{}, domain.Comment{}, ErrCommentNotFound
}

func (s *WatchService) ensureBrand(ctx context.Context, brandID string) error {
	if _, err := s.brands.GetByID(ctx, brandID); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ErrUnknownBrand
		}
		return err
	}
	return nil
}

func validateComment(input CommentInput) error {
	if strings.TrimSpace(input.Content) == "" {
		return ErrMissingFields
	}
	if input.Rating < domain.MinRating || input.Rating > domain.MaxRating {
		return ErrInvalidRating
	}
	return nil
}
